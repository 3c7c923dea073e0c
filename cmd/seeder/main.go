// Command seeder fills a database with sample conversations and embeds them,
// for trying out search against realistic data.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"iter"
	"log/slog"
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/schollz/progressbar/v3"
	"github.com/svnscha/knowledge"
	"github.com/svnscha/knowledge/ai/mock"
	"github.com/svnscha/knowledge/core"
	"github.com/svnscha/knowledge/pipeline"
)

var sentences = []string{
	"The quick brown fox jumps over the lazy dog.",
	"A gentle breeze rustled the leaves of the old oak tree.",
	"She found a hidden key in the dusty attic.",
	"The city skyline glowed under the starry night sky.",
	"He whispered secrets to the wind, hoping they would travel far.",
	"Rain drummed on the rooftop, creating a soothing rhythm.",
	"A bright comet streaked across the horizon at midnight.",
	"They laughed together as fireworks painted the evening air.",
	"The ancient library held stories that never faded.",
	"Beneath the waves, coral gardens shimmered in colors unseen.",
	"The hummingbird hovered beside a vibrant purple flower.",
	"A mysterious map led them to a forgotten treasure.",
	"Her heart raced as she stepped onto the stage for the first time.",
	"Sunlight filtered through curtains, turning dust motes into golden specks.",
	"They tasted the sweetest strawberries from the farmer's garden.",
	"The old clock chimed thirteen times in an abandoned town.",
	"A sudden thunderclap shattered the silence of the forest.",
	"He composed a melody that echoed through the valleys.",
	"The desert dunes shifted silently under a pale moon.",
	"A small kitten meowed softly, waiting for warmth.",
	"She painted the sunset with bold strokes of crimson and gold.",
	"A silver fox slipped past the fences into the twilight.",
	"They discovered an ancient rune carved deep within the stone.",
	"The wind carried scents of jasmine from distant gardens.",
	"He built a wooden bridge across the swift river.",
	"Her laughter echoed through the empty halls of the old manor.",
	"A lone wolf howled, echoing into the vast night.",
	"They tasted coffee brewed fresh in the quiet dawn.",
	"The moon rose slowly, casting silver light on the lake.",
	"A child drew a rainbow with crayons on the sidewalk.",
	"He felt the rough bark of the tree against his palm.",
	"She carried a bouquet of wildflowers from the meadow.",
	"The train rattled through tunnels carved into stone.",
	"They watched a parade of balloons float over the town square.",
	"A gentle snowfall blanketed the city in quiet white.",
	"He whispered to the stars, hoping they would hear.",
	"The river's current carried leaves downstream like paper boats.",
	"She hummed a tune she learned from her grandmother.",
	"They explored caves filled with stalactites glittering like chandeliers.",
	"A rustling in the bushes signaled the arrival of deer.",
	"He measured the distance between two distant mountains.",
	"The lighthouse beam cut through fog, guiding sailors safely.",
	"She tasted honey straight from a beehive's sweet core.",
	"They sang songs under the open sky during summer nights.",
	"A sudden gust of wind blew the paper away.",
	"He watched the sunrise paint the horizon pink and orange.",
	"The old map showed roads that no longer existed.",
	"She felt a chill run down her spine as the storm approached.",
	"They tasted tea brewed from leaves harvested yesterday.",
	"A silver moon reflected on calm waters.",
}

var (
	seedFileName = flag.String("src", "", "file of seed data")
	dbPath       = flag.String("db", "./knowledge_db", "database directory")
	workers      = flag.Int("workers", 4, "concurrent append workers")
	turns        = flag.Int("turns", 10, "messages per conversation")
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

// linesFromFile returns an iterator over lines in a file.
func linesFromFile(filename string) (iter.Seq[string], error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	return func(yield func(string) bool) {
		defer f.Close()
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			if !yield(scanner.Text()) {
				return
			}
		}
	}, nil
}

// linesFromSlice returns an iterator over a slice of strings.
func linesFromSlice(lines []string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, line := range lines {
			if !yield(line) {
				return
			}
		}
	}
}

// conversations groups the source lines into conversations of up to
// turnsPerConversation messages, each with its own generated id.
func conversations(source iter.Seq[string], turnsPerConversation int) [][]*core.Record {
	var groups [][]*core.Record
	var current []*core.Record
	conversationId := uuid.NewString()

	role := core.RoleUser
	for line := range source {
		current = append(current, &core.Record{
			ConversationId: conversationId,
			Role:           role,
			Content:        line,
		})
		// Alternate speakers within a conversation.
		if role == core.RoleUser {
			role = core.RoleAssistant
		} else {
			role = core.RoleUser
		}

		if len(current) == turnsPerConversation {
			groups = append(groups, current)
			current = nil
			conversationId = uuid.NewString()
			role = core.RoleUser
		}
	}
	if len(current) > 0 {
		groups = append(groups, current)
	}
	return groups
}

func main() {
	db, err := knowledge.NewDatabase(*dbPath, knowledge.WithEmbedder(mock.NewMockEmbedder()))
	if err != nil {
		panic(err)
	}
	defer db.Close()

	var source iter.Seq[string]
	if *seedFileName != "" {
		source, err = linesFromFile(*seedFileName)
		if err != nil {
			panic(err)
		}
	} else {
		source = linesFromSlice(sentences)
	}

	groups := conversations(source, *turns)
	total := 0
	for _, group := range groups {
		total += len(group)
	}

	ctx := context.Background()
	bar := progressbar.Default(int64(total), "appending")

	// Concurrent appenders exercise the sequence allocator; each
	// conversation is appended as one batch so its internal order holds.
	pool, err := ants.NewPool(*workers)
	if err != nil {
		panic(err)
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for _, group := range groups {
		group := group
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			if _, err := db.Append(ctx, group...); err != nil {
				slog.Error("append failed", "conversation", group[0].ConversationId, "err", err)
				return
			}
			bar.Add(len(group))
		})
		if err != nil {
			wg.Done()
			slog.Error("failed to submit batch", "err", err)
		}
	}
	wg.Wait()
	bar.Finish()

	// Drain the embedding backlog synchronously.
	pipelineConfig := pipeline.DefaultConfig()
	pipelineConfig.StartupDelay = 0
	p, err := db.NewPipeline(pipeline.WithConfig(pipelineConfig))
	if err != nil {
		panic(err)
	}

	embedBar := progressbar.Default(int64(total), "embedding")
	for {
		processed, err := p.RunCycle(ctx)
		if err != nil {
			panic(err)
		}
		if processed == 0 {
			break
		}
		embedBar.Add(processed)
	}
	embedBar.Finish()

	fmt.Printf("seeded %d records in %d conversations\n", total, len(groups))
}
