// Copyright 2025 svnscha
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/svnscha/knowledge"
	"github.com/svnscha/knowledge/ai"
	"github.com/svnscha/knowledge/config"
	"github.com/svnscha/knowledge/core"
	"github.com/svnscha/knowledge/pipeline"
	"github.com/svnscha/knowledge/search"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "knowledge",
		Usage: "Append-only chat record log with semantic search",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML configuration file",
				Value:   "knowledge.yaml",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the background embedding pipeline until interrupted",
				Action: serveCommand,
			},
			{
				Name:      "append",
				Usage:     "Append a chat message to the record log",
				Action:    appendCommand,
				ArgsUsage: "<message>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "conversation",
						Usage:    "Conversation identifier",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "role",
						Usage: "Message role (user, assistant, system, tool)",
						Value: "user",
					},
					&cli.StringFlag{
						Name:  "author",
						Usage: "Optional author name",
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Search for records similar to a query",
				Action:    searchCommand,
				ArgsUsage: "<query>",
			},
			{
				Name:   "history",
				Usage:  "Show records of a conversation, or the most recent records",
				Action: historyCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "conversation",
						Usage: "Conversation identifier (omit for most recent across all)",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of records",
						Value: 20,
					},
				},
			},
			{
				Name:   "pending",
				Usage:  "List records that are still waiting for an embedding",
				Action: pendingCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of records",
						Value: 50,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// openDatabase opens the database described by the configuration file.
func openDatabase(c *cli.Context) (*knowledge.Database, *config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, nil, err
	}

	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(cfg.Embedding.Host),
		ai.WithEmbeddingModel(cfg.Embedding.Model),
		ai.WithDimension(cfg.Embedding.Dimension),
	)

	db, err := knowledge.NewDatabase(cfg.Database.Path, knowledge.WithAIConfig(aiConfig))
	if err != nil {
		return nil, nil, err
	}
	return db, cfg, nil
}

func serveCommand(c *cli.Context) error {
	db, cfg, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	pipelineConfig, err := cfg.PipelineConfig()
	if err != nil {
		return err
	}

	p, err := db.NewPipeline(pipeline.WithConfig(pipelineConfig))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("serving", "db", cfg.Database.Path, "embeddingHost", cfg.Embedding.Host)
	return p.Run(ctx)
}

func appendCommand(c *cli.Context) error {
	message := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	role, err := core.ParseRole(c.String("role"))
	if err != nil {
		return err
	}

	db, _, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	added, err := db.Append(c.Context, &core.Record{
		ConversationId: c.String("conversation"),
		Role:           role,
		AuthorName:     c.String("author"),
		Content:        message,
	})
	if err != nil {
		return err
	}

	record := added[0]
	fmt.Printf("appended record %d (seq %d)\n", record.Id, record.SequenceNumber)
	return nil
}

func searchCommand(c *cli.Context) error {
	query := strings.Join(c.Args().Slice(), " ")

	db, cfg, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	searchConfig, err := cfg.SearchConfig()
	if err != nil {
		return err
	}

	searcher, err := db.NewSearcher(search.WithConfig(searchConfig))
	if err != nil {
		return err
	}

	result, err := searcher.Search(c.Context, query)
	if err != nil {
		return err
	}

	fmt.Println(result.Render())
	return nil
}

func historyCommand(c *cli.Context) error {
	db, _, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	var records []*core.Record
	if conversation := c.String("conversation"); conversation != "" {
		records, err = db.RecordLog().ListByConversation(c.Context, conversation)
	} else {
		records, err = db.RecordLog().ListRecent(c.Context, c.Int("limit"))
	}
	if err != nil {
		return err
	}

	for _, record := range records {
		printRecord(record)
	}
	return nil
}

func pendingCommand(c *cli.Context) error {
	db, _, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	records, err := db.RecordLog().ListPending(c.Context, c.Int("limit"))
	if err != nil {
		return err
	}

	if len(records) == 0 {
		fmt.Println("no pending records")
		return nil
	}
	for _, record := range records {
		printRecord(record)
	}
	return nil
}

func printRecord(record *core.Record) {
	fmt.Printf("[%s] %s (%s, seq %d): %s\n",
		record.CreatedAt.UTC().Format(time.RFC3339),
		record.Role, record.ConversationId, record.SequenceNumber, record.Content)
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
