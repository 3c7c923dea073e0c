package search

import (
	"strings"
	"time"

	"github.com/svnscha/knowledge/core"
)

// Hit is a single matched record together with its cosine distance from the
// query embedding. Smaller distances mean closer matches.
type Hit struct {
	Record   *core.Record
	Distance float32
}

// Result is the outcome of one search. Hits are ordered chronologically by
// the records' creation time, oldest first, regardless of how closely each
// one matched.
type Result struct {
	Query string
	Hits  []Hit
}

// Empty reports whether the search matched nothing.
func (r *Result) Empty() bool {
	return len(r.Hits) == 0
}

// Render formats the result for human consumption, one line per hit:
//
//	[2025-03-14T09:26:53Z] user: The sky is blue
//
// An empty result renders an explicit no-results message so callers never
// have to distinguish "no answer" from "empty string".
func (r *Result) Render() string {
	if r.Empty() {
		return "No relevant results found."
	}

	var b strings.Builder
	for i, hit := range r.Hits {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteByte('[')
		b.WriteString(hit.Record.CreatedAt.UTC().Format(time.RFC3339))
		b.WriteString("] ")
		b.WriteString(hit.Record.Role.String())
		b.WriteString(": ")
		b.WriteString(hit.Record.Content)
	}
	return b.String()
}
