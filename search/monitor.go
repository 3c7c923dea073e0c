package search

import "github.com/svnscha/knowledge/core"

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(query string)
	AfterQueryEmbedding(vector []float32)
	AfterNearestQuery(neighbors []*core.Neighbor)
	AfterRecordResolution(records []*core.Record)
	Finish(result *Result)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                          {}
func (n *noopMonitor) AfterQueryEmbedding(_ []float32)         {}
func (n *noopMonitor) AfterNearestQuery(_ []*core.Neighbor)    {}
func (n *noopMonitor) AfterRecordResolution(_ []*core.Record)  {}
func (n *noopMonitor) Finish(_ *Result)                        {}
