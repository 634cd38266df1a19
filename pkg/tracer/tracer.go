/*
# Module: pkg/tracer/tracer.go
Tracer driver.

Bridges a record.Store to a depgraph.Graph: seeds a set of entry refs as
permanent roots, wires getDependencies to the store's resolvedDependencies
job, waits for the graph to go quiet, and hands back a summary. This is
the orchestration layer cmd/bundlecore's trace/watch/serve commands drive
directly; it owns no state of its own beyond the graph and store it was
given.

## Linked Modules
- [../depgraph](../depgraph/graph.go) - Graph being driven
- [../record](../record/store.go) - Supplies resolvedDependencies as getDependencies

## Exports
Summary, FailedNode, Tracer, New
*/

package tracer

import (
	"context"
	"sort"
	"sync"

	"github.com/bundlecore/bundlecore/pkg/depgraph"
	"github.com/bundlecore/bundlecore/pkg/record"
)

// FailedNode records a ref whose dependency resolution raised an error
// during a trace.
type FailedNode struct {
	Ref string
	Err error
}

// Summary reports the outcome of a completed trace.
type Summary struct {
	NodeCount int
	Nodes     []string
	Failed    []FailedNode
}

// Tracer drives a depgraph.Graph from a record.Store's dependency jobs.
type Tracer struct {
	Store *record.Store
	Graph *depgraph.Graph
}

// New creates a Tracer whose graph resolves dependencies through store.
func New(store *record.Store) *Tracer {
	t := &Tracer{Store: store}
	t.Graph = depgraph.New(func(id string) ([]string, error) {
		resolved, err := store.ResolvedDependencies(record.Ref(id))
		if err != nil {
			return nil, err
		}
		out := make([]string, 0, len(resolved))
		for _, ref := range resolved {
			out = append(out, string(ref))
		}
		sort.Strings(out)
		return out, nil
	})
	return t
}

// Trace seeds entries as permanent roots, dispatches a trace job for
// each, and blocks until the graph reports completion or ctx is
// cancelled. Safe to call only once per Tracer; build a new Tracer to
// retrace from scratch.
func (t *Tracer) Trace(ctx context.Context, entries []record.Ref) (*Summary, error) {
	var mu sync.Mutex
	var failed []FailedNode

	t.Graph.On(depgraph.TopicError, func(e depgraph.Event) {
		mu.Lock()
		failed = append(failed, FailedNode{Ref: e.ID, Err: e.Err})
		mu.Unlock()
	})

	done := make(chan struct{})
	var closeOnce sync.Once
	t.Graph.On(depgraph.TopicComplete, func(depgraph.Event) {
		closeOnce.Do(func() { close(done) })
	})

	if len(entries) == 0 {
		return &Summary{}, nil
	}

	for _, ref := range entries {
		t.Graph.SetPermanent(string(ref))
		t.Graph.Trace(string(ref))
	}

	select {
	case <-done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	mu.Lock()
	defer mu.Unlock()
	nodes := t.Graph.Nodes()
	sort.Strings(nodes)
	return &Summary{
		NodeCount: len(nodes),
		Nodes:     nodes,
		Failed:    append([]FailedNode{}, failed...),
	}, nil
}

// Invalidate prunes ref from the graph and discards its memoized record,
// so a subsequent file-change-triggered trace recomputes it from
// scratch. Used by the watch driver.
func (t *Tracer) Invalidate(ref record.Ref) {
	t.Graph.Prune(string(ref))
	t.Store.Forget(ref)
}

// Retrace re-dispatches a trace job for ref, e.g. after Invalidate on a
// file-change event.
func (t *Tracer) Retrace(ref record.Ref) {
	t.Graph.Trace(string(ref))
}
