/*
# Module: pkg/depgraph/graph.go
Async dependency graph: trace, invalidation, permanent-root-anchored
pruning, and event emission.

A Graph tracks which files (nodes, identified by path) depend on which
others, discovered incrementally by dispatching a trace job per node and
recursing into newly discovered dependencies. Structural mutations
(nodes, edges, the pending-job set) are all serialized behind one mutex;
trace jobs themselves run concurrently as goroutines, suspending only on
the caller-supplied getDependencies callback.

A node is added - and its Added event fired - only once its own
getDependencies call succeeds; a node whose call errors or gets
invalidated mid-flight is never added. An edge whose target hasn't
resolved yet is queued in pendingEdges and wired in once that target's
node is created, so a failed or pruned dependency simply never
materializes an edge pointing at it.

## Linked Modules
- [../record](../record/store.go) - Supplies getDependencies via resolvedDependencies
- [../tracer](../tracer/tracer.go) - Driver that seeds entries and awaits completion

## Tags
depgraph, trace, pruning, events

## Exports
Topic, Event, Node, GetDependencies, Graph, New
*/

package depgraph

import (
	"sync"
	"sync/atomic"
)

// Topic names one of the graph's event bus topics.
type Topic string

const (
	TopicStart    Topic = "start"
	TopicComplete Topic = "complete"
	TopicAdded    Topic = "added"
	TopicPruned   Topic = "pruned"
	TopicError    Topic = "error"
	TopicTracing  Topic = "tracing"
	TopicTraced   Topic = "traced"
)

// Event is published on every graph event bus topic.
type Event struct {
	Topic Topic
	ID    string
	Err   error
}

// Node is one file in the graph. Dependencies and Dependents are kept in
// sync: for every edge a -> b, b is in a's Dependencies iff a is in b's
// Dependents.
type Node struct {
	ID           string
	Dependencies map[string]struct{}
	Dependents   map[string]struct{}
}

func newNode(id string) *Node {
	return &Node{ID: id, Dependencies: make(map[string]struct{}), Dependents: make(map[string]struct{})}
}

// GetDependencies resolves the dependency ids of id. It is the bridge
// between the graph and whatever produces dependency edges (the record
// store's resolvedDependencies job, in this repository).
type GetDependencies func(id string) ([]string, error)

type pendingJob struct {
	id    string
	valid atomic.Bool
}

func newPendingJob(id string) *pendingJob {
	j := &pendingJob{id: id}
	j.valid.Store(true)
	return j
}

// Graph is the directed, cyclic dependency graph one trace operates
// over. Zero value is not usable; construct with New.
type Graph struct {
	getDependencies GetDependencies

	mu             sync.Mutex
	nodes          map[string]*Node
	permanentRoots map[string]struct{}
	pending        map[string]*pendingJob
	pendingEdges   map[string][]string // dep id -> source ids awaiting dep's node
	activeJobs     int
	dispatchedEver bool

	listenersMu sync.Mutex
	listeners   map[Topic][]func(Event)
}

// New creates an empty graph bound to the given dependency-resolution
// callback.
func New(getDependencies GetDependencies) *Graph {
	return &Graph{
		getDependencies: getDependencies,
		nodes:           make(map[string]*Node),
		permanentRoots:  make(map[string]struct{}),
		pending:         make(map[string]*pendingJob),
		pendingEdges:    make(map[string][]string),
		listeners:       make(map[Topic][]func(Event)),
	}
}

// On registers fn to be called for every event published on topic.
func (g *Graph) On(topic Topic, fn func(Event)) {
	g.listenersMu.Lock()
	defer g.listenersMu.Unlock()
	g.listeners[topic] = append(g.listeners[topic], fn)
}

func (g *Graph) emit(topic Topic, id string, err error) {
	g.listenersMu.Lock()
	fns := append([]func(Event){}, g.listeners[topic]...)
	g.listenersMu.Unlock()
	for _, fn := range fns {
		fn(Event{Topic: topic, ID: id, Err: err})
	}
}

// IsDefined reports whether id currently has a node in the graph.
func (g *Graph) IsDefined(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.nodes[id]
	return ok
}

// NodeCount returns the current number of nodes in the graph.
func (g *Graph) NodeCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.nodes)
}

// Nodes returns a snapshot of every node id currently in the graph.
func (g *Graph) Nodes() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	return ids
}

// Dependencies returns a snapshot of id's dependency ids, or nil if id
// has no node.
func (g *Graph) Dependencies(id string) []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	n, ok := g.nodes[id]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(n.Dependencies))
	for dep := range n.Dependencies {
		out = append(out, dep)
	}
	return out
}

// Dependents returns a snapshot of id's dependent ids (nodes that depend
// on id), or nil if id has no node.
func (g *Graph) Dependents(id string) []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	n, ok := g.nodes[id]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(n.Dependents))
	for dep := range n.Dependents {
		out = append(out, dep)
	}
	return out
}

// IsPermanent reports whether id is marked as a permanent root.
func (g *Graph) IsPermanent(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.permanentRoots[id]
	return ok
}

// PermanentRoots returns a snapshot of every permanent root id.
func (g *Graph) PermanentRoots() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]string, 0, len(g.permanentRoots))
	for id := range g.permanentRoots {
		out = append(out, id)
	}
	return out
}

// PendingCount returns the number of trace jobs currently in flight.
func (g *Graph) PendingCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.pending)
}

// SetPermanent idempotently marks id as a permanent root: after any
// prune, every surviving node must be reachable from some permanent
// root.
func (g *Graph) SetPermanent(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.permanentRoots[id] = struct{}{}
}

// Trace enqueues a trace job for id if one isn't already in flight and
// id doesn't already have a node. The node/pending-job check and
// registration happen under a single lock acquisition so concurrent
// callers discovering the same id never double-dispatch. id's node
// itself is not created here; it is created by resolve once id's own
// getDependencies call succeeds.
func (g *Graph) Trace(id string) {
	g.mu.Lock()
	_, hadNode := g.nodes[id]
	pj, hadPending := g.pending[id]
	pendingValid := hadPending && pj.valid.Load()
	needsTrace := !hadNode && !pendingValid

	var job *pendingJob
	var firstEver bool
	if needsTrace {
		job = newPendingJob(id)
		g.pending[id] = job
		g.activeJobs++
		if !g.dispatchedEver {
			g.dispatchedEver = true
			firstEver = true
		}
	}
	g.mu.Unlock()

	if firstEver {
		g.emit(TopicStart, id, nil)
	}
	if needsTrace {
		g.emit(TopicTracing, id, nil)
		go g.runTrace(id, job)
	}
}

func (g *Graph) runTrace(id string, job *pendingJob) {
	if !job.valid.Load() {
		g.finishJob(id, job)
		return
	}

	deps, err := g.getDependencies(id)

	if !job.valid.Load() {
		g.finishJob(id, job)
		return
	}
	if err != nil {
		g.emit(TopicError, id, err)
		g.finishJob(id, job)
		return
	}

	g.resolve(id, deps)

	g.emit(TopicTraced, id, nil)
	g.finishJob(id, job)
}

// dispatchRequest is a trace job resolve decided to start for a newly
// discovered dependency, queued up to run outside the lock that decided
// it.
type dispatchRequest struct {
	id  string
	job *pendingJob
}

// resolve runs once id's own getDependencies call has succeeded: it
// creates id's node - wiring in any edge a prior discoverer queued for
// it in pendingEdges while id was still unresolved - then for each
// dependency either wires the edge immediately (if the dependency
// already has a node) or dispatches a trace for it and queues the edge
// to be wired once that trace succeeds. Everything that decides graph
// structure happens under one lock acquisition so concurrent resolvers
// can't race over the same dependency.
func (g *Graph) resolve(id string, deps []string) {
	g.mu.Lock()
	isNewNode := g.ensureNodeLocked(id)

	var dispatches []dispatchRequest
	for _, dep := range deps {
		if depNode, ok := g.nodes[dep]; ok {
			g.nodes[id].Dependencies[dep] = struct{}{}
			depNode.Dependents[id] = struct{}{}
			continue
		}

		g.pendingEdges[dep] = append(g.pendingEdges[dep], id)

		pj, hadPending := g.pending[dep]
		if hadPending && pj.valid.Load() {
			continue
		}
		job := newPendingJob(dep)
		g.pending[dep] = job
		g.activeJobs++
		dispatches = append(dispatches, dispatchRequest{id: dep, job: job})
	}
	g.mu.Unlock()

	if isNewNode {
		g.emit(TopicAdded, id, nil)
	}
	for _, d := range dispatches {
		g.emit(TopicTracing, d.id, nil)
		go g.runTrace(d.id, d.job)
	}
}

// ensureNodeLocked creates id's node if it doesn't already exist, wiring
// in any edges queued in pendingEdges by discoverers that named id as a
// dependency before id's own node existed, and reports whether id's
// node was newly created. Callers must hold g.mu.
func (g *Graph) ensureNodeLocked(id string) bool {
	if _, ok := g.nodes[id]; ok {
		return false
	}

	n := newNode(id)
	g.nodes[id] = n
	for _, src := range g.pendingEdges[id] {
		if srcNode, ok := g.nodes[src]; ok {
			srcNode.Dependencies[id] = struct{}{}
			n.Dependents[src] = struct{}{}
		}
	}
	delete(g.pendingEdges, id)
	return true
}

func (g *Graph) finishJob(id string, job *pendingJob) {
	g.mu.Lock()
	if current, ok := g.pending[id]; ok && current == job {
		delete(g.pending, id)
	}
	g.activeJobs--
	emitComplete := g.activeJobs == 0 && g.dispatchedEver
	g.mu.Unlock()

	if emitComplete {
		g.emit(TopicComplete, "", nil)
	}
}

// Prune removes id and, by a fixed-point forward-reachability
// computation from the remaining permanent roots, any node that becomes
// unreachable as a result. The traversal is iterative (a plain
// breadth-first queue), never recursive, since the graph may contain
// cycles.
func (g *Graph) Prune(id string) {
	g.mu.Lock()
	_, exists := g.nodes[id]
	if !exists {
		pj, hadPending := g.pending[id]
		if hadPending {
			pj.valid.Store(false)
			delete(g.pending, id)
			delete(g.pendingEdges, id)
		}
		g.mu.Unlock()
		if hadPending {
			g.emit(TopicPruned, id, nil)
		}
		return
	}

	remaining := make(map[string]*Node, len(g.nodes)-1)
	for nid, n := range g.nodes {
		if nid != id {
			remaining[nid] = n
		}
	}

	reachable := make(map[string]struct{})
	queue := make([]string, 0, len(g.permanentRoots))
	for root := range g.permanentRoots {
		if _, ok := remaining[root]; !ok {
			continue
		}
		if _, seen := reachable[root]; seen {
			continue
		}
		reachable[root] = struct{}{}
		queue = append(queue, root)
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for dep := range remaining[cur].Dependencies {
			if _, ok := remaining[dep]; !ok {
				continue
			}
			if _, seen := reachable[dep]; seen {
				continue
			}
			reachable[dep] = struct{}{}
			queue = append(queue, dep)
		}
	}

	removed := []string{id}
	for nid := range remaining {
		if _, ok := reachable[nid]; !ok {
			removed = append(removed, nid)
		}
	}

	newNodes := make(map[string]*Node, len(reachable))
	for nid := range reachable {
		old := remaining[nid]
		n := newNode(nid)
		for dep := range old.Dependencies {
			if _, ok := reachable[dep]; ok {
				n.Dependencies[dep] = struct{}{}
			}
		}
		for dep := range old.Dependents {
			if _, ok := reachable[dep]; ok {
				n.Dependents[dep] = struct{}{}
			}
		}
		newNodes[nid] = n
	}
	g.nodes = newNodes

	for _, nid := range removed {
		if pj, ok := g.pending[nid]; ok {
			pj.valid.Store(false)
			delete(g.pending, nid)
		}
	}
	g.mu.Unlock()

	for _, nid := range removed {
		g.emit(TopicPruned, nid, nil)
	}
}
