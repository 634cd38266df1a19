package depgraph

import (
	"errors"
	"sync"
	"testing"
	"time"
)

var errBadNode = errors.New("bad node")

type fakeGraph struct {
	mu   sync.Mutex
	deps map[string][]string
	errs map[string]error
}

func (f *fakeGraph) getDeps(id string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.errs[id]; ok {
		return nil, err
	}
	return append([]string{}, f.deps[id]...), nil
}

func TestTraceLinearChainAddsAllNodesAndCompletesOnce(t *testing.T) {
	fg := &fakeGraph{deps: map[string][]string{
		"a": {"b"},
		"b": {"c"},
		"c": {},
	}}
	g := New(fg.getDeps)

	var completeCount int
	var mu sync.Mutex
	done := make(chan struct{})
	g.On(TopicComplete, func(Event) {
		mu.Lock()
		completeCount++
		mu.Unlock()
		close(done)
	})

	g.SetPermanent("a")
	g.Trace("a")

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for complete")
	}

	time.Sleep(20 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	if completeCount != 1 {
		t.Fatalf("expected exactly one complete event, got %d", completeCount)
	}
	for _, id := range []string{"a", "b", "c"} {
		if !g.IsDefined(id) {
			t.Fatalf("expected node %q to be defined", id)
		}
	}
}

func TestTraceCycleAddsEachNodeOnceAndCompletesOnce(t *testing.T) {
	fg := &fakeGraph{deps: map[string][]string{
		"a": {"b"},
		"b": {"c"},
		"c": {"b"},
	}}
	g := New(fg.getDeps)

	added := waitForTopicAsync(g, TopicAdded)
	completed := waitForTopicAsync(g, TopicComplete)

	g.SetPermanent("a")
	g.Trace("a")

	waitForClose(t, completed.done, 2*time.Second)
	time.Sleep(20 * time.Millisecond)

	added.mu.Lock()
	defer added.mu.Unlock()
	if len(added.events) != 3 {
		t.Fatalf("expected exactly 3 added events, got %d: %+v", len(added.events), added.events)
	}
	completed.mu.Lock()
	defer completed.mu.Unlock()
	if len(completed.events) != 1 {
		t.Fatalf("expected exactly 1 complete event, got %d", len(completed.events))
	}
	if !g.IsDefined("a") || !g.IsDefined("b") || !g.IsDefined("c") {
		t.Fatal("expected all three nodes defined after cycle trace")
	}
	deps := g.Dependencies("c")
	if len(deps) != 1 || deps[0] != "b" {
		t.Fatalf("expected c -> b edge to survive, got %+v", deps)
	}
}

type topicCollector struct {
	mu     sync.Mutex
	events []Event
	done   chan struct{}
}

func waitForTopicAsync(g *Graph, topic Topic) *topicCollector {
	c := &topicCollector{done: make(chan struct{})}
	g.On(topic, func(e Event) {
		c.mu.Lock()
		c.events = append(c.events, e)
		c.mu.Unlock()
		select {
		case <-c.done:
		default:
			close(c.done)
		}
	})
	return c
}

func waitForClose(t *testing.T, ch chan struct{}, timeout time.Duration) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(timeout):
		t.Fatal("timed out waiting for event")
	}
}

func TestPruneWithNoPermanentRootsRemovesEntireCycle(t *testing.T) {
	fg := &fakeGraph{deps: map[string][]string{
		"a": {"b"},
		"b": {"c"},
		"c": {"b"},
	}}
	g := New(fg.getDeps)

	completed := waitForTopicAsync(g, TopicComplete)
	g.Trace("a")
	waitForClose(t, completed.done, 2*time.Second)
	time.Sleep(20 * time.Millisecond)

	pruned := waitForTopicAsync(g, TopicPruned)
	g.Prune("a")
	waitForClose(t, pruned.done, 2*time.Second)
	time.Sleep(20 * time.Millisecond)

	pruned.mu.Lock()
	defer pruned.mu.Unlock()
	if len(pruned.events) != 3 {
		t.Fatalf("expected 3 pruned events, got %d: %+v", len(pruned.events), pruned.events)
	}
	if g.IsDefined("a") || g.IsDefined("b") || g.IsDefined("c") {
		t.Fatal("expected all nodes removed")
	}
}

func TestPruneWithPermanentRootKeepsReachableSurvivors(t *testing.T) {
	fg := &fakeGraph{deps: map[string][]string{
		"a": {"b"},
		"b": {"c"},
		"c": {"b"},
	}}
	g := New(fg.getDeps)

	completed := waitForTopicAsync(g, TopicComplete)
	g.SetPermanent("c")
	g.Trace("a")
	waitForClose(t, completed.done, 2*time.Second)
	time.Sleep(20 * time.Millisecond)

	pruned := waitForTopicAsync(g, TopicPruned)
	g.Prune("a")
	waitForClose(t, pruned.done, 2*time.Second)
	time.Sleep(20 * time.Millisecond)

	pruned.mu.Lock()
	defer pruned.mu.Unlock()
	if len(pruned.events) != 1 || pruned.events[0].ID != "a" {
		t.Fatalf("expected exactly one pruned event for a, got %+v", pruned.events)
	}
	if g.IsDefined("a") {
		t.Fatal("expected a removed")
	}
	if !g.IsDefined("b") || !g.IsDefined("c") {
		t.Fatal("expected b and c to survive, reachable from permanent root c")
	}
}

func TestPruneIsIdempotent(t *testing.T) {
	fg := &fakeGraph{deps: map[string][]string{"a": {}}}
	g := New(fg.getDeps)

	completed := waitForTopicAsync(g, TopicComplete)
	g.Trace("a")
	waitForClose(t, completed.done, 2*time.Second)
	time.Sleep(10 * time.Millisecond)

	g.Prune("a")
	if g.IsDefined("a") {
		t.Fatal("expected a removed after first prune")
	}

	var secondPruneFired bool
	g.On(TopicPruned, func(Event) { secondPruneFired = true })
	g.Prune("a")
	time.Sleep(10 * time.Millisecond)
	if secondPruneFired {
		t.Fatal("expected second prune of an already-absent node to be a no-op")
	}
}

func TestPruneInvalidatesPendingJobAndSuppressesAddedEvents(t *testing.T) {
	fg := &fakeGraph{deps: map[string][]string{
		"a":    {"slow"},
		"slow": {"child"},
	}}
	g := New(func(id string) ([]string, error) {
		if id == "slow" {
			time.Sleep(100 * time.Millisecond)
		}
		return fg.getDeps(id)
	})

	var addedForChild, addedForSlow bool
	var mu sync.Mutex
	g.On(TopicAdded, func(e Event) {
		mu.Lock()
		defer mu.Unlock()
		switch e.ID {
		case "child":
			addedForChild = true
		case "slow":
			addedForSlow = true
		}
	})

	g.Trace("a")
	time.Sleep(20 * time.Millisecond)
	g.Prune("slow")

	time.Sleep(200 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	if addedForSlow {
		t.Fatal("did not expect slow itself to be added once pruned before its own resolution completed")
	}
	if addedForChild {
		t.Fatal("did not expect child of a pruned-before-resolution node to ever be added")
	}
	if g.IsDefined("slow") {
		t.Fatal("expected slow to remain absent after being pruned mid-trace")
	}
	if g.IsDefined("child") {
		t.Fatal("expected child to never have been added")
	}
}

func TestFailedNodeIsNeverAdded(t *testing.T) {
	fg := &fakeGraph{
		deps: map[string][]string{"a": {"bad"}},
		errs: map[string]error{"bad": errBadNode},
	}
	g := New(fg.getDeps)

	errored := waitForTopicAsync(g, TopicError)
	completed := waitForTopicAsync(g, TopicComplete)

	g.SetPermanent("a")
	g.Trace("a")

	waitForClose(t, completed.done, 2*time.Second)
	time.Sleep(20 * time.Millisecond)

	errored.mu.Lock()
	gotError := len(errored.events) == 1 && errored.events[0].ID == "bad"
	errored.mu.Unlock()
	if !gotError {
		t.Fatalf("expected exactly one error event for \"bad\", got %+v", errored.events)
	}

	if !g.IsDefined("a") {
		t.Fatal("expected a to be defined")
	}
	if g.IsDefined("bad") {
		t.Fatal("expected bad to never be added as a node since its own trace errored")
	}
	if deps := g.Dependencies("a"); len(deps) != 0 {
		t.Fatalf("expected no edge to a node that never resolved, got %+v", deps)
	}
}

func TestIsDefinedReflectsNodePresence(t *testing.T) {
	fg := &fakeGraph{deps: map[string][]string{"a": {}}}
	g := New(fg.getDeps)
	if g.IsDefined("a") {
		t.Fatal("expected a undefined before any trace")
	}
	completed := waitForTopicAsync(g, TopicComplete)
	g.Trace("a")
	waitForClose(t, completed.done, time.Second)
	if !g.IsDefined("a") {
		t.Fatal("expected a defined after trace completes")
	}
}

func TestDependentsAndPermanentRootAccessors(t *testing.T) {
	fg := &fakeGraph{deps: map[string][]string{
		"a": {"b"},
		"b": {},
	}}
	g := New(fg.getDeps)

	completed := waitForTopicAsync(g, TopicComplete)
	g.SetPermanent("a")
	g.Trace("a")
	waitForClose(t, completed.done, time.Second)

	if !g.IsPermanent("a") {
		t.Fatal("expected a to be a permanent root")
	}
	if g.IsPermanent("b") {
		t.Fatal("did not expect b to be a permanent root")
	}
	roots := g.PermanentRoots()
	if len(roots) != 1 || roots[0] != "a" {
		t.Fatalf("expected permanent roots [a], got %v", roots)
	}

	dependents := g.Dependents("b")
	if len(dependents) != 1 || dependents[0] != "a" {
		t.Fatalf("expected b's dependents to be [a], got %v", dependents)
	}

	if g.PendingCount() != 0 {
		t.Fatalf("expected zero pending jobs after completion, got %d", g.PendingCount())
	}
}
