package graphql

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/graphql-go/graphql"

	"github.com/bundlecore/bundlecore/pkg/depgraph"
)

// setupTestGraph builds a->b->c with a marked permanent, fully traced.
func setupTestGraph(t *testing.T) *depgraph.Graph {
	t.Helper()
	deps := map[string][]string{
		"/src/a.js": {"/src/b.js"},
		"/src/b.js": {"/src/c.js"},
		"/src/c.js": {},
	}
	g := depgraph.New(func(id string) ([]string, error) {
		return append([]string{}, deps[id]...), nil
	})

	var mu sync.Mutex
	done := make(chan struct{})
	g.On(depgraph.TopicComplete, func(depgraph.Event) {
		mu.Lock()
		defer mu.Unlock()
		select {
		case <-done:
		default:
			close(done)
		}
	})

	g.SetPermanent("/src/a.js")
	g.Trace("/src/a.js")

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for trace to complete")
	}
	return g
}

func TestNewResolver(t *testing.T) {
	g := setupTestGraph(t)
	resolver := NewResolver(g)
	if resolver == nil {
		t.Fatal("NewResolver returned nil")
	}
	if resolver.graph != g {
		t.Error("Resolver graph not set correctly")
	}
}

func TestResolverNode(t *testing.T) {
	g := setupTestGraph(t)
	resolver := NewResolver(g)

	tests := []struct {
		name  string
		id    string
		isNil bool
	}{
		{name: "found", id: "/src/b.js", isNil: false},
		{name: "not found", id: "/src/missing.js", isNil: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := graphql.ResolveParams{
				Args:    map[string]interface{}{"id": tt.id},
				Context: context.Background(),
			}
			result, err := resolver.Node(params)
			if err != nil {
				t.Fatalf("Node resolver failed: %v", err)
			}
			if tt.isNil {
				if result != nil {
					t.Errorf("expected nil result, got %v", result)
				}
				return
			}
			view, ok := result.(nodeView)
			if !ok {
				t.Fatalf("expected nodeView, got %T", result)
			}
			if view.id != tt.id {
				t.Errorf("expected id %s, got %s", tt.id, view.id)
			}
		})
	}
}

func TestResolverNodes(t *testing.T) {
	g := setupTestGraph(t)
	resolver := NewResolver(g)

	params := graphql.ResolveParams{Args: map[string]interface{}{}, Context: context.Background()}
	result, err := resolver.Nodes(params)
	if err != nil {
		t.Fatalf("Nodes resolver failed: %v", err)
	}
	connection := result.(map[string]interface{})
	if connection["totalCount"].(int) != 3 {
		t.Errorf("expected totalCount 3, got %v", connection["totalCount"])
	}

	permanentParams := graphql.ResolveParams{
		Args:    map[string]interface{}{"permanentOnly": true},
		Context: context.Background(),
	}
	permResult, err := resolver.Nodes(permanentParams)
	if err != nil {
		t.Fatalf("Nodes resolver failed: %v", err)
	}
	permConnection := permResult.(map[string]interface{})
	if permConnection["totalCount"].(int) != 1 {
		t.Errorf("expected 1 permanent node, got %v", permConnection["totalCount"])
	}
}

func TestResolverNodesPagination(t *testing.T) {
	g := setupTestGraph(t)
	resolver := NewResolver(g)

	params := graphql.ResolveParams{
		Args:    map[string]interface{}{"first": 2},
		Context: context.Background(),
	}
	result, err := resolver.Nodes(params)
	if err != nil {
		t.Fatalf("Nodes resolver failed: %v", err)
	}
	connection := result.(map[string]interface{})
	edges := connection["edges"].([]map[string]interface{})
	if len(edges) != 2 {
		t.Fatalf("expected 2 edges, got %d", len(edges))
	}
	pageInfo := connection["pageInfo"].(map[string]interface{})
	if pageInfo["hasNextPage"] != true {
		t.Error("expected hasNextPage true")
	}

	endCursor := pageInfo["endCursor"].(string)
	params2 := graphql.ResolveParams{
		Args:    map[string]interface{}{"first": 2, "after": endCursor},
		Context: context.Background(),
	}
	result2, err := resolver.Nodes(params2)
	if err != nil {
		t.Fatalf("Nodes resolver failed: %v", err)
	}
	connection2 := result2.(map[string]interface{})
	edges2 := connection2["edges"].([]map[string]interface{})
	if len(edges2) != 1 {
		t.Errorf("expected 1 edge, got %d", len(edges2))
	}
	pageInfo2 := connection2["pageInfo"].(map[string]interface{})
	if pageInfo2["hasNextPage"] != false {
		t.Error("expected hasNextPage false")
	}
	if pageInfo2["hasPreviousPage"] != true {
		t.Error("expected hasPreviousPage true")
	}
}

func TestResolverSearchNodes(t *testing.T) {
	g := setupTestGraph(t)
	resolver := NewResolver(g)

	params := graphql.ResolveParams{
		Args:    map[string]interface{}{"query": "b.js"},
		Context: context.Background(),
	}
	result, err := resolver.SearchNodes(params)
	if err != nil {
		t.Fatalf("SearchNodes resolver failed: %v", err)
	}
	views := result.([]nodeView)
	if len(views) != 1 || views[0].id != "/src/b.js" {
		t.Fatalf("expected [/src/b.js], got %+v", views)
	}

	noneParams := graphql.ResolveParams{
		Args:    map[string]interface{}{"query": "xyz123"},
		Context: context.Background(),
	}
	noneResult, err := resolver.SearchNodes(noneParams)
	if err != nil {
		t.Fatalf("SearchNodes resolver failed: %v", err)
	}
	if len(noneResult.([]nodeView)) != 0 {
		t.Fatalf("expected no matches, got %+v", noneResult)
	}
}

func TestResolverStats(t *testing.T) {
	g := setupTestGraph(t)
	resolver := NewResolver(g)

	params := graphql.ResolveParams{Args: map[string]interface{}{}, Context: context.Background()}
	result, err := resolver.Stats(params)
	if err != nil {
		t.Fatalf("Stats resolver failed: %v", err)
	}
	stats := result.(map[string]interface{})

	if stats["nodeCount"] != 3 {
		t.Errorf("expected nodeCount 3, got %v", stats["nodeCount"])
	}
	if stats["permanentRootCount"] != 1 {
		t.Errorf("expected permanentRootCount 1, got %v", stats["permanentRootCount"])
	}
	if stats["pendingJobCount"] != 0 {
		t.Errorf("expected pendingJobCount 0, got %v", stats["pendingJobCount"])
	}
	if stats["edgeCount"] != 2 {
		t.Errorf("expected edgeCount 2, got %v", stats["edgeCount"])
	}
}

func TestEncodeCursor(t *testing.T) {
	cursor := encodeCursor(42)
	if cursor == "" {
		t.Error("expected non-empty cursor")
	}
}

func TestDecodeCursor(t *testing.T) {
	cursor := encodeCursor(42)
	idx, err := decodeCursor(cursor)
	if err != nil {
		t.Fatalf("decodeCursor failed: %v", err)
	}
	if idx != 42 {
		t.Errorf("expected index 42, got %d", idx)
	}

	if _, err := decodeCursor("invalid"); err == nil {
		t.Error("expected error for invalid cursor")
	}
	if _, err := decodeCursor("YWJjZGVm"); err == nil {
		t.Error("expected error for malformed cursor")
	}
}

func TestCursorRoundTrip(t *testing.T) {
	for _, idx := range []int{0, 1, 10, 100, 999} {
		cursor := encodeCursor(idx)
		decoded, err := decodeCursor(cursor)
		if err != nil {
			t.Fatalf("round trip failed: %v", err)
		}
		if decoded != idx {
			t.Errorf("expected %d, got %d", idx, decoded)
		}
	}
}
