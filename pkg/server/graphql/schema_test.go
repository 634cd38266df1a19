package graphql

import (
	"context"
	"testing"

	"github.com/graphql-go/graphql"

	"github.com/bundlecore/bundlecore/pkg/depgraph"
)

func doQuery(t *testing.T, schema graphql.Schema, g *depgraph.Graph, query string) map[string]interface{} {
	t.Helper()
	result := graphql.Do(graphql.Params{
		Schema:        schema,
		RequestString: query,
		Context:       context.WithValue(context.Background(), graphContextKey, g),
	})
	if len(result.Errors) > 0 {
		t.Fatalf("query failed: %v", result.Errors)
	}
	return result.Data.(map[string]interface{})
}

func TestBuildSchema(t *testing.T) {
	g := setupTestGraph(t)

	schema, err := BuildSchema(g)
	if err != nil {
		t.Fatalf("BuildSchema failed: %v", err)
	}
	if schema.QueryType() == nil {
		t.Error("schema missing Query type")
	}
}

func TestNodeQuery(t *testing.T) {
	g := setupTestGraph(t)
	schema, err := BuildSchema(g)
	if err != nil {
		t.Fatalf("BuildSchema failed: %v", err)
	}

	query := `{
		node(id: "/src/a.js") {
			id
			permanent
			dependencyIds
		}
	}`

	data := doQuery(t, schema, g, query)
	node := data["node"].(map[string]interface{})

	if node["id"] != "/src/a.js" {
		t.Errorf("expected id /src/a.js, got %v", node["id"])
	}
	if node["permanent"] != true {
		t.Errorf("expected permanent true, got %v", node["permanent"])
	}
}

func TestNodesQuery(t *testing.T) {
	g := setupTestGraph(t)
	schema, err := BuildSchema(g)
	if err != nil {
		t.Fatalf("BuildSchema failed: %v", err)
	}

	query := `{
		nodes {
			edges {
				node { id }
			}
			totalCount
		}
	}`

	data := doQuery(t, schema, g, query)
	nodes := data["nodes"].(map[string]interface{})

	if nodes["totalCount"] != 3 {
		t.Errorf("expected totalCount 3, got %v", nodes["totalCount"])
	}
	edges := nodes["edges"].([]interface{})
	if len(edges) != 3 {
		t.Errorf("expected 3 edges, got %d", len(edges))
	}
}

func TestNodesQueryWithPermanentFilter(t *testing.T) {
	g := setupTestGraph(t)
	schema, err := BuildSchema(g)
	if err != nil {
		t.Fatalf("BuildSchema failed: %v", err)
	}

	query := `{
		nodes(permanentOnly: true) {
			edges {
				node { id }
			}
			totalCount
		}
	}`

	data := doQuery(t, schema, g, query)
	nodes := data["nodes"].(map[string]interface{})

	if nodes["totalCount"] != 1 {
		t.Errorf("expected totalCount 1, got %v", nodes["totalCount"])
	}
	edges := nodes["edges"].([]interface{})
	edge := edges[0].(map[string]interface{})
	node := edge["node"].(map[string]interface{})
	if node["id"] != "/src/a.js" {
		t.Errorf("expected only /src/a.js, got %v", node["id"])
	}
}

func TestNodesQueryWithPagination(t *testing.T) {
	g := setupTestGraph(t)
	schema, err := BuildSchema(g)
	if err != nil {
		t.Fatalf("BuildSchema failed: %v", err)
	}

	query := `{
		nodes(first: 2) {
			edges {
				node { id }
				cursor
			}
			pageInfo {
				hasNextPage
				hasPreviousPage
			}
			totalCount
		}
	}`

	data := doQuery(t, schema, g, query)
	nodes := data["nodes"].(map[string]interface{})

	edges := nodes["edges"].([]interface{})
	if len(edges) != 2 {
		t.Errorf("expected 2 edges, got %d", len(edges))
	}
	pageInfo := nodes["pageInfo"].(map[string]interface{})
	if pageInfo["hasNextPage"] != true {
		t.Error("expected hasNextPage true")
	}
	if pageInfo["hasPreviousPage"] != false {
		t.Error("expected hasPreviousPage false")
	}
}

func TestSearchNodesQuery(t *testing.T) {
	g := setupTestGraph(t)
	schema, err := BuildSchema(g)
	if err != nil {
		t.Fatalf("BuildSchema failed: %v", err)
	}

	query := `{
		searchNodes(query: "b.js") {
			id
		}
	}`

	data := doQuery(t, schema, g, query)
	nodes := data["searchNodes"].([]interface{})

	if len(nodes) != 1 {
		t.Fatalf("expected 1 match, got %d", len(nodes))
	}
	node := nodes[0].(map[string]interface{})
	if node["id"] != "/src/b.js" {
		t.Errorf("expected /src/b.js, got %v", node["id"])
	}
}

func TestStatsQuery(t *testing.T) {
	g := setupTestGraph(t)
	schema, err := BuildSchema(g)
	if err != nil {
		t.Fatalf("BuildSchema failed: %v", err)
	}

	query := `{
		stats {
			nodeCount
			permanentRootCount
			pendingJobCount
			edgeCount
		}
	}`

	data := doQuery(t, schema, g, query)
	stats := data["stats"].(map[string]interface{})

	if stats["nodeCount"] != 3 {
		t.Errorf("expected nodeCount 3, got %v", stats["nodeCount"])
	}
	if stats["permanentRootCount"] != 1 {
		t.Errorf("expected permanentRootCount 1, got %v", stats["permanentRootCount"])
	}
	if stats["edgeCount"] != 2 {
		t.Errorf("expected edgeCount 2, got %v", stats["edgeCount"])
	}
}

func TestDependenciesQuery(t *testing.T) {
	g := setupTestGraph(t)
	schema, err := BuildSchema(g)
	if err != nil {
		t.Fatalf("BuildSchema failed: %v", err)
	}

	query := `{
		node(id: "/src/a.js") {
			id
			dependencies {
				id
			}
		}
	}`

	data := doQuery(t, schema, g, query)
	node := data["node"].(map[string]interface{})

	deps := node["dependencies"].([]interface{})
	if len(deps) != 1 {
		t.Fatalf("expected 1 dependency, got %d", len(deps))
	}
	dep := deps[0].(map[string]interface{})
	if dep["id"] != "/src/b.js" {
		t.Errorf("expected /src/b.js, got %v", dep["id"])
	}
}

func TestDependentsQuery(t *testing.T) {
	g := setupTestGraph(t)
	schema, err := BuildSchema(g)
	if err != nil {
		t.Fatalf("BuildSchema failed: %v", err)
	}

	query := `{
		node(id: "/src/c.js") {
			id
			dependents {
				id
			}
		}
	}`

	data := doQuery(t, schema, g, query)
	node := data["node"].(map[string]interface{})

	dependents := node["dependents"].([]interface{})
	if len(dependents) != 1 {
		t.Fatalf("expected 1 dependent, got %d", len(dependents))
	}
	dependent := dependents[0].(map[string]interface{})
	if dependent["id"] != "/src/b.js" {
		t.Errorf("expected /src/b.js, got %v", dependent["id"])
	}
}
