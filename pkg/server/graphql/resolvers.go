/*
# Module: pkg/server/graphql/resolvers.go
GraphQL resolvers over a live dependency graph.

Implements resolver functions for read-only introspection of a
depgraph.Graph: point lookup, a paginated node listing, and aggregate
stats.

## Linked Modules
- [../../depgraph](../../depgraph/graph.go) - Graph being introspected
- [./schema](./schema.go) - GraphQL schema

## Tags
graphql, resolvers, server

## Exports
Resolver, NewResolver
*/

package graphql

import (
	"encoding/base64"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/graphql-go/graphql"

	"github.com/bundlecore/bundlecore/pkg/depgraph"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// graphContextKey is the context key under which the live graph is
// stashed for nested field resolvers (dependencies/dependents) that need
// to look up sibling nodes.
const graphContextKey contextKey = "graph"

// nodeView is the plain-data shape ModuleType's resolvers project a
// depgraph.Graph node into, so field resolvers don't each re-lock the
// graph.
type nodeView struct {
	id           string
	dependencies []string
	dependents   []string
	permanent    bool
}

// Resolver handles GraphQL query resolution against a live graph.
type Resolver struct {
	graph *depgraph.Graph
}

// NewResolver creates a new resolver bound to g.
func NewResolver(g *depgraph.Graph) *Resolver {
	return &Resolver{graph: g}
}

func (r *Resolver) view(id string) (nodeView, bool) {
	if !r.graph.IsDefined(id) {
		return nodeView{}, false
	}
	return nodeView{
		id:           id,
		dependencies: r.graph.Dependencies(id),
		dependents:   r.graph.Dependents(id),
		permanent:    r.graph.IsPermanent(id),
	}, true
}

// Node resolves the node(id) query.
func (r *Resolver) Node(p graphql.ResolveParams) (interface{}, error) {
	id, _ := p.Args["id"].(string)
	if id == "" {
		return nil, nil
	}
	view, ok := r.view(id)
	if !ok {
		return nil, nil
	}
	return view, nil
}

// Nodes resolves the nodes query with optional permanent-only filtering
// and cursor pagination.
func (r *Resolver) Nodes(p graphql.ResolveParams) (interface{}, error) {
	permanentOnly, _ := p.Args["permanentOnly"].(bool)
	first, hasFirst := p.Args["first"].(int)
	after, _ := p.Args["after"].(string)

	ids := r.graph.Nodes()
	sort.Strings(ids)

	var filtered []string
	for _, id := range ids {
		if permanentOnly && !r.graph.IsPermanent(id) {
			continue
		}
		filtered = append(filtered, id)
	}

	startIdx := 0
	if after != "" {
		if idx, err := decodeCursor(after); err == nil {
			startIdx = idx + 1
		}
	}
	endIdx := len(filtered)
	if hasFirst && startIdx+first < endIdx {
		endIdx = startIdx + first
	}
	if startIdx > len(filtered) {
		startIdx = len(filtered)
	}
	if endIdx < startIdx {
		endIdx = startIdx
	}

	var edges []map[string]interface{}
	for i := startIdx; i < endIdx; i++ {
		view, _ := r.view(filtered[i])
		edges = append(edges, map[string]interface{}{
			"node":   view,
			"cursor": encodeCursor(i),
		})
	}

	pageInfo := map[string]interface{}{
		"hasNextPage":     endIdx < len(filtered),
		"hasPreviousPage": startIdx > 0,
		"startCursor":     nil,
		"endCursor":       nil,
	}
	if len(edges) > 0 {
		pageInfo["startCursor"] = encodeCursor(startIdx)
		pageInfo["endCursor"] = encodeCursor(endIdx - 1)
	}

	return map[string]interface{}{
		"edges":      edges,
		"pageInfo":   pageInfo,
		"totalCount": len(filtered),
	}, nil
}

// SearchNodes resolves the searchNodes query: a substring match over
// node ids (file paths).
func (r *Resolver) SearchNodes(p graphql.ResolveParams) (interface{}, error) {
	query, ok := p.Args["query"].(string)
	if !ok || query == "" {
		return []nodeView{}, nil
	}
	queryLower := strings.ToLower(query)

	ids := r.graph.Nodes()
	sort.Strings(ids)

	var results []nodeView
	for _, id := range ids {
		if strings.Contains(strings.ToLower(id), queryLower) {
			view, _ := r.view(id)
			results = append(results, view)
		}
	}
	return results, nil
}

// Stats resolves the stats query.
func (r *Resolver) Stats(p graphql.ResolveParams) (interface{}, error) {
	ids := r.graph.Nodes()
	totalEdges := 0
	for _, id := range ids {
		totalEdges += len(r.graph.Dependencies(id))
	}

	return map[string]interface{}{
		"nodeCount":          len(ids),
		"permanentRootCount": len(r.graph.PermanentRoots()),
		"pendingJobCount":    r.graph.PendingCount(),
		"edgeCount":          totalEdges,
	}, nil
}

func encodeCursor(idx int) string {
	return base64.StdEncoding.EncodeToString([]byte(fmt.Sprintf("cursor:%d", idx)))
}

func decodeCursor(cursor string) (int, error) {
	decoded, err := base64.StdEncoding.DecodeString(cursor)
	if err != nil {
		return 0, err
	}
	parts := strings.Split(string(decoded), ":")
	if len(parts) != 2 || parts[0] != "cursor" {
		return 0, fmt.Errorf("invalid cursor format")
	}
	return strconv.Atoi(parts[1])
}
