/*
# Module: pkg/server/graphql/server.go
GraphQL HTTP server over a live dependency graph.

Provides an HTTP handler for GraphQL queries with an optional GraphiQL
playground, and stashes the graph in each request's context so nested
field resolvers (Node.dependencies/dependents) can look up sibling
nodes.

## Linked Modules
- [../../depgraph](../../depgraph/graph.go) - Graph data structure
- [./schema](./schema.go) - GraphQL schema
- [./resolvers](./resolvers.go) - GraphQL resolvers

## Tags
graphql, server, http

## Exports
NewHandler, HandlerConfig
*/

package graphql

import (
	"context"
	"net/http"

	"github.com/graphql-go/handler"

	"github.com/bundlecore/bundlecore/pkg/depgraph"
)

// HandlerConfig configures the GraphQL handler.
type HandlerConfig struct {
	EnablePlayground bool
	EnableCORS       bool
}

// NewHandler creates a new read-only GraphQL HTTP handler over g.
func NewHandler(g *depgraph.Graph, config HandlerConfig) (http.Handler, error) {
	schema, err := BuildSchema(g)
	if err != nil {
		return nil, err
	}

	h := handler.New(&handler.Config{
		Schema:     &schema,
		Pretty:     true,
		GraphiQL:   config.EnablePlayground,
		Playground: config.EnablePlayground,
	})

	wrapped := withGraphContext(h, g)

	if config.EnableCORS {
		return corsHandler(wrapped), nil
	}
	return wrapped, nil
}

// withGraphContext stashes g under graphContextKey in every request's
// context before delegating to h, so nested field resolvers can reach it.
func withGraphContext(h http.Handler, g *depgraph.Graph) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), graphContextKey, g)
		h.ServeHTTP(w, r.WithContext(ctx))
	})
}

// corsHandler wraps an HTTP handler with permissive CORS headers - this
// server is meant for local tooling (a repl, an editor plugin), never a
// public deployment.
func corsHandler(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		h.ServeHTTP(w, r)
	})
}
