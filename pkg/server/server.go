/*
# Module: pkg/server/server.go
HTTP server exposing the live dependency graph over GraphQL.

## Linked Modules
- [./graphql](./graphql/server.go) - GraphQL handler
- [../depgraph](../depgraph/graph.go) - Graph being served

## Tags
server, http, api

## Exports
Server, Config, DefaultConfig, NewServer
*/

package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/bundlecore/bundlecore/pkg/depgraph"
	graphqlserver "github.com/bundlecore/bundlecore/pkg/server/graphql"
)

// Config holds server configuration.
type Config struct {
	Host             string
	Port             int
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	EnableCORS       bool
	EnablePlayground bool
}

// DefaultConfig returns default server configuration.
func DefaultConfig() *Config {
	return &Config{
		Host:             "localhost",
		Port:             8080,
		ReadTimeout:      30 * time.Second,
		WriteTimeout:     30 * time.Second,
		EnableCORS:       true,
		EnablePlayground: true,
	}
}

// Server is the HTTP server exposing a graph over GraphQL.
type Server struct {
	config *Config
	graph  *depgraph.Graph
	server *http.Server
}

// NewServer creates a new HTTP server over g.
func NewServer(config *Config, g *depgraph.Graph) *Server {
	if config == nil {
		config = DefaultConfig()
	}
	return &Server{config: config, graph: g}
}

// Start starts the HTTP server. It blocks until the server stops or errors.
func (s *Server) Start() error {
	mux := http.NewServeMux()

	graphqlHandler, err := graphqlserver.NewHandler(s.graph, graphqlserver.HandlerConfig{
		EnablePlayground: s.config.EnablePlayground,
		EnableCORS:       s.config.EnableCORS,
	})
	if err != nil {
		return fmt.Errorf("create graphql handler: %w", err)
	}
	mux.Handle("/graphql", graphqlHandler)

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	mux.HandleFunc("/", s.handleRoot)

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	log.Printf("starting bundlecore server on http://%s", addr)
	log.Printf("graphql endpoint: http://%s/graphql", addr)
	if s.config.EnablePlayground {
		log.Printf("graphql playground: http://%s/graphql", addr)
	}

	return s.server.ListenAndServe()
}

// Stop gracefully stops the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{
  "name": "bundlecore API",
  "endpoints": {
    "graphql": {
      "path": "/graphql",
      "methods": ["GET", "POST"],
      "description": "read-only GraphQL introspection of the traced dependency graph"
    },
    "health": {
      "path": "/health",
      "methods": ["GET"],
      "description": "health check endpoint"
    }
  }
}`))
}
