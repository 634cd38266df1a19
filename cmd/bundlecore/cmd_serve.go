/*
# Module: cmd/bundlecore/cmd_serve.go
CLI command to start the bundlecore HTTP server.

Traces the given entries, then exposes the resulting graph read-only
over GraphQL.

## Linked Modules
- [../../pkg/server](../../pkg/server/server.go) - HTTP server
- [../../pkg/tracer](../../pkg/tracer/tracer.go) - Tracer driver

## Tags
cli, server, command

## Exports
serveCmd
*/

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bundlecore/bundlecore/pkg/record"
	"github.com/bundlecore/bundlecore/pkg/resolver"
	"github.com/bundlecore/bundlecore/pkg/server"
	"github.com/bundlecore/bundlecore/pkg/tracer"
	"github.com/bundlecore/bundlecore/pkg/transform"
)

var (
	serveHost string
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve <entry...>",
	Short: "Trace entries and serve the graph over GraphQL",
	Long: `Trace the given entries, then start an HTTP server exposing the
traced dependency graph read-only over GraphQL.

Examples:
  bundlecore serve src/index.js
  bundlecore serve src/index.js --port 9000 --host 0.0.0.0`,
	Args: cobra.MinimumNArgs(1),
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveHost, "host", "localhost", "host to bind the server to")
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "port to listen on")
}

func runServe(cmd *cobra.Command, args []string) error {
	entries := make([]record.Ref, 0, len(args))
	var sourceRoot string
	for _, arg := range args {
		abs, err := filepath.Abs(arg)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", arg, err)
		}
		ref, err := record.NewRef(abs)
		if err != nil {
			return fmt.Errorf("bad entry %s: %w", arg, err)
		}
		entries = append(entries, ref)
		if sourceRoot == "" {
			sourceRoot = filepath.Dir(abs)
		}
	}

	cfg, err := loadConfig(filepath.Join(sourceRoot, ".bundlecore", "config.yaml"))
	if err != nil {
		cfg = DefaultConfig()
	}

	runtimeCfg, cacheSet, err := buildRuntimeConfig(cfg, sourceRoot)
	if err != nil {
		return fmt.Errorf("build runtime config: %w", err)
	}
	if cacheSet != nil {
		defer cacheSet.Close()
	}

	fmt.Println("tracing entries before serving...")

	res := resolver.NewResolver(runtimeCfg.CoreShims)
	parser := transform.DefaultParser{}
	store := record.NewStore(runtimeCfg, res, parser,
		transform.DefaultTransformer{Parser: parser},
		transform.DefaultGenerator{},
		transform.DefaultCSSProcessor{},
	)
	tr := tracer.New(store)

	summary, err := tr.Trace(context.Background(), entries)
	if err != nil {
		return fmt.Errorf("trace failed: %w", err)
	}
	fmt.Printf("traced %d node(s)\n", summary.NodeCount)

	serverConfig := &server.Config{
		Host:             serveHost,
		Port:             servePort,
		ReadTimeout:      30 * time.Second,
		WriteTimeout:     30 * time.Second,
		EnableCORS:       cfg.Server.CORS,
		EnablePlayground: cfg.Server.Playground,
	}

	srv := server.NewServer(serverConfig, tr.Graph)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		fmt.Println("\nshutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Stop(ctx); err != nil {
			log.Printf("error during shutdown: %v", err)
		}
		os.Exit(0)
	}()

	if err := srv.Start(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
