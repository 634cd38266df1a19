/*
# Module: cmd/bundlecore/cmd_trace.go
Trace command implementation.

Traces one or more entry points to quiescence and prints a summary.

## Linked Modules
- [root](./root.go) - Root command
- [config](./config.go) - Configuration handling
- [../../pkg/tracer](../../pkg/tracer/tracer.go) - Tracer driver
- [../../pkg/cli](../../pkg/cli/output.go) - Output formatter

## Tags
cli, command, trace

## Exports
traceCmd
*/

package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/bundlecore/bundlecore/pkg/cli"
	"github.com/bundlecore/bundlecore/pkg/record"
	"github.com/bundlecore/bundlecore/pkg/resolver"
	"github.com/bundlecore/bundlecore/pkg/tracer"
	"github.com/bundlecore/bundlecore/pkg/transform"
)

var (
	traceNoCache bool
	traceFormat  string
)

var traceCmd = &cobra.Command{
	Use:   "trace <entry...>",
	Short: "Trace entry points to quiescence and print a summary",
	Long: `Trace one or more entry files into a dependency graph.

Each entry is memoized through the record store's per-file jobs (hash,
AST, resolved dependencies) and marked as a permanent root, so pruning
some other node never takes it out of the graph. The command
blocks until the graph goes quiet, then reports the node count, any
failed resolutions, and elapsed time.

Examples:
  bundlecore trace src/index.js
  bundlecore trace src/index.js src/admin.js --format json
  bundlecore trace src/index.js --no-cache`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTrace,
}

func init() {
	rootCmd.AddCommand(traceCmd)
	traceCmd.Flags().BoolVar(&traceNoCache, "no-cache", false, "disable the persistent job cache")
	traceCmd.Flags().StringVarP(&traceFormat, "format", "f", "table", "node listing: table prints a node table after the summary; json prints the summary only (no JSON is emitted)")
}

func runTrace(cmd *cobra.Command, args []string) error {
	start := time.Now()
	out := cli.NewOutputFormatter(quiet, verbose, noColor)

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
		out.Debug("could not load config, using defaults: %v", err)
		cfg = DefaultConfig()
	}
	cfg.Trace.NoCache = cfg.Trace.NoCache || traceNoCache

	runtimeCfg, cacheSet, err := buildRuntimeConfig(cfg, sourceRoot)
	if err != nil {
		return fmt.Errorf("build runtime config: %w", err)
	}
	if cacheSet != nil {
		defer cacheSet.Close()
	}

	out.Header("Tracing")
	out.Info("entries: %d", len(entries))

	res := resolver.NewResolver(runtimeCfg.CoreShims)
	parser := transform.DefaultParser{}
	store := record.NewStore(runtimeCfg, res, parser,
		transform.DefaultTransformer{Parser: parser},
		transform.DefaultGenerator{},
		transform.DefaultCSSProcessor{},
	)
	tr := tracer.New(store)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	summary, err := tr.Trace(ctx, entries)
	if err != nil {
		return fmt.Errorf("trace failed: %w", err)
	}

	out.TraceSummary(summary)
	out.KeyValue("elapsed", time.Since(start))

	if traceFormat == "table" && !quiet {
		printNodeTable(summary)
	}
	return nil
}
