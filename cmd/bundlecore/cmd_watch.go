/*
# Module: cmd/bundlecore/cmd_watch.go
Watch command for live re-tracing on file change.

## Linked Modules
- [../../pkg/watch](../../pkg/watch/watcher.go) - File system watcher
- [../../pkg/tracer](../../pkg/tracer/tracer.go) - Tracer driver
- [root](./root.go) - Root command

## Tags
cli, watch, monitoring

## Exports
watchCmd
*/

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/bundlecore/bundlecore/pkg/cli"
	"github.com/bundlecore/bundlecore/pkg/record"
	"github.com/bundlecore/bundlecore/pkg/resolver"
	"github.com/bundlecore/bundlecore/pkg/tracer"
	"github.com/bundlecore/bundlecore/pkg/transform"
	"github.com/bundlecore/bundlecore/pkg/watch"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch <entry...>",
	Short: "Keep a tracer warm and re-trace on file change",
	Long: `Trace the given entries, then keep watching their source tree.

On every settled batch of file changes, the changed files are invalidated
(pruned from the graph and forgotten from the record store) and
re-traced. Once the re-traces are dispatched, the graph's node count is
printed; it does not wait for them to complete.

Examples:
  bundlecore watch src/index.js
  bundlecore watch src/index.js --debounce 500ms`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 300*time.Millisecond, "debounce duration for batching changes")
}

func runWatch(cmd *cobra.Command, args []string) error {
	out := cli.NewOutputFormatter(quiet, verbose, noColor)
	gray := color.New(color.FgHiBlack)

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

	res := resolver.NewResolver(runtimeCfg.CoreShims)
	parser := transform.DefaultParser{}
	store := record.NewStore(runtimeCfg, res, parser,
		transform.DefaultTransformer{Parser: parser},
		transform.DefaultGenerator{},
		transform.DefaultCSSProcessor{},
	)
	tr := tracer.New(store)

	out.Info("building initial trace...")
	summary, err := tr.Trace(context.Background(), entries)
	if err != nil {
		return fmt.Errorf("initial trace failed: %w", err)
	}
	out.TraceSummary(summary)

	watchOpts := watch.DefaultWatchOptions()
	watchOpts.Path = sourceRoot
	watchOpts.Debounce = watchDebounce
	watchOpts.Verbose = verbose

	watcher, err := watch.NewWatcher(tr, watchOpts, func(changed []string, s *tracer.Summary) {
		gray.Printf("\n[change detected: %d file(s)]\n", len(changed))
		if verbose {
			for _, f := range changed {
				rel, _ := filepath.Rel(sourceRoot, f)
				fmt.Printf("  - %s\n", rel)
			}
		}
		out.TraceSummary(s)
	})
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	watcher.Start()
	defer watcher.Stop()

	out.Success("watching %s", sourceRoot)
	gray.Println("press Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	fmt.Println()
	out.Success("watch stopped")
	return nil
}
