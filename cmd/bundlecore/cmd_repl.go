/*
# Module: cmd/bundlecore/cmd_repl.go
CLI command for an interactive query session.

## Linked Modules
- [../../pkg/repl](../../pkg/repl/repl.go) - REPL implementation
- [main](./main.go) - CLI entry point

## Tags
cli, repl, commands

## Exports
replCmd
*/

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bundlecore/bundlecore/pkg/record"
	"github.com/bundlecore/bundlecore/pkg/repl"
	"github.com/bundlecore/bundlecore/pkg/resolver"
	"github.com/bundlecore/bundlecore/pkg/tracer"
	"github.com/bundlecore/bundlecore/pkg/transform"
)

var replCmd = &cobra.Command{
	Use:     "repl <entry...>",
	Aliases: []string{"interactive"},
	Short:   "Trace entries and start an interactive query shell",
	Long: `Start an interactive Read-Eval-Print Loop for exploring a traced
dependency graph.

The REPL provides:
- Node id (file path) lookup showing url, hash, dependencies and dependents
- Command history (up/down arrows) and tab completion
- Table and JSON output formats

Dot-commands:
  .help               Show help and available commands
  .format [table|json] Change output format
  .nodes [substr]     List traced node ids, optionally filtered
  .deps <id>          Show a node's dependencies
  .dependents <id>    Show a node's dependents
  .stats              Show graph statistics
  .history            Show lookup history
  .clear              Clear screen
  .exit               Exit REPL (or Ctrl+D)

Examples:
  bundlecore repl src/index.js
  bundlecore repl src/index.js --no-color`,
	Args: cobra.MinimumNArgs(1),
	RunE: runREPL,
}

func init() {
	rootCmd.AddCommand(replCmd)
}

func runREPL(cmd *cobra.Command, args []string) error {
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

	fmt.Println("tracing entries before starting REPL...")

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
	fmt.Printf("traced %d node(s)\n\n", summary.NodeCount)

	replConfig := &repl.Config{
		HistoryFile: filepath.Join(os.TempDir(), ".bundlecore_history"),
		Prompt:      "bundlecore> ",
		NoColor:     noColor,
	}

	r, err := repl.New(tr, replConfig)
	if err != nil {
		return fmt.Errorf("create REPL: %w", err)
	}

	return r.Run()
}
