/*
# Module: cmd/bundlecore/root.go
Root command for the bundlecore CLI.

Defines the root command with global flags; each subcommand file
registers itself onto rootCmd from its own init().

## Linked Modules
- [main](./main.go) - CLI entry point
- [config](./config.go) - Configuration handling

## Tags
cli, root, cobra

## Exports
rootCmd
*/

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
	noColor bool
	quiet   bool
)

// rootCmd is the base command when bundlecore is invoked without a
// subcommand.
var rootCmd = &cobra.Command{
	Use:   "bundlecore",
	Short: "Incremental dependency-graph tracer and content pipeline",
	Long: `bundlecore traces a JS/CSS/JSON entry point into a dependency graph
by memoizing per-file jobs (hash, AST, resolved dependencies, emitted
module code) in a job cache, and keeps that graph warm across file
changes.

Use "trace" for a one-shot build, "watch" to keep tracing as files
change, "serve" to expose the live graph over GraphQL, and "repl" for
an interactive shell over a traced graph.`,
	Version: Version,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file read into viper; trace, watch, serve and repl do not use it and always load <entry dir>/.bundlecore/config.yaml")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "minimal output (for scripting)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("%s v%s\n", Name, Version)
	},
}
