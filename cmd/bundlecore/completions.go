/*
# Module: cmd/bundlecore/completions.go
Shell completion generation and dynamic flag completions.

## Linked Modules
- [root](./root.go) - Root command

## Tags
cli, completion, autocomplete

## Exports
completionCmd
*/

package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var completionCmd = &cobra.Command{
	Use:       "completion [bash|zsh|fish]",
	Short:     "Generate shell completion script",
	ValidArgs: []string{"bash", "zsh", "fish"},
	Args:      cobra.ExactValidArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(os.Stdout)
		case "zsh":
			return rootCmd.GenZshCompletion(os.Stdout)
		case "fish":
			return rootCmd.GenFishCompletion(os.Stdout, true)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)
	completionCmd.ValidArgsFunction = shellCompletion
}

// outputFormatCompletion provides completion for --format flag values.
func outputFormatCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	formats := []string{"table", "json"}

	var completions []string
	for _, format := range formats {
		if strings.HasPrefix(format, toComplete) {
			completions = append(completions, format)
		}
	}
	return completions, cobra.ShellCompDirectiveNoFileComp
}

// shellCompletion provides completion for the completion command's shell
// argument.
func shellCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	shells := []string{"bash", "zsh", "fish"}

	var completions []string
	for _, shell := range shells {
		if strings.HasPrefix(shell, toComplete) {
			completions = append(completions, shell)
		}
	}
	return completions, cobra.ShellCompDirectiveNoFileComp
}

func registerCompletions() error {
	return traceCmd.RegisterFlagCompletionFunc("format", outputFormatCompletion)
}
