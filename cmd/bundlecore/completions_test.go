/*
# Module: cmd/bundlecore/completions_test.go
Tests for shell completion functions.

## Linked Modules
- [completions](./completions.go) - Completion functions

## Tags
cli, test, completion
*/

package main

import (
	"testing"

	"github.com/spf13/cobra"
)

func TestOutputFormatCompletion(t *testing.T) {
	tests := []struct {
		name       string
		toComplete string
		wantCount  int
		wantItems  []string
	}{
		{
			name:       "empty prefix returns all formats",
			toComplete: "",
			wantCount:  2,
			wantItems:  []string{"table", "json"},
		},
		{
			name:       "t prefix returns table only",
			toComplete: "t",
			wantCount:  1,
			wantItems:  []string{"table"},
		},
		{
			name:       "json prefix returns json only",
			toComplete: "json",
			wantCount:  1,
			wantItems:  []string{"json"},
		},
		{
			name:       "nonexistent prefix returns nothing",
			toComplete: "xyz",
			wantCount:  0,
			wantItems:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &cobra.Command{}
			completions, directive := outputFormatCompletion(cmd, []string{}, tt.toComplete)

			if len(completions) != tt.wantCount {
				t.Errorf("outputFormatCompletion() returned %d items, want %d", len(completions), tt.wantCount)
			}
			if directive != cobra.ShellCompDirectiveNoFileComp {
				t.Errorf("outputFormatCompletion() returned directive %v, want NoFileComp", directive)
			}

			got := make(map[string]bool)
			for _, c := range completions {
				got[c] = true
			}
			for _, want := range tt.wantItems {
				if !got[want] {
					t.Errorf("outputFormatCompletion() missing expected item: %s", want)
				}
			}
		})
	}
}

func TestShellCompletion(t *testing.T) {
	tests := []struct {
		name       string
		toComplete string
		wantCount  int
		wantItems  []string
	}{
		{
			name:       "empty prefix returns all shells",
			toComplete: "",
			wantCount:  3,
			wantItems:  []string{"bash", "zsh", "fish"},
		},
		{
			name:       "b prefix returns bash",
			toComplete: "b",
			wantCount:  1,
			wantItems:  []string{"bash"},
		},
		{
			name:       "z prefix returns zsh",
			toComplete: "z",
			wantCount:  1,
			wantItems:  []string{"zsh"},
		},
		{
			name:       "sh prefix matches none",
			toComplete: "sh",
			wantCount:  0,
			wantItems:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &cobra.Command{}
			completions, directive := shellCompletion(cmd, []string{}, tt.toComplete)

			if len(completions) != tt.wantCount {
				t.Errorf("shellCompletion() returned %d items, want %d", len(completions), tt.wantCount)
			}
			if directive != cobra.ShellCompDirectiveNoFileComp {
				t.Errorf("shellCompletion() returned directive %v, want NoFileComp", directive)
			}

			got := make(map[string]bool)
			for _, c := range completions {
				got[c] = true
			}
			for _, want := range tt.wantItems {
				if !got[want] {
					t.Errorf("shellCompletion() missing expected item: %s", want)
				}
			}
		})
	}
}

func TestRegisterCompletions(t *testing.T) {
	if err := registerCompletions(); err != nil {
		t.Fatalf("registerCompletions failed: %v", err)
	}
}
