/*
# Module: cmd/bundlecore/output.go
Table rendering helpers for CLI commands.

## Linked Modules
- [cmd_trace](./cmd_trace.go) - Trace command

## Tags
cli, output, table

## Exports
printNodeTable
*/

package main

import (
	"os"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/bundlecore/bundlecore/pkg/tracer"
)

// printNodeTable renders a trace summary's traced nodes as a table.
func printNodeTable(summary *tracer.Summary) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"#", "node"})

	for i, node := range summary.Nodes {
		t.AppendRow(table.Row{i + 1, node})
	}

	t.Render()
}
