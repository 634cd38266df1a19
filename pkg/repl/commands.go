/*
# Module: pkg/repl/commands.go
REPL command handlers.

Implements REPL dot-commands: .help, .format, .nodes, .deps, .dependents,
.stats, .history, .clear, .exit.

## Linked Modules
- [repl](./repl.go) - REPL core

## Tags
repl, commands, cli
*/

package repl

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// handleCommand processes REPL dot-commands.
func (r *REPL) handleCommand(line string) error {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return nil
	}

	cmd := parts[0]
	args := parts[1:]

	switch cmd {
	case ".help":
		return r.cmdHelp(args)
	case ".format":
		return r.cmdFormat(args)
	case ".nodes":
		return r.cmdNodes(args)
	case ".deps":
		return r.cmdDeps(args)
	case ".dependents":
		return r.cmdDependents(args)
	case ".history":
		return r.cmdHistory(args)
	case ".clear":
		return r.cmdClear(args)
	case ".stats":
		return r.cmdStats(args)
	case ".exit", ".quit":
		return io.EOF
	default:
		return fmt.Errorf("unknown command: %s (type .help for available commands)", cmd)
	}
}

func (r *REPL) cmdHelp(args []string) error {
	help := `
bundlecore REPL Commands:
=========================

Node lookup:
  <id>                Look up a node by its file path

REPL Commands:
  .help               Show this help message
  .format [fmt]       Change output format (table, json)
  .nodes [substring]  List traced nodes, optionally filtered by substring
  .deps <id>          List a node's dependencies
  .dependents <id>    List a node's dependents
  .stats              Show graph statistics
  .history            Show lookup history
  .clear              Clear screen
  .exit               Exit REPL (or Ctrl+D)

Examples:
  /src/app.js
  .nodes app
  .deps /src/app.js
  .format json
  .stats
`
	fmt.Println(help)
	return nil
}

func (r *REPL) cmdFormat(args []string) error {
	if len(args) == 0 {
		r.printInfo(fmt.Sprintf("Current format: %s", r.format))
		r.printInfo("Available formats: table, json")
		return nil
	}

	format := strings.ToLower(args[0])
	switch format {
	case "table", "json":
		r.format = format
		r.printSuccess(fmt.Sprintf("Output format set to: %s", format))
	default:
		return fmt.Errorf("unknown format: %s (available: table, json)", format)
	}
	return nil
}

func (r *REPL) cmdNodes(args []string) error {
	filter := ""
	if len(args) > 0 {
		filter = strings.ToLower(args[0])
	}

	ids := r.tracer.Graph.Nodes()
	sort.Strings(ids)

	var summaries []nodeSummary
	for _, id := range ids {
		if filter != "" && !strings.Contains(strings.ToLower(id), filter) {
			continue
		}
		summaries = append(summaries, nodeSummary{
			ID:              id,
			Permanent:       r.tracer.Graph.IsPermanent(id),
			DependencyCount: len(r.tracer.Graph.Dependencies(id)),
			DependentCount:  len(r.tracer.Graph.Dependents(id)),
		})
	}

	if len(summaries) == 0 {
		r.printInfo("No matching nodes")
		return nil
	}

	if r.config.Paginate && len(summaries) > r.config.PageSize {
		return r.displayPaginatedNodes(summaries)
	}
	return r.formatNodesTable(summaries)
}

func (r *REPL) displayPaginatedNodes(summaries []nodeSummary) error {
	pageSize := r.config.PageSize
	totalPages := (len(summaries) + pageSize - 1) / pageSize
	currentPage := 0

	for {
		start := currentPage * pageSize
		end := start + pageSize
		if end > len(summaries) {
			end = len(summaries)
		}

		fmt.Print("\033[H\033[2J")
		if err := r.formatNodesTable(summaries[start:end]); err != nil {
			return err
		}

		fmt.Println()
		r.printInfo(fmt.Sprintf("Nodes %d-%d of %d (page %d/%d)", start+1, end, len(summaries), currentPage+1, totalPages))

		if totalPages == 1 {
			return nil
		}
		fmt.Print("\n[n]ext  [p]rev  [f]irst  [l]ast  [q]uit: ")

		line, err := r.rl.Readline()
		if err != nil {
			return nil
		}
		switch strings.TrimSpace(strings.ToLower(line)) {
		case "n", "next", "":
			if currentPage < totalPages-1 {
				currentPage++
			}
		case "p", "prev", "previous":
			if currentPage > 0 {
				currentPage--
			}
		case "f", "first":
			currentPage = 0
		case "l", "last":
			currentPage = totalPages - 1
		case "q", "quit", "exit":
			return nil
		}
	}
}

func (r *REPL) cmdDeps(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: .deps <id>")
	}
	id := args[0]
	if !r.tracer.Graph.IsDefined(id) {
		return fmt.Errorf("no node for %q", id)
	}
	deps := r.tracer.Graph.Dependencies(id)
	sort.Strings(deps)
	if len(deps) == 0 {
		r.printInfo("No dependencies")
		return nil
	}
	for _, d := range deps {
		fmt.Println(d)
	}
	return nil
}

func (r *REPL) cmdDependents(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: .dependents <id>")
	}
	id := args[0]
	if !r.tracer.Graph.IsDefined(id) {
		return fmt.Errorf("no node for %q", id)
	}
	dependents := r.tracer.Graph.Dependents(id)
	sort.Strings(dependents)
	if len(dependents) == 0 {
		r.printInfo("No dependents")
		return nil
	}
	for _, d := range dependents {
		fmt.Println(d)
	}
	return nil
}

func (r *REPL) cmdHistory(args []string) error {
	if len(r.history) == 0 {
		r.printInfo("No lookup history")
		return nil
	}
	r.printInfo("Lookup History:")
	r.printInfo("================")
	for i, id := range r.history {
		fmt.Printf("%d: %s\n", i+1, truncate(id, 80))
	}
	return nil
}

func (r *REPL) cmdClear(args []string) error {
	fmt.Print("\033[H\033[2J")
	return nil
}

func (r *REPL) cmdStats(args []string) error {
	g := r.tracer.Graph
	ids := g.Nodes()
	edgeCount := 0
	for _, id := range ids {
		edgeCount += len(g.Dependencies(id))
	}

	r.printInfo("Graph Statistics:")
	r.printInfo("=================")
	fmt.Printf("Total Nodes: %d\n", len(ids))
	fmt.Printf("Permanent Roots: %d\n", len(g.PermanentRoots()))
	fmt.Printf("Pending Jobs: %d\n", g.PendingCount())
	fmt.Printf("Total Edges: %d\n", edgeCount)
	return nil
}

// truncate truncates s to the given length, collapsing embedded newlines.
func truncate(s string, maxLen int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.TrimSpace(s)
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
