/*
# Module: pkg/repl/repl.go
Interactive REPL for exploring a traced dependency graph.

Provides an interactive Read-Eval-Print Loop where a bare line is treated
as a node id (a file path) to look up, with dot-commands for listing
nodes, inspecting edges, and checking graph statistics.

## Linked Modules
- [../tracer](../tracer/tracer.go) - Tracer driving the graph being explored
- [../depgraph](../depgraph/graph.go) - Graph data structure

## Tags
repl, interactive, cli

## Exports
REPL, Config, New
*/

package repl

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/fatih/color"

	"github.com/bundlecore/bundlecore/pkg/record"
	"github.com/bundlecore/bundlecore/pkg/tracer"
)

// Config holds REPL configuration.
type Config struct {
	HistoryFile string
	Prompt      string
	NoColor     bool
	PageSize    int  // number of rows per .nodes page (default: 20)
	Paginate    bool // enable interactive pagination of .nodes listings (true when New is given a nil Config)
}

// REPL is the interactive Read-Eval-Print Loop over a traced graph.
type REPL struct {
	config      *Config
	tracer      *tracer.Tracer
	rl          *readline.Instance
	format      string
	history     []string
	completer   *Completer
	highlighter *Highlighter
}

// New creates a new REPL instance over t.
func New(t *tracer.Tracer, config *Config) (*REPL, error) {
	if config == nil {
		config = &Config{
			HistoryFile: filepath.Join(os.TempDir(), ".bundlecore_history"),
			Prompt:      "bundlecore> ",
			NoColor:     false,
			PageSize:    20,
			Paginate:    true,
		}
	}
	if config.PageSize <= 0 {
		config.PageSize = 20
	}

	rlConfig := &readline.Config{
		Prompt:          config.Prompt,
		HistoryFile:     config.HistoryFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	}

	rl, err := readline.NewEx(rlConfig)
	if err != nil {
		return nil, fmt.Errorf("initialize readline: %w", err)
	}

	completer := NewCompleter(t)
	highlighter := NewHighlighter(config.NoColor)

	r := &REPL{
		config:      config,
		tracer:      t,
		rl:          rl,
		format:      "table",
		history:     make([]string, 0),
		completer:   completer,
		highlighter: highlighter,
	}
	r.setupAutocomplete()

	return r, nil
}

// Run starts the REPL loop.
func (r *REPL) Run() error {
	defer r.rl.Close()

	r.printWelcome()

	for {
		r.rl.SetPrompt(r.config.Prompt)
		line, err := r.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				if len(line) == 0 {
					break
				}
				continue
			}
			if err == io.EOF {
				break
			}
			continue
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ".") {
			if err := r.handleCommand(line); err != nil {
				if err == io.EOF {
					break
				}
				r.printError(err.Error())
			}
			continue
		}

		r.executeLookup(line)
	}

	r.printGoodbye()
	return nil
}

// executeLookup looks up id in the traced graph and prints its record.
func (r *REPL) executeLookup(id string) {
	r.history = append(r.history, id)
	fmt.Println(r.highlighter.HighlightLine(id))

	start := time.Now()
	rec, ok := r.lookupNode(id)
	duration := time.Since(start)

	if !ok {
		r.printError(fmt.Sprintf("no node for %q (try .nodes to list known ids)", id))
		return
	}

	if err := r.formatResult(rec); err != nil {
		r.printError(fmt.Sprintf("format error: %v", err))
		return
	}
	r.printInfo(fmt.Sprintf("looked up in %v", duration))
}

// lookupNode projects id into a nodeRecord using the live graph plus a
// best-effort read of the record store for its url and content hash.
func (r *REPL) lookupNode(id string) (*nodeRecord, bool) {
	g := r.tracer.Graph
	if !g.IsDefined(id) {
		return nil, false
	}

	rec := &nodeRecord{
		ID:           id,
		Permanent:    g.IsPermanent(id),
		Dependencies: g.Dependencies(id),
		Dependents:   g.Dependents(id),
	}

	if ref, err := record.NewRef(id); err == nil {
		if url, err := r.tracer.Store.URL(ref); err == nil {
			rec.URL = url
		}
		if hash, err := r.tracer.Store.Hash(ref); err == nil {
			rec.Hash = hash
		}
	}

	return rec, true
}

// setupAutocomplete configures tab completion.
func (r *REPL) setupAutocomplete() {
	r.rl.Config.AutoComplete = r.completer.GetAutoCompleteFunc()
}

func (r *REPL) printWelcome() {
	nodeCount := len(r.tracer.Graph.Nodes())
	if r.config.NoColor {
		fmt.Println("bundlecore interactive REPL")
		fmt.Println("Type .help for commands, or enter a node id (file path) to inspect it")
		fmt.Printf("Loaded graph with %d node(s)\n", nodeCount)
		fmt.Println()
	} else {
		cyan := color.New(color.FgCyan, color.Bold)
		cyan.Println("bundlecore interactive REPL")
		fmt.Println("Type .help for commands, or enter a node id (file path) to inspect it")
		fmt.Printf("Loaded graph with %d node(s)\n", nodeCount)
		fmt.Println()
	}
}

func (r *REPL) printGoodbye() {
	fmt.Println("\nGoodbye!")
}

func (r *REPL) printError(msg string) {
	if r.config.NoColor {
		fmt.Fprintf(r.rl.Stderr(), "Error: %s\n", msg)
	} else {
		red := color.New(color.FgRed)
		red.Fprintf(r.rl.Stderr(), "Error: %s\n", msg)
	}
}

func (r *REPL) printInfo(msg string) {
	if r.config.NoColor {
		fmt.Println(msg)
	} else {
		cyan := color.New(color.FgCyan)
		cyan.Println(msg)
	}
}

func (r *REPL) printSuccess(msg string) {
	if r.config.NoColor {
		fmt.Println(msg)
	} else {
		green := color.New(color.FgGreen)
		green.Println(msg)
	}
}
