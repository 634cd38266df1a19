/*
# Module: pkg/repl/completer.go
Autocomplete functionality for the REPL.

Provides tab completion for dot-commands and for node ids (file paths)
known to the traced graph.

## Linked Modules
- [repl](./repl.go) - REPL core
- [../tracer](../tracer/tracer.go) - Tracer the completer draws node ids from

## Tags
repl, autocomplete, completion

## Exports
Completer, NewCompleter
*/

package repl

import (
	"sort"
	"strings"
	"unicode"

	"github.com/chzyer/readline"

	"github.com/bundlecore/bundlecore/pkg/tracer"
)

var replCommands = []string{
	".help", ".format", ".nodes", ".deps", ".dependents",
	".stats", ".history", ".clear", ".exit", ".quit",
}

// Completer provides autocomplete functionality over a traced graph.
type Completer struct {
	tracer   *tracer.Tracer
	commands []readline.PrefixCompleterInterface
	nodes    []string
}

// NewCompleter creates a new completer bound to t's graph.
func NewCompleter(t *tracer.Tracer) *Completer {
	c := &Completer{tracer: t}
	c.buildNodeList()
	c.buildCommandList()
	return c
}

func (c *Completer) buildCommandList() {
	c.commands = make([]readline.PrefixCompleterInterface, 0, len(replCommands))
	for _, cmd := range replCommands {
		c.commands = append(c.commands, readline.PcItem(cmd))
	}
	for _, id := range c.nodes {
		c.commands = append(c.commands, readline.PcItem(id))
	}
}

func (c *Completer) buildNodeList() {
	c.nodes = c.tracer.Graph.Nodes()
	sort.Strings(c.nodes)
}

// GetCompleter returns a readline completer.
func (c *Completer) GetCompleter() *readline.PrefixCompleter {
	return readline.NewPrefixCompleter(c.commands...)
}

// GetAutoCompleteFunc returns a context-aware autocomplete function.
func (c *Completer) GetAutoCompleteFunc() readline.AutoCompleter {
	return &contextCompleter{c}
}

type contextCompleter struct {
	completer *Completer
}

func (cc *contextCompleter) Do(line []rune, pos int) (newLine [][]rune, length int) {
	lineStr := string(line[:pos])
	words := strings.Fields(lineStr)
	if len(words) == 0 {
		return nil, 0
	}

	lastWord := ""
	if pos > 0 && !unicode.IsSpace(rune(line[pos-1])) {
		lastWord = words[len(words)-1]
	}

	var suggestions []string
	if strings.HasPrefix(lastWord, ".") {
		suggestions = replCommands
	} else {
		suggestions = cc.completer.nodes
	}

	matches := FilterSuggestions(suggestions, lastWord)
	if len(matches) == 0 {
		return nil, 0
	}

	length = len(lastWord)
	newLine = make([][]rune, len(matches))
	for i, match := range matches {
		completion := match[len(lastWord):]
		newLine[i] = []rune(completion)
	}
	return newLine, length
}

// GetNodes returns the list of known node ids.
func (c *Completer) GetNodes() []string {
	return c.nodes
}

// GetCommands returns the list of dot-commands.
func (c *Completer) GetCommands() []string {
	return append([]string(nil), replCommands...)
}

// FilterSuggestions filters suggestions by case-insensitive prefix.
func FilterSuggestions(suggestions []string, prefix string) []string {
	if prefix == "" {
		return suggestions
	}
	prefix = strings.ToLower(prefix)
	filtered := make([]string, 0)
	for _, suggestion := range suggestions {
		if strings.HasPrefix(strings.ToLower(suggestion), prefix) {
			filtered = append(filtered, suggestion)
		}
	}
	return filtered
}
