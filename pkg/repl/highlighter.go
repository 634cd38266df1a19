/*
# Module: pkg/repl/highlighter.go
Syntax highlighting for node ids and dot-commands.

Provides color highlighting for file extensions and dot-commands typed at
the REPL prompt.

## Linked Modules
- [repl](./repl.go) - REPL core

## Tags
repl, syntax, highlighting, color

## Exports
Highlighter, HighlightLine
*/

package repl

import (
	"regexp"

	"github.com/fatih/color"
)

// Highlighter provides syntax highlighting for REPL input.
type Highlighter struct {
	noColor   bool
	extColor  *color.Color
	cmdColor  *color.Color
	pathColor *color.Color
}

// NewHighlighter creates a new highlighter.
func NewHighlighter(noColor bool) *Highlighter {
	return &Highlighter{
		noColor:   noColor,
		extColor:  color.New(color.FgYellow),
		cmdColor:  color.New(color.FgCyan, color.Bold),
		pathColor: color.New(color.FgGreen),
	}
}

var (
	extPattern = regexp.MustCompile(`\.[a-zA-Z0-9]+$`)
	cmdPattern = regexp.MustCompile(`^\.\w+`)
)

// HighlightLine applies syntax highlighting to a line of REPL input: a
// leading dot-command is highlighted distinctly from a node id's file
// extension.
func (h *Highlighter) HighlightLine(line string) string {
	if h.noColor {
		return line
	}

	if loc := cmdPattern.FindStringIndex(line); loc != nil {
		return h.cmdColor.Sprint(line[:loc[1]]) + line[loc[1]:]
	}

	if loc := extPattern.FindStringIndex(line); loc != nil {
		return h.pathColor.Sprint(line[:loc[0]]) + h.extColor.Sprint(line[loc[0]:])
	}

	return h.pathColor.Sprint(line)
}

// HighlightLine is a convenience function for highlighting a single line.
func HighlightLine(line string, noColor bool) string {
	h := NewHighlighter(noColor)
	return h.HighlightLine(line)
}
