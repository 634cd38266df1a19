/*
# Module: pkg/repl/formatter.go
Output formatters for REPL node lookups.

Provides table and JSON rendering of a single node record and of node
listing pages.

## Linked Modules
- [repl](./repl.go) - REPL core

## Tags
repl, formatter, output
*/

package repl

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// nodeRecord is the detail view of a single looked-up node.
type nodeRecord struct {
	ID           string   `json:"id"`
	Permanent    bool     `json:"permanent"`
	Dependencies []string `json:"dependencies"`
	Dependents   []string `json:"dependents"`
	URL          string   `json:"url,omitempty"`
	Hash         string   `json:"hash,omitempty"`
}

// nodeSummary is one row of a .nodes listing.
type nodeSummary struct {
	ID              string `json:"id"`
	Permanent       bool   `json:"permanent"`
	DependencyCount int    `json:"dependencyCount"`
	DependentCount  int    `json:"dependentCount"`
}

// formatResult renders a single node record in the REPL's current format.
func (r *REPL) formatResult(rec *nodeRecord) error {
	if rec == nil {
		r.printInfo("No such node")
		return nil
	}
	switch r.format {
	case "table":
		return r.formatRecordTable(rec)
	case "json":
		return formatJSON(rec)
	default:
		return fmt.Errorf("unknown format: %s", r.format)
	}
}

func (r *REPL) formatRecordTable(rec *nodeRecord) error {
	label := func(s string) string {
		if r.config.NoColor {
			return s
		}
		return color.New(color.FgCyan, color.Bold).Sprint(s)
	}

	fmt.Printf("%s %s\n", label("id:"), rec.ID)
	fmt.Printf("%s %v\n", label("permanent:"), rec.Permanent)
	if rec.URL != "" {
		fmt.Printf("%s %s\n", label("url:"), rec.URL)
	}
	if rec.Hash != "" {
		fmt.Printf("%s %s\n", label("hash:"), rec.Hash)
	}
	fmt.Printf("%s %d\n", label("dependencies:"), len(rec.Dependencies))
	for _, dep := range rec.Dependencies {
		fmt.Printf("  %s\n", dep)
	}
	fmt.Printf("%s %d\n", label("dependents:"), len(rec.Dependents))
	for _, dep := range rec.Dependents {
		fmt.Printf("  %s\n", dep)
	}
	return nil
}

// formatNodesTable renders a page of node summaries as a table.
func (r *REPL) formatNodesTable(summaries []nodeSummary) error {
	if r.format == "json" {
		return formatJSON(summaries)
	}

	cols := []string{"id", "permanent", "deps", "dependents"}
	widths := map[string]int{"id": len(cols[0]), "permanent": len(cols[1]), "deps": len(cols[2]), "dependents": len(cols[3])}

	rows := make([][4]string, len(summaries))
	for i, s := range summaries {
		rows[i] = [4]string{s.ID, fmt.Sprintf("%v", s.Permanent), fmt.Sprintf("%d", s.DependencyCount), fmt.Sprintf("%d", s.DependentCount)}
		if len(rows[i][0]) > widths["id"] {
			widths["id"] = len(rows[i][0])
		}
	}
	if widths["id"] > 60 {
		widths["id"] = 60
	}

	header := []string{
		padRight(cols[0], widths["id"]),
		padRight(cols[1], widths["permanent"]),
		padRight(cols[2], widths["deps"]),
		padRight(cols[3], widths["dependents"]),
	}
	if r.config.NoColor {
		fmt.Println(strings.Join(header, " | "))
	} else {
		color.New(color.FgCyan, color.Bold).Println(strings.Join(header, " | "))
	}
	fmt.Println(strings.Repeat("-", widths["id"]+widths["permanent"]+widths["deps"]+widths["dependents"]+9))

	for _, row := range rows {
		id := row[0]
		if len(id) > widths["id"] {
			id = id[:widths["id"]-3] + "..."
		}
		fmt.Println(strings.Join([]string{
			padRight(id, widths["id"]),
			padRight(row[1], widths["permanent"]),
			padRight(row[2], widths["deps"]),
			padRight(row[3], widths["dependents"]),
		}, " | "))
	}
	return nil
}

func formatJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

// padRight pads s with spaces to width.
func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
