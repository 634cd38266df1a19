/*
# Module: pkg/repl/completer_test.go
Tests for autocomplete functionality.

## Linked Modules
- [completer](./completer.go) - Completer

## Tags
repl, test, autocomplete
*/

package repl

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/bundlecore/bundlecore/pkg/cache"
	"github.com/bundlecore/bundlecore/pkg/config"
	"github.com/bundlecore/bundlecore/pkg/depgraph"
	"github.com/bundlecore/bundlecore/pkg/record"
	"github.com/bundlecore/bundlecore/pkg/resolver"
	"github.com/bundlecore/bundlecore/pkg/tracer"
	"github.com/bundlecore/bundlecore/pkg/transform"
)

func newTestTracerWithGraph(t *testing.T) *tracer.Tracer {
	t.Helper()
	root := t.TempDir()
	cfg := &config.Config{SourceRoot: root, RootURL: "/assets/", Cache: cache.NewMemCache()}
	res := resolver.NewResolver(nil)
	parser := transform.DefaultParser{}
	store := record.NewStore(cfg, res, parser, transform.DefaultTransformer{Parser: parser}, transform.DefaultGenerator{}, transform.DefaultCSSProcessor{})
	tr := tracer.New(store)

	writeFile(t, filepath.Join(root, "module1.js"), `import "./module2.js";`)
	writeFile(t, filepath.Join(root, "module2.js"), `export const x = 1;`)

	var mu sync.Mutex
	done := make(chan struct{})
	tr.Graph.On(depgraph.TopicComplete, func(depgraph.Event) {
		mu.Lock()
		defer mu.Unlock()
		select {
		case <-done:
		default:
			close(done)
		}
	})

	ref, err := record.NewRef(filepath.Join(root, "module1.js"))
	if err != nil {
		t.Fatalf("NewRef failed: %v", err)
	}
	tr.Graph.SetPermanent(string(ref))
	tr.Graph.Trace(string(ref))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for trace to complete")
	}
	return tr
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func TestNewCompleter(t *testing.T) {
	tr := newTestTracerWithGraph(t)
	completer := NewCompleter(tr)

	if completer == nil {
		t.Fatal("expected non-nil completer")
	}
	if completer.tracer != tr {
		t.Error("completer tracer mismatch")
	}
}

func TestCompleterGetNodes(t *testing.T) {
	tr := newTestTracerWithGraph(t)
	completer := NewCompleter(tr)

	nodes := completer.GetNodes()
	if len(nodes) != 2 {
		t.Fatalf("expected 2 nodes, got %d", len(nodes))
	}
}

func TestCompleterGetCommands(t *testing.T) {
	tr := newTestTracerWithGraph(t)
	completer := NewCompleter(tr)

	commands := completer.GetCommands()
	foundHelp := false
	foundNodes := false
	for _, cmd := range commands {
		if cmd == ".help" {
			foundHelp = true
		}
		if cmd == ".nodes" {
			foundNodes = true
		}
	}
	if !foundHelp {
		t.Error("expected .help command")
	}
	if !foundNodes {
		t.Error("expected .nodes command")
	}
}

func TestFilterSuggestions(t *testing.T) {
	suggestions := []string{
		".help",
		".history",
		".format",
		".dependents",
		".nodes",
	}

	tests := []struct {
		prefix   string
		expected int
	}{
		{"", 5},
		{".h", 2},
		{".format", 1},
		{".d", 1},
		{".nonexistent", 0},
	}

	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			filtered := FilterSuggestions(suggestions, tt.prefix)
			if len(filtered) != tt.expected {
				t.Errorf("expected %d suggestions for prefix %q, got %d", tt.expected, tt.prefix, len(filtered))
			}
		})
	}
}
