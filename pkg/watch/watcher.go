/*
# Module: pkg/watch/watcher.go
File system watcher driving incremental retracing.

Monitors the source tree for writes/creates/removes, debounces bursts of
related changes (an editor's atomic save is often an unlink followed by
a create), and on settle invalidates and retraces every changed file
through a tracer.Tracer.

## Linked Modules
- [debouncer](./debouncer.go) - Change debouncing
- [../tracer](../tracer/tracer.go) - Invalidate/Retrace driver
- [../record](../record/ref.go) - Ref identity

## Tags
watch, filesystem, monitoring

## Exports
Watcher, WatchOptions, DefaultWatchOptions, NewWatcher
*/

package watch

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bundlecore/bundlecore/pkg/record"
	"github.com/bundlecore/bundlecore/pkg/tracer"
)

// WatchOptions configures watch behavior.
type WatchOptions struct {
	Path           string        // Root path to watch
	Debounce       time.Duration // Debounce duration for batching changes
	IgnorePatterns []string      // Patterns to ignore
	Verbose        bool          // Enable verbose logging
}

// DefaultWatchOptions returns default watch options.
func DefaultWatchOptions() WatchOptions {
	return WatchOptions{
		Path:     ".",
		Debounce: 300 * time.Millisecond,
		IgnorePatterns: []string{
			".git",
			"node_modules",
			"vendor",
			".idea",
			".vscode",
		},
		Verbose: false,
	}
}

// Watcher monitors the source tree and drives a tracer.Tracer on change.
type Watcher struct {
	watcher   *fsnotify.Watcher
	tracer    *tracer.Tracer
	debouncer *Debouncer
	onChange  func(changed []string, summary *tracer.Summary) // invoked after each settle
	opts      WatchOptions
	mu        sync.Mutex
	running   bool
	changes   map[string]bool
}

// NewWatcher creates a watcher over opts.Path that retraces through t on
// every settled batch of changes. onChange, if non-nil, is invoked after
// each batch with the changed paths and a summary of the graph's nodes
// taken as soon as the retraces are dispatched; it does not wait for those
// retraces to complete and carries no failed refs.
func NewWatcher(t *tracer.Tracer, opts WatchOptions, onChange func(changed []string, summary *tracer.Summary)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	w := &Watcher{
		watcher:   fsw,
		tracer:    t,
		debouncer: NewDebouncer(opts.Debounce),
		onChange:  onChange,
		opts:      opts,
		changes:   make(map[string]bool),
	}

	if err := w.watchRecursive(opts.Path); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to setup watches: %w", err)
	}

	return w, nil
}

// watchRecursive adds watches to all directories recursively.
func (w *Watcher) watchRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}

		baseName := filepath.Base(path)
		for _, pattern := range w.opts.IgnorePatterns {
			if strings.Contains(path, pattern) || baseName == pattern {
				if w.opts.Verbose {
					log.Printf("watch: skipping ignored directory %s", path)
				}
				return filepath.SkipDir
			}
		}

		if strings.HasPrefix(baseName, ".") && baseName != "." {
			return filepath.SkipDir
		}

		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		if w.opts.Verbose {
			log.Printf("watch: watching %s", path)
		}
		return nil
	})
}

// Start begins monitoring for file changes.
func (w *Watcher) Start() {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	go func() {
		for {
			select {
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if w.shouldProcess(event) {
					w.trackChange(event.Name)
				}

			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				log.Printf("watch: error: %v", err)
			}
		}
	}()
}

func (w *Watcher) shouldProcess(event fsnotify.Event) bool {
	if event.Op&fsnotify.Write != fsnotify.Write &&
		event.Op&fsnotify.Create != fsnotify.Create &&
		event.Op&fsnotify.Remove != fsnotify.Remove &&
		event.Op&fsnotify.Rename != fsnotify.Rename {
		return false
	}
	for _, pattern := range w.opts.IgnorePatterns {
		if strings.Contains(event.Name, pattern) {
			return false
		}
	}
	return true
}

func (w *Watcher) trackChange(path string) {
	w.mu.Lock()
	w.changes[path] = true
	w.mu.Unlock()

	w.debouncer.Trigger(w.processChanges)
}

// processChanges invalidates and retraces every file in the pending
// batch, then reports the batch and the graph's current nodes without
// waiting for the retraces to complete.
func (w *Watcher) processChanges() {
	w.mu.Lock()
	changed := make([]string, 0, len(w.changes))
	for path := range w.changes {
		changed = append(changed, path)
	}
	w.changes = make(map[string]bool)
	w.mu.Unlock()

	if len(changed) == 0 {
		return
	}
	if w.opts.Verbose {
		log.Printf("watch: processing %d changed file(s)", len(changed))
	}

	var entries []record.Ref
	for _, path := range changed {
		ref, err := record.NewRef(path)
		if err != nil {
			log.Printf("watch: bad ref for %s: %v", path, err)
			continue
		}
		w.tracer.Invalidate(ref)
		entries = append(entries, ref)
	}

	for _, ref := range entries {
		w.tracer.Retrace(ref)
	}

	if w.onChange != nil {
		w.onChange(changed, &tracer.Summary{
			NodeCount: w.tracer.Graph.NodeCount(),
			Nodes:     w.tracer.Graph.Nodes(),
		})
	}
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}
	w.running = false
	w.debouncer.Stop()
	return w.watcher.Close()
}

// IsRunning reports whether the watcher is currently running.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}
