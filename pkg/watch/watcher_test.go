package watch

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bundlecore/bundlecore/pkg/cache"
	"github.com/bundlecore/bundlecore/pkg/config"
	"github.com/bundlecore/bundlecore/pkg/record"
	"github.com/bundlecore/bundlecore/pkg/resolver"
	"github.com/bundlecore/bundlecore/pkg/tracer"
	"github.com/bundlecore/bundlecore/pkg/transform"
)

func newTestTracer(root string) *tracer.Tracer {
	cfg := &config.Config{SourceRoot: root, RootURL: "/assets/", Cache: cache.NewMemCache()}
	res := resolver.NewResolver(nil)
	parser := transform.DefaultParser{}
	store := record.NewStore(cfg, res, parser, transform.DefaultTransformer{Parser: parser}, transform.DefaultGenerator{}, transform.DefaultCSSProcessor{})
	return tracer.New(store)
}

func TestNewWatcher(t *testing.T) {
	tmpDir := t.TempDir()
	tr := newTestTracer(tmpDir)

	opts := DefaultWatchOptions()
	opts.Path = tmpDir

	watcher, err := NewWatcher(tr, opts, nil)
	if err != nil {
		t.Fatalf("Failed to create watcher: %v", err)
	}
	defer watcher.Stop()

	if watcher.IsRunning() {
		t.Error("Expected watcher to not be running initially")
	}
}

func TestWatcher_StartStop(t *testing.T) {
	tmpDir := t.TempDir()
	tr := newTestTracer(tmpDir)

	opts := DefaultWatchOptions()
	opts.Path = tmpDir

	watcher, err := NewWatcher(tr, opts, nil)
	if err != nil {
		t.Fatalf("Failed to create watcher: %v", err)
	}

	watcher.Start()
	time.Sleep(50 * time.Millisecond)

	if !watcher.IsRunning() {
		t.Error("Expected watcher to be running after Start()")
	}

	if err := watcher.Stop(); err != nil {
		t.Errorf("Failed to stop watcher: %v", err)
	}

	if watcher.IsRunning() {
		t.Error("Expected watcher to not be running after Stop()")
	}
}

func TestWatcher_FileChange(t *testing.T) {
	tmpDir := t.TempDir()
	tr := newTestTracer(tmpDir)

	var changeCount atomic.Int32
	var changedFiles []string

	opts := DefaultWatchOptions()
	opts.Path = tmpDir
	opts.Debounce = 100 * time.Millisecond

	watcher, err := NewWatcher(tr, opts, func(files []string, summary *tracer.Summary) {
		changeCount.Add(1)
		changedFiles = files
	})
	if err != nil {
		t.Fatalf("Failed to create watcher: %v", err)
	}
	defer watcher.Stop()

	watcher.Start()
	time.Sleep(300 * time.Millisecond)

	testFile := filepath.Join(tmpDir, "test.js")
	content := `console.log("hi");`
	if err := os.WriteFile(testFile, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	time.Sleep(500 * time.Millisecond)

	if changeCount.Load() == 0 {
		t.Error("Expected change callback to be called")
	}
	if len(changedFiles) == 0 {
		t.Error("Expected changed files list to not be empty")
	}
}

func TestWatcher_IgnorePatterns(t *testing.T) {
	tmpDir := t.TempDir()

	vendorDir := filepath.Join(tmpDir, "vendor")
	os.MkdirAll(vendorDir, 0755)

	nodeModulesDir := filepath.Join(tmpDir, "node_modules")
	os.MkdirAll(nodeModulesDir, 0755)

	tr := newTestTracer(tmpDir)

	opts := DefaultWatchOptions()
	opts.Path = tmpDir

	watcher, err := NewWatcher(tr, opts, nil)
	if err != nil {
		t.Fatalf("Failed to create watcher: %v", err)
	}
	defer watcher.Stop()

	if watcher == nil {
		t.Error("Expected watcher to be created successfully")
	}
}

func TestWatcher_MultipleChanges(t *testing.T) {
	tmpDir := t.TempDir()
	tr := newTestTracer(tmpDir)

	var changeCount atomic.Int32

	opts := DefaultWatchOptions()
	opts.Path = tmpDir
	opts.Debounce = 100 * time.Millisecond

	watcher, err := NewWatcher(tr, opts, func(files []string, summary *tracer.Summary) {
		changeCount.Add(1)
	})
	if err != nil {
		t.Fatalf("Failed to create watcher: %v", err)
	}
	defer watcher.Stop()

	watcher.Start()
	time.Sleep(100 * time.Millisecond)

	for i := 0; i < 5; i++ {
		testFile := filepath.Join(tmpDir, "test"+string(rune('0'+i))+".js")
		content := `console.log("x");`
		if err := os.WriteFile(testFile, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write test file: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	time.Sleep(300 * time.Millisecond)

	count := changeCount.Load()
	if count == 0 {
		t.Error("Expected at least one change callback")
	}
	if count > 2 {
		t.Errorf("Expected debouncing to batch changes, got %d callbacks", count)
	}
}
