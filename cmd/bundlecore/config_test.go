/*
# Module: cmd/bundlecore/config_test.go
Tests for config loading, defaults, and runtime translation.

## Linked Modules
- [config](./config.go) - Configuration handling

## Tags
cli, test, config
*/

package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Version != 1 {
		t.Errorf("expected version 1, got %d", cfg.Version)
	}
	if cfg.Trace.RootURL != "/" {
		t.Errorf("expected root url \"/\", got %q", cfg.Trace.RootURL)
	}
	if cfg.Trace.RootNodeModules != "node_modules" {
		t.Errorf("expected root node_modules, got %q", cfg.Trace.RootNodeModules)
	}
	if !cfg.Server.CORS || !cfg.Server.Playground {
		t.Errorf("expected server defaults enabled, got %+v", cfg.Server)
	}
}

func TestLoadConfigMissingFallsBackToDefault(t *testing.T) {
	tmpDir := t.TempDir()
	cfg, err := loadConfig(filepath.Join(tmpDir, "config.yaml"))
	if err != nil {
		t.Fatalf("loadConfig on missing file failed: %v", err)
	}
	if cfg.Version != DefaultConfig().Version {
		t.Errorf("expected default config, got %+v", cfg)
	}
}

func TestSaveAndLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ".bundlecore", "config.yaml")

	if err := saveDefaultConfig(configPath); err != nil {
		t.Fatalf("saveDefaultConfig failed: %v", err)
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}

	if cfg.Version != 1 {
		t.Errorf("expected version 1, got %d", cfg.Version)
	}
	if cfg.Trace.RootURL != "/" {
		t.Errorf("expected root url \"/\", got %q", cfg.Trace.RootURL)
	}
}

func TestComputeDependencyTreeHashNoLockfile(t *testing.T) {
	tmpDir := t.TempDir()
	if hash := computeDependencyTreeHash(tmpDir); hash != "none" {
		t.Errorf("expected \"none\" with no lockfile, got %q", hash)
	}
}

func TestComputeDependencyTreeHashStableAndSensitive(t *testing.T) {
	tmpDir := t.TempDir()
	lockPath := filepath.Join(tmpDir, "package-lock.json")
	if err := os.WriteFile(lockPath, []byte(`{"name":"a"}`), 0o644); err != nil {
		t.Fatalf("write lockfile: %v", err)
	}

	h1 := computeDependencyTreeHash(tmpDir)
	h2 := computeDependencyTreeHash(tmpDir)
	if h1 != h2 {
		t.Errorf("expected stable hash, got %q then %q", h1, h2)
	}
	if h1 == "none" {
		t.Errorf("expected non-trivial hash with a lockfile present")
	}

	if err := os.WriteFile(lockPath, []byte(`{"name":"b"}`), 0o644); err != nil {
		t.Fatalf("rewrite lockfile: %v", err)
	}
	h3 := computeDependencyTreeHash(tmpDir)
	if h3 == h1 {
		t.Errorf("expected hash to change when lockfile content changes")
	}
}

func TestBuildRuntimeConfigNoCache(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Trace.NoCache = true

	runtime, cacheSet, err := buildRuntimeConfig(cfg, tmpDir)
	if err != nil {
		t.Fatalf("buildRuntimeConfig failed: %v", err)
	}
	if cacheSet != nil {
		t.Errorf("expected nil cache set in --no-cache mode")
	}
	if runtime.Cache == nil {
		t.Errorf("expected a non-nil in-memory cache")
	}
	if runtime.SourceRoot != tmpDir {
		t.Errorf("expected source root %q, got %q", tmpDir, runtime.SourceRoot)
	}
}

func TestBuildRuntimeConfigDurable(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := DefaultConfig()

	runtime, cacheSet, err := buildRuntimeConfig(cfg, tmpDir)
	if err != nil {
		t.Fatalf("buildRuntimeConfig failed: %v", err)
	}
	if cacheSet == nil {
		t.Fatalf("expected a durable cache set")
	}
	defer cacheSet.Close()

	if runtime.Cache == nil {
		t.Errorf("expected runtime config's cache to be populated")
	}
	if runtime.DependencyTreeHash != "none" {
		t.Errorf("expected \"none\" dependency hash, got %q", runtime.DependencyTreeHash)
	}
}

func TestJoinIfRelative(t *testing.T) {
	tests := []struct {
		name string
		root string
		path string
		want string
	}{
		{"empty path stays empty", "/root", "", ""},
		{"absolute path unchanged", "/root", "/other/abs", "/other/abs"},
		{"relative path joined to root", "/root", "vendor", filepath.Join("/root", "vendor")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := joinIfRelative(tt.root, tt.path); got != tt.want {
				t.Errorf("joinIfRelative(%q, %q) = %q, want %q", tt.root, tt.path, got, tt.want)
			}
		})
	}
}
