/*
# Module: cmd/bundlecore/config.go
Configuration handling for the bundlecore CLI.

Loads a YAML config file (via viper/yaml.v3) and translates it into the
pkg/config.Config record every tracer is built from.

## Linked Modules
- [root](./root.go) - Root command
- [../../pkg/config](../../pkg/config/config.go) - Runtime config record

## Tags
cli, config, viper

## Exports
Config, DefaultConfig, initConfig, loadConfig, buildRuntimeConfig
*/

package main

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/bundlecore/bundlecore/pkg/cache"
	"github.com/bundlecore/bundlecore/pkg/config"
)

// Config is the on-disk shape of .bundlecore/config.yaml.
type Config struct {
	Version int          `yaml:"version"`
	Trace   TraceConfig  `yaml:"trace"`
	Server  ServerConfig `yaml:"server"`
}

// TraceConfig configures how entries are traced and resolved.
type TraceConfig struct {
	RootURL              string            `yaml:"root_url"`
	RootNodeModules      string            `yaml:"root_node_modules"`
	VendorRoot           string            `yaml:"vendor_root"`
	BootstrapRuntimePath string            `yaml:"bootstrap_runtime_path"`
	CoreShims            map[string]string `yaml:"core_shims"`
	NoCache              bool              `yaml:"no_cache"`
}

// ServerConfig configures the "serve" command.
type ServerConfig struct {
	CORS       bool `yaml:"cors"`
	Playground bool `yaml:"playground"`
}

// DefaultConfig returns the configuration used when no config file exists.
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Trace: TraceConfig{
			RootURL:         "/",
			RootNodeModules: "node_modules",
		},
		Server: ServerConfig{
			CORS:       true,
			Playground: true,
		},
	}
}

// initConfig reads a config file and environment overrides, mirroring the
// teacher's viper wiring.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".bundlecore")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintln(os.Stderr, "using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig loads configuration from configPath, falling back to
// DefaultConfig when the file does not exist.
func loadConfig(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

// saveDefaultConfig writes DefaultConfig to configPath, creating its
// parent directory if necessary.
func saveDefaultConfig(configPath string) error {
	cfg := DefaultConfig()

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// buildRuntimeConfig translates the CLI's on-disk Config into the
// pkg/config.Config every tracer is constructed from, opening a durable
// cache set rooted at sourceRoot unless noCache forces an in-memory one.
func buildRuntimeConfig(cfg *Config, sourceRoot string) (*config.Config, *cache.CacheSet, error) {
	depHash := computeDependencyTreeHash(sourceRoot)

	var jobCache cacheHandle
	if cfg.Trace.NoCache {
		jobCache = cacheHandle{mem: cache.NewMemCache()}
	} else {
		set, err := cache.NewCacheSet(sourceRoot, depHash)
		if err != nil {
			return nil, nil, fmt.Errorf("open cache set: %w", err)
		}
		jobCache = cacheHandle{set: set}
	}

	runtime := &config.Config{
		SourceRoot:           sourceRoot,
		RootURL:              cfg.Trace.RootURL,
		RootNodeModules:      joinIfRelative(sourceRoot, cfg.Trace.RootNodeModules),
		VendorRoot:           joinIfRelative(sourceRoot, cfg.Trace.VendorRoot),
		BootstrapRuntimePath: joinIfRelative(sourceRoot, cfg.Trace.BootstrapRuntimePath),
		CoreShims:            cfg.Trace.CoreShims,
		Cache:                jobCache.readCache(),
		DependencyTreeHash:   depHash,
	}
	return runtime, jobCache.set, nil
}

// cacheHandle picks between a durable CacheSet's dependency cache and a
// bare in-memory cache for the --no-cache path, without forcing callers
// to branch on which one backs config.Config.Cache.
type cacheHandle struct {
	set *cache.CacheSet
	mem cache.Cache
}

func (h cacheHandle) readCache() cache.Cache {
	if h.set != nil {
		return h.set.Dependency
	}
	return h.mem
}

func joinIfRelative(root, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}

// computeDependencyTreeHash digests every one of package-lock.json,
// yarn.lock, pnpm-lock.yaml and package.json present under root, namespacing the package/module resolver caches (see
// pkg/cache.NewCacheSet) so a lockfile upgrade invalidates stale
// resolutions without touching anything else.
func computeDependencyTreeHash(root string) string {
	candidates := []string{"package-lock.json", "yarn.lock", "pnpm-lock.yaml", "package.json"}
	sort.Strings(candidates)

	h := sha256.New()
	found := false
	for _, name := range candidates {
		data, err := os.ReadFile(filepath.Join(root, name))
		if err != nil {
			continue
		}
		found = true
		fmt.Fprintf(h, "%s:", name)
		h.Write(data)
	}
	if !found {
		return "none"
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}
