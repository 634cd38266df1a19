/*
# Module: pkg/config/config.go
Shared configuration record for the tracer and record store.

Carries the file-layout and hook-point settings that every job in the
record store needs, so no package holds process-global state.

## Linked Modules
- [../record](../record/store.go) - Record store
- [../cache](../cache/cache.go) - Cache substrate

## Tags
config, di

## Exports
Config, PostCSSPlugin, FileDependenciesFunc
*/

package config

import (
	"github.com/bundlecore/bundlecore/pkg/cache"
	"github.com/bundlecore/bundlecore/pkg/transform"
)

// PostCSSPlugin is a hook point invoked while post-processing CSS; it is
// the CSS post-processor's plugin type, given the CSS text and returning
// the (possibly rewritten) text plus the dependencies it collected.
type PostCSSPlugin = transform.CSSPlugin

// FileDependenciesFunc is the hook point for tools that compile multi-file
// bundles from a single entry (e.g. a CSS preprocessor with @import), so
// that a file watcher can invalidate transitively. The default
// implementation always returns an empty list.
type FileDependenciesFunc func(path string) ([]string, error)

// Config is the explicit dependency-injection record threaded through the
// record store, the resolver, and the tracer. Nothing in this repository
// reads from a package-level global or the process's current working
// directory directly; everything flows through one of these.
type Config struct {
	// SourceRoot is the project's root source directory. URLs are made
	// relative to it when possible.
	SourceRoot string

	// RootURL is prefixed onto every relative URL produced by the record
	// store (e.g. "/assets/").
	RootURL string

	// RootNodeModules is the top-level node_modules directory. Files
	// under it skip the Babel-style source transform and their resolved
	// path dependencies are cached unconditionally (see
	// ShouldCacheResolvedPathDependencies).
	RootNodeModules string

	// VendorRoot is a directory of pre-built, pre-minified assets that
	// bypass transformation entirely, same as RootNodeModules.
	VendorRoot string

	// BootstrapRuntimePath is the one file served verbatim, without a
	// module-definition envelope.
	BootstrapRuntimePath string

	// CoreShims maps Node.js core module identifiers (e.g. "path") to an
	// absolute path of a browser-safe shim implementation.
	CoreShims map[string]string

	// PostCSSPlugins run, in order, while post-processing a CSS file.
	PostCSSPlugins []PostCSSPlugin

	// FileDependencies is the fileDependencies job's hook point. If nil,
	// the job always returns an empty list.
	FileDependencies FileDependenciesFunc

	// Cache backs the record store's readCache/writeCache jobs.
	Cache cache.Cache

	// DependencyTreeHash namespaces the package/module resolver cache
	// directories; it is a single digest over the project's lockfile(s),
	// recomputed whenever the lockfile changes.
	DependencyTreeHash string
}

// ShouldCacheResolvedPathDependencies reports whether path-dependency
// resolutions for files under dir should be persisted in the per-record
// cache map. This is true only for files living under the root
// node_modules, since those are immutable once installed.
func (c *Config) ShouldCacheResolvedPathDependencies(dir string) bool {
	return c.RootNodeModules != "" && hasPathPrefix(dir, c.RootNodeModules)
}

// ShouldTransform reports whether a file living in dir is eligible for
// the full source transform, or whether it should only be parsed and
// regenerated as-is (vendor code and installed packages are never
// transformed).
func (c *Config) ShouldTransform(dir string) bool {
	if c.RootNodeModules != "" && hasPathPrefix(dir, c.RootNodeModules) {
		return false
	}
	if c.VendorRoot != "" && hasPathPrefix(dir, c.VendorRoot) {
		return false
	}
	return true
}

func hasPathPrefix(path, prefix string) bool {
	if path == prefix {
		return true
	}
	if len(path) <= len(prefix) {
		return false
	}
	if path[:len(prefix)] != prefix {
		return false
	}
	sep := path[len(prefix)]
	return sep == '/' || sep == '\\'
}
