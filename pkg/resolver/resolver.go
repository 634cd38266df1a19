/*
# Module: pkg/resolver/resolver.go
Module resolver adapter.

Wraps Node-style module resolution behind the narrow contract the record
store needs: resolve(identifier, baseDir) -> path. Honors relative and
absolute identifiers, package identifiers walked up through node_modules,
a configured core-module shim map, and a package manifest's "browser"
field override. The precedence rules (browser field can override
"module"/"main"; core modules are shimmed rather than resolved from
disk) follow the documented behavior of a real bundler's resolver,
re-expressed from scratch in this package's own idiom - no parser/codegen
concerns live here, only path resolution.

## Linked Modules
- [package_json](./package_json.go) - package.json field precedence
- [../record](../record/jobs_deps.go) - Consumer (resolvePathDependencies, resolvePackageDependencies)

## Tags
resolver, modules, node-resolution

## Exports
Resolver, NewResolver, ResolveError
*/

package resolver

import (
	"fmt"
	"os"
	"path/filepath"
)

// ResolveError reports that identifier could not be resolved from
// baseDir; the message always names both.
type ResolveError struct {
	Identifier string
	BaseDir    string
	Err        error
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("could not resolve %q from %q: %v", e.Identifier, e.BaseDir, e.Err)
}

func (e *ResolveError) Unwrap() error { return e.Err }

// defaultExtensions is the order in which missing extensions are probed.
var defaultExtensions = []string{".js", ".json", ".css"}

// Resolver resolves module identifiers to absolute file paths.
type Resolver struct {
	// CoreShims maps a Node core module identifier (e.g. "path") to an
	// absolute path of a browser-safe replacement implementation.
	CoreShims map[string]string

	// Extensions is probed, in order, when an identifier names a file
	// without an extension.
	Extensions []string
}

// NewResolver creates a Resolver with the given core-module shim map.
func NewResolver(coreShims map[string]string) *Resolver {
	return &Resolver{CoreShims: coreShims, Extensions: defaultExtensions}
}

// Resolve resolves identifier relative to baseDir to an absolute path.
func (r *Resolver) Resolve(identifier, baseDir string) (string, error) {
	if shim, ok := r.CoreShims[identifier]; ok {
		return shim, nil
	}

	if replacement, ok := browserReplacement(baseDir, identifier); ok {
		identifier = replacement
	}

	if isRelativeOrAbsolute(identifier) {
		base := identifier
		if !filepath.IsAbs(identifier) {
			base = filepath.Join(baseDir, identifier)
		}
		if path, ok := r.resolveFileOrDir(base); ok {
			return path, nil
		}
		return "", &ResolveError{Identifier: identifier, BaseDir: baseDir, Err: os.ErrNotExist}
	}

	return r.resolvePackage(identifier, baseDir)
}

func isRelativeOrAbsolute(identifier string) bool {
	if identifier == "" {
		return false
	}
	if identifier[0] == '.' || identifier[0] == '/' || identifier[0] == '\\' {
		return true
	}
	return filepath.IsAbs(identifier)
}

// resolveFileOrDir tries base exactly, base with each probed extension,
// and - if base is a directory - its package.json main/browser field or
// an index file.
func (r *Resolver) resolveFileOrDir(base string) (string, bool) {
	if info, err := os.Stat(base); err == nil && !info.IsDir() {
		return base, true
	}

	for _, ext := range r.Extensions {
		if candidate := base + ext; fileExists(candidate) {
			return candidate, true
		}
	}

	if info, err := os.Stat(base); err == nil && info.IsDir() {
		if main, ok := mainFieldFromPackageJSON(base); ok {
			if path, ok := r.resolveFileOrDir(filepath.Join(base, main)); ok {
				return path, true
			}
		}
		for _, ext := range r.Extensions {
			if candidate := filepath.Join(base, "index"+ext); fileExists(candidate) {
				return candidate, true
			}
		}
	}

	return "", false
}

// resolvePackage walks baseDir and its ancestors looking for a
// node_modules directory containing identifier.
func (r *Resolver) resolvePackage(identifier, baseDir string) (string, error) {
	dir := baseDir
	for {
		candidate := filepath.Join(dir, "node_modules", identifier)
		if path, ok := r.resolveFileOrDir(candidate); ok {
			return path, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", &ResolveError{Identifier: identifier, BaseDir: baseDir, Err: os.ErrNotExist}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// nearestPackageDir walks dir and its ancestors looking for a package.json.
func nearestPackageDir(dir string) (string, bool) {
	for {
		if fileExists(filepath.Join(dir, "package.json")) {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// browserReplacement checks the nearest ancestor package.json's
// object-shaped "browser" field for an override of identifier, so a
// package can swap out individual requires for browser-safe shims.
func browserReplacement(baseDir, identifier string) (string, bool) {
	dir, ok := nearestPackageDir(baseDir)
	if !ok {
		return "", false
	}
	replacements := BrowserFieldMap(dir)
	if replacements == nil {
		return "", false
	}
	replacement, ok := replacements[identifier]
	return replacement, ok
}
