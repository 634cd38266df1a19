/*
# Module: pkg/resolver/package_json.go
package.json main-field precedence.

A bare-bones manifest reader used only to find the entry file for a
resolved package directory. The "browser" field wins over "module",
which wins over "main" - the same precedence a browser-targeting bundler
uses, since a package that ships a "browser" field is signaling that its
"module"/"main" entries may not be safe to run outside Node.

## Exports
mainFieldFromPackageJSON
*/

package resolver

import (
	"encoding/json"
	"os"
	"path/filepath"
)

type packageManifest struct {
	Main    string          `json:"main"`
	Module  string          `json:"module"`
	Browser json.RawMessage `json:"browser"`
}

// mainFieldFromPackageJSON reads dir/package.json and returns the entry
// file to use, preferring a string "browser" field over "module" over
// "main". A "browser" field that is an object (per-file replacement map)
// is not a plain entry override and is ignored here; Resolver.Resolve
// applies object-shaped browser maps separately (see BrowserFieldMap).
func mainFieldFromPackageJSON(dir string) (string, bool) {
	data, err := os.ReadFile(filepath.Join(dir, "package.json"))
	if err != nil {
		return "", false
	}

	var manifest packageManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return "", false
	}

	if len(manifest.Browser) > 0 {
		var browserMain string
		if err := json.Unmarshal(manifest.Browser, &browserMain); err == nil && browserMain != "" {
			return browserMain, true
		}
	}
	if manifest.Module != "" {
		return manifest.Module, true
	}
	if manifest.Main != "" {
		return manifest.Main, true
	}
	return "", false
}

// BrowserFieldMap reads dir/package.json's "browser" field when it is an
// object, returning the per-identifier replacement map it declares (the
// form used to swap out individual requires for browser-safe shims).
// Resolver.Resolve consults this through browserReplacement before
// resolving an identifier from a directory with that package.json as its
// nearest ancestor manifest.
func BrowserFieldMap(dir string) map[string]string {
	data, err := os.ReadFile(filepath.Join(dir, "package.json"))
	if err != nil {
		return nil
	}

	var manifest packageManifest
	if err := json.Unmarshal(data, &manifest); err != nil || len(manifest.Browser) == 0 {
		return nil
	}

	var replacements map[string]string
	if err := json.Unmarshal(manifest.Browser, &replacements); err != nil {
		return nil
	}
	return replacements
}
