/*
# Module: pkg/record/jobs_url.go
Served-URL jobs: url, sourceUrl, sourceMapAnnotation.

## Exports
URL, SourceURL, SourceMapAnnotation
*/

package record

import (
	"encoding/base64"
	"path/filepath"
	"strings"
)

func toSlash(path string) string {
	return strings.ReplaceAll(path, string(filepath.Separator), "/")
}

// URL is the public path the downstream runtime loader serves ref under:
// HashedName for text files (so content changes bust caches), or the raw
// path for binaries. It is made relative to the configured source root
// when possible and always prefixed with the configured root URL.
//
// The separator-normalization step is implemented here as a
// straightforward toSlash; files outside the source root fall back to
// the bare joined path, which on a root URL already ending in "/"
// reproduces a double slash on purpose rather than collapsing it away.
func (s *Store) URL(ref Ref) (string, error) {
	r := s.Get(ref)
	return memo(r, jobURL, func() (string, error) {
		var name string
		if s.IsTextFile(ref) {
			hashed, err := s.HashedName(ref)
			if err != nil {
				return "", err
			}
			name = hashed
		} else {
			name = string(ref)
		}

		if s.Config.SourceRoot != "" {
			if rel, err := filepath.Rel(s.Config.SourceRoot, name); err == nil && !strings.HasPrefix(rel, "..") {
				return s.Config.RootURL + toSlash(rel), nil
			}
		}
		return s.Config.RootURL + toSlash(name), nil
	})
}

// SourceURL is the cache-busted original-file URL embedded in source
// maps: "file://" + path + "?" + hash.
func (s *Store) SourceURL(ref Ref) (string, error) {
	r := s.Get(ref)
	return memo(r, jobSourceURL, func() (string, error) {
		h, err := s.Hash(ref)
		if err != nil {
			return "", err
		}
		return "file://" + string(ref) + "?" + h, nil
	})
}

// SourceMapAnnotation returns the inline base64 data-URL comment to
// append to the served content, or nil if ref's extension doesn't carry
// one or no source map was produced.
func (s *Store) SourceMapAnnotation(ref Ref) (*string, error) {
	r := s.Get(ref)
	return memo(r, jobSourceMapAnnotation, func() (*string, error) {
		ext := s.Ext(ref)
		if ext != ".js" && ext != ".json" && ext != ".css" {
			return nil, nil
		}

		sourceMap, err := s.SourceMap(ref)
		if err != nil {
			return nil, err
		}
		if sourceMap == nil {
			return nil, nil
		}

		b64 := base64.StdEncoding.EncodeToString([]byte(*sourceMap))
		var comment string
		if ext == ".css" {
			comment = "\n/*# sourceMappingURL=data:application/json;charset=utf-8;base64," + b64 + " */"
		} else {
			comment = "\n//# sourceMappingURL=data:application/json;charset=utf-8;base64," + b64
		}
		return &comment, nil
	})
}
