/*
# Module: pkg/record/jobs_content.go
Served-content jobs: code, moduleContents, shouldShimModuleDefinition,
moduleCode, moduleDefinition, content, sourceMap, fileDependencies, and
the ready join point.

## Exports
Code, ModuleContents, ShouldShimModuleDefinition, ModuleCode,
ModuleDefinition, Content, SourceMap, FileDependencies, Ready, ReadyResult
*/

package record

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/bundlecore/bundlecore/pkg/transform"
)

// Code is the textual output to serve for ref: the CSS post-processor's
// transformed text for .css, the raw text for the bootstrap runtime or
// for .json, the generator's output for any other .js file, and nil for
// non-text files. It annotates the record's cache map under "code".
func (s *Store) Code(ref Ref) (*string, error) {
	r := s.Get(ref)
	return memo(r, jobCode, func() (*string, error) {
		if !s.IsTextFile(ref) {
			return nil, nil
		}

		if string(ref) == s.Config.BootstrapRuntimePath {
			text, err := s.ReadText(ref)
			if err != nil {
				return nil, err
			}
			return &text, nil
		}

		switch s.Ext(ref) {
		case ".css":
			text, err := s.ReadText(ref)
			if err != nil {
				return nil, err
			}
			result, err := s.CSS.Process(text, s.Config.PostCSSPlugins, transform.CSSOptions{Filename: string(ref), SourceMaps: true})
			if err != nil {
				return nil, &ParseError{Path: string(ref), Err: err}
			}
			s.annotate(ref, "code", result.CSS)
			s.annotate(ref, "sourceMap", result.Map)
			return &result.CSS, nil

		case ".json":
			text, err := s.ReadText(ref)
			if err != nil {
				return nil, err
			}
			return &text, nil

		case ".js":
			ast, err := s.AST(ref)
			if err != nil {
				return nil, err
			}
			text, err := s.ReadText(ref)
			if err != nil {
				return nil, err
			}
			result, err := s.Gen.Generate(ast, transform.GenerateOptions{
				Filename:   string(ref),
				SourceMaps: true,
			}, text)
			if err != nil {
				return nil, &ParseError{Path: string(ref), Err: err}
			}
			s.annotate(ref, "code", result.Code)
			s.annotate(ref, "sourceMap", result.Map)
			return &result.Code, nil

		default:
			return nil, &UnknownExtensionError{Path: string(ref), Ext: s.Ext(ref)}
		}
	})
}

// ModuleContents is Code for .js/.json files, and a JSON-stringified URL
// for everything else (binary assets are represented by their URL).
func (s *Store) ModuleContents(ref Ref) (string, error) {
	r := s.Get(ref)
	return memo(r, jobModuleContents, func() (string, error) {
		ext := s.Ext(ref)
		if ext == ".js" || ext == ".json" {
			code, err := s.Code(ref)
			if err != nil {
				return "", err
			}
			if code == nil {
				return "", nil
			}
			return *code, nil
		}

		url, err := s.URL(ref)
		if err != nil {
			return "", err
		}
		b, _ := json.Marshal(url)
		return string(b), nil
	})
}

// ShouldShimModuleDefinition is true for every non-.js file.
func (s *Store) ShouldShimModuleDefinition(ref Ref) bool {
	r := s.Get(ref)
	v, _ := memo(r, jobShouldShimModuleDefinition, func() (bool, error) {
		return s.Ext(ref) != ".js", nil
	})
	return v
}

const shimTemplate = `Object.defineProperty(exports, "__esModule", {
  value: true
});
exports["default"] = %s;
if (module.hot) {
  module.hot.accept();
}`

// ModuleCode is ModuleContents unless ShouldShimModuleDefinition, in
// which case it is wrapped in the fixed non-JS interop shim.
func (s *Store) ModuleCode(ref Ref) (string, error) {
	r := s.Get(ref)
	return memo(r, jobModuleCode, func() (string, error) {
		contents, err := s.ModuleContents(ref)
		if err != nil {
			return "", err
		}
		if !s.ShouldShimModuleDefinition(ref) {
			return contents, nil
		}
		return fmt.Sprintf(shimTemplate, contents), nil
	})
}

// ModuleDefinition is nil for the bootstrap runtime; otherwise the fixed
// wire envelope capturing name (ref's URL), deps (resolvedDependencies,
// projected to each dependency's own URL), hash, and the module's
// factory body.
func (s *Store) ModuleDefinition(ref Ref) (*string, error) {
	r := s.Get(ref)
	return memo(r, jobModuleDefinition, func() (*string, error) {
		if string(ref) == s.Config.BootstrapRuntimePath {
			return nil, nil
		}

		name, err := s.URL(ref)
		if err != nil {
			return nil, err
		}
		hash, err := s.Hash(ref)
		if err != nil {
			return nil, err
		}
		resolved, err := s.ResolvedDependencies(ref)
		if err != nil {
			return nil, err
		}
		moduleCode, err := s.ModuleCode(ref)
		if err != nil {
			return nil, err
		}

		depNames, err := s.depsByURL(resolved)
		if err != nil {
			return nil, err
		}
		depsJSON, _ := json.Marshal(depNames)

		out := fmt.Sprintf(`__modules.defineModule({name: %s, deps: %s, hash: %s, factory: function(module, exports, require, process, global) {
%s
}});`, quoteJSON(name), depsJSON, quoteJSON(hash), moduleCode)

		return &out, nil
	})
}

// depsByURL projects each resolved dependency Ref to its own URL,
// sorting keys so the resulting JSON object is a deterministic function
// of resolvedDependencies.
func (s *Store) depsByURL(resolved map[string]Ref) (map[string]string, error) {
	ids := make([]string, 0, len(resolved))
	for id := range resolved {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make(map[string]string, len(resolved))
	for _, id := range ids {
		url, err := s.URL(resolved[id])
		if err != nil {
			return nil, err
		}
		out[id] = url
	}
	return out, nil
}

func quoteJSON(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

// Content is the served response body: Code for the bootstrap runtime or
// .css, ModuleDefinition for .js/.json, nil for non-text files. It fails
// for an unrecognized text extension.
func (s *Store) Content(ref Ref) (*string, error) {
	r := s.Get(ref)
	return memo(r, jobContent, func() (*string, error) {
		if !s.IsTextFile(ref) {
			return nil, nil
		}
		if string(ref) == s.Config.BootstrapRuntimePath {
			return s.Code(ref)
		}
		switch s.Ext(ref) {
		case ".css":
			return s.Code(ref)
		case ".js", ".json":
			return s.ModuleDefinition(ref)
		default:
			return nil, &UnknownExtensionError{Path: string(ref), Ext: s.Ext(ref)}
		}
	})
}

// SourceMap is the CSS post-processor's map for .css, the generator's
// map with every line offset by one (to account for the module
// envelope's leading line) for .js, and nil for .json or non-text files.
// It fails for an unrecognized text extension.
func (s *Store) SourceMap(ref Ref) (*string, error) {
	r := s.Get(ref)
	return memo(r, jobSourceMap, func() (*string, error) {
		if !s.IsTextFile(ref) {
			return nil, nil
		}

		switch s.Ext(ref) {
		case ".json":
			return nil, nil

		case ".css":
			if _, err := s.Code(ref); err != nil {
				return nil, err
			}
			raw, ok := s.cached(ref, "sourceMap")
			if !ok {
				return nil, nil
			}
			str, _ := raw.(string)
			if str == "" {
				return nil, nil
			}
			return &str, nil

		case ".js":
			if string(ref) == s.Config.BootstrapRuntimePath {
				return nil, nil
			}
			if _, err := s.Code(ref); err != nil {
				return nil, err
			}
			raw, ok := s.cached(ref, "sourceMap")
			if !ok {
				return nil, nil
			}
			str, _ := raw.(string)
			if str == "" {
				return nil, nil
			}
			shifted, err := shiftSourceMapLines(str, 1)
			if err != nil {
				return nil, &ParseError{Path: string(ref), Err: err}
			}
			return &shifted, nil

		default:
			return nil, &UnknownExtensionError{Path: string(ref), Ext: s.Ext(ref)}
		}
	})
}

// shiftSourceMapLines offsets every mapping in a source map JSON string
// down by n lines, by prepending n semicolons to its "mappings" field -
// each semicolon in the VLQ mappings grammar advances one generated line
// without encoding any segments on it.
func shiftSourceMapLines(mapJSON string, n int) (string, error) {
	if mapJSON == "" {
		return mapJSON, nil
	}
	var doc map[string]interface{}
	if err := json.Unmarshal([]byte(mapJSON), &doc); err != nil {
		return "", err
	}
	if mappings, ok := doc["mappings"].(string); ok {
		doc["mappings"] = strings.Repeat(";", n) + mappings
	}
	out, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// FileDependencies is the hook point for tools that compile multi-file
// bundles from a single entry, so a watcher can invalidate transitively.
// It defaults to an empty list when no hook is configured.
func (s *Store) FileDependencies(ref Ref) ([]string, error) {
	r := s.Get(ref)
	return memo(r, jobFileDependencies, func() ([]string, error) {
		if s.Config.FileDependencies == nil {
			return nil, nil
		}
		return s.Config.FileDependencies(string(ref))
	})
}

// ReadyResult is the join of every job Ready forces.
type ReadyResult struct {
	Hash                string
	Content             *string
	ModuleDefinition    *string
	URL                 string
	SourceMapAnnotation *string
	HashedFilename      string
	IsTextFile          bool
	MimeType            string
	FileDependencies    []string
}

// Ready forces hash, content, moduleDefinition, url, sourceMapAnnotation,
// hashedFilename, isTextFile, mimeType, and fileDependencies
// concurrently, and returns the first error encountered, if any.
func (s *Store) Ready(ref Ref) (*ReadyResult, error) {
	r := s.Get(ref)
	type result = *ReadyResult
	res, err := memo(r, jobReady, func() (result, error) {
		var (
			wg       sync.WaitGroup
			mu       sync.Mutex
			out      ReadyResult
			firstErr error
		)

		fail := func(err error) {
			mu.Lock()
			defer mu.Unlock()
			if firstErr == nil {
				firstErr = err
			}
		}

		run := func(fn func() error) {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := fn(); err != nil {
					fail(err)
				}
			}()
		}

		run(func() error {
			v, err := s.Hash(ref)
			out.Hash = v
			return err
		})
		run(func() error {
			v, err := s.Content(ref)
			out.Content = v
			return err
		})
		run(func() error {
			v, err := s.ModuleDefinition(ref)
			out.ModuleDefinition = v
			return err
		})
		run(func() error {
			v, err := s.URL(ref)
			out.URL = v
			return err
		})
		run(func() error {
			v, err := s.SourceMapAnnotation(ref)
			out.SourceMapAnnotation = v
			return err
		})
		run(func() error {
			v, err := s.HashedFilename(ref)
			out.HashedFilename = v
			return err
		})
		run(func() error {
			out.IsTextFile = s.IsTextFile(ref)
			return nil
		})
		run(func() error {
			out.MimeType = s.MimeType(ref)
			return nil
		})
		run(func() error {
			v, err := s.FileDependencies(ref)
			out.FileDependencies = v
			return err
		})

		wg.Wait()
		if firstErr != nil {
			return nil, firstErr
		}

		// Persist whatever dependencyIdentifiers/resolvePathDependencies/
		// resolvePackageDependencies/code/sourceMap annotated into the
		// record's cache map. A cache write failure must never fail a
		// build, so its error is discarded here.
		_ = s.WriteCache(ref)

		return &out, nil
	})
	return res, err
}
