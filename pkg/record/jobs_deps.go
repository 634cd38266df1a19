/*
# Module: pkg/record/jobs_deps.go
Dependency discovery and resolution jobs.

ast, analyzeDependencies, dependencyIdentifiers,
pathDependencyIdentifiers, packageDependencyIdentifiers, resolver,
resolvePathDependencies, resolvePackageDependencies, resolvedDependencies.

## Exports
AST, AnalyzeDependencies, DependencyIdentifiers,
PathDependencyIdentifiers, PackageDependencyIdentifiers, Resolver,
ResolvePathDependencies, ResolvePackageDependencies, ResolvedDependencies
*/

package record

import (
	"path/filepath"
	"strings"

	"github.com/bundlecore/bundlecore/pkg/resolver"
	"github.com/bundlecore/bundlecore/pkg/transform"
)

// AST parses ref, for .js files only. Files eligible for the full source
// transform (config.Config.ShouldTransform) go through the Transformer;
// everything else is a plain module-parse via the Parser.
func (s *Store) AST(ref Ref) (*transform.AST, error) {
	r := s.Get(ref)
	return memo(r, jobAST, func() (*transform.AST, error) {
		if s.Ext(ref) != ".js" {
			return nil, &UnknownExtensionError{Path: string(ref), Ext: s.Ext(ref)}
		}

		text, err := s.ReadText(ref)
		if err != nil {
			return nil, err
		}

		dir := filepath.Dir(string(ref))
		if s.Config.ShouldTransform(dir) {
			result, err := s.Xform.Transform(text, transform.GenerateOptions{Filename: string(ref)})
			if err != nil {
				return nil, &ParseError{Path: string(ref), Err: err}
			}
			return result.AST, nil
		}

		ast, err := s.Parser.Parse(text, transform.ParseOptions{SourceType: transform.SourceTypeModule})
		if err != nil {
			return nil, &ParseError{Path: string(ref), Err: err}
		}
		return ast, nil
	})
}

// AnalyzeDependencies returns the raw dependency sources discovered in
// ref: CSS post-processor output for .css, walked AST edges for .js, and
// an empty list for .json or binary files.
func (s *Store) AnalyzeDependencies(ref Ref) ([]string, error) {
	r := s.Get(ref)
	return memo(r, jobAnalyzeDependencies, func() ([]string, error) {
		switch s.Ext(ref) {
		case ".css":
			text, err := s.ReadText(ref)
			if err != nil {
				return nil, err
			}
			result, err := s.CSS.Process(text, s.Config.PostCSSPlugins, transform.CSSOptions{Filename: string(ref)})
			if err != nil {
				return nil, &ParseError{Path: string(ref), Err: err}
			}
			sources := make([]string, len(result.Dependencies))
			for i, dep := range result.Dependencies {
				sources[i] = dep.Source
			}
			return sources, nil

		case ".js":
			ast, err := s.AST(ref)
			if err != nil {
				return nil, err
			}
			sources := make([]string, len(ast.Dependencies))
			for i, dep := range ast.Dependencies {
				sources[i] = dep.Source
			}
			return sources, nil

		default:
			return nil, nil
		}
	})
}

// stripLoaderSuffix removes everything from the first '!', '?', or '#'
// onward, the convention a webpack-style loader suffix uses.
func stripLoaderSuffix(identifier string) string {
	cut := len(identifier)
	for _, sep := range []byte{'!', '?', '#'} {
		if i := strings.IndexByte(identifier, sep); i >= 0 && i < cut {
			cut = i
		}
	}
	return identifier[:cut]
}

// DependencyIdentifiers projects AnalyzeDependencies to cleaned source
// strings (loader suffixes stripped) and caches the result into the
// record's cache map under "dependencyIdentifiers".
func (s *Store) DependencyIdentifiers(ref Ref) ([]string, error) {
	r := s.Get(ref)
	return memo(r, jobDependencyIdentifiers, func() ([]string, error) {
		raw, err := s.AnalyzeDependencies(ref)
		if err != nil {
			return nil, err
		}
		cleaned := make([]string, len(raw))
		for i, id := range raw {
			cleaned[i] = stripLoaderSuffix(id)
		}
		s.annotate(ref, "dependencyIdentifiers", cleaned)
		return cleaned, nil
	})
}

func isPathIdentifier(id string) bool {
	if id == "" {
		return false
	}
	return id[0] == '.' || id[0] == '/' || id[0] == '\\'
}

// PathDependencyIdentifiers is the subset of DependencyIdentifiers that
// start with '.' or an absolute path separator.
func (s *Store) PathDependencyIdentifiers(ref Ref) ([]string, error) {
	r := s.Get(ref)
	return memo(r, jobPathDependencyIdentifiers, func() ([]string, error) {
		all, err := s.DependencyIdentifiers(ref)
		if err != nil {
			return nil, err
		}
		var out []string
		for _, id := range all {
			if isPathIdentifier(id) {
				out = append(out, id)
			}
		}
		return out, nil
	})
}

// PackageDependencyIdentifiers is every DependencyIdentifiers entry that
// isn't a PathDependencyIdentifiers entry.
func (s *Store) PackageDependencyIdentifiers(ref Ref) ([]string, error) {
	r := s.Get(ref)
	return memo(r, jobPackageDependencyIdentifiers, func() ([]string, error) {
		all, err := s.DependencyIdentifiers(ref)
		if err != nil {
			return nil, err
		}
		var out []string
		for _, id := range all {
			if !isPathIdentifier(id) {
				out = append(out, id)
			}
		}
		return out, nil
	})
}

// Resolver returns a resolve closure bound to ref's directory.
func (s *Store) Resolver(ref Ref) func(identifier string) (Ref, error) {
	dir := filepath.Dir(string(ref))
	return func(identifier string) (Ref, error) {
		path, err := s.ModuleResolver.Resolve(identifier, dir)
		if err != nil {
			var resolveErr *resolver.ResolveError
			if rerr, ok := err.(*resolver.ResolveError); ok {
				resolveErr = rerr
			}
			if resolveErr != nil {
				return "", &ResolveError{Identifier: resolveErr.Identifier, BaseDir: resolveErr.BaseDir, Err: resolveErr.Err}
			}
			return "", &ResolveError{Identifier: identifier, BaseDir: dir, Err: err}
		}
		return NewRef(path)
	}
}

func toStringMap(v interface{}) (map[string]string, bool) {
	switch m := v.(type) {
	case map[string]string:
		return m, true
	case map[string]interface{}:
		out := make(map[string]string, len(m))
		for k, val := range m {
			s, ok := val.(string)
			if !ok {
				return nil, false
			}
			out[k] = s
		}
		return out, true
	default:
		return nil, false
	}
}

// ResolvePathDependencies resolves every path dependency identifier
// through Resolver, producing {id -> resolvedPath}. It is cached in the
// record's cache map under "resolvePathDependencies" only for files
// living under the root node_modules, since only those are immutable
// enough to safely reuse a stale resolution across runs.
func (s *Store) ResolvePathDependencies(ref Ref) (map[string]Ref, error) {
	r := s.Get(ref)
	return memo(r, jobResolvePathDependencies, func() (map[string]Ref, error) {
		dir := filepath.Dir(string(ref))
		cacheable := s.Config.ShouldCacheResolvedPathDependencies(dir)

		if cacheable {
			if cached, ok := s.cached(ref, "resolvePathDependencies"); ok {
				if m, ok := toStringMap(cached); ok {
					out := make(map[string]Ref, len(m))
					for id, path := range m {
						out[id] = Ref(path)
					}
					return out, nil
				}
			}
		}

		ids, err := s.PathDependencyIdentifiers(ref)
		if err != nil {
			return nil, err
		}
		resolve := s.Resolver(ref)

		out := make(map[string]Ref, len(ids))
		for _, id := range ids {
			resolved, err := resolve(id)
			if err != nil {
				return nil, err
			}
			out[id] = resolved
		}

		if cacheable {
			plain := make(map[string]string, len(out))
			for id, ref := range out {
				plain[id] = string(ref)
			}
			s.annotate(ref, "resolvePathDependencies", plain)
		}

		return out, nil
	})
}

// ResolvePackageDependencies resolves every package dependency
// identifier through Resolver, always cached in the record's cache map.
func (s *Store) ResolvePackageDependencies(ref Ref) (map[string]Ref, error) {
	r := s.Get(ref)
	return memo(r, jobResolvePackageDependencies, func() (map[string]Ref, error) {
		if cached, ok := s.cached(ref, "resolvePackageDependencies"); ok {
			if m, ok := toStringMap(cached); ok {
				out := make(map[string]Ref, len(m))
				for id, path := range m {
					out[id] = Ref(path)
				}
				return out, nil
			}
		}

		ids, err := s.PackageDependencyIdentifiers(ref)
		if err != nil {
			return nil, err
		}
		resolve := s.Resolver(ref)

		out := make(map[string]Ref, len(ids))
		for _, id := range ids {
			resolved, err := resolve(id)
			if err != nil {
				return nil, err
			}
			out[id] = resolved
		}

		plain := make(map[string]string, len(out))
		for id, ref := range out {
			plain[id] = string(ref)
		}
		s.annotate(ref, "resolvePackageDependencies", plain)

		return out, nil
	})
}

// ResolvedDependencies is the union of ResolvePathDependencies and
// ResolvePackageDependencies, with path entries overriding package
// entries on collision.
func (s *Store) ResolvedDependencies(ref Ref) (map[string]Ref, error) {
	r := s.Get(ref)
	return memo(r, jobResolvedDependencies, func() (map[string]Ref, error) {
		pkgDeps, err := s.ResolvePackageDependencies(ref)
		if err != nil {
			return nil, err
		}
		pathDeps, err := s.ResolvePathDependencies(ref)
		if err != nil {
			return nil, err
		}

		out := make(map[string]Ref, len(pkgDeps)+len(pathDeps))
		for id, path := range pkgDeps {
			out[id] = path
		}
		for id, path := range pathDeps {
			out[id] = path
		}
		return out, nil
	})
}
