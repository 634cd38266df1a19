/*
# Module: pkg/transform/default.go
Regex-based default AST/codegen adapter.

Stands in for the real JavaScript/CSS parser and code generator, treated
as external collaborators, well enough to drive dependency analysis and
passthrough code generation without a real parser wired in: static
import/export-from/require scanning for JS, @import/url() scanning for
CSS. A production deployment swaps these for real Parser/Transformer/
Generator/CSSProcessor implementations; the record store never assumes
which one it has.

## Exports
DefaultParser, DefaultTransformer, DefaultGenerator, DefaultCSSProcessor
*/

package transform

import (
	"regexp"
	"sort"
)

var (
	importRe     = regexp.MustCompile(`import\s+(?:[\w*{}\s,]+\s+from\s+)?['"]([^'"]+)['"]`)
	exportFromRe = regexp.MustCompile(`export\s+(?:\*|\{[^}]*\})\s*(?:as\s+\w+\s*)?from\s+['"]([^'"]+)['"]`)
	requireRe    = regexp.MustCompile(`require\(\s*['"]([^'"]+)['"]\s*\)`)

	cssImportRe = regexp.MustCompile(`@import\s+(?:url\()?['"]?([^'")\s;]+)['"]?\)?`)
	cssURLRe    = regexp.MustCompile(`url\(\s*['"]?([^'")]+)['"]?\s*\)`)
)

// DefaultParser extracts import/export-from/require source strings from
// JS text with a handful of regexes, and leaves everything else of the
// AST empty.
type DefaultParser struct{}

func (DefaultParser) Parse(text string, opts ParseOptions) (*AST, error) {
	type match struct {
		pos    int
		source string
		kind   string
	}
	var matches []match
	for _, m := range importRe.FindAllStringSubmatchIndex(text, -1) {
		matches = append(matches, match{pos: m[0], source: text[m[2]:m[3]], kind: "import"})
	}
	for _, m := range exportFromRe.FindAllStringSubmatchIndex(text, -1) {
		matches = append(matches, match{pos: m[0], source: text[m[2]:m[3]], kind: "export-from"})
	}
	for _, m := range requireRe.FindAllStringSubmatchIndex(text, -1) {
		matches = append(matches, match{pos: m[0], source: text[m[2]:m[3]], kind: "require"})
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].pos < matches[j].pos })

	ast := &AST{SourceType: opts.SourceType}
	for _, m := range matches {
		ast.Dependencies = append(ast.Dependencies, DependencyEdge{Source: m.source, Kind: m.kind})
	}
	return ast, nil
}

// DefaultTransformer parses text and passes it through unchanged - the
// real transform (JSX/TS lowering, minification, …) lives in the actual
// Babel-equivalent collaborator this adapter stands in for.
type DefaultTransformer struct {
	Parser Parser
}

func (t DefaultTransformer) Transform(text string, opts GenerateOptions) (*TransformResult, error) {
	ast, err := t.parser().Parse(text, ParseOptions{SourceType: SourceTypeModule})
	if err != nil {
		return nil, err
	}
	return &TransformResult{Code: text, AST: ast}, nil
}

func (t DefaultTransformer) parser() Parser {
	if t.Parser != nil {
		return t.Parser
	}
	return DefaultParser{}
}

// DefaultGenerator regenerates code by returning the original source
// text verbatim, since the default AST carries no structural
// information beyond discovered dependency edges.
type DefaultGenerator struct{}

func (DefaultGenerator) Generate(ast *AST, opts GenerateOptions, text string) (*GenerateResult, error) {
	return &GenerateResult{Code: text}, nil
}

// DefaultCSSProcessor collects @import and url() dependencies with
// regexes, strips @import rules, and then runs any configured plugins
// over the result.
type DefaultCSSProcessor struct{}

func (DefaultCSSProcessor) Process(text string, plugins []CSSPlugin, opts CSSOptions) (*CSSResult, error) {
	var deps []CSSDependency

	for _, m := range cssImportRe.FindAllStringSubmatch(text, -1) {
		deps = append(deps, CSSDependency{Source: m[1]})
	}
	for _, m := range cssURLRe.FindAllStringSubmatch(text, -1) {
		deps = append(deps, CSSDependency{Source: m[1]})
	}

	css := cssImportRe.ReplaceAllString(text, "")

	for _, plugin := range plugins {
		rewritten, pluginDeps, err := plugin(css)
		if err != nil {
			return nil, err
		}
		css = rewritten
		deps = append(deps, pluginDeps...)
	}

	return &CSSResult{CSS: css, Dependencies: deps}, nil
}
