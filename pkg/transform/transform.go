/*
# Module: pkg/transform/transform.go
AST/codegen adapter contract.

The real JavaScript/CSS parser, transformer, and code generator are
external collaborators: this package only defines the narrow contract
the record store's ast/code/sourceMap jobs need from them, plus one
minimal default implementation (see default.go) good enough to drive
dependency analysis without a real parser wired in.

## Linked Modules
- [default](./default.go) - Regex-based default implementation
- [../record](../record/store.go) - Consumer (ast, code, sourceMap jobs)

## Tags
transform, parser, codegen, contract

## Exports
SourceType, AST, DependencyEdge, ParseOptions, GenerateOptions,
GenerateResult, TransformResult, Parser, Transformer, Generator,
CSSProcessor, CSSPlugin, CSSOptions, CSSDependency, CSSResult
*/

package transform

// SourceType mirrors the parser's sourceType option.
type SourceType string

const (
	SourceTypeModule SourceType = "module"
	SourceTypeScript SourceType = "script"
)

// DependencyEdge is one statically discovered import/export/require
// source string, as collected while parsing a JS AST.
type DependencyEdge struct {
	Source string
	Kind   string // "import", "export-from", or "require"
}

// AST is the opaque parse tree handed between Parser, Transformer, and
// Generator. Raw lets a real adapter stash its own tree representation;
// Dependencies is populated eagerly because that's the only piece of the
// tree this repository's own jobs ever need to inspect.
type AST struct {
	SourceType   SourceType
	Dependencies []DependencyEdge
	Raw          interface{}
}

// ParseOptions mirrors the parser's option surface.
type ParseOptions struct {
	SourceType SourceType
}

// GenerateOptions mirrors the transformer/generator's shared option
// surface: filename, sourceMapTarget, sourceFileName, minified,
// sourceMaps.
type GenerateOptions struct {
	Filename        string
	SourceMapTarget string
	SourceFileName  string
	Minified        bool
	SourceMaps      bool
}

// GenerateResult is the generator's {code, map} output.
type GenerateResult struct {
	Code string
	Map  string
}

// TransformResult is the transformer's {code, map, ast} output.
type TransformResult struct {
	Code string
	Map  string
	AST  *AST
}

// Parser parses source text into an AST.
type Parser interface {
	Parse(text string, opts ParseOptions) (*AST, error)
}

// Transformer runs the full source transform (used for files eligible
// per config.Config.ShouldTransform).
type Transformer interface {
	Transform(text string, opts GenerateOptions) (*TransformResult, error)
}

// Generator regenerates code (and optionally a source map) from an
// already-parsed AST. The record store runs it on every .js file's AST,
// whether that AST came from the Parser or from the full Transformer.
type Generator interface {
	Generate(ast *AST, opts GenerateOptions, text string) (*GenerateResult, error)
}

// CSSDependency is one @import or url() dependency collected by a CSS
// post-processor plugin.
type CSSDependency struct {
	Source string
}

// CSSOptions mirrors the CSS post-processor's option surface.
type CSSOptions struct {
	Filename   string
	SourceMaps bool
}

// CSSPlugin is invoked by the CSS post-processor to (a) collect
// @import/url() dependencies and (b) strip @import rules.
type CSSPlugin func(css string) (rewritten string, deps []CSSDependency, err error)

// CSSResult is the CSS post-processor's {css, map, dependencies} output.
type CSSResult struct {
	CSS          string
	Map          string
	Dependencies []CSSDependency
}

// CSSProcessor runs a CSS text plus a plugin list through post-processing.
type CSSProcessor interface {
	Process(text string, plugins []CSSPlugin, opts CSSOptions) (*CSSResult, error)
}
