package parser

import (
	"fmt"
	"strings"

	"github.com/mlindqvist/rankexpr/ast"
	"github.com/mlindqvist/rankexpr/registry"
	"github.com/mlindqvist/rankexpr/resolve"
)

func isAlpha(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

// defaultMaxDepth bounds parse_value recursion absent an explicit
// WithMaxDepth option, so pathological input fails cleanly instead of
// exhausting the goroutine stack.
const defaultMaxDepth = 10000

// ParseOptions configures a parse call. Options that are not set keep
// the defaults filled in by buildOptions: DefaultOperators, DefaultCalls,
// and defaultMaxDepth.
type ParseOptions struct {
	operators registry.OperatorRepo
	calls     registry.CallRepo
	maxDepth  int
}

// ParseOption mutates a ParseOptions under construction, following the
// functional-options idiom used throughout this module's configuration
// surface.
type ParseOption func(*ParseOptions)

// WithOperatorRepo overrides the operator table consulted during parsing.
func WithOperatorRepo(r registry.OperatorRepo) ParseOption {
	return func(o *ParseOptions) { o.operators = r }
}

// WithCallRepo overrides the function-call table consulted during
// parsing.
func WithCallRepo(r registry.CallRepo) ParseOption {
	return func(o *ParseOptions) { o.calls = r }
}

// WithMaxDepth overrides the recursion depth limit for nested
// sub-expressions. A non-positive value disables the limit entirely.
func WithMaxDepth(n int) ParseOption {
	return func(o *ParseOptions) { o.maxDepth = n }
}

func buildOptions(opts []ParseOption) *ParseOptions {
	o := &ParseOptions{
		operators: registry.DefaultOperators(),
		calls:     registry.DefaultCalls(),
		maxDepth:  defaultMaxDepth,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// ParseError reports a parse failure through the normal Go error channel,
// in addition to the bracketed diagnostic already carried by the
// returned Function's Error root (spec.md §7). Message carries the same
// bracketed diagnostic as Function.GetError(); Position is the byte offset
// into the source text where the failure was latched (Function.Root.Pos),
// surfaced structurally rather than only as a substring of Message.
// ParseError exists so callers that prefer `if err != nil` over inspecting
// the returned tree can do so.
type ParseError struct {
	Message  string
	Position int
}

func (e *ParseError) Error() string { return e.Message }

// Parse parses expr with implicit parameter discovery: every bare
// identifier not bound by an enclosing let(...) becomes a parameter, in
// first-encounter order (spec.md §6).
func Parse(expr string, opts ...ParseOption) *ast.Function {
	return parse(expr, resolve.NewImplicitParams(), nil, opts)
}

// ParseWithExtractor is Parse plus a SymbolExtractor consulted whenever a
// bare identifier fails to resolve as a let-reference or parameter
// (spec.md §4.6, §6).
func ParseWithExtractor(expr string, extractor resolve.SymbolExtractor, opts ...ParseOption) *ast.Function {
	return parse(expr, resolve.NewImplicitParams(), extractor, opts)
}

// ParseParams parses expr against a fixed parameter list: any bare
// identifier outside that list (and not let-bound) fails to resolve
// (spec.md §6).
func ParseParams(expr string, params []string, opts ...ParseOption) *ast.Function {
	explicit, err := resolve.NewExplicitParams(params)
	if err != nil {
		return &ast.Function{Root: ast.NewError(0, fmt.Sprintf("[]...[%s]...[%s]", err.Error(), expr))}
	}
	return parse(expr, explicit, nil, opts)
}

// ParseParamsWithExtractor is ParseParams plus a SymbolExtractor
// consulted whenever a bare identifier fails to resolve against the
// fixed parameter list or an enclosing let (spec.md §4.6, §6).
func ParseParamsWithExtractor(expr string, params []string, extractor resolve.SymbolExtractor, opts ...ParseOption) *ast.Function {
	explicit, err := resolve.NewExplicitParams(params)
	if err != nil {
		return &ast.Function{Root: ast.NewError(0, fmt.Sprintf("[]...[%s]...[%s]", err.Error(), expr))}
	}
	return parse(expr, explicit, extractor, opts)
}

func parse(expr string, params resolve.Params, extractor resolve.SymbolExtractor, opts []ParseOption) *ast.Function {
	o := buildOptions(opts)
	resolveCtx := resolve.NewContext(params, extractor)
	p := newParser(expr, resolveCtx, o.operators, o.calls, o.maxDepth)
	return p.run()
}

// Compile is Parse plus the normal-Go-error convention: it returns a nil
// *ast.Function and a non-nil *ParseError on failure, rather than an
// Error-rooted Function.
func Compile(expr string, opts ...ParseOption) (*ast.Function, error) {
	return compileResult(Parse(expr, opts...))
}

// CompileParams is ParseParams plus the normal-Go-error convention.
func CompileParams(expr string, params []string, opts ...ParseOption) (*ast.Function, error) {
	return compileResult(ParseParams(expr, params, opts...))
}

func compileResult(fn *ast.Function) (*ast.Function, error) {
	if fn.HasError() {
		return nil, &ParseError{Message: fn.GetError(), Position: fn.ErrorPosition()}
	}
	return fn, nil
}

// Unwrap splits a host-wrapped expression of the form name ( body ) into
// its wrapper name and body, per spec.md §6. It does not parse body;
// callers typically feed the result into Parse/ParseParams afterward.
// Matching is purely syntactic: the wrapper name is the leading run of
// alphabetic characters, the first non-space byte after it must be '(',
// and body runs up to the last ')' in the input — anything after that
// closing paren must be whitespace only.
func Unwrap(input string) (wrapper, body string, err error) {
	c := NewContext(input, 0)
	c.SkipSpaces()
	start := c.Pos()
	for !c.Eos() && isAlpha(c.Get()) {
		c.Next()
	}
	name := input[start:c.Pos()]
	if name == "" {
		return "", "", fmt.Errorf("could not extract wrapper name")
	}
	c.SkipSpaces()
	if c.Get() != '(' {
		return "", "", fmt.Errorf("could not match opening '('")
	}
	open := c.Pos()

	close := strings.LastIndexByte(input, ')')
	if close < open {
		return "", "", fmt.Errorf("could not match closing ')'")
	}
	if strings.TrimSpace(input[close+1:]) != "" {
		return "", "", fmt.Errorf("could not match closing ')'")
	}

	return name, input[open+1 : close], nil
}
