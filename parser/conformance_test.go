package parser

import (
	"strings"
	"testing"

	"github.com/mlindqvist/rankexpr/ast"
	"github.com/mlindqvist/rankexpr/resolve"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests implement the literal end-to-end scenarios and testable
// invariants catalogued for this grammar: arithmetic precedence, the
// if/let/map/sum special forms, string escapes, error-bracket
// reconstruction, and the symbol-extractor and unwrap contracts.

func TestScenarioArithmeticPrecedence(t *testing.T) {
	fn := Parse("1+2*3")
	require.False(t, fn.HasError())
	require.Empty(t, fn.Params)

	add := fn.Root
	require.Equal(t, ast.BinaryOp, add.Kind)
	assert.Equal(t, "Add", add.Op.Name)
	assert.Equal(t, 1.0, add.LHS.Num)

	mul := add.RHS
	require.Equal(t, ast.BinaryOp, mul.Kind)
	assert.Equal(t, "Mul", mul.Op.Name)
	assert.Equal(t, 2.0, mul.LHS.Num)
	assert.Equal(t, 3.0, mul.RHS.Num)
}

func TestScenarioIfWithExplicitPTrue(t *testing.T) {
	fn := Parse("if(a>b,1,0,0.25)")
	require.False(t, fn.HasError())
	assert.Equal(t, []string{"a", "b"}, fn.Params)

	n := fn.Root
	require.Equal(t, ast.If, n.Kind)
	assert.Equal(t, 0.25, n.PTrue)
	assert.Equal(t, 0.0, n.False.Num)
	assert.Equal(t, 1.0, n.True.Num)

	cond := n.Cond
	require.Equal(t, ast.BinaryOp, cond.Kind)
	assert.Equal(t, "Gt", cond.Op.Name)
	assert.Equal(t, 0, cond.LHS.SymbolID)
	assert.Equal(t, 1, cond.RHS.SymbolID)
}

func TestScenarioIfWithWhitespaceBeforePTrue(t *testing.T) {
	fn := Parse("if(a>b,1,0, 0.25)")
	require.False(t, fn.HasError())
	assert.Equal(t, []string{"a", "b"}, fn.Params)
	assert.Equal(t, 0.25, fn.Root.PTrue)
}

func TestScenarioLetBindingInBody(t *testing.T) {
	fn := Parse("let(x, a+1, x*x)")
	require.False(t, fn.HasError())
	assert.Equal(t, []string{"a"}, fn.Params)

	n := fn.Root
	require.Equal(t, ast.Let, n.Kind)
	assert.Equal(t, "x", n.LetName)

	value := n.LetValue
	require.Equal(t, ast.BinaryOp, value.Kind)
	assert.Equal(t, "Add", value.Op.Name)
	assert.Equal(t, 0, value.LHS.SymbolID)
	assert.Equal(t, 1.0, value.RHS.Num)

	body := n.LetBody
	require.Equal(t, ast.BinaryOp, body.Kind)
	assert.Equal(t, "Mul", body.Op.Name)
	assert.Equal(t, -1, body.LHS.SymbolID)
	assert.Equal(t, -1, body.RHS.SymbolID)
}

func TestScenarioStringEscape(t *testing.T) {
	fn := Parse(`"hi\n"`)
	require.False(t, fn.HasError())
	require.Equal(t, ast.String, fn.Root.Kind)
	assert.Equal(t, "hi\n", fn.Root.Str)
}

func TestScenarioMapWithExplicitParams(t *testing.T) {
	fn := ParseParams("map(t, f(v)(v+1))", []string{"t"})
	require.False(t, fn.HasError())
	assert.Equal(t, []string{"t"}, fn.Params)

	n := fn.Root
	require.Equal(t, ast.TensorMap, n.Kind)
	require.Equal(t, ast.Symbol, n.MapExpr.Kind)
	assert.Equal(t, 0, n.MapExpr.SymbolID)

	require.NotNil(t, n.Lambda)
	assert.Equal(t, []string{"v"}, n.Lambda.Params)
	lambdaBody := n.Lambda.Root
	require.Equal(t, ast.BinaryOp, lambdaBody.Kind)
	assert.Equal(t, "Add", lambdaBody.Op.Name)
	assert.Equal(t, 0, lambdaBody.LHS.SymbolID)
	assert.Equal(t, 1.0, lambdaBody.RHS.Num)
}

func TestScenarioIncompleteParseBracketsReconstructInput(t *testing.T) {
	input := "1 +"
	fn := Parse(input)
	require.True(t, fn.HasError())

	msg := fn.GetError()
	require.True(t, strings.HasPrefix(msg, "["))
	require.True(t, strings.Contains(msg, "]...["))

	// Invariant 5: prefix+suffix reconstructs the original input minus the
	// inserted brackets and message.
	afterFirst := msg[1:]
	prefixEnd := strings.Index(afterFirst, "]...[")
	prefix := afterFirst[:prefixEnd]
	rest := afterFirst[prefixEnd+len("]...["):]
	msgEnd := strings.Index(rest, "]...[")
	require.GreaterOrEqual(t, msgEnd, 0)
	suffix := rest[msgEnd+len("]...["):]
	suffix = strings.TrimSuffix(suffix, "]")

	assert.Equal(t, input, prefix+suffix)
}

func TestScenarioSumWithDimension(t *testing.T) {
	fn := ParseParams("sum(t, d)", []string{"t"})
	require.False(t, fn.HasError())

	n := fn.Root
	require.Equal(t, ast.TensorSum, n.Kind)
	require.Equal(t, ast.Symbol, n.SumExpr.Kind)
	assert.Equal(t, 0, n.SumExpr.SymbolID)
	assert.True(t, n.HasDim)
	assert.Equal(t, "d", n.Dim)
}

// Invariant 1: determinism.
func TestInvariantDeterminism(t *testing.T) {
	a := ParseParams("a*b+1", []string{"a", "b"})
	b := ParseParams("a*b+1", []string{"a", "b"})
	assert.Equal(t, a.Root.String(), b.Root.String())
	assert.Equal(t, a.Params, b.Params)
}

// Invariant 2: implicit parameter discovery order, and every Symbol(i>=0)
// indexes into the returned params.
func TestInvariantImplicitParamDiscoveryOrder(t *testing.T) {
	fn := Parse("z+y+z")
	require.False(t, fn.HasError())
	assert.Equal(t, []string{"z", "y"}, fn.Params)

	ast.Walk(fn.Root, func(n *ast.Node) bool {
		if n.Kind == ast.Symbol && n.SymbolID >= 0 {
			assert.Less(t, n.SymbolID, len(fn.Params))
		}
		return true
	})
}

// Invariant 3: let-scoping — x is not in scope outside body. Explicit
// params with an empty list means any unresolved bare identifier is a
// hard failure rather than a newly discovered implicit parameter.
func TestInvariantLetNameOutOfScopeOutsideBody(t *testing.T) {
	fn := ParseParams("let(x, 1, x) + x", nil)
	require.True(t, fn.HasError())
	assert.Contains(t, fn.GetError(), "unknown symbol: 'x'")
}

// Invariant 4: precedence correctness — tighter-binding operator sits
// deeper in the tree.
func TestInvariantPrecedenceDepth(t *testing.T) {
	fn := Parse("x*y+z")
	require.False(t, fn.HasError())
	top := fn.Root
	require.Equal(t, ast.BinaryOp, top.Kind)
	assert.Equal(t, "Add", top.Op.Name)
	require.Equal(t, ast.BinaryOp, top.LHS.Kind)
	assert.Equal(t, "Mul", top.LHS.Op.Name)
}

// Invariant 6: extractor contract — an out-of-range new_pos leaves the
// cursor unchanged and yields no symbol.
type fixedExtractor struct {
	newPos int
	symbol string
}

func (e fixedExtractor) ExtractSymbol(src string, pos, end int) (int, string) {
	return e.newPos, e.symbol
}

func TestInvariantExtractorOutOfRangeIsIgnored(t *testing.T) {
	extractor := fixedExtractor{newPos: 0, symbol: "ignored"}
	fn := ParseParamsWithExtractor("host.metric", nil, extractor)
	require.True(t, fn.HasError())
}

func TestExtractorConsumesQualifiedName(t *testing.T) {
	extractor := fixedExtractor{newPos: len("host.metric"), symbol: "host.metric"}
	fn := ParseParamsWithExtractor("host.metric", []string{"host.metric"}, extractor)
	require.False(t, fn.HasError())
	assert.Equal(t, []string{"host.metric"}, fn.Params)
	require.Equal(t, ast.Symbol, fn.Root.Kind)
	assert.Equal(t, 0, fn.Root.SymbolID)
}

// Invariant 7: unwrap round-trip.
func TestInvariantUnwrapRoundTrip(t *testing.T) {
	wrapper, body, err := Unwrap("W( BODY )")
	require.NoError(t, err)
	assert.Equal(t, "W", wrapper)
	assert.Equal(t, " BODY ", body)
}

func TestUnwrapMissingWrapperName(t *testing.T) {
	_, _, err := Unwrap("(body)")
	require.Error(t, err)
	assert.Equal(t, "could not extract wrapper name", err.Error())
}

func TestUnwrapMissingOpenParen(t *testing.T) {
	_, _, err := Unwrap("wrapper body")
	require.Error(t, err)
	assert.Equal(t, "could not match opening '('", err.Error())
}

func TestUnwrapMissingCloseParen(t *testing.T) {
	_, _, err := Unwrap("wrapper(body")
	require.Error(t, err)
	assert.Equal(t, "could not match closing ')'", err.Error())
}

func TestCompileReturnsGoError(t *testing.T) {
	_, err := Compile("1 +")
	require.Error(t, err)
	parseErr, ok := err.(*ParseError)
	require.True(t, ok)
	assert.Equal(t, len("1 +"), parseErr.Position)
	assert.Equal(t, parseErr.Message, parseErr.Error())

	fn, err := Compile("1+2")
	require.NoError(t, err)
	assert.Equal(t, 3.0, fn.Root.LHS.Num+fn.Root.RHS.Num)
}

var _ resolve.SymbolExtractor = fixedExtractor{}
