package parser

import (
	"fmt"

	"github.com/mlindqvist/rankexpr/ast"
	"github.com/mlindqvist/rankexpr/registry"
	"github.com/mlindqvist/rankexpr/resolve"
)

// Parser drives the recursive-descent, precedence-climbing grammar of
// spec.md §4.7 over a single Context. It holds the registries consulted
// for operators and calls and the stack of resolve Contexts entered by
// nested lambda bodies.
type Parser struct {
	ctx       *Context
	resolvers *resolve.Stack
	operators registry.OperatorRepo
	calls     registry.CallRepo
}

func newParser(expr string, resolveCtx *resolve.Context, operators registry.OperatorRepo, calls registry.CallRepo, maxDepth int) *Parser {
	return &Parser{
		ctx:       NewContext(expr, maxDepth),
		resolvers: resolve.NewStack(resolveCtx),
		operators: operators,
		calls:     calls,
	}
}

// reduceOne pops the top operator and its two operands, binds them into
// a BinaryOp node, and pushes the result back onto the expression stack.
func (p *Parser) reduceOne() {
	op, pos, ok := p.ctx.PopOp()
	if !ok {
		return
	}
	rhs, okR := p.ctx.PopExpr()
	lhs, okL := p.ctx.PopExpr()
	if !okR || !okL {
		p.ctx.Fail("expression stack underflow")
		return
	}
	p.ctx.PushExpr(ast.NewBinaryOp(pos, op, lhs, rhs))
}

// pushOperator implements push_operator (spec.md §4.3): reduce while the
// operator on top of the stack must precede op and the stack is still
// above the current operator_mark, then push op.
func (p *Parser) pushOperator(op ast.Operator, pos int) {
	for p.ctx.OpLen() > p.ctx.OperatorMark() {
		top, _, _ := p.ctx.TopOp()
		if !ast.DoBefore(top, op) {
			break
		}
		p.reduceOne()
		if p.ctx.Failed() {
			return
		}
	}
	p.ctx.PushOp(op, pos)
}

// parseOperator recognizes the next operator via the longest-prefix
// match contract of OperatorRepo and feeds it to pushOperator (spec.md
// §4.3).
func (p *Parser) parseOperator() {
	p.ctx.SkipSpaces()
	peek := p.ctx.Peek(p.operators.MaxSize())
	op, consumed, ok := p.operators.Create(peek)
	if !ok {
		ch := p.ctx.Get()
		if ch == 0 {
			p.ctx.Fail("invalid operator: end of input")
		} else {
			p.ctx.Fail(fmt.Sprintf("invalid operator: '%c'", ch))
		}
		return
	}
	pos := p.ctx.Pos()
	p.ctx.Skip(consumed)
	p.pushOperator(op, pos)
}

// atExpressionTerminator reports whether the cursor is sitting at one of
// the three expression terminators or end of input (spec.md §4.4).
func (p *Parser) atExpressionTerminator() bool {
	if p.ctx.Eos() {
		return true
	}
	switch p.ctx.Get() {
	case ')', ',', ']':
		return true
	default:
		return false
	}
}

// parseExpression is the precedence-climbing driver (spec.md §4.4): it
// saves the current operator_mark, repeatedly parses value/operator
// pairs, reduces the operator stack back to the mark at a terminator,
// restores the previous mark, and returns the single resulting node.
//
// The expression and operator stacks are scratch space owned entirely by
// this call: every invocation leaves both stacks exactly as it found
// them (net of the single popped result), which is what makes nested
// calls — call arguments, array elements, parenthesized sub-expressions
// — safe to interleave on the same Context.
func (p *Parser) parseExpression() *ast.Node {
	mark := p.ctx.OpLen()
	prevMark := p.ctx.SetOperatorMark(mark)
	defer p.ctx.SetOperatorMark(prevMark)

	for {
		val := p.parseValue()
		p.ctx.PushExpr(val)
		if p.ctx.Failed() {
			break
		}
		p.ctx.SkipSpaces()
		if p.atExpressionTerminator() {
			break
		}
		p.parseOperator()
		if p.ctx.Failed() {
			break
		}
	}

	for p.ctx.OpLen() > mark {
		p.reduceOne()
		if p.ctx.Failed() {
			break
		}
	}

	result, ok := p.ctx.PopExpr()
	if !ok {
		p.ctx.Fail("expression stack underflow")
		return nil
	}
	return result
}

// parseValue dispatches on the first non-space byte (spec.md §4.7).
func (p *Parser) parseValue() *ast.Node {
	if !p.ctx.EnterValue() {
		return nil
	}
	defer p.ctx.LeaveValue()

	p.ctx.SkipSpaces()
	pos := p.ctx.Pos()
	switch p.ctx.Get() {
	case '-':
		p.ctx.Next()
		return ast.NewNeg(pos, p.parseValue())
	case '!':
		p.ctx.Next()
		return ast.NewNot(pos, p.parseValue())
	case '(':
		p.ctx.Next()
		inner := p.parseExpression()
		p.ctx.Eat(')')
		return inner
	case '[':
		return p.parseArray()
	case '"':
		return ast.NewString(pos, p.ctx.ParseStringLiteral())
	default:
		if isDigit(p.ctx.Get()) {
			return ast.NewNumber(pos, p.ctx.ParseNumber())
		}
		return p.parseSymbolOrCall()
	}
}

// parseArray parses an Array literal: '[' (expr (',' expr)*)? ']'.
func (p *Parser) parseArray() *ast.Node {
	pos := p.ctx.Pos()
	p.ctx.Next() // consume '['

	var children []*ast.Node
	p.ctx.SkipSpaces()
	if p.ctx.Get() != ']' {
		for {
			children = append(children, p.parseExpression())
			if p.ctx.Failed() {
				break
			}
			p.ctx.SkipSpaces()
			if p.ctx.Get() == ',' {
				p.ctx.Next()
				continue
			}
			break
		}
	}
	p.ctx.Eat(']')
	if p.ctx.Failed() {
		return nil
	}
	return ast.NewArray(pos, children)
}

// parseSymbolOrCall reads an identifier and either builds a Call (if
// immediately followed by '(') or resolves it as a let-reference,
// parameter, or — failing both — a host-extracted qualified symbol
// (spec.md §4.7).
func (p *Parser) parseSymbolOrCall() *ast.Node {
	pos := p.ctx.Pos()
	ident := p.ctx.GetIdent()
	if p.ctx.Failed() {
		return nil
	}
	if ident == "" {
		p.ctx.Fail("missing value")
		return nil
	}

	if p.ctx.Get() == '(' {
		return p.parseCall(pos, ident)
	}

	if id := p.resolvers.Current().Resolve(ident); id != resolve.Undef {
		return ast.NewSymbol(pos, id)
	}
	if id := p.tryExtractSymbol(pos, ident); id != resolve.Undef {
		return ast.NewSymbol(pos, id)
	}
	if !p.ctx.Failed() {
		p.ctx.Fail(fmt.Sprintf("unknown symbol: '%s'", ident))
	}
	return nil
}

// tryExtractSymbol implements the SymbolExtractor retry path (spec.md
// §4.6): it restores the cursor to just before the bare identifier (the
// restore may clear a latched failure, per Context.RestoreMark), then
// asks the extractor to consume a longer, host-specific qualified name
// starting there.
func (p *Parser) tryExtractSymbol(identPos int, ident string) int {
	extractor := p.resolvers.Current().Extractor()
	if extractor == nil {
		return resolve.Undef
	}

	mark := Mark{pos: identPos}
	// ident was read starting at identPos with isIdentStart(ident[0])
	// true, so the byte at identPos equals ident[0].
	mark.curr = ident[0]
	p.ctx.RestoreMark(mark)

	newPos, symbol := extractor.ExtractSymbol(p.ctx.Src(), p.ctx.Pos(), p.ctx.End())
	if newPos <= p.ctx.Pos() || newPos > p.ctx.End() {
		return resolve.Undef
	}

	endMark := Mark{pos: newPos}
	if newPos < p.ctx.End() {
		endMark.curr = p.ctx.Src()[newPos]
	}
	p.ctx.RestoreMark(endMark)

	return p.resolvers.Current().Params().Resolve(symbol)
}

// parseCall parses the argument list of an identifier immediately
// followed by '(': the if/let/map/join/sum keyword forms, or a generic
// CallRepo-backed function call (spec.md §4.7).
func (p *Parser) parseCall(pos int, name string) *ast.Node {
	p.ctx.Next() // consume '('

	switch name {
	case "if":
		return p.parseIf(pos)
	case "let":
		return p.parseLet(pos)
	case "map":
		return p.parseMap(pos)
	case "join":
		return p.parseJoin(pos)
	case "sum":
		return p.parseSum(pos)
	}

	spec, ok := p.calls.Lookup(name)
	if !ok {
		p.ctx.Fail(fmt.Sprintf("unknown function: '%s'", name))
		return nil
	}

	var args []*ast.Node
	p.ctx.SkipSpaces()
	if p.ctx.Get() != ')' {
		for {
			args = append(args, p.parseExpression())
			if p.ctx.Failed() {
				break
			}
			p.ctx.SkipSpaces()
			if p.ctx.Get() == ',' {
				p.ctx.Next()
				continue
			}
			break
		}
	}
	p.ctx.Eat(')')
	if p.ctx.Failed() {
		return nil
	}
	return ast.NewCall(pos, spec.Name, spec.Arity, args)
}

// parseIf parses if(cond, a, b [, p_true]): three required
// sub-expressions and an optional fourth literal number, parsed with
// parse_number rather than a general expression (spec.md §4.7). A
// fourth argument that is not a numeric literal leaves p_true at its
// default of 0.5 and is not consumed; the closing ')' is then required at
// that point, so an empty fourth argument ("if(c,a,b,)") is accepted,
// while any other non-numeric text fails the parse with "expected ')'".
func (p *Parser) parseIf(pos int) *ast.Node {
	cond := p.parseExpression()
	p.ctx.Eat(',')
	trueExpr := p.parseExpression()
	p.ctx.Eat(',')
	falseExpr := p.parseExpression()
	if p.ctx.Failed() {
		return nil
	}

	pTrue := 0.5
	p.ctx.SkipSpaces()
	if p.ctx.Get() == ',' {
		p.ctx.Next()
		p.ctx.SkipSpaces()
		mark := p.ctx.SaveMark()
		v := p.ctx.ParseNumber()
		if p.ctx.Failed() {
			// Non-numeric fourth argument: back out of the speculative
			// parse and keep the default p_true. The argument text stays
			// unconsumed, so the Eat(')') below decides whether the
			// parse continues.
			p.ctx.RestoreMark(mark)
			p.ctx.clearFailure()
		} else {
			pTrue = v
		}
	}

	p.ctx.Eat(')')
	if p.ctx.Failed() {
		return nil
	}
	return ast.NewIf(pos, cond, trueExpr, falseExpr, pTrue)
}

// parseLet parses let(name, value, body): body is parsed under an
// extended let-scope that is popped again before constructing the node
// (spec.md §4.7).
func (p *Parser) parseLet(pos int) *ast.Node {
	name := p.ctx.GetIdent()
	if !p.ctx.Failed() && name == "" {
		p.ctx.Fail("missing value")
	}
	p.ctx.Eat(',')
	value := p.parseExpression()
	if p.ctx.Failed() {
		return nil
	}
	p.ctx.Eat(',')

	p.resolvers.Current().PushLetBinding(name)
	body := p.parseExpression()
	p.resolvers.Current().PopLetBinding()

	p.ctx.Eat(')')
	if p.ctx.Failed() {
		return nil
	}
	return ast.NewLet(pos, name, value, body)
}

// parseLambda parses f(a,b,...)(body): the body is parsed in a fresh
// resolve Context with an Explicit-Params resolver over the given names
// and no SymbolExtractor, so outer parameters and let-bindings are
// invisible (spec.md §4.5, §4.7).
func (p *Parser) parseLambda() *ast.Function {
	p.ctx.SkipSpaces()
	ident := p.ctx.GetIdent()
	if !p.ctx.Failed() && ident != "f" {
		p.ctx.Fail(fmt.Sprintf("expected 'f', but got '%s'", ident))
	}
	p.ctx.Eat('(')

	var params []string
	p.ctx.SkipSpaces()
	if p.ctx.Get() != ')' {
		for {
			name := p.ctx.GetIdent()
			if !p.ctx.Failed() && name == "" {
				p.ctx.Fail("missing value")
			}
			params = append(params, name)
			p.ctx.SkipSpaces()
			if p.ctx.Get() == ',' {
				p.ctx.Next()
				continue
			}
			break
		}
	}
	p.ctx.Eat(')')
	p.ctx.Eat('(')
	if p.ctx.Failed() {
		return nil
	}

	explicit, err := resolve.NewExplicitParams(params)
	if err != nil {
		p.ctx.Fail(err.Error())
		return nil
	}

	p.resolvers.Push(resolve.NewContext(explicit, nil))
	body := p.parseExpression()
	p.resolvers.Pop()

	p.ctx.Eat(')')
	if p.ctx.Failed() {
		return nil
	}
	return &ast.Function{Root: body, Params: params}
}

// parseMap parses map(expr, lambda), requiring a 1-parameter lambda.
func (p *Parser) parseMap(pos int) *ast.Node {
	expr := p.parseExpression()
	p.ctx.Eat(',')
	lambda := p.parseLambda()
	p.ctx.Eat(')')
	if p.ctx.Failed() {
		return nil
	}
	if len(lambda.Params) != 1 {
		p.ctx.Fail(fmt.Sprintf("map requires a lambda with 1 parameter, was %d", len(lambda.Params)))
		return nil
	}
	return ast.NewTensorMap(pos, expr, lambda)
}

// parseJoin parses join(lhs, rhs, lambda), requiring a 2-parameter
// lambda.
func (p *Parser) parseJoin(pos int) *ast.Node {
	lhs := p.parseExpression()
	p.ctx.Eat(',')
	rhs := p.parseExpression()
	p.ctx.Eat(',')
	lambda := p.parseLambda()
	p.ctx.Eat(')')
	if p.ctx.Failed() {
		return nil
	}
	if len(lambda.Params) != 2 {
		p.ctx.Fail(fmt.Sprintf("join requires a lambda with 2 parameter, was %d", len(lambda.Params)))
		return nil
	}
	return ast.NewTensorJoin(pos, lhs, rhs, lambda)
}

// parseSum parses sum(expr [, dimension-ident]).
func (p *Parser) parseSum(pos int) *ast.Node {
	expr := p.parseExpression()
	if p.ctx.Failed() {
		return nil
	}

	var dim string
	hasDim := false
	p.ctx.SkipSpaces()
	if p.ctx.Get() == ',' {
		p.ctx.Next()
		dim = p.ctx.GetIdent()
		hasDim = true
		if !p.ctx.Failed() && dim == "" {
			p.ctx.Fail("missing value")
		}
	}

	p.ctx.Eat(')')
	if p.ctx.Failed() {
		return nil
	}
	return ast.NewTensorSum(pos, expr, dim, hasDim)
}

// run parses the whole input and finalizes it into a Function (spec.md
// §4.8, get_result).
func (p *Parser) run() *ast.Function {
	p.ctx.SkipSpaces()
	root := p.parseExpression()

	if !p.ctx.Failed() {
		p.ctx.SkipSpaces()
		if !p.ctx.Eos() {
			p.ctx.Fail("incomplete parse")
		} else if p.ctx.ExprLen() != 0 || p.ctx.OpLen() != 0 {
			p.ctx.Fail("incomplete parse")
		}
	}

	paramsStrategy := p.resolvers.Current().Params()

	if p.ctx.Failed() {
		prefix := p.ctx.Src()[:p.ctx.Pos()]
		suffix := p.ctx.Src()[p.ctx.Pos():]
		msg := fmt.Sprintf("[%s]...[%s]...[%s]", prefix, p.ctx.FailMessage(), suffix)
		errNode := ast.NewError(p.ctx.Pos(), msg)

		var params []string
		if !paramsStrategy.Implicit() {
			params = paramsStrategy.Names()
		}
		return &ast.Function{Root: errNode, Params: params}
	}

	return &ast.Function{Root: root, Params: paramsStrategy.Names()}
}
