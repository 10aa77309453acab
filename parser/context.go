// Package parser implements the recursive-descent, precedence-climbing
// ranking-expression parser (spec.md §4). Context is the lexical cursor,
// scratch stacks, and single-shot failure latch every sub-parser shares;
// Parser layers the grammar on top of it.
package parser

import "github.com/mlindqvist/rankexpr/ast"

// ASCII whitespace bytes that separate tokens.
func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	default:
		return false
	}
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// isIdentStart reports whether b may begin an identifier. Digits are
// accepted deliberately, for compatibility with hosts that allow
// identifiers like "3x" — see spec.md §9's open question on this.
func isIdentStart(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9') || b == '_' || b == '@'
}

func isIdentCont(b byte) bool {
	return isIdentStart(b) || b == '$'
}

// opStackEntry is one pending operator on the operator stack, along with
// the source position it was recognized at (used when the reduction
// builds the BinaryOp node).
type opStackEntry struct {
	op  ast.Operator
	pos int
}

// Mark is an input checkpoint captured by SaveMark and restored by
// RestoreMark.
type Mark struct {
	pos  int
	curr byte
}

// Context is the lexical cursor plus the scratch stacks and failure
// latch that every sub-parser of a single parse call shares (spec.md
// §4.1, §4.4). A Context is confined to one Parse call; it is not safe
// for concurrent use.
type Context struct {
	src string
	pos int
	end int
	cur byte

	failed  bool
	failMsg string

	exprStack []*ast.Node
	opStack   []opStackEntry
	opMark    int

	depth    int
	maxDepth int
}

// NewContext builds a Context over src, with the cursor at position 0.
func NewContext(src string, maxDepth int) *Context {
	c := &Context{src: src, end: len(src), maxDepth: maxDepth}
	if len(src) > 0 {
		c.cur = src[0]
	}
	return c
}

// Src returns the full input text.
func (c *Context) Src() string { return c.src }

// Pos returns the current byte offset into Src.
func (c *Context) Pos() int { return c.pos }

// End returns the length of Src.
func (c *Context) End() int { return c.end }

// Get returns the current byte, or 0 at end of input (or once the
// failure latch has tripped).
func (c *Context) Get() byte { return c.cur }

// Eos reports whether the cursor is at the end of input.
func (c *Context) Eos() bool { return c.pos >= c.end }

// Next advances the cursor by one byte.
func (c *Context) Next() {
	if c.pos < c.end {
		c.pos++
	}
	if c.pos < c.end {
		c.cur = c.src[c.pos]
	} else {
		c.cur = 0
	}
}

// Skip advances the cursor by n bytes, clamped to the end of input.
func (c *Context) Skip(n int) {
	c.pos += n
	if c.pos > c.end {
		c.pos = c.end
	}
	if c.pos < c.end {
		c.cur = c.src[c.pos]
	} else {
		c.cur = 0
	}
}

// Peek reads up to n bytes starting at the cursor, zero-padded past the
// end of input, without moving the cursor.
func (c *Context) Peek(n int) []byte {
	buf := make([]byte, n)
	avail := c.end - c.pos
	if avail > 0 {
		if avail > n {
			avail = n
		}
		copy(buf, c.src[c.pos:c.pos+avail])
	}
	return buf
}

// Eat requires the current byte to equal want and advances past it,
// failing with "expected '<want>', but got '<got>'" on mismatch. Eat
// records its own failure only if the latch was empty at entry, per the
// single-shot failure semantics.
func (c *Context) Eat(want byte) {
	if c.failed {
		return
	}
	if c.cur != want {
		got := c.cur
		if got == 0 {
			c.Fail("expected '" + string(want) + "', but got end of input")
			return
		}
		c.Fail("expected '" + string(want) + "', but got '" + string(got) + "'")
		return
	}
	c.Next()
}

// SkipSpaces advances over ASCII whitespace.
func (c *Context) SkipSpaces() {
	for !c.Eos() && isSpace(c.cur) {
		c.Next()
	}
}

// Fail records msg as the latched diagnostic if no failure has been
// latched yet, then forces the current byte to 0 so downstream
// predicates terminate their loops promptly (spec.md §4.1, §7).
func (c *Context) Fail(msg string) {
	if !c.failed {
		c.failed = true
		c.failMsg = msg
	}
	c.cur = 0
}

// Failed reports whether the failure latch has tripped.
func (c *Context) Failed() bool { return c.failed }

// FailMessage returns the latched diagnostic, or "" if nothing has
// failed.
func (c *Context) FailMessage() string { return c.failMsg }

// clearFailure resets the failure latch without touching the cursor. It
// is unexported: the only callers within this package are RestoreMark
// (the documented extractor-retry path, spec.md §4.1) and the if(...)
// optional-p_true speculative-parse helper (see parser.go), which
// restores the cursor and clears the "invalid number" failure so that a
// non-numeric 4th argument keeps the default p_true; the closing-paren
// check that follows still fails unless that argument is empty.
func (c *Context) clearFailure() {
	c.failed = false
	c.failMsg = ""
}

// SaveMark captures a checkpoint of the cursor.
func (c *Context) SaveMark() Mark { return Mark{pos: c.pos, curr: c.cur} }

// RestoreMark reverts the cursor to m. If this moves the cursor back
// from end-of-input to a valid position, the failure latch is cleared —
// apart from parseIf's direct clearFailure call, this is the only path
// that clears a latched failure, and it exists to support the
// symbol-extractor retry (spec.md §4.1, §4.6).
func (c *Context) RestoreMark(m Mark) {
	wasEos := c.Eos()
	c.pos = m.pos
	c.cur = m.curr
	if wasEos && !c.Eos() {
		c.clearFailure()
	}
}

// PushExpr pushes n onto the expression stack.
func (c *Context) PushExpr(n *ast.Node) { c.exprStack = append(c.exprStack, n) }

// PopExpr pops the top of the expression stack. ok is false on
// underflow.
func (c *Context) PopExpr() (n *ast.Node, ok bool) {
	if len(c.exprStack) == 0 {
		return nil, false
	}
	last := len(c.exprStack) - 1
	n = c.exprStack[last]
	c.exprStack = c.exprStack[:last]
	return n, true
}

// ExprLen returns the current depth of the expression stack.
func (c *Context) ExprLen() int { return len(c.exprStack) }

// PushOp pushes an operator onto the operator stack.
func (c *Context) PushOp(op ast.Operator, pos int) {
	c.opStack = append(c.opStack, opStackEntry{op: op, pos: pos})
}

// TopOp returns the top of the operator stack without popping it.
func (c *Context) TopOp() (op ast.Operator, pos int, ok bool) {
	if len(c.opStack) == 0 {
		return ast.Operator{}, 0, false
	}
	e := c.opStack[len(c.opStack)-1]
	return e.op, e.pos, true
}

// PopOp pops the top of the operator stack.
func (c *Context) PopOp() (op ast.Operator, pos int, ok bool) {
	if len(c.opStack) == 0 {
		return ast.Operator{}, 0, false
	}
	last := len(c.opStack) - 1
	e := c.opStack[last]
	c.opStack = c.opStack[:last]
	return e.op, e.pos, true
}

// OpLen returns the current depth of the operator stack.
func (c *Context) OpLen() int { return len(c.opStack) }

// OperatorMark returns the current per-expression low-water mark on the
// operator stack.
func (c *Context) OperatorMark() int { return c.opMark }

// SetOperatorMark sets a new operator-stack low-water mark and returns
// the previous one, for the caller to restore when the current
// sub-expression is done (spec.md §4.4).
func (c *Context) SetOperatorMark(mark int) (prev int) {
	prev = c.opMark
	c.opMark = mark
	return prev
}

// EnterValue increments the recursion depth for a nested parse_value
// call, failing with "expression nested too deeply" if maxDepth would be
// exceeded. LeaveValue must be called exactly once for every EnterValue
// call, regardless of its return value.
func (c *Context) EnterValue() bool {
	c.depth++
	if c.maxDepth > 0 && c.depth > c.maxDepth {
		c.Fail("expression nested too deeply")
		return false
	}
	return true
}

// LeaveValue balances a prior EnterValue call.
func (c *Context) LeaveValue() { c.depth-- }
