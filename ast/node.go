// Package ast defines the tagged-variant node model produced by the
// ranking-expression parser.
//
// Rather than a classic interface hierarchy with one concrete type per
// node kind, every node is represented by a single Node struct carrying a
// Kind discriminant plus the superset of fields used by some kind or
// another. Polymorphism is over a small capability set — Children for
// traversal, String for pretty-printing — rather than virtual dispatch;
// operator identity (precedence, associativity) is likewise plain data on
// Operator, consumed by a free function (DoBefore) instead of a method
// with per-operator behavior.
package ast

import "fmt"

// Kind identifies the variant of a Node.
type Kind uint8

const (
	Number Kind = iota
	String
	Symbol
	Neg
	Not
	Array
	If
	Let
	ErrorNode
	Call
	BinaryOp
	TensorSum
	TensorMap
	TensorJoin
)

// String returns a short name for the node kind, used in diagnostics and
// tests.
func (k Kind) String() string {
	switch k {
	case Number:
		return "Number"
	case String:
		return "String"
	case Symbol:
		return "Symbol"
	case Neg:
		return "Neg"
	case Not:
		return "Not"
	case Array:
		return "Array"
	case If:
		return "If"
	case Let:
		return "Let"
	case ErrorNode:
		return "Error"
	case Call:
		return "Call"
	case BinaryOp:
		return "BinaryOp"
	case TensorSum:
		return "TensorSum"
	case TensorMap:
		return "TensorMap"
	case TensorJoin:
		return "TensorJoin"
	default:
		return "(unknown)"
	}
}

// Operator is the identity of a binary operator: its spelling, its
// precedence rank, and whether it associates to the right. do_before
// (see DoBefore) is implemented as a pure function over two Operator
// values rather than a method, per the tagged-variant design.
type Operator struct {
	Name       string
	Precedence int
	RightAssoc bool
}

// DoBefore reports whether self, sitting on top of the operator stack,
// must be reduced before other is pushed. This is the precedence and
// associativity rule that drives push_operator's reduction loop.
func DoBefore(self, other Operator) bool {
	if self.Precedence > other.Precedence {
		return true
	}
	if self.Precedence == other.Precedence && !other.RightAssoc {
		return true
	}
	return false
}

// Node is a single AST node. The Kind field selects which of the fields
// below are meaningful; unused fields for a given kind are left zero.
type Node struct {
	Kind Kind
	Pos  int // byte offset in the source text where this node begins

	// Number
	Num float64

	// String
	Str string

	// Symbol: id >= 0 is a parameter index, id < 0 is a let-binding depth
	// encoded as -(i+1).
	SymbolID int

	// Neg, Not, Array, Call: operands/elements/arguments in order.
	Children []*Node

	// If
	Cond, True, False *Node
	PTrue             float64

	// Let
	LetName           string
	LetValue, LetBody *Node

	// Call
	CallName string
	Arity    int

	// BinaryOp
	Op       Operator
	LHS, RHS *Node

	// TensorSum
	SumExpr *Node
	Dim     string
	HasDim  bool

	// TensorMap
	MapExpr *Node
	// TensorJoin
	JoinLHS, JoinRHS *Node
	// TensorMap / TensorJoin
	Lambda *Function

	// Error
	Msg string
}

// NewNumber creates a Number node.
func NewNumber(pos int, v float64) *Node { return &Node{Kind: Number, Pos: pos, Num: v} }

// NewString creates a String node.
func NewString(pos int, s string) *Node { return &Node{Kind: String, Pos: pos, Str: s} }

// NewSymbol creates a Symbol node.
func NewSymbol(pos int, id int) *Node { return &Node{Kind: Symbol, Pos: pos, SymbolID: id} }

// NewNeg creates a unary negation node.
func NewNeg(pos int, child *Node) *Node { return &Node{Kind: Neg, Pos: pos, Children: []*Node{child}} }

// NewNot creates a unary logical-not node.
func NewNot(pos int, child *Node) *Node { return &Node{Kind: Not, Pos: pos, Children: []*Node{child}} }

// NewArray creates an Array literal node.
func NewArray(pos int, children []*Node) *Node {
	return &Node{Kind: Array, Pos: pos, Children: children}
}

// NewIf creates an If node.
func NewIf(pos int, cond, trueExpr, falseExpr *Node, pTrue float64) *Node {
	return &Node{Kind: If, Pos: pos, Cond: cond, True: trueExpr, False: falseExpr, PTrue: pTrue}
}

// NewLet creates a Let node.
func NewLet(pos int, name string, value, body *Node) *Node {
	return &Node{Kind: Let, Pos: pos, LetName: name, LetValue: value, LetBody: body}
}

// NewError creates an Error node wrapping a diagnostic message.
func NewError(pos int, msg string) *Node { return &Node{Kind: ErrorNode, Pos: pos, Msg: msg} }

// NewCall creates a Call node.
func NewCall(pos int, name string, arity int, args []*Node) *Node {
	return &Node{Kind: Call, Pos: pos, CallName: name, Arity: arity, Children: args}
}

// NewBinaryOp creates a BinaryOp node.
func NewBinaryOp(pos int, op Operator, lhs, rhs *Node) *Node {
	return &Node{Kind: BinaryOp, Pos: pos, Op: op, LHS: lhs, RHS: rhs}
}

// NewTensorSum creates a TensorSum node. hasDim distinguishes "no
// dimension given" from an explicit empty-string dimension name.
func NewTensorSum(pos int, expr *Node, dim string, hasDim bool) *Node {
	return &Node{Kind: TensorSum, Pos: pos, SumExpr: expr, Dim: dim, HasDim: hasDim}
}

// NewTensorMap creates a TensorMap node.
func NewTensorMap(pos int, expr *Node, lambda *Function) *Node {
	return &Node{Kind: TensorMap, Pos: pos, MapExpr: expr, Lambda: lambda}
}

// NewTensorJoin creates a TensorJoin node.
func NewTensorJoin(pos int, lhs, rhs *Node, lambda *Function) *Node {
	return &Node{Kind: TensorJoin, Pos: pos, JoinLHS: lhs, JoinRHS: rhs, Lambda: lambda}
}

// Children returns n's direct AST children in evaluation order, for
// traversal and pretty-printing. It does not descend into a lambda's
// body (see Function.Root); callers that need to walk an entire tree
// including nested lambdas should use Walk.
func (n *Node) Children() []*Node {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case Neg, Not, Array, Call:
		return n.Children
	case If:
		return []*Node{n.Cond, n.True, n.False}
	case Let:
		return []*Node{n.LetValue, n.LetBody}
	case BinaryOp:
		return []*Node{n.LHS, n.RHS}
	case TensorSum:
		return []*Node{n.SumExpr}
	case TensorMap:
		return []*Node{n.MapExpr}
	case TensorJoin:
		return []*Node{n.JoinLHS, n.JoinRHS}
	default:
		return nil
	}
}

// lambdaRoot returns the root of n's attached lambda body, if any.
func (n *Node) lambdaRoot() *Node {
	if n == nil || n.Lambda == nil {
		return nil
	}
	return n.Lambda.Root
}

// String renders a compact, debugger-friendly representation of the
// node kind and its defining attribute.
func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	switch n.Kind {
	case Number:
		return fmt.Sprintf("Number(%v)", n.Num)
	case String:
		return fmt.Sprintf("String(%q)", n.Str)
	case Symbol:
		return fmt.Sprintf("Symbol(%d)", n.SymbolID)
	case Call:
		return fmt.Sprintf("Call(%s/%d)", n.CallName, n.Arity)
	case BinaryOp:
		return fmt.Sprintf("BinaryOp(%s)", n.Op.Name)
	case ErrorNode:
		return fmt.Sprintf("Error(%s)", n.Msg)
	case Let:
		return fmt.Sprintf("Let(%s)", n.LetName)
	case TensorSum:
		return "TensorSum"
	default:
		return n.Kind.String()
	}
}

// Walk performs an iterative (non-recursive) traversal of the tree rooted
// at root, calling visit for every node encountered including nested
// lambda bodies. Traversal order is not specified beyond "root first,
// children afterward"; Walk stops early if visit returns false.
//
// Deeply nested ranking expressions can nest to the depth of the input
// text, so this — like Release — uses an explicit worklist instead of
// recursion to avoid stack overflow on pathological inputs.
func Walk(root *Node, visit func(*Node) bool) {
	if root == nil {
		return
	}
	stack := []*Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n == nil {
			continue
		}
		if !visit(n) {
			return
		}
		stack = append(stack, n.Children()...)
		if lr := n.lambdaRoot(); lr != nil {
			stack = append(stack, lr)
		}
	}
}

// Release drops every pointer reachable from root, iteratively. Go's
// garbage collector reclaims unreachable trees on its own, but a tree
// built from deeply nested input can be arbitrarily deep; releasing it
// via a recursive destructor (as a naive port from a manually-memory-
// managed language would) risks stack overflow. Release walks the tree
// with an explicit worklist and clears each node's outgoing pointers,
// so the whole tree becomes collectible without ever recursing.
func Release(root *Node) {
	if root == nil {
		return
	}
	stack := []*Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n == nil {
			continue
		}
		stack = append(stack, n.Children()...)
		if lr := n.lambdaRoot(); lr != nil {
			stack = append(stack, lr)
		}
		n.Children = nil
		n.Cond, n.True, n.False = nil, nil, nil
		n.LetValue, n.LetBody = nil, nil
		n.LHS, n.RHS = nil, nil
		n.SumExpr, n.MapExpr, n.JoinLHS, n.JoinRHS = nil, nil, nil, nil
		n.Lambda = nil
	}
}
