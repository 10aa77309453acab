// Package registry provides the read-only lookup contracts the parser
// consumes to recognize operators and call it knows how to build nodes
// for (spec.md §4.3, §6), plus a default, swappable implementation of
// each contract covering ordinary arithmetic/comparison/logical
// operators and a representative math function set.
//
// Registries are process-wide singletons populated once at
// initialization; every exported lookup is read-only and therefore safe
// for concurrent use by independent parses (spec.md §5).
package registry

import (
	"sort"

	"github.com/mlindqvist/rankexpr/ast"
)

// OperatorRepo maps operator token prefixes to an Operator identity.
// Create attempts a longest-prefix match against peek, which the parser
// always supplies as exactly MaxSize() bytes (zero-padded past end of
// input). On a match it returns the Operator and how many bytes of peek
// were consumed; on no match ok is false and the other return values are
// the zero value.
type OperatorRepo interface {
	MaxSize() int
	Create(peek []byte) (op ast.Operator, consumed int, ok bool)
}

type operatorEntry struct {
	spelling string
	op       ast.Operator
}

// StaticOperatorRepo is an OperatorRepo backed by a fixed table of
// spellings, sorted so that longest-prefix matching is correct
// regardless of table construction order.
type StaticOperatorRepo struct {
	entries []operatorEntry
	maxSize int
}

// NewStaticOperatorRepo builds a StaticOperatorRepo from name->Operator
// pairs. Later entries with the same spelling overwrite earlier ones.
func NewStaticOperatorRepo(entries map[string]ast.Operator) *StaticOperatorRepo {
	r := &StaticOperatorRepo{}
	for spelling, op := range entries {
		r.entries = append(r.entries, operatorEntry{spelling: spelling, op: op})
		if len(spelling) > r.maxSize {
			r.maxSize = len(spelling)
		}
	}
	// Longest spelling first, then lexical order, so Create's linear scan
	// performs a correct longest-prefix match deterministically.
	sort.Slice(r.entries, func(i, j int) bool {
		if len(r.entries[i].spelling) != len(r.entries[j].spelling) {
			return len(r.entries[i].spelling) > len(r.entries[j].spelling)
		}
		return r.entries[i].spelling < r.entries[j].spelling
	})
	return r
}

// MaxSize returns the longest operator spelling in bytes.
func (r *StaticOperatorRepo) MaxSize() int { return r.maxSize }

// Create returns the longest operator whose spelling is a prefix of peek.
func (r *StaticOperatorRepo) Create(peek []byte) (ast.Operator, int, bool) {
	for _, e := range r.entries {
		if len(e.spelling) == 0 || len(e.spelling) > len(peek) {
			continue
		}
		if string(peek[:len(e.spelling)]) == e.spelling {
			return e.op, len(e.spelling), true
		}
	}
	return ast.Operator{}, 0, false
}

// DefaultOperators returns the ordinary arithmetic, comparison, and
// logical operator set used when no OperatorRepo override is supplied.
// Precedence ranks increase with binding strength; only '^' associates
// to the right. The table is built once, at package initialization, and
// the same read-only repo is returned to every caller.
func DefaultOperators() *StaticOperatorRepo { return defaultOperators }

var defaultOperators = func() *StaticOperatorRepo {
	return NewStaticOperatorRepo(map[string]ast.Operator{
		"||": {Name: "Or", Precedence: 10},
		"&&": {Name: "And", Precedence: 20},
		"==": {Name: "Eq", Precedence: 30},
		"!=": {Name: "Ne", Precedence: 30},
		"<=": {Name: "Le", Precedence: 40},
		">=": {Name: "Ge", Precedence: 40},
		"<":  {Name: "Lt", Precedence: 40},
		">":  {Name: "Gt", Precedence: 40},
		"+":  {Name: "Add", Precedence: 50},
		"-":  {Name: "Sub", Precedence: 50},
		"*":  {Name: "Mul", Precedence: 60},
		"/":  {Name: "Div", Precedence: 60},
		"%":  {Name: "Mod", Precedence: 60},
		"^":  {Name: "Pow", Precedence: 70, RightAssoc: true},
	})
}()
