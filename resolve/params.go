// Package resolve implements the two symbol-resolution strategies from
// spec.md §4.5 (explicit vs. implicit parameter discovery), the
// lexically-scoped let-binding stack layered on top of them, and the
// pluggable external SymbolExtractor contract from spec.md §4.6.
package resolve

import "fmt"

// Undef is returned by Resolve when a name does not resolve to anything
// in scope. It is chosen far outside the range of any legitimate
// parameter index or let-binding depth so it can never collide with a
// real symbol id.
const Undef = -(1 << 62)

// Params resolves a bare identifier to a non-negative parameter index,
// or reports Undef if the identifier is not a known parameter.
type Params interface {
	Resolve(name string) int
	Implicit() bool
	Names() []string
}

// ExplicitParams resolves only names supplied up front; unknown names
// resolve to Undef. Used for the parser's "explicit parameter list"
// entry points and for every lambda body (spec.md §4.7).
type ExplicitParams struct {
	names []string
	index map[string]int
}

// NewExplicitParams builds an ExplicitParams resolver from names, in
// index order. Duplicate names are rejected.
func NewExplicitParams(names []string) (*ExplicitParams, error) {
	index := make(map[string]int, len(names))
	for i, n := range names {
		if _, dup := index[n]; dup {
			return nil, fmt.Errorf("duplicate parameter name: %q", n)
		}
		index[n] = i
	}
	cp := make([]string, len(names))
	copy(cp, names)
	return &ExplicitParams{names: cp, index: index}, nil
}

// Resolve returns name's 0-based index, or Undef if name is not a known
// parameter.
func (p *ExplicitParams) Resolve(name string) int {
	if id, ok := p.index[name]; ok {
		return id
	}
	return Undef
}

// Implicit always reports false for ExplicitParams.
func (p *ExplicitParams) Implicit() bool { return false }

// Names returns the originally supplied parameter list.
func (p *ExplicitParams) Names() []string { return p.names }

// ImplicitParams discovers parameters as they are encountered, assigning
// each new name the next index in first-encounter order.
type ImplicitParams struct {
	names []string
	index map[string]int
}

// NewImplicitParams builds an empty ImplicitParams resolver.
func NewImplicitParams() *ImplicitParams {
	return &ImplicitParams{index: make(map[string]int)}
}

// Resolve returns name's index, inserting it at the next index if this
// is the first time name has been seen.
func (p *ImplicitParams) Resolve(name string) int {
	if id, ok := p.index[name]; ok {
		return id
	}
	id := len(p.names)
	p.names = append(p.names, name)
	p.index[name] = id
	return id
}

// Implicit always reports true for ImplicitParams.
func (p *ImplicitParams) Implicit() bool { return true }

// Names returns the insertion-ordered set of names encountered so far.
func (p *ImplicitParams) Names() []string { return p.names }
