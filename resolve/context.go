package resolve

// Context pairs a Params strategy with an optional SymbolExtractor and a
// stack of let-binding names introduced by enclosing let(...) forms.
// Let-bindings shadow nothing at the Params level; they are resolved
// first and carry negative symbol ids, so the two namespaces never
// collide (spec.md §3, §4.5).
type Context struct {
	params    Params
	extractor SymbolExtractor
	letNames  []string
}

// NewContext builds a Context over params, with an optional extractor
// (nil disables external symbol extraction for this context).
func NewContext(params Params, extractor SymbolExtractor) *Context {
	return &Context{params: params, extractor: extractor}
}

// Params returns the resolver's parameter strategy.
func (c *Context) Params() Params { return c.params }

// Extractor returns the resolver's external symbol extractor, or nil.
func (c *Context) Extractor() SymbolExtractor { return c.extractor }

// PushLetBinding introduces a new innermost let-scope named name.
func (c *Context) PushLetBinding(name string) {
	c.letNames = append(c.letNames, name)
}

// PopLetBinding removes the innermost let-scope. It is a caller error to
// call PopLetBinding without a matching PushLetBinding; PopLetBinding is
// a no-op on an empty stack.
func (c *Context) PopLetBinding() {
	if len(c.letNames) == 0 {
		return
	}
	c.letNames = c.letNames[:len(c.letNames)-1]
}

// ResolveLetName scans the let-binding stack from innermost to outermost
// and returns the negative symbol id -(i+1) for the first match, where i
// is the 0-based index of the match counted from the outermost binding.
// Shadowing an outer binding of the same name resolves to the inner one.
// Returns Undef if name is not currently let-bound.
func (c *Context) ResolveLetName(name string) int {
	for i := len(c.letNames) - 1; i >= 0; i-- {
		if c.letNames[i] == name {
			return -(i + 1)
		}
	}
	return Undef
}

// Resolve resolves name against the let-binding stack first, then the
// parameter strategy. It does not invoke the SymbolExtractor: that step
// requires cursor manipulation the resolver has no access to, and is
// driven by the parser (spec.md §4.6).
func (c *Context) Resolve(name string) int {
	if id := c.ResolveLetName(name); id != Undef {
		return id
	}
	return c.params.Resolve(name)
}

// Stack is a stack of resolve Contexts, used to enter and leave nested
// resolution regimes. Lambda bodies always push a fresh Context with an
// Explicit Params resolver and no extractor, so outer parameters and
// let-bindings are invisible inside the lambda (spec.md §4.5, §4.7).
type Stack struct {
	contexts []*Context
}

// NewStack builds a Stack with root as its only, bottom-most context.
func NewStack(root *Context) *Stack {
	return &Stack{contexts: []*Context{root}}
}

// Push enters a new resolution regime.
func (s *Stack) Push(c *Context) {
	s.contexts = append(s.contexts, c)
}

// Pop leaves the current resolution regime, returning to the enclosing
// one. It is a caller error to Pop the root context.
func (s *Stack) Pop() {
	if len(s.contexts) <= 1 {
		return
	}
	s.contexts = s.contexts[:len(s.contexts)-1]
}

// Current returns the innermost active resolve Context.
func (s *Stack) Current() *Context {
	return s.contexts[len(s.contexts)-1]
}
