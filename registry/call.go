package registry

// CallSpec declares the fixed arity a CallRepo entry constructs Call
// nodes with.
type CallSpec struct {
	Name  string
	Arity int
}

// CallRepo maps function names (e.g. "sin", "pow") to a CallSpec
// declaring the fixed arity the parser should build a Call node with.
// The core does not validate that the parsed argument count matches
// Arity (spec.md §7 lists no generic call-arity-mismatch diagnostic);
// Arity is carried on the node for a downstream evaluator's use — see
// DESIGN.md for this decision.
type CallRepo interface {
	Lookup(name string) (CallSpec, bool)
}

// StaticCallRepo is a CallRepo backed by a fixed name table.
type StaticCallRepo struct {
	specs map[string]CallSpec
}

// NewStaticCallRepo builds a StaticCallRepo from the given specs.
func NewStaticCallRepo(specs map[string]CallSpec) *StaticCallRepo {
	return &StaticCallRepo{specs: specs}
}

// Lookup returns the CallSpec registered for name, if any.
func (r *StaticCallRepo) Lookup(name string) (CallSpec, bool) {
	spec, ok := r.specs[name]
	return spec, ok
}

// DefaultCalls returns a representative math function set used when no
// CallRepo override is supplied. The table is built once, at package
// initialization, and the same read-only repo is returned to every caller.
func DefaultCalls() *StaticCallRepo { return defaultCalls }

var defaultCalls = func() *StaticCallRepo {
	return NewStaticCallRepo(map[string]CallSpec{
		"sin":  {Name: "sin", Arity: 1},
		"cos":  {Name: "cos", Arity: 1},
		"sqrt": {Name: "sqrt", Arity: 1},
		"exp":  {Name: "exp", Arity: 1},
		"log":  {Name: "log", Arity: 1},
		"abs":  {Name: "abs", Arity: 1},
		"pow":  {Name: "pow", Arity: 2},
		"min":  {Name: "min", Arity: 2},
		"max":  {Name: "max", Arity: 2},
	})
}()
