package resolve

// SymbolExtractor is an optional, host-provided collaborator that may
// extend identifier lexing to consume qualified/dotted names the
// lexical layer would not otherwise recognize as a single identifier
// (spec.md §4.6).
//
// Given the cursor's current position and the end of the input, it may
// consume additional bytes of src starting at pos, returning a new
// position strictly greater than pos and at most end, plus the extracted
// symbol text. On failure it must return a newPos <= pos; the caller
// treats that, or any newPos > end, as "no match" and leaves the cursor
// and symbol untouched.
//
// The parser invokes ExtractSymbol only after a bare identifier has
// failed to resolve as either a let-reference or a parameter.
type SymbolExtractor interface {
	ExtractSymbol(src string, pos, end int) (newPos int, symbol string)
}
