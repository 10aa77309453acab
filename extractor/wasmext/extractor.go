// Package wasmext implements resolve.SymbolExtractor by delegating the
// decision of what counts as a qualified, host-specific symbol to a
// guest WebAssembly module, hosted in-process via wazero — the same
// runtime used for the wasip1 in-process comparison harness this module
// was adapted from.
//
// # Guest ABI
//
// The guest module must export:
//
//	memory                                            the linear memory
//	alloc(size i32) -> (ptr i32)                       bump-allocate size bytes
//	extract_symbol(src_ptr, src_len, pos, end i32)
//	    -> (new_pos, sym_ptr, sym_len i32)             the extraction itself
//
// extract_symbol receives the full source text (not just the remaining
// slice) copied into its own linear memory, plus the cursor position and
// input length, and returns a new cursor position and a (ptr, len) pair
// locating the extracted symbol text in its own memory. A new_pos <= pos
// signals failure, matching the host-side SymbolExtractor contract.
package wasmext

import (
	"context"
	"fmt"

	"github.com/mlindqvist/rankexpr/resolve"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
)

var _ resolve.SymbolExtractor = (*Extractor)(nil)

// Extractor adapts a guest WASM module to resolve.SymbolExtractor. It
// owns its wazero runtime and module instance for the lifetime of the
// process that created it; Close releases both.
type Extractor struct {
	runtime wazero.Runtime
	alloc   extractFunc
	extract extractFunc
	mem     memoryAPI
}

// extractFunc and memoryAPI narrow wazero's api.Function/api.Memory down
// to the handful of methods this package calls, so the rest of the file
// can be exercised by tests against a fake guest without a real wazero
// runtime.
type extractFunc interface {
	Call(ctx context.Context, params ...uint64) ([]uint64, error)
}

type memoryAPI interface {
	Read(offset, byteCount uint32) ([]byte, bool)
	Write(offset uint32, v []byte) bool
}

// New instantiates module as a guest and returns an Extractor bound to
// it. The module is instantiated once; ExtractSymbol calls are not safe
// for concurrent use against the same Extractor (matching wazero module
// instances in general, and the single-threaded parser that will call
// this).
func New(ctx context.Context, module []byte) (*Extractor, error) {
	rt := wazero.NewRuntime(ctx)

	if _, err := wasi_snapshot_preview1.Instantiate(ctx, rt); err != nil {
		rt.Close(ctx)
		return nil, fmt.Errorf("wasmext: instantiate wasi: %w", err)
	}

	compiled, err := rt.CompileModule(ctx, module)
	if err != nil {
		rt.Close(ctx)
		return nil, fmt.Errorf("wasmext: compile module: %w", err)
	}

	mod, err := rt.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithName(""))
	if err != nil {
		rt.Close(ctx)
		return nil, fmt.Errorf("wasmext: instantiate module: %w", err)
	}

	alloc := mod.ExportedFunction("alloc")
	if alloc == nil {
		rt.Close(ctx)
		return nil, fmt.Errorf("wasmext: guest module does not export alloc")
	}
	extract := mod.ExportedFunction("extract_symbol")
	if extract == nil {
		rt.Close(ctx)
		return nil, fmt.Errorf("wasmext: guest module does not export extract_symbol")
	}
	mem := mod.Memory()
	if mem == nil {
		rt.Close(ctx)
		return nil, fmt.Errorf("wasmext: guest module does not export memory")
	}

	return &Extractor{runtime: rt, alloc: alloc, extract: extract, mem: mem}, nil
}

// Close releases the wazero runtime and every resource it owns.
func (e *Extractor) Close(ctx context.Context) error {
	return e.runtime.Close(ctx)
}

// ExtractSymbol implements resolve.SymbolExtractor by copying src into
// guest memory and delegating the extraction decision to the guest's
// extract_symbol export.
func (e *Extractor) ExtractSymbol(src string, pos, end int) (int, string) {
	ctx := context.Background()

	srcPtr, err := e.allocate(ctx, len(src))
	if err != nil {
		return pos, ""
	}
	if !e.mem.Write(srcPtr, []byte(src)) {
		return pos, ""
	}

	results, err := e.extract.Call(ctx, uint64(srcPtr), uint64(len(src)), uint64(pos), uint64(end))
	if err != nil || len(results) != 3 {
		return pos, ""
	}

	newPos := int(int32(results[0]))
	if newPos <= pos || newPos > end {
		return pos, ""
	}

	symPtr, symLen := uint32(results[1]), uint32(results[2])
	symBytes, ok := e.mem.Read(symPtr, symLen)
	if !ok {
		return pos, ""
	}
	return newPos, string(symBytes)
}

func (e *Extractor) allocate(ctx context.Context, size int) (uint32, error) {
	results, err := e.alloc.Call(ctx, uint64(size))
	if err != nil {
		return 0, err
	}
	if len(results) != 1 {
		return 0, fmt.Errorf("wasmext: alloc returned %d results, want 1", len(results))
	}
	return uint32(results[0]), nil
}
