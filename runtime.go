// Package wat is the embedder-facing convenience layer: parse one module,
// instantiate it with an empty import set, and invoke an exported
// function, without hand-wiring a Store. It composes internal/wat (lexer
// + parser), internal/flatten, and internal/interpreter into one call.
package wat

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/go-wat/wat/api"
	"github.com/go-wat/wat/internal/flatten"
	"github.com/go-wat/wat/internal/interpreter"
	"github.com/go-wat/wat/internal/logging"
	"github.com/go-wat/wat/internal/wasm"
	"github.com/go-wat/wat/internal/wat"
)

// Runtime parses, instantiates, and runs .wat modules that need no
// imports. It is not a linker: an embedder juggling several linked
// modules builds its own Store and drives internal/wasm.Instantiate and
// internal/interpreter.Engine directly.
type Runtime struct {
	cfg   *RuntimeConfig
	store *wasm.Store
	log   *logging.Logger
}

// NewRuntime builds a Runtime over a fresh, empty Store.
func NewRuntime(cfg *RuntimeConfig) *Runtime {
	if cfg == nil {
		cfg = NewRuntimeConfig()
	}
	return &Runtime{cfg: cfg, store: wasm.NewStore(), log: cfg.logger()}
}

// Module is one parsed, instantiated .wat module, ready to call exported
// functions on.
type Module struct {
	inst   *wasm.ModuleInstance
	engine *interpreter.Engine
}

// Instantiate parses source as a single WAT module named name, flattens
// every function body, and instantiates it against the Runtime's Store.
// The module must declare no imports.
func (r *Runtime) Instantiate(name string, source []byte) (*Module, error) {
	mod, err := wat.DecodeModuleWithOptions(name, source, r.log, r.cfg.features)
	if err != nil {
		return nil, err
	}
	r.log.Debug(logging.ScopeParser, "decoded module", zap.String("name", name))

	prog, err := flatten.ModuleWithLogger(mod, r.log)
	if err != nil {
		return nil, err
	}
	r.log.Debug(logging.ScopeFlatten, "flattened module", zap.String("name", name))

	inst, err := wasm.InstantiateWithMemoryMax(r.store, mod, prog.FuncBodies, r.cfg.memoryMaxPages)
	if err != nil {
		return nil, fmt.Errorf("instantiate %q: %w", name, err)
	}

	eng := interpreter.NewEngineWithLogger(r.store, r.log)
	if r.cfg.stackCapacity > 0 {
		eng.StackCapacity = r.cfg.stackCapacity
	}

	return &Module{inst: inst, engine: eng}, nil
}

// Call invokes the exported function named fn with args already laid out
// as raw value bit patterns: i32 and f32 values in the low 32 bits, i64 and
// f64 values in all 64 bits.
func (m *Module) Call(fn string, args ...uint64) ([]uint64, error) {
	idx, err := m.exportedFuncIndex(fn)
	if err != nil {
		return nil, err
	}
	addr := m.inst.FunctionAddrs[idx]
	return m.engine.Call(addr, args)
}

func (m *Module) exportedFuncIndex(name string) (uint32, error) {
	for _, exp := range m.inst.Module.Exports {
		if exp.Name == name && exp.Desc.Type == api.ExternTypeFunc {
			return exp.Desc.Index.Numeric, nil
		}
	}
	return 0, fmt.Errorf("no exported function named %q", name)
}
