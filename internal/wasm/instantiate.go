package wasm

import (
	"fmt"
	"math"

	"github.com/google/uuid"
)

// Instantiate allocates Store-owned runtime objects for mod and registers a
// new ModuleInstance, the bookkeeping half of the module lifecycle
// ("Decode -> Flatten -> Instantiate -> Execute"). It supports
// only modules with no imports, matching the scope of the root Runtime
// convenience: an embedder wiring real imports builds the
// ModuleInstance by hand against this same Store shape.
//
// funcBodies must align 1:1 with mod.Functions, already flattened by
// internal/flatten; Instantiate only wires them into FunctionInstances, it
// does not flatten them itself, keeping this package independent of the
// flattener.
func Instantiate(store *Store, mod *Module, funcBodies [][]Instruction) (*ModuleInstance, error) {
	return InstantiateWithMemoryMax(store, mod, funcBodies, 0)
}

// InstantiateWithMemoryMax is Instantiate, additionally capping every
// memory it allocates at memoryMaxPages pages (RuntimeConfig's
// WithMemoryMaxPages). A zero memoryMaxPages leaves each memory's own
// EffectiveMax as the only ceiling.
func InstantiateWithMemoryMax(store *Store, mod *Module, funcBodies [][]Instruction, memoryMaxPages uint32) (*ModuleInstance, error) {
	if len(mod.Imports) > 0 {
		return nil, fmt.Errorf("instantiate: module %q declares imports, unsupported by this convenience path", mod.Name)
	}
	if len(funcBodies) != len(mod.Functions) {
		return nil, fmt.Errorf("instantiate: got %d flattened bodies for %d functions", len(funcBodies), len(mod.Functions))
	}

	inst := &ModuleInstance{
		ID:         uuid.New(),
		Module:     mod,
		TableAddr:  -1,
		MemoryAddr: -1,
	}

	for i, fn := range mod.Functions {
		ft := fn.TypeUse.Inline
		if ft == nil {
			ft = &mod.Types[fn.TypeUse.Type.Numeric].Type
		}
		fi := &FunctionInstance{
			Owner:     inst.ID,
			Type:      *ft,
			NumLocals: len(ft.Params) + len(fn.Locals),
			Body:      funcBodies[i],
		}
		inst.FunctionAddrs = append(inst.FunctionAddrs, len(store.Functions))
		store.Functions = append(store.Functions, fi)
	}

	if len(mod.Tables) > 0 {
		t := mod.Tables[0]
		ti := &TableInstance{Type: t.Type, Elements: make([]*int, t.Type.Limits.Min)}
		inst.TableAddr = len(store.Tables)
		store.Tables = append(store.Tables, ti)
	}

	if len(mod.Memories) > 0 {
		m := mod.Memories[0]
		mi := &MemoryInstance{Type: m.Type, Data: make([]byte, m.Type.Limits.Min*PageSize), Ceiling: memoryMaxPages}
		inst.MemoryAddr = len(store.Memories)
		store.Memories = append(store.Memories, mi)
	}

	for _, g := range mod.Globals {
		cell := &GlobalCell{Type: g.Type, Value: evalConstExpr(g.Init, inst, store)}
		inst.GlobalAddrs = append(inst.GlobalAddrs, len(store.Globals))
		store.Globals = append(store.Globals, cell)
	}

	for _, el := range mod.Elements {
		if inst.TableAddr < 0 {
			return nil, fmt.Errorf("instantiate: elem segment but module has no table")
		}
		table := store.Tables[inst.TableAddr]
		offset := int(evalConstExpr(el.Offset, inst, store))
		for i, fidx := range el.FuncIndices {
			addr := inst.FunctionAddrs[fidx.Numeric]
			slot := offset + i
			if slot >= len(table.Elements) {
				return nil, fmt.Errorf("instantiate: elem segment overruns table of size %d", len(table.Elements))
			}
			a := addr
			table.Elements[slot] = &a
		}
	}

	for _, d := range mod.Data {
		if inst.MemoryAddr < 0 {
			return nil, fmt.Errorf("instantiate: data segment but module has no memory")
		}
		mem := store.Memories[inst.MemoryAddr]
		offset := int(evalConstExpr(d.Offset, inst, store))
		if offset+len(d.Init) > len(mem.Data) {
			return nil, fmt.Errorf("instantiate: data segment overruns memory of size %d", len(mem.Data))
		}
		copy(mem.Data[offset:], d.Init)
	}

	store.Modules[inst.ID] = inst
	return inst, nil
}

// evalConstExpr evaluates the restricted constant-expression grammar
// allowed in global initializers and elem/data offsets: a single
// *.const, or global.get of an already-instantiated (necessarily
// imported, hence earlier) global. No imports are supported by
// Instantiate, so in practice this only ever sees a bare const.
func evalConstExpr(expr []Instruction, inst *ModuleInstance, store *Store) uint64 {
	if len(expr) != 1 {
		return 0
	}
	in := expr[0]
	switch in.Kind {
	case OpI32Const:
		return uint64(uint32(in.I32))
	case OpI64Const:
		return uint64(in.I64)
	case OpF32Const:
		return uint64(math.Float32bits(in.F32))
	case OpF64Const:
		return math.Float64bits(in.F64)
	case OpGlobalGet:
		return store.Globals[inst.GlobalAddrs[in.Var.Numeric]].Value
	}
	return 0
}
