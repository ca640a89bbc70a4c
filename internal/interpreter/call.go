package interpreter

import "github.com/go-wat/wat/internal/wasm"

func (f *frame) execCall(in wasm.Instruction) {
	funcIdx := int(in.Func.Numeric)
	if funcIdx < 0 || funcIdx >= len(f.moduleInst.FunctionAddrs) {
		trapNow(TrapUndefinedElement, "call: function index %d out of range", funcIdx)
	}
	addr := f.moduleInst.FunctionAddrs[funcIdx]
	f.invoke(addr)
}

// execCallIndirect dispatches through this instance's sole table,
// checking the callee's actual type against the static typeuse at the
// call site before invoking it.
func (f *frame) execCallIndirect(in wasm.Instruction) {
	elemIdx := f.operands.popU32()
	if f.moduleInst.TableAddr < 0 {
		trapNow(TrapUndefinedElement, "call_indirect: module has no table")
	}
	table := f.engine.Store.Tables[f.moduleInst.TableAddr]
	if int(elemIdx) >= len(table.Elements) {
		trapNow(TrapUndefinedElement, "call_indirect: element index %d out of range", elemIdx)
	}
	addrPtr := table.Elements[elemIdx]
	if addrPtr == nil {
		trapNow(TrapUninitializedElement, "call_indirect: element %d is uninitialized", elemIdx)
	}
	addr := *addrPtr
	callee := f.engine.Store.Functions[addr]

	want := in.TypeUse.Inline
	if want == nil {
		want = &f.moduleInst.Module.Types[in.TypeUse.Type.Numeric].Type
	}
	if !want.Equals(&callee.Type) {
		trapNow(TrapIndirectCallTypeMismatch, "call_indirect: expected %s, found %s", want, callee.Type.String())
	}
	f.invoke(addr)
}

func (f *frame) invoke(addr int) {
	nargs := len(f.engine.Store.Functions[addr].Type.Params)
	args := make([]uint64, nargs)
	for i := nargs - 1; i >= 0; i-- {
		args[i] = f.operands.pop()
	}
	results, err := f.engine.call(addr, args, f.depth+1)
	if err != nil {
		panic(err.(*Trap))
	}
	for _, r := range results {
		f.operands.push(r)
	}
}

func (f *frame) execGlobal(in wasm.Instruction) {
	globalIdx := int(in.Var.Numeric)
	if globalIdx < 0 || globalIdx >= len(f.moduleInst.GlobalAddrs) {
		trapNow(TrapUndefinedElement, "global index %d out of range", globalIdx)
	}
	cell := f.engine.Store.Globals[f.moduleInst.GlobalAddrs[globalIdx]]
	if in.Kind == wasm.OpGlobalGet {
		f.operands.push(cell.Value)
	} else {
		cell.Value = f.operands.pop()
	}
}

func (f *frame) execMemorySizeGrow(in wasm.Instruction) {
	if f.moduleInst.MemoryAddr < 0 {
		trapNow(TrapOutOfBoundsMemoryAccess, "no memory in this module")
	}
	mem := f.engine.Store.Memories[f.moduleInst.MemoryAddr]
	if in.Kind == wasm.OpMemorySize {
		f.operands.pushU32(mem.PageCount())
		return
	}
	delta := f.operands.popU32()
	prev, ok := mem.Grow(delta)
	if !ok {
		f.operands.pushI32(-1)
		return
	}
	f.operands.pushU32(prev)
}
