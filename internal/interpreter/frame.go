package interpreter

import (
	"go.uber.org/zap"

	"github.com/go-wat/wat/internal/logging"
	"github.com/go-wat/wat/internal/wasm"
)

// frame is one function activation: its locals, the flattened code it
// steps through, and the operand/label stacks scoped to this call. Nested
// calls recurse through Engine.call rather than sharing a frame, so the Go
// call stack itself stands in for the activation stack, bounded by the
// depth check in Engine.call.
type frame struct {
	locals      []uint64
	code        []wasm.Instruction
	ip          int
	operands    *operandStack
	labels      *labelStack
	resultArity int
	engine      *Engine
	moduleInst  *wasm.ModuleInstance
	depth       int
	returned    bool
}

func (f *frame) run() []uint64 {
	for f.ip < len(f.code) && !f.returned {
		f.step()
	}
	out := make([]uint64, f.resultArity)
	for i := f.resultArity - 1; i >= 0; i-- {
		out[i] = f.operands.pop()
	}
	return out
}

// branch unwinds depth+1 labels, truncates the operand stack back to the
// target label's entry height, re-pushes the carried result values, and
// resumes at the target's continuation.
func (f *frame) branch(depth int) {
	target := f.labels.at(depth)
	results := make([]uint64, target.arity)
	for i := target.arity - 1; i >= 0; i-- {
		results[i] = f.operands.pop()
	}
	f.operands.truncateTo(target.stackHeight)
	for _, r := range results {
		f.operands.push(r)
	}
	f.labels.truncateTo(f.labels.len() - depth - 1)
	f.ip = target.continuation
}

func (f *frame) step() {
	in := f.code[f.ip]

	if log := f.engine.logger(); log.Enabled(logging.ScopeInterpreter) {
		log.Debug(logging.ScopeInterpreter, "dispatch", zap.Uint16("kind", uint16(in.Kind)), zap.Int("ip", f.ip), zap.Int("depth", f.depth))
	}

	switch in.Kind {
	case wasm.OpUnreachable:
		trapNow(TrapUnreachable, "unreachable instruction executed")

	case wasm.OpNop:
		// no-op

	case wasm.OpStartBlock:
		cont := in.EndPosition + 1
		if in.IsLoop {
			cont = f.ip
		}
		f.labels.push(label{stackHeight: f.operands.len(), arity: in.Arity, continuation: cont, endPosition: in.EndPosition})

	case wasm.OpStartIf:
		cond := f.operands.popI32()
		f.labels.push(label{stackHeight: f.operands.len(), arity: in.Arity, continuation: in.EndPosition + 1, endPosition: in.EndPosition})
		if cond == 0 {
			f.ip = in.ElsePosition
			return
		}

	case wasm.OpElse:
		f.ip = in.EndPosition
		return

	case wasm.OpEndBlock:
		f.labels.pop()

	case wasm.OpBr:
		f.branch(int(in.Label.Numeric))
		return

	case wasm.OpBrIf:
		if f.operands.popI32() != 0 {
			f.branch(int(in.Label.Numeric))
			return
		}

	case wasm.OpBrTable:
		idx := f.operands.popU32()
		target := in.BrDefault
		if int(idx) < len(in.BrTargets) {
			target = in.BrTargets[idx]
		}
		f.branch(int(target.Numeric))
		return

	case wasm.OpReturn:
		f.returned = true
		return

	case wasm.OpCall:
		f.execCall(in)

	case wasm.OpCallIndirect:
		f.execCallIndirect(in)

	case wasm.OpDrop:
		f.operands.pop()

	case wasm.OpSelect:
		c := f.operands.popI32()
		b := f.operands.pop()
		a := f.operands.pop()
		if c != 0 {
			f.operands.push(a)
		} else {
			f.operands.push(b)
		}

	case wasm.OpLocalGet:
		f.operands.push(f.locals[in.Var.Numeric])
	case wasm.OpLocalSet:
		f.locals[in.Var.Numeric] = f.operands.pop()
	case wasm.OpLocalTee:
		v := f.operands.pop()
		f.locals[in.Var.Numeric] = v
		f.operands.push(v)

	case wasm.OpGlobalGet, wasm.OpGlobalSet:
		f.execGlobal(in)

	case wasm.OpMemorySize, wasm.OpMemoryGrow:
		f.execMemorySizeGrow(in)

	default:
		switch {
		case isLoadOp(in.Kind):
			f.execLoad(in)
		case isStoreOp(in.Kind):
			f.execStore(in)
		default:
			f.execNumeric(in)
		}
	}

	f.ip++
}
