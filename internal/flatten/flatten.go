// Package flatten lowers the nested block/loop/if AST internal/wat parses
// into a single linear instruction vector the interpreter can step through
// with a plain instruction pointer, replacing recursive descent at
// execution time with pre-resolved jump targets.
package flatten

import (
	"go.uber.org/zap"

	"github.com/go-wat/wat/internal/logging"
	"github.com/go-wat/wat/internal/wasm"
)

// Program is the flattened form of every function body in a Module,
// indexed the same way as Module.Functions, ready to hand to
// internal/wasm's Instantiate.
type Program struct {
	FuncBodies [][]wasm.Instruction
}

// Module flattens every module-defined function body in m. Imported
// functions have no body to flatten and are absent from the result.
func Module(m *wasm.Module) (*Program, error) {
	return ModuleWithLogger(m, logging.Nop())
}

// ModuleWithLogger is Module, reporting each OpStartBlock/OpStartIf/OpElse
// marker it emits at logging.ScopeFlatten on log.
func ModuleWithLogger(m *wasm.Module, log *logging.Logger) (*Program, error) {
	if log == nil {
		log = logging.Nop()
	}
	bodies := make([][]wasm.Instruction, len(m.Functions))
	for i, fn := range m.Functions {
		bodies[i] = functionWithLogger(fn.Body, log)
	}
	return &Program{FuncBodies: bodies}, nil
}

// Function flattens one function body. The returned slice is ready for
// internal/interpreter: every OpStartBlock/OpStartIf/OpElse carries the
// positions execution needs on entry or on a branch, so the interpreter
// never has to re-walk the tree to find a branch target.
func Function(body []wasm.Instruction) []wasm.Instruction {
	return functionWithLogger(body, logging.Nop())
}

func functionWithLogger(body []wasm.Instruction, log *logging.Logger) []wasm.Instruction {
	out := make([]wasm.Instruction, 0, len(body))
	appendSeq(&out, body, log)
	return out
}

func appendSeq(out *[]wasm.Instruction, instrs []wasm.Instruction, log *logging.Logger) {
	for _, in := range instrs {
		switch in.Kind {
		case wasm.OpBlock, wasm.OpLoop:
			appendBlockLike(out, in, log)
		case wasm.OpIf:
			appendIf(out, in, log)
		default:
			*out = append(*out, leaf(in))
		}
	}
}

// leaf copies a non-control-structured instruction through unchanged; its
// Body/Else fields (always empty here) carry no meaning post-flattening.
func leaf(in wasm.Instruction) wasm.Instruction {
	in.Body = nil
	in.Else = nil
	return in
}

func arityOf(bt *wasm.BlockType) int {
	if bt != nil && bt.Result != nil {
		return 1
	}
	return 0
}

func appendBlockLike(out *[]wasm.Instruction, in wasm.Instruction, log *logging.Logger) {
	startIdx := len(*out)
	*out = append(*out, wasm.Instruction{
		Kind:    wasm.OpStartBlock,
		Context: in.Context,
		Arity:   arityOf(in.Block),
		IsLoop:  in.Kind == wasm.OpLoop,
	})
	log.Debug(logging.ScopeFlatten, "marker emitted", zap.Uint16("kind", uint16(wasm.OpStartBlock)), zap.Int("position", startIdx))
	appendSeq(out, in.Body, log)
	endIdx := len(*out)
	*out = append(*out, wasm.Instruction{Kind: wasm.OpEndBlock, Context: in.Context})
	log.Debug(logging.ScopeFlatten, "marker emitted", zap.Uint16("kind", uint16(wasm.OpEndBlock)), zap.Int("position", endIdx))
	(*out)[startIdx].EndPosition = endIdx
	// A block/loop never has an else branch; ElsePosition is left at the
	// zero value and is meaningless for OpStartBlock.
}

func appendIf(out *[]wasm.Instruction, in wasm.Instruction, log *logging.Logger) {
	startIdx := len(*out)
	*out = append(*out, wasm.Instruction{
		Kind:    wasm.OpStartIf,
		Context: in.Context,
		Arity:   arityOf(in.Block),
	})
	log.Debug(logging.ScopeFlatten, "marker emitted", zap.Uint16("kind", uint16(wasm.OpStartIf)), zap.Int("position", startIdx))
	appendSeq(out, in.Body, log)

	if len(in.Else) > 0 {
		elseIdx := len(*out)
		*out = append(*out, wasm.Instruction{Kind: wasm.OpElse, Context: in.Context})
		log.Debug(logging.ScopeFlatten, "marker emitted", zap.Uint16("kind", uint16(wasm.OpElse)), zap.Int("position", elseIdx))
		appendSeq(out, in.Else, log)
		endIdx := len(*out)
		*out = append(*out, wasm.Instruction{Kind: wasm.OpEndBlock, Context: in.Context})
		log.Debug(logging.ScopeFlatten, "marker emitted", zap.Uint16("kind", uint16(wasm.OpEndBlock)), zap.Int("position", endIdx))
		(*out)[startIdx].ElsePosition = elseIdx + 1
		(*out)[startIdx].EndPosition = endIdx
		(*out)[elseIdx].EndPosition = endIdx
		return
	}

	endIdx := len(*out)
	*out = append(*out, wasm.Instruction{Kind: wasm.OpEndBlock, Context: in.Context})
	log.Debug(logging.ScopeFlatten, "marker emitted", zap.Uint16("kind", uint16(wasm.OpEndBlock)), zap.Int("position", endIdx))
	(*out)[startIdx].ElsePosition = endIdx
	(*out)[startIdx].EndPosition = endIdx
}
