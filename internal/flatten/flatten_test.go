package flatten

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-wat/wat/internal/wasm"
)

func TestFunction_Straightline(t *testing.T) {
	body := []wasm.Instruction{{Kind: wasm.OpI32Const, I32: 1}, {Kind: wasm.OpI32Const, I32: 2}, {Kind: wasm.OpI32Add}}
	out := Function(body)
	require.Len(t, out, 3)
	require.Equal(t, wasm.OpI32Add, out[2].Kind)
}

func TestFunction_Block(t *testing.T) {
	body := []wasm.Instruction{{
		Kind:  wasm.OpBlock,
		Block: &wasm.BlockType{},
		Body:  []wasm.Instruction{{Kind: wasm.OpNop}},
	}}
	out := Function(body)
	// StartBlock, Nop, EndBlock
	require.Len(t, out, 3)
	require.Equal(t, wasm.OpStartBlock, out[0].Kind)
	require.False(t, out[0].IsLoop)
	require.Equal(t, 2, out[0].EndPosition)
	require.Equal(t, wasm.OpEndBlock, out[2].Kind)
}

func TestFunction_Loop(t *testing.T) {
	body := []wasm.Instruction{{
		Kind:  wasm.OpLoop,
		Block: &wasm.BlockType{},
		Body:  []wasm.Instruction{{Kind: wasm.OpNop}},
	}}
	out := Function(body)
	require.True(t, out[0].IsLoop)
}

func TestFunction_IfNoElse(t *testing.T) {
	body := []wasm.Instruction{{
		Kind:  wasm.OpIf,
		Block: &wasm.BlockType{},
		Body:  []wasm.Instruction{{Kind: wasm.OpNop}},
	}}
	out := Function(body)
	// StartIf, Nop, EndBlock
	require.Len(t, out, 3)
	require.Equal(t, wasm.OpStartIf, out[0].Kind)
	require.Equal(t, 2, out[0].ElsePosition)
	require.Equal(t, 2, out[0].EndPosition)
}

func TestFunction_IfElse(t *testing.T) {
	body := []wasm.Instruction{{
		Kind:  wasm.OpIf,
		Block: &wasm.BlockType{},
		Body:  []wasm.Instruction{{Kind: wasm.OpI32Const, I32: 1}},
		Else:  []wasm.Instruction{{Kind: wasm.OpI32Const, I32: 2}},
	}}
	out := Function(body)
	// StartIf, then-const, Else, else-const, EndBlock
	require.Len(t, out, 5)
	require.Equal(t, wasm.OpStartIf, out[0].Kind)
	require.Equal(t, wasm.OpI32Const, out[1].Kind)
	require.Equal(t, wasm.OpElse, out[2].Kind)
	require.Equal(t, wasm.OpI32Const, out[3].Kind)
	require.Equal(t, wasm.OpEndBlock, out[4].Kind)
	require.Equal(t, 3, out[0].ElsePosition) // jumps past the Else marker
	require.Equal(t, 4, out[0].EndPosition)
	require.Equal(t, 4, out[2].EndPosition) // Else's unconditional jump target
}

func TestFunction_NestedBlocks(t *testing.T) {
	inner := wasm.Instruction{Kind: wasm.OpBlock, Block: &wasm.BlockType{}, Body: []wasm.Instruction{{Kind: wasm.OpNop}}}
	outer := wasm.Instruction{Kind: wasm.OpBlock, Block: &wasm.BlockType{}, Body: []wasm.Instruction{inner, {Kind: wasm.OpNop}}}
	out := Function([]wasm.Instruction{outer})
	// outer-start, inner-start, nop, inner-end, nop, outer-end
	require.Len(t, out, 6)
	require.Equal(t, wasm.OpStartBlock, out[0].Kind)
	require.Equal(t, 5, out[0].EndPosition)
	require.Equal(t, wasm.OpStartBlock, out[1].Kind)
	require.Equal(t, 3, out[1].EndPosition)
}
