package wat

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-wat/wat/api"
	"github.com/go-wat/wat/internal/wasm"
)

func TestDecodeModule_Empty(t *testing.T) {
	m, err := DecodeModule("t", []byte(`(module)`))
	require.NoError(t, err)
	require.Empty(t, m.Functions)
}

func TestDecodeModule_ModuleName(t *testing.T) {
	m, err := DecodeModule("t", []byte(`(module $foo)`))
	require.NoError(t, err)
	require.Equal(t, "foo", m.Name)
}

func TestDecodeModule_FuncWithExport(t *testing.T) {
	m, err := DecodeModule("t", []byte(`(module
		(func $add (export "add") (param $a i32) (param $b i32) (result i32)
			local.get $a
			local.get $b
			i32.add))`))
	require.NoError(t, err)
	require.Len(t, m.Functions, 1)
	require.Len(t, m.Exports, 1)
	require.Equal(t, "add", m.Exports[0].Name)
	require.Equal(t, api.ExternTypeFunc, m.Exports[0].Desc.Type)
	require.True(t, m.Exports[0].Desc.Index.Resolved())
	require.Equal(t, uint32(0), m.Exports[0].Desc.Index.Numeric)

	body := m.Functions[0].Body
	require.Len(t, body, 3)
	require.Equal(t, wasm.OpLocalGet, body[0].Kind)
	require.Equal(t, wasm.OpLocalGet, body[1].Kind)
	require.Equal(t, wasm.OpI32Add, body[2].Kind)
	require.True(t, body[0].Var.Resolved())
	require.Equal(t, uint32(0), body[0].Var.Numeric)
	require.Equal(t, uint32(1), body[1].Var.Numeric)
}

func TestDecodeModule_ImportedFuncPrecedesDefinedInIndexSpace(t *testing.T) {
	m, err := DecodeModule("t", []byte(`(module
		(import "env" "log" (func $log (param i32)))
		(func $main (export "main")
			i32.const 42
			call $log))`))
	require.NoError(t, err)
	require.Equal(t, 1, m.ImportedFunctionCount())

	body := m.Functions[0].Body
	require.Equal(t, wasm.OpCall, body[1].Kind)
	require.True(t, body[1].Func.Resolved())
	require.Equal(t, uint32(0), body[1].Func.Numeric)
}

func TestDecodeModule_ForwardReferenceToLaterFunction(t *testing.T) {
	m, err := DecodeModule("t", []byte(`(module
		(func $a (export "a")
			call $b)
		(func $b))`))
	require.NoError(t, err)
	require.True(t, m.Functions[0].Body[0].Func.Resolved())
	require.Equal(t, uint32(1), m.Functions[0].Body[0].Func.Numeric)
}

func TestDecodeModule_BlockAndBranch(t *testing.T) {
	m, err := DecodeModule("t", []byte(`(module
		(func $f (result i32)
			(block $l (result i32)
				i32.const 1
				br $l)
			))`))
	require.NoError(t, err)
	body := m.Functions[0].Body
	require.Equal(t, wasm.OpBlock, body[0].Kind)
	inner := body[0].Body
	require.Equal(t, wasm.OpBr, inner[1].Kind)
	require.Equal(t, uint32(0), inner[1].Label.Numeric)
}

func TestDecodeModule_MemoryAndData(t *testing.T) {
	m, err := DecodeModule("t", []byte(`(module
		(memory 1)
		(data (i32.const 0) "hi"))`))
	require.NoError(t, err)
	require.Len(t, m.Memories, 1)
	require.Len(t, m.Data, 1)
	require.Equal(t, []byte("hi"), m.Data[0].Init)
}

func TestDecodeModule_UndefinedLocal_Errors(t *testing.T) {
	_, err := DecodeModule("t", []byte(`(module
		(func local.get $nope))`))
	require.Error(t, err)
}

func TestDecodeModule_UndefinedGlobalFunc_Errors(t *testing.T) {
	_, err := DecodeModule("t", []byte(`(module
		(func call $nope))`))
	require.Error(t, err)
}

func TestDecodeModule_MultipleMemories_Errors(t *testing.T) {
	_, err := DecodeModule("t", []byte(`(module (memory 1) (memory 1))`))
	require.Error(t, err)
}

func TestDecodeModule_DuplicateFuncIdentifier_Errors(t *testing.T) {
	_, err := DecodeModule("t", []byte(`(module (func $foo) (func $foo))`))
	require.Error(t, err)
}

func TestDecodeModule_DuplicateGlobalIdentifier_Errors(t *testing.T) {
	_, err := DecodeModule("t", []byte(`(module
		(global $g i32 (i32.const 0))
		(global $g i32 (i32.const 1)))`))
	require.Error(t, err)
}

func TestDecodeModule_CombinedTypeUseMismatch_Errors(t *testing.T) {
	_, err := DecodeModule("t", []byte(`(module
		(type $t (func (param i32)))
		(func (type $t) (param i64)))`))
	require.Error(t, err)
}

func TestDecodeModule_CombinedTypeUseMatch_NoError(t *testing.T) {
	m, err := DecodeModule("t", []byte(`(module
		(type $t (func (param i32)))
		(func (type $t) (param i32)))`))
	require.NoError(t, err)
	require.Len(t, m.Functions, 1)
}

func TestDecodeModule_FoldedInstructions(t *testing.T) {
	m, err := DecodeModule("t", []byte(`(module
		(func (result i32)
			(i32.add (i32.const 1) (i32.const 2))))`))
	require.NoError(t, err)
	body := m.Functions[0].Body
	require.Len(t, body, 3)
	require.Equal(t, wasm.OpI32Const, body[0].Kind)
	require.Equal(t, int32(1), body[0].I32)
	require.Equal(t, wasm.OpI32Const, body[1].Kind)
	require.Equal(t, int32(2), body[1].I32)
	require.Equal(t, wasm.OpI32Add, body[2].Kind)
}
