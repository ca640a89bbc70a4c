package interpreter

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-wat/wat/internal/flatten"
	"github.com/go-wat/wat/internal/wasm"
	"github.com/go-wat/wat/internal/wat"
)

// run decodes, flattens, and instantiates src (which must declare no
// imports), returning an Engine and the address of its first function.
func run(t *testing.T, src string) (*Engine, int) {
	t.Helper()
	mod, err := wat.DecodeModule("t", []byte(src))
	require.NoError(t, err)

	prog, err := flatten.Module(mod)
	require.NoError(t, err)

	store := wasm.NewStore()
	inst, err := wasm.Instantiate(store, mod, prog.FuncBodies)
	require.NoError(t, err)

	return NewEngine(store), inst.FunctionAddrs[0]
}

func TestEngine_Call_Add(t *testing.T) {
	eng, addr := run(t, `(module (func (param i32) (param i32) (result i32)
		local.get 0 local.get 1 i32.add))`)
	results, err := eng.Call(addr, []uint64{2, 40})
	require.NoError(t, err)
	require.Equal(t, []uint64{42}, results)
}

func TestEngine_Call_IfElse(t *testing.T) {
	eng, addr := run(t, `(module (func (param i32) (result i32)
		local.get 0
		(if (result i32) (then i32.const 1) (else i32.const 0))))`)

	results, err := eng.Call(addr, []uint64{1})
	require.NoError(t, err)
	require.Equal(t, []uint64{1}, results)

	results, err = eng.Call(addr, []uint64{0})
	require.NoError(t, err)
	require.Equal(t, []uint64{0}, results)
}

func TestEngine_Call_LoopSum(t *testing.T) {
	eng, addr := run(t, `(module (func (param $n i32) (result i32)
		(local $sum i32)
		(block $exit
			(loop $top
				local.get $n
				i32.eqz
				br_if $exit
				local.get $sum
				local.get $n
				i32.add
				local.set $sum
				local.get $n
				i32.const 1
				i32.sub
				local.set $n
				br $top))
		local.get $sum))`)

	results, err := eng.Call(addr, []uint64{5})
	require.NoError(t, err)
	require.Equal(t, []uint64{15}, results)
}

func TestEngine_Call_DivByZeroTraps(t *testing.T) {
	eng, addr := run(t, `(module (func (param i32) (result i32)
		local.get 0 i32.const 0 i32.div_s))`)
	_, err := eng.Call(addr, []uint64{1})
	require.Error(t, err)
	trap, ok := err.(*Trap)
	require.True(t, ok)
	require.Equal(t, TrapIntegerDivideByZero, trap.Code)
}

func TestEngine_Call_Unreachable(t *testing.T) {
	eng, addr := run(t, `(module (func unreachable))`)
	_, err := eng.Call(addr, nil)
	require.Error(t, err)
	trap, ok := err.(*Trap)
	require.True(t, ok)
	require.Equal(t, TrapUnreachable, trap.Code)
}

func TestEngine_Call_MemoryLoadStore(t *testing.T) {
	eng, addr := run(t, `(module (memory 1) (func (result i32)
		i32.const 0
		i32.const 123
		i32.store
		i32.const 0
		i32.load))`)
	results, err := eng.Call(addr, nil)
	require.NoError(t, err)
	require.Equal(t, []uint64{123}, results)
}

func TestEngine_Call_OutOfBoundsMemoryTraps(t *testing.T) {
	eng, addr := run(t, `(module (memory 1) (func (result i32)
		i32.const 1000000
		i32.load))`)
	_, err := eng.Call(addr, nil)
	require.Error(t, err)
	trap, ok := err.(*Trap)
	require.True(t, ok)
	require.Equal(t, TrapOutOfBoundsMemoryAccess, trap.Code)
}

func TestEngine_Call_RecursiveCallDepthTraps(t *testing.T) {
	eng, addr := run(t, `(module (func $f (param i32) (result i32)
		local.get 0 i32.const 1 i32.add call $f))`)
	eng.StackCapacity = 8
	_, err := eng.Call(addr, []uint64{0})
	require.Error(t, err)
	trap, ok := err.(*Trap)
	require.True(t, ok)
	require.Equal(t, TrapStackOverflow, trap.Code)
}

func TestEngine_Call_CallIndirect(t *testing.T) {
	mod, err := wat.DecodeModule("t", []byte(`(module
		(type $binop (func (param i32 i32) (result i32)))
		(func $add (type $binop) local.get 0 local.get 1 i32.add)
		(table 1 funcref)
		(elem (i32.const 0) $add)
		(func (export "main") (param i32 i32) (result i32)
			local.get 0 local.get 1 i32.const 0 call_indirect (type $binop)))`))
	require.NoError(t, err)

	prog, err := flatten.Module(mod)
	require.NoError(t, err)
	store := wasm.NewStore()
	inst, err := wasm.Instantiate(store, mod, prog.FuncBodies)
	require.NoError(t, err)

	eng := NewEngine(store)
	mainAddr := inst.FunctionAddrs[1]
	results, err := eng.Call(mainAddr, []uint64{3, 4})
	require.NoError(t, err)
	require.Equal(t, []uint64{7}, results)
}
