package wat

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-wat/wat/internal/wasm"
)

func TestRuntime_Instantiate_AddTwo(t *testing.T) {
	src := []byte(`(module
		(func $add (export "add") (param $a i32) (param $b i32) (result i32)
			local.get $a
			local.get $b
			i32.add))`)

	r := NewRuntime(nil)
	mod, err := r.Instantiate("add", src)
	require.NoError(t, err)

	results, err := mod.Call("add", 2, 40)
	require.NoError(t, err)
	require.Equal(t, []uint64{42}, results)
}

func TestRuntime_Instantiate_UnknownExport(t *testing.T) {
	r := NewRuntime(nil)
	mod, err := r.Instantiate("empty", []byte(`(module)`))
	require.NoError(t, err)

	_, err = mod.Call("nope")
	require.Error(t, err)
}

func TestRuntime_Instantiate_RejectsImports(t *testing.T) {
	r := NewRuntime(nil)
	_, err := r.Instantiate("imports", []byte(`(module (import "env" "f" (func)))`))
	require.Error(t, err)
}

func TestRuntime_Instantiate_ParseError(t *testing.T) {
	r := NewRuntime(nil)
	_, err := r.Instantiate("broken", []byte(`(module (func`))
	require.Error(t, err)
}

func TestRuntime_Call_Trap(t *testing.T) {
	src := []byte(`(module
		(func $divzero (export "divzero") (param i32) (result i32)
			local.get 0
			i32.const 0
			i32.div_s))`)

	r := NewRuntime(nil)
	mod, err := r.Instantiate("trap", src)
	require.NoError(t, err)

	_, err = mod.Call("divzero", 1)
	require.Error(t, err)
}

func TestRuntime_WithStackCapacity(t *testing.T) {
	cfg := NewRuntimeConfig().WithStackCapacity(8)
	r := NewRuntime(cfg)

	// A deeply recursive function blows the small configured call-depth
	// bound well before it could overflow the default 4096.
	src := []byte(`(module
		(func $loop (export "loop") (param i32) (result i32)
			local.get 0
			i32.const 1
			i32.add
			call $loop))`)
	mod, err := r.Instantiate("deep", src)
	require.NoError(t, err)

	_, err = mod.Call("loop", 0)
	require.Error(t, err)
}

func TestRuntime_WithMemoryMaxPages_BoundsGrow(t *testing.T) {
	cfg := NewRuntimeConfig().WithMemoryMaxPages(1)
	r := NewRuntime(cfg)

	src := []byte(`(module
		(memory 1)
		(func $grow (export "grow") (param i32) (result i32)
			local.get 0
			memory.grow))`)
	mod, err := r.Instantiate("mem", src)
	require.NoError(t, err)

	results, err := mod.Call("grow", 1)
	require.NoError(t, err)
	require.Equal(t, []uint64{uint64(uint32(int32(-1)))}, results)
}

func TestRuntime_WithFeatures_RejectsDisabledInstruction(t *testing.T) {
	cfg := NewRuntimeConfig().WithFeatures(wasm.FeatureNone)
	r := NewRuntime(cfg)

	src := []byte(`(module
		(func $ext (export "ext") (param i32) (result i32)
			local.get 0
			i32.extend8_s))`)
	_, err := r.Instantiate("gated", src)
	require.Error(t, err)
}

func TestRuntime_DefaultFeatures_AcceptsSignExtension(t *testing.T) {
	r := NewRuntime(nil)

	src := []byte(`(module
		(func $ext (export "ext") (param i32) (result i32)
			local.get 0
			i32.extend8_s))`)
	mod, err := r.Instantiate("ungated", src)
	require.NoError(t, err)

	results, err := mod.Call("ext", 0xff)
	require.NoError(t, err)
	require.Equal(t, []uint64{uint64(uint32(int32(-1)))}, results)
}
