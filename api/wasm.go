// Package api includes the value and extern type vocabulary shared by the
// parser, flattener, and interpreter. It mirrors the subset of the
// WebAssembly 1.0 (MVP) binary value-type encoding the rest of this module
// needs, without the host-function/embedder surface that belongs to an
// external runtime.
package api

import "fmt"

// ExternType classifies imports and exports with their respective types.
//
// See https://www.w3.org/TR/2019/REC-wasm-core-1-20191205/#external-types%E2%91%A0
type ExternType = byte

const (
	ExternTypeFunc   ExternType = 0x00
	ExternTypeTable  ExternType = 0x01
	ExternTypeMemory ExternType = 0x02
	ExternTypeGlobal ExternType = 0x03
)

const (
	// ExternTypeFuncName is the name of the WebAssembly Text Format field for ExternTypeFunc.
	ExternTypeFuncName = "func"
	// ExternTypeTableName is the name of the WebAssembly Text Format field for ExternTypeTable.
	ExternTypeTableName = "table"
	// ExternTypeMemoryName is the name of the WebAssembly Text Format field for ExternTypeMemory.
	ExternTypeMemoryName = "memory"
	// ExternTypeGlobalName is the name of the WebAssembly Text Format field for ExternTypeGlobal.
	ExternTypeGlobalName = "global"
)

// ExternTypeName returns the name of the WebAssembly Text Format field of the given type.
func ExternTypeName(et ExternType) string {
	switch et {
	case ExternTypeFunc:
		return ExternTypeFuncName
	case ExternTypeTable:
		return ExternTypeTableName
	case ExternTypeMemory:
		return ExternTypeMemoryName
	case ExternTypeGlobal:
		return ExternTypeGlobalName
	}
	return fmt.Sprintf("%#x", et)
}

// ValueType describes a numeric type used in WebAssembly 1.0 (MVP). Exactly
// four value types exist in this surface: i32, i64, f32, f64. No reference
// types (funcref as a value, externref) are part of the MVP value
// vocabulary; funcref only appears as a TableType element type.
//
// Note: This is a type alias matching the single-byte binary encoding so
// conversions to/from the binary value-type opcode are free.
type ValueType = byte

const (
	// ValueTypeI32 is a 32-bit integer.
	ValueTypeI32 ValueType = 0x7f
	// ValueTypeI64 is a 64-bit integer.
	ValueTypeI64 ValueType = 0x7e
	// ValueTypeF32 is a 32-bit floating point number.
	ValueTypeF32 ValueType = 0x7d
	// ValueTypeF64 is a 64-bit floating point number.
	ValueTypeF64 ValueType = 0x7c
)

// ValueTypeName returns the Text Format name of the given ValueType.
//
// Note: This returns "unknown" for any value not among the four MVP value types.
func ValueTypeName(t ValueType) string {
	switch t {
	case ValueTypeI32:
		return "i32"
	case ValueTypeI64:
		return "i64"
	case ValueTypeF32:
		return "f32"
	case ValueTypeF64:
		return "f64"
	}
	return "unknown"
}

// ElementType is the sole table element type in the MVP surface.
type ElementType = byte

const (
	// ElementTypeFuncref is the only element type defined pre-reference-types.
	ElementTypeFuncref ElementType = 0x70
)

// ElementTypeName returns the Text Format name of the given ElementType.
func ElementTypeName(t ElementType) string {
	if t == ElementTypeFuncref {
		return "funcref"
	}
	return "unknown"
}
