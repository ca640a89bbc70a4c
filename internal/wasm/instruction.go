package wasm

import "github.com/go-wat/wat/internal/wat/token"

// InstructionKind tags every production of the instruction grammar: a
// single sealed hierarchy realized as a Go sum, the dispatcher (flattener
// and interpreter alike) switching on the tag.
type InstructionKind uint16

const (
	OpUnreachable InstructionKind = iota
	OpNop
	OpBlock
	OpLoop
	OpIf
	OpBr
	OpBrIf
	OpBrTable
	OpReturn
	OpCall
	OpCallIndirect

	// Parametric
	OpDrop
	OpSelect

	// Variable
	OpLocalGet
	OpLocalSet
	OpLocalTee
	OpGlobalGet
	OpGlobalSet

	// Memory
	OpI32Load
	OpI64Load
	OpF32Load
	OpF64Load
	OpI32Load8S
	OpI32Load8U
	OpI32Load16S
	OpI32Load16U
	OpI64Load8S
	OpI64Load8U
	OpI64Load16S
	OpI64Load16U
	OpI64Load32S
	OpI64Load32U
	OpI32Store
	OpI64Store
	OpF32Store
	OpF64Store
	OpI32Store8
	OpI32Store16
	OpI64Store8
	OpI64Store16
	OpI64Store32
	OpMemorySize
	OpMemoryGrow

	// Numeric constants
	OpI32Const
	OpI64Const
	OpF32Const
	OpF64Const

	// i32 comparisons
	OpI32Eqz
	OpI32Eq
	OpI32Ne
	OpI32LtS
	OpI32LtU
	OpI32GtS
	OpI32GtU
	OpI32LeS
	OpI32LeU
	OpI32GeS
	OpI32GeU

	// i64 comparisons
	OpI64Eqz
	OpI64Eq
	OpI64Ne
	OpI64LtS
	OpI64LtU
	OpI64GtS
	OpI64GtU
	OpI64LeS
	OpI64LeU
	OpI64GeS
	OpI64GeU

	// float comparisons
	OpF32Eq
	OpF32Ne
	OpF32Lt
	OpF32Gt
	OpF32Le
	OpF32Ge
	OpF64Eq
	OpF64Ne
	OpF64Lt
	OpF64Gt
	OpF64Le
	OpF64Ge

	// i32 arithmetic
	OpI32Clz
	OpI32Ctz
	OpI32Popcnt
	OpI32Add
	OpI32Sub
	OpI32Mul
	OpI32DivS
	OpI32DivU
	OpI32RemS
	OpI32RemU
	OpI32And
	OpI32Or
	OpI32Xor
	OpI32Shl
	OpI32ShrS
	OpI32ShrU
	OpI32Rotl
	OpI32Rotr

	// i64 arithmetic
	OpI64Clz
	OpI64Ctz
	OpI64Popcnt
	OpI64Add
	OpI64Sub
	OpI64Mul
	OpI64DivS
	OpI64DivU
	OpI64RemS
	OpI64RemU
	OpI64And
	OpI64Or
	OpI64Xor
	OpI64Shl
	OpI64ShrS
	OpI64ShrU
	OpI64Rotl
	OpI64Rotr

	// f32 arithmetic
	OpF32Abs
	OpF32Neg
	OpF32Ceil
	OpF32Floor
	OpF32Trunc
	OpF32Nearest
	OpF32Sqrt
	OpF32Add
	OpF32Sub
	OpF32Mul
	OpF32Div
	OpF32Min
	OpF32Max
	OpF32Copysign

	// f64 arithmetic
	OpF64Abs
	OpF64Neg
	OpF64Ceil
	OpF64Floor
	OpF64Trunc
	OpF64Nearest
	OpF64Sqrt
	OpF64Add
	OpF64Sub
	OpF64Mul
	OpF64Div
	OpF64Min
	OpF64Max
	OpF64Copysign

	// conversions
	OpI32WrapI64
	OpI32TruncF32S
	OpI32TruncF32U
	OpI32TruncF64S
	OpI32TruncF64U
	OpI64ExtendI32S
	OpI64ExtendI32U
	OpI64TruncF32S
	OpI64TruncF32U
	OpI64TruncF64S
	OpI64TruncF64U
	OpF32ConvertI32S
	OpF32ConvertI32U
	OpF32ConvertI64S
	OpF32ConvertI64U
	OpF32DemoteF64
	OpF64ConvertI32S
	OpF64ConvertI32U
	OpF64ConvertI64S
	OpF64ConvertI64U
	OpF64PromoteF32
	OpI32ReinterpretF32
	OpI64ReinterpretF64
	OpF32ReinterpretI32
	OpF64ReinterpretI64

	// sign extension (observed in source, in scope per Non-goals)
	OpI32Extend8S
	OpI32Extend16S
	OpI64Extend8S
	OpI64Extend16S
	OpI64Extend32S

	// saturating truncation (observed in source, in scope per Non-goals)
	OpI32TruncSatF32S
	OpI32TruncSatF32U
	OpI32TruncSatF64S
	OpI32TruncSatF64U
	OpI64TruncSatF32S
	OpI64TruncSatF32U
	OpI64TruncSatF64S
	OpI64TruncSatF64U

	// synthetic, produced only by the flattener
	OpStartBlock
	OpStartIf
	OpElse
	OpEndBlock
)

// BlockType is the result signature of a block/loop/if: empty, or a single
// value type (no multi-value/params in this MVP-plus surface).
type BlockType struct {
	Id     *Identifier // optional label identifier
	Result *ValueType  // nil means the empty result type
}

// MemArg is the alignment/offset pair every memory instruction carries.
type MemArg struct {
	Align  uint32 // log2 of the alignment; the text writes it in bytes (align=4 is stored as 2)
	Offset uint32
}

// Instruction is the tree-shaped node the parser builds; Block/Loop/If
// instructions nest a Body (and, for If, an Else) of further Instructions.
// The Flattener (internal/flatten) linearizes this into a flat vector
// before execution.
type Instruction struct {
	Kind    InstructionKind
	Context token.Context

	// control: block/loop/if
	Block *BlockType
	Body  []Instruction
	Else  []Instruction // if only

	// control: br / br_if / call / call_indirect
	Label   *Index // br, br_if branch target
	Func    *Index // call target
	TypeUse *TypeUse // call_indirect

	// control: br_table
	BrTargets []Index
	BrDefault Index

	// variable
	Var *Index // local.get/set/tee, global.get/set

	// memory
	Mem MemArg

	// numeric immediates
	I32 int32
	I64 int64
	F32 float32
	F64 float64

	// Flattener output only (internal/flatten): StartBlock/StartIf carry the
	// index, within the same flattened vector, of their matching EndBlock
	// marker plus the block's arity; StartIf additionally carries the
	// position to jump to when its condition is false. StartBlock for a
	// loop sets IsLoop so br targeting it resumes at the loop's start
	// rather than falling through past EndBlock.
	EndPosition  int
	ElsePosition int
	Arity        int
	IsLoop       bool
}

// TypeUse is a typeuse production: either a direct (type x) reference, an
// inline functype, or both (the combined form, which must agree).
type TypeUse struct {
	Type   Index // resolved or unresolved Type-space Index
	Inline *FunctionType
}
