package wat

import "github.com/go-wat/wat/internal/wasm"

// immediateShape tags what, if anything, follows an instruction keyword.
type immediateShape byte

const (
	immNone immediateShape = iota
	immMemArg
	immFuncIdx
	immLabelIdx
	immLocalIdx
	immGlobalIdx
	immCallIndirect
	immConstI32
	immConstI64
	immConstF32
	immConstF64
	immBrTable
)

type opcodeInfo struct {
	kind  wasm.InstructionKind
	shape immediateShape
}

// featureGate maps the keywords of post-MVP instruction families to the
// Features bit that must be enabled for the parser to accept them. A
// keyword absent from this map is unconditionally available.
var featureGate = map[string]wasm.Features{
	"i32.extend8_s":  wasm.FeatureSignExtension,
	"i32.extend16_s": wasm.FeatureSignExtension,
	"i64.extend8_s":  wasm.FeatureSignExtension,
	"i64.extend16_s": wasm.FeatureSignExtension,
	"i64.extend32_s": wasm.FeatureSignExtension,

	"i32.trunc_sat_f32_s": wasm.FeatureSaturatingTruncation,
	"i32.trunc_sat_f32_u": wasm.FeatureSaturatingTruncation,
	"i32.trunc_sat_f64_s": wasm.FeatureSaturatingTruncation,
	"i32.trunc_sat_f64_u": wasm.FeatureSaturatingTruncation,
	"i64.trunc_sat_f32_s": wasm.FeatureSaturatingTruncation,
	"i64.trunc_sat_f32_u": wasm.FeatureSaturatingTruncation,
	"i64.trunc_sat_f64_s": wasm.FeatureSaturatingTruncation,
	"i64.trunc_sat_f64_u": wasm.FeatureSaturatingTruncation,
}

// opcodeTable maps every instruction keyword this module supports to its
// InstructionKind and immediate shape. Block-structured
// instructions (block/loop/if) are handled separately by the instruction
// parser, since their grammar isn't a flat immediate list.
var opcodeTable = map[string]opcodeInfo{
	"unreachable": {wasm.OpUnreachable, immNone},
	"nop":         {wasm.OpNop, immNone},
	"br":          {wasm.OpBr, immLabelIdx},
	"br_if":       {wasm.OpBrIf, immLabelIdx},
	"br_table":    {wasm.OpBrTable, immBrTable},
	"return":      {wasm.OpReturn, immNone},
	"call":        {wasm.OpCall, immFuncIdx},
	"call_indirect": {wasm.OpCallIndirect, immCallIndirect},

	"drop":   {wasm.OpDrop, immNone},
	"select": {wasm.OpSelect, immNone},

	"local.get":  {wasm.OpLocalGet, immLocalIdx},
	"local.set":  {wasm.OpLocalSet, immLocalIdx},
	"local.tee":  {wasm.OpLocalTee, immLocalIdx},
	"global.get": {wasm.OpGlobalGet, immGlobalIdx},
	"global.set": {wasm.OpGlobalSet, immGlobalIdx},

	"i32.load":    {wasm.OpI32Load, immMemArg},
	"i64.load":    {wasm.OpI64Load, immMemArg},
	"f32.load":    {wasm.OpF32Load, immMemArg},
	"f64.load":    {wasm.OpF64Load, immMemArg},
	"i32.load8_s":  {wasm.OpI32Load8S, immMemArg},
	"i32.load8_u":  {wasm.OpI32Load8U, immMemArg},
	"i32.load16_s": {wasm.OpI32Load16S, immMemArg},
	"i32.load16_u": {wasm.OpI32Load16U, immMemArg},
	"i64.load8_s":  {wasm.OpI64Load8S, immMemArg},
	"i64.load8_u":  {wasm.OpI64Load8U, immMemArg},
	"i64.load16_s": {wasm.OpI64Load16S, immMemArg},
	"i64.load16_u": {wasm.OpI64Load16U, immMemArg},
	"i64.load32_s": {wasm.OpI64Load32S, immMemArg},
	"i64.load32_u": {wasm.OpI64Load32U, immMemArg},
	"i32.store":   {wasm.OpI32Store, immMemArg},
	"i64.store":   {wasm.OpI64Store, immMemArg},
	"f32.store":   {wasm.OpF32Store, immMemArg},
	"f64.store":   {wasm.OpF64Store, immMemArg},
	"i32.store8":  {wasm.OpI32Store8, immMemArg},
	"i32.store16": {wasm.OpI32Store16, immMemArg},
	"i64.store8":  {wasm.OpI64Store8, immMemArg},
	"i64.store16": {wasm.OpI64Store16, immMemArg},
	"i64.store32": {wasm.OpI64Store32, immMemArg},
	"memory.size": {wasm.OpMemorySize, immNone},
	"memory.grow": {wasm.OpMemoryGrow, immNone},

	"i32.const": {wasm.OpI32Const, immConstI32},
	"i64.const": {wasm.OpI64Const, immConstI64},
	"f32.const": {wasm.OpF32Const, immConstF32},
	"f64.const": {wasm.OpF64Const, immConstF64},

	"i32.eqz": {wasm.OpI32Eqz, immNone}, "i32.eq": {wasm.OpI32Eq, immNone}, "i32.ne": {wasm.OpI32Ne, immNone},
	"i32.lt_s": {wasm.OpI32LtS, immNone}, "i32.lt_u": {wasm.OpI32LtU, immNone},
	"i32.gt_s": {wasm.OpI32GtS, immNone}, "i32.gt_u": {wasm.OpI32GtU, immNone},
	"i32.le_s": {wasm.OpI32LeS, immNone}, "i32.le_u": {wasm.OpI32LeU, immNone},
	"i32.ge_s": {wasm.OpI32GeS, immNone}, "i32.ge_u": {wasm.OpI32GeU, immNone},

	"i64.eqz": {wasm.OpI64Eqz, immNone}, "i64.eq": {wasm.OpI64Eq, immNone}, "i64.ne": {wasm.OpI64Ne, immNone},
	"i64.lt_s": {wasm.OpI64LtS, immNone}, "i64.lt_u": {wasm.OpI64LtU, immNone},
	"i64.gt_s": {wasm.OpI64GtS, immNone}, "i64.gt_u": {wasm.OpI64GtU, immNone},
	"i64.le_s": {wasm.OpI64LeS, immNone}, "i64.le_u": {wasm.OpI64LeU, immNone},
	"i64.ge_s": {wasm.OpI64GeS, immNone}, "i64.ge_u": {wasm.OpI64GeU, immNone},

	"f32.eq": {wasm.OpF32Eq, immNone}, "f32.ne": {wasm.OpF32Ne, immNone},
	"f32.lt": {wasm.OpF32Lt, immNone}, "f32.gt": {wasm.OpF32Gt, immNone},
	"f32.le": {wasm.OpF32Le, immNone}, "f32.ge": {wasm.OpF32Ge, immNone},
	"f64.eq": {wasm.OpF64Eq, immNone}, "f64.ne": {wasm.OpF64Ne, immNone},
	"f64.lt": {wasm.OpF64Lt, immNone}, "f64.gt": {wasm.OpF64Gt, immNone},
	"f64.le": {wasm.OpF64Le, immNone}, "f64.ge": {wasm.OpF64Ge, immNone},

	"i32.clz": {wasm.OpI32Clz, immNone}, "i32.ctz": {wasm.OpI32Ctz, immNone}, "i32.popcnt": {wasm.OpI32Popcnt, immNone},
	"i32.add": {wasm.OpI32Add, immNone}, "i32.sub": {wasm.OpI32Sub, immNone}, "i32.mul": {wasm.OpI32Mul, immNone},
	"i32.div_s": {wasm.OpI32DivS, immNone}, "i32.div_u": {wasm.OpI32DivU, immNone},
	"i32.rem_s": {wasm.OpI32RemS, immNone}, "i32.rem_u": {wasm.OpI32RemU, immNone},
	"i32.and": {wasm.OpI32And, immNone}, "i32.or": {wasm.OpI32Or, immNone}, "i32.xor": {wasm.OpI32Xor, immNone},
	"i32.shl": {wasm.OpI32Shl, immNone}, "i32.shr_s": {wasm.OpI32ShrS, immNone}, "i32.shr_u": {wasm.OpI32ShrU, immNone},
	"i32.rotl": {wasm.OpI32Rotl, immNone}, "i32.rotr": {wasm.OpI32Rotr, immNone},

	"i64.clz": {wasm.OpI64Clz, immNone}, "i64.ctz": {wasm.OpI64Ctz, immNone}, "i64.popcnt": {wasm.OpI64Popcnt, immNone},
	"i64.add": {wasm.OpI64Add, immNone}, "i64.sub": {wasm.OpI64Sub, immNone}, "i64.mul": {wasm.OpI64Mul, immNone},
	"i64.div_s": {wasm.OpI64DivS, immNone}, "i64.div_u": {wasm.OpI64DivU, immNone},
	"i64.rem_s": {wasm.OpI64RemS, immNone}, "i64.rem_u": {wasm.OpI64RemU, immNone},
	"i64.and": {wasm.OpI64And, immNone}, "i64.or": {wasm.OpI64Or, immNone}, "i64.xor": {wasm.OpI64Xor, immNone},
	"i64.shl": {wasm.OpI64Shl, immNone}, "i64.shr_s": {wasm.OpI64ShrS, immNone}, "i64.shr_u": {wasm.OpI64ShrU, immNone},
	"i64.rotl": {wasm.OpI64Rotl, immNone}, "i64.rotr": {wasm.OpI64Rotr, immNone},

	"f32.abs": {wasm.OpF32Abs, immNone}, "f32.neg": {wasm.OpF32Neg, immNone},
	"f32.ceil": {wasm.OpF32Ceil, immNone}, "f32.floor": {wasm.OpF32Floor, immNone},
	"f32.trunc": {wasm.OpF32Trunc, immNone}, "f32.nearest": {wasm.OpF32Nearest, immNone},
	"f32.sqrt": {wasm.OpF32Sqrt, immNone},
	"f32.add": {wasm.OpF32Add, immNone}, "f32.sub": {wasm.OpF32Sub, immNone},
	"f32.mul": {wasm.OpF32Mul, immNone}, "f32.div": {wasm.OpF32Div, immNone},
	"f32.min": {wasm.OpF32Min, immNone}, "f32.max": {wasm.OpF32Max, immNone},
	"f32.copysign": {wasm.OpF32Copysign, immNone},

	"f64.abs": {wasm.OpF64Abs, immNone}, "f64.neg": {wasm.OpF64Neg, immNone},
	"f64.ceil": {wasm.OpF64Ceil, immNone}, "f64.floor": {wasm.OpF64Floor, immNone},
	"f64.trunc": {wasm.OpF64Trunc, immNone}, "f64.nearest": {wasm.OpF64Nearest, immNone},
	"f64.sqrt": {wasm.OpF64Sqrt, immNone},
	"f64.add": {wasm.OpF64Add, immNone}, "f64.sub": {wasm.OpF64Sub, immNone},
	"f64.mul": {wasm.OpF64Mul, immNone}, "f64.div": {wasm.OpF64Div, immNone},
	"f64.min": {wasm.OpF64Min, immNone}, "f64.max": {wasm.OpF64Max, immNone},
	"f64.copysign": {wasm.OpF64Copysign, immNone},

	"i32.wrap_i64": {wasm.OpI32WrapI64, immNone},
	"i32.trunc_f32_s": {wasm.OpI32TruncF32S, immNone}, "i32.trunc_f32_u": {wasm.OpI32TruncF32U, immNone},
	"i32.trunc_f64_s": {wasm.OpI32TruncF64S, immNone}, "i32.trunc_f64_u": {wasm.OpI32TruncF64U, immNone},
	"i64.extend_i32_s": {wasm.OpI64ExtendI32S, immNone}, "i64.extend_i32_u": {wasm.OpI64ExtendI32U, immNone},
	"i64.trunc_f32_s": {wasm.OpI64TruncF32S, immNone}, "i64.trunc_f32_u": {wasm.OpI64TruncF32U, immNone},
	"i64.trunc_f64_s": {wasm.OpI64TruncF64S, immNone}, "i64.trunc_f64_u": {wasm.OpI64TruncF64U, immNone},
	"f32.convert_i32_s": {wasm.OpF32ConvertI32S, immNone}, "f32.convert_i32_u": {wasm.OpF32ConvertI32U, immNone},
	"f32.convert_i64_s": {wasm.OpF32ConvertI64S, immNone}, "f32.convert_i64_u": {wasm.OpF32ConvertI64U, immNone},
	"f32.demote_f64": {wasm.OpF32DemoteF64, immNone},
	"f64.convert_i32_s": {wasm.OpF64ConvertI32S, immNone}, "f64.convert_i32_u": {wasm.OpF64ConvertI32U, immNone},
	"f64.convert_i64_s": {wasm.OpF64ConvertI64S, immNone}, "f64.convert_i64_u": {wasm.OpF64ConvertI64U, immNone},
	"f64.promote_f32": {wasm.OpF64PromoteF32, immNone},
	"i32.reinterpret_f32": {wasm.OpI32ReinterpretF32, immNone},
	"i64.reinterpret_f64": {wasm.OpI64ReinterpretF64, immNone},
	"f32.reinterpret_i32": {wasm.OpF32ReinterpretI32, immNone},
	"f64.reinterpret_i64": {wasm.OpF64ReinterpretI64, immNone},

	"i32.extend8_s": {wasm.OpI32Extend8S, immNone}, "i32.extend16_s": {wasm.OpI32Extend16S, immNone},
	"i64.extend8_s": {wasm.OpI64Extend8S, immNone}, "i64.extend16_s": {wasm.OpI64Extend16S, immNone},
	"i64.extend32_s": {wasm.OpI64Extend32S, immNone},

	"i32.trunc_sat_f32_s": {wasm.OpI32TruncSatF32S, immNone}, "i32.trunc_sat_f32_u": {wasm.OpI32TruncSatF32U, immNone},
	"i32.trunc_sat_f64_s": {wasm.OpI32TruncSatF64S, immNone}, "i32.trunc_sat_f64_u": {wasm.OpI32TruncSatF64U, immNone},
	"i64.trunc_sat_f32_s": {wasm.OpI64TruncSatF32S, immNone}, "i64.trunc_sat_f32_u": {wasm.OpI64TruncSatF32U, immNone},
	"i64.trunc_sat_f64_s": {wasm.OpI64TruncSatF64S, immNone}, "i64.trunc_sat_f64_u": {wasm.OpI64TruncSatF64U, immNone},
}
