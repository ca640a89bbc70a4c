package interpreter

import (
	"math"

	"github.com/go-wat/wat/internal/wasm"
)

// execConversion handles every numeric conversion, reinterpretation,
// sign-extension, and saturating-truncation instruction — everything
// execNumeric doesn't handle directly. Non-saturating float-to-int
// truncation traps on NaN and on magnitudes outside the target's range;
// the saturating variants instead clamp.
func (f *frame) execConversion(in wasm.Instruction) {
	switch in.Kind {
	case wasm.OpI32WrapI64:
		f.operands.pushI32(int32(f.operands.popI64()))

	case wasm.OpI32TruncF32S:
		f.operands.pushI32(int32(truncToInt(float64(f.operands.popF32()), -2147483648, 2147483647, "i32.trunc_f32_s")))
	case wasm.OpI32TruncF32U:
		f.operands.pushU32(uint32(truncToInt(float64(f.operands.popF32()), 0, 4294967295, "i32.trunc_f32_u")))
	case wasm.OpI32TruncF64S:
		f.operands.pushI32(int32(truncToInt(f.operands.popF64(), -2147483648, 2147483647, "i32.trunc_f64_s")))
	case wasm.OpI32TruncF64U:
		f.operands.pushU32(uint32(truncToInt(f.operands.popF64(), 0, 4294967295, "i32.trunc_f64_u")))

	case wasm.OpI64ExtendI32S:
		f.operands.pushI64(int64(f.operands.popI32()))
	case wasm.OpI64ExtendI32U:
		f.operands.pushI64(int64(uint64(f.operands.popU32())))

	case wasm.OpI64TruncF32S:
		f.operands.pushI64(int64(truncToInt(float64(f.operands.popF32()), -9223372036854775808, 9223372036854774784, "i64.trunc_f32_s")))
	case wasm.OpI64TruncF32U:
		f.operands.pushU64(uint64(truncToInt(float64(f.operands.popF32()), 0, 18446742974197923840, "i64.trunc_f32_u")))
	case wasm.OpI64TruncF64S:
		f.operands.pushI64(int64(truncToInt(f.operands.popF64(), -9223372036854775808, 9223372036854774784, "i64.trunc_f64_s")))
	case wasm.OpI64TruncF64U:
		f.operands.pushU64(uint64(truncToInt(f.operands.popF64(), 0, 18446744073709549568, "i64.trunc_f64_u")))

	case wasm.OpF32ConvertI32S:
		f.operands.pushF32(float32(f.operands.popI32()))
	case wasm.OpF32ConvertI32U:
		f.operands.pushF32(float32(f.operands.popU32()))
	case wasm.OpF32ConvertI64S:
		f.operands.pushF32(float32(f.operands.popI64()))
	case wasm.OpF32ConvertI64U:
		f.operands.pushF32(float32(f.operands.popU64()))
	case wasm.OpF32DemoteF64:
		f.operands.pushF32(float32(f.operands.popF64()))

	case wasm.OpF64ConvertI32S:
		f.operands.pushF64(float64(f.operands.popI32()))
	case wasm.OpF64ConvertI32U:
		f.operands.pushF64(float64(f.operands.popU32()))
	case wasm.OpF64ConvertI64S:
		f.operands.pushF64(float64(f.operands.popI64()))
	case wasm.OpF64ConvertI64U:
		f.operands.pushF64(float64(f.operands.popU64()))
	case wasm.OpF64PromoteF32:
		f.operands.pushF64(float64(f.operands.popF32()))

	case wasm.OpI32ReinterpretF32:
		f.operands.pushU32(uint32(f.operands.pop()))
	case wasm.OpI64ReinterpretF64:
		f.operands.pushU64(f.operands.pop())
	case wasm.OpF32ReinterpretI32:
		f.operands.push(uint64(f.operands.popU32()))
	case wasm.OpF64ReinterpretI64:
		f.operands.push(f.operands.popU64())

	case wasm.OpI32Extend8S:
		f.operands.pushI32(int32(int8(f.operands.popI32())))
	case wasm.OpI32Extend16S:
		f.operands.pushI32(int32(int16(f.operands.popI32())))
	case wasm.OpI64Extend8S:
		f.operands.pushI64(int64(int8(f.operands.popI64())))
	case wasm.OpI64Extend16S:
		f.operands.pushI64(int64(int16(f.operands.popI64())))
	case wasm.OpI64Extend32S:
		f.operands.pushI64(int64(int32(f.operands.popI64())))

	case wasm.OpI32TruncSatF32S:
		f.operands.pushI32(int32(satTrunc(float64(f.operands.popF32()), -2147483648, 2147483647)))
	case wasm.OpI32TruncSatF32U:
		f.operands.pushU32(uint32(satTruncU(float64(f.operands.popF32()), 4294967295)))
	case wasm.OpI32TruncSatF64S:
		f.operands.pushI32(int32(satTrunc(f.operands.popF64(), -2147483648, 2147483647)))
	case wasm.OpI32TruncSatF64U:
		f.operands.pushU32(uint32(satTruncU(f.operands.popF64(), 4294967295)))
	case wasm.OpI64TruncSatF32S:
		f.operands.pushI64(int64(satTrunc(float64(f.operands.popF32()), -9223372036854775808, 9223372036854775807)))
	case wasm.OpI64TruncSatF32U:
		f.operands.pushU64(uint64(satTruncU(float64(f.operands.popF32()), 18446744073709551615)))
	case wasm.OpI64TruncSatF64S:
		f.operands.pushI64(int64(satTrunc(f.operands.popF64(), -9223372036854775808, 9223372036854775807)))
	case wasm.OpI64TruncSatF64U:
		f.operands.pushU64(uint64(satTruncU(f.operands.popF64(), 18446744073709551615)))
	}
}

// truncToInt truncates f toward zero, trapping InvalidConversionToInteger
// on NaN and IntegerOverflow when the truncated magnitude (including
// infinities) falls outside [lo, hi].
func truncToInt(f float64, lo, hi float64, op string) float64 {
	if math.IsNaN(f) {
		trapNow(TrapInvalidConversionToInteger, "%s: operand is NaN", op)
	}
	t := math.Trunc(f)
	if t < lo || t > hi {
		trapNow(TrapIntegerOverflow, "%s: %v out of range", op, f)
	}
	return t
}

// satTrunc is truncToInt's saturating counterpart: NaN becomes 0, and
// out-of-range magnitudes clamp to the nearest bound instead of trapping.
func satTrunc(f float64, lo, hi int64) int64 {
	if math.IsNaN(f) {
		return 0
	}
	t := math.Trunc(f)
	if t <= float64(lo) {
		return lo
	}
	if t >= float64(hi) {
		return hi
	}
	return int64(t)
}

func satTruncU(f float64, hi uint64) uint64 {
	if math.IsNaN(f) || f < 0 {
		return 0
	}
	t := math.Trunc(f)
	if t >= float64(hi) {
		return hi
	}
	return uint64(t)
}
