package interpreter

import (
	"math"
	"math/bits"

	"github.com/go-wat/wat/internal/moremath"
	"github.com/go-wat/wat/internal/wasm"
)

// execNumeric dispatches every constant, comparison, arithmetic, and
// conversion instruction that isn't control flow, memory, or variable
// access. Traps on division/remainder by zero, signed overflow, and
// out-of-range float-to-int truncation.
func (f *frame) execNumeric(in wasm.Instruction) {
	switch in.Kind {
	case wasm.OpI32Const:
		f.operands.pushI32(in.I32)
	case wasm.OpI64Const:
		f.operands.pushI64(in.I64)
	case wasm.OpF32Const:
		f.operands.pushF32(in.F32)
	case wasm.OpF64Const:
		f.operands.pushF64(in.F64)

	case wasm.OpI32Eqz:
		f.operands.pushI32(b2i(f.operands.popI32() == 0))
	case wasm.OpI32Eq:
		y, x := f.operands.popI32(), f.operands.popI32()
		f.operands.pushI32(b2i(x == y))
	case wasm.OpI32Ne:
		y, x := f.operands.popI32(), f.operands.popI32()
		f.operands.pushI32(b2i(x != y))
	case wasm.OpI32LtS:
		y, x := f.operands.popI32(), f.operands.popI32()
		f.operands.pushI32(b2i(x < y))
	case wasm.OpI32LtU:
		y, x := f.operands.popU32(), f.operands.popU32()
		f.operands.pushI32(b2i(x < y))
	case wasm.OpI32GtS:
		y, x := f.operands.popI32(), f.operands.popI32()
		f.operands.pushI32(b2i(x > y))
	case wasm.OpI32GtU:
		y, x := f.operands.popU32(), f.operands.popU32()
		f.operands.pushI32(b2i(x > y))
	case wasm.OpI32LeS:
		y, x := f.operands.popI32(), f.operands.popI32()
		f.operands.pushI32(b2i(x <= y))
	case wasm.OpI32LeU:
		y, x := f.operands.popU32(), f.operands.popU32()
		f.operands.pushI32(b2i(x <= y))
	case wasm.OpI32GeS:
		y, x := f.operands.popI32(), f.operands.popI32()
		f.operands.pushI32(b2i(x >= y))
	case wasm.OpI32GeU:
		y, x := f.operands.popU32(), f.operands.popU32()
		f.operands.pushI32(b2i(x >= y))

	case wasm.OpI64Eqz:
		f.operands.pushI32(b2i(f.operands.popI64() == 0))
	case wasm.OpI64Eq:
		y, x := f.operands.popI64(), f.operands.popI64()
		f.operands.pushI32(b2i(x == y))
	case wasm.OpI64Ne:
		y, x := f.operands.popI64(), f.operands.popI64()
		f.operands.pushI32(b2i(x != y))
	case wasm.OpI64LtS:
		y, x := f.operands.popI64(), f.operands.popI64()
		f.operands.pushI32(b2i(x < y))
	case wasm.OpI64LtU:
		y, x := f.operands.popU64(), f.operands.popU64()
		f.operands.pushI32(b2i(x < y))
	case wasm.OpI64GtS:
		y, x := f.operands.popI64(), f.operands.popI64()
		f.operands.pushI32(b2i(x > y))
	case wasm.OpI64GtU:
		y, x := f.operands.popU64(), f.operands.popU64()
		f.operands.pushI32(b2i(x > y))
	case wasm.OpI64LeS:
		y, x := f.operands.popI64(), f.operands.popI64()
		f.operands.pushI32(b2i(x <= y))
	case wasm.OpI64LeU:
		y, x := f.operands.popU64(), f.operands.popU64()
		f.operands.pushI32(b2i(x <= y))
	case wasm.OpI64GeS:
		y, x := f.operands.popI64(), f.operands.popI64()
		f.operands.pushI32(b2i(x >= y))
	case wasm.OpI64GeU:
		y, x := f.operands.popU64(), f.operands.popU64()
		f.operands.pushI32(b2i(x >= y))

	case wasm.OpF32Eq:
		y, x := f.operands.popF32(), f.operands.popF32()
		f.operands.pushI32(b2i(x == y))
	case wasm.OpF32Ne:
		y, x := f.operands.popF32(), f.operands.popF32()
		f.operands.pushI32(b2i(x != y))
	case wasm.OpF32Lt:
		y, x := f.operands.popF32(), f.operands.popF32()
		f.operands.pushI32(b2i(x < y))
	case wasm.OpF32Gt:
		y, x := f.operands.popF32(), f.operands.popF32()
		f.operands.pushI32(b2i(x > y))
	case wasm.OpF32Le:
		y, x := f.operands.popF32(), f.operands.popF32()
		f.operands.pushI32(b2i(x <= y))
	case wasm.OpF32Ge:
		y, x := f.operands.popF32(), f.operands.popF32()
		f.operands.pushI32(b2i(x >= y))
	case wasm.OpF64Eq:
		y, x := f.operands.popF64(), f.operands.popF64()
		f.operands.pushI32(b2i(x == y))
	case wasm.OpF64Ne:
		y, x := f.operands.popF64(), f.operands.popF64()
		f.operands.pushI32(b2i(x != y))
	case wasm.OpF64Lt:
		y, x := f.operands.popF64(), f.operands.popF64()
		f.operands.pushI32(b2i(x < y))
	case wasm.OpF64Gt:
		y, x := f.operands.popF64(), f.operands.popF64()
		f.operands.pushI32(b2i(x > y))
	case wasm.OpF64Le:
		y, x := f.operands.popF64(), f.operands.popF64()
		f.operands.pushI32(b2i(x <= y))
	case wasm.OpF64Ge:
		y, x := f.operands.popF64(), f.operands.popF64()
		f.operands.pushI32(b2i(x >= y))

	case wasm.OpI32Clz:
		f.operands.pushI32(int32(bits.LeadingZeros32(f.operands.popU32())))
	case wasm.OpI32Ctz:
		f.operands.pushI32(int32(bits.TrailingZeros32(f.operands.popU32())))
	case wasm.OpI32Popcnt:
		f.operands.pushI32(int32(bits.OnesCount32(f.operands.popU32())))
	case wasm.OpI32Add:
		y, x := f.operands.popU32(), f.operands.popU32()
		f.operands.pushU32(x + y)
	case wasm.OpI32Sub:
		y, x := f.operands.popU32(), f.operands.popU32()
		f.operands.pushU32(x - y)
	case wasm.OpI32Mul:
		y, x := f.operands.popU32(), f.operands.popU32()
		f.operands.pushU32(x * y)
	case wasm.OpI32DivS:
		y, x := f.operands.popI32(), f.operands.popI32()
		if y == 0 {
			trapNow(TrapIntegerDivideByZero, "i32.div_s by zero")
		}
		if x == math.MinInt32 && y == -1 {
			trapNow(TrapIntegerOverflow, "i32.div_s overflow: %d / %d", x, y)
		}
		f.operands.pushI32(x / y)
	case wasm.OpI32DivU:
		y, x := f.operands.popU32(), f.operands.popU32()
		if y == 0 {
			trapNow(TrapIntegerDivideByZero, "i32.div_u by zero")
		}
		f.operands.pushU32(x / y)
	case wasm.OpI32RemS:
		y, x := f.operands.popI32(), f.operands.popI32()
		if y == 0 {
			trapNow(TrapIntegerDivideByZero, "i32.rem_s by zero")
		}
		if x == math.MinInt32 && y == -1 {
			f.operands.pushI32(0)
		} else {
			f.operands.pushI32(x % y)
		}
	case wasm.OpI32RemU:
		y, x := f.operands.popU32(), f.operands.popU32()
		if y == 0 {
			trapNow(TrapIntegerDivideByZero, "i32.rem_u by zero")
		}
		f.operands.pushU32(x % y)
	case wasm.OpI32And:
		y, x := f.operands.popU32(), f.operands.popU32()
		f.operands.pushU32(x & y)
	case wasm.OpI32Or:
		y, x := f.operands.popU32(), f.operands.popU32()
		f.operands.pushU32(x | y)
	case wasm.OpI32Xor:
		y, x := f.operands.popU32(), f.operands.popU32()
		f.operands.pushU32(x ^ y)
	case wasm.OpI32Shl:
		y, x := f.operands.popU32(), f.operands.popU32()
		f.operands.pushU32(x << (y % 32))
	case wasm.OpI32ShrS:
		y, x := f.operands.popU32(), f.operands.popI32()
		f.operands.pushI32(x >> (y % 32))
	case wasm.OpI32ShrU:
		y, x := f.operands.popU32(), f.operands.popU32()
		f.operands.pushU32(x >> (y % 32))
	case wasm.OpI32Rotl:
		y, x := f.operands.popU32(), f.operands.popU32()
		f.operands.pushU32(bits.RotateLeft32(x, int(y%32)))
	case wasm.OpI32Rotr:
		y, x := f.operands.popU32(), f.operands.popU32()
		f.operands.pushU32(bits.RotateLeft32(x, -int(y%32)))

	case wasm.OpI64Clz:
		f.operands.pushI64(int64(bits.LeadingZeros64(f.operands.popU64())))
	case wasm.OpI64Ctz:
		f.operands.pushI64(int64(bits.TrailingZeros64(f.operands.popU64())))
	case wasm.OpI64Popcnt:
		f.operands.pushI64(int64(bits.OnesCount64(f.operands.popU64())))
	case wasm.OpI64Add:
		y, x := f.operands.popU64(), f.operands.popU64()
		f.operands.pushU64(x + y)
	case wasm.OpI64Sub:
		y, x := f.operands.popU64(), f.operands.popU64()
		f.operands.pushU64(x - y)
	case wasm.OpI64Mul:
		y, x := f.operands.popU64(), f.operands.popU64()
		f.operands.pushU64(x * y)
	case wasm.OpI64DivS:
		y, x := f.operands.popI64(), f.operands.popI64()
		if y == 0 {
			trapNow(TrapIntegerDivideByZero, "i64.div_s by zero")
		}
		if x == math.MinInt64 && y == -1 {
			trapNow(TrapIntegerOverflow, "i64.div_s overflow: %d / %d", x, y)
		}
		f.operands.pushI64(x / y)
	case wasm.OpI64DivU:
		y, x := f.operands.popU64(), f.operands.popU64()
		if y == 0 {
			trapNow(TrapIntegerDivideByZero, "i64.div_u by zero")
		}
		f.operands.pushU64(x / y)
	case wasm.OpI64RemS:
		y, x := f.operands.popI64(), f.operands.popI64()
		if y == 0 {
			trapNow(TrapIntegerDivideByZero, "i64.rem_s by zero")
		}
		if x == math.MinInt64 && y == -1 {
			f.operands.pushI64(0)
		} else {
			f.operands.pushI64(x % y)
		}
	case wasm.OpI64RemU:
		y, x := f.operands.popU64(), f.operands.popU64()
		if y == 0 {
			trapNow(TrapIntegerDivideByZero, "i64.rem_u by zero")
		}
		f.operands.pushU64(x % y)
	case wasm.OpI64And:
		y, x := f.operands.popU64(), f.operands.popU64()
		f.operands.pushU64(x & y)
	case wasm.OpI64Or:
		y, x := f.operands.popU64(), f.operands.popU64()
		f.operands.pushU64(x | y)
	case wasm.OpI64Xor:
		y, x := f.operands.popU64(), f.operands.popU64()
		f.operands.pushU64(x ^ y)
	case wasm.OpI64Shl:
		y, x := f.operands.popU64(), f.operands.popU64()
		f.operands.pushU64(x << (y % 64))
	case wasm.OpI64ShrS:
		y, x := f.operands.popU64(), f.operands.popI64()
		f.operands.pushI64(x >> (y % 64))
	case wasm.OpI64ShrU:
		y, x := f.operands.popU64(), f.operands.popU64()
		f.operands.pushU64(x >> (y % 64))
	case wasm.OpI64Rotl:
		y, x := f.operands.popU64(), f.operands.popU64()
		f.operands.pushU64(bits.RotateLeft64(x, int(y%64)))
	case wasm.OpI64Rotr:
		y, x := f.operands.popU64(), f.operands.popU64()
		f.operands.pushU64(bits.RotateLeft64(x, -int(y%64)))

	case wasm.OpF32Abs:
		f.operands.pushF32(float32(math.Abs(float64(f.operands.popF32()))))
	case wasm.OpF32Neg:
		f.operands.pushF32(-f.operands.popF32())
	case wasm.OpF32Ceil:
		f.operands.pushF32(float32(math.Ceil(float64(f.operands.popF32()))))
	case wasm.OpF32Floor:
		f.operands.pushF32(float32(math.Floor(float64(f.operands.popF32()))))
	case wasm.OpF32Trunc:
		f.operands.pushF32(float32(math.Trunc(float64(f.operands.popF32()))))
	case wasm.OpF32Nearest:
		f.operands.pushF32(moremath.WasmCompatNearestF32(f.operands.popF32()))
	case wasm.OpF32Sqrt:
		f.operands.pushF32(float32(math.Sqrt(float64(f.operands.popF32()))))
	case wasm.OpF32Add:
		y, x := f.operands.popF32(), f.operands.popF32()
		f.operands.pushF32(x + y)
	case wasm.OpF32Sub:
		y, x := f.operands.popF32(), f.operands.popF32()
		f.operands.pushF32(x - y)
	case wasm.OpF32Mul:
		y, x := f.operands.popF32(), f.operands.popF32()
		f.operands.pushF32(x * y)
	case wasm.OpF32Div:
		y, x := f.operands.popF32(), f.operands.popF32()
		f.operands.pushF32(x / y)
	case wasm.OpF32Min:
		y, x := f.operands.popF32(), f.operands.popF32()
		f.operands.pushF32(float32(moremath.WasmCompatMin(float64(x), float64(y))))
	case wasm.OpF32Max:
		y, x := f.operands.popF32(), f.operands.popF32()
		f.operands.pushF32(float32(moremath.WasmCompatMax(float64(x), float64(y))))
	case wasm.OpF32Copysign:
		y, x := f.operands.popF32(), f.operands.popF32()
		f.operands.pushF32(float32(math.Copysign(float64(x), float64(y))))

	case wasm.OpF64Abs:
		f.operands.pushF64(math.Abs(f.operands.popF64()))
	case wasm.OpF64Neg:
		f.operands.pushF64(-f.operands.popF64())
	case wasm.OpF64Ceil:
		f.operands.pushF64(math.Ceil(f.operands.popF64()))
	case wasm.OpF64Floor:
		f.operands.pushF64(math.Floor(f.operands.popF64()))
	case wasm.OpF64Trunc:
		f.operands.pushF64(math.Trunc(f.operands.popF64()))
	case wasm.OpF64Nearest:
		f.operands.pushF64(moremath.WasmCompatNearestF64(f.operands.popF64()))
	case wasm.OpF64Sqrt:
		f.operands.pushF64(math.Sqrt(f.operands.popF64()))
	case wasm.OpF64Add:
		y, x := f.operands.popF64(), f.operands.popF64()
		f.operands.pushF64(x + y)
	case wasm.OpF64Sub:
		y, x := f.operands.popF64(), f.operands.popF64()
		f.operands.pushF64(x - y)
	case wasm.OpF64Mul:
		y, x := f.operands.popF64(), f.operands.popF64()
		f.operands.pushF64(x * y)
	case wasm.OpF64Div:
		y, x := f.operands.popF64(), f.operands.popF64()
		f.operands.pushF64(x / y)
	case wasm.OpF64Min:
		y, x := f.operands.popF64(), f.operands.popF64()
		f.operands.pushF64(moremath.WasmCompatMin(x, y))
	case wasm.OpF64Max:
		y, x := f.operands.popF64(), f.operands.popF64()
		f.operands.pushF64(moremath.WasmCompatMax(x, y))
	case wasm.OpF64Copysign:
		y, x := f.operands.popF64(), f.operands.popF64()
		f.operands.pushF64(math.Copysign(x, y))

	default:
		f.execConversion(in)
	}
}

func b2i(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
