package interpreter

import (
	"encoding/binary"

	"github.com/go-wat/wat/internal/wasm"
)

func isLoadOp(k wasm.InstructionKind) bool {
	switch k {
	case wasm.OpI32Load, wasm.OpI64Load, wasm.OpF32Load, wasm.OpF64Load,
		wasm.OpI32Load8S, wasm.OpI32Load8U, wasm.OpI32Load16S, wasm.OpI32Load16U,
		wasm.OpI64Load8S, wasm.OpI64Load8U, wasm.OpI64Load16S, wasm.OpI64Load16U,
		wasm.OpI64Load32S, wasm.OpI64Load32U:
		return true
	}
	return false
}

func isStoreOp(k wasm.InstructionKind) bool {
	switch k {
	case wasm.OpI32Store, wasm.OpI64Store, wasm.OpF32Store, wasm.OpF64Store,
		wasm.OpI32Store8, wasm.OpI32Store16, wasm.OpI64Store8, wasm.OpI64Store16, wasm.OpI64Store32:
		return true
	}
	return false
}

func (f *frame) effectiveAddr(in wasm.Instruction, width int) []byte {
	if f.moduleInst.MemoryAddr < 0 {
		trapNow(TrapOutOfBoundsMemoryAccess, "no memory in this module")
	}
	mem := f.engine.Store.Memories[f.moduleInst.MemoryAddr]
	base := f.operands.popU32()
	addr := uint64(base) + uint64(in.Mem.Offset)
	if addr+uint64(width) > uint64(len(mem.Data)) {
		trapNow(TrapOutOfBoundsMemoryAccess, "access at %d+%d exceeds memory of size %d", addr, width, len(mem.Data))
	}
	return mem.Data[addr : addr+uint64(width)]
}

func (f *frame) execLoad(in wasm.Instruction) {
	switch in.Kind {
	case wasm.OpI32Load:
		f.operands.pushU32(binary.LittleEndian.Uint32(f.effectiveAddr(in, 4)))
	case wasm.OpI64Load:
		f.operands.pushU64(binary.LittleEndian.Uint64(f.effectiveAddr(in, 8)))
	case wasm.OpF32Load:
		f.operands.push(uint64(binary.LittleEndian.Uint32(f.effectiveAddr(in, 4))))
	case wasm.OpF64Load:
		f.operands.push(binary.LittleEndian.Uint64(f.effectiveAddr(in, 8)))
	case wasm.OpI32Load8S:
		f.operands.pushI32(int32(int8(f.effectiveAddr(in, 1)[0])))
	case wasm.OpI32Load8U:
		f.operands.pushU32(uint32(f.effectiveAddr(in, 1)[0]))
	case wasm.OpI32Load16S:
		f.operands.pushI32(int32(int16(binary.LittleEndian.Uint16(f.effectiveAddr(in, 2)))))
	case wasm.OpI32Load16U:
		f.operands.pushU32(uint32(binary.LittleEndian.Uint16(f.effectiveAddr(in, 2))))
	case wasm.OpI64Load8S:
		f.operands.pushI64(int64(int8(f.effectiveAddr(in, 1)[0])))
	case wasm.OpI64Load8U:
		f.operands.pushU64(uint64(f.effectiveAddr(in, 1)[0]))
	case wasm.OpI64Load16S:
		f.operands.pushI64(int64(int16(binary.LittleEndian.Uint16(f.effectiveAddr(in, 2)))))
	case wasm.OpI64Load16U:
		f.operands.pushU64(uint64(binary.LittleEndian.Uint16(f.effectiveAddr(in, 2))))
	case wasm.OpI64Load32S:
		f.operands.pushI64(int64(int32(binary.LittleEndian.Uint32(f.effectiveAddr(in, 4)))))
	case wasm.OpI64Load32U:
		f.operands.pushU64(uint64(binary.LittleEndian.Uint32(f.effectiveAddr(in, 4))))
	}
}

func (f *frame) execStore(in wasm.Instruction) {
	switch in.Kind {
	case wasm.OpI32Store:
		v := f.operands.popU32()
		binary.LittleEndian.PutUint32(f.effectiveAddr(in, 4), v)
	case wasm.OpI64Store:
		v := f.operands.popU64()
		binary.LittleEndian.PutUint64(f.effectiveAddr(in, 8), v)
	case wasm.OpF32Store:
		v := f.operands.popU64()
		binary.LittleEndian.PutUint32(f.effectiveAddr(in, 4), uint32(v))
	case wasm.OpF64Store:
		v := f.operands.popU64()
		binary.LittleEndian.PutUint64(f.effectiveAddr(in, 8), v)
	case wasm.OpI32Store8:
		v := f.operands.popU32()
		f.effectiveAddr(in, 1)[0] = byte(v)
	case wasm.OpI32Store16:
		v := f.operands.popU32()
		binary.LittleEndian.PutUint16(f.effectiveAddr(in, 2), uint16(v))
	case wasm.OpI64Store8:
		v := f.operands.popU64()
		f.effectiveAddr(in, 1)[0] = byte(v)
	case wasm.OpI64Store16:
		v := f.operands.popU64()
		binary.LittleEndian.PutUint16(f.effectiveAddr(in, 2), uint16(v))
	case wasm.OpI64Store32:
		v := f.operands.popU64()
		binary.LittleEndian.PutUint32(f.effectiveAddr(in, 4), uint32(v))
	}
}
