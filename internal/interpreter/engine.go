// Package interpreter executes a flattened function body (internal/flatten)
// against an internal/wasm.Store with a one-step dispatch loop: an
// explicit instruction pointer advances through a linear vector, pushing
// and popping a bounded operand stack.
package interpreter

import (
	"github.com/go-wat/wat/internal/logging"
	"github.com/go-wat/wat/internal/wasm"
)

// Engine runs function calls against a Store. It holds no per-call state
// itself; every Call is independent and safe to invoke concurrently, as
// long as the Store's memory/globals aren't shared across concurrent
// calls into the same instance.
type Engine struct {
	Store         *wasm.Store
	StackCapacity int
	Log           *logging.Logger
}

// NewEngine builds an Engine over store with the default stack capacity.
func NewEngine(store *wasm.Store) *Engine {
	return &Engine{Store: store, StackCapacity: DefaultStackCapacity, Log: logging.Nop()}
}

// NewEngineWithLogger is NewEngine, reporting each one-step dispatch at
// logging.ScopeInterpreter on log.
func NewEngineWithLogger(store *wasm.Store, log *logging.Logger) *Engine {
	if log == nil {
		log = logging.Nop()
	}
	return &Engine{Store: store, StackCapacity: DefaultStackCapacity, Log: log}
}

// Call invokes the exported/addressed function funcAddr (an index into
// Store.Functions) with args already laid out as raw value bit patterns,
// returning its results or the Trap that aborted it.
func (e *Engine) Call(funcAddr int, args []uint64) (results []uint64, err error) {
	return e.call(funcAddr, args, 0)
}

func (e *Engine) call(funcAddr int, args []uint64, depth int) (results []uint64, err error) {
	defer func() {
		if r := recover(); r != nil {
			if tr, ok := r.(*Trap); ok {
				err = tr
				return
			}
			panic(r)
		}
	}()

	if depth >= e.capacity() {
		trapNow(TrapStackOverflow, "call depth exceeded %d", e.capacity())
	}
	if funcAddr < 0 || funcAddr >= len(e.Store.Functions) {
		trapNow(TrapUndefinedElement, "no function at address %d", funcAddr)
	}
	fi := e.Store.Functions[funcAddr]
	if fi.Host != nil {
		res, herr := fi.Host.Call(e.moduleInstanceOf(fi), args)
		if herr != nil {
			trapNow(TrapUnreachable, "%s", herr.Error())
		}
		return res, nil
	}

	code, ok := fi.Body.([]wasm.Instruction)
	if !ok {
		trapNow(TrapUnreachable, "function body not flattened")
	}

	locals := make([]uint64, fi.NumLocals)
	copy(locals, args)

	frame := &frame{
		locals:      locals,
		code:        code,
		operands:    newOperandStack(e.capacity()),
		labels:      newLabelStack(e.capacity()),
		resultArity: len(fi.Type.Results),
		engine:      e,
		moduleInst:  e.moduleInstanceOf(fi),
		depth:       depth,
	}
	return frame.run(), nil
}

func (e *Engine) logger() *logging.Logger {
	if e.Log == nil {
		return logging.Nop()
	}
	return e.Log
}

func (e *Engine) capacity() int {
	if e.StackCapacity > 0 {
		return e.StackCapacity
	}
	return DefaultStackCapacity
}

func (e *Engine) moduleInstanceOf(fi *wasm.FunctionInstance) *wasm.ModuleInstance {
	mi, _ := e.Store.Module(fi.Owner)
	return mi
}
