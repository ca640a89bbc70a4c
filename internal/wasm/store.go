package wasm

import "github.com/google/uuid"

// Store, FunctionInstance, TableInstance, MemoryInstance, and GlobalCell
// model the embedder-owned runtime objects as external collaborators: "The
// Store... is owned by the embedder and
// presented to each execution." This package only defines the shape the
// interpreter reads from; allocation policy (linking, re-instantiation,
// validation) is the embedder's concern and is intentionally thin here.
//
// A FunctionInstance references its owning module instance by an interned
// identifier (ModuleInstance.ID, a uuid.UUID) plus a lookup on the Store,
// never by a Go back-pointer, so module instances can be freed without
// chasing cycles.

// ModuleInstance is one instantiation of a Module, holding the concrete
// addresses its index spaces resolve to.
type ModuleInstance struct {
	ID uuid.UUID

	Module *Module

	// FunctionAddrs maps the function index space (imports first, then
	// module-defined) to addresses into Store.Functions.
	FunctionAddrs []int
	// TableAddr is the address of this instance's sole table in
	// Store.Tables, or -1 if the module declares none.
	TableAddr int
	// MemoryAddr is the address of this instance's sole memory in
	// Store.Memories, or -1 if the module declares none.
	MemoryAddr int
	// GlobalAddrs maps the global index space to addresses into
	// Store.Globals.
	GlobalAddrs []int
}

// FunctionInstance is a function ready to run: either a module-defined
// function (Body set to internal/flatten's output, Host nil) or a host
// import bound at instantiation time (Host set, Body nil). The
// interpreter dispatches on which is present rather than addressing two
// parallel slices.
type FunctionInstance struct {
	Owner     uuid.UUID
	Type      FunctionType
	NumLocals int // params + declared locals
	// Body is set by the embedder from internal/flatten's output; this
	// package only carries the reference.
	Body interface{}
	Host *HostFunctionInstance
}

// HostFunctionInstance is a function whose implementation is a host
// callback rather than WASM code; interpretation treats it as an opaque
// call-out and never descends into it.
type HostFunctionInstance struct {
	Type FunctionType
	Call func(moduleInst *ModuleInstance, args []uint64) ([]uint64, error)
}

// TableInstance is length-bounded slots of optional function addresses.
type TableInstance struct {
	Type   TableType
	Elements []*int // nil entry means "uninitialized element"
}

// MemoryInstance is a raw byte buffer sized in page-granular units.
type MemoryInstance struct {
	Type MemoryType
	Data []byte // len(Data) == PageCount * PageSize
	// Ceiling is an embedder-imposed page cap (RuntimeConfig's
	// WithMemoryMaxPages), tighter than Type.EffectiveMax() when set. Zero
	// means no override: Grow is bounded by Type.EffectiveMax() alone.
	Ceiling uint32
}

func (m *MemoryInstance) PageCount() uint32 { return uint32(len(m.Data) / PageSize) }

func (m *MemoryInstance) effectiveMax() uint32 {
	max := m.Type.EffectiveMax()
	if m.Ceiling != 0 && m.Ceiling < max {
		return m.Ceiling
	}
	return max
}

// Grow extends the memory by delta pages; returns the previous page count,
// or false if doing so would exceed the effective max.
func (m *MemoryInstance) Grow(delta uint32) (previous uint32, ok bool) {
	previous = m.PageCount()
	next := uint64(previous) + uint64(delta)
	if next > uint64(m.effectiveMax()) {
		return previous, false
	}
	m.Data = append(m.Data, make([]byte, int(delta)*PageSize)...)
	return previous, true
}

// GlobalCell is a mutable or immutable global's storage.
type GlobalCell struct {
	Type  GlobalType
	Value uint64 // bit pattern per Type.Valtype
}

// Store is the embedder-owned collection of allocated runtime objects,
// consumed at run time by the interpreter. Construction, linking, and
// persistence policy belong to the embedder;
// this type only provides the storage slices the interpreter indexes into.
type Store struct {
	Modules   map[uuid.UUID]*ModuleInstance
	Functions []*FunctionInstance
	Hosts     []*HostFunctionInstance
	Tables    []*TableInstance
	Memories  []*MemoryInstance
	Globals   []*GlobalCell
}

// NewStore builds an empty Store.
func NewStore() *Store {
	return &Store{Modules: map[uuid.UUID]*ModuleInstance{}}
}

// Module looks up a previously registered ModuleInstance by its interned
// identity.
func (s *Store) Module(id uuid.UUID) (*ModuleInstance, bool) {
	mi, ok := s.Modules[id]
	return mi, ok
}
