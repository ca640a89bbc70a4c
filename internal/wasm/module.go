package wasm

import (
	"fmt"

	"github.com/go-wat/wat/api"
)

// TypeDefinition is a module-level `(type ...)` field.
type TypeDefinition struct {
	Id   *Identifier
	Type FunctionType
}

// ImportDescKind tags the sum of things an Import can describe.
type ImportDescKind byte

const (
	ImportDescFunc ImportDescKind = iota
	ImportDescTable
	ImportDescMemory
	ImportDescGlobal
)

// ImportDesc is the sum of the four describable import kinds.
type ImportDesc struct {
	Kind     ImportDescKind
	FuncType TypeUse
	Table    TableType
	Memory   MemoryType
	Global   GlobalType
}

// Import is a `(import m n <desc>)` field, including ones synthesized by
// inline-import abbreviation expansion.
type Import struct {
	Module, Name string
	Id           *Identifier
	Desc         ImportDesc
}

// Function is a module-defined (non-imported) `(func ...)` field.
type Function struct {
	Id      *Identifier
	TypeUse TypeUse
	Locals  []Param // declared locals, following the parameters in a Frame
	Body    []Instruction
}

// Table is a module-defined `(table ...)` field.
type Table struct {
	Id   *Identifier
	Type TableType
}

// Memory is a module-defined `(memory ...)` field.
type Memory struct {
	Id   *Identifier
	Type MemoryType
}

// Global is a module-defined `(global ...)` field.
type Global struct {
	Id   *Identifier
	Type GlobalType
	Init []Instruction // constant expression
}

// ExportDesc names the kind and index of the exported entity.
type ExportDesc struct {
	Type  api.ExternType
	Index Index
}

// Export is an `(export "name" <desc>)` field, including ones synthesized
// by inline-export abbreviation expansion.
type Export struct {
	Name string
	Desc ExportDesc
}

// ElementSegment is an `(elem ...)` field.
type ElementSegment struct {
	TableIndex  Index
	Offset      []Instruction
	FuncIndices []Index
}

// DataSegment is a `(data ...)` field.
type DataSegment struct {
	MemoryIndex Index
	Offset      []Instruction
	Init        []byte
}

// Module aggregates every field of one `(module ...)`. AST nodes are
// immutable once DecodeModule returns.
type Module struct {
	Name string

	Types     []TypeDefinition
	Imports   []Import
	Functions []Function
	Tables    []Table
	Memories  []Memory
	Globals   []Global
	Exports   []Export
	Start     *Index
	Elements  []ElementSegment
	Data      []DataSegment
}

// ImportedFunctionCount returns how many entries of Imports describe a
// function, i.e. the count of function-space indices that are imports and
// therefore precede every module-defined Function in that index space.
func (m *Module) ImportedFunctionCount() int {
	n := 0
	for _, imp := range m.Imports {
		if imp.Desc.Kind == ImportDescFunc {
			n++
		}
	}
	return n
}

// Validate enforces the module-level invariants that are not already
// enforced incrementally during parsing: at most one
// memory, at most one table, at most one start function. Per-index-space
// identifier uniqueness is enforced as each field is bound during parsing
// (internal/wat's moduleBuilder.bind), since that is where the symbol
// tables live.
func (m *Module) Validate() error {
	memoryCount := len(m.Memories)
	for _, imp := range m.Imports {
		if imp.Desc.Kind == ImportDescMemory {
			memoryCount++
		}
	}
	if memoryCount > 1 {
		return fmt.Errorf("at most one memory is allowed, found %d", memoryCount)
	}

	tableCount := len(m.Tables)
	for _, imp := range m.Imports {
		if imp.Desc.Kind == ImportDescTable {
			tableCount++
		}
	}
	if tableCount > 1 {
		return fmt.Errorf("at most one table is allowed, found %d", tableCount)
	}

	return nil
}
