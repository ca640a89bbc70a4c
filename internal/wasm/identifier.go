package wasm

import "fmt"

// IndexSpaceKind names one of the eight index spaces a text-format
// identifier or Index can belong to.
type IndexSpaceKind byte

const (
	IndexSpaceType IndexSpaceKind = iota
	IndexSpaceFunction
	IndexSpaceTable
	IndexSpaceMemory
	IndexSpaceGlobal
	IndexSpaceLocal
	IndexSpaceLabel
	// IndexSpaceTypeDef carries an inline function type used only as a
	// typeuse de-duplication key; it never appears in a Module's index
	// spaces.
	IndexSpaceTypeDef
)

func (k IndexSpaceKind) String() string {
	switch k {
	case IndexSpaceType:
		return "type"
	case IndexSpaceFunction:
		return "function"
	case IndexSpaceTable:
		return "table"
	case IndexSpaceMemory:
		return "memory"
	case IndexSpaceGlobal:
		return "global"
	case IndexSpaceLocal:
		return "local"
	case IndexSpaceLabel:
		return "label"
	case IndexSpaceTypeDef:
		return "typedef"
	}
	return "unknown"
}

// Identifier names an entity declared in the text format, e.g. "$foo" on a
// function. Either Symbol or Unique (or both, once resolved) are set.
type Identifier struct {
	Space  IndexSpaceKind
	Symbol string // e.g. "foo" for $foo (without the '$'), empty when anonymous
	Unique uint32
	hasUnique bool
}

// NewSymbolicIdentifier builds an Identifier with only a symbolic form.
func NewSymbolicIdentifier(space IndexSpaceKind, symbol string) *Identifier {
	return &Identifier{Space: space, Symbol: symbol}
}

// WithUnique returns a copy of id with Unique set, used when the module
// assembler assigns the running-counter numeric form to an anonymous or
// symbolic declaration.
func (id *Identifier) WithUnique(u uint32) *Identifier {
	cp := *id
	cp.Unique = u
	cp.hasUnique = true
	return &cp
}

// HasUnique reports whether a numeric unique has been assigned.
func (id *Identifier) HasUnique() bool { return id != nil && id.hasUnique }

func (id *Identifier) String() string {
	if id == nil {
		return "<anonymous>"
	}
	if id.Symbol != "" {
		return id.Symbol
	}
	return fmt.Sprintf("%s[%d]", id.Space, id.Unique)
}

// IndexKind distinguishes the two surface forms an Index can take.
type IndexKind byte

const (
	IndexByInt IndexKind = iota
	IndexByIdentifier
)

// Index is either a literal integer (ByInt) or a symbolic reference
// (ByIdentifier) resolved against the matching identifier category during
// module assembly.
type Index struct {
	Kind    IndexKind
	Space   IndexSpaceKind
	Numeric uint32 // valid when Kind == IndexByInt, or after resolution
	Symbol  string // valid when Kind == IndexByIdentifier
}

// NewNumericIndex builds a resolved, by-integer Index.
func NewNumericIndex(space IndexSpaceKind, n uint32) Index {
	return Index{Kind: IndexByInt, Space: space, Numeric: n}
}

// NewSymbolicIndex builds an unresolved, by-identifier Index.
func NewSymbolicIndex(space IndexSpaceKind, symbol string) Index {
	return Index{Kind: IndexByIdentifier, Space: space, Symbol: symbol}
}

// Resolved reports whether this Index has already been reduced to an integer.
func (idx Index) Resolved() bool { return idx.Kind == IndexByInt }

func (idx Index) String() string {
	if idx.Kind == IndexByInt {
		return fmt.Sprintf("%d", idx.Numeric)
	}
	return idx.Symbol
}
