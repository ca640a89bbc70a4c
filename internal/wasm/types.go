package wasm

import (
	"fmt"

	"github.com/go-wat/wat/api"
)

// ValueType re-exports api.ValueType so callers building AST nodes don't
// need to import api directly.
type ValueType = api.ValueType

// MemoryMaxPages is the implementation ceiling used when a MemoryType
// declares no explicit max: 65536 pages (4 GiB), per spec.
const MemoryMaxPages = 65536

// TableMaxElements is the implementation ceiling used when a TableType
// declares no explicit max.
const TableMaxElements = 1<<32 - 1

// PageSize is the unit of linear-memory sizing, 64 KiB.
const PageSize = 65536

// Features is a bitset of post-MVP instruction families a RuntimeConfig
// can enable or disable independently, gating what the parser accepts.
type Features uint32

const (
	// FeatureSignExtension gates i32/i64.extend8_s, extend16_s, extend32_s.
	FeatureSignExtension Features = 1 << iota
	// FeatureSaturatingTruncation gates the trunc_sat instruction family.
	FeatureSaturatingTruncation

	// FeatureNone disables every post-MVP family, restricting the parser
	// to the strict MVP instruction set.
	FeatureNone Features = 0
	// FeatureAll enables every post-MVP family; the default a
	// RuntimeConfig starts from.
	FeatureAll = FeatureSignExtension | FeatureSaturatingTruncation
)

// Has reports whether every bit set in want is also set in f.
func (f Features) Has(want Features) bool { return f&want == want }

// Param is a function-type parameter: an optional local identifier plus a
// value type.
type Param struct {
	Id   *Identifier
	Type ValueType
}

// Result is a function-type result: exactly one value type in the MVP surface.
type Result struct {
	Type ValueType
}

// FunctionType is an ordered list of Params and Results.
type FunctionType struct {
	Params  []Param
	Results []Result
}

// Equals compares two FunctionTypes by their shape alone (parameter and
// result value types), ignoring parameter identifiers: this is the
// equality typeuse canonicalization binds against.
func (ft *FunctionType) Equals(other *FunctionType) bool {
	if ft == nil || other == nil {
		return ft == other
	}
	if len(ft.Params) != len(other.Params) || len(ft.Results) != len(other.Results) {
		return false
	}
	for i, p := range ft.Params {
		if p.Type != other.Params[i].Type {
			return false
		}
	}
	for i, r := range ft.Results {
		if r.Type != other.Results[i].Type {
			return false
		}
	}
	return true
}

func (ft *FunctionType) String() string {
	params := make([]byte, 0, len(ft.Params))
	for _, p := range ft.Params {
		params = append(params, p.Type)
	}
	results := make([]byte, 0, len(ft.Results))
	for _, r := range ft.Results {
		results = append(results, r.Type)
	}
	return fmt.Sprintf("(%s)->(%s)", valueTypeNames(params), valueTypeNames(results))
}

func valueTypeNames(ts []byte) string {
	out := ""
	for i, t := range ts {
		if i > 0 {
			out += ","
		}
		out += api.ValueTypeName(t)
	}
	return out
}

// Limits bounds a table or memory: min <= max (when max is present).
type Limits struct {
	Min uint32
	Max *uint32
}

// Validate enforces the min <= max invariant (§8 "Limits monotonicity").
func (l Limits) Validate() error {
	if l.Max != nil && l.Min > *l.Max {
		return fmt.Errorf("limits: min %d exceeds max %d", l.Min, *l.Max)
	}
	return nil
}

// MemoryType is a Limits in units of 64 KiB pages.
type MemoryType struct {
	Limits Limits
}

// EffectiveMax returns the declared max, or MemoryMaxPages if absent.
func (mt MemoryType) EffectiveMax() uint32 {
	if mt.Limits.Max != nil {
		return *mt.Limits.Max
	}
	return MemoryMaxPages
}

// TableType is a Limits plus the sole MVP element type, funcref.
type TableType struct {
	Limits  Limits
	Element api.ElementType
}

// EffectiveMax returns the declared max, or TableMaxElements if absent.
func (tt TableType) EffectiveMax() uint32 {
	if tt.Limits.Max != nil {
		return *tt.Limits.Max
	}
	return TableMaxElements
}

// GlobalType is a value type plus a mutability flag.
type GlobalType struct {
	Valtype ValueType
	Mutable bool
}
