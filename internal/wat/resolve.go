package wat

import (
	"github.com/go-wat/wat/internal/wasm"
	"github.com/go-wat/wat/internal/wat/token"
)

// resolveModule is the second parser pass: every Index left in
// IndexByIdentifier form is rewritten to IndexByInt against the symbol tables
// mb.bind populated while walking module fields in the first pass.
func resolveModule(p *parser, mb *moduleBuilder) error {
	for i := range mb.mod.Imports {
		if mb.mod.Imports[i].Desc.Kind == wasm.ImportDescFunc {
			if err := resolveTypeUse(p, mb, &mb.mod.Imports[i].Desc.FuncType); err != nil {
				return err
			}
		}
	}
	for i := range mb.mod.Functions {
		fn := &mb.mod.Functions[i]
		if err := resolveTypeUse(p, mb, &fn.TypeUse); err != nil {
			return err
		}
		if err := resolveInstructions(p, mb, fn.Body); err != nil {
			return err
		}
	}
	for i := range mb.mod.Globals {
		if err := resolveInstructions(p, mb, mb.mod.Globals[i].Init); err != nil {
			return err
		}
	}
	for i := range mb.mod.Exports {
		if err := resolveIndex(p, mb, &mb.mod.Exports[i].Desc.Index); err != nil {
			return err
		}
	}
	if mb.mod.Start != nil {
		if err := resolveIndex(p, mb, mb.mod.Start); err != nil {
			return err
		}
	}
	for i := range mb.mod.Elements {
		el := &mb.mod.Elements[i]
		if err := resolveIndex(p, mb, &el.TableIndex); err != nil {
			return err
		}
		if err := resolveInstructions(p, mb, el.Offset); err != nil {
			return err
		}
		for j := range el.FuncIndices {
			if err := resolveIndex(p, mb, &el.FuncIndices[j]); err != nil {
				return err
			}
		}
	}
	for i := range mb.mod.Data {
		d := &mb.mod.Data[i]
		if err := resolveIndex(p, mb, &d.MemoryIndex); err != nil {
			return err
		}
		if err := resolveInstructions(p, mb, d.Offset); err != nil {
			return err
		}
	}
	return nil
}

// resolveTypeUse resolves tu's explicit type index and, when an inline
// (param ...)/(result ...) signature was also given, checks it against the
// now-resolved type: the combined form is only an abbreviation convenience
// when the two agree, never a silent override.
func resolveTypeUse(p *parser, mb *moduleBuilder, tu *wasm.TypeUse) error {
	if err := resolveIndex(p, mb, &tu.Type); err != nil {
		return err
	}
	if tu.Inline == nil {
		return nil
	}
	resolved, ok := mb.typeByIndex(tu.Type)
	if !ok {
		return p.fail(token.UnexpectedToken, "reference to undefined type %s", tu.Type)
	}
	if !resolved.Equals(tu.Inline) {
		return p.fail(token.UnexpectedToken, "inline signature does not match referenced type %s", tu.Type)
	}
	return nil
}

func resolveInstructions(p *parser, mb *moduleBuilder, instrs []wasm.Instruction) error {
	for i := range instrs {
		in := &instrs[i]
		if in.Func != nil {
			if err := resolveIndex(p, mb, in.Func); err != nil {
				return err
			}
		}
		if in.Var != nil && in.Var.Space == wasm.IndexSpaceGlobal {
			if err := resolveIndex(p, mb, in.Var); err != nil {
				return err
			}
		}
		if in.TypeUse != nil {
			if err := resolveTypeUse(p, mb, in.TypeUse); err != nil {
				return err
			}
		}
		if err := resolveInstructions(p, mb, in.Body); err != nil {
			return err
		}
		if err := resolveInstructions(p, mb, in.Else); err != nil {
			return err
		}
	}
	return nil
}

func resolveIndex(p *parser, mb *moduleBuilder, idx *wasm.Index) error {
	if idx.Resolved() {
		return nil
	}
	var syms map[string]uint32
	switch idx.Space {
	case wasm.IndexSpaceType:
		syms = mb.typeSyms
	case wasm.IndexSpaceFunction:
		syms = mb.funcSyms
	case wasm.IndexSpaceTable:
		syms = mb.tableSyms
	case wasm.IndexSpaceMemory:
		syms = mb.memSyms
	case wasm.IndexSpaceGlobal:
		syms = mb.globalSyms
	default:
		return token.NewParseError(token.Context{}, token.UnexpectedToken, "unresolvable index space %s", idx.Space)
	}
	n, ok := syms[idx.Symbol]
	if !ok {
		return token.NewParseError(token.Context{}, token.UnexpectedToken, "undefined %s $%s", idx.Space, idx.Symbol)
	}
	idx.Kind = wasm.IndexByInt
	idx.Numeric = n
	return nil
}
