package wat

import "github.com/go-wat/wat/internal/wasm"

// parseTypeUse parses the "typeuse" production: an optional explicit
// "(type <idx>)" reference, followed by inline "(param ...)"/"(result ...)"
// fields. When only the inline form is present, the function type is
// canonicalized against mb's existing (type ...) definitions, inserting a
// fresh one if none matches — the "automatic type insertion" abbreviation.
func (p *parser) parseTypeUse(mb *moduleBuilder) (wasm.TypeUse, error) {
	var explicit *wasm.Index
	if p.atOpen() && p.peekKeywordAt(1, "type") {
		p.advance() // (
		p.advance() // type
		idx, err := p.parseIndex(wasm.IndexSpaceType)
		if err != nil {
			return wasm.TypeUse{}, err
		}
		if err := p.expectClose(); err != nil {
			return wasm.TypeUse{}, err
		}
		explicit = &idx
	}

	params, results, err := p.parseParamsAndResults()
	if err != nil {
		return wasm.TypeUse{}, err
	}
	hasInline := params != nil || results != nil
	inline := wasm.FunctionType{Params: params, Results: results}

	switch {
	case explicit != nil:
		tu := wasm.TypeUse{Type: *explicit}
		if hasInline {
			tu.Inline = &inline
		}
		return tu, nil
	case hasInline:
		idx := mb.resolveOrInsertType(inline)
		return wasm.TypeUse{Type: idx}, nil
	default:
		// Neither form given: an empty (void -> void) signature, canonicalized
		// the same way as any other inline type.
		idx := mb.resolveOrInsertType(wasm.FunctionType{})
		return wasm.TypeUse{Type: idx}, nil
	}
}

// parseIndex parses either a literal unsigned integer or a "$name"
// identifier reference into space. Identifier references are left
// unresolved (IndexByIdentifier) until the module-wide resolution pass.
func (p *parser) parseIndex(space wasm.IndexSpaceKind) (wasm.Index, error) {
	if id := p.tryIdentifier(); id != nil {
		return wasm.NewSymbolicIndex(space, *id), nil
	}
	n, err := p.expectUnsigned32()
	if err != nil {
		return wasm.Index{}, err
	}
	return wasm.NewNumericIndex(space, n), nil
}
