package wat

import (
	"go.uber.org/zap"

	"github.com/go-wat/wat/api"
	"github.com/go-wat/wat/internal/logging"
	"github.com/go-wat/wat/internal/wasm"
	"github.com/go-wat/wat/internal/wat/token"
)

// moduleBuilder accumulates the module under construction plus the running
// per-space counters and symbol tables the text format's forward and
// inline references need.
type moduleBuilder struct {
	mod    *wasm.Module
	counts TextModuleCounts

	typeSyms   map[string]uint32
	funcSyms   map[string]uint32
	tableSyms  map[string]uint32
	memSyms    map[string]uint32
	globalSyms map[string]uint32
}

func newModuleBuilder() *moduleBuilder {
	return &moduleBuilder{
		mod:        &wasm.Module{},
		typeSyms:   map[string]uint32{},
		funcSyms:   map[string]uint32{},
		tableSyms:  map[string]uint32{},
		memSyms:    map[string]uint32{},
		globalSyms: map[string]uint32{},
	}
}

// bind records symbol's unique index in space's symbol table, reporting
// false instead of overwriting when symbol is already bound there — two
// declarations in the same index space must not share an identifier.
func (mb *moduleBuilder) bind(space wasm.IndexSpaceKind, symbol string, unique uint32) bool {
	if symbol == "" {
		return true
	}
	var m map[string]uint32
	switch space {
	case wasm.IndexSpaceType:
		m = mb.typeSyms
	case wasm.IndexSpaceFunction:
		m = mb.funcSyms
	case wasm.IndexSpaceTable:
		m = mb.tableSyms
	case wasm.IndexSpaceMemory:
		m = mb.memSyms
	case wasm.IndexSpaceGlobal:
		m = mb.globalSyms
	default:
		return true
	}
	if _, exists := m[symbol]; exists {
		return false
	}
	m[symbol] = unique
	return true
}

// resolveOrInsertType canonicalizes ft against existing (type ...)
// definitions, appending a fresh anonymous one if no equal shape exists —
// the automatic type insertion abbreviation.
func (mb *moduleBuilder) resolveOrInsertType(ft wasm.FunctionType) wasm.Index {
	for i := range mb.mod.Types {
		if mb.mod.Types[i].Type.Equals(&ft) {
			return wasm.NewNumericIndex(wasm.IndexSpaceType, uint32(i))
		}
	}
	n := mb.counts.next(wasm.IndexSpaceType)
	mb.mod.Types = append(mb.mod.Types, wasm.TypeDefinition{Type: ft})
	return wasm.NewNumericIndex(wasm.IndexSpaceType, n)
}

// DecodeModule lexes and parses source into a fully index-resolved
// wasm.Module.
func DecodeModule(name string, source []byte) (*wasm.Module, error) {
	return DecodeModuleWithLogger(name, source, logging.Nop())
}

// DecodeModuleWithLogger is DecodeModule, reporting token recognition at
// logging.ScopeLexer and module-field dispatch at logging.ScopeParser on
// log.
func DecodeModuleWithLogger(name string, source []byte, log *logging.Logger) (*wasm.Module, error) {
	return DecodeModuleWithOptions(name, source, log, wasm.FeatureAll)
}

// DecodeModuleWithOptions is DecodeModule, additionally reporting per-stage
// debug events on log and restricting the accepted instruction set to
// features (RuntimeConfig's WithLogger and WithFeatures).
func DecodeModuleWithOptions(name string, source []byte, log *logging.Logger, features wasm.Features) (*wasm.Module, error) {
	if log == nil {
		log = logging.Nop()
	}
	toks, err := token.NewLexer(name, source).WithLogger(log).Tokenize()
	if err != nil {
		return nil, err
	}
	p := newParser(name, toks)
	p.log = log
	p.features = features

	if err := p.expectOpen(); err != nil {
		return nil, err
	}
	if err := p.expectKeyword("module"); err != nil {
		return nil, err
	}
	mb := newModuleBuilder()
	if id := p.tryIdentifier(); id != nil {
		mb.mod.Name = *id
	}

	for !p.atClose() {
		if err := p.parseModuleField(mb); err != nil {
			return nil, err
		}
	}
	if err := p.expectClose(); err != nil {
		return nil, err
	}
	if !p.atEOF() {
		return nil, p.fail(token.UnexpectedToken, "unexpected content after module")
	}

	if err := mb.mod.Validate(); err != nil {
		return nil, p.fail(token.DuplicateDeclaration, "%s", err)
	}
	if err := resolveModule(p, mb); err != nil {
		return nil, err
	}
	return mb.mod, nil
}

func (p *parser) parseModuleField(mb *moduleBuilder) error {
	if err := p.expectOpen(); err != nil {
		return err
	}
	kw, ok := p.anyKeyword()
	if !ok {
		return p.fail(token.UnexpectedToken, "expected a module field")
	}
	p.log.Debug(logging.ScopeParser, "module field dispatch", zap.String("field", kw))
	switch kw {
	case "type":
		return p.parseTypeField(mb)
	case "import":
		return p.parseImportField(mb)
	case "func":
		return p.parseFuncField(mb)
	case "table":
		return p.parseTableField(mb)
	case "memory":
		return p.parseMemoryField(mb)
	case "global":
		return p.parseGlobalField(mb)
	case "export":
		return p.parseExportField(mb)
	case "start":
		return p.parseStartField(mb)
	case "elem":
		return p.parseElemField(mb)
	case "data":
		return p.parseDataField(mb)
	}
	return p.fail(token.UnknownKeyword, "unknown module field %q", kw)
}

func (p *parser) parseTypeField(mb *moduleBuilder) error {
	var id *string
	if v := p.tryIdentifier(); v != nil {
		id = v
	}
	if err := p.expectOpen(); err != nil {
		return err
	}
	if err := p.expectKeyword("func"); err != nil {
		return err
	}
	params, results, err := p.parseParamsAndResults()
	if err != nil {
		return err
	}
	if err := p.expectClose(); err != nil {
		return err
	}
	n := mb.counts.next(wasm.IndexSpaceType)
	var identifier *wasm.Identifier
	if id != nil {
		identifier = wasm.NewSymbolicIdentifier(wasm.IndexSpaceType, *id).WithUnique(n)
		if !mb.bind(wasm.IndexSpaceType, *id, n) {
			return p.fail(token.DuplicateDeclaration, "duplicate type identifier %q", *id)
		}
	}
	mb.mod.Types = append(mb.mod.Types, wasm.TypeDefinition{Id: identifier, Type: wasm.FunctionType{Params: params, Results: results}})
	return p.expectClose()
}

// parseImportField parses an explicit "(import "m" "n" <desc>)" field.
func (p *parser) parseImportField(mb *moduleBuilder) error {
	mod, err := p.expectString()
	if err != nil {
		return err
	}
	name, err := p.expectString()
	if err != nil {
		return err
	}
	imp, err := p.parseImportDesc(mb, mod, name)
	if err != nil {
		return err
	}
	mb.mod.Imports = append(mb.mod.Imports, imp)
	return p.expectClose()
}

// parseImportDesc parses the "(func ...)"/"(table ...)"/"(memory
// ...)"/"(global ...)" description inside an import, binding its
// identifier (if any) to the next unique in the matching space.
func (p *parser) parseImportDesc(mb *moduleBuilder, mod, name string) (wasm.Import, error) {
	if err := p.expectOpen(); err != nil {
		return wasm.Import{}, err
	}
	kw, ok := p.anyKeyword()
	if !ok {
		return wasm.Import{}, p.fail(token.UnexpectedToken, "expected an import description")
	}
	id := p.tryIdentifier()

	var desc wasm.ImportDesc
	var space wasm.IndexSpaceKind
	switch kw {
	case "func":
		tu, err := p.parseTypeUse(mb)
		if err != nil {
			return wasm.Import{}, err
		}
		desc = wasm.ImportDesc{Kind: wasm.ImportDescFunc, FuncType: tu}
		space = wasm.IndexSpaceFunction
	case "table":
		tt, err := p.parseTableType()
		if err != nil {
			return wasm.Import{}, err
		}
		desc = wasm.ImportDesc{Kind: wasm.ImportDescTable, Table: tt}
		space = wasm.IndexSpaceTable
	case "memory":
		mt, err := p.parseMemoryType()
		if err != nil {
			return wasm.Import{}, err
		}
		desc = wasm.ImportDesc{Kind: wasm.ImportDescMemory, Memory: mt}
		space = wasm.IndexSpaceMemory
	case "global":
		gt, err := p.parseGlobalType()
		if err != nil {
			return wasm.Import{}, err
		}
		desc = wasm.ImportDesc{Kind: wasm.ImportDescGlobal, Global: gt}
		space = wasm.IndexSpaceGlobal
	default:
		return wasm.Import{}, p.fail(token.UnknownKeyword, "unknown import description %q", kw)
	}
	if err := p.expectClose(); err != nil {
		return wasm.Import{}, err
	}

	n := mb.counts.next(space)
	var identifier *wasm.Identifier
	if id != nil {
		identifier = wasm.NewSymbolicIdentifier(space, *id).WithUnique(n)
		if !mb.bind(space, *id, n) {
			return wasm.Import{}, p.fail(token.DuplicateDeclaration, "duplicate identifier %q", *id)
		}
	}
	return wasm.Import{Module: mod, Name: name, Id: identifier, Desc: desc}, nil
}

// inlineExports parses zero or more leading "(export "name")" abbreviations
// attached to a definition, returning the names to later bind to the
// definition's assigned index.
func (p *parser) inlineExports() []string {
	var names []string
	for p.atOpen() && p.peekKeywordAt(1, "export") {
		p.advance()
		p.advance()
		if name, err := p.expectString(); err == nil {
			names = append(names, name)
		}
		p.expectClose()
	}
	return names
}

// inlineImport parses a leading "(import "m" "n")" abbreviation, if
// present.
func (p *parser) inlineImport() (mod, name string, ok bool) {
	if p.atOpen() && p.peekKeywordAt(1, "import") {
		p.advance()
		p.advance()
		m, _ := p.expectString()
		n, _ := p.expectString()
		p.expectClose()
		return m, n, true
	}
	return "", "", false
}

func (p *parser) addExports(mb *moduleBuilder, names []string, kind api.ExternType, idx wasm.Index) {
	for _, name := range names {
		mb.mod.Exports = append(mb.mod.Exports, wasm.Export{Name: name, Desc: wasm.ExportDesc{Type: kind, Index: idx}})
	}
}

func (p *parser) parseFuncField(mb *moduleBuilder) error {
	id := p.tryIdentifier()
	names := p.inlineExports()
	if mod, name, ok := p.inlineImport(); ok {
		tu, err := p.parseTypeUse(mb)
		if err != nil {
			return err
		}
		n := mb.counts.next(wasm.IndexSpaceFunction)
		var identifier *wasm.Identifier
		if id != nil {
			identifier = wasm.NewSymbolicIdentifier(wasm.IndexSpaceFunction, *id).WithUnique(n)
			if !mb.bind(wasm.IndexSpaceFunction, *id, n) {
				return p.fail(token.DuplicateDeclaration, "duplicate function identifier %q", *id)
			}
		}
		mb.mod.Imports = append(mb.mod.Imports, wasm.Import{Module: mod, Name: name, Id: identifier, Desc: wasm.ImportDesc{Kind: wasm.ImportDescFunc, FuncType: tu}})
		p.addExports(mb, names, api.ExternTypeFunc, wasm.NewNumericIndex(wasm.IndexSpaceFunction, n))
		return p.expectClose()
	}

	tu, err := p.parseTypeUse(mb)
	if err != nil {
		return err
	}

	fc := &funcCtx{mb: mb, locals: map[string]uint32{}}
	var localIdx uint32
	if tu.Inline != nil {
		for _, prm := range tu.Inline.Params {
			if prm.Id != nil && prm.Id.Symbol != "" {
				fc.locals[prm.Id.Symbol] = localIdx
			}
			localIdx++
		}
	} else if resolved, ok := mb.typeByIndex(tu.Type); ok {
		localIdx = uint32(len(resolved.Params))
	}

	var locals []wasm.Param
	for p.atOpen() && p.peekKeywordAt(1, "local") {
		p.advance()
		p.advance()
		if lid := p.tryIdentifier(); lid != nil {
			vt, err := p.parseValueType()
			if err != nil {
				return err
			}
			fc.locals[*lid] = localIdx
			locals = append(locals, wasm.Param{Id: wasm.NewSymbolicIdentifier(wasm.IndexSpaceLocal, *lid), Type: vt})
			localIdx++
		} else {
			for !p.atClose() {
				vt, err := p.parseValueType()
				if err != nil {
					return err
				}
				locals = append(locals, wasm.Param{Type: vt})
				localIdx++
			}
		}
		if err := p.expectClose(); err != nil {
			return err
		}
	}

	body, err := p.parseInstrList(fc)
	if err != nil {
		return err
	}

	n := mb.counts.next(wasm.IndexSpaceFunction)
	var identifier *wasm.Identifier
	if id != nil {
		identifier = wasm.NewSymbolicIdentifier(wasm.IndexSpaceFunction, *id).WithUnique(n)
		if !mb.bind(wasm.IndexSpaceFunction, *id, n) {
			return p.fail(token.DuplicateDeclaration, "duplicate function identifier %q", *id)
		}
	}
	mb.mod.Functions = append(mb.mod.Functions, wasm.Function{Id: identifier, TypeUse: tu, Locals: locals, Body: body})
	p.addExports(mb, names, api.ExternTypeFunc, wasm.NewNumericIndex(wasm.IndexSpaceFunction, n))
	return p.expectClose()
}

func (mb *moduleBuilder) typeByIndex(idx wasm.Index) (*wasm.FunctionType, bool) {
	if idx.Kind != wasm.IndexByInt || int(idx.Numeric) >= len(mb.mod.Types) {
		return nil, false
	}
	return &mb.mod.Types[idx.Numeric].Type, true
}

func (p *parser) parseTableField(mb *moduleBuilder) error {
	id := p.tryIdentifier()
	names := p.inlineExports()
	if mod, name, ok := p.inlineImport(); ok {
		tt, err := p.parseTableType()
		if err != nil {
			return err
		}
		n := mb.counts.next(wasm.IndexSpaceTable)
		var identifier *wasm.Identifier
		if id != nil {
			identifier = wasm.NewSymbolicIdentifier(wasm.IndexSpaceTable, *id).WithUnique(n)
			if !mb.bind(wasm.IndexSpaceTable, *id, n) {
				return p.fail(token.DuplicateDeclaration, "duplicate table identifier %q", *id)
			}
		}
		mb.mod.Imports = append(mb.mod.Imports, wasm.Import{Module: mod, Name: name, Id: identifier, Desc: wasm.ImportDesc{Kind: wasm.ImportDescTable, Table: tt}})
		p.addExports(mb, names, api.ExternTypeTable, wasm.NewNumericIndex(wasm.IndexSpaceTable, n))
		return p.expectClose()
	}
	tt, err := p.parseTableType()
	if err != nil {
		return err
	}
	n := mb.counts.next(wasm.IndexSpaceTable)
	var identifier *wasm.Identifier
	if id != nil {
		identifier = wasm.NewSymbolicIdentifier(wasm.IndexSpaceTable, *id).WithUnique(n)
		if !mb.bind(wasm.IndexSpaceTable, *id, n) {
			return p.fail(token.DuplicateDeclaration, "duplicate table identifier %q", *id)
		}
	}
	mb.mod.Tables = append(mb.mod.Tables, wasm.Table{Id: identifier, Type: tt})
	p.addExports(mb, names, api.ExternTypeTable, wasm.NewNumericIndex(wasm.IndexSpaceTable, n))
	return p.expectClose()
}

func (p *parser) parseMemoryField(mb *moduleBuilder) error {
	id := p.tryIdentifier()
	names := p.inlineExports()
	if mod, name, ok := p.inlineImport(); ok {
		mt, err := p.parseMemoryType()
		if err != nil {
			return err
		}
		n := mb.counts.next(wasm.IndexSpaceMemory)
		var identifier *wasm.Identifier
		if id != nil {
			identifier = wasm.NewSymbolicIdentifier(wasm.IndexSpaceMemory, *id).WithUnique(n)
			if !mb.bind(wasm.IndexSpaceMemory, *id, n) {
				return p.fail(token.DuplicateDeclaration, "duplicate memory identifier %q", *id)
			}
		}
		mb.mod.Imports = append(mb.mod.Imports, wasm.Import{Module: mod, Name: name, Id: identifier, Desc: wasm.ImportDesc{Kind: wasm.ImportDescMemory, Memory: mt}})
		p.addExports(mb, names, api.ExternTypeMemory, wasm.NewNumericIndex(wasm.IndexSpaceMemory, n))
		return p.expectClose()
	}
	mt, err := p.parseMemoryType()
	if err != nil {
		return err
	}
	n := mb.counts.next(wasm.IndexSpaceMemory)
	var identifier *wasm.Identifier
	if id != nil {
		identifier = wasm.NewSymbolicIdentifier(wasm.IndexSpaceMemory, *id).WithUnique(n)
		if !mb.bind(wasm.IndexSpaceMemory, *id, n) {
			return p.fail(token.DuplicateDeclaration, "duplicate memory identifier %q", *id)
		}
	}
	mb.mod.Memories = append(mb.mod.Memories, wasm.Memory{Id: identifier, Type: mt})
	p.addExports(mb, names, api.ExternTypeMemory, wasm.NewNumericIndex(wasm.IndexSpaceMemory, n))
	return p.expectClose()
}

func (p *parser) parseGlobalField(mb *moduleBuilder) error {
	id := p.tryIdentifier()
	names := p.inlineExports()
	if mod, name, ok := p.inlineImport(); ok {
		gt, err := p.parseGlobalType()
		if err != nil {
			return err
		}
		n := mb.counts.next(wasm.IndexSpaceGlobal)
		var identifier *wasm.Identifier
		if id != nil {
			identifier = wasm.NewSymbolicIdentifier(wasm.IndexSpaceGlobal, *id).WithUnique(n)
			if !mb.bind(wasm.IndexSpaceGlobal, *id, n) {
				return p.fail(token.DuplicateDeclaration, "duplicate global identifier %q", *id)
			}
		}
		mb.mod.Imports = append(mb.mod.Imports, wasm.Import{Module: mod, Name: name, Id: identifier, Desc: wasm.ImportDesc{Kind: wasm.ImportDescGlobal, Global: gt}})
		p.addExports(mb, names, api.ExternTypeGlobal, wasm.NewNumericIndex(wasm.IndexSpaceGlobal, n))
		return p.expectClose()
	}
	gt, err := p.parseGlobalType()
	if err != nil {
		return err
	}
	fc := &funcCtx{mb: mb, locals: map[string]uint32{}}
	init, err := p.parseInstrList(fc)
	if err != nil {
		return err
	}
	n := mb.counts.next(wasm.IndexSpaceGlobal)
	var identifier *wasm.Identifier
	if id != nil {
		identifier = wasm.NewSymbolicIdentifier(wasm.IndexSpaceGlobal, *id).WithUnique(n)
		if !mb.bind(wasm.IndexSpaceGlobal, *id, n) {
			return p.fail(token.DuplicateDeclaration, "duplicate global identifier %q", *id)
		}
	}
	mb.mod.Globals = append(mb.mod.Globals, wasm.Global{Id: identifier, Type: gt, Init: init})
	p.addExports(mb, names, api.ExternTypeGlobal, wasm.NewNumericIndex(wasm.IndexSpaceGlobal, n))
	return p.expectClose()
}

func (p *parser) parseExportField(mb *moduleBuilder) error {
	name, err := p.expectString()
	if err != nil {
		return err
	}
	if err := p.expectOpen(); err != nil {
		return err
	}
	kw, ok := p.anyKeyword()
	if !ok {
		return p.fail(token.UnexpectedToken, "expected an export description")
	}
	var space wasm.IndexSpaceKind
	var externType api.ExternType
	switch kw {
	case "func":
		space, externType = wasm.IndexSpaceFunction, api.ExternTypeFunc
	case "table":
		space, externType = wasm.IndexSpaceTable, api.ExternTypeTable
	case "memory":
		space, externType = wasm.IndexSpaceMemory, api.ExternTypeMemory
	case "global":
		space, externType = wasm.IndexSpaceGlobal, api.ExternTypeGlobal
	default:
		return p.fail(token.UnknownKeyword, "unknown export description %q", kw)
	}
	idx, err := p.parseIndex(space)
	if err != nil {
		return err
	}
	if err := p.expectClose(); err != nil {
		return err
	}
	mb.mod.Exports = append(mb.mod.Exports, wasm.Export{Name: name, Desc: wasm.ExportDesc{Type: externType, Index: idx}})
	return p.expectClose()
}

func (p *parser) parseStartField(mb *moduleBuilder) error {
	idx, err := p.parseIndex(wasm.IndexSpaceFunction)
	if err != nil {
		return err
	}
	if mb.mod.Start != nil {
		return p.fail(token.DuplicateDeclaration, "at most one start function is allowed")
	}
	mb.mod.Start = &idx
	return p.expectClose()
}

func (p *parser) parseElemField(mb *moduleBuilder) error {
	tableIdx := wasm.NewNumericIndex(wasm.IndexSpaceTable, 0)
	if p.atOpen() && p.peekKeywordAt(1, "table") {
		p.advance()
		p.advance()
		var err error
		tableIdx, err = p.parseIndex(wasm.IndexSpaceTable)
		if err != nil {
			return err
		}
		if err := p.expectClose(); err != nil {
			return err
		}
	}
	fc := &funcCtx{mb: mb, locals: map[string]uint32{}}
	offset, err := p.parseOffsetExpr(fc)
	if err != nil {
		return err
	}
	var funcs []wasm.Index
	for !p.atClose() {
		idx, err := p.parseIndex(wasm.IndexSpaceFunction)
		if err != nil {
			return err
		}
		funcs = append(funcs, idx)
	}
	mb.mod.Elements = append(mb.mod.Elements, wasm.ElementSegment{TableIndex: tableIdx, Offset: offset, FuncIndices: funcs})
	return p.expectClose()
}

func (p *parser) parseDataField(mb *moduleBuilder) error {
	memIdx := wasm.NewNumericIndex(wasm.IndexSpaceMemory, 0)
	if p.atOpen() && p.peekKeywordAt(1, "memory") {
		p.advance()
		p.advance()
		var err error
		memIdx, err = p.parseIndex(wasm.IndexSpaceMemory)
		if err != nil {
			return err
		}
		if err := p.expectClose(); err != nil {
			return err
		}
	}
	fc := &funcCtx{mb: mb, locals: map[string]uint32{}}
	offset, err := p.parseOffsetExpr(fc)
	if err != nil {
		return err
	}
	var data []byte
	for {
		t, ok := p.cur()
		if !ok || t.Kind != token.String {
			break
		}
		p.advance()
		data = append(data, []byte(t.String)...)
	}
	mb.mod.Data = append(mb.mod.Data, wasm.DataSegment{MemoryIndex: memIdx, Offset: offset, Init: data})
	return p.expectClose()
}

// parseOffsetExpr parses the "(offset <expr>)" field, or its abbreviated
// bare-folded-instruction form.
func (p *parser) parseOffsetExpr(fc *funcCtx) ([]wasm.Instruction, error) {
	if p.atOpen() && p.peekKeywordAt(1, "offset") {
		p.advance()
		p.advance()
		instrs, err := p.parseInstrList(fc)
		if err != nil {
			return nil, err
		}
		if err := p.expectClose(); err != nil {
			return nil, err
		}
		return instrs, nil
	}
	return p.parseFoldedInstr(fc)
}
