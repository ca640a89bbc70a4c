package wat

import (
	"strconv"
	"strings"

	"github.com/go-wat/wat/internal/wasm"
	"github.com/go-wat/wat/internal/wat/token"
)

// funcCtx carries the per-function state instruction parsing needs beyond
// the module-wide symbol tables: the local index space (params + declared
// locals, known in full before any instruction is parsed) and the
// lexically-scoped label stack used to resolve br/br_if/br_table targets
// to a relative nesting depth as each block is opened.
type funcCtx struct {
	mb     *moduleBuilder
	locals map[string]uint32
	labels []*string // index len-1 is the innermost (current) block
}

func (fc *funcCtx) pushLabel(id *string) { fc.labels = append(fc.labels, id) }
func (fc *funcCtx) popLabel()            { fc.labels = fc.labels[:len(fc.labels)-1] }

func (p *parser) resolveLabelByName(fc *funcCtx, name string) (wasm.Index, error) {
	for i := len(fc.labels) - 1; i >= 0; i-- {
		if fc.labels[i] != nil && *fc.labels[i] == name {
			depth := uint32(len(fc.labels) - 1 - i)
			return wasm.NewNumericIndex(wasm.IndexSpaceLabel, depth), nil
		}
	}
	return wasm.Index{}, p.fail(token.UnexpectedToken, "undefined label $%s", name)
}

func (p *parser) parseLabelIndex(fc *funcCtx) (wasm.Index, error) {
	if id := p.tryIdentifier(); id != nil {
		return p.resolveLabelByName(fc, *id)
	}
	n, err := p.expectUnsigned32()
	if err != nil {
		return wasm.Index{}, err
	}
	return wasm.NewNumericIndex(wasm.IndexSpaceLabel, n), nil
}

func (p *parser) parseLocalIndex(fc *funcCtx) (wasm.Index, error) {
	if id := p.tryIdentifier(); id != nil {
		n, ok := fc.locals[*id]
		if !ok {
			return wasm.Index{}, p.fail(token.UnexpectedToken, "undefined local $%s", *id)
		}
		return wasm.NewNumericIndex(wasm.IndexSpaceLocal, n), nil
	}
	n, err := p.expectUnsigned32()
	if err != nil {
		return wasm.Index{}, err
	}
	return wasm.NewNumericIndex(wasm.IndexSpaceLocal, n), nil
}

// parseInstrList parses instructions until a close-paren or one of stop
// (unconsumed keywords belonging to the caller, e.g. "end"/"else").
func (p *parser) parseInstrList(fc *funcCtx, stop ...string) ([]wasm.Instruction, error) {
	var out []wasm.Instruction
	for {
		if p.atClose() {
			return out, nil
		}
		if t, ok := p.cur(); ok && t.Kind == token.Keyword {
			for _, s := range stop {
				if t.Sequence == s {
					return out, nil
				}
			}
		}
		if p.atOpen() {
			instrs, err := p.parseFoldedInstr(fc)
			if err != nil {
				return nil, err
			}
			out = append(out, instrs...)
			continue
		}
		instr, err := p.parsePlainInstr(fc)
		if err != nil {
			return nil, err
		}
		out = append(out, instr)
	}
}

// parsePlainInstr parses one non-parenthesized instruction, recursing for
// block/loop/if which consume up to their matching "end".
func (p *parser) parsePlainInstr(fc *funcCtx) (wasm.Instruction, error) {
	ctx := p.ctx()
	kw, ok := p.anyKeyword()
	if !ok {
		return wasm.Instruction{}, p.fail(token.UnexpectedToken, "expected an instruction keyword")
	}

	switch kw {
	case "block", "loop":
		return p.parsePlainBlockLike(fc, ctx, kw)
	case "if":
		return p.parsePlainIf(fc, ctx)
	}

	info, ok := opcodeTable[kw]
	if !ok || !p.featureEnabled(kw) {
		return wasm.Instruction{}, p.fail(token.UnknownKeyword, "unknown instruction %q", kw)
	}
	instr := wasm.Instruction{Kind: info.kind, Context: ctx}
	if err := p.parseImmediates(fc, info, &instr); err != nil {
		return wasm.Instruction{}, err
	}
	return instr, nil
}

// featureEnabled reports whether kw's instruction family (if it belongs to
// one gated by Features) is enabled on this parser; unfamiliar or
// unconditionally-available keywords always report true.
func (p *parser) featureEnabled(kw string) bool {
	need, gated := featureGate[kw]
	return !gated || p.features.Has(need)
}

func (p *parser) parseBlockType() (*string, *wasm.ValueType, error) {
	var label *string
	if id := p.tryIdentifier(); id != nil {
		label = id
	}
	var result *wasm.ValueType
	if p.atOpen() && p.peekKeywordAt(1, "result") {
		p.advance()
		p.advance()
		vt, err := p.parseValueType()
		if err != nil {
			return nil, nil, err
		}
		if err := p.expectClose(); err != nil {
			return nil, nil, err
		}
		result = &vt
	}
	return label, result, nil
}

func (p *parser) parsePlainBlockLike(fc *funcCtx, ctx token.Context, kw string) (wasm.Instruction, error) {
	label, result, err := p.parseBlockType()
	if err != nil {
		return wasm.Instruction{}, err
	}
	fc.pushLabel(label)
	body, err := p.parseInstrList(fc, "end")
	fc.popLabel()
	if err != nil {
		return wasm.Instruction{}, err
	}
	if err := p.expectKeyword("end"); err != nil {
		return wasm.Instruction{}, err
	}
	p.tryIdentifier() // optional matching end label, unchecked

	kind := wasm.OpBlock
	if kw == "loop" {
		kind = wasm.OpLoop
	}
	return wasm.Instruction{Kind: kind, Context: ctx, Block: &wasm.BlockType{Result: result}, Body: body}, nil
}

func (p *parser) parsePlainIf(fc *funcCtx, ctx token.Context) (wasm.Instruction, error) {
	label, result, err := p.parseBlockType()
	if err != nil {
		return wasm.Instruction{}, err
	}
	fc.pushLabel(label)
	thenBody, err := p.parseInstrList(fc, "else", "end")
	if err != nil {
		fc.popLabel()
		return wasm.Instruction{}, err
	}
	var elseBody []wasm.Instruction
	if p.tryKeyword("else") {
		p.tryIdentifier()
		elseBody, err = p.parseInstrList(fc, "end")
		if err != nil {
			fc.popLabel()
			return wasm.Instruction{}, err
		}
	}
	fc.popLabel()
	if err := p.expectKeyword("end"); err != nil {
		return wasm.Instruction{}, err
	}
	p.tryIdentifier()
	return wasm.Instruction{Kind: wasm.OpIf, Context: ctx, Block: &wasm.BlockType{Result: result}, Body: thenBody, Else: elseBody}, nil
}

// parseFoldedInstr parses a single parenthesized s-expression instruction
// (or block/loop/if) and returns it already flattened into post-order: any
// folded operands precede the operator itself.
func (p *parser) parseFoldedInstr(fc *funcCtx) ([]wasm.Instruction, error) {
	ctx := p.ctx()
	if err := p.expectOpen(); err != nil {
		return nil, err
	}
	kw, ok := p.anyKeyword()
	if !ok {
		return nil, p.fail(token.UnexpectedToken, "expected an instruction keyword")
	}

	switch kw {
	case "block", "loop":
		instr, err := p.parseFoldedBlockLike(fc, ctx, kw)
		if err != nil {
			return nil, err
		}
		return []wasm.Instruction{instr}, nil
	case "if":
		return p.parseFoldedIf(fc, ctx)
	}

	info, ok := opcodeTable[kw]
	if !ok || !p.featureEnabled(kw) {
		return nil, p.fail(token.UnknownKeyword, "unknown instruction %q", kw)
	}
	instr := wasm.Instruction{Kind: info.kind, Context: ctx}
	if err := p.parseImmediates(fc, info, &instr); err != nil {
		return nil, err
	}

	var operands []wasm.Instruction
	for p.atOpen() {
		sub, err := p.parseFoldedInstr(fc)
		if err != nil {
			return nil, err
		}
		operands = append(operands, sub...)
	}
	if err := p.expectClose(); err != nil {
		return nil, err
	}
	return append(operands, instr), nil
}

func (p *parser) parseFoldedBlockLike(fc *funcCtx, ctx token.Context, kw string) (wasm.Instruction, error) {
	label, result, err := p.parseBlockType()
	if err != nil {
		return wasm.Instruction{}, err
	}
	fc.pushLabel(label)
	body, err := p.parseInstrList(fc)
	fc.popLabel()
	if err != nil {
		return wasm.Instruction{}, err
	}
	if err := p.expectClose(); err != nil {
		return wasm.Instruction{}, err
	}
	kind := wasm.OpBlock
	if kw == "loop" {
		kind = wasm.OpLoop
	}
	return wasm.Instruction{Kind: kind, Context: ctx, Block: &wasm.BlockType{Result: result}, Body: body}, nil
}

// parseFoldedIf parses "(if label? blocktype cond* (then instr*) (else
// instr*)?)" — the condition operands precede the "then"/"else" clauses.
// It returns the condition operands followed by the if itself, so the
// condition runs outside the if's label, as in the unfolded form.
func (p *parser) parseFoldedIf(fc *funcCtx, ctx token.Context) ([]wasm.Instruction, error) {
	label, result, err := p.parseBlockType()
	if err != nil {
		return nil, err
	}

	var cond []wasm.Instruction
	for p.atOpen() && !p.peekKeywordAt(1, "then") {
		sub, err := p.parseFoldedInstr(fc)
		if err != nil {
			return nil, err
		}
		cond = append(cond, sub...)
	}

	fc.pushLabel(label)
	if err := p.expectOpen(); err != nil {
		fc.popLabel()
		return nil, err
	}
	if err := p.expectKeyword("then"); err != nil {
		fc.popLabel()
		return nil, err
	}
	thenBody, err := p.parseInstrList(fc)
	if err != nil {
		fc.popLabel()
		return nil, err
	}
	if err := p.expectClose(); err != nil {
		fc.popLabel()
		return nil, err
	}

	var elseBody []wasm.Instruction
	if p.atOpen() && p.peekKeywordAt(1, "else") {
		p.advance()
		p.advance()
		elseBody, err = p.parseInstrList(fc)
		if err != nil {
			fc.popLabel()
			return nil, err
		}
		if err := p.expectClose(); err != nil {
			fc.popLabel()
			return nil, err
		}
	}
	fc.popLabel()
	if err := p.expectClose(); err != nil {
		return nil, err
	}

	ifInstr := wasm.Instruction{Kind: wasm.OpIf, Context: ctx, Block: &wasm.BlockType{Result: result}, Body: thenBody, Else: elseBody}
	return append(cond, ifInstr), nil
}

// parseImmediates consumes whatever token-level immediates info.shape
// demands, mutating instr in place. Shared between plain and folded
// parsing since immediate syntax never differs between the two forms.
func (p *parser) parseImmediates(fc *funcCtx, info opcodeInfo, instr *wasm.Instruction) error {
	switch info.shape {
	case immNone:
		return nil
	case immMemArg:
		mem, err := p.parseMemArg(info.kind)
		if err != nil {
			return err
		}
		instr.Mem = mem
		return nil
	case immFuncIdx:
		idx, err := p.parseIndex(wasm.IndexSpaceFunction)
		if err != nil {
			return err
		}
		instr.Func = &idx
		return nil
	case immLabelIdx:
		idx, err := p.parseLabelIndex(fc)
		if err != nil {
			return err
		}
		instr.Label = &idx
		return nil
	case immLocalIdx:
		idx, err := p.parseLocalIndex(fc)
		if err != nil {
			return err
		}
		instr.Var = &idx
		return nil
	case immGlobalIdx:
		idx, err := p.parseIndex(wasm.IndexSpaceGlobal)
		if err != nil {
			return err
		}
		instr.Var = &idx
		return nil
	case immCallIndirect:
		tu, err := p.parseTypeUse(fc.mb)
		if err != nil {
			return err
		}
		instr.TypeUse = &tu
		return nil
	case immConstI32:
		t, ok := p.cur()
		if !ok || (t.Kind != token.SignedInteger && t.Kind != token.UnsignedInteger) {
			return p.fail(token.UnexpectedToken, "expected an i32 constant")
		}
		p.advance()
		if t.Kind == token.SignedInteger {
			rt, err := t.RetypeSigned(32)
			if err != nil {
				return err
			}
			instr.I32 = int32(rt.Signed)
		} else {
			rt, err := t.RetypeUnsigned(32)
			if err != nil {
				return err
			}
			instr.I32 = int32(uint32(rt.Unsigned))
		}
		return nil
	case immConstI64:
		t, ok := p.cur()
		if !ok || (t.Kind != token.SignedInteger && t.Kind != token.UnsignedInteger) {
			return p.fail(token.UnexpectedToken, "expected an i64 constant")
		}
		p.advance()
		if t.Kind == token.SignedInteger {
			instr.I64 = t.Signed
		} else {
			instr.I64 = int64(t.Unsigned)
		}
		return nil
	case immConstF32:
		t, ok := p.cur()
		if !ok || (t.Kind != token.Float && t.Kind != token.SignedInteger && t.Kind != token.UnsignedInteger) {
			return p.fail(token.UnexpectedToken, "expected an f32 constant")
		}
		p.advance()
		instr.F32 = float32(numericTokenAsFloat(t))
		return nil
	case immConstF64:
		t, ok := p.cur()
		if !ok || (t.Kind != token.Float && t.Kind != token.SignedInteger && t.Kind != token.UnsignedInteger) {
			return p.fail(token.UnexpectedToken, "expected an f64 constant")
		}
		p.advance()
		instr.F64 = numericTokenAsFloat(t)
		return nil
	case immBrTable:
		var targets []wasm.Index
		for {
			t, ok := p.cur()
			if !ok || (t.Kind != token.UnsignedInteger && t.Kind != token.SignedInteger && t.Kind != token.Identifier) {
				break
			}
			idx, err := p.parseLabelIndex(fc)
			if err != nil {
				return err
			}
			targets = append(targets, idx)
		}
		if len(targets) == 0 {
			return p.fail(token.UnexpectedToken, "br_table requires at least a default label")
		}
		instr.BrDefault = targets[len(targets)-1]
		instr.BrTargets = targets[:len(targets)-1]
		return nil
	}
	return nil
}

func numericTokenAsFloat(t token.Token) float64 {
	switch t.Kind {
	case token.Float:
		return t.Float
	case token.SignedInteger:
		return float64(t.Signed)
	default:
		return float64(t.Unsigned)
	}
}

// parseMemArg parses the optional "offset=N" and "align=N" attributes a
// memory instruction may carry, defaulting alignment to the operation's
// natural width when absent.
func (p *parser) parseMemArg(kind wasm.InstructionKind) (wasm.MemArg, error) {
	mem := wasm.MemArg{Align: naturalAlignLog2(kind)}
	for {
		t, ok := p.cur()
		if !ok || t.Kind != token.Keyword {
			break
		}
		if strings.HasPrefix(t.Sequence, "offset=") {
			n, err := strconv.ParseUint(t.Sequence[len("offset="):], 0, 32)
			if err != nil {
				return wasm.MemArg{}, p.fail(token.Tokenization, "invalid offset attribute %q", t.Sequence)
			}
			mem.Offset = uint32(n)
			p.advance()
			continue
		}
		if strings.HasPrefix(t.Sequence, "align=") {
			n, err := strconv.ParseUint(t.Sequence[len("align="):], 0, 32)
			if err != nil || n == 0 || n&(n-1) != 0 {
				return wasm.MemArg{}, p.fail(token.Tokenization, "align attribute must be a power of two: %q", t.Sequence)
			}
			mem.Align = uint32(bitsTrailingZeros32(uint32(n)))
			p.advance()
			continue
		}
		break
	}
	return mem, nil
}

func bitsTrailingZeros32(n uint32) int {
	count := 0
	for n&1 == 0 && n != 0 {
		n >>= 1
		count++
	}
	return count
}

func naturalAlignLog2(kind wasm.InstructionKind) uint32 {
	switch kind {
	case wasm.OpI32Load8S, wasm.OpI32Load8U, wasm.OpI64Load8S, wasm.OpI64Load8U,
		wasm.OpI32Store8, wasm.OpI64Store8:
		return 0
	case wasm.OpI32Load16S, wasm.OpI32Load16U, wasm.OpI64Load16S, wasm.OpI64Load16U,
		wasm.OpI32Store16, wasm.OpI64Store16:
		return 1
	case wasm.OpI32Load, wasm.OpF32Load, wasm.OpI32Store, wasm.OpF32Store,
		wasm.OpI64Load32S, wasm.OpI64Load32U, wasm.OpI64Store32:
		return 2
	case wasm.OpI64Load, wasm.OpF64Load, wasm.OpI64Store, wasm.OpF64Store:
		return 3
	}
	return 0
}
