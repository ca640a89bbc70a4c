package wat

import (
	"github.com/go-wat/wat/api"
	"github.com/go-wat/wat/internal/wasm"
	"github.com/go-wat/wat/internal/wat/token"
)

func (p *parser) parseValueType() (wasm.ValueType, error) {
	kw, ok := p.anyKeyword()
	if !ok {
		return 0, p.fail(token.UnexpectedToken, "expected a value type")
	}
	switch kw {
	case "i32":
		return api.ValueTypeI32, nil
	case "i64":
		return api.ValueTypeI64, nil
	case "f32":
		return api.ValueTypeF32, nil
	case "f64":
		return api.ValueTypeF64, nil
	}
	return 0, p.fail(token.UnknownKeyword, "unknown value type %q", kw)
}

// parseParamsAndResults consumes zero or more "(param ...)" fields followed
// by zero or more "(result ...)" fields, in that order. Each (param $id t)
// with an identifier must declare exactly one value type.
func (p *parser) parseParamsAndResults() ([]wasm.Param, []wasm.Result, error) {
	var params []wasm.Param
	for p.atOpen() && p.peekKeywordAt(1, "param") {
		p.advance() // (
		p.advance() // param
		if id := p.tryIdentifier(); id != nil {
			vt, err := p.parseValueType()
			if err != nil {
				return nil, nil, err
			}
			params = append(params, wasm.Param{Id: wasm.NewSymbolicIdentifier(wasm.IndexSpaceLocal, *id), Type: vt})
		} else {
			for !p.atClose() {
				vt, err := p.parseValueType()
				if err != nil {
					return nil, nil, err
				}
				params = append(params, wasm.Param{Type: vt})
			}
		}
		if err := p.expectClose(); err != nil {
			return nil, nil, err
		}
	}

	var results []wasm.Result
	for p.atOpen() && p.peekKeywordAt(1, "result") {
		p.advance() // (
		p.advance() // result
		for !p.atClose() {
			vt, err := p.parseValueType()
			if err != nil {
				return nil, nil, err
			}
			results = append(results, wasm.Result{Type: vt})
		}
		if err := p.expectClose(); err != nil {
			return nil, nil, err
		}
	}
	return params, results, nil
}

func (p *parser) parseLimits() (wasm.Limits, error) {
	min, err := p.expectUnsigned32()
	if err != nil {
		return wasm.Limits{}, err
	}
	lim := wasm.Limits{Min: min}
	if t, ok := p.cur(); ok && (t.Kind == token.UnsignedInteger || t.Kind == token.SignedInteger) {
		max, err := p.expectUnsigned32()
		if err != nil {
			return wasm.Limits{}, err
		}
		lim.Max = &max
	}
	if err := lim.Validate(); err != nil {
		return wasm.Limits{}, p.fail(token.ValueOutOfRange, "%s", err)
	}
	return lim, nil
}

func (p *parser) parseMemoryType() (wasm.MemoryType, error) {
	lim, err := p.parseLimits()
	if err != nil {
		return wasm.MemoryType{}, err
	}
	return wasm.MemoryType{Limits: lim}, nil
}

func (p *parser) parseTableType() (wasm.TableType, error) {
	lim, err := p.parseLimits()
	if err != nil {
		return wasm.TableType{}, err
	}
	if err := p.expectKeyword("funcref"); err != nil {
		return wasm.TableType{}, err
	}
	return wasm.TableType{Limits: lim, Element: api.ElementTypeFuncref}, nil
}

func (p *parser) parseGlobalType() (wasm.GlobalType, error) {
	if p.tryOpen() {
		if err := p.expectKeyword("mut"); err != nil {
			return wasm.GlobalType{}, err
		}
		vt, err := p.parseValueType()
		if err != nil {
			return wasm.GlobalType{}, err
		}
		if err := p.expectClose(); err != nil {
			return wasm.GlobalType{}, err
		}
		return wasm.GlobalType{Valtype: vt, Mutable: true}, nil
	}
	vt, err := p.parseValueType()
	if err != nil {
		return wasm.GlobalType{}, err
	}
	return wasm.GlobalType{Valtype: vt, Mutable: false}, nil
}
