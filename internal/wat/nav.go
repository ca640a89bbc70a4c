package wat

import (
	"github.com/go-wat/wat/internal/logging"
	"github.com/go-wat/wat/internal/wasm"
	"github.com/go-wat/wat/internal/wat/token"
)

// parser walks a flat token slice with backtracking-free lookahead of a
// fixed number of tokens (peekKeywordAt); every production either consumes what it expects or raises a
// fatal *token.ParseError.
type parser struct {
	toks     []token.Token
	pos      int
	file     string
	log      *logging.Logger
	features wasm.Features
}

func newParser(file string, toks []token.Token) *parser {
	return &parser{toks: toks, file: file, log: logging.Nop(), features: wasm.FeatureAll}
}

func (p *parser) atEOF() bool { return p.pos >= len(p.toks) }

// ctx returns the Context to blame for an error at the current position,
// falling back to the last token's context when input is exhausted.
func (p *parser) ctx() token.Context {
	if p.atEOF() {
		if len(p.toks) == 0 {
			return token.Context{File: p.file, Line: 1, Column: 1}
		}
		return p.toks[len(p.toks)-1].Context
	}
	return p.toks[p.pos].Context
}

func (p *parser) cur() (token.Token, bool) {
	if p.atEOF() {
		return token.Token{}, false
	}
	return p.toks[p.pos], true
}

func (p *parser) advance() token.Token {
	t := p.toks[p.pos]
	p.pos++
	return t
}

func (p *parser) fail(kind token.Kind, format string, args ...interface{}) error {
	return token.NewParseError(p.ctx(), kind, format, args...)
}

func (p *parser) expectOpen() error {
	t, ok := p.cur()
	if !ok || t.Kind != token.ParenOpen {
		return p.fail(token.MissingPunctuation, "expected '('")
	}
	p.advance()
	return nil
}

func (p *parser) expectClose() error {
	t, ok := p.cur()
	if !ok || t.Kind != token.ParenClose {
		return p.fail(token.MissingPunctuation, "expected ')'")
	}
	p.advance()
	return nil
}

// atOpen reports whether the current token is '(' without consuming it.
func (p *parser) atOpen() bool {
	t, ok := p.cur()
	return ok && t.Kind == token.ParenOpen
}

func (p *parser) atClose() bool {
	t, ok := p.cur()
	return ok && t.Kind == token.ParenClose
}

// tryOpen consumes '(' if present, reporting whether it did.
func (p *parser) tryOpen() bool {
	if p.atOpen() {
		p.advance()
		return true
	}
	return false
}

// peekKeyword reports whether the current token is the keyword kw, without
// consuming it.
func (p *parser) peekKeyword(kw string) bool {
	t, ok := p.cur()
	return ok && t.Kind == token.Keyword && t.Sequence == kw
}

// peekKeywordAt reports whether the token n positions after the current one
// (0 = current) is the keyword kw.
func (p *parser) peekKeywordAt(n int, kw string) bool {
	i := p.pos + n
	if i < 0 || i >= len(p.toks) {
		return false
	}
	t := p.toks[i]
	return t.Kind == token.Keyword && t.Sequence == kw
}

// tryKeyword consumes the keyword kw if present.
func (p *parser) tryKeyword(kw string) bool {
	if p.peekKeyword(kw) {
		p.advance()
		return true
	}
	return false
}

func (p *parser) expectKeyword(kw string) error {
	if !p.tryKeyword(kw) {
		return p.fail(token.UnexpectedToken, "expected keyword %q", kw)
	}
	return nil
}

// anyKeyword returns the current keyword's text and consumes it, or ("",
// false) if the current token is not a keyword.
func (p *parser) anyKeyword() (string, bool) {
	t, ok := p.cur()
	if !ok || t.Kind != token.Keyword {
		return "", false
	}
	p.advance()
	return t.Sequence, true
}

// tryIdentifier consumes and returns an optional leading "$foo" identifier.
func (p *parser) tryIdentifier() *string {
	t, ok := p.cur()
	if !ok || t.Kind != token.Identifier {
		return nil
	}
	p.advance()
	s := t.String
	return &s
}

func (p *parser) expectString() (string, error) {
	t, ok := p.cur()
	if !ok || t.Kind != token.String {
		return "", p.fail(token.UnexpectedToken, "expected string literal")
	}
	p.advance()
	return t.String, nil
}

func (p *parser) expectUnsigned32() (uint32, error) {
	t, ok := p.cur()
	if !ok || (t.Kind != token.UnsignedInteger && t.Kind != token.SignedInteger) {
		return 0, p.fail(token.UnexpectedToken, "expected integer")
	}
	if t.Kind == token.SignedInteger {
		rt, err := t.RetypeSigned(32)
		if err != nil {
			return 0, err
		}
		p.advance()
		return uint32(rt.Signed), nil
	}
	rt, err := t.RetypeUnsigned(32)
	if err != nil {
		return 0, err
	}
	p.advance()
	return uint32(rt.Unsigned), nil
}
