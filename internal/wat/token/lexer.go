package token

import (
	"strings"

	"go.uber.org/zap"

	"github.com/go-wat/wat/internal/logging"
)

// Lexer converts WAT source text into a token stream under the
// longest-match rule. Comments are stripped and produce no
// tokens; nested block comments are supported.
type Lexer struct {
	file string
	src  []byte
	pos  int
	line int
	col  int
	log  *logging.Logger
}

// NewLexer builds a Lexer over source, attributing diagnostics to file.
func NewLexer(file string, source []byte) *Lexer {
	return &Lexer{file: file, src: source, line: 1, col: 1, log: logging.Nop()}
}

// WithLogger reports every recognized token at logging.ScopeLexer.
func (l *Lexer) WithLogger(log *logging.Logger) *Lexer {
	if log != nil {
		l.log = log
	}
	return l
}

func (l *Lexer) context() Context {
	return Context{File: l.file, Line: l.line, Column: l.col}
}

func (l *Lexer) eof() bool { return l.pos >= len(l.src) }

func (l *Lexer) peek() byte {
	if l.eof() {
		return 0
	}
	return l.src[l.pos]
}

func (l *Lexer) peekAt(n int) byte {
	if l.pos+n >= len(l.src) {
		return 0
	}
	return l.src[l.pos+n]
}

func (l *Lexer) advance() byte {
	c := l.src[l.pos]
	l.pos++
	if c == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return c
}

// Tokenize lexes the full source into a token slice. Any lexing failure is
// fatal and returned immediately.
func (l *Lexer) Tokenize() ([]Token, error) {
	var toks []Token
	for {
		tok, err := l.Next()
		if err != nil {
			return nil, err
		}
		if tok == nil {
			break
		}
		toks = append(toks, *tok)
	}
	return toks, nil
}

// Next returns the next token, or (nil, nil) at end of input.
func (l *Lexer) Next() (*Token, error) {
	tok, err := l.next()
	if err != nil || tok == nil {
		return tok, err
	}
	l.log.Debug(logging.ScopeLexer, "token recognized",
		zap.Stringer("kind", tok.Kind), zap.String("text", tok.Sequence),
		zap.Int("line", tok.Context.Line), zap.Int("column", tok.Context.Column))
	return tok, nil
}

func (l *Lexer) next() (*Token, error) {
	if err := l.skipWhitespaceAndComments(); err != nil {
		return nil, err
	}
	if l.eof() {
		return nil, nil
	}

	ctx := l.context()
	c := l.peek()

	switch c {
	case '(':
		l.advance()
		return &Token{Kind: ParenOpen, Context: ctx, Sequence: "("}, nil
	case ')':
		l.advance()
		return &Token{Kind: ParenClose, Context: ctx, Sequence: ")"}, nil
	case '"':
		return l.scanString(ctx)
	}

	run := l.scanIdcharRun()
	if run == "" {
		return nil, NewParseError(ctx, Tokenization, "illegal character %q", string(c))
	}
	return l.classifyRun(run, ctx)
}

func (l *Lexer) classifyRun(run string, ctx Context) (*Token, error) {
	if tok, ok, err := ClassifyNumber(run, ctx); ok {
		if err != nil {
			return nil, err
		}
		return &tok, nil
	}

	if run[0] == '$' {
		if len(run) == 1 {
			return nil, NewParseError(ctx, InvalidIdentifier, "empty identifier")
		}
		return &Token{Kind: Identifier, Context: ctx, Sequence: run, String: run[1:]}, nil
	}

	if run[0] >= 'a' && run[0] <= 'z' {
		return &Token{Kind: Keyword, Context: ctx, Sequence: run, String: run}, nil
	}

	return &Token{Kind: Reserved, Context: ctx, Sequence: run, String: run}, nil
}

// isIdchar matches the WebAssembly text-format idchar class.
func isIdchar(c byte) bool {
	switch {
	case c >= '0' && c <= '9', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		return true
	}
	switch c {
	case '!', '#', '$', '%', '&', '\'', '*', '+', '-', '.', '/',
		':', '<', '=', '>', '?', '@', '\\', '^', '_', '`', '|', '~':
		return true
	}
	return false
}

func (l *Lexer) scanIdcharRun() string {
	start := l.pos
	for !l.eof() && isIdchar(l.peek()) {
		l.advance()
	}
	return string(l.src[start:l.pos])
}

func (l *Lexer) skipWhitespaceAndComments() error {
	for !l.eof() {
		c := l.peek()
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			l.advance()
			continue
		case c == ';' && l.peekAt(1) == ';':
			l.advance()
			l.advance()
			for !l.eof() && l.peek() != '\n' {
				l.advance()
			}
			continue
		case c == '(' && l.peekAt(1) == ';':
			if err := l.skipBlockComment(); err != nil {
				return err
			}
			continue
		}
		return nil
	}
	return nil
}

// skipBlockComment consumes a "(; ... ;)" comment, including nested ones.
// An unterminated block comment is fatal, with the diagnostic attributed
// to the outermost comment's start context.
func (l *Lexer) skipBlockComment() error {
	startCtx := l.context()
	l.advance() // '('
	l.advance() // ';'
	depth := 1
	for depth > 0 {
		if l.eof() {
			return NewParseError(startCtx, Tokenization, "unterminated block comment")
		}
		if l.peek() == '(' && l.peekAt(1) == ';' {
			l.advance()
			l.advance()
			depth++
			continue
		}
		if l.peek() == ';' && l.peekAt(1) == ')' {
			l.advance()
			l.advance()
			depth--
			continue
		}
		l.advance()
	}
	return nil
}

// scanString lexes a string literal, decoding escape sequences \n \r \t \"
// \\ \' and \xx (two hex digits), plus \u{XXXX} Unicode escapes as the
// core text format also defines.
func (l *Lexer) scanString(ctx Context) (*Token, error) {
	l.advance() // opening quote
	var b strings.Builder
	for {
		if l.eof() || l.peek() == '\n' {
			return nil, NewParseError(ctx, Tokenization, "unterminated string literal")
		}
		c := l.peek()
		if c == '"' {
			l.advance()
			return &Token{Kind: String, Context: ctx, Sequence: b.String(), String: b.String()}, nil
		}
		if c != '\\' {
			l.advance()
			b.WriteByte(c)
			continue
		}
		l.advance() // backslash
		if l.eof() {
			return nil, NewParseError(ctx, Tokenization, "unterminated string literal")
		}
		esc := l.advance()
		switch esc {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case '"':
			b.WriteByte('"')
		case '\'':
			b.WriteByte('\'')
		case '\\':
			b.WriteByte('\\')
		case 'u':
			if l.peek() != '{' {
				return nil, NewParseError(ctx, Tokenization, "invalid \\u escape in string literal")
			}
			l.advance()
			start := l.pos
			for !l.eof() && l.peek() != '}' {
				l.advance()
			}
			if l.eof() {
				return nil, NewParseError(ctx, Tokenization, "unterminated \\u escape in string literal")
			}
			hex := string(l.src[start:l.pos])
			l.advance() // '}'
			r, err := decodeHexRune(hex)
			if err != nil {
				return nil, NewParseError(ctx, Tokenization, "invalid \\u escape %q", hex)
			}
			b.WriteRune(r)
		default:
			if isHexDigit(rune(esc)) && isHexDigit(rune(l.peek())) {
				hi := hexValue(esc)
				lo := hexValue(l.advance())
				b.WriteByte(byte(hi<<4 | lo))
			} else {
				return nil, NewParseError(ctx, Tokenization, "invalid escape sequence \\%c", esc)
			}
		}
	}
}

func hexValue(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	}
	return 0
}

func decodeHexRune(hex string) (rune, error) {
	var v int64
	for i := 0; i < len(hex); i++ {
		if !isHexDigit(rune(hex[i])) {
			return 0, NewParseError(Context{}, Tokenization, "invalid hex digit")
		}
		v = v<<4 | int64(hexValue(hex[i]))
	}
	return rune(v), nil
}
