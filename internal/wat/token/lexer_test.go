package token

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// exampleWat exercises nested comments, unicode text, identifiers, and a
// mix of integer/float literals across a realistic module body.
const exampleWat = `(module
  ;; 私たちはフィボナッチ数列を使います。
  (memory $m 1 2)
  (func $add (export "add") (param i32 i32) (result i32)
    local.get 0
    local.get 1
    i32.add)
  (; a (; nested ;) block comment ;)
  (data (i32.const 0) "0000")
)`

func TestLexer_Example(t *testing.T) {
	toks, err := NewLexer("test.wat", []byte(exampleWat)).Tokenize()
	require.NoError(t, err)
	require.NotEmpty(t, toks)
	require.Equal(t, ParenOpen, toks[0].Kind)
	require.Equal(t, Keyword, toks[1].Kind)
	require.Equal(t, "module", toks[1].Sequence)

	var sawIdentifier, sawString bool
	for _, tk := range toks {
		if tk.Kind == Identifier && tk.Sequence == "$m" {
			sawIdentifier = true
		}
		if tk.Kind == String && tk.String == "0000" {
			sawString = true
		}
	}
	require.True(t, sawIdentifier)
	require.True(t, sawString)
}

func TestLexer_NestedBlockComment(t *testing.T) {
	toks, err := NewLexer("t", []byte("(; outer (; inner ;) still outer ;) (module)")).Tokenize()
	require.NoError(t, err)
	require.Len(t, toks, 3) // ( module )
	require.Equal(t, "module", toks[1].Sequence)
}

func TestLexer_UnterminatedBlockComment(t *testing.T) {
	_, err := NewLexer("t", []byte("(; never closed")).Tokenize()
	require.Error(t, err)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	require.Equal(t, Tokenization, pe.Kind)
}

func TestLexer_LineComment(t *testing.T) {
	toks, err := NewLexer("t", []byte(";; comment\n(module)")).Tokenize()
	require.NoError(t, err)
	require.Len(t, toks, 3)
}

func TestLexer_LongestMatch(t *testing.T) {
	// "i32.const" must lex as one keyword, not "i32", ".", "const".
	toks, err := NewLexer("t", []byte("i32.const")).Tokenize()
	require.NoError(t, err)
	require.Len(t, toks, 1)
	require.Equal(t, Keyword, toks[0].Kind)
	require.Equal(t, "i32.const", toks[0].Sequence)
}

func TestLexer_CommentInvariance(t *testing.T) {
	withComment, err := NewLexer("t", []byte("(module ;; comment\n (memory 1))")).Tokenize()
	require.NoError(t, err)
	withoutComment, err := NewLexer("t", []byte("(module \n (memory 1))")).Tokenize()
	require.NoError(t, err)
	require.Equal(t, len(withoutComment), len(withComment))
	for i := range withComment {
		require.Equal(t, withoutComment[i].Kind, withComment[i].Kind)
		require.Equal(t, withoutComment[i].Sequence, withComment[i].Sequence)
	}
}

func TestLexer_Identifiers(t *testing.T) {
	toks, err := NewLexer("t", []byte("$foo $a.b-c!")).Tokenize()
	require.NoError(t, err)
	require.Len(t, toks, 2)
	require.Equal(t, "foo", toks[0].String)
	require.Equal(t, "a.b-c!", toks[1].String)
}

func TestLexer_EmptyIdentifierIsFatal(t *testing.T) {
	_, err := NewLexer("t", []byte("$ ")).Tokenize()
	require.Error(t, err)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	require.Equal(t, InvalidIdentifier, pe.Kind)
}

func TestLexer_Reserved(t *testing.T) {
	toks, err := NewLexer("t", []byte("#garbage~")).Tokenize()
	require.NoError(t, err)
	require.Len(t, toks, 1)
	require.Equal(t, Reserved, toks[0].Kind)
}

func TestLexer_StringEscapes(t *testing.T) {
	toks, err := NewLexer("t", []byte(`"a\nb\t\"\5c"`)).Tokenize()
	require.NoError(t, err)
	require.Len(t, toks, 1)
	require.Equal(t, "a\nb\t\"\\", toks[0].String)
}

func TestLexer_UnterminatedString(t *testing.T) {
	_, err := NewLexer("t", []byte(`"unterminated`)).Tokenize()
	require.Error(t, err)
}

func TestLexer_Paren(t *testing.T) {
	toks, err := NewLexer("t", []byte("()")).Tokenize()
	require.NoError(t, err)
	require.Len(t, toks, 2)
	require.Equal(t, ParenOpen, toks[0].Kind)
	require.Equal(t, ParenClose, toks[1].Kind)
}
