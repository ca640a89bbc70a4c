// Package token defines the lexical tokens the lexer produces and the
// source-position bookkeeping (Context) every token and parse error
// carries forward.
package token

import "fmt"

// Context is a 1-based line/column position within one named source, the
// unit of diagnostic information this module attaches to every token and
// parse error.
type Context struct {
	File   string
	Line   int
	Column int
}

func (c Context) String() string {
	return fmt.Sprintf("%s:%d:%d", c.File, c.Line, c.Column)
}
