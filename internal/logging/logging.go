// Package logging provides scope-gated structured logging shared by the
// lexer, parser, flattener, and interpreter, built on zap (see DESIGN.md).
package logging

import (
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Scope identifies which pipeline stage an event came from, so a caller
// can enable tracing for, say, only the flattener without drowning in
// token-level noise.
type Scope uint32

const (
	ScopeNone Scope = 0
	ScopeLexer Scope = 1 << iota
	ScopeParser
	ScopeFlatten
	ScopeInterpreter
	ScopeAll = Scope(0xffffffff)
)

func scopeName(s Scope) string {
	switch s {
	case ScopeLexer:
		return "lexer"
	case ScopeParser:
		return "parser"
	case ScopeFlatten:
		return "flatten"
	case ScopeInterpreter:
		return "interpreter"
	default:
		return fmt.Sprintf("<unknown=%d>", s)
	}
}

// IsEnabled returns true if scope (or any scope in a group) is set.
func (f Scope) IsEnabled(scope Scope) bool { return f&scope != 0 }

// String implements fmt.Stringer by naming each enabled scope.
func (f Scope) String() string {
	if f == ScopeAll {
		return "all"
	}
	var b strings.Builder
	for i := 0; i <= 31; i++ {
		target := Scope(1 << i)
		if f.IsEnabled(target) {
			if b.Len() > 0 {
				b.WriteByte('|')
			}
			b.WriteString(scopeName(target))
		}
	}
	return b.String()
}

// Logger gates a zap.Logger by Scope. The zero value logs nothing: callers
// get a Logger from New or Nop rather than constructing one directly.
type Logger struct {
	core   *zap.Logger
	scopes Scope
}

var (
	nop     *Logger
	nopOnce sync.Once
)

// Nop returns a Logger with a no-op zap core and no scopes enabled, the
// default every RuntimeConfig starts from.
func Nop() *Logger {
	nopOnce.Do(func() {
		nop = &Logger{core: zap.NewNop(), scopes: ScopeNone}
	})
	return nop
}

// New wraps core, emitting only events whose scope is enabled in scopes.
func New(core *zap.Logger, scopes Scope) *Logger {
	if core == nil {
		core = zap.NewNop()
	}
	return &Logger{core: core, scopes: scopes}
}

// Enabled reports whether scope would produce output on this Logger.
func (l *Logger) Enabled(scope Scope) bool {
	return l != nil && l.scopes.IsEnabled(scope)
}

// Debug logs msg at Debug level if scope is enabled, tagging the event
// with its originating stage.
func (l *Logger) Debug(scope Scope, msg string, fields ...zap.Field) {
	if !l.Enabled(scope) {
		return
	}
	l.core.Debug(msg, append([]zap.Field{zap.Stringer("scope", scope)}, fields...)...)
}
