package logging

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScope_IsEnabled(t *testing.T) {
	f := ScopeLexer | ScopeFlatten
	require.True(t, f.IsEnabled(ScopeLexer))
	require.True(t, f.IsEnabled(ScopeFlatten))
	require.False(t, f.IsEnabled(ScopeParser))
	require.False(t, f.IsEnabled(ScopeInterpreter))
}

func TestScope_String(t *testing.T) {
	tests := []struct {
		name     string
		scope    Scope
		expected string
	}{
		{name: "none", scope: ScopeNone, expected: ""},
		{name: "lexer", scope: ScopeLexer, expected: "lexer"},
		{name: "lexer|flatten", scope: ScopeLexer | ScopeFlatten, expected: "lexer|flatten"},
		{name: "all", scope: ScopeAll, expected: "all"},
		{name: "undefined", scope: 1, expected: fmt.Sprintf("<unknown=%d>", 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, tt.scope.String())
		})
	}
}

func TestNop_NeverEnabled(t *testing.T) {
	l := Nop()
	require.False(t, l.Enabled(ScopeAll))
	l.Debug(ScopeLexer, "should not panic or emit")
}

func TestNew_GatesByScope(t *testing.T) {
	l := New(nil, ScopeParser)
	require.True(t, l.Enabled(ScopeParser))
	require.False(t, l.Enabled(ScopeLexer))
}
