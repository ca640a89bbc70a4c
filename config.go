package wat

import (
	"go.uber.org/zap"

	"github.com/go-wat/wat/internal/interpreter"
	"github.com/go-wat/wat/internal/logging"
	"github.com/go-wat/wat/internal/wasm"
)

// RuntimeConfig controls Runtime behavior, with the default implementation
// as NewRuntimeConfig. Every With* method returns a modified clone, never
// mutating the receiver.
type RuntimeConfig struct {
	stackCapacity  int
	logCore        *zap.Logger
	logScopes      logging.Scope
	memoryMaxPages uint32
	features       wasm.Features
}

// NewRuntimeConfig returns the default RuntimeConfig: a 4096-deep stack,
// logging disabled, the implementation's default memory ceiling
// (internal/wasm.MemoryMaxPages), and every post-MVP instruction family
// enabled.
func NewRuntimeConfig() *RuntimeConfig {
	return &RuntimeConfig{stackCapacity: interpreter.DefaultStackCapacity, features: wasm.FeatureAll}
}

func (c *RuntimeConfig) clone() *RuntimeConfig {
	ret := *c
	return &ret
}

// WithStackCapacity bounds the operand, label, and call-depth stacks a
// Runtime's Engine enforces. Defaults to interpreter.DefaultStackCapacity.
func (c *RuntimeConfig) WithStackCapacity(n int) *RuntimeConfig {
	ret := c.clone()
	ret.stackCapacity = n
	return ret
}

// WithLogger enables Debug-level structured logging for the given scopes,
// emitted through core. Pass logging.ScopeAll to trace every pipeline
// stage, or e.g. logging.ScopeInterpreter to trace only execution.
func (c *RuntimeConfig) WithLogger(core *zap.Logger, scopes logging.Scope) *RuntimeConfig {
	ret := c.clone()
	ret.logCore = core
	ret.logScopes = scopes
	return ret
}

// WithMemoryMaxPages caps every memory a Runtime instantiates at n pages,
// tighter than a module's own declared max when n is smaller. n == 0
// restores the implementation default (internal/wasm.MemoryMaxPages).
func (c *RuntimeConfig) WithMemoryMaxPages(n uint32) *RuntimeConfig {
	ret := c.clone()
	ret.memoryMaxPages = n
	return ret
}

// WithFeatures restricts the parser to accept only the post-MVP
// instruction families set in f, e.g. wasm.FeatureNone for a strict MVP
// parse or wasm.FeatureSignExtension alone. Defaults to wasm.FeatureAll.
func (c *RuntimeConfig) WithFeatures(f wasm.Features) *RuntimeConfig {
	ret := c.clone()
	ret.features = f
	return ret
}

func (c *RuntimeConfig) logger() *logging.Logger {
	if c.logCore == nil {
		return logging.Nop()
	}
	return logging.New(c.logCore, c.logScopes)
}
