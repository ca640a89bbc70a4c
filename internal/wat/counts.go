package wat

import "github.com/go-wat/wat/internal/wasm"

// TextModuleCounts tracks the running per-index-space counters the module
// parser uses to assign numeric uniques to anonymous declarations and to
// resolve inline-export indices as each field is recognized.
type TextModuleCounts struct {
	Types, Functions, Tables, Memories, Globals uint32
}

func (c *TextModuleCounts) next(space wasm.IndexSpaceKind) uint32 {
	switch space {
	case wasm.IndexSpaceType:
		v := c.Types
		c.Types++
		return v
	case wasm.IndexSpaceFunction:
		v := c.Functions
		c.Functions++
		return v
	case wasm.IndexSpaceTable:
		v := c.Tables
		c.Tables++
		return v
	case wasm.IndexSpaceMemory:
		v := c.Memories
		c.Memories++
		return v
	case wasm.IndexSpaceGlobal:
		v := c.Globals
		c.Globals++
		return v
	}
	panic("wat: next: unsupported index space")
}
