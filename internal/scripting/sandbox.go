// Package scripting provides a sandboxed GopherLua execution environment
// for scenario scripts that assemble roll expressions. Scripts see a
// "roll" module exposing the expression builders and a "dice" table of
// named dice; a script returns the expression whose distribution the
// caller wants.
package scripting

import (
	"context"
	"sync/atomic"

	lua "github.com/yuin/gopher-lua"
)

// DefaultInstructionLimit is the maximum number of Lua opcodes allowed per
// script execution when no override is configured. Scenario scripts only
// build expression trees, so the budget is generous.
const DefaultInstructionLimit = 100_000

// opcodeBudget is a context.Context that cancels itself after Done() has
// been called limit times. GopherLua's main loop calls Done() once per
// opcode, making this an exact, deterministic instruction-count limit.
type opcodeBudget struct {
	context.Context
	cancel    context.CancelFunc
	remaining *atomic.Int64
}

// Done returns the underlying cancellation channel. Each call decrements
// the remaining counter; at zero the cancel fires, terminating the Lua VM
// on the next opcode boundary.
func (b *opcodeBudget) Done() <-chan struct{} {
	if b.remaining.Add(-1) <= 0 {
		b.cancel()
	}
	return b.Context.Done()
}

// newOpcodeBudget returns a context that cancels after limit calls to
// Done().
//
// Precondition: limit > 0.
func newOpcodeBudget(limit int) context.Context {
	base, cancel := context.WithCancel(context.Background())
	rem := &atomic.Int64{}
	rem.Store(int64(limit))
	return &opcodeBudget{Context: base, cancel: cancel, remaining: rem}
}

// NewSandboxedState creates a GopherLua LState with:
//   - Only safe stdlib loaded: base, table, string, math
//   - Dangerous globals removed: dofile, loadfile, load, collectgarbage, require
//   - Execution limited to at most instLimit Lua opcodes
//
// Precondition: instLimit >= 0; 0 uses DefaultInstructionLimit.
// Postcondition: Returns a non-nil LState ready for module registration
// and DoFile. The caller owns the LState and must call L.Close() when
// done.
func NewSandboxedState(instLimit int) *lua.LState {
	limit := instLimit
	if limit <= 0 {
		limit = DefaultInstructionLimit
	}

	L := lua.NewState(lua.Options{SkipOpenLibs: true})

	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	for _, name := range []string{"dofile", "loadfile", "load", "collectgarbage", "require"} {
		L.SetGlobal(name, lua.LNil)
	}

	// The budget context cancels itself once the opcode limit is reached;
	// there is nothing for the caller to cancel earlier.
	L.SetContext(newOpcodeBudget(limit))

	return L
}
