package tokens

import (
	"context"
	"fmt"
	"sync/atomic"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// DefaultInstructionLimit bounds the Lua opcodes a single resolve_token call
// may execute when no override is configured.
const DefaultInstructionLimit = 10_000

// resolveHook is the global Lua function a resolver script must define.
const resolveHook = "resolve_token"

// countingContext cancels itself after Done() has been called limit times.
// GopherLua calls Done() once per opcode, so this is an exact instruction
// budget.
type countingContext struct {
	context.Context
	cancel    context.CancelFunc
	remaining *atomic.Int64
}

func (c *countingContext) Done() <-chan struct{} {
	if c.remaining.Add(-1) <= 0 {
		c.cancel()
	}
	return c.Context.Done()
}

func newCountingContext(limit int) (context.Context, context.CancelFunc) {
	base, cancel := context.WithCancel(context.Background())
	rem := &atomic.Int64{}
	rem.Store(int64(limit))
	return &countingContext{Context: base, cancel: cancel, remaining: rem}, cancel
}

// newSandboxedState creates an LState with only the base, table, string and
// math libraries and with file loading globals removed.
func newSandboxedState() *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
	for _, name := range []string{"dofile", "loadfile", "load", "collectgarbage", "require"} {
		L.SetGlobal(name, lua.LNil)
	}
	return L
}

// LuaResolver resolves token references by calling resolve_token(ref) in a
// sandboxed Lua script. Game variants ship their own script instead of a
// compiled-in table.
//
// A LuaResolver is not safe for concurrent use.
type LuaResolver struct {
	L         *lua.LState
	instLimit int
	logger    *zap.Logger
}

// NewLuaResolverFromString loads a resolver script from source text.
//
// Precondition: logger must be non-nil; instLimit <= 0 selects DefaultInstructionLimit.
// Postcondition: returns a resolver whose script defines resolve_token, or an error.
// The caller must Close the resolver.
func NewLuaResolverFromString(src string, instLimit int, logger *zap.Logger) (*LuaResolver, error) {
	L := newSandboxedState()
	if err := L.DoString(src); err != nil {
		L.Close()
		return nil, fmt.Errorf("loading token script: %w", err)
	}
	return newLuaResolver(L, instLimit, logger)
}

// NewLuaResolverFromFile loads a resolver script from path.
//
// Precondition: logger must be non-nil; instLimit <= 0 selects DefaultInstructionLimit.
// Postcondition: returns a resolver whose script defines resolve_token, or an error.
// The caller must Close the resolver.
func NewLuaResolverFromFile(path string, instLimit int, logger *zap.Logger) (*LuaResolver, error) {
	L := newSandboxedState()
	if err := L.DoFile(path); err != nil {
		L.Close()
		return nil, fmt.Errorf("loading token script %s: %w", path, err)
	}
	return newLuaResolver(L, instLimit, logger)
}

func newLuaResolver(L *lua.LState, instLimit int, logger *zap.Logger) (*LuaResolver, error) {
	if L.GetGlobal(resolveHook).Type() != lua.LTFunction {
		L.Close()
		return nil, fmt.Errorf("token script does not define function %s", resolveHook)
	}
	if instLimit <= 0 {
		instLimit = DefaultInstructionLimit
	}
	return &LuaResolver{L: L, instLimit: instLimit, logger: logger}, nil
}

// Resolve calls resolve_token(ref) and case-folds the returned name like
// Literal does. A failed call (including an exhausted instruction budget)
// or a non-string result falls back to Literal(ref).
func (r *LuaResolver) Resolve(ref string) string {
	ctx, cancel := newCountingContext(r.instLimit)
	defer cancel()
	r.L.SetContext(ctx)
	defer r.L.RemoveContext()

	err := r.L.CallByParam(lua.P{
		Fn:      r.L.GetGlobal(resolveHook),
		NRet:    1,
		Protect: true,
	}, lua.LString(ref))
	if err != nil {
		r.logger.Warn("token script failed",
			zap.String("ref", ref),
			zap.Error(err),
		)
		return Literal(ref)
	}

	ret := r.L.Get(-1)
	r.L.Pop(1)
	s, ok := ret.(lua.LString)
	if !ok {
		return Literal(ref)
	}
	return Literal(string(s))
}

// Close releases the Lua state.
func (r *LuaResolver) Close() {
	r.L.Close()
}
