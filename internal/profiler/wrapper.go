package profiler

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/lualens/lualens/internal/discover"
)

// newWrapper builds the forwarding wrapper installed in place of one
// discovered function. The wrapper closes over the original, the hooks, the
// shared context and its own copy of the path, and is transparent to
// arbitrary argument and return arity.
func newWrapper(L *lua.LState, rec discover.Record, before, after Hook, ctx any) *lua.LFunction {
	path := rec.Path
	fn := rec.Fn
	return L.NewFunction(func(L *lua.LState) int {
		nargs := L.GetTop()
		args := make([]lua.LValue, nargs)
		for i := 1; i <= nargs; i++ {
			args[i-1] = L.Get(i)
		}
		before(L, ctx, path)
		// The after hook is deferred so it always pairs with before: when
		// the wrapped function raises, the error unwinds to the caller's
		// protected boundary and the hook still runs on the way out.
		defer after(L, ctx, path)
		_ = L.CallByParam(lua.P{Fn: fn, NRet: lua.MultRet}, args...)
		return L.GetTop() - nargs
	})
}
