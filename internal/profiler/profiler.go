// Package profiler measures the performance of Lua functions. Start replaces
// every function reachable from the interpreter's globals with a transparent
// wrapper invoking before/after instruments; Stop puts the originals back.
// The default instruments aggregate per-function and per-call-edge timing
// into a Report.
package profiler

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/lualens/lualens/internal/clock"
	"github.com/lualens/lualens/internal/discover"
	"github.com/lualens/lualens/internal/profile"
)

// Hook is a callback invoked before or after an instrumented Lua function
// call. ctx is the value given to Start, and path locates the function from
// the globals table.
type Hook func(L *lua.LState, ctx any, path profile.Path)

// Profiler instruments one Lua interpreter at a time. It is not safe for
// concurrent use; hooks run strictly nested inside the interpreter's own
// call/return sequence.
type Profiler struct {
	clk       clock.Clock
	denyPaths [][]string
	agg       *aggregator
	session   *session
}

// session holds everything needed to reverse an installation. The ordinary
// Go references it keeps are what hold the original functions alive between
// Start and Stop.
type session struct {
	L         *lua.LState
	installed []installed
}

type installed struct {
	rec     discover.Record
	wrapper *lua.LFunction
}

// New returns an idle Profiler.
func New() *Profiler {
	return &Profiler{agg: newAggregator()}
}

// SetClock supplies the time source for the default instruments. It should
// be called before Start when the default instruments are used; Start falls
// back to the system clock otherwise.
func (p *Profiler) SetClock(clk clock.Clock) {
	p.clk = clk
}

// SetDenyPaths replaces the denylist configuration used by discovery. A nil
// value selects discover.DefaultDenyPaths.
func (p *Profiler) SetDenyPaths(paths [][]string) {
	p.denyPaths = paths
}

// DefaultContext returns the context the default instruments expect.
func (p *Profiler) DefaultContext() any {
	return p.agg
}

// Active reports whether an instrumentation session is in progress.
func (p *Profiler) Active() bool {
	return p.session != nil
}

// Start discovers every function reachable from the interpreter's globals
// and replaces each with an instrumented wrapper. Nil hooks select the
// default aggregating instruments; a nil ctx selects DefaultContext. Any Lua
// function called between Start and Stop invokes the instrumentation.
// Start is a no-op while a session is already active.
func (p *Profiler) Start(L *lua.LState, before, after Hook, ctx any) error {
	if p.session != nil {
		return nil
	}
	globals, ok := L.Get(lua.GlobalsIndex).(*lua.LTable)
	if !ok {
		return nil
	}
	deny := discover.NewDenylist(globals, p.denyPaths)
	records, err := discover.Find(L, globals, deny)
	if err != nil {
		return err
	}

	if before == nil {
		before = DefaultBefore
	}
	if after == nil {
		after = DefaultAfter
	}
	if ctx == nil {
		ctx = p.agg
	}
	if p.clk == nil {
		p.clk = clock.System()
	}
	p.agg.reset(p.clk)

	sess := &session{L: L}
	for _, rec := range records {
		w := newWrapper(L, rec, before, after, ctx)
		rec.Parent.Set(rec.Key, w)
		sess.installed = append(sess.installed, installed{rec: rec, wrapper: w})
	}
	p.session = sess
	return nil
}

// Stop reverses the last Start: every wrapper is overwritten with the
// original function it replaced, restoring the pre-Start state at each
// location, and the interpreter reference is released. Stop is a no-op when
// no session is active.
func (p *Profiler) Stop() {
	if p.session == nil {
		return
	}
	for _, in := range p.session.installed {
		in.rec.Parent.Set(in.rec.Key, in.rec.Fn)
	}
	p.agg.finish()
	p.session = nil
}

// GenerateReport returns an independent snapshot of the information
// collected by the default instruments: partial while a session is active,
// final after Stop, empty before any Start.
func (p *Profiler) GenerateReport() *profile.Report {
	return p.agg.snapshot()
}
