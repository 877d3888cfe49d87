package profiler

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/lualens/lualens/internal/clock"
	"github.com/lualens/lualens/internal/profile"
)

// aggregator is the state behind the default instruments: the report being
// built and an explicit frame stack whose depth mirrors the live recursion
// depth of instrumented calls. It is reset at every Start.
type aggregator struct {
	clk       clock.Clock
	report    *profile.Report
	stack     []frame
	startedAt float64
}

type frame struct {
	path  profile.Path
	start float64
}

func newAggregator() *aggregator {
	return &aggregator{report: profile.NewReport()}
}

func (a *aggregator) reset(clk clock.Clock) {
	a.clk = clk
	a.report = profile.NewReport()
	a.stack = a.stack[:0]
	a.startedAt = clk.Now()
}

func (a *aggregator) finish() {
	if a.clk != nil {
		a.report.TotalTime = a.clk.Now() - a.startedAt
	}
}

func (a *aggregator) before(path profile.Path) {
	if n := len(a.stack); n > 0 {
		caller := a.report.Function(a.stack[n-1].path)
		caller.Callee(path).NumCalls++
	}
	a.report.Function(path).NumCalls++
	a.stack = append(a.stack, frame{path: path, start: a.clk.Now()})
}

func (a *aggregator) after(path profile.Path) {
	n := len(a.stack)
	if n == 0 {
		return
	}
	finish := a.clk.Now()
	elapsed := finish - a.stack[n-1].start
	a.report.Function(path).Sample(elapsed)
	a.stack = a.stack[:n-1]
	if n := len(a.stack); n > 0 {
		// numCalls for this edge was already counted on entry; only the
		// elapsed time is added here.
		a.report.Function(a.stack[n-1].path).Callee(path).TotalTime += elapsed
	}
}

func (a *aggregator) snapshot() *profile.Report {
	return a.report.Clone()
}

// DefaultBefore is the instrumentation applied at the beginning of each Lua
// function call when no custom before hook is given. ctx must be the value
// returned by the Profiler's DefaultContext.
func DefaultBefore(_ *lua.LState, ctx any, path profile.Path) {
	ctx.(*aggregator).before(path)
}

// DefaultAfter is the instrumentation applied at the end of each Lua
// function call when no custom after hook is given. ctx must be the value
// returned by the Profiler's DefaultContext.
func DefaultAfter(_ *lua.LState, ctx any, path profile.Path) {
	ctx.(*aggregator).after(path)
}
