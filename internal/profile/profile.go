package profile

import (
	"math"
	"strings"
)

// Path locates a Lua function relative to the traversal root, as the ordered
// sequence of table keys leading to it. Report maps are keyed by the
// dot-joined form.
type Path []string

// String returns the dot-joined form of the path.
func (p Path) String() string {
	return strings.Join(p, ".")
}

// Clone returns an independent copy of the path.
func (p Path) Clone() Path {
	return append(Path(nil), p...)
}

// ParsePath splits a dot-joined key back into a Path.
func ParsePath(s string) Path {
	if s == "" {
		return nil
	}
	return Path(strings.Split(s, "."))
}

// CallsInformation collects information about one caller-to-callee edge.
type CallsInformation struct {
	// NumCalls is the number of times the callee was called by this caller.
	NumCalls uint64 `json:"num_calls"`
	// TotalTime is the seconds elapsed across all those calls.
	TotalTime float64 `json:"total_time"`
}

// FunctionInformation collects information about one instrumented function.
type FunctionInformation struct {
	Path     Path   `json:"path"`
	NumCalls uint64 `json:"num_calls"`
	// MinTime starts at +Inf so the first completed call always wins.
	MinTime   float64 `json:"min_time"`
	TotalTime float64 `json:"total_time"`
	MaxTime   float64 `json:"max_time"`
	// Calls holds per-callee information, keyed by the callee's joined path.
	Calls map[string]*CallsInformation `json:"calls"`
}

// NewFunctionInformation returns an empty record for the given path.
func NewFunctionInformation(path Path) *FunctionInformation {
	return &FunctionInformation{
		Path:    path,
		MinTime: math.Inf(1),
		Calls:   make(map[string]*CallsInformation),
	}
}

// Callee finds or creates the edge record for the given callee path.
func (f *FunctionInformation) Callee(path Path) *CallsInformation {
	key := path.String()
	ci := f.Calls[key]
	if ci == nil {
		ci = &CallsInformation{}
		f.Calls[key] = ci
	}
	return ci
}

// Sample applies one completed call's elapsed time.
func (f *FunctionInformation) Sample(elapsed float64) {
	f.MinTime = math.Min(f.MinTime, elapsed)
	f.MaxTime = math.Max(f.MaxTime, elapsed)
	f.TotalTime += elapsed
}

// Report holds everything collected by the default instruments during one
// instrumentation session.
type Report struct {
	// Functions maps each function's joined path to its information.
	Functions map[string]*FunctionInformation `json:"functions"`
	// TotalTime is the wall time of the whole session, stamped at Stop.
	TotalTime float64 `json:"total_time"`
}

// NewReport returns an empty report.
func NewReport() *Report {
	return &Report{Functions: make(map[string]*FunctionInformation)}
}

// Function finds or creates the information record for the given path.
func (r *Report) Function(path Path) *FunctionInformation {
	key := path.String()
	fi := r.Functions[key]
	if fi == nil {
		fi = NewFunctionInformation(path.Clone())
		r.Functions[key] = fi
	}
	return fi
}

// Clone returns a deep copy sharing no state with the receiver.
func (r *Report) Clone() *Report {
	out := NewReport()
	out.TotalTime = r.TotalTime
	for key, fi := range r.Functions {
		cp := &FunctionInformation{
			Path:      fi.Path.Clone(),
			NumCalls:  fi.NumCalls,
			MinTime:   fi.MinTime,
			TotalTime: fi.TotalTime,
			MaxTime:   fi.MaxTime,
			Calls:     make(map[string]*CallsInformation, len(fi.Calls)),
		}
		for callee, ci := range fi.Calls {
			c := *ci
			cp.Calls[callee] = &c
		}
		out.Functions[key] = cp
	}
	return out
}
