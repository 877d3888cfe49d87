package server

import (
	"sort"

	"github.com/lualens/lualens/internal/profile"
)

// functionEntry is the JSON shape of one profiled function.
type functionEntry struct {
	Path      string        `json:"path"`
	NumCalls  uint64        `json:"num_calls"`
	MinTime   float64       `json:"min_time"`
	TotalTime float64       `json:"total_time"`
	MaxTime   float64       `json:"max_time"`
	Callees   []calleeEntry `json:"callees"`
}

// calleeEntry is the JSON shape of one caller-to-callee edge.
type calleeEntry struct {
	Path      string  `json:"path"`
	NumCalls  uint64  `json:"num_calls"`
	TotalTime float64 `json:"total_time"`
}

// reportResponse is the JSON shape of a full session report.
type reportResponse struct {
	Functions []functionEntry `json:"functions"`
	TotalTime float64         `json:"total_time"`
}

// buildReportResponse flattens a report into deterministic sorted slices.
func buildReportResponse(rep *profile.Report) *reportResponse {
	resp := &reportResponse{
		Functions: make([]functionEntry, 0, len(rep.Functions)),
		TotalTime: rep.TotalTime,
	}

	paths := make([]string, 0, len(rep.Functions))
	for path := range rep.Functions {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		fn := rep.Functions[path]
		entry := functionEntry{
			Path:      path,
			NumCalls:  fn.NumCalls,
			MinTime:   fn.MinTime,
			TotalTime: fn.TotalTime,
			MaxTime:   fn.MaxTime,
			Callees:   make([]calleeEntry, 0, len(fn.Calls)),
		}

		calleePaths := make([]string, 0, len(fn.Calls))
		for calleePath := range fn.Calls {
			calleePaths = append(calleePaths, calleePath)
		}
		sort.Strings(calleePaths)

		for _, calleePath := range calleePaths {
			edge := fn.Calls[calleePath]
			entry.Callees = append(entry.Callees, calleeEntry{
				Path:      calleePath,
				NumCalls:  edge.NumCalls,
				TotalTime: edge.TotalTime,
			})
		}
		resp.Functions = append(resp.Functions, entry)
	}
	return resp
}

// GraphNode represents a profiled function in the graph response.
type GraphNode struct {
	Path      string  `json:"path"`
	NumCalls  uint64  `json:"num_calls"`
	MinTime   float64 `json:"min_time"`
	TotalTime float64 `json:"total_time"`
	MaxTime   float64 `json:"max_time"`
}

// GraphEdge represents a caller-to-callee edge in the graph response.
type GraphEdge struct {
	Source    string  `json:"source"`
	Target    string  `json:"target"`
	NumCalls  uint64  `json:"num_calls"`
	TotalTime float64 `json:"total_time"`
}

// GraphResponse is the response format for the graph endpoint.
type GraphResponse struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}

// BuildGraph converts a report into a node and edge list, sorted
// by path for deterministic output.
func BuildGraph(rep *profile.Report) *GraphResponse {
	resp := &GraphResponse{
		Nodes: make([]GraphNode, 0, len(rep.Functions)),
		Edges: []GraphEdge{},
	}

	paths := make([]string, 0, len(rep.Functions))
	for path := range rep.Functions {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		fn := rep.Functions[path]
		resp.Nodes = append(resp.Nodes, GraphNode{
			Path:      path,
			NumCalls:  fn.NumCalls,
			MinTime:   fn.MinTime,
			TotalTime: fn.TotalTime,
			MaxTime:   fn.MaxTime,
		})

		calleePaths := make([]string, 0, len(fn.Calls))
		for calleePath := range fn.Calls {
			calleePaths = append(calleePaths, calleePath)
		}
		sort.Strings(calleePaths)

		for _, calleePath := range calleePaths {
			edge := fn.Calls[calleePath]
			resp.Edges = append(resp.Edges, GraphEdge{
				Source:    path,
				Target:    calleePath,
				NumCalls:  edge.NumCalls,
				TotalTime: edge.TotalTime,
			})
		}
	}
	return resp
}
