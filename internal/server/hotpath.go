package server

import (
	"sort"

	"github.com/lualens/lualens/internal/profile"
)

// HotPathNode represents one step of the costliest call chain.
type HotPathNode struct {
	Path        string       `json:"path"`
	NumCalls    uint64       `json:"num_calls"`
	TotalTime   float64      `json:"total_time"`
	Depth       int          `json:"depth"`
	BranchBadge *BranchBadge `json:"branch_badge,omitempty"`
}

// BranchBadge summarizes callee edges collapsed off the hot path.
type BranchBadge struct {
	CallCount int      `json:"call_count"`
	Labels    []string `json:"labels"`
}

// HotPathResponse is the response for the hot path endpoint.
type HotPathResponse struct {
	Nodes          []HotPathNode `json:"nodes"`
	CollapsedCount int           `json:"collapsed_count"`
}

// BuildHotPath walks the report's call edges greedily, following the
// costliest callee at each step, starting from the most expensive root.
// A root is a function that never appears as someone's callee.
func BuildHotPath(rep *profile.Report, maxDepth int) *HotPathResponse {
	if maxDepth <= 0 {
		maxDepth = 10
	}

	resp := &HotPathResponse{Nodes: []HotPathNode{}}

	current := pickRoot(rep)
	if current == "" {
		return resp
	}

	visited := make(map[string]bool)
	for depth := 0; depth < maxDepth && current != ""; depth++ {
		visited[current] = true
		fn := rep.Functions[current]

		node := HotPathNode{
			Path:      current,
			Depth:     depth,
			NumCalls:  fn.NumCalls,
			TotalTime: fn.TotalTime,
		}

		// Pick the costliest unvisited callee; collapse the rest.
		next := ""
		var nextTime float64
		var collapsed []string
		for _, calleePath := range sortedCalleePaths(fn) {
			edge := fn.Calls[calleePath]
			if visited[calleePath] {
				collapsed = append(collapsed, calleePath)
				continue
			}
			if next == "" || edge.TotalTime > nextTime {
				if next != "" {
					collapsed = append(collapsed, next)
				}
				next = calleePath
				nextTime = edge.TotalTime
			} else {
				collapsed = append(collapsed, calleePath)
			}
		}

		if len(collapsed) > 0 {
			sort.Strings(collapsed)
			node.BranchBadge = &BranchBadge{
				CallCount: len(collapsed),
				Labels:    collapsed,
			}
			resp.CollapsedCount += len(collapsed)
		}

		resp.Nodes = append(resp.Nodes, node)

		if next == "" || rep.Functions[next] == nil {
			break
		}
		current = next
	}

	return resp
}

// pickRoot returns the most expensive function that is never called
// by another profiled function, falling back to the most expensive
// function overall.
func pickRoot(rep *profile.Report) string {
	callees := make(map[string]bool)
	for _, fn := range rep.Functions {
		for calleePath := range fn.Calls {
			callees[calleePath] = true
		}
	}

	best := ""
	var bestTime float64
	for path, fn := range rep.Functions {
		if callees[path] {
			continue
		}
		if best == "" || fn.TotalTime > bestTime || (fn.TotalTime == bestTime && path < best) {
			best = path
			bestTime = fn.TotalTime
		}
	}
	if best != "" {
		return best
	}

	// Every function is someone's callee (cycles); fall back to the costliest.
	for path, fn := range rep.Functions {
		if best == "" || fn.TotalTime > bestTime || (fn.TotalTime == bestTime && path < best) {
			best = path
			bestTime = fn.TotalTime
		}
	}
	return best
}

func sortedCalleePaths(fn *profile.FunctionInformation) []string {
	paths := make([]string, 0, len(fn.Calls))
	for path := range fn.Calls {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}
