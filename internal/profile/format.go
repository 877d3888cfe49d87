package profile

import (
	"fmt"
	"io"
	"sort"
)

const rule = "-----------------------------------------------------------------------------------------"

// WriteText renders the report as a fixed-width table, one row per function
// sorted by path, with an indented row for each of its callees.
func WriteText(w io.Writer, r *Report) {
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "Report:")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "%-20s %7s  %14s %14s %14s %14s\n", "FUNC", "#", "MIN", "MAX", "TOTAL", "AVG")
	for _, key := range sortedKeys(r.Functions) {
		fi := r.Functions[key]
		avg := 0.0
		if fi.NumCalls > 0 {
			avg = fi.TotalTime / float64(fi.NumCalls)
		}
		fmt.Fprintf(w, "%-20s %7d  %14.9f %14.9f %14.9f %14.9f\n",
			key, fi.NumCalls, fi.MinTime, fi.MaxTime, fi.TotalTime, avg)
		for _, callee := range sortedKeys(fi.Calls) {
			ci := fi.Calls[callee]
			fmt.Fprintf(w, "  %-18s %7d  %14s %14s %14.9f %14s\n",
				callee, ci.NumCalls, "", "", ci.TotalTime, "")
		}
	}
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Total session time: %.9f\n", r.TotalTime)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
