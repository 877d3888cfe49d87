package store

import "time"

// SessionID is a type-safe identifier for profiling sessions.
type SessionID int64

// FunctionID is a type-safe identifier for per-session function rows.
type FunctionID int64

// Session describes one recorded profiling run.
type Session struct {
	ID        SessionID `json:"id"`
	Script    string    `json:"script"`
	Entry     string    `json:"entry"`
	StartedAt time.Time `json:"started_at"`
	TotalTime float64   `json:"total_time"`
}

// FunctionRow is a stored per-function timing record.
type FunctionRow struct {
	ID        FunctionID `json:"id"`
	SessionID SessionID  `json:"session_id"`
	Path      string     `json:"path"`
	NumCalls  uint64     `json:"num_calls"`
	MinTime   float64    `json:"min_time"`
	TotalTime float64    `json:"total_time"`
	MaxTime   float64    `json:"max_time"`
}

// CallRow is a stored caller-to-callee edge.
type CallRow struct {
	CallerID   FunctionID `json:"caller_id"`
	CalleePath string     `json:"callee_path"`
	NumCalls   uint64     `json:"num_calls"`
	TotalTime  float64    `json:"total_time"`
}
