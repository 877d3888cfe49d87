package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/lualens/lualens/internal/profile"
)

// Store handles persistence of profiling sessions to SQLite.
type Store struct {
	db      *sql.DB
	dbPath  string
	baseDir string
}

// Open creates or opens a lualens session database.
// By default, stores at .lualens/profiles.db relative to the given directory.
func Open(dir string) (*Store, error) {
	lualensDir := filepath.Join(dir, ".lualens")
	if err := os.MkdirAll(lualensDir, 0755); err != nil {
		return nil, fmt.Errorf("creating .lualens directory: %w", err)
	}

	dbPath := filepath.Join(lualensDir, "profiles.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable foreign keys and WAL mode for better performance
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA cache_size = -64000", // 64MB cache
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("setting pragma: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{
		db:      db,
		dbPath:  dbPath,
		baseDir: dir,
	}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DBPath returns the path to the database file.
func (s *Store) DBPath() string {
	return s.dbPath
}

// Clear removes all data from the database.
func (s *Store) Clear() error {
	tables := []string{"calls", "functions", "sessions", "metadata"}
	for _, table := range tables {
		if _, err := s.db.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clearing table %s: %w", table, err)
		}
	}
	return nil
}

// SaveSession persists a session and its report in one transaction
// and returns the new session's ID.
func (s *Store) SaveSession(sess *Session, rep *profile.Report) (SessionID, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	result, err := tx.Exec(`
		INSERT INTO sessions (script, entry, started_at, total_time)
		VALUES (?, ?, ?, ?)
	`, sess.Script, sess.Entry, sess.StartedAt.Format(time.RFC3339Nano), rep.TotalTime)
	if err != nil {
		return 0, fmt.Errorf("inserting session: %w", err)
	}
	sessionID, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}

	for path, fn := range rep.Functions {
		result, err := tx.Exec(`
			INSERT INTO functions (session_id, path, num_calls, min_time, total_time, max_time)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(session_id, path) DO UPDATE SET
				num_calls = excluded.num_calls,
				min_time = excluded.min_time,
				total_time = excluded.total_time,
				max_time = excluded.max_time
		`, sessionID, path, fn.NumCalls, fn.MinTime, fn.TotalTime, fn.MaxTime)
		if err != nil {
			return 0, fmt.Errorf("inserting function %s: %w", path, err)
		}
		callerID, err := result.LastInsertId()
		if err != nil {
			return 0, err
		}

		for calleePath, edge := range fn.Calls {
			_, err := tx.Exec(`
				INSERT INTO calls (caller_id, callee_path, num_calls, total_time)
				VALUES (?, ?, ?, ?)
				ON CONFLICT(caller_id, callee_path) DO UPDATE SET
					num_calls = excluded.num_calls,
					total_time = excluded.total_time
			`, callerID, calleePath, edge.NumCalls, edge.TotalTime)
			if err != nil {
				return 0, fmt.Errorf("inserting call %s -> %s: %w", path, calleePath, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return SessionID(sessionID), nil
}

// ListSessions returns all stored sessions, most recent first.
func (s *Store) ListSessions() ([]*Session, error) {
	rows, err := s.db.Query(`
		SELECT id, script, entry, started_at, total_time
		FROM sessions
		ORDER BY id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// GetSession returns one session by ID.
func (s *Store) GetSession(id SessionID) (*Session, error) {
	row := s.db.QueryRow(`
		SELECT id, script, entry, started_at, total_time
		FROM sessions
		WHERE id = ?
	`, id)
	return scanSession(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*Session, error) {
	var sess Session
	var startedAt string
	if err := row.Scan(&sess.ID, &sess.Script, &sess.Entry, &startedAt, &sess.TotalTime); err != nil {
		return nil, err
	}
	ts, err := time.Parse(time.RFC3339Nano, startedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing session timestamp: %w", err)
	}
	sess.StartedAt = ts
	return &sess, nil
}

// GetReport reconstructs the full report for a session.
func (s *Store) GetReport(id SessionID) (*profile.Report, error) {
	sess, err := s.GetSession(id)
	if err != nil {
		return nil, err
	}

	rep := &profile.Report{
		Functions: make(map[string]*profile.FunctionInformation),
		TotalTime: sess.TotalTime,
	}

	fnRows, err := s.db.Query(`
		SELECT id, path, num_calls, min_time, total_time, max_time
		FROM functions
		WHERE session_id = ?
	`, id)
	if err != nil {
		return nil, fmt.Errorf("querying functions: %w", err)
	}
	defer fnRows.Close()

	ids := make(map[FunctionID]*profile.FunctionInformation)
	for fnRows.Next() {
		var fnID FunctionID
		var path string
		fn := &profile.FunctionInformation{
			Calls: make(map[string]*profile.CallsInformation),
		}
		err := fnRows.Scan(&fnID, &path, &fn.NumCalls, &fn.MinTime, &fn.TotalTime, &fn.MaxTime)
		if err != nil {
			return nil, fmt.Errorf("scanning function: %w", err)
		}
		fn.Path = profile.ParsePath(path)
		rep.Functions[path] = fn
		ids[fnID] = fn
	}
	if err := fnRows.Err(); err != nil {
		return nil, err
	}

	callRows, err := s.db.Query(`
		SELECT c.caller_id, c.callee_path, c.num_calls, c.total_time
		FROM calls c
		JOIN functions f ON f.id = c.caller_id
		WHERE f.session_id = ?
	`, id)
	if err != nil {
		return nil, fmt.Errorf("querying calls: %w", err)
	}
	defer callRows.Close()

	for callRows.Next() {
		var callerID FunctionID
		var calleePath string
		edge := &profile.CallsInformation{}
		err := callRows.Scan(&callerID, &calleePath, &edge.NumCalls, &edge.TotalTime)
		if err != nil {
			return nil, fmt.Errorf("scanning call: %w", err)
		}
		caller, ok := ids[callerID]
		if !ok {
			return nil, fmt.Errorf("call edge references unknown function %d", callerID)
		}
		caller.Calls[calleePath] = edge
	}
	return rep, callRows.Err()
}

// SetMetadata stores a key-value pair in the metadata table.
func (s *Store) SetMetadata(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO metadata (key, value)
		VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

// GetMetadata retrieves a value from the metadata table.
func (s *Store) GetMetadata(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM metadata WHERE key = ?", key).Scan(&value)
	return value, err
}

// Stats holds statistics about the stored sessions.
type Stats struct {
	SessionCount   int       `json:"session_count"`
	FunctionCount  int       `json:"function_count"`
	CallCount      int       `json:"call_count"`
	LastProfiledAt time.Time `json:"last_profiled_at"`
}

// GetStats returns statistics about the stored sessions.
func (s *Store) GetStats() (*Stats, error) {
	stats := &Stats{}

	rows := []struct {
		table string
		dest  *int
	}{
		{"sessions", &stats.SessionCount},
		{"functions", &stats.FunctionCount},
		{"calls", &stats.CallCount},
	}

	for _, r := range rows {
		err := s.db.QueryRow("SELECT COUNT(*) FROM " + r.table).Scan(r.dest)
		if err != nil {
			return nil, fmt.Errorf("counting %s: %w", r.table, err)
		}
	}

	var startedAt sql.NullString
	err := s.db.QueryRow("SELECT MAX(started_at) FROM sessions").Scan(&startedAt)
	if err == nil && startedAt.Valid {
		stats.LastProfiledAt, _ = time.Parse(time.RFC3339Nano, startedAt.String)
	}

	return stats, nil
}
