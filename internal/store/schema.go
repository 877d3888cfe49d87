package store

// schema contains the SQL statements to create the lualens database schema.
const schema = `
-- Profiling sessions table
CREATE TABLE IF NOT EXISTS sessions (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    script     TEXT NOT NULL,
    entry      TEXT NOT NULL,
    started_at TEXT NOT NULL,
    total_time REAL NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_sessions_script ON sessions(script);
CREATE INDEX IF NOT EXISTS idx_sessions_started ON sessions(started_at);

-- Per-function timings table
CREATE TABLE IF NOT EXISTS functions (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id INTEGER NOT NULL,
    path       TEXT NOT NULL,
    num_calls  INTEGER NOT NULL,
    min_time   REAL NOT NULL,
    total_time REAL NOT NULL,
    max_time   REAL NOT NULL,
    FOREIGN KEY (session_id) REFERENCES sessions(id)
);

CREATE INDEX IF NOT EXISTS idx_functions_session ON functions(session_id);
CREATE INDEX IF NOT EXISTS idx_functions_path ON functions(path);
CREATE UNIQUE INDEX IF NOT EXISTS idx_functions_unique ON functions(session_id, path);

-- Caller to callee edges table
CREATE TABLE IF NOT EXISTS calls (
    caller_id   INTEGER NOT NULL,
    callee_path TEXT NOT NULL,
    num_calls   INTEGER NOT NULL,
    total_time  REAL NOT NULL,
    PRIMARY KEY (caller_id, callee_path),
    FOREIGN KEY (caller_id) REFERENCES functions(id)
);

CREATE INDEX IF NOT EXISTS idx_calls_caller ON calls(caller_id);
CREATE INDEX IF NOT EXISTS idx_calls_callee ON calls(callee_path);

-- Metadata table for store info
CREATE TABLE IF NOT EXISTS metadata (
    key   TEXT PRIMARY KEY,
    value TEXT
);
`
