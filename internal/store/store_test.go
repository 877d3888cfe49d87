package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/lualens/lualens/internal/profile"
)

func sampleReport() *profile.Report {
	return &profile.Report{
		TotalTime: 1.2,
		Functions: map[string]*profile.FunctionInformation{
			"foo": {
				Path: profile.Path{"foo"}, NumCalls: 1,
				MinTime: 0.6, TotalTime: 0.6, MaxTime: 0.6,
				Calls: map[string]*profile.CallsInformation{
					"string.rep": {NumCalls: 2, TotalTime: 0.15},
				},
			},
			"string.rep": {
				Path: profile.Path{"string", "rep"}, NumCalls: 2,
				MinTime: 0.05, TotalTime: 0.15, MaxTime: 0.1,
				Calls: map[string]*profile.CallsInformation{},
			},
		},
	}
}

func TestOpenAndClose(t *testing.T) {
	tmpDir := t.TempDir()

	st, err := Open(tmpDir)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}

	// Verify .lualens directory was created
	lualensDir := filepath.Join(tmpDir, ".lualens")
	if _, err := os.Stat(lualensDir); os.IsNotExist(err) {
		t.Error(".lualens directory was not created")
	}

	// Verify database file exists
	dbPath := filepath.Join(lualensDir, "profiles.db")
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("profiles.db was not created")
	}

	if err := st.Close(); err != nil {
		t.Errorf("failed to close store: %v", err)
	}
}

func TestSaveAndGetReport(t *testing.T) {
	tmpDir := t.TempDir()
	st, err := Open(tmpDir)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer st.Close()

	rep := sampleReport()
	sess := &Session{
		Script:    "bench.lua",
		Entry:     "main",
		StartedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}

	id, err := st.SaveSession(sess, rep)
	if err != nil {
		t.Fatalf("failed to save session: %v", err)
	}
	if id == 0 {
		t.Fatal("expected non-zero session ID")
	}

	got, err := st.GetReport(id)
	if err != nil {
		t.Fatalf("failed to load report: %v", err)
	}
	if diff := cmp.Diff(rep, got); diff != "" {
		t.Errorf("round-tripped report mismatch (-want +got):\n%s", diff)
	}
}

func TestGetSession(t *testing.T) {
	tmpDir := t.TempDir()
	st, err := Open(tmpDir)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer st.Close()

	startedAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	id, err := st.SaveSession(&Session{
		Script:    "bench.lua",
		Entry:     "main",
		StartedAt: startedAt,
	}, sampleReport())
	if err != nil {
		t.Fatalf("failed to save session: %v", err)
	}

	sess, err := st.GetSession(id)
	if err != nil {
		t.Fatalf("failed to get session: %v", err)
	}
	if sess.Script != "bench.lua" || sess.Entry != "main" {
		t.Errorf("unexpected session: %+v", sess)
	}
	if !sess.StartedAt.Equal(startedAt) {
		t.Errorf("expected started_at %v, got %v", startedAt, sess.StartedAt)
	}
	if sess.TotalTime != 1.2 {
		t.Errorf("expected total time 1.2, got %f", sess.TotalTime)
	}
}

func TestListSessionsMostRecentFirst(t *testing.T) {
	tmpDir := t.TempDir()
	st, err := Open(tmpDir)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer st.Close()

	for i, script := range []string{"a.lua", "b.lua", "c.lua"} {
		_, err := st.SaveSession(&Session{
			Script:    script,
			Entry:     "main",
			StartedAt: time.Date(2026, 8, 1, 12, i, 0, 0, time.UTC),
		}, sampleReport())
		if err != nil {
			t.Fatalf("failed to save session %s: %v", script, err)
		}
	}

	sessions, err := st.ListSessions()
	if err != nil {
		t.Fatalf("failed to list sessions: %v", err)
	}
	if len(sessions) != 3 {
		t.Fatalf("expected 3 sessions, got %d", len(sessions))
	}
	if sessions[0].Script != "c.lua" || sessions[2].Script != "a.lua" {
		t.Errorf("expected newest first, got %s .. %s", sessions[0].Script, sessions[2].Script)
	}
}

func TestClear(t *testing.T) {
	tmpDir := t.TempDir()
	st, err := Open(tmpDir)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer st.Close()

	_, err = st.SaveSession(&Session{
		Script:    "bench.lua",
		Entry:     "main",
		StartedAt: time.Now(),
	}, sampleReport())
	if err != nil {
		t.Fatalf("failed to save session: %v", err)
	}

	if err := st.Clear(); err != nil {
		t.Fatalf("failed to clear: %v", err)
	}

	stats, err := st.GetStats()
	if err != nil {
		t.Fatalf("failed to get stats: %v", err)
	}
	if stats.SessionCount != 0 || stats.FunctionCount != 0 || stats.CallCount != 0 {
		t.Errorf("expected empty store, got %+v", stats)
	}
}

func TestGetStats(t *testing.T) {
	tmpDir := t.TempDir()
	st, err := Open(tmpDir)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer st.Close()

	startedAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	_, err = st.SaveSession(&Session{
		Script:    "bench.lua",
		Entry:     "main",
		StartedAt: startedAt,
	}, sampleReport())
	if err != nil {
		t.Fatalf("failed to save session: %v", err)
	}

	stats, err := st.GetStats()
	if err != nil {
		t.Fatalf("failed to get stats: %v", err)
	}
	if stats.SessionCount != 1 {
		t.Errorf("expected 1 session, got %d", stats.SessionCount)
	}
	if stats.FunctionCount != 2 {
		t.Errorf("expected 2 functions, got %d", stats.FunctionCount)
	}
	if stats.CallCount != 1 {
		t.Errorf("expected 1 call edge, got %d", stats.CallCount)
	}
	if !stats.LastProfiledAt.Equal(startedAt) {
		t.Errorf("expected last profiled at %v, got %v", startedAt, stats.LastProfiledAt)
	}
}

func TestMetadata(t *testing.T) {
	tmpDir := t.TempDir()
	st, err := Open(tmpDir)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer st.Close()

	if err := st.SetMetadata("version", "1.0"); err != nil {
		t.Fatalf("failed to set metadata: %v", err)
	}

	val, err := st.GetMetadata("version")
	if err != nil {
		t.Fatalf("failed to get metadata: %v", err)
	}
	if val != "1.0" {
		t.Errorf("expected '1.0', got '%s'", val)
	}

	// Update existing key
	if err := st.SetMetadata("version", "2.0"); err != nil {
		t.Fatalf("failed to update metadata: %v", err)
	}

	val, err = st.GetMetadata("version")
	if err != nil {
		t.Fatalf("failed to get updated metadata: %v", err)
	}
	if val != "2.0" {
		t.Errorf("expected '2.0', got '%s'", val)
	}
}
