package db

import (
	"context"
	"database/sql"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// captureHandler records log records for assertion in tests.
type captureHandler struct {
	mu    sync.Mutex
	attrs []map[string]slog.Value
}

func (h *captureHandler) Enabled(_ context.Context, _ slog.Level) bool { return true }

func (h *captureHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	m := map[string]slog.Value{"msg": slog.StringValue(r.Message)}
	r.Attrs(func(a slog.Attr) bool {
		m[a.Key] = a.Value
		return true
	})
	h.attrs = append(h.attrs, m)
	return nil
}

func (h *captureHandler) WithAttrs(_ []slog.Attr) slog.Handler { return h }

func (h *captureHandler) WithGroup(_ string) slog.Handler { return h }

func (h *captureHandler) sqlRecords() []map[string]slog.Value {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []map[string]slog.Value
	for _, m := range h.attrs {
		if m["msg"].String() == "sql" {
			out = append(out, m)
		}
	}
	return out
}

func (h *captureHandler) reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.attrs = nil
}

func tableNames(t *testing.T, db *sql.DB) []string {
	t.Helper()
	rows, err := db.Query(`SELECT name FROM sqlite_master WHERE type = 'table' AND name LIKE 'telemetry_%' ORDER BY name`)
	if err != nil {
		t.Fatalf("list tables: %v", err)
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			t.Fatalf("scan: %v", err)
		}
		names = append(names, n)
	}
	return names
}

func TestOpen_AppliesSchema(t *testing.T) {
	for _, logSQL := range []bool{false, true} {
		db, err := Open(context.Background(), Options{Path: ":memory:", LogSQL: logSQL}, slog.New(&captureHandler{}))
		if err != nil {
			t.Fatalf("Open(logSQL=%v): %v", logSQL, err)
		}
		got := strings.Join(tableNames(t, db), ",")
		if got != "telemetry_channels,telemetry_groups,telemetry_samples" {
			t.Errorf("logSQL=%v: tables = %s", logSQL, got)
		}
		_ = Close(db)
	}
}

func TestOpen_FileCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "kiosk.db")
	db, err := Open(context.Background(), Options{Path: path}, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = Close(db) }()

	var mode string
	if err := db.QueryRow(`PRAGMA journal_mode`).Scan(&mode); err != nil {
		t.Fatalf("journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want wal", mode)
	}
}

func TestBuildDSN(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: ":memory:", want: "file::memory:?_foreign_keys=on&_busy_timeout=5000"},
		{in: "file:/data/k.db?cache=shared", want: "file:/data/k.db?cache=shared&_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL"},
		{in: "kiosk.db", want: "file:kiosk.db?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL"},
	}
	for _, tt := range tests {
		got, err := buildDSN(tt.in)
		if err != nil {
			t.Fatalf("buildDSN(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("buildDSN(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if _, err := buildDSN("  "); err == nil {
		t.Error("buildDSN(blank) error = nil")
	}
}

func TestLoggingConnector_LogsStatements(t *testing.T) {
	handler := &captureHandler{}
	connector, err := NewLoggingConnector(":memory:", slog.New(handler))
	if err != nil {
		t.Fatalf("NewLoggingConnector: %v", err)
	}
	db := sql.OpenDB(connector)
	defer func() { _ = db.Close() }()
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`CREATE TABLE t (id INTEGER, name TEXT)`); err != nil {
		t.Fatalf("create: %v", err)
	}
	handler.reset()

	if _, err := db.Exec(`INSERT INTO t (id, name) VALUES (?, ?)`, 1, "iaq"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	recs := handler.sqlRecords()
	if len(recs) != 1 {
		t.Fatalf("exec records = %d, want 1", len(recs))
	}
	got := recs[0]
	if got["op"].String() != "exec" || got["sql"].String() != `INSERT INTO t (id, name) VALUES (?, ?)` {
		t.Errorf("exec record = %v", got)
	}
	if _, ok := got["elapsed"]; !ok {
		t.Error("missing elapsed attribute")
	}
	if args := got["args"].Any(); args == nil {
		t.Error("missing args attribute")
	} else if s, ok := args.([]string); !ok || len(s) != 2 || s[1] != "iaq" {
		t.Errorf("args = %#v", args)
	}

	handler.reset()
	var name string
	if err := db.QueryRow(`SELECT name FROM t WHERE id = ?`, 1).Scan(&name); err != nil {
		t.Fatalf("query: %v", err)
	}
	recs = handler.sqlRecords()
	if len(recs) == 0 || recs[len(recs)-1]["op"].String() != "query" {
		t.Fatalf("query records = %v", recs)
	}
}

func TestLoggingConnector_LogsErrors(t *testing.T) {
	handler := &captureHandler{}
	connector, _ := NewLoggingConnector(":memory:", slog.New(handler))
	db := sql.OpenDB(connector)
	defer func() { _ = db.Close() }()

	if _, err := db.Exec(`INSERT INTO missing VALUES (1)`); err == nil {
		t.Fatal("insert into missing table succeeded")
	}
	recs := handler.sqlRecords()
	if len(recs) == 0 {
		t.Fatal("no sql record for failed statement")
	}
	if _, ok := recs[len(recs)-1]["error"]; !ok {
		t.Error("failed statement logged without error")
	}
}

func TestLoggingConnector_NilLoggerUsesDefault(t *testing.T) {
	conn, err := NewLoggingConnector(":memory:", nil)
	if err != nil {
		t.Fatalf("NewLoggingConnector: %v", err)
	}
	if c := conn.(*loggingConnector); c.logger == nil {
		t.Fatal("logger is nil")
	}
	if _, err := conn.Driver().Open(":memory:"); err == nil {
		t.Fatal("Driver().Open should refuse")
	}
}
