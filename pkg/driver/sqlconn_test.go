package driver

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

// seedDB creates a throwaway database file with a small library table.
func seedDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "verify.db")

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("failed to open seed database: %v", err)
	}
	defer db.Close()

	stmts := []string{
		`CREATE TABLE library (author TEXT, name TEXT, page_count INTEGER)`,
		`INSERT INTO library VALUES ('James S.A. Corey', 'Leviathan Wakes', 561)`,
		`INSERT INTO library VALUES ('Dan Simmons', 'Hyperion', 482)`,
		`INSERT INTO library VALUES ('Frank Herbert', 'Dune', 604)`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			t.Fatalf("seed statement failed: %v", err)
		}
	}
	return path
}

func TestExecuteFetch(t *testing.T) {
	ctx := context.Background()
	conn, err := ConnectDriver(ctx, "sqlite", seedDB(t))
	if err != nil {
		t.Fatalf("ConnectDriver failed: %v", err)
	}
	defer conn.Close()

	cur, err := conn.Execute(ctx, "SELECT author, name, page_count FROM library")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	cols := cur.Columns()
	if len(cols) != 3 || cols[0] != "author" || cols[2] != "page_count" {
		t.Errorf("Columns = %v, want [author name page_count]", cols)
	}

	row, ok, err := cur.FetchOne()
	if err != nil || !ok {
		t.Fatalf("FetchOne failed: ok=%v err=%v", ok, err)
	}
	if got := valueString(row[0]); got != "James S.A. Corey" {
		t.Errorf("first author = %q, want %q", got, "James S.A. Corey")
	}
	if n, isInt := row[2].(int64); !isInt || n != 561 {
		t.Errorf("first page_count = %v (%T), want int64 561", row[2], row[2])
	}

	rest, err := cur.FetchAll()
	if err != nil {
		t.Fatalf("FetchAll failed: %v", err)
	}
	if len(rest) != 2 {
		t.Fatalf("FetchAll returned %d rows, want 2 remaining", len(rest))
	}

	// Cursor is closed after FetchAll; further fetches report end of set.
	if _, ok, err := cur.FetchOne(); ok || err != nil {
		t.Errorf("FetchOne after drain: ok=%v err=%v, want end of set", ok, err)
	}
}

func TestExecuteSingleScalar(t *testing.T) {
	ctx := context.Background()
	conn, err := ConnectDriver(ctx, "sqlite", seedDB(t))
	if err != nil {
		t.Fatalf("ConnectDriver failed: %v", err)
	}
	defer conn.Close()

	cur, err := conn.Execute(ctx, "SELECT 1 FROM library LIMIT 10")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	rows, err := cur.FetchAll()
	if err != nil {
		t.Fatalf("FetchAll failed: %v", err)
	}
	if len(rows) != 3 {
		t.Errorf("scan returned %d rows, want 3", len(rows))
	}
}

func TestCursorReuseOnSameSession(t *testing.T) {
	ctx := context.Background()
	conn, err := ConnectDriver(ctx, "sqlite", seedDB(t))
	if err != nil {
		t.Fatalf("ConnectDriver failed: %v", err)
	}
	defer conn.Close()

	cur, err := conn.Execute(ctx, "SELECT 1 FROM library")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if _, ok, err := cur.FetchOne(); !ok || err != nil {
		t.Fatalf("partial fetch failed: ok=%v err=%v", ok, err)
	}
	if err := cur.Close(); err != nil {
		t.Fatalf("Close of partially-consumed cursor failed: %v", err)
	}

	cur2, err := conn.Execute(ctx, "SELECT 1 FROM library")
	if err != nil {
		t.Fatalf("Execute after cursor discard failed: %v", err)
	}
	rows, err := cur2.FetchAll()
	if err != nil {
		t.Fatalf("FetchAll on reused session failed: %v", err)
	}
	if len(rows) != 3 {
		t.Errorf("reused session returned %d rows, want 3", len(rows))
	}
}

func TestSysStatementBuilders(t *testing.T) {
	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{
			"catalog enumeration",
			sysTablesStmt("", "%", []string{""}),
			"SYS TABLES CATALOG LIKE '%' ESCAPE '\\' LIKE '' ESCAPE '\\'",
		},
		{
			"table type enumeration",
			sysTablesStmt("", "", []string{"%"}),
			"SYS TABLES LIKE '' ESCAPE '\\' TYPE '%'",
		},
		{
			"typed table listing",
			sysTablesStmt("%", "%", []string{"TABLE,VIEW"}),
			"SYS TABLES CATALOG LIKE '%' ESCAPE '\\' LIKE '%' ESCAPE '\\' TYPE 'TABLE', 'VIEW'",
		},
		{
			"columns unqualified",
			sysColumnsStmt("library", "", ""),
			"SYS COLUMNS TABLE LIKE 'library' ESCAPE '\\' LIKE '%' ESCAPE '\\'",
		},
		{
			"columns catalog qualified",
			sysColumnsStmt("library", "elasticsearch", "%"),
			"SYS COLUMNS CATALOG 'elasticsearch' TABLE LIKE 'library' ESCAPE '\\' LIKE '%' ESCAPE '\\'",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("statement = %q, want %q", tt.got, tt.expected)
			}
		})
	}
}

func TestEscapeLike(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"library", "library"},
		{"my_index", `my\_index`},
		{"100%", `100\%`},
		{`a\b`, `a\\b`},
	}
	for _, tt := range tests {
		if got := EscapeLike(tt.input); got != tt.expected {
			t.Errorf("EscapeLike(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestDSNAttribute(t *testing.T) {
	dsn := "Driver={Elasticsearch Driver};UID=elastic;PWD=secret;Secure=0"
	if got := dsnAttribute(dsn, "UID"); got != "elastic" {
		t.Errorf("dsnAttribute(UID) = %q, want %q", got, "elastic")
	}
	if got := dsnAttribute(dsn, "uid"); got != "elastic" {
		t.Errorf("dsnAttribute is case-sensitive on keys: got %q", got)
	}
	if got := dsnAttribute(dsn, "Missing"); got != "" {
		t.Errorf("dsnAttribute(Missing) = %q, want empty", got)
	}
}
