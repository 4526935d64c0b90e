package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

// TempDSN returns the path of a fresh SQLite database file under the
// test's temporary directory. A file-backed database makes committed
// writes visible to every connection that opens the same DSN.
func TempDSN(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "test.db")
}

// CreateSchema applies ddl to the database at dsn over its own
// short-lived connection.
func CreateSchema(t *testing.T, dsn, ddl string) {
	t.Helper()
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("opening schema connection: %v", err)
	}
	defer db.Close()
	if _, err := db.Exec(ddl); err != nil {
		t.Fatalf("creating schema: %v", err)
	}
}

// CountRows counts the rows of table at dsn over an independent
// connection, so the result reflects only committed state.
func CountRows(t *testing.T, dsn, table string) int {
	t.Helper()
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("opening count connection: %v", err)
	}
	defer db.Close()

	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		t.Fatalf("counting rows in %s: %v", table, err)
	}
	return n
}
