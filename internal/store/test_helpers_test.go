package store

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/roach88/rsrepair/internal/model"
)

// createTestStore opens a fresh store in a temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func mustDoc(t *testing.T, raw string) model.Document {
	t.Helper()
	d, err := model.ParseDocument([]byte(raw))
	if err != nil {
		t.Fatalf("ParseDocument(%s) failed: %v", raw, err)
	}
	return d
}

func testKey(lo, hi model.Bound) model.RangeKey {
	return model.RangeKey{
		Namespace: model.Namespace{DB: "shop", Collection: "orders"},
		Min:       lo,
		Max:       hi,
	}
}

func getTableColumns(t *testing.T, db *sql.DB, table string) []string {
	t.Helper()
	rows, err := db.Query("SELECT name FROM pragma_table_info(?)", table)
	if err != nil {
		t.Fatalf("table_info(%s) failed: %v", table, err)
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("scan column: %v", err)
		}
		columns = append(columns, name)
	}
	return columns
}

func contains(items []string, want string) bool {
	for _, item := range items {
		if item == want {
			return true
		}
	}
	return false
}
