package db

import (
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var Schema string

// Open opens (creating if needed) the sqlite database at path and applies the schema.
// ":memory:" gives a private in-memory database.
func Open(path string) (*sql.DB, error) {
	if path != ":memory:" {
		err := os.MkdirAll(filepath.Dir(path), 0755)
		if err != nil {
			return nil, err
		}
	}

	sqlite, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// every connection to :memory: is its own database, and sqlite serializes writers anyway
	sqlite.SetMaxOpenConns(1)

	_, err = sqlite.Exec(Schema)
	if err != nil {
		sqlite.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return sqlite, nil
}
