package db

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const (
	// writers take the lock on BEGIN
	sqliteDSN = "file:%s?_txlock=immediate&_busy_timeout=5000"

	sqlitePragmas = `
		PRAGMA foreign_keys = ON;
		PRAGMA journal_mode = WAL;
		PRAGMA synchronous = normal;
		PRAGMA journal_size_limit = 6144000;
	`
)

// ErrNotFound is returned by the lookups that find no row
var ErrNotFound = errors.New("not found")

// NewSQLiteDB opens the sqlite database at dbPath, creating it if missing.
func NewSQLiteDB(dbPath string) (*sql.DB, error) {
	database, err := sql.Open("sqlite3", fmt.Sprintf(sqliteDSN, dbPath))
	if err != nil {
		return nil, err
	}
	if _, err := database.Exec(sqlitePragmas); err != nil {
		database.Close()
		return nil, fmt.Errorf("error setting the pragmas of %s: %w", dbPath, err)
	}
	return database, nil
}

// ReturnErrNotFound maps sql.ErrNoRows to ErrNotFound
func ReturnErrNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
