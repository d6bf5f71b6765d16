package main

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// initDB opens the stats database, creating the directory of a file-backed
// database first. dataSource may carry driver options after "?".
func initDB(dataSource string) (*sql.DB, error) {
	if dir := dataDir(dataSource); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}
	return sql.Open(sqliteDriver, dataSource)
}

// dataDir returns the directory holding the database file, or "" for
// in-memory databases and files in the working directory.
func dataDir(dataSource string) string {
	file, _, _ := strings.Cut(strings.TrimPrefix(dataSource, "file:"), "?")
	if file == "" || file == ":memory:" {
		return ""
	}
	if dir := filepath.Dir(file); dir != "." {
		return dir
	}
	return ""
}
