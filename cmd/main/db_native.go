//go:build !cgo_sqlite

package main

import _ "modernc.org/sqlite"

// sqliteDriver is the database/sql driver backing the stats database.
const sqliteDriver = "sqlite"
