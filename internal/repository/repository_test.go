package repository

// Shared in-memory database harness for repository tests.  The SQL in this
// package sticks to the dialect subset MySQL and SQLite have in common, so
// the tests exercise the exact statements production runs.

import (
	"database/sql"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	for _, stmt := range testSchema {
		_, err = db.Exec(stmt)
		require.NoError(t, err)
	}
	return db
}

var testSchema = []string{`
CREATE TABLE users (
  id                 INTEGER PRIMARY KEY AUTOINCREMENT,
  email              TEXT NOT NULL UNIQUE,
  password_hash      TEXT NOT NULL,
  subscription       TEXT NOT NULL DEFAULT 'starter',
  session_token      TEXT,
  avatar_url         TEXT NOT NULL DEFAULT '',
  verified           INTEGER NOT NULL DEFAULT 0,
  verification_token TEXT
)`, `
CREATE TABLE contacts (
  id       INTEGER PRIMARY KEY AUTOINCREMENT,
  owner_id INTEGER NOT NULL,
  name     TEXT NOT NULL,
  email    TEXT NOT NULL,
  phone    TEXT NOT NULL,
  favorite INTEGER NOT NULL DEFAULT 0
)`}
