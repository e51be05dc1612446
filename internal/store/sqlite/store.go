// internal/store/sqlite/store.go
package sqlite

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"

	"github.com/KAT1140/CHUYEN-NGANH-DU-AN-QUAN-LI-HSG/internal/store"
)

type SQLiteStore struct {
	store.BaseStore
}

func NewSQLiteStore(dsn, migrationsDir string) (*SQLiteStore, error) {
	db, err := sqlx.Connect("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &SQLiteStore{BaseStore: store.BaseStore{
		DB: db,
		Converter: func(query string) string {
			return query
		},
		IsDuplicate: isUniqueViolation,
	}}

	if err := s.ApplyMigrations(migrationsDir); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) ApplyMigrations(dir string) error {
	return s.BaseStore.ApplyMigrations(dir, translateToSQLite)
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// translateToSQLite converts Postgres SQL to SQLite dialect. Replacements
// are ordered so that BIGSERIAL is rewritten before SERIAL gets a chance to
// mangle it.
func translateToSQLite(sql string) string {
	replacements := []struct {
		from string
		to   string
	}{
		{"BIGSERIAL PRIMARY KEY", "INTEGER PRIMARY KEY AUTOINCREMENT"},
		{"BIGSERIAL", "INTEGER"},
		{"SERIAL PRIMARY KEY", "INTEGER PRIMARY KEY AUTOINCREMENT"},
		{"SERIAL", "INTEGER"},
		{"BIGINT", "INTEGER"},
		{"DOUBLE PRECISION", "REAL"},
		{"TRUE", "1"},
		{"FALSE", "0"},
		{"now()", "CURRENT_TIMESTAMP"},
	}
	result := sql
	for _, r := range replacements {
		result = strings.ReplaceAll(result, r.from, r.to)
	}
	return result
}
