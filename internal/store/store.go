// Package store is the SQLite-backed findings cache. It remembers, per
// file path, a content hash and the definitions with their findings from
// the last lint, so unchanged files can be replayed without parsing.
package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store is the SQLite data access layer for the findings cache.
type Store struct {
	db *sql.DB
}

// File is one cached file record.
type File struct {
	ID         int64
	Path       string
	Hash       string
	LastLinted time.Time
}

// Definition is the cached form of one linted definition: enough to
// replay the report without re-parsing the source.
type Definition struct {
	Kind   string
	Name   string
	Line   int
	Header string

	Errors   []string
	Warnings []string
}

// NewStore opens a SQLite database at dbPath with WAL mode enabled.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use in transactions.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Migrate creates the cache tables and indexes. Idempotent.
func (s *Store) Migrate() error {
	_, err := s.db.Exec(schemaDDL)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS files (
  id           INTEGER PRIMARY KEY,
  path         TEXT NOT NULL UNIQUE,
  hash         TEXT,
  last_linted  TIMESTAMP
);

CREATE TABLE IF NOT EXISTS definitions (
  id           INTEGER PRIMARY KEY,
  file_id      INTEGER NOT NULL REFERENCES files(id) ON DELETE CASCADE,
  ordinal      INTEGER NOT NULL,
  kind         TEXT NOT NULL,
  name         TEXT NOT NULL,
  line         INTEGER,
  header       TEXT
);

CREATE TABLE IF NOT EXISTS findings (
  id            INTEGER PRIMARY KEY,
  definition_id INTEGER NOT NULL REFERENCES definitions(id) ON DELETE CASCADE,
  ordinal       INTEGER NOT NULL,
  severity      TEXT NOT NULL CHECK (severity IN ('error', 'warning')),
  message       TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS metadata (
  key   TEXT PRIMARY KEY,
  value TEXT
);

CREATE INDEX IF NOT EXISTS idx_definitions_file ON definitions(file_id, ordinal);
CREATE INDEX IF NOT EXISTS idx_findings_definition ON findings(definition_id, ordinal);
`

// FileByPath returns the cached record for path, or nil when the path has
// never been linted.
func (s *Store) FileByPath(path string) (*File, error) {
	row := s.db.QueryRow(
		`SELECT id, path, hash, last_linted FROM files WHERE path = ?`, path)
	var f File
	if err := row.Scan(&f.ID, &f.Path, &f.Hash, &f.LastLinted); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("lookup file: %w", err)
	}
	return &f, nil
}

// DeleteFile removes a file record and all its cached definitions and
// findings.
func (s *Store) DeleteFile(fileID int64) error {
	if _, err := s.db.Exec(`DELETE FROM files WHERE id = ?`, fileID); err != nil {
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}

// SaveFile replaces the cache entry for path with the given hash and
// definitions, in one transaction.
func (s *Store) SaveFile(path, hash string, defs []Definition) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM files WHERE path = ?`, path); err != nil {
		return fmt.Errorf("delete stale entry: %w", err)
	}
	res, err := tx.Exec(
		`INSERT INTO files (path, hash, last_linted) VALUES (?, ?, ?)`,
		path, hash, time.Now())
	if err != nil {
		return fmt.Errorf("insert file: %w", err)
	}
	fileID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("file id: %w", err)
	}

	for i, def := range defs {
		res, err := tx.Exec(
			`INSERT INTO definitions (file_id, ordinal, kind, name, line, header)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			fileID, i, def.Kind, def.Name, def.Line, def.Header)
		if err != nil {
			return fmt.Errorf("insert definition: %w", err)
		}
		defID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("definition id: %w", err)
		}
		ord := 0
		for _, msg := range def.Errors {
			if err := insertFinding(tx, defID, ord, "error", msg); err != nil {
				return err
			}
			ord++
		}
		for _, msg := range def.Warnings {
			if err := insertFinding(tx, defID, ord, "warning", msg); err != nil {
				return err
			}
			ord++
		}
	}
	return tx.Commit()
}

func insertFinding(tx *sql.Tx, defID int64, ordinal int, severity, message string) error {
	_, err := tx.Exec(
		`INSERT INTO findings (definition_id, ordinal, severity, message)
		 VALUES (?, ?, ?, ?)`,
		defID, ordinal, severity, message)
	if err != nil {
		return fmt.Errorf("insert finding: %w", err)
	}
	return nil
}

// DefinitionsByFile loads the cached definitions for a file, findings
// attached, in their original order.
func (s *Store) DefinitionsByFile(fileID int64) ([]Definition, error) {
	rows, err := s.db.Query(
		`SELECT id, kind, name, line, header FROM definitions
		 WHERE file_id = ? ORDER BY ordinal`, fileID)
	if err != nil {
		return nil, fmt.Errorf("load definitions: %w", err)
	}
	defer rows.Close()

	var defs []Definition
	var ids []int64
	for rows.Next() {
		var id int64
		var def Definition
		if err := rows.Scan(&id, &def.Kind, &def.Name, &def.Line, &def.Header); err != nil {
			return nil, fmt.Errorf("scan definition: %w", err)
		}
		defs = append(defs, def)
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, id := range ids {
		if err := s.loadFindings(id, &defs[i]); err != nil {
			return nil, err
		}
	}
	return defs, nil
}

func (s *Store) loadFindings(defID int64, def *Definition) error {
	rows, err := s.db.Query(
		`SELECT severity, message FROM findings
		 WHERE definition_id = ? ORDER BY ordinal`, defID)
	if err != nil {
		return fmt.Errorf("load findings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var severity, message string
		if err := rows.Scan(&severity, &message); err != nil {
			return fmt.Errorf("scan finding: %w", err)
		}
		if severity == "error" {
			def.Errors = append(def.Errors, message)
		} else {
			def.Warnings = append(def.Warnings, message)
		}
	}
	return rows.Err()
}

// Clear removes every cached file, definition and finding. Metadata is
// kept.
func (s *Store) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM files`); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	return nil
}

// GetMetadata returns the value for key, or "" when unset.
func (s *Store) GetMetadata(key string) (string, error) {
	row := s.db.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key)
	var value string
	if err := row.Scan(&value); err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", fmt.Errorf("get metadata: %w", err)
	}
	return value, nil
}

// SetMetadata stores a key/value pair, replacing any previous value.
func (s *Store) SetMetadata(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO metadata (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value)
	if err != nil {
		return fmt.Errorf("set metadata: %w", err)
	}
	return nil
}
