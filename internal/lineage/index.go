// internal/lineage/index.go
package lineage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

var indexSchema = []string{
	`CREATE TABLE IF NOT EXISTS lineage (
		taxid   TEXT PRIMARY KEY,
		name    TEXT NOT NULL,
		lineage TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS meta (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`,
}

// IsIndexPath reports whether path names a sqlite lineage index rather than a
// text dump.
func IsIndexPath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return true
	}
	return false
}

// Open loads a Store from either a sqlite index or a text dump, chosen by
// file extension.
func Open(ctx context.Context, path string, policy DecodePolicy, onSkip SkipFunc) (*Store, error) {
	if IsIndexPath(path) {
		return LoadIndex(ctx, path)
	}
	return LoadDump(path, policy, onSkip)
}

// WriteIndex persists s into a sqlite file at path, replacing any previous
// contents. Loading the index is much faster than re-parsing the dump.
func WriteIndex(ctx context.Context, path string, s *Store) (retErr error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open sqlite: %w", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil && retErr == nil {
			retErr = cerr
		}
	}()
	for _, ddl := range indexSchema {
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("create lineage schema: %w", err)
		}
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	if _, err := tx.ExecContext(ctx, `DELETE FROM lineage`); err != nil {
		return fmt.Errorf("clear lineage: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO lineage(taxid, name, lineage) VALUES(?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	err = s.each(func(id string, e Entry) error {
		chain := e.Lineage
		if chain == nil {
			chain = []string{}
		}
		payload, err := json.Marshal(chain)
		if err != nil {
			return fmt.Errorf("encode lineage %s: %w", id, err)
		}
		if _, err := stmt.ExecContext(ctx, id, e.Name, string(payload)); err != nil {
			return fmt.Errorf("insert %s: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	meta := map[string]string{
		"source":   s.Source(),
		"entries":  strconv.Itoa(s.Len()),
		"built_at": time.Now().UTC().Format(time.RFC3339),
	}
	for k, v := range meta {
		if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO meta(key, value) VALUES(?, ?)`, k, v); err != nil {
			return fmt.Errorf("write meta %s: %w", k, err)
		}
	}
	return tx.Commit()
}

// LoadIndex reads a sqlite index written by WriteIndex.
func LoadIndex(ctx context.Context, path string) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open lineage index: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	defer func() { _ = db.Close() }()

	rows, err := db.QueryContext(ctx, `SELECT taxid, name, lineage FROM lineage`)
	if err != nil {
		return nil, fmt.Errorf("select lineage: %w", err)
	}
	defer func() { _ = rows.Close() }()

	entries := make(map[string]Entry, 1<<16)
	for rows.Next() {
		var id, name, payload string
		if err := rows.Scan(&id, &name, &payload); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		var chain []string
		if err := json.Unmarshal([]byte(payload), &chain); err != nil {
			return nil, fmt.Errorf("decode lineage %s: %w", id, err)
		}
		if len(chain) == 0 {
			chain = nil
		}
		entries[id] = Entry{Name: name, Lineage: chain}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read lineage: %w", err)
	}
	return &Store{entries: entries, source: path}, nil
}
