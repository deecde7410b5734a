// Package store keeps the last fetched molecule collection in SQLite so the
// browser has something to show while the live listing loads.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"molecule-browser/internal/catalog"
)

// ErrNoSnapshot is returned by LoadSnapshot before anything was stored.
var ErrNoSnapshot = errors.New("no snapshot stored")

// Store is safe for concurrent use.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Snapshot is a stored collection in its original order.
type Snapshot struct {
	Records   []catalog.Record
	FetchedAt time.Time
}

// Open creates or opens the database at path. ":memory:" is accepted for
// tests.
func Open(path string) (*Store, error) {
	connStr := path
	if path == ":memory:" {
		connStr = "file::memory:?cache=shared"
	} else if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("cache dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if path != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}

	s := &Store{db: db}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return s, nil
}

func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshot_records (
		position INTEGER PRIMARY KEY,
		molecule_id INTEGER NOT NULL,
		payload TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS snapshot_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// ReplaceSnapshot stores records as the new snapshot, dropping the previous
// one. Readers see either the old or the new collection.
func (s *Store) ReplaceSnapshot(ctx context.Context, records []catalog.Record, fetchedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM snapshot_records`); err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO snapshot_records (position, molecule_id, payload) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, r := range records {
		payload, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("encode record %d: %w", r.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, i, r.ID, string(payload)); err != nil {
			return fmt.Errorf("insert record %d: %w", r.ID, err)
		}
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO snapshot_meta (key, value) VALUES ('fetched_at', ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		strconv.FormatInt(fetchedAt.UnixNano(), 10),
	); err != nil {
		return fmt.Errorf("write fetch time: %w", err)
	}
	return tx.Commit()
}

// LoadSnapshot returns the stored collection in insertion order.
func (s *Store) LoadSnapshot(ctx context.Context) (Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM snapshot_meta WHERE key = 'fetched_at'`).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, ErrNoSnapshot
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("read fetch time: %w", err)
	}
	nanos, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return Snapshot{}, fmt.Errorf("parse fetch time %q: %w", raw, err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT payload FROM snapshot_records ORDER BY position`)
	if err != nil {
		return Snapshot{}, fmt.Errorf("query snapshot: %w", err)
	}
	defer rows.Close()

	snap := Snapshot{Records: []catalog.Record{}, FetchedAt: time.Unix(0, nanos)}
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return Snapshot{}, err
		}
		var r catalog.Record
		if err := json.Unmarshal([]byte(payload), &r); err != nil {
			return Snapshot{}, fmt.Errorf("decode record: %w", err)
		}
		snap.Records = append(snap.Records, r)
	}
	return snap, rows.Err()
}
