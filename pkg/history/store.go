// Package history keeps a SQLite ledger of collection runs and the files
// each run wrote.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schema string

// Run summarizes one invocation of the collector
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Queries    int
	Downloaded int
	Failed     int
}

// Download is one file written during a run
type Download struct {
	RunID        string
	Category     string
	Query        string
	URL          string
	Path         string
	Size         int64
	SHA256       string
	DownloadedAt time.Time
}

// Store is the SQLite-backed ledger
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the ledger at path. ":memory:" gives a throwaway store.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	// a single connection keeps :memory: databases shared and serializes writers
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply history schema: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// StartRun records a new run and returns its ID
func (s *Store) StartRun(ctx context.Context) (string, error) {
	id := uuid.NewString()

	_, err := s.db.ExecContext(ctx,
		`insert into runs (id, started_at) values (?, ?)`,
		id, s.now().UnixMilli())
	if err != nil {
		return "", fmt.Errorf("failed to start run: %w", err)
	}
	return id, nil
}

// FinishRun stores the final counters of a run
func (s *Store) FinishRun(ctx context.Context, id string, queries, downloaded, failed int) error {
	res, err := s.db.ExecContext(ctx,
		`update runs set finished_at = ?, queries = ?, downloaded = ?, failed = ? where id = ?`,
		s.now().UnixMilli(), queries, downloaded, failed, id)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("run %s not found", id)
	}
	return nil
}

// RecordDownload appends a written file to the ledger
func (s *Store) RecordDownload(ctx context.Context, d Download) error {
	at := d.DownloadedAt
	if at.IsZero() {
		at = s.now()
	}

	_, err := s.db.ExecContext(ctx,
		`insert into downloads (run_id, category, query, url, path, size, sha256, downloaded_at)
		 values (?, ?, ?, ?, ?, ?, ?, ?)`,
		d.RunID, d.Category, d.Query, d.URL, d.Path, d.Size, d.SHA256, at.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to record download: %w", err)
	}
	return nil
}

// RecentDownloads returns up to limit downloads, newest first
func (s *Store) RecentDownloads(ctx context.Context, limit int) ([]Download, error) {
	rows, err := s.db.QueryContext(ctx,
		`select run_id, category, query, url, path, size, sha256, downloaded_at
		 from downloads order by downloaded_at desc, id desc limit ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query downloads: %w", err)
	}
	defer rows.Close()

	var downloads []Download
	for rows.Next() {
		var d Download
		var at int64
		if err := rows.Scan(&d.RunID, &d.Category, &d.Query, &d.URL, &d.Path, &d.Size, &d.SHA256, &at); err != nil {
			return nil, fmt.Errorf("failed to scan download: %w", err)
		}
		d.DownloadedAt = time.UnixMilli(at)
		downloads = append(downloads, d)
	}
	return downloads, rows.Err()
}

// Runs returns up to limit runs, newest first
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`select id, started_at, coalesce(finished_at, 0), queries, downloaded, failed
		 from runs order by started_at desc limit ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var started, finished int64
		if err := rows.Scan(&r.ID, &started, &finished, &r.Queries, &r.Downloaded, &r.Failed); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.StartedAt = time.UnixMilli(started)
		if finished > 0 {
			r.FinishedAt = time.UnixMilli(finished)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// HasChecksum reports whether a file with the given SHA-256 was recorded before
func (s *Store) HasChecksum(ctx context.Context, sum string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `select count(*) from downloads where sha256 = ?`, sum).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to query checksum: %w", err)
	}
	return n > 0, nil
}
