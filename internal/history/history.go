// Package history keeps a log of every downloader invocation in SQLite.
// Links with a successful record are not dispatched again, even after a
// watermark reset.
package history

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // SQLite driver registration.

	"github.com/equescalculi/newsfeed-media-dl/internal/model"
)

// FileName is the history database kept in the settings directory.
const FileName = ".newsfeed_media_dl.db"

const timeLayout = "2006-01-02T15:04:05Z"

// schemaFS holds the goose migrations for the downloads table.
//
//go:embed migrations/*.sql
var schemaFS embed.FS

// Store implements the download log backed by a SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens a SQLite database at dsn and brings the downloads schema up to
// date.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(schemaFS)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set migration dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("apply downloads schema: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts one row for a downloader invocation. dlErr is nil for a
// successful download.
func (s *Store) Record(ctx context.Context, feedURL, link, downloaderName string, dlErr error) error {
	status := model.DownloadOK
	errText := ""
	if dlErr != nil {
		status = model.DownloadFailed
		errText = dlErr.Error()
	}
	now := time.Now().UTC().Format(timeLayout)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO downloads (feed_url, link, downloader, status, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		feedURL, link, downloaderName, string(status), errText, now,
	)
	if err != nil {
		return fmt.Errorf("insert download: %w", err)
	}
	return nil
}

// Succeeded reports whether any previous invocation for link completed
// successfully.
func (s *Store) Succeeded(ctx context.Context, link string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM downloads WHERE link = ? AND status = ?`,
		link, string(model.DownloadOK),
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check download: %w", err)
	}
	return count > 0, nil
}

// List returns all recorded downloads, newest first.
func (s *Store) List(ctx context.Context) ([]model.Download, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, feed_url, link, downloader, status, error, created_at
		 FROM downloads ORDER BY id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query downloads: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var downloads []model.Download
	for rows.Next() {
		var d model.Download
		var status, created string
		if err := rows.Scan(&d.ID, &d.FeedURL, &d.Link, &d.Downloader, &status, &d.Error, &created); err != nil {
			return nil, fmt.Errorf("scan download: %w", err)
		}
		d.Status = model.DownloadStatus(status)
		d.CreatedAt, _ = time.Parse(timeLayout, created)
		downloads = append(downloads, d)
	}
	return downloads, rows.Err()
}
