// Package history keeps the recently played files, the playback position
// of each and per-file markers, backed by SQLite.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/jscyril/movix/api"
	playerrors "github.com/jscyril/movix/pkg/errors"
)

// MaxRecent is the number of recent files kept
const MaxRecent = 20

// Store manages history persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

const schema = `
CREATE TABLE IF NOT EXISTS recent_files (
	path        TEXT PRIMARY KEY,
	id          TEXT NOT NULL,
	name        TEXT NOT NULL,
	duration_ms INTEGER NOT NULL DEFAULT 0,
	last_played INTEGER NOT NULL,
	seq         INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_recent_files_seq ON recent_files(seq);
CREATE TABLE IF NOT EXISTS positions (
	path        TEXT PRIMARY KEY,
	position_ms INTEGER NOT NULL,
	updated_at  INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS markers (
	id          TEXT PRIMARY KEY,
	path        TEXT NOT NULL,
	position_ms INTEGER NOT NULL,
	title       TEXT NOT NULL,
	created_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_markers_path ON markers(path, position_ms);`

// Open initializes or connects to the history database.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("ensure history directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db, path: dbPath}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// RecordPlay moves a file to the top of the recent list, adding it if
// needed, and drops entries beyond MaxRecent. Files are identified by
// path; an existing entry keeps its ID.
func (s *Store) RecordPlay(ctx context.Context, file api.RecentFile) (api.RecentFile, error) {
	if file.Path == "" {
		return file, errors.New("record play: empty path")
	}
	if file.ID == "" {
		file.ID = uuid.NewString()
	}
	if file.LastPlayed.IsZero() {
		file.LastPlayed = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return file, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx, `
INSERT INTO recent_files (path, id, name, duration_ms, last_played, seq)
VALUES (?, ?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM recent_files))
ON CONFLICT(path) DO UPDATE SET
	name = excluded.name,
	duration_ms = excluded.duration_ms,
	last_played = excluded.last_played,
	seq = excluded.seq`,
		file.Path, file.ID, file.Name, file.Duration.Milliseconds(), file.LastPlayed.UnixNano())
	if err != nil {
		return file, fmt.Errorf("record play: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
DELETE FROM recent_files WHERE path NOT IN (
	SELECT path FROM recent_files ORDER BY seq DESC LIMIT ?
)`, MaxRecent)
	if err != nil {
		return file, fmt.Errorf("trim recent files: %w", err)
	}

	if err := tx.QueryRowContext(ctx, `SELECT id FROM recent_files WHERE path = ?`, file.Path).Scan(&file.ID); err != nil {
		return file, fmt.Errorf("read recent file: %w", err)
	}
	return file, tx.Commit()
}

// Recent returns the recent files, newest first
func (s *Store) Recent(ctx context.Context) ([]api.RecentFile, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, name, path, duration_ms, last_played
FROM recent_files ORDER BY seq DESC`)
	if err != nil {
		return nil, fmt.Errorf("query recent files: %w", err)
	}
	defer rows.Close()

	var files []api.RecentFile
	for rows.Next() {
		var (
			f          api.RecentFile
			durationMs int64
			lastPlayed int64
		)
		if err := rows.Scan(&f.ID, &f.Name, &f.Path, &durationMs, &lastPlayed); err != nil {
			return nil, fmt.Errorf("scan recent file: %w", err)
		}
		f.Duration = time.Duration(durationMs) * time.Millisecond
		f.LastPlayed = time.Unix(0, lastPlayed)
		files = append(files, f)
	}
	return files, rows.Err()
}

// Remove deletes one recent entry by ID
func (s *Store) Remove(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM recent_files WHERE id = ?`, id); err != nil {
		return fmt.Errorf("remove recent file: %w", err)
	}
	return nil
}

// Clear empties the recent list. Saved positions are kept.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM recent_files`); err != nil {
		return fmt.Errorf("clear recent files: %w", err)
	}
	return nil
}

// SavePosition remembers where playback of path stopped
func (s *Store) SavePosition(ctx context.Context, path string, position time.Duration) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO positions (path, position_ms, updated_at) VALUES (?, ?, ?)
ON CONFLICT(path) DO UPDATE SET position_ms = excluded.position_ms, updated_at = excluded.updated_at`,
		path, position.Milliseconds(), time.Now().UnixNano())
	if err != nil {
		return fmt.Errorf("save position: %w", err)
	}
	return nil
}

// Position returns the remembered position of path
func (s *Store) Position(ctx context.Context, path string) (time.Duration, bool, error) {
	var ms int64
	err := s.db.QueryRowContext(ctx, `SELECT position_ms FROM positions WHERE path = ?`, path).Scan(&ms)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("read position: %w", err)
	}
	return time.Duration(ms) * time.Millisecond, true, nil
}

// ClearPosition forgets the position of path, used when a file plays to
// the end
func (s *Store) ClearPosition(ctx context.Context, path string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM positions WHERE path = ?`, path); err != nil {
		return fmt.Errorf("clear position: %w", err)
	}
	return nil
}

// AddMarker saves a marker at position in path. A blank title becomes
// "Marker N", N counting the file's markers including this one.
func (s *Store) AddMarker(ctx context.Context, path string, position time.Duration, title string) (api.Marker, error) {
	marker := api.Marker{
		ID:       uuid.NewString(),
		Path:     path,
		Position: position,
		Title:    strings.TrimSpace(title),
	}
	if path == "" {
		return marker, errors.New("add marker: empty path")
	}
	if marker.Position < 0 {
		marker.Position = 0
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return marker, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if marker.Title == "" {
		var count int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM markers WHERE path = ?`, path).Scan(&count); err != nil {
			return marker, fmt.Errorf("count markers: %w", err)
		}
		marker.Title = fmt.Sprintf("Marker %d", count+1)
	}

	_, err = tx.ExecContext(ctx, `
INSERT INTO markers (id, path, position_ms, title, created_at) VALUES (?, ?, ?, ?, ?)`,
		marker.ID, path, marker.Position.Milliseconds(), marker.Title, time.Now().UnixNano())
	if err != nil {
		return marker, fmt.Errorf("add marker: %w", err)
	}
	marker.Position = time.Duration(marker.Position.Milliseconds()) * time.Millisecond
	return marker, tx.Commit()
}

// Markers returns the markers of path ordered by position
func (s *Store) Markers(ctx context.Context, path string) ([]api.Marker, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, path, position_ms, title FROM markers
WHERE path = ? ORDER BY position_ms, created_at`, path)
	if err != nil {
		return nil, fmt.Errorf("query markers: %w", err)
	}
	defer rows.Close()

	var markers []api.Marker
	for rows.Next() {
		var (
			m  api.Marker
			ms int64
		)
		if err := rows.Scan(&m.ID, &m.Path, &ms, &m.Title); err != nil {
			return nil, fmt.Errorf("scan marker: %w", err)
		}
		m.Position = time.Duration(ms) * time.Millisecond
		markers = append(markers, m)
	}
	return markers, rows.Err()
}

// RenameMarker changes a marker's title. Blank titles are rejected.
func (s *Store) RenameMarker(ctx context.Context, id, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return playerrors.ErrEmptyMarkerTitle
	}
	res, err := s.db.ExecContext(ctx, `UPDATE markers SET title = ? WHERE id = ?`, title, id)
	if err != nil {
		return fmt.Errorf("rename marker: %w", err)
	}
	return markerAffected(res)
}

// RemoveMarker deletes one marker
func (s *Store) RemoveMarker(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM markers WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("remove marker: %w", err)
	}
	return markerAffected(res)
}

func markerAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return playerrors.ErrMarkerNotFound
	}
	return nil
}
