package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SQLiteSlot implements [Slot] on a SQLite table, and additionally records
// completed song downloads for the history command.
type SQLiteSlot struct {
	db *sql.DB
}

// NewSQLiteSlot creates the backing tables if needed and returns the store.
func NewSQLiteSlot(db *sql.DB) (*SQLiteSlot, error) {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS session_slots (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS download_history (
			id TEXT PRIMARY KEY,
			track_id TEXT NOT NULL,
			title TEXT NOT NULL,
			artist TEXT NOT NULL,
			file_path TEXT NOT NULL,
			downloaded_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(track_id)
		)`,
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("failed to create storage schema: %w", err)
		}
	}

	return &SQLiteSlot{db: db}, nil
}

func (s *SQLiteSlot) Get(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM session_slots WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read slot %q: %w", key, err)
	}
	return value, true, nil
}

func (s *SQLiteSlot) Set(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO session_slots (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("failed to write slot %q: %w", key, err)
	}
	return nil
}

func (s *SQLiteSlot) Delete(key string) error {
	if _, err := s.db.Exec("DELETE FROM session_slots WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete slot %q: %w", key, err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *SQLiteSlot) Close() error {
	return s.db.Close()
}

// DownloadRecord is a completed song download.
type DownloadRecord struct {
	ID           string
	TrackID      string
	Title        string
	Artist       string
	FilePath     string
	DownloadedAt time.Time
}

// RecordDownload inserts a download into the history.
//
// A repeat download of the same track overwrites the prior row, since the
// newer file path supersedes it.
func (s *SQLiteSlot) RecordDownload(rec DownloadRecord) error {
	_, err := s.db.Exec(
		`INSERT INTO download_history (id, track_id, title, artist, file_path) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(track_id) DO UPDATE SET id = excluded.id, title = excluded.title,
			artist = excluded.artist, file_path = excluded.file_path, downloaded_at = CURRENT_TIMESTAMP`,
		rec.ID, rec.TrackID, rec.Title, rec.Artist, rec.FilePath,
	)
	if err != nil {
		return fmt.Errorf("failed to record download: %w", err)
	}
	return nil
}

// Downloads lists the download history, most recent first.
func (s *SQLiteSlot) Downloads(limit int) ([]DownloadRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.Query(
		`SELECT id, track_id, title, artist, file_path, downloaded_at
		 FROM download_history ORDER BY downloaded_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query download history: %w", err)
	}
	defer rows.Close()

	var records []DownloadRecord
	for rows.Next() {
		var rec DownloadRecord
		if err := rows.Scan(&rec.ID, &rec.TrackID, &rec.Title, &rec.Artist, &rec.FilePath, &rec.DownloadedAt); err != nil {
			return nil, fmt.Errorf("failed to scan download record: %w", err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}
