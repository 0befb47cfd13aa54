package duckdb

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"
)

// FileFingerprint holds stat-based identity for a file.
type FileFingerprint struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// StatFile creates a FileFingerprint from an on-disk file.
func StatFile(path string) (FileFingerprint, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileFingerprint{}, err
	}
	return FileFingerprint{
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

// SourceLoaded reports whether fp was already loaded and is unchanged since.
func (s *Store) SourceLoaded(fp FileFingerprint) (bool, error) {
	var size int64
	var modTime time.Time
	err := s.db.QueryRow(`SELECT size, mod_time FROM sources WHERE path=?`, fp.Path).Scan(&size, &modTime)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query source: %w", err)
	}
	return size == fp.Size && modTime.Equal(fp.ModTime.UTC().Truncate(time.Microsecond)), nil
}

// MarkSourceLoaded records fp and the number of records loaded from it.
func (s *Store) MarkSourceLoaded(fp FileFingerprint, records int) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO sources (path, size, mod_time, record_count) VALUES (?, ?, ?, ?)`,
		fp.Path, fp.Size, fp.ModTime.UTC().Truncate(time.Microsecond), records)
	if err != nil {
		return fmt.Errorf("mark source loaded: %w", err)
	}
	return nil
}
