// Package store persists the result log as an append-only CSV file.
package store

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"quizdesk/internal/domain"
	"quizdesk/internal/record"
)

// FileStore owns the persisted result log. Each operation opens and
// closes the file on its own; no lock is held across calls.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the location of the persisted log.
func (s *FileStore) Path() string {
	return s.path
}

// Append writes one encoded record, creating the file with a header row
// first if it does not exist yet. Existing content is never touched.
func (s *FileStore) Append(r domain.ResultRecord) error {
	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open result log: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat result log: %w", err)
	}
	if info.Size() == 0 {
		if _, err := f.WriteString(record.Header + "\n"); err != nil {
			return fmt.Errorf("write result log header: %w", err)
		}
	}
	if _, err := f.WriteString(record.EncodeLine(r) + "\n"); err != nil {
		return fmt.Errorf("write result record: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("flush result log: %w", err)
	}
	return nil
}

// LoadAll decodes every record in the log, oldest first. Malformed rows
// are skipped rather than aborting the load. A missing log is an empty
// history, not an error.
func (s *FileStore) LoadAll() ([]domain.ResultRecord, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read result log: %w", err)
	}

	lines := record.SplitRecords(string(data))
	var out []domain.ResultRecord
	for i, line := range lines {
		if i == 0 || line == "" {
			continue // header
		}
		rec, err := record.DecodeLine(line)
		if err != nil {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// ClearAll deletes the log file entirely. Irreversible; callers gate it
// behind explicit confirmation.
func (s *FileStore) ClearAll() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("clear result log: %w", err)
	}
	return nil
}

// ExportCopy writes a byte-for-byte copy of the log to dst, overwriting
// any existing file there.
func (s *FileStore) ExportCopy(dst string) error {
	src, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("open result log: %w", err)
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return fmt.Errorf("copy result log: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close export file: %w", err)
	}
	return nil
}

// Raw returns the current log bytes as-is. A missing log yields nil.
func (s *FileStore) Raw() ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read result log: %w", err)
	}
	return data, nil
}
