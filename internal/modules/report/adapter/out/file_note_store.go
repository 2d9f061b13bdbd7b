package out

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	reportout "activitylog/internal/modules/report/port/out"
)

type FileNoteStore struct{}

func NewFileNoteStore() reportout.NoteStore {
	return FileNoteStore{}
}

func (FileNoteStore) Read(_ context.Context, path string) (string, bool, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read note: %w", err)
	}
	return string(b), true, nil
}

// Write replaces the note through a temp file in the same directory.
func (FileNoteStore) Write(_ context.Context, path, content string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create note dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".report-*.md")
	if err != nil {
		return fmt.Errorf("create temp note: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		return fmt.Errorf("write note: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write note: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace note: %w", err)
	}
	return nil
}

func (FileNoteStore) Resolve(_ context.Context, path, name string) (string, error) {
	if strings.HasSuffix(path, string(filepath.Separator)) || strings.HasSuffix(path, "/") {
		return filepath.Join(path, name), nil
	}
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return path, nil
	case err != nil:
		return "", fmt.Errorf("stat note path: %w", err)
	case info.IsDir():
		return filepath.Join(path, name), nil
	default:
		return path, nil
	}
}
