package backlog

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// ErrDocumentNotFound is returned when a planning document does not exist.
var ErrDocumentNotFound = errors.New("document not found")

// LoadDocument reads a planning document.
func LoadDocument(path string) (string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", ErrDocumentNotFound, path)
	}
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}

// SaveDocument writes text back to path, keeping the file's permissions.
func SaveDocument(path, text string) error {
	perm := fs.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}
	if err := os.WriteFile(path, []byte(text), perm); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
