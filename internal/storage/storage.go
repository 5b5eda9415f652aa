// Package storage provides the flat-file store backing all persisted
// state. Files are addressed by logical name within a single storage root
// that is resolved and validated exactly once at construction; writes
// replace the whole file, so a failed write never corrupts previously
// flushed state.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/portfoliokit/pricesync/internal/apperrors"
)

// Store reads and writes named data files under a validated root
// directory.
type Store struct {
	root string
}

// New validates that root exists (creating it if needed) and is writable,
// and returns a Store bound to it. A root that cannot be prepared is a
// configuration error, fatal to the caller.
func New(root string) (*Store, error) {
	if root == "" {
		return nil, fmt.Errorf("%w: empty storage root", apperrors.ErrNoWritableStorage)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", apperrors.ErrNoWritableStorage, root, err)
	}
	probe, err := os.CreateTemp(root, ".writable-*")
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", apperrors.ErrNoWritableStorage, root, err)
	}
	name := probe.Name()
	probe.Close()
	os.Remove(name)
	return &Store{root: root}, nil
}

// Root returns the resolved storage root.
func (s *Store) Root() string { return s.root }

// Path returns the absolute path of a logical file name.
func (s *Store) Path(name string) string { return filepath.Join(s.root, name) }

// Exists reports whether the named file is present.
func (s *Store) Exists(name string) bool {
	_, err := os.Stat(s.Path(name))
	return err == nil
}

// Read returns the content of the named file. A missing file reads as
// empty, matching whole-file snapshot semantics.
func (s *Store) Read(name string) (string, error) {
	data, err := os.ReadFile(s.Path(name))
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read data file %q: %w", name, err)
	}
	return string(data), nil
}

// Write replaces the named file with content.
func (s *Store) Write(name, content string) error {
	if err := os.WriteFile(s.Path(name), []byte(content), 0o644); err != nil {
		return fmt.Errorf("write data file %q: %w", name, err)
	}
	return nil
}

// Append appends content to the named file, creating it if needed.
func (s *Store) Append(name, content string) error {
	f, err := os.OpenFile(s.Path(name), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open data file %q: %w", name, err)
	}
	defer f.Close()
	if _, err := f.WriteString(content); err != nil {
		return fmt.Errorf("append data file %q: %w", name, err)
	}
	return nil
}

// List returns the logical names of files whose name starts with prefix.
func (s *Store) List(prefix string) ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("list data files: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasPrefix(e.Name(), prefix) {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// FileSafe converts a symbol into a form safe for use inside a file name.
func FileSafe(symbol string) string {
	r := strings.NewReplacer(":", "_", "/", "_", "\\", "_", " ", "_")
	return r.Replace(symbol)
}
