// Package archive reads and writes the static JSON archive consumed by the
// website, the bot and the MCP server.
package archive

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ErrNotFound is returned when an archive document does not exist.
var ErrNotFound = errors.New("archive document not found")

type Store struct {
	Root string // e.g. "data"
}

func NewStore(root string) *Store {
	return &Store{Root: root}
}

func (s *Store) Path(rel string) string {
	return filepath.Join(s.Root, filepath.FromSlash(rel))
}

func (s *Store) Exists(rel string) bool {
	_, err := os.Stat(s.Path(rel))
	return err == nil
}

// ModTime returns the modification time of a document, or false if it is
// missing.
func (s *Store) ModTime(rel string) (time.Time, bool) {
	fi, err := os.Stat(s.Path(rel))
	if err != nil {
		return time.Time{}, false
	}
	return fi.ModTime(), true
}

// Encode renders v the way every archive document is written: two-space
// indentation and a trailing newline.
func Encode(v any) ([]byte, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

// WriteJSON replaces a document. The new content is written to a temporary
// file first so readers never see a partial document.
func (s *Store) WriteJSON(rel string, v any) error {
	body, err := Encode(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", rel, err)
	}

	path := s.Path(rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", rel, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("writing %s: %w", rel, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", rel, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", rel, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", rel, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("writing %s: %w", rel, err)
	}
	return nil
}

// Remove deletes the document at rel. A missing document is not an error.
func (s *Store) Remove(rel string) error {
	if err := os.Remove(s.Path(rel)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing %s: %w", rel, err)
	}
	return nil
}

func (s *Store) ReadRaw(rel string) ([]byte, error) {
	b, err := os.ReadFile(s.Path(rel))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", rel, ErrNotFound)
	}
	return b, err
}

func (s *Store) ReadJSON(rel string, v any) error {
	b, err := s.ReadRaw(rel)
	if err != nil {
		return err
	}
	if err := json.NewDecoder(bytes.NewReader(b)).Decode(v); err != nil {
		return fmt.Errorf("decoding %s: %w", rel, err)
	}
	return nil
}

// NeedsProcessing reports whether the document at rel is missing or older than
// any of the source files. Missing sources are ignored.
func (s *Store) NeedsProcessing(rel string, sources ...string) bool {
	out, ok := s.ModTime(rel)
	if !ok {
		return true
	}
	for _, src := range sources {
		fi, err := os.Stat(src)
		if err != nil {
			continue
		}
		if fi.ModTime().After(out) {
			return true
		}
	}
	return false
}
