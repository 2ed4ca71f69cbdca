// Package store reads and writes WireGuard tunnel configuration files.
//
// Contents are opaque text: nothing here parses or validates WireGuard
// syntax. The configuration directory is usually readable only by root, so
// every failure degrades to an empty result instead of an error. Callers that
// need to tell "missing" from "unreadable" use Lookup.
package store

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/treykane/wg-manager/internal/util"
)

// ErrInvalidName is returned for names that cannot map to a file directly
// inside the configuration directory.
var ErrInvalidName = errors.New("invalid tunnel name")

// LookupStatus separates the failure kinds that Read collapses into "".
type LookupStatus int

const (
	Found LookupStatus = iota
	NotFound
	Failed
)

func (s LookupStatus) String() string {
	switch s {
	case Found:
		return "found"
	case NotFound:
		return "not-found"
	default:
		return "failed"
	}
}

// Store is rooted at one configuration directory.
type Store struct {
	dir string
}

// New creates a store for dir. The directory is not touched until used.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the configuration directory.
func (s *Store) Dir() string { return s.dir }

// Path returns the file backing name.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name+util.ConfigExt)
}

// ValidateName rejects names that are empty or would escape the directory.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: empty", ErrInvalidName)
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// List returns the base names of the regular .conf files in the directory,
// in enumeration order. Symlinks are followed. A missing or unreadable
// directory yields an empty list.
func (s *Store) List() []string {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		slog.Debug("list tunnel configs", "dir", s.dir, "error", err)
		return []string{}
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		base := e.Name()
		if !strings.HasSuffix(base, util.ConfigExt) {
			continue
		}
		name := strings.TrimSuffix(base, util.ConfigExt)
		if name == "" {
			continue
		}
		st, err := os.Stat(filepath.Join(s.dir, base))
		if err != nil || !st.Mode().IsRegular() {
			continue
		}
		names = append(names, name)
	}
	return names
}

// Contains reports whether name is currently listed.
func (s *Store) Contains(name string) bool {
	for _, n := range s.List() {
		if n == name {
			return true
		}
	}
	return false
}

// Read returns the contents of name, or "" when it is missing or unreadable.
// An existing empty file also reads as "".
func (s *Store) Read(name string) string {
	text, _ := s.Lookup(name)
	return text
}

// Lookup returns the contents of name together with how the read ended.
func (s *Store) Lookup(name string) (string, LookupStatus) {
	if err := ValidateName(name); err != nil {
		return "", NotFound
	}
	b, err := os.ReadFile(s.Path(name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", NotFound
		}
		slog.Debug("read tunnel config", "name", name, "error", err)
		return "", Failed
	}
	return string(b), Found
}

// Write replaces the contents of name with text. A buffer holding only a
// newline is never written. Failures are logged at debug level and dropped.
func (s *Store) Write(name, text string) {
	if text == util.BlankBuffer {
		slog.Debug("skip writing blank buffer", "name", name)
		return
	}
	if err := s.write(name, text); err != nil {
		slog.Debug("write tunnel config", "name", name, "error", err)
	}
}

func (s *Store) write(name, text string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	// 0600: configuration files carry the interface private key.
	f, err := os.OpenFile(s.Path(name), os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()
	if _, err := f.WriteString(text); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("flush %s: %w", name, err)
	}
	return nil
}
