// Package history remembers when each tunnel last came up successfully. It
// backs `list --recent`.
package history

import (
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/treykane/wg-manager/internal/appconfig"
)

type tunnelRecord struct {
	LastUp time.Time `json:"last_up"`
}

type document struct {
	Tunnels map[string]tunnelRecord `json:"tunnels"`
}

// mu serializes the read-modify-write in Touch. Start and stop effects run
// concurrently, so two bring-ups can finish together.
var mu sync.Mutex

var now = time.Now

// Touch records that name came up now.
func Touch(name string) error {
	mu.Lock()
	defer mu.Unlock()

	path, err := appconfig.FilePath("history.json")
	if err != nil {
		return err
	}
	doc := read(path)
	doc.Tunnels[name] = tunnelRecord{LastUp: now().UTC()}
	return write(path, doc)
}

// LastUsed returns the last successful bring-up of each recorded tunnel.
func LastUsed() (map[string]time.Time, error) {
	mu.Lock()
	defer mu.Unlock()

	path, err := appconfig.FilePath("history.json")
	if err != nil {
		return nil, err
	}
	doc := read(path)
	out := make(map[string]time.Time, len(doc.Tunnels))
	for name, rec := range doc.Tunnels {
		out[name] = rec.LastUp
	}
	return out, nil
}

// SortRecent returns names ordered by most recent bring-up. Tunnels that
// never came up follow in name order. The input is not modified.
func SortRecent(names []string, lastUp map[string]time.Time) []string {
	out := slices.Clone(names)
	slices.SortStableFunc(out, func(a, b string) int {
		if c := lastUp[b].Compare(lastUp[a]); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})
	return out
}

// read loads the history document. A missing or unreadable file is an empty
// history; it only orders the list.
func read(path string) document {
	doc := document{Tunnels: map[string]tunnelRecord{}}
	raw, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Debug("history unreadable", "path", path, "error", err)
		}
		return doc
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		slog.Debug("history corrupt, starting over", "path", path, "error", err)
	}
	if doc.Tunnels == nil {
		doc.Tunnels = map[string]tunnelRecord{}
	}
	return doc
}

func write(path string, doc document) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".history-*.json")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
