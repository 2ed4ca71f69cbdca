// Package bundle keeps named groups of tunnels in bundles.yaml and brings a
// group up or down in one go.
package bundle

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/treykane/wg-manager/internal/appconfig"
	"github.com/treykane/wg-manager/internal/store"
	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned for a bundle name that has no definition.
var ErrNotFound = errors.New("bundle not found")

// Catalog reports whether a tunnel configuration exists. *store.Store
// satisfies it.
type Catalog interface {
	Contains(name string) bool
}

// Bundle is a named, ordered list of tunnel names. The name is the key in
// bundles.yaml.
type Bundle struct {
	Name    string   `yaml:"-" json:"name"`
	Tunnels []string `yaml:"tunnels,flow" json:"tunnels"`
}

// Missing returns the tunnels of b that have no configuration in c.
func (b Bundle) Missing(c Catalog) []string {
	var out []string
	for _, t := range b.Tunnels {
		if !c.Contains(t) {
			out = append(out, t)
		}
	}
	return out
}

type document struct {
	Bundles map[string]Bundle `yaml:"bundles"`
}

// File is the bundles.yaml document.
type File struct {
	path string
}

// Open returns the bundle file in the wg-manager config directory.
func Open() (*File, error) {
	path, err := appconfig.FilePath("bundles.yaml")
	if err != nil {
		return nil, err
	}
	return NewFile(path), nil
}

// NewFile returns a bundle file at path. The file need not exist yet.
func NewFile(path string) *File {
	return &File{path: path}
}

// List returns every bundle sorted by name.
func (f *File) List() ([]Bundle, error) {
	doc, err := f.read()
	if err != nil {
		return nil, err
	}
	out := make([]Bundle, 0, len(doc.Bundles))
	for _, b := range doc.Bundles {
		out = append(out, b)
	}
	slices.SortFunc(out, func(a, b Bundle) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

// Get returns the bundle called name.
func (f *File) Get(name string) (Bundle, error) {
	doc, err := f.read()
	if err != nil {
		return Bundle{}, err
	}
	b, ok := doc.Bundles[name]
	if !ok {
		return Bundle{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return b, nil
}

// Put creates or replaces a bundle. Tunnel names must be valid config names
// and may appear only once; whether they exist is checked when the bundle
// runs.
func (f *File) Put(name string, tunnels []string) (Bundle, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Bundle{}, errors.New("bundle name cannot be empty")
	}
	if len(tunnels) == 0 {
		return Bundle{}, errors.New("bundle must include at least one tunnel")
	}
	b := Bundle{Name: name, Tunnels: make([]string, 0, len(tunnels))}
	for _, t := range tunnels {
		t = strings.TrimSpace(t)
		if err := store.ValidateName(t); err != nil {
			return Bundle{}, fmt.Errorf("bundle %s: %w", name, err)
		}
		if slices.Contains(b.Tunnels, t) {
			return Bundle{}, fmt.Errorf("bundle %s: tunnel %s listed twice", name, t)
		}
		b.Tunnels = append(b.Tunnels, t)
	}

	doc, err := f.read()
	if err != nil {
		return Bundle{}, err
	}
	doc.Bundles[name] = b
	return b, f.write(doc)
}

// Delete removes the bundle called name.
func (f *File) Delete(name string) error {
	doc, err := f.read()
	if err != nil {
		return err
	}
	if _, ok := doc.Bundles[name]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	delete(doc.Bundles, name)
	return f.write(doc)
}

func (f *File) read() (document, error) {
	doc := document{Bundles: map[string]Bundle{}}
	raw, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return doc, err
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return doc, fmt.Errorf("parse %s: %w", f.path, err)
	}
	if doc.Bundles == nil {
		doc.Bundles = map[string]Bundle{}
	}
	for name, b := range doc.Bundles {
		b.Name = name
		doc.Bundles[name] = b
	}
	return doc, nil
}

// write replaces the file through a temp file in the same directory so a
// reader never sees a half-written document.
func (f *File) write(doc document) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	raw, err := yaml.Marshal(doc)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".bundles-*.yaml")
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
	return os.Rename(tmp.Name(), f.path)
}
