// Package manifest holds the generated route manifest: the JSON array of
// routes the dashboard registers at boot, and the file store the server
// keeps it in.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

type Meta struct {
	RequiresAuth bool     `json:"requiresAuth"`
	Roles        []string `json:"roles,omitempty"`
	Layout       string   `json:"layout,omitempty"`
	Title        string   `json:"title,omitempty"`
}

type Entry struct {
	Path          string `json:"path"`
	Name          string `json:"name"`
	ComponentPath string `json:"componentPath"`
	Meta          Meta   `json:"meta"`
}

// Complete reports whether path, name and componentPath are all set.
func (e Entry) Complete() bool {
	return e.Path != "" && e.Name != "" && e.ComponentPath != ""
}

// AliasPrefix is the source-root alias used in component paths.
const AliasPrefix = "@/"

// SourcePath maps an aliased component path onto the source tree, turning
// "@/views/x.vue" into "src/views/x.vue". Other paths are returned unchanged.
func SourcePath(componentPath string) string {
	if strings.HasPrefix(componentPath, AliasPrefix) {
		return "src/" + strings.TrimPrefix(componentPath, AliasPrefix)
	}
	return componentPath
}

// Store is the on-disk manifest. Writes replace the whole file.
type Store struct {
	mu   sync.Mutex
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string {
	return s.path
}

// Read returns every entry. A missing file is an empty manifest.
func (s *Store) Read() ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

func (s *Store) Write(entries []Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(entries)
}

// Add appends e unless an entry with the same path exists. It reports
// whether the manifest changed.
func (s *Store) Add(e Entry) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.read()
	if err != nil {
		return false, err
	}
	for _, existing := range entries {
		if existing.Path == e.Path {
			return false, nil
		}
	}
	return true, s.write(append(entries, e))
}

// RemoveByPath drops every entry with the given path and returns the first
// one removed.
func (s *Store) RemoveByPath(path string) (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.read()
	if err != nil {
		return nil, err
	}
	var removed *Entry
	kept := entries[:0]
	for i := range entries {
		if entries[i].Path == path {
			if removed == nil {
				e := entries[i]
				removed = &e
			}
			continue
		}
		kept = append(kept, entries[i])
	}
	if removed == nil {
		return nil, nil
	}
	return removed, s.write(kept)
}

func (s *Store) read() ([]Entry, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return []Entry{}, nil
	}
	if err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return []Entry{}, nil
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse route manifest %s: %w", s.path, err)
	}
	if entries == nil {
		entries = []Entry{}
	}
	return entries, nil
}

func (s *Store) write(entries []Entry) error {
	if entries == nil {
		entries = []Entry{}
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
