package approval

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"
)

// fileFormat is the on-disk TOML shape: one table per project identity,
// each holding an ordered list of approved template strings. Matches the
// `[projects."<identity>"] approved-commands = [...]` shape spec §6
// describes for the user config.
type fileFormat struct {
	Projects map[string]projectEntry `toml:"projects"`
}

type projectEntry struct {
	ApprovedCommands []string `toml:"approved-commands"`
}

// Store is the in-memory, load-once, write-serialized approval store for
// one invocation.
type Store struct {
	path string

	mu       sync.Mutex
	data     fileFormat
	inMemOnly bool // set when a write failed and we degrade to in-memory-for-this-invocation
}

// Load reads path (creating an empty in-memory store if it doesn't yet
// exist — a missing file is not an error).
func Load(path string) (*Store, error) {
	s := &Store{path: path, data: fileFormat{Projects: make(map[string]projectEntry)}}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("approval: failed to read %s: %w", path, err)
	}

	if _, err := toml.Decode(string(raw), &s.data); err != nil {
		return nil, fmt.Errorf("approval: failed to parse %s: %w", path, err)
	}
	if s.data.Projects == nil {
		s.data.Projects = make(map[string]projectEntry)
	}
	return s, nil
}

// IsApproved reports whether template is approved for project. Matching
// is an exact byte-for-byte comparison — no whitespace or quoting
// normalization (spec §9).
func (s *Store) IsApproved(project, tmpl string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.data.Projects[project]
	if !ok {
		return false
	}
	for _, t := range entry.ApprovedCommands {
		if t == tmpl {
			return true
		}
	}
	return false
}

// ApproveAll adds templates to project's approved set (skipping ones
// already present) and persists the result. On a permission failure, it
// emits a warning to stderr and keeps the approvals in memory for the
// rest of this invocation only (spec §4.D).
func (s *Store) ApproveAll(templates []string, project string) error {
	s.mu.Lock()
	entry := s.data.Projects[project]
	existing := make(map[string]bool, len(entry.ApprovedCommands))
	for _, t := range entry.ApprovedCommands {
		existing[t] = true
	}
	for _, t := range templates {
		if !existing[t] {
			entry.ApprovedCommands = append(entry.ApprovedCommands, t)
			existing[t] = true
		}
	}
	s.data.Projects[project] = entry
	inMemOnly := s.inMemOnly
	s.mu.Unlock()

	if inMemOnly {
		return nil
	}
	if err := s.save(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not persist command approvals: %v\n", err)
		s.mu.Lock()
		s.inMemOnly = true
		s.mu.Unlock()
		return nil
	}
	return nil
}

// Clear removes all approvals for project.
func (s *Store) Clear(project string) error {
	s.mu.Lock()
	delete(s.data.Projects, project)
	inMemOnly := s.inMemOnly
	s.mu.Unlock()

	if inMemOnly {
		return nil
	}
	return s.save()
}

// save writes the store atomically: temp file in the same directory,
// then rename into place (grounded on the teacher's internal/cache.Save).
func (s *Store) save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("approval: failed to create config dir: %w", err)
	}

	tempPath := s.path + ".tmp"
	f, err := os.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("approval: failed to open temp file: %w", err)
	}
	enc := toml.NewEncoder(f)
	if err := enc.Encode(s.data); err != nil {
		f.Close()
		os.Remove(tempPath)
		return fmt.Errorf("approval: failed to encode: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("approval: failed to close temp file: %w", err)
	}
	if err := os.Rename(tempPath, s.path); err != nil {
		return fmt.Errorf("approval: failed to rename into place: %w", err)
	}
	return nil
}
