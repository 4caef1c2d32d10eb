// Package provenance keeps the durable record of every path daglink has
// linked. The record is loaded once, mutated in memory during a run and
// written back at most once, atomically, when the run closes it.
package provenance

import (
	"bufio"
	"bytes"
	"errors"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	derrors "github.com/timbertson/daglink/pkg/errors"
	"github.com/timbertson/daglink/pkg/logging"
	"github.com/timbertson/daglink/pkg/types"
)

// Store is the in-memory provenance set backed by a file
type Store struct {
	fs     types.FS
	file   string
	loaded map[string]struct{}
	paths  map[string]struct{}
	closed bool
	logger zerolog.Logger
}

// Load reads the provenance record at file. A missing record is an empty
// set. Blank lines are ignored and order is irrelevant.
func Load(fsys types.FS, file string) (*Store, error) {
	s := &Store{
		fs:     fsys,
		file:   file,
		loaded: make(map[string]struct{}),
		paths:  make(map[string]struct{}),
		logger: logging.GetLogger("provenance"),
	}

	data, err := fsys.ReadFile(file)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Debug().Str("file", file).Msg("No provenance record yet")
		return s, nil
	}
	if err != nil {
		return nil, derrors.Wrapf(err, derrors.ErrProvenance, "failed to read provenance record %s", file)
	}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		s.loaded[line] = struct{}{}
		s.paths[line] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, derrors.Wrapf(err, derrors.ErrProvenance, "failed to parse provenance record %s", file)
	}

	s.logger.Debug().Str("file", file).Int("paths", len(s.paths)).Msg("Loaded provenance record")
	return s, nil
}

// File returns the location of the durable record
func (s *Store) File() string {
	return s.file
}

// Contains reports whether path is tracked
func (s *Store) Contains(path string) bool {
	_, ok := s.paths[path]
	return ok
}

// Add tracks path. Paths are stored as given; callers pass absolute paths.
func (s *Store) Add(path string) {
	if _, ok := s.paths[path]; !ok {
		s.logger.Debug().Str("path", path).Msg("Tracking link")
	}
	s.paths[path] = struct{}{}
}

// Remove forgets path
func (s *Store) Remove(path string) {
	if _, ok := s.paths[path]; ok {
		s.logger.Debug().Str("path", path).Msg("Forgetting link")
	}
	delete(s.paths, path)
}

// Paths returns every tracked path in lexical order
func (s *Store) Paths() []string {
	return sorted(s.paths)
}

// Len returns the number of tracked paths
func (s *Store) Len() int {
	return len(s.paths)
}

// Dirty reports whether the in-memory set differs from what was loaded
func (s *Store) Dirty() bool {
	if len(s.paths) != len(s.loaded) {
		return true
	}
	for p := range s.paths {
		if _, ok := s.loaded[p]; !ok {
			return true
		}
	}
	return false
}

// Close flushes the set if it changed. It is safe to call more than once;
// only the first call can write.
func (s *Store) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	if !s.Dirty() {
		s.logger.Debug().Msg("Provenance unchanged, not writing")
		return nil
	}
	return s.flush()
}

// flush writes the sorted record to a sibling temp file and renames it over
// the original, so an interrupted write never truncates the record.
func (s *Store) flush() error {
	var buf bytes.Buffer
	for _, p := range s.Paths() {
		buf.WriteString(p)
		buf.WriteByte('\n')
	}

	dir := filepath.Dir(s.file)
	if err := s.fs.MkdirAll(dir, 0755); err != nil {
		return derrors.Wrapf(err, derrors.ErrProvenance, "failed to create %s", dir)
	}

	tmp := s.file + ".tmp"
	if err := s.fs.WriteFile(tmp, buf.Bytes(), 0644); err != nil {
		return derrors.Wrapf(err, derrors.ErrProvenance, "failed to write %s", tmp)
	}
	if err := s.fs.Rename(tmp, s.file); err != nil {
		_ = s.fs.Remove(tmp)
		return derrors.Wrapf(err, derrors.ErrProvenance, "failed to replace %s", s.file)
	}

	s.loaded = make(map[string]struct{}, len(s.paths))
	for p := range s.paths {
		s.loaded[p] = struct{}{}
	}
	s.logger.Info().Str("file", s.file).Int("paths", len(s.paths)).Msg("Saved provenance record")
	return nil
}

func sorted(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
