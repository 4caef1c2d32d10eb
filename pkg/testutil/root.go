package testutil

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"

	"github.com/timbertson/daglink/pkg/types"
)

// rootFS is a view of a MemoryFS that ignores DenyWrites
type rootFS struct {
	*MemoryFS
}

// AsRoot returns a view of the filesystem for which denied prefixes do not
// apply, as seen by a privileged process.
func (m *MemoryFS) AsRoot() types.FS {
	return rootFS{m}
}

func (r rootFS) WriteFile(name string, data []byte, perm fs.FileMode) error {
	return r.writeFile(name, data, perm, true)
}

func (r rootFS) MkdirAll(path string, perm fs.FileMode) error {
	return r.mkdirAllChecked(path, perm, true)
}

func (r rootFS) Symlink(oldname, newname string) error {
	return r.symlink(oldname, newname, true)
}

func (r rootFS) Remove(name string) error {
	return r.remove(name, true)
}

func (r rootFS) RemoveAll(path string) error {
	return r.removeAll(path, true)
}

// RootShell is a fake escalation helper. It interprets the argv daglink
// hands to its escalator against a privileged view of a filesystem.
type RootShell struct {
	FS types.FS

	// Fail makes every invocation fail, as when the helper refuses
	Fail bool

	mu    sync.Mutex
	calls [][]string
}

// Escalate implements executor.Escalator
func (s *RootShell) Escalate(_ context.Context, argv []string) error {
	s.mu.Lock()
	s.calls = append(s.calls, append([]string(nil), argv...))
	s.mu.Unlock()

	if s.Fail {
		return fmt.Errorf("escalation refused: %s", strings.Join(argv, " "))
	}
	if len(argv) == 0 {
		return fmt.Errorf("empty command")
	}

	switch {
	case len(argv) == 3 && argv[0] == "mkdir" && argv[1] == "-p":
		return s.FS.MkdirAll(argv[2], 0755)
	case len(argv) == 2 && argv[0] == "rm":
		return s.FS.Remove(argv[1])
	case len(argv) == 3 && argv[0] == "rm" && argv[1] == "-rf":
		return s.FS.RemoveAll(argv[2])
	case len(argv) == 4 && argv[0] == "ln" && argv[1] == "-s":
		return s.FS.Symlink(argv[2], argv[3])
	case len(argv) == 3 && argv[0] == "ls" && argv[1] == "-l":
		_, err := s.FS.Lstat(argv[2])
		return err
	}
	return &os.PathError{Op: "exec", Path: argv[0], Err: fs.ErrInvalid}
}

// Calls returns every argv passed to Escalate
func (s *RootShell) Calls() [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]string(nil), s.calls...)
}

// Confirmer answers every question with the same answer and records them
type Confirmer struct {
	Answer bool

	mu    sync.Mutex
	asked []string
}

// Confirm implements executor.Confirmer
func (c *Confirmer) Confirm(message string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.asked = append(c.asked, message)
	return c.Answer
}

// Asked returns the questions asked so far
func (c *Confirmer) Asked() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.asked...)
}
