package executor

import (
	"strconv"
	"strings"
)

// Kind is the kind of filesystem operation
type Kind int

const (
	// MakeDirs creates a directory and its parents
	MakeDirs Kind = iota
	// RemoveFile removes a single file or symlink
	RemoveFile
	// RemoveTree removes a path recursively
	RemoveTree
	// Symlink creates a symlink at Path pointing to Target
	Symlink
	// List describes Path without changing anything
	List
)

func (k Kind) String() string {
	switch k {
	case MakeDirs:
		return "mkdir"
	case RemoveFile:
		return "remove"
	case RemoveTree:
		return "remove-tree"
	case Symlink:
		return "symlink"
	case List:
		return "list"
	default:
		return "unknown"
	}
}

// Mutates reports whether the operation changes the filesystem
func (k Kind) Mutates() bool {
	return k != List
}

// Escalates reports whether a failure may be retried with privileges
func (k Kind) Escalates() bool {
	return k.Mutates()
}

// Operation is one filesystem operation
type Operation struct {
	Kind   Kind
	Path   string
	Target string
}

// Argv returns the shell command equivalent to the operation. It is what
// dry-run prints and what the escalation helper runs.
func (op Operation) Argv() []string {
	switch op.Kind {
	case MakeDirs:
		return []string{"mkdir", "-p", op.Path}
	case RemoveFile:
		return []string{"rm", op.Path}
	case RemoveTree:
		return []string{"rm", "-rf", op.Path}
	case Symlink:
		return []string{"ln", "-s", op.Target, op.Path}
	case List:
		return []string{"ls", "-l", op.Path}
	}
	return nil
}

func (op Operation) String() string {
	return FormatArgv(op.Argv())
}

// FormatArgv joins argv for display, quoting words that need it
func FormatArgv(argv []string) string {
	words := make([]string, len(argv))
	for i, w := range argv {
		if w == "" || strings.ContainsAny(w, " \t\n'\"\\$`*?[]{}()<>|&;#~") {
			words[i] = strconv.Quote(w)
		} else {
			words[i] = w
		}
	}
	return strings.Join(words, " ")
}
