package filesystem

import (
	"errors"
	"io/fs"

	"github.com/timbertson/daglink/pkg/types"
)

// Kind classifies what currently occupies a path
type Kind int

const (
	// Absent means nothing exists at the path
	Absent Kind = iota
	// Symlink means the path is a symbolic link, possibly dangling
	Symlink
	// Other means a regular file, directory or special file
	Other
)

func (k Kind) String() string {
	switch k {
	case Absent:
		return "absent"
	case Symlink:
		return "symlink"
	default:
		return "other"
	}
}

// State describes the path without following a link at it
type State struct {
	Kind Kind
	// Target is the raw link destination when Kind is Symlink
	Target string
	Info   fs.FileInfo
}

// Probe inspects path. Errors other than "does not exist" are returned.
func Probe(fsys types.FS, path string) (State, error) {
	info, err := fsys.Lstat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return State{Kind: Absent}, nil
	}
	if err != nil {
		return State{}, err
	}
	if info.Mode()&fs.ModeSymlink == 0 {
		return State{Kind: Other, Info: info}, nil
	}
	target, err := fsys.Readlink(path)
	if err != nil {
		return State{}, err
	}
	return State{Kind: Symlink, Target: target, Info: info}, nil
}

// IsSymlink reports whether path is currently a symbolic link
func IsSymlink(fsys types.FS, path string) bool {
	st, err := Probe(fsys, path)
	return err == nil && st.Kind == Symlink
}

// Exists reports whether path exists, following symlinks
func Exists(fsys types.FS, path string) bool {
	_, err := fsys.Stat(path)
	return err == nil
}
