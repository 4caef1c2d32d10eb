package types

import (
	"context"
	"io/fs"
)

// FS is the filesystem interface required for daglink operations
type FS interface {
	// File operations
	Stat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm fs.FileMode) error
	Rename(oldpath, newpath string) error

	// Directory operations
	MkdirAll(path string, perm fs.FileMode) error

	// Symlink operations
	Symlink(oldname, newname string) error
	Readlink(name string) (string, error)

	// Other operations
	Remove(name string) error
	RemoveAll(path string) error

	// Lstat must not follow symlinks; daglink relies on it to tell
	// links apart from the files they point at.
	Lstat(name string) (fs.FileInfo, error)
}

// Pather provides paths for daglink operations
type Pather interface {
	// ConfigDir returns the per-user config directory for daglink
	ConfigDir() string

	// StateDir returns the per-user state directory for daglink
	StateDir() string

	// ConfigFile returns the default declarative config file
	ConfigFile() string

	// SettingsFile returns the tool settings file
	SettingsFile() string

	// ProvenanceFile returns the record of paths daglink has linked
	ProvenanceFile() string

	// MarkerFile returns the "last fully applied" marker
	MarkerFile() string
}

// Resolver locates the local implementation of an abstract package URI.
// A package that cannot be located is reported with errors.ErrNotFound.
type Resolver interface {
	Resolve(ctx context.Context, uri, extract string) (string, error)
}
