package testutil

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/timbertson/daglink/pkg/types"
)

const maxLinkDepth = 40

// MemoryFS implements types.FS with in-memory storage and real symlink
// semantics: Stat follows links, Lstat does not.
type MemoryFS struct {
	mu    sync.RWMutex
	files map[string]*fileNode
	cwd   string
	umask os.FileMode

	// Error injection
	errorPaths map[string]error
	denied     []string

	// Statistics
	readCount     int
	mutationCount int
}

// fileNode represents a file, directory or symlink in memory
type fileNode struct {
	name     string
	mode     os.FileMode
	modTime  time.Time
	content  []byte
	isDir    bool
	isLink   bool
	linkDest string
	children map[string]*fileNode
}

// NewMemoryFS creates a new in-memory filesystem
func NewMemoryFS() *MemoryFS {
	root := &fileNode{
		name:     "/",
		mode:     0755 | os.ModeDir,
		modTime:  time.Now(),
		isDir:    true,
		children: make(map[string]*fileNode),
	}

	return &MemoryFS{
		files:      map[string]*fileNode{"/": root},
		cwd:        "/",
		umask:      0022,
		errorPaths: make(map[string]error),
	}
}

var _ types.FS = (*MemoryFS)(nil)

// normalizePath converts a path to absolute form
func (m *MemoryFS) normalizePath(path string) string {
	if !filepath.IsAbs(path) {
		path = filepath.Join(m.cwd, path)
	}
	return filepath.Clean(path)
}

// getNode retrieves the node at path without following a final symlink
func (m *MemoryFS) getNode(path string) (*fileNode, error) {
	path = m.normalizePath(path)

	if err, ok := m.errorPaths[path]; ok {
		return nil, err
	}

	node, exists := m.files[path]
	if !exists {
		return nil, &fs.PathError{Op: "lstat", Path: path, Err: fs.ErrNotExist}
	}
	return node, nil
}

// followNode retrieves the node at path, following symlinks
func (m *MemoryFS) followNode(path string) (*fileNode, error) {
	path = m.normalizePath(path)
	for i := 0; i < maxLinkDepth; i++ {
		node, err := m.getNode(path)
		if err != nil {
			return nil, err
		}
		if !node.isLink {
			return node, nil
		}
		target := node.linkDest
		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(path), target)
		}
		path = filepath.Clean(target)
	}
	return nil, &fs.PathError{Op: "stat", Path: path, Err: errors.New("too many levels of symbolic links")}
}

// getParentAndName splits a path into parent directory and filename
func (m *MemoryFS) getParentAndName(path string) (parent *fileNode, name string, err error) {
	path = m.normalizePath(path)
	dir := filepath.Dir(path)
	name = filepath.Base(path)

	parent, err = m.getNode(dir)
	if err != nil {
		return nil, "", err
	}
	if !parent.isDir {
		return nil, "", &fs.PathError{Op: "open", Path: dir, Err: errors.New("not a directory")}
	}
	return parent, name, nil
}

// checkWrite applies injected errors and denied prefixes to a mutation
func (m *MemoryFS) checkWrite(op, path string, root bool) error {
	if err, ok := m.errorPaths[path]; ok {
		return err
	}
	if root {
		return nil
	}
	for _, prefix := range m.denied {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return &fs.PathError{Op: op, Path: path, Err: fs.ErrPermission}
		}
	}
	return nil
}

// ReadFile reads the entire file content
func (m *MemoryFS) ReadFile(name string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.readCount++

	node, err := m.followNode(name)
	if err != nil {
		return nil, err
	}
	if node.isDir {
		return nil, &fs.PathError{Op: "read", Path: name, Err: errors.New("is a directory")}
	}

	content := make([]byte, len(node.content))
	copy(content, node.content)
	return content, nil
}

// WriteFile writes data to a file, creating parent directories if necessary
func (m *MemoryFS) WriteFile(name string, data []byte, perm os.FileMode) error {
	return m.writeFile(name, data, perm, false)
}

func (m *MemoryFS) writeFile(name string, data []byte, perm os.FileMode, root bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	path := m.normalizePath(name)
	if err := m.checkWrite("open", path, root); err != nil {
		return err
	}
	m.mutationCount++

	parent, filename, err := m.getParentAndName(path)
	if errors.Is(err, fs.ErrNotExist) {
		if err := m.mkdirAll(filepath.Dir(path), 0755); err != nil {
			return err
		}
		parent, filename, err = m.getParentAndName(path)
	}
	if err != nil {
		return err
	}

	node := &fileNode{
		name:    filename,
		mode:    perm &^ m.umask,
		modTime: time.Now(),
		content: make([]byte, len(data)),
	}
	copy(node.content, data)

	parent.children[filename] = node
	m.files[path] = node
	return nil
}

// Stat returns file info, following symlinks
func (m *MemoryFS) Stat(name string) (os.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	node, err := m.followNode(name)
	if err != nil {
		return nil, err
	}
	return &fileInfo{node: node, name: filepath.Base(name)}, nil
}

// Lstat returns file info without following symlinks
func (m *MemoryFS) Lstat(name string) (os.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	node, err := m.getNode(name)
	if err != nil {
		return nil, err
	}
	return &fileInfo{node: node, name: filepath.Base(name)}, nil
}

// Remove removes a file, symlink or empty directory
func (m *MemoryFS) Remove(name string) error {
	return m.remove(name, false)
}

func (m *MemoryFS) remove(name string, root bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	path := m.normalizePath(name)
	if err := m.checkWrite("remove", path, root); err != nil {
		return err
	}

	node, err := m.getNode(path)
	if err != nil {
		return err
	}
	if node.isDir && len(node.children) > 0 {
		return &fs.PathError{Op: "remove", Path: name, Err: errors.New("directory not empty")}
	}
	m.mutationCount++

	parent, filename, err := m.getParentAndName(path)
	if err != nil {
		return err
	}
	delete(parent.children, filename)
	delete(m.files, path)
	return nil
}

// RemoveAll removes a path and everything below it. A symlink is removed
// itself; its target is left alone.
func (m *MemoryFS) RemoveAll(path string) error {
	return m.removeAll(path, false)
}

func (m *MemoryFS) removeAll(path string, root bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	path = m.normalizePath(path)
	if err := m.checkWrite("unlinkat", path, root); err != nil {
		return err
	}
	m.mutationCount++

	toRemove := []string{}
	for p := range m.files {
		if p == path || strings.HasPrefix(p, path+"/") {
			toRemove = append(toRemove, p)
		}
	}

	for _, p := range toRemove {
		delete(m.files, p)
		if dir := filepath.Dir(p); dir != p {
			if parent, ok := m.files[dir]; ok && parent.isDir {
				delete(parent.children, filepath.Base(p))
			}
		}
	}
	return nil
}

// MkdirAll creates a directory and all necessary parents
func (m *MemoryFS) MkdirAll(path string, perm os.FileMode) error {
	return m.mkdirAllChecked(path, perm, false)
}

func (m *MemoryFS) mkdirAllChecked(path string, perm os.FileMode, root bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	path = m.normalizePath(path)
	if node, err := m.getNode(path); err == nil && node.isDir {
		return nil
	}
	if err := m.checkWrite("mkdir", path, root); err != nil {
		return err
	}
	m.mutationCount++
	return m.mkdirAll(path, perm)
}

// mkdirAll is the internal implementation without locking
func (m *MemoryFS) mkdirAll(path string, perm os.FileMode) error {
	path = m.normalizePath(path)

	if node, err := m.getNode(path); err == nil {
		if !node.isDir {
			return &fs.PathError{Op: "mkdir", Path: path, Err: errors.New("file exists")}
		}
		return nil
	}

	parts := strings.Split(path, "/")
	current := "/"
	currentNode := m.files["/"]

	for i := 1; i < len(parts); i++ {
		if parts[i] == "" {
			continue
		}
		next := filepath.Join(current, parts[i])

		if child, exists := currentNode.children[parts[i]]; exists {
			if !child.isDir {
				return &fs.PathError{Op: "mkdir", Path: next, Err: errors.New("not a directory")}
			}
			currentNode = child
			current = next
			continue
		}

		newDir := &fileNode{
			name:     parts[i],
			mode:     perm | os.ModeDir,
			modTime:  time.Now(),
			isDir:    true,
			children: make(map[string]*fileNode),
		}
		currentNode.children[parts[i]] = newDir
		m.files[next] = newDir

		currentNode = newDir
		current = next
	}
	return nil
}

// Readlink returns the destination of a symbolic link
func (m *MemoryFS) Readlink(name string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	node, err := m.getNode(name)
	if err != nil {
		return "", err
	}
	if !node.isLink {
		return "", &fs.PathError{Op: "readlink", Path: name, Err: errors.New("invalid argument")}
	}
	return node.linkDest, nil
}

// Symlink creates a symbolic link at link pointing to target
func (m *MemoryFS) Symlink(target, link string) error {
	return m.symlink(target, link, false)
}

func (m *MemoryFS) symlink(target, link string, root bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	linkPath := m.normalizePath(link)
	if err := m.checkWrite("symlink", linkPath, root); err != nil {
		return err
	}
	if _, err := m.getNode(linkPath); err == nil {
		return &fs.PathError{Op: "symlink", Path: link, Err: fs.ErrExist}
	}

	parent, filename, err := m.getParentAndName(linkPath)
	if err != nil {
		return err
	}
	m.mutationCount++

	node := &fileNode{
		name:     filename,
		mode:     0777 | os.ModeSymlink,
		modTime:  time.Now(),
		isLink:   true,
		linkDest: target,
	}
	parent.children[filename] = node
	m.files[linkPath] = node
	return nil
}

// Rename moves a single file or symlink. Directories are not supported.
func (m *MemoryFS) Rename(oldpath, newpath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	from := m.normalizePath(oldpath)
	to := m.normalizePath(newpath)
	if err := m.checkWrite("rename", to, false); err != nil {
		return err
	}

	node, err := m.getNode(from)
	if err != nil {
		return err
	}
	if node.isDir {
		return &fs.PathError{Op: "rename", Path: oldpath, Err: errors.New("directories not supported")}
	}
	newParent, newName, err := m.getParentAndName(to)
	if err != nil {
		return err
	}
	oldParent, oldName, err := m.getParentAndName(from)
	if err != nil {
		return err
	}
	m.mutationCount++

	delete(oldParent.children, oldName)
	delete(m.files, from)
	node.name = newName
	newParent.children[newName] = node
	m.files[to] = node
	return nil
}

// WithError configures the filesystem to return an error for a specific path
func (m *MemoryFS) WithError(path string, err error) *MemoryFS {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.errorPaths[m.normalizePath(path)] = err
	return m
}

// DenyWrites makes every mutation at or below prefix fail with a
// permission error, as for a directory owned by another user.
func (m *MemoryFS) DenyWrites(prefix string) *MemoryFS {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.denied = append(m.denied, m.normalizePath(prefix))
	return m
}

// Mutations returns how many mutating calls succeeded past permission checks
func (m *MemoryFS) Mutations() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.mutationCount
}

// Reads returns how many files have been read
func (m *MemoryFS) Reads() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.readCount
}

// Paths lists every path in the filesystem, sorted
func (m *MemoryFS) Paths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]string, 0, len(m.files))
	for p := range m.files {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// fileInfo implements os.FileInfo
type fileInfo struct {
	node *fileNode
	name string
}

func (fi *fileInfo) Name() string       { return fi.name }
func (fi *fileInfo) Size() int64        { return int64(len(fi.node.content)) }
func (fi *fileInfo) Mode() os.FileMode  { return fi.node.mode }
func (fi *fileInfo) ModTime() time.Time { return fi.node.modTime }
func (fi *fileInfo) IsDir() bool        { return fi.node.isDir }
func (fi *fileInfo) Sys() interface{}   { return nil }
