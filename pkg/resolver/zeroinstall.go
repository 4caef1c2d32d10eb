// Package resolver locates the local implementations of Zero Install feeds
// so that directives can link into them.
package resolver

import (
	"context"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/beevik/etree"
	"github.com/rs/zerolog"

	"github.com/timbertson/daglink/pkg/errors"
	"github.com/timbertson/daglink/pkg/filesystem"
	"github.com/timbertson/daglink/pkg/logging"
	"github.com/timbertson/daglink/pkg/types"
)

// Command is the Zero Install executable
const Command = "0install"

// CommandRunner runs a command and returns its standard output
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// ZeroInstall resolves feed URIs by asking 0install which implementation it
// would select, then finding that implementation on disk.
type ZeroInstall struct {
	fs     types.FS
	run    CommandRunner
	roots  []string
	logger zerolog.Logger
}

var _ types.Resolver = (*ZeroInstall)(nil)

// NewZeroInstall creates a resolver using the real 0install command and the
// standard implementation caches
func NewZeroInstall(fsys types.FS) *ZeroInstall {
	return NewZeroInstallWith(fsys, execRunner, DefaultRoots())
}

// NewZeroInstallWith creates a resolver with an explicit runner and list of
// implementation cache directories
func NewZeroInstallWith(fsys types.FS, run CommandRunner, roots []string) *ZeroInstall {
	return &ZeroInstall{
		fs:     fsys,
		run:    run,
		roots:  roots,
		logger: logging.GetLogger("resolver"),
	}
}

// DefaultRoots returns the implementation cache directories, user cache
// first
func DefaultRoots() []string {
	roots := []string{filepath.Join(xdg.CacheHome, "0install.net", "implementations")}
	for _, dir := range xdg.DataDirs {
		roots = append(roots, filepath.Join(dir, "0install.net", "implementations"))
	}
	return append(roots, "/var/cache/0install.net/implementations")
}

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	logging.LogCommand(name, args)
	return exec.CommandContext(ctx, name, args...).Output()
}

// Resolve implements types.Resolver
func (z *ZeroInstall) Resolve(ctx context.Context, uri, extract string) (string, error) {
	logger := z.logger.With().Str("uri", uri).Logger()

	out, err := z.run(ctx, Command, "select", "--xml", uri)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", errors.Wrapf(err, errors.ErrNotFound, "0install could not select %s", uri).
			WithDetail("uri", uri)
	}

	sel, err := parseSelection(out, uri)
	if err != nil {
		return "", err
	}

	path, err := z.locate(sel)
	if err != nil {
		return "", err
	}
	logger.Debug().Str("path", path).Msg("Resolved implementation")

	if extract != "" {
		path = filepath.Join(append([]string{path}, strings.Split(extract, "/")...)...)
	}
	return path, nil
}

// selection is the part of a 0install selection daglink cares about
type selection struct {
	uri       string
	id        string
	localPath string
	digests   []string
}

func parseSelection(data []byte, uri string) (*selection, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, errors.Wrapf(err, errors.ErrInvalidInput, "invalid selections document for %s", uri)
	}
	root := doc.SelectElement("selections")
	if root == nil {
		return nil, errors.Newf(errors.ErrInvalidInput, "no <selections> in 0install output for %s", uri)
	}

	want := root.SelectAttrValue("interface", uri)
	for _, el := range root.SelectElements("selection") {
		if el.SelectAttrValue("interface", "") != want {
			continue
		}
		sel := &selection{
			uri:       want,
			id:        el.SelectAttrValue("id", ""),
			localPath: el.SelectAttrValue("local-path", ""),
		}
		for _, md := range el.SelectElements("manifest-digest") {
			for _, attr := range md.Attr {
				sel.digests = append(sel.digests, attr.Key+"="+attr.Value, attr.Key+"_"+attr.Value)
			}
		}
		return sel, nil
	}
	return nil, errors.Newf(errors.ErrNotFound, "0install selected nothing for %s", uri).WithDetail("uri", uri)
}

func (z *ZeroInstall) locate(sel *selection) (string, error) {
	if sel.localPath != "" {
		return sel.localPath, nil
	}
	if strings.HasPrefix(sel.id, "/") {
		return sel.id, nil
	}
	if strings.HasPrefix(sel.id, "package:") {
		return "", errors.Newf(errors.ErrNotFound, "%s is provided by a distribution package (%s)", sel.uri, sel.id).
			WithDetail("uri", sel.uri)
	}

	candidates := append([]string{sel.id}, sel.digests...)
	for _, root := range z.roots {
		for _, c := range candidates {
			if c == "" {
				continue
			}
			dir := filepath.Join(root, c)
			if filesystem.Exists(z.fs, dir) {
				return dir, nil
			}
		}
	}
	return "", errors.Newf(errors.ErrNotFound, "implementation %s of %s is not cached", sel.id, sel.uri).
		WithDetail("uri", sel.uri)
}
