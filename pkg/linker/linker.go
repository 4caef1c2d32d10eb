package linker

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/timbertson/daglink/pkg/errors"
	"github.com/timbertson/daglink/pkg/executor"
	"github.com/timbertson/daglink/pkg/filesystem"
	"github.com/timbertson/daglink/pkg/logging"
	"github.com/timbertson/daglink/pkg/paths"
	"github.com/timbertson/daglink/pkg/provenance"
	"github.com/timbertson/daglink/pkg/types"
)

// Linker reconciles individual paths
type Linker struct {
	fs       types.FS
	exec     *executor.Executor
	store    *provenance.Store
	resolver types.Resolver
	baseDir  string
	logger   zerolog.Logger
}

// New creates a Linker. Relative local paths in directives and relative
// declared paths are resolved against baseDir, or the working directory
// when it is empty. resolver may be nil if no directive uses a URI.
func New(fsys types.FS, exec *executor.Executor, store *provenance.Store, resolver types.Resolver, baseDir string) *Linker {
	return &Linker{
		fs:       fsys,
		exec:     exec,
		store:    store,
		resolver: resolver,
		baseDir:  baseDir,
		logger:   logging.GetLogger("linker"),
	}
}

// BaseDir returns the directory relative paths are resolved against
func (l *Linker) BaseDir() string {
	return l.baseDir
}

// Abs expands a declared path to the absolute path it names
func (l *Linker) Abs(declared string) (string, error) {
	return paths.Absolutize(declared, l.baseDir)
}

// Target resolves the absolute path a directive's link should point to
func (l *Linker) Target(ctx context.Context, d types.Directive) (string, error) {
	switch src := d.Source.(type) {
	case types.LocalPath:
		return paths.Absolutize(src.Path, l.baseDir)
	case types.RemoteRef:
		if l.resolver == nil {
			return "", errors.Newf(errors.ErrNotFound, "no resolver available for %s", src.URI).
				WithDetail("uri", src.URI)
		}
		resolved, err := l.resolver.Resolve(ctx, src.URI, src.Extract)
		if err != nil {
			return "", err
		}
		return paths.Absolutize(resolved, "")
	}
	return "", errors.Newf(errors.ErrInternal, "unknown directive source %T", d.Source)
}

// IsDaglinked reports whether path is recorded as linked by daglink and is
// still a symlink. Anything else at a recorded path is not ours to touch.
func (l *Linker) IsDaglinked(path string) bool {
	return l.store.Contains(path) && filesystem.IsSymlink(l.fs, path)
}

// Link makes path a symlink to the target of d. A Skipped outcome comes with
// an error explaining why; a fatal error aborts the run.
func (l *Linker) Link(ctx context.Context, path string, d types.Directive) (Outcome, error) {
	logger := l.logger.With().Str("path", path).Logger()
	logger.Debug().Str("directive", d.String()).Msg("Processing path")

	target, err := l.Target(ctx, d)
	if err != nil {
		if errors.IsSkipped(err) {
			logger.Warn().Err(err).Msg("Could not resolve target")
		}
		return Skipped, err
	}

	if !filesystem.Exists(l.fs, target) {
		if !d.Optional {
			return Skipped, errors.Newf(errors.ErrConfigValid, "non-existent target for %s: %s", path, target).
				WithDetail("path", path).
				WithDetail("target", target)
		}
		logger.Warn().Str("target", target).Msg("Optional target does not exist; linking anyway")
	}

	if err := l.ensureParent(ctx, path); err != nil {
		return Skipped, err
	}

	current, err := filesystem.Probe(l.fs, path)
	if err != nil {
		return Skipped, errors.Wrapf(err, errors.ErrFileAccess, "failed to inspect %s", path)
	}

	outcome := Created
	switch current.Kind {
	case filesystem.Symlink:
		if current.Target == target {
			logger.Debug().Str("target", target).Msg("Link already points to target; nothing to do")
			return NoOp, nil
		}
		if err := l.exec.Run(ctx, executor.Operation{Kind: executor.RemoveFile, Path: path}); err != nil {
			return Skipped, err
		}
		outcome = Replaced
	case filesystem.Other:
		if err := l.exec.Permission(fmt.Sprintf("remove existing contents at %s", path)); err != nil {
			return Skipped, err
		}
		if err := l.exec.Run(ctx, executor.Operation{Kind: executor.RemoveTree, Path: path}); err != nil {
			return Skipped, err
		}
		outcome = Replaced
	}

	if err := l.exec.Run(ctx, executor.Operation{Kind: executor.Symlink, Path: path, Target: target}); err != nil {
		return Skipped, err
	}
	if !l.exec.DryRun() {
		l.store.Add(path)
	}
	logger.Info().Str("target", target).Str("outcome", outcome.String()).Msg("Linked")
	return outcome, nil
}

// Remove deletes the daglinked symlink at path and forgets it
func (l *Linker) Remove(ctx context.Context, path string) (Outcome, error) {
	if !l.IsDaglinked(path) {
		return NoOp, nil
	}
	if err := l.exec.Run(ctx, executor.Operation{Kind: executor.RemoveFile, Path: path}); err != nil {
		return Skipped, err
	}
	if !l.exec.DryRun() {
		l.store.Remove(path)
	}
	l.logger.Info().Str("path", path).Msg("Removed link")
	return Removed, nil
}

// List describes path on the executor's output, ls -l style
func (l *Linker) List(ctx context.Context, path string) error {
	return l.exec.Run(ctx, executor.Operation{Kind: executor.List, Path: path})
}

func (l *Linker) ensureParent(ctx context.Context, path string) error {
	dir := filepath.Dir(path)
	if filesystem.Exists(l.fs, dir) {
		return nil
	}
	if err := l.exec.Permission(fmt.Sprintf("make directories to %s", dir)); err != nil {
		return err
	}
	return l.exec.Run(ctx, executor.Operation{Kind: executor.MakeDirs, Path: dir})
}
