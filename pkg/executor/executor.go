package executor

import (
	"context"
	"fmt"
	"io"
	"io/fs"

	"github.com/rs/zerolog"

	"github.com/timbertson/daglink/pkg/errors"
	"github.com/timbertson/daglink/pkg/filesystem"
	"github.com/timbertson/daglink/pkg/logging"
	"github.com/timbertson/daglink/pkg/types"
)

// Confirmer asks the operator a yes/no question
type Confirmer interface {
	Confirm(message string) bool
}

// Escalator runs argv with elevated privileges
type Escalator interface {
	Escalate(ctx context.Context, argv []string) error
}

// Policy decides how permission requests are answered
type Policy struct {
	DryRun      bool
	Force       bool
	Interactive bool
}

// Executor runs operations under a Policy
type Executor struct {
	fs        types.FS
	escalator Escalator
	confirmer Confirmer
	policy    Policy
	out       io.Writer
	logger    zerolog.Logger
}

// New creates an Executor. out receives dry-run commands and listings.
func New(fsys types.FS, escalator Escalator, confirmer Confirmer, policy Policy, out io.Writer) *Executor {
	return &Executor{
		fs:        fsys,
		escalator: escalator,
		confirmer: confirmer,
		policy:    policy,
		out:       out,
		logger:    logging.GetLogger("executor"),
	}
}

// DryRun reports whether mutations are only printed
func (e *Executor) DryRun() bool {
	return e.policy.DryRun
}

// Permission asks the gate whether daglink may do what msg describes.
// A denial is returned as an ErrSkipped error.
func (e *Executor) Permission(msg string) error {
	switch {
	case e.policy.DryRun:
		e.logger.Info().Str("action", msg).Msg("Would require permission")
		return nil
	case e.policy.Force:
		return nil
	case e.policy.Interactive:
		if e.confirmer != nil && e.confirmer.Confirm(msg) {
			return nil
		}
		e.logger.Warn().Str("action", msg).Msg("Declined")
	default:
		e.logger.Error().Msgf("Skipped; use --force or --interactive to %s", msg)
	}
	return errors.Newf(errors.ErrSkipped, "not permitted to %s", msg).WithDetail("action", msg)
}

// Run performs op. In dry-run mode mutations are printed instead. A failed
// mutation is retried through the escalator if the gate allows it.
func (e *Executor) Run(ctx context.Context, op Operation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	logger := e.logger.With().Str("op", op.Kind.String()).Str("path", op.Path).Logger()

	if op.Kind.Mutates() && e.policy.DryRun {
		fmt.Fprintln(e.out, op.String())
		return nil
	}

	logging.LogCommand(op.Argv()[0], op.Argv()[1:])
	err := e.apply(op)
	if err == nil {
		return nil
	}
	err = failure(op, err)
	logger.Debug().Err(err).Msg("Operation failed")

	if !op.Kind.Escalates() {
		return errors.Wrap(err, errors.ErrSkipped, "skipped")
	}

	if perr := e.Permission(fmt.Sprintf("run %q as root", op.String())); perr != nil {
		return perr
	}
	if e.escalator == nil {
		return errors.Wrap(err, errors.ErrEscalation, "no escalation helper is configured")
	}

	logger.Info().Msg("Retrying with elevated privileges")
	if err := e.escalator.Escalate(ctx, op.Argv()); err != nil {
		return errors.Wrapf(err, errors.ErrEscalation, "%s failed with elevated privileges", op).
			WithDetail("path", op.Path)
	}
	return nil
}

// failure gives an in-process failure of op its error code
func failure(op Operation, err error) error {
	switch op.Kind {
	case MakeDirs:
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create directory %s", op.Path)
	case Symlink:
		return errors.Wrapf(err, errors.ErrSymlinkCreate, "failed to create symlink %s", op.Path)
	case List:
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to list %s", op.Path)
	}
	return errors.Wrapf(err, errors.ErrFileWrite, "failed to remove %s", op.Path)
}

func (e *Executor) apply(op Operation) error {
	switch op.Kind {
	case MakeDirs:
		return e.fs.MkdirAll(op.Path, 0755)
	case RemoveFile:
		return e.fs.Remove(op.Path)
	case RemoveTree:
		return e.fs.RemoveAll(op.Path)
	case Symlink:
		return e.fs.Symlink(op.Target, op.Path)
	case List:
		return e.list(op.Path)
	}
	return fmt.Errorf("unknown operation %d", op.Kind)
}

func (e *Executor) list(path string) error {
	st, err := filesystem.Probe(e.fs, path)
	if err != nil {
		return err
	}
	switch st.Kind {
	case filesystem.Absent:
		return &fs.PathError{Op: "ls", Path: path, Err: fs.ErrNotExist}
	case filesystem.Symlink:
		fmt.Fprintf(e.out, "%s %s -> %s\n", st.Info.Mode(), path, st.Target)
	default:
		fmt.Fprintf(e.out, "%s %8d %s\n", st.Info.Mode(), st.Info.Size(), path)
	}
	return nil
}
