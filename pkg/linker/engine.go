package linker

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/rs/zerolog"

	derrors "github.com/timbertson/daglink/pkg/errors"
	"github.com/timbertson/daglink/pkg/logging"
	"github.com/timbertson/daglink/pkg/provenance"
	"github.com/timbertson/daglink/pkg/selector"
	"github.com/timbertson/daglink/pkg/types"
)

// Options selects which directives a run applies
type Options struct {
	Tags   types.TagSet
	Policy selector.MatchPolicy
}

// Engine runs whole passes over a configuration
type Engine struct {
	linker *Linker
	store  *provenance.Store
	marker *Marker
	now    func() time.Time
	logger zerolog.Logger
}

// NewEngine creates an Engine. marker may be nil to never record
// successful runs.
func NewEngine(linker *Linker, marker *Marker) *Engine {
	return &Engine{
		linker: linker,
		store:  linker.store,
		marker: marker,
		now:    time.Now,
		logger: logging.GetLogger("engine"),
	}
}

type planned struct {
	path      string
	directive types.Directive
}

// Process reconciles every applicable path of cfg. Tracked links that are
// no longer declared for the active tags are swept first. Only a fatal error
// (an ambiguous config, a missing required target or cancellation) is
// returned as an error; per-path problems are collected in the Result.
func (e *Engine) Process(ctx context.Context, cfg *types.Config, opts Options) (*Result, error) {
	defer logging.LogOperationStart(e.logger, "process")()

	selections, err := selector.Select(cfg, opts.Tags, selector.Options{Policy: opts.Policy})
	if err != nil {
		return nil, err
	}

	plan, err := e.resolve(selections)
	if err != nil {
		return nil, err
	}
	touched := make(map[string]struct{}, len(plan))
	for _, item := range plan {
		touched[item.path] = struct{}{}
	}

	result := newResult()

	for _, path := range e.store.Paths() {
		if _, ok := touched[path]; ok {
			continue
		}
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if !e.linker.IsDaglinked(path) {
			continue
		}
		e.logger.Info().Str("path", path).Msg("Removing stale link")
		outcome, err := e.linker.Remove(ctx, path)
		if isCancelled(err) {
			return result, err
		}
		result.record(path, outcome, err, derrors.IsSkipped(err))
	}

	for _, item := range plan {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		outcome, err := e.linker.Link(ctx, item.path, item.directive)
		if derrors.IsFatal(err) || isCancelled(err) {
			return result, err
		}
		result.record(item.path, outcome, err, derrors.IsSkipped(err))
	}

	e.finish(cfg, result)
	return result, nil
}

// resolve makes every selected path absolute. Two declared keys naming the
// same path, such as /a and /x/../a, give that path two applicable
// directives, which is a configuration error like any other ambiguity.
func (e *Engine) resolve(selections []selector.Selection) ([]planned, error) {
	plan := make([]planned, 0, len(selections))
	declaredAs := make(map[string]string, len(selections))
	for _, sel := range selections {
		abs, err := e.linker.Abs(sel.Path)
		if err != nil {
			return nil, err
		}
		if prev, ok := declaredAs[abs]; ok {
			return nil, derrors.Newf(derrors.ErrConfigValid,
				"too many applicable directives for path %s: declared as both %s and %s", abs, prev, sel.Path).
				WithDetail("path", abs).
				WithDetail("keys", []string{prev, sel.Path})
		}
		declaredAs[abs] = sel.Path
		plan = append(plan, planned{path: abs, directive: sel.Directive()})
	}
	return plan, nil
}

func (e *Engine) finish(cfg *types.Config, result *Result) {
	if n := result.Problems(); n > 0 {
		e.logger.Error().Int("skipped", len(result.Skips)).Int("failed", len(result.Failures)).
			Msgf("skipped %d directives", n)
		return
	}
	if e.linker.exec.DryRun() || e.marker == nil || cfg.File == "" {
		return
	}
	if err := e.marker.Record(cfg.File, e.now()); err != nil {
		e.logger.Warn().Err(err).Msg("Could not record successful run")
	}
}

// Clean removes every daglinked path that is either declared in cfg,
// regardless of tags, or tracked in the provenance store. Paths that are
// not daglinked are left alone.
func (e *Engine) Clean(ctx context.Context, cfg *types.Config) (*Result, error) {
	defer logging.LogOperationStart(e.logger, "clean")()

	candidates := make(map[string]struct{})
	for _, declared := range cfg.Paths() {
		abs, err := e.linker.Abs(declared)
		if err != nil {
			return nil, err
		}
		candidates[abs] = struct{}{}
	}
	for _, tracked := range e.store.Paths() {
		candidates[tracked] = struct{}{}
	}

	all := make([]string, 0, len(candidates))
	for p := range candidates {
		all = append(all, p)
	}
	sort.Strings(all)

	result := newResult()
	for _, path := range all {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if !e.linker.IsDaglinked(path) {
			e.logger.Debug().Str("path", path).Msg("Not daglinked; leaving alone")
			continue
		}
		outcome, err := e.linker.Remove(ctx, path)
		if isCancelled(err) {
			return result, err
		}
		result.record(path, outcome, err, derrors.IsSkipped(err))
	}

	if n := result.Problems(); n > 0 {
		e.logger.Error().Msgf("failed to clean %d paths", n)
	}
	return result, nil
}

// Report lists every applicable path, ls -l style. A path with several
// applicable directives, or declared under several keys, is listed once.
func (e *Engine) Report(ctx context.Context, cfg *types.Config, opts Options) (*Result, error) {
	selections, err := selector.Select(cfg, opts.Tags, selector.Options{Policy: opts.Policy, AllowMultiple: true})
	if err != nil {
		return nil, err
	}

	result := newResult()
	listed := make(map[string]struct{}, len(selections))
	for _, sel := range selections {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		abs, err := e.linker.Abs(sel.Path)
		if err != nil {
			return result, err
		}
		if _, ok := listed[abs]; ok {
			continue
		}
		listed[abs] = struct{}{}
		if err := e.linker.List(ctx, abs); err != nil {
			result.record(abs, Skipped, err, true)
			continue
		}
		result.record(abs, NoOp, nil, false)
	}
	return result, nil
}

// ListTags returns every tag used in cfg
func (e *Engine) ListTags(cfg *types.Config) []string {
	return selector.AllTags(cfg)
}

func isCancelled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
