package linker

import (
	"context"
	"sort"

	"github.com/timbertson/daglink/pkg/filesystem"
	"github.com/timbertson/daglink/pkg/selector"
	"github.com/timbertson/daglink/pkg/types"
)

// State is how a path compares with what the configuration asks for
type State int

const (
	// StateLinked is a symlink to the desired target
	StateLinked State = iota
	// StateOutdated is a symlink pointing somewhere else
	StateOutdated
	// StateMissing means nothing exists at the path yet
	StateMissing
	// StateConflict is a file or directory where a link should be
	StateConflict
	// StateUnresolved means the desired target could not be determined
	StateUnresolved
	// StateStale is a daglinked path no longer declared for the active tags
	StateStale
)

func (s State) String() string {
	switch s {
	case StateLinked:
		return "linked"
	case StateOutdated:
		return "outdated"
	case StateMissing:
		return "missing"
	case StateConflict:
		return "conflict"
	case StateUnresolved:
		return "unresolved"
	case StateStale:
		return "stale"
	default:
		return "unknown"
	}
}

// PathStatus is the state of one declared or tracked path
type PathStatus struct {
	Path    string
	State   State
	Target  string
	Actual  string
	Tracked bool
	Err     error
}

// Status is the overall state of the configuration on disk
type Status struct {
	ConfigFile string
	Paths      []PathStatus

	// UpToDate is true when the config has not changed since the last run
	// that finished without problems
	UpToDate    bool
	LastApplied MarkerState
}

// Pending reports whether an apply would change anything
func (s *Status) Pending() bool {
	for _, p := range s.Paths {
		if p.State != StateLinked {
			return true
		}
	}
	return false
}

// Status inspects every applicable and tracked path without changing
// anything.
func (e *Engine) Status(ctx context.Context, cfg *types.Config, opts Options) (*Status, error) {
	selections, err := selector.Select(cfg, opts.Tags, selector.Options{Policy: opts.Policy})
	if err != nil {
		return nil, err
	}

	plan, err := e.resolve(selections)
	if err != nil {
		return nil, err
	}

	status := &Status{ConfigFile: cfg.File}
	seen := make(map[string]struct{})
	for _, item := range plan {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		seen[item.path] = struct{}{}
		status.Paths = append(status.Paths, e.inspect(ctx, item.path, item.directive))
	}

	for _, path := range e.store.Paths() {
		if _, ok := seen[path]; ok || !e.linker.IsDaglinked(path) {
			continue
		}
		actual, _ := e.linker.fs.Readlink(path)
		status.Paths = append(status.Paths, PathStatus{Path: path, State: StateStale, Actual: actual, Tracked: true})
	}
	sort.Slice(status.Paths, func(i, j int) bool { return status.Paths[i].Path < status.Paths[j].Path })

	if e.marker != nil && cfg.File != "" {
		upToDate, last, err := e.marker.UpToDate(cfg.File)
		if err != nil {
			e.logger.Warn().Err(err).Msg("Could not read last applied marker")
		}
		status.UpToDate = upToDate
		status.LastApplied = last
	}
	return status, nil
}

func (e *Engine) inspect(ctx context.Context, path string, d types.Directive) PathStatus {
	ps := PathStatus{Path: path, Tracked: e.store.Contains(path)}

	target, err := e.linker.Target(ctx, d)
	if err != nil {
		ps.State = StateUnresolved
		ps.Err = err
		return ps
	}
	ps.Target = target

	current, err := filesystem.Probe(e.linker.fs, path)
	if err != nil {
		ps.State = StateUnresolved
		ps.Err = err
		return ps
	}
	switch current.Kind {
	case filesystem.Absent:
		ps.State = StateMissing
	case filesystem.Symlink:
		ps.Actual = current.Target
		if current.Target == target {
			ps.State = StateLinked
		} else {
			ps.State = StateOutdated
		}
	default:
		ps.State = StateConflict
	}
	return ps
}
