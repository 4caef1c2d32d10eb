package linker

import "sort"

// PathError is a problem with a single path
type PathError struct {
	Path string
	Err  error
}

// Result summarises a run over many paths
type Result struct {
	Outcomes map[string]Outcome

	// Skips are paths left alone for lack of permission or an
	// unresolvable target
	Skips []PathError

	// Failures are paths where an operation failed, even with privileges
	Failures []PathError
}

func newResult() *Result {
	return &Result{Outcomes: make(map[string]Outcome)}
}

func (r *Result) record(path string, outcome Outcome, err error, skipped bool) {
	r.Outcomes[path] = outcome
	switch {
	case err == nil:
	case skipped:
		r.Skips = append(r.Skips, PathError{Path: path, Err: err})
	default:
		r.Failures = append(r.Failures, PathError{Path: path, Err: err})
	}
}

// Count returns how many paths ended with outcome o
func (r *Result) Count(o Outcome) int {
	n := 0
	for _, got := range r.Outcomes {
		if got == o {
			n++
		}
	}
	return n
}

// Problems is the number of skipped plus failed paths
func (r *Result) Problems() int {
	return len(r.Skips) + len(r.Failures)
}

// OK reports whether every path was handled
func (r *Result) OK() bool {
	return r.Problems() == 0
}

// Paths returns every path the run visited, sorted
func (r *Result) Paths() []string {
	out := make([]string, 0, len(r.Outcomes))
	for p := range r.Outcomes {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
