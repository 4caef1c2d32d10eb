// Package selector decides which directive, if any, applies to each
// declared path for a given set of active tags.
package selector

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/timbertson/daglink/pkg/errors"
	"github.com/timbertson/daglink/pkg/logging"
	"github.com/timbertson/daglink/pkg/types"
)

// MatchPolicy decides whether a tagged directive applies to the active tags
type MatchPolicy int

const (
	// MatchIntersect applies a directive sharing at least one tag with the active set
	MatchIntersect MatchPolicy = iota
	// MatchSubset applies a directive whose tags are all active
	MatchSubset
)

// ParseMatchPolicy parses "intersect" or "subset"
func ParseMatchPolicy(s string) (MatchPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "intersect":
		return MatchIntersect, nil
	case "subset":
		return MatchSubset, nil
	}
	return MatchIntersect, fmt.Errorf("unknown tag match policy %q", s)
}

func (p MatchPolicy) String() string {
	if p == MatchSubset {
		return "subset"
	}
	return "intersect"
}

// Options controls a selection pass
type Options struct {
	Policy MatchPolicy

	// AllowMultiple returns every applicable directive instead of failing
	// when more than one applies, as needed for reports.
	AllowMultiple bool
}

// Selection is a declared path with the directives that apply to it.
// Outside AllowMultiple mode there is exactly one directive.
type Selection struct {
	Path       string
	Directives []types.Directive
}

// Directive returns the single selected directive
func (s Selection) Directive() types.Directive {
	return s.Directives[0]
}

// Applies reports whether d is applicable under the active tags
func Applies(d types.Directive, active types.TagSet, policy MatchPolicy) bool {
	if active.IsWildcard() || d.Tags.Len() == 0 {
		return true
	}
	if policy == MatchSubset {
		return d.Tags.SubsetOf(active)
	}
	return d.Tags.Intersects(active)
}

// Select filters every entry of cfg against the active tags, in lexical
// path order. Remote references are passed through the alias table. The
// whole config is checked before anything is returned, so an ambiguous path
// anywhere fails the selection as a whole.
func Select(cfg *types.Config, active types.TagSet, opts Options) ([]Selection, error) {
	logger := logging.GetLogger("selector")

	entries := append([]types.Entry(nil), cfg.Entries...)
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })

	var out []Selection
	for _, entry := range entries {
		var applicable []types.Directive
		declared := types.NewTagSet()
		for _, d := range entry.Directives {
			declared.Union(d.Tags)
			if Applies(d, active, opts.Policy) {
				applicable = append(applicable, resolveAlias(cfg.Meta, d))
			}
		}

		if len(applicable) == 0 {
			logger.Debug().
				Str("path", entry.Path).
				Str("tags", declared.String()).
				Msg("No applicable directives (none of these tags are active)")
			continue
		}

		if len(applicable) > 1 && !opts.AllowMultiple {
			lines := make([]string, len(applicable))
			for i, d := range applicable {
				lines[i] = "  " + d.String()
			}
			return nil, errors.Newf(errors.ErrConfigValid,
				"too many applicable directives for path %s:\n%s", entry.Path, strings.Join(lines, "\n")).
				WithDetail("path", entry.Path).
				WithDetail("count", len(applicable))
		}

		out = append(out, Selection{Path: entry.Path, Directives: applicable})
	}
	return out, nil
}

func resolveAlias(meta types.Meta, d types.Directive) types.Directive {
	ref, ok := d.Source.(types.RemoteRef)
	if !ok {
		return d
	}
	ref.URI = meta.ResolveAlias(ref.URI)
	return d.WithSource(ref)
}

// AllTags returns every tag mentioned by any directive, sorted
func AllTags(cfg *types.Config) []string {
	tags := types.NewTagSet()
	for _, e := range cfg.Entries {
		for _, d := range e.Directives {
			tags.Union(d.Tags)
		}
	}
	return tags.Sorted()
}

// HostTags returns the tags configured for hostname. Host table keys are
// glob patterns; every matching pattern contributes its tags.
func HostTags(meta types.Meta, hostname string) types.TagSet {
	logger := logging.GetLogger("selector")
	tags := types.NewTagSet()

	patterns := make([]string, 0, len(meta.Hosts))
	for p := range meta.Hosts {
		patterns = append(patterns, p)
	}
	sort.Strings(patterns)

	for _, pattern := range patterns {
		ok, err := doublestar.Match(pattern, hostname)
		if err != nil {
			logger.Warn().Err(err).Str("pattern", pattern).Msg("Invalid host pattern")
			continue
		}
		if ok {
			logger.Debug().Str("pattern", pattern).Str("host", hostname).Msg("Host pattern matched")
			tags.Union(meta.Hosts[pattern])
		}
	}
	return tags
}
