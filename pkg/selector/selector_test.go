package selector_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timbertson/daglink/pkg/errors"
	"github.com/timbertson/daglink/pkg/selector"
	"github.com/timbertson/daglink/pkg/types"
)

func local(path string, tags ...string) types.Directive {
	return types.Directive{Source: types.LocalPath{Path: path}, Tags: types.NewTagSet(tags...)}
}

func remote(uri string, tags ...string) types.Directive {
	return types.Directive{Source: types.RemoteRef{URI: uri}, Tags: types.NewTagSet(tags...)}
}

func config(entries ...types.Entry) *types.Config {
	return &types.Config{
		Meta:    types.Meta{Aliases: map[string]string{"vim": "http://example.com/vim.xml"}},
		Entries: entries,
	}
}

func paths(sel []selector.Selection) []string {
	out := make([]string, len(sel))
	for i, s := range sel {
		out[i] = s.Path
	}
	return out
}

func TestApplies(t *testing.T) {
	tests := []struct {
		name      string
		directive types.Directive
		active    types.TagSet
		intersect bool
		subset    bool
	}{
		{"untagged always applies", local("/s"), types.NewTagSet(), true, true},
		{"tag active", local("/s", "x"), types.NewTagSet("x"), true, true},
		{"tag inactive", local("/s", "x"), types.NewTagSet("y"), false, false},
		{"no active tags", local("/s", "x"), types.NewTagSet(), false, false},
		{"partly active", local("/s", "x", "y"), types.NewTagSet("x"), true, false},
		{"wildcard", local("/s", "x", "y"), types.NewTagSet("*"), true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.intersect, selector.Applies(tt.directive, tt.active, selector.MatchIntersect))
			assert.Equal(t, tt.subset, selector.Applies(tt.directive, tt.active, selector.MatchSubset))
		})
	}
}

func TestSelect_SortsAndFilters(t *testing.T) {
	cfg := config(
		types.Entry{Path: "/z", Directives: []types.Directive{local("/src/z")}},
		types.Entry{Path: "/a", Directives: []types.Directive{local("/src/a", "x")}},
		types.Entry{Path: "/m", Directives: []types.Directive{local("/src/m", "y")}},
	)

	sel, err := selector.Select(cfg, types.NewTagSet("x"), selector.Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"/a", "/z"}, paths(sel))
	assert.Equal(t, types.LocalPath{Path: "/src/a"}, sel[0].Directive().Source)
}

func TestSelect_NoTagsSkipsTaggedPath(t *testing.T) {
	cfg := config(types.Entry{Path: "/a", Directives: []types.Directive{local("/src/a", "x")}})

	sel, err := selector.Select(cfg, types.NewTagSet(), selector.Options{})
	require.NoError(t, err)
	assert.Empty(t, sel)
}

func TestSelect_PicksSingleApplicableCandidate(t *testing.T) {
	cfg := config(types.Entry{Path: "/bin/vim", Directives: []types.Directive{
		local("/opt/vim", "server"),
		remote("vim", "work"),
	}})

	sel, err := selector.Select(cfg, types.NewTagSet("work"), selector.Options{})
	require.NoError(t, err)
	require.Len(t, sel, 1)
	assert.Equal(t, types.RemoteRef{URI: "http://example.com/vim.xml"}, sel[0].Directive().Source, "alias resolved")
}

func TestSelect_AmbiguousFails(t *testing.T) {
	cfg := config(
		types.Entry{Path: "/a", Directives: []types.Directive{local("/src/a")}},
		types.Entry{Path: "/b", Directives: []types.Directive{local("/src/b1", "x"), local("/src/b2")}},
	)

	_, err := selector.Select(cfg, types.NewTagSet("x"), selector.Options{})
	require.Error(t, err)
	assert.True(t, errors.IsFatal(err))
	assert.Contains(t, err.Error(), "/b")
	assert.Contains(t, err.Error(), "/src/b1")
	assert.Contains(t, err.Error(), "/src/b2")
}

func TestSelect_AllowMultiple(t *testing.T) {
	cfg := config(types.Entry{Path: "/b", Directives: []types.Directive{local("/src/b1", "x"), local("/src/b2")}})

	sel, err := selector.Select(cfg, types.NewTagSet("*"), selector.Options{AllowMultiple: true})
	require.NoError(t, err)
	require.Len(t, sel, 1)
	assert.Len(t, sel[0].Directives, 2)
}

func TestSelect_SubsetPolicy(t *testing.T) {
	cfg := config(types.Entry{Path: "/a", Directives: []types.Directive{
		local("/src/both", "work", "linux"),
		local("/src/fallback", "mac"),
	}})

	sel, err := selector.Select(cfg, types.NewTagSet("work"), selector.Options{Policy: selector.MatchSubset})
	require.NoError(t, err)
	assert.Empty(t, sel)

	sel, err = selector.Select(cfg, types.NewTagSet("work", "linux"), selector.Options{Policy: selector.MatchSubset})
	require.NoError(t, err)
	require.Len(t, sel, 1)
	assert.Equal(t, types.LocalPath{Path: "/src/both"}, sel[0].Directive().Source)
}

func TestParseMatchPolicy(t *testing.T) {
	p, err := selector.ParseMatchPolicy("Subset")
	require.NoError(t, err)
	assert.Equal(t, selector.MatchSubset, p)

	p, err = selector.ParseMatchPolicy("")
	require.NoError(t, err)
	assert.Equal(t, selector.MatchIntersect, p)
	assert.Equal(t, "intersect", p.String())

	_, err = selector.ParseMatchPolicy("any")
	assert.Error(t, err)
}

func TestAllTags(t *testing.T) {
	cfg := config(
		types.Entry{Path: "/a", Directives: []types.Directive{local("/s", "x", "y")}},
		types.Entry{Path: "/b", Directives: []types.Directive{local("/s"), remote("vim", "w", "x")}},
	)
	assert.Equal(t, []string{"w", "x", "y"}, selector.AllTags(cfg))
}

func TestHostTags(t *testing.T) {
	meta := types.Meta{Hosts: map[string]types.TagSet{
		"work-*":    types.NewTagSet("work"),
		"work-lab?": types.NewTagSet("lab"),
		"laptop":    types.NewTagSet("personal", "mobile"),
		"[":         types.NewTagSet("broken"),
	}}

	assert.Equal(t, []string{"lab", "work"}, selector.HostTags(meta, "work-lab1").Sorted())
	assert.Equal(t, []string{"work"}, selector.HostTags(meta, "work-desk").Sorted())
	assert.Equal(t, []string{"mobile", "personal"}, selector.HostTags(meta, "laptop").Sorted())
	assert.Equal(t, 0, selector.HostTags(meta, "server").Len())
}
