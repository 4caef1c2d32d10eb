package types_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/timbertson/daglink/pkg/types"
)

func TestParseTags(t *testing.T) {
	s := types.ParseTags("  work laptop\twork ")
	assert.Equal(t, []string{"laptop", "work"}, s.Sorted())
	assert.Equal(t, "laptop work", s.String())
	assert.Equal(t, 0, types.ParseTags("").Len())
}

func TestTagSetRelations(t *testing.T) {
	tests := []struct {
		name       string
		directive  types.TagSet
		active     types.TagSet
		intersects bool
		subset     bool
	}{
		{"disjoint", types.NewTagSet("x"), types.NewTagSet("y"), false, false},
		{"partial overlap", types.NewTagSet("x", "y"), types.NewTagSet("y"), true, false},
		{"contained", types.NewTagSet("x"), types.NewTagSet("x", "y"), true, true},
		{"empty active", types.NewTagSet("x"), types.NewTagSet(), false, false},
		{"empty directive", types.NewTagSet(), types.NewTagSet("x"), false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.intersects, tt.directive.Intersects(tt.active))
			assert.Equal(t, tt.subset, tt.directive.SubsetOf(tt.active))
		})
	}
}

func TestTagSetWildcard(t *testing.T) {
	assert.True(t, types.NewTagSet("*").IsWildcard())
	assert.False(t, types.NewTagSet("x").IsWildcard())
}

func TestMetaResolveAlias(t *testing.T) {
	m := types.Meta{Aliases: map[string]string{"vim": "http://example.com/vim.xml"}}
	assert.Equal(t, "http://example.com/vim.xml", m.ResolveAlias("vim"))
	assert.Equal(t, "http://example.com/other.xml", m.ResolveAlias("http://example.com/other.xml"))
}

func TestDirectiveString(t *testing.T) {
	d := types.Directive{
		Source:   types.RemoteRef{URI: "http://example.com/a.xml", Extract: "bin"},
		Tags:     types.NewTagSet("b", "a"),
		Optional: true,
	}
	assert.Equal(t, "{uri=http://example.com/a.xml extract=bin tags=a b optional}", d.String())
}
