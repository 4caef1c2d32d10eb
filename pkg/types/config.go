package types

import "sort"

const (
	// MetaKey is the reserved top-level key holding Meta
	MetaKey = "meta"

	// LegacyAliasKey is the top-level alias table used by older configs
	LegacyAliasKey = "zeroinstall_aliases"

	// ReservedPrefix marks top-level keys that are not paths
	ReservedPrefix = "_"
)

// Meta holds settings that apply to the whole configuration
type Meta struct {
	// Aliases maps short names to canonical URIs
	Aliases map[string]string

	// BaseDir is the directory relative local paths are resolved against
	BaseDir string

	// Hosts maps hostname glob patterns to the tags enabled on those hosts
	Hosts map[string]TagSet
}

// ResolveAlias returns the canonical value for name, or name itself
func (m Meta) ResolveAlias(name string) string {
	if v, ok := m.Aliases[name]; ok {
		return v
	}
	return name
}

// Entry is one declared path with its candidate directives, in config order
type Entry struct {
	Path       string
	Directives []Directive
}

// Config is a parsed and validated daglink configuration
type Config struct {
	Meta    Meta
	Entries []Entry

	// File is where the configuration was loaded from, if anywhere
	File string
}

// SortEntries orders entries lexically by path
func (c *Config) SortEntries() {
	sort.Slice(c.Entries, func(i, j int) bool {
		return c.Entries[i].Path < c.Entries[j].Path
	})
}

// Paths returns every declared path, unexpanded, in entry order
func (c *Config) Paths() []string {
	out := make([]string, 0, len(c.Entries))
	for _, e := range c.Entries {
		out = append(out, e.Path)
	}
	return out
}
