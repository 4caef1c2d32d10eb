package types

import (
	"sort"
	"strings"
)

// WildcardTag selects every directive regardless of its own tags
const WildcardTag = "*"

// TagSet is an unordered set of tags
type TagSet map[string]struct{}

// NewTagSet builds a set from the given tags, ignoring empty strings
func NewTagSet(tags ...string) TagSet {
	s := make(TagSet, len(tags))
	for _, t := range tags {
		s.Add(t)
	}
	return s
}

// ParseTags splits a whitespace separated tag list
func ParseTags(s string) TagSet {
	return NewTagSet(strings.Fields(s)...)
}

// Add inserts a tag
func (s TagSet) Add(tag string) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return
	}
	s[tag] = struct{}{}
}

// Has reports whether tag is in the set
func (s TagSet) Has(tag string) bool {
	_, ok := s[tag]
	return ok
}

// Len returns the number of tags
func (s TagSet) Len() int {
	return len(s)
}

// IsWildcard reports whether the set contains the wildcard tag
func (s TagSet) IsWildcard() bool {
	return s.Has(WildcardTag)
}

// Union adds all tags of other to the set
func (s TagSet) Union(other TagSet) {
	for t := range other {
		s[t] = struct{}{}
	}
}

// Intersects reports whether the two sets share at least one tag
func (s TagSet) Intersects(other TagSet) bool {
	for t := range s {
		if other.Has(t) {
			return true
		}
	}
	return false
}

// SubsetOf reports whether every tag of s is in other
func (s TagSet) SubsetOf(other TagSet) bool {
	for t := range s {
		if !other.Has(t) {
			return false
		}
	}
	return true
}

// Sorted returns the tags in lexical order
func (s TagSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for t := range s {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func (s TagSet) String() string {
	return strings.Join(s.Sorted(), " ")
}
