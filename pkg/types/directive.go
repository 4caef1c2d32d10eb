package types

import "fmt"

// Source is where a directive's link should point before resolution.
// It is either a LocalPath or a RemoteRef.
type Source interface {
	fmt.Stringer
	isSource()
}

// LocalPath is an explicit path on the local filesystem
type LocalPath struct {
	Path string
}

func (LocalPath) isSource() {}

func (l LocalPath) String() string {
	return "path=" + l.Path
}

// RemoteRef is an abstract package URI resolved by an external collaborator,
// optionally narrowed to a sub-path inside the resolved implementation.
type RemoteRef struct {
	URI     string
	Extract string
}

func (RemoteRef) isSource() {}

func (r RemoteRef) String() string {
	if r.Extract == "" {
		return "uri=" + r.URI
	}
	return fmt.Sprintf("uri=%s extract=%s", r.URI, r.Extract)
}

// Directive describes one candidate link for a declared path
type Directive struct {
	Source   Source
	Tags     TagSet
	Optional bool
}

func (d Directive) String() string {
	s := "{" + d.Source.String()
	if d.Tags.Len() > 0 {
		s += " tags=" + d.Tags.String()
	}
	if d.Optional {
		s += " optional"
	}
	return s + "}"
}

// WithSource returns a copy of the directive pointing at a different source
func (d Directive) WithSource(src Source) Directive {
	d.Source = src
	return d
}
