// Package json renders results as JSON documents
package json

import (
	"encoding/json"
	"io"
	"time"

	"github.com/timbertson/daglink/pkg/linker"
)

// Renderer writes one indented JSON document per call
type Renderer struct {
	encoder *json.Encoder
}

// New creates a Renderer writing to w
func New(w io.Writer) *Renderer {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return &Renderer{encoder: encoder}
}

type pathError struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

type resultDoc struct {
	Command  string            `json:"command"`
	Outcomes map[string]string `json:"outcomes"`
	Skipped  []pathError       `json:"skipped"`
	Failed   []pathError       `json:"failed"`
}

func pathErrors(in []linker.PathError) []pathError {
	out := make([]pathError, 0, len(in))
	for _, pe := range in {
		out = append(out, pathError{Path: pe.Path, Error: pe.Err.Error()})
	}
	return out
}

// RenderResult implements ui.Renderer
func (r *Renderer) RenderResult(command string, result *linker.Result) error {
	doc := resultDoc{
		Command:  command,
		Outcomes: make(map[string]string, len(result.Outcomes)),
		Skipped:  pathErrors(result.Skips),
		Failed:   pathErrors(result.Failures),
	}
	for path, o := range result.Outcomes {
		doc.Outcomes[path] = o.String()
	}
	return r.encoder.Encode(doc)
}

type pathStatus struct {
	Path    string `json:"path"`
	State   string `json:"state"`
	Target  string `json:"target,omitempty"`
	Actual  string `json:"actual,omitempty"`
	Tracked bool   `json:"tracked"`
	Error   string `json:"error,omitempty"`
}

type statusDoc struct {
	ConfigFile  string       `json:"config,omitempty"`
	UpToDate    bool         `json:"up_to_date"`
	LastApplied *time.Time   `json:"last_applied,omitempty"`
	Paths       []pathStatus `json:"paths"`
}

// RenderStatus implements ui.Renderer
func (r *Renderer) RenderStatus(status *linker.Status) error {
	doc := statusDoc{
		ConfigFile: status.ConfigFile,
		UpToDate:   status.UpToDate,
		Paths:      make([]pathStatus, 0, len(status.Paths)),
	}
	if status.LastApplied.Present {
		at := status.LastApplied.AppliedAt
		doc.LastApplied = &at
	}
	for _, p := range status.Paths {
		ps := pathStatus{
			Path:    p.Path,
			State:   p.State.String(),
			Target:  p.Target,
			Actual:  p.Actual,
			Tracked: p.Tracked,
		}
		if p.Err != nil {
			ps.Error = p.Err.Error()
		}
		doc.Paths = append(doc.Paths, ps)
	}
	return r.encoder.Encode(doc)
}

// RenderList implements ui.Renderer
func (r *Renderer) RenderList(items []string) error {
	if items == nil {
		items = []string{}
	}
	return r.encoder.Encode(items)
}

// RenderError implements ui.Renderer
func (r *Renderer) RenderError(err error) error {
	return r.encoder.Encode(map[string]string{"error": err.Error()})
}

// RenderMessage implements ui.Renderer
func (r *Renderer) RenderMessage(msg string) error {
	return r.encoder.Encode(map[string]string{"message": msg})
}
