// Package ui renders daglink results for people and for machines.
package ui

import (
	"fmt"
	"io"

	"github.com/timbertson/daglink/pkg/linker"
	"github.com/timbertson/daglink/pkg/ui/json"
	"github.com/timbertson/daglink/pkg/ui/terminal"
)

// Renderer writes command output
type Renderer interface {
	// RenderResult summarises a run of the named command
	RenderResult(command string, result *linker.Result) error

	// RenderStatus shows the state of every path
	RenderStatus(status *linker.Status) error

	// RenderList prints one item per line, such as tag names
	RenderList(items []string) error

	RenderError(err error) error
	RenderMessage(msg string) error
}

// NewRenderer creates a renderer for format writing to w
func NewRenderer(format Format, w io.Writer) (Renderer, error) {
	switch format {
	case FormatAuto:
		return NewRenderer(DetectFormat(w), w)
	case FormatTerminal:
		return terminal.New(w, true), nil
	case FormatText:
		return terminal.New(w, false), nil
	case FormatJSON:
		return json.New(w), nil
	}
	return nil, fmt.Errorf("unknown format: %v", format)
}
