// Package terminal renders results as aligned, optionally styled, text
package terminal

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/timbertson/daglink/pkg/linker"
	"github.com/timbertson/daglink/pkg/ui/styles"
)

// Renderer writes human-readable output
type Renderer struct {
	w      io.Writer
	styled bool
}

// New creates a Renderer. With styled unset no escape codes are written.
func New(w io.Writer, styled bool) *Renderer {
	return &Renderer{w: w, styled: styled}
}

func (r *Renderer) style(name, s string) string {
	if !r.styled {
		return s
	}
	return styles.Render(name, s)
}

func (r *Renderer) label(name, s string) string {
	return r.style(name, fmt.Sprintf("%-10s", s))
}

var outcomeStyles = map[linker.Outcome]string{
	linker.NoOp:     "Unchanged",
	linker.Created:  "Created",
	linker.Replaced: "Replaced",
	linker.Removed:  "Removed",
	linker.Skipped:  "Skipped",
}

// RenderResult lists changed and problematic paths followed by a summary.
// Unchanged paths are only counted.
func (r *Renderer) RenderResult(command string, result *linker.Result) error {
	var b strings.Builder

	problems := make(map[string]error)
	for _, pe := range result.Skips {
		problems[pe.Path] = pe.Err
	}
	for _, pe := range result.Failures {
		problems[pe.Path] = pe.Err
	}

	for _, path := range result.Paths() {
		outcome := result.Outcomes[path]
		if err, ok := problems[path]; ok {
			fmt.Fprintf(&b, "%s %s: %s\n", r.label("Skipped", "failed"), r.style("Path", path), r.style("Error", err.Error()))
			continue
		}
		if outcome.Changed() {
			fmt.Fprintf(&b, "%s %s\n", r.label(outcomeStyles[outcome], outcome.String()), r.style("Path", path))
		}
	}

	counts := []string{}
	for _, o := range []linker.Outcome{linker.Created, linker.Replaced, linker.Removed, linker.NoOp} {
		if n := result.Count(o); n > 0 {
			counts = append(counts, fmt.Sprintf("%d %s", n, o))
		}
	}
	if n := len(result.Skips); n > 0 {
		counts = append(counts, r.style("Skipped", fmt.Sprintf("%d skipped", n)))
	}
	if n := len(result.Failures); n > 0 {
		counts = append(counts, r.style("Skipped", fmt.Sprintf("%d failed", n)))
	}
	if len(counts) == 0 {
		counts = append(counts, "nothing to do")
	}
	fmt.Fprintf(&b, "%s: %s\n", command, strings.Join(counts, ", "))

	_, err := io.WriteString(r.w, b.String())
	return err
}

var stateStyles = map[linker.State]string{
	linker.StateLinked:     "Success",
	linker.StateOutdated:   "Warning",
	linker.StateMissing:    "Warning",
	linker.StateConflict:   "Error",
	linker.StateUnresolved: "Error",
	linker.StateStale:      "Muted",
}

// RenderStatus prints one line per path and whether the config changed
// since it was last fully applied
func (r *Renderer) RenderStatus(status *linker.Status) error {
	var b strings.Builder

	if status.ConfigFile != "" {
		fmt.Fprintf(&b, "%s\n", r.style("Header", "Config "+status.ConfigFile))
		switch {
		case !status.LastApplied.Present:
			fmt.Fprintln(&b, r.style("Muted", "never fully applied"))
		case status.UpToDate:
			fmt.Fprintf(&b, "unchanged since last applied %s\n", status.LastApplied.AppliedAt.Local().Format(time.DateTime))
		default:
			fmt.Fprintf(&b, "%s since last applied %s\n", r.style("Warning", "changed"),
				status.LastApplied.AppliedAt.Local().Format(time.DateTime))
		}
		fmt.Fprintln(&b)
	}

	for _, p := range status.Paths {
		line := r.label(stateStyles[p.State], p.State.String()) + " " + r.style("Path", p.Path)
		switch {
		case p.Err != nil:
			line += ": " + r.style("Error", p.Err.Error())
		case p.State == linker.StateLinked || p.State == linker.StateStale:
			line += " -> " + r.style("Target", p.Actual)
		case p.State == linker.StateOutdated:
			line += " -> " + r.style("Target", p.Actual) + " (wants " + p.Target + ")"
		default:
			line += " (wants " + p.Target + ")"
		}
		if !p.Tracked && p.State != linker.StateMissing {
			line += r.style("Muted", " untracked")
		}
		fmt.Fprintln(&b, line)
	}

	_, err := io.WriteString(r.w, b.String())
	return err
}

// RenderList prints items one per line
func (r *Renderer) RenderList(items []string) error {
	for _, item := range items {
		if _, err := fmt.Fprintln(r.w, item); err != nil {
			return err
		}
	}
	return nil
}

// RenderError prints err
func (r *Renderer) RenderError(err error) error {
	_, werr := fmt.Fprintf(r.w, "%s %v\n", r.style("Error", "Error:"), err)
	return werr
}

// RenderMessage prints msg
func (r *Renderer) RenderMessage(msg string) error {
	_, err := fmt.Fprintln(r.w, msg)
	return err
}
