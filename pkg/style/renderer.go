package style

import (
	"fmt"
	"strings"

	"github.com/arthur-debert/dodex/pkg/errors"
	"github.com/arthur-debert/dodex/pkg/types"
	"github.com/pterm/pterm"
)

// IndexResult is one checked index as shown to the user.
type IndexResult struct {
	Index   string
	Target  string
	Missing []string
	Written bool
}

// Renderer renders command results.
type Renderer interface {
	RenderIndexes(results []IndexResult, dryRun bool) string
	RenderMarks(marks []types.MarkEntry) string
	RenderError(err error) string
}

// NewRenderer returns the renderer for a resolved format. JSON output is
// encoded by the caller, so it gets the plain renderer.
func NewRenderer(f Format) Renderer {
	if f == FormatTerminal {
		return NewTerminalRenderer()
	}
	return NewPlainRenderer()
}

// PolicyStyle returns the pterm style of an unmark policy.
func PolicyStyle(policy types.UnmarkPolicy) *pterm.Style {
	switch policy {
	case types.UnmarkOnTouch:
		return pterm.NewStyle(pterm.FgYellow)
	case types.UnmarkOnEmpty:
		return pterm.NewStyle(pterm.FgCyan)
	}
	return pterm.NewStyle(pterm.FgGray)
}

// TerminalRenderer renders with colors and indicators.
type TerminalRenderer struct{}

func NewTerminalRenderer() *TerminalRenderer {
	return &TerminalRenderer{}
}

func (r *TerminalRenderer) RenderIndexes(results []IndexResult, dryRun bool) string {
	var b strings.Builder
	for _, res := range results {
		if len(res.Missing) == 0 {
			continue
		}
		indicator := WarningIndicator
		if res.Written {
			indicator = SuccessIndicator
		}
		verb := "missing"
		if res.Written {
			verb = "added"
		} else if dryRun {
			verb = "to add"
		}
		line := fmt.Sprintf("%s %s %s", indicator, IndexStyle.Render(res.Index),
			MutedStyle.Render(fmt.Sprintf("%d %s", len(res.Missing), verb)))
		if res.Target != "" && res.Target != res.Index {
			line += " " + MutedStyle.Render("->") + " " + PathStyle.Render(res.Target)
		}
		b.WriteString(line + "\n")
		for _, p := range res.Missing {
			b.WriteString(Indent(PathStyle.Render(p), 2) + "\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func (r *TerminalRenderer) RenderMarks(marks []types.MarkEntry) string {
	if len(marks) == 0 {
		return MutedStyle.Render("No marked files")
	}
	width := 0
	for _, m := range marks {
		width = max(width, len(m.Path))
	}
	var b strings.Builder
	for _, m := range marks {
		fmt.Fprintf(&b, "%s %-*s  %s\n", MarkIndicator, width, m.Path, PolicyStyle(m.Policy).Sprint(string(m.Policy)))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (r *TerminalRenderer) RenderError(err error) string {
	if err == nil {
		return ""
	}
	if code := errors.GetErrorCode(err); code != errors.ErrUnknown {
		return fmt.Sprintf("%s Error [%s]: %s", pterm.Error.Prefix.Text,
			pterm.Error.MessageStyle.Sprint(string(code)), err.Error())
	}
	return fmt.Sprintf("%s %s", pterm.Error.Prefix.Text, pterm.Error.MessageStyle.Sprint(err.Error()))
}

// PlainRenderer renders without styling, one fact per line.
type PlainRenderer struct{}

func NewPlainRenderer() *PlainRenderer {
	return &PlainRenderer{}
}

func (r *PlainRenderer) RenderIndexes(results []IndexResult, dryRun bool) string {
	var b strings.Builder
	for _, res := range results {
		for _, p := range res.Missing {
			fmt.Fprintf(&b, "%s\t%s\n", res.Target, p)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func (r *PlainRenderer) RenderMarks(marks []types.MarkEntry) string {
	var b strings.Builder
	for _, m := range marks {
		fmt.Fprintf(&b, "%s\t%s\n", m.Path, m.Policy)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (r *PlainRenderer) RenderError(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %s", err.Error())
}
