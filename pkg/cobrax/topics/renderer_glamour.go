package topics

import (
	"sync"

	"github.com/charmbracelet/glamour"
)

// GlamourRenderer renders markdown with glamour. Other formats pass through.
type GlamourRenderer struct {
	// Style is a glamour style name or path; empty or "auto" follows the terminal.
	Style string
	// Width wraps the output; 0 keeps glamour's default.
	Width int

	once sync.Once
	term *glamour.TermRenderer
	err  error
}

// NewGlamourRenderer returns a renderer that follows the terminal background.
func NewGlamourRenderer() *GlamourRenderer {
	return &GlamourRenderer{Style: "auto"}
}

func (r *GlamourRenderer) termRenderer() (*glamour.TermRenderer, error) {
	r.once.Do(func() {
		style := glamour.WithAutoStyle()
		if r.Style != "" && r.Style != "auto" {
			style = glamour.WithStylePath(r.Style)
		}
		opts := []glamour.TermRendererOption{style}
		if r.Width > 0 {
			opts = append(opts, glamour.WithWordWrap(r.Width))
		}
		r.term, r.err = glamour.NewTermRenderer(opts...)
	})
	return r.term, r.err
}

// Render returns content unchanged when it is not markdown or glamour fails.
func (r *GlamourRenderer) Render(content string, format string) string {
	if format != ".md" {
		return content
	}
	term, err := r.termRenderer()
	if err != nil {
		return content
	}
	rendered, err := term.Render(content)
	if err != nil {
		return content
	}
	return rendered
}
