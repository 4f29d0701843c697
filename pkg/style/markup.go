package style

import (
	"regexp"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// MarkupParser renders [tag]text[/tag] markup with named styles.
type MarkupParser struct {
	styles map[string]lipgloss.Style
	tags   []*regexp.Regexp
	names  []string
}

// NewMarkupParser returns a parser knowing the default tags.
func NewMarkupParser() *MarkupParser {
	p := &MarkupParser{styles: map[string]lipgloss.Style{}}
	for tag, s := range map[string]lipgloss.Style{
		"title":   TitleStyle,
		"success": SuccessStyle,
		"error":   ErrorStyle,
		"warning": WarningStyle,
		"muted":   MutedStyle,
		"path":    PathStyle,
		"code":    CodeStyle,
		"bold":    lipgloss.NewStyle().Bold(true),
		"folder":  FolderStyle,
		"index":   IndexStyle,
		"canvas":  CanvasStyle,
		"mark":    MarkStyle,
	} {
		p.AddStyle(tag, s)
	}
	return p
}

// AddStyle registers or replaces a tag.
func (p *MarkupParser) AddStyle(tag string, s lipgloss.Style) {
	if _, ok := p.styles[tag]; !ok {
		p.names = append(p.names, tag)
		sort.Strings(p.names)
	}
	p.styles[tag] = s
	p.tags = p.tags[:0]
	for _, name := range p.names {
		p.tags = append(p.tags, regexp.MustCompile(`\[`+regexp.QuoteMeta(name)+`\](.*?)\[/`+regexp.QuoteMeta(name)+`\]`))
	}
}

// Render replaces every tag pair with its styled content. Nested tags are
// rendered inside out.
func (p *MarkupParser) Render(text string) string {
	for {
		before := text
		for i, re := range p.tags {
			s := p.styles[p.names[i]]
			text = re.ReplaceAllStringFunc(text, func(match string) string {
				return s.Render(re.FindStringSubmatch(match)[1])
			})
		}
		if text == before {
			return text
		}
	}
}

// RenderTemplate substitutes {{key}} placeholders, then renders markup.
func (p *MarkupParser) RenderTemplate(template string, vars map[string]string) string {
	for key, value := range vars {
		template = strings.ReplaceAll(template, "{{"+key+"}}", value)
	}
	return p.Render(template)
}

var defaultParser = NewMarkupParser()

// Render renders markup with the default parser.
func Render(text string) string {
	return defaultParser.Render(text)
}

// RenderTemplate renders a template with the default parser.
func RenderTemplate(template string, vars map[string]string) string {
	return defaultParser.RenderTemplate(template, vars)
}
