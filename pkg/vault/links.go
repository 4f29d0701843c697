package vault

import (
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/arthur-debert/dodex/pkg/canvas"
	"github.com/arthur-debert/dodex/pkg/config"
	"github.com/arthur-debert/dodex/pkg/errors"
	"github.com/arthur-debert/dodex/pkg/logging"
	"github.com/arthur-debert/dodex/pkg/types"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"
)

// [[target]], [[target#heading]], [[target|alias]] and ![[embed]].
var wikiLink = regexp.MustCompile(`!?\[\[([^\[\]|#^]*)(?:[#^][^\[\]|]*)?(?:\|[^\[\]]*)?\]\]`)

var externalScheme = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*:`)

var markdown = goldmark.New()

// ExtractTargets returns the raw link targets of a note: wikilinks and
// markdown links of the body outside code, and wikilinks in frontmatter
// values. Targets are returned as written, without headings or aliases.
func ExtractTargets(content string) []string {
	props, body := parseFrontmatter(content)

	var targets []string
	seen := map[string]struct{}{}
	add := func(t string) {
		t = strings.TrimSpace(t)
		if t == "" {
			return
		}
		if _, ok := seen[t]; ok {
			return
		}
		seen[t] = struct{}{}
		targets = append(targets, t)
	}

	collectStrings(props, func(s string) {
		for _, m := range wikiLink.FindAllStringSubmatch(s, -1) {
			add(m[1])
		}
	})

	src := []byte(body)
	masked := append([]byte(nil), src...)
	doc := markdown.Parser().Parse(text.NewReader(src))
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Link:
			add(markdownTarget(string(node.Destination)))
		case *ast.Image:
			add(markdownTarget(string(node.Destination)))
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			lines := node.Lines()
			for i := 0; i < lines.Len(); i++ {
				blank(masked, lines.At(i))
			}
			return ast.WalkSkipChildren, nil
		case *ast.CodeSpan:
			for c := node.FirstChild(); c != nil; c = c.NextSibling() {
				if t, ok := c.(*ast.Text); ok {
					blank(masked, t.Segment)
				}
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	for _, m := range wikiLink.FindAllSubmatch(masked, -1) {
		add(string(m[1]))
	}
	return targets
}

func blank(buf []byte, seg text.Segment) {
	for i := seg.Start; i < seg.Stop && i < len(buf); i++ {
		if buf[i] != '\n' {
			buf[i] = ' '
		}
	}
}

// markdownTarget strips fragments and decodes a markdown link destination.
// External URLs and same note anchors yield "".
func markdownTarget(dest string) string {
	if dest == "" || strings.HasPrefix(dest, "#") || externalScheme.MatchString(dest) {
		return ""
	}
	if i := strings.Index(dest, "#"); i >= 0 {
		dest = dest[:i]
	}
	if decoded, err := url.PathUnescape(dest); err == nil {
		dest = decoded
	}
	return dest
}

func parseFrontmatter(content string) (map[string]any, string) {
	if !strings.HasPrefix(content, "---") {
		return nil, content
	}
	parts := strings.SplitN(content[3:], "\n---", 2)
	if len(parts) < 2 {
		return nil, content
	}
	block := strings.TrimPrefix(strings.TrimPrefix(parts[0], "\r"), "\n")
	body := strings.TrimPrefix(strings.TrimPrefix(parts[1], "\r"), "\n")

	var props map[string]any
	if err := yaml.Unmarshal([]byte(block), &props); err != nil {
		return nil, content
	}
	return props, body
}

func collectStrings(v any, fn func(string)) {
	switch value := v.(type) {
	case string:
		fn(value)
	case []any:
		for _, item := range value {
			collectStrings(item, fn)
		}
	case map[string]any:
		for _, item := range value {
			collectStrings(item, fn)
		}
	}
}

// ResolvedLinks returns the vault paths file links to. Targets that do not
// resolve to an existing file are left out.
func (v *Vault) ResolvedLinks(file *types.File) (types.LinkSet, error) {
	logger := logging.GetLogger("vault.links").With().Str("path", file.Path).Logger()

	targets, err := v.targets(file)
	if err != nil {
		return nil, err
	}

	idx, err := v.nameIndex()
	if err != nil {
		return nil, err
	}

	set := types.NewLinkSet()
	source := types.ParentPath(file.Path)
	for _, t := range targets {
		if resolved, ok := idx.resolve(t, source); ok {
			set[resolved] = struct{}{}
		} else {
			logger.Trace().Str("target", t).Msg("Unresolved link")
		}
	}
	return set, nil
}

func (v *Vault) targets(file *types.File) ([]string, error) {
	switch file.Extension {
	case types.ExtMarkdown, types.ExtCanvas:
	default:
		return nil, nil
	}

	info, err := v.fs.Stat(v.Abs(file.Path))
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrLinkResolve, "cannot stat %q", file.Path)
	}
	mtime, size := info.ModTime().UnixMilli(), info.Size()
	if v.cache != nil {
		if cached, ok := v.cache.Get(file.Path, mtime, size); ok {
			return cached, nil
		}
	}

	content, err := v.Read(file.Path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrLinkResolve, "cannot read %q", file.Path)
	}

	var targets []string
	if file.Extension == types.ExtCanvas {
		paths, err := canvas.FileLinks(content)
		if err != nil {
			return nil, err
		}
		for _, p := range paths {
			targets = append(targets, "/"+p)
		}
	} else {
		targets = ExtractTargets(content)
	}

	if v.cache != nil {
		if err := v.cache.Put(file.Path, mtime, size, targets); err != nil {
			logger := logging.GetLogger("vault.links")
			logger.Warn().Err(err).Str("path", file.Path).Msg("Cannot cache links")
		}
	}
	return targets, nil
}

func (v *Vault) nameIndex() (*nameIndex, error) {
	v.indexMu.RLock()
	idx := v.index
	v.indexMu.RUnlock()
	if idx != nil {
		return idx, nil
	}
	if _, err := v.Root(); err != nil {
		return nil, err
	}
	v.indexMu.RLock()
	defer v.indexMu.RUnlock()
	return v.index, nil
}

// resolve finds the file a target written in folder source points to: first
// relative to source, then from the vault root, then by unique file name.
// A target without extension refers to a note.
func (n *nameIndex) resolve(target, source string) (string, bool) {
	absolute := strings.HasPrefix(target, "/")
	t := types.NormalizePath(target)
	if t == "" {
		return "", false
	}

	candidates := func(p string) []string {
		p = path.Clean(p)
		if _, ext := types.SplitName(path.Base(p)); ext == "" {
			return []string{p + "." + types.ExtMarkdown, p}
		}
		return []string{p}
	}

	var tries []string
	if !absolute {
		tries = append(tries, candidates(types.JoinPath(source, t))...)
	}
	tries = append(tries, candidates(t)...)
	for _, c := range tries {
		if n.has(c) {
			return c, true
		}
	}

	if strings.HasPrefix(t, "..") || strings.HasPrefix(target, ".") {
		return "", false
	}
	for _, c := range candidates(path.Base(t)) {
		matches := n.byName[strings.ToLower(c)]
		if len(matches) == 1 {
			return matches[0], true
		}
	}
	return "", false
}

// GenerateLink returns the link text to file as written from sourcePath,
// in the configured link style. Notes are linked, other files embedded.
func (v *Vault) GenerateLink(file *types.File, sourcePath string) string {
	note := file.Extension == types.ExtMarkdown
	switch v.style {
	case config.LinkMarkdown:
		target := escapePath(file.Path)
		if note {
			return "[" + file.Basename + "](" + target + ")"
		}
		return "![](" + target + ")"
	default:
		if note {
			return "[[" + strings.TrimSuffix(file.Path, "."+types.ExtMarkdown) + "]]"
		}
		return "![[" + file.Path + "]]"
	}
}

func escapePath(p string) string {
	parts := strings.Split(p, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}
