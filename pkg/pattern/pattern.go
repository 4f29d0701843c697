package pattern

import (
	"regexp"
	"strings"
	"sync"

	"github.com/arthur-debert/dodex/pkg/errors"
	"github.com/arthur-debert/dodex/pkg/logging"
	"github.com/arthur-debert/dodex/pkg/types"
)

// Token is a placeholder substituted into user patterns and templates.
type Token string

const (
	Folder Token = "[FOLDER]"
	Vault  Token = "[VAULT]"
	Index  Token = "[INDEX]"
	Links  Token = "[LINKS]"
)

var tokenOrder = []Token{Folder, Vault, Index, Links}

// Tokens maps placeholders to their values for one folder.
type Tokens map[Token]string

// Substitute replaces every occurrence of each token present in tokens.
func Substitute(pattern string, tokens Tokens) string {
	for _, tok := range tokenOrder {
		if value, ok := tokens[tok]; ok {
			pattern = strings.ReplaceAll(pattern, string(tok), value)
		}
	}
	return pattern
}

// Matcher tests names against a compiled pattern. The zero Matcher matches nothing.
type Matcher struct {
	re     *regexp.Regexp
	source string
}

// Match reports whether s matches.
func (m *Matcher) Match(s string) bool {
	if m == nil || m.re == nil {
		return false
	}
	return m.re.MatchString(s)
}

// MatchFile reports whether the file's basename or full name matches.
func (m *Matcher) MatchFile(f *types.File) bool {
	return m.Match(f.Basename) || m.Match(f.Name)
}

// String returns the regular expression source, empty for a never matching matcher.
func (m *Matcher) String() string {
	if m == nil {
		return ""
	}
	return m.source
}

type compiled struct {
	matcher *Matcher
	err     error
}

// Compiler compiles and memoizes patterns, keyed by the substituted text.
type Compiler struct {
	mu    sync.Mutex
	cache map[string]compiled
}

// NewCompiler returns an empty Compiler.
func NewCompiler() *Compiler {
	return &Compiler{cache: make(map[string]compiled)}
}

// Compile substitutes tokens into pattern and compiles the result.
// Each non-blank line is a literal with * wildcards, or a raw regular
// expression when wrapped in slashes. Lines that fail to compile are left out
// and reported through the returned error; the matcher is always usable.
func (c *Compiler) Compile(pattern string, tokens Tokens) (*Matcher, error) {
	text := Substitute(pattern, tokens)

	c.mu.Lock()
	defer c.mu.Unlock()
	if hit, ok := c.cache[text]; ok {
		return hit.matcher, hit.err
	}

	m, err := compile(text)
	c.cache[text] = compiled{matcher: m, err: err}
	return m, err
}

func compile(text string) (*Matcher, error) {
	logger := logging.GetLogger("pattern.compile")

	var parts []string
	var firstErr error
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		src, err := lineSource(line)
		if err != nil {
			logger.Warn().Err(err).Str("pattern", line).Msg("Invalid pattern ignored")
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		parts = append(parts, src)
	}

	if len(parts) == 0 {
		return &Matcher{}, firstErr
	}

	source := parts[0]
	if len(parts) > 1 {
		source = "(?:" + strings.Join(parts, ")|(?:") + ")"
	}
	re, err := regexp.Compile(source)
	if err != nil {
		return &Matcher{}, errors.Wrapf(err, errors.ErrPatternInvalid, "cannot compile pattern %q", text)
	}
	return &Matcher{re: re, source: source}, firstErr
}

func lineSource(line string) (string, error) {
	if len(line) >= 2 && strings.HasPrefix(line, "/") && strings.HasSuffix(line, "/") {
		inner := line[1 : len(line)-1]
		if _, err := regexp.Compile(inner); err != nil {
			return "", errors.Wrapf(err, errors.ErrPatternInvalid, "invalid regular expression %q", inner)
		}
		return inner, nil
	}
	quoted := strings.ReplaceAll(regexp.QuoteMeta(line), `\*`, ".*")
	return "^" + quoted + "$", nil
}
