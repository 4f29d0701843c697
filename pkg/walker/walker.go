package walker

import (
	"github.com/arthur-debert/dodex/pkg/config"
	"github.com/arthur-debert/dodex/pkg/logging"
	"github.com/arthur-debert/dodex/pkg/pattern"
	"github.com/arthur-debert/dodex/pkg/types"
)

// IndexRecord is one index file found during a walk, with the files it
// should link to.
type IndexRecord struct {
	IndexFile *types.File
	Folder    *types.Folder
	// UseAlternateFormat is set for canvas indexes.
	UseAlternateFormat bool
	Expected           []*types.File
	// OutputPath is the side file to write, empty when writing to the index.
	OutputPath string
}

// ErrorSink collects non-fatal errors of a run.
type ErrorSink interface {
	Record(err error)
}

// Walker finds index files and their expected children.
type Walker struct {
	settings  *config.Settings
	vaultName string
	compiler  *pattern.Compiler
	schedule  func(IndexRecord)
	errs      ErrorSink
}

// New returns a Walker. schedule is called once per index file found and
// must not block.
func New(settings *config.Settings, vaultName string, compiler *pattern.Compiler, schedule func(IndexRecord), errs ErrorSink) *Walker {
	if compiler == nil {
		compiler = pattern.NewCompiler()
	}
	return &Walker{
		settings:  settings,
		vaultName: vaultName,
		compiler:  compiler,
		schedule:  schedule,
		errs:      errs,
	}
}

// IsSupported reports whether files with ext can be indexes and are linked
// by default.
func IsSupported(ext string) bool {
	return ext == types.ExtMarkdown || ext == types.ExtCanvas
}

// Tokens returns the placeholder values for folder.
func (w *Walker) Tokens(folder *types.Folder) pattern.Tokens {
	name := folder.Name
	if folder.IsRoot() || name == "" {
		name = w.vaultName
	}
	return pattern.Tokens{
		pattern.Folder: name,
		pattern.Vault:  w.vaultName,
	}
}

// Walk visits folder and every folder below it, scheduling one record per
// index file, and returns the files propagated to the index of an ancestor.
func (w *Walker) Walk(folder *types.Folder, inheritedIndexAbove bool) []*types.File {
	logger := logging.GetLogger("walker.walk").With().Str("folder", folder.Path).Logger()
	tokens := w.Tokens(folder)

	indexMatcher := w.compile(w.indexPattern(folder), tokens)
	ignoreMatcher := w.compile(w.settings.IgnorePatterns, tokens)

	var indexes []*types.File
	for _, f := range folder.Files() {
		if IsSupported(f.Extension) && indexMatcher.MatchFile(f) {
			indexes = append(indexes, f)
		}
	}
	indexed := len(indexes) > 0

	mode := w.settings.NestingMode
	returnChildrenUp := inheritedIndexAbove &&
		(mode == config.NestingAll || (mode == config.NestingNoIndex && !indexed))
	returnIndexesUp := inheritedIndexAbove && mode == config.NestingNoIndex && indexed

	var nested []*types.File
	for _, sub := range folder.Folders() {
		nested = append(nested, w.Walk(sub, indexed || inheritedIndexAbove)...)
	}

	if !indexed && !returnChildrenUp {
		return nil
	}

	own := make(map[string]struct{}, len(indexes)*2)
	outputs := make(map[*types.File]string, len(indexes))
	for _, idx := range indexes {
		own[idx.Path] = struct{}{}
		if w.settings.OutputModeFor(idx.Extension) == config.OutputFile {
			out := w.OutputPath(folder, idx)
			outputs[idx] = out
			own[out] = struct{}{}
		}
	}

	var expected []*types.File
	for _, f := range folder.Files() {
		if _, skip := own[f.Path]; skip {
			continue
		}
		if !w.settings.AllFiles && !IsSupported(f.Extension) {
			continue
		}
		if ignoreMatcher.MatchFile(f) {
			continue
		}
		expected = append(expected, f)
	}
	expected = append(expected, nested...)

	for _, idx := range indexes {
		logger.Debug().
			Str("index", idx.Path).
			Int("expected", len(expected)).
			Msg("Found index")
		w.schedule(IndexRecord{
			IndexFile:          idx,
			Folder:             folder,
			UseAlternateFormat: idx.IsCanvas(),
			Expected:           expected,
			OutputPath:         outputs[idx],
		})
	}

	switch {
	case returnChildrenUp:
		return expected
	case returnIndexesUp:
		return indexes
	}
	return nil
}

// OutputPath returns the side file path for index in folder.
func (w *Walker) OutputPath(folder *types.Folder, index *types.File) string {
	tokens := w.Tokens(folder)
	tokens[pattern.Index] = index.Basename
	name := pattern.Substitute(w.settings.OutputFilePattern, tokens) + "." + index.Extension
	return types.NormalizePath(types.JoinPath(folder.Path, name))
}

func (w *Walker) indexPattern(folder *types.Folder) string {
	if folder.IsRoot() && w.settings.UseRootIndexPattern {
		return w.settings.RootIndexPattern
	}
	return w.settings.IndexPattern
}

func (w *Walker) compile(text string, tokens pattern.Tokens) *pattern.Matcher {
	m, err := w.compiler.Compile(text, tokens)
	if err != nil && w.errs != nil {
		w.errs.Record(err)
	}
	return m
}
