package writer

import (
	"context"
	"net/url"
	"regexp"
	"strings"
	"sync"

	"github.com/arthur-debert/dodex/pkg/canvas"
	"github.com/arthur-debert/dodex/pkg/config"
	"github.com/arthur-debert/dodex/pkg/diff"
	"github.com/arthur-debert/dodex/pkg/errors"
	"github.com/arthur-debert/dodex/pkg/logging"
	"github.com/arthur-debert/dodex/pkg/pattern"
	"github.com/arthur-debert/dodex/pkg/types"
	"github.com/arthur-debert/dodex/pkg/walker"
)

// Ledger records the timestamps of dodex's own writes.
type Ledger interface {
	Add(ts int64)
	Contains(ts int64) bool
}

// Marker receives mark requests for written files.
type Marker interface {
	MarkFile(path string, policy types.UnmarkPolicy)
}

// Options configures a Writer. Marker may be nil.
type Options struct {
	Settings *config.Settings
	Tree     types.TreeView
	Resolver types.LinkResolver
	Store    types.ContentStore
	Ledger   Ledger
	Marker   Marker
	// DryRun records previews instead of writing.
	DryRun bool
}

// Result describes one commit.
type Result struct {
	Index   string
	Target  string
	Mode    config.OutputMode
	Missing int
	Written bool
}

// Preview is what a dry run would have written.
type Preview struct {
	Index   string
	Target  string
	Mode    config.OutputMode
	Links   []string
	Content string
}

// Writer writes missing links according to the output mode.
type Writer struct {
	opts Options

	mu       sync.Mutex
	previews []Preview
}

// New returns a Writer.
func New(opts Options) *Writer {
	return &Writer{opts: opts}
}

// Commit writes the missing links of rec stamped with ts, then records ts in
// the ledger and requests a mark. Nothing happens when missing is empty.
func (w *Writer) Commit(ctx context.Context, rec walker.IndexRecord, missing []*types.File, ts int64) (Result, error) {
	index := rec.IndexFile
	mode := w.opts.Settings.OutputModeFor(index.Extension)
	result := Result{Index: index.Path, Mode: mode, Missing: len(missing)}
	if len(missing) == 0 {
		return result, nil
	}
	if err := ctx.Err(); err != nil {
		return result, errors.Wrapf(err, errors.ErrWrite, "cancelled before writing %s", index.Path)
	}

	logger := logging.GetLogger("writer.commit").With().
		Str("index", index.Path).
		Str("mode", string(mode)).
		Int("count", len(missing)).
		Int64("ts", ts).
		Logger()

	links := w.Render(rec, missing)
	block := FormatLinks(w.opts.Settings.LinksFormat, links)

	target := index.Path
	if mode == config.OutputFile {
		target = rec.OutputPath
		if target == "" {
			return result, errors.Newf(errors.ErrWrite, "no output file for %s", index.Path)
		}
	}
	result.Target = target

	if w.opts.DryRun {
		w.recordPreview(Preview{
			Index:   index.Path,
			Target:  target,
			Mode:    mode,
			Links:   links,
			Content: block,
		})
		logger.Debug().Msg("Dry run, nothing written")
		return result, nil
	}

	var policy types.UnmarkPolicy
	switch mode {
	case config.OutputIndex:
		if err := w.appendToIndex(rec, missing, block, ts); err != nil {
			return result, err
		}
		policy = types.UnmarkOnTouch
	case config.OutputFile:
		content := block
		if rec.UseAlternateFormat {
			encoded, err := canvas.AddFiles(canvas.Empty, diff.Paths(missing), w.layout())
			if err != nil {
				return result, err
			}
			content = encoded
		}
		if err := w.writeSideFile(target, content, ts); err != nil {
			return result, err
		}
		policy = types.UnmarkOnEmpty
	case config.OutputNone:
		w.mark(index.Path, types.UnmarkOnTouch)
		logger.Debug().Msg("Index marked, nothing written")
		return result, nil
	default:
		return result, errors.Newf(errors.ErrInvalidInput, "unknown output mode %q", mode)
	}

	w.opts.Ledger.Add(ts)
	result.Written = true
	w.mark(target, policy)
	logger.Info().Str("target", target).Msg("Wrote missing links")
	return result, nil
}

func (w *Writer) appendToIndex(rec walker.IndexRecord, missing []*types.File, block string, ts int64) error {
	path := rec.IndexFile.Path
	var transform func(string) (string, error)
	if rec.UseAlternateFormat {
		paths := diff.Paths(missing)
		layout := w.layout()
		transform = func(content string) (string, error) {
			return canvas.AddFiles(content, paths, layout)
		}
	} else {
		prepend := w.opts.Settings.Prepend
		transform = func(content string) (string, error) {
			if prepend {
				return block + content, nil
			}
			return content + block, nil
		}
	}

	if err := w.opts.Store.Process(path, transform, ts); err != nil {
		if errors.IsErrorCode(err, errors.ErrCanvasParse) {
			return err
		}
		return errors.Wrapf(err, errors.ErrWrite, "cannot update index %s", path)
	}
	return nil
}

// writeSideFile creates path, or replaces it. A file dodex did not write is
// moved to the trash first.
func (w *Writer) writeSideFile(path, content string, ts int64) error {
	logger := logging.GetLogger("writer.sidefile").With().Str("path", path).Logger()

	if !w.opts.Tree.Exists(path) {
		if _, err := w.opts.Store.Create(path, content, ts); err != nil {
			return errors.Wrapf(err, errors.ErrWrite, "cannot create %s", path)
		}
		return nil
	}

	existing, err := w.opts.Tree.Stat(path)
	if err != nil {
		return errors.Wrapf(err, errors.ErrWrite, "cannot stat %s", path)
	}
	if w.opts.Ledger.Contains(existing.Ctime) || w.opts.Ledger.Contains(existing.Mtime) {
		if err := w.opts.Store.Modify(path, content, ts); err != nil {
			return errors.Wrapf(err, errors.ErrWrite, "cannot modify %s", path)
		}
		return nil
	}

	logger.Warn().Int64("mtime", existing.Mtime).Msg("Side file was not written by dodex, moving it to trash")
	if err := w.opts.Store.Trash(path); err != nil {
		return errors.Wrapf(err, errors.ErrWrite, "cannot trash %s", path)
	}
	if _, err := w.opts.Store.Create(path, content, ts); err != nil {
		return errors.Wrapf(err, errors.ErrWrite, "cannot create %s", path)
	}
	return nil
}

// Render returns the link text for each missing file, as written from the
// index's folder.
func (w *Writer) Render(rec walker.IndexRecord, missing []*types.File) []string {
	source := ""
	if rec.IndexFile.Parent != nil {
		source = rec.IndexFile.Parent.Path
	}
	links := make([]string, 0, len(missing))
	for _, f := range missing {
		links = append(links, FixLink(w.opts.Resolver.GenerateLink(f, source)))
	}
	return links
}

// Previews returns the previews recorded by a dry run.
func (w *Writer) Previews() []Preview {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]Preview(nil), w.previews...)
}

func (w *Writer) recordPreview(p Preview) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.previews = append(w.previews, p)
}

func (w *Writer) mark(path string, policy types.UnmarkPolicy) {
	if w.opts.Marker == nil || !w.opts.Settings.MarkOnWrite {
		return
	}
	w.opts.Marker.MarkFile(path, policy)
}

func (w *Writer) layout() canvas.Layout {
	c := w.opts.Settings.Canvas
	return canvas.Layout{
		Group:      c.Group,
		GroupLabel: c.GroupLabel,
		Left:       c.Position.IsLeft(),
		Top:        c.Position.IsTop(),
		NoteWidth:  float64(c.NoteWidth),
		NoteHeight: float64(c.NoteHeight),
	}
}

// FormatLinks renders the links block written into notes.
func FormatLinks(format string, links []string) string {
	return "\n" + strings.ReplaceAll(format, string(pattern.Links), strings.Join(links, "\n")) + "\n"
}

var emptyTextLink = regexp.MustCompile(`^!?\[\]\((.+)\)$`)

// FixLink turns embeds into plain links and gives text to empty markdown
// links so that attachments are linked rather than embedded.
func FixLink(link string) string {
	if m := emptyTextLink.FindStringSubmatch(link); m != nil {
		target := m[1]
		text := target
		if decoded, err := url.PathUnescape(target); err == nil {
			text = decoded
		}
		return "[" + text + "](" + target + ")"
	}
	return strings.TrimPrefix(link, "!")
}
