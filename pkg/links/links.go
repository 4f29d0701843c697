package links

import (
	"context"
	"time"

	"github.com/arthur-debert/dodex/pkg/canvas"
	"github.com/arthur-debert/dodex/pkg/errors"
	"github.com/arthur-debert/dodex/pkg/logging"
	"github.com/arthur-debert/dodex/pkg/types"
)

// Waiter blocks until user activity has been quiet for window.
type Waiter interface {
	WaitSettled(ctx context.Context, window time.Duration) error
}

// Reader reads raw file content.
type Reader interface {
	Read(path string) (string, error)
}

// Extractor returns the set of paths an index file currently links to.
type Extractor struct {
	resolver types.LinkResolver
	reader   Reader
	waiter   Waiter
	settle   time.Duration
}

// New returns an Extractor. waiter may be nil, in which case canvas reads
// never wait.
func New(resolver types.LinkResolver, reader Reader, waiter Waiter, settle time.Duration) *Extractor {
	return &Extractor{
		resolver: resolver,
		reader:   reader,
		waiter:   waiter,
		settle:   settle,
	}
}

// Extract returns the link set of file. Markdown indexes use the resolved
// links of the vault; canvas indexes (alternate) are read and decoded, after
// waiting for user activity to settle when delay is set.
// On error the returned set is nil: the links are unknown.
func (e *Extractor) Extract(ctx context.Context, file *types.File, alternate, delay bool) (types.LinkSet, error) {
	logger := logging.GetLogger("links.extract").With().Str("index", file.Path).Logger()

	if !alternate {
		set, err := e.resolver.ResolvedLinks(file)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrLinkResolve, "cannot resolve links of %s", file.Path)
		}
		if set == nil {
			set = types.NewLinkSet()
		}
		logger.Trace().Int("count", len(set)).Msg("Resolved links")
		return set, nil
	}

	if delay && e.waiter != nil && e.settle > 0 {
		if err := e.waiter.WaitSettled(ctx, e.settle); err != nil {
			return nil, errors.Wrapf(err, errors.ErrCanvasRead, "stopped waiting to read %s", file.Path)
		}
	}

	content, err := e.reader.Read(file.Path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrCanvasRead, "cannot read canvas %s", file.Path)
	}
	paths, err := canvas.FileLinks(content)
	if err != nil {
		logger.Warn().Err(err).Msg("Cannot parse canvas")
		return nil, errors.Wrapf(err, errors.ErrCanvasParse, "cannot parse canvas %s", file.Path)
	}

	logger.Trace().Int("count", len(paths)).Msg("Read canvas links")
	return types.NewLinkSet(paths...), nil
}

// Count returns the number of links of file, -1 if they cannot be determined.
func (e *Extractor) Count(file *types.File) int {
	set, err := e.Extract(context.Background(), file, file.IsCanvas(), false)
	if err != nil {
		return -1
	}
	return len(set)
}
