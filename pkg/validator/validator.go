package validator

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/arthur-debert/dodex/pkg/config"
	"github.com/arthur-debert/dodex/pkg/diff"
	"github.com/arthur-debert/dodex/pkg/errors"
	"github.com/arthur-debert/dodex/pkg/links"
	"github.com/arthur-debert/dodex/pkg/logging"
	"github.com/arthur-debert/dodex/pkg/pattern"
	"github.com/arthur-debert/dodex/pkg/types"
	"github.com/arthur-debert/dodex/pkg/walker"
	"github.com/arthur-debert/dodex/pkg/writer"
	"golang.org/x/sync/errgroup"
)

// SettingsSource returns the settings to use for a run.
type SettingsSource interface {
	Get() config.Settings
}

// StaticSettings is a SettingsSource that never changes.
type StaticSettings config.Settings

func (s StaticSettings) Get() config.Settings { return config.Settings(s) }

// Ledger stamps runs and records dodex's own writes.
type Ledger interface {
	Stamp(now time.Time) int64
	Add(ts int64)
	Contains(ts int64) bool
}

// Activity waits for user activity to settle.
type Activity interface {
	WaitSettled(ctx context.Context, window time.Duration) error
}

// Options wires a Validator. Marker and Activity may be nil.
type Options struct {
	Settings SettingsSource
	Vault    types.Vault
	Ledger   Ledger
	Marker   writer.Marker
	Notifier types.Notifier
	Activity Activity
	// Now defaults to time.Now.
	Now func() time.Time
}

// RunOptions selects the behaviour of one run.
type RunOptions struct {
	// DryRun computes missing links without writing anything.
	DryRun bool
	// Startup waits for the startup settle window first.
	Startup bool
	// DelayCanvas waits for the canvas settle window before reading canvases.
	DelayCanvas bool
}

// IndexSummary is the outcome for one index file.
type IndexSummary struct {
	Index   string
	Target  string
	Missing []string
	Written bool
}

// Summary is the outcome of a run.
type Summary struct {
	Timestamp int64
	Indexes   []IndexSummary
	// Folders is the number of indexes with missing links.
	Folders  int
	Missing  int
	Errors   []errors.ErrorCode
	Previews []writer.Preview
	Duration time.Duration
	// Completed is false when the run ended before every index was checked.
	Completed bool
}

// Message is the user facing result line.
func (s *Summary) Message() string {
	if len(s.Indexes) == 0 {
		return "Indexes checked: no index files found."
	}
	if s.Missing == 0 {
		return "Indexes checked: no missing links!"
	}
	return fmt.Sprintf("Indexes checked: %d missing links in %d folders.", s.Missing, s.Folders)
}

// Validator runs index checks, one at a time.
type Validator struct {
	opts     Options
	compiler *pattern.Compiler
	running  atomic.Bool
	errs     *ErrorSet
}

// New returns a Validator.
func New(opts Options) *Validator {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Validator{
		opts:     opts,
		compiler: pattern.NewCompiler(),
		errs:     NewErrorSet(),
	}
}

// Running reports whether a run is in progress.
func (v *Validator) Running() bool { return v.running.Load() }

// Run checks every index of the vault and writes the missing links. Only
// one run is active at a time; a concurrent call fails with ALREADY_RUNNING.
// Per-index failures do not stop the run: they are reported once per kind
// through the notifier and listed in the summary.
func (v *Validator) Run(ctx context.Context, ro RunOptions) (summary *Summary, err error) {
	if !v.running.CompareAndSwap(false, true) {
		return nil, errors.New(errors.ErrAlreadyRunning, "an index check is already running")
	}

	logger := logging.GetLogger("validator.run")
	settings := v.opts.Settings.Get()
	start := v.opts.Now()
	summary = &Summary{}

	if ro.Startup && v.opts.Activity != nil {
		if err := v.opts.Activity.WaitSettled(ctx, settings.Timing.StartupSettle.Std()); err != nil {
			v.running.Store(false)
			return nil, errors.Wrap(err, errors.ErrUnknown, "index check cancelled")
		}
	}

	var notice types.NoticeHandle
	if v.opts.Notifier != nil {
		notice = v.opts.Notifier.Notice("Checking indexes...")
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("Index check panicked")
			v.errs.Record(errors.Newf(errors.ErrUnknown, "index check panicked: %v", r))
			err = errors.Newf(errors.ErrUnknown, "index check panicked: %v", r)
		}
		summary.Errors = v.errs.Codes()
		summary.Duration = v.opts.Now().Sub(start)
		v.report(summary)
		if notice != nil {
			notice.Hide()
		}
		v.running.Store(false)
	}()

	root, err := v.opts.Vault.Root()
	if err != nil {
		v.errs.Record(errors.Wrap(err, errors.ErrUnknown, "cannot read vault"))
		return summary, err
	}

	ts := v.opts.Ledger.Stamp(start)
	summary.Timestamp = ts
	logger.Info().Int64("ts", ts).Bool("dry_run", ro.DryRun).Msg("Checking indexes")

	var records []walker.IndexRecord
	w := walker.New(&settings, v.opts.Vault.Name(), v.compiler, func(rec walker.IndexRecord) {
		records = append(records, rec)
	}, v.errs)
	w.Walk(root, false)

	var waiter links.Waiter
	if v.opts.Activity != nil {
		waiter = v.opts.Activity
	}
	extractor := links.New(v.opts.Vault, v.opts.Vault, waiter, settings.Timing.CanvasSettle.Std())
	out := writer.New(writer.Options{
		Settings: &settings,
		Tree:     v.opts.Vault,
		Resolver: v.opts.Vault,
		Store:    v.opts.Vault,
		Ledger:   v.opts.Ledger,
		Marker:   v.opts.Marker,
		DryRun:   ro.DryRun,
	})

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(settings.Concurrency, 1))
	for _, rec := range records {
		g.Go(func() error {
			result := v.check(gctx, extractor, out, rec, ro, ts)
			mu.Lock()
			summary.Indexes = append(summary.Indexes, result)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(summary.Indexes, func(i, j int) bool {
		return summary.Indexes[i].Index < summary.Indexes[j].Index
	})
	for _, idx := range summary.Indexes {
		if len(idx.Missing) > 0 {
			summary.Folders++
			summary.Missing += len(idx.Missing)
		}
	}
	summary.Previews = out.Previews()

	if err := ctx.Err(); err != nil {
		return summary, errors.Wrap(err, errors.ErrUnknown, "index check cancelled")
	}
	summary.Completed = true
	return summary, nil
}

// check handles one index. Panics are recorded as UNKNOWN errors.
func (v *Validator) check(ctx context.Context, ex *links.Extractor, out *writer.Writer, rec walker.IndexRecord, ro RunOptions, ts int64) (result IndexSummary) {
	result.Index = rec.IndexFile.Path
	logger := logging.GetLogger("validator.task").With().Str("index", rec.IndexFile.Path).Logger()
	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("Index task panicked")
			v.errs.Record(errors.Newf(errors.ErrUnknown, "checking %s panicked: %v", rec.IndexFile.Path, r))
		}
	}()

	linked, err := ex.Extract(ctx, rec.IndexFile, rec.UseAlternateFormat, ro.DelayCanvas)
	if err != nil {
		logger.Warn().Err(err).Msg("Links unknown, skipping")
		v.errs.Record(err)
	}
	missing := diff.Missing(rec.Expected, linked)
	result.Missing = diff.Paths(missing)

	res, err := out.Commit(ctx, rec, missing, ts)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to write missing links")
		v.errs.Record(err)
	}
	result.Target = res.Target
	result.Written = res.Written
	return result
}

// report shows one alert per error kind, resets the error set and shows the
// summary notice.
func (v *Validator) report(summary *Summary) {
	logger := logging.GetLogger("validator.report")
	for _, code := range summary.Errors {
		err := v.errs.Get(code)
		logger.Warn().Err(err).Str("code", string(code)).Msg("Index check error")
		if v.opts.Notifier != nil {
			v.opts.Notifier.Alert(errors.Describe(code))
		}
	}
	v.errs.Reset()

	logger.Info().
		Int("indexes", len(summary.Indexes)).
		Int("missing", summary.Missing).
		Int("folders", summary.Folders).
		Dur("duration", summary.Duration).
		Bool("completed", summary.Completed).
		Msg(summary.Message())
	if summary.Completed && v.opts.Notifier != nil {
		v.opts.Notifier.Notice(summary.Message())
	}
}
