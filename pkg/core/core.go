package core

import (
	"context"
	"sort"
	"time"

	"github.com/arthur-debert/dodex/pkg/config"
	"github.com/arthur-debert/dodex/pkg/datastore"
	"github.com/arthur-debert/dodex/pkg/errors"
	"github.com/arthur-debert/dodex/pkg/filesystem"
	"github.com/arthur-debert/dodex/pkg/linkcache"
	"github.com/arthur-debert/dodex/pkg/logging"
	"github.com/arthur-debert/dodex/pkg/marker"
	"github.com/arthur-debert/dodex/pkg/paths"
	"github.com/arthur-debert/dodex/pkg/scheduler"
	"github.com/arthur-debert/dodex/pkg/state"
	"github.com/arthur-debert/dodex/pkg/types"
	"github.com/arthur-debert/dodex/pkg/validator"
	"github.com/arthur-debert/dodex/pkg/vault"
	"github.com/arthur-debert/dodex/pkg/watch"
)

// Options configures Open.
type Options struct {
	// VaultRoot is the vault folder; empty to discover it.
	VaultRoot string
	// FS defaults to the OS filesystem.
	FS types.FS
	// Notifier may be nil.
	Notifier types.Notifier
	// Visual may be nil when nothing displays the vault.
	Visual types.VisualHost
	// SkipEnv ignores DODEX_* configuration variables.
	SkipEnv bool
	// NoCache disables the link cache regardless of the settings.
	NoCache bool
}

// App is an opened vault with every component wired.
type App struct {
	Paths     paths.Paths
	FS        types.FS
	Config    *config.Store
	Data      datastore.DataStore
	State     *state.Store
	Ledger    *state.Ledger
	Vault     *vault.Vault
	Cache     *linkcache.Cache
	Marker    *marker.Overlay
	Validator *validator.Validator
	Activity  *scheduler.Activity

	requests *scheduler.Coalescer
}

// Open wires an App. Close releases it.
func Open(opts Options) (*App, error) {
	logger := logging.GetLogger("core.open")

	p, err := paths.New(opts.VaultRoot)
	if err != nil {
		return nil, err
	}
	fs := opts.FS
	if fs == nil {
		fs = filesystem.NewOS()
	}
	info, err := fs.Stat(p.VaultRoot())
	if err != nil || !info.IsDir() {
		return nil, errors.Newf(errors.ErrVaultAccess, "vault %q is not a folder", p.VaultRoot()).
			WithDetail("vault", p.VaultRoot())
	}

	settings, err := config.Load(config.LoadOptions{
		UserConfigPath:  p.UserConfigPath(),
		VaultConfigPath: p.VaultConfigPath(),
		SkipEnv:         opts.SkipEnv,
	})
	if err != nil {
		return nil, err
	}

	app := &App{
		Paths:    p,
		FS:       fs,
		Config:   config.NewStore(fs, p.VaultConfigPath(), settings),
		Data:     datastore.New(fs, p.DataFilePath()),
		Activity: scheduler.NewActivity(),
		requests: scheduler.NewCoalescer(),
	}
	app.State = state.NewStore(app.Data)
	app.Ledger = app.State.LoadLedger()

	vopts := vault.Options{
		FS:        fs,
		Root:      p.VaultRoot(),
		TrashDir:  p.TrashDir(),
		LinkStyle: settings.LinkStyle,
	}
	if settings.LinkCache && !opts.NoCache {
		cache, err := linkcache.Open(p.LinkCachePath())
		if err != nil {
			logger.Warn().Err(err).Msg("Link cache unavailable, resolving links without it")
		} else {
			app.Cache = cache
			vopts.Cache = cache
		}
	}
	app.Vault = vault.New(vopts)

	app.Marker = marker.New(marker.Options{
		Tree:   app.Vault,
		Visual: opts.Visual,
		Store:  app.State,
		Ledger: app.Ledger,
		Reader: app.Vault,
	})
	app.Marker.Restore()

	app.Validator = validator.New(validator.Options{
		Settings: app.Config,
		Vault:    app.Vault,
		Ledger:   app.Ledger,
		Marker:   app.Marker,
		Notifier: opts.Notifier,
		Activity: app.Activity,
	})

	if app.Cache != nil {
		if n, err := app.Cache.Prune(app.Vault.Exists); err != nil {
			logger.Warn().Err(err).Msg("Failed to prune link cache")
		} else if n > 0 {
			logger.Debug().Int("count", n).Msg("Pruned link cache")
		}
	}

	logger.Info().
		Str("vault", p.VaultRoot()).
		Bool("fallback", p.UsedFallback()).
		Bool("link_cache", app.Cache != nil).
		Msg("Vault opened")
	return app, nil
}

// Check runs one index check now.
func (a *App) Check(ctx context.Context, ro validator.RunOptions) (*validator.Summary, error) {
	done := logging.LogOperationStart(logging.GetLogger("core.check"), "check")
	defer done()
	return a.Validator.Run(ctx, ro)
}

// RequestCheck starts a check once requests have stopped arriving for the
// configured debounce window. Requests made while a check runs are dropped.
func (a *App) RequestCheck(ctx context.Context) {
	settings := a.Config.Get()
	a.requests.Schedule("check", settings.Timing.CheckDebounce.Std(), func() {
		logger := logging.GetLogger("core.check")
		_, err := a.Check(ctx, validator.RunOptions{DelayCanvas: true})
		switch {
		case errors.IsErrorCode(err, errors.ErrAlreadyRunning):
			logger.Debug().Msg("Check already running, request dropped")
		case err != nil:
			logger.Error().Err(err).Msg("Check failed")
		}
	})
}

// Watch follows vault changes, clearing marks as files change, until ctx
// is done. With startup_check set, a check runs once activity settles.
func (a *App) Watch(ctx context.Context) error {
	logger := logging.GetLogger("core.watch")

	feed := watch.New(watch.Options{
		FS:       a.FS,
		Vault:    a.Vault,
		Ledger:   a.Ledger,
		Activity: a.Activity,
	})
	cancel := feed.Subscribe(a.Marker.HandleEvent)
	defer cancel()

	if err := feed.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if err := feed.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to stop watching")
		}
	}()

	if a.Config.Get().StartupCheck {
		go func() {
			if _, err := a.Check(ctx, validator.RunOptions{Startup: true}); err != nil {
				logger.Error().Err(err).Msg("Startup check failed")
			}
		}()
	}

	<-ctx.Done()
	logger.Info().Msg("Stopped watching")
	return nil
}

// Marks returns the marked files sorted by path.
func (a *App) Marks() []types.MarkEntry {
	marks := a.Marker.Marks()
	entries := make([]types.MarkEntry, 0, len(marks))
	for p, policy := range marks {
		entries = append(entries, types.MarkEntry{Path: p, Policy: policy})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries
}

// Unmark removes the marks of paths and persists the result. It returns
// the paths that were not marked.
func (a *App) Unmark(paths ...string) []string {
	var unknown []string
	for _, p := range paths {
		if !a.Marker.UnmarkFile(types.NormalizePath(p)) {
			unknown = append(unknown, p)
		}
	}
	a.Marker.Flush()
	return unknown
}

// UnmarkAll removes every mark and persists the result.
func (a *App) UnmarkAll() {
	a.Marker.UnmarkAll()
	a.Marker.Flush()
}

// Close stops pending work and releases the link cache.
func (a *App) Close() error {
	a.requests.Stop()
	a.Marker.Close()
	a.Config.Flush()
	if a.Cache != nil {
		return a.Cache.Close()
	}
	return nil
}

// WaitIdle blocks until no check is running or ctx is done.
func (a *App) WaitIdle(ctx context.Context) error {
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()
	for a.Validator.Running() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}
