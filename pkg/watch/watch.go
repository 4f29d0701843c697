package watch

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/arthur-debert/dodex/pkg/errors"
	"github.com/arthur-debert/dodex/pkg/logging"
	"github.com/arthur-debert/dodex/pkg/scheduler"
	"github.com/arthur-debert/dodex/pkg/types"
	"github.com/arthur-debert/dodex/pkg/vault"
	"github.com/fsnotify/fsnotify"
)

// DefaultSettle is the quiet period before a path's events are delivered.
const DefaultSettle = 100 * time.Millisecond

// Vault is the part of the vault adapter the feed needs.
type Vault interface {
	types.TreeView
	types.LinkResolver
	RootDir() string
	Rel(abs string) (string, bool)
	Reindex(p string)
}

// Ledger tells whether a timestamp belongs to one of dodex's own writes.
type Ledger interface {
	Contains(ts int64) bool
}

// Activity records user activity.
type Activity interface {
	Touch()
}

// Options configures a Feed. Activity may be nil.
type Options struct {
	FS       types.FS
	Vault    Vault
	Ledger   Ledger
	Activity Activity
	Settle   time.Duration
}

// Feed is a types.ChangeFeed backed by fsnotify.
type Feed struct {
	opts    Options
	pending *scheduler.Coalescer

	mu      sync.Mutex
	subs    map[int]func(types.ChangeEvent)
	nextID  int
	renames []string
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// New returns a Feed. Events can be fed through Handle directly; Start
// connects it to the filesystem.
func New(opts Options) *Feed {
	if opts.Settle <= 0 {
		opts.Settle = DefaultSettle
	}
	return &Feed{
		opts:    opts,
		pending: scheduler.NewCoalescer(),
		subs:    make(map[int]func(types.ChangeEvent)),
	}
}

// Subscribe registers fn for every event until cancel is called.
func (f *Feed) Subscribe(fn func(types.ChangeEvent)) (cancel func()) {
	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.subs[id] = fn
	f.mu.Unlock()

	return func() {
		f.mu.Lock()
		delete(f.subs, id)
		f.mu.Unlock()
	}
}

// Start watches every folder of the vault outside dot folders and delivers
// events until ctx is done or Close is called.
func (f *Feed) Start(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, errors.ErrWatch, "cannot create watcher")
	}

	f.mu.Lock()
	f.watcher = w
	f.done = make(chan struct{})
	f.mu.Unlock()

	if err := f.addTree(""); err != nil {
		_ = w.Close()
		return err
	}

	logger := logging.GetLogger("watch.start")
	logger.Info().Str("root", f.opts.Vault.RootDir()).Int("folders", len(w.WatchList())).Msg("Watching vault")
	go f.loop(ctx, w)
	return nil
}

// Close stops the watcher and drops pending events.
func (f *Feed) Close() error {
	f.pending.Stop()

	f.mu.Lock()
	w, done := f.watcher, f.done
	f.watcher = nil
	f.mu.Unlock()

	if w == nil {
		return nil
	}
	err := w.Close()
	<-done
	if err != nil {
		return errors.Wrap(err, errors.ErrWatch, "cannot close watcher")
	}
	return nil
}

func (f *Feed) loop(ctx context.Context, w *fsnotify.Watcher) {
	logger := logging.GetLogger("watch.loop")
	defer close(f.done)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			f.Handle(ev)
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			logger.Warn().Err(err).Msg("Watcher error")
		}
	}
}

// Handle translates one filesystem notification.
func (f *Feed) Handle(ev fsnotify.Event) {
	rel, ok := f.opts.Vault.Rel(ev.Name)
	if !ok || rel == "" || vault.IsHidden(rel) {
		return
	}
	logger := logging.GetLogger("watch.event").With().Str("path", rel).Str("op", ev.Op.String()).Logger()
	logger.Trace().Msg("Notification")

	switch {
	case ev.Has(fsnotify.Create):
		isDir := false
		if info, err := f.opts.FS.Stat(ev.Name); err == nil && info.IsDir() {
			isDir = true
			if err := f.addTree(rel); err != nil {
				logger.Warn().Err(err).Msg("Cannot watch new folder")
			}
		}
		f.opts.Vault.Reindex(rel)
		if !isDir && f.ownWrite(rel) {
			f.scheduleModified(rel)
			return
		}
		if old, ok := f.claimRename(); ok {
			f.touch()
			f.emit(types.ChangeEvent{Kind: types.ChangeRenamed, Path: rel, OldPath: old, LinkCount: -1})
			return
		}
		if !isDir {
			f.scheduleModified(rel)
		}
	case ev.Has(fsnotify.Write):
		f.scheduleModified(rel)
	case ev.Has(fsnotify.Remove):
		f.opts.Vault.Reindex(rel)
		f.touch()
		f.emit(types.ChangeEvent{Kind: types.ChangeDeleted, Path: rel, LinkCount: -1})
	case ev.Has(fsnotify.Rename):
		f.opts.Vault.Reindex(rel)
		f.holdRename(rel)
	}
}

func (f *Feed) scheduleModified(rel string) {
	f.pending.Schedule(rel, f.opts.Settle, func() { f.modified(rel) })
}

// modified delivers the settled state of rel, if it is still a file.
func (f *Feed) modified(rel string) {
	logger := logging.GetLogger("watch.modified").With().Str("path", rel).Logger()
	file, err := f.opts.Vault.Stat(rel)
	if err != nil {
		logger.Debug().Err(err).Msg("Gone before settling")
		return
	}

	count := -1
	if !file.IsCanvas() {
		if set, err := f.opts.Vault.ResolvedLinks(file); err == nil {
			count = len(set)
		} else {
			logger.Debug().Err(err).Msg("Links unknown")
		}
	}
	if f.opts.Ledger == nil || !f.opts.Ledger.Contains(file.Mtime) {
		f.touch()
	}
	f.emit(types.ChangeEvent{Kind: types.ChangeModified, Path: rel, Mtime: file.Mtime, LinkCount: count})
}

// holdRename keeps old waiting for the creation of its new name.
func (f *Feed) holdRename(old string) {
	f.mu.Lock()
	f.renames = append(f.renames, old)
	f.mu.Unlock()

	f.pending.Schedule("rename:"+old, f.opts.Settle, func() {
		if f.dropRename(old) && !f.opts.Vault.Exists(old) {
			f.touch()
			f.emit(types.ChangeEvent{Kind: types.ChangeDeleted, Path: old, LinkCount: -1})
		}
	})
}

// ownWrite reports whether rel was just written by dodex. Such a file is
// never the new name of a pending rename.
func (f *Feed) ownWrite(rel string) bool {
	if f.opts.Ledger == nil {
		return false
	}
	file, err := f.opts.Vault.Stat(rel)
	return err == nil && f.opts.Ledger.Contains(file.Mtime)
}

func (f *Feed) claimRename() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.renames) == 0 {
		return "", false
	}
	old := f.renames[0]
	f.renames = f.renames[1:]
	return old, true
}

func (f *Feed) dropRename(old string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, p := range f.renames {
		if p == old {
			f.renames = append(f.renames[:i], f.renames[i+1:]...)
			return true
		}
	}
	return false
}

func (f *Feed) touch() {
	if f.opts.Activity != nil {
		f.opts.Activity.Touch()
	}
}

func (f *Feed) emit(ev types.ChangeEvent) {
	f.mu.Lock()
	subs := make([]func(types.ChangeEvent), 0, len(f.subs))
	for _, fn := range f.subs {
		subs = append(subs, fn)
	}
	f.mu.Unlock()

	logger := logging.GetLogger("watch.emit")
	logger.Debug().Str("kind", ev.Kind.String()).Str("path", ev.Path).Int("links", ev.LinkCount).Msg("Change")
	for _, fn := range subs {
		fn(ev)
	}
}

// addTree watches the folder rel and every folder below it.
func (f *Feed) addTree(rel string) error {
	f.mu.Lock()
	w := f.watcher
	f.mu.Unlock()
	if w == nil {
		return nil
	}

	abs := filepath.Join(f.opts.Vault.RootDir(), filepath.FromSlash(rel))
	if err := w.Add(abs); err != nil {
		return errors.Wrapf(err, errors.ErrWatch, "cannot watch %q", abs)
	}
	entries, err := f.opts.FS.ReadDir(abs)
	if err != nil {
		return errors.Wrapf(err, errors.ErrVaultAccess, "cannot read folder %q", rel)
	}
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if err := f.addTree(types.JoinPath(rel, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}
