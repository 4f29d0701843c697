package marker

import (
	"sync"
	"time"

	"github.com/arthur-debert/dodex/pkg/canvas"
	"github.com/arthur-debert/dodex/pkg/logging"
	"github.com/arthur-debert/dodex/pkg/scheduler"
	"github.com/arthur-debert/dodex/pkg/types"
)

// DefaultDelay coalesces bursts of mark changes into one rebuild.
const DefaultDelay = 50 * time.Millisecond

// MarkStore persists the mark map.
type MarkStore interface {
	LoadMarks() map[string]types.UnmarkPolicy
	SaveMarks(marks map[string]types.UnmarkPolicy) error
}

// Ledger tells whether a timestamp belongs to one of dodex's own writes.
type Ledger interface {
	Contains(ts int64) bool
}

// Reader reads file content, used to count canvas links.
type Reader interface {
	Read(path string) (string, error)
}

// Options configures an Overlay. Visual and Reader may be nil.
type Options struct {
	Tree   types.TreeView
	Visual types.VisualHost
	Store  MarkStore
	Ledger Ledger
	Reader Reader
	Delay  time.Duration
}

// Overlay keeps the set of marked files and shows it on the visual host.
type Overlay struct {
	opts Options

	mu         sync.Mutex
	marks      map[string]types.UnmarkPolicy
	folders    map[string]struct{}
	containers []types.Container
	stops      []func()
	closed     bool

	rebuildDebounce *scheduler.Debouncer
	applyDebounce   *scheduler.Debouncer
}

// New returns an empty Overlay. Call Restore to load persisted marks.
func New(opts Options) *Overlay {
	if opts.Delay <= 0 {
		opts.Delay = DefaultDelay
	}
	return &Overlay{
		opts:            opts,
		marks:           make(map[string]types.UnmarkPolicy),
		folders:         make(map[string]struct{}),
		rebuildDebounce: scheduler.NewDebouncer(opts.Delay),
		applyDebounce:   scheduler.NewDebouncer(opts.Delay),
	}
}

// MarkFile marks path until policy clears it.
func (o *Overlay) MarkFile(path string, policy types.UnmarkPolicy) {
	o.mu.Lock()
	o.marks[path] = policy
	o.mu.Unlock()

	logger := logging.GetLogger("marker.mark")
	logger.Debug().Str("path", path).Str("policy", string(policy)).Msg("Marked")
	o.scheduleRebuild()
}

// UnmarkFile removes the mark of path and reports whether there was one.
func (o *Overlay) UnmarkFile(path string) bool {
	o.mu.Lock()
	_, ok := o.marks[path]
	delete(o.marks, path)
	o.mu.Unlock()

	if ok {
		logger := logging.GetLogger("marker.unmark")
		logger.Debug().Str("path", path).Msg("Unmarked")
		o.scheduleRebuild()
	}
	return ok
}

// UnmarkAll removes every mark.
func (o *Overlay) UnmarkAll() {
	o.mu.Lock()
	o.marks = make(map[string]types.UnmarkPolicy)
	o.mu.Unlock()
	o.scheduleRebuild()
}

// Restore loads the persisted marks, dropping those whose file is gone.
func (o *Overlay) Restore() {
	logger := logging.GetLogger("marker.restore")

	loaded := o.opts.Store.LoadMarks()
	marks := make(map[string]types.UnmarkPolicy, len(loaded))
	for path, policy := range loaded {
		if o.opts.Tree != nil && !o.opts.Tree.Exists(path) {
			logger.Debug().Str("path", path).Msg("Pruning mark of missing file")
			continue
		}
		marks[path] = policy
	}

	o.mu.Lock()
	o.marks = marks
	o.mu.Unlock()
	logger.Debug().Int("count", len(marks)).Msg("Restored marks")
	o.scheduleRebuild()
}

// Marks returns a copy of the mark map.
func (o *Overlay) Marks() map[string]types.UnmarkPolicy {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make(map[string]types.UnmarkPolicy, len(o.marks))
	for k, v := range o.marks {
		out[k] = v
	}
	return out
}

// IsMarked reports whether the row for path should carry the indicator.
func (o *Overlay) IsMarked(path string, collapsed bool) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.isMarkedLocked(path, collapsed)
}

func (o *Overlay) isMarkedLocked(path string, collapsed bool) bool {
	if _, ok := o.marks[path]; ok {
		return true
	}
	_, ancestor := o.folders[path]
	return ancestor && collapsed
}

// HandleEvent clears marks according to a vault change.
func (o *Overlay) HandleEvent(ev types.ChangeEvent) {
	switch ev.Kind {
	case types.ChangeModified:
		o.mu.Lock()
		policy, ok := o.marks[ev.Path]
		o.mu.Unlock()
		if !ok {
			return
		}
		if o.opts.Ledger != nil && o.opts.Ledger.Contains(ev.Mtime) {
			return
		}
		if policy == types.UnmarkOnTouch || o.linkCount(ev) == 0 {
			o.UnmarkFile(ev.Path)
		}
	case types.ChangeRenamed:
		if ev.OldPath == ev.Path {
			return
		}
		o.UnmarkFile(ev.OldPath)
	case types.ChangeDeleted:
		o.UnmarkFile(ev.Path)
	}
}

// linkCount returns the reported link count, counting canvas file nodes
// when the host could not. -1 means unknown.
func (o *Overlay) linkCount(ev types.ChangeEvent) int {
	if ev.LinkCount >= 0 {
		return ev.LinkCount
	}
	_, ext := types.SplitName(ev.Path)
	if ext != types.ExtCanvas || o.opts.Reader == nil {
		return -1
	}
	content, err := o.opts.Reader.Read(ev.Path)
	if err != nil {
		return -1
	}
	paths, err := canvas.FileLinks(content)
	if err != nil {
		return -1
	}
	return len(paths)
}

// Refresh observes the currently visible containers if they changed.
// With no visible container nothing happens; the next Refresh tries again.
func (o *Overlay) Refresh() {
	if o.opts.Visual == nil {
		return
	}
	fresh := o.opts.Visual.ListVisibleContainers()

	o.mu.Lock()
	if o.closed || len(fresh) == 0 || sameContainers(fresh, o.containers) {
		o.mu.Unlock()
		return
	}
	stops := o.stops
	o.stops = nil
	o.containers = fresh
	o.mu.Unlock()

	for _, stop := range stops {
		stop()
	}

	var newStops []func()
	for _, c := range fresh {
		newStops = append(newStops, o.opts.Visual.ObserveContainer(c, o.scheduleApply))
	}

	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		for _, stop := range newStops {
			stop()
		}
		return
	}
	o.stops = newStops
	o.mu.Unlock()

	logger := logging.GetLogger("marker.refresh")
	logger.Debug().Int("containers", len(fresh)).Msg("Observing containers")
	o.scheduleApply()
}

func sameContainers(a, b []types.Container) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[types.Container]struct{}, len(b))
	for _, c := range b {
		seen[c] = struct{}{}
	}
	for _, c := range a {
		if _, ok := seen[c]; !ok {
			return false
		}
	}
	return true
}

// Flush runs any pending rebuild and indicator update now.
func (o *Overlay) Flush() {
	o.rebuildDebounce.Flush()
	o.applyDebounce.Flush()
}

// Close stops observing containers. Marks stay persisted.
func (o *Overlay) Close() {
	o.rebuildDebounce.Flush()
	o.applyDebounce.Cancel()

	o.mu.Lock()
	stops := o.stops
	o.stops = nil
	o.containers = nil
	o.closed = true
	o.mu.Unlock()

	for _, stop := range stops {
		stop()
	}
}

func (o *Overlay) scheduleRebuild() {
	o.rebuildDebounce.Trigger(o.rebuild)
}

func (o *Overlay) scheduleApply() {
	o.applyDebounce.Trigger(o.apply)
}

// rebuild recomputes the marked ancestor folders, persists the marks and
// updates the indicators.
func (o *Overlay) rebuild() {
	o.mu.Lock()
	folders := make(map[string]struct{})
	for path := range o.marks {
		for dir := types.ParentPath(path); dir != ""; dir = types.ParentPath(dir) {
			if _, seen := folders[dir]; seen {
				break
			}
			folders[dir] = struct{}{}
		}
	}
	o.folders = folders
	snapshot := make(map[string]types.UnmarkPolicy, len(o.marks))
	for k, v := range o.marks {
		snapshot[k] = v
	}
	o.mu.Unlock()

	if o.opts.Store != nil {
		if err := o.opts.Store.SaveMarks(snapshot); err != nil {
			logger := logging.GetLogger("marker.rebuild")
			logger.Error().Err(err).Msg("Failed to persist marks")
		}
	}
	o.apply()
}

// apply sets the indicator of every element of every observed container.
func (o *Overlay) apply() {
	o.mu.Lock()
	closed := o.closed
	empty := len(o.containers) == 0
	o.mu.Unlock()
	if closed {
		return
	}
	if empty {
		o.Refresh()
	}

	o.mu.Lock()
	containers := append([]types.Container(nil), o.containers...)
	o.mu.Unlock()

	for _, c := range containers {
		for _, el := range c.Elements() {
			el.SetMarked(o.IsMarked(el.Path(), el.Collapsed()))
		}
	}
}
