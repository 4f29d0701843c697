package explorer

import (
	"strings"
	"sync"

	"github.com/arthur-debert/dodex/pkg/style"
	"github.com/arthur-debert/dodex/pkg/types"
)

// Row is one visible line of an explorer.
type Row struct {
	e *Explorer

	path      string
	Name      string
	Depth     int
	IsFolder  bool
	Extension string
}

// Path returns the vault path of the row.
func (r *Row) Path() string { return r.path }

// Collapsed reports whether the row is a folder showing no children.
func (r *Row) Collapsed() bool {
	if !r.IsFolder {
		return false
	}
	r.e.mu.Lock()
	defer r.e.mu.Unlock()
	return !r.e.expanded[r.path]
}

// SetMarked sets the mark indicator of the row.
func (r *Row) SetMarked(marked bool) {
	r.e.mu.Lock()
	defer r.e.mu.Unlock()
	if marked {
		r.e.marked[r.path] = true
	} else {
		delete(r.e.marked, r.path)
	}
}

// Marked reports whether the row carries the mark indicator.
func (r *Row) Marked() bool {
	r.e.mu.Lock()
	defer r.e.mu.Unlock()
	return r.e.marked[r.path]
}

// Explorer is a types.Container showing a vault tree.
type Explorer struct {
	mu        sync.Mutex
	root      *types.Folder
	expanded  map[string]bool
	marked    map[string]bool
	rows      []*Row
	observers map[int]func()
	nextID    int
}

// New returns an explorer over root with every folder collapsed.
func New(root *types.Folder) *Explorer {
	e := &Explorer{
		root:      root,
		expanded:  make(map[string]bool),
		marked:    make(map[string]bool),
		observers: make(map[int]func()),
	}
	e.rows = e.buildRows()
	return e
}

// Elements returns the visible rows.
func (e *Explorer) Elements() []types.Element {
	e.mu.Lock()
	defer e.mu.Unlock()
	elements := make([]types.Element, len(e.rows))
	for i, r := range e.rows {
		elements[i] = r
	}
	return elements
}

// Rows returns the visible rows.
func (e *Explorer) Rows() []*Row {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*Row(nil), e.rows...)
}

// Root returns the tree shown.
func (e *Explorer) Root() *types.Folder {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.root
}

// Toggle expands or collapses the folder at path. It returns false when
// path is not a folder of the tree.
func (e *Explorer) Toggle(path string) bool {
	e.mu.Lock()
	folder, ok := types.Find(e.root, path).(*types.Folder)
	if !ok || folder.IsRoot() {
		e.mu.Unlock()
		return false
	}
	e.expanded[path] = !e.expanded[path]
	e.rows = e.buildRows()
	e.mu.Unlock()

	e.notify()
	return true
}

// ExpandAll expands every folder.
func (e *Explorer) ExpandAll() {
	e.setAll(true)
}

// CollapseAll collapses every folder.
func (e *Explorer) CollapseAll() {
	e.setAll(false)
}

func (e *Explorer) setAll(expanded bool) {
	e.mu.Lock()
	e.expanded = make(map[string]bool)
	if expanded {
		types.Walk(e.root, func(n types.Node) {
			if f, ok := n.(*types.Folder); ok && !f.IsRoot() {
				e.expanded[f.Path] = true
			}
		})
	}
	e.rows = e.buildRows()
	e.mu.Unlock()
	e.notify()
}

// Reload replaces the tree, keeping the expanded folders that still exist.
func (e *Explorer) Reload(root *types.Folder) {
	e.mu.Lock()
	e.root = root
	for path := range e.expanded {
		if _, ok := types.Find(root, path).(*types.Folder); !ok {
			delete(e.expanded, path)
		}
	}
	e.rows = e.buildRows()
	e.mu.Unlock()
	e.notify()
}

// Observe calls fn whenever the visible rows change.
func (e *Explorer) Observe(fn func()) (stop func()) {
	e.mu.Lock()
	id := e.nextID
	e.nextID++
	e.observers[id] = fn
	e.mu.Unlock()

	return func() {
		e.mu.Lock()
		delete(e.observers, id)
		e.mu.Unlock()
	}
}

func (e *Explorer) notify() {
	e.mu.Lock()
	fns := make([]func(), 0, len(e.observers))
	for _, fn := range e.observers {
		fns = append(fns, fn)
	}
	e.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// buildRows lists the visible rows, folders first. Callers hold e.mu.
func (e *Explorer) buildRows() []*Row {
	var rows []*Row
	var add func(folder *types.Folder, depth int)
	add = func(folder *types.Folder, depth int) {
		for _, sub := range folder.Folders() {
			rows = append(rows, &Row{e: e, path: sub.Path, Name: sub.Name, Depth: depth, IsFolder: true})
			if e.expanded[sub.Path] {
				add(sub, depth+1)
			}
		}
		for _, f := range folder.Files() {
			rows = append(rows, &Row{e: e, path: f.Path, Name: f.Name, Depth: depth, Extension: f.Extension})
		}
	}
	if e.root != nil {
		add(e.root, 0)
	}
	return rows
}

// Render draws the visible rows. The row at cursor is highlighted; pass -1
// for none.
func (e *Explorer) Render(cursor int) string {
	rows := e.Rows()
	var b strings.Builder
	for i, r := range rows {
		line := renderRow(r)
		if i == cursor {
			line = style.CursorStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderRow(r *Row) string {
	var name string
	switch {
	case r.IsFolder && r.Collapsed():
		name = style.CollapsedFolder + " " + style.FolderStyle.Render(r.Name)
	case r.IsFolder:
		name = style.ExpandedFolder + " " + style.FolderStyle.Render(r.Name)
	case r.Extension == types.ExtCanvas:
		name = "  " + style.CanvasStyle.Render(r.Name)
	default:
		name = "  " + style.FileStyle.Render(r.Name)
	}
	line := strings.Repeat("  ", r.Depth) + name
	if r.Marked() {
		line += " " + style.MarkIndicator
	}
	return line
}

// Host is a types.VisualHost over the open explorers.
type Host struct {
	mu   sync.Mutex
	open []*Explorer
}

func NewHost() *Host {
	return &Host{}
}

// Open shows e.
func (h *Host) Open(e *Explorer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, o := range h.open {
		if o == e {
			return
		}
	}
	h.open = append(h.open, e)
}

// Close hides e.
func (h *Host) Close(e *Explorer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, o := range h.open {
		if o == e {
			h.open = append(h.open[:i], h.open[i+1:]...)
			return
		}
	}
}

func (h *Host) ListVisibleContainers() []types.Container {
	h.mu.Lock()
	defer h.mu.Unlock()
	containers := make([]types.Container, len(h.open))
	for i, e := range h.open {
		containers[i] = e
	}
	return containers
}

func (h *Host) ObserveContainer(c types.Container, onChange func()) (stop func()) {
	e, ok := c.(*Explorer)
	if !ok {
		return func() {}
	}
	return e.Observe(onChange)
}
