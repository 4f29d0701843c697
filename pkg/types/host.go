package types

// LinkSet is the set of vault paths an index currently links to.
// A nil LinkSet means the links could not be determined.
type LinkSet map[string]struct{}

// NewLinkSet builds a known (non-nil) LinkSet from paths.
func NewLinkSet(paths ...string) LinkSet {
	set := make(LinkSet, len(paths))
	for _, p := range paths {
		set[p] = struct{}{}
	}
	return set
}

// Has reports whether p is in the set.
func (s LinkSet) Has(p string) bool {
	_, ok := s[p]
	return ok
}

// TreeView is a read-only view of the vault tree.
type TreeView interface {
	// Name is the vault display name.
	Name() string
	// Root returns a fresh snapshot of the vault tree.
	Root() (*Folder, error)
	Exists(path string) bool
	Stat(path string) (*File, error)
}

// LinkResolver exposes the host's resolved outbound links.
type LinkResolver interface {
	ResolvedLinks(file *File) (LinkSet, error)
	// GenerateLink returns link text pointing at file, as written from sourcePath.
	GenerateLink(file *File, sourcePath string) string
}

// ContentStore reads and writes file contents. Timestamps are unix milliseconds
// and are applied as the written file's modification time.
type ContentStore interface {
	Read(path string) (string, error)
	Create(path string, content string, ts int64) (*File, error)
	Modify(path string, content string, ts int64) error
	// Process applies fn to the live content of path and writes the result,
	// serialized with every other write the store performs on that path.
	Process(path string, fn func(content string) (string, error), ts int64) error
	Trash(path string) error
}

// Vault bundles the capabilities backed by the on-disk vault.
type Vault interface {
	TreeView
	LinkResolver
	ContentStore
}

// ChangeKind tells what happened to a path.
type ChangeKind int

const (
	ChangeModified ChangeKind = iota
	ChangeRenamed
	ChangeDeleted
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeModified:
		return "modified"
	case ChangeRenamed:
		return "renamed"
	case ChangeDeleted:
		return "deleted"
	}
	return "unknown"
}

// ChangeEvent is delivered by a ChangeFeed.
type ChangeEvent struct {
	Kind ChangeKind
	Path string
	// OldPath is set for renames.
	OldPath string
	// Mtime is the reported modification time in unix milliseconds.
	Mtime int64
	// LinkCount is the number of resolved links after a modification, or -1 if unknown.
	LinkCount int
}

// ChangeFeed delivers vault change events.
type ChangeFeed interface {
	Subscribe(fn func(ChangeEvent)) (cancel func())
}

// Element is a path-bearing row of a visual container.
type Element interface {
	Path() string
	Collapsed() bool
	SetMarked(marked bool)
}

// Container displays elements; it is torn down and recreated by the host.
type Container interface {
	Elements() []Element
}

// VisualHost gives access to the live visual containers.
type VisualHost interface {
	ListVisibleContainers() []Container
	// ObserveContainer calls onChange whenever the container's element list changes.
	ObserveContainer(c Container, onChange func()) (stop func())
}

// NoticeHandle is an updatable transient message.
type NoticeHandle interface {
	Update(msg string)
	Hide()
}

// Notifier shows user facing messages.
type Notifier interface {
	Notice(msg string) NoticeHandle
	// Alert shows a message that stays until dismissed.
	Alert(msg string)
}
