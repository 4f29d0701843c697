package vault

import (
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/arthur-debert/dodex/pkg/config"
	"github.com/arthur-debert/dodex/pkg/errors"
	"github.com/arthur-debert/dodex/pkg/logging"
	"github.com/arthur-debert/dodex/pkg/types"
)

// LinkCache stores the raw link targets of a file, keyed by its size and
// modification time.
type LinkCache interface {
	Get(path string, mtime, size int64) ([]string, bool)
	Put(path string, mtime, size int64, targets []string) error
}

// Options configures a Vault.
type Options struct {
	FS   types.FS
	Root string
	// Name defaults to the base name of Root.
	Name string
	// TrashDir defaults to Root/.trash.
	TrashDir  string
	LinkStyle config.LinkStyle
	// Cache is optional.
	Cache LinkCache
}

// Vault is a note vault on a filesystem. It implements types.Vault.
type Vault struct {
	fs       types.FS
	root     string
	name     string
	trashDir string
	style    config.LinkStyle
	cache    LinkCache

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex

	indexMu sync.RWMutex
	index   *nameIndex
}

var _ types.Vault = (*Vault)(nil)

// New returns a Vault over opts.FS rooted at opts.Root.
func New(opts Options) *Vault {
	name := opts.Name
	if name == "" {
		name = filepath.Base(opts.Root)
	}
	trash := opts.TrashDir
	if trash == "" {
		trash = filepath.Join(opts.Root, ".trash")
	}
	style := opts.LinkStyle
	if style == "" {
		style = config.LinkWiki
	}
	return &Vault{
		fs:       opts.FS,
		root:     opts.Root,
		name:     name,
		trashDir: trash,
		style:    style,
		cache:    opts.Cache,
		locks:    make(map[string]*sync.Mutex),
	}
}

// Name returns the vault display name.
func (v *Vault) Name() string { return v.name }

// RootDir returns the vault directory on disk.
func (v *Vault) RootDir() string { return v.root }

// Abs returns the on-disk path of a vault path.
func (v *Vault) Abs(p string) string {
	return filepath.Join(v.root, filepath.FromSlash(p))
}

// Rel returns the vault path of an on-disk path, false when outside the vault.
func (v *Vault) Rel(abs string) (string, bool) {
	rel, err := filepath.Rel(v.root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	if rel == "." {
		return "", true
	}
	return types.NormalizePath(filepath.ToSlash(rel)), true
}

// IsHidden reports whether a vault path is inside a dot directory or is a
// dot file. Hidden entries are not part of the tree.
func IsHidden(p string) bool {
	for _, part := range strings.Split(p, "/") {
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}

// Root returns a fresh snapshot of the vault tree.
func (v *Vault) Root() (*types.Folder, error) {
	root := types.NewFolder(nil, v.name)
	idx := newNameIndex()
	if err := v.readFolder(root, idx); err != nil {
		return nil, err
	}

	v.indexMu.Lock()
	v.index = idx
	v.indexMu.Unlock()
	return root, nil
}

func (v *Vault) readFolder(folder *types.Folder, idx *nameIndex) error {
	entries, err := v.fs.ReadDir(v.Abs(folder.Path))
	if err != nil {
		return errors.Wrapf(err, errors.ErrVaultAccess, "cannot read folder %q", folder.Path)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if entry.IsDir() {
			sub := types.NewFolder(folder, name)
			folder.Children = append(folder.Children, sub)
			if err := v.readFolder(sub, idx); err != nil {
				return err
			}
			continue
		}
		info, err := entry.Info()
		if err != nil {
			logger := logging.GetLogger("vault.tree")
			logger.Debug().Err(err).Str("name", name).Msg("Skipping unreadable entry")
			continue
		}
		f := types.NewFile(folder, types.NormalizePath(name))
		fillStat(f, info)
		folder.Children = append(folder.Children, f)
		idx.add(f.Path)
	}
	return nil
}

func fillStat(f *types.File, info fs.FileInfo) {
	f.Mtime = info.ModTime().UnixMilli()
	f.Ctime = f.Mtime
	f.Size = info.Size()
}

// Exists reports whether a file exists at vault path p.
func (v *Vault) Exists(p string) bool {
	info, err := v.fs.Stat(v.Abs(p))
	return err == nil && !info.IsDir()
}

// Stat returns a detached File for vault path p.
func (v *Vault) Stat(p string) (*types.File, error) {
	info, err := v.fs.Stat(v.Abs(p))
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileNotFound, "cannot stat %q", p)
	}
	if info.IsDir() {
		return nil, errors.Newf(errors.ErrInvalidInput, "%q is a folder", p)
	}
	p = types.NormalizePath(p)
	f := &types.File{Path: p, Name: path.Base(p)}
	f.Basename, f.Extension = types.SplitName(f.Name)
	fillStat(f, info)
	return f, nil
}

// nameIndex maps file paths and lower cased names to paths for link resolution.
type nameIndex struct {
	paths  map[string]struct{}
	byName map[string][]string
}

func newNameIndex() *nameIndex {
	return &nameIndex{paths: map[string]struct{}{}, byName: map[string][]string{}}
}

func (n *nameIndex) add(p string) {
	if n.has(p) {
		return
	}
	n.paths[p] = struct{}{}
	key := strings.ToLower(path.Base(p))
	n.byName[key] = append(n.byName[key], p)
}

func (n *nameIndex) has(p string) bool {
	_, ok := n.paths[p]
	return ok
}

func (n *nameIndex) remove(p string) {
	if !n.has(p) {
		return
	}
	delete(n.paths, p)
	key := strings.ToLower(path.Base(p))
	kept := n.byName[key][:0]
	for _, other := range n.byName[key] {
		if other != p {
			kept = append(kept, other)
		}
	}
	if len(kept) == 0 {
		delete(n.byName, key)
		return
	}
	n.byName[key] = kept
}
