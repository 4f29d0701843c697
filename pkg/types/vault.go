package types

import (
	"path"
	"strings"
)

// Extensions with special meaning to dodex.
const (
	ExtMarkdown = "md"
	ExtCanvas   = "canvas"
)

// Node is either a *File or a *Folder.
type Node interface {
	NodePath() string
	isNode()
}

// File is a leaf of the vault tree.
type File struct {
	Path      string
	Name      string
	Basename  string
	Extension string
	// Mtime and Ctime are unix milliseconds as reported by the host.
	Mtime  int64
	Ctime  int64
	Size   int64
	Parent *Folder
}

// Folder is an inner node of the vault tree. Root has an empty Path and no Parent.
type Folder struct {
	Path     string
	Name     string
	Children []Node
	Parent   *Folder
}

func (f *File) NodePath() string   { return f.Path }
func (f *Folder) NodePath() string { return f.Path }
func (*File) isNode()              {}
func (*Folder) isNode()            {}

// IsCanvas reports whether the file is in the canvas format.
func (f *File) IsCanvas() bool { return f.Extension == ExtCanvas }

// IsRoot reports whether the folder is the vault root.
func (f *Folder) IsRoot() bool { return f.Parent == nil }

// Files returns the direct child files in host order.
func (f *Folder) Files() []*File {
	var files []*File
	for _, child := range f.Children {
		switch c := child.(type) {
		case *File:
			files = append(files, c)
		case *Folder:
		}
	}
	return files
}

// Folders returns the direct child folders in host order.
func (f *Folder) Folders() []*Folder {
	var folders []*Folder
	for _, child := range f.Children {
		switch c := child.(type) {
		case *File:
		case *Folder:
			folders = append(folders, c)
		}
	}
	return folders
}

// JoinPath builds a vault path from a parent path and a child name.
func JoinPath(parent, name string) string {
	if parent == "" || parent == "/" {
		return name
	}
	return parent + "/" + name
}

// ParentPath returns the vault path of the folder containing p ("" for root level).
func ParentPath(p string) string {
	dir := path.Dir(p)
	if dir == "." || dir == "/" {
		return ""
	}
	return dir
}

// SplitName splits a file name into basename and extension (without dot).
// Names starting with a dot and having no other dot have no extension.
func SplitName(name string) (basename, extension string) {
	i := strings.LastIndex(name, ".")
	if i <= 0 {
		return name, ""
	}
	return name[:i], name[i+1:]
}

// NewFile builds a File for name inside parent. Timestamps are left to the caller.
func NewFile(parent *Folder, name string) *File {
	base, ext := SplitName(name)
	parentPath := ""
	if parent != nil {
		parentPath = parent.Path
	}
	return &File{
		Path:      JoinPath(parentPath, name),
		Name:      name,
		Basename:  base,
		Extension: ext,
		Parent:    parent,
	}
}

// NewFolder builds a Folder for name inside parent. A nil parent makes a root.
func NewFolder(parent *Folder, name string) *Folder {
	if parent == nil {
		return &Folder{Name: name}
	}
	return &Folder{Path: JoinPath(parent.Path, name), Name: name, Parent: parent}
}

// Walk visits every node below (and including) folder in depth first pre-order.
func Walk(folder *Folder, visit func(Node)) {
	visit(folder)
	for _, child := range folder.Children {
		switch c := child.(type) {
		case *File:
			visit(c)
		case *Folder:
			Walk(c, visit)
		}
	}
}

// Find returns the node at path p below root, or nil.
func Find(root *Folder, p string) Node {
	if p == "" || p == "/" {
		return root
	}
	current := root
	parts := strings.Split(p, "/")
	for i, part := range parts {
		var next Node
		for _, child := range current.Children {
			if nodeName(child) == part {
				next = child
				break
			}
		}
		if next == nil {
			return nil
		}
		if i == len(parts)-1 {
			return next
		}
		folder, ok := next.(*Folder)
		if !ok {
			return nil
		}
		current = folder
	}
	return nil
}

func nodeName(n Node) string {
	switch v := n.(type) {
	case *File:
		return v.Name
	case *Folder:
		return v.Name
	}
	return ""
}
