package testutil

import (
	"sort"
	"strings"

	"github.com/arthur-debert/dodex/pkg/types"
)

// Tree builds an in-memory vault tree from slash separated file paths.
// Paths ending in "/" create empty folders. Children are sorted by name.
func Tree(vaultName string, paths ...string) *types.Folder {
	root := types.NewFolder(nil, vaultName)
	for _, p := range paths {
		isDir := strings.HasSuffix(p, "/")
		parts := strings.Split(strings.Trim(p, "/"), "/")
		current := root
		for i, part := range parts {
			last := i == len(parts)-1
			if last && !isDir {
				current.Children = append(current.Children, types.NewFile(current, part))
				break
			}
			current = childFolder(current, part)
		}
	}
	sortTree(root)
	return root
}

// File returns the file at path in root, failing loudly when absent.
func File(root *types.Folder, path string) *types.File {
	f, ok := types.Find(root, path).(*types.File)
	if !ok {
		panic("testutil: no file at " + path)
	}
	return f
}

// Folder returns the folder at path in root, failing loudly when absent.
func Folder(root *types.Folder, path string) *types.Folder {
	f, ok := types.Find(root, path).(*types.Folder)
	if !ok {
		panic("testutil: no folder at " + path)
	}
	return f
}

func childFolder(parent *types.Folder, name string) *types.Folder {
	for _, f := range parent.Folders() {
		if f.Name == name {
			return f
		}
	}
	folder := types.NewFolder(parent, name)
	parent.Children = append(parent.Children, folder)
	return folder
}

func sortTree(folder *types.Folder) {
	sort.SliceStable(folder.Children, func(i, j int) bool {
		return folder.Children[i].NodePath() < folder.Children[j].NodePath()
	})
	for _, sub := range folder.Folders() {
		sortTree(sub)
	}
}
