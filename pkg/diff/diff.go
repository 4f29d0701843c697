// Package diff computes which expected files an index does not link to yet.
package diff

import "github.com/arthur-debert/dodex/pkg/types"

// Missing returns the files of expected whose path is not in linked, in
// expected order. Unknown links (a nil set) never produce missing files.
func Missing(expected []*types.File, linked types.LinkSet) []*types.File {
	if linked == nil {
		return nil
	}
	var missing []*types.File
	seen := make(map[string]struct{}, len(expected))
	for _, f := range expected {
		if linked.Has(f.Path) {
			continue
		}
		if _, dup := seen[f.Path]; dup {
			continue
		}
		seen[f.Path] = struct{}{}
		missing = append(missing, f)
	}
	return missing
}

// Count returns how many of the lists are non-empty and their total length.
func Count(lists ...[]*types.File) (indexes, links int) {
	for _, l := range lists {
		if len(l) == 0 {
			continue
		}
		indexes++
		links += len(l)
	}
	return indexes, links
}

// Paths returns the paths of files, in order.
func Paths(files []*types.File) []string {
	paths := make([]string, 0, len(files))
	for _, f := range files {
		paths = append(paths, f.Path)
	}
	return paths
}
