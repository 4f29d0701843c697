// Package explorer is an in-memory file browser over a vault tree.
//
// An Explorer lists the visible rows of the tree: top level entries plus
// the content of every expanded folder. It is the container the mark
// overlay decorates, and Host is the visual host that tells the overlay
// which explorers are open. Toggling folders, expanding and reloading the
// tree notify the observers of an explorer so the overlay can redraw its
// indicators.
//
// The explore command drives an Explorer through a bubbletea program
// (see Model).
package explorer
