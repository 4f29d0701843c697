// Package canvas reads and edits canvas files, the JSON node and edge
// documents that can serve as an index instead of a markdown note.
//
// A canvas links to a file through a node of type "file". Decoding keeps
// every field it does not understand so that re-encoding an edited canvas
// loses nothing. New file nodes are stacked in a column beside the bounding
// box of the existing nodes, at the configured corner, so they never overlap
// what is already there.
package canvas
