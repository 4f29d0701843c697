// Package walker traverses the vault tree once per run.
//
// For every folder it finds the index files (direct children matching the
// index pattern), computes the files each index should link to, and hands an
// IndexRecord per index to a scheduling callback. Nested folders contribute
// to an ancestor's index according to the nesting mode:
//
//   - none: nested files are never folded in.
//   - all: every file below an indexed folder is expected by it.
//   - no_index: nested folders without an index fold in their files; nested
//     folders with an index contribute only their index files.
//
// The walk never blocks on the scheduled work.
package walker
