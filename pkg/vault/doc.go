// Package vault reads and writes a note vault on disk.
//
// A Vault provides the tree view, link resolution and content store that
// the index check consumes. Dot files and folders (.obsidian, .trash,
// .dodex, .git) are not part of the tree. Writes set the file modification
// time to the run timestamp so the resulting change can be recognised later.
//
// Links are read from wikilinks, markdown links and frontmatter values and
// resolved relative to the note's folder, then from the vault root, then by
// unique file name.
package vault
