// Package writer commits missing links to the vault.
//
// Three output modes exist. In index mode the links block is appended (or
// prepended) to the index note, or added as file nodes to a canvas index. In
// file mode the block goes to a side file next to the index; a side file
// that dodex did not write itself is moved to the trash before being
// replaced. In none mode nothing is written and the index is only marked.
//
// Every write carries the run timestamp, which is recorded in the ledger
// once the write succeeds so that the change it causes is recognised as
// dodex's own.
package writer
