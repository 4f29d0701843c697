// Package linkcache keeps the link targets of vault files between runs in a
// SQLite database, so unchanged notes are not parsed again.
package linkcache
