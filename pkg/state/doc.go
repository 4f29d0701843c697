// Package state holds the state dodex persists between sessions: the
// timestamp ledger of its own writes and the mark map of out of date indexes.
//
// The ledger lets dodex tell its own file changes from the user's. Every write
// stamps the file's modification time with the run timestamp and the
// timestamp is recorded here; a change whose modification time is in the
// ledger is one dodex made itself.
package state
