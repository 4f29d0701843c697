// Package datastore provides the key-value store dodex keeps its persisted
// state in: the mark map and the write ledger.
//
// The filesystem implementation keeps every key in one JSON object file.
// Reading is permissive: a missing or corrupt file reads as empty and is
// replaced on the next save.
package datastore
