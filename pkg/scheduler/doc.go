// Package scheduler holds the timing primitives dodex uses to coalesce work:
// a Debouncer for a single function, a Coalescer for keyed work, and an
// Activity tracker used to wait until user edits have settled.
package scheduler
