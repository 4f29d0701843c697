// Package watch turns filesystem notifications of a vault into change
// events.
//
// Bursts of writes to one path are coalesced into a single modified event
// delivered once the path has been quiet for the settle window. By then
// the ledger already holds the timestamp of a write dodex made itself, so
// subscribers can tell their own changes from the user's. A rename is
// reported when the removal of the old name is followed by the creation
// of a new one within the same window, and as a deletion otherwise.
package watch
