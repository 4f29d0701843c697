// Package core assembles a dodex application for one vault.
//
// Open locates the vault, loads the layered configuration, opens the data
// store, the link cache and the mark overlay, and returns an App whose
// methods back the commands: Check runs an index check, RequestCheck
// coalesces bursts of check requests, Watch follows vault changes to clear
// marks, and the mark methods list and remove marks.
package core
