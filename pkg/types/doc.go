// Package types defines the vault model and the host capability interfaces
// used throughout dodex.
//
// The vault is a tree of Node values. Node is a closed union: only *File and
// *Folder implement it, and code walking the tree switches on the concrete
// type. The capability interfaces (TreeView, LinkResolver, ContentStore,
// ChangeFeed, VisualHost, Notifier) describe everything the indexing core
// needs from its environment; pkg/vault, pkg/watch, pkg/explorer and
// pkg/notify provide the implementations used by the command line tool.
package types
