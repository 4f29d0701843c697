// Package testutil provides utilities for testing dodex components.
//
// Key components:
//   - TestEnvironment: a vault on an in-memory or temporary filesystem with
//     its data store, ledger and default settings
//   - Tree: in-memory vault trees built from path lists
//   - RecordingNotifier: a Notifier that keeps every message
//
// Usage guidelines:
//   - Most tests should use EnvMemoryOnly for speed and isolation
//   - All test data should be defined inline, not in external files
//   - Each test should be completely isolated with no shared state
package testutil
