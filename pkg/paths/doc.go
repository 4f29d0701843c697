// Package paths provides centralized path handling for dodex.
//
// # Environment Variables
//
//   - DODEX_VAULT: vault location (default: closest ancestor holding .obsidian
//     or .dodex.toml, else the working directory)
//   - DODEX_CONFIG_DIR: override XDG config directory (default: $XDG_CONFIG_HOME/dodex)
//   - DODEX_CACHE_DIR: override XDG cache directory (default: $XDG_CACHE_HOME/dodex)
//
// # Files
//
//   - <vault>/.dodex.toml: per-vault settings
//   - <vault>/.dodex/data.json: persisted marks and write ledger
//   - <vault>/.trash/: displaced foreign files
//   - $XDG_CACHE_HOME/dodex/<hash>.db: link cache
//   - $XDG_STATE_HOME/dodex/dodex.log: log file
package paths
