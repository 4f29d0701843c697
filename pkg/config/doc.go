// Package config handles configuration management for dodex.
//
// Settings are layered with koanf: the embedded defaults, the user file
// ($XDG_CONFIG_HOME/dodex/config.toml), the vault file (<vault>/.dodex.toml)
// and DODEX_* environment variables. Decoding is permissive: an invalid value
// is logged and replaced by its default.
//
// A Store holds the live Settings for a process. Changes go through
// Store.Update, which applies a mutator and schedules a debounced save of the
// vault file.
package config
