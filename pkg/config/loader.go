package config

import (
	"os"
	"strings"

	"github.com/arthur-debert/dodex/pkg/errors"
	"github.com/arthur-debert/dodex/pkg/logging"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of configuration environment variables.
// Nested keys use a double underscore: DODEX_CANVAS__NOTE_WIDTH.
const EnvPrefix = "DODEX_"

// variables with this prefix that are not configuration keys
var reservedEnv = map[string]bool{
	"DODEX_VAULT":      true,
	"DODEX_LOG_FILE":   true,
	"DODEX_CONFIG_DIR": true,
	"DODEX_CACHE_DIR":  true,
}

// LoadOptions lists the configuration layers above the embedded defaults.
type LoadOptions struct {
	// UserConfigPath is the user level file, skipped when missing.
	UserConfigPath string
	// VaultConfigPath is the per-vault file, skipped when missing.
	VaultConfigPath string
	// SkipEnv disables the environment layer.
	SkipEnv bool
}

// Load builds Settings from the embedded defaults, the user file, the vault
// file and the environment, in that order. Unreadable layers and invalid
// values are logged and replaced by defaults.
func Load(opts LoadOptions) (*Settings, error) {
	logger := logging.GetLogger("config.loader")

	k := koanf.New(".")
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load defaults")
	}
	defaults, err := decode(k)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to decode defaults")
	}

	for _, path := range []string{opts.UserConfigPath, opts.VaultConfigPath} {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			logger.Warn().Err(err).Str("path", path).Msg("Ignoring unreadable config file")
			continue
		}
		logger.Debug().Str("path", path).Msg("Loaded config file")
	}

	if !opts.SkipEnv {
		if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
			logger.Warn().Err(err).Msg("Ignoring environment configuration")
		}
	}

	settings, err := decode(k)
	if err != nil {
		logger.Warn().Err(err).Msg("Invalid configuration, using defaults")
		settings = defaults
	}

	for _, warning := range settings.Normalize() {
		logger.Warn().Msg(warning)
	}
	return settings, nil
}

// Defaults returns the embedded default settings.
func Defaults() *Settings {
	s, err := Load(LoadOptions{SkipEnv: true})
	if err != nil {
		// the embedded file is part of the binary
		panic(err)
	}
	return s
}

func envKey(s string) string {
	if reservedEnv[s] {
		return ""
	}
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
}

func decode(k *koanf.Koanf) (*Settings, error) {
	var s Settings
	conf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &s,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.TextUnmarshallerHookFunc(),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &s, conf); err != nil {
		return nil, err
	}
	return &s, nil
}
