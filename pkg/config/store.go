package config

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/arthur-debert/dodex/pkg/errors"
	"github.com/arthur-debert/dodex/pkg/logging"
	"github.com/arthur-debert/dodex/pkg/scheduler"
	"github.com/arthur-debert/dodex/pkg/types"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/v2"
	toml2 "github.com/pelletier/go-toml/v2"
)

// SaveDelay is how long Update waits for further changes before saving.
const SaveDelay = 100 * time.Millisecond

// Store holds the live settings and persists changes to the vault file.
type Store struct {
	mu       sync.RWMutex
	settings Settings
	fs       types.FS
	path     string
	saver    *scheduler.Debouncer
	onSave   func(error)
}

// NewStore wraps settings; changes are saved to path through fs.
func NewStore(fs types.FS, path string, settings *Settings) *Store {
	return &Store{
		settings: *settings,
		fs:       fs,
		path:     path,
		saver:    scheduler.NewDebouncer(SaveDelay),
	}
}

// Get returns a copy of the current settings.
func (s *Store) Get() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// Path returns the file the store saves to.
func (s *Store) Path() string { return s.path }

// OnSave registers a callback receiving the result of each background save.
func (s *Store) OnSave(fn func(error)) {
	s.mu.Lock()
	s.onSave = fn
	s.mu.Unlock()
}

// Update applies mutator to the settings, normalizes them and schedules a save.
func (s *Store) Update(mutator func(*Settings)) {
	logger := logging.GetLogger("config.store")

	s.mu.Lock()
	next := s.settings
	mutator(&next)
	for _, warning := range next.Normalize() {
		logger.Warn().Msg(warning)
	}
	s.settings = next
	s.mu.Unlock()

	s.saver.Trigger(func() {
		err := s.Save()
		if err != nil {
			logger.Error().Err(err).Str("path", s.path).Msg("Failed to save settings")
		}
		s.mu.RLock()
		cb := s.onSave
		s.mu.RUnlock()
		if cb != nil {
			cb(err)
		}
	})
}

// Set assigns a single dotted key (for example "canvas.note_width") from its
// string form, with the same decoding rules as the configuration files.
func (s *Store) Set(key, value string) error {
	current := s.Get()
	data, err := toml2.Marshal(current)
	if err != nil {
		return errors.Wrap(err, errors.ErrConfigParse, "failed to encode settings")
	}

	k := koanf.New(".")
	if err := k.Load(&rawBytesProvider{bytes: data}, toml.Parser()); err != nil {
		return errors.Wrap(err, errors.ErrConfigParse, "failed to load settings")
	}
	if !k.Exists(key) {
		return errors.Newf(errors.ErrConfigValid, "unknown setting %q", key).WithDetail("key", key)
	}
	if err := k.Set(key, value); err != nil {
		return errors.Wrapf(err, errors.ErrConfigValid, "cannot set %q", key)
	}
	decoded, err := decode(k)
	if err != nil {
		return errors.Wrapf(err, errors.ErrConfigValid, "invalid value %q for %q", value, key)
	}

	s.Update(func(settings *Settings) { *settings = *decoded })
	return nil
}

// Flush runs a pending save now.
func (s *Store) Flush() {
	s.saver.Flush()
}

// Save writes the current settings to the vault file.
func (s *Store) Save() error {
	current := s.Get()
	data, err := toml2.Marshal(current)
	if err != nil {
		return errors.Wrap(err, errors.ErrConfigSave, "failed to encode settings")
	}
	if err := s.fs.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", filepath.Dir(s.path))
	}
	if err := s.fs.WriteFile(s.path, data, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrConfigSave, "failed to write %s", s.path)
	}
	return nil
}
