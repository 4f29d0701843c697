package datastore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/arthur-debert/dodex/pkg/errors"
	"github.com/arthur-debert/dodex/pkg/logging"
	"github.com/arthur-debert/dodex/pkg/types"
)

type filesystemDataStore struct {
	mu     sync.Mutex
	fs     types.FS
	path   string
	values map[string]json.RawMessage
}

// New creates a DataStore persisted as a JSON object at path.
func New(fs types.FS, path string) DataStore {
	return &filesystemDataStore{
		fs:   fs,
		path: path,
	}
}

func (s *filesystemDataStore) load() map[string]json.RawMessage {
	if s.values != nil {
		return s.values
	}
	logger := logging.GetLogger("datastore.filesystem")

	s.values = make(map[string]json.RawMessage)
	data, err := s.fs.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn().Err(err).Str("path", s.path).Msg("Cannot read data file, starting empty")
		}
		return s.values
	}
	if err := json.Unmarshal(data, &s.values); err != nil {
		logger.Warn().Err(err).Str("path", s.path).Msg("Corrupt data file, starting empty")
		s.values = make(map[string]json.RawMessage)
	}
	return s.values
}

// Load implements DataStore.
func (s *filesystemDataStore) Load(key string, v interface{}) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok := s.load()[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return true, errors.Wrapf(err, errors.ErrStateLoad, "cannot decode %q", key).WithDetail("key", key)
	}
	return true, nil
}

// Save implements DataStore.
func (s *filesystemDataStore) Save(key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, errors.ErrStateSave, "cannot encode %q", key).WithDetail("key", key)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.load()[key] = raw
	return s.flush()
}

// Delete implements DataStore.
func (s *filesystemDataStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	values := s.load()
	if _, ok := values[key]; !ok {
		return nil
	}
	delete(values, key)
	return s.flush()
}

// flush writes the whole object through a temporary file.
func (s *filesystemDataStore) flush() error {
	data, err := json.MarshalIndent(s.values, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.ErrStateSave, "cannot encode data file")
	}
	dir := filepath.Dir(s.path)
	if err := s.fs.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", dir)
	}
	tmp := s.path + ".tmp"
	if err := s.fs.WriteFile(tmp, data, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrStateSave, "failed to write %s", tmp)
	}
	if err := s.fs.Rename(tmp, s.path); err != nil {
		return errors.Wrapf(err, errors.ErrStateSave, "failed to replace %s", s.path)
	}
	return nil
}
