package state

import (
	"github.com/arthur-debert/dodex/pkg/datastore"
	"github.com/arthur-debert/dodex/pkg/logging"
	"github.com/arthur-debert/dodex/pkg/types"
)

const (
	timestampsKey = "timestamps"
	marksKey      = "marks"
)

// Store loads and saves the persisted state through a DataStore.
// Loading never fails: unreadable fields fall back to empty values.
type Store struct {
	ds datastore.DataStore
}

// NewStore returns a Store backed by ds.
func NewStore(ds datastore.DataStore) *Store {
	return &Store{ds: ds}
}

// LoadLedger returns the persisted ledger; later additions are saved back.
func (s *Store) LoadLedger() *Ledger {
	logger := logging.GetLogger("state.store")

	var entries []int64
	if _, err := s.ds.Load(timestampsKey, &entries); err != nil {
		logger.Warn().Err(err).Msg("Discarding unreadable timestamps")
		entries = nil
	}

	ledger := NewLedger(entries)
	ledger.persist = func(entries []int64) error {
		return s.ds.Save(timestampsKey, entries)
	}
	return ledger
}

// LoadMarks returns the persisted marks. Entries with an unknown policy are dropped.
func (s *Store) LoadMarks() map[string]types.UnmarkPolicy {
	logger := logging.GetLogger("state.store")

	raw := map[string]string{}
	if _, err := s.ds.Load(marksKey, &raw); err != nil {
		logger.Warn().Err(err).Msg("Discarding unreadable marks")
		raw = map[string]string{}
	}

	marks := make(map[string]types.UnmarkPolicy, len(raw))
	for path, value := range raw {
		policy, ok := types.ParseUnmarkPolicy(value)
		if !ok || path == "" {
			logger.Debug().Str("path", path).Str("policy", value).Msg("Dropping invalid mark")
			continue
		}
		marks[path] = policy
	}
	return marks
}

// SaveMarks persists marks.
func (s *Store) SaveMarks(marks map[string]types.UnmarkPolicy) error {
	raw := make(map[string]string, len(marks))
	for path, policy := range marks {
		raw[path] = string(policy)
	}
	return s.ds.Save(marksKey, raw)
}
