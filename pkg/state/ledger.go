package state

import (
	"sync"
	"time"

	"github.com/arthur-debert/dodex/pkg/logging"
)

// LedgerCapacity is the number of most recent timestamps kept.
const LedgerCapacity = 1000

// Ledger is a bounded record of timestamps (unix ms) dodex assigned to its writes.
type Ledger struct {
	mu      sync.Mutex
	entries []int64
	persist func([]int64) error
}

// NewLedger returns a ledger seeded with entries, keeping the newest LedgerCapacity.
func NewLedger(entries []int64) *Ledger {
	l := &Ledger{}
	l.entries = truncate(append([]int64(nil), entries...))
	return l
}

func truncate(entries []int64) []int64 {
	if len(entries) > LedgerCapacity {
		return entries[len(entries)-LedgerCapacity:]
	}
	return entries
}

// Stamp returns a timestamp for a new run: now in milliseconds, moved past
// the newest entry so that two runs never share a timestamp.
func (l *Ledger) Stamp(now time.Time) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	ts := now.UnixMilli()
	if n := len(l.entries); n > 0 && ts <= l.entries[n-1] {
		ts = l.entries[n-1] + 1
	}
	return ts
}

// Add records ts. Adding the newest entry again is a no-op.
func (l *Ledger) Add(ts int64) {
	l.mu.Lock()
	if n := len(l.entries); n > 0 && l.entries[n-1] == ts {
		l.mu.Unlock()
		return
	}
	l.entries = truncate(append(l.entries, ts))
	snapshot := append([]int64(nil), l.entries...)
	persist := l.persist
	l.mu.Unlock()

	if persist != nil {
		if err := persist(snapshot); err != nil {
			logger := logging.GetLogger("state.ledger")
			logger.Error().Err(err).Int64("ts", ts).Msg("Failed to persist ledger")
		}
	}
}

// Contains reports whether ts was recorded.
func (l *Ledger) Contains(ts int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := len(l.entries) - 1; i >= 0; i-- {
		if l.entries[i] == ts {
			return true
		}
	}
	return false
}

// Entries returns a copy of the recorded timestamps, oldest first.
func (l *Ledger) Entries() []int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]int64(nil), l.entries...)
}

// Len returns the number of recorded timestamps.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
