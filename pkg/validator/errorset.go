package validator

import (
	"sort"
	"sync"

	"github.com/arthur-debert/dodex/pkg/errors"
)

// ErrorSet collects the errors of a run, keeping the first error per code.
type ErrorSet struct {
	mu     sync.Mutex
	byCode map[errors.ErrorCode]error
}

// NewErrorSet returns an empty set.
func NewErrorSet() *ErrorSet {
	return &ErrorSet{byCode: make(map[errors.ErrorCode]error)}
}

// Record adds err under its code. Errors without a code count as UNKNOWN.
func (s *ErrorSet) Record(err error) {
	if err == nil {
		return
	}
	code := errors.GetErrorCode(err)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, seen := s.byCode[code]; !seen {
		s.byCode[code] = err
	}
}

// Codes returns the recorded codes in sorted order.
func (s *ErrorSet) Codes() []errors.ErrorCode {
	s.mu.Lock()
	defer s.mu.Unlock()
	codes := make([]errors.ErrorCode, 0, len(s.byCode))
	for code := range s.byCode {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}

// Get returns the first error recorded for code.
func (s *ErrorSet) Get(code errors.ErrorCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.byCode[code]
}

// Len returns the number of distinct codes.
func (s *ErrorSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byCode)
}

// Reset empties the set.
func (s *ErrorSet) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byCode = make(map[errors.ErrorCode]error)
}
