package store

import (
	"context"
	"fmt"
	"sync"

	"jobmate/alert-service/internal/gate"
)

// MemoryHistoryStore is an in-memory gate.HistoryStore with the same
// semantics as the PostgreSQL implementation. Used in tests and dry runs;
// it is not durable.
type MemoryHistoryStore struct {
	mu   sync.Mutex
	recs []gate.ApplicationRecord
}

// NewMemoryHistoryStore returns an empty in-memory history log.
func NewMemoryHistoryStore() *MemoryHistoryStore {
	return &MemoryHistoryStore{}
}

// Append adds one record to the log.
func (s *MemoryHistoryStore) Append(_ context.Context, rec gate.ApplicationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs = append(s.recs, rec)
	return nil
}

// Finalize moves the most recent open PREPARED record for jobID to its
// terminal status.
func (s *MemoryHistoryStore) Finalize(_ context.Context, jobID string, status gate.Status, detail string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.recs) - 1; i >= 0; i-- {
		if s.recs[i].JobID == jobID && s.recs[i].Status == gate.StatusPrepared {
			s.recs[i].Status = status
			s.recs[i].OutcomeDetail = detail
			return nil
		}
	}
	return fmt.Errorf("history store: no open reservation for %s", jobID)
}

// HasNonFailed reports whether jobID has any non-FAILED record.
func (s *MemoryHistoryStore) HasNonFailed(_ context.Context, jobID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.recs {
		if r.JobID == jobID && r.Status != gate.StatusFailed {
			return true, nil
		}
	}
	return false, nil
}

// CountNonFailed counts non-FAILED records for one calendar day.
func (s *MemoryHistoryStore) CountNonFailed(_ context.Context, day string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.recs {
		if r.Day == day && r.Status != gate.StatusFailed {
			n++
		}
	}
	return n, nil
}

// Records returns a copy of the log, oldest first.
func (s *MemoryHistoryStore) Records() []gate.ApplicationRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]gate.ApplicationRecord, len(s.recs))
	copy(out, s.recs)
	return out
}
