// Package memory provides an in-memory Repository (for testing/dev).
package memory

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/miqat/qada-engine/ledger"
	"github.com/miqat/qada-engine/qada"
)

// Store keeps everything in process memory. Loads and saves copy, so the
// ledger can never be mutated behind its own back through shared maps.
type Store struct {
	mu     sync.RWMutex
	debt   *qada.UserPrayerDebt
	days   map[string]ledger.DailyPrayerRecord
	marker string
}

func New() *Store {
	return &Store{days: make(map[string]ledger.DailyPrayerRecord)}
}

func (s *Store) LoadDebt(_ context.Context) (*qada.UserPrayerDebt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.debt == nil {
		return nil, nil
	}
	return copyDebt(s.debt), nil
}

func (s *Store) SaveDebt(_ context.Context, debt *qada.UserPrayerDebt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.debt = copyDebt(debt)
	return nil
}

func (s *Store) LoadDay(_ context.Context, key string) (*ledger.DailyPrayerRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.days[key]
	if !ok {
		return nil, nil
	}
	clone := rec.Clone()
	return &clone, nil
}

func (s *Store) SaveDay(_ context.Context, record ledger.DailyPrayerRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.days[record.Date] = record.Clone()
	return nil
}

func (s *Store) LoadMarker(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.marker, nil
}

func (s *Store) SaveMarker(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.marker = key
	return nil
}

// copyDebt deep-copies via the JSON boundary shape, which the record is
// defined to round-trip through anyway.
func copyDebt(debt *qada.UserPrayerDebt) *qada.UserPrayerDebt {
	raw, err := json.Marshal(debt)
	if err != nil {
		c := *debt
		return &c
	}
	var out qada.UserPrayerDebt
	if err := json.Unmarshal(raw, &out); err != nil {
		c := *debt
		return &c
	}
	return &out
}
