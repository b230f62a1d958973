package memory

import (
	"sync"

	"rewardcore/internal/app/ports"
	"rewardcore/internal/domain/fulfillment"
)

// Store backs the in-memory repositories. Repositories do not lock: callers
// go through TxManager, which holds the store lock for the whole unit of
// work.
type Store struct {
	mu     sync.RWMutex
	saves  map[string]ports.SaveRecord
	events map[string][]fulfillment.DomainEvent
}

func NewStore() *Store {
	return &Store{
		saves:  make(map[string]ports.SaveRecord),
		events: make(map[string][]fulfillment.DomainEvent),
	}
}

// SeedSave stores rec as is, for tests and fixtures.
func (s *Store) SeedSave(rec ports.SaveRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves[rec.SaveID] = cloneRecord(rec)
}

func cloneRecord(rec ports.SaveRecord) ports.SaveRecord {
	rec.Profile = append([]byte(nil), rec.Profile...)
	rec.Ledger = append([]byte(nil), rec.Ledger...)
	return rec
}
