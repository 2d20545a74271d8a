package data

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"solar-battery-sim/internal/model"
	"solar-battery-sim/internal/simulation"
)

// StoredRun is a finished simulation kept for later ledger export.
type StoredRun struct {
	ID        string
	Battery   model.BatteryConfig
	Result    *simulation.Result
	CreatedAt time.Time
	ExpiresAt time.Time
}

// ResultStore keeps finished simulations in memory for a limited time so that
// clients can page through or re-export the ledger without re-running.
// Results are immutable, so the same *StoredRun is handed to every reader.
// When maxEntries is reached the oldest run is evicted before its TTL.
type ResultStore struct {
	mu         sync.RWMutex
	store      map[string]*StoredRun
	order      []string // insertion order, which is also expiry order
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
}

// NewResultStore creates a store. ttl <= 0 means one hour; maxEntries <= 0
// means no limit on the number of runs.
func NewResultStore(ttl time.Duration, maxEntries int) *ResultStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &ResultStore{
		store:      make(map[string]*StoredRun),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Put stores a result under a fresh id, evicting the oldest runs beyond
// maxEntries.
func (s *ResultStore) Put(battery model.BatteryConfig, res *simulation.Result) *StoredRun {
	now := s.now()
	run := &StoredRun{
		ID:        uuid.NewString(),
		Battery:   battery,
		Result:    res,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.store[run.ID] = run
	s.order = append(s.order, run.ID)
	if s.maxEntries > 0 {
		for len(s.order) > s.maxEntries {
			s.evictOldest()
		}
	}
	return run
}

func (s *ResultStore) evictOldest() {
	delete(s.store, s.order[0])
	s.order[0] = ""
	s.order = s.order[1:]
}

// Get retrieves a stored run if available and not expired.
func (s *ResultStore) Get(id string) (*StoredRun, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, exists := s.store[id]
	if !exists || s.now().After(run.ExpiresAt) {
		return nil, false
	}
	return run, true
}

func (s *ResultStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.store)
}

// Sweep removes expired entries and returns how many were dropped.
func (s *ResultStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	n := 0
	for len(s.order) > 0 && now.After(s.store[s.order[0]].ExpiresAt) {
		s.evictOldest()
		n++
	}
	return n
}

// Run sweeps periodically until ctx is done.
func (s *ResultStore) Run(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}
