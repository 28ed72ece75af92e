package quote

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/trimm-medical/magconfig/internal/shared"
)

// Store keeps quote sessions in memory with TTL eviction. Quotes are
// working state, not documents; nothing here survives a restart.
type Store struct {
	mu     sync.Mutex
	quotes map[uuid.UUID]*Quote
	ttl    time.Duration
	now    func() time.Time
}

// NewStore constructs a Store with the given session TTL.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		quotes: make(map[uuid.UUID]*Quote),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Create registers a new empty quote session.
func (s *Store) Create(mode string) *Quote {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()

	now := s.now()
	q := &Quote{
		ID:        uuid.New(),
		Mode:      mode,
		Params:    DefaultParams(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.quotes[q.ID] = q
	return snapshot(q)
}

// Update runs fn against the live quote under the store lock and returns
// a copy of the result. Mutations always bump UpdatedAt, which is what
// keeps an active session from expiring.
func (s *Store) Update(id uuid.UUID, fn func(*Quote) error) (*Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.quotes[id]
	if !ok || s.expiredLocked(q) {
		delete(s.quotes, id)
		return nil, shared.ErrQuoteExpired
	}
	if err := fn(q); err != nil {
		return nil, err
	}
	q.UpdatedAt = s.now()
	return snapshot(q), nil
}

// Get returns a copy of the quote.
func (s *Store) Get(id uuid.UUID) (*Quote, error) {
	return s.Update(id, func(*Quote) error { return nil })
}

// Delete removes a quote session.
func (s *Store) Delete(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.quotes, id)
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()
	return len(s.quotes)
}

func (s *Store) expiredLocked(q *Quote) bool {
	return s.ttl > 0 && s.now().Sub(q.UpdatedAt) > s.ttl
}

func (s *Store) sweepLocked() {
	for id, q := range s.quotes {
		if s.expiredLocked(q) {
			delete(s.quotes, id)
		}
	}
}

func snapshot(q *Quote) *Quote {
	cp := *q
	cp.Lines = append([]Line(nil), q.Lines...)
	return &cp
}
