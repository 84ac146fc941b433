package questionnaire

import (
	"context"
	"sync"
	"time"
)

// State is one sender's progress through the survey.
type State struct {
	Sender    string
	Current   int
	Responses []string
	Updated   time.Time
}

// Store keeps in-progress survey state keyed by sender.
type Store interface {
	Get(ctx context.Context, sender string) (State, bool, error)
	Put(ctx context.Context, st State) error
	Delete(ctx context.Context, sender string) error
}

// MemoryStore is a Store held in process memory. Entries idle for longer
// than the TTL are treated as absent and removed.
type MemoryStore struct {
	mu     sync.Mutex
	ttl    time.Duration
	states map[string]State
	now    func() time.Time
}

// NewMemoryStore creates a store; ttl <= 0 keeps entries forever.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:    ttl,
		states: make(map[string]State),
		now:    time.Now,
	}
}

func (s *MemoryStore) Get(_ context.Context, sender string) (State, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.states[sender]
	if !ok {
		return State{}, false, nil
	}
	if s.expired(st) {
		delete(s.states, sender)
		return State{}, false, nil
	}
	st.Responses = append([]string(nil), st.Responses...)
	return st, true, nil
}

func (s *MemoryStore) Put(_ context.Context, st State) error {
	st.Responses = append([]string(nil), st.Responses...)
	st.Updated = s.now()

	s.mu.Lock()
	s.states[st.Sender] = st
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, sender string) error {
	s.mu.Lock()
	delete(s.states, sender)
	s.mu.Unlock()
	return nil
}

// Prune drops expired entries and returns how many it removed.
func (s *MemoryStore) Prune() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for sender, st := range s.states {
		if s.expired(st) {
			delete(s.states, sender)
			removed++
		}
	}
	return removed
}

func (s *MemoryStore) expired(st State) bool {
	return s.ttl > 0 && s.now().Sub(st.Updated) > s.ttl
}
