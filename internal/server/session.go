package server

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Shirly8/sift/internal/common"
	"github.com/Shirly8/sift/internal/model"
)

// DefaultMaxSessions bounds how many uploaded tables the server holds in
// memory before evicting the oldest.
const DefaultMaxSessions = 100

// Session holds one uploaded transaction table and the state of its
// analysis run. At most one run is active per session.
type Session struct {
	ID           string
	CreatedAt    time.Time
	Transactions []model.Transaction
	Quality      float64

	mu      sync.Mutex
	running bool
}

// StartRun marks the session's analysis as active. Returns
// common.ErrRunInProgress if a run is already active.
func (s *Session) StartRun() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return common.ErrRunInProgress
	}
	s.running = true
	return nil
}

// FinishRun clears the active-run flag.
func (s *Session) FinishRun() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

// SetTransactions replaces the session's table. Used when a user correction
// recategorizes existing rows.
func (s *Session) SetTransactions(txns []model.Transaction) {
	s.mu.Lock()
	s.Transactions = txns
	s.mu.Unlock()
}

// Snapshot returns the current table. The analysis run treats it as
// immutable after this point.
func (s *Session) Snapshot() []model.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Transaction, len(s.Transactions))
	copy(out, s.Transactions)
	return out
}

// SessionStore is an in-memory session registry with oldest-first eviction.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	max      int
}

// NewSessionStore creates a store capped at max sessions. A non-positive
// max falls back to DefaultMaxSessions.
func NewSessionStore(max int) *SessionStore {
	if max <= 0 {
		max = DefaultMaxSessions
	}
	return &SessionStore{
		sessions: make(map[string]*Session),
		max:      max,
	}
}

// Create registers a new session for an uploaded table and returns it.
func (st *SessionStore) Create(txns []model.Transaction, quality float64) *Session {
	s := &Session{
		ID:           uuid.NewString(),
		CreatedAt:    time.Now(),
		Transactions: txns,
		Quality:      quality,
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if len(st.sessions) >= st.max {
		st.evictOldest()
	}
	st.sessions[s.ID] = s
	return s
}

// Get returns the session or common.ErrSessionNotFound.
func (st *SessionStore) Get(id string) (*Session, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	if !ok {
		return nil, common.ErrSessionNotFound
	}
	return s, nil
}

// Len returns the number of live sessions.
func (st *SessionStore) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// evictOldest removes the oldest sessions until under the cap. Caller holds
// the write lock.
func (st *SessionStore) evictOldest() {
	type entry struct {
		id      string
		created time.Time
	}
	entries := make([]entry, 0, len(st.sessions))
	for id, s := range st.sessions {
		entries = append(entries, entry{id: id, created: s.CreatedAt})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].created.Before(entries[j].created) })
	for len(st.sessions) >= st.max && len(entries) > 0 {
		delete(st.sessions, entries[0].id)
		entries = entries[1:]
	}
}
