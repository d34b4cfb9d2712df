package inmemory

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mborhani/vizboard/internal/session"
)

type Store struct {
	sessions map[string]*Session
	mu       sync.RWMutex
}

func NewInMemorySessionStore() session.Store {
	return &Store{sessions: make(map[string]*Session)}
}

func (store *Store) EnsureSession(id string, ttl time.Duration) (session.Session, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if id != "" {
		if sess, ok := store.sessions[id]; ok {
			if !sess.expired() {
				sess.Expire(ttl)
				return sess, nil
			}
			delete(store.sessions, id)
		}
	}
	sess := &Session{
		id:        uuid.NewString(),
		expiresAt: time.Now().Add(ttl),
		state:     session.State{ChartType: "scatter"},
	}
	store.sessions[sess.id] = sess
	return sess, nil
}

func (store *Store) GetSession(id string) (session.Session, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	sess, ok := store.sessions[id]
	if !ok {
		return nil, nil
	}
	if sess.expired() {
		delete(store.sessions, id)
		return nil, nil
	}
	return sess, nil
}

type Session struct {
	id        string
	expiresAt time.Time
	state     session.State
	mu        sync.RWMutex
}

func (s *Session) ID() string { return s.id }

func (s *Session) Expire(ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expiresAt = time.Now().Add(ttl)
}

func (s *Session) expired() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return time.Now().After(s.expiresAt)
}

func (s *Session) Get() (session.State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state, nil
}

func (s *Session) Set(st session.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = st
	return nil
}
