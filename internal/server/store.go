package server

import (
	"context"
	"sync"
	"time"

	"github.com/gridglot/gridglot/internal/logger"
	"github.com/gridglot/gridglot/pkg/grid"
	"github.com/gridglot/gridglot/pkg/gridglot"
)

// session is one uploaded spreadsheet and its translation lifecycle.
type session struct {
	ID        string
	CreatedAt time.Time

	mu         sync.Mutex
	lastAccess time.Time
	gg         *gridglot.Session
	grid       *grid.Grid
	translated *grid.Grid
	targetLang string
	cancel     context.CancelFunc
	runErr     error
}

// touch marks the session as recently used, deferring TTL eviction.
func (s *session) touch() {
	s.mu.Lock()
	s.lastAccess = time.Now()
	s.mu.Unlock()
}

// close stops any running translation and releases the session.
func (s *session) close() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if err := s.gg.Close(); err != nil {
		logger.Warn("session close failed", "session", s.ID, "error", err)
	}
}

// sessionStore keeps sessions in memory and sweeps out idle ones.
type sessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*session
	ttl      time.Duration
	done     chan struct{}
	wg       sync.WaitGroup
}

func newSessionStore(ttl time.Duration) *sessionStore {
	st := &sessionStore{
		sessions: make(map[string]*session),
		ttl:      ttl,
		done:     make(chan struct{}),
	}

	if ttl > 0 {
		st.wg.Add(1)
		go st.sweepLoop()
	}
	return st
}

func (st *sessionStore) sweepLoop() {
	defer st.wg.Done()

	interval := st.ttl / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-st.done:
			return
		case <-ticker.C:
			st.sweep(time.Now())
		}
	}
}

// sweep evicts sessions idle longer than the TTL.
func (st *sessionStore) sweep(now time.Time) {
	var expired []*session

	st.mu.Lock()
	for id, s := range st.sessions {
		s.mu.Lock()
		idle := now.Sub(s.lastAccess)
		s.mu.Unlock()

		if idle > st.ttl {
			delete(st.sessions, id)
			expired = append(expired, s)
		}
	}
	st.mu.Unlock()

	for _, s := range expired {
		logger.Info("session expired", "session", s.ID)
		s.close()
	}
}

func (st *sessionStore) Put(s *session) {
	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()
}

func (st *sessionStore) Get(id string) (*session, bool) {
	st.mu.RLock()
	s, ok := st.sessions[id]
	st.mu.RUnlock()
	if ok {
		s.touch()
	}
	return s, ok
}

// Delete removes and closes a session, reporting whether it existed.
func (st *sessionStore) Delete(id string) bool {
	st.mu.Lock()
	s, ok := st.sessions[id]
	if ok {
		delete(st.sessions, id)
	}
	st.mu.Unlock()

	if ok {
		s.close()
	}
	return ok
}

func (st *sessionStore) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Close stops the sweeper and closes every session.
func (st *sessionStore) Close() {
	close(st.done)
	st.wg.Wait()

	st.mu.Lock()
	sessions := make([]*session, 0, len(st.sessions))
	for id, s := range st.sessions {
		sessions = append(sessions, s)
		delete(st.sessions, id)
	}
	st.mu.Unlock()

	for _, s := range sessions {
		s.close()
	}
}
