// Package session maps opaque session identifiers to built volumes. Volumes
// are large and immutable, so the store's whole job is explicit lifecycle:
// create on successful build, evict on request or TTL expiry, and never evict
// while a view request still holds a reference.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"dicommpr/internal/models"
	"dicommpr/pkg/volume"
)

// ErrNotFound is returned when a session id is unknown or already removed.
var ErrNotFound = errors.New("session not found")

// Entry is the immutable payload of one session.
type Entry struct {
	Volume  *models.Volume
	Summary *volume.Summary
	Report  volume.Report
}

type session struct {
	entry    Entry
	lastUsed time.Time
	refs     int
	removed  bool
}

// Store is a process-wide, concurrency-safe session registry.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*session
	ttl      time.Duration
	stop     chan struct{}
	done     chan struct{}
}

// NewStore creates a store whose sessions expire after ttl of idleness.
// A ttl of 0 disables expiry.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		sessions: make(map[string]*session),
		ttl:      ttl,
	}
}

// Create registers a build result and returns its new session id.
func (s *Store) Create(entry Entry) string {
	id := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = &session{entry: entry, lastUsed: time.Now()}
	return id
}

// Acquire returns the entry for id and takes a reference that blocks
// eviction until the matching Release. Every successful Acquire must be
// paired with exactly one Release.
func (s *Store) Acquire(id string) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ses, ok := s.sessions[id]
	if !ok || ses.removed {
		return Entry{}, ErrNotFound
	}
	ses.refs++
	ses.lastUsed = time.Now()
	return ses.entry, nil
}

// Release drops a reference taken by Acquire. If the session was removed
// while referenced, the last Release evicts it.
func (s *Store) Release(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ses, ok := s.sessions[id]
	if !ok {
		return
	}
	ses.refs--
	if ses.removed && ses.refs <= 0 {
		delete(s.sessions, id)
	}
}

// Remove marks a session for eviction. Sessions with in-flight readers are
// kept alive until the last Release; new Acquires fail immediately.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ses, ok := s.sessions[id]
	if !ok || ses.removed {
		return ErrNotFound
	}
	ses.removed = true
	if ses.refs <= 0 {
		delete(s.sessions, id)
	}
	return nil
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep evicts sessions idle longer than the TTL and returns how many were
// removed. Referenced sessions are skipped regardless of age.
func (s *Store) Sweep(now time.Time) int {
	if s.ttl <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	evicted := 0
	for id, ses := range s.sessions {
		if ses.refs > 0 {
			continue
		}
		if ses.removed || now.Sub(ses.lastUsed) > s.ttl {
			delete(s.sessions, id)
			evicted++
		}
	}
	return evicted
}

// StartSweeper launches a background goroutine that sweeps at the given
// interval until Stop is called.
func (s *Store) StartSweeper(interval time.Duration) {
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go func() {
		defer close(s.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-s.stop:
				return
			case now := <-ticker.C:
				s.Sweep(now)
			}
		}
	}()
}

// Stop halts the background sweeper, if one is running.
func (s *Store) Stop() {
	if s.stop == nil {
		return
	}
	close(s.stop)
	<-s.done
	s.stop = nil
}
