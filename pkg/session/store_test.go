package session

import (
	"errors"
	"testing"
	"time"

	"dicommpr/internal/models"
)

func testEntry() Entry {
	return Entry{
		Volume: &models.Volume{
			Data:   make([]float64, 8),
			Slices: 2, Rows: 2, Columns: 2,
			VoxelSpacing: models.VoxelSpacing{Z: 1, Y: 1, X: 1},
		},
	}
}

func TestCreateAndAcquire(t *testing.T) {
	s := NewStore(0)

	id := s.Create(testEntry())
	if id == "" {
		t.Fatal("Expected a non-empty session id")
	}

	entry, err := s.Acquire(id)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer s.Release(id)

	if entry.Volume == nil || entry.Volume.Slices != 2 {
		t.Errorf("Acquire returned wrong entry: %+v", entry)
	}
	if s.Len() != 1 {
		t.Errorf("Expected 1 live session, got %d", s.Len())
	}
}

func TestAcquireUnknownID(t *testing.T) {
	s := NewStore(0)

	_, err := s.Acquire("no-such-session")

	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestRemove(t *testing.T) {
	s := NewStore(0)
	id := s.Create(testEntry())

	if err := s.Remove(id); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("Expected 0 sessions after remove, got %d", s.Len())
	}
	if err := s.Remove(id); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound on double remove, got %v", err)
	}
	if _, err := s.Acquire(id); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after remove, got %v", err)
	}
}

// TestRemoveWhileReferenced checks deferred eviction: a removed session stays
// alive for its in-flight reader, rejects new readers, and is evicted by the
// final Release.
func TestRemoveWhileReferenced(t *testing.T) {
	s := NewStore(0)
	id := s.Create(testEntry())

	if _, err := s.Acquire(id); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if err := s.Remove(id); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	if _, err := s.Acquire(id); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected new Acquire to fail after remove, got %v", err)
	}
	if s.Len() != 1 {
		t.Errorf("Expected session to survive until release, got %d live", s.Len())
	}

	s.Release(id)
	if s.Len() != 0 {
		t.Errorf("Expected final release to evict, got %d live", s.Len())
	}
}

func TestSweepEvictsIdleSessions(t *testing.T) {
	s := NewStore(time.Minute)
	stale := s.Create(testEntry())
	fresh := s.Create(testEntry())

	// keep fresh recent, age stale past the TTL
	s.mu.Lock()
	s.sessions[stale].lastUsed = time.Now().Add(-2 * time.Minute)
	s.mu.Unlock()

	if evicted := s.Sweep(time.Now()); evicted != 1 {
		t.Errorf("Expected 1 eviction, got %d", evicted)
	}
	if _, err := s.Acquire(stale); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected stale session to be gone, got %v", err)
	}
	if _, err := s.Acquire(fresh); err != nil {
		t.Errorf("Expected fresh session to survive: %v", err)
	}
	s.Release(fresh)
}

func TestSweepSkipsReferencedSessions(t *testing.T) {
	s := NewStore(time.Minute)
	id := s.Create(testEntry())

	if _, err := s.Acquire(id); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	s.mu.Lock()
	s.sessions[id].lastUsed = time.Now().Add(-time.Hour)
	s.mu.Unlock()

	if evicted := s.Sweep(time.Now()); evicted != 0 {
		t.Errorf("Expected referenced session to be skipped, evicted %d", evicted)
	}
	s.Release(id)
}

func TestSweepDisabledWithoutTTL(t *testing.T) {
	s := NewStore(0)
	id := s.Create(testEntry())

	s.mu.Lock()
	s.sessions[id].lastUsed = time.Now().Add(-24 * time.Hour)
	s.mu.Unlock()

	if evicted := s.Sweep(time.Now()); evicted != 0 {
		t.Errorf("Expected no evictions with TTL disabled, got %d", evicted)
	}
}

func TestSweeperStartStop(t *testing.T) {
	s := NewStore(time.Minute)

	s.StartSweeper(10 * time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	s.Stop()

	// Stop must be idempotent
	s.Stop()
}

func TestConcurrentAcquireRelease(t *testing.T) {
	s := NewStore(0)
	id := s.Create(testEntry())

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 100; j++ {
				if _, err := s.Acquire(id); err != nil {
					t.Errorf("Acquire failed: %v", err)
					return
				}
				s.Release(id)
			}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}

	if err := s.Remove(id); err != nil {
		t.Errorf("Remove after concurrent use failed: %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("Expected clean store, got %d live sessions", s.Len())
	}
}
