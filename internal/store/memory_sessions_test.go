package store

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/avdeyev/sheetfin/models"
)

func TestMemorySessionStore_PutGetDelete(t *testing.T) {
	s := NewMemorySessionStore()

	if _, err := s.Get(1); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}

	state := models.ConversationState{UserID: 1, Step: models.StepKind, UpdatedAt: time.Now()}
	s.Put(state)

	got, err := s.Get(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Step != models.StepKind {
		t.Fatalf("step = %v, want %v", got.Step, models.StepKind)
	}

	s.Delete(1)
	if _, err := s.Get(1); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after delete, got %v", err)
	}
}

func TestMemorySessionStore_StaleUsers(t *testing.T) {
	s := NewMemorySessionStore()
	cutoff := time.Now()

	s.Put(models.ConversationState{UserID: 1, UpdatedAt: cutoff.Add(-time.Hour)})
	s.Put(models.ConversationState{UserID: 2, UpdatedAt: cutoff.Add(time.Hour)})

	stale := s.StaleUsers(cutoff)
	if len(stale) != 1 || stale[0] != 1 {
		t.Fatalf("stale users = %v, want [1]", stale)
	}
}

// TestMemorySessionStore_ConcurrentUsersIsolated stresses interleaved
// operations across distinct users and verifies no user ever observes
// another user's state.
func TestMemorySessionStore_ConcurrentUsersIsolated(t *testing.T) {
	s := NewMemorySessionStore()

	const iterations = 500
	var wg sync.WaitGroup
	for _, userID := range []int64{101, 102, 103} {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			for i := 0; i < iterations; i++ {
				s.Put(models.ConversationState{
					UserID:    id,
					Step:      models.StepAmount,
					Draft:     models.TransactionDraft{Category: time.Now().String()},
					UpdatedAt: time.Now(),
				})
				got, err := s.Get(id)
				if err != nil {
					t.Errorf("user %d: unexpected error: %v", id, err)
					return
				}
				if got.UserID != id {
					t.Errorf("user %d observed state of user %d", id, got.UserID)
					return
				}
			}
			s.Delete(id)
		}(userID)
	}
	wg.Wait()
}
