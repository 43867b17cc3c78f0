package store

import (
	"sync"
	"time"

	"github.com/avdeyev/sheetfin/models"
)

// memorySessionStore is the in-process implementation of [SessionStore].
// Conversation state is explicitly volatile: a restart loses it and the user
// simply begins the flow again, so no durable backing is involved.
//
// The store itself only guards map access; serializing the operations of a
// single user's flow is the session engine's job.
type memorySessionStore struct {
	mu       sync.RWMutex
	sessions map[int64]models.ConversationState
}

// NewMemorySessionStore constructs an empty in-memory [SessionStore].
func NewMemorySessionStore() SessionStore {
	return &memorySessionStore{
		sessions: make(map[int64]models.ConversationState),
	}
}

func (s *memorySessionStore) Get(userID int64) (models.ConversationState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.sessions[userID]
	if !ok {
		return models.ConversationState{}, ErrSessionNotFound
	}
	return state, nil
}

func (s *memorySessionStore) Put(state models.ConversationState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[state.UserID] = state
}

func (s *memorySessionStore) Delete(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, userID)
}

func (s *memorySessionStore) StaleUsers(updatedBefore time.Time) []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var stale []int64
	for userID, state := range s.sessions {
		if state.UpdatedAt.Before(updatedBefore) {
			stale = append(stale, userID)
		}
	}
	return stale
}
