package store

import (
	"context"
	"time"

	"github.com/avdeyev/sheetfin/models"
)

// UserRepository persists chat-user profiles and their spreadsheet selection.
type UserRepository interface {
	// UpsertUser creates the user on first contact or refreshes the profile
	// fields on subsequent contacts.
	UpsertUser(ctx context.Context, user models.User) error

	// SaveSheetRef records the user's active spreadsheet, replacing any
	// previous selection.
	SaveSheetRef(ctx context.Context, ref models.SheetRef) error

	// GetSheetRef returns the user's active spreadsheet or
	// [ErrSheetRefNotFound].
	GetSheetRef(ctx context.Context, userID int64) (models.SheetRef, error)

	// DeleteSheetRef removes the user's spreadsheet selection. Deleting a
	// non-existent selection is not an error.
	DeleteSheetRef(ctx context.Context, userID int64) error
}

// CredentialRepository is durable keyed storage of one encrypted credential
// record per user. It holds no business logic; the vault decides what goes
// in and what a failed read means.
type CredentialRepository interface {
	// Upsert writes the record, replacing any prior record for the user.
	// The write is atomic: readers observe either the old or the new record.
	Upsert(ctx context.Context, rec models.CredentialRecord) error

	// Get returns the user's record or [ErrCredentialNotFound].
	Get(ctx context.Context, userID int64) (models.CredentialRecord, error)

	// Delete removes the user's record. Deleting a non-existent record is
	// not an error.
	Delete(ctx context.Context, userID int64) error
}

// CategoryRepository stores per-user category override sets. Sets are
// replaced wholesale, never patched in place.
type CategoryRepository interface {
	// Replace atomically upserts the user's override set.
	Replace(ctx context.Context, userID int64, set models.CategorySet) error

	// Get returns the user's override set or [ErrCategorySetNotFound].
	Get(ctx context.Context, userID int64) (models.CategorySet, error)

	// Delete removes the user's override set, reverting the user to the
	// defaults. Deleting a non-existent set is not an error.
	Delete(ctx context.Context, userID int64) error
}

// AuthRequestRepository stores in-flight authorization attempts keyed by the
// correlation token.
type AuthRequestRepository interface {
	// Create records a new attempt and invalidates any prior pending request
	// for the same user, so only the latest token can ever be consumed.
	Create(ctx context.Context, req models.AuthRequest) error

	// Consume atomically marks the request consumed and returns it. A token
	// that is absent, expired, or already consumed yields
	// [ErrAuthRequestNotFound]; a token is consumable exactly once.
	Consume(ctx context.Context, token string, now time.Time) (models.AuthRequest, error)

	// DeleteStale removes requests that are consumed or were expired before
	// the given instant. Returns the number of removed rows.
	DeleteStale(ctx context.Context, before time.Time) (int64, error)
}

// SessionStore is keyed storage of in-progress conversation states. The
// backing implementation may be volatile: losing a state only costs the user
// a restart of the flow.
type SessionStore interface {
	// Get returns the user's conversation state or [ErrSessionNotFound].
	Get(userID int64) (models.ConversationState, error)

	// Put stores the user's conversation state, replacing any previous one.
	Put(state models.ConversationState)

	// Delete removes the user's conversation state.
	Delete(userID int64)

	// StaleUsers returns the users whose states have seen no activity since
	// the given instant. Used by the inactivity janitor.
	StaleUsers(updatedBefore time.Time) []int64
}
