package service

import (
	"context"
	"time"

	"github.com/avdeyev/sheetfin/models"
)

// CredentialVault owns the full lifecycle of one user's provider credential:
// encrypt-and-store after authorization, decrypt-and-refresh on every read,
// revoke-and-purge on logout. Plaintext token material never leaves this
// boundary except as the access token string handed to outbound adapters.
type CredentialVault interface {
	// Store seals the payload and persists it for the user, replacing any
	// prior credential.
	Store(ctx context.Context, userID int64, payload models.TokenPayload) error

	// Token returns a usable access token for the user, refreshing it with
	// the provider when it is expired or about to expire. The refreshed
	// payload is re-sealed and stored before the token is returned.
	//
	// Returns ErrNotAuthenticated when no credential exists,
	// ErrCorruptCredential after purging an undecryptable record, and
	// ErrTemporarilyUnavailable when the provider cannot be reached.
	Token(ctx context.Context, userID int64) (string, error)

	// Authorized reports whether the user has a stored credential. It does
	// not decrypt and never talks to the provider.
	Authorized(ctx context.Context, userID int64) (bool, error)

	// Revoke invalidates the credential with the provider on a best-effort
	// basis and deletes the stored record. The local record is removed even
	// when the provider call fails.
	Revoke(ctx context.Context, userID int64) error
}

// AuthorizationCorrelator matches provider consent callbacks back to the
// chat user who initiated them, through a single-use correlation token
// carried as the OAuth state parameter.
type AuthorizationCorrelator interface {
	// Begin starts a new authorization attempt for the user and returns the
	// consent-screen URL to send them to. Any prior pending attempt of the
	// same user is invalidated.
	Begin(ctx context.Context, userID int64) (authURL string, err error)

	// Complete consumes the correlation token from a provider callback,
	// exchanges the authorization code, and stores the resulting credential.
	// Returns the user the attempt belonged to.
	//
	// A token that is absent, expired, already consumed, or superseded
	// yields ErrUnknownOrExpiredRequest.
	Complete(ctx context.Context, token, code string) (userID int64, err error)
}

// CategoryResolver answers "which categories does this user see" by merging
// the process-wide defaults with the user's stored override set.
type CategoryResolver interface {
	// Resolve returns the user's effective category set: the override set
	// when one is stored, the defaults otherwise.
	Resolve(ctx context.Context, userID int64) (models.CategorySet, error)

	// Replace validates the set and stores it wholesale as the user's
	// override, discarding any previous override. Returns
	// ErrMalformedCategorySet when validation fails; a failed replace
	// leaves the previous set untouched.
	Replace(ctx context.Context, userID int64, set models.CategorySet) error

	// Reset deletes the user's override set, reverting them to the
	// defaults. Resetting a user without an override is not an error.
	Reset(ctx context.Context, userID int64) error

	// Defaults returns the process-wide default category set.
	Defaults() models.CategorySet
}

// Prompt is the engine's answer to one accepted input: the text to show the
// user and the options to offer as buttons. Nil Options means the step takes
// free-form text. Recorded is non-nil exactly when the conversation just
// completed and the transaction reached the spreadsheet.
type Prompt struct {
	Text     string
	Options  []string
	Recorded *models.Transaction
}

// SessionEngine runs the per-user transaction-recording conversation. Each
// user has at most one conversation at a time; concurrent inputs of the same
// user are serialized, different users never block each other.
type SessionEngine interface {
	// Begin starts a new recording conversation. Fails with
	// ErrSessionInProgress when one is already active, ErrNotAuthenticated
	// without a credential, and ErrNoSheetSelected without a spreadsheet.
	Begin(ctx context.Context, userID int64) (Prompt, error)

	// Advance feeds one user input into the conversation and returns the
	// next prompt. Rejected inputs (ErrUnknownOption, ErrUnknownCategory,
	// ErrInvalidAmount) leave the conversation on the same step.
	Advance(ctx context.Context, userID int64, input string) (Prompt, error)

	// Retry re-attempts the spreadsheet write of a finalized transaction
	// after a recording failure, without re-asking the user anything.
	Retry(ctx context.Context, userID int64) (Prompt, error)

	// Cancel abandons the user's conversation and discards the draft.
	Cancel(ctx context.Context, userID int64) error

	// CancelStale abandons every conversation inactive for longer than ttl
	// and returns the affected users. Called by the background janitor.
	CancelStale(ctx context.Context, ttl time.Duration) []int64
}

// AccountService covers user registration, spreadsheet selection, and
// account teardown.
type AccountService interface {
	// RegisterUser creates the user on first contact or refreshes profile
	// fields on later contacts.
	RegisterUser(ctx context.Context, user models.User) error

	// SelectSheet verifies that the user's grant covers the spreadsheet and
	// records it as the active sheet. The returned ref carries the
	// spreadsheet title fetched from the provider.
	SelectSheet(ctx context.Context, userID int64, spreadsheetID string) (models.SheetRef, error)

	// ActiveSheet returns the user's current spreadsheet selection or
	// ErrNoSheetSelected.
	ActiveSheet(ctx context.Context, userID int64) (models.SheetRef, error)

	// Logout revokes and purges the user's credential and forgets the
	// spreadsheet selection.
	Logout(ctx context.Context, userID int64) error
}
