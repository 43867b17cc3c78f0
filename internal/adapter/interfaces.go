package adapter

import (
	"context"

	"github.com/avdeyev/sheetfin/models"
)

// IdentityProvider is the outbound contract to the OAuth 2.0 provider. All
// calls carry a bounded timeout; implementations distinguish a definitive
// credential rejection ([ErrCredentialRejected]) from a transient failure
// ([ErrProviderUnavailable]).
type IdentityProvider interface {
	// AuthCodeURL builds the consent-screen URL carrying state as the
	// correlation token.
	AuthCodeURL(state string) string

	// Exchange redeems an authorization code for a token payload.
	Exchange(ctx context.Context, code string) (models.TokenPayload, error)

	// Refresh obtains a fresh access token using the payload's refresh
	// token. The returned payload keeps the original refresh token when the
	// provider does not rotate it.
	Refresh(ctx context.Context, payload models.TokenPayload) (models.TokenPayload, error)

	// Revoke invalidates the payload's refresh (or access) token with the
	// provider.
	Revoke(ctx context.Context, payload models.TokenPayload) error
}

// SpreadsheetWriter is the outbound contract to the spreadsheet API.
type SpreadsheetWriter interface {
	// Append writes one finalized transaction as a row of the user's
	// selected spreadsheet, retrying transient failures a bounded number of
	// times before giving up with [ErrSpreadsheetWrite].
	Append(ctx context.Context, accessToken string, ref models.SheetRef, tx models.Transaction) error

	// SpreadsheetTitle fetches the title of a spreadsheet, verifying that
	// the grant actually covers it.
	SpreadsheetTitle(ctx context.Context, accessToken, spreadsheetID string) (string, error)
}
