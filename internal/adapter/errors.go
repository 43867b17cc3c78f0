package adapter

import "errors"

var (
	// ErrCredentialRejected means the provider definitively refused the
	// credential (e.g. invalid_grant on refresh, revoked consent). Retrying
	// with the same credential is pointless; the user must reauthorize.
	ErrCredentialRejected = errors.New("provider rejected credential")

	// ErrProviderUnavailable means the provider could not be reached or
	// answered with a server-side failure. The credential itself may still
	// be fine; the operation can be retried later.
	ErrProviderUnavailable = errors.New("provider temporarily unavailable")

	// ErrSpreadsheetNotFound means the spreadsheet id does not exist or the
	// user's grant does not cover it.
	ErrSpreadsheetNotFound = errors.New("spreadsheet not found or inaccessible")

	// ErrSpreadsheetWrite means the append call failed after all retry
	// attempts were exhausted.
	ErrSpreadsheetWrite = errors.New("spreadsheet write failed")
)
