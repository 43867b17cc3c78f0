package store

import "errors"

// Sentinel errors returned by repository methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrCredentialNotFound is returned when no credential record exists for
	// the requested user.
	ErrCredentialNotFound = errors.New("credential record not found")

	// ErrCategorySetNotFound is returned when the user has no stored category
	// override; callers fall back to the process-wide defaults.
	ErrCategorySetNotFound = errors.New("category set not found")

	// ErrAuthRequestNotFound is returned when an authorization request lookup
	// or consume targets a token that is absent, expired, or already
	// consumed.
	ErrAuthRequestNotFound = errors.New("authorization request not found")

	// ErrSheetRefNotFound is returned when the user has not selected a
	// spreadsheet yet.
	ErrSheetRefNotFound = errors.New("sheet reference not found")

	// ErrSessionNotFound is returned when no conversation state exists for
	// the requested user.
	ErrSessionNotFound = errors.New("conversation state not found")

	// ErrDuplicateToken is returned when an inserted correlation token
	// collides with an existing row. With 256-bit random tokens this points
	// at a broken token source, not bad luck.
	ErrDuplicateToken = errors.New("correlation token already exists")
)

// Low-level database operation errors. These are returned (or wrapped) by
// repository methods when a SQL-level operation fails before any domain logic
// can be applied.
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised SQL
	// query fails (e.g. invalid argument count or unsupported type).
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a query against the
	// database fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrBeginningTransaction is returned when the database driver cannot
	// start a new transaction.
	ErrBeginningTransaction = errors.New("failed to begin transaction")

	// ErrCommitingTransaction is returned when committing an open transaction
	// fails. The transaction is considered rolled back at this point.
	ErrCommitingTransaction = errors.New("failed to commit transaction")

	// ErrScanningRow is returned when scanning column values from a result
	// row into a destination struct fails.
	ErrScanningRow = errors.New("failed to scan row")
)
