package service

import "errors"

var (
	// ErrNotAuthenticated means the user has no stored credential. Every
	// operation that needs provider access starts failing with this until
	// the user completes the authorization flow again.
	ErrNotAuthenticated = errors.New("user is not authenticated")

	// ErrCorruptCredential means the stored credential failed authenticated
	// decryption or carried an unusable payload. The vault purges the record
	// before returning this, so the next call reports ErrNotAuthenticated.
	ErrCorruptCredential = errors.New("stored credential is corrupt")

	// ErrTemporarilyUnavailable means an upstream dependency (identity
	// provider or spreadsheet API) failed transiently. Nothing about the
	// user's state changed; the same operation may be retried later.
	ErrTemporarilyUnavailable = errors.New("service temporarily unavailable")

	// ErrUnknownOrExpiredRequest means the authorization callback carried a
	// correlation token that is absent, expired, already consumed, or
	// superseded by a newer attempt.
	ErrUnknownOrExpiredRequest = errors.New("unknown or expired authorization request")

	// ErrNoSheetSelected means the user has not chosen a spreadsheet yet.
	ErrNoSheetSelected = errors.New("no spreadsheet selected")

	// ErrMalformedCategorySet means an imported category set failed
	// validation: no expense categories, an empty, over-long or duplicate
	// name. An empty income list is valid.
	ErrMalformedCategorySet = errors.New("malformed category set")

	// ErrNoIncomeCategories means the user asked to record an income while
	// their category set has no income categories to pick from.
	ErrNoIncomeCategories = errors.New("no income categories configured")

	// ErrSessionInProgress means the user already has an active recording
	// conversation; it must finish or be cancelled before a new one starts.
	ErrSessionInProgress = errors.New("recording already in progress")

	// ErrNoActiveSession means the user has no recording conversation to
	// advance, cancel, or retry.
	ErrNoActiveSession = errors.New("no recording in progress")

	// ErrUnknownOption means the input did not match any of the options the
	// current step offered. The conversation stays on the same step.
	ErrUnknownOption = errors.New("input does not match any offered option")

	// ErrUnknownCategory means the chosen category or subcategory is not
	// part of the user's resolved category set.
	ErrUnknownCategory = errors.New("unknown category")

	// ErrInvalidAmount means the amount input is not a positive number with
	// at most two fraction digits.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrRecordingFailed means the finalized transaction could not be
	// written to the spreadsheet. The draft is preserved and may be retried.
	ErrRecordingFailed = errors.New("recording the transaction failed")
)
