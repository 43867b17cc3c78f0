// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Anton Avdeyev

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/avdeyev/sheetfin/internal/adapter"
	"github.com/avdeyev/sheetfin/internal/logger"
	"github.com/avdeyev/sheetfin/internal/store"
	"github.com/avdeyev/sheetfin/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	optionExpense = "Expense"
	optionIncome  = "Income"
	optionYes     = "Yes"
	optionNo      = "No"

	promptKind          = "What are we recording?"
	promptCategory      = "Pick a category:"
	promptSubcategory   = "Pick a subcategory:"
	promptAmount        = "Enter the amount:"
	promptCommentChoice = "Add a comment?"
	promptCommentText   = "Type the comment:"
	promptRecorded      = "Recorded."
)

type sessionEngine struct {
	sessions store.SessionStore
	resolver CategoryResolver
	vault    CredentialVault
	users    store.UserRepository
	sheets   adapter.SpreadsheetWriter

	mu    sync.Mutex
	locks map[int64]*sync.Mutex

	now    func() time.Time
	logger *logger.Logger
}

// NewSessionEngine constructs a [SessionEngine]. The engine is the sole
// writer of conversation states in the session store.
func NewSessionEngine(sessions store.SessionStore, resolver CategoryResolver, vault CredentialVault, users store.UserRepository, sheets adapter.SpreadsheetWriter, logger *logger.Logger) SessionEngine {
	return &sessionEngine{
		sessions: sessions,
		resolver: resolver,
		vault:    vault,
		users:    users,
		sheets:   sheets,
		locks:    make(map[int64]*sync.Mutex),
		now:      time.Now,
		logger:   logger,
	}
}

// userLock returns the mutex serializing one user's conversation. Locks are
// tiny and never removed; the map grows with the number of distinct users
// seen since start, which is fine at this bot's scale.
func (e *sessionEngine) userLock(userID int64) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()

	lock, ok := e.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		e.locks[userID] = lock
	}
	return lock
}

func (e *sessionEngine) Begin(ctx context.Context, userID int64) (Prompt, error) {
	lock := e.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	if _, err := e.sessions.Get(userID); err == nil {
		return Prompt{}, ErrSessionInProgress
	}

	authorized, err := e.vault.Authorized(ctx, userID)
	if err != nil {
		return Prompt{}, err
	}
	if !authorized {
		return Prompt{}, ErrNotAuthenticated
	}

	if _, err := e.users.GetSheetRef(ctx, userID); err != nil {
		if errors.Is(err, store.ErrSheetRefNotFound) {
			return Prompt{}, ErrNoSheetSelected
		}
		return Prompt{}, fmt.Errorf("loading sheet selection: %w", err)
	}

	now := e.now()
	e.sessions.Put(models.ConversationState{
		UserID:    userID,
		Step:      models.StepKind,
		StartedAt: now,
		UpdatedAt: now,
	})

	return Prompt{Text: promptKind, Options: []string{optionExpense, optionIncome}}, nil
}

func (e *sessionEngine) Advance(ctx context.Context, userID int64, input string) (Prompt, error) {
	lock := e.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	state, err := e.sessions.Get(userID)
	if err != nil {
		return Prompt{}, ErrNoActiveSession
	}

	input = strings.TrimSpace(input)

	var prompt Prompt
	switch state.Step {
	case models.StepKind:
		prompt, err = e.advanceKind(ctx, &state, input)
	case models.StepCategory:
		prompt, err = e.advanceCategory(ctx, &state, input)
	case models.StepSubcategory:
		prompt, err = e.advanceSubcategory(ctx, &state, input)
	case models.StepAmount:
		prompt, err = e.advanceAmount(&state, input)
	case models.StepCommentChoice:
		prompt, err = e.advanceCommentChoice(&state, input)
	case models.StepCommentText:
		prompt, err = e.advanceCommentText(&state, input)
	case models.StepAwaitingWrite:
		// the draft is already finalized; only /retry or /cancel apply
		return Prompt{}, ErrRecordingFailed
	default:
		return Prompt{}, ErrNoActiveSession
	}
	if err != nil {
		return Prompt{}, err
	}

	if state.Step == models.StepAwaitingWrite || state.Pending != nil {
		return e.finalize(ctx, state)
	}

	state.UpdatedAt = e.now()
	e.sessions.Put(state)

	return prompt, nil
}

func (e *sessionEngine) advanceKind(ctx context.Context, state *models.ConversationState, input string) (Prompt, error) {
	switch {
	case strings.EqualFold(input, optionExpense):
		state.Draft.Kind = models.KindExpense
	case strings.EqualFold(input, optionIncome):
		state.Draft.Kind = models.KindIncome
	default:
		return Prompt{}, ErrUnknownOption
	}

	set, err := e.resolver.Resolve(ctx, state.UserID)
	if err != nil {
		return Prompt{}, err
	}

	if state.Draft.Kind == models.KindIncome && len(set.Income) == 0 {
		return Prompt{}, ErrNoIncomeCategories
	}

	state.Step = models.StepCategory
	if state.Draft.Kind == models.KindExpense {
		return Prompt{Text: promptCategory, Options: set.ExpenseNames()}, nil
	}
	return Prompt{Text: promptCategory, Options: set.Income}, nil
}

func (e *sessionEngine) advanceCategory(ctx context.Context, state *models.ConversationState, input string) (Prompt, error) {
	set, err := e.resolver.Resolve(ctx, state.UserID)
	if err != nil {
		return Prompt{}, err
	}

	if state.Draft.Kind == models.KindIncome {
		if !set.HasIncome(input) {
			return Prompt{}, ErrUnknownCategory
		}
		state.Draft.Category = input
		state.Step = models.StepAmount
		return Prompt{Text: promptAmount}, nil
	}

	if !set.HasExpense(input) {
		return Prompt{}, ErrUnknownCategory
	}
	state.Draft.Category = input

	if subs := set.Subcategories(input); len(subs) > 0 {
		state.Step = models.StepSubcategory
		return Prompt{Text: promptSubcategory, Options: subs}, nil
	}

	state.Step = models.StepAmount
	return Prompt{Text: promptAmount}, nil
}

func (e *sessionEngine) advanceSubcategory(ctx context.Context, state *models.ConversationState, input string) (Prompt, error) {
	set, err := e.resolver.Resolve(ctx, state.UserID)
	if err != nil {
		return Prompt{}, err
	}

	if !set.HasSubcategory(state.Draft.Category, input) {
		return Prompt{}, ErrUnknownCategory
	}

	state.Draft.Subcategory = input
	state.Step = models.StepAmount
	return Prompt{Text: promptAmount}, nil
}

func (e *sessionEngine) advanceAmount(state *models.ConversationState, input string) (Prompt, error) {
	amount, err := parseAmount(input)
	if err != nil {
		return Prompt{}, err
	}

	state.Draft.Amount = amount
	state.Step = models.StepCommentChoice
	return Prompt{Text: promptCommentChoice, Options: []string{optionYes, optionNo}}, nil
}

func (e *sessionEngine) advanceCommentChoice(state *models.ConversationState, input string) (Prompt, error) {
	switch {
	case strings.EqualFold(input, optionYes):
		state.Step = models.StepCommentText
		return Prompt{Text: promptCommentText}, nil
	case strings.EqualFold(input, optionNo):
		state.Pending = e.buildTransaction(state)
		return Prompt{}, nil
	default:
		return Prompt{}, ErrUnknownOption
	}
}

func (e *sessionEngine) advanceCommentText(state *models.ConversationState, input string) (Prompt, error) {
	state.Draft.Comment = input
	state.Pending = e.buildTransaction(state)
	return Prompt{}, nil
}

// buildTransaction freezes the draft into an immutable transaction record.
func (e *sessionEngine) buildTransaction(state *models.ConversationState) *models.Transaction {
	return &models.Transaction{
		ID:          uuid.NewString(),
		UserID:      state.UserID,
		Kind:        state.Draft.Kind,
		Category:    state.Draft.Category,
		Subcategory: state.Draft.Subcategory,
		Amount:      state.Draft.Amount,
		Comment:     state.Draft.Comment,
		RecordedAt:  e.now(),
	}
}

// finalize hands the pending transaction to the spreadsheet. On success the
// conversation ends; on failure the state parks in StepAwaitingWrite with the
// same finalized transaction so Retry never re-asks the user.
func (e *sessionEngine) finalize(ctx context.Context, state models.ConversationState) (Prompt, error) {
	log := logger.FromContext(ctx)
	tx := state.Pending

	err := e.appendToSheet(ctx, state.UserID, *tx)
	if err != nil {
		log.Err(err).Str("func", "*sessionEngine.finalize").Int64("user_id", state.UserID).Msg("spreadsheet hand-off failed")

		state.Step = models.StepAwaitingWrite
		state.UpdatedAt = e.now()
		e.sessions.Put(state)

		return Prompt{}, fmt.Errorf("%w: %s", ErrRecordingFailed, err)
	}

	e.sessions.Delete(state.UserID)

	log.Info().Str("func", "*sessionEngine.finalize").
		Int64("user_id", state.UserID).
		Str("kind", string(tx.Kind)).
		Str("category", tx.Category).
		Msg("transaction recorded")

	return Prompt{Text: promptRecorded, Recorded: tx}, nil
}

func (e *sessionEngine) appendToSheet(ctx context.Context, userID int64, tx models.Transaction) error {
	token, err := e.vault.Token(ctx, userID)
	if err != nil {
		return err
	}

	ref, err := e.users.GetSheetRef(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrSheetRefNotFound) {
			return ErrNoSheetSelected
		}
		return fmt.Errorf("loading sheet selection: %w", err)
	}

	return e.sheets.Append(ctx, token, ref, tx)
}

func (e *sessionEngine) Retry(ctx context.Context, userID int64) (Prompt, error) {
	lock := e.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	state, err := e.sessions.Get(userID)
	if err != nil || state.Step != models.StepAwaitingWrite || state.Pending == nil {
		return Prompt{}, ErrNoActiveSession
	}

	return e.finalize(ctx, state)
}

func (e *sessionEngine) Cancel(ctx context.Context, userID int64) error {
	lock := e.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	if _, err := e.sessions.Get(userID); err != nil {
		return ErrNoActiveSession
	}

	e.sessions.Delete(userID)
	return nil
}

func (e *sessionEngine) CancelStale(ctx context.Context, ttl time.Duration) []int64 {
	log := logger.FromContext(ctx)

	cutoff := e.now().Add(-ttl)
	candidates := e.sessions.StaleUsers(cutoff)

	cancelled := make([]int64, 0, len(candidates))
	for _, userID := range candidates {
		lock := e.userLock(userID)
		lock.Lock()
		// the user may have advanced the conversation since the scan;
		// re-check staleness under the lock before cancelling
		state, err := e.sessions.Get(userID)
		if err == nil && state.UpdatedAt.Before(cutoff) {
			e.sessions.Delete(userID)
			cancelled = append(cancelled, userID)
		}
		lock.Unlock()
	}

	if len(cancelled) > 0 {
		log.Info().Str("func", "*sessionEngine.CancelStale").Int("count", len(cancelled)).Msg("cancelled stale conversations")
	}

	return cancelled
}

// parseAmount validates a user-typed amount: a positive number with at most
// two fraction digits. A comma decimal separator is accepted.
func parseAmount(input string) (decimal.Decimal, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(input), ",", ".")

	amount, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %q is not a number", ErrInvalidAmount, input)
	}
	if !amount.IsPositive() {
		return decimal.Decimal{}, fmt.Errorf("%w: amount must be positive", ErrInvalidAmount)
	}
	if amount.Exponent() < -2 {
		return decimal.Decimal{}, fmt.Errorf("%w: at most two fraction digits", ErrInvalidAmount)
	}

	return amount, nil
}
