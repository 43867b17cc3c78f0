package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/avdeyev/sheetfin/internal/adapter"
	"github.com/avdeyev/sheetfin/internal/config"
	"github.com/avdeyev/sheetfin/internal/crypto"
	"github.com/avdeyev/sheetfin/internal/logger"
	"github.com/avdeyev/sheetfin/internal/store"
	"github.com/avdeyev/sheetfin/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type engineFixture struct {
	engine *sessionEngine
	sheets *fakeSheets
	creds  *fakeCredentialRepo
	users  *fakeUserRepo
}

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()

	cipher, err := crypto.NewTokenCipher(bytes.Repeat([]byte{0x42}, 32))
	require.NoError(t, err)

	creds := newFakeCredentialRepo()
	users := newFakeUserRepo()
	sheets := &fakeSheets{}

	vault := NewCredentialVault(creds, &fakeProvider{}, cipher, config.App{RefreshMargin: time.Minute}, logger.Nop())
	resolver, err := NewCategoryResolver(newFakeCategoryRepo(), logger.Nop())
	require.NoError(t, err)

	engine := NewSessionEngine(store.NewMemorySessionStore(), resolver, vault, users, sheets, logger.Nop())

	return &engineFixture{
		engine: engine.(*sessionEngine),
		sheets: sheets,
		creds:  creds,
		users:  users,
	}
}

// authorize gives the user a fresh credential and a selected sheet so the
// recording flow can start.
func (f *engineFixture) authorize(t *testing.T, userID int64) {
	t.Helper()
	ctx := context.Background()

	vault := f.engine.vault
	require.NoError(t, vault.Store(ctx, userID, models.TokenPayload{
		AccessToken: "at-1",
		Expiry:      time.Now().Add(time.Hour),
	}))
	require.NoError(t, f.users.SaveSheetRef(ctx, models.SheetRef{
		UserID:        userID,
		SpreadsheetID: "sheet-1",
	}))
}

func TestEngine_FullExpenseFlow(t *testing.T) {
	f := newEngineFixture(t)
	f.authorize(t, 101)
	ctx := context.Background()

	prompt, err := f.engine.Begin(ctx, 101)
	require.NoError(t, err)
	assert.Equal(t, []string{optionExpense, optionIncome}, prompt.Options)

	prompt, err = f.engine.Advance(ctx, 101, "Expense")
	require.NoError(t, err)
	assert.Contains(t, prompt.Options, "Food")

	prompt, err = f.engine.Advance(ctx, 101, "Food")
	require.NoError(t, err)
	assert.Contains(t, prompt.Options, "Groceries")

	prompt, err = f.engine.Advance(ctx, 101, "Groceries")
	require.NoError(t, err)
	assert.Nil(t, prompt.Options) // free-text amount

	prompt, err = f.engine.Advance(ctx, 101, "12.50")
	require.NoError(t, err)
	assert.Equal(t, []string{optionYes, optionNo}, prompt.Options)

	prompt, err = f.engine.Advance(ctx, 101, "Yes")
	require.NoError(t, err)
	assert.Nil(t, prompt.Options)

	prompt, err = f.engine.Advance(ctx, 101, "weekly shop")
	require.NoError(t, err)
	require.NotNil(t, prompt.Recorded)

	tx := prompt.Recorded
	assert.Equal(t, models.KindExpense, tx.Kind)
	assert.Equal(t, "Food", tx.Category)
	assert.Equal(t, "Groceries", tx.Subcategory)
	assert.Equal(t, "12.50", tx.Amount.StringFixed(2))
	assert.Equal(t, "weekly shop", tx.Comment)
	assert.NotEmpty(t, tx.ID)

	require.Len(t, f.sheets.appended, 1)

	// conversation is gone once recorded
	_, err = f.engine.Advance(ctx, 101, "anything")
	assert.ErrorIs(t, err, ErrNoActiveSession)
}

func TestEngine_IncomeFlowSkipsSubcategory(t *testing.T) {
	f := newEngineFixture(t)
	f.authorize(t, 101)
	ctx := context.Background()

	_, err := f.engine.Begin(ctx, 101)
	require.NoError(t, err)

	prompt, err := f.engine.Advance(ctx, 101, "Income")
	require.NoError(t, err)
	assert.Contains(t, prompt.Options, "Salary")
	assert.NotContains(t, prompt.Options, "Food")

	// straight to the amount, no subcategory step for income
	prompt, err = f.engine.Advance(ctx, 101, "Salary")
	require.NoError(t, err)
	assert.Equal(t, promptAmount, prompt.Text)

	prompt, err = f.engine.Advance(ctx, 101, "3000")
	require.NoError(t, err)

	prompt, err = f.engine.Advance(ctx, 101, "No")
	require.NoError(t, err)
	require.NotNil(t, prompt.Recorded)

	tx := prompt.Recorded
	assert.Equal(t, models.KindIncome, tx.Kind)
	assert.Equal(t, "Salary", tx.Category)
	assert.Empty(t, tx.Subcategory)
	assert.Empty(t, tx.Comment)
}

func TestEngine_ExpenseWithoutSubcategoriesSkipsStep(t *testing.T) {
	f := newEngineFixture(t)
	f.authorize(t, 101)
	ctx := context.Background()

	_, err := f.engine.Begin(ctx, 101)
	require.NoError(t, err)
	_, err = f.engine.Advance(ctx, 101, "Expense")
	require.NoError(t, err)

	// "Subscriptions" has no subcategories in the defaults
	prompt, err := f.engine.Advance(ctx, 101, "Subscriptions")
	require.NoError(t, err)
	assert.Equal(t, promptAmount, prompt.Text)
}

func TestEngine_BeginPrerequisites(t *testing.T) {
	t.Run("not authenticated", func(t *testing.T) {
		f := newEngineFixture(t)

		_, err := f.engine.Begin(context.Background(), 101)
		assert.ErrorIs(t, err, ErrNotAuthenticated)
	})

	t.Run("no sheet selected", func(t *testing.T) {
		f := newEngineFixture(t)
		ctx := context.Background()

		require.NoError(t, f.engine.vault.Store(ctx, 101, models.TokenPayload{
			AccessToken: "at-1",
			Expiry:      time.Now().Add(time.Hour),
		}))

		_, err := f.engine.Begin(ctx, 101)
		assert.ErrorIs(t, err, ErrNoSheetSelected)
	})

	t.Run("already in progress", func(t *testing.T) {
		f := newEngineFixture(t)
		f.authorize(t, 101)
		ctx := context.Background()

		_, err := f.engine.Begin(ctx, 101)
		require.NoError(t, err)

		_, err = f.engine.Begin(ctx, 101)
		assert.ErrorIs(t, err, ErrSessionInProgress)
	})
}

func TestEngine_RejectedInputKeepsStep(t *testing.T) {
	f := newEngineFixture(t)
	f.authorize(t, 101)
	ctx := context.Background()

	_, err := f.engine.Begin(ctx, 101)
	require.NoError(t, err)

	_, err = f.engine.Advance(ctx, 101, "Sideways")
	assert.ErrorIs(t, err, ErrUnknownOption)

	// still on the kind step, a valid answer proceeds
	prompt, err := f.engine.Advance(ctx, 101, "expense")
	require.NoError(t, err)
	assert.Contains(t, prompt.Options, "Food")

	_, err = f.engine.Advance(ctx, 101, "Yachts")
	assert.ErrorIs(t, err, ErrUnknownCategory)

	_, err = f.engine.Advance(ctx, 101, "Food")
	require.NoError(t, err)

	_, err = f.engine.Advance(ctx, 101, "Jetskis")
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestEngine_AmountValidation(t *testing.T) {
	rejected := []string{"abc", "", "-5", "0", "12.345", "1e_3"}
	for _, input := range rejected {
		t.Run(fmt.Sprintf("rejects %q", input), func(t *testing.T) {
			_, err := parseAmount(input)
			assert.ErrorIs(t, err, ErrInvalidAmount)
		})
	}

	accepted := map[string]string{
		"12":      "12.00",
		"12.5":    "12.50",
		"12.50":   "12.50",
		"12,50":   "12.50",
		" 0.01 ":  "0.01",
		"1000000": "1000000.00",
	}
	for input, want := range accepted {
		t.Run(fmt.Sprintf("accepts %q", input), func(t *testing.T) {
			amount, err := parseAmount(input)
			require.NoError(t, err)
			assert.Equal(t, want, amount.StringFixed(2))
		})
	}
}

func TestEngine_WriteFailureParksAndRetries(t *testing.T) {
	f := newEngineFixture(t)
	f.authorize(t, 101)
	ctx := context.Background()

	writeFails := true
	f.sheets.appendFunc = func(_ context.Context, _ string, _ models.SheetRef, _ models.Transaction) error {
		if writeFails {
			return adapter.ErrSpreadsheetWrite
		}
		return nil
	}

	_, err := f.engine.Begin(ctx, 101)
	require.NoError(t, err)
	_, err = f.engine.Advance(ctx, 101, "Income")
	require.NoError(t, err)
	_, err = f.engine.Advance(ctx, 101, "Salary")
	require.NoError(t, err)
	_, err = f.engine.Advance(ctx, 101, "3000")
	require.NoError(t, err)

	_, err = f.engine.Advance(ctx, 101, "No")
	assert.ErrorIs(t, err, ErrRecordingFailed)
	assert.Empty(t, f.sheets.appended)

	// further inputs do not restart the conversation
	_, err = f.engine.Advance(ctx, 101, "No")
	assert.ErrorIs(t, err, ErrRecordingFailed)

	// a retry while the sheet is still down keeps the draft parked
	_, err = f.engine.Retry(ctx, 101)
	assert.ErrorIs(t, err, ErrRecordingFailed)

	writeFails = false
	prompt, err := f.engine.Retry(ctx, 101)
	require.NoError(t, err)
	require.NotNil(t, prompt.Recorded)
	assert.Equal(t, "Salary", prompt.Recorded.Category)
	require.Len(t, f.sheets.appended, 1)

	_, err = f.engine.Retry(ctx, 101)
	assert.ErrorIs(t, err, ErrNoActiveSession)
}

func TestEngine_RetryWithoutPendingWrite(t *testing.T) {
	f := newEngineFixture(t)
	f.authorize(t, 101)
	ctx := context.Background()

	_, err := f.engine.Retry(ctx, 101)
	assert.ErrorIs(t, err, ErrNoActiveSession)

	// a conversation mid-flight has nothing to retry either
	_, err = f.engine.Begin(ctx, 101)
	require.NoError(t, err)
	_, err = f.engine.Retry(ctx, 101)
	assert.ErrorIs(t, err, ErrNoActiveSession)
}

func TestEngine_Cancel(t *testing.T) {
	f := newEngineFixture(t)
	f.authorize(t, 101)
	ctx := context.Background()

	assert.ErrorIs(t, f.engine.Cancel(ctx, 101), ErrNoActiveSession)

	_, err := f.engine.Begin(ctx, 101)
	require.NoError(t, err)
	require.NoError(t, f.engine.Cancel(ctx, 101))

	// the draft is gone; a new conversation starts clean
	prompt, err := f.engine.Begin(ctx, 101)
	require.NoError(t, err)
	assert.Equal(t, promptKind, prompt.Text)
}

func TestEngine_CancelStale(t *testing.T) {
	f := newEngineFixture(t)
	f.authorize(t, 101)
	f.authorize(t, 202)
	ctx := context.Background()

	base := time.Now()
	f.engine.now = func() time.Time { return base }

	_, err := f.engine.Begin(ctx, 101)
	require.NoError(t, err)

	f.engine.now = func() time.Time { return base.Add(20 * time.Minute) }

	_, err = f.engine.Begin(ctx, 202)
	require.NoError(t, err)

	stale := f.engine.CancelStale(ctx, 15*time.Minute)
	assert.Equal(t, []int64{101}, stale)

	// the fresh conversation survived
	_, err = f.engine.Advance(ctx, 202, "Income")
	require.NoError(t, err)
	_, err = f.engine.Advance(ctx, 101, "Income")
	assert.ErrorIs(t, err, ErrNoActiveSession)
}

// racingSessionStore simulates a user submitting input between the staleness
// scan and the cancellation pass.
type racingSessionStore struct {
	store.SessionStore
	bump int64
	now  func() time.Time
}

func (s *racingSessionStore) StaleUsers(updatedBefore time.Time) []int64 {
	stale := s.SessionStore.StaleUsers(updatedBefore)
	if state, err := s.SessionStore.Get(s.bump); err == nil {
		state.UpdatedAt = s.now()
		s.SessionStore.Put(state)
	}
	return stale
}

func TestEngine_CancelStaleKeepsFreshlyActiveSession(t *testing.T) {
	f := newEngineFixture(t)
	f.authorize(t, 101)
	ctx := context.Background()

	base := time.Now()
	f.engine.now = func() time.Time { return base }

	_, err := f.engine.Begin(ctx, 101)
	require.NoError(t, err)

	later := func() time.Time { return base.Add(20 * time.Minute) }
	f.engine.now = later
	f.engine.sessions = &racingSessionStore{
		SessionStore: f.engine.sessions,
		bump:         101,
		now:          later,
	}

	stale := f.engine.CancelStale(ctx, 15*time.Minute)
	assert.Empty(t, stale)

	// the conversation the user just touched is still alive
	_, err = f.engine.Advance(ctx, 101, "Expense")
	require.NoError(t, err)
}

func TestEngine_IncomeRefusedWithoutIncomeCategories(t *testing.T) {
	f := newEngineFixture(t)
	f.authorize(t, 101)
	ctx := context.Background()

	require.NoError(t, f.engine.resolver.Replace(ctx, 101, models.CategorySet{
		Expense: []models.CategoryGroup{{Name: "Food"}},
	}))

	_, err := f.engine.Begin(ctx, 101)
	require.NoError(t, err)

	_, err = f.engine.Advance(ctx, 101, "Income")
	assert.ErrorIs(t, err, ErrNoIncomeCategories)

	// the step did not advance; an expense still works
	prompt, err := f.engine.Advance(ctx, 101, "Expense")
	require.NoError(t, err)
	assert.Equal(t, promptCategory, prompt.Text)
	assert.Equal(t, []string{"Food"}, prompt.Options)
}

func TestEngine_UsersAreIsolated(t *testing.T) {
	f := newEngineFixture(t)
	users := []int64{101, 202, 303, 404}
	for _, userID := range users {
		f.authorize(t, userID)
	}
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, len(users))

	for i, userID := range users {
		wg.Add(1)
		go func(i int, userID int64) {
			defer wg.Done()
			errs[i] = func() error {
				if _, err := f.engine.Begin(ctx, userID); err != nil {
					return err
				}
				for _, input := range []string{"Income", "Salary", "100", "Yes"} {
					if _, err := f.engine.Advance(ctx, userID, input); err != nil {
						return err
					}
				}
				prompt, err := f.engine.Advance(ctx, userID, fmt.Sprintf("comment-%d", userID))
				if err != nil {
					return err
				}
				if prompt.Recorded == nil || prompt.Recorded.UserID != userID {
					return errors.New("recorded transaction lost its owner")
				}
				return nil
			}()
		}(i, userID)
	}
	wg.Wait()

	for i, err := range errs {
		assert.NoError(t, err, "user %d", users[i])
	}
	assert.Len(t, f.sheets.appended, len(users))
}
