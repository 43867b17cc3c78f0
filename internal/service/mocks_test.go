package service

import (
	"context"
	"sync"
	"time"

	"github.com/avdeyev/sheetfin/internal/store"
	"github.com/avdeyev/sheetfin/models"
)

// fakeCredentialRepo is an in-memory store.CredentialRepository.
type fakeCredentialRepo struct {
	records map[int64]models.CredentialRecord

	upsertErr error
	getErr    error
	deleteErr error
}

func newFakeCredentialRepo() *fakeCredentialRepo {
	return &fakeCredentialRepo{records: make(map[int64]models.CredentialRecord)}
}

func (f *fakeCredentialRepo) Upsert(_ context.Context, rec models.CredentialRecord) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.records[rec.UserID] = rec
	return nil
}

func (f *fakeCredentialRepo) Get(_ context.Context, userID int64) (models.CredentialRecord, error) {
	if f.getErr != nil {
		return models.CredentialRecord{}, f.getErr
	}
	rec, ok := f.records[userID]
	if !ok {
		return models.CredentialRecord{}, store.ErrCredentialNotFound
	}
	return rec, nil
}

func (f *fakeCredentialRepo) Delete(_ context.Context, userID int64) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.records, userID)
	return nil
}

// fakeProvider is a func-field adapter.IdentityProvider.
type fakeProvider struct {
	authCodeURLFunc func(state string) string
	exchangeFunc    func(ctx context.Context, code string) (models.TokenPayload, error)
	refreshFunc     func(ctx context.Context, payload models.TokenPayload) (models.TokenPayload, error)
	revokeFunc      func(ctx context.Context, payload models.TokenPayload) error

	revokeCalls int
}

func (f *fakeProvider) AuthCodeURL(state string) string {
	if f.authCodeURLFunc != nil {
		return f.authCodeURLFunc(state)
	}
	return "https://provider.example.com/auth?state=" + state
}

func (f *fakeProvider) Exchange(ctx context.Context, code string) (models.TokenPayload, error) {
	return f.exchangeFunc(ctx, code)
}

func (f *fakeProvider) Refresh(ctx context.Context, payload models.TokenPayload) (models.TokenPayload, error) {
	return f.refreshFunc(ctx, payload)
}

func (f *fakeProvider) Revoke(ctx context.Context, payload models.TokenPayload) error {
	f.revokeCalls++
	if f.revokeFunc != nil {
		return f.revokeFunc(ctx, payload)
	}
	return nil
}

// fakeSheets is a func-field adapter.SpreadsheetWriter. Safe for concurrent
// appends.
type fakeSheets struct {
	appendFunc func(ctx context.Context, accessToken string, ref models.SheetRef, tx models.Transaction) error
	titleFunc  func(ctx context.Context, accessToken, spreadsheetID string) (string, error)

	mu       sync.Mutex
	appended []models.Transaction
}

func (f *fakeSheets) Append(ctx context.Context, accessToken string, ref models.SheetRef, tx models.Transaction) error {
	if f.appendFunc != nil {
		if err := f.appendFunc(ctx, accessToken, ref, tx); err != nil {
			return err
		}
	}
	f.mu.Lock()
	f.appended = append(f.appended, tx)
	f.mu.Unlock()
	return nil
}

func (f *fakeSheets) SpreadsheetTitle(ctx context.Context, accessToken, spreadsheetID string) (string, error) {
	if f.titleFunc != nil {
		return f.titleFunc(ctx, accessToken, spreadsheetID)
	}
	return "Test budget", nil
}

// fakeUserRepo is an in-memory store.UserRepository.
type fakeUserRepo struct {
	users  map[int64]models.User
	sheets map[int64]models.SheetRef
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:  make(map[int64]models.User),
		sheets: make(map[int64]models.SheetRef),
	}
}

func (f *fakeUserRepo) UpsertUser(_ context.Context, user models.User) error {
	f.users[user.UserID] = user
	return nil
}

func (f *fakeUserRepo) SaveSheetRef(_ context.Context, ref models.SheetRef) error {
	f.sheets[ref.UserID] = ref
	return nil
}

func (f *fakeUserRepo) GetSheetRef(_ context.Context, userID int64) (models.SheetRef, error) {
	ref, ok := f.sheets[userID]
	if !ok {
		return models.SheetRef{}, store.ErrSheetRefNotFound
	}
	return ref, nil
}

func (f *fakeUserRepo) DeleteSheetRef(_ context.Context, userID int64) error {
	delete(f.sheets, userID)
	return nil
}

// fakeCategoryRepo is an in-memory store.CategoryRepository.
type fakeCategoryRepo struct {
	sets       map[int64]models.CategorySet
	replaceErr error
}

func newFakeCategoryRepo() *fakeCategoryRepo {
	return &fakeCategoryRepo{sets: make(map[int64]models.CategorySet)}
}

func (f *fakeCategoryRepo) Replace(_ context.Context, userID int64, set models.CategorySet) error {
	if f.replaceErr != nil {
		return f.replaceErr
	}
	f.sets[userID] = set
	return nil
}

func (f *fakeCategoryRepo) Get(_ context.Context, userID int64) (models.CategorySet, error) {
	set, ok := f.sets[userID]
	if !ok {
		return models.CategorySet{}, store.ErrCategorySetNotFound
	}
	return set, nil
}

func (f *fakeCategoryRepo) Delete(_ context.Context, userID int64) error {
	delete(f.sets, userID)
	return nil
}

// fakeAuthRequestRepo mimics the repository's single-use semantics in
// memory: creating invalidates the prior pending request, consuming works
// exactly once per token.
type fakeAuthRequestRepo struct {
	byToken map[string]*models.AuthRequest
}

func newFakeAuthRequestRepo() *fakeAuthRequestRepo {
	return &fakeAuthRequestRepo{byToken: make(map[string]*models.AuthRequest)}
}

func (f *fakeAuthRequestRepo) Create(_ context.Context, req models.AuthRequest) error {
	for token, existing := range f.byToken {
		if existing.UserID == req.UserID && !existing.Consumed {
			delete(f.byToken, token)
		}
	}
	stored := req
	f.byToken[req.Token] = &stored
	return nil
}

func (f *fakeAuthRequestRepo) Consume(_ context.Context, token string, now time.Time) (models.AuthRequest, error) {
	req, ok := f.byToken[token]
	if !ok || !req.Pending(now) {
		return models.AuthRequest{}, store.ErrAuthRequestNotFound
	}
	req.Consumed = true
	return *req, nil
}

func (f *fakeAuthRequestRepo) DeleteStale(_ context.Context, before time.Time) (int64, error) {
	var removed int64
	for token, req := range f.byToken {
		if req.Consumed || req.ExpiresAt.Before(before) {
			delete(f.byToken, token)
			removed++
		}
	}
	return removed, nil
}
