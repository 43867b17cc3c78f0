package store

import (
	"context"

	"github.com/avdeyev/sheetfin/internal/config"
	"github.com/avdeyev/sheetfin/internal/logger"
)

// Storages aggregates every repository the application uses, so the wiring
// code passes one value around instead of four.
type Storages struct {
	Users        UserRepository
	Credentials  CredentialRepository
	Categories   CategoryRepository
	AuthRequests AuthRequestRepository
	Sessions     SessionStore
}

// NewStorages connects to PostgreSQL, runs pending migrations, and constructs
// all repositories plus the in-memory session store.
func NewStorages(ctx context.Context, cfg config.Storage, log *logger.Logger) (*Storages, error) {
	db, err := NewConnectPostgres(ctx, cfg.DB, log)
	if err != nil {
		return nil, err
	}

	if err := db.Migrate(); err != nil {
		return nil, err
	}

	return &Storages{
		Users:        NewUserRepository(db, log),
		Credentials:  NewCredentialRepository(db, log),
		Categories:   NewCategoryRepository(db, log),
		AuthRequests: NewAuthRequestRepository(db, log),
		Sessions:     NewMemorySessionStore(),
	}, nil
}
