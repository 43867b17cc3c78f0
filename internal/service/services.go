package service

import (
	"fmt"

	"github.com/avdeyev/sheetfin/internal/adapter"
	"github.com/avdeyev/sheetfin/internal/config"
	"github.com/avdeyev/sheetfin/internal/crypto"
	"github.com/avdeyev/sheetfin/internal/logger"
	"github.com/avdeyev/sheetfin/internal/store"
)

// Services aggregates the application services behind their interfaces.
type Services struct {
	Vault      CredentialVault
	Correlator AuthorizationCorrelator
	Resolver   CategoryResolver
	Engine     SessionEngine
	Account    AccountService
}

// NewServices wires the services on top of the storages, adapters, and the
// token cipher.
func NewServices(storages *store.Storages, provider adapter.IdentityProvider, sheets adapter.SpreadsheetWriter, cipher crypto.TokenCipher, cfg *config.StructuredConfig, logger *logger.Logger) (*Services, error) {
	vault := NewCredentialVault(storages.Credentials, provider, cipher, cfg.App, logger)

	resolver, err := NewCategoryResolver(storages.Categories, logger)
	if err != nil {
		return nil, fmt.Errorf("building category resolver: %w", err)
	}

	return &Services{
		Vault:      vault,
		Correlator: NewAuthorizationCorrelator(storages.AuthRequests, provider, vault, cfg.OAuth, logger),
		Resolver:   resolver,
		Engine:     NewSessionEngine(storages.Sessions, resolver, vault, storages.Users, sheets, logger),
		Account:    NewAccountService(storages.Users, vault, sheets, logger),
	}, nil
}
