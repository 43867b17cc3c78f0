// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Anton Avdeyev

package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/avdeyev/sheetfin/internal/adapter"
	"github.com/avdeyev/sheetfin/internal/config"
	"github.com/avdeyev/sheetfin/internal/logger"
	"github.com/avdeyev/sheetfin/internal/store"
	"github.com/avdeyev/sheetfin/models"
)

// stateTokenBytes is the entropy of a correlation token before encoding.
const stateTokenBytes = 32

type authorizationCorrelator struct {
	requests store.AuthRequestRepository
	provider adapter.IdentityProvider
	vault    CredentialVault

	stateTTL time.Duration
	now      func() time.Time
	logger   *logger.Logger
}

// NewAuthorizationCorrelator constructs an [AuthorizationCorrelator] that
// persists in-flight attempts in the auth-request repository and hands
// completed grants to the vault.
func NewAuthorizationCorrelator(requests store.AuthRequestRepository, provider adapter.IdentityProvider, vault CredentialVault, cfg config.OAuth, logger *logger.Logger) AuthorizationCorrelator {
	return &authorizationCorrelator{
		requests: requests,
		provider: provider,
		vault:    vault,
		stateTTL: cfg.StateTTL,
		now:      time.Now,
		logger:   logger,
	}
}

func (c *authorizationCorrelator) Begin(ctx context.Context, userID int64) (string, error) {
	log := logger.FromContext(ctx)

	token, err := newStateToken()
	if err != nil {
		log.Err(err).Str("func", "*authorizationCorrelator.Begin").Msg("minting state token failed")
		return "", fmt.Errorf("minting state token: %w", err)
	}

	now := c.now()
	req := models.AuthRequest{
		Token:     token,
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(c.stateTTL),
	}

	if err := c.requests.Create(ctx, req); err != nil {
		log.Err(err).Str("func", "*authorizationCorrelator.Begin").Msg("storing authorization request failed")
		return "", fmt.Errorf("storing authorization request: %w", err)
	}

	return c.provider.AuthCodeURL(token), nil
}

func (c *authorizationCorrelator) Complete(ctx context.Context, token, code string) (int64, error) {
	log := logger.FromContext(ctx)

	req, err := c.requests.Consume(ctx, token, c.now())
	switch {
	case errors.Is(err, store.ErrAuthRequestNotFound):
		return 0, ErrUnknownOrExpiredRequest
	case err != nil:
		log.Err(err).Str("func", "*authorizationCorrelator.Complete").Msg("consuming authorization request failed")
		return 0, fmt.Errorf("consuming authorization request: %w", err)
	}

	payload, err := c.provider.Exchange(ctx, code)
	switch {
	case errors.Is(err, adapter.ErrCredentialRejected):
		return 0, fmt.Errorf("%w: code exchange rejected", ErrUnknownOrExpiredRequest)
	case errors.Is(err, adapter.ErrProviderUnavailable):
		return 0, fmt.Errorf("%w: code exchange: %s", ErrTemporarilyUnavailable, err)
	case err != nil:
		return 0, fmt.Errorf("code exchange: %w", err)
	}

	if err := c.vault.Store(ctx, req.UserID, payload); err != nil {
		log.Err(err).Str("func", "*authorizationCorrelator.Complete").Int64("user_id", req.UserID).Msg("storing exchanged credential failed")
		return 0, err
	}

	log.Info().Str("func", "*authorizationCorrelator.Complete").Int64("user_id", req.UserID).Msg("authorization completed")
	return req.UserID, nil
}

// newStateToken mints an opaque URL-safe correlation token from the system
// CSPRNG.
func newStateToken() (string, error) {
	buf := make([]byte, stateTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
