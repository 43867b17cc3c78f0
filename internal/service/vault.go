// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Anton Avdeyev

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/avdeyev/sheetfin/internal/adapter"
	"github.com/avdeyev/sheetfin/internal/config"
	"github.com/avdeyev/sheetfin/internal/crypto"
	"github.com/avdeyev/sheetfin/internal/logger"
	"github.com/avdeyev/sheetfin/internal/store"
	"github.com/avdeyev/sheetfin/models"
)

type credentialVault struct {
	credentials store.CredentialRepository
	provider    adapter.IdentityProvider
	cipher      crypto.TokenCipher

	refreshMargin time.Duration
	now           func() time.Time
	logger        *logger.Logger
}

// NewCredentialVault constructs a [CredentialVault] on top of the credential
// repository, the identity provider, and the token cipher.
func NewCredentialVault(credentials store.CredentialRepository, provider adapter.IdentityProvider, cipher crypto.TokenCipher, cfg config.App, logger *logger.Logger) CredentialVault {
	return &credentialVault{
		credentials:   credentials,
		provider:      provider,
		cipher:        cipher,
		refreshMargin: cfg.RefreshMargin,
		now:           time.Now,
		logger:        logger,
	}
}

func (v *credentialVault) Store(ctx context.Context, userID int64, payload models.TokenPayload) error {
	log := logger.FromContext(ctx)

	if !payload.Valid() {
		return fmt.Errorf("%w: payload lacks access token or expiry", ErrCorruptCredential)
	}

	blob, err := v.seal(payload)
	if err != nil {
		log.Err(err).Str("func", "*credentialVault.Store").Msg("sealing credential failed")
		return err
	}

	now := v.now()
	rec := models.CredentialRecord{
		UserID:     userID,
		Ciphertext: blob,
		Expiry:     payload.Expiry,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := v.credentials.Upsert(ctx, rec); err != nil {
		log.Err(err).Str("func", "*credentialVault.Store").Msg("storing credential failed")
		return fmt.Errorf("storing credential: %w", err)
	}

	return nil
}

func (v *credentialVault) Token(ctx context.Context, userID int64) (string, error) {
	log := logger.FromContext(ctx)

	payload, err := v.open(ctx, userID)
	if err != nil {
		return "", err
	}

	if !payload.ExpiresWithin(v.now(), v.refreshMargin) {
		return payload.AccessToken, nil
	}

	refreshed, err := v.provider.Refresh(ctx, payload)
	switch {
	case errors.Is(err, adapter.ErrCredentialRejected):
		// consent was revoked upstream; the record is dead weight
		if delErr := v.credentials.Delete(ctx, userID); delErr != nil {
			log.Err(delErr).Str("func", "*credentialVault.Token").Msg("purging rejected credential failed")
		}
		return "", fmt.Errorf("%w: provider rejected refresh", ErrNotAuthenticated)
	case errors.Is(err, adapter.ErrProviderUnavailable):
		return "", fmt.Errorf("%w: token refresh: %s", ErrTemporarilyUnavailable, err)
	case err != nil:
		return "", fmt.Errorf("token refresh: %w", err)
	}

	if err := v.Store(ctx, userID, refreshed); err != nil {
		log.Err(err).Str("func", "*credentialVault.Token").Msg("storing refreshed credential failed")
		return "", err
	}

	return refreshed.AccessToken, nil
}

func (v *credentialVault) Authorized(ctx context.Context, userID int64) (bool, error) {
	_, err := v.credentials.Get(ctx, userID)
	switch {
	case errors.Is(err, store.ErrCredentialNotFound):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("looking up credential: %w", err)
	}
	return true, nil
}

func (v *credentialVault) Revoke(ctx context.Context, userID int64) error {
	log := logger.FromContext(ctx)

	payload, err := v.open(ctx, userID)
	switch {
	case errors.Is(err, ErrNotAuthenticated):
		return ErrNotAuthenticated
	case errors.Is(err, ErrCorruptCredential):
		// open already purged the record; nothing left to revoke
		return nil
	case err != nil:
		return err
	}

	if err := v.provider.Revoke(ctx, payload); err != nil {
		// best effort: the local purge below matters more than the
		// provider-side invalidation
		log.Err(err).Str("func", "*credentialVault.Revoke").Msg("provider revoke failed")
	}

	if err := v.credentials.Delete(ctx, userID); err != nil {
		log.Err(err).Str("func", "*credentialVault.Revoke").Msg("deleting credential failed")
		return fmt.Errorf("deleting credential: %w", err)
	}

	return nil
}

// open loads and unseals the user's credential. A record that fails
// decryption or deserialization is purged before the error is returned, so a
// corrupted row cannot wedge the user permanently.
func (v *credentialVault) open(ctx context.Context, userID int64) (models.TokenPayload, error) {
	log := logger.FromContext(ctx)

	rec, err := v.credentials.Get(ctx, userID)
	switch {
	case errors.Is(err, store.ErrCredentialNotFound):
		return models.TokenPayload{}, ErrNotAuthenticated
	case err != nil:
		return models.TokenPayload{}, fmt.Errorf("loading credential: %w", err)
	}

	plaintext, err := v.cipher.Decrypt(rec.Ciphertext)
	if err != nil {
		log.Err(err).Str("func", "*credentialVault.open").Int64("user_id", userID).Msg("credential failed decryption, purging")
		return models.TokenPayload{}, v.purgeCorrupt(ctx, userID)
	}

	var payload models.TokenPayload
	if err := json.Unmarshal(plaintext, &payload); err != nil || !payload.Valid() {
		log.Warn().Str("func", "*credentialVault.open").Int64("user_id", userID).Msg("credential payload unusable, purging")
		return models.TokenPayload{}, v.purgeCorrupt(ctx, userID)
	}

	return payload, nil
}

func (v *credentialVault) purgeCorrupt(ctx context.Context, userID int64) error {
	if err := v.credentials.Delete(ctx, userID); err != nil {
		return fmt.Errorf("%w: purge failed: %s", ErrCorruptCredential, err)
	}
	return ErrCorruptCredential
}

func (v *credentialVault) seal(payload models.TokenPayload) ([]byte, error) {
	plaintext, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("serializing credential: %w", err)
	}

	blob, err := v.cipher.Encrypt(plaintext)
	if err != nil {
		return nil, fmt.Errorf("sealing credential: %w", err)
	}

	return blob, nil
}
