// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Anton Avdeyev

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/avdeyev/sheetfin/internal/logger"
	"github.com/avdeyev/sheetfin/models"
)

// credentialRepository is the PostgreSQL-backed implementation of
// [CredentialRepository]. One row per user in the "credentials" table; the
// ciphertext column is opaque bytes, the expiry column is kept in the clear
// so staleness can be queried without decrypting.
type credentialRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewCredentialRepository constructs a [CredentialRepository] backed by the
// provided database connection and logger.
func NewCredentialRepository(db *DB, logger *logger.Logger) CredentialRepository {
	logger.Debug().Msg("creating credential repository")
	return &credentialRepository{
		db:     db,
		logger: logger,
	}
}

// Upsert writes the record for rec.UserID, replacing any prior one. The
// single INSERT ... ON CONFLICT statement keeps the replace all-or-nothing.
func (r *credentialRepository) Upsert(ctx context.Context, rec models.CredentialRecord) error {
	log := logger.FromContext(ctx)

	if _, err := r.db.ExecContext(ctx, upsertCredential, rec.UserID, rec.Ciphertext, rec.Expiry); err != nil {
		log.Err(err).Str("func", "*credentialRepository.Upsert").Msg("error: upsert failed")
		return fmt.Errorf("unexpected DB error: %w", err)
	}

	return nil
}

// Get returns the user's credential record.
//
// Error handling:
//   - No row → [ErrCredentialNotFound].
//   - Any other driver-level error → wrapped as "unexpected DB error".
func (r *credentialRepository) Get(ctx context.Context, userID int64) (models.CredentialRecord, error) {
	log := logger.FromContext(ctx)

	var rec models.CredentialRecord
	row := r.db.QueryRowContext(ctx, getCredential, userID)
	if err := row.Scan(&rec.UserID, &rec.Ciphertext, &rec.Expiry, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.CredentialRecord{}, ErrCredentialNotFound
		}
		log.Err(err).Str("func", "*credentialRepository.Get").Msg("error: scanning error")
		return models.CredentialRecord{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	return rec, nil
}

// Delete removes the user's credential record. Removing an absent record is
// a no-op, which lets revocation and corrupt-record purging stay idempotent.
func (r *credentialRepository) Delete(ctx context.Context, userID int64) error {
	log := logger.FromContext(ctx)

	if _, err := r.db.ExecContext(ctx, deleteCredential, userID); err != nil {
		log.Err(err).Str("func", "*credentialRepository.Delete").Msg("error: delete failed")
		return fmt.Errorf("unexpected DB error: %w", err)
	}

	return nil
}
