// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Anton Avdeyev

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/avdeyev/sheetfin/internal/logger"
	"github.com/avdeyev/sheetfin/models"
)

// authRequestRepository is the PostgreSQL-backed implementation of
// [AuthRequestRepository]. Rows are keyed by the correlation token; the
// consumed flag plus the expiry column enforce the single-use guarantee at
// the database level.
type authRequestRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewAuthRequestRepository constructs an [AuthRequestRepository] backed by
// the provided database connection and logger.
func NewAuthRequestRepository(db *DB, logger *logger.Logger) AuthRequestRepository {
	logger.Debug().Msg("creating auth request repository")
	return &authRequestRepository{
		db:     db,
		logger: logger,
	}
}

// Create records a new authorization attempt. The delete and insert run in
// one transaction so that at no point does the user have two redeemable
// tokens: a prior pending request is invalidated, not merely ignored.
func (r *authRequestRepository) Create(ctx context.Context, req models.AuthRequest) error {
	log := logger.FromContext(ctx)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).Str("func", "*authRequestRepository.Create").Msg("error: beginning transaction")
		return fmt.Errorf("%w: %s", ErrBeginningTransaction, err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if _, err := tx.ExecContext(ctx, deletePendingAuthRequests, req.UserID); err != nil {
		log.Err(err).Str("func", "*authRequestRepository.Create").Msg("error: invalidating prior requests")
		return fmt.Errorf("unexpected DB error: %w", err)
	}

	if _, err := tx.ExecContext(ctx, insertAuthRequest, req.Token, req.UserID, req.CreatedAt, req.ExpiresAt); err != nil {
		if isUniqueViolation(err) {
			log.Err(err).Str("func", "*authRequestRepository.Create").Msg("error: token collision")
			return ErrDuplicateToken
		}
		log.Err(err).Str("func", "*authRequestRepository.Create").Msg("error: inserting request")
		return fmt.Errorf("unexpected DB error: %w", err)
	}

	if err := tx.Commit(); err != nil {
		log.Err(err).Str("func", "*authRequestRepository.Create").Msg("error: committing transaction")
		return fmt.Errorf("%w: %s", ErrCommitingTransaction, err)
	}

	return nil
}

// Consume atomically marks the request consumed and returns it. The UPDATE's
// WHERE clause is the anti-replay guarantee: a second consume of the same
// token, or a consume past expiry, matches zero rows and surfaces as
// [ErrAuthRequestNotFound].
func (r *authRequestRepository) Consume(ctx context.Context, token string, now time.Time) (models.AuthRequest, error) {
	log := logger.FromContext(ctx)

	var req models.AuthRequest
	row := r.db.QueryRowContext(ctx, consumeAuthRequest, token, now)
	if err := row.Scan(&req.Token, &req.UserID, &req.Consumed, &req.CreatedAt, &req.ExpiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.AuthRequest{}, ErrAuthRequestNotFound
		}
		log.Err(err).Str("func", "*authRequestRepository.Consume").Msg("error: scanning error")
		return models.AuthRequest{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	return req, nil
}

// DeleteStale removes requests that can never be consumed again: consumed
// ones and those whose expiry lies before the given instant.
func (r *authRequestRepository) DeleteStale(ctx context.Context, before time.Time) (int64, error) {
	log := logger.FromContext(ctx)

	query, args, err := sq.Delete("auth_requests").
		Where(sq.Or{
			sq.Eq{"consumed": true},
			sq.Lt{"expires_at": before},
		}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		log.Err(err).Str("func", "*authRequestRepository.DeleteStale").Msg("error: building query")
		return 0, fmt.Errorf("%w: %s", ErrBuildingSQLQuery, err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*authRequestRepository.DeleteStale").Msg("error: delete failed")
		return 0, fmt.Errorf("%w: %s", ErrExecutingQuery, err)
	}

	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("unexpected DB error: %w", err)
	}

	return removed, nil
}
