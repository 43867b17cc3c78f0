package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/avdeyev/sheetfin/internal/logger"
	"github.com/avdeyev/sheetfin/models"
)

// userRepository is the PostgreSQL-backed implementation of [UserRepository].
// It maintains the "users" and "user_sheets" tables.
//
// All methods obtain a context-scoped logger via [logger.FromContext] for
// structured, request-level tracing of database interactions.
type userRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewUserRepository constructs a [UserRepository] backed by the provided
// database connection and logger.
func NewUserRepository(db *DB, logger *logger.Logger) UserRepository {
	logger.Debug().Msg("creating user repository")
	return &userRepository{
		db:     db,
		logger: logger,
	}
}

// UpsertUser creates the user on first contact or refreshes the mutable
// profile fields. The statement is a single INSERT ... ON CONFLICT, so
// concurrent first contacts from two surfaces of the same user cannot race.
func (r *userRepository) UpsertUser(ctx context.Context, user models.User) error {
	log := logger.FromContext(ctx)

	if _, err := r.db.ExecContext(ctx, upsertUser, user.UserID, user.Username, user.FirstName, user.LastName); err != nil {
		log.Err(err).Str("func", "*userRepository.UpsertUser").Msg("error: upsert failed")
		return fmt.Errorf("unexpected DB error: %w", err)
	}

	return nil
}

// SaveSheetRef records the user's active spreadsheet selection, replacing
// any previous one.
func (r *userRepository) SaveSheetRef(ctx context.Context, ref models.SheetRef) error {
	log := logger.FromContext(ctx)

	if _, err := r.db.ExecContext(ctx, upsertSheetRef, ref.UserID, ref.SpreadsheetID, ref.Title); err != nil {
		log.Err(err).Str("func", "*userRepository.SaveSheetRef").Msg("error: upsert failed")
		return fmt.Errorf("unexpected DB error: %w", err)
	}

	return nil
}

// GetSheetRef returns the user's active spreadsheet selection.
//
// Error handling:
//   - No row → [ErrSheetRefNotFound].
//   - Any other driver-level error → wrapped as "unexpected DB error".
func (r *userRepository) GetSheetRef(ctx context.Context, userID int64) (models.SheetRef, error) {
	log := logger.FromContext(ctx)

	var ref models.SheetRef
	row := r.db.QueryRowContext(ctx, getSheetRef, userID)
	if err := row.Scan(&ref.UserID, &ref.SpreadsheetID, &ref.Title, &ref.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.SheetRef{}, ErrSheetRefNotFound
		}
		log.Err(err).Str("func", "*userRepository.GetSheetRef").Msg("error: scanning error")
		return models.SheetRef{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	return ref, nil
}

// DeleteSheetRef removes the user's spreadsheet selection.
func (r *userRepository) DeleteSheetRef(ctx context.Context, userID int64) error {
	log := logger.FromContext(ctx)

	if _, err := r.db.ExecContext(ctx, deleteSheetRef, userID); err != nil {
		log.Err(err).Str("func", "*userRepository.DeleteSheetRef").Msg("error: delete failed")
		return fmt.Errorf("unexpected DB error: %w", err)
	}

	return nil
}
