package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/avdeyev/sheetfin/internal/logger"
	"github.com/avdeyev/sheetfin/models"
)

// categoryRepository is the PostgreSQL-backed implementation of
// [CategoryRepository]. The override set is stored as one JSONB value per
// user, so a replace is a single-row atomic upsert and readers never observe
// a half-written set.
type categoryRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewCategoryRepository constructs a [CategoryRepository] backed by the
// provided database connection and logger.
func NewCategoryRepository(db *DB, logger *logger.Logger) CategoryRepository {
	logger.Debug().Msg("creating category repository")
	return &categoryRepository{
		db:     db,
		logger: logger,
	}
}

// Replace atomically upserts the user's override set.
func (r *categoryRepository) Replace(ctx context.Context, userID int64, set models.CategorySet) error {
	log := logger.FromContext(ctx)

	raw, err := json.Marshal(set)
	if err != nil {
		log.Err(err).Str("func", "*categoryRepository.Replace").Msg("error: marshalling category set")
		return fmt.Errorf("marshal category set: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, upsertCategorySet, userID, raw); err != nil {
		log.Err(err).Str("func", "*categoryRepository.Replace").Msg("error: upsert failed")
		return fmt.Errorf("unexpected DB error: %w", err)
	}

	return nil
}

// Get returns the user's override set.
//
// Error handling:
//   - No row → [ErrCategorySetNotFound].
//   - Unmarshal failure → wrapped; indicates the stored JSON was written by
//     an incompatible version and needs a reset.
func (r *categoryRepository) Get(ctx context.Context, userID int64) (models.CategorySet, error) {
	log := logger.FromContext(ctx)

	var raw []byte
	row := r.db.QueryRowContext(ctx, getCategorySet, userID)
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.CategorySet{}, ErrCategorySetNotFound
		}
		log.Err(err).Str("func", "*categoryRepository.Get").Msg("error: scanning error")
		return models.CategorySet{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	var set models.CategorySet
	if err := json.Unmarshal(raw, &set); err != nil {
		log.Err(err).Str("func", "*categoryRepository.Get").Msg("error: unmarshalling category set")
		return models.CategorySet{}, fmt.Errorf("unmarshal category set: %w", err)
	}

	return set, nil
}

// Delete removes the user's override set.
func (r *categoryRepository) Delete(ctx context.Context, userID int64) error {
	log := logger.FromContext(ctx)

	if _, err := r.db.ExecContext(ctx, deleteCategorySet, userID); err != nil {
		log.Err(err).Str("func", "*categoryRepository.Delete").Msg("error: delete failed")
		return fmt.Errorf("unexpected DB error: %w", err)
	}

	return nil
}
