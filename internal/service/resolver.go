// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Anton Avdeyev

package service

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/avdeyev/sheetfin/internal/logger"
	"github.com/avdeyev/sheetfin/internal/store"
	"github.com/avdeyev/sheetfin/models"
)

//go:embed default_categories.yaml
var defaultCategoriesYAML []byte

type categoryResolver struct {
	categories store.CategoryRepository
	defaults   models.CategorySet
	logger     *logger.Logger
}

// NewCategoryResolver constructs a [CategoryResolver] with the built-in
// default category set. Fails only when the embedded defaults are broken,
// which is a build defect rather than a runtime condition.
func NewCategoryResolver(categories store.CategoryRepository, logger *logger.Logger) (CategoryResolver, error) {
	defaults, err := DecodeCategories(defaultCategoriesYAML)
	if err != nil {
		return nil, fmt.Errorf("parsing default categories: %w", err)
	}
	if err := validateCategorySet(defaults); err != nil {
		return nil, fmt.Errorf("default categories: %w", err)
	}

	return &categoryResolver{
		categories: categories,
		defaults:   defaults,
		logger:     logger,
	}, nil
}

func (r *categoryResolver) Resolve(ctx context.Context, userID int64) (models.CategorySet, error) {
	set, err := r.categories.Get(ctx, userID)
	switch {
	case errors.Is(err, store.ErrCategorySetNotFound):
		return r.defaults, nil
	case err != nil:
		return models.CategorySet{}, fmt.Errorf("loading category overrides: %w", err)
	}
	return set, nil
}

func (r *categoryResolver) Replace(ctx context.Context, userID int64, set models.CategorySet) error {
	log := logger.FromContext(ctx)

	if err := validateCategorySet(set); err != nil {
		return err
	}

	if err := r.categories.Replace(ctx, userID, set); err != nil {
		log.Err(err).Str("func", "*categoryResolver.Replace").Int64("user_id", userID).Msg("storing category overrides failed")
		return fmt.Errorf("storing category overrides: %w", err)
	}

	return nil
}

func (r *categoryResolver) Reset(ctx context.Context, userID int64) error {
	if err := r.categories.Delete(ctx, userID); err != nil {
		return fmt.Errorf("deleting category overrides: %w", err)
	}
	return nil
}

func (r *categoryResolver) Defaults() models.CategorySet {
	return r.defaults
}

// maxCategoryNameBytes bounds category and subcategory names so they fit
// Telegram's 64-byte callback data limit when rendered as keyboard buttons.
const maxCategoryNameBytes = 64

// validateCategorySet enforces the structural rules of a category set: at
// least one expense category, no blank or over-long names, no duplicate
// names within a list, and no duplicate subcategories within a category.
// The income list may be empty; the engine refuses income flows until the
// user adds income categories.
func validateCategorySet(set models.CategorySet) error {
	if len(set.Expense) == 0 {
		return fmt.Errorf("%w: no expense categories", ErrMalformedCategorySet)
	}

	seenExpense := make(map[string]struct{}, len(set.Expense))
	for _, group := range set.Expense {
		name := strings.TrimSpace(group.Name)
		if name == "" {
			return fmt.Errorf("%w: blank expense category name", ErrMalformedCategorySet)
		}
		if len(name) > maxCategoryNameBytes {
			return fmt.Errorf("%w: expense category name over %d bytes", ErrMalformedCategorySet, maxCategoryNameBytes)
		}
		if _, ok := seenExpense[name]; ok {
			return fmt.Errorf("%w: duplicate expense category %q", ErrMalformedCategorySet, name)
		}
		seenExpense[name] = struct{}{}

		seenSub := make(map[string]struct{}, len(group.Subcategories))
		for _, sub := range group.Subcategories {
			subName := strings.TrimSpace(sub)
			if subName == "" {
				return fmt.Errorf("%w: blank subcategory in %q", ErrMalformedCategorySet, name)
			}
			if len(subName) > maxCategoryNameBytes {
				return fmt.Errorf("%w: subcategory name over %d bytes in %q", ErrMalformedCategorySet, maxCategoryNameBytes, name)
			}
			if _, ok := seenSub[subName]; ok {
				return fmt.Errorf("%w: duplicate subcategory %q in %q", ErrMalformedCategorySet, subName, name)
			}
			seenSub[subName] = struct{}{}
		}
	}

	seenIncome := make(map[string]struct{}, len(set.Income))
	for _, name := range set.Income {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			return fmt.Errorf("%w: blank income category name", ErrMalformedCategorySet)
		}
		if len(trimmed) > maxCategoryNameBytes {
			return fmt.Errorf("%w: income category name over %d bytes", ErrMalformedCategorySet, maxCategoryNameBytes)
		}
		if _, ok := seenIncome[trimmed]; ok {
			return fmt.Errorf("%w: duplicate income category %q", ErrMalformedCategorySet, trimmed)
		}
		seenIncome[trimmed] = struct{}{}
	}

	return nil
}
