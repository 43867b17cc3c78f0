// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Anton Avdeyev

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avdeyev/sheetfin/internal/adapter"
	"github.com/avdeyev/sheetfin/internal/logger"
	"github.com/avdeyev/sheetfin/internal/store"
	"github.com/avdeyev/sheetfin/models"
)

type accountService struct {
	users  store.UserRepository
	vault  CredentialVault
	sheets adapter.SpreadsheetWriter

	now    func() time.Time
	logger *logger.Logger
}

// NewAccountService constructs an [AccountService].
func NewAccountService(users store.UserRepository, vault CredentialVault, sheets adapter.SpreadsheetWriter, logger *logger.Logger) AccountService {
	return &accountService{
		users:  users,
		vault:  vault,
		sheets: sheets,
		now:    time.Now,
		logger: logger,
	}
}

func (a *accountService) RegisterUser(ctx context.Context, user models.User) error {
	now := a.now()
	user.CreatedAt = now
	user.UpdatedAt = now

	if err := a.users.UpsertUser(ctx, user); err != nil {
		return fmt.Errorf("registering user: %w", err)
	}
	return nil
}

func (a *accountService) SelectSheet(ctx context.Context, userID int64, spreadsheetID string) (models.SheetRef, error) {
	log := logger.FromContext(ctx)

	token, err := a.vault.Token(ctx, userID)
	if err != nil {
		return models.SheetRef{}, err
	}

	title, err := a.sheets.SpreadsheetTitle(ctx, token, spreadsheetID)
	switch {
	case errors.Is(err, adapter.ErrSpreadsheetNotFound):
		return models.SheetRef{}, err
	case errors.Is(err, adapter.ErrProviderUnavailable):
		return models.SheetRef{}, fmt.Errorf("%w: %s", ErrTemporarilyUnavailable, err)
	case err != nil:
		return models.SheetRef{}, fmt.Errorf("verifying spreadsheet: %w", err)
	}

	ref := models.SheetRef{
		UserID:        userID,
		SpreadsheetID: spreadsheetID,
		Title:         title,
		UpdatedAt:     a.now(),
	}

	if err := a.users.SaveSheetRef(ctx, ref); err != nil {
		log.Err(err).Str("func", "*accountService.SelectSheet").Int64("user_id", userID).Msg("saving sheet selection failed")
		return models.SheetRef{}, fmt.Errorf("saving sheet selection: %w", err)
	}

	return ref, nil
}

func (a *accountService) ActiveSheet(ctx context.Context, userID int64) (models.SheetRef, error) {
	ref, err := a.users.GetSheetRef(ctx, userID)
	switch {
	case errors.Is(err, store.ErrSheetRefNotFound):
		return models.SheetRef{}, ErrNoSheetSelected
	case err != nil:
		return models.SheetRef{}, fmt.Errorf("loading sheet selection: %w", err)
	}
	return ref, nil
}

func (a *accountService) Logout(ctx context.Context, userID int64) error {
	log := logger.FromContext(ctx)

	if err := a.vault.Revoke(ctx, userID); err != nil && !errors.Is(err, ErrNotAuthenticated) {
		return err
	}

	if err := a.users.DeleteSheetRef(ctx, userID); err != nil {
		log.Err(err).Str("func", "*accountService.Logout").Int64("user_id", userID).Msg("forgetting sheet selection failed")
		return fmt.Errorf("forgetting sheet selection: %w", err)
	}

	return nil
}
