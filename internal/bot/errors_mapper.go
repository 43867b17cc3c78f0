// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Anton Avdeyev

package bot

import (
	"context"
	"errors"

	"github.com/avdeyev/sheetfin/internal/adapter"
	"github.com/avdeyev/sheetfin/internal/logger"
	"github.com/avdeyev/sheetfin/internal/service"
)

// replyError translates a service error into the message the user sees.
// Unexpected errors are logged in full; the user gets a generic apology.
func (b *Bot) replyError(ctx context.Context, chatID int64, err error) {
	log := logger.FromContext(ctx)

	var text string
	switch {
	case errors.Is(err, service.ErrNotAuthenticated), errors.Is(err, service.ErrCorruptCredential):
		text = "I can't access your Google account. Connect it with /auth."
	case errors.Is(err, service.ErrNoSheetSelected):
		text = "No spreadsheet selected. Pick one with /sheet <link or id>."
	case errors.Is(err, service.ErrSessionInProgress):
		text = "You're already recording a transaction. Finish it or /cancel first."
	case errors.Is(err, service.ErrNoActiveSession):
		text = "Nothing in progress. Start with /add."
	case errors.Is(err, service.ErrUnknownOption):
		text = "Please pick one of the offered options."
	case errors.Is(err, service.ErrNoIncomeCategories):
		text = "You have no income categories. Add some with /categories_import first."
	case errors.Is(err, service.ErrUnknownCategory):
		text = "That category isn't in your list. Pick one of the buttons or check /categories."
	case errors.Is(err, service.ErrInvalidAmount):
		text = "That doesn't look like an amount. Send a positive number like 12.50."
	case errors.Is(err, service.ErrMalformedCategorySet):
		text = "I couldn't accept that category set: " + err.Error()
	case errors.Is(err, service.ErrRecordingFailed):
		text = "I couldn't write to your spreadsheet. Your entry is saved; /retry when the sheet is reachable, or /cancel."
	case errors.Is(err, adapter.ErrSpreadsheetNotFound):
		text = "I can't see that spreadsheet. Check the link and that your Google account has access to it."
	case errors.Is(err, service.ErrTemporarilyUnavailable), errors.Is(err, adapter.ErrProviderUnavailable):
		text = "Google is not answering right now. Please try again in a minute."
	default:
		log.Err(err).Int64("chat_id", chatID).Msg("unexpected error reached the chat transport")
		text = "Something went wrong on my side. Please try again."
	}

	b.reply(chatID, text)
}
