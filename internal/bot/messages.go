// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Anton Avdeyev

package bot

import (
	"context"
	"fmt"

	"github.com/avdeyev/sheetfin/internal/service"
	"github.com/avdeyev/sheetfin/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// handleMessage feeds free-form text (amounts, comments, typed category
// names) into the session engine.
func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	userID := message.From.ID
	chatID := message.Chat.ID
	log := b.logger.WithUser(userID)
	ctx = log.WithContext(ctx)

	prompt, err := b.services.Engine.Advance(ctx, userID, message.Text)
	if err != nil {
		b.replyError(ctx, chatID, err)
		return
	}

	b.replyRecorded(chatID, prompt)
}

// handleCallback feeds an inline-keyboard pick into the session engine and
// acknowledges the button press.
func (b *Bot) handleCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	userID := callback.From.ID
	log := b.logger.WithUser(userID)
	ctx = log.WithContext(ctx)

	// stop the client-side spinner regardless of the outcome
	if _, err := b.api.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
		log.Err(err).Msg("answering callback failed")
	}

	if callback.Message == nil {
		return
	}
	chatID := callback.Message.Chat.ID

	prompt, err := b.services.Engine.Advance(ctx, userID, callback.Data)
	if err != nil {
		b.replyError(ctx, chatID, err)
		return
	}

	b.replyRecorded(chatID, prompt)
}

// replyRecorded renders either the next step prompt or the recording
// confirmation when the conversation just completed.
func (b *Bot) replyRecorded(chatID int64, prompt service.Prompt) {
	if prompt.Recorded == nil {
		b.replyPrompt(chatID, prompt)
		return
	}

	b.reply(chatID, confirmationText(prompt.Recorded))
}

func confirmationText(tx *models.Transaction) string {
	place := tx.Category
	if tx.Subcategory != "" {
		place = fmt.Sprintf("%s / %s", tx.Category, tx.Subcategory)
	}

	text := fmt.Sprintf("Recorded: %s %s, %s", tx.Amount.StringFixed(2), tx.Kind, place)
	if tx.Comment != "" {
		text += fmt.Sprintf(" (%s)", tx.Comment)
	}
	return text
}
