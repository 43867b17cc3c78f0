// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Anton Avdeyev

package bot

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/avdeyev/sheetfin/internal/service"
	"github.com/avdeyev/sheetfin/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const helpText = `I record your expenses and income to your own Google spreadsheet.

/auth - connect your Google account
/sheet <id or link> - choose the spreadsheet to write to
/add - record a transaction
/retry - retry a failed recording
/cancel - abandon the current recording
/categories - show your categories
/categories_export - get your categories as a YAML file
/categories_import - replace categories with a YAML document
/categories_reset - go back to the default categories
/logout - disconnect and forget your tokens`

// spreadsheetURLPattern extracts the spreadsheet id from a pasted sheet URL.
var spreadsheetURLPattern = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9_-]+)`)

func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	userID := message.From.ID
	chatID := message.Chat.ID
	log := b.logger.WithUser(userID)
	ctx = log.WithContext(ctx)

	log.Debug().Str("command", message.Command()).Msg("command received")

	switch message.Command() {
	case "start":
		b.handleStart(ctx, message)
	case "help":
		b.reply(chatID, helpText)
	case "auth":
		b.handleAuth(ctx, userID, chatID)
	case "logout":
		b.handleLogout(ctx, userID, chatID)
	case "sheet":
		b.handleSheet(ctx, userID, chatID, message.CommandArguments())
	case "add":
		b.handleAdd(ctx, userID, chatID)
	case "retry":
		b.handleRetry(ctx, userID, chatID)
	case "cancel":
		b.handleCancel(ctx, userID, chatID)
	case "categories":
		b.handleCategories(ctx, userID, chatID)
	case "categories_export":
		b.handleCategoriesExport(ctx, userID, chatID)
	case "categories_import":
		b.handleCategoriesImport(ctx, userID, chatID, message.CommandArguments())
	case "categories_reset":
		b.handleCategoriesReset(ctx, userID, chatID)
	default:
		b.reply(chatID, "I don't know that command. Try /help.")
	}
}

func (b *Bot) handleStart(ctx context.Context, message *tgbotapi.Message) {
	user := models.User{
		UserID:    message.From.ID,
		Username:  message.From.UserName,
		FirstName: message.From.FirstName,
		LastName:  message.From.LastName,
	}

	if err := b.services.Account.RegisterUser(ctx, user); err != nil {
		b.replyError(ctx, message.Chat.ID, err)
		return
	}

	b.reply(message.Chat.ID, "Hi! I record your finances to your own Google spreadsheet.\n\nStart with /auth to connect your Google account, then pick a sheet with /sheet. Full command list: /help.")
}

func (b *Bot) handleAuth(ctx context.Context, userID, chatID int64) {
	authURL, err := b.services.Correlator.Begin(ctx, userID)
	if err != nil {
		b.replyError(ctx, chatID, err)
		return
	}

	b.reply(chatID, fmt.Sprintf("Open this link and grant access to your spreadsheets:\n\n%s\n\nThe link is personal and works once.", authURL))
}

func (b *Bot) handleLogout(ctx context.Context, userID, chatID int64) {
	if err := b.services.Account.Logout(ctx, userID); err != nil {
		b.replyError(ctx, chatID, err)
		return
	}

	b.reply(chatID, "Disconnected. Your tokens are deleted; your spreadsheet and its data stay yours.")
}

func (b *Bot) handleSheet(ctx context.Context, userID, chatID int64, args string) {
	args = strings.TrimSpace(args)
	if args == "" {
		ref, err := b.services.Account.ActiveSheet(ctx, userID)
		if errors.Is(err, service.ErrNoSheetSelected) {
			b.reply(chatID, "No spreadsheet selected yet. Send /sheet followed by the spreadsheet link or id.")
			return
		}
		if err != nil {
			b.replyError(ctx, chatID, err)
			return
		}
		b.reply(chatID, fmt.Sprintf("Recording to %q (%s).", ref.Title, ref.SpreadsheetID))
		return
	}

	ref, err := b.services.Account.SelectSheet(ctx, userID, extractSpreadsheetID(args))
	if err != nil {
		b.replyError(ctx, chatID, err)
		return
	}

	b.reply(chatID, fmt.Sprintf("Got it. New transactions go to %q.", ref.Title))
}

func (b *Bot) handleAdd(ctx context.Context, userID, chatID int64) {
	prompt, err := b.services.Engine.Begin(ctx, userID)
	if err != nil {
		b.replyError(ctx, chatID, err)
		return
	}

	b.replyPrompt(chatID, prompt)
}

func (b *Bot) handleRetry(ctx context.Context, userID, chatID int64) {
	prompt, err := b.services.Engine.Retry(ctx, userID)
	if err != nil {
		b.replyError(ctx, chatID, err)
		return
	}

	b.replyRecorded(chatID, prompt)
}

func (b *Bot) handleCancel(ctx context.Context, userID, chatID int64) {
	if err := b.services.Engine.Cancel(ctx, userID); err != nil {
		b.replyError(ctx, chatID, err)
		return
	}

	b.reply(chatID, "Cancelled. Nothing was recorded.")
}

func (b *Bot) handleCategories(ctx context.Context, userID, chatID int64) {
	set, err := b.services.Resolver.Resolve(ctx, userID)
	if err != nil {
		b.replyError(ctx, chatID, err)
		return
	}

	b.reply(chatID, renderCategories(set))
}

func (b *Bot) handleCategoriesExport(ctx context.Context, userID, chatID int64) {
	log := b.logger.WithUser(userID)

	set, err := b.services.Resolver.Resolve(ctx, userID)
	if err != nil {
		b.replyError(ctx, chatID, err)
		return
	}

	data, err := service.EncodeCategories(set)
	if err != nil {
		b.replyError(ctx, chatID, err)
		return
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  "categories.yaml",
		Bytes: data,
	})
	doc.Caption = "Edit this file and send it back with /categories_import."
	if _, err := b.api.Send(doc); err != nil {
		log.Err(err).Msg("sending categories export failed")
	}
}

func (b *Bot) handleCategoriesImport(ctx context.Context, userID, chatID int64, args string) {
	if strings.TrimSpace(args) == "" {
		b.reply(chatID, "Paste the YAML document right after the command:\n\n/categories_import\nexpense:\n  - name: Food\n    subcategories: [Groceries]\nincome:\n  - Salary")
		return
	}

	set, err := service.DecodeCategories([]byte(args))
	if err != nil {
		b.replyError(ctx, chatID, err)
		return
	}

	if err := b.services.Resolver.Replace(ctx, userID, set); err != nil {
		b.replyError(ctx, chatID, err)
		return
	}

	b.reply(chatID, "Categories replaced.")
}

func (b *Bot) handleCategoriesReset(ctx context.Context, userID, chatID int64) {
	if err := b.services.Resolver.Reset(ctx, userID); err != nil {
		b.replyError(ctx, chatID, err)
		return
	}

	b.reply(chatID, "Back to the default categories.")
}

// extractSpreadsheetID accepts either a bare spreadsheet id or a full sheet
// URL and returns the id.
func extractSpreadsheetID(input string) string {
	if m := spreadsheetURLPattern.FindStringSubmatch(input); m != nil {
		return m[1]
	}
	return input
}

func renderCategories(set models.CategorySet) string {
	var sb strings.Builder

	sb.WriteString("Expense categories:\n")
	for _, group := range set.Expense {
		sb.WriteString("• ")
		sb.WriteString(group.Name)
		if len(group.Subcategories) > 0 {
			sb.WriteString(": ")
			sb.WriteString(strings.Join(group.Subcategories, ", "))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("\nIncome categories:\n")
	for _, name := range set.Income {
		sb.WriteString("• ")
		sb.WriteString(name)
		sb.WriteString("\n")
	}

	return sb.String()
}
