// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Anton Avdeyev

// Package bot is the chat transport: it receives Telegram updates over long
// polling and translates them into service calls. It holds no business
// state of its own; every conversation lives in the session engine.
package bot

import (
	"context"
	"fmt"

	"github.com/avdeyev/sheetfin/internal/config"
	"github.com/avdeyev/sheetfin/internal/logger"
	"github.com/avdeyev/sheetfin/internal/service"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type Bot struct {
	api      botAPI
	services *service.Services

	logger *logger.Logger
}

// botAPI is the slice of tgbotapi.BotAPI the bot actually uses; tests
// substitute a recording fake.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// NewBot connects to the Telegram Bot API with the configured token.
func NewBot(cfg config.Telegram, services *service.Services, logger *logger.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("connecting to telegram: %w", err)
	}

	logger.Info().Str("bot", api.Self.UserName).Msg("telegram bot authorized")

	return newBotWithAPI(api, cfg, services, logger), nil
}

func newBotWithAPI(api botAPI, _ config.Telegram, services *service.Services, logger *logger.Logger) *Bot {
	return &Bot{
		api:      api,
		services: services,
		logger:   logger,
	}
}

// Run consumes updates until ctx is cancelled. Each update is handled
// synchronously; the session engine serializes per user anyway and ordering
// within one chat matters more than throughput here.
func (b *Bot) Run(ctx context.Context, pollTimeout int) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = pollTimeout

	updates := b.api.GetUpdatesChan(updateConfig)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.logger.Info().Msg("bot stopped receiving updates")
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.Message != nil && update.Message.IsCommand():
		b.handleCommand(ctx, update.Message)
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	}
}

// Notify pushes a message to a chat outside a request/response exchange,
// e.g. when the janitor abandons an inactive conversation.
func (b *Bot) Notify(chatID int64, text string) {
	b.reply(chatID, text)
}

// reply sends plain text to the chat.
func (b *Bot) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Err(err).Int64("chat_id", chatID).Msg("sending reply failed")
	}
}

// replyPrompt renders an engine prompt: plain text for free-form steps, an
// inline keyboard when the step offers options.
func (b *Bot) replyPrompt(chatID int64, prompt service.Prompt) {
	msg := tgbotapi.NewMessage(chatID, prompt.Text)
	if len(prompt.Options) > 0 {
		msg.ReplyMarkup = optionsKeyboard(prompt.Options)
	}
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Err(err).Int64("chat_id", chatID).Msg("sending prompt failed")
	}
}
