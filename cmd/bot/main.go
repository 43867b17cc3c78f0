// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Anton Avdeyev

package main

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/avdeyev/sheetfin/internal/adapter"
	"github.com/avdeyev/sheetfin/internal/bot"
	"github.com/avdeyev/sheetfin/internal/config"
	"github.com/avdeyev/sheetfin/internal/crypto"
	httphandler "github.com/avdeyev/sheetfin/internal/handler/http"
	"github.com/avdeyev/sheetfin/internal/logger"
	"github.com/avdeyev/sheetfin/internal/server"
	"github.com/avdeyev/sheetfin/internal/service"
	"github.com/avdeyev/sheetfin/internal/store"
	"github.com/avdeyev/sheetfin/internal/workers"
	"github.com/joho/godotenv"
)

func main() {
	// a missing .env is fine outside local development
	_ = godotenv.Load()

	log := logger.NewLogger("bot")

	cfg, err := config.GetStructuredConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("loading configuration failed")
	}

	log.Info().Str("version", cfg.App.Version).Msg("starting sheetfin")

	ctx := context.Background()

	storages, err := store.NewStorages(ctx, cfg.Storage, log)
	if err != nil {
		log.Fatal().Err(err).Msg("connecting storage failed")
	}

	cipher, err := buildCipher(cfg.App)
	if err != nil {
		log.Fatal().Err(err).Msg("building token cipher failed")
	}

	provider := adapter.NewGoogleOAuth(cfg.OAuth, log)
	sheets := adapter.NewSheetsWriter(cfg.Sheets, log)

	services, err := service.NewServices(storages, provider, sheets, cipher, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("building services failed")
	}

	chatBot, err := bot.NewBot(cfg.Telegram, services, log)
	if err != nil {
		log.Fatal().Err(err).Msg("connecting to telegram failed")
	}

	janitors := workers.NewWorkers(
		workers.NewSessionJanitor(services.Engine, cfg.Workers, func(userID int64) {
			chatBot.Notify(userID, "Your unfinished recording was cancelled after inactivity. Start again with /add.")
		}, log),
		workers.NewAuthRequestJanitor(storages.AuthRequests, cfg.Workers, log),
	)

	callbackHandler := httphandler.NewHandler(services, func(userID int64) {
		chatBot.Notify(userID, "Google account connected. Pick a spreadsheet with /sheet, then record with /add.")
	}, log)

	srv, err := server.NewServer(callbackHandler.Init(), chatBot, janitors, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("building server failed")
	}

	srv.RunServer()
}

// buildCipher constructs the token cipher from the explicit base64 key when
// one is configured, or derives the key from the passphrase and salt.
func buildCipher(cfg config.App) (crypto.TokenCipher, error) {
	if cfg.TokenCipherKey != "" {
		return crypto.NewTokenCipherFromBase64(cfg.TokenCipherKey)
	}

	salt, err := base64.StdEncoding.DecodeString(cfg.CipherSalt)
	if err != nil {
		return nil, fmt.Errorf("decoding cipher salt: %w", err)
	}

	return crypto.NewTokenCipher(crypto.DeriveKey(cfg.CipherPassphrase, salt))
}
