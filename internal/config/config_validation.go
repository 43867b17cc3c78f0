// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Anton Avdeyev

package config

// validate checks that the final merged [StructuredConfig] satisfies all
// application invariants before it is used at startup.
//
// Returns nil if the configuration is valid, or a sentinel error naming the
// offending group otherwise.
func (cfg *StructuredConfig) validate() error {
	if cfg.App.TokenCipherKey == "" && (cfg.App.CipherPassphrase == "" || cfg.App.CipherSalt == "") {
		return ErrInvalidAppConfigs
	}

	if cfg.Telegram.BotToken == "" {
		return ErrInvalidTelegramConfigs
	}

	if cfg.OAuth.ClientID == "" || cfg.OAuth.ClientSecret == "" || cfg.OAuth.RedirectURL == "" {
		return ErrInvalidOAuthConfigs
	}

	if cfg.Storage.DB.DSN == "" {
		return ErrInvalidStorageConfigs
	}

	return nil
}
