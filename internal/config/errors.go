package config

import "errors"

// Validation errors returned by [StructuredConfig.validate] when required
// configuration groups are incomplete or invalid.
var (
	// ErrInvalidAppConfigs indicates that no usable cipher key material is
	// configured (neither an explicit key nor a passphrase+salt pair).
	ErrInvalidAppConfigs = errors.New("invalid app configuration")
	// ErrInvalidTelegramConfigs indicates a missing bot token.
	ErrInvalidTelegramConfigs = errors.New("invalid telegram configuration")
	// ErrInvalidOAuthConfigs indicates incomplete provider settings
	// (for example, missing client credentials or redirect URL).
	ErrInvalidOAuthConfigs = errors.New("invalid oauth configuration")
	// ErrInvalidStorageConfigs indicates invalid storage settings
	// (for example, an empty DSN).
	ErrInvalidStorageConfigs = errors.New("invalid storage configuration")
)
