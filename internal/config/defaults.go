package config

import "time"

// Google's OAuth 2.0 and Sheets endpoints. Overridable through configuration
// so tests and self-hosted mocks can point elsewhere.
const (
	defaultAuthURL      = "https://accounts.google.com/o/oauth2/v2/auth"
	defaultTokenURL     = "https://oauth2.googleapis.com/token"
	defaultRevokeURL    = "https://oauth2.googleapis.com/revoke"
	defaultSheetsAPIURL = "https://sheets.googleapis.com/v4"
)

// defaultConfig returns the lowest-priority configuration source. Every value
// here may be overridden by env, flags, or the JSON file.
func defaultConfig() *StructuredConfig {
	return &StructuredConfig{
		App: App{
			RefreshMargin: time.Minute,
		},
		Telegram: Telegram{
			PollTimeout: 30,
		},
		OAuth: OAuth{
			AuthURL:   defaultAuthURL,
			TokenURL:  defaultTokenURL,
			RevokeURL: defaultRevokeURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/spreadsheets",
				"https://www.googleapis.com/auth/drive.file",
			},
			RequestTimeout: 10 * time.Second,
			StateTTL:       15 * time.Minute,
		},
		Sheets: Sheets{
			APIBaseURL:     defaultSheetsAPIURL,
			RequestTimeout: 15 * time.Second,
			AppendRetries:  3,
		},
		Server: Server{
			HTTPAddress:    "0.0.0.0:8080",
			RequestTimeout: 30 * time.Second,
		},
		Workers: Workers{
			SessionTTL:    10 * time.Minute,
			SweepInterval: time.Minute,
		},
	}
}
