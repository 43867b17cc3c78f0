package config

import (
	"flag"
	"time"
)

// ParseFlags parses all configuration flags.
//
// Flags:
//
//	-a server address in format [host]:[port]
//	-d database DSN
//	-c/-config json file path with configs
//	-bot-token telegram bot API token
//	-redirect-url public OAuth callback URL
//	-cipher-key base64 token cipher key
//	-session-ttl conversation inactivity window (e.g., "10m")
//	-state-ttl authorization request lifetime (e.g., "15m")
func ParseFlags() *StructuredConfig {
	var serverAddress string
	var databaseDSN string
	var jsonConfigPath string
	var botToken string
	var redirectURL string
	var cipherKey string
	var sessionTTL time.Duration
	var stateTTL time.Duration

	flag.StringVar(&serverAddress, "a", "", "HTTP server address host:port")
	flag.StringVar(&databaseDSN, "d", "", "Database DSN")
	flag.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	flag.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")
	flag.StringVar(&botToken, "bot-token", "", "Telegram bot API token")
	flag.StringVar(&redirectURL, "redirect-url", "", "Public OAuth callback URL")
	flag.StringVar(&cipherKey, "cipher-key", "", "Base64 token cipher key")
	flag.DurationVar(&sessionTTL, "session-ttl", 0, "Conversation inactivity window (e.g., 10m)")
	flag.DurationVar(&stateTTL, "state-ttl", 0, "Authorization request lifetime (e.g., 15m)")

	flag.Parse()

	return &StructuredConfig{
		App: App{
			TokenCipherKey: cipherKey,
		},
		Telegram: Telegram{
			BotToken: botToken,
		},
		OAuth: OAuth{
			RedirectURL: redirectURL,
			StateTTL:    stateTTL,
		},
		Storage: Storage{
			DB: DB{DSN: databaseDSN},
		},
		Server: Server{
			HTTPAddress: serverAddress,
		},
		Workers: Workers{
			SessionTTL: sessionTTL,
		},
		JSONFilePath: jsonConfigPath,
	}
}
