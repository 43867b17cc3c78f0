package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Duration wraps time.Duration so JSON config files can use human-readable
// values like "30s" or "10m".
type Duration time.Duration

// UnmarshalJSON parses either a duration string ("1h30m") or a bare number
// of nanoseconds.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("error parsing duration %q: %w", value, err)
		}
		*d = Duration(parsed)
		return nil
	default:
		return fmt.Errorf("invalid duration value: %s", string(data))
	}
}

// StructuredJSONConfig mirrors [StructuredConfig] with JSON tags and
// [Duration] fields so an operator-facing config file stays readable.
type StructuredJSONConfig struct {
	App struct {
		TokenCipherKey   string   `json:"token_cipher_key"`
		CipherPassphrase string   `json:"cipher_passphrase"`
		CipherSalt       string   `json:"cipher_salt"`
		RefreshMargin    Duration `json:"refresh_margin"`
		Version          string   `json:"version"`
	} `json:"app,omitempty"`

	Telegram struct {
		BotToken    string `json:"bot_token"`
		PollTimeout int    `json:"poll_timeout"`
	} `json:"telegram,omitempty"`

	OAuth struct {
		ClientID       string   `json:"client_id"`
		ClientSecret   string   `json:"client_secret"`
		AuthURL        string   `json:"auth_url"`
		TokenURL       string   `json:"token_url"`
		RevokeURL      string   `json:"revoke_url"`
		RedirectURL    string   `json:"redirect_url"`
		Scopes         []string `json:"scopes"`
		RequestTimeout Duration `json:"request_timeout"`
		StateTTL       Duration `json:"state_ttl"`
	} `json:"oauth,omitempty"`

	Sheets struct {
		APIBaseURL     string   `json:"api_base_url"`
		RequestTimeout Duration `json:"request_timeout"`
		AppendRetries  int      `json:"append_retries"`
	} `json:"sheets,omitempty"`

	Storage struct {
		DB struct {
			DSN string `json:"dsn"`
		} `json:"db,omitempty"`
	} `json:"storage,omitempty"`

	Server struct {
		HTTPAddress    string   `json:"http_address"`
		RequestTimeout Duration `json:"request_timeout"`
	} `json:"server,omitempty"`

	Workers struct {
		SessionTTL    Duration `json:"session_ttl"`
		SweepInterval Duration `json:"sweep_interval"`
	} `json:"workers,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &StructuredConfig{
		App: App{
			TokenCipherKey:   jsonCfg.App.TokenCipherKey,
			CipherPassphrase: jsonCfg.App.CipherPassphrase,
			CipherSalt:       jsonCfg.App.CipherSalt,
			RefreshMargin:    time.Duration(jsonCfg.App.RefreshMargin),
			Version:          jsonCfg.App.Version,
		},
		Telegram: Telegram{
			BotToken:    jsonCfg.Telegram.BotToken,
			PollTimeout: jsonCfg.Telegram.PollTimeout,
		},
		OAuth: OAuth{
			ClientID:       jsonCfg.OAuth.ClientID,
			ClientSecret:   jsonCfg.OAuth.ClientSecret,
			AuthURL:        jsonCfg.OAuth.AuthURL,
			TokenURL:       jsonCfg.OAuth.TokenURL,
			RevokeURL:      jsonCfg.OAuth.RevokeURL,
			RedirectURL:    jsonCfg.OAuth.RedirectURL,
			Scopes:         jsonCfg.OAuth.Scopes,
			RequestTimeout: time.Duration(jsonCfg.OAuth.RequestTimeout),
			StateTTL:       time.Duration(jsonCfg.OAuth.StateTTL),
		},
		Sheets: Sheets{
			APIBaseURL:     jsonCfg.Sheets.APIBaseURL,
			RequestTimeout: time.Duration(jsonCfg.Sheets.RequestTimeout),
			AppendRetries:  jsonCfg.Sheets.AppendRetries,
		},
		Storage: Storage{
			DB: DB{DSN: jsonCfg.Storage.DB.DSN},
		},
		Server: Server{
			HTTPAddress:    jsonCfg.Server.HTTPAddress,
			RequestTimeout: time.Duration(jsonCfg.Server.RequestTimeout),
		},
		Workers: Workers{
			SessionTTL:    time.Duration(jsonCfg.Workers.SessionTTL),
			SweepInterval: time.Duration(jsonCfg.Workers.SweepInterval),
		},
	}

	return cfg, nil
}
