// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Anton Avdeyev

package adapter

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/avdeyev/sheetfin/internal/config"
	"github.com/avdeyev/sheetfin/internal/logger"
	"github.com/avdeyev/sheetfin/models"
	"github.com/go-resty/resty/v2"
)

// tokenResponse is the provider's token-endpoint answer for both the
// code-exchange and the refresh grant.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	Scope        string `json:"scope"`
	TokenType    string `json:"token_type"`
}

// tokenError is the provider's OAuth 2.0 error body (RFC 6749 §5.2).
type tokenError struct {
	Error       string `json:"error"`
	Description string `json:"error_description"`
}

// googleOAuth implements [IdentityProvider] against Google's OAuth 2.0
// endpoints. The endpoints come from configuration so tests can point the
// adapter at an httptest server.
type googleOAuth struct {
	client *resty.Client
	cfg    config.OAuth
	logger *logger.Logger
}

// NewGoogleOAuth constructs an [IdentityProvider] from the OAuth
// configuration. The underlying HTTP client carries the configured request
// timeout, so no provider call can block indefinitely.
func NewGoogleOAuth(cfg config.OAuth, log *logger.Logger) IdentityProvider {
	client := resty.New().
		SetTimeout(cfg.RequestTimeout).
		SetHeader("Accept", "application/json")

	return &googleOAuth{
		client: client,
		cfg:    cfg,
		logger: log,
	}
}

// AuthCodeURL implements [IdentityProvider]. The offline access type and the
// forced consent prompt guarantee that the exchange yields a refresh token.
func (g *googleOAuth) AuthCodeURL(state string) string {
	q := url.Values{}
	q.Set("client_id", g.cfg.ClientID)
	q.Set("redirect_uri", g.cfg.RedirectURL)
	q.Set("response_type", "code")
	q.Set("scope", strings.Join(g.cfg.Scopes, " "))
	q.Set("access_type", "offline")
	q.Set("include_granted_scopes", "true")
	q.Set("prompt", "consent")
	q.Set("state", state)

	return g.cfg.AuthURL + "?" + q.Encode()
}

// Exchange implements [IdentityProvider].
func (g *googleOAuth) Exchange(ctx context.Context, code string) (models.TokenPayload, error) {
	log := logger.FromContext(ctx)

	form := map[string]string{
		"grant_type":    "authorization_code",
		"code":          code,
		"client_id":     g.cfg.ClientID,
		"client_secret": g.cfg.ClientSecret,
		"redirect_uri":  g.cfg.RedirectURL,
	}

	payload, err := g.postTokenForm(ctx, form)
	if err != nil {
		log.Err(err).Str("func", "*googleOAuth.Exchange").Msg("code exchange failed")
		return models.TokenPayload{}, err
	}

	return payload, nil
}

// Refresh implements [IdentityProvider]. Google usually omits the refresh
// token from refresh responses; the original one is carried over in that
// case so the payload stays refreshable.
func (g *googleOAuth) Refresh(ctx context.Context, payload models.TokenPayload) (models.TokenPayload, error) {
	log := logger.FromContext(ctx)

	if payload.RefreshToken == "" {
		return models.TokenPayload{}, fmt.Errorf("%w: payload has no refresh token", ErrCredentialRejected)
	}

	form := map[string]string{
		"grant_type":    "refresh_token",
		"refresh_token": payload.RefreshToken,
		"client_id":     g.cfg.ClientID,
		"client_secret": g.cfg.ClientSecret,
	}

	refreshed, err := g.postTokenForm(ctx, form)
	if err != nil {
		log.Err(err).Str("func", "*googleOAuth.Refresh").Msg("token refresh failed")
		return models.TokenPayload{}, err
	}

	if refreshed.RefreshToken == "" {
		refreshed.RefreshToken = payload.RefreshToken
	}

	return refreshed, nil
}

// Revoke implements [IdentityProvider]. The refresh token is preferred since
// revoking it invalidates the whole grant, access tokens included.
func (g *googleOAuth) Revoke(ctx context.Context, payload models.TokenPayload) error {
	log := logger.FromContext(ctx)

	token := payload.RefreshToken
	if token == "" {
		token = payload.AccessToken
	}
	if token == "" {
		return fmt.Errorf("%w: nothing to revoke", ErrCredentialRejected)
	}

	resp, err := g.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/x-www-form-urlencoded").
		SetQueryParam("token", token).
		Post(g.cfg.RevokeURL)
	if err != nil {
		log.Err(err).Str("func", "*googleOAuth.Revoke").Msg("revocation request failed")
		return fmt.Errorf("%w: %s", ErrProviderUnavailable, err)
	}

	if resp.StatusCode() >= 500 {
		return fmt.Errorf("%w: revoke status %d", ErrProviderUnavailable, resp.StatusCode())
	}
	if resp.IsError() {
		// 4xx on revoke means the token is already dead; treat as done.
		log.Warn().Int("status", resp.StatusCode()).Msg("revoke returned client error, token considered revoked")
	}

	return nil
}

// postTokenForm performs one token-endpoint call and maps the outcome to the
// adapter error taxonomy.
func (g *googleOAuth) postTokenForm(ctx context.Context, form map[string]string) (models.TokenPayload, error) {
	var ok tokenResponse
	var bad tokenError

	resp, err := g.client.R().
		SetContext(ctx).
		SetFormData(form).
		SetResult(&ok).
		SetError(&bad).
		Post(g.cfg.TokenURL)
	if err != nil {
		return models.TokenPayload{}, fmt.Errorf("%w: %s", ErrProviderUnavailable, err)
	}

	switch {
	case resp.IsSuccess():
		return models.TokenPayload{
			AccessToken:  ok.AccessToken,
			RefreshToken: ok.RefreshToken,
			TokenURI:     g.cfg.TokenURL,
			Scopes:       strings.Fields(ok.Scope),
			Expiry:       time.Now().Add(time.Duration(ok.ExpiresIn) * time.Second),
		}, nil
	case resp.StatusCode() >= 500:
		return models.TokenPayload{}, fmt.Errorf("%w: token endpoint status %d", ErrProviderUnavailable, resp.StatusCode())
	default:
		return models.TokenPayload{}, fmt.Errorf("%w: %s (%s)", ErrCredentialRejected, bad.Error, bad.Description)
	}
}
