// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Anton Avdeyev

package models

import "time"

// TokenPayload is the delegated-access token material received from the
// identity provider. It exists in plaintext only inside process memory;
// at rest it is stored as an authenticated ciphertext blob inside a
// [CredentialRecord].
type TokenPayload struct {
	// AccessToken is the short-lived bearer token used on provider API calls.
	AccessToken string `json:"access_token"`

	// RefreshToken is the long-lived credential used to obtain new access
	// tokens. Absence means the payload cannot be refreshed.
	RefreshToken string `json:"refresh_token,omitempty"`

	// TokenURI is the provider token endpoint the payload was issued by.
	TokenURI string `json:"token_uri,omitempty"`

	// Scopes is the list of granted OAuth scopes.
	Scopes []string `json:"scopes,omitempty"`

	// Expiry is the access-token expiration instant reported by the provider.
	Expiry time.Time `json:"expiry"`
}

// Valid reports whether the payload carries the fields required to be usable:
// a non-empty access token and a known expiry. A decrypted record that fails
// this check is treated as corrupt and purged.
func (p TokenPayload) Valid() bool {
	return p.AccessToken != "" && !p.Expiry.IsZero()
}

// ExpiresWithin reports whether the access token is already expired or will
// expire within margin of now.
func (p TokenPayload) ExpiresWithin(now time.Time, margin time.Duration) bool {
	return !p.Expiry.After(now.Add(margin))
}

// CredentialRecord is the at-rest form of one user's provider credentials.
// Ciphertext is opaque to every component except the token cipher; Expiry is
// kept in the clear so staleness can be queried without decrypting.
type CredentialRecord struct {
	// UserID is the owning Telegram user identifier.
	UserID int64 `json:"user_id"`

	// Ciphertext is the authenticated encryption blob of the serialized
	// [TokenPayload] (nonce followed by ciphertext).
	Ciphertext []byte `json:"-"`

	// Expiry mirrors the access-token expiry of the encrypted payload.
	Expiry time.Time `json:"expiry"`

	// CreatedAt is the timestamp of the first successful authorization.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is the timestamp of the last store or refresh.
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the name of the database table
// associated with the CredentialRecord model.
func (c CredentialRecord) TableName() string {
	return "credentials"
}

// AuthRequest is one in-flight authorization attempt. The correlation token
// is single-use: it is consumable exactly once, and starting a new attempt
// for the same user invalidates any prior pending request.
type AuthRequest struct {
	// Token is the opaque correlation token carried through the provider
	// consent flow as the OAuth state parameter.
	Token string `json:"-"`

	// UserID is the user who initiated the authorization attempt.
	UserID int64 `json:"user_id"`

	// Consumed marks a request whose token has already been redeemed.
	Consumed bool `json:"consumed"`

	// CreatedAt is the attempt creation instant.
	CreatedAt time.Time `json:"created_at"`

	// ExpiresAt bounds how long the user may take on the consent screen.
	ExpiresAt time.Time `json:"expires_at"`
}

// TableName returns the name of the database table
// associated with the AuthRequest model.
func (a AuthRequest) TableName() string {
	return "auth_requests"
}

// Pending reports whether the request can still be consumed at instant now.
func (a AuthRequest) Pending(now time.Time) bool {
	return !a.Consumed && now.Before(a.ExpiresAt)
}
