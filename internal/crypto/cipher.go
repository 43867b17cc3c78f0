// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Anton Avdeyev

package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
)

// ErrDecryptFailed is returned by [TokenCipher.Decrypt] when the blob cannot
// be authenticated: wrong key, truncated blob, or any bit of the ciphertext
// altered since Encrypt.
var ErrDecryptFailed = errors.New("token decryption failed")

const keyLen = 32 // AES-256

// tokenCipher is the private implementation of [TokenCipher] built on
// AES-256-GCM. The key is read-only after construction, so the value is safe
// for concurrent use.
type tokenCipher struct {
	aead cipher.AEAD
}

// NewTokenCipher constructs a [TokenCipher] from a raw 256-bit key.
func NewTokenCipher(key []byte) (TokenCipher, error) {
	if len(key) != keyLen {
		return nil, fmt.Errorf("cipher key must be %d bytes, got %d", keyLen, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create gcm: %w", err)
	}

	return &tokenCipher{aead: gcm}, nil
}

// NewTokenCipherFromBase64 constructs a [TokenCipher] from a base64
// (standard encoding) key value, the form the key takes in configuration.
func NewTokenCipherFromBase64(encoded string) (TokenCipher, error) {
	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode cipher key: %w", err)
	}
	return NewTokenCipher(key)
}

// DeriveKey derives a 256-bit cipher key from a passphrase and salt using
// Argon2id with the parameters recommended by OWASP (2024):
//   - time cost:   1 iteration
//   - memory cost: 64 MiB
//   - parallelism: 4 threads
//
// Used when the deployment configures a passphrase instead of a raw key.
func DeriveKey(passphrase string, salt []byte) []byte {
	return argon2.IDKey([]byte(passphrase), salt, 1, 64*1024, 4, keyLen)
}

// Encrypt implements [TokenCipher]. A random 12-byte nonce is prepended to
// the ciphertext so that the decryption side can locate it:
// blob = nonce ‖ ciphertext. Returns an error if the random nonce read fails.
func (c *tokenCipher) Encrypt(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	// Prepend the nonce so Decrypt can split it out.
	ciphertext := c.aead.Seal(nil, nonce, plaintext, nil)
	return append(nonce, ciphertext...), nil
}

// Decrypt implements [TokenCipher]. It splits the blob into nonce and
// ciphertext and verifies the authentication tag. The blob must be at least
// as long as the GCM nonce (12 bytes).
func (c *tokenCipher) Decrypt(blob []byte) ([]byte, error) {
	nonceSize := c.aead.NonceSize()
	if len(blob) < nonceSize {
		return nil, fmt.Errorf("%w: ciphertext too short", ErrDecryptFailed)
	}

	nonce, ciphertext := blob[:nonceSize], blob[nonceSize:]

	plaintext, err := c.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		// Auth-tag mismatch. The record is either encrypted under a
		// different key or corrupted; either way it is unusable.
		return nil, fmt.Errorf("%w: %s", ErrDecryptFailed, err)
	}

	return plaintext, nil
}
