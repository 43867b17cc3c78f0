package crypto

// TokenCipher performs authenticated encryption of credential payloads under
// a single process-wide key. It knows nothing about users, storage, or the
// identity provider; its only job is to make stored tokens unreadable and
// tamper-evident.
//
// Any modification of a blob produced by Encrypt, down to a single flipped
// bit, must make Decrypt fail; a decryption error therefore always means
// "wrong key or corrupted record", never "slightly wrong plaintext".
type TokenCipher interface {
	// Encrypt seals plaintext and returns an opaque blob (nonce followed by
	// ciphertext with the authentication tag).
	Encrypt(plaintext []byte) ([]byte, error)

	// Decrypt opens a blob produced by Encrypt. Returns ErrDecryptFailed
	// if the key is wrong or the blob was tampered with.
	Decrypt(blob []byte) ([]byte, error)
}
