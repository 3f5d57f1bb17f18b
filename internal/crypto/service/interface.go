// Package service provides the cryptographic services behind conversation
// envelope encryption: AEAD ciphers (AES-256-GCM, ChaCha20-Poly1305) and the
// key wrapper that protects per-conversation keys under the master key.
package service

import (
	cryptoDomain "github.com/linguachat/encryption/internal/crypto/domain"
)

// AEAD defines the interface for Authenticated Encryption with Associated Data.
type AEAD interface {
	// Encrypt encrypts plaintext with optional AAD and returns ciphertext
	// (with the authentication tag appended) and the freshly generated nonce.
	Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error)

	// Decrypt decrypts ciphertext using the provided nonce and AAD.
	Decrypt(ciphertext, nonce, aad []byte) ([]byte, error)
}

// AEADManager defines the interface for creating AEAD cipher instances.
type AEADManager interface {
	// CreateCipher creates an AEAD cipher instance for the specified algorithm.
	CreateCipher(key []byte, alg cryptoDomain.Algorithm) (AEAD, error)
}

// WrappedKeyMaterial is the storable output of a wrap operation: the
// encrypted key with its IV and authentication tag held separately, matching
// the persisted record layout.
type WrappedKeyMaterial struct {
	WrappedKey []byte // Encrypted key material, tag stripped
	Nonce      []byte // 12-byte IV
	AuthTag    []byte // 16-byte tag
}

// KeyWrapper wraps and unwraps per-conversation content keys under the
// process master key.
type KeyWrapper interface {
	// GenerateKey returns a fresh random 32-byte content key.
	GenerateKey() ([]byte, error)

	// Wrap encrypts a 32-byte content key under the master key.
	Wrap(plainKey []byte) (WrappedKeyMaterial, error)

	// Unwrap authenticated-decrypts wrapped key material back to the
	// plaintext content key. A tag verification failure returns
	// domain.ErrKeyUnwrapFailed and must abort the calling operation.
	Unwrap(material WrappedKeyMaterial) ([]byte, error)

	// Algorithm reports the AEAD the wrapper uses.
	Algorithm() cryptoDomain.Algorithm
}
