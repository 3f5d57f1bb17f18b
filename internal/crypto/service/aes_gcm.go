package service

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
)

// AESGCMCipher implements the AEAD interface using AES-256-GCM.
//
// AES-GCM combines AES encryption with GMAC authentication. This
// implementation uses a 256-bit key, a 12-byte nonce generated randomly per
// encryption, and a 16-byte authentication tag appended to the ciphertext.
//
// The cipher instance is stateless and safe for concurrent use from multiple
// goroutines; each encryption generates its nonce independently.
type AESGCMCipher struct {
	aead cipher.AEAD
}

// NewAESGCM creates a new AES-256-GCM cipher instance.
//
// The key must be exactly 32 bytes and should come from crypto/rand.
func NewAESGCM(key []byte) (*AESGCMCipher, error) {
	if len(key) != 32 {
		return nil, errors.New("key must be exactly 32 bytes")
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &AESGCMCipher{aead: aead}, nil
}

// Encrypt encrypts plaintext with optional additional authenticated data.
//
// The AAD is authenticated but not encrypted, binding the ciphertext to
// context such as a conversation id without hiding it. Pass nil when no
// context needs authenticating. A unique 12-byte nonce is generated from
// crypto/rand per call and must be stored alongside the ciphertext; with GCM
// a nonce must never repeat under the same key.
func (a *AESGCMCipher) Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error) {
	nonce = make([]byte, a.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	ciphertext = a.aead.Seal(nil, nonce, plaintext, aad)
	return ciphertext, nonce, nil
}

// Decrypt decrypts ciphertext with the provided nonce and AAD.
//
// The tag is verified before any plaintext is returned; a mismatched AAD,
// modified ciphertext, or wrong key all fail verification.
func (a *AESGCMCipher) Decrypt(ciphertext, nonce, aad []byte) ([]byte, error) {
	plaintext, err := a.aead.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt: %w", err)
	}
	return plaintext, nil
}
