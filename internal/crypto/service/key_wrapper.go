package service

import (
	"crypto/rand"
	"fmt"

	cryptoDomain "github.com/linguachat/encryption/internal/crypto/domain"
	"github.com/linguachat/encryption/internal/guard"
)

// KeyWrapperService implements KeyWrapper. It is the only component that
// holds the master key: conversation keys exist in plaintext only between an
// Unwrap and the AEAD operation that consumes them.
//
// The master key is injected at construction and immutable afterwards, so
// concurrent wrap/unwrap calls need no synchronization.
type KeyWrapperService struct {
	masterKey   *cryptoDomain.MasterKey
	aeadManager AEADManager
	algorithm   cryptoDomain.Algorithm
}

// NewKeyWrapper creates a KeyWrapperService wrapping keys under masterKey
// with the given AEAD algorithm.
func NewKeyWrapper(
	masterKey *cryptoDomain.MasterKey,
	aeadManager AEADManager,
	alg cryptoDomain.Algorithm,
) (*KeyWrapperService, error) {
	if masterKey == nil || len(masterKey.Key) != guard.KeySize {
		return nil, cryptoDomain.ErrInvalidKeySize
	}

	// Fail on unsupported algorithms at construction, not first use.
	if _, err := aeadManager.CreateCipher(masterKey.Key, alg); err != nil {
		return nil, err
	}

	return &KeyWrapperService{
		masterKey:   masterKey,
		aeadManager: aeadManager,
		algorithm:   alg,
	}, nil
}

// Algorithm reports the AEAD the wrapper uses for wrap and unwrap.
func (kw *KeyWrapperService) Algorithm() cryptoDomain.Algorithm {
	return kw.algorithm
}

// GenerateKey returns a fresh random 32-byte content key from crypto/rand.
func (kw *KeyWrapperService) GenerateKey() ([]byte, error) {
	key := make([]byte, guard.KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate content key: %w", err)
	}
	return key, nil
}

// Wrap encrypts a 32-byte content key under the master key with a fresh
// 12-byte IV. The AEAD seal output carries the tag appended to the
// ciphertext; Wrap splits it off so the persisted record stores ciphertext,
// IV, and tag as separate columns.
func (kw *KeyWrapperService) Wrap(plainKey []byte) (WrappedKeyMaterial, error) {
	if err := guard.KeyBuffer(plainKey, guard.KeySize, "content key"); err != nil {
		return WrappedKeyMaterial{}, err
	}

	aead, err := kw.aeadManager.CreateCipher(kw.masterKey.Key, kw.algorithm)
	if err != nil {
		return WrappedKeyMaterial{}, err
	}

	sealed, nonce, err := aead.Encrypt(plainKey, nil)
	if err != nil {
		return WrappedKeyMaterial{}, fmt.Errorf("failed to wrap content key: %w", err)
	}

	tagStart := len(sealed) - guard.TagSize
	return WrappedKeyMaterial{
		WrappedKey: sealed[:tagStart],
		Nonce:      nonce,
		AuthTag:    sealed[tagStart:],
	}, nil
}

// Unwrap authenticated-decrypts wrapped key material back to the plaintext
// content key.
//
// A tag verification failure means the stored record was corrupted or
// tampered with. It surfaces as ErrKeyUnwrapFailed and aborts the calling
// operation; it must never be treated as a soft validation failure or
// recovered with a different key.
func (kw *KeyWrapperService) Unwrap(material WrappedKeyMaterial) ([]byte, error) {
	if err := guard.EncryptedPayloadParts(material.WrappedKey, material.Nonce, material.AuthTag); err != nil {
		return nil, err
	}

	aead, err := kw.aeadManager.CreateCipher(kw.masterKey.Key, kw.algorithm)
	if err != nil {
		return nil, err
	}

	sealed := make([]byte, 0, len(material.WrappedKey)+len(material.AuthTag))
	sealed = append(sealed, material.WrappedKey...)
	sealed = append(sealed, material.AuthTag...)

	plainKey, err := aead.Decrypt(sealed, material.Nonce, nil)
	if err != nil {
		return nil, cryptoDomain.ErrKeyUnwrapFailed
	}

	return plainKey, nil
}
