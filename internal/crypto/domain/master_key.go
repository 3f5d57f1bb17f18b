// Package domain defines the core cryptographic domain models for
// conversation envelope encryption.
//
// The key hierarchy is two tiers: Master Key → wrapped conversation key →
// message content. Each conversation with server-managed encryption owns
// exactly one 32-byte content key, wrapped (encrypted) under the process
// master key before it touches storage.
package domain

import (
	"encoding/base64"
	"fmt"
	"os"
)

// MasterKeyEnvVar is the environment variable that supplies the master key
// as a base64-encoded 32-byte secret.
const MasterKeyEnvVar = "MASTER_KEY"

// MasterKey is the process-wide root secret used to wrap per-conversation
// keys. It is sourced once at startup, never persisted, and owned
// exclusively by the key wrapper for the process lifetime.
//
// The key is explicit configuration injected at construction time, never
// ambient global state: tests substitute a fixed secret by constructing
// their own MasterKey.
type MasterKey struct {
	Key []byte
}

// NewMasterKey builds a MasterKey from raw key material. The material must
// be exactly 32 bytes; the caller retains ownership of the slice and may
// zero it after the returned MasterKey's own copy is made.
func NewMasterKey(key []byte) (*MasterKey, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("%w: master key must be 32 bytes, got %d", ErrInvalidKeySize, len(key))
	}

	owned := make([]byte, 32)
	copy(owned, key)
	return &MasterKey{Key: owned}, nil
}

// Close zeroes the key material. Call during shutdown once no wrapper can
// still reference the key.
func (m *MasterKey) Close() {
	Zero(m.Key)
	m.Key = nil
}

// LoadMasterKeyFromEnv reads and decodes the master key from MASTER_KEY.
//
// A missing variable, invalid base64, or a decoded length other than 32
// bytes is a configuration error the caller must treat as fatal: a process
// without a valid master key must not serve traffic.
//
// The temporary decoded buffer is zeroed before returning.
func LoadMasterKeyFromEnv() (*MasterKey, error) {
	raw := os.Getenv(MasterKeyEnvVar)
	if raw == "" {
		return nil, ErrMasterKeyNotSet
	}

	key, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMasterKeyBase64, err)
	}
	defer Zero(key)

	return NewMasterKey(key)
}
