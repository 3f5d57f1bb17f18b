package domain

import (
	"github.com/linguachat/encryption/internal/errors"
)

// Cryptographic operation error definitions.
//
// These domain-specific errors wrap the standard sentinels from
// internal/errors so handlers can map them to HTTP status codes while use
// cases keep matching with errors.Is.
var (
	// ErrUnsupportedAlgorithm indicates the requested AEAD algorithm is not
	// supported. Supported: AESGCM (aes-gcm) and ChaCha20 (chacha20-poly1305).
	ErrUnsupportedAlgorithm = errors.Wrap(errors.ErrInvalidInput, "unsupported algorithm")

	// ErrInvalidKeySize indicates key material is not exactly 32 bytes.
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid key size")

	// ErrDecryptionFailed indicates an AEAD open failed on message content.
	//
	// Wrong key, tampered ciphertext, tampered tag, and corrupted data all
	// surface as this one error. The cause is deliberately not disclosed to
	// avoid building a decryption oracle.
	ErrDecryptionFailed = errors.Wrap(errors.ErrInvalidInput, "decryption failed")

	// ErrKeyUnwrapFailed indicates the authentication tag on a stored
	// wrapped conversation key did not verify. This means the persisted key
	// record was corrupted or tampered with; the operation must abort and
	// never substitute a fallback key. Unlike ErrDecryptionFailed this is
	// an integrity failure, not invalid caller input.
	ErrKeyUnwrapFailed = errors.Wrap(errors.ErrIntegrity, "key unwrap failed")

	// ErrWrappedKeyNotFound indicates no wrapped key record exists for the
	// given identifier. Distinct from ErrKeyUnwrapFailed: the reference was
	// stale or forged rather than the material corrupt.
	ErrWrappedKeyNotFound = errors.Wrap(errors.ErrNotFound, "wrapped key not found")

	// ErrWrappedKeyAlreadyExists indicates a wrapped key already exists for
	// the conversation. Raised by the unique index that makes concurrent
	// get-or-create calls converge on a single key.
	ErrWrappedKeyAlreadyExists = errors.Wrap(errors.ErrConflict, "wrapped key already exists")

	// ErrMasterKeyNotSet indicates the MASTER_KEY environment value is
	// absent. Fatal at startup: the process must not serve traffic.
	ErrMasterKeyNotSet = errors.New("MASTER_KEY environment variable not set")

	// ErrInvalidMasterKeyBase64 indicates the master key value is not valid
	// standard base64.
	ErrInvalidMasterKeyBase64 = errors.New("invalid master key base64 encoding")
)
