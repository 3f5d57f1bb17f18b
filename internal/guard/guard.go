// Package guard provides stateless bound checks that run before any
// cryptographic primitive sees attacker-controlled input.
//
// Every check is a pure function: it allocates nothing on the happy path,
// performs no I/O, and never panics on malformed input. A failed check
// returns a *Violation carrying a stable machine-readable code so callers
// (and clients across the transport boundary) can distinguish rejection
// reasons without parsing messages.
package guard

import (
	"fmt"

	apperrors "github.com/linguachat/encryption/internal/errors"
)

// Contractual limits. These are wire-level constants shared with clients;
// changing any of them is a protocol break, not a tuning knob.
const (
	// MaxMessageSize is the largest message payload accepted for
	// encryption or decryption, in bytes.
	MaxMessageSize = 65536

	// MaxMessageNumber bounds ratchet message counters to a signed 32-bit
	// range so they survive every client runtime in the fleet.
	MaxMessageNumber = 1<<31 - 1

	// DefaultMaxSkip bounds how far ahead of the expected counter an
	// incoming message number may jump. A ratchet must derive and cache a
	// key for every skipped number, so an unbounded skip is a
	// memory-exhaustion vector.
	DefaultMaxSkip = 100

	// MaxRegistrationID is the upper bound of the 14-bit Signal
	// registration id range.
	MaxRegistrationID = 16383

	// KeySize is the required length of symmetric key material in bytes.
	KeySize = 32

	// NonceSize is the required AEAD IV length in bytes.
	NonceSize = 12

	// TagSize is the required AEAD authentication tag length in bytes.
	TagSize = 16
)

// Violation codes returned to callers. Stable identifiers, never reworded.
const (
	CodeMessageEmpty        = "MESSAGE_EMPTY"
	CodeMessageTooLarge     = "MESSAGE_TOO_LARGE"
	CodeInvalidMessageNum   = "INVALID_MESSAGE_NUMBER"
	CodeMessageNumOverflow  = "MESSAGE_NUMBER_OVERFLOW"
	CodeMessageNumSkip      = "MESSAGE_NUMBER_SKIP_TOO_LARGE"
	CodeKeyMissing          = "KEY_MISSING"
	CodeKeyInvalidSize      = "KEY_INVALID_SIZE"
	CodeInvalidRegistration = "INVALID_REGISTRATION_ID"
	CodeInvalidPreKeyID     = "INVALID_PREKEY_ID"
	CodeCiphertextMissing   = "CIPHERTEXT_MISSING"
)

// Violation is a soft validation failure. It wraps apperrors.ErrInvalidInput
// so the HTTP layer maps it to a 4xx response, and carries the code that
// identifies which bound was broken.
type Violation struct {
	Code    string
	Message string
}

// Error implements the error interface.
func (v *Violation) Error() string {
	return fmt.Sprintf("%s: %s", v.Code, v.Message)
}

// Unwrap ties every violation into the ErrInvalidInput chain.
func (v *Violation) Unwrap() error {
	return apperrors.ErrInvalidInput
}

func violation(code, format string, args ...any) *Violation {
	return &Violation{Code: code, Message: fmt.Sprintf(format, args...)}
}

// MessageSize checks a message payload against the size bounds. Zero-length
// input and input above MaxMessageSize are both rejected; exactly 1 and
// exactly MaxMessageSize bytes are accepted.
func MessageSize(data []byte) error {
	return MessageSizeWithLimit(data, MaxMessageSize)
}

// MessageSizeWithLimit is MessageSize with a caller-supplied ceiling.
func MessageSizeWithLimit(data []byte, maxSize int) error {
	if len(data) == 0 {
		return violation(CodeMessageEmpty, "message must not be empty")
	}
	if len(data) > maxSize {
		return violation(
			CodeMessageTooLarge,
			"message of %d bytes exceeds the %d byte limit",
			len(data),
			maxSize,
		)
	}
	return nil
}

// MessageNumber checks an incoming ratchet message counter against the
// expected counter using DefaultMaxSkip.
func MessageNumber(n, expected int64) error {
	return MessageNumberWithSkip(n, expected, DefaultMaxSkip)
}

// MessageNumberWithSkip rejects negative counters, counters beyond the
// 32-bit ceiling, and counters that would force the ratchet to materialize
// more than maxSkip skipped-message keys.
func MessageNumberWithSkip(n, expected, maxSkip int64) error {
	if n < 0 {
		return violation(CodeInvalidMessageNum, "message number %d is negative", n)
	}
	if n > MaxMessageNumber {
		return violation(CodeMessageNumOverflow, "message number %d exceeds 2^31-1", n)
	}
	if n > expected+maxSkip {
		return violation(
			CodeMessageNumSkip,
			"message number %d skips more than %d ahead of expected %d",
			n,
			maxSkip,
			expected,
		)
	}
	return nil
}

// KeyBuffer checks that key material named name is present and exactly
// expectedSize bytes. Length must match exactly: a truncated or padded
// buffer is as invalid as a missing one.
func KeyBuffer(key []byte, expectedSize int, name string) error {
	if len(key) == 0 {
		return violation(CodeKeyMissing, "%s is missing", name)
	}
	if len(key) != expectedSize {
		return violation(
			CodeKeyInvalidSize,
			"%s must be %d bytes, got %d",
			name,
			expectedSize,
			len(key),
		)
	}
	return nil
}

// RegistrationID checks that id is inside the 14-bit range [1, 16383].
func RegistrationID(id int64) error {
	if id < 1 || id > MaxRegistrationID {
		return violation(
			CodeInvalidRegistration,
			"registration id %d outside [1, %d]",
			id,
			MaxRegistrationID,
		)
	}
	return nil
}

// PreKeyID checks that id is a non-negative integer within the 32-bit
// ceiling shared with message numbers.
func PreKeyID(id int64) error {
	if id < 0 || id > MaxMessageNumber {
		return violation(CodeInvalidPreKeyID, "pre-key id %d outside [0, 2^31-1]", id)
	}
	return nil
}

// EncryptedPayloadParts checks the three components of an incoming
// ciphertext envelope before any of them reach an AEAD: non-empty
// ciphertext, a 12-byte IV, and a 16-byte authentication tag.
func EncryptedPayloadParts(ciphertext, iv, authTag []byte) error {
	if len(ciphertext) == 0 {
		return violation(CodeCiphertextMissing, "ciphertext is missing")
	}
	if err := KeyBuffer(iv, NonceSize, "iv"); err != nil {
		return err
	}
	return KeyBuffer(authTag, TagSize, "auth tag")
}
