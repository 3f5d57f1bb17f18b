package guard

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/linguachat/encryption/internal/errors"
)

// assertViolation checks that err is a *Violation with the expected code.
func assertViolation(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)

	var v *Violation
	require.True(t, apperrors.As(err, &v))
	assert.Equal(t, code, v.Code)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput))
}

func TestMessageSize(t *testing.T) {
	t.Run("RejectsEmpty", func(t *testing.T) {
		assertViolation(t, MessageSize(nil), CodeMessageEmpty)
		assertViolation(t, MessageSize([]byte{}), CodeMessageEmpty)
	})

	t.Run("AcceptsSingleByte", func(t *testing.T) {
		assert.NoError(t, MessageSize([]byte{0x01}))
	})

	t.Run("AcceptsExactLimit", func(t *testing.T) {
		assert.NoError(t, MessageSize(bytes.Repeat([]byte("a"), MaxMessageSize)))
	})

	t.Run("RejectsOneOverLimit", func(t *testing.T) {
		data := bytes.Repeat([]byte("a"), MaxMessageSize+1)
		assertViolation(t, MessageSize(data), CodeMessageTooLarge)
	})

	t.Run("CustomLimit", func(t *testing.T) {
		assert.NoError(t, MessageSizeWithLimit([]byte("abcd"), 4))
		assertViolation(t, MessageSizeWithLimit([]byte("abcde"), 4), CodeMessageTooLarge)
	})
}

func TestMessageNumber(t *testing.T) {
	t.Run("AcceptsExpected", func(t *testing.T) {
		assert.NoError(t, MessageNumber(0, 0))
		assert.NoError(t, MessageNumber(5, 5))
	})

	t.Run("AcceptsSkipAtBound", func(t *testing.T) {
		// n == expected + maxSkip is the last accepted value.
		assert.NoError(t, MessageNumber(100, 0))
	})

	t.Run("RejectsSkipOverBound", func(t *testing.T) {
		assertViolation(t, MessageNumber(150, 0), CodeMessageNumSkip)
		assertViolation(t, MessageNumber(101, 0), CodeMessageNumSkip)
	})

	t.Run("RejectsNegative", func(t *testing.T) {
		assertViolation(t, MessageNumber(-1, 0), CodeInvalidMessageNum)
	})

	t.Run("RejectsOverflow", func(t *testing.T) {
		assertViolation(t, MessageNumberWithSkip(MaxMessageNumber+1, MaxMessageNumber, 100), CodeMessageNumOverflow)
	})

	t.Run("AcceptsCeiling", func(t *testing.T) {
		assert.NoError(t, MessageNumberWithSkip(MaxMessageNumber, MaxMessageNumber, 0))
	})

	t.Run("CustomSkip", func(t *testing.T) {
		assert.NoError(t, MessageNumberWithSkip(10, 0, 10))
		assertViolation(t, MessageNumberWithSkip(11, 0, 10), CodeMessageNumSkip)
	})
}

func TestKeyBuffer(t *testing.T) {
	t.Run("RejectsMissing", func(t *testing.T) {
		assertViolation(t, KeyBuffer(nil, KeySize, "conversation key"), CodeKeyMissing)
		assertViolation(t, KeyBuffer([]byte{}, KeySize, "conversation key"), CodeKeyMissing)
	})

	t.Run("RejectsWrongSize", func(t *testing.T) {
		assertViolation(t, KeyBuffer(make([]byte, 31), KeySize, "key"), CodeKeyInvalidSize)
		assertViolation(t, KeyBuffer(make([]byte, 33), KeySize, "key"), CodeKeyInvalidSize)
	})

	t.Run("AcceptsExactSize", func(t *testing.T) {
		assert.NoError(t, KeyBuffer(make([]byte, KeySize), KeySize, "key"))
	})
}

func TestRegistrationID(t *testing.T) {
	assert.NoError(t, RegistrationID(1))
	assert.NoError(t, RegistrationID(16383))
	assertViolation(t, RegistrationID(0), CodeInvalidRegistration)
	assertViolation(t, RegistrationID(16384), CodeInvalidRegistration)
	assertViolation(t, RegistrationID(-7), CodeInvalidRegistration)
}

func TestPreKeyID(t *testing.T) {
	assert.NoError(t, PreKeyID(0))
	assert.NoError(t, PreKeyID(1))
	assert.NoError(t, PreKeyID(MaxMessageNumber))
	assertViolation(t, PreKeyID(-1), CodeInvalidPreKeyID)
	assertViolation(t, PreKeyID(MaxMessageNumber+1), CodeInvalidPreKeyID)
}

func TestEncryptedPayloadParts(t *testing.T) {
	validIV := make([]byte, NonceSize)
	validTag := make([]byte, TagSize)

	t.Run("AcceptsValidParts", func(t *testing.T) {
		assert.NoError(t, EncryptedPayloadParts([]byte("ct"), validIV, validTag))
	})

	t.Run("RejectsMissingCiphertext", func(t *testing.T) {
		assertViolation(t, EncryptedPayloadParts(nil, validIV, validTag), CodeCiphertextMissing)
	})

	t.Run("RejectsBadIV", func(t *testing.T) {
		assertViolation(t, EncryptedPayloadParts([]byte("ct"), make([]byte, 11), validTag), CodeKeyInvalidSize)
		assertViolation(t, EncryptedPayloadParts([]byte("ct"), nil, validTag), CodeKeyMissing)
	})

	t.Run("RejectsBadTag", func(t *testing.T) {
		assertViolation(t, EncryptedPayloadParts([]byte("ct"), validIV, make([]byte, 15)), CodeKeyInvalidSize)
		assertViolation(t, EncryptedPayloadParts([]byte("ct"), validIV, nil), CodeKeyMissing)
	})
}

func TestViolationError(t *testing.T) {
	err := MessageSize(nil)
	assert.Contains(t, err.Error(), CodeMessageEmpty)
}
