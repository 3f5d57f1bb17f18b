package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	envelopeDomain "github.com/linguachat/encryption/internal/envelope/domain"
)

// MockEnvelopeEngine is a mock implementation of EnvelopeEngine for testing.
type MockEnvelopeEngine struct {
	mock.Mock
}

// EncryptMessage mocks the EncryptMessage method of EnvelopeEngine.
func (m *MockEnvelopeEngine) EncryptMessage(
	ctx context.Context,
	plaintext []byte,
	mode envelopeDomain.Mode,
	conversationID string,
) (*envelopeDomain.EncryptedPayload, error) {
	args := m.Called(ctx, plaintext, mode, conversationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*envelopeDomain.EncryptedPayload), args.Error(1)
}

// DecryptMessage mocks the DecryptMessage method of EnvelopeEngine.
func (m *MockEnvelopeEngine) DecryptMessage(
	ctx context.Context,
	payload *envelopeDomain.EncryptedPayload,
) ([]byte, error) {
	args := m.Called(ctx, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// TranslateAndReEncrypt mocks the TranslateAndReEncrypt method of EnvelopeEngine.
func (m *MockEnvelopeEngine) TranslateAndReEncrypt(
	ctx context.Context,
	original *envelopeDomain.EncryptedPayload,
	translatedPlaintext []byte,
) (*envelopeDomain.EncryptedPayload, error) {
	args := m.Called(ctx, original, translatedPlaintext)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*envelopeDomain.EncryptedPayload), args.Error(1)
}
