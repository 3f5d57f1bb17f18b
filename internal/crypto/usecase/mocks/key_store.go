package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	cryptoDomain "github.com/linguachat/encryption/internal/crypto/domain"
	"github.com/linguachat/encryption/internal/crypto/usecase"
)

// MockKeyStore is a mock implementation of KeyStore for testing.
type MockKeyStore struct {
	mock.Mock
}

// GetOrCreateConversationKey mocks the GetOrCreateConversationKey method of KeyStore.
func (m *MockKeyStore) GetOrCreateConversationKey(
	ctx context.Context,
	conversationID string,
) (*cryptoDomain.WrappedConversationKey, error) {
	args := m.Called(ctx, conversationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cryptoDomain.WrappedConversationKey), args.Error(1)
}

// ResolveConversationKey mocks the ResolveConversationKey method of KeyStore.
func (m *MockKeyStore) ResolveConversationKey(
	ctx context.Context,
	conversationID string,
) (*usecase.ResolvedKey, error) {
	args := m.Called(ctx, conversationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.ResolvedKey), args.Error(1)
}

// ResolveKeyByID mocks the ResolveKeyByID method of KeyStore.
func (m *MockKeyStore) ResolveKeyByID(ctx context.Context, keyID uuid.UUID) (*usecase.ResolvedKey, error) {
	args := m.Called(ctx, keyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.ResolvedKey), args.Error(1)
}
