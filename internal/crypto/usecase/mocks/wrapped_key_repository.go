// Package mocks provides mock implementations for testing key store use cases.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	cryptoDomain "github.com/linguachat/encryption/internal/crypto/domain"
)

// MockWrappedKeyRepository is a mock implementation of WrappedKeyRepository for testing.
type MockWrappedKeyRepository struct {
	mock.Mock
}

// Create mocks the Create method of WrappedKeyRepository.
func (m *MockWrappedKeyRepository) Create(ctx context.Context, key *cryptoDomain.WrappedConversationKey) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// Get mocks the Get method of WrappedKeyRepository.
func (m *MockWrappedKeyRepository) Get(
	ctx context.Context,
	keyID uuid.UUID,
) (*cryptoDomain.WrappedConversationKey, error) {
	args := m.Called(ctx, keyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cryptoDomain.WrappedConversationKey), args.Error(1)
}

// GetByConversationID mocks the GetByConversationID method of WrappedKeyRepository.
func (m *MockWrappedKeyRepository) GetByConversationID(
	ctx context.Context,
	conversationID string,
) (*cryptoDomain.WrappedConversationKey, error) {
	args := m.Called(ctx, conversationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cryptoDomain.WrappedConversationKey), args.Error(1)
}

// TouchLastAccessed mocks the TouchLastAccessed method of WrappedKeyRepository.
func (m *MockWrappedKeyRepository) TouchLastAccessed(
	ctx context.Context,
	keyID uuid.UUID,
	accessedAt time.Time,
) error {
	args := m.Called(ctx, keyID, accessedAt)
	return args.Error(0)
}
