package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	conversationDomain "github.com/linguachat/encryption/internal/conversation/domain"
)

// MockSettingsRepository is a mock implementation of SettingsRepository for testing.
type MockSettingsRepository struct {
	mock.Mock
}

// Create mocks the Create method of SettingsRepository.
func (m *MockSettingsRepository) Create(
	ctx context.Context,
	settings *conversationDomain.ConversationEncryptionSettings,
) error {
	args := m.Called(ctx, settings)
	return args.Error(0)
}

// Get mocks the Get method of SettingsRepository.
func (m *MockSettingsRepository) Get(
	ctx context.Context,
	conversationID string,
) (*conversationDomain.ConversationEncryptionSettings, error) {
	args := m.Called(ctx, conversationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*conversationDomain.ConversationEncryptionSettings), args.Error(1)
}
