package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	conversationDomain "github.com/linguachat/encryption/internal/conversation/domain"
	envelopeDomain "github.com/linguachat/encryption/internal/envelope/domain"
)

// MockMembershipAuthorizer is a mock implementation of MembershipAuthorizer for testing.
type MockMembershipAuthorizer struct {
	mock.Mock
}

// IsConversationAdmin mocks the IsConversationAdmin method of MembershipAuthorizer.
func (m *MockMembershipAuthorizer) IsConversationAdmin(
	ctx context.Context,
	conversationID, actorID string,
) (bool, error) {
	args := m.Called(ctx, conversationID, actorID)
	return args.Bool(0), args.Error(1)
}

// MockNoticePublisher is a mock implementation of NoticePublisher for testing.
type MockNoticePublisher struct {
	mock.Mock
}

// PublishEncryptionEnabled mocks the PublishEncryptionEnabled method of NoticePublisher.
func (m *MockNoticePublisher) PublishEncryptionEnabled(
	ctx context.Context,
	conversationID string,
	mode envelopeDomain.Mode,
	actorID string,
) error {
	args := m.Called(ctx, conversationID, mode, actorID)
	return args.Error(0)
}

// MockEncryptionSettings is a mock implementation of EncryptionSettings for testing.
type MockEncryptionSettings struct {
	mock.Mock
}

// Enable mocks the Enable method of EncryptionSettings.
func (m *MockEncryptionSettings) Enable(
	ctx context.Context,
	conversationID string,
	mode envelopeDomain.Mode,
	actorID string,
) (*conversationDomain.ConversationEncryptionSettings, error) {
	args := m.Called(ctx, conversationID, mode, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*conversationDomain.ConversationEncryptionSettings), args.Error(1)
}

// Status mocks the Status method of EncryptionSettings.
func (m *MockEncryptionSettings) Status(
	ctx context.Context,
	conversationID string,
) (*conversationDomain.EncryptionStatus, error) {
	args := m.Called(ctx, conversationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*conversationDomain.EncryptionStatus), args.Error(1)
}
