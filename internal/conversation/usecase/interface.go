// Package usecase implements the conversation encryption state machine:
// enabling encryption for a conversation and reporting its status.
package usecase

import (
	"context"

	conversationDomain "github.com/linguachat/encryption/internal/conversation/domain"
	envelopeDomain "github.com/linguachat/encryption/internal/envelope/domain"
)

// SettingsRepository defines persistence operations for conversation
// encryption settings.
type SettingsRepository interface {
	Create(ctx context.Context, settings *conversationDomain.ConversationEncryptionSettings) error
	Get(ctx context.Context, conversationID string) (*conversationDomain.ConversationEncryptionSettings, error)
}

// MembershipAuthorizer answers whether an actor may administer a
// conversation. The membership service lives outside this module; this is
// its seam.
type MembershipAuthorizer interface {
	IsConversationAdmin(ctx context.Context, conversationID, actorID string) (bool, error)
}

// NoticePublisher posts system notices into a conversation, such as
// "encryption was enabled". Implementations live in the messaging
// pipeline; NoOpNoticePublisher is the default.
type NoticePublisher interface {
	PublishEncryptionEnabled(ctx context.Context, conversationID string, mode envelopeDomain.Mode, actorID string) error
}

// HeaderTrustAuthorizer treats every authenticated actor as a conversation
// admin. The deployment fronting this service resolves membership before
// forwarding the actor header, so no second check happens here. Deployments
// that call the service directly should supply a real authorizer instead.
type HeaderTrustAuthorizer struct{}

// IsConversationAdmin reports true for any non-empty actor id.
func (HeaderTrustAuthorizer) IsConversationAdmin(
	_ context.Context,
	_ string,
	actorID string,
) (bool, error) {
	return actorID != "", nil
}

// NoOpNoticePublisher discards notices.
type NoOpNoticePublisher struct{}

// PublishEncryptionEnabled does nothing.
func (NoOpNoticePublisher) PublishEncryptionEnabled(
	_ context.Context,
	_ string,
	_ envelopeDomain.Mode,
	_ string,
) error {
	return nil
}

// EncryptionSettings defines the conversation encryption state machine.
//
// The only transition is unset to enabled, once, in either server or e2ee
// mode. There is no disable and no mode change.
type EncryptionSettings interface {
	// Enable turns encryption on for a conversation. Server mode also
	// provisions the conversation's wrapped content key. An already
	// enabled conversation yields a *domain.StateConflictError carrying
	// the current settings.
	Enable(
		ctx context.Context,
		conversationID string,
		mode envelopeDomain.Mode,
		actorID string,
	) (*conversationDomain.ConversationEncryptionSettings, error)

	// Status reports the conversation's encryption state. Conversations
	// that never enabled encryption report an unencrypted status rather
	// than an error.
	Status(ctx context.Context, conversationID string) (*conversationDomain.EncryptionStatus, error)
}
