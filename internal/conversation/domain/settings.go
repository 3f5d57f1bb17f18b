// Package domain contains conversation encryption settings and their
// state-machine rules.
package domain

import (
	"time"

	"github.com/google/uuid"

	envelopeDomain "github.com/linguachat/encryption/internal/envelope/domain"
)

// ConversationEncryptionSettings records the encryption state of a single
// conversation. A conversation starts with no row at all; once encryption
// is enabled the row exists and never changes again.
type ConversationEncryptionSettings struct {
	ConversationID string               `json:"conversation_id"`
	Mode           *envelopeDomain.Mode `json:"mode"`
	Protocol       *string              `json:"protocol"`
	EnabledAt      *time.Time           `json:"enabled_at"`
	EnabledBy      *string              `json:"enabled_by"`
	ServerKeyID    *uuid.UUID           `json:"server_key_id,omitempty"`
}

// IsEnabled reports whether encryption has been switched on for the
// conversation.
func (s *ConversationEncryptionSettings) IsEnabled() bool {
	return s != nil && s.Mode != nil
}

// EncryptionStatus is the read model returned to callers asking about a
// conversation's encryption state.
type EncryptionStatus struct {
	IsEncrypted bool                 `json:"isEncrypted"`
	Mode        *envelopeDomain.Mode `json:"mode"`
	EnabledAt   *time.Time           `json:"enabledAt"`
	EnabledBy   *string              `json:"enabledBy"`
	// CanTranslate is false for e2ee conversations because the server
	// never holds their content keys.
	CanTranslate bool `json:"canTranslate"`
}

// StatusFor derives the read model from stored settings. A nil settings
// value means encryption was never enabled; translation is still possible
// because the content is not end-to-end encrypted.
func StatusFor(settings *ConversationEncryptionSettings) *EncryptionStatus {
	if !settings.IsEnabled() {
		return &EncryptionStatus{IsEncrypted: false, CanTranslate: true}
	}
	return &EncryptionStatus{
		IsEncrypted:  true,
		Mode:         settings.Mode,
		EnabledAt:    settings.EnabledAt,
		EnabledBy:    settings.EnabledBy,
		CanTranslate: *settings.Mode != envelopeDomain.ModeE2EE,
	}
}
