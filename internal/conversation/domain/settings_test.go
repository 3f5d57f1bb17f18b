package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	envelopeDomain "github.com/linguachat/encryption/internal/envelope/domain"
	apperrors "github.com/linguachat/encryption/internal/errors"
)

func TestStatusFor(t *testing.T) {
	t.Run("NeverEnabled", func(t *testing.T) {
		status := StatusFor(nil)

		assert.False(t, status.IsEncrypted)
		assert.Nil(t, status.Mode)
		assert.True(t, status.CanTranslate)
	})

	t.Run("ServerMode", func(t *testing.T) {
		mode := envelopeDomain.ModeServer
		protocol := envelopeDomain.ProtocolServerAEAD
		enabledAt := time.Now().UTC()
		enabledBy := "user-1"

		status := StatusFor(&ConversationEncryptionSettings{
			ConversationID: "conversation-1",
			Mode:           &mode,
			Protocol:       &protocol,
			EnabledAt:      &enabledAt,
			EnabledBy:      &enabledBy,
		})

		assert.True(t, status.IsEncrypted)
		assert.Equal(t, envelopeDomain.ModeServer, *status.Mode)
		assert.Equal(t, enabledAt, *status.EnabledAt)
		assert.Equal(t, "user-1", *status.EnabledBy)
		assert.True(t, status.CanTranslate)
	})

	t.Run("E2EEMode", func(t *testing.T) {
		mode := envelopeDomain.ModeE2EE

		status := StatusFor(&ConversationEncryptionSettings{
			ConversationID: "conversation-1",
			Mode:           &mode,
		})

		assert.True(t, status.IsEncrypted)
		assert.False(t, status.CanTranslate)
	})
}

func TestStateConflictError(t *testing.T) {
	mode := envelopeDomain.ModeServer
	err := &StateConflictError{
		Current: &ConversationEncryptionSettings{
			ConversationID: "conversation-1",
			Mode:           &mode,
		},
	}

	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.Contains(t, err.Error(), "server")

	var conflictErr *StateConflictError
	assert.ErrorAs(t, error(err), &conflictErr)
	assert.Equal(t, "conversation-1", conflictErr.Current.ConversationID)
}

func TestDomainErrors(t *testing.T) {
	assert.ErrorIs(t, ErrSettingsNotFound, apperrors.ErrNotFound)
	assert.ErrorIs(t, ErrSettingsAlreadyExist, apperrors.ErrConflict)
	assert.ErrorIs(t, ErrNotConversationAdmin, apperrors.ErrForbidden)
}
