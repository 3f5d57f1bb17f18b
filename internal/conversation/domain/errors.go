package domain

import (
	"fmt"

	"github.com/linguachat/encryption/internal/errors"
)

// Domain errors for conversation encryption settings.
var (
	// ErrSettingsNotFound indicates no encryption settings row exists for
	// the conversation.
	ErrSettingsNotFound = errors.Wrap(errors.ErrNotFound, "conversation encryption settings not found")

	// ErrSettingsAlreadyExist indicates an insert hit the settings primary
	// key. Repositories return it; the use case converts it into a
	// StateConflictError carrying the surviving row.
	ErrSettingsAlreadyExist = errors.Wrap(errors.ErrConflict, "conversation encryption settings already exist")

	// ErrNotConversationAdmin indicates the acting user may not change the
	// conversation's encryption state.
	ErrNotConversationAdmin = errors.Wrap(errors.ErrForbidden, "actor is not a conversation admin")
)

// StateConflictError is returned when enabling encryption on a conversation
// that already has it enabled. The transition is one-way and terminal, so
// the caller gets the current settings instead of a mutation.
type StateConflictError struct {
	Current *ConversationEncryptionSettings
}

func (e *StateConflictError) Error() string {
	if e.Current != nil && e.Current.Mode != nil {
		return fmt.Sprintf("encryption already enabled in %q mode", *e.Current.Mode)
	}
	return "encryption already enabled"
}

// Unwrap makes the conflict visible to errors.Is(err, ErrConflict).
func (e *StateConflictError) Unwrap() error {
	return errors.ErrConflict
}
