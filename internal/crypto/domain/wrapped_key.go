package domain

import (
	"time"

	"github.com/google/uuid"
)

// WrappedConversationKey is the persisted form of a per-conversation content
// key: the plaintext key encrypted under the master key. The plaintext key
// is never persisted and should be zeroed from memory immediately after use.
//
// Invariant: at most one live record per conversation, enforced by a unique
// index on ConversationID. Lookups by conversation are idempotent; repeated
// calls return the same ID.
type WrappedConversationKey struct {
	ID             uuid.UUID  // Unique identifier (UUIDv7)
	ConversationID *string    // Owning conversation; nil for unbound keys
	Algorithm      Algorithm  // AEAD used to wrap (and later to use) the key
	Purpose        KeyPurpose // What the key protects
	WrappedKey     []byte     // The content key encrypted with the master key
	Nonce          []byte     // 12-byte IV used for the wrap
	AuthTag        []byte     // 16-byte tag from the wrap
	CreatedAt      time.Time
	LastAccessedAt *time.Time // Updated on unwrap, nil until first use
}
