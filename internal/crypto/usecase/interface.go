// Package usecase implements the key store: lifecycle management for wrapped
// per-conversation content keys.
//
// The key store guarantees one content key per conversation. Concurrent
// callers racing to create the first key for a conversation all converge on a
// single persisted record; the plaintext key only exists in memory between an
// unwrap and the encryption operation that consumes it.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/linguachat/encryption/internal/crypto/domain"
)

// WrappedKeyRepository defines the interface for wrapped conversation key
// persistence.
//
// Implementations must support transaction context propagation via
// database.GetTx and be safe for concurrent access.
//
// Available implementations:
//   - PostgreSQLWrappedKeyRepository: native UUID and BYTEA types
//   - MySQLWrappedKeyRepository: BINARY(16) UUIDs and BLOB binary data
type WrappedKeyRepository interface {
	// Create stores a new wrapped key. Returns ErrWrappedKeyAlreadyExists
	// when a key is already bound to the same conversation.
	Create(ctx context.Context, key *cryptoDomain.WrappedConversationKey) error

	// Get retrieves a wrapped key by its ID. Returns ErrWrappedKeyNotFound
	// when no record exists.
	Get(ctx context.Context, keyID uuid.UUID) (*cryptoDomain.WrappedConversationKey, error)

	// GetByConversationID retrieves the wrapped key bound to a conversation.
	// Returns ErrWrappedKeyNotFound when the conversation has no key yet.
	GetByConversationID(ctx context.Context, conversationID string) (*cryptoDomain.WrappedConversationKey, error)

	// TouchLastAccessed records that the key was unwrapped at accessedAt.
	TouchLastAccessed(ctx context.Context, keyID uuid.UUID, accessedAt time.Time) error
}

// ResolvedKey is a wrapped key record together with its unwrapped plaintext
// material. Callers must zero Key with cryptoDomain.Zero as soon as the
// cryptographic operation that needed it completes.
type ResolvedKey struct {
	ID        uuid.UUID
	Algorithm cryptoDomain.Algorithm
	Key       []byte
}

// KeyStore defines the business logic for wrapped conversation key lifecycle.
type KeyStore interface {
	// GetOrCreateConversationKey returns the wrapped key bound to the
	// conversation, creating and persisting one if none exists. Repeated and
	// concurrent calls for the same conversation return the same key ID.
	GetOrCreateConversationKey(ctx context.Context, conversationID string) (*cryptoDomain.WrappedConversationKey, error)

	// ResolveConversationKey returns the unwrapped content key for a
	// conversation, creating the key first if needed. The key's
	// last-accessed timestamp is updated on a best-effort basis.
	ResolveConversationKey(ctx context.Context, conversationID string) (*ResolvedKey, error)

	// ResolveKeyByID returns the unwrapped content key for an explicit key
	// reference, used on the decrypt path where stored metadata names the
	// key that sealed the payload.
	ResolveKeyByID(ctx context.Context, keyID uuid.UUID) (*ResolvedKey, error)
}
