package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/linguachat/encryption/internal/crypto/domain"
	"github.com/linguachat/encryption/internal/metrics"
)

// keyStoreWithMetrics decorates KeyStore with metrics instrumentation.
type keyStoreWithMetrics struct {
	next    KeyStore
	metrics metrics.BusinessMetrics
}

// NewKeyStoreWithMetrics wraps a KeyStore with metrics recording.
func NewKeyStoreWithMetrics(keyStore KeyStore, m metrics.BusinessMetrics) KeyStore {
	return &keyStoreWithMetrics{
		next:    keyStore,
		metrics: m,
	}
}

// GetOrCreateConversationKey records metrics for key get-or-create operations.
func (k *keyStoreWithMetrics) GetOrCreateConversationKey(
	ctx context.Context,
	conversationID string,
) (*cryptoDomain.WrappedConversationKey, error) {
	start := time.Now()
	key, err := k.next.GetOrCreateConversationKey(ctx, conversationID)

	status := "success"
	if err != nil {
		status = "error"
	}

	k.metrics.RecordOperation(ctx, "keystore", "key_get_or_create", status)
	k.metrics.RecordDuration(ctx, "keystore", "key_get_or_create", time.Since(start), status)

	return key, err
}

// ResolveConversationKey records metrics for conversation key resolution.
func (k *keyStoreWithMetrics) ResolveConversationKey(
	ctx context.Context,
	conversationID string,
) (*ResolvedKey, error) {
	start := time.Now()
	key, err := k.next.ResolveConversationKey(ctx, conversationID)

	status := "success"
	if err != nil {
		status = "error"
	}

	k.metrics.RecordOperation(ctx, "keystore", "key_resolve", status)
	k.metrics.RecordDuration(ctx, "keystore", "key_resolve", time.Since(start), status)

	return key, err
}

// ResolveKeyByID records metrics for key resolution by ID.
func (k *keyStoreWithMetrics) ResolveKeyByID(ctx context.Context, keyID uuid.UUID) (*ResolvedKey, error) {
	start := time.Now()
	key, err := k.next.ResolveKeyByID(ctx, keyID)

	status := "success"
	if err != nil {
		status = "error"
	}

	k.metrics.RecordOperation(ctx, "keystore", "key_resolve_by_id", status)
	k.metrics.RecordDuration(ctx, "keystore", "key_resolve_by_id", time.Since(start), status)

	return key, err
}
