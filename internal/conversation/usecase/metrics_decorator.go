package usecase

import (
	"context"
	"time"

	conversationDomain "github.com/linguachat/encryption/internal/conversation/domain"
	envelopeDomain "github.com/linguachat/encryption/internal/envelope/domain"
	"github.com/linguachat/encryption/internal/metrics"
)

// encryptionSettingsWithMetrics decorates EncryptionSettings with metrics
// instrumentation.
type encryptionSettingsWithMetrics struct {
	next    EncryptionSettings
	metrics metrics.BusinessMetrics
}

// NewEncryptionSettingsWithMetrics wraps an EncryptionSettings with metrics recording.
func NewEncryptionSettingsWithMetrics(settings EncryptionSettings, m metrics.BusinessMetrics) EncryptionSettings {
	return &encryptionSettingsWithMetrics{
		next:    settings,
		metrics: m,
	}
}

// Enable records metrics for encryption enable operations.
func (e *encryptionSettingsWithMetrics) Enable(
	ctx context.Context,
	conversationID string,
	mode envelopeDomain.Mode,
	actorID string,
) (*conversationDomain.ConversationEncryptionSettings, error) {
	start := time.Now()
	settings, err := e.next.Enable(ctx, conversationID, mode, actorID)

	status := "success"
	if err != nil {
		status = "error"
	}

	e.metrics.RecordOperation(ctx, "conversation", "encryption_enable", status)
	e.metrics.RecordDuration(ctx, "conversation", "encryption_enable", time.Since(start), status)

	return settings, err
}

// Status records metrics for encryption status lookups.
func (e *encryptionSettingsWithMetrics) Status(
	ctx context.Context,
	conversationID string,
) (*conversationDomain.EncryptionStatus, error) {
	start := time.Now()
	result, err := e.next.Status(ctx, conversationID)

	status := "success"
	if err != nil {
		status = "error"
	}

	e.metrics.RecordOperation(ctx, "conversation", "encryption_status", status)
	e.metrics.RecordDuration(ctx, "conversation", "encryption_status", time.Since(start), status)

	return result, err
}
