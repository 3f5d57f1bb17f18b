package usecase

import (
	"context"
	"time"

	envelopeDomain "github.com/linguachat/encryption/internal/envelope/domain"
	"github.com/linguachat/encryption/internal/metrics"
)

// envelopeEngineWithMetrics decorates EnvelopeEngine with metrics instrumentation.
type envelopeEngineWithMetrics struct {
	next    EnvelopeEngine
	metrics metrics.BusinessMetrics
}

// NewEnvelopeEngineWithMetrics wraps an EnvelopeEngine with metrics recording.
func NewEnvelopeEngineWithMetrics(engine EnvelopeEngine, m metrics.BusinessMetrics) EnvelopeEngine {
	return &envelopeEngineWithMetrics{
		next:    engine,
		metrics: m,
	}
}

// EncryptMessage records metrics for message encryption operations.
func (e *envelopeEngineWithMetrics) EncryptMessage(
	ctx context.Context,
	plaintext []byte,
	mode envelopeDomain.Mode,
	conversationID string,
) (*envelopeDomain.EncryptedPayload, error) {
	start := time.Now()
	payload, err := e.next.EncryptMessage(ctx, plaintext, mode, conversationID)

	status := "success"
	if err != nil {
		status = "error"
	}

	e.metrics.RecordOperation(ctx, "envelope", "message_encrypt", status)
	e.metrics.RecordDuration(ctx, "envelope", "message_encrypt", time.Since(start), status)

	return payload, err
}

// DecryptMessage records metrics for message decryption operations.
func (e *envelopeEngineWithMetrics) DecryptMessage(
	ctx context.Context,
	payload *envelopeDomain.EncryptedPayload,
) ([]byte, error) {
	start := time.Now()
	plaintext, err := e.next.DecryptMessage(ctx, payload)

	status := "success"
	if err != nil {
		status = "error"
	}

	e.metrics.RecordOperation(ctx, "envelope", "message_decrypt", status)
	e.metrics.RecordDuration(ctx, "envelope", "message_decrypt", time.Since(start), status)

	return plaintext, err
}

// TranslateAndReEncrypt records metrics for translation re-encryption.
func (e *envelopeEngineWithMetrics) TranslateAndReEncrypt(
	ctx context.Context,
	original *envelopeDomain.EncryptedPayload,
	translatedPlaintext []byte,
) (*envelopeDomain.EncryptedPayload, error) {
	start := time.Now()
	payload, err := e.next.TranslateAndReEncrypt(ctx, original, translatedPlaintext)

	status := "success"
	if err != nil {
		status = "error"
	}

	e.metrics.RecordOperation(ctx, "envelope", "message_reencrypt", status)
	e.metrics.RecordDuration(ctx, "envelope", "message_reencrypt", time.Since(start), status)

	return payload, err
}
