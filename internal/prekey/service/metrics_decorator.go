package service

import (
	"context"
	"time"

	"github.com/linguachat/encryption/internal/metrics"
	prekeyDomain "github.com/linguachat/encryption/internal/prekey/domain"
)

// issuerWithMetrics decorates Issuer with metrics instrumentation.
type issuerWithMetrics struct {
	next    Issuer
	metrics metrics.BusinessMetrics
}

// NewIssuerWithMetrics wraps an Issuer with metrics recording.
func NewIssuerWithMetrics(issuer Issuer, m metrics.BusinessMetrics) Issuer {
	return &issuerWithMetrics{
		next:    issuer,
		metrics: m,
	}
}

// GenerateBundle records metrics for bundle issuance.
func (i *issuerWithMetrics) GenerateBundle(ctx context.Context) (*prekeyDomain.PreKeyBundle, error) {
	start := time.Now()
	bundle, err := i.next.GenerateBundle(ctx)

	status := "success"
	if err != nil {
		status = "error"
	}

	i.metrics.RecordOperation(ctx, "prekey", "bundle_generate", status)
	i.metrics.RecordDuration(ctx, "prekey", "bundle_generate", time.Since(start), status)

	return bundle, err
}
