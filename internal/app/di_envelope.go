package app

import (
	"fmt"

	envelopeUseCase "github.com/linguachat/encryption/internal/envelope/usecase"
)

// EnvelopeEngine returns the envelope engine use case.
func (c *Container) EnvelopeEngine() (envelopeUseCase.EnvelopeEngine, error) {
	var err error
	c.envelopeEngineInit.Do(func() {
		c.envelopeEngine, err = c.initEnvelopeEngine()
		if err != nil {
			c.initErrors["envelopeEngine"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["envelopeEngine"]; exists {
		return nil, storedErr
	}
	return c.envelopeEngine, nil
}

// initEnvelopeEngine creates the envelope engine with all its dependencies.
func (c *Container) initEnvelopeEngine() (envelopeUseCase.EnvelopeEngine, error) {
	keyStore, err := c.KeyStore()
	if err != nil {
		return nil, fmt.Errorf("failed to get key store for envelope engine: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for envelope engine: %w", err)
	}

	engine := envelopeUseCase.NewEnvelopeEngine(keyStore, c.AEADManager())
	return envelopeUseCase.NewEnvelopeEngineWithMetrics(engine, businessMetrics), nil
}
