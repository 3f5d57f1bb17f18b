package app

import (
	"fmt"

	prekeyHTTP "github.com/linguachat/encryption/internal/prekey/http"
	prekeyService "github.com/linguachat/encryption/internal/prekey/service"
)

// Issuer returns the pre-key bundle issuer.
func (c *Container) Issuer() (prekeyService.Issuer, error) {
	var err error
	c.issuerInit.Do(func() {
		c.issuer, err = c.initIssuer()
		if err != nil {
			c.initErrors["issuer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["issuer"]; exists {
		return nil, storedErr
	}
	return c.issuer, nil
}

// PreKeyHandler returns the pre-key HTTP handler.
func (c *Container) PreKeyHandler() (*prekeyHTTP.PreKeyHandler, error) {
	var err error
	c.prekeyHandlerInit.Do(func() {
		c.prekeyHandler, err = c.initPreKeyHandler()
		if err != nil {
			c.initErrors["prekeyHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["prekeyHandler"]; exists {
		return nil, storedErr
	}
	return c.prekeyHandler, nil
}

// initIssuer creates the pre-key bundle issuer with metrics.
func (c *Container) initIssuer() (prekeyService.Issuer, error) {
	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for issuer: %w", err)
	}

	return prekeyService.NewIssuerWithMetrics(prekeyService.NewIssuer(), businessMetrics), nil
}

// initPreKeyHandler creates the pre-key HTTP handler.
func (c *Container) initPreKeyHandler() (*prekeyHTTP.PreKeyHandler, error) {
	issuer, err := c.Issuer()
	if err != nil {
		return nil, fmt.Errorf("failed to get issuer for prekey handler: %w", err)
	}

	return prekeyHTTP.NewPreKeyHandler(issuer, c.Logger()), nil
}
