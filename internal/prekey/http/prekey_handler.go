// Package http provides the HTTP handler for pre-key bundle issuance.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/linguachat/encryption/internal/httputil"
	prekeyService "github.com/linguachat/encryption/internal/prekey/service"
)

// PreKeyHandler handles HTTP requests for pre-key bundle issuance.
type PreKeyHandler struct {
	issuer prekeyService.Issuer
	logger *slog.Logger
}

// NewPreKeyHandler creates a new pre-key handler with required dependencies.
func NewPreKeyHandler(issuer prekeyService.Issuer, logger *slog.Logger) *PreKeyHandler {
	return &PreKeyHandler{
		issuer: issuer,
		logger: logger,
	}
}

// GenerateBundleHandler issues a fresh pre-key bundle.
// POST /v1/prekeys/bundle
// Returns 201 Created with the bundle in the response envelope; key material
// is base64 in JSON.
func (h *PreKeyHandler) GenerateBundleHandler(c *gin.Context) {
	bundle, err := h.issuer.GenerateBundle(c.Request.Context())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, httputil.SuccessResponse(bundle))
}
