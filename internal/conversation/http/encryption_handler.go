// Package http provides HTTP handlers for conversation encryption settings.
package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	conversationDomain "github.com/linguachat/encryption/internal/conversation/domain"
	"github.com/linguachat/encryption/internal/conversation/http/dto"
	conversationUseCase "github.com/linguachat/encryption/internal/conversation/usecase"
	envelopeDomain "github.com/linguachat/encryption/internal/envelope/domain"
	apperrors "github.com/linguachat/encryption/internal/errors"
	"github.com/linguachat/encryption/internal/httputil"
	customValidation "github.com/linguachat/encryption/internal/validation"
)

// ActorIDHeader names the header carrying the authenticated actor id. The
// upstream auth boundary sets it; this service trusts it.
const ActorIDHeader = "X-Actor-ID"

// EncryptionHandler handles HTTP requests for conversation encryption state.
// Coordinates enable and status operations with EncryptionSettings.
type EncryptionHandler struct {
	encryptionSettings conversationUseCase.EncryptionSettings
	logger             *slog.Logger
}

// NewEncryptionHandler creates a new encryption handler with required dependencies.
func NewEncryptionHandler(
	encryptionSettings conversationUseCase.EncryptionSettings,
	logger *slog.Logger,
) *EncryptionHandler {
	return &EncryptionHandler{
		encryptionSettings: encryptionSettings,
		logger:             logger,
	}
}

// EnableHandler turns encryption on for a conversation.
// POST /v1/conversations/:id/encryption
// Returns 201 Created with the settings, 400 with the current state when
// encryption is already enabled, and 403 when the actor is not an admin.
func (h *EncryptionHandler) EnableHandler(c *gin.Context) {
	var req dto.EnableEncryptionRequest

	// Parse and bind JSON
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorEnvelope("bad_request", err.Error(), nil))
		return
	}

	// Validate request
	if err := req.Validate(); err != nil {
		wrapped := customValidation.WrapValidationError(err)
		h.logger.Warn("validation failed", slog.Any("error", wrapped))
		c.JSON(http.StatusBadRequest, dto.ErrorEnvelope("validation_error", err.Error(), nil))
		return
	}

	conversationID := c.Param("id")
	if conversationID == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorEnvelope(
			"bad_request",
			"conversation id is required in URL path",
			nil,
		))
		return
	}

	actorID := c.GetHeader(ActorIDHeader)
	if actorID == "" {
		httputil.HandleErrorGin(c,
			apperrors.Wrap(apperrors.ErrUnauthorized, fmt.Sprintf("missing %s header", ActorIDHeader)),
			h.logger)
		return
	}

	settings, err := h.encryptionSettings.Enable(
		c.Request.Context(),
		conversationID,
		envelopeDomain.Mode(req.Mode),
		actorID,
	)
	if err != nil {
		// An already enabled conversation is reported with its current
		// state so clients can reconcile instead of retrying.
		var conflictErr *conversationDomain.StateConflictError
		if apperrors.As(err, &conflictErr) {
			c.JSON(http.StatusBadRequest, dto.ErrorEnvelope(
				"encryption_already_enabled",
				conflictErr.Error(),
				dto.MapConflictToDetails(conflictErr),
			))
			return
		}
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.SuccessEnvelope(dto.MapSettingsToEnableResponse(settings)))
}

// StatusHandler reports a conversation's encryption state.
// GET /v1/conversations/:id/encryption
// Returns 200 OK; a conversation that never enabled encryption reports an
// unencrypted status rather than 404.
func (h *EncryptionHandler) StatusHandler(c *gin.Context) {
	conversationID := c.Param("id")
	if conversationID == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorEnvelope(
			"bad_request",
			"conversation id is required in URL path",
			nil,
		))
		return
	}

	status, err := h.encryptionSettings.Status(c.Request.Context(), conversationID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessEnvelope(dto.MapStatusToResponse(status)))
}
