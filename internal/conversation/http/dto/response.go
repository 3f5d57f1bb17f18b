package dto

import (
	"time"

	conversationDomain "github.com/linguachat/encryption/internal/conversation/domain"
	"github.com/linguachat/encryption/internal/httputil"
)

// SuccessEnvelope builds a success response around the given data.
func SuccessEnvelope(data any) httputil.Response {
	return httputil.SuccessResponse(data)
}

// ErrorEnvelope builds a failure response.
func ErrorEnvelope(code, message string, details any) httputil.Response {
	return httputil.ErrorResponse(code, message, details)
}

// EnableEncryptionResponse is the data payload after a successful enable.
type EnableEncryptionResponse struct {
	ConversationID string     `json:"conversationId"`
	Mode           string     `json:"mode"`
	Protocol       string     `json:"protocol"`
	EnabledAt      *time.Time `json:"enabledAt"`
	EnabledBy      string     `json:"enabledBy"`
}

// StateConflictDetails echoes the current settings when encryption is
// already enabled.
type StateConflictDetails struct {
	CurrentMode string     `json:"currentMode"`
	EnabledAt   *time.Time `json:"enabledAt"`
}

// EncryptionStatusResponse is the data payload of the status endpoint.
type EncryptionStatusResponse struct {
	IsEncrypted  bool       `json:"isEncrypted"`
	Mode         *string    `json:"mode"`
	EnabledAt    *time.Time `json:"enabledAt"`
	EnabledBy    *string    `json:"enabledBy"`
	CanTranslate bool       `json:"canTranslate"`
}

// MapSettingsToEnableResponse converts domain settings to the enable
// response payload.
func MapSettingsToEnableResponse(
	settings *conversationDomain.ConversationEncryptionSettings,
) EnableEncryptionResponse {
	resp := EnableEncryptionResponse{
		ConversationID: settings.ConversationID,
		EnabledAt:      settings.EnabledAt,
	}
	if settings.Mode != nil {
		resp.Mode = string(*settings.Mode)
	}
	if settings.Protocol != nil {
		resp.Protocol = *settings.Protocol
	}
	if settings.EnabledBy != nil {
		resp.EnabledBy = *settings.EnabledBy
	}
	return resp
}

// MapConflictToDetails converts a state conflict into the details echoed
// back to the caller.
func MapConflictToDetails(conflict *conversationDomain.StateConflictError) StateConflictDetails {
	details := StateConflictDetails{}
	if conflict.Current != nil {
		if conflict.Current.Mode != nil {
			details.CurrentMode = string(*conflict.Current.Mode)
		}
		details.EnabledAt = conflict.Current.EnabledAt
	}
	return details
}

// MapStatusToResponse converts the domain status read model to the
// response payload.
func MapStatusToResponse(status *conversationDomain.EncryptionStatus) EncryptionStatusResponse {
	resp := EncryptionStatusResponse{
		IsEncrypted:  status.IsEncrypted,
		EnabledAt:    status.EnabledAt,
		EnabledBy:    status.EnabledBy,
		CanTranslate: status.CanTranslate,
	}
	if status.Mode != nil {
		mode := string(*status.Mode)
		resp.Mode = &mode
	}
	return resp
}
