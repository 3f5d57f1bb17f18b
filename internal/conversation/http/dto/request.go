// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/linguachat/encryption/internal/validation"
)

// EnableEncryptionRequest contains the parameters for enabling encryption
// on a conversation.
type EnableEncryptionRequest struct {
	Mode string `json:"mode"` // "server" or "e2ee"
}

// Validate checks if the enable encryption request is valid.
func (r *EnableEncryptionRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Mode,
			validation.Required,
			customValidation.NotBlank,
			customValidation.EncryptionMode,
		),
	)
}
