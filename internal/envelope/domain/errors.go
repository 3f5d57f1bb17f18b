package domain

import (
	"github.com/linguachat/encryption/internal/errors"
)

// Refusal codes for operations the server must never perform on e2ee
// content. Stable identifiers shared with clients.
const (
	CodeServerEncryptE2EE = "E2EE_SERVER_ENCRYPT_FORBIDDEN"
	CodeServerDecryptE2EE = "E2EE_SERVER_DECRYPT_FORBIDDEN"
	CodeTranslateE2EE     = "E2EE_TRANSLATE_FORBIDDEN"
)

var (
	// ErrServerEncryptE2EE rejects any request for the server to encrypt
	// content on a client's behalf in e2ee mode.
	ErrServerEncryptE2EE = errors.Wrap(errors.ErrInvalidInput, CodeServerEncryptE2EE)

	// ErrServerDecryptE2EE rejects server-side decryption of e2ee envelopes.
	ErrServerDecryptE2EE = errors.Wrap(errors.ErrInvalidInput, CodeServerDecryptE2EE)

	// ErrTranslateE2EE rejects translation re-encryption of e2ee envelopes;
	// the server cannot read them, so it cannot re-encrypt a translation.
	ErrTranslateE2EE = errors.Wrap(errors.ErrInvalidInput, CodeTranslateE2EE)

	// ErrUnknownMode rejects modes outside {server, e2ee}.
	ErrUnknownMode = errors.Wrap(errors.ErrInvalidInput, "unknown encryption mode")

	// ErrMalformedEnvelope rejects envelopes whose base64 fields do not
	// decode. Distinct from a tag failure: the envelope never reached the
	// cipher.
	ErrMalformedEnvelope = errors.Wrap(errors.ErrInvalidInput, "malformed envelope")
)
