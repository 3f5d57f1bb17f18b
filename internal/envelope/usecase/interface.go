// Package usecase implements the envelope engine: server-side encryption,
// decryption, and translation re-encryption of message content.
package usecase

import (
	"context"

	envelopeDomain "github.com/linguachat/encryption/internal/envelope/domain"
)

// EnvelopeEngine defines the message-content encryption operations exposed
// to the messaging pipeline.
//
// The engine only ever operates in server mode. E2ee envelopes are refused
// on every operation: clients own those keys and the server must not
// encrypt, decrypt, or re-encrypt on their behalf.
type EnvelopeEngine interface {
	// EncryptMessage encrypts plaintext for a conversation and returns a
	// self-describing envelope. Repeated calls for the same conversation
	// use the same key but a fresh IV every time. Empty plaintext is
	// legal; payloads above the message size ceiling are rejected.
	EncryptMessage(
		ctx context.Context,
		plaintext []byte,
		mode envelopeDomain.Mode,
		conversationID string,
	) (*envelopeDomain.EncryptedPayload, error)

	// DecryptMessage recovers the plaintext from an envelope. Tampered
	// ciphertext, tampered tag, and wrong key all surface as one generic
	// decryption failure.
	DecryptMessage(ctx context.Context, payload *envelopeDomain.EncryptedPayload) ([]byte, error)

	// TranslateAndReEncrypt encrypts translated plaintext under the same
	// key as the original envelope with a freshly minted IV. The original
	// envelope remains decryptable.
	TranslateAndReEncrypt(
		ctx context.Context,
		original *envelopeDomain.EncryptedPayload,
		translatedPlaintext []byte,
	) (*envelopeDomain.EncryptedPayload, error)
}
