package usecase

import (
	"context"
	"encoding/base64"

	"github.com/google/uuid"

	cryptoDomain "github.com/linguachat/encryption/internal/crypto/domain"
	cryptoService "github.com/linguachat/encryption/internal/crypto/service"
	cryptoUsecase "github.com/linguachat/encryption/internal/crypto/usecase"
	envelopeDomain "github.com/linguachat/encryption/internal/envelope/domain"
	"github.com/linguachat/encryption/internal/guard"
)

type envelopeEngine struct {
	keyStore    cryptoUsecase.KeyStore
	aeadManager cryptoService.AEADManager
}

// NewEnvelopeEngine creates an EnvelopeEngine backed by the given key store
// and AEAD manager.
func NewEnvelopeEngine(keyStore cryptoUsecase.KeyStore, aeadManager cryptoService.AEADManager) EnvelopeEngine {
	return &envelopeEngine{
		keyStore:    keyStore,
		aeadManager: aeadManager,
	}
}

// EncryptMessage encrypts plaintext under the conversation's content key.
func (e *envelopeEngine) EncryptMessage(
	ctx context.Context,
	plaintext []byte,
	mode envelopeDomain.Mode,
	conversationID string,
) (*envelopeDomain.EncryptedPayload, error) {
	switch mode {
	case envelopeDomain.ModeServer:
	case envelopeDomain.ModeE2EE:
		return nil, envelopeDomain.ErrServerEncryptE2EE
	default:
		return nil, envelopeDomain.ErrUnknownMode
	}

	// Empty messages are legal here; only the ceiling applies.
	if len(plaintext) > 0 {
		if err := guard.MessageSize(plaintext); err != nil {
			return nil, err
		}
	}

	key, err := e.keyStore.ResolveConversationKey(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	defer cryptoDomain.Zero(key.Key)

	return e.seal(plaintext, key)
}

// DecryptMessage recovers plaintext from a server-mode envelope.
func (e *envelopeEngine) DecryptMessage(
	ctx context.Context,
	payload *envelopeDomain.EncryptedPayload,
) ([]byte, error) {
	if payload.Metadata.Mode == envelopeDomain.ModeE2EE {
		return nil, envelopeDomain.ErrServerDecryptE2EE
	}
	if payload.Metadata.Mode != envelopeDomain.ModeServer {
		return nil, envelopeDomain.ErrUnknownMode
	}

	sealed, iv, err := decodeEnvelopeParts(payload)
	if err != nil {
		return nil, err
	}

	keyID, err := uuid.Parse(payload.Metadata.KeyID)
	if err != nil {
		// A reference that never was a key id is treated the same as a
		// stale one.
		return nil, cryptoDomain.ErrWrappedKeyNotFound
	}

	key, err := e.keyStore.ResolveKeyByID(ctx, keyID)
	if err != nil {
		return nil, err
	}
	defer cryptoDomain.Zero(key.Key)

	aead, err := e.aeadManager.CreateCipher(key.Key, key.Algorithm)
	if err != nil {
		return nil, err
	}

	plaintext, err := aead.Decrypt(sealed, iv, nil)
	if err != nil {
		// One generic failure for every cause: no tag/ciphertext oracle.
		return nil, cryptoDomain.ErrDecryptionFailed
	}

	return plaintext, nil
}

// TranslateAndReEncrypt seals translated plaintext under the original
// envelope's key. The fresh IV comes from the AEAD's per-call nonce
// generation; the original IV is never reused for the new plaintext.
func (e *envelopeEngine) TranslateAndReEncrypt(
	ctx context.Context,
	original *envelopeDomain.EncryptedPayload,
	translatedPlaintext []byte,
) (*envelopeDomain.EncryptedPayload, error) {
	if original.Metadata.Mode == envelopeDomain.ModeE2EE {
		return nil, envelopeDomain.ErrTranslateE2EE
	}
	if original.Metadata.Mode != envelopeDomain.ModeServer {
		return nil, envelopeDomain.ErrUnknownMode
	}

	if len(translatedPlaintext) > 0 {
		if err := guard.MessageSize(translatedPlaintext); err != nil {
			return nil, err
		}
	}

	keyID, err := uuid.Parse(original.Metadata.KeyID)
	if err != nil {
		return nil, cryptoDomain.ErrWrappedKeyNotFound
	}

	key, err := e.keyStore.ResolveKeyByID(ctx, keyID)
	if err != nil {
		return nil, err
	}
	defer cryptoDomain.Zero(key.Key)

	return e.seal(translatedPlaintext, key)
}

// seal AEAD-encrypts plaintext with the resolved key and assembles the
// envelope. The tag is split off the sealed output so ciphertext, IV, and
// tag travel as separate fields.
func (e *envelopeEngine) seal(
	plaintext []byte,
	key *cryptoUsecase.ResolvedKey,
) (*envelopeDomain.EncryptedPayload, error) {
	aead, err := e.aeadManager.CreateCipher(key.Key, key.Algorithm)
	if err != nil {
		return nil, err
	}

	sealed, nonce, err := aead.Encrypt(plaintext, nil)
	if err != nil {
		return nil, err
	}

	tagStart := len(sealed) - guard.TagSize
	return &envelopeDomain.EncryptedPayload{
		Ciphertext: base64.StdEncoding.EncodeToString(sealed[:tagStart]),
		Metadata: envelopeDomain.Metadata{
			Mode:     envelopeDomain.ModeServer,
			Protocol: envelopeDomain.ProtocolServerAEAD,
			KeyID:    key.ID.String(),
			IV:       base64.StdEncoding.EncodeToString(nonce),
			AuthTag:  base64.StdEncoding.EncodeToString(sealed[tagStart:]),
		},
	}, nil
}

// decodeEnvelopeParts base64-decodes an envelope, rejoins ciphertext and
// tag into the sealed buffer the AEAD expects, and bound-checks all parts.
func decodeEnvelopeParts(payload *envelopeDomain.EncryptedPayload) (sealed, iv []byte, err error) {
	ciphertext, err := base64.StdEncoding.DecodeString(payload.Ciphertext)
	if err != nil {
		return nil, nil, envelopeDomain.ErrMalformedEnvelope
	}
	iv, err = base64.StdEncoding.DecodeString(payload.Metadata.IV)
	if err != nil {
		return nil, nil, envelopeDomain.ErrMalformedEnvelope
	}
	authTag, err := base64.StdEncoding.DecodeString(payload.Metadata.AuthTag)
	if err != nil {
		return nil, nil, envelopeDomain.ErrMalformedEnvelope
	}

	sealed = make([]byte, 0, len(ciphertext)+len(authTag))
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, authTag...)

	if err := guard.EncryptedPayloadParts(sealed, iv, authTag); err != nil {
		return nil, nil, err
	}

	return sealed, iv, nil
}
