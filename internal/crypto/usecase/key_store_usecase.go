package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	cryptoDomain "github.com/linguachat/encryption/internal/crypto/domain"
	cryptoService "github.com/linguachat/encryption/internal/crypto/service"
	"github.com/linguachat/encryption/internal/errors"
)

type keyStoreUseCase struct {
	wrappedKeyRepo WrappedKeyRepository
	keyWrapper     cryptoService.KeyWrapper
	createGroup    singleflight.Group
}

// NewKeyStore creates a KeyStore backed by the given repository and key
// wrapper.
func NewKeyStore(wrappedKeyRepo WrappedKeyRepository, keyWrapper cryptoService.KeyWrapper) KeyStore {
	return &keyStoreUseCase{
		wrappedKeyRepo: wrappedKeyRepo,
		keyWrapper:     keyWrapper,
	}
}

// GetOrCreateConversationKey returns the single wrapped key for a
// conversation, minting one on first use.
//
// Two layers collapse concurrent creates into one key. singleflight merges
// racing callers within this process; the unique index on conversation_id
// catches races across processes, turning the losing insert into a refetch of
// the winner's record.
func (k *keyStoreUseCase) GetOrCreateConversationKey(
	ctx context.Context,
	conversationID string,
) (*cryptoDomain.WrappedConversationKey, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// The flight is shared by every caller racing on this conversation, so
	// it must not die with whichever caller happened to start it. Context
	// values, including an ambient transaction, still flow through.
	flightCtx := context.WithoutCancel(ctx)
	result, err, _ := k.createGroup.Do(conversationID, func() (any, error) {
		return k.getOrCreate(flightCtx, conversationID)
	})
	if err != nil {
		return nil, err
	}
	return result.(*cryptoDomain.WrappedConversationKey), nil
}

func (k *keyStoreUseCase) getOrCreate(
	ctx context.Context,
	conversationID string,
) (*cryptoDomain.WrappedConversationKey, error) {
	key, err := k.wrappedKeyRepo.GetByConversationID(ctx, conversationID)
	if err == nil {
		return key, nil
	}
	if !errors.Is(err, cryptoDomain.ErrWrappedKeyNotFound) {
		return nil, err
	}

	plainKey, err := k.keyWrapper.GenerateKey()
	if err != nil {
		return nil, err
	}
	defer cryptoDomain.Zero(plainKey)

	material, err := k.keyWrapper.Wrap(plainKey)
	if err != nil {
		return nil, err
	}

	key = &cryptoDomain.WrappedConversationKey{
		ID:             uuid.Must(uuid.NewV7()),
		ConversationID: &conversationID,
		Algorithm:      k.keyWrapper.Algorithm(),
		Purpose:        cryptoDomain.PurposeConversationData,
		WrappedKey:     material.WrappedKey,
		Nonce:          material.Nonce,
		AuthTag:        material.AuthTag,
		CreatedAt:      time.Now().UTC(),
	}

	err = k.wrappedKeyRepo.Create(ctx, key)
	if errors.Is(err, cryptoDomain.ErrWrappedKeyAlreadyExists) {
		// Another process won the insert race; its key is the real one.
		return k.wrappedKeyRepo.GetByConversationID(ctx, conversationID)
	}
	if err != nil {
		return nil, err
	}

	return key, nil
}

// ResolveConversationKey returns the plaintext content key for a
// conversation.
func (k *keyStoreUseCase) ResolveConversationKey(
	ctx context.Context,
	conversationID string,
) (*ResolvedKey, error) {
	key, err := k.GetOrCreateConversationKey(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	return k.unwrap(ctx, key)
}

// ResolveKeyByID returns the plaintext content key for an explicit key
// reference.
func (k *keyStoreUseCase) ResolveKeyByID(ctx context.Context, keyID uuid.UUID) (*ResolvedKey, error) {
	key, err := k.wrappedKeyRepo.Get(ctx, keyID)
	if err != nil {
		return nil, err
	}
	return k.unwrap(ctx, key)
}

func (k *keyStoreUseCase) unwrap(
	ctx context.Context,
	key *cryptoDomain.WrappedConversationKey,
) (*ResolvedKey, error) {
	plainKey, err := k.keyWrapper.Unwrap(cryptoService.WrappedKeyMaterial{
		WrappedKey: key.WrappedKey,
		Nonce:      key.Nonce,
		AuthTag:    key.AuthTag,
	})
	if err != nil {
		return nil, err
	}

	// Best effort: a failed touch must not fail the caller's operation.
	if touchErr := k.wrappedKeyRepo.TouchLastAccessed(ctx, key.ID, time.Now().UTC()); touchErr != nil {
		slog.WarnContext(ctx, "failed to update key last accessed timestamp",
			"key_id", key.ID.String(),
			"error", touchErr,
		)
	}

	return &ResolvedKey{
		ID:        key.ID,
		Algorithm: key.Algorithm,
		Key:       plainKey,
	}, nil
}
