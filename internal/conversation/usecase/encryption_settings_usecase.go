package usecase

import (
	"context"
	"log/slog"
	"time"

	conversationDomain "github.com/linguachat/encryption/internal/conversation/domain"
	cryptoUsecase "github.com/linguachat/encryption/internal/crypto/usecase"
	"github.com/linguachat/encryption/internal/database"
	envelopeDomain "github.com/linguachat/encryption/internal/envelope/domain"
	"github.com/linguachat/encryption/internal/errors"
)

type encryptionSettingsUseCase struct {
	settingsRepo SettingsRepository
	keyStore     cryptoUsecase.KeyStore
	authorizer   MembershipAuthorizer
	publisher    NoticePublisher
	txManager    database.TxManager
	logger       *slog.Logger
}

// NewEncryptionSettings creates the conversation encryption state machine.
func NewEncryptionSettings(
	settingsRepo SettingsRepository,
	keyStore cryptoUsecase.KeyStore,
	authorizer MembershipAuthorizer,
	publisher NoticePublisher,
	txManager database.TxManager,
	logger *slog.Logger,
) EncryptionSettings {
	return &encryptionSettingsUseCase{
		settingsRepo: settingsRepo,
		keyStore:     keyStore,
		authorizer:   authorizer,
		publisher:    publisher,
		txManager:    txManager,
		logger:       logger,
	}
}

// Enable turns encryption on for a conversation.
func (e *encryptionSettingsUseCase) Enable(
	ctx context.Context,
	conversationID string,
	mode envelopeDomain.Mode,
	actorID string,
) (*conversationDomain.ConversationEncryptionSettings, error) {
	if mode != envelopeDomain.ModeServer && mode != envelopeDomain.ModeE2EE {
		return nil, envelopeDomain.ErrUnknownMode
	}

	isAdmin, err := e.authorizer.IsConversationAdmin(ctx, conversationID, actorID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to check conversation membership")
	}
	if !isAdmin {
		return nil, conversationDomain.ErrNotConversationAdmin
	}

	if current, err := e.settingsRepo.Get(ctx, conversationID); err == nil {
		return nil, &conversationDomain.StateConflictError{Current: current}
	} else if !errors.Is(err, conversationDomain.ErrSettingsNotFound) {
		return nil, err
	}

	protocol := envelopeDomain.ProtocolForMode(mode)
	enabledAt := time.Now().UTC()
	settings := &conversationDomain.ConversationEncryptionSettings{
		ConversationID: conversationID,
		Mode:           &mode,
		Protocol:       &protocol,
		EnabledAt:      &enabledAt,
		EnabledBy:      &actorID,
	}

	// Server mode provisions the content key up front so the first message
	// does not pay the minting cost. E2ee conversations never get a server
	// key. Minting happens inside the settings transaction: if a racing
	// enable wins the insert, the freshly minted key row rolls back with it
	// instead of lingering with no settings referencing it.
	err = e.txManager.WithTx(ctx, func(ctx context.Context) error {
		if mode == envelopeDomain.ModeServer {
			key, err := e.keyStore.GetOrCreateConversationKey(ctx, conversationID)
			if err != nil {
				return err
			}
			settings.ServerKeyID = &key.ID
		}
		return e.settingsRepo.Create(ctx, settings)
	})
	if errors.Is(err, conversationDomain.ErrSettingsAlreadyExist) {
		// A racing enable won. Report the conflict with the winner's state.
		current, getErr := e.settingsRepo.Get(ctx, conversationID)
		if getErr != nil {
			return nil, getErr
		}
		return nil, &conversationDomain.StateConflictError{Current: current}
	}
	if err != nil {
		return nil, err
	}

	// Best effort: the notice must not undo a committed enable.
	if pubErr := e.publisher.PublishEncryptionEnabled(ctx, conversationID, mode, actorID); pubErr != nil {
		e.logger.WarnContext(ctx, "failed to publish encryption enabled notice",
			slog.String("conversation_id", conversationID),
			slog.Any("error", pubErr),
		)
	}

	e.logger.InfoContext(ctx, "conversation encryption enabled",
		slog.String("conversation_id", conversationID),
		slog.String("mode", string(mode)),
		slog.String("enabled_by", actorID),
	)

	return settings, nil
}

// Status reports the conversation's encryption state.
func (e *encryptionSettingsUseCase) Status(
	ctx context.Context,
	conversationID string,
) (*conversationDomain.EncryptionStatus, error) {
	settings, err := e.settingsRepo.Get(ctx, conversationID)
	if errors.Is(err, conversationDomain.ErrSettingsNotFound) {
		return conversationDomain.StatusFor(nil), nil
	}
	if err != nil {
		return nil, err
	}
	return conversationDomain.StatusFor(settings), nil
}
