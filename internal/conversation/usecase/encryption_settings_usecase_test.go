package usecase

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	conversationDomain "github.com/linguachat/encryption/internal/conversation/domain"
	conversationMocks "github.com/linguachat/encryption/internal/conversation/usecase/mocks"
	cryptoDomain "github.com/linguachat/encryption/internal/crypto/domain"
	cryptoMocks "github.com/linguachat/encryption/internal/crypto/usecase/mocks"
	envelopeDomain "github.com/linguachat/encryption/internal/envelope/domain"
	apperrors "github.com/linguachat/encryption/internal/errors"
)

// passthroughTxManager runs the unit without a real transaction.
type passthroughTxManager struct{}

func (passthroughTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// markingTxManager tags the context it hands to the unit so tests can tell
// which calls ran inside the transaction scope.
type markingTxManager struct{}

type txScopeKey struct{}

func (markingTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(context.WithValue(ctx, txScopeKey{}, true))
}

func inTxScope(ctx context.Context) bool {
	tagged, _ := ctx.Value(txScopeKey{}).(bool)
	return tagged
}

type settingsFixture struct {
	repo       *conversationMocks.MockSettingsRepository
	keyStore   *cryptoMocks.MockKeyStore
	authorizer *conversationMocks.MockMembershipAuthorizer
	publisher  *conversationMocks.MockNoticePublisher
	settings   EncryptionSettings
}

func newSettingsFixture(t *testing.T) *settingsFixture {
	t.Helper()
	f := &settingsFixture{
		repo:       &conversationMocks.MockSettingsRepository{},
		keyStore:   &cryptoMocks.MockKeyStore{},
		authorizer: &conversationMocks.MockMembershipAuthorizer{},
		publisher:  &conversationMocks.MockNoticePublisher{},
	}
	f.settings = NewEncryptionSettings(
		f.repo,
		f.keyStore,
		f.authorizer,
		f.publisher,
		passthroughTxManager{},
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	return f
}

func (f *settingsFixture) assertExpectations(t *testing.T) {
	f.repo.AssertExpectations(t)
	f.keyStore.AssertExpectations(t)
	f.authorizer.AssertExpectations(t)
	f.publisher.AssertExpectations(t)
}

func TestEncryptionSettings_Enable(t *testing.T) {
	ctx := context.Background()

	t.Run("ServerMode", func(t *testing.T) {
		f := newSettingsFixture(t)

		keyID := uuid.Must(uuid.NewV7())
		conversationID := "conversation-1"
		f.authorizer.On("IsConversationAdmin", ctx, conversationID, "user-1").
			Return(true, nil).Once()
		f.repo.On("Get", ctx, conversationID).
			Return(nil, conversationDomain.ErrSettingsNotFound).Once()
		f.keyStore.On("GetOrCreateConversationKey", ctx, conversationID).
			Return(&cryptoDomain.WrappedConversationKey{ID: keyID, ConversationID: &conversationID}, nil).Once()
		f.repo.On("Create", mock.Anything, mock.MatchedBy(func(s *conversationDomain.ConversationEncryptionSettings) bool {
			return s.ConversationID == conversationID &&
				s.Mode != nil && *s.Mode == envelopeDomain.ModeServer &&
				s.Protocol != nil && *s.Protocol == envelopeDomain.ProtocolServerAEAD &&
				s.ServerKeyID != nil && *s.ServerKeyID == keyID
		})).Return(nil).Once()
		f.publisher.On("PublishEncryptionEnabled", ctx, conversationID, envelopeDomain.ModeServer, "user-1").
			Return(nil).Once()

		settings, err := f.settings.Enable(ctx, conversationID, envelopeDomain.ModeServer, "user-1")

		require.NoError(t, err)
		assert.Equal(t, conversationID, settings.ConversationID)
		require.NotNil(t, settings.EnabledAt)
		assert.WithinDuration(t, time.Now().UTC(), *settings.EnabledAt, time.Minute)
		require.NotNil(t, settings.EnabledBy)
		assert.Equal(t, "user-1", *settings.EnabledBy)
		require.NotNil(t, settings.ServerKeyID)
		assert.Equal(t, keyID, *settings.ServerKeyID)
		f.assertExpectations(t)
	})

	t.Run("E2EEModeSkipsKeyStore", func(t *testing.T) {
		f := newSettingsFixture(t)

		f.authorizer.On("IsConversationAdmin", ctx, "conversation-2", "user-1").
			Return(true, nil).Once()
		f.repo.On("Get", ctx, "conversation-2").
			Return(nil, conversationDomain.ErrSettingsNotFound).Once()
		f.repo.On("Create", mock.Anything, mock.MatchedBy(func(s *conversationDomain.ConversationEncryptionSettings) bool {
			return s.Mode != nil && *s.Mode == envelopeDomain.ModeE2EE &&
				s.Protocol != nil && *s.Protocol == envelopeDomain.ProtocolE2EE &&
				s.ServerKeyID == nil
		})).Return(nil).Once()
		f.publisher.On("PublishEncryptionEnabled", ctx, "conversation-2", envelopeDomain.ModeE2EE, "user-1").
			Return(nil).Once()

		settings, err := f.settings.Enable(ctx, "conversation-2", envelopeDomain.ModeE2EE, "user-1")

		require.NoError(t, err)
		assert.Nil(t, settings.ServerKeyID)
		f.keyStore.AssertNotCalled(t, "GetOrCreateConversationKey", mock.Anything, mock.Anything)
		f.assertExpectations(t)
	})

	t.Run("InvalidMode", func(t *testing.T) {
		f := newSettingsFixture(t)

		_, err := f.settings.Enable(ctx, "conversation-3", envelopeDomain.Mode("plaintext"), "user-1")

		assert.ErrorIs(t, err, envelopeDomain.ErrUnknownMode)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		f.authorizer.AssertNotCalled(t, "IsConversationAdmin", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("NotAdmin", func(t *testing.T) {
		f := newSettingsFixture(t)

		f.authorizer.On("IsConversationAdmin", ctx, "conversation-4", "user-2").
			Return(false, nil).Once()

		_, err := f.settings.Enable(ctx, "conversation-4", envelopeDomain.ModeServer, "user-2")

		assert.ErrorIs(t, err, conversationDomain.ErrNotConversationAdmin)
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
		f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("AlreadyEnabled", func(t *testing.T) {
		f := newSettingsFixture(t)

		mode := envelopeDomain.ModeE2EE
		current := &conversationDomain.ConversationEncryptionSettings{
			ConversationID: "conversation-5",
			Mode:           &mode,
		}
		f.authorizer.On("IsConversationAdmin", ctx, "conversation-5", "user-1").
			Return(true, nil).Once()
		f.repo.On("Get", ctx, "conversation-5").
			Return(current, nil).Once()

		_, err := f.settings.Enable(ctx, "conversation-5", envelopeDomain.ModeServer, "user-1")

		var conflictErr *conversationDomain.StateConflictError
		require.ErrorAs(t, err, &conflictErr)
		assert.ErrorIs(t, err, apperrors.ErrConflict)
		assert.Equal(t, current, conflictErr.Current)
		f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("InsertRaceReportsWinner", func(t *testing.T) {
		f := newSettingsFixture(t)

		mode := envelopeDomain.ModeServer
		winner := &conversationDomain.ConversationEncryptionSettings{
			ConversationID: "conversation-6",
			Mode:           &mode,
		}
		f.authorizer.On("IsConversationAdmin", ctx, "conversation-6", "user-1").
			Return(true, nil).Once()
		f.repo.On("Get", ctx, "conversation-6").
			Return(nil, conversationDomain.ErrSettingsNotFound).Once()
		f.repo.On("Create", mock.Anything, mock.Anything).
			Return(conversationDomain.ErrSettingsAlreadyExist).Once()
		f.repo.On("Get", ctx, "conversation-6").
			Return(winner, nil).Once()

		_, err := f.settings.Enable(ctx, "conversation-6", envelopeDomain.ModeE2EE, "user-1")

		var conflictErr *conversationDomain.StateConflictError
		require.ErrorAs(t, err, &conflictErr)
		assert.Equal(t, winner, conflictErr.Current)
		f.publisher.AssertNotCalled(t, "PublishEncryptionEnabled", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("ServerKeyMintedInsideSettingsTransaction", func(t *testing.T) {
		f := newSettingsFixture(t)
		f.settings = NewEncryptionSettings(
			f.repo,
			f.keyStore,
			f.authorizer,
			f.publisher,
			markingTxManager{},
			slog.New(slog.NewTextHandler(io.Discard, nil)),
		)

		keyID := uuid.Must(uuid.NewV7())
		conversationID := "conversation-8"
		f.authorizer.On("IsConversationAdmin", ctx, conversationID, "user-1").
			Return(true, nil).Once()
		f.repo.On("Get", ctx, conversationID).
			Return(nil, conversationDomain.ErrSettingsNotFound).Once()

		// The key row and the settings row share the transaction, so a lost
		// insert race rolls the key back instead of orphaning it.
		f.keyStore.On("GetOrCreateConversationKey", mock.MatchedBy(inTxScope), conversationID).
			Return(&cryptoDomain.WrappedConversationKey{ID: keyID, ConversationID: &conversationID}, nil).Once()
		f.repo.On("Create", mock.MatchedBy(inTxScope), mock.Anything).
			Return(nil).Once()
		f.publisher.On("PublishEncryptionEnabled", ctx, conversationID, envelopeDomain.ModeServer, "user-1").
			Return(nil).Once()

		settings, err := f.settings.Enable(ctx, conversationID, envelopeDomain.ModeServer, "user-1")

		require.NoError(t, err)
		require.NotNil(t, settings.ServerKeyID)
		assert.Equal(t, keyID, *settings.ServerKeyID)
		f.assertExpectations(t)
	})

	t.Run("PublisherFailureDoesNotFailEnable", func(t *testing.T) {
		f := newSettingsFixture(t)

		f.authorizer.On("IsConversationAdmin", ctx, "conversation-7", "user-1").
			Return(true, nil).Once()
		f.repo.On("Get", ctx, "conversation-7").
			Return(nil, conversationDomain.ErrSettingsNotFound).Once()
		f.repo.On("Create", mock.Anything, mock.Anything).
			Return(nil).Once()
		f.publisher.On("PublishEncryptionEnabled", ctx, "conversation-7", envelopeDomain.ModeE2EE, "user-1").
			Return(apperrors.New("broker unavailable")).Once()

		settings, err := f.settings.Enable(ctx, "conversation-7", envelopeDomain.ModeE2EE, "user-1")

		require.NoError(t, err)
		assert.NotNil(t, settings)
		f.assertExpectations(t)
	})
}

func TestEncryptionSettings_Status(t *testing.T) {
	ctx := context.Background()

	t.Run("NeverEnabled", func(t *testing.T) {
		f := newSettingsFixture(t)

		f.repo.On("Get", ctx, "conversation-1").
			Return(nil, conversationDomain.ErrSettingsNotFound).Once()

		status, err := f.settings.Status(ctx, "conversation-1")

		require.NoError(t, err)
		assert.False(t, status.IsEncrypted)
		assert.True(t, status.CanTranslate)
	})

	t.Run("ServerMode", func(t *testing.T) {
		f := newSettingsFixture(t)

		mode := envelopeDomain.ModeServer
		enabledBy := "user-1"
		f.repo.On("Get", ctx, "conversation-2").
			Return(&conversationDomain.ConversationEncryptionSettings{
				ConversationID: "conversation-2",
				Mode:           &mode,
				EnabledBy:      &enabledBy,
			}, nil).Once()

		status, err := f.settings.Status(ctx, "conversation-2")

		require.NoError(t, err)
		assert.True(t, status.IsEncrypted)
		assert.True(t, status.CanTranslate)
		assert.Equal(t, "user-1", *status.EnabledBy)
	})

	t.Run("E2EEMode", func(t *testing.T) {
		f := newSettingsFixture(t)

		mode := envelopeDomain.ModeE2EE
		f.repo.On("Get", ctx, "conversation-3").
			Return(&conversationDomain.ConversationEncryptionSettings{
				ConversationID: "conversation-3",
				Mode:           &mode,
			}, nil).Once()

		status, err := f.settings.Status(ctx, "conversation-3")

		require.NoError(t, err)
		assert.True(t, status.IsEncrypted)
		assert.False(t, status.CanTranslate)
	})

	t.Run("RepositoryError", func(t *testing.T) {
		f := newSettingsFixture(t)

		repoErr := apperrors.New("connection lost")
		f.repo.On("Get", ctx, "conversation-4").
			Return(nil, repoErr).Once()

		_, err := f.settings.Status(ctx, "conversation-4")

		assert.Equal(t, repoErr, err)
	})
}
