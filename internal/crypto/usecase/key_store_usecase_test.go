package usecase_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/linguachat/encryption/internal/crypto/domain"
	cryptoService "github.com/linguachat/encryption/internal/crypto/service"
	serviceMocks "github.com/linguachat/encryption/internal/crypto/service/mocks"
	"github.com/linguachat/encryption/internal/crypto/usecase"
	usecaseMocks "github.com/linguachat/encryption/internal/crypto/usecase/mocks"
	apperrors "github.com/linguachat/encryption/internal/errors"
)

func createTestWrappedKey(conversationID string) *cryptoDomain.WrappedConversationKey {
	return &cryptoDomain.WrappedConversationKey{
		ID:             uuid.Must(uuid.NewV7()),
		ConversationID: &conversationID,
		Algorithm:      cryptoDomain.AESGCM,
		Purpose:        cryptoDomain.PurposeConversationData,
		WrappedKey:     []byte("wrapped-key-material-32-bytes-xx"),
		Nonce:          []byte("nonce-12byte"),
		AuthTag:        []byte("auth-tag-16bytes"),
		CreatedAt:      time.Now().UTC(),
	}
}

func TestKeyStore_GetOrCreateConversationKey(t *testing.T) {
	ctx := context.Background()

	t.Run("ReturnsExistingKey", func(t *testing.T) {
		mockRepo := &usecaseMocks.MockWrappedKeyRepository{}
		mockWrapper := &serviceMocks.MockKeyWrapper{}

		existing := createTestWrappedKey("conversation-1")
		mockRepo.On("GetByConversationID", mock.Anything, "conversation-1").
			Return(existing, nil).Once()

		keyStore := usecase.NewKeyStore(mockRepo, mockWrapper)
		key, err := keyStore.GetOrCreateConversationKey(ctx, "conversation-1")

		require.NoError(t, err)
		assert.Equal(t, existing.ID, key.ID)
		mockRepo.AssertExpectations(t)
		mockWrapper.AssertExpectations(t)
	})

	t.Run("CreatesKeyOnFirstUse", func(t *testing.T) {
		mockRepo := &usecaseMocks.MockWrappedKeyRepository{}
		mockWrapper := &serviceMocks.MockKeyWrapper{}

		plainKey := make([]byte, 32)
		material := cryptoService.WrappedKeyMaterial{
			WrappedKey: []byte("wrapped"),
			Nonce:      []byte("nonce-12byte"),
			AuthTag:    []byte("auth-tag-16bytes"),
		}

		mockRepo.On("GetByConversationID", mock.Anything, "conversation-2").
			Return(nil, cryptoDomain.ErrWrappedKeyNotFound).Once()
		mockWrapper.On("GenerateKey").Return(plainKey, nil).Once()
		mockWrapper.On("Wrap", plainKey).Return(material, nil).Once()
		mockWrapper.On("Algorithm").Return(cryptoDomain.AESGCM).Once()
		mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(key *cryptoDomain.WrappedConversationKey) bool {
			return key.ConversationID != nil &&
				*key.ConversationID == "conversation-2" &&
				key.Algorithm == cryptoDomain.AESGCM &&
				key.Purpose == cryptoDomain.PurposeConversationData
		})).Return(nil).Once()

		keyStore := usecase.NewKeyStore(mockRepo, mockWrapper)
		key, err := keyStore.GetOrCreateConversationKey(ctx, "conversation-2")

		require.NoError(t, err)
		assert.Equal(t, material.WrappedKey, key.WrappedKey)
		assert.Equal(t, material.Nonce, key.Nonce)
		assert.Equal(t, material.AuthTag, key.AuthTag)
		mockRepo.AssertExpectations(t)
		mockWrapper.AssertExpectations(t)
	})

	t.Run("RefetchesWhenInsertRaceLost", func(t *testing.T) {
		mockRepo := &usecaseMocks.MockWrappedKeyRepository{}
		mockWrapper := &serviceMocks.MockKeyWrapper{}

		winner := createTestWrappedKey("conversation-3")

		mockRepo.On("GetByConversationID", mock.Anything, "conversation-3").
			Return(nil, cryptoDomain.ErrWrappedKeyNotFound).Once()
		mockWrapper.On("GenerateKey").Return(make([]byte, 32), nil).Once()
		mockWrapper.On("Wrap", mock.Anything).
			Return(cryptoService.WrappedKeyMaterial{WrappedKey: []byte("w")}, nil).Once()
		mockWrapper.On("Algorithm").Return(cryptoDomain.AESGCM).Once()
		mockRepo.On("Create", mock.Anything, mock.Anything).
			Return(cryptoDomain.ErrWrappedKeyAlreadyExists).Once()
		mockRepo.On("GetByConversationID", mock.Anything, "conversation-3").
			Return(winner, nil).Once()

		keyStore := usecase.NewKeyStore(mockRepo, mockWrapper)
		key, err := keyStore.GetOrCreateConversationKey(ctx, "conversation-3")

		require.NoError(t, err)
		assert.Equal(t, winner.ID, key.ID)
		mockRepo.AssertExpectations(t)
	})

	t.Run("PropagatesRepositoryError", func(t *testing.T) {
		mockRepo := &usecaseMocks.MockWrappedKeyRepository{}
		mockWrapper := &serviceMocks.MockKeyWrapper{}

		mockRepo.On("GetByConversationID", mock.Anything, "conversation-4").
			Return(nil, apperrors.New("connection refused")).Once()

		keyStore := usecase.NewKeyStore(mockRepo, mockWrapper)
		_, err := keyStore.GetOrCreateConversationKey(ctx, "conversation-4")

		assert.Error(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("CancelledCallerFailsFast", func(t *testing.T) {
		mockRepo := &usecaseMocks.MockWrappedKeyRepository{}
		mockWrapper := &serviceMocks.MockKeyWrapper{}

		cancelled, cancel := context.WithCancel(context.Background())
		cancel()

		keyStore := usecase.NewKeyStore(mockRepo, mockWrapper)
		_, err := keyStore.GetOrCreateConversationKey(cancelled, "conversation-5")

		assert.ErrorIs(t, err, context.Canceled)
		mockRepo.AssertNotCalled(t, "GetByConversationID", mock.Anything, mock.Anything)
	})

	t.Run("FlightDoesNotCarryCallerCancellation", func(t *testing.T) {
		mockRepo := &usecaseMocks.MockWrappedKeyRepository{}
		mockWrapper := &serviceMocks.MockKeyWrapper{}

		// Merged waiters share one flight, so the repository must not see
		// the starting caller's cancellation signal.
		var flightCtx context.Context
		existing := createTestWrappedKey("conversation-6")
		mockRepo.On("GetByConversationID", mock.Anything, "conversation-6").
			Run(func(args mock.Arguments) {
				flightCtx = args.Get(0).(context.Context)
			}).Return(existing, nil).Once()

		cancellable, cancel := context.WithCancel(context.Background())
		defer cancel()

		keyStore := usecase.NewKeyStore(mockRepo, mockWrapper)
		key, err := keyStore.GetOrCreateConversationKey(cancellable, "conversation-6")

		require.NoError(t, err)
		assert.Equal(t, existing.ID, key.ID)
		require.NotNil(t, flightCtx)
		assert.Nil(t, flightCtx.Done())
		assert.NoError(t, flightCtx.Err())
		mockRepo.AssertExpectations(t)
	})
}

func TestKeyStore_ResolveConversationKey(t *testing.T) {
	ctx := context.Background()

	t.Run("UnwrapsAndTouchesKey", func(t *testing.T) {
		mockRepo := &usecaseMocks.MockWrappedKeyRepository{}
		mockWrapper := &serviceMocks.MockKeyWrapper{}

		stored := createTestWrappedKey("conversation-1")
		plainKey := make([]byte, 32)

		mockRepo.On("GetByConversationID", mock.Anything, "conversation-1").
			Return(stored, nil).Once()
		mockWrapper.On("Unwrap", cryptoService.WrappedKeyMaterial{
			WrappedKey: stored.WrappedKey,
			Nonce:      stored.Nonce,
			AuthTag:    stored.AuthTag,
		}).Return(plainKey, nil).Once()
		mockRepo.On("TouchLastAccessed", ctx, stored.ID, mock.Anything).
			Return(nil).Once()

		keyStore := usecase.NewKeyStore(mockRepo, mockWrapper)
		resolved, err := keyStore.ResolveConversationKey(ctx, "conversation-1")

		require.NoError(t, err)
		assert.Equal(t, stored.ID, resolved.ID)
		assert.Equal(t, stored.Algorithm, resolved.Algorithm)
		assert.Equal(t, plainKey, resolved.Key)
		mockRepo.AssertExpectations(t)
		mockWrapper.AssertExpectations(t)
	})

	t.Run("TouchFailureDoesNotFailResolution", func(t *testing.T) {
		mockRepo := &usecaseMocks.MockWrappedKeyRepository{}
		mockWrapper := &serviceMocks.MockKeyWrapper{}

		stored := createTestWrappedKey("conversation-2")

		mockRepo.On("GetByConversationID", mock.Anything, "conversation-2").
			Return(stored, nil).Once()
		mockWrapper.On("Unwrap", mock.Anything).
			Return(make([]byte, 32), nil).Once()
		mockRepo.On("TouchLastAccessed", ctx, stored.ID, mock.Anything).
			Return(apperrors.New("deadlock")).Once()

		keyStore := usecase.NewKeyStore(mockRepo, mockWrapper)
		resolved, err := keyStore.ResolveConversationKey(ctx, "conversation-2")

		require.NoError(t, err)
		assert.NotNil(t, resolved)
		mockRepo.AssertExpectations(t)
	})

	t.Run("UnwrapFailureIsIntegrityError", func(t *testing.T) {
		mockRepo := &usecaseMocks.MockWrappedKeyRepository{}
		mockWrapper := &serviceMocks.MockKeyWrapper{}

		stored := createTestWrappedKey("conversation-3")

		mockRepo.On("GetByConversationID", mock.Anything, "conversation-3").
			Return(stored, nil).Once()
		mockWrapper.On("Unwrap", mock.Anything).
			Return(nil, cryptoDomain.ErrKeyUnwrapFailed).Once()

		keyStore := usecase.NewKeyStore(mockRepo, mockWrapper)
		_, err := keyStore.ResolveConversationKey(ctx, "conversation-3")

		assert.ErrorIs(t, err, apperrors.ErrIntegrity)
		mockRepo.AssertExpectations(t)
	})
}

func TestKeyStore_ResolveKeyByID(t *testing.T) {
	ctx := context.Background()

	t.Run("NotFound", func(t *testing.T) {
		mockRepo := &usecaseMocks.MockWrappedKeyRepository{}
		mockWrapper := &serviceMocks.MockKeyWrapper{}

		keyID := uuid.Must(uuid.NewV7())
		mockRepo.On("Get", ctx, keyID).
			Return(nil, cryptoDomain.ErrWrappedKeyNotFound).Once()

		keyStore := usecase.NewKeyStore(mockRepo, mockWrapper)
		_, err := keyStore.ResolveKeyByID(ctx, keyID)

		assert.ErrorIs(t, err, cryptoDomain.ErrWrappedKeyNotFound)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Success", func(t *testing.T) {
		mockRepo := &usecaseMocks.MockWrappedKeyRepository{}
		mockWrapper := &serviceMocks.MockKeyWrapper{}

		stored := createTestWrappedKey("conversation-4")
		plainKey := make([]byte, 32)

		mockRepo.On("Get", ctx, stored.ID).Return(stored, nil).Once()
		mockWrapper.On("Unwrap", mock.Anything).Return(plainKey, nil).Once()
		mockRepo.On("TouchLastAccessed", ctx, stored.ID, mock.Anything).
			Return(nil).Once()

		keyStore := usecase.NewKeyStore(mockRepo, mockWrapper)
		resolved, err := keyStore.ResolveKeyByID(ctx, stored.ID)

		require.NoError(t, err)
		assert.Equal(t, plainKey, resolved.Key)
		mockRepo.AssertExpectations(t)
	})
}

// memoryWrappedKeyRepo enforces the conversation unique constraint in memory
// so the concurrent get-or-create property can be exercised with real crypto.
type memoryWrappedKeyRepo struct {
	mu     sync.Mutex
	byConv map[string]*cryptoDomain.WrappedConversationKey
	byID   map[uuid.UUID]*cryptoDomain.WrappedConversationKey
}

func newMemoryWrappedKeyRepo() *memoryWrappedKeyRepo {
	return &memoryWrappedKeyRepo{
		byConv: make(map[string]*cryptoDomain.WrappedConversationKey),
		byID:   make(map[uuid.UUID]*cryptoDomain.WrappedConversationKey),
	}
}

func (r *memoryWrappedKeyRepo) Create(_ context.Context, key *cryptoDomain.WrappedConversationKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if key.ConversationID != nil {
		if _, ok := r.byConv[*key.ConversationID]; ok {
			return cryptoDomain.ErrWrappedKeyAlreadyExists
		}
		r.byConv[*key.ConversationID] = key
	}
	r.byID[key.ID] = key
	return nil
}

func (r *memoryWrappedKeyRepo) Get(_ context.Context, keyID uuid.UUID) (*cryptoDomain.WrappedConversationKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key, ok := r.byID[keyID]
	if !ok {
		return nil, cryptoDomain.ErrWrappedKeyNotFound
	}
	return key, nil
}

func (r *memoryWrappedKeyRepo) GetByConversationID(
	_ context.Context,
	conversationID string,
) (*cryptoDomain.WrappedConversationKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key, ok := r.byConv[conversationID]
	if !ok {
		return nil, cryptoDomain.ErrWrappedKeyNotFound
	}
	return key, nil
}

func (r *memoryWrappedKeyRepo) TouchLastAccessed(_ context.Context, keyID uuid.UUID, accessedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if key, ok := r.byID[keyID]; ok {
		key.LastAccessedAt = &accessedAt
	}
	return nil
}

func TestKeyStore_ConcurrentGetOrCreate_SingleKey(t *testing.T) {
	ctx := context.Background()

	masterKey, err := cryptoDomain.NewMasterKey(make([]byte, 32))
	require.NoError(t, err)
	wrapper, err := cryptoService.NewKeyWrapper(masterKey, cryptoService.NewAEADManager(), cryptoDomain.AESGCM)
	require.NoError(t, err)

	repo := newMemoryWrappedKeyRepo()
	keyStore := usecase.NewKeyStore(repo, wrapper)

	const goroutines = 32
	ids := make([]uuid.UUID, goroutines)
	var wg sync.WaitGroup

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key, err := keyStore.GetOrCreateConversationKey(ctx, "conversation-race")
			if assert.NoError(t, err) {
				ids[i] = key.ID
			}
		}(i)
	}
	wg.Wait()

	// All callers converge on the same persisted key.
	for i := 1; i < goroutines; i++ {
		assert.Equal(t, ids[0], ids[i])
	}
	assert.Len(t, repo.byConv, 1)
}
