package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/linguachat/encryption/internal/crypto/domain"
	"github.com/linguachat/encryption/internal/testutil"
)

func newWrappedKey(t *testing.T, conversationID string) *cryptoDomain.WrappedConversationKey {
	t.Helper()
	return &cryptoDomain.WrappedConversationKey{
		ID:             uuid.Must(uuid.NewV7()),
		ConversationID: &conversationID,
		Algorithm:      cryptoDomain.AESGCM,
		Purpose:        cryptoDomain.PurposeConversationData,
		WrappedKey:     []byte("wrapped-key-material-32-bytes-xx"),
		Nonce:          []byte("nonce-12byte"),
		AuthTag:        []byte("auth-tag-16bytes"),
		CreatedAt:      time.Now().UTC().Truncate(time.Microsecond),
	}
}

func TestPostgreSQLWrappedKeyRepository_CreateAndGet(t *testing.T) {
	testutil.SkipIfNoPostgres(t)

	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLWrappedKeyRepository(db)
	ctx := context.Background()

	key := newWrappedKey(t, "conversation-1")
	require.NoError(t, repo.Create(ctx, key))

	read, err := repo.Get(ctx, key.ID)
	require.NoError(t, err)
	assert.Equal(t, key.ID, read.ID)
	require.NotNil(t, read.ConversationID)
	assert.Equal(t, "conversation-1", *read.ConversationID)
	assert.Equal(t, key.Algorithm, read.Algorithm)
	assert.Equal(t, key.Purpose, read.Purpose)
	assert.Equal(t, key.WrappedKey, read.WrappedKey)
	assert.Equal(t, key.Nonce, read.Nonce)
	assert.Equal(t, key.AuthTag, read.AuthTag)
	assert.Nil(t, read.LastAccessedAt)
}

func TestPostgreSQLWrappedKeyRepository_GetByConversationID(t *testing.T) {
	testutil.SkipIfNoPostgres(t)

	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLWrappedKeyRepository(db)
	ctx := context.Background()

	key := newWrappedKey(t, "conversation-2")
	require.NoError(t, repo.Create(ctx, key))

	read, err := repo.GetByConversationID(ctx, "conversation-2")
	require.NoError(t, err)
	assert.Equal(t, key.ID, read.ID)

	_, err = repo.GetByConversationID(ctx, "conversation-missing")
	assert.ErrorIs(t, err, cryptoDomain.ErrWrappedKeyNotFound)
}

func TestPostgreSQLWrappedKeyRepository_DuplicateConversation(t *testing.T) {
	testutil.SkipIfNoPostgres(t)

	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLWrappedKeyRepository(db)
	ctx := context.Background()

	first := newWrappedKey(t, "conversation-3")
	require.NoError(t, repo.Create(ctx, first))

	second := newWrappedKey(t, "conversation-3")
	err := repo.Create(ctx, second)
	assert.ErrorIs(t, err, cryptoDomain.ErrWrappedKeyAlreadyExists)

	// The surviving record is the first one.
	read, err := repo.GetByConversationID(ctx, "conversation-3")
	require.NoError(t, err)
	assert.Equal(t, first.ID, read.ID)
}

func TestPostgreSQLWrappedKeyRepository_TouchLastAccessed(t *testing.T) {
	testutil.SkipIfNoPostgres(t)

	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLWrappedKeyRepository(db)
	ctx := context.Background()

	key := newWrappedKey(t, "conversation-4")
	require.NoError(t, repo.Create(ctx, key))

	accessedAt := time.Now().UTC().Truncate(time.Microsecond)
	require.NoError(t, repo.TouchLastAccessed(ctx, key.ID, accessedAt))

	read, err := repo.Get(ctx, key.ID)
	require.NoError(t, err)
	require.NotNil(t, read.LastAccessedAt)
	assert.WithinDuration(t, accessedAt, *read.LastAccessedAt, time.Second)
}

func TestPostgreSQLWrappedKeyRepository_Create_UniqueViolationMapping(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectExec("INSERT INTO wrapped_keys").
		WillReturnError(errors.New(`pq: duplicate key value violates unique constraint "wrapped_keys_conversation_id_key"`))

	repo := NewPostgreSQLWrappedKeyRepository(db)
	err = repo.Create(context.Background(), newWrappedKey(t, "conversation-5"))

	assert.ErrorIs(t, err, cryptoDomain.ErrWrappedKeyAlreadyExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLWrappedKeyRepository_Get_NotFoundMapping(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery("SELECT (.+) FROM wrapped_keys").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "conversation_id", "algorithm", "purpose",
			"wrapped_key", "nonce", "auth_tag", "created_at", "last_accessed_at",
		}))

	repo := NewPostgreSQLWrappedKeyRepository(db)
	_, err = repo.Get(context.Background(), uuid.Must(uuid.NewV7()))

	assert.ErrorIs(t, err, cryptoDomain.ErrWrappedKeyNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsPostgreSQLUniqueViolation(t *testing.T) {
	assert.False(t, isPostgreSQLUniqueViolation(nil))
	assert.False(t, isPostgreSQLUniqueViolation(errors.New("connection refused")))
	assert.True(t, isPostgreSQLUniqueViolation(errors.New("pq: duplicate key value violates unique constraint")))
	assert.True(t, isPostgreSQLUniqueViolation(errors.New(`ERROR: conflicting row for unique constraint "wrapped_keys_conversation_id_key"`)))
}
