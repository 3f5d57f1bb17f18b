package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/linguachat/encryption/internal/crypto/domain"
	"github.com/linguachat/encryption/internal/database"
	apperrors "github.com/linguachat/encryption/internal/errors"
)

// MySQLWrappedKeyRepository implements wrapped conversation key persistence
// for MySQL. Uses BINARY(16) for UUIDs and BLOB for binary data with
// transaction support.
type MySQLWrappedKeyRepository struct {
	db *sql.DB
}

// NewMySQLWrappedKeyRepository creates a new MySQL wrapped key repository.
func NewMySQLWrappedKeyRepository(db *sql.DB) *MySQLWrappedKeyRepository {
	return &MySQLWrappedKeyRepository{db: db}
}

// Create inserts a new wrapped key record into the MySQL database.
func (m *MySQLWrappedKeyRepository) Create(ctx context.Context, key *cryptoDomain.WrappedConversationKey) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO wrapped_keys (id, conversation_id, algorithm, purpose, wrapped_key, nonce, auth_tag, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	id, err := key.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal wrapped key id")
	}

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		key.ConversationID,
		key.Algorithm,
		key.Purpose,
		key.WrappedKey,
		key.Nonce,
		key.AuthTag,
		key.CreatedAt,
	)
	if err != nil {
		if isMySQLUniqueViolation(err) {
			return cryptoDomain.ErrWrappedKeyAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create wrapped key")
	}
	return nil
}

// Get retrieves a wrapped key by its ID from the MySQL database.
func (m *MySQLWrappedKeyRepository) Get(
	ctx context.Context,
	keyID uuid.UUID,
) (*cryptoDomain.WrappedConversationKey, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, conversation_id, algorithm, purpose, wrapped_key, nonce, auth_tag, created_at, last_accessed_at
			  FROM wrapped_keys
			  WHERE id = ?`

	id, err := keyID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal wrapped key id")
	}

	return m.scanOne(querier.QueryRowContext(ctx, query, id))
}

// GetByConversationID retrieves the wrapped key bound to a conversation.
func (m *MySQLWrappedKeyRepository) GetByConversationID(
	ctx context.Context,
	conversationID string,
) (*cryptoDomain.WrappedConversationKey, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, conversation_id, algorithm, purpose, wrapped_key, nonce, auth_tag, created_at, last_accessed_at
			  FROM wrapped_keys
			  WHERE conversation_id = ?`

	return m.scanOne(querier.QueryRowContext(ctx, query, conversationID))
}

// TouchLastAccessed records key usage for audit and retirement decisions.
func (m *MySQLWrappedKeyRepository) TouchLastAccessed(
	ctx context.Context,
	keyID uuid.UUID,
	accessedAt time.Time,
) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE wrapped_keys SET last_accessed_at = ? WHERE id = ?`

	id, err := keyID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal wrapped key id")
	}

	_, err = querier.ExecContext(ctx, query, accessedAt, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to touch wrapped key")
	}
	return nil
}

func (m *MySQLWrappedKeyRepository) scanOne(row *sql.Row) (*cryptoDomain.WrappedConversationKey, error) {
	var key cryptoDomain.WrappedConversationKey
	var idBytes []byte

	err := row.Scan(
		&idBytes,
		&key.ConversationID,
		&key.Algorithm,
		&key.Purpose,
		&key.WrappedKey,
		&key.Nonce,
		&key.AuthTag,
		&key.CreatedAt,
		&key.LastAccessedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, cryptoDomain.ErrWrappedKeyNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get wrapped key")
	}

	if err := key.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal wrapped key id")
	}

	return &key, nil
}

// isMySQLUniqueViolation checks if the error is a MySQL unique constraint violation.
// MySQL: "Error 1062: Duplicate entry"
func isMySQLUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "duplicate entry") || strings.Contains(errMsg, "1062")
}
