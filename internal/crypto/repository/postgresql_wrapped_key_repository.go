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

// PostgreSQLWrappedKeyRepository implements wrapped conversation key
// persistence for PostgreSQL. Uses native UUID and BYTEA types with
// transaction support via database.GetTx().
type PostgreSQLWrappedKeyRepository struct {
	db *sql.DB
}

// NewPostgreSQLWrappedKeyRepository creates a new PostgreSQL wrapped key repository.
func NewPostgreSQLWrappedKeyRepository(db *sql.DB) *PostgreSQLWrappedKeyRepository {
	return &PostgreSQLWrappedKeyRepository{db: db}
}

// Create inserts a new wrapped key record. The unique index on
// conversation_id turns a racing second insert into
// ErrWrappedKeyAlreadyExists, which callers resolve by refetching.
func (p *PostgreSQLWrappedKeyRepository) Create(ctx context.Context, key *cryptoDomain.WrappedConversationKey) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO wrapped_keys (id, conversation_id, algorithm, purpose, wrapped_key, nonce, auth_tag, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := querier.ExecContext(
		ctx,
		query,
		key.ID,
		key.ConversationID,
		key.Algorithm,
		key.Purpose,
		key.WrappedKey,
		key.Nonce,
		key.AuthTag,
		key.CreatedAt,
	)
	if err != nil {
		if isPostgreSQLUniqueViolation(err) {
			return cryptoDomain.ErrWrappedKeyAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create wrapped key")
	}
	return nil
}

// Get retrieves a wrapped key by its ID.
func (p *PostgreSQLWrappedKeyRepository) Get(
	ctx context.Context,
	keyID uuid.UUID,
) (*cryptoDomain.WrappedConversationKey, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, conversation_id, algorithm, purpose, wrapped_key, nonce, auth_tag, created_at, last_accessed_at
			  FROM wrapped_keys
			  WHERE id = $1`

	var key cryptoDomain.WrappedConversationKey
	err := querier.QueryRowContext(ctx, query, keyID).Scan(
		&key.ID,
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

	return &key, nil
}

// GetByConversationID retrieves the wrapped key bound to a conversation.
func (p *PostgreSQLWrappedKeyRepository) GetByConversationID(
	ctx context.Context,
	conversationID string,
) (*cryptoDomain.WrappedConversationKey, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, conversation_id, algorithm, purpose, wrapped_key, nonce, auth_tag, created_at, last_accessed_at
			  FROM wrapped_keys
			  WHERE conversation_id = $1`

	var key cryptoDomain.WrappedConversationKey
	err := querier.QueryRowContext(ctx, query, conversationID).Scan(
		&key.ID,
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
		return nil, apperrors.Wrap(err, "failed to get wrapped key by conversation")
	}

	return &key, nil
}

// TouchLastAccessed records key usage for audit and retirement decisions.
func (p *PostgreSQLWrappedKeyRepository) TouchLastAccessed(
	ctx context.Context,
	keyID uuid.UUID,
	accessedAt time.Time,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE wrapped_keys SET last_accessed_at = $1 WHERE id = $2`

	_, err := querier.ExecContext(ctx, query, accessedAt, keyID)
	if err != nil {
		return apperrors.Wrap(err, "failed to touch wrapped key")
	}
	return nil
}

// isPostgreSQLUniqueViolation checks if the error is a PostgreSQL unique constraint violation.
// PostgreSQL: "duplicate key value violates unique constraint" or "pq: duplicate key"
func isPostgreSQLUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "duplicate key") || strings.Contains(errMsg, "unique constraint")
}
