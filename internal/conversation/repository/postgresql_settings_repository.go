// Package repository provides persistence for conversation encryption
// settings on PostgreSQL and MySQL.
package repository

import (
	"context"
	"database/sql"
	"strings"

	conversationDomain "github.com/linguachat/encryption/internal/conversation/domain"
	"github.com/linguachat/encryption/internal/database"
	apperrors "github.com/linguachat/encryption/internal/errors"
)

// PostgreSQLSettingsRepository implements conversation encryption settings
// persistence for PostgreSQL. Uses native UUID types with transaction
// support via database.GetTx().
type PostgreSQLSettingsRepository struct {
	db *sql.DB
}

// NewPostgreSQLSettingsRepository creates a new PostgreSQL settings repository.
func NewPostgreSQLSettingsRepository(db *sql.DB) *PostgreSQLSettingsRepository {
	return &PostgreSQLSettingsRepository{db: db}
}

// Create inserts the settings row for a conversation. The primary key on
// conversation_id turns a racing second enable into
// ErrSettingsAlreadyExist; settings are never updated after this insert.
func (p *PostgreSQLSettingsRepository) Create(
	ctx context.Context,
	settings *conversationDomain.ConversationEncryptionSettings,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO conversation_encryption_settings (conversation_id, mode, protocol, enabled_at, enabled_by, server_key_id)
			  VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := querier.ExecContext(
		ctx,
		query,
		settings.ConversationID,
		settings.Mode,
		settings.Protocol,
		settings.EnabledAt,
		settings.EnabledBy,
		settings.ServerKeyID,
	)
	if err != nil {
		if isPostgreSQLUniqueViolation(err) {
			return conversationDomain.ErrSettingsAlreadyExist
		}
		return apperrors.Wrap(err, "failed to create conversation encryption settings")
	}
	return nil
}

// Get retrieves the settings row for a conversation.
func (p *PostgreSQLSettingsRepository) Get(
	ctx context.Context,
	conversationID string,
) (*conversationDomain.ConversationEncryptionSettings, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT conversation_id, mode, protocol, enabled_at, enabled_by, server_key_id
			  FROM conversation_encryption_settings
			  WHERE conversation_id = $1`

	var settings conversationDomain.ConversationEncryptionSettings
	err := querier.QueryRowContext(ctx, query, conversationID).Scan(
		&settings.ConversationID,
		&settings.Mode,
		&settings.Protocol,
		&settings.EnabledAt,
		&settings.EnabledBy,
		&settings.ServerKeyID,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, conversationDomain.ErrSettingsNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get conversation encryption settings")
	}

	return &settings, nil
}

// isPostgreSQLUniqueViolation checks if the error is a PostgreSQL unique constraint violation.
func isPostgreSQLUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "duplicate key") || strings.Contains(errMsg, "unique constraint")
}
