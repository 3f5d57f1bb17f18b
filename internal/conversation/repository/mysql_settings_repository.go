package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"

	conversationDomain "github.com/linguachat/encryption/internal/conversation/domain"
	"github.com/linguachat/encryption/internal/database"
	apperrors "github.com/linguachat/encryption/internal/errors"
)

// MySQLSettingsRepository implements conversation encryption settings
// persistence for MySQL. Uses BINARY(16) for the server key reference with
// transaction support.
type MySQLSettingsRepository struct {
	db *sql.DB
}

// NewMySQLSettingsRepository creates a new MySQL settings repository.
func NewMySQLSettingsRepository(db *sql.DB) *MySQLSettingsRepository {
	return &MySQLSettingsRepository{db: db}
}

// Create inserts the settings row for a conversation into the MySQL database.
func (m *MySQLSettingsRepository) Create(
	ctx context.Context,
	settings *conversationDomain.ConversationEncryptionSettings,
) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO conversation_encryption_settings (conversation_id, mode, protocol, enabled_at, enabled_by, server_key_id)
			  VALUES (?, ?, ?, ?, ?, ?)`

	var serverKeyID []byte
	if settings.ServerKeyID != nil {
		id, err := settings.ServerKeyID.MarshalBinary()
		if err != nil {
			return apperrors.Wrap(err, "failed to marshal server key id")
		}
		serverKeyID = id
	}

	_, err := querier.ExecContext(
		ctx,
		query,
		settings.ConversationID,
		settings.Mode,
		settings.Protocol,
		settings.EnabledAt,
		settings.EnabledBy,
		serverKeyID,
	)
	if err != nil {
		if isMySQLUniqueViolation(err) {
			return conversationDomain.ErrSettingsAlreadyExist
		}
		return apperrors.Wrap(err, "failed to create conversation encryption settings")
	}
	return nil
}

// Get retrieves the settings row for a conversation from the MySQL database.
func (m *MySQLSettingsRepository) Get(
	ctx context.Context,
	conversationID string,
) (*conversationDomain.ConversationEncryptionSettings, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT conversation_id, mode, protocol, enabled_at, enabled_by, server_key_id
			  FROM conversation_encryption_settings
			  WHERE conversation_id = ?`

	var settings conversationDomain.ConversationEncryptionSettings
	var serverKeyID []byte

	err := querier.QueryRowContext(ctx, query, conversationID).Scan(
		&settings.ConversationID,
		&settings.Mode,
		&settings.Protocol,
		&settings.EnabledAt,
		&settings.EnabledBy,
		&serverKeyID,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, conversationDomain.ErrSettingsNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get conversation encryption settings")
	}

	if len(serverKeyID) > 0 {
		var id uuid.UUID
		if err := id.UnmarshalBinary(serverKeyID); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal server key id")
		}
		settings.ServerKeyID = &id
	}

	return &settings, nil
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
