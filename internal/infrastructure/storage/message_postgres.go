package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresMessages persists the Active Message Pointer: one row per chat.
type PostgresMessages struct {
	db *sql.DB
}

func NewPostgresMessages(db *sql.DB) *PostgresMessages {
	return &PostgresMessages{db: db}
}

func (m *PostgresMessages) StoreMessageID(ctx context.Context, chatID int64, messageID int) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO message_ids (chat_id, message_id)
		VALUES ($1, $2)
		ON CONFLICT (chat_id) DO UPDATE SET message_id = EXCLUDED.message_id`,
		chatID, messageID)
	if err != nil {
		return fmt.Errorf("store message id for chat %d: %w", chatID, err)
	}
	return nil
}

func (m *PostgresMessages) LastMessageID(ctx context.Context, chatID int64) (int, bool, error) {
	var id sql.NullInt64
	err := m.db.QueryRowContext(ctx,
		`SELECT message_id FROM message_ids WHERE chat_id = $1`, chatID).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	if !id.Valid {
		return 0, false, nil
	}
	return int(id.Int64), true, nil
}

func (m *PostgresMessages) Reset(ctx context.Context, chatID int64) error {
	_, err := m.db.ExecContext(ctx, `DELETE FROM message_ids WHERE chat_id = $1`, chatID)
	if err != nil {
		return fmt.Errorf("reset message id for chat %d: %w", chatID, err)
	}
	return nil
}
