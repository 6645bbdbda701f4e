package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/yourusername/vpn-shop-bot/internal/domain/entity"
)

type PostgresUsers struct {
	db *sql.DB
}

func NewPostgresUsers(db *sql.DB) *PostgresUsers {
	return &PostgresUsers{db: db}
}

func (u *PostgresUsers) Upsert(ctx context.Context, chatID int64, name, username string) error {
	_, err := u.db.ExecContext(ctx, `
		INSERT INTO bot_users (chat_id, name, username)
		VALUES ($1, $2, $3)
		ON CONFLICT (chat_id) DO UPDATE SET name = EXCLUDED.name, username = EXCLUDED.username`,
		chatID, name, username)
	if err != nil {
		return fmt.Errorf("upsert user %d: %w", chatID, err)
	}
	return nil
}

func (u *PostgresUsers) Get(ctx context.Context, chatID int64) (entity.BotUser, bool, error) {
	var usr entity.BotUser
	var wallet string
	row := u.db.QueryRowContext(ctx, `
		SELECT user_id, chat_id, COALESCE(name, ''), COALESCE(username, ''),
			wallet::text, used_test_account, joined_at
		FROM bot_users WHERE chat_id = $1`, chatID)
	err := row.Scan(&usr.UserID, &usr.ChatID, &usr.Name, &usr.Username,
		&wallet, &usr.UsedTestAccount, &usr.JoinedAt)
	if err == sql.ErrNoRows {
		return entity.BotUser{}, false, nil
	}
	if err != nil {
		return entity.BotUser{}, false, err
	}
	if usr.Wallet, err = decimal.NewFromString(wallet); err != nil {
		return entity.BotUser{}, false, fmt.Errorf("user %d wallet: %w", chatID, err)
	}
	return usr, true, nil
}

// ClaimTestAccount is a single conditional UPDATE, so two concurrent taps
// cannot both win the free trial.
func (u *PostgresUsers) ClaimTestAccount(ctx context.Context, chatID int64) (bool, error) {
	res, err := u.db.ExecContext(ctx, `
		UPDATE bot_users SET used_test_account = TRUE
		WHERE chat_id = $1 AND NOT used_test_account`, chatID)
	if err != nil {
		return false, fmt.Errorf("claim test account %d: %w", chatID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// ReleaseTestAccount undoes a claim whose provisioning failed, giving the
// user their trial back.
func (u *PostgresUsers) ReleaseTestAccount(ctx context.Context, chatID int64) error {
	_, err := u.db.ExecContext(ctx, `
		UPDATE bot_users SET used_test_account = FALSE
		WHERE chat_id = $1 AND used_test_account`, chatID)
	if err != nil {
		return fmt.Errorf("release test account %d: %w", chatID, err)
	}
	return nil
}
