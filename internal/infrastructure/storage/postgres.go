package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/yourusername/vpn-shop-bot/pkg/logger"
)

const (
	connectAttempts = 5
	connectDelay    = 3 * time.Second
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS bot_users (
		user_id SERIAL PRIMARY KEY,
		chat_id BIGINT NOT NULL UNIQUE,
		name TEXT,
		username TEXT,
		wallet NUMERIC NOT NULL DEFAULT 0,
		used_test_account BOOLEAN NOT NULL DEFAULT FALSE,
		joined_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS subscriptions (
		id SERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS countries (
		id SERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		flag TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS servers (
		id SERIAL PRIMARY KEY,
		country_id BIGINT NOT NULL REFERENCES countries(id),
		platform TEXT NOT NULL,
		url TEXT NOT NULL,
		username TEXT,
		password TEXT,
		inbound_id INT NOT NULL DEFAULT 0,
		sub_host TEXT,
		active BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE TABLE IF NOT EXISTS tariffs (
		id SERIAL PRIMARY KEY,
		subscription_id BIGINT NOT NULL REFERENCES subscriptions(id),
		country_id BIGINT REFERENCES countries(id),
		name TEXT NOT NULL,
		price NUMERIC NOT NULL,
		duration_days INT NOT NULL,
		volume_gb INT NOT NULL,
		user_count INT NOT NULL,
		extra_user_pct NUMERIC NOT NULL DEFAULT 0,
		extra_gb_price NUMERIC NOT NULL DEFAULT 0,
		volume_extendable BOOLEAN NOT NULL DEFAULT FALSE,
		user_extendable BOOLEAN NOT NULL DEFAULT FALSE,
		platform TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS purchase_history (
		id SERIAL PRIMARY KEY,
		chat_id BIGINT NOT NULL,
		tariff_id BIGINT NOT NULL REFERENCES tariffs(id),
		amount NUMERIC NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		sub_url TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS purchase_history_chat_idx ON purchase_history (chat_id)`,
	`CREATE TABLE IF NOT EXISTS message_ids (
		id SERIAL PRIMARY KEY,
		chat_id BIGINT NOT NULL UNIQUE,
		message_id INT
	)`,
}

// Open connects with retries (the database container may still be coming
// up), applies the schema and tunes the pool.
func Open(dsn string) (*sql.DB, error) {
	db, err := openWithRetry(dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply schema: %w", err)
		}
	}
	return db, nil
}

func openWithRetry(dsn string) (*sql.DB, error) {
	var lastErr error
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		db, err := sql.Open("postgres", dsn)
		if err == nil {
			if pingErr := db.Ping(); pingErr == nil {
				return db, nil
			} else {
				err = pingErr
			}
		}
		if db != nil {
			_ = db.Close()
		}
		lastErr = err
		logger.ErrorLogger.Printf("postgres connect attempt %d/%d failed: %v", attempt, connectAttempts, err)
		if attempt < connectAttempts {
			time.Sleep(connectDelay)
		}
	}
	return nil, fmt.Errorf("connect to postgres: %w", lastErr)
}
