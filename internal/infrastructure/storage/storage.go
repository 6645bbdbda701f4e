// Package storage holds the durable stores behind the bot: catalog,
// purchase history, users and the per-chat active-message pointer. Every
// store has a Postgres implementation and an in-memory one used by tests
// and Postgres-less dev runs.
package storage

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/yourusername/vpn-shop-bot/internal/domain/entity"
)

// CatalogStore reads the immutable sales catalog.
type CatalogStore interface {
	Plans(ctx context.Context) ([]entity.Plan, error)
	TariffsByPlan(ctx context.Context, planID int64) ([]entity.Tariff, error)
	Tariff(ctx context.Context, id int64) (entity.Tariff, bool, error)
	Country(ctx context.Context, id int64) (entity.Country, bool, error)
	CountriesForPlatform(ctx context.Context, platform string) ([]entity.Country, error)
	Server(ctx context.Context, countryID int64, platform string) (entity.Server, bool, error)
}

// PurchaseStore owns the purchase_history audit rows. Status transitions
// are conditional updates so concurrent handlers cannot race a row
// through two different terminal states.
type PurchaseStore interface {
	Create(ctx context.Context, chatID, tariffID int64, amount decimal.Decimal) (int64, error)
	Get(ctx context.Context, id int64) (entity.Purchase, bool, error)

	// TransitionStatus moves id from one status to another; reports
	// whether the row was actually in `from`.
	TransitionStatus(ctx context.Context, id int64, from, to string) (bool, error)

	// Complete moves a pending purchase to completed and records the
	// issued subscription URL in the same statement.
	Complete(ctx context.Context, id int64, subURL string) (bool, error)

	ListAll(ctx context.Context) ([]entity.Purchase, error)
	ListByChat(ctx context.Context, chatID int64) ([]entity.Purchase, error)
}

// UserStore owns bot_users rows.
type UserStore interface {
	Upsert(ctx context.Context, chatID int64, name, username string) error
	Get(ctx context.Context, chatID int64) (entity.BotUser, bool, error)

	// ClaimTestAccount flips used_test_account in one conditional
	// statement; false means the flag was already set.
	ClaimTestAccount(ctx context.Context, chatID int64) (bool, error)

	// ReleaseTestAccount clears the flag again after a failed
	// provisioning attempt.
	ReleaseTestAccount(ctx context.Context, chatID int64) error
}

// MessageStore is the durable Active Message Pointer: at most one row per
// chat, upsert semantics.
type MessageStore interface {
	StoreMessageID(ctx context.Context, chatID int64, messageID int) error
	LastMessageID(ctx context.Context, chatID int64) (int, bool, error)
	Reset(ctx context.Context, chatID int64) error
}
