package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Purchase status values. The store relies on conditional updates keyed
// on these, so they are part of the schema contract.
const (
	PurchasePending   = "pending"
	PurchaseCancelled = "cancel"
	PurchaseRejected  = "rejected"
	PurchaseCompleted = "completed"
)

// Purchase is the durable audit row for one payment attempt.
type Purchase struct {
	ID        int64
	ChatID    int64
	TariffID  int64
	Amount    decimal.Decimal
	Status    string
	SubURL    string
	CreatedAt time.Time
}

// BotUser is a registered Telegram user.
type BotUser struct {
	UserID          int64
	ChatID          int64
	Name            string
	Username        string
	Wallet          decimal.Decimal
	UsedTestAccount bool
	JoinedAt        time.Time
}

// ProvisionSettings is the panel-agnostic bag assembled just before a
// provisioning call. Never persisted.
type ProvisionSettings struct {
	Label        string // unique account name on the panel
	ConnLimit    int    // concurrent connections, 0 = unlimited
	QuotaBytes   int64  // 0 = unlimited
	ExpiryUnixMS int64  // absolute epoch milliseconds
	DurationDays int
	VolumeGB     int
	InboundID    int
	ChatID       int64
}
