package entity

import "github.com/shopspring/decimal"

// UnlimitedUsers is the sentinel user count meaning "no device limit".
const UnlimitedUsers = 0

// Plan is a subscription family grouping related tariffs.
type Plan struct {
	ID          int64
	Name        string
	Description string
}

// Country is the region a tariff is served from.
type Country struct {
	ID   int64
	Name string
	Flag string
}

// Server is a provisioning endpoint for one country/platform pair.
// Credentials are panel-local, not Telegram-related.
type Server struct {
	ID        int64
	CountryID int64
	Platform  string
	URL       string
	Username  string
	Password  string
	InboundID int
	SubHost   string
	Active    bool
}

// Tariff is an immutable catalog row. Price fields use decimal so that
// repeated increment/decrement round-trips never drift.
type Tariff struct {
	ID           int64
	PlanID       int64
	CountryID    int64
	Name         string
	Price        decimal.Decimal
	DurationDays int
	VolumeGB     int
	UserCount    int // UnlimitedUsers means unlimited
	ExtraUserPct decimal.Decimal
	ExtraGBPrice decimal.Decimal

	VolumeExtendable bool
	UserExtendable   bool
	Platform         string
}

// Unlimited reports whether the tariff has no device limit.
func (t Tariff) Unlimited() bool {
	return t.UserCount == UnlimitedUsers
}
