package usecase

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/yourusername/vpn-shop-bot/internal/domain/entity"
)

var hundred = decimal.NewFromInt(100)

// ErrNegotiationLimit is surfaced to the user as an alert, not logged as
// an error (business-rule violation, not a failure).
var ErrNegotiationLimit = fmt.Errorf("negotiation limit reached")

// Quote is the running negotiation state: a tariff plus the user's
// customization. Price is always recomputed, never stored authoritatively.
type Quote struct {
	Tariff     entity.Tariff
	ExtraUsers int
	ExtraGB    int
}

// ComputePrice returns base + base*pct/100*extraUsers + perGB*extraGB.
// Inputs below zero are invalid and rejected before any arithmetic.
func ComputePrice(t entity.Tariff, extraUsers, extraGB int) (decimal.Decimal, error) {
	if extraUsers < 0 {
		return decimal.Zero, fmt.Errorf("extra users must not be negative, got %d", extraUsers)
	}
	if extraGB < 0 {
		return decimal.Zero, fmt.Errorf("extra volume must not be negative, got %d", extraGB)
	}

	perUser := t.Price.Mul(t.ExtraUserPct).Div(hundred)
	total := t.Price.
		Add(perUser.Mul(decimal.NewFromInt(int64(extraUsers)))).
		Add(t.ExtraGBPrice.Mul(decimal.NewFromInt(int64(extraGB))))
	return total, nil
}

// Price recomputes the quote's total.
func (q Quote) Price() (decimal.Decimal, error) {
	return ComputePrice(q.Tariff, q.ExtraUsers, q.ExtraGB)
}

// CheckBounds rejects a quote whose extras could not have been reached
// through legitimate increments. Increment taps enforce the limits one
// step at a time; this re-checks the whole state wherever it enters from
// the wire, so a forged payload cannot smuggle totals past the caps.
func (q Quote) CheckBounds(maxTotalUsers, maxExtraGB int) error {
	if q.ExtraUsers > 0 {
		if !q.Tariff.UserExtendable || q.Tariff.Unlimited() {
			return fmt.Errorf("%w: tariff %d does not allow extra users", ErrNegotiationLimit, q.Tariff.ID)
		}
		if q.TotalUsers() > maxTotalUsers {
			return fmt.Errorf("%w: %d users exceeds cap %d", ErrNegotiationLimit, q.TotalUsers(), maxTotalUsers)
		}
	}
	if q.ExtraGB > 0 {
		if !q.Tariff.VolumeExtendable {
			return fmt.Errorf("%w: tariff %d does not allow extra volume", ErrNegotiationLimit, q.Tariff.ID)
		}
		if q.ExtraGB > maxExtraGB {
			return fmt.Errorf("%w: %d extra GB exceeds cap %d", ErrNegotiationLimit, q.ExtraGB, maxExtraGB)
		}
	}
	return nil
}

// TotalUsers is base + extra; meaningless for unlimited tariffs.
func (q Quote) TotalUsers() int {
	return q.Tariff.UserCount + q.ExtraUsers
}

// TotalGB is base volume + negotiated extra.
func (q Quote) TotalGB() int {
	return q.Tariff.VolumeGB + q.ExtraGB
}

// AddUsers returns a copy with one more extra user. maxTotal caps
// base+extra; a quote already at the cap comes back unchanged together
// with ErrNegotiationLimit.
func (q Quote) AddUsers(maxTotal int) (Quote, error) {
	if !q.Tariff.UserExtendable || q.Tariff.Unlimited() {
		return q, ErrNegotiationLimit
	}
	if q.TotalUsers() >= maxTotal {
		return q, ErrNegotiationLimit
	}
	q.ExtraUsers++
	return q, nil
}

// RemoveUsers returns a copy with one extra user removed, floored at 0.
func (q Quote) RemoveUsers() (Quote, error) {
	if q.ExtraUsers <= 0 {
		return q, ErrNegotiationLimit
	}
	q.ExtraUsers--
	return q, nil
}

// AddVolume returns a copy with one volume step added. maxExtraGB caps
// the total negotiated extra.
func (q Quote) AddVolume(stepGB, maxExtraGB int) (Quote, error) {
	if !q.Tariff.VolumeExtendable {
		return q, ErrNegotiationLimit
	}
	if q.ExtraGB+stepGB > maxExtraGB {
		return q, ErrNegotiationLimit
	}
	q.ExtraGB += stepGB
	return q, nil
}

// RemoveVolume returns a copy with one volume step removed, floored at 0.
func (q Quote) RemoveVolume(stepGB int) (Quote, error) {
	if q.ExtraGB <= 0 {
		return q, ErrNegotiationLimit
	}
	q.ExtraGB -= stepGB
	if q.ExtraGB < 0 {
		q.ExtraGB = 0
	}
	return q, nil
}
