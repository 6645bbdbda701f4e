package usecase

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/vpn-shop-bot/internal/domain/entity"
)

const (
	bytesPerGB     = int64(1024 * 1024 * 1024)
	millisPerDay   = int64(86_400_000)
	labelRandChars = 8
)

// BuildProvisionSettings derives the panel request from the tariff and the
// negotiated quote. The label concatenates the buyer's name, a random
// suffix and the purchase id so repeated purchases by one user never
// collide on the panel.
func BuildProvisionSettings(q Quote, server entity.Server, buyerName string, purchaseID int64, now time.Time) entity.ProvisionSettings {
	totalGB := q.TotalGB()

	connLimit := 0
	if !q.Tariff.Unlimited() {
		connLimit = q.TotalUsers()
	}

	return entity.ProvisionSettings{
		Label:        accountLabel(buyerName, purchaseID),
		ConnLimit:    connLimit,
		QuotaBytes:   int64(totalGB) * bytesPerGB,
		ExpiryUnixMS: now.UnixMilli() + int64(q.Tariff.DurationDays)*millisPerDay,
		DurationDays: q.Tariff.DurationDays,
		VolumeGB:     totalGB,
		InboundID:    server.InboundID,
	}
}

func accountLabel(buyerName string, purchaseID int64) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return -1
		}
	}, buyerName)
	if name == "" {
		name = "user"
	}
	suffix := strings.Split(uuid.NewString(), "-")[0]
	if len(suffix) > labelRandChars {
		suffix = suffix[:labelRandChars]
	}
	return fmt.Sprintf("%s-%s-%d", name, suffix, purchaseID)
}
