package usecase

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/vpn-shop-bot/internal/domain/entity"
)

func TestBuildProvisionSettingsConversions(t *testing.T) {
	q := Quote{Tariff: testTariff(), ExtraUsers: 1, ExtraGB: 10}
	server := entity.Server{InboundID: 4}
	now := time.Unix(1_700_000_000, 0)

	s := BuildProvisionSettings(q, server, "Alice", 42, now)

	assert.Equal(t, int64(60)*1024*1024*1024, s.QuotaBytes) // 50 base + 10 extra
	assert.Equal(t, now.UnixMilli()+30*int64(86_400_000), s.ExpiryUnixMS)
	assert.Equal(t, 3, s.ConnLimit) // 2 base + 1 extra
	assert.Equal(t, 4, s.InboundID)
	assert.Equal(t, 60, s.VolumeGB)
}

func TestBuildProvisionSettingsUnlimited(t *testing.T) {
	tariff := testTariff()
	tariff.UserCount = entity.UnlimitedUsers
	q := Quote{Tariff: tariff}

	s := BuildProvisionSettings(q, entity.Server{}, "bob", 1, time.Now())
	assert.Equal(t, 0, s.ConnLimit)
}

func TestAccountLabelUniqueAndTagged(t *testing.T) {
	a := accountLabel("Alice", 42)
	b := accountLabel("Alice", 42)
	assert.NotEqual(t, a, b, "labels must differ between calls")

	require.True(t, strings.HasPrefix(a, "Alice-"))
	require.True(t, strings.HasSuffix(a, "-"+strconv.Itoa(42)))
}

func TestAccountLabelSanitizesName(t *testing.T) {
	label := accountLabel("علی رضا", 7)
	assert.True(t, strings.HasPrefix(label, "user-"), "non-ascii names fall back, got %s", label)
}
