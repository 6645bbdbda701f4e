package usecase

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/vpn-shop-bot/internal/domain/entity"
)

func testTariff() entity.Tariff {
	return entity.Tariff{
		ID:               7,
		Name:             "Gold 30d",
		Price:            decimal.NewFromInt(100_000),
		DurationDays:     30,
		VolumeGB:         50,
		UserCount:        2,
		ExtraUserPct:     decimal.NewFromInt(10),
		ExtraGBPrice:     decimal.NewFromInt(500),
		VolumeExtendable: true,
		UserExtendable:   true,
		Platform:         "xui",
	}
}

func TestComputePriceExactFigure(t *testing.T) {
	// 100000 + 100000*0.10*2 + 500*3 = 121500
	price, err := ComputePrice(testTariff(), 2, 3)
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.NewFromInt(121_500)), "got %s", price)
}

func TestComputePriceBaseOnly(t *testing.T) {
	price, err := ComputePrice(testTariff(), 0, 0)
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.NewFromInt(100_000)))
}

func TestComputePriceRejectsNegatives(t *testing.T) {
	_, err := ComputePrice(testTariff(), -1, 0)
	assert.Error(t, err)
	_, err = ComputePrice(testTariff(), 0, -3)
	assert.Error(t, err)
}

func TestComputePriceFractionalPct(t *testing.T) {
	tariff := testTariff()
	tariff.ExtraUserPct = decimal.RequireFromString("12.5")
	price, err := ComputePrice(tariff, 1, 0)
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.NewFromInt(112_500)), "got %s", price)
}

// Incrementing and decrementing back to the same (u, v) must land on the
// identical amount: no drift across round-trips.
func TestPricePurityAcrossRoundTrips(t *testing.T) {
	q := Quote{Tariff: testTariff()}
	start, err := q.Price()
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		q, err = q.AddUsers(100)
		require.NoError(t, err)
		q, err = q.AddVolume(5, 500)
		require.NoError(t, err)
		q, err = q.RemoveVolume(5)
		require.NoError(t, err)
		q, err = q.RemoveUsers()
		require.NoError(t, err)
	}

	end, err := q.Price()
	require.NoError(t, err)
	assert.True(t, start.Equal(end), "start %s end %s", start, end)
}

func TestAddUsersBoundedByMaxTotal(t *testing.T) {
	q := Quote{Tariff: testTariff()} // base 2 users
	var err error

	q, err = q.AddUsers(4)
	require.NoError(t, err)
	q, err = q.AddUsers(4)
	require.NoError(t, err)
	require.Equal(t, 4, q.TotalUsers())

	bounded, err := q.AddUsers(4)
	assert.ErrorIs(t, err, ErrNegotiationLimit)
	assert.Equal(t, q, bounded, "quote must be unchanged at the cap")
}

func TestRemoveUsersFloorsAtZero(t *testing.T) {
	q := Quote{Tariff: testTariff()}
	_, err := q.RemoveUsers()
	assert.ErrorIs(t, err, ErrNegotiationLimit)
}

func TestVolumeGuards(t *testing.T) {
	tariff := testTariff()
	tariff.VolumeExtendable = false
	q := Quote{Tariff: tariff}

	_, err := q.AddVolume(5, 500)
	assert.ErrorIs(t, err, ErrNegotiationLimit)

	_, err = q.RemoveVolume(5)
	assert.ErrorIs(t, err, ErrNegotiationLimit)
}

func TestAddVolumeBoundedByCeiling(t *testing.T) {
	q := Quote{Tariff: testTariff(), ExtraGB: 498}
	_, err := q.AddVolume(5, 500)
	assert.ErrorIs(t, err, ErrNegotiationLimit)
}

func TestCheckBoundsRejectsForgedTotals(t *testing.T) {
	q := Quote{Tariff: testTariff(), ExtraUsers: 999}
	assert.ErrorIs(t, q.CheckBounds(10, 500), ErrNegotiationLimit)

	q = Quote{Tariff: testTariff(), ExtraGB: 10_000}
	assert.ErrorIs(t, q.CheckBounds(10, 500), ErrNegotiationLimit)

	locked := testTariff()
	locked.UserExtendable = false
	q = Quote{Tariff: locked, ExtraUsers: 1}
	assert.ErrorIs(t, q.CheckBounds(10, 500), ErrNegotiationLimit)

	q = Quote{Tariff: testTariff(), ExtraUsers: 3, ExtraGB: 100}
	assert.NoError(t, q.CheckBounds(10, 500))
}

func TestUnlimitedTariffNotUserExtendable(t *testing.T) {
	tariff := testTariff()
	tariff.UserCount = entity.UnlimitedUsers
	q := Quote{Tariff: tariff}

	_, err := q.AddUsers(10)
	assert.ErrorIs(t, err, ErrNegotiationLimit)
}
