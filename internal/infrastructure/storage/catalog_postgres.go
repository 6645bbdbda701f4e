package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/yourusername/vpn-shop-bot/internal/domain/entity"
)

// PostgresCatalog reads the catalog tables. The catalog is managed out of
// band; this store never writes it.
type PostgresCatalog struct {
	db *sql.DB
}

func NewPostgresCatalog(db *sql.DB) *PostgresCatalog {
	return &PostgresCatalog{db: db}
}

func (c *PostgresCatalog) Plans(ctx context.Context) ([]entity.Plan, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT id, name, COALESCE(description, '') FROM subscriptions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	defer rows.Close()

	var plans []entity.Plan
	for rows.Next() {
		var p entity.Plan
		if err := rows.Scan(&p.ID, &p.Name, &p.Description); err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}

const tariffColumns = `id, subscription_id, COALESCE(country_id, 0), name, price::text,
	duration_days, volume_gb, user_count, extra_user_pct::text, extra_gb_price::text,
	volume_extendable, user_extendable, platform`

func scanTariff(scan func(dest ...any) error) (entity.Tariff, error) {
	var t entity.Tariff
	var price, pct, gbPrice string
	err := scan(&t.ID, &t.PlanID, &t.CountryID, &t.Name, &price,
		&t.DurationDays, &t.VolumeGB, &t.UserCount, &pct, &gbPrice,
		&t.VolumeExtendable, &t.UserExtendable, &t.Platform)
	if err != nil {
		return entity.Tariff{}, err
	}
	if t.Price, err = decimal.NewFromString(price); err != nil {
		return entity.Tariff{}, fmt.Errorf("tariff %d price: %w", t.ID, err)
	}
	if t.ExtraUserPct, err = decimal.NewFromString(pct); err != nil {
		return entity.Tariff{}, fmt.Errorf("tariff %d extra_user_pct: %w", t.ID, err)
	}
	if t.ExtraGBPrice, err = decimal.NewFromString(gbPrice); err != nil {
		return entity.Tariff{}, fmt.Errorf("tariff %d extra_gb_price: %w", t.ID, err)
	}
	return t, nil
}

func (c *PostgresCatalog) TariffsByPlan(ctx context.Context, planID int64) ([]entity.Tariff, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT `+tariffColumns+` FROM tariffs WHERE subscription_id = $1 ORDER BY price`, planID)
	if err != nil {
		return nil, fmt.Errorf("list tariffs for plan %d: %w", planID, err)
	}
	defer rows.Close()

	var tariffs []entity.Tariff
	for rows.Next() {
		t, err := scanTariff(rows.Scan)
		if err != nil {
			return nil, err
		}
		tariffs = append(tariffs, t)
	}
	return tariffs, rows.Err()
}

func (c *PostgresCatalog) Tariff(ctx context.Context, id int64) (entity.Tariff, bool, error) {
	row := c.db.QueryRowContext(ctx, `SELECT `+tariffColumns+` FROM tariffs WHERE id = $1`, id)
	t, err := scanTariff(row.Scan)
	if err == sql.ErrNoRows {
		return entity.Tariff{}, false, nil
	}
	if err != nil {
		return entity.Tariff{}, false, err
	}
	return t, true, nil
}

func (c *PostgresCatalog) Country(ctx context.Context, id int64) (entity.Country, bool, error) {
	var country entity.Country
	row := c.db.QueryRowContext(ctx, `SELECT id, name, COALESCE(flag, '') FROM countries WHERE id = $1`, id)
	err := row.Scan(&country.ID, &country.Name, &country.Flag)
	if err == sql.ErrNoRows {
		return entity.Country{}, false, nil
	}
	if err != nil {
		return entity.Country{}, false, err
	}
	return country, true, nil
}

func (c *PostgresCatalog) CountriesForPlatform(ctx context.Context, platform string) ([]entity.Country, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT DISTINCT c.id, c.name, COALESCE(c.flag, '')
		FROM countries c
		JOIN servers s ON s.country_id = c.id
		WHERE s.platform = $1 AND s.active
		ORDER BY c.name`, platform)
	if err != nil {
		return nil, fmt.Errorf("list countries for %s: %w", platform, err)
	}
	defer rows.Close()

	var countries []entity.Country
	for rows.Next() {
		var country entity.Country
		if err := rows.Scan(&country.ID, &country.Name, &country.Flag); err != nil {
			return nil, err
		}
		countries = append(countries, country)
	}
	return countries, rows.Err()
}

func (c *PostgresCatalog) Server(ctx context.Context, countryID int64, platform string) (entity.Server, bool, error) {
	var s entity.Server
	row := c.db.QueryRowContext(ctx, `
		SELECT id, country_id, platform, url, COALESCE(username, ''), COALESCE(password, ''),
			inbound_id, COALESCE(sub_host, ''), active
		FROM servers
		WHERE country_id = $1 AND platform = $2 AND active
		ORDER BY id LIMIT 1`, countryID, platform)
	err := row.Scan(&s.ID, &s.CountryID, &s.Platform, &s.URL, &s.Username, &s.Password,
		&s.InboundID, &s.SubHost, &s.Active)
	if err == sql.ErrNoRows {
		return entity.Server{}, false, nil
	}
	if err != nil {
		return entity.Server{}, false, err
	}
	return s, true, nil
}
