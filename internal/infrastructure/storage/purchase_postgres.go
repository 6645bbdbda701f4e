package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/yourusername/vpn-shop-bot/internal/domain/entity"
)

type PostgresPurchases struct {
	db *sql.DB
}

func NewPostgresPurchases(db *sql.DB) *PostgresPurchases {
	return &PostgresPurchases{db: db}
}

func (p *PostgresPurchases) Create(ctx context.Context, chatID, tariffID int64, amount decimal.Decimal) (int64, error) {
	var id int64
	err := p.db.QueryRowContext(ctx, `
		INSERT INTO purchase_history (chat_id, tariff_id, amount, status)
		VALUES ($1, $2, $3, 'pending')
		RETURNING id`, chatID, tariffID, amount.String()).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create purchase: %w", err)
	}
	return id, nil
}

func scanPurchase(scan func(dest ...any) error) (entity.Purchase, error) {
	var pu entity.Purchase
	var amount string
	var subURL sql.NullString
	if err := scan(&pu.ID, &pu.ChatID, &pu.TariffID, &amount, &pu.Status, &subURL, &pu.CreatedAt); err != nil {
		return entity.Purchase{}, err
	}
	var err error
	if pu.Amount, err = decimal.NewFromString(amount); err != nil {
		return entity.Purchase{}, fmt.Errorf("purchase %d amount: %w", pu.ID, err)
	}
	if subURL.Valid {
		pu.SubURL = subURL.String
	}
	return pu, nil
}

const purchaseColumns = `id, chat_id, tariff_id, amount::text, status, sub_url, created_at`

func (p *PostgresPurchases) Get(ctx context.Context, id int64) (entity.Purchase, bool, error) {
	row := p.db.QueryRowContext(ctx, `SELECT `+purchaseColumns+` FROM purchase_history WHERE id = $1`, id)
	pu, err := scanPurchase(row.Scan)
	if err == sql.ErrNoRows {
		return entity.Purchase{}, false, nil
	}
	if err != nil {
		return entity.Purchase{}, false, err
	}
	return pu, true, nil
}

// TransitionStatus is the compare-and-swap transition: the WHERE clause
// carries the expected current status so a concurrent handler loses
// cleanly instead of overwriting.
func (p *PostgresPurchases) TransitionStatus(ctx context.Context, id int64, from, to string) (bool, error) {
	res, err := p.db.ExecContext(ctx,
		`UPDATE purchase_history SET status = $1 WHERE id = $2 AND status = $3`, to, id, from)
	if err != nil {
		return false, fmt.Errorf("transition purchase %d %s->%s: %w", id, from, to, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (p *PostgresPurchases) Complete(ctx context.Context, id int64, subURL string) (bool, error) {
	res, err := p.db.ExecContext(ctx, `
		UPDATE purchase_history SET status = 'completed', sub_url = $1
		WHERE id = $2 AND status = 'pending'`, subURL, id)
	if err != nil {
		return false, fmt.Errorf("complete purchase %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (p *PostgresPurchases) ListAll(ctx context.Context) ([]entity.Purchase, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT `+purchaseColumns+` FROM purchase_history ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	defer rows.Close()
	return collectPurchases(rows)
}

func (p *PostgresPurchases) ListByChat(ctx context.Context, chatID int64) ([]entity.Purchase, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT `+purchaseColumns+` FROM purchase_history WHERE chat_id = $1 ORDER BY created_at DESC`, chatID)
	if err != nil {
		return nil, fmt.Errorf("list purchases of chat %d: %w", chatID, err)
	}
	defer rows.Close()
	return collectPurchases(rows)
}

func collectPurchases(rows *sql.Rows) ([]entity.Purchase, error) {
	var res []entity.Purchase
	for rows.Next() {
		pu, err := scanPurchase(rows.Scan)
		if err != nil {
			return nil, err
		}
		res = append(res, pu)
	}
	return res, rows.Err()
}
