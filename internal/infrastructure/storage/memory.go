package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yourusername/vpn-shop-bot/internal/domain/entity"
)

// Memory-backed stores. Used by tests and when no Postgres DSN is
// configured; data lives for the process lifetime only.

type MemoryCatalog struct {
	mu        sync.RWMutex
	PlanRows  []entity.Plan
	TariffRow map[int64]entity.Tariff
	CountryRow map[int64]entity.Country
	ServerRows []entity.Server
}

func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{
		TariffRow:  make(map[int64]entity.Tariff),
		CountryRow: make(map[int64]entity.Country),
	}
}

func (c *MemoryCatalog) Plans(_ context.Context) ([]entity.Plan, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]entity.Plan(nil), c.PlanRows...), nil
}

func (c *MemoryCatalog) TariffsByPlan(_ context.Context, planID int64) ([]entity.Tariff, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var res []entity.Tariff
	for _, t := range c.TariffRow {
		if t.PlanID == planID {
			res = append(res, t)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Price.LessThan(res[j].Price) })
	return res, nil
}

func (c *MemoryCatalog) Tariff(_ context.Context, id int64) (entity.Tariff, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.TariffRow[id]
	return t, ok, nil
}

func (c *MemoryCatalog) Country(_ context.Context, id int64) (entity.Country, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	country, ok := c.CountryRow[id]
	return country, ok, nil
}

func (c *MemoryCatalog) CountriesForPlatform(_ context.Context, platform string) ([]entity.Country, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	seen := make(map[int64]bool)
	var res []entity.Country
	for _, s := range c.ServerRows {
		if s.Platform != platform || !s.Active || seen[s.CountryID] {
			continue
		}
		if country, ok := c.CountryRow[s.CountryID]; ok {
			seen[s.CountryID] = true
			res = append(res, country)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Name < res[j].Name })
	return res, nil
}

func (c *MemoryCatalog) Server(_ context.Context, countryID int64, platform string) (entity.Server, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, s := range c.ServerRows {
		if s.CountryID == countryID && s.Platform == platform && s.Active {
			return s, true, nil
		}
	}
	return entity.Server{}, false, nil
}

type MemoryPurchases struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]entity.Purchase
}

func NewMemoryPurchases() *MemoryPurchases {
	return &MemoryPurchases{nextID: 1, rows: make(map[int64]entity.Purchase)}
}

func (p *MemoryPurchases) Create(_ context.Context, chatID, tariffID int64, amount decimal.Decimal) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.nextID
	p.nextID++
	p.rows[id] = entity.Purchase{
		ID:        id,
		ChatID:    chatID,
		TariffID:  tariffID,
		Amount:    amount,
		Status:    entity.PurchasePending,
		CreatedAt: time.Now(),
	}
	return id, nil
}

func (p *MemoryPurchases) Get(_ context.Context, id int64) (entity.Purchase, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	pu, ok := p.rows[id]
	return pu, ok, nil
}

func (p *MemoryPurchases) TransitionStatus(_ context.Context, id int64, from, to string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	pu, ok := p.rows[id]
	if !ok || pu.Status != from {
		return false, nil
	}
	pu.Status = to
	p.rows[id] = pu
	return true, nil
}

func (p *MemoryPurchases) Complete(_ context.Context, id int64, subURL string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	pu, ok := p.rows[id]
	if !ok || pu.Status != entity.PurchasePending {
		return false, nil
	}
	pu.Status = entity.PurchaseCompleted
	pu.SubURL = subURL
	p.rows[id] = pu
	return true, nil
}

func (p *MemoryPurchases) ListAll(_ context.Context) ([]entity.Purchase, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	var res []entity.Purchase
	for _, pu := range p.rows {
		res = append(res, pu)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].CreatedAt.After(res[j].CreatedAt) })
	return res, nil
}

func (p *MemoryPurchases) ListByChat(_ context.Context, chatID int64) ([]entity.Purchase, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	var res []entity.Purchase
	for _, pu := range p.rows {
		if pu.ChatID == chatID {
			res = append(res, pu)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].CreatedAt.After(res[j].CreatedAt) })
	return res, nil
}

type MemoryUsers struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]entity.BotUser
}

func NewMemoryUsers() *MemoryUsers {
	return &MemoryUsers{nextID: 1, rows: make(map[int64]entity.BotUser)}
}

func (u *MemoryUsers) Upsert(_ context.Context, chatID int64, name, username string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	usr, ok := u.rows[chatID]
	if !ok {
		usr = entity.BotUser{
			UserID:   u.nextID,
			ChatID:   chatID,
			Wallet:   decimal.Zero,
			JoinedAt: time.Now(),
		}
		u.nextID++
	}
	usr.Name = name
	usr.Username = username
	u.rows[chatID] = usr
	return nil
}

func (u *MemoryUsers) Get(_ context.Context, chatID int64) (entity.BotUser, bool, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	usr, ok := u.rows[chatID]
	return usr, ok, nil
}

func (u *MemoryUsers) ClaimTestAccount(_ context.Context, chatID int64) (bool, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	usr, ok := u.rows[chatID]
	if !ok || usr.UsedTestAccount {
		return false, nil
	}
	usr.UsedTestAccount = true
	u.rows[chatID] = usr
	return true, nil
}

func (u *MemoryUsers) ReleaseTestAccount(_ context.Context, chatID int64) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if usr, ok := u.rows[chatID]; ok && usr.UsedTestAccount {
		usr.UsedTestAccount = false
		u.rows[chatID] = usr
	}
	return nil
}

type MemoryMessages struct {
	mu   sync.Mutex
	rows map[int64]int
}

func NewMemoryMessages() *MemoryMessages {
	return &MemoryMessages{rows: make(map[int64]int)}
}

func (m *MemoryMessages) StoreMessageID(_ context.Context, chatID int64, messageID int) error {
	m.mu.Lock()
	m.rows[chatID] = messageID
	m.mu.Unlock()
	return nil
}

func (m *MemoryMessages) LastMessageID(_ context.Context, chatID int64) (int, bool, error) {
	m.mu.Lock()
	id, ok := m.rows[chatID]
	m.mu.Unlock()
	return id, ok, nil
}

func (m *MemoryMessages) Reset(_ context.Context, chatID int64) error {
	m.mu.Lock()
	delete(m.rows, chatID)
	m.mu.Unlock()
	return nil
}
