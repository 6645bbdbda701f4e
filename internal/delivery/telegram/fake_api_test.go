package telegram

import (
	"context"
	"errors"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"

	"github.com/yourusername/vpn-shop-bot/config"
	"github.com/yourusername/vpn-shop-bot/internal/domain/entity"
	"github.com/yourusername/vpn-shop-bot/internal/infrastructure/cache"
	"github.com/yourusername/vpn-shop-bot/internal/infrastructure/panel"
	"github.com/yourusername/vpn-shop-bot/internal/infrastructure/storage"
	"github.com/yourusername/vpn-shop-bot/pkg/logger"
)

func init() {
	logger.Init()
}

// fakeAPI records everything the handlers send to Telegram.
type fakeAPI struct {
	mu        sync.Mutex
	nextMsgID int
	failEdits bool

	sends      int // fresh messages
	edits      int
	deletes    int
	sentTexts  []string
	editTexts  []string
	photos     []tgbotapi.PhotoConfig
	alerts     []string
	docs       []tgbotapi.DocumentConfig
	lastMarkup tgbotapi.InlineKeyboardMarkup
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch v := c.(type) {
	case tgbotapi.MessageConfig:
		f.sends++
		f.nextMsgID++
		f.sentTexts = append(f.sentTexts, v.Text)
		if rm, ok := v.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup); ok {
			f.lastMarkup = rm
		}
		return tgbotapi.Message{MessageID: f.nextMsgID}, nil
	case tgbotapi.EditMessageTextConfig:
		f.edits++
		if f.failEdits {
			return tgbotapi.Message{}, errors.New("Bad Request: message to edit not found")
		}
		f.editTexts = append(f.editTexts, v.Text)
		if v.ReplyMarkup != nil {
			f.lastMarkup = *v.ReplyMarkup
		}
		return tgbotapi.Message{MessageID: v.MessageID}, nil
	case tgbotapi.PhotoConfig:
		f.nextMsgID++
		f.photos = append(f.photos, v)
		return tgbotapi.Message{MessageID: f.nextMsgID}, nil
	case tgbotapi.DocumentConfig:
		f.nextMsgID++
		f.docs = append(f.docs, v)
		return tgbotapi.Message{MessageID: f.nextMsgID}, nil
	case tgbotapi.EditMessageCaptionConfig:
		return tgbotapi.Message{MessageID: v.MessageID}, nil
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch v := c.(type) {
	case tgbotapi.CallbackConfig:
		if v.ShowAlert {
			f.alerts = append(f.alerts, v.Text)
		}
	case tgbotapi.DeleteMessageConfig:
		f.deletes++
	}
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	ch := make(chan tgbotapi.Update)
	close(ch)
	return ch
}

func (f *fakeAPI) alertCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.alerts)
}

func (f *fakeAPI) photoCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.photos)
}

// fakePanel counts provisioning calls; err simulates a panel outage.
type fakePanel struct {
	mu    sync.Mutex
	calls int
	url   string
	err   error
}

func (p *fakePanel) CreateAccount(_ context.Context, _ entity.Server, _ entity.ProvisionSettings) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.err != nil {
		return "", p.err
	}
	return p.url, nil
}

func (p *fakePanel) setErr(err error) {
	p.mu.Lock()
	p.err = err
	p.mu.Unlock()
}

func (p *fakePanel) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

type testEnv struct {
	h         *BotHandler
	api       *fakeAPI
	panel     *fakePanel
	catalog   *storage.MemoryCatalog
	purchases *storage.MemoryPurchases
	users     *storage.MemoryUsers
	shared    *cache.MemoryCache
}

const (
	testAdminChat = int64(900)
	testBuyerChat = int64(100)
)

func newTestEnv() *testEnv {
	catalog := storage.NewMemoryCatalog()
	catalog.PlanRows = []entity.Plan{{ID: 1, Name: "Personal"}}
	catalog.TariffRow[10] = entity.Tariff{
		ID: 10, PlanID: 1, Name: "Personal 50GB",
		Price:        decimal.NewFromInt(100_000),
		DurationDays: 30, VolumeGB: 50, UserCount: 2,
		ExtraUserPct: decimal.NewFromInt(15),
		ExtraGBPrice: decimal.NewFromInt(1_500),
		VolumeExtendable: true, UserExtendable: true,
		Platform: "xui",
	}
	catalog.TariffRow[11] = entity.Tariff{
		ID: 11, PlanID: 1, Name: "Test Account",
		Price:        decimal.Zero,
		DurationDays: 1, VolumeGB: 1, UserCount: 1,
		Platform: "xui",
	}
	catalog.CountryRow[3] = entity.Country{ID: 3, Name: "Germany", Flag: "🇩🇪"}
	catalog.ServerRows = []entity.Server{
		{ID: 1, CountryID: 3, Platform: "xui", URL: "https://panel.test", Active: true},
	}

	pn := &fakePanel{url: "https://sub.test/abc"}
	registry := panel.NewRegistry()
	registry.Register(panel.PlatformXUI, pn)

	api := &fakeAPI{}
	shared := cache.NewMemoryCache()
	purchases := storage.NewMemoryPurchases()
	users := storage.NewMemoryUsers()

	cfg := &config.Config{
		AdminChatIDs:   []int64{testAdminChat},
		CardNumber:     "6037-0000-0000-0000",
		CardHolder:     "Shop Owner",
		SupportContact: "@helpdesk",
		MaxTotalUsers:  10,
		VolumeStepGB:   5,
		MaxExtraGB:     500,
	}

	h := newBotHandler(api, cfg, Deps{
		Catalog:   catalog,
		Purchases: purchases,
		Users:     users,
		Messages:  storage.NewMemoryMessages(),
		Shared:    shared,
		Panels:    registry,
	})
	_ = users.Upsert(context.Background(), testBuyerChat, "Alice", "alice")

	return &testEnv{
		h: h, api: api, panel: pn,
		catalog: catalog, purchases: purchases, users: users, shared: shared,
	}
}

func callback(chatID int64, data string) *tgbotapi.CallbackQuery {
	return &tgbotapi.CallbackQuery{
		ID:   "cb-1",
		Data: data,
		From: &tgbotapi.User{ID: chatID, FirstName: "Alice", UserName: "alice"},
		Message: &tgbotapi.Message{
			MessageID: 1,
			Chat:      &tgbotapi.Chat{ID: chatID, Type: "private"},
			Caption:   "receipt",
		},
	}
}

func photoMessage(chatID int64) *tgbotapi.Message {
	return &tgbotapi.Message{
		MessageID: 55,
		Chat:      &tgbotapi.Chat{ID: chatID, Type: "private"},
		From:      &tgbotapi.User{ID: chatID, FirstName: "Alice", UserName: "alice"},
		Photo:     []tgbotapi.PhotoSize{{FileID: "small"}, {FileID: "large"}},
	}
}
