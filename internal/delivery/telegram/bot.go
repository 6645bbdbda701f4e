package telegram

import (
	"fmt"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/yourusername/vpn-shop-bot/config"
	"github.com/yourusername/vpn-shop-bot/internal/infrastructure/cache"
	"github.com/yourusername/vpn-shop-bot/internal/infrastructure/panel"
	"github.com/yourusername/vpn-shop-bot/internal/infrastructure/storage"
)

// botAPI is the slice of *tgbotapi.BotAPI the handlers actually use.
// Tests install a fake.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
}

// Deps bundles everything the handler needs injected. No singletons, no
// package globals: lifecycle is owned by main.
type Deps struct {
	Catalog   storage.CatalogStore
	Purchases storage.PurchaseStore
	Users     storage.UserStore
	Messages  storage.MessageStore
	Shared    cache.SharedCache
	Panels    *panel.Registry
}

// BotHandler routes Telegram updates through the purchase pipeline.
type BotHandler struct {
	bot  botAPI
	self tgbotapi.User
	cfg  *config.Config

	catalog   storage.CatalogStore
	purchases storage.PurchaseStore
	users     storage.UserStore
	shared    cache.SharedCache
	panels    *panel.Registry

	locks *chatLocks
	slot  *slotManager

	// Conversational wait-mode: chat id -> purchase id whose receipt
	// photo we are waiting for.
	awaitMu      sync.RWMutex
	receiptAwait map[int64]int64
}

// NewBotHandler connects to Telegram and wires the handler.
func NewBotHandler(cfg *config.Config, deps Deps) (*BotHandler, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	h := newBotHandler(bot, cfg, deps)
	h.self = bot.Self
	return h, nil
}

// newBotHandler is the transport-free constructor used by tests.
func newBotHandler(api botAPI, cfg *config.Config, deps Deps) *BotHandler {
	locks := newChatLocks()
	return &BotHandler{
		bot:          api,
		cfg:          cfg,
		catalog:      deps.Catalog,
		purchases:    deps.Purchases,
		users:        deps.Users,
		shared:       deps.Shared,
		panels:       deps.Panels,
		locks:        locks,
		slot:         newSlotManager(api, deps.Messages, locks),
		receiptAwait: make(map[int64]int64),
	}
}

// GetBotUsername returns the bot's username from Telegram API state.
func (h *BotHandler) GetBotUsername() string {
	return h.self.UserName
}

func (h *BotHandler) setAwaitingReceipt(chatID, purchaseID int64) {
	h.awaitMu.Lock()
	h.receiptAwait[chatID] = purchaseID
	h.awaitMu.Unlock()
}

func (h *BotHandler) clearAwaitingReceipt(chatID int64) {
	h.awaitMu.Lock()
	delete(h.receiptAwait, chatID)
	h.awaitMu.Unlock()
}

func (h *BotHandler) awaitingReceipt(chatID int64) (int64, bool) {
	h.awaitMu.RLock()
	id, ok := h.receiptAwait[chatID]
	h.awaitMu.RUnlock()
	return id, ok
}
