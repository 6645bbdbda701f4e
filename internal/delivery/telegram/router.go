package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/yourusername/vpn-shop-bot/pkg/logger"
)

// Start consumes long-poll updates until ctx is cancelled. Each update
// runs in its own goroutine; per-chat ordering on the visible message is
// restored by the chat lock inside the slot manager.
func (h *BotHandler) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := h.bot.GetUpdatesChan(u)

	logger.InfoLogger.Println("bot update loop started")
	for {
		select {
		case <-ctx.Done():
			logger.InfoLogger.Println("bot update loop stopped")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			go h.safeHandle(ctx, update)
		}
	}
}

func (h *BotHandler) safeHandle(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			logger.ErrorLogger.Printf("panic in update handler: %v", r)
		}
	}()

	switch {
	case update.CallbackQuery != nil:
		h.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		h.handleMessage(ctx, update.Message)
	}
}

func (h *BotHandler) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.Chat == nil || !msg.Chat.IsPrivate() {
		return
	}

	switch msg.Command() {
	case "start":
		h.handleStart(ctx, msg)
		return
	case "export":
		if h.isAdmin(msg.Chat.ID) {
			h.handleExport(ctx, msg.Chat.ID)
		}
		return
	}

	if purchaseID, waiting := h.awaitingReceipt(msg.Chat.ID); waiting {
		if len(msg.Photo) > 0 {
			h.handleReceiptPhoto(ctx, msg, purchaseID)
			return
		}
		// Text while we expect a photo: remind, keep waiting.
		markup := tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("❌ Cancel order", encodeID(cbCancelPurchase, purchaseID)),
			),
		)
		_ = h.slot.render(ctx, msg.Chat.ID, "📸 Please send the payment receipt as a <b>photo</b>.", &markup)
		return
	}

	// Stray messages outside any flow are ignored.
}

func (h *BotHandler) isAdmin(chatID int64) bool {
	for _, id := range h.cfg.AdminChatIDs {
		if id == chatID {
			return true
		}
	}
	return false
}
