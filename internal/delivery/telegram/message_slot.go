package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/yourusername/vpn-shop-bot/internal/infrastructure/storage"
	"github.com/yourusername/vpn-shop-bot/pkg/logger"
)

// slotManager keeps one active bot message per chat. Every screen of the
// conversation is rendered into that message by editing it in place; only
// when the edit fails (message deleted, too old, or unchanged) a fresh
// message is sent and the durable pointer is moved to it.
type slotManager struct {
	api   botAPI
	store storage.MessageStore
	locks *chatLocks
}

func newSlotManager(api botAPI, store storage.MessageStore, locks *chatLocks) *slotManager {
	return &slotManager{api: api, store: store, locks: locks}
}

// render shows text with the given keyboard as the chat's single active
// message. Safe to call concurrently for the same chat.
func (s *slotManager) render(ctx context.Context, chatID int64, text string, markup *tgbotapi.InlineKeyboardMarkup) error {
	unlock := s.locks.lock(chatID)
	defer unlock()

	msgID, ok, err := s.store.LastMessageID(ctx, chatID)
	if err != nil {
		logger.ErrorLogger.Printf("chat %d: read message pointer: %v", chatID, err)
		ok = false
	}

	if ok {
		edit := tgbotapi.NewEditMessageText(chatID, msgID, text)
		edit.ParseMode = tgbotapi.ModeHTML
		edit.ReplyMarkup = markup
		_, editErr := s.api.Send(edit)
		if editErr == nil {
			return nil
		}
		// Old message gone or unchanged; fall through to a new one.
		logger.InfoLogger.Printf("chat %d: edit of message %d failed, sending new: %v", chatID, msgID, editErr)
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if markup != nil {
		msg.ReplyMarkup = *markup
	}
	sent, err := s.api.Send(msg)
	if err != nil {
		return err
	}
	if err := s.store.StoreMessageID(ctx, chatID, sent.MessageID); err != nil {
		logger.ErrorLogger.Printf("chat %d: store message pointer: %v", chatID, err)
	}
	return nil
}

// reset forgets the chat's active message so the next render starts a
// fresh one. Used after delivering a subscription link: the link must
// stay in the history, not be edited away by the next screen.
func (s *slotManager) reset(ctx context.Context, chatID int64) error {
	unlock := s.locks.lock(chatID)
	defer unlock()
	return s.store.Reset(ctx, chatID)
}
