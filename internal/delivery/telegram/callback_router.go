package telegram

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/yourusername/vpn-shop-bot/pkg/logger"
)

// handleCallback dispatches on the payload verb. Admin verbs are gated on
// the sender's chat id before any parsing of the rest.
func (h *BotHandler) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil {
		h.answerCallback(cb)
		return
	}
	chatID := cb.Message.Chat.ID
	data := cb.Data

	switch {
	case data == cbNoop:
		h.answerCallback(cb)

	case data == cbMainMenu:
		h.answerCallback(cb)
		h.showMainMenu(ctx, chatID)

	case data == cbCheckJoin:
		if !h.requireMembership(ctx, chatID, cb.From.ID) {
			h.alertCallback(cb, "You have not joined the channel yet.")
			return
		}
		h.answerCallback(cb)
		h.showMainMenu(ctx, chatID)

	case data == cbBuy:
		if !h.requireMembership(ctx, chatID, cb.From.ID) {
			h.answerCallback(cb)
			return
		}
		h.answerCallback(cb)
		h.showPlans(ctx, chatID)

	case data == cbFreeTrial:
		if !h.requireMembership(ctx, chatID, cb.From.ID) {
			h.answerCallback(cb)
			return
		}
		h.showFreeTrialEntry(ctx, cb)

	case data == cbMyServices:
		h.answerCallback(cb)
		h.showMyServices(ctx, chatID)

	case strings.HasPrefix(data, cbConfirmPayment+"_"):
		if !h.isAdmin(chatID) {
			h.alertCallback(cb, "Not allowed.")
			return
		}
		buyerChatID, err := parseSuffixID(cbConfirmPayment, data)
		if err != nil {
			h.rejectPayload(cb, data, err)
			return
		}
		h.handleAdminConfirm(ctx, cb, buyerChatID)

	case strings.HasPrefix(data, cbRejectPayment+"_"):
		if !h.isAdmin(chatID) {
			h.alertCallback(cb, "Not allowed.")
			return
		}
		buyerChatID, err := parseSuffixID(cbRejectPayment, data)
		if err != nil {
			h.rejectPayload(cb, data, err)
			return
		}
		h.handleAdminReject(ctx, cb, buyerChatID)

	case strings.HasPrefix(data, cbCancelPurchase+"_"):
		purchaseID, err := parseSuffixID(cbCancelPurchase, data)
		if err != nil {
			h.rejectPayload(cb, data, err)
			return
		}
		h.handleCancelPurchase(ctx, cb, purchaseID)

	case strings.HasPrefix(data, cbPlan+"_"):
		planID, err := parseSuffixID(cbPlan, data)
		if err != nil {
			h.rejectPayload(cb, data, err)
			return
		}
		h.answerCallback(cb)
		h.showTariffs(ctx, chatID, planID)

	case strings.HasPrefix(data, cbTariff+"_"):
		tariffID, err := parseSuffixID(cbTariff, data)
		if err != nil {
			h.rejectPayload(cb, data, err)
			return
		}
		h.answerCallback(cb)
		h.showRegions(ctx, chatID, tariffID)

	default:
		p, err := parseQuotePayload(data)
		if err != nil {
			h.rejectPayload(cb, data, err)
			return
		}
		h.handleQuote(ctx, cb, p)
	}
}

func (h *BotHandler) rejectPayload(cb *tgbotapi.CallbackQuery, data string, err error) {
	logger.ErrorLogger.Printf("chat %d: rejected payload %q: %v", cb.Message.Chat.ID, data, err)
	h.alertCallback(cb, "⚠️ Invalid action.")
}

// answerCallback acks the tap so the client stops its spinner.
func (h *BotHandler) answerCallback(cb *tgbotapi.CallbackQuery) {
	if _, err := h.bot.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		logger.InfoLogger.Printf("answer callback: %v", err)
	}
}

// alertCallback shows a popup without touching the active message.
func (h *BotHandler) alertCallback(cb *tgbotapi.CallbackQuery, text string) {
	alert := tgbotapi.NewCallbackWithAlert(cb.ID, text)
	if _, err := h.bot.Request(alert); err != nil {
		logger.InfoLogger.Printf("alert callback: %v", err)
	}
}
