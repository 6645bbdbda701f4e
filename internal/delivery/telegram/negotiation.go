package telegram

import (
	"context"
	"errors"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/yourusername/vpn-shop-bot/internal/usecase"
	"github.com/yourusername/vpn-shop-bot/pkg/logger"
)

// handleQuote serves every negotiation tap. The payload carries the whole
// quote, so the handler rebuilds state from the catalog on each tap and
// stays stateless in between.
func (h *BotHandler) handleQuote(ctx context.Context, cb *tgbotapi.CallbackQuery, p quotePayload) {
	chatID := cb.Message.Chat.ID

	tariff, ok, err := h.catalog.Tariff(ctx, p.TariffID)
	if err != nil || !ok {
		logger.ErrorLogger.Printf("chat %d: tariff %d lookup: ok=%v err=%v", chatID, p.TariffID, ok, err)
		h.alertCallback(cb, "⚠️ This tariff is no longer available.")
		return
	}
	country, ok, err := h.catalog.Country(ctx, p.CountryID)
	if err != nil || !ok {
		logger.ErrorLogger.Printf("chat %d: country %d lookup: ok=%v err=%v", chatID, p.CountryID, ok, err)
		h.alertCallback(cb, "⚠️ This region is no longer available.")
		return
	}

	q := usecase.Quote{Tariff: tariff, ExtraUsers: p.ExtraUsers, ExtraGB: p.ExtraGB}

	// Payload extras are attacker-controlled; re-check them against the
	// caps before the quote can be rendered or persisted.
	if err := q.CheckBounds(h.cfg.MaxTotalUsers, h.cfg.MaxExtraGB); err != nil {
		h.rejectPayload(cb, cb.Data, err)
		return
	}

	switch p.Verb {
	case verbRegion:
		price, err := q.Price()
		if err != nil {
			logger.ErrorLogger.Printf("chat %d: price tariff %d: %v", chatID, tariff.ID, err)
			h.alertCallback(cb, "⚠️ Something went wrong.")
			return
		}
		if price.IsZero() {
			h.freeProvision(ctx, cb, q, country)
			return
		}
	case verbAddUser:
		q, err = q.AddUsers(h.cfg.MaxTotalUsers)
	case verbRemoveUser:
		q, err = q.RemoveUsers()
	case verbAddGig:
		q, err = q.AddVolume(h.cfg.VolumeStepGB, h.cfg.MaxExtraGB)
	case verbRemoveGig:
		q, err = q.RemoveVolume(h.cfg.VolumeStepGB)
	case verbPaid:
		h.beginPayment(ctx, cb, q, country)
		return
	}

	if errors.Is(err, usecase.ErrNegotiationLimit) {
		h.alertCallback(cb, "🚫 Not possible for this tariff.")
		return
	}
	if err != nil {
		logger.ErrorLogger.Printf("chat %d: quote %s: %v", chatID, p.Verb, err)
		h.alertCallback(cb, "⚠️ Something went wrong.")
		return
	}

	h.answerCallback(cb)
	h.renderInvoice(ctx, chatID, q, country)
}
