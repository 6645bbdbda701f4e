package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"

	"github.com/yourusername/vpn-shop-bot/internal/domain/entity"
	"github.com/yourusername/vpn-shop-bot/internal/usecase"
	"github.com/yourusername/vpn-shop-bot/pkg/logger"
)

// freeProvision is the zero-price path: no invoice, no admin, provisioned
// on the spot. One trial per chat, enforced by a single conditional
// update so concurrent taps cannot both win.
func (h *BotHandler) freeProvision(ctx context.Context, cb *tgbotapi.CallbackQuery, q usecase.Quote, country entity.Country) {
	chatID := cb.Message.Chat.ID

	claimed, err := h.users.ClaimTestAccount(ctx, chatID)
	if err != nil {
		logger.ErrorLogger.Printf("chat %d: claim test account: %v", chatID, err)
		h.alertCallback(cb, "⚠️ Something went wrong. Please try again.")
		return
	}
	if !claimed {
		h.alertCallback(cb, "🎁 You have already used your free test account.")
		return
	}

	h.answerCallback(cb)
	_ = h.slot.render(ctx, chatID, "⏳ Creating your test account...", nil)

	purchaseID, err := h.purchases.Create(ctx, chatID, q.Tariff.ID, decimal.Zero)
	if err != nil {
		logger.ErrorLogger.Printf("chat %d: create trial purchase: %v", chatID, err)
		h.releaseTrialClaim(ctx, chatID)
		h.showOops(ctx, chatID)
		return
	}

	subURL, err := h.provisionAccount(ctx, chatID, country.ID, purchaseID, q)
	if err != nil {
		logger.ErrorLogger.Printf("chat %d: provision trial purchase %d: %v", chatID, purchaseID, err)
		if _, terr := h.purchases.TransitionStatus(ctx, purchaseID, entity.PurchasePending, entity.PurchaseCancelled); terr != nil {
			logger.ErrorLogger.Printf("chat %d: void trial purchase %d: %v", chatID, purchaseID, terr)
		}
		// A transient failure must not burn the one-shot trial.
		h.releaseTrialClaim(ctx, chatID)
		h.showOops(ctx, chatID)
		return
	}

	if _, err := h.purchases.Complete(ctx, purchaseID, subURL); err != nil {
		logger.ErrorLogger.Printf("chat %d: complete trial purchase %d: %v", chatID, purchaseID, err)
	}
	h.deliverSubscription(ctx, chatID, subURL)
}

func (h *BotHandler) releaseTrialClaim(ctx context.Context, chatID int64) {
	if err := h.users.ReleaseTestAccount(ctx, chatID); err != nil {
		logger.ErrorLogger.Printf("chat %d: release trial claim: %v", chatID, err)
	}
}
