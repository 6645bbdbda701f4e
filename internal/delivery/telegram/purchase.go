package telegram

import (
	"context"
	"errors"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/yourusername/vpn-shop-bot/internal/domain/entity"
	"github.com/yourusername/vpn-shop-bot/internal/infrastructure/cache"
	"github.com/yourusername/vpn-shop-bot/internal/usecase"
	"github.com/yourusername/vpn-shop-bot/pkg/logger"
)

// cacheKeyPurchase is the shared-cache slot holding the buyer's draft
// between "I have paid" and the admin's verdict.
const cacheKeyPurchase = "purchase_data"

// purchaseDraft is the ephemeral order snapshot. Consuming it (GetDel) is
// what makes admin approval exactly-once.
type purchaseDraft struct {
	PurchaseID int64  `json:"purchase_id"`
	ChatID     int64  `json:"chat_id"`
	TariffID   int64  `json:"tariff_id"`
	CountryID  int64  `json:"country_id"`
	ExtraUsers int    `json:"extra_users"`
	ExtraGB    int    `json:"extra_gb"`
	Amount     string `json:"amount"`
}

// beginPayment records a pending purchase, snapshots the draft and puts
// the chat into receipt wait-mode.
func (h *BotHandler) beginPayment(ctx context.Context, cb *tgbotapi.CallbackQuery, q usecase.Quote, country entity.Country) {
	chatID := cb.Message.Chat.ID

	price, err := q.Price()
	if err != nil {
		logger.ErrorLogger.Printf("chat %d: price tariff %d: %v", chatID, q.Tariff.ID, err)
		h.alertCallback(cb, "⚠️ Something went wrong.")
		return
	}

	purchaseID, err := h.purchases.Create(ctx, chatID, q.Tariff.ID, price)
	if err != nil {
		logger.ErrorLogger.Printf("chat %d: create purchase: %v", chatID, err)
		h.alertCallback(cb, "⚠️ Could not register the order. Please try again.")
		return
	}

	draft := purchaseDraft{
		PurchaseID: purchaseID,
		ChatID:     chatID,
		TariffID:   q.Tariff.ID,
		CountryID:  country.ID,
		ExtraUsers: q.ExtraUsers,
		ExtraGB:    q.ExtraGB,
		Amount:     price.StringFixed(0),
	}
	if err := h.shared.Set(ctx, chatID, cacheKeyPurchase, draft, cache.DefaultTTL); err != nil {
		logger.ErrorLogger.Printf("chat %d: store draft: %v", chatID, err)
		h.alertCallback(cb, "⚠️ Could not register the order. Please try again.")
		return
	}
	h.setAwaitingReceipt(chatID, purchaseID)

	h.answerCallback(cb)
	markup := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❌ Cancel order", encodeID(cbCancelPurchase, purchaseID)),
		),
	)
	text := fmt.Sprintf(
		"📸 Order <b>#%d</b> registered for <b>%s Toman</b>.\n\nNow send a photo of your payment receipt.",
		purchaseID, draft.Amount,
	)
	if err := h.slot.render(ctx, chatID, text, &markup); err != nil {
		logger.ErrorLogger.Printf("chat %d: render receipt prompt: %v", chatID, err)
	}
}

// handleCancelPurchase is reachable any time before an admin verdict. The
// conditional transition makes it a no-op against a purchase an admin has
// already completed or rejected.
func (h *BotHandler) handleCancelPurchase(ctx context.Context, cb *tgbotapi.CallbackQuery, purchaseID int64) {
	chatID := cb.Message.Chat.ID

	// The purchase id travels through callback data, so anyone can craft
	// it; only the owning chat may cancel.
	p, found, err := h.purchases.Get(ctx, purchaseID)
	if err != nil {
		logger.ErrorLogger.Printf("chat %d: cancel purchase %d: %v", chatID, purchaseID, err)
		h.alertCallback(cb, "⚠️ Something went wrong.")
		return
	}
	if !found || p.ChatID != chatID {
		logger.ErrorLogger.Printf("chat %d: cancel of foreign or missing purchase %d refused", chatID, purchaseID)
		h.alertCallback(cb, "⚠️ Invalid action.")
		return
	}

	ok, err := h.purchases.TransitionStatus(ctx, purchaseID, entity.PurchasePending, entity.PurchaseCancelled)
	if err != nil {
		logger.ErrorLogger.Printf("chat %d: cancel purchase %d: %v", chatID, purchaseID, err)
		h.alertCallback(cb, "⚠️ Something went wrong.")
		return
	}

	h.clearAwaitingReceipt(chatID)
	if err := h.shared.Delete(ctx, chatID, cacheKeyPurchase); err != nil {
		logger.ErrorLogger.Printf("chat %d: drop draft: %v", chatID, err)
	}

	if !ok {
		h.alertCallback(cb, "This order has already been processed.")
		return
	}
	h.answerCallback(cb)
	h.showMainMenu(ctx, chatID)
}

// handleReceiptPhoto forwards the receipt to every admin with an
// approve/reject keyboard and takes the chat out of wait-mode.
func (h *BotHandler) handleReceiptPhoto(ctx context.Context, msg *tgbotapi.Message, purchaseID int64) {
	chatID := msg.Chat.ID

	var draft purchaseDraft
	err := h.shared.Get(ctx, chatID, cacheKeyPurchase, &draft)
	if errors.Is(err, cache.ErrMiss) || (err == nil && draft.PurchaseID != purchaseID) {
		h.clearAwaitingReceipt(chatID)
		h.showOops(ctx, chatID)
		return
	}
	if err != nil {
		logger.ErrorLogger.Printf("chat %d: read draft: %v", chatID, err)
		markup := tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("❌ Cancel order", encodeID(cbCancelPurchase, purchaseID)),
			),
		)
		_ = h.slot.render(ctx, chatID, "⚠️ Temporary problem, please send the receipt photo again.", &markup)
		return
	}

	name, username := msg.From.FirstName, msg.From.UserName
	caption := fmt.Sprintf(
		"🧾 Payment receipt\nUser: %s (@%s)\nChat: %d\nOrder: #%d\nTariff: %d\nAmount: %s Toman",
		name, username, chatID, draft.PurchaseID, draft.TariffID, draft.Amount,
	)
	markup := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Approve", encodeID(cbConfirmPayment, chatID)),
			tgbotapi.NewInlineKeyboardButtonData("❌ Reject", encodeID(cbRejectPayment, chatID)),
		),
	)

	fileID := msg.Photo[len(msg.Photo)-1].FileID
	for _, adminID := range h.cfg.AdminChatIDs {
		photo := tgbotapi.NewPhoto(adminID, tgbotapi.FileID(fileID))
		photo.Caption = caption
		photo.ReplyMarkup = markup
		if _, err := h.bot.Send(photo); err != nil {
			logger.ErrorLogger.Printf("chat %d: forward receipt to admin %d: %v", chatID, adminID, err)
		}
	}

	// Keep the conversation to the single bot message.
	if _, err := h.bot.Request(tgbotapi.NewDeleteMessage(chatID, msg.MessageID)); err != nil {
		logger.InfoLogger.Printf("chat %d: delete receipt photo: %v", chatID, err)
	}

	h.clearAwaitingReceipt(chatID)
	waitMarkup := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❌ Cancel order", encodeID(cbCancelPurchase, purchaseID)),
		),
	)
	_ = h.slot.render(ctx, chatID,
		"✅ Receipt received and forwarded for review.\nYour config will arrive here once the payment is approved.",
		&waitMarkup)
}

// handleAdminConfirm is the exactly-once approval step: consuming the
// draft with GetDel means a double-tap (or a second admin) finds nothing
// and provisions nothing.
func (h *BotHandler) handleAdminConfirm(ctx context.Context, cb *tgbotapi.CallbackQuery, buyerChatID int64) {
	var draft purchaseDraft
	err := h.shared.GetDel(ctx, buyerChatID, cacheKeyPurchase, &draft)
	if errors.Is(err, cache.ErrMiss) {
		h.alertCallback(cb, "No pending order for this user. Already handled?")
		return
	}
	if err != nil {
		logger.ErrorLogger.Printf("approve chat %d: read draft: %v", buyerChatID, err)
		h.alertCallback(cb, "⚠️ Cache unavailable, try again.")
		return
	}

	tariff, ok, err := h.catalog.Tariff(ctx, draft.TariffID)
	if err != nil || !ok {
		logger.ErrorLogger.Printf("approve chat %d: tariff %d: ok=%v err=%v", buyerChatID, draft.TariffID, ok, err)
		h.restoreDraft(ctx, buyerChatID, draft)
		h.alertCallback(cb, "⚠️ Tariff lookup failed, try again.")
		return
	}
	q := usecase.Quote{Tariff: tariff, ExtraUsers: draft.ExtraUsers, ExtraGB: draft.ExtraGB}

	subURL, err := h.provisionAccount(ctx, buyerChatID, draft.CountryID, draft.PurchaseID, q)
	if err != nil {
		logger.ErrorLogger.Printf("approve chat %d: provision purchase %d: %v", buyerChatID, draft.PurchaseID, err)
		h.restoreDraft(ctx, buyerChatID, draft)
		h.alertCallback(cb, "⚠️ Provisioning failed, purchase stays pending. Try again.")
		return
	}

	completed, err := h.purchases.Complete(ctx, draft.PurchaseID, subURL)
	if err != nil {
		logger.ErrorLogger.Printf("approve chat %d: complete purchase %d: %v", buyerChatID, draft.PurchaseID, err)
		h.alertCallback(cb, "⚠️ Account created but status update failed. Check logs.")
		return
	}
	if !completed {
		// Buyer cancelled between receipt and approval. The panel account
		// exists and needs manual cleanup.
		logger.ErrorLogger.Printf("approve chat %d: purchase %d no longer pending, orphan account %s", buyerChatID, draft.PurchaseID, subURL)
		h.alertCallback(cb, "Order was cancelled meanwhile. Panel account needs manual removal.")
		return
	}

	h.answerCallback(cb)
	h.markAdminVerdict(cb, "✅ Approved")
	h.deliverSubscription(ctx, buyerChatID, subURL)
}

// handleAdminReject consumes the draft, marks the purchase rejected and
// tells the buyer.
func (h *BotHandler) handleAdminReject(ctx context.Context, cb *tgbotapi.CallbackQuery, buyerChatID int64) {
	var draft purchaseDraft
	err := h.shared.GetDel(ctx, buyerChatID, cacheKeyPurchase, &draft)
	if errors.Is(err, cache.ErrMiss) {
		h.alertCallback(cb, "No pending order for this user. Already handled?")
		return
	}
	if err != nil {
		logger.ErrorLogger.Printf("reject chat %d: read draft: %v", buyerChatID, err)
		h.alertCallback(cb, "⚠️ Cache unavailable, try again.")
		return
	}

	ok, err := h.purchases.TransitionStatus(ctx, draft.PurchaseID, entity.PurchasePending, entity.PurchaseRejected)
	if err != nil {
		logger.ErrorLogger.Printf("reject chat %d: purchase %d: %v", buyerChatID, draft.PurchaseID, err)
	} else if !ok {
		logger.InfoLogger.Printf("reject chat %d: purchase %d already left pending", buyerChatID, draft.PurchaseID)
	}

	h.clearAwaitingReceipt(buyerChatID)
	h.answerCallback(cb)
	h.markAdminVerdict(cb, "❌ Rejected")

	markup := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🏠 Main menu", cbMainMenu),
		),
	)
	_ = h.slot.render(ctx, buyerChatID,
		"❌ Your payment was rejected.\nIf you believe this is a mistake, contact support.",
		&markup)
}

// provisionAccount resolves server and panel client and creates the
// remote account. Used by both the paid and the free path.
func (h *BotHandler) provisionAccount(ctx context.Context, chatID, countryID, purchaseID int64, q usecase.Quote) (string, error) {
	server, ok, err := h.catalog.Server(ctx, countryID, q.Tariff.Platform)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("no active server for country %d platform %s", countryID, q.Tariff.Platform)
	}

	client, err := h.panels.Lookup(q.Tariff.Platform)
	if err != nil {
		return "", err
	}

	buyer := ""
	if u, found, err := h.users.Get(ctx, chatID); err == nil && found {
		buyer = u.Name
	}

	settings := usecase.BuildProvisionSettings(q, server, buyer, purchaseID, time.Now())
	settings.ChatID = chatID
	return client.CreateAccount(ctx, server, settings)
}

// deliverSubscription posts the final config link and resets the active
// message so the link survives later menu navigation.
func (h *BotHandler) deliverSubscription(ctx context.Context, chatID int64, subURL string) {
	markup := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🏠 Main menu", cbMainMenu),
		),
	)
	text := fmt.Sprintf(
		"🎉 <b>Your subscription is ready!</b>\n\n🔗 <code>%s</code>\n\nAdd this link to your VPN client.",
		subURL,
	)
	if err := h.slot.render(ctx, chatID, text, &markup); err != nil {
		logger.ErrorLogger.Printf("chat %d: deliver subscription: %v", chatID, err)
		return
	}
	if err := h.slot.reset(ctx, chatID); err != nil {
		logger.ErrorLogger.Printf("chat %d: reset slot: %v", chatID, err)
	}
}

func (h *BotHandler) restoreDraft(ctx context.Context, chatID int64, draft purchaseDraft) {
	if err := h.shared.Set(ctx, chatID, cacheKeyPurchase, draft, cache.DefaultTTL); err != nil {
		logger.ErrorLogger.Printf("chat %d: restore draft: %v", chatID, err)
	}
}

// markAdminVerdict stamps the verdict onto the admin's receipt message
// and drops its keyboard.
func (h *BotHandler) markAdminVerdict(cb *tgbotapi.CallbackQuery, verdict string) {
	if cb.Message == nil {
		return
	}
	edit := tgbotapi.NewEditMessageCaption(cb.Message.Chat.ID, cb.Message.MessageID,
		cb.Message.Caption+"\n\n"+verdict)
	edit.ReplyMarkup = &tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}}
	if _, err := h.bot.Send(edit); err != nil {
		logger.InfoLogger.Printf("admin %d: mark verdict: %v", cb.Message.Chat.ID, err)
	}
}
