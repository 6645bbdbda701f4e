package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/yourusername/vpn-shop-bot/internal/domain/entity"
	"github.com/yourusername/vpn-shop-bot/internal/usecase"
	"github.com/yourusername/vpn-shop-bot/pkg/logger"
)

// renderInvoice draws the negotiation screen: current totals, recomputed
// price and the +/- controls the tariff allows. The price shown is always
// derived from the catalog row, never from the callback payload.
func (h *BotHandler) renderInvoice(ctx context.Context, chatID int64, q usecase.Quote, country entity.Country) {
	price, err := q.Price()
	if err != nil {
		logger.ErrorLogger.Printf("chat %d: price quote for tariff %d: %v", chatID, q.Tariff.ID, err)
		h.showOops(ctx, chatID)
		return
	}

	users := "♾ Unlimited"
	if !q.Tariff.Unlimited() {
		users = fmt.Sprintf("%d", q.TotalUsers())
	}

	text := fmt.Sprintf(
		"🧾 <b>Invoice</b>\n\n"+
			"📦 Plan: %s\n"+
			"🌍 Region: %s %s\n"+
			"👤 Users: %s\n"+
			"📊 Volume: %d GB\n"+
			"⏳ Duration: %d days\n\n"+
			"💰 <b>Total: %s Toman</b>\n\n"+
			"💳 Card: <code>%s</code>\n"+
			"👤 Holder: %s\n\n"+
			"Transfer the exact amount, then press «I have paid» and send a photo of the receipt.",
		q.Tariff.Name, country.Flag, country.Name, users, q.TotalGB(), q.Tariff.DurationDays,
		price.StringFixed(0), h.cfg.CardNumber, h.cfg.CardHolder,
	)

	base := quotePayload{TariffID: q.Tariff.ID, CountryID: country.ID, ExtraUsers: q.ExtraUsers, ExtraGB: q.ExtraGB}
	withVerb := func(verb string) string {
		p := base
		p.Verb = verb
		return p.encode()
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	if q.Tariff.UserExtendable && !q.Tariff.Unlimited() {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➖", withVerb(verbRemoveUser)),
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("👤 %d users", q.TotalUsers()), cbNoop),
			tgbotapi.NewInlineKeyboardButtonData("➕", withVerb(verbAddUser)),
		))
	}
	if q.Tariff.VolumeExtendable {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➖", withVerb(verbRemoveGig)),
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("📊 %d GB", q.TotalGB()), cbNoop),
			tgbotapi.NewInlineKeyboardButtonData("➕", withVerb(verbAddGig)),
		))
	}
	rows = append(rows,
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ I have paid", withVerb(verbPaid)),
		),
		backRow(encodeID(cbTariff, q.Tariff.ID)),
	)

	markup := tgbotapi.NewInlineKeyboardMarkup(rows...)
	if err := h.slot.render(ctx, chatID, text, &markup); err != nil {
		logger.ErrorLogger.Printf("chat %d: render invoice: %v", chatID, err)
	}
}
