package telegram

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/yourusername/vpn-shop-bot/internal/domain/entity"
	"github.com/yourusername/vpn-shop-bot/pkg/logger"
)

const cbNoop = "noop"

// handleStart registers the user and shows the main menu.
func (h *BotHandler) handleStart(ctx context.Context, msg *tgbotapi.Message) {
	name := strings.TrimSpace(msg.From.FirstName + " " + msg.From.LastName)
	if err := h.users.Upsert(ctx, msg.Chat.ID, name, msg.From.UserName); err != nil {
		logger.ErrorLogger.Printf("chat %d: upsert user: %v", msg.Chat.ID, err)
	}

	if !h.requireMembership(ctx, msg.Chat.ID, msg.From.ID) {
		return
	}
	h.showMainMenu(ctx, msg.Chat.ID)
}

func (h *BotHandler) showMainMenu(ctx context.Context, chatID int64) {
	text := "👋 Welcome!\n\nBuy a VPN subscription below. Your config is delivered right here after payment is approved."
	rows := [][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🛒 Buy Subscription", cbBuy),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🎁 Free Test Account", cbFreeTrial),
			tgbotapi.NewInlineKeyboardButtonData("🗂 My Services", cbMyServices),
		),
	}
	if h.cfg.SupportContact != "" {
		contact := strings.TrimPrefix(h.cfg.SupportContact, "@")
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("☎️ Support", "https://t.me/"+contact),
		))
	}
	markup := tgbotapi.NewInlineKeyboardMarkup(rows...)
	if err := h.slot.render(ctx, chatID, text, &markup); err != nil {
		logger.ErrorLogger.Printf("chat %d: render main menu: %v", chatID, err)
	}
}

// showFreeTrialEntry jumps straight to region selection for the first
// zero-price tariff in the catalog.
func (h *BotHandler) showFreeTrialEntry(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	chatID := cb.Message.Chat.ID

	plans, err := h.catalog.Plans(ctx)
	if err != nil {
		logger.ErrorLogger.Printf("chat %d: list plans: %v", chatID, err)
		h.alertCallback(cb, "⚠️ Something went wrong.")
		return
	}
	for _, p := range plans {
		tariffs, err := h.catalog.TariffsByPlan(ctx, p.ID)
		if err != nil {
			logger.ErrorLogger.Printf("chat %d: list tariffs of plan %d: %v", chatID, p.ID, err)
			continue
		}
		for _, t := range tariffs {
			if t.Price.IsZero() {
				h.answerCallback(cb)
				h.showRegions(ctx, chatID, t.ID)
				return
			}
		}
	}
	h.alertCallback(cb, "😔 No test account is available right now.")
}

// showMyServices lists the chat's completed purchases with their
// subscription links.
func (h *BotHandler) showMyServices(ctx context.Context, chatID int64) {
	purchases, err := h.purchases.ListByChat(ctx, chatID)
	if err != nil {
		logger.ErrorLogger.Printf("chat %d: list services: %v", chatID, err)
		h.showOops(ctx, chatID)
		return
	}

	var sb strings.Builder
	sb.WriteString("🗂 <b>Your services</b>\n")
	count := 0
	for _, p := range purchases {
		if p.Status != entity.PurchaseCompleted {
			continue
		}
		count++
		name := fmt.Sprintf("tariff %d", p.TariffID)
		if t, ok, err := h.catalog.Tariff(ctx, p.TariffID); err == nil && ok {
			name = t.Name
		}
		sb.WriteString(fmt.Sprintf("\n#%d · %s · %s\n🔗 <code>%s</code>\n",
			p.ID, name, p.CreatedAt.Format("2006-01-02"), p.SubURL))
	}
	if count == 0 {
		sb.WriteString("\nYou have no active services yet.")
	}

	markup := tgbotapi.NewInlineKeyboardMarkup(backRow(cbMainMenu))
	if err := h.slot.render(ctx, chatID, sb.String(), &markup); err != nil {
		logger.ErrorLogger.Printf("chat %d: render services: %v", chatID, err)
	}
}

// showPlans lists the subscription families.
func (h *BotHandler) showPlans(ctx context.Context, chatID int64) {
	plans, err := h.catalog.Plans(ctx)
	if err != nil {
		logger.ErrorLogger.Printf("chat %d: list plans: %v", chatID, err)
		h.showOops(ctx, chatID)
		return
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, p := range plans {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(p.Name, encodeID(cbPlan, p.ID)),
		))
	}
	rows = append(rows, backRow(cbMainMenu))

	markup := tgbotapi.NewInlineKeyboardMarkup(rows...)
	if err := h.slot.render(ctx, chatID, "📦 Choose a plan:", &markup); err != nil {
		logger.ErrorLogger.Printf("chat %d: render plans: %v", chatID, err)
	}
}

// showTariffs lists the tariffs of one plan with their base prices.
func (h *BotHandler) showTariffs(ctx context.Context, chatID, planID int64) {
	tariffs, err := h.catalog.TariffsByPlan(ctx, planID)
	if err != nil {
		logger.ErrorLogger.Printf("chat %d: list tariffs of plan %d: %v", chatID, planID, err)
		h.showOops(ctx, chatID)
		return
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, t := range tariffs {
		label := fmt.Sprintf("%s — %s Toman", t.Name, t.Price.StringFixed(0))
		if t.Price.IsZero() {
			label = fmt.Sprintf("🎁 %s — free", t.Name)
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, encodeID(cbTariff, t.ID)),
		))
	}
	rows = append(rows, backRow(cbBuy))

	markup := tgbotapi.NewInlineKeyboardMarkup(rows...)
	if err := h.slot.render(ctx, chatID, "💳 Choose a tariff:", &markup); err != nil {
		logger.ErrorLogger.Printf("chat %d: render tariffs: %v", chatID, err)
	}
}

// showRegions lists the countries that actually have an active server for
// the tariff's platform. A region with no live server is never offered.
func (h *BotHandler) showRegions(ctx context.Context, chatID, tariffID int64) {
	tariff, ok, err := h.catalog.Tariff(ctx, tariffID)
	if err != nil || !ok {
		logger.ErrorLogger.Printf("chat %d: tariff %d lookup: ok=%v err=%v", chatID, tariffID, ok, err)
		h.showOops(ctx, chatID)
		return
	}

	countries, err := h.catalog.CountriesForPlatform(ctx, tariff.Platform)
	if err != nil {
		logger.ErrorLogger.Printf("chat %d: countries for %s: %v", chatID, tariff.Platform, err)
		h.showOops(ctx, chatID)
		return
	}
	if len(countries) == 0 {
		markup := tgbotapi.NewInlineKeyboardMarkup(backRow(encodeID(cbPlan, tariff.PlanID)))
		_ = h.slot.render(ctx, chatID, "😔 No servers are available for this tariff right now. Please try again later.", &markup)
		return
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, c := range countries {
		payload := quotePayload{Verb: verbRegion, TariffID: tariff.ID, CountryID: c.ID}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(c.Flag+" "+c.Name, payload.encode()),
		))
	}
	rows = append(rows, backRow(encodeID(cbPlan, tariff.PlanID)))

	markup := tgbotapi.NewInlineKeyboardMarkup(rows...)
	if err := h.slot.render(ctx, chatID, "🌍 Choose a region:", &markup); err != nil {
		logger.ErrorLogger.Printf("chat %d: render regions: %v", chatID, err)
	}
}

// showOops is the generic recoverable-failure screen.
func (h *BotHandler) showOops(ctx context.Context, chatID int64) {
	markup := tgbotapi.NewInlineKeyboardMarkup(backRow(cbMainMenu))
	_ = h.slot.render(ctx, chatID, "⚠️ Something went wrong. Please try again.", &markup)
}

func backRow(data string) []tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🔙 Back", data),
	)
}
