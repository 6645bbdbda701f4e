package telegram

import (
	"context"
	"encoding/json"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/yourusername/vpn-shop-bot/pkg/logger"
)

const cbCheckJoin = "check_join"

// requireMembership enforces the optional channel gate. Returns true when
// the flow may continue; otherwise the join screen has been rendered.
func (h *BotHandler) requireMembership(ctx context.Context, chatID, userID int64) bool {
	if h.cfg.RequiredChannel == "" {
		return true
	}

	member, err := h.isChannelMember(userID)
	if err != nil {
		// Fail open: a broken gate must not block paying customers.
		logger.ErrorLogger.Printf("chat %d: membership check: %v", chatID, err)
		return true
	}
	if member {
		return true
	}

	channel := strings.TrimPrefix(h.cfg.RequiredChannel, "@")
	markup := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("📢 Join channel", "https://t.me/"+channel),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ I joined", cbCheckJoin),
		),
	)
	_ = h.slot.render(ctx, chatID, "To use the bot, please join our channel first.", &markup)
	return false
}

func (h *BotHandler) isChannelMember(userID int64) (bool, error) {
	resp, err := h.bot.Request(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
			SuperGroupUsername: h.cfg.RequiredChannel,
			UserID:             userID,
		},
	})
	if err != nil {
		return false, err
	}

	var member tgbotapi.ChatMember
	if err := json.Unmarshal(resp.Result, &member); err != nil {
		return false, err
	}
	switch member.Status {
	case "creator", "administrator", "member":
		return true, nil
	}
	return false, nil
}
