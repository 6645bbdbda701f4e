package telegram

import (
	"bytes"
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/xuri/excelize/v2"

	"github.com/yourusername/vpn-shop-bot/pkg/logger"
)

// handleExport sends the admin the full purchase history as an xlsx file.
func (h *BotHandler) handleExport(ctx context.Context, adminChatID int64) {
	purchases, err := h.purchases.ListAll(ctx)
	if err != nil {
		logger.ErrorLogger.Printf("admin %d: export: list purchases: %v", adminChatID, err)
		h.sendPlain(adminChatID, "⚠️ Export failed, see logs.")
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Purchases"
	index, err := f.NewSheet(sheet)
	if err != nil {
		logger.ErrorLogger.Printf("admin %d: export: new sheet: %v", adminChatID, err)
		h.sendPlain(adminChatID, "⚠️ Export failed, see logs.")
		return
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{"ID", "Chat ID", "Tariff ID", "Amount", "Status", "Sub URL", "Created At"}
	for i, hd := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, hd)
	}
	for row, p := range purchases {
		values := []any{
			p.ID, p.ChatID, p.TariffID, p.Amount.StringFixed(0),
			p.Status, p.SubURL, p.CreatedAt.Format(time.RFC3339),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		logger.ErrorLogger.Printf("admin %d: export: write xlsx: %v", adminChatID, err)
		h.sendPlain(adminChatID, "⚠️ Export failed, see logs.")
		return
	}

	name := fmt.Sprintf("purchases-%s.xlsx", time.Now().Format("2006-01-02"))
	doc := tgbotapi.NewDocument(adminChatID, tgbotapi.FileBytes{Name: name, Bytes: buf.Bytes()})
	doc.Caption = fmt.Sprintf("📊 %d purchases", len(purchases))
	if _, err := h.bot.Send(doc); err != nil {
		logger.ErrorLogger.Printf("admin %d: export: send document: %v", adminChatID, err)
	}
}

func (h *BotHandler) sendPlain(chatID int64, text string) {
	if _, err := h.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		logger.ErrorLogger.Printf("chat %d: send: %v", chatID, err)
	}
}
