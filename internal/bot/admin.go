package bot

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"log/slog"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/xuri/excelize/v2"

	"scam-report-bot/internal/storage"
)

const ownerOnlyText = "🚫 Эта команда только для владельца."

// handleBanCommand запрещает пользователю отправлять репорты.
// Использование: /ban <user_id> [причина]
func (b *Bot) handleBanCommand(ctx context.Context, msg *tgbotapi.Message) {
	if !b.isOwner(msg.From.ID) {
		b.reply(msg.Chat.ID, ownerOnlyText)
		return
	}

	args := strings.Fields(msg.CommandArguments())
	if len(args) == 0 {
		b.reply(msg.Chat.ID,
			"Использование: <code>/ban user_id причина</code>\n"+
				"Например: <code>/ban 123456789 спам фейковыми репортами</code>")
		return
	}

	targetID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		b.reply(msg.Chat.ID, "❌ user_id должен быть числом.")
		return
	}
	reason := strings.Join(args[1:], " ")

	if err := b.store.BanUser(ctx, targetID, msg.From.ID, reason); err != nil {
		b.logger.Error("failed to ban user", slog.String("error", err.Error()))
		b.reply(msg.Chat.ID, "❌ Не удалось забанить пользователя.")
		return
	}

	reasonText := ""
	if reason != "" {
		reasonText = fmt.Sprintf("\n📝 Причина: %s", html.EscapeString(reason))
	}
	b.reply(msg.Chat.ID, fmt.Sprintf("✅ Пользователь <code>%d</code> забанен.%s", targetID, reasonText))
	b.logger.Info("user banned", slog.Int64("user_id", targetID), slog.String("reason", reason))
}

// handleUnbanCommand убирает пользователя из бан-листа.
func (b *Bot) handleUnbanCommand(ctx context.Context, msg *tgbotapi.Message) {
	if !b.isOwner(msg.From.ID) {
		b.reply(msg.Chat.ID, ownerOnlyText)
		return
	}

	targetID, err := strconv.ParseInt(strings.TrimSpace(msg.CommandArguments()), 10, 64)
	if err != nil {
		b.reply(msg.Chat.ID, "Использование: <code>/unban user_id</code>")
		return
	}

	switch err := b.store.UnbanUser(ctx, targetID); {
	case err == nil:
		b.reply(msg.Chat.ID, fmt.Sprintf("✅ Пользователь <code>%d</code> разбанен.", targetID))
	case err == storage.ErrNotFound:
		b.reply(msg.Chat.ID, fmt.Sprintf("❌ Пользователя <code>%d</code> нет в бан-листе.", targetID))
	default:
		b.logger.Error("failed to unban user", slog.String("error", err.Error()))
		b.reply(msg.Chat.ID, "❌ Не удалось разбанить пользователя.")
	}
}

// handleBanlistCommand показывает бан-лист.
func (b *Bot) handleBanlistCommand(ctx context.Context, msg *tgbotapi.Message) {
	if !b.isOwner(msg.From.ID) {
		b.reply(msg.Chat.ID, ownerOnlyText)
		return
	}

	banned, err := b.store.BannedUsers(ctx)
	if err != nil {
		b.logger.Error("failed to load ban list", slog.String("error", err.Error()))
		b.reply(msg.Chat.ID, "❌ Не удалось загрузить бан-лист.")
		return
	}
	if len(banned) == 0 {
		b.reply(msg.Chat.ID, "✅ Бан-лист пуст.")
		return
	}

	var sb strings.Builder
	sb.WriteString("🚫 <b>Забаненные пользователи:</b>\n\n")
	for _, u := range banned {
		reason := ""
		if u.Reason != "" {
			reason = " — " + html.EscapeString(u.Reason)
		}
		sb.WriteString(fmt.Sprintf("• <code>%d</code>%s | 📅 %s\n",
			u.UserID, reason, u.BannedAt.UTC().Format("02/01/2006")))
	}
	b.reply(msg.Chat.ID, sb.String())
}

// handleDeleteCommand удаляет репорт и, по возможности, его пост в канале.
func (b *Bot) handleDeleteCommand(ctx context.Context, msg *tgbotapi.Message) {
	if !b.isOwner(msg.From.ID) {
		b.reply(msg.Chat.ID, ownerOnlyText)
		return
	}

	reportID, err := strconv.ParseInt(strings.TrimSpace(msg.CommandArguments()), 10, 64)
	if err != nil {
		b.reply(msg.Chat.ID, "Использование: <code>/delete report_id</code>")
		return
	}

	report, err := b.store.ReportByID(ctx, reportID)
	if err == storage.ErrNotFound {
		b.reply(msg.Chat.ID, fmt.Sprintf("❌ Репорт #%d не найден.", reportID))
		return
	}
	if err != nil {
		b.logger.Error("failed to load report", slog.String("error", err.Error()))
		b.reply(msg.Chat.ID, "❌ Техническая ошибка. Попробуйте позже.")
		return
	}

	// Пост в канале убираем по возможности; его отсутствие не блокирует
	// удаление записи.
	if report.ChannelMessageID != 0 && b.cfg.ChannelID != 0 {
		del := tgbotapi.NewDeleteMessage(b.cfg.ChannelID, report.ChannelMessageID)
		if _, err := b.requestFunc(del); err != nil {
			b.logger.Warn("failed to delete channel message",
				slog.Int64("report_id", reportID), slog.String("error", err.Error()))
		}
	}

	if err := b.store.DeleteReport(ctx, reportID); err != nil {
		b.logger.Error("failed to delete report", slog.String("error", err.Error()))
		b.reply(msg.Chat.ID, "❌ Не удалось удалить репорт.")
		return
	}

	b.reply(msg.Chat.ID, fmt.Sprintf("✅ Репорт #%04d (<b>%s</b>) удален.",
		reportID, html.EscapeString(report.CasinoName)))
	b.logger.Info("report deleted", slog.Int64("report_id", reportID))
}

// handleExportCommand выгружает все репорты Excel-файлом.
func (b *Bot) handleExportCommand(ctx context.Context, msg *tgbotapi.Message) {
	if !b.isOwner(msg.From.ID) {
		b.reply(msg.Chat.ID, ownerOnlyText)
		return
	}

	reports, err := b.store.AllReports(ctx)
	if err != nil {
		b.logger.Error("failed to load reports for export", slog.String("error", err.Error()))
		b.reply(msg.Chat.ID, "❌ Не удалось выгрузить репорты.")
		return
	}
	if len(reports) == 0 {
		b.reply(msg.Chat.ID, "Репортов пока нет — выгружать нечего.")
		return
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			b.logger.Error("failed to close excel file", slog.String("error", err.Error()))
		}
	}()

	const sheetName = "Репорты"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		b.logger.Error("failed to create excel sheet", slog.String("error", err.Error()))
		b.reply(msg.Chat.ID, "❌ Не удалось сформировать Excel-файл.")
		return
	}
	f.SetActiveSheet(index)

	headers := []string{"ID", "Дата", "Казино", "Ссылка", "Потеряно", "Описание",
		"Автор", "User ID", "Скриншотов", "Сообщение в канале"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheetName, cell, h)
	}

	for i, r := range reports {
		row := i + 2
		author := r.Username
		if author == "" {
			author = r.FirstName
		}
		values := []any{
			r.ID,
			r.CreatedAt.UTC().Format(time.RFC3339),
			r.CasinoName,
			r.CasinoLink,
			r.AmountLost,
			r.Description,
			author,
			r.UserID,
			len(r.Screenshots),
			r.ChannelMessageID,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(sheetName, cell, v)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		b.logger.Error("failed to write excel to buffer", slog.String("error", err.Error()))
		b.reply(msg.Chat.ID, "❌ Не удалось сформировать Excel-файл.")
		return
	}

	doc := tgbotapi.NewDocument(msg.Chat.ID, tgbotapi.FileBytes{
		Name:  fmt.Sprintf("scam_reports_%s.xlsx", time.Now().Format("2006-01-02_15-04-05")),
		Bytes: buf.Bytes(),
	})
	doc.Caption = fmt.Sprintf("Выгрузка готова: %d репортов.", len(reports))
	if _, err := b.sendMessageFunc(doc); err != nil {
		b.logger.Error("failed to send export", slog.String("error", err.Error()))
	}
}
