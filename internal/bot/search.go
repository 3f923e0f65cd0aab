package bot

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/mattn/go-runewidth"

	"scam-report-bot/internal/domain"
)

// handleSearchCommand ищет репорты по названию казино.
func (b *Bot) handleSearchCommand(ctx context.Context, msg *tgbotapi.Message) {
	query := strings.TrimSpace(msg.CommandArguments())
	if query == "" {
		b.reply(msg.Chat.ID,
			"🔍 Использование: <code>/search название_казино</code>\n"+
				"Например: <code>/search mega888</code>")
		return
	}

	reports, err := b.store.SearchReports(ctx, query)
	if err != nil {
		b.logger.Error("search failed", slog.String("error", err.Error()))
		b.reply(msg.Chat.ID, "❌ Техническая ошибка. Попробуйте позже.")
		return
	}
	if len(reports) == 0 {
		b.reply(msg.Chat.ID, fmt.Sprintf(
			"❌ По запросу <b>%s</b> репортов не найдено.", html.EscapeString(query)))
		return
	}

	b.reply(msg.Chat.ID, fmt.Sprintf("🔍 <b>Результаты поиска: %s</b>\n\n%s",
		html.EscapeString(query), renderReportsTable(reports)))
}

// handleCheckCommand проверяет, жаловались ли уже на ссылку.
func (b *Bot) handleCheckCommand(ctx context.Context, msg *tgbotapi.Message) {
	link := strings.TrimSpace(msg.CommandArguments())
	if link == "" {
		b.reply(msg.Chat.ID,
			"🔗 Использование: <code>/check ссылка_казино</code>\n"+
				"Например: <code>/check lucky.bet</code>")
		return
	}

	reports, err := b.store.ReportsByLink(ctx, link)
	if err != nil {
		b.logger.Error("link check failed", slog.String("error", err.Error()))
		b.reply(msg.Chat.ID, "❌ Техническая ошибка. Попробуйте позже.")
		return
	}
	if len(reports) == 0 {
		b.reply(msg.Chat.ID, fmt.Sprintf(
			"✅ На ссылку <b>%s</b> жалоб пока нет.", html.EscapeString(link)))
		return
	}

	b.reply(msg.Chat.ID, fmt.Sprintf(
		"⚠️ <b>На %s уже есть %d жалоб(ы)!</b>\n\n%s",
		html.EscapeString(link), len(reports), renderReportsTable(reports)))
}

// handleStatsCommand показывает статистику репортов.
func (b *Bot) handleStatsCommand(ctx context.Context, chatID int64) {
	stats, err := b.store.Stats(ctx)
	if err != nil {
		b.logger.Error("stats failed", slog.String("error", err.Error()))
		b.reply(chatID, "❌ Техническая ошибка. Попробуйте позже.")
		return
	}

	var sb strings.Builder
	sb.WriteString("📊 <b>Статистика репортов</b>\n\n")
	sb.WriteString(fmt.Sprintf("📋 <b>Всего репортов:</b> %d\n", stats.Total))

	if len(stats.TopCasinos) > 0 {
		medals := []string{"🥇", "🥈", "🥉", "4️⃣", "5️⃣"}
		sb.WriteString("\n🏆 <b>Топ казино по жалобам:</b>\n")
		for i, cc := range stats.TopCasinos {
			sb.WriteString(fmt.Sprintf("%s <b>%s</b> — %d\n",
				medals[i], html.EscapeString(cc.Name), cc.Count))
		}
	} else {
		sb.WriteString("\nРепортов пока нет.")
	}

	b.reply(chatID, sb.String())
}

// Ширина колонок таблицы результатов поиска.
const (
	casinoColWidth = 18
	amountColWidth = 10
)

// renderReportsTable строит выровненную таблицу репортов в <pre><code>.
// Выравнивание делается по видимой ширине строк, чтобы не разъезжались
// колонки с CJK и другими широкими символами.
func renderReportsTable(reports []domain.Report) string {
	var sb strings.Builder
	sb.WriteString("<pre><code>")

	sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
		pad("ID", 5), pad("Казино", casinoColWidth), pad("Потеряно", amountColWidth), pad("Дата", 10)))
	sb.WriteString(fmt.Sprintf("|%s|%s|%s|%s|\n",
		strings.Repeat("-", 7),
		strings.Repeat("-", casinoColWidth+2),
		strings.Repeat("-", amountColWidth+2),
		strings.Repeat("-", 12)))

	for _, r := range reports {
		name := html.EscapeString(truncate(r.CasinoName, casinoColWidth))
		amount := html.EscapeString(truncate(r.AmountLost, amountColWidth))
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
			pad(fmt.Sprintf("#%04d", r.ID), 5),
			pad(name, casinoColWidth),
			pad(amount, amountColWidth),
			pad(r.CreatedAt.UTC().Format("02/01/2006"), 10)))
	}

	sb.WriteString("</code></pre>")
	return sb.String()
}

func pad(s string, width int) string {
	if extra := width - runewidth.StringWidth(s); extra > 0 {
		return s + strings.Repeat(" ", extra)
	}
	return s
}

func truncate(s string, width int) string {
	s = strings.ReplaceAll(strings.ToValidUTF8(s, ""), "\n", " ")
	return runewidth.Truncate(s, width, "…")
}
