package bot

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"scam-report-bot/internal/membership"
)

// handleReportCommand начинает пошаговый диалог создания репорта.
// Перед созданием сессии пользователь должен пройти проверку членства
// и не быть в бан-листе; существующая сессия молча заменяется новой.
func (b *Bot) handleReportCommand(ctx context.Context, msg *tgbotapi.Message) {
	user := msg.From

	if !b.gate.IsFullyJoined(user.ID) {
		b.replyWithMarkup(msg.Chat.ID, membership.NotJoinedText, b.gate.JoinKeyboard())
		return
	}

	banned, err := b.store.IsBanned(ctx, user.ID)
	if err != nil {
		b.logger.Error("failed to check ban", slog.Int64("user_id", user.ID),
			slog.String("error", err.Error()))
		b.reply(msg.Chat.ID, "❌ Техническая ошибка. Попробуйте позже.")
		return
	}
	if banned {
		b.reply(msg.Chat.ID, "🚫 Ваш аккаунт заблокирован и не может отправлять репорты.")
		return
	}

	b.sessions.Set(user.ID, NewSession(user.ID, user.UserName, user.FirstName))

	b.reply(msg.Chat.ID,
		"📝 <b>Новый репорт на скам-казино</b>\n\n"+
			"Введите <b>название казино</b>, которое вас обмануло.\n\n"+
			"Например: <i>Mega888, Lucky Palace</i>\n\n"+
			"Нажмите /cancel для отмены.")
}

// handleSessionMessage обрабатывает сообщение пользователя с активной сессией.
func (b *Bot) handleSessionMessage(ctx context.Context, msg *tgbotapi.Message, session *Session) {
	if len(msg.Photo) > 0 && session.Stage == StageScreenshots {
		b.handleScreenshot(msg, session)
		return
	}

	if session.HandleText(msg.Text) {
		b.promptStage(msg.Chat.ID, session)
		return
	}

	// Ввод не принят — повторяем вопрос текущего этапа, сессия не меняется.
	b.reprompt(msg.Chat.ID, session)
}

// handleScreenshot добавляет в сессию скриншот в наибольшем разрешении.
func (b *Bot) handleScreenshot(msg *tgbotapi.Message, session *Session) {
	// Telegram присылает варианты фото по возрастанию разрешения —
	// берем последний.
	fileID := msg.Photo[len(msg.Photo)-1].FileID

	count, advanced, ok := session.AddScreenshot(fileID)
	if !ok {
		return
	}
	if advanced {
		b.reply(msg.Chat.ID, fmt.Sprintf("✅ Скриншот #%d принят — это максимум.", count))
		b.showPreview(msg.Chat.ID, session)
		return
	}

	b.reply(msg.Chat.ID, fmt.Sprintf(
		"✅ Скриншот #%d принят!\n\n"+
			"Пришлите еще или нажмите /done, когда закончите.\n"+
			"(Максимум %d скриншотов для красивой сетки)",
		count, maxScreenshots))
}

// handleCancelCommand отменяет диалог из любого состояния.
func (b *Bot) handleCancelCommand(msg *tgbotapi.Message) {
	if _, ok := b.sessions.Get(msg.From.ID); !ok {
		b.reply(msg.Chat.ID, "Сейчас нечего отменять.")
		return
	}
	b.sessions.Delete(msg.From.ID)
	b.reply(msg.Chat.ID, "❌ Репорт отменен.")
}

// handleSkipCommand пропускает необязательный этап.
func (b *Bot) handleSkipCommand(msg *tgbotapi.Message) {
	session, ok := b.sessions.Get(msg.From.ID)
	if !ok || !session.Skip() {
		b.reply(msg.Chat.ID, "Сейчас нечего пропускать.")
		return
	}
	b.promptStage(msg.Chat.ID, session)
}

// handleDoneCommand завершает сбор скриншотов.
func (b *Bot) handleDoneCommand(msg *tgbotapi.Message) {
	session, ok := b.sessions.Get(msg.From.ID)
	if !ok || !session.Done() {
		b.reply(msg.Chat.ID, "Команда /done работает только при отправке скриншотов.")
		return
	}
	b.showPreview(msg.Chat.ID, session)
}

// promptStage задает вопрос этапа, на котором сейчас находится сессия.
func (b *Bot) promptStage(chatID int64, session *Session) {
	switch session.Stage {
	case StageCasinoLink:
		b.reply(chatID,
			"🔗 Введите <b>ссылку на казино</b>.\n\n"+
				"Например: <i>www.mega888.com</i>\n\n"+
				"Нажмите /skip, чтобы пропустить.")
	case StageAmount:
		b.reply(chatID,
			"💰 Какую <b>сумму вы потеряли</b>?\n\n"+
				"Например: <i>500</i>, <i>10000</i>\n\n"+
				"Нажмите /skip, чтобы пропустить.")
	case StageDescription:
		b.reply(chatID,
			"📝 Расскажите, <b>что произошло</b>.\n\n"+
				"Опишите, как именно казино вас обмануло.\n\n"+
				"<i>Например: внес депозит, выиграл, а при выводе аккаунт "+
				"заблокировали. Поддержка не отвечает.</i>")
	case StageScreenshots:
		b.reply(chatID,
			"📸 Пришлите <b>скриншоты-доказательства</b>.\n\n"+
				"Можно отправить несколько по одному. "+
				"Когда закончите — нажмите /done.\n\n"+
				"Нажмите /skip, если скриншотов нет.")
	case StageConfirm:
		b.showPreview(chatID, session)
	}
}

// reprompt повторяет вопрос текущего этапа после непринятого ввода.
func (b *Bot) reprompt(chatID int64, session *Session) {
	switch session.Stage {
	case StageCasinoName:
		b.reply(chatID, "Введите название казино текстом.")
	case StageScreenshots:
		b.reply(chatID, "Пришлите фото, либо нажмите /done или /skip.")
	case StageConfirm:
		b.reply(chatID, "Подтвердите или отклоните репорт кнопками выше.")
	default:
		b.reply(chatID, "Ответьте текстом или нажмите /skip.")
	}
}

// showPreview показывает собранный репорт и кнопки подтверждения.
func (b *Bot) showPreview(chatID int64, session *Session) {
	var sb strings.Builder
	sb.WriteString("📋 <b>Предпросмотр репорта:</b>\n\n")
	sb.WriteString(fmt.Sprintf("🎰 <b>Казино:</b> %s\n", html.EscapeString(session.CasinoName)))
	if session.CasinoLink != "" {
		sb.WriteString(fmt.Sprintf("🔗 <b>Ссылка:</b> %s\n", html.EscapeString(session.CasinoLink)))
	}
	if session.AmountLost != "" {
		sb.WriteString(fmt.Sprintf("💰 <b>Потеряно:</b> %s\n", html.EscapeString(session.AmountLost)))
	}
	sb.WriteString(fmt.Sprintf("\n📝 <b>Описание:</b>\n%s\n", html.EscapeString(session.Description)))
	sb.WriteString(fmt.Sprintf("\n📸 <b>Скриншоты:</b> %d шт.\n", len(session.Screenshots)))
	sb.WriteString("\n<b>Отправить репорт?</b>")

	markup := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Отправить", "confirm_yes"),
			tgbotapi.NewInlineKeyboardButtonData("❌ Отменить", "confirm_no"),
		),
	)
	b.replyWithMarkup(chatID, sb.String(), markup)
}

// handleConfirmCallback обрабатывает кнопки подтверждения репорта.
func (b *Bot) handleConfirmCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	b.answerCallback(query.ID)
	if query.Message == nil {
		return
	}
	chatID := query.Message.Chat.ID

	session, ok := b.sessions.Get(query.From.ID)
	if !ok || session.Stage != StageConfirm {
		b.editMessage(chatID, query.Message.MessageID, "Сессия репорта истекла. Нажмите /report, чтобы начать заново.")
		return
	}

	if query.Data == "confirm_no" {
		b.sessions.Delete(query.From.ID)
		b.editMessage(chatID, query.Message.MessageID, "❌ Репорт отменен.")
		return
	}

	b.editMessage(chatID, query.Message.MessageID, "⏳ Отправляем репорт...")
	b.sessions.Delete(query.From.ID)

	report, err := b.store.CreateReport(ctx, session.Report())
	if err != nil {
		b.logger.Error("failed to create report", slog.String("error", err.Error()))
		b.reply(chatID, "❌ Техническая ошибка, репорт не сохранен. Попробуйте еще раз.")
		return
	}

	logger := b.logger.With(slog.Int64("report_id", report.ID))
	if _, err := b.publisher.Publish(ctx, report); err != nil {
		// Репорт сохранен; публикацию можно повторить вручную позже.
		logger.Error("failed to publish report", slog.String("error", err.Error()))
		b.reply(chatID, fmt.Sprintf(
			"⚠️ Репорт <b>#%04d</b> сохранен, но опубликовать его в канале не удалось. "+
				"Мы опубликуем его позже.", report.ID))
		return
	}

	logger.Info("report submitted and published")
	b.reply(chatID, fmt.Sprintf(
		"✅ <b>Репорт #%04d отправлен!</b>\n\n"+
			"Он опубликован в канале. Спасибо, что помогаете сообществу! 🙏",
		report.ID))
}
