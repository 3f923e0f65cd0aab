package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"scam-report-bot/internal/membership"
)

const welcomeText = "🚨 <b>Бот жалоб на скам-казино</b> 🚨\n" +
	"\n" +
	"Добро пожаловать! Этот бот принимает <b>жалобы на мошеннические онлайн-казино</b>.\n" +
	"\n" +
	"Каждый репорт автоматически публикуется в нашем канале как предупреждение для других.\n" +
	"\n" +
	"📌 <b>Команды:</b>\n" +
	"• /report — создать репорт\n" +
	"• /search — найти казино в базе\n" +
	"• /check — проверить ссылку\n" +
	"• /stats — статистика репортов\n" +
	"• /help — справка"

const helpText = "📖 <b>Как пользоваться ботом</b>\n" +
	"\n" +
	"1️⃣ Нажмите /report, чтобы начать\n" +
	"2️⃣ Укажите название казино, ссылку, сумму потерь и опишите случившееся\n" +
	"3️⃣ Приложите скриншоты-доказательства (можно несколько)\n" +
	"4️⃣ Подтвердите — и репорт опубликуется в канале\n" +
	"\n" +
	"🔍 <b>Поиск по базе:</b>\n" +
	"• <code>/search название</code> — поиск по названию\n" +
	"• <code>/check ссылка</code> — проверка ссылки\n" +
	"• <code>/stats</code> — статистика\n" +
	"\n" +
	"⚠️ Отправляйте только достоверные жалобы. За злоупотребления — бан."

// handleStartCommand обрабатывает /start: приветствие с меню.
// Отправитель добавляется в аудиторию рассылки.
func (b *Bot) handleStartCommand(ctx context.Context, msg *tgbotapi.Message) {
	if msg.Chat.IsPrivate() {
		b.trackChat(ctx, msg.Chat)
	}

	markup := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📝 Создать репорт", "start_report"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔍 Найти казино", "start_search"),
			tgbotapi.NewInlineKeyboardButtonData("📊 Статистика", "start_stats"),
		),
	)
	b.replyWithMarkup(msg.Chat.ID, welcomeText, markup)
}

// handleStartMenuCallback обрабатывает кнопки главного меню.
func (b *Bot) handleStartMenuCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	b.answerCallback(query.ID)
	if query.Message == nil {
		return
	}
	chatID := query.Message.Chat.ID

	switch query.Data {
	case "start_report":
		b.reply(chatID, "📝 Нажмите /report, чтобы создать репорт на скам-казино.")
	case "start_search":
		b.reply(chatID,
			"🔍 Использование: <code>/search название_казино</code>\n"+
				"Например: <code>/search mega888</code>")
	case "start_stats":
		b.handleStatsCommand(ctx, chatID)
	}
}

// handleVerifyJoinCallback повторно проверяет членство после кнопки
// «Я вступил».
func (b *Bot) handleVerifyJoinCallback(query *tgbotapi.CallbackQuery) {
	b.answerCallback(query.ID)
	if query.Message == nil {
		return
	}
	chatID := query.Message.Chat.ID

	if b.gate.IsFullyJoined(query.From.ID) {
		b.editMessage(chatID, query.Message.MessageID,
			"✅ <b>Проверка пройдена!</b>\n\n"+
				"Нажмите /report, чтобы создать репорт на скам-казино.")
		return
	}

	b.replyWithMarkup(chatID, membership.NotJoinedText, b.gate.JoinKeyboard())
}
