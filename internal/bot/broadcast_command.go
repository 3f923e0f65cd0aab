package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// handleBroadcastCommand готовит рассылку: команда должна быть ответом на
// сообщение, которое нужно разослать. Только для владельца.
func (b *Bot) handleBroadcastCommand(ctx context.Context, msg *tgbotapi.Message) {
	if !b.isOwner(msg.From.ID) {
		b.reply(msg.Chat.ID, ownerOnlyText)
		return
	}

	if msg.ReplyToMessage == nil {
		b.reply(msg.Chat.ID,
			"📢 <b>Как пользоваться /broadcast:</b>\n\n"+
				"1️⃣ Отправьте сообщение, которое нужно разослать (текст/фото/видео)\n"+
				"2️⃣ Ответьте на него командой <code>/broadcast</code>\n\n"+
				"Бот скопирует его всем пользователям, группам и каналам.")
		return
	}

	chats, err := b.store.ListActiveChats(ctx)
	if err != nil {
		b.logger.Error("failed to list audience", slog.String("error", err.Error()))
		b.reply(msg.Chat.ID, "❌ Не удалось загрузить аудиторию.")
		return
	}
	if len(chats) == 0 {
		b.reply(msg.Chat.ID, "❌ В базе нет активных чатов.")
		return
	}

	var privateCount, groupCount, channelCount int
	for _, c := range chats {
		switch c.ChatType {
		case "private":
			privateCount++
		case "group", "supergroup":
			groupCount++
		case "channel":
			channelCount++
		}
	}

	b.pendingMu.Lock()
	b.pending = &pendingBroadcast{
		fromChatID: msg.Chat.ID,
		messageID:  msg.ReplyToMessage.MessageID,
	}
	b.pendingMu.Unlock()

	markup := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Да, разослать!", "broadcast_confirm"),
			tgbotapi.NewInlineKeyboardButtonData("❌ Отмена", "broadcast_cancel"),
		),
	)
	b.replyWithMarkup(msg.Chat.ID, fmt.Sprintf(
		"📢 <b>Подтверждение рассылки</b>\n\n"+
			"Сообщение будет отправлено:\n"+
			"👤 Пользователям: <b>%d</b>\n"+
			"👥 Группам: <b>%d</b>\n"+
			"📣 Каналам: <b>%d</b>\n"+
			"📊 Всего: <b>%d</b>\n\n"+
			"Продолжить?",
		privateCount, groupCount, channelCount, len(chats)), markup)
}

// handleBroadcastConfirmCallback запускает подтвержденную рассылку.
func (b *Bot) handleBroadcastConfirmCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	b.answerCallback(query.ID)
	if !b.isOwner(query.From.ID) || query.Message == nil {
		return
	}
	chatID := query.Message.Chat.ID

	b.pendingMu.Lock()
	pending := b.pending
	b.pending = nil
	b.pendingMu.Unlock()

	if pending == nil {
		b.editMessage(chatID, query.Message.MessageID, "❌ Сессия рассылки истекла. Попробуйте снова.")
		return
	}

	b.editMessage(chatID, query.Message.MessageID, "📢 Рассылка идет... Подождите ⏳")

	tally, err := b.broadcaster.Run(ctx, pending.fromChatID, pending.messageID)
	if errors.Is(err, ErrBroadcastBusy) {
		b.editMessage(chatID, query.Message.MessageID,
			"⏳ Предыдущая рассылка еще не закончилась. Дождитесь ее завершения.")
		return
	}
	if err != nil {
		b.logger.Error("broadcast failed", slog.String("error", err.Error()))
		b.editMessage(chatID, query.Message.MessageID, "❌ Рассылка не удалась. Попробуйте позже.")
		return
	}

	b.editMessage(chatID, query.Message.MessageID, fmt.Sprintf(
		"📢 <b>Рассылка завершена!</b>\n\n"+
			"✅ Доставлено: <b>%d</b>\n"+
			"🚫 Заблокировали: <b>%d</b>\n"+
			"❌ Не доставлено: <b>%d</b>\n"+
			"📊 Всего: <b>%d</b>",
		tally.Success, tally.Blocked, tally.Failed, tally.Total()))
}

// handleBroadcastCancelCallback отменяет подготовленную рассылку.
func (b *Bot) handleBroadcastCancelCallback(query *tgbotapi.CallbackQuery) {
	b.answerCallback(query.ID)
	if !b.isOwner(query.From.ID) || query.Message == nil {
		return
	}

	b.pendingMu.Lock()
	b.pending = nil
	b.pendingMu.Unlock()

	b.editMessage(query.Message.Chat.ID, query.Message.MessageID, "❌ Рассылка отменена.")
}
