package bot

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Методы этого файла реализуют channel.Messenger поверх Telegram Bot API.

// SendHTML отправляет текстовое сообщение с HTML-разметкой.
func (b *Bot) SendHTML(chatID int64, text string) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	sent, err := b.sendMessageFunc(msg)
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

// SendPhoto отправляет фото с подписью в HTML-разметке.
func (b *Bot) SendPhoto(chatID int64, name string, data []byte, caption string) (int, error) {
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: name, Bytes: data})
	photo.Caption = caption
	photo.ParseMode = tgbotapi.ModeHTML
	sent, err := b.sendMessageFunc(photo)
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

// FetchFile скачивает содержимое файла по его file_id.
func (b *Bot) FetchFile(fileID string) ([]byte, error) {
	fileURL, err := b.getFileDirectURLFunc(fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to get file url: %w", err)
	}

	resp, err := b.httpClient.Get(fileURL)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("unexpected status %d downloading file", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// replicateMessage копирует исходное сообщение в другой чат (для рассылки).
func (b *Bot) replicateMessage(fromChatID int64, messageID int, toChatID int64) error {
	_, err := b.copyMessageFunc(tgbotapi.NewCopyMessage(toChatID, fromChatID, messageID))
	return err
}

// memberStatus возвращает статус пользователя в чате для проверки членства.
func (b *Bot) memberStatus(chatID, userID int64) (string, error) {
	member, err := b.getChatMemberFunc(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
			ChatID: chatID,
			UserID: userID,
		},
	})
	if err != nil {
		return "", err
	}
	return member.Status, nil
}

// classifyDeliveryError разбирает ошибку доставки сообщения получателю.
// 403 означает, что бот заблокирован или выгнан; 400 и 429 — временные
// проблемы (кривой запрос, флуд-лимит), как и сетевые ошибки.
func classifyDeliveryError(err error) Outcome {
	if err == nil {
		return OutcomeDelivered
	}

	var tgErr *tgbotapi.Error
	if errors.As(err, &tgErr) {
		switch tgErr.Code {
		case 403:
			return OutcomeBlocked
		case 400, 429:
			return OutcomeTransient
		default:
			return OutcomeOther
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return OutcomeTransient
	}
	return OutcomeOther
}

// reply отправляет HTML-сообщение и логирует ошибку отправки.
func (b *Bot) reply(chatID int64, text string) {
	if _, err := b.SendHTML(chatID, text); err != nil {
		b.logger.Error("failed to send message",
			slog.Int64("chat_id", chatID), slog.String("error", err.Error()))
	}
}

// replyWithMarkup отправляет HTML-сообщение с inline-клавиатурой.
func (b *Bot) replyWithMarkup(chatID int64, text string, markup tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = markup
	if _, err := b.sendMessageFunc(msg); err != nil {
		b.logger.Error("failed to send message",
			slog.Int64("chat_id", chatID), slog.String("error", err.Error()))
	}
}

// editMessage заменяет текст ранее отправленного сообщения.
func (b *Bot) editMessage(chatID int64, messageID int, text string) {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeHTML
	if _, err := b.requestFunc(edit); err != nil {
		b.logger.Error("failed to edit message",
			slog.Int64("chat_id", chatID), slog.String("error", err.Error()))
	}
}

// answerCallback подтверждает обработку нажатия кнопки.
func (b *Bot) answerCallback(queryID string) {
	if _, err := b.requestFunc(tgbotapi.NewCallback(queryID, "")); err != nil {
		b.logger.Warn("failed to answer callback", slog.String("error", err.Error()))
	}
}
