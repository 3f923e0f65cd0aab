// Package membership проверяет, что пользователь состоит в канале и группе
// проекта, прежде чем ему разрешено пользоваться ботом.
package membership

import (
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// MemberStatusFunc возвращает статус пользователя в чате
// (creator, administrator, member, restricted, left, kicked).
type MemberStatusFunc func(chatID, userID int64) (string, error)

// Gate проверяет членство пользователя в обязательных чатах.
// Нулевой идентификатор чата отключает соответствующую проверку.
type Gate struct {
	channelID    int64
	groupID      int64
	memberStatus MemberStatusFunc
	logger       *slog.Logger
}

// NewGate создает Gate. Статус запрашивается через memberStatus,
// что позволяет подменять Telegram API в тестах.
func NewGate(channelID, groupID int64, memberStatus MemberStatusFunc, logger *slog.Logger) *Gate {
	return &Gate{
		channelID:    channelID,
		groupID:      groupID,
		memberStatus: memberStatus,
		logger:       logger,
	}
}

// IsFullyJoined сообщает, состоит ли пользователь и в канале, и в группе.
// Ошибка запроса статуса трактуется как отсутствие членства.
func (g *Gate) IsFullyJoined(userID int64) bool {
	if g.channelID != 0 && !g.isMember(g.channelID, userID, false) {
		return false
	}
	if g.groupID != 0 && !g.isMember(g.groupID, userID, true) {
		return false
	}
	return true
}

// allowRestricted: в группе пользователь со статусом restricted все еще
// участник, в канале такого статуса не бывает.
func (g *Gate) isMember(chatID, userID int64, allowRestricted bool) bool {
	status, err := g.memberStatus(chatID, userID)
	if err != nil {
		g.logger.Warn("failed to check membership",
			slog.Int64("chat_id", chatID),
			slog.Int64("user_id", userID),
			slog.String("error", err.Error()))
		return false
	}

	switch status {
	case "creator", "administrator", "member":
		return true
	case "restricted":
		return allowRestricted
	default:
		return false
	}
}

// NotJoinedText — сообщение для пользователя, не прошедшего проверку.
const NotJoinedText = "⚠️ <b>Сначала вступите в наш канал и группу!</b>\n\n" +
	"Вступите в оба чата ниже, затем нажмите «✅ Я вступил»."

// JoinKeyboard строит клавиатуру с кнопками вступления и кнопкой повторной
// проверки членства.
func (g *Gate) JoinKeyboard() tgbotapi.InlineKeyboardMarkup {
	var joinRow []tgbotapi.InlineKeyboardButton
	if g.channelID != 0 {
		joinRow = append(joinRow,
			tgbotapi.NewInlineKeyboardButtonURL("📢 Канал", chatLink(g.channelID)))
	}
	if g.groupID != 0 {
		joinRow = append(joinRow,
			tgbotapi.NewInlineKeyboardButtonURL("👥 Группа", chatLink(g.groupID)))
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	if len(joinRow) > 0 {
		rows = append(rows, joinRow)
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("✅ Я вступил", "verify_join")))

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// chatLink превращает внутренний идентификатор -100xxxxxxxxxx в ссылку t.me/c/.
func chatLink(chatID int64) string {
	return fmt.Sprintf("https://t.me/c/%s",
		strings.TrimPrefix(fmt.Sprintf("%d", chatID), "-100"))
}
