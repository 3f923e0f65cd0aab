// Package channel публикует готовые репорты в публичный Telegram-канал.
package channel

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"scam-report-bot/internal/collage"
	"scam-report-bot/internal/domain"
)

// Messenger — минимальный интерфейс отправки, который нужен публикации.
// Реализуется ботом поверх Telegram Bot API.
type Messenger interface {
	// SendHTML отправляет текстовое сообщение с HTML-разметкой
	// и возвращает идентификатор отправленного сообщения.
	SendHTML(chatID int64, text string) (int, error)
	// SendPhoto отправляет фото с подписью в HTML-разметке.
	SendPhoto(chatID int64, name string, data []byte, caption string) (int, error)
	// FetchFile скачивает содержимое файла по его file_id.
	FetchFile(fileID string) ([]byte, error)
}

// PostSaver записывает идентификатор опубликованного сообщения в хранилище.
type PostSaver interface {
	SetChannelMessage(ctx context.Context, reportID int64, messageID int) error
}

// Publisher формирует пост по репорту и отправляет его в канал.
type Publisher struct {
	channelID  int64
	messenger  Messenger
	store      PostSaver
	compositor *collage.Compositor
	logger     *slog.Logger
}

// NewPublisher создает Publisher для указанного канала.
func NewPublisher(channelID int64, m Messenger, store PostSaver, c *collage.Compositor, logger *slog.Logger) *Publisher {
	return &Publisher{
		channelID:  channelID,
		messenger:  m,
		store:      store,
		compositor: c,
		logger:     logger,
	}
}

// Publish отправляет репорт в канал и сохраняет идентификатор сообщения.
// Скриншоты, которые не удалось скачать или декодировать, пропускаются;
// если не осталось ни одного, отправляется текстовый пост. Ошибка отправки
// фатальна для вызова: репорт остается в базе неопубликованным, повторные
// попытки — ответственность вызывающей стороны.
func (p *Publisher) Publish(ctx context.Context, r domain.Report) (int, error) {
	caption := formatCaption(r)
	logger := p.logger.With(slog.Int64("report_id", r.ID))

	messageID, err := p.sendPost(r, caption, logger)
	if err != nil {
		return 0, fmt.Errorf("failed to post report %d to channel: %w", r.ID, err)
	}

	if err := p.store.SetChannelMessage(ctx, r.ID, messageID); err != nil {
		// Пост уже в канале, поэтому ошибку записи не превращаем в фатальную.
		logger.Error("failed to save channel message id",
			slog.Int("message_id", messageID), slog.String("error", err.Error()))
	}

	logger.Info("report posted to channel", slog.Int("message_id", messageID))
	return messageID, nil
}

func (p *Publisher) sendPost(r domain.Report, caption string, logger *slog.Logger) (int, error) {
	if len(r.Screenshots) == 0 {
		return p.messenger.SendHTML(p.channelID, caption)
	}

	images := make([][]byte, 0, len(r.Screenshots))
	for _, fileID := range r.Screenshots {
		data, err := p.messenger.FetchFile(fileID)
		if err != nil {
			logger.Warn("failed to fetch screenshot",
				slog.String("file_id", fileID), slog.String("error", err.Error()))
			continue
		}
		images = append(images, data)
	}

	if len(images) > 0 {
		grid, err := p.compositor.Compose(images)
		if err != nil {
			logger.Warn("failed to compose collage, falling back to text",
				slog.String("error", err.Error()))
		} else {
			return p.messenger.SendPhoto(p.channelID, "scam_report.jpg", grid, caption)
		}
	}

	return p.messenger.SendHTML(p.channelID, caption)
}

// formatCaption собирает подпись поста. Порядок полей фиксирован:
// заголовок с номером, казино, ссылка, сумма, описание, автор, дата, хештеги.
// Пользовательские поля экранируются, текст шаблона — нет.
func formatCaption(r domain.Report) string {
	lines := []string{
		fmt.Sprintf("🚨 <b>СКАМ-РЕПОРТ #%04d</b>", r.ID),
		"",
		fmt.Sprintf("🎰 <b>Казино:</b> %s", escape(r.CasinoName)),
	}

	if r.CasinoLink != "" {
		lines = append(lines, fmt.Sprintf("🔗 <b>Ссылка:</b> %s", escape(r.CasinoLink)))
	}
	if r.AmountLost != "" {
		lines = append(lines, fmt.Sprintf("💰 <b>Потеряно:</b> %s", escape(r.AmountLost)))
	}

	lines = append(lines,
		"",
		"📝 <b>Описание:</b>",
		escape(r.Description),
		"",
	)

	switch {
	case r.Username != "":
		lines = append(lines, fmt.Sprintf("👤 <b>Автор:</b> @%s", r.Username))
	case r.FirstName != "":
		lines = append(lines, fmt.Sprintf("👤 <b>Автор:</b> %s", escape(r.FirstName)))
	default:
		lines = append(lines, fmt.Sprintf("👤 <b>Автор:</b> User %d", r.UserID))
	}

	if !r.CreatedAt.IsZero() {
		lines = append(lines, fmt.Sprintf("📅 <b>Дата:</b> %s",
			r.CreatedAt.UTC().Format("02/01/2006 15:04 UTC")))
	}

	lines = append(lines, "", "#ScamCasino #Report #Scam")

	return strings.Join(lines, "\n")
}

func escape(s string) string {
	return html.EscapeString(s)
}
