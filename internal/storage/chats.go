package storage

import (
	"context"
	"fmt"
	"time"

	"scam-report-bot/internal/domain"
)

// UpsertChat добавляет чат в аудиторию рассылки или обновляет существующую
// запись. Обновление всегда помечает чат активным.
func (s *Store) UpsertChat(ctx context.Context, c domain.ChatRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chat_records(chat_id, chat_type, title, username, is_active, joined_at)
		 VALUES (?,?,?,?,1,?)
		 ON CONFLICT(chat_id) DO UPDATE SET chat_type=excluded.chat_type,
			title=excluded.title, username=excluded.username, is_active=1`,
		c.ChatID, c.ChatType, nullable(c.Title), nullable(c.Username), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to upsert chat %d: %w", c.ChatID, err)
	}
	return nil
}

// ListActiveChats возвращает все активные чаты в порядке добавления.
func (s *Store) ListActiveChats(ctx context.Context) ([]domain.ChatRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT chat_id, chat_type, COALESCE(title,''), COALESCE(username,''), is_active, joined_at
		 FROM chat_records WHERE is_active=1 ORDER BY joined_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query active chats: %w", err)
	}
	defer rows.Close()

	var res []domain.ChatRecord
	for rows.Next() {
		var c domain.ChatRecord
		if err := rows.Scan(&c.ChatID, &c.ChatType, &c.Title, &c.Username, &c.IsActive, &c.JoinedAt); err != nil {
			return nil, err
		}
		res = append(res, c)
	}
	return res, rows.Err()
}

// DeactivateChat помечает чат неактивным (бот заблокирован или удален).
// Отсутствие записи не считается ошибкой.
func (s *Store) DeactivateChat(ctx context.Context, chatID int64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE chat_records SET is_active=0 WHERE chat_id=?`, chatID)
	if err != nil {
		return fmt.Errorf("failed to deactivate chat %d: %w", chatID, err)
	}
	return nil
}
