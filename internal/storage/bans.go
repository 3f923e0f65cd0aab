package storage

import (
	"context"
	"fmt"
	"time"

	"scam-report-bot/internal/domain"
)

// BanUser добавляет пользователя в бан-лист. Повторный бан обновляет запись.
func (s *Store) BanUser(ctx context.Context, userID, bannedBy int64, reason string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO banned_users(user_id, reason, banned_by, banned_at)
		 VALUES (?,?,?,?)
		 ON CONFLICT(user_id) DO UPDATE SET reason=excluded.reason,
			banned_by=excluded.banned_by, banned_at=excluded.banned_at`,
		userID, nullable(reason), bannedBy, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to ban user %d: %w", userID, err)
	}
	return nil
}

// UnbanUser убирает пользователя из бан-листа.
// Возвращает ErrNotFound, если пользователь не был забанен.
func (s *Store) UnbanUser(ctx context.Context, userID int64) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM banned_users WHERE user_id=?`, userID)
	if err != nil {
		return fmt.Errorf("failed to unban user %d: %w", userID, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return nil
}

// IsBanned сообщает, находится ли пользователь в бан-листе.
func (s *Store) IsBanned(ctx context.Context, userID int64) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM banned_users WHERE user_id=?`, userID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check ban for user %d: %w", userID, err)
	}
	return n > 0, nil
}

// BannedUsers возвращает весь бан-лист, свежие записи первыми.
func (s *Store) BannedUsers(ctx context.Context) ([]domain.BannedUser, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, COALESCE(reason,''), banned_by, banned_at
		 FROM banned_users ORDER BY banned_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query banned users: %w", err)
	}
	defer rows.Close()

	var res []domain.BannedUser
	for rows.Next() {
		var b domain.BannedUser
		if err := rows.Scan(&b.UserID, &b.Reason, &b.BannedBy, &b.BannedAt); err != nil {
			return nil, err
		}
		res = append(res, b)
	}
	return res, rows.Err()
}
