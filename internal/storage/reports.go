package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"scam-report-bot/internal/domain"
)

// ErrNotFound возвращается, когда запрошенная запись отсутствует в базе.
var ErrNotFound = errors.New("not found")

// Store предоставляет доступ к таблицам репортов, банов и чатов.
type Store struct {
	db *sql.DB
}

// NewStore создает новый Store поверх открытого соединения с базой.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const reportColumns = `id, user_id, COALESCE(username,''), COALESCE(first_name,''),
	casino_name, COALESCE(casino_link,''), COALESCE(amount_lost,''), description,
	screenshots, COALESCE(channel_message_id,0), created_at`

// CreateReport сохраняет новый репорт и возвращает его копию с присвоенными
// идентификатором и временем создания.
func (s *Store) CreateReport(ctx context.Context, r domain.Report) (domain.Report, error) {
	if r.CasinoName == "" || r.Description == "" {
		return domain.Report{}, fmt.Errorf("casino name and description are required")
	}

	screenshots, err := json.Marshal(r.Screenshots)
	if err != nil {
		return domain.Report{}, fmt.Errorf("failed to marshal screenshots: %w", err)
	}

	r.CreatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO reports(user_id, username, first_name, casino_name, casino_link,
			amount_lost, description, screenshots, created_at)
		 VALUES (?,?,?,?,?,?,?,?,?)`,
		r.UserID, nullable(r.Username), nullable(r.FirstName), r.CasinoName,
		nullable(r.CasinoLink), nullable(r.AmountLost), r.Description,
		string(screenshots), r.CreatedAt)
	if err != nil {
		return domain.Report{}, fmt.Errorf("failed to insert report: %w", err)
	}

	r.ID, err = res.LastInsertId()
	if err != nil {
		return domain.Report{}, fmt.Errorf("failed to get report id: %w", err)
	}
	return r, nil
}

// SetChannelMessage записывает идентификатор сообщения в канале для репорта.
func (s *Store) SetChannelMessage(ctx context.Context, reportID int64, messageID int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE reports SET channel_message_id=? WHERE id=?`, messageID, reportID)
	if err != nil {
		return fmt.Errorf("failed to update report %d: %w", reportID, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ReportByID возвращает репорт по идентификатору.
func (s *Store) ReportByID(ctx context.Context, id int64) (domain.Report, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+reportColumns+` FROM reports WHERE id=?`, id)
	return scanReport(row.Scan)
}

// DeleteReport удаляет репорт. Возвращает ErrNotFound, если репорта нет.
func (s *Store) DeleteReport(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM reports WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete report %d: %w", id, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return nil
}

// SearchReports ищет репорты по подстроке в названии казино,
// до 10 последних по дате.
func (s *Store) SearchReports(ctx context.Context, query string) ([]domain.Report, error) {
	return s.queryReports(ctx,
		`SELECT `+reportColumns+` FROM reports
		 WHERE casino_name LIKE ? COLLATE NOCASE
		 ORDER BY created_at DESC, id DESC LIMIT 10`,
		"%"+query+"%")
}

// ReportsByLink ищет репорты по подстроке в ссылке на казино.
func (s *Store) ReportsByLink(ctx context.Context, link string) ([]domain.Report, error) {
	return s.queryReports(ctx,
		`SELECT `+reportColumns+` FROM reports
		 WHERE casino_link LIKE ? COLLATE NOCASE
		 ORDER BY created_at DESC, id DESC LIMIT 10`,
		"%"+link+"%")
}

// AllReports возвращает все репорты, новые первыми.
func (s *Store) AllReports(ctx context.Context) ([]domain.Report, error) {
	return s.queryReports(ctx,
		`SELECT `+reportColumns+` FROM reports ORDER BY created_at DESC, id DESC`)
}

// Stats возвращает общее количество репортов и топ-5 казино по жалобам.
func (s *Store) Stats(ctx context.Context) (domain.Stats, error) {
	var stats domain.Stats
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reports`).Scan(&stats.Total); err != nil {
		return stats, fmt.Errorf("failed to count reports: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT casino_name, COUNT(*) AS cnt FROM reports
		 GROUP BY casino_name ORDER BY cnt DESC LIMIT 5`)
	if err != nil {
		return stats, fmt.Errorf("failed to query top casinos: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var cc domain.CasinoCount
		if err := rows.Scan(&cc.Name, &cc.Count); err != nil {
			return stats, err
		}
		stats.TopCasinos = append(stats.TopCasinos, cc)
	}
	return stats, rows.Err()
}

func (s *Store) queryReports(ctx context.Context, q string, args ...any) ([]domain.Report, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	var res []domain.Report
	for rows.Next() {
		r, err := scanReport(rows.Scan)
		if err != nil {
			return nil, err
		}
		res = append(res, r)
	}
	return res, rows.Err()
}

func scanReport(scan func(...any) error) (domain.Report, error) {
	var (
		r           domain.Report
		screenshots string
	)
	err := scan(&r.ID, &r.UserID, &r.Username, &r.FirstName, &r.CasinoName,
		&r.CasinoLink, &r.AmountLost, &r.Description, &screenshots,
		&r.ChannelMessageID, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return r, ErrNotFound
	}
	if err != nil {
		return r, fmt.Errorf("failed to scan report: %w", err)
	}
	if err := json.Unmarshal([]byte(screenshots), &r.Screenshots); err != nil {
		// Поврежденное поле не должно ломать чтение всего репорта.
		r.Screenshots = nil
	}
	return r, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
