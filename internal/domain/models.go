package domain

import "time"

// Report представляет одну жалобу на мошенническое казино.
// Пустые строки в необязательных полях означают "не указано".
type Report struct {
	ID               int64
	UserID           int64
	Username         string
	FirstName        string
	CasinoName       string
	CasinoLink       string
	AmountLost       string // свободный текст, не парсится как валюта
	Description      string
	Screenshots      []string // file_id скриншотов в порядке отправки, максимум 9
	ChannelMessageID int      // 0, пока репорт не опубликован в канале
	CreatedAt        time.Time
}

// BannedUser представляет пользователя, которому запрещено отправлять репорты.
type BannedUser struct {
	UserID   int64
	Reason   string
	BannedBy int64
	BannedAt time.Time
}

// ChatRecord представляет чат (личку, группу или канал), в котором
// присутствует бот. Используется как аудитория для рассылок.
type ChatRecord struct {
	ChatID   int64
	ChatType string // private, group, supergroup, channel
	Title    string
	Username string
	IsActive bool
	JoinedAt time.Time
}

// CasinoCount — количество репортов по одному казино.
type CasinoCount struct {
	Name  string
	Count int
}

// Stats — сводная статистика по репортам.
type Stats struct {
	Total      int
	TopCasinos []CasinoCount
}
