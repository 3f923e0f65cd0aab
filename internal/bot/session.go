package bot

import (
	"strings"

	"scam-report-bot/internal/domain"
)

// Stage — этап пошагового диалога создания репорта.
// Этапы проходятся строго по порядку; терминальные состояния (отправлено,
// отменено) выражаются удалением сессии из SessionStore.
type Stage int

const (
	StageCasinoName Stage = iota
	StageCasinoLink
	StageAmount
	StageDescription
	StageScreenshots
	StageConfirm
)

// maxScreenshots — предел скриншотов в одном репорте: больше не помещается
// в сетку 3x3 коллажа.
const maxScreenshots = 9

// Session хранит состояние одного незавершенного репорта.
// Сессией владеет ровно один пользователь; транспорт доставляет его
// сообщения последовательно, поэтому сама сессия блокировок не требует.
type Session struct {
	UserID    int64
	Username  string
	FirstName string

	Stage       Stage
	CasinoName  string
	CasinoLink  string
	AmountLost  string
	Description string
	Screenshots []string
}

// NewSession создает сессию на этапе ввода названия казино.
func NewSession(userID int64, username, firstName string) *Session {
	return &Session{
		UserID:    userID,
		Username:  username,
		FirstName: firstName,
		Stage:     StageCasinoName,
	}
}

// HandleText применяет текстовый ввод на текущем этапе и продвигает сессию.
// Возвращает false, если ввод не принят (пустой текст или этап без
// текстового ввода) — состояние при этом не меняется.
func (s *Session) HandleText(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}

	switch s.Stage {
	case StageCasinoName:
		s.CasinoName = text
		s.Stage = StageCasinoLink
	case StageCasinoLink:
		s.CasinoLink = text
		s.Stage = StageAmount
	case StageAmount:
		s.AmountLost = text
		s.Stage = StageDescription
	case StageDescription:
		s.Description = text
		s.Stage = StageScreenshots
	default:
		return false
	}
	return true
}

// Skip пропускает необязательный этап. На этапе скриншотов пропуск
// дополнительно очищает уже собранные скриншоты. Возвращает false,
// если текущий этап пропускать нельзя.
func (s *Session) Skip() bool {
	switch s.Stage {
	case StageCasinoLink:
		s.CasinoLink = ""
		s.Stage = StageAmount
	case StageAmount:
		s.AmountLost = ""
		s.Stage = StageDescription
	case StageScreenshots:
		s.Screenshots = nil
		s.Stage = StageConfirm
	default:
		return false
	}
	return true
}

// Done завершает сбор скриншотов и переводит сессию на подтверждение.
func (s *Session) Done() bool {
	if s.Stage != StageScreenshots {
		return false
	}
	s.Stage = StageConfirm
	return true
}

// AddScreenshot добавляет скриншот. Сессия остается на этапе скриншотов,
// пока их не наберется maxScreenshots — тогда происходит автопереход
// на подтверждение (advanced=true).
func (s *Session) AddScreenshot(fileID string) (count int, advanced bool, ok bool) {
	if s.Stage != StageScreenshots {
		return len(s.Screenshots), false, false
	}

	s.Screenshots = append(s.Screenshots, fileID)
	if len(s.Screenshots) >= maxScreenshots {
		s.Stage = StageConfirm
		return len(s.Screenshots), true, true
	}
	return len(s.Screenshots), false, true
}

// Report собирает из сессии доменную модель для сохранения.
func (s *Session) Report() domain.Report {
	return domain.Report{
		UserID:      s.UserID,
		Username:    s.Username,
		FirstName:   s.FirstName,
		CasinoName:  s.CasinoName,
		CasinoLink:  s.CasinoLink,
		AmountLost:  s.AmountLost,
		Description: s.Description,
		Screenshots: s.Screenshots,
	}
}
