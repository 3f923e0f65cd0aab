package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"scam-report-bot/internal/domain"
)

// ErrBroadcastBusy возвращается, когда рассылка уже идет,
// а конкурентные рассылки запрещены конфигурацией.
var ErrBroadcastBusy = errors.New("broadcast already in progress")

// Outcome — классификация результата доставки одному получателю.
type Outcome int

const (
	OutcomeDelivered Outcome = iota
	// OutcomeBlocked — получатель заблокировал бота или выгнал его из чата.
	OutcomeBlocked
	// OutcomeTransient — временная ошибка транспорта; получатель может быть
	// доступен позже, из аудитории не исключается.
	OutcomeTransient
	// OutcomeOther — неожиданная ошибка.
	OutcomeOther
)

// Tally — итог рассылки. Failed объединяет временные и неожиданные ошибки.
type Tally struct {
	Success int
	Blocked int
	Failed  int
}

// Total возвращает количество обработанных получателей.
func (t Tally) Total() int {
	return t.Success + t.Blocked + t.Failed
}

// AudienceDirectory — интерфейс каталога чатов-получателей рассылки.
type AudienceDirectory interface {
	ListActiveChats(ctx context.Context) ([]domain.ChatRecord, error)
	DeactivateChat(ctx context.Context, chatID int64) error
}

// ReplicateFunc копирует исходное сообщение в чат получателя.
type ReplicateFunc func(fromChatID int64, messageID int, toChatID int64) error

// Broadcaster последовательно доставляет одно сообщение всей активной
// аудитории. Доставка идет по снимку аудитории, взятому в начале вызова;
// ошибки отдельных получателей не прерывают цикл и не откатывают уже
// доставленное. Повторных попыток внутри одного вызова нет.
type Broadcaster struct {
	directory AudienceDirectory
	replicate ReplicateFunc
	classify  func(err error) Outcome

	// Пауза после каждой успешной отправки, чтобы не упереться
	// во флуд-лимиты Telegram.
	delay time.Duration

	allowConcurrent bool
	running         atomic.Bool

	logger *slog.Logger
}

// NewBroadcaster создает Broadcaster. Ошибки доставки классифицируются
// функцией classify; для Telegram это classifyDeliveryError.
func NewBroadcaster(
	directory AudienceDirectory,
	replicate ReplicateFunc,
	classify func(err error) Outcome,
	delay time.Duration,
	allowConcurrent bool,
	logger *slog.Logger,
) *Broadcaster {
	return &Broadcaster{
		directory:       directory,
		replicate:       replicate,
		classify:        classify,
		delay:           delay,
		allowConcurrent: allowConcurrent,
		logger:          logger,
	}
}

// Run выполняет рассылку и возвращает итоговые счетчики.
// Заблокировавшие бота получатели деактивируются в каталоге сразу,
// чтобы следующие рассылки их пропускали.
func (b *Broadcaster) Run(ctx context.Context, fromChatID int64, messageID int) (Tally, error) {
	if !b.allowConcurrent {
		if !b.running.CompareAndSwap(false, true) {
			return Tally{}, ErrBroadcastBusy
		}
		defer b.running.Store(false)
	}

	chats, err := b.directory.ListActiveChats(ctx)
	if err != nil {
		return Tally{}, fmt.Errorf("failed to list broadcast audience: %w", err)
	}

	var tally Tally
	for _, chat := range chats {
		err := b.replicate(fromChatID, messageID, chat.ChatID)
		if err == nil {
			tally.Success++
			time.Sleep(b.delay)
			continue
		}

		switch b.classify(err) {
		case OutcomeBlocked:
			tally.Blocked++
			b.logger.Info("recipient blocked the bot, deactivating",
				slog.Int64("chat_id", chat.ChatID))
			if derr := b.directory.DeactivateChat(ctx, chat.ChatID); derr != nil {
				b.logger.Warn("failed to deactivate chat",
					slog.Int64("chat_id", chat.ChatID),
					slog.String("error", derr.Error()))
			}
		case OutcomeTransient:
			tally.Failed++
			b.logger.Warn("broadcast delivery failed",
				slog.Int64("chat_id", chat.ChatID),
				slog.String("error", err.Error()))
		default:
			tally.Failed++
			b.logger.Error("unexpected broadcast error",
				slog.Int64("chat_id", chat.ChatID),
				slog.String("error", err.Error()))
		}
	}

	b.logger.Info("broadcast finished",
		slog.Int("success", tally.Success),
		slog.Int("blocked", tally.Blocked),
		slog.Int("failed", tally.Failed))
	return tally, nil
}
