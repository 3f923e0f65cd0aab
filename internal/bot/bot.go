// Package bot реализует Telegram-бота приема жалоб на мошеннические казино:
// пошаговый диалог репорта, публикацию в канал, рассылки и команды владельца.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"scam-report-bot/cmd/bot/config"
	"scam-report-bot/internal/collage"
	"scam-report-bot/internal/domain"
	"scam-report-bot/internal/membership"
)

// Storage — все операции хранилища, которые нужны боту.
// Реализуется storage.Store.
type Storage interface {
	CreateReport(ctx context.Context, r domain.Report) (domain.Report, error)
	ReportByID(ctx context.Context, id int64) (domain.Report, error)
	DeleteReport(ctx context.Context, id int64) error
	SearchReports(ctx context.Context, query string) ([]domain.Report, error)
	ReportsByLink(ctx context.Context, link string) ([]domain.Report, error)
	AllReports(ctx context.Context) ([]domain.Report, error)
	Stats(ctx context.Context) (domain.Stats, error)

	IsBanned(ctx context.Context, userID int64) (bool, error)
	BanUser(ctx context.Context, userID, bannedBy int64, reason string) error
	UnbanUser(ctx context.Context, userID int64) error
	BannedUsers(ctx context.Context) ([]domain.BannedUser, error)

	UpsertChat(ctx context.Context, c domain.ChatRecord) error
	AudienceDirectory
}

// ChannelPublisher публикует готовый репорт в канал.
type ChannelPublisher interface {
	Publish(ctx context.Context, r domain.Report) (int, error)
}

// pendingBroadcast — рассылка, ожидающая подтверждения владельцем.
type pendingBroadcast struct {
	fromChatID int64
	messageID  int
}

// Bot представляет собой основной объект Telegram-бота.
type Bot struct {
	api         *tgbotapi.BotAPI
	cfg         config.BotConfig
	store       Storage
	sessions    *SessionStore
	publisher   ChannelPublisher
	gate        *membership.Gate
	broadcaster *Broadcaster
	logger      *slog.Logger
	httpClient  *http.Client

	// Обертки над методами api, подменяемые в тестах.
	sendMessageFunc      func(c tgbotapi.Chattable) (tgbotapi.Message, error)
	requestFunc          func(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	copyMessageFunc      func(cfg tgbotapi.CopyMessageConfig) (tgbotapi.MessageID, error)
	getFileDirectURLFunc func(fileID string) (string, error)
	getChatMemberFunc    func(cfg tgbotapi.GetChatMemberConfig) (tgbotapi.ChatMember, error)

	pendingMu sync.Mutex
	pending   *pendingBroadcast
}

// NewBot создает и инициализирует новый экземпляр бота.
// Фабрика publisherFor позволяет собрать публикацию поверх транспорта бота;
// в проде это channel.NewPublisher.
func NewBot(
	cfg config.BotConfig,
	store Storage,
	publisherFor func(b *Bot, compositor *collage.Compositor) ChannelPublisher,
	logger *slog.Logger,
) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot api: %w", err)
	}

	logger.Info("authorized on account", slog.String("username", api.Self.UserName))

	b := &Bot{
		api:        api,
		cfg:        cfg,
		store:      store,
		sessions:   NewSessionStore(),
		logger:     logger,
		httpClient: &http.Client{Timeout: time.Duration(cfg.HTTPTimeoutSeconds) * time.Second},

		sendMessageFunc:      api.Send,
		requestFunc:          api.Request,
		copyMessageFunc:      api.CopyMessage,
		getFileDirectURLFunc: api.GetFileDirectURL,
		getChatMemberFunc:    api.GetChatMember,
	}

	b.gate = membership.NewGate(cfg.ChannelID, cfg.GroupID, b.memberStatus,
		logger.With(slog.String("component", "membership")))

	compositor := collage.New(cfg.Collage, logger.With(slog.String("component", "collage")))
	b.publisher = publisherFor(b, compositor)

	b.broadcaster = NewBroadcaster(store, b.replicateMessage, classifyDeliveryError,
		time.Duration(cfg.BroadcastDelayMS)*time.Millisecond,
		cfg.AllowConcurrentBroadcast,
		logger.With(slog.String("component", "broadcast")))

	return b, nil
}

// Start запускает основной цикл обработки обновлений от Telegram.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("context cancelled, stopping bot...")
			b.api.StopReceivingUpdates()
			return
		case update := <-updates:
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.MyChatMember != nil:
		b.trackBotStatus(ctx, update.MyChatMember)
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	}
}

// handleMessage обрабатывает входящее сообщение.
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}

	// Пассивно пополняем аудиторию рассылки группами, где бот уже состоит.
	if msg.Chat.IsGroup() || msg.Chat.IsSuperGroup() {
		b.trackChat(ctx, msg.Chat)
	}

	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	if session, ok := b.sessions.Get(msg.From.ID); ok {
		b.handleSessionMessage(ctx, msg, session)
		return
	}

	if msg.Chat.IsPrivate() {
		b.reply(msg.Chat.ID, "Нажмите /report, чтобы создать репорт, или /help для справки.")
	}
}

// handleCommand обрабатывает команды.
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		b.handleStartCommand(ctx, msg)
	case "help":
		b.reply(msg.Chat.ID, helpText)
	case "report":
		b.handleReportCommand(ctx, msg)
	case "cancel":
		b.handleCancelCommand(msg)
	case "skip":
		b.handleSkipCommand(msg)
	case "done":
		b.handleDoneCommand(msg)
	case "search":
		b.handleSearchCommand(ctx, msg)
	case "check":
		b.handleCheckCommand(ctx, msg)
	case "stats":
		b.handleStatsCommand(ctx, msg.Chat.ID)
	case "ban":
		b.handleBanCommand(ctx, msg)
	case "unban":
		b.handleUnbanCommand(ctx, msg)
	case "banlist":
		b.handleBanlistCommand(ctx, msg)
	case "delete":
		b.handleDeleteCommand(ctx, msg)
	case "export":
		b.handleExportCommand(ctx, msg)
	case "broadcast":
		b.handleBroadcastCommand(ctx, msg)
	default:
		if msg.Chat.IsPrivate() {
			b.reply(msg.Chat.ID, "Я не знаю такой команды. Нажмите /help для справки.")
		}
	}
}

// handleCallback обрабатывает нажатия inline-кнопок.
func (b *Bot) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	switch query.Data {
	case "confirm_yes", "confirm_no":
		b.handleConfirmCallback(ctx, query)
	case "broadcast_confirm":
		b.handleBroadcastConfirmCallback(ctx, query)
	case "broadcast_cancel":
		b.handleBroadcastCancelCallback(query)
	case "verify_join":
		b.handleVerifyJoinCallback(query)
	case "start_report", "start_search", "start_stats":
		b.handleStartMenuCallback(ctx, query)
	}
}

// trackBotStatus отслеживает добавление и удаление бота из групп и каналов.
func (b *Bot) trackBotStatus(ctx context.Context, upd *tgbotapi.ChatMemberUpdated) {
	switch upd.NewChatMember.Status {
	case "member", "administrator":
		b.trackChat(ctx, &upd.Chat)
		b.logger.Info("bot added to chat",
			slog.String("type", upd.Chat.Type),
			slog.Int64("chat_id", upd.Chat.ID))
	case "left", "kicked":
		if err := b.store.DeactivateChat(ctx, upd.Chat.ID); err != nil {
			b.logger.Warn("failed to deactivate chat", slog.String("error", err.Error()))
		}
		b.logger.Info("bot removed from chat",
			slog.String("type", upd.Chat.Type),
			slog.Int64("chat_id", upd.Chat.ID))
	}
}

func (b *Bot) trackChat(ctx context.Context, chat *tgbotapi.Chat) {
	err := b.store.UpsertChat(ctx, domain.ChatRecord{
		ChatID:   chat.ID,
		ChatType: chat.Type,
		Title:    chat.Title,
		Username: chat.UserName,
	})
	if err != nil {
		b.logger.Warn("failed to upsert chat",
			slog.Int64("chat_id", chat.ID), slog.String("error", err.Error()))
	}
}

func (b *Bot) isOwner(userID int64) bool {
	return userID == b.cfg.OwnerID
}
