// Package config предоставляет управление конфигурацией бота.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"scam-report-bot/internal/collage"
)

// BotConfig содержит конфигурацию для Telegram-бота
type BotConfig struct {
	Token                    string         `yaml:"token"`
	OwnerID                  int64          `yaml:"owner_id"`
	ChannelID                int64          `yaml:"channel_id"`
	GroupID                  int64          `yaml:"group_id"`
	DatabasePath             string         `yaml:"database_path"`
	BroadcastDelayMS         int            `yaml:"broadcast_delay_ms"`
	AllowConcurrentBroadcast bool           `yaml:"allow_concurrent_broadcast"`
	HTTPTimeoutSeconds       int            `yaml:"http_timeout_seconds"`
	Collage                  collage.Config `yaml:"collage"`
}

// Logging содержит конфигурацию логирования
type Logging struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// Config является оберткой для соответствия структуре YAML файла.
type Config struct {
	Bot     BotConfig `yaml:"bot"`
	Logging Logging   `yaml:"logging"`
}

// LoadBotConfig загружает конфигурацию бота из указанного файла.
// Секреты можно не хранить в YAML: переменные окружения (в том числе
// из .env) перекрывают значения файла.
func LoadBotConfig(filename string) (*Config, error) {
	// Отсутствие .env не ошибка, тогда работаем только с окружением и YAML
	_ = godotenv.Load()

	var cfg Config
	data, err := os.ReadFile(filename)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal bot config: %w", err)
		}
	case os.IsNotExist(err):
		// Файла может не быть, если вся конфигурация задана через окружение
	default:
		return nil, fmt.Errorf("failed to read bot config file %s: %w", filename, err)
	}

	if err := applyEnvOverrides(&cfg.Bot); err != nil {
		return nil, err
	}

	// Устанавливаем значения по умолчанию
	botCfg := &cfg.Bot
	if botCfg.DatabasePath == "" {
		botCfg.DatabasePath = DefaultDatabasePath
	}
	if botCfg.BroadcastDelayMS == 0 {
		botCfg.BroadcastDelayMS = DefaultBroadcastDelayMS
	}
	if botCfg.HTTPTimeoutSeconds == 0 {
		botCfg.HTTPTimeoutSeconds = DefaultHTTPTimeoutSeconds
	}
	if botCfg.Collage.CellSize == 0 {
		botCfg.Collage.CellSize = DefaultCollageCellSize
	}
	if botCfg.Collage.Border == 0 {
		botCfg.Collage.Border = DefaultCollageBorder
	}

	return &cfg, nil
}

// applyEnvOverrides перекрывает значения конфигурации переменными окружения.
func applyEnvOverrides(cfg *BotConfig) error {
	if v := os.Getenv("BOT_TOKEN"); v != "" {
		cfg.Token = v
	}
	if v := os.Getenv("DATABASE_PATH"); v != "" {
		cfg.DatabasePath = v
	}

	for env, dst := range map[string]*int64{
		"OWNER_ID":   &cfg.OwnerID,
		"CHANNEL_ID": &cfg.ChannelID,
		"GROUP_ID":   &cfg.GroupID,
	} {
		v := os.Getenv(env)
		if v == "" {
			continue
		}
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", env, err)
		}
		*dst = id
	}

	return nil
}

// ValidateFull проверяет корректность конфигурации бота.
func (c *Config) ValidateFull() error {
	bot := &c.Bot
	if bot.Token == "" || bot.Token == "YOUR_TELEGRAM_BOT_TOKEN" {
		return fmt.Errorf("bot.token is not configured")
	}
	if bot.OwnerID == 0 {
		return fmt.Errorf("bot.owner_id is not configured")
	}
	if bot.ChannelID == 0 {
		return fmt.Errorf("bot.channel_id is not configured")
	}
	if bot.BroadcastDelayMS < 0 {
		return fmt.Errorf("bot.broadcast_delay_ms cannot be negative")
	}
	if bot.HTTPTimeoutSeconds <= 0 {
		return fmt.Errorf("bot.http_timeout_seconds must be positive")
	}
	if bot.Collage.CellSize <= 0 {
		return fmt.Errorf("bot.collage.cell_size must be positive")
	}
	if bot.Collage.Border < 0 {
		return fmt.Errorf("bot.collage.border cannot be negative")
	}
	return nil
}
