// Package log содержит обвязку логирования: маскировку токена бота
// и адаптер логгера для библиотеки Telegram Bot API.
package log

import (
	"context"
	"log/slog"
	"regexp"
)

// Токен бота попадает в URL запросов к Telegram в формате bot<ID>:<secret>,
// поэтому любая ошибка транспорта может унести его в логи.
var telegramTokenRegex = regexp.MustCompile(`(\bbot\d+:[A-Za-z0-9_-]{35,})`)

// maskTokens заменяет токены бота на маску.
func maskTokens(text string) string {
	return telegramTokenRegex.ReplaceAllString(text, "bot***:***masked-token***")
}

// TokenMaskerHandler - обертка для slog.Handler, которая маскирует токен бота
// в сообщениях и строковых атрибутах записей.
type TokenMaskerHandler struct {
	handler slog.Handler
}

// NewTokenMaskerHandler оборачивает handler в маскировщик токенов.
func NewTokenMaskerHandler(handler slog.Handler) *TokenMaskerHandler {
	return &TokenMaskerHandler{handler: handler}
}

// NewMaskedLogger создает slog.Logger с маскировкой токенов поверх handler.
func NewMaskedLogger(handler slog.Handler) *slog.Logger {
	return slog.New(NewTokenMaskerHandler(handler))
}

// Enabled реализует интерфейс slog.Handler.
func (h *TokenMaskerHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle реализует интерфейс slog.Handler.
func (h *TokenMaskerHandler) Handle(ctx context.Context, record slog.Record) error {
	// Работаем с изолированной копией: оригинальную запись slog может
	// переиспользовать. Clone() не переносит атрибуты, добавляем их сами.
	r := record.Clone()
	r.Message = maskTokens(r.Message)

	record.Attrs(func(a slog.Attr) bool {
		r.AddAttrs(maskAttr(a))
		return true
	})

	return h.handler.Handle(ctx, r)
}

// WithAttrs реализует интерфейс slog.Handler.
func (h *TokenMaskerHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	masked := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		masked[i] = maskAttr(a)
	}
	return &TokenMaskerHandler{handler: h.handler.WithAttrs(masked)}
}

// WithGroup реализует интерфейс slog.Handler.
func (h *TokenMaskerHandler) WithGroup(name string) slog.Handler {
	return &TokenMaskerHandler{handler: h.handler.WithGroup(name)}
}

func maskAttr(a slog.Attr) slog.Attr {
	return slog.Attr{Key: a.Key, Value: maskValue(a.Value)}
}

// maskValue рекурсивно маскирует значение атрибута. Ошибки приводятся
// к строке: токен чаще всего живет именно в тексте ошибок транспорта.
func maskValue(value slog.Value) slog.Value {
	switch value.Kind() {
	case slog.KindString:
		return slog.StringValue(maskTokens(value.String()))
	case slog.KindAny:
		if err, ok := value.Any().(error); ok {
			return slog.StringValue(maskTokens(err.Error()))
		}
		return value
	case slog.KindGroup:
		group := value.Group()
		masked := make([]slog.Attr, len(group))
		for i, a := range group {
			masked[i] = maskAttr(a)
		}
		return slog.GroupValue(masked...)
	default:
		return value
	}
}
