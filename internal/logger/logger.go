package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// SlogConfig описывает параметры логгера
type SlogConfig struct {
	Level  string // "debug", "info", "warn", "error"
	Format string // "json" или "text"
}

// NewSlog создаёт slog.Logger, пишущий в stdout
func NewSlog(cfg SlogConfig) *slog.Logger {
	return New(cfg, os.Stdout)
}

// New создаёт и настраивает slog.Logger поверх произвольного writer'а
func New(cfg SlogConfig, w io.Writer) *slog.Logger {
	lvl := ParseLevel(cfg.Level)

	var handler slog.Handler

	// Выбираем формат вывода
	if strings.EqualFold(cfg.Format, "text") {
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})
	} else {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level: lvl,
			// timestamp в человекочитаемом виде
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				if a.Key == slog.TimeKey && len(groups) == 0 {
					a.Value = slog.StringValue(a.Value.Time().Format(time.RFC3339))
				}
				return a
			},
		})
	}

	return slog.New(handler)
}

// NewNop возвращает логгер, который ничего не пишет (для тестов)
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
