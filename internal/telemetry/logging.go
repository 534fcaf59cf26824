package telemetry

import (
	"log/slog"
	"os"
	"strings"
)

// SetupLogger инициализирует глобальный slog-логгер координатора.
//
// Переменные окружения:
//   - LOG_LEVEL: debug | info | warn | error (default: info)
//   - LOG_FORMAT: json (default) | text
//
// На уровне debug в записи добавляется источник вызова.
func SetupLogger() *slog.Logger {
	level := parseLevel(os.Getenv("LOG_LEVEL"))

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	var handler slog.Handler
	if strings.EqualFold(os.Getenv("LOG_FORMAT"), "text") {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// parseLevel разбирает LOG_LEVEL без учёта регистра.
// Пустое или неизвестное значение — info.
func parseLevel(s string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
