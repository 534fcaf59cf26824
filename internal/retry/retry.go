package retry

import (
	"context"
	"log/slog"
	"time"

	"github.com/shaiso/Conveyor/internal/domain"
)

// Backoff-таблица по умолчанию: 5 мин, 15 мин, 30 мин.
var defaultDelays = []time.Duration{
	5 * time.Minute,
	15 * time.Minute,
	30 * time.Minute,
}

// AlertSink — коллаборатор, принимающий терминальные alert'ы.
//
// Реализация: alerting.Dispatcher (публикация в MQ + персистенция).
type AlertSink interface {
	Dispatch(ctx context.Context, alert *domain.AlertRecord)
}

// Manager — менеджер повторов.
//
// Длина backoff-таблицы ограничивает max_retries: задаче нельзя
// выдать бюджет повторов больше, чем есть задержек в таблице.
type Manager struct {
	delays []time.Duration
	sink   AlertSink
	logger *slog.Logger
}

// Config — конфигурация Manager.
type Config struct {
	// Delays — backoff-таблица, индексируемая номером попытки.
	// Пустая — используется таблица по умолчанию [5m, 15m, 30m].
	Delays []time.Duration

	// Sink — получатель терминальных alert'ов (опционально).
	Sink AlertSink

	// Logger
	Logger *slog.Logger
}

// New создаёт новый Manager.
func New(cfg Config) *Manager {
	delays := cfg.Delays
	if len(delays) == 0 {
		delays = defaultDelays
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Manager{
		delays: delays,
		sink:   cfg.Sink,
		logger: logger,
	}
}

// MaxRetries возвращает максимальный бюджет повторов (длину таблицы).
func (m *Manager) MaxRetries() int {
	return len(m.delays)
}

// Delay возвращает задержку перед попыткой attempt (начиная с 1).
// Номер за пределами таблицы получает последнюю задержку.
func (m *Manager) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > len(m.delays) {
		attempt = len(m.delays)
	}
	return m.delays[attempt-1]
}

// ClampBudget ограничивает запрошенный бюджет повторов таблицей.
// Нулевой или отрицательный бюджет получает максимум.
func (m *Manager) ClampBudget(requested int) int {
	if requested <= 0 || requested > len(m.delays) {
		return len(m.delays)
	}
	return requested
}

// HandleTerminal оформляет терминальный отказ: создаёт alert-запись
// с полной историей попыток и отдаёт её sink'у.
func (m *Manager) HandleTerminal(ctx context.Context, task *domain.Task) *domain.AlertRecord {
	alert := domain.NewAlertRecord(task)

	m.logger.Error("task terminally failed",
		"task_id", task.ID,
		"type", task.Type,
		"retry_count", task.RetryCount,
		"error", task.Error,
	)

	if m.sink != nil {
		m.sink.Dispatch(ctx, alert)
	}
	return alert
}
