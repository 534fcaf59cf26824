// Package alerting доставляет терминальные alert'ы: персистит запись
// и публикует её в RabbitMQ. Публикация ограничена rate-limiter'ом,
// чтобы шторм отказов не заливал дежурный канал.
package alerting

import (
	"context"
	"log/slog"

	"golang.org/x/time/rate"

	"github.com/shaiso/Conveyor/internal/domain"
)

// defaultBurst — размер бурста публикаций по умолчанию.
const defaultBurst = 5

// Store — персистенция alert-записей (repo.AlertRepo).
type Store interface {
	SaveAlert(ctx context.Context, alert *domain.AlertRecord) error
}

// Notifier — внешняя доставка alert'ов (mq.Publisher).
type Notifier interface {
	PublishAlert(ctx context.Context, alert *domain.AlertRecord) error
}

// Dispatcher — получатель терминальных alert'ов от RetryManager'а.
//
// Персистенция выполняется всегда; публикация — в пределах лимита.
// Отказ любого из каналов доставки не влияет на планирование:
// ошибки только логируются.
type Dispatcher struct {
	store    Store
	notifier Notifier
	limiter  *rate.Limiter
	logger   *slog.Logger
}

// Config — конфигурация Dispatcher.
type Config struct {
	// Store — персистенция alert'ов (опционально).
	Store Store

	// Notifier — публикация alert'ов (опционально).
	Notifier Notifier

	// PublishRate — лимит публикаций в секунду (default: без лимита).
	PublishRate rate.Limit

	// Logger
	Logger *slog.Logger
}

// New создаёт новый Dispatcher.
func New(cfg Config) *Dispatcher {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var limiter *rate.Limiter
	if cfg.PublishRate > 0 {
		limiter = rate.NewLimiter(cfg.PublishRate, defaultBurst)
	}

	return &Dispatcher{
		store:    cfg.Store,
		notifier: cfg.Notifier,
		limiter:  limiter,
		logger:   logger,
	}
}

// Dispatch доставляет один alert. Реализует retry.AlertSink.
func (d *Dispatcher) Dispatch(ctx context.Context, alert *domain.AlertRecord) {
	if d.store != nil {
		if err := d.store.SaveAlert(ctx, alert); err != nil {
			d.logger.Warn("failed to persist alert",
				"alert_id", alert.ID,
				"task_id", alert.TaskID,
				"error", err,
			)
		}
	}

	if d.notifier == nil {
		return
	}

	if d.limiter != nil && !d.limiter.Allow() {
		// Запись сохранена, публикацию жертвуем
		d.logger.Warn("alert publish rate limited",
			"alert_id", alert.ID,
			"task_id", alert.TaskID,
		)
		return
	}

	if err := d.notifier.PublishAlert(ctx, alert); err != nil {
		d.logger.Warn("failed to publish alert",
			"alert_id", alert.ID,
			"task_id", alert.TaskID,
			"error", err,
		)
	}
}
