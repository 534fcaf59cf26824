package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/shaiso/Conveyor/internal/coordinator"
	"github.com/shaiso/Conveyor/internal/mq"
)

// batchHandler превращает сообщение batch.submit в выполнение батча.
//
// Некорректный батч отбрасывается: повторная доставка его не исправит.
// Ошибка координатора (остановка, гонка батчей) возвращает сообщение
// в очередь.
func batchHandler(coord *coordinator.Coordinator, logger *slog.Logger) mq.Handler {
	return func(ctx context.Context, d *mq.Delivery) error {
		var req coordinator.BatchRequest
		if err := d.Payload(&req); err != nil {
			logger.Error("malformed batch message",
				"message_id", d.Message.ID,
				"error", err,
			)
			d.Nack(false)
			return err
		}

		tasks, err := req.Build(time.Now())
		if err != nil {
			logger.Error("invalid batch",
				"message_id", d.Message.ID,
				"batch", req.Name,
				"error", err,
			)
			d.Nack(false)
			return err
		}

		logger.Info("batch accepted",
			"message_id", d.Message.ID,
			"batch", req.Name,
			"tasks", len(tasks),
		)

		result, err := coord.RunBatch(ctx, tasks)
		if err != nil {
			d.Nack(true)
			return err
		}

		logger.Info("batch finished",
			"batch", req.Name,
			"attempted", result.Attempted,
			"succeeded", result.Succeeded,
			"failed", result.Failed,
			"deferred", result.Deferred,
			"elapsed", result.Elapsed,
		)

		return d.Ack()
	}
}
