package coordinator

import (
	"context"
	"errors"
	"time"

	"github.com/shaiso/Conveyor/internal/domain"
	"github.com/shaiso/Conveyor/internal/executor"
)

// BatchResult — итог выполнения одного батча.
//
// Батч завершён, когда каждая диспетчеризованная задача отчиталась
// успехом, ошибкой или таймаутом.
type BatchResult struct {
	// Attempted — задач принято в батч.
	Attempted int `json:"attempted"`

	// Succeeded — завершились COMPLETED.
	Succeeded int `json:"succeeded"`

	// Failed — терминально упали (включая NoAvailableWorker и
	// ConfigurationError).
	Failed int `json:"failed"`

	// Deferred — отложены квотой; остаются PENDING, retry не расходуется.
	Deferred int `json:"deferred"`

	// Детализация по виду ошибки.
	NoWorker   int `json:"no_worker"`
	Timeouts   int `json:"timeouts"`
	Exhausted  int `json:"exhausted"`
	ConfigErrs int `json:"config_errors"`

	// Elapsed — длительность батча.
	Elapsed time.Duration `json:"elapsed"`
}

// RunBatch выполняет батч задач до полного завершения.
//
// Порядок внутри батча: тиры приоритета диспетчеризуются сверху вниз,
// внутри тира — порядок создания. Повторы выполняются внутри батча
// после backoff-задержки; отложенные квотой задачи остаются в очереди
// координатора до следующего батча.
func (c *Coordinator) RunBatch(ctx context.Context, tasks []*domain.Task) (*BatchResult, error) {
	if c.IsStopped() {
		return nil, ErrStopped
	}
	if !c.batchMu.TryLock() {
		return nil, ErrBatchInProgress
	}
	defer c.batchMu.Unlock()

	started := time.Now()
	result := &BatchResult{Attempted: len(tasks)}

	// Валидация типов: незарегистрированный handler — конфигурационная
	// ошибка, фатальная и неповторяемая, с немедленным alert'ом.
	var accepted []*domain.Task
	for _, task := range tasks {
		if !c.handlers.Has(task.Type) {
			task.MarkFailedTerminal(executor.ErrUnknownTaskType.Error() + ": " + task.Type)
			c.retry.HandleTerminal(ctx, task)
			c.countAlert()
			c.countOutcome("failed")
			result.Failed++
			result.ConfigErrs++
			continue
		}
		task.MaxRetries = c.retry.ClampBudget(task.MaxRetries)
		accepted = append(accepted, task)
	}

	for _, task := range accepted {
		c.queue.Push(task)
	}

	// retryDue — канал событий «backoff истёк, задачу можно повторить».
	// Буфера хватает: у задачи не бывает двух ожидающих повторов сразу.
	retryDue := make(chan *domain.Task, len(accepted)+1)

	inflight, pendingRetries := 0, 0

	// Отложенные квотой задачи держим в стороне до конца батча:
	// внутри батча их повторная диспетчеризация бессмысленна.
	var deferred []*domain.Task

	// Запланированные, но ещё не отданные пулу назначения.
	var backlog []executor.Assignment

	plan := func(tiers [][]*domain.Task) {
		report := c.scheduler.PlanTiers(tiers)
		backlog = append(backlog, report.Assignments...)
		result.Failed += len(report.NoWorker)
		result.NoWorker += len(report.NoWorker)
		result.Deferred += len(report.Deferred)
		for range report.NoWorker {
			c.countOutcome("no_worker")
		}
		for range report.Deferred {
			c.countOutcome("deferred")
		}
		deferred = append(deferred, report.Deferred...)
	}

	plan(c.queue.DrainReady())

	for inflight > 0 || pendingRetries > 0 || len(backlog) > 0 {
		// Отдача заданий и приём исходов живут в одном select:
		// когда все goroutine пула заняты и буфер исходов полон,
		// волна продвигается за счёт завершившихся задач. Иначе
		// волна шире пула встала бы на отправке навсегда.
		var jobs chan<- executor.Assignment
		var next executor.Assignment
		if len(backlog) > 0 {
			jobs = c.pool.Jobs()
			next = backlog[0]
		}

		select {
		case <-ctx.Done():
			result.Elapsed = time.Since(started)
			return result, ctx.Err()

		case <-c.pool.Done():
			result.Elapsed = time.Since(started)
			return result, executor.ErrPoolStopped

		case jobs <- next:
			backlog = backlog[1:]
			inflight++

		case out := <-c.pool.Outcomes():
			inflight--
			if c.applyOutcome(ctx, out, result, retryDue) {
				pendingRetries++
			}

			// Завершение могло разблокировать зависимые задачи
			plan(c.queue.DrainReady())

		case task := <-retryDue:
			pendingRetries--
			task.ResetForRetry()
			plan([][]*domain.Task{{task}})
		}
	}

	// Отложенные задачи остаются PENDING в очереди до следующего батча
	for _, t := range deferred {
		c.queue.Push(t)
	}

	result.Elapsed = time.Since(started)
	c.publishWorkerMetrics()
	c.publishQuotaMetrics()
	if c.metrics != nil {
		c.metrics.BatchDuration.Observe(result.Elapsed.Seconds())
	}

	c.logger.Info("batch completed",
		"attempted", result.Attempted,
		"succeeded", result.Succeeded,
		"failed", result.Failed,
		"deferred", result.Deferred,
		"elapsed", result.Elapsed,
	)
	return result, nil
}

// applyOutcome применяет исход выполнения к состоянию движка.
// Возвращает true, если для задачи запланирован повтор.
//
// Вызывается только из цикла RunBatch — единственного потока,
// мутирующего воркеров и статусы задач.
func (c *Coordinator) applyOutcome(ctx context.Context, out executor.Outcome, result *BatchResult, retryDue chan<- *domain.Task) bool {
	task := out.Task
	now := time.Now()

	worker := c.registry.Get(out.WorkerID)
	if worker != nil {
		worker.Release()
	}

	if c.metrics != nil {
		c.metrics.TaskDuration.Observe(out.FinishedAt.Sub(out.StartedAt).Seconds())
	}

	// Успех: EMA score вверх, задача COMPLETED
	if out.Err == nil {
		if worker != nil {
			worker.RecordSuccess(now)
		}
		task.MarkCompleted()
		c.queue.MarkCompleted(task.ID)
		result.Succeeded++
		c.countOutcome("completed")

		c.logger.Info("task completed",
			"task_id", task.ID,
			"worker_id", out.WorkerID,
			"attempt", task.RetryCount+1,
		)
		return false
	}

	// Ошибка: EMA score вниз
	if worker != nil {
		worker.RecordFailure(now)
	}

	if errors.Is(out.Err, executor.ErrTaskTimeout) {
		result.Timeouts++
	}

	task.MarkFailed(out.WorkerID, out.Err.Error())

	c.logger.Warn("task failed",
		"task_id", task.ID,
		"worker_id", out.WorkerID,
		"attempt", task.RetryCount,
		"error", out.Err,
	)

	if !task.Exhausted() {
		// Повтор после backoff-задержки из таблицы RetryManager'а
		delay := c.retry.Delay(task.RetryCount)
		time.AfterFunc(delay, func() {
			retryDue <- task
		})
		c.logger.Debug("task retry scheduled",
			"task_id", task.ID,
			"delay", delay,
		)
		return true
	}

	// Retry-бюджет исчерпан: терминальный отказ с alert'ом
	c.retry.HandleTerminal(ctx, task)
	c.countAlert()
	result.Failed++
	result.Exhausted++
	c.countOutcome("failed")
	return false
}

func (c *Coordinator) countOutcome(outcome string) {
	if c.metrics != nil {
		c.metrics.TasksTotal.WithLabelValues(outcome).Inc()
	}
}

func (c *Coordinator) countAlert() {
	if c.metrics != nil {
		c.metrics.AlertsTotal.Inc()
	}
}
