package coordinator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/shaiso/Conveyor/internal/domain"
	"github.com/shaiso/Conveyor/internal/executor"
	"github.com/shaiso/Conveyor/internal/optimizer"
	"github.com/shaiso/Conveyor/internal/queue"
	"github.com/shaiso/Conveyor/internal/quota"
	"github.com/shaiso/Conveyor/internal/registry"
	"github.com/shaiso/Conveyor/internal/retry"
	"github.com/shaiso/Conveyor/internal/scheduler"
	"github.com/shaiso/Conveyor/internal/telemetry"
)

// defaultRolloverCheck — период проверки границы rollover'а.
const defaultRolloverCheck = time.Minute

// Coordinator — единственный владелец изменяемого состояния движка.
//
// Создаётся из статической конфигурации, teardown (Stop) освобождает
// пул исполнителей. Никакого глобального состояния.
type Coordinator struct {
	registry  *registry.Registry
	queue     *queue.Queue
	quota     *quota.Manager
	handlers  *executor.Registry
	pool      *executor.Pool
	scheduler *scheduler.Scheduler
	retry     *retry.Manager
	optimizer *optimizer.Optimizer
	metrics   *telemetry.Metrics

	// batchMu сериализует RunBatch: координатор не реентерабелен.
	batchMu sync.Mutex

	logger     *slog.Logger
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	stopped    bool
	stoppedMu  sync.RWMutex
}

// Config — конфигурация Coordinator.
type Config struct {
	// Workers — статический пул воркеров (обязателен).
	Workers []*domain.Worker

	// Handlers — реестр handler'ов по типу задачи (обязателен).
	Handlers *executor.Registry

	// Quota — менеджер квот (опционально; nil — квоты не проверяются).
	Quota *quota.Manager

	// Retry — менеджер повторов (опционально; nil — дефолтная таблица).
	Retry *retry.Manager

	// Optimizer — оптимизатор аллокаций (опционально).
	Optimizer *optimizer.Optimizer

	// Metrics — метрики (опционально).
	Metrics *telemetry.Metrics

	// PoolSize — max_concurrent_workers (default: 20).
	PoolSize int

	// TaskTimeout — task_timeout_seconds (default: 300s).
	TaskTimeout time.Duration

	// Logger
	Logger *slog.Logger
}

// New создаёт Coordinator и регистрирует воркеров.
func New(cfg Config) (*Coordinator, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	reg := registry.New()
	for _, w := range cfg.Workers {
		if err := reg.Register(w); err != nil {
			return nil, err
		}
	}

	handlers := cfg.Handlers
	if handlers == nil {
		handlers = executor.NewRegistry()
	}

	retryMgr := cfg.Retry
	if retryMgr == nil {
		retryMgr = retry.New(retry.Config{Logger: logger})
	}

	pool := executor.New(executor.Config{
		Registry: handlers,
		Size:     cfg.PoolSize,
		Timeout:  cfg.TaskTimeout,
		Logger:   logger,
	})

	sched := scheduler.New(scheduler.Config{
		Registry: reg,
		Quota:    cfg.Quota,
		Logger:   logger,
	})

	return &Coordinator{
		registry:  reg,
		queue:     queue.New(),
		quota:     cfg.Quota,
		handlers:  handlers,
		pool:      pool,
		scheduler: sched,
		retry:     retryMgr,
		optimizer: cfg.Optimizer,
		metrics:   cfg.Metrics,
		logger:    logger,
	}, nil
}

// Registry возвращает реестр воркеров (для отчётности).
func (c *Coordinator) Registry() *registry.Registry {
	return c.registry
}

// Start запускает пул исполнителей, оптимизатор и слежение за rollover'ом.
func (c *Coordinator) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	c.cancelFunc = cancel

	c.logger.Info("starting coordinator",
		"workers", c.registry.Len(),
	)

	c.pool.Start(ctx)

	if c.optimizer != nil {
		c.optimizer.Start(ctx)
	}

	if c.quota != nil {
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			c.rolloverLoop(ctx)
		}()
	}

	c.logger.Info("coordinator started")
}

// Stop останавливает координатор и освобождает пул.
func (c *Coordinator) Stop() {
	c.stoppedMu.Lock()
	c.stopped = true
	c.stoppedMu.Unlock()

	c.logger.Info("stopping coordinator...")

	if c.cancelFunc != nil {
		c.cancelFunc()
	}

	if c.optimizer != nil {
		c.optimizer.Stop()
	}
	c.pool.Stop()
	c.wg.Wait()

	c.logger.Info("coordinator stopped")
}

// IsStopped проверяет, остановлен ли координатор.
func (c *Coordinator) IsStopped() bool {
	c.stoppedMu.RLock()
	defer c.stoppedMu.RUnlock()
	return c.stopped
}

// rolloverLoop следит за границей суточного rollover'а квот.
func (c *Coordinator) rolloverLoop(ctx context.Context) {
	ticker := time.NewTicker(defaultRolloverCheck)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if c.quota.ResetDue(time.Now()) {
				c.quota.Rollover(ctx, time.Now())
				c.publishQuotaMetrics()
			}
		}
	}
}

// publishQuotaMetrics обновляет gauge'и потребления квот.
func (c *Coordinator) publishQuotaMetrics() {
	if c.metrics == nil || c.quota == nil {
		return
	}
	for _, service := range c.quota.Services() {
		state, err := c.quota.State(service)
		if err != nil {
			continue
		}
		c.metrics.QuotaUsage.WithLabelValues(service).Set(float64(state.CurrentUsage))
	}
}

// publishWorkerMetrics обновляет gauge'и нагрузки воркеров.
func (c *Coordinator) publishWorkerMetrics() {
	if c.metrics == nil {
		return
	}
	for _, w := range c.registry.Snapshot() {
		c.metrics.WorkerLoad.WithLabelValues(w.ID).Set(float64(w.CurrentLoad))
	}
}
