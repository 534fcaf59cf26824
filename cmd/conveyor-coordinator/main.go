// Conveyor Coordinator — демон планирования контент-конвейера.
//
// Координатор:
//   - Принимает батчи задач из RabbitMQ (очередь tasks.batches)
//   - Распределяет задачи по воркерам с учётом квот внешних сервисов
//   - Выполняет retry с backoff и терминальные alert'ы
//   - Раз в optimization_interval пересчитывает суточные аллокации
//   - Делает суточный rollover квот со снапшотами в Postgres
//
// Демон single-instance: батчи сериализуются, всё изменяемое
// состояние принадлежит одному координатору.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/shaiso/Conveyor/internal/alerting"
	"github.com/shaiso/Conveyor/internal/config"
	"github.com/shaiso/Conveyor/internal/coordinator"
	"github.com/shaiso/Conveyor/internal/handlers"
	"github.com/shaiso/Conveyor/internal/mq"
	"github.com/shaiso/Conveyor/internal/optimizer"
	"github.com/shaiso/Conveyor/internal/quota"
	"github.com/shaiso/Conveyor/internal/repo"
	"github.com/shaiso/Conveyor/internal/retry"
	"github.com/shaiso/Conveyor/internal/telemetry"
)

// defaultAlertRate — потолок публикаций alert'ов в секунду.
const defaultAlertRate = rate.Limit(1)

func main() {
	// Инициализируем structured logging
	logger := telemetry.SetupLogger()
	logger.Info("starting conveyor-coordinator")

	// graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Конфигурация
	cfgPath := os.Getenv("CONVEYOR_CONFIG")
	if cfgPath == "" {
		cfgPath = "conveyor.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "path", cfgPath, "error", err)
		os.Exit(1)
	}
	logger.Info("config loaded", "path", cfgPath, "services", len(cfg.Services), "workers", len(cfg.Workers))

	// DB pool: персистенция снапшотов, аудита и alert'ов.
	// Без базы координатор работает, но без отчётности.
	var usageRepo *repo.UsageRepo
	var auditRepo *repo.AuditRepo
	var alertRepo *repo.AlertRepo

	pool, err := repo.NewPool(ctx)
	if err != nil {
		logger.Warn("database not available, reporting disabled", "error", err)
	} else {
		defer pool.Close()
		logger.Info("database connected")
		usageRepo = repo.NewUsageRepo(pool)
		auditRepo = repo.NewAuditRepo(pool)
		alertRepo = repo.NewAlertRepo(pool)
	}

	// RabbitMQ: приём батчей + публикация alert'ов и аудита.
	// Без брокера координатор поднимается, но батчи не принимает.
	var mqConn *mq.Connection
	var publisher *mq.Publisher

	mqConn, err = mq.NewConnection(mq.URL(), logger)
	if err != nil {
		logger.Warn("RabbitMQ not available, batch intake disabled", "error", err)
		mqConn = nil
	} else {
		defer mqConn.Close()
		logger.Info("RabbitMQ connected")

		if err := mq.SetupTopology(mqConn); err != nil {
			logger.Warn("failed to setup topology", "error", err)
		}
		publisher = mq.NewPublisher(mqConn, logger)
	}

	// Квоты внешних сервисов
	var snapshotSink quota.SnapshotSink
	if usageRepo != nil {
		snapshotSink = usageRepo
	}
	quotaMgr, err := quota.New(quota.Config{
		Stagger:   cfg.Stagger(),
		ResetExpr: cfg.ResetSchedule,
		Sink:      snapshotSink,
		Logger:    logger,
	})
	if err != nil {
		logger.Error("failed to create quota manager", "error", err)
		os.Exit(1)
	}
	for name, svc := range cfg.Services {
		quotaMgr.Configure(name, svc.DailyLimit, svc.HourlyLimit)
	}

	// Терминальные alert'ы: всегда в базу, в MQ — с rate-limit'ом
	var notifier alerting.Notifier
	if publisher != nil {
		notifier = publisher
	}
	var store alerting.Store
	if alertRepo != nil {
		store = alertRepo
	}
	dispatcher := alerting.New(alerting.Config{
		Store:       store,
		Notifier:    notifier,
		PublishRate: defaultAlertRate,
		Logger:      logger,
	})

	retryMgr := retry.New(retry.Config{
		Delays: cfg.RetryDelays(),
		Sink:   dispatcher,
		Logger: logger,
	})

	// Оптимизатор аллокаций: аудит в базу и в MQ
	interval, err := cfg.OptimizerInterval()
	if err != nil {
		logger.Error("invalid optimization_interval", "error", err)
		os.Exit(1)
	}
	var audit optimizer.Sinks
	if auditRepo != nil {
		audit = append(audit, auditRepo)
	}
	if publisher != nil {
		audit = append(audit, publisher)
	}
	opt := optimizer.New(optimizer.Config{
		Quota:             quotaMgr,
		Feed:              optimizer.NeutralFeed(),
		Audit:             audit,
		PerformanceWeight: cfg.PerformanceWeight,
		TrendWeight:       cfg.TrendWeight,
		CostWeight:        cfg.CostWeight,
		RiskTolerance:     cfg.RiskTolerance,
		MinThreshold:      cfg.MinAllocationThreshold,
		MaxThreshold:      cfg.MaxAllocationThreshold,
		Interval:          interval,
		BaseAllocations:   cfg.BaseAllocations(),
		Logger:            logger,
	})

	metrics := telemetry.NewMetrics()

	coord, err := coordinator.New(coordinator.Config{
		Workers:     cfg.BuildWorkers(),
		Handlers:    handlers.Defaults(),
		Quota:       quotaMgr,
		Retry:       retryMgr,
		Optimizer:   opt,
		Metrics:     metrics,
		PoolSize:    cfg.MaxConcurrentWorkers,
		TaskTimeout: cfg.TaskTimeout(),
		Logger:      logger,
	})
	if err != nil {
		logger.Error("failed to create coordinator", "error", err)
		os.Exit(1)
	}

	coord.Start(ctx)
	defer coord.Stop()

	// Приём батчей из очереди tasks.batches
	if mqConn != nil {
		consumer := mq.NewConsumer(mqConn, logger, mq.ConsumerConfig{
			Queue:    mq.QueueTaskBatches,
			Handler:  batchHandler(coord, logger),
			Prefetch: 1, // батчи строго по одному
		})
		go func() {
			if err := consumer.Start(ctx); err != nil && ctx.Err() == nil {
				logger.Error("batch consumer stopped", "error", err)
			}
		}()
	}

	// Live-обновление лимитов сервисов при изменении конфига
	go func() {
		err := config.Watch(ctx, cfgPath, logger, func(updated *config.Config) {
			for name, svc := range updated.Services {
				quotaMgr.Configure(name, svc.DailyLimit, svc.HourlyLimit)
			}
		})
		if err != nil && ctx.Err() == nil {
			logger.Warn("config watcher stopped", "error", err)
		}
	}()

	// HTTP mux: /healthz + /metrics
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	port := ":8080"
	if v := os.Getenv("COORDINATOR_PORT"); v != "" {
		port = ":" + v
	}
	srv := &http.Server{Addr: port, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.Info("listening", "addr", port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("http server error", "error", err)
	}
}
