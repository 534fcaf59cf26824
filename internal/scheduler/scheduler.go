package scheduler

import (
	"log/slog"
	"time"

	"github.com/shaiso/Conveyor/internal/domain"
	"github.com/shaiso/Conveyor/internal/executor"
	"github.com/shaiso/Conveyor/internal/quota"
	"github.com/shaiso/Conveyor/internal/registry"
)

// Scheduler — планировщик назначений задач на воркеров.
type Scheduler struct {
	registry *registry.Registry
	quota    *quota.Manager
	logger   *slog.Logger
}

// Config — конфигурация Scheduler.
type Config struct {
	// Registry — пул воркеров (обязателен).
	Registry *registry.Registry

	// Quota — менеджер квот; nil — квоты не проверяются.
	Quota *quota.Manager

	// Logger
	Logger *slog.Logger
}

// New создаёт новый Scheduler.
func New(cfg Config) *Scheduler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Scheduler{
		registry: cfg.Registry,
		quota:    cfg.Quota,
		logger:   logger,
	}
}

// Report — итог планирования одной волны.
type Report struct {
	// Assignments — готовые назначения для пула исполнителей,
	// в порядке диспетчеризации.
	Assignments []executor.Assignment

	// NoWorker — задачи, упавшие без кандидата (retry не расходуется).
	NoWorker []*domain.Task

	// Deferred — задачи, отложенные из-за исчерпанной суточной квоты.
	Deferred []*domain.Task
}

// PlanTiers планирует задачи по тирам: тир за тиром, внутри тира —
// в переданном порядке (порядок создания). Передачу назначений пулу
// выполняет координатор, перемежая её с приёмом исходов.
func (s *Scheduler) PlanTiers(tiers [][]*domain.Task) *Report {
	report := &Report{}
	for _, tier := range tiers {
		for _, task := range tier {
			s.plan(task, report)
		}
	}
	return report
}

// plan обрабатывает одну задачу: кандидат → квота → назначение.
func (s *Scheduler) plan(task *domain.Task, report *Report) {
	now := time.Now()

	// Сначала кандидат: задача без воркера не трогает квоту сервиса
	worker, err := s.registry.SelectBest(task, now)
	if err != nil {
		task.MarkFailedTerminal(err.Error())
		s.logger.Warn("no available worker",
			"task_id", task.ID,
			"type", task.Type,
			"priority", task.Priority.String(),
		)
		report.NoWorker = append(report.NoWorker, task)
		return
	}

	// Квота внешнего сервиса (оптимистичное резервирование)
	var notBefore time.Time
	if service := task.Service(); service != "" && s.quota != nil {
		dispatchAt, err := s.quota.Reserve(service, now)
		if err != nil {
			// Отложено, не упало: retry не расходуется,
			// ёмкость воркера не занята
			s.logger.Info("task deferred by quota",
				"task_id", task.ID,
				"service", service,
			)
			report.Deferred = append(report.Deferred, task)
			return
		}
		notBefore = dispatchAt
	}

	// Назначение: резервируем ёмкость, воркер становится BUSY.
	// RUNNING проставляется здесь, в потоке координатора.
	worker.Acquire()
	task.MarkAssigned(worker.ID)
	task.MarkRunning()

	s.logger.Debug("task assigned",
		"task_id", task.ID,
		"worker_id", worker.ID,
		"load", worker.CurrentLoad,
		"capacity", worker.Capacity,
	)

	report.Assignments = append(report.Assignments, executor.Assignment{
		Task:      task,
		WorkerID:  worker.ID,
		NotBefore: notBefore,
	})
}
