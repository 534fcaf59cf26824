package quota

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Conveyor/internal/domain"
)

// defaultStagger — интервал разнесения dispatch-времён внутри часа.
const defaultStagger = 60 * time.Second

// SnapshotSink — получатель финальных счётчиков при rollover'е.
//
// Реализация: repo.UsageRepo. Потеря снапшотов не влияет на
// корректность живого планирования.
type SnapshotSink interface {
	SaveUsageSnapshot(ctx context.Context, snap *domain.UsageSnapshot) error
}

// Request — запрос на резервирование квоты сервиса.
type Request struct {
	// TaskID — задача, ради которой резервируется квота.
	TaskID uuid.UUID

	// Service — внешний сервис.
	Service string

	// Priority — приоритет (порядок admission внутри батча).
	Priority domain.Priority
}

// Scheduled — допущенный запрос с назначенным dispatch-временем.
type Scheduled struct {
	Request
	DispatchAt time.Time
}

// Plan — результат планирования батча запросов.
type Plan struct {
	// Scheduled — допущенные запросы в порядке admission.
	Scheduled []Scheduled

	// Deferred — отложенные из-за суточного потолка.
	Deferred []Request
}

// serviceState — состояние квоты сервиса плюс курсор планирования.
type serviceState struct {
	quota domain.QuotaState

	// cursor — последнее назначенное dispatch-время.
	// Следующий запрос получает cursor + stagger (кумулятивно).
	cursor time.Time

	// hourWindow — начало часа, к которому относится hourly-счётчик.
	hourWindow time.Time
}

// Manager — менеджер квот внешних сервисов.
//
// Защищён мьютексом: кроме потока координатора, лимиты трогают
// оптимизатор (аллокации) и config-watcher (live reload).
type Manager struct {
	mu       sync.Mutex
	services map[string]*serviceState
	order    []string

	stagger   time.Duration
	resetExpr string
	resetAt   time.Time

	sink   SnapshotSink
	logger *slog.Logger
}

// Config — конфигурация Manager.
type Config struct {
	// Stagger — интервал разнесения dispatch-времён (default: 60s).
	Stagger time.Duration

	// ResetExpr — cron-выражение суточного rollover'а (default: "0 0 * * *").
	ResetExpr string

	// Sink — получатель снапшотов при rollover'е (опционально).
	Sink SnapshotSink

	// Logger
	Logger *slog.Logger
}

// New создаёт новый Manager.
func New(cfg Config) (*Manager, error) {
	stagger := cfg.Stagger
	if stagger <= 0 {
		stagger = defaultStagger
	}

	resetExpr := cfg.ResetExpr
	if resetExpr == "" {
		resetExpr = DefaultResetExpr
	}
	resetAt, err := NextReset(resetExpr, time.Now())
	if err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Manager{
		services:  make(map[string]*serviceState),
		stagger:   stagger,
		resetExpr: resetExpr,
		resetAt:   resetAt,
		sink:      cfg.Sink,
		logger:    logger,
	}, nil
}

// Configure задаёт (или обновляет) лимиты сервиса.
// Текущее потребление при обновлении лимитов сохраняется.
func (m *Manager) Configure(service string, dailyLimit, hourlyLimit int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.services[service]
	if !ok {
		st = &serviceState{
			quota: domain.QuotaState{
				Service:   service,
				ResetTime: m.resetAt,
			},
		}
		m.services[service] = st
		m.order = append(m.order, service)
	}
	st.quota.DailyLimit = dailyLimit
	st.quota.HourlyLimit = hourlyLimit
}

// SetDailyLimit обновляет суточную аллокацию сервиса.
// Используется оптимизатором при применении рекомендаций.
func (m *Manager) SetDailyLimit(service string, limit int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.services[service]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownService, service)
	}
	st.quota.DailyLimit = limit
	return nil
}

// State возвращает копию состояния квоты сервиса.
func (m *Manager) State(service string) (domain.QuotaState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.services[service]
	if !ok {
		return domain.QuotaState{}, fmt.Errorf("%w: %s", ErrUnknownService, service)
	}
	return st.quota, nil
}

// Services возвращает имена сервисов в порядке конфигурации.
func (m *Manager) Services() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// Reserve резервирует одну операцию сервиса и назначает dispatch-время.
//
// Допуск только пока current_usage < daily_limit; при достигнутом
// часовом потолке кандидатское время сдвигается на границу следующего
// часа (кумулятивно по батчу), иначе — stagger от предыдущего.
// Оба счётчика увеличиваются немедленно.
func (m *Manager) Reserve(service string, now time.Time) (time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reserveLocked(service, now)
}

func (m *Manager) reserveLocked(service string, now time.Time) (time.Time, error) {
	st, ok := m.services[service]
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %s", ErrUnknownService, service)
	}

	if st.quota.DailyExhausted() {
		return time.Time{}, fmt.Errorf("%w: %s (%d/%d)",
			ErrQuotaExhausted, service, st.quota.CurrentUsage, st.quota.DailyLimit)
	}

	// Кандидатское время: stagger от предыдущего назначения
	candidate := st.cursor.Add(m.stagger)
	if candidate.Before(now) {
		candidate = now
	}

	// Часовой счётчик относится к часу кандидатского времени
	if hw := candidate.Truncate(time.Hour); hw.After(st.hourWindow) {
		st.hourWindow = hw
		st.quota.CurrentHourlyUsage = 0
	}

	// Часовой потолок: сдвигаем на границу следующего часа
	if st.quota.HourlyExhausted() {
		candidate = hourBoundary(candidate)
		st.hourWindow = candidate.Truncate(time.Hour)
		st.quota.CurrentHourlyUsage = 0
	}

	st.quota.CurrentUsage++
	st.quota.CurrentHourlyUsage++
	st.cursor = candidate

	return candidate, nil
}

// Schedule планирует батч запросов: сортировка по приоритету,
// затем admission по одному. Отложенные запросы попадают в Plan.Deferred.
func (m *Manager) Schedule(requests []Request, now time.Time) *Plan {
	m.mu.Lock()
	defer m.mu.Unlock()

	sorted := make([]Request, len(requests))
	copy(sorted, requests)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority > sorted[j].Priority
	})

	plan := &Plan{}
	for _, req := range sorted {
		dispatchAt, err := m.reserveLocked(req.Service, now)
		if err != nil {
			plan.Deferred = append(plan.Deferred, req)
			continue
		}
		plan.Scheduled = append(plan.Scheduled, Scheduled{
			Request:    req,
			DispatchAt: dispatchAt,
		})
	}
	return plan
}

// ResetDue возвращает true, если граница rollover'а пройдена.
func (m *Manager) ResetDue(now time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !now.Before(m.resetAt)
}

// Rollover персистит финальные счётчики истёкшего периода и зануляет
// все счётчики каждого сервиса. Возвращает число сохранённых снапшотов.
func (m *Manager) Rollover(ctx context.Context, now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	periodDate := m.resetAt.AddDate(0, 0, -1)
	var persisted int

	for _, name := range m.order {
		st := m.services[name]

		if m.sink != nil {
			snap := &domain.UsageSnapshot{
				Service:     name,
				PeriodDate:  periodDate,
				DailyLimit:  st.quota.DailyLimit,
				Usage:       st.quota.CurrentUsage,
				HourlyUsage: st.quota.CurrentHourlyUsage,
			}
			if err := m.sink.SaveUsageSnapshot(ctx, snap); err != nil {
				// Потеря снапшота не мешает живому планированию
				m.logger.Warn("failed to persist usage snapshot",
					"service", name,
					"error", err,
				)
			} else {
				persisted++
			}
		}

		st.quota.CurrentUsage = 0
		st.quota.CurrentHourlyUsage = 0
		st.cursor = time.Time{}
		st.hourWindow = time.Time{}
	}

	next, err := NextReset(m.resetExpr, now)
	if err != nil {
		// Выражение валидировалось в New; сюда попадать не должны
		next = now.Add(24 * time.Hour)
	}
	m.resetAt = next
	for _, st := range m.services {
		st.quota.ResetTime = next
	}

	m.logger.Info("quota rollover completed",
		"services", len(m.order),
		"persisted", persisted,
		"next_reset", next,
	)
	return persisted
}
