package optimizer

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/shaiso/Conveyor/internal/domain"
)

// Default configuration values.
const (
	defaultPerformanceWeight = 0.4
	defaultTrendWeight       = 0.3
	defaultCostWeight        = 0.3
	defaultRiskTolerance     = 0.7
	defaultMinThreshold      = 0.5
	defaultMaxThreshold      = 0.5
	defaultInterval          = 6 * time.Hour
)

// Пороги классификации действия: ±10% от текущей аллокации.
const (
	increaseRatio = 1.1
	decreaseRatio = 0.9
)

// QuotaStore — срез QuotaManager'а, нужный оптимизатору.
type QuotaStore interface {
	Services() []string
	State(service string) (domain.QuotaState, error)
	SetDailyLimit(service string, limit int) error
}

// AuditSink — получатель записей об итогах цикла (принятых и отклонённых).
//
// Реализации: repo.AuditRepo, mq.Publisher (через Sinks).
type AuditSink interface {
	RecordOptimization(ctx context.Context, rec *domain.OptimizationRecommendation) error
}

// Sinks — fan-out по нескольким получателям аудита.
type Sinks []AuditSink

// RecordOptimization отдаёт запись каждому получателю.
// Ошибка одного получателя не блокирует остальных.
func (s Sinks) RecordOptimization(ctx context.Context, rec *domain.OptimizationRecommendation) error {
	var firstErr error
	for _, sink := range s {
		if err := sink.RecordOptimization(ctx, rec); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Optimizer — периодический пересчёт аллокаций.
type Optimizer struct {
	quota QuotaStore
	feed  Feed
	audit AuditSink

	performanceWeight float64
	trendWeight       float64
	costWeight        float64
	riskTolerance     float64
	minThreshold      float64
	maxThreshold      float64
	interval          time.Duration

	// baseAllocations — базовые аллокации сервисов из конфигурации.
	// Для неизвестного сервиса базой служит текущая аллокация.
	baseAllocations map[string]int

	logger     *slog.Logger
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
}

// Config — конфигурация Optimizer.
type Config struct {
	// Quota — менеджер квот (обязателен).
	Quota QuotaStore

	// Feed — источник сигналов (обязателен).
	Feed Feed

	// Audit — получатель записей аудита (опционально).
	Audit AuditSink

	// Веса слагаемых score (defaults: 0.4 / 0.3 / 0.3).
	PerformanceWeight float64
	TrendWeight       float64
	CostWeight        float64

	// RiskTolerance — минимальная уверенность для применения (default: 0.7).
	RiskTolerance float64

	// Пороги clamp'а рекомендации относительно базовой аллокации
	// (defaults: 0.5 и 0.5 → [0.5×base, 1.5×base]).
	MinThreshold float64
	MaxThreshold float64

	// Interval — период цикла (default: 6h).
	Interval time.Duration

	// BaseAllocations — базовые аллокации сервисов.
	BaseAllocations map[string]int

	// Logger
	Logger *slog.Logger
}

// New создаёт новый Optimizer.
func New(cfg Config) *Optimizer {
	o := &Optimizer{
		quota:             cfg.Quota,
		feed:              cfg.Feed,
		audit:             cfg.Audit,
		performanceWeight: cfg.PerformanceWeight,
		trendWeight:       cfg.TrendWeight,
		costWeight:        cfg.CostWeight,
		riskTolerance:     cfg.RiskTolerance,
		minThreshold:      cfg.MinThreshold,
		maxThreshold:      cfg.MaxThreshold,
		interval:          cfg.Interval,
		baseAllocations:   cfg.BaseAllocations,
		logger:            cfg.Logger,
	}

	if o.performanceWeight <= 0 {
		o.performanceWeight = defaultPerformanceWeight
	}
	if o.trendWeight <= 0 {
		o.trendWeight = defaultTrendWeight
	}
	if o.costWeight <= 0 {
		o.costWeight = defaultCostWeight
	}
	if o.riskTolerance <= 0 {
		o.riskTolerance = defaultRiskTolerance
	}
	if o.minThreshold <= 0 {
		o.minThreshold = defaultMinThreshold
	}
	if o.maxThreshold <= 0 {
		o.maxThreshold = defaultMaxThreshold
	}
	if o.interval <= 0 {
		o.interval = defaultInterval
	}
	if o.baseAllocations == nil {
		o.baseAllocations = make(map[string]int)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	return o
}

// Start запускает периодический цикл оптимизации.
func (o *Optimizer) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	o.cancelFunc = cancel

	o.logger.Info("starting optimizer", "interval", o.interval)

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(o.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				o.RunCycle(ctx)
			}
		}
	}()
}

// Stop останавливает цикл и дожидается завершения.
func (o *Optimizer) Stop() {
	if o.cancelFunc != nil {
		o.cancelFunc()
	}
	o.wg.Wait()
	o.logger.Info("optimizer stopped")
}

// RunCycle выполняет один цикл: рекомендация по каждому сервису,
// применение при достаточной уверенности, запись в аудит.
// Ошибки одного сервиса не блокируют остальные.
func (o *Optimizer) RunCycle(ctx context.Context) []*domain.OptimizationRecommendation {
	services := o.quota.Services()
	recs := make([]*domain.OptimizationRecommendation, 0, len(services))

	for _, service := range services {
		rec, err := o.recommend(ctx, service)
		if err != nil {
			o.logger.Error("failed to build recommendation",
				"service", service,
				"error", err,
			)
			continue
		}

		if rec.ConfidenceScore >= o.riskTolerance {
			if err := o.quota.SetDailyLimit(service, rec.RecommendedAllocation); err != nil {
				o.logger.Error("failed to apply allocation",
					"service", service,
					"error", err,
				)
			} else {
				rec.Applied = true
			}
		}

		if o.audit != nil {
			if err := o.audit.RecordOptimization(ctx, rec); err != nil {
				o.logger.Warn("failed to record optimization audit",
					"service", service,
					"error", err,
				)
			}
		}

		o.logger.Info("optimization cycle decision",
			"service", service,
			"action", rec.Action,
			"current", rec.CurrentAllocation,
			"recommended", rec.RecommendedAllocation,
			"confidence", rec.ConfidenceScore,
			"applied", rec.Applied,
		)

		recs = append(recs, rec)
	}
	return recs
}

// recommend строит рекомендацию для одного сервиса.
func (o *Optimizer) recommend(ctx context.Context, service string) (*domain.OptimizationRecommendation, error) {
	state, err := o.quota.State(service)
	if err != nil {
		return nil, fmt.Errorf("quota state: %w", err)
	}

	signals, err := o.feed.Signals(ctx, service)
	if err != nil {
		return nil, fmt.Errorf("feed signals: %w", err)
	}

	current := state.DailyLimit
	base := o.baseAllocations[service]
	if base <= 0 {
		base = current
	}

	score := o.score(signals)
	recommended := clampAllocation(
		int(math.Round(float64(base)*score)),
		int(math.Round(o.minThreshold*float64(base))),
		int(math.Round((1+o.maxThreshold)*float64(base))),
	)

	confidence := confidenceOf(signals)

	rec := &domain.OptimizationRecommendation{
		Service:               service,
		Action:                classify(recommended, current),
		CurrentAllocation:     current,
		RecommendedAllocation: recommended,
		ConfidenceScore:       confidence,
		Reasoning: fmt.Sprintf(
			"score=%.3f (success_rate=%.2f roi=%.2f trend=%.2f monetization=%.2f cost_ratio=%.2f), base=%d",
			score,
			neutralize(signals.SuccessRate),
			neutralize(signals.ROIFactor),
			neutralize(signals.TrendStrength),
			neutralize(signals.MonetizationPotential),
			costRatio(signals),
			base,
		),
		RiskAssessment: assessRisk(recommended, current),
		CreatedAt:      time.Now(),
	}
	return rec, nil
}

// score считает взвешенную оценку сервиса:
//
//	pw×successRate×roi + tw×trendStrength×monetization + cw×(baseCost/currentCost)
func (o *Optimizer) score(s domain.ServiceSignals) float64 {
	performance := neutralize(s.SuccessRate) * neutralize(s.ROIFactor)
	trend := neutralize(s.TrendStrength) * neutralize(s.MonetizationPotential)
	return o.performanceWeight*performance +
		o.trendWeight*trend +
		o.costWeight*costRatio(s)
}

// costRatio возвращает base_cost/current_cost; при отсутствии данных — 1.
func costRatio(s domain.ServiceSignals) float64 {
	if s.BaseCost <= 0 || s.CurrentCost <= 0 {
		return 1
	}
	return s.BaseCost / s.CurrentCost
}

// confidenceOf выводит уверенность из стабильности сигналов:
// успех и средний performance-score дают основной вклад, тренд — меньший.
func confidenceOf(s domain.ServiceSignals) float64 {
	c := 0.5*neutralize(s.SuccessRate) +
		0.3*neutralize(s.AvgPerformanceScore) +
		0.2*neutralize(s.TrendStrength)
	if c > 1 {
		c = 1
	}
	return c
}

// classify определяет действие по отношению рекомендации к текущей
// аллокации: increase при > 1.1×, decrease при < 0.9×, иначе maintain.
func classify(recommended, current int) domain.OptimizationAction {
	if current <= 0 {
		if recommended > 0 {
			return domain.ActionIncrease
		}
		return domain.ActionMaintain
	}
	ratio := float64(recommended) / float64(current)
	switch {
	case ratio > increaseRatio:
		return domain.ActionIncrease
	case ratio < decreaseRatio:
		return domain.ActionDecrease
	default:
		return domain.ActionMaintain
	}
}

// assessRisk оценивает риск применения по величине изменения.
func assessRisk(recommended, current int) string {
	if current <= 0 {
		return "unknown baseline"
	}
	change := math.Abs(float64(recommended-current)) / float64(current)
	switch {
	case change > 0.5:
		return "high: allocation change exceeds 50%"
	case change > 0.2:
		return "medium: allocation change exceeds 20%"
	default:
		return "low: allocation change within 20%"
	}
}

func clampAllocation(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
