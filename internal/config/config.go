// Package config загружает конфигурацию координатора из YAML-файла
// и умеет отслеживать её изменения для live-обновления лимитов.
package config

import (
	"fmt"
	"os"
	"time"

	yaml "go.yaml.in/yaml/v3"

	"github.com/shaiso/Conveyor/internal/domain"
)

// Default configuration values.
const (
	defaultMaxConcurrentWorkers = 20
	defaultTaskTimeoutSeconds   = 300
	defaultStaggerSeconds       = 60
	defaultResetSchedule        = "0 0 * * *"
)

// Config — конфигурация координатора.
type Config struct {
	// MaxConcurrentWorkers — размер пула исполнителей.
	MaxConcurrentWorkers int `yaml:"max_concurrent_workers"`

	// TaskTimeoutSeconds — потолок выполнения одной задачи.
	TaskTimeoutSeconds int `yaml:"task_timeout_seconds"`

	// RetryDelaysSeconds — backoff-таблица в секундах.
	// Длина таблицы ограничивает max_retries.
	RetryDelaysSeconds []int `yaml:"retry_delays"`

	// Веса оптимизатора.
	PerformanceWeight float64 `yaml:"performance_weight"`
	TrendWeight       float64 `yaml:"trend_weight"`
	CostWeight        float64 `yaml:"cost_weight"`

	// RiskTolerance — минимальная уверенность для применения рекомендации.
	RiskTolerance float64 `yaml:"risk_tolerance"`

	// Пороги clamp'а аллокаций.
	MinAllocationThreshold float64 `yaml:"min_allocation_threshold"`
	MaxAllocationThreshold float64 `yaml:"max_allocation_threshold"`

	// OptimizationInterval — период цикла оптимизации ("6h", "30m").
	OptimizationInterval string `yaml:"optimization_interval"`

	// StaggerSeconds — интервал разнесения dispatch-времён квотами.
	StaggerSeconds int `yaml:"stagger_seconds"`

	// ResetSchedule — cron-выражение суточного rollover'а.
	ResetSchedule string `yaml:"reset_schedule"`

	// Services — лимиты внешних сервисов.
	Services map[string]ServiceConfig `yaml:"services"`

	// Workers — статический пул воркеров.
	Workers []WorkerConfig `yaml:"workers"`
}

// ServiceConfig — лимиты одного внешнего сервиса.
type ServiceConfig struct {
	DailyLimit     int `yaml:"daily_limit"`
	HourlyLimit    int `yaml:"hourly_limit"`
	BaseAllocation int `yaml:"base_allocation"`
}

// WorkerConfig — описание одного воркера.
type WorkerConfig struct {
	ID               string   `yaml:"id"`
	Type             string   `yaml:"type"`
	Capacity         int      `yaml:"capacity"`
	Specializations  []string `yaml:"specializations"`
	PerformanceScore float64  `yaml:"performance_score"`
}

// Load читает и валидирует конфигурацию из файла.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDefaults подставляет значения по умолчанию вместо нулевых.
func (c *Config) applyDefaults() {
	if c.MaxConcurrentWorkers <= 0 {
		c.MaxConcurrentWorkers = defaultMaxConcurrentWorkers
	}
	if c.TaskTimeoutSeconds <= 0 {
		c.TaskTimeoutSeconds = defaultTaskTimeoutSeconds
	}
	if c.StaggerSeconds <= 0 {
		c.StaggerSeconds = defaultStaggerSeconds
	}
	if c.ResetSchedule == "" {
		c.ResetSchedule = defaultResetSchedule
	}
}

// Validate проверяет конфигурацию.
func (c *Config) Validate() error {
	for _, w := range c.Workers {
		if w.ID == "" {
			return fmt.Errorf("worker without id")
		}
		if w.Type == "" {
			return fmt.Errorf("worker %s: empty type", w.ID)
		}
		if w.Capacity <= 0 {
			return fmt.Errorf("worker %s: capacity must be positive", w.ID)
		}
		if w.PerformanceScore < 0 || w.PerformanceScore > 1 {
			return fmt.Errorf("worker %s: performance_score out of [0,1]", w.ID)
		}
	}
	for name, svc := range c.Services {
		if svc.DailyLimit <= 0 {
			return fmt.Errorf("service %s: daily_limit must be positive", name)
		}
		if svc.HourlyLimit <= 0 {
			return fmt.Errorf("service %s: hourly_limit must be positive", name)
		}
	}
	for i, d := range c.RetryDelaysSeconds {
		if d <= 0 {
			return fmt.Errorf("retry_delays[%d]: must be positive", i)
		}
	}
	return nil
}

// TaskTimeout возвращает потолок выполнения как Duration.
func (c *Config) TaskTimeout() time.Duration {
	return time.Duration(c.TaskTimeoutSeconds) * time.Second
}

// Stagger возвращает интервал разнесения как Duration.
func (c *Config) Stagger() time.Duration {
	return time.Duration(c.StaggerSeconds) * time.Second
}

// RetryDelays возвращает backoff-таблицу как []Duration.
// Пустая таблица — дефолты RetryManager'а.
func (c *Config) RetryDelays() []time.Duration {
	out := make([]time.Duration, 0, len(c.RetryDelaysSeconds))
	for _, d := range c.RetryDelaysSeconds {
		out = append(out, time.Duration(d)*time.Second)
	}
	return out
}

// OptimizerInterval парсит период цикла оптимизации.
// Пустое значение — дефолт оптимизатора.
func (c *Config) OptimizerInterval() (time.Duration, error) {
	if c.OptimizationInterval == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.OptimizationInterval)
	if err != nil {
		return 0, fmt.Errorf("parse optimization_interval: %w", err)
	}
	return d, nil
}

// BuildWorkers создаёт доменных воркеров из конфигурации.
func (c *Config) BuildWorkers() []*domain.Worker {
	workers := make([]*domain.Worker, 0, len(c.Workers))
	for _, w := range c.Workers {
		score := w.PerformanceScore
		if score == 0 {
			score = 0.5 // нейтральный старт для нового воркера
		}
		workers = append(workers, &domain.Worker{
			ID:               w.ID,
			Type:             w.Type,
			Capacity:         w.Capacity,
			Specializations:  w.Specializations,
			PerformanceScore: score,
			Status:           domain.WorkerStatusIdle,
		})
	}
	return workers
}

// BaseAllocations возвращает базовые аллокации сервисов для оптимизатора.
// Нулевая base_allocation наследует daily_limit.
func (c *Config) BaseAllocations() map[string]int {
	out := make(map[string]int, len(c.Services))
	for name, svc := range c.Services {
		base := svc.BaseAllocation
		if base <= 0 {
			base = svc.DailyLimit
		}
		out[name] = base
	}
	return out
}
