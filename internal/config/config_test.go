package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shaiso/Conveyor/internal/domain"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "conveyor.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const sampleConfig = `
max_concurrent_workers: 10
task_timeout_seconds: 120
retry_delays: [300, 900, 1800]
risk_tolerance: 0.8
optimization_interval: 12h
stagger_seconds: 30
reset_schedule: "0 3 * * *"
services:
  youtube:
    daily_limit: 50
    hourly_limit: 10
    base_allocation: 40
  tiktok:
    daily_limit: 30
    hourly_limit: 5
workers:
  - id: gen-1
    type: video_generation
    capacity: 2
    specializations: [upload]
    performance_score: 0.8
  - id: gen-2
    type: video_generation
    capacity: 2
`

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.MaxConcurrentWorkers != 10 {
		t.Errorf("expected 10 workers, got %d", cfg.MaxConcurrentWorkers)
	}
	if cfg.TaskTimeout() != 2*time.Minute {
		t.Errorf("unexpected timeout: %v", cfg.TaskTimeout())
	}
	if cfg.Stagger() != 30*time.Second {
		t.Errorf("unexpected stagger: %v", cfg.Stagger())
	}

	delays := cfg.RetryDelays()
	if len(delays) != 3 || delays[0] != 5*time.Minute {
		t.Errorf("unexpected delays: %v", delays)
	}

	interval, err := cfg.OptimizerInterval()
	if err != nil || interval != 12*time.Hour {
		t.Errorf("unexpected interval: %v / %v", interval, err)
	}

	if cfg.Services["youtube"].DailyLimit != 50 {
		t.Errorf("unexpected services: %+v", cfg.Services)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "services: {}\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.MaxConcurrentWorkers != 20 {
		t.Errorf("expected default pool size 20, got %d", cfg.MaxConcurrentWorkers)
	}
	if cfg.TaskTimeout() != 300*time.Second {
		t.Errorf("expected default timeout 300s, got %v", cfg.TaskTimeout())
	}
	if cfg.Stagger() != 60*time.Second {
		t.Errorf("expected default stagger 60s, got %v", cfg.Stagger())
	}
	if cfg.ResetSchedule != "0 0 * * *" {
		t.Errorf("expected midnight reset, got %q", cfg.ResetSchedule)
	}
	if len(cfg.RetryDelays()) != 0 {
		t.Error("empty retry table must defer to the retry manager defaults")
	}
}

func TestLoad_Invalid(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"worker without id", "workers:\n  - type: x\n    capacity: 1\n"},
		{"worker without type", "workers:\n  - id: w1\n    capacity: 1\n"},
		{"zero capacity", "workers:\n  - id: w1\n    type: x\n"},
		{"score out of range", "workers:\n  - id: w1\n    type: x\n    capacity: 1\n    performance_score: 1.5\n"},
		{"zero daily limit", "services:\n  youtube:\n    hourly_limit: 5\n"},
		{"zero hourly limit", "services:\n  youtube:\n    daily_limit: 5\n"},
		{"negative retry delay", "retry_delays: [-10]\n"},
		{"broken yaml", "services: [\n"},
	}

	for _, c := range cases {
		if _, err := Load(writeConfig(t, c.yaml)); err == nil {
			t.Errorf("%s: expected error", c.name)
		}
	}
}

func TestConfig_BuildWorkers(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	workers := cfg.BuildWorkers()
	if len(workers) != 2 {
		t.Fatalf("expected 2 workers, got %d", len(workers))
	}
	if workers[0].PerformanceScore != 0.8 {
		t.Errorf("expected configured score, got %f", workers[0].PerformanceScore)
	}
	// Неуказанный score — нейтральный старт
	if workers[1].PerformanceScore != 0.5 {
		t.Errorf("expected neutral score 0.5, got %f", workers[1].PerformanceScore)
	}
	if workers[0].Status != domain.WorkerStatusIdle {
		t.Errorf("expected IDLE, got %s", workers[0].Status)
	}
}

func TestConfig_BaseAllocations(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	base := cfg.BaseAllocations()
	if base["youtube"] != 40 {
		t.Errorf("expected explicit base 40, got %d", base["youtube"])
	}
	// base_allocation не задана — наследует daily_limit
	if base["tiktok"] != 30 {
		t.Errorf("expected inherited base 30, got %d", base["tiktok"])
	}
}
