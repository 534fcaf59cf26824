package registry

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/shaiso/Conveyor/internal/domain"
)

func newWorker(id string, capacity int, score float64) *domain.Worker {
	return &domain.Worker{
		ID:               id,
		Type:             "video_generation",
		Capacity:         capacity,
		PerformanceScore: score,
		Status:           domain.WorkerStatusIdle,
	}
}

// --- Registry Tests ---

func TestRegistry_Register(t *testing.T) {
	r := New()

	if err := r.Register(newWorker("w1", 2, 0.5)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Len() != 1 {
		t.Errorf("expected 1 worker, got %d", r.Len())
	}
	if r.Get("w1") == nil {
		t.Error("expected to find w1")
	}
}

func TestRegistry_Register_Duplicate(t *testing.T) {
	r := New()
	r.Register(newWorker("w1", 2, 0.5))

	err := r.Register(newWorker("w1", 3, 0.9))
	if !errors.Is(err, ErrDuplicateWorker) {
		t.Errorf("expected ErrDuplicateWorker, got %v", err)
	}
}

func TestRegistry_Register_InvalidCapacity(t *testing.T) {
	r := New()
	err := r.Register(newWorker("w1", 0, 0.5))
	if !errors.Is(err, ErrInvalidCapacity) {
		t.Errorf("expected ErrInvalidCapacity, got %v", err)
	}
}

func TestRegistry_Candidates(t *testing.T) {
	r := New()
	r.Register(newWorker("w1", 1, 0.5))
	r.Register(newWorker("w2", 1, 0.5))

	other := newWorker("w3", 1, 0.5)
	other.Type = "trend_analysis"
	r.Register(other)

	offline := newWorker("w4", 1, 0.5)
	offline.Status = domain.WorkerStatusOffline
	r.Register(offline)

	full := newWorker("w5", 1, 0.5)
	full.CurrentLoad = 1
	r.Register(full)

	task := domain.NewTask("video_generation", domain.PriorityHigh, nil)
	candidates := r.Candidates(task)

	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(candidates))
	}
	// Порядок — порядок регистрации
	if candidates[0].ID != "w1" || candidates[1].ID != "w2" {
		t.Errorf("unexpected candidate order: %s, %s", candidates[0].ID, candidates[1].ID)
	}
}

func TestRegistry_SelectBest_NoCandidates(t *testing.T) {
	r := New()
	task := domain.NewTask("video_generation", domain.PriorityHigh, nil)

	_, err := r.SelectBest(task, time.Now())
	if !errors.Is(err, ErrNoAvailableWorker) {
		t.Errorf("expected ErrNoAvailableWorker, got %v", err)
	}
}

func TestRegistry_SelectBest_HighestScore(t *testing.T) {
	r := New()
	r.Register(newWorker("slow", 2, 0.3))
	r.Register(newWorker("fast", 2, 0.9))

	task := domain.NewTask("video_generation", domain.PriorityHigh, nil)
	best, err := r.SelectBest(task, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if best.ID != "fast" {
		t.Errorf("expected fast, got %s", best.ID)
	}
}

func TestRegistry_SelectBest_TieBreak(t *testing.T) {
	// При равных score выигрывает зарегистрированный раньше
	r := New()
	r.Register(newWorker("first", 2, 0.5))
	r.Register(newWorker("second", 2, 0.5))

	task := domain.NewTask("video_generation", domain.PriorityHigh, nil)
	best, err := r.SelectBest(task, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if best.ID != "first" {
		t.Errorf("expected first, got %s", best.ID)
	}
}

// --- Scoring Tests ---

func TestScore_BaseFormula(t *testing.T) {
	now := time.Now()
	w := newWorker("w1", 2, 0.8)
	w.CurrentLoad = 1 // load factor 0.5

	task := domain.NewTask("video_generation", domain.PriorityHigh, nil)

	// 0.8 × (0.7 + 0.3×0.5) = 0.68
	if got := Score(w, task, now); math.Abs(got-0.68) > 1e-9 {
		t.Errorf("expected 0.68, got %f", got)
	}
}

func TestScore_SpecializationBonus(t *testing.T) {
	now := time.Now()
	w := newWorker("w1", 1, 1.0)
	w.Specializations = []string{"upload"}

	plain := domain.NewTask("video_generation", domain.PriorityHigh, nil)
	matching := domain.NewTask("video_generation", domain.PriorityHigh, map[string]any{"action": "upload"})

	base := Score(w, plain, now)
	boosted := Score(w, matching, now)

	if math.Abs(boosted/base-1.2) > 1e-9 {
		t.Errorf("expected 1.2x bonus, got %f", boosted/base)
	}
}

func TestScore_RecencyBonus(t *testing.T) {
	now := time.Now()
	task := domain.NewTask("video_generation", domain.PriorityHigh, nil)

	recent := newWorker("w1", 1, 1.0)
	recent.LastActivity = now.Add(-time.Minute)

	stale := newWorker("w2", 1, 1.0)
	stale.LastActivity = now.Add(-10 * time.Minute)

	idleForever := newWorker("w3", 1, 1.0)

	if Score(recent, task, now) <= Score(stale, task, now) {
		t.Error("recent activity must boost score")
	}
	if Score(stale, task, now) != Score(idleForever, task, now) {
		t.Error("activity outside the window must not boost score")
	}
}

// Сценарий: 3 воркера с ёмкостью 2 принимают 5 задач; шестая не
// помещается, пока никто не освободился.
func TestRegistry_CapacityScenario(t *testing.T) {
	r := New()
	r.Register(newWorker("w1", 2, 0.9))
	r.Register(newWorker("w2", 2, 0.7))
	r.Register(newWorker("w3", 2, 0.5))

	now := time.Now()
	for i := 0; i < 5; i++ {
		task := domain.NewTask("video_generation", domain.PriorityHigh, nil)
		w, err := r.SelectBest(task, now)
		if err != nil {
			t.Fatalf("task %d: unexpected error: %v", i, err)
		}
		w.Acquire()
		if w.CurrentLoad > w.Capacity {
			t.Fatalf("capacity invariant violated on %s: %d/%d", w.ID, w.CurrentLoad, w.Capacity)
		}
	}

	task := domain.NewTask("video_generation", domain.PriorityHigh, nil)
	w, err := r.SelectBest(task, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	w.Acquire()

	// Все 6 слотов заняты — седьмой задаче воркера нет
	if _, err := r.SelectBest(domain.NewTask("video_generation", domain.PriorityHigh, nil), now); !errors.Is(err, ErrNoAvailableWorker) {
		t.Errorf("expected ErrNoAvailableWorker, got %v", err)
	}

	// Освобождение возвращает воркера в кандидаты
	r.Get("w2").Release()
	if _, err := r.SelectBest(domain.NewTask("video_generation", domain.PriorityHigh, nil), now); err != nil {
		t.Errorf("expected a candidate after release, got %v", err)
	}
}
