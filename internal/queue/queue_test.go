package queue

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Conveyor/internal/domain"
)

func taskWithPriority(p domain.Priority, createdAt time.Time) *domain.Task {
	task := domain.NewTask("video_generation", p, nil)
	task.CreatedAt = createdAt
	return task
}

func TestQueue_DrainReady_TierOrder(t *testing.T) {
	q := New()
	now := time.Now()

	low := taskWithPriority(domain.PriorityLow, now)
	critical := taskWithPriority(domain.PriorityCritical, now)
	medium := taskWithPriority(domain.PriorityMedium, now)
	high := taskWithPriority(domain.PriorityHigh, now)

	q.Push(low)
	q.Push(critical)
	q.Push(medium)
	q.Push(high)

	tiers := q.DrainReady()
	if len(tiers) != 4 {
		t.Fatalf("expected 4 tiers, got %d", len(tiers))
	}

	want := []domain.Priority{
		domain.PriorityCritical,
		domain.PriorityHigh,
		domain.PriorityMedium,
		domain.PriorityLow,
	}
	for i, tier := range tiers {
		if tier[0].Priority != want[i] {
			t.Errorf("tier %d: expected %s, got %s", i, want[i], tier[0].Priority)
		}
	}

	if q.Len() != 0 {
		t.Errorf("expected empty queue after drain, got %d", q.Len())
	}
}

func TestQueue_DrainReady_CreationOrderWithinTier(t *testing.T) {
	q := New()
	now := time.Now()

	second := taskWithPriority(domain.PriorityHigh, now.Add(time.Second))
	first := taskWithPriority(domain.PriorityHigh, now)
	third := taskWithPriority(domain.PriorityHigh, now.Add(2*time.Second))

	q.Push(second)
	q.Push(first)
	q.Push(third)

	tiers := q.DrainReady()
	if len(tiers) != 1 {
		t.Fatalf("expected 1 tier, got %d", len(tiers))
	}

	tier := tiers[0]
	if tier[0] != first || tier[1] != second || tier[2] != third {
		t.Errorf("expected creation order, got %v, %v, %v",
			tier[0].CreatedAt, tier[1].CreatedAt, tier[2].CreatedAt)
	}
}

func TestQueue_DrainReady_DependencyGating(t *testing.T) {
	q := New()
	now := time.Now()

	parent := taskWithPriority(domain.PriorityHigh, now)
	child := taskWithPriority(domain.PriorityCritical, now)
	child.Dependencies = []uuid.UUID{parent.ID}

	q.Push(parent)
	q.Push(child)

	// Ребёнок заблокирован, несмотря на высший приоритет
	tiers := q.DrainReady()
	if len(tiers) != 1 || tiers[0][0] != parent {
		t.Fatal("expected only the parent to be ready")
	}
	if q.Len() != 1 {
		t.Fatalf("expected child to stay queued, got %d", q.Len())
	}

	// Завершение родителя разблокирует ребёнка
	q.MarkCompleted(parent.ID)
	tiers = q.DrainReady()
	if len(tiers) != 1 || tiers[0][0] != child {
		t.Fatal("expected the child to become ready")
	}
	if q.Len() != 0 {
		t.Errorf("expected empty queue, got %d", q.Len())
	}
}

func TestQueue_DrainReady_Empty(t *testing.T) {
	q := New()
	if tiers := q.DrainReady(); len(tiers) != 0 {
		t.Errorf("expected no tiers, got %d", len(tiers))
	}
}
