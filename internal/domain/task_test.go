package domain

import (
	"testing"
)

func TestNewTask(t *testing.T) {
	task := NewTask("video_generation", PriorityHigh, map[string]any{
		"action":  "upload",
		"service": "youtube",
	})

	if task.Status != TaskStatusPending {
		t.Errorf("expected PENDING, got %s", task.Status)
	}
	if task.ID.String() == "" {
		t.Error("expected generated ID")
	}
	if task.Action() != "upload" {
		t.Errorf("expected action upload, got %s", task.Action())
	}
	if task.Service() != "youtube" {
		t.Errorf("expected service youtube, got %s", task.Service())
	}
	if task.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
}

func TestTask_Action_Missing(t *testing.T) {
	task := NewTask("trend_analysis", PriorityMedium, nil)
	if task.Action() != "" {
		t.Errorf("expected empty action, got %s", task.Action())
	}
	if task.Service() != "" {
		t.Errorf("expected empty service, got %s", task.Service())
	}
}

func TestTask_Lifecycle_Success(t *testing.T) {
	task := NewTask("video_generation", PriorityHigh, nil)

	task.MarkAssigned("worker-1")
	if task.Status != TaskStatusAssigned || task.AssignedTo != "worker-1" {
		t.Fatalf("unexpected state after assign: %s/%s", task.Status, task.AssignedTo)
	}

	task.MarkRunning()
	if task.Status != TaskStatusRunning || task.StartedAt == nil {
		t.Fatal("expected RUNNING with StartedAt")
	}

	task.MarkCompleted()
	if task.Status != TaskStatusCompleted {
		t.Errorf("expected COMPLETED, got %s", task.Status)
	}
	if !task.IsFinished() {
		t.Error("completed task must be finished")
	}
	if task.AssignedTo != "" {
		t.Error("completed task must not stay assigned")
	}
}

func TestTask_MarkFailed_RetryBudget(t *testing.T) {
	task := NewTask("video_generation", PriorityHigh, nil)
	task.MaxRetries = 2

	task.MarkFailed("worker-1", "boom")
	if task.RetryCount != 1 {
		t.Fatalf("expected retry_count=1, got %d", task.RetryCount)
	}
	if task.Exhausted() {
		t.Fatal("budget must not be exhausted after first failure")
	}
	if task.IsFinished() {
		t.Fatal("retryable failure must not be terminal")
	}

	// Попытка фиксируется в истории
	if len(task.History) != 1 || task.History[0].Number != 1 {
		t.Fatalf("unexpected history: %+v", task.History)
	}

	task.ResetForRetry()
	if task.Status != TaskStatusPending || task.Error != "" {
		t.Fatalf("unexpected state after reset: %s/%q", task.Status, task.Error)
	}

	task.MarkFailed("worker-2", "boom again")
	if !task.Exhausted() {
		t.Fatal("budget must be exhausted after second failure")
	}
	if !task.IsFinished() {
		t.Fatal("exhausted failure must be terminal")
	}
	if task.FinishedAt == nil {
		t.Fatal("terminal failure must set FinishedAt")
	}
}

func TestTask_MarkFailedTerminal(t *testing.T) {
	task := NewTask("video_generation", PriorityHigh, nil)
	task.MaxRetries = 3

	task.MarkFailedTerminal("no available worker")
	if task.RetryCount != 0 {
		t.Errorf("terminal failure must not consume retries, got %d", task.RetryCount)
	}
	if !task.IsFinished() {
		t.Error("terminal failure must be finished")
	}
}

func TestParsePriority(t *testing.T) {
	cases := []struct {
		in   string
		want Priority
	}{
		{"CRITICAL", PriorityCritical},
		{"critical", PriorityCritical},
		{"High", PriorityHigh},
		{"MEDIUM", PriorityMedium},
		{"LOW", PriorityLow},
		{"garbage", PriorityLow},
	}
	for _, c := range cases {
		if got := ParsePriority(c.in); got != c.want {
			t.Errorf("ParsePriority(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestTiers_Order(t *testing.T) {
	// Диспетчеризация идёт строго сверху вниз
	for i := 1; i < len(Tiers); i++ {
		if Tiers[i-1] <= Tiers[i] {
			t.Fatalf("tiers must be strictly descending: %v", Tiers)
		}
	}
}
