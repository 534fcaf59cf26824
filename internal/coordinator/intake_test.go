package coordinator

import (
	"testing"
	"time"

	"github.com/shaiso/Conveyor/internal/domain"
)

func TestBatchRequest_Build(t *testing.T) {
	req := &BatchRequest{
		Name: "daily-upload",
		Tasks: []TaskRequest{
			{Type: "video_generation", Priority: "critical", Payload: map[string]any{"service": "youtube"}},
			{Type: "trend_analysis", DependsOn: []int{0}, MaxRetries: 2, DeadlineSeconds: 3600},
		},
	}

	now := time.Now()
	tasks, err := req.Build(now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(tasks))
	}

	if tasks[0].Priority != domain.PriorityCritical {
		t.Errorf("expected CRITICAL, got %s", tasks[0].Priority)
	}
	// Пустой приоритет — MEDIUM
	if tasks[1].Priority != domain.PriorityMedium {
		t.Errorf("expected MEDIUM default, got %s", tasks[1].Priority)
	}

	// Индекс зависимости превращается в ID
	if len(tasks[1].Dependencies) != 1 || tasks[1].Dependencies[0] != tasks[0].ID {
		t.Errorf("unexpected dependencies: %v", tasks[1].Dependencies)
	}

	if tasks[1].Deadline == nil || !tasks[1].Deadline.Equal(now.Add(time.Hour)) {
		t.Errorf("unexpected deadline: %v", tasks[1].Deadline)
	}
}

func TestBatchRequest_Build_Invalid(t *testing.T) {
	cases := []struct {
		name string
		req  BatchRequest
	}{
		{"empty batch", BatchRequest{}},
		{"empty type", BatchRequest{Tasks: []TaskRequest{{}}}},
		{"dep out of range", BatchRequest{Tasks: []TaskRequest{
			{Type: "a", DependsOn: []int{5}},
		}}},
		{"self dependency", BatchRequest{Tasks: []TaskRequest{
			{Type: "a", DependsOn: []int{0}},
		}}},
	}

	for _, c := range cases {
		if _, err := c.req.Build(time.Now()); err == nil {
			t.Errorf("%s: expected error", c.name)
		}
	}
}
