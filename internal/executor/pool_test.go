package executor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shaiso/Conveyor/internal/domain"
)

func newTask(taskType string) *domain.Task {
	return domain.NewTask(taskType, domain.PriorityMedium, map[string]any{"n": 1})
}

func TestRegistry_Handlers(t *testing.T) {
	reg := NewRegistry()
	reg.Register("video_generation", HandlerFunc(func(_ context.Context, _ map[string]any) (*Result, error) {
		return &Result{}, nil
	}))

	if !reg.Has("video_generation") {
		t.Error("expected handler to be registered")
	}
	if reg.Has("unknown") {
		t.Error("unexpected handler")
	}
	if _, err := reg.Get("unknown"); !errors.Is(err, ErrUnknownTaskType) {
		t.Errorf("expected ErrUnknownTaskType, got %v", err)
	}
}

func TestPool_Execute_Success(t *testing.T) {
	reg := NewRegistry()
	reg.Register("video_generation", HandlerFunc(func(_ context.Context, payload map[string]any) (*Result, error) {
		return &Result{Outputs: map[string]any{"echo": payload["n"]}, Cost: 1.5}, nil
	}))

	pool := New(Config{Registry: reg, Size: 2, Timeout: time.Second})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pool.Start(ctx)
	defer pool.Stop()

	task := newTask("video_generation")
	if err := pool.Submit(ctx, Assignment{Task: task, WorkerID: "w1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := <-pool.Outcomes()
	if out.Err != nil {
		t.Fatalf("unexpected outcome error: %v", out.Err)
	}
	if out.Task != task || out.WorkerID != "w1" {
		t.Error("outcome must carry the assignment identity")
	}
	if out.Result.Outputs["echo"] != 1 {
		t.Errorf("unexpected outputs: %v", out.Result.Outputs)
	}
	if out.FinishedAt.Before(out.StartedAt) {
		t.Error("finish must not precede start")
	}
}

func TestPool_Execute_HandlerError(t *testing.T) {
	reg := NewRegistry()
	reg.Register("video_generation", HandlerFunc(func(_ context.Context, _ map[string]any) (*Result, error) {
		return nil, errors.New("render crashed")
	}))

	pool := New(Config{Registry: reg, Size: 1, Timeout: time.Second})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pool.Start(ctx)
	defer pool.Stop()

	pool.Submit(ctx, Assignment{Task: newTask("video_generation"), WorkerID: "w1"})

	out := <-pool.Outcomes()
	if !errors.Is(out.Err, ErrHandlerFailed) {
		t.Errorf("expected ErrHandlerFailed, got %v", out.Err)
	}
}

func TestPool_Execute_Timeout(t *testing.T) {
	reg := NewRegistry()
	reg.Register("video_generation", HandlerFunc(func(ctx context.Context, _ map[string]any) (*Result, error) {
		select {
		case <-time.After(time.Second):
			return &Result{}, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}))

	pool := New(Config{Registry: reg, Size: 1, Timeout: 20 * time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pool.Start(ctx)
	defer pool.Stop()

	pool.Submit(ctx, Assignment{Task: newTask("video_generation"), WorkerID: "w1"})

	out := <-pool.Outcomes()
	if !errors.Is(out.Err, ErrTaskTimeout) {
		t.Errorf("expected ErrTaskTimeout, got %v", out.Err)
	}
}

func TestPool_Execute_NotBefore(t *testing.T) {
	reg := NewRegistry()
	reg.Register("video_generation", HandlerFunc(func(_ context.Context, _ map[string]any) (*Result, error) {
		return &Result{}, nil
	}))

	pool := New(Config{Registry: reg, Size: 1, Timeout: time.Second})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pool.Start(ctx)
	defer pool.Stop()

	notBefore := time.Now().Add(50 * time.Millisecond)
	pool.Submit(ctx, Assignment{Task: newTask("video_generation"), WorkerID: "w1", NotBefore: notBefore})

	out := <-pool.Outcomes()
	if out.Err != nil {
		t.Fatalf("unexpected error: %v", out.Err)
	}
	if out.FinishedAt.Before(notBefore) {
		t.Error("execution must wait for the scheduled dispatch time")
	}
}

// Stop не должен зависать, когда буфер исходов полон и его никто
// не вычитывает: заблокированная на отправке goroutine выходит
// по отмене контекста.
func TestPool_Stop_UndrainedOutcomes(t *testing.T) {
	reg := NewRegistry()
	reg.Register("video_generation", HandlerFunc(func(_ context.Context, _ map[string]any) (*Result, error) {
		return &Result{}, nil
	}))

	pool := New(Config{Registry: reg, Size: 1, Timeout: time.Second})
	ctx := context.Background()
	pool.Start(ctx)

	// Два задания на пул размера 1: первый исход заполняет буфер,
	// второй блокирует goroutine на отправке
	pool.Submit(ctx, Assignment{Task: newTask("video_generation"), WorkerID: "w1"})
	pool.Submit(ctx, Assignment{Task: newTask("video_generation"), WorkerID: "w1"})
	time.Sleep(50 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		pool.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop hung on an undrained outcome buffer")
	}
}

func TestPool_Submit_AfterStop(t *testing.T) {
	pool := New(Config{Registry: NewRegistry(), Size: 1, Timeout: time.Second})
	ctx := context.Background()
	pool.Start(ctx)
	pool.Stop()

	err := pool.Submit(ctx, Assignment{Task: newTask("video_generation"), WorkerID: "w1"})
	if !errors.Is(err, ErrPoolStopped) {
		t.Errorf("expected ErrPoolStopped, got %v", err)
	}
}
