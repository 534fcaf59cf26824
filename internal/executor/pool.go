package executor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shaiso/Conveyor/internal/domain"
)

// Default configuration values.
const (
	defaultPoolSize = 20
	defaultTimeout  = 300 * time.Second
)

// Assignment — пара (task, воркер), переданная пулу на выполнение.
type Assignment struct {
	// Task — задача в статусе RUNNING.
	Task *domain.Task

	// WorkerID — логический воркер, на которого задача назначена.
	WorkerID string

	// NotBefore — запланированное время диспетчеризации от QuotaManager'а.
	// Нулевое время — выполнять немедленно.
	NotBefore time.Time
}

// Outcome — исход выполнения одной задачи.
//
// Err == nil — успех. Ошибки различаются через errors.Is:
// ErrTaskTimeout, ErrHandlerFailed, ErrUnknownTaskType.
type Outcome struct {
	Task     *domain.Task
	WorkerID string
	Result   *Result
	Err      error

	StartedAt  time.Time
	FinishedAt time.Time
}

// Pool — ограниченный пул исполнителей.
//
// Размер пула — max_concurrent_workers (default: 20). Каждая goroutine
// снимает задания с общего канала, выполняет handler с потолком
// task_timeout_seconds и отправляет Outcome в канал событий.
type Pool struct {
	registry *Registry
	size     int
	timeout  time.Duration

	jobs     chan Assignment
	outcomes chan Outcome
	done     chan struct{}

	logger     *slog.Logger
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	stopped    bool
	stoppedMu  sync.RWMutex
}

// Config — конфигурация Pool.
type Config struct {
	// Registry — реестр handler'ов (обязателен).
	Registry *Registry

	// Size — число goroutine пула (default: 20).
	Size int

	// Timeout — потолок выполнения одной задачи (default: 300s).
	Timeout time.Duration

	// Logger
	Logger *slog.Logger
}

// New создаёт новый Pool.
func New(cfg Config) *Pool {
	size := cfg.Size
	if size <= 0 {
		size = defaultPoolSize
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	registry := cfg.Registry
	if registry == nil {
		registry = NewRegistry()
	}

	return &Pool{
		registry: registry,
		size:     size,
		timeout:  timeout,
		jobs:     make(chan Assignment),
		outcomes: make(chan Outcome, size),
		done:     make(chan struct{}),
		logger:   logger,
	}
}

// Outcomes возвращает канал исходов. Координатор вычитывает его
// синхронно и единолично применяет исходы к разделяемому состоянию.
func (p *Pool) Outcomes() <-chan Outcome {
	return p.outcomes
}

// Jobs возвращает канал заданий. Отправка в него эквивалентна Submit;
// канал отдан наружу, чтобы координатор мог в одном select и отдавать
// задания, и вычитывать исходы — иначе волна шире пула встанет
// на отправке при заполненном буфере исходов.
func (p *Pool) Jobs() chan<- Assignment {
	return p.jobs
}

// Done закрывается при остановке пула.
func (p *Pool) Done() <-chan struct{} {
	return p.done
}

// Start запускает goroutines пула.
func (p *Pool) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	p.cancelFunc = cancel

	p.logger.Info("starting executor pool",
		"size", p.size,
		"task_timeout", p.timeout,
	)

	for i := 0; i < p.size; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			p.runLoop(ctx)
		}()
	}
}

// Stop останавливает пул и дожидается завершения goroutines.
func (p *Pool) Stop() {
	p.stoppedMu.Lock()
	if !p.stopped {
		p.stopped = true
		close(p.done)
	}
	p.stoppedMu.Unlock()

	if p.cancelFunc != nil {
		p.cancelFunc()
	}

	p.wg.Wait()
	p.logger.Info("executor pool stopped")
}

// Submit отдаёт задание пулу. Блокируется, пока нет свободной goroutine.
func (p *Pool) Submit(ctx context.Context, a Assignment) error {
	p.stoppedMu.RLock()
	stopped := p.stopped
	p.stoppedMu.RUnlock()
	if stopped {
		return ErrPoolStopped
	}

	select {
	case p.jobs <- a:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// runLoop — цикл одной goroutine пула.
func (p *Pool) runLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case a := <-p.jobs:
			// Отправка исхода не должна переживать остановку пула:
			// при заполненном буфере и отменённом контексте исход
			// отбрасывается, иначе Stop никогда не дождётся goroutine
			select {
			case p.outcomes <- p.execute(ctx, a):
			case <-ctx.Done():
				return
			}
		}
	}
}

// execute выполняет одно задание с учётом NotBefore и таймаута.
func (p *Pool) execute(ctx context.Context, a Assignment) Outcome {
	out := Outcome{
		Task:      a.Task,
		WorkerID:  a.WorkerID,
		StartedAt: time.Now(),
	}

	// Ждём запланированного времени диспетчеризации
	if wait := time.Until(a.NotBefore); wait > 0 {
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			out.Err = ctx.Err()
			out.FinishedAt = time.Now()
			return out
		}
	}

	handler, err := p.registry.Get(a.Task.Type)
	if err != nil {
		out.Err = err
		out.FinishedAt = time.Now()
		return out
	}

	out.Result, out.Err = p.invoke(ctx, handler, a)
	out.FinishedAt = time.Now()
	return out
}

// invoke вызывает handler с потолком p.timeout.
//
// Handler выполняется в отдельной goroutine: даже игнорирующий context
// вызов будет учтён как таймаут, хотя сам может продолжить работать
// out-of-band (отмены нет — см. doc.go).
func (p *Pool) invoke(ctx context.Context, handler Handler, a Assignment) (*Result, error) {
	execCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	type reply struct {
		result *Result
		err    error
	}
	done := make(chan reply, 1)

	go func() {
		result, err := handler.Execute(execCtx, a.Task.Payload)
		done <- reply{result, err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return nil, fmt.Errorf("%w: %v", ErrHandlerFailed, r.err)
		}
		return r.result, nil
	case <-execCtx.Done():
		if ctx.Err() != nil {
			// Остановка пула, а не таймаут задачи
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: exceeded %s", ErrTaskTimeout, p.timeout)
	}
}
