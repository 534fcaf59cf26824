package registry

import (
	"fmt"
	"time"

	"github.com/shaiso/Conveyor/internal/domain"
)

// Registry — реестр воркеров координатора.
//
// Порядок регистрации сохраняется: при равных score выигрывает
// воркер, зарегистрированный раньше.
type Registry struct {
	workers []*domain.Worker
	byID    map[string]*domain.Worker
}

// New создаёт пустой Registry.
func New() *Registry {
	return &Registry{
		byID: make(map[string]*domain.Worker),
	}
}

// Register добавляет воркера в реестр.
// Новый воркер начинает в IDLE с нулевой нагрузкой.
func (r *Registry) Register(w *domain.Worker) error {
	if w.Capacity <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidCapacity, w.ID)
	}
	if _, exists := r.byID[w.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateWorker, w.ID)
	}

	if w.Status == "" {
		w.Status = domain.WorkerStatusIdle
	}

	r.workers = append(r.workers, w)
	r.byID[w.ID] = w
	return nil
}

// Get возвращает воркера по ID (nil, если не найден).
func (r *Registry) Get(id string) *domain.Worker {
	return r.byID[id]
}

// Len возвращает число зарегистрированных воркеров.
func (r *Registry) Len() int {
	return len(r.workers)
}

// Candidates возвращает воркеров, пригодных для task:
// совпадающий тип, свободная ёмкость, не OFFLINE.
// Порядок — порядок регистрации.
func (r *Registry) Candidates(task *domain.Task) []*domain.Worker {
	var out []*domain.Worker
	for _, w := range r.workers {
		if w.Type != task.Type {
			continue
		}
		if !w.HasCapacity() {
			continue
		}
		if w.Status == domain.WorkerStatusOffline {
			continue
		}
		out = append(out, w)
	}
	return out
}

// SelectBest выбирает кандидата с максимальным score.
// При равенстве выигрывает первый по порядку регистрации
// (строгое ">" при обходе в порядке кандидатов).
func (r *Registry) SelectBest(task *domain.Task, now time.Time) (*domain.Worker, error) {
	candidates := r.Candidates(task)
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: type %s", ErrNoAvailableWorker, task.Type)
	}

	best := candidates[0]
	bestScore := Score(best, task, now)
	for _, w := range candidates[1:] {
		if s := Score(w, task, now); s > bestScore {
			best = w
			bestScore = s
		}
	}
	return best, nil
}

// Snapshot возвращает копии всех воркеров (для отчётности и метрик).
func (r *Registry) Snapshot() []domain.Worker {
	out := make([]domain.Worker, 0, len(r.workers))
	for _, w := range r.workers {
		out = append(out, *w)
	}
	return out
}
