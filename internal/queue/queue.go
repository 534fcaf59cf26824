package queue

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shaiso/Conveyor/internal/domain"
)

// Queue — очередь PENDING-задач.
//
// Не потокобезопасна: принадлежит потоку координатора.
type Queue struct {
	tasks []*domain.Task

	// completed — ID терминально завершённых (COMPLETED) задач,
	// известных очереди. Нужен для dependency gating.
	completed map[uuid.UUID]bool
}

// New создаёт пустую очередь.
func New() *Queue {
	return &Queue{
		completed: make(map[uuid.UUID]bool),
	}
}

// Push добавляет задачу в очередь.
func (q *Queue) Push(task *domain.Task) {
	q.tasks = append(q.tasks, task)
}

// Len возвращает число задач в очереди.
func (q *Queue) Len() int {
	return len(q.tasks)
}

// MarkCompleted отмечает задачу завершённой для dependency gating.
func (q *Queue) MarkCompleted(id uuid.UUID) {
	q.completed[id] = true
}

// depsSatisfied возвращает true, если все зависимости задачи COMPLETED.
func (q *Queue) depsSatisfied(task *domain.Task) bool {
	for _, dep := range task.Dependencies {
		if !q.completed[dep] {
			return false
		}
	}
	return true
}

// DrainReady извлекает все диспетчеризуемые задачи, сгруппированные
// по тирам в порядке убывания приоритета. Внутри тира — порядок
// создания (стабильная сортировка по CreatedAt).
//
// Задачи с незавершёнными зависимостями остаются в очереди.
func (q *Queue) DrainReady() [][]*domain.Task {
	byTier := make(map[domain.Priority][]*domain.Task)
	var remaining []*domain.Task

	for _, t := range q.tasks {
		if !q.depsSatisfied(t) {
			remaining = append(remaining, t)
			continue
		}
		byTier[t.Priority] = append(byTier[t.Priority], t)
	}
	q.tasks = remaining

	var tiers [][]*domain.Task
	for _, p := range domain.Tiers {
		tier := byTier[p]
		if len(tier) == 0 {
			continue
		}
		sort.SliceStable(tier, func(i, j int) bool {
			return tier[i].CreatedAt.Before(tier[j].CreatedAt)
		})
		tiers = append(tiers, tier)
	}
	return tiers
}
