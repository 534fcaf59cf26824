package coordinator

import (
	"fmt"
	"time"

	"github.com/shaiso/Conveyor/internal/domain"
)

// BatchRequest — внешнее описание батча (MQ-сообщение или файл CLI).
//
// Идентификаторы задач назначаются координатором, поэтому зависимости
// внутри батча указываются индексами задач.
type BatchRequest struct {
	// Name — человекочитаемое имя батча (для логов).
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Tasks — задачи батча в порядке создания.
	Tasks []TaskRequest `json:"tasks" yaml:"tasks"`
}

// TaskRequest — внешнее описание одной задачи.
type TaskRequest struct {
	// Type — тип задачи; должен иметь зарегистрированный handler.
	Type string `json:"type" yaml:"type"`

	// Priority — critical / high / medium / low (default: medium).
	Priority string `json:"priority,omitempty" yaml:"priority,omitempty"`

	// Payload — произвольные параметры задачи.
	Payload map[string]any `json:"payload,omitempty" yaml:"payload,omitempty"`

	// DependsOn — индексы задач этого батча, которые должны
	// завершиться успехом раньше.
	DependsOn []int `json:"depends_on,omitempty" yaml:"depends_on,omitempty"`

	// MaxRetries — бюджет повторов (ограничивается backoff-таблицей).
	MaxRetries int `json:"max_retries,omitempty" yaml:"max_retries,omitempty"`

	// DeadlineSeconds — дедлайн от момента приёма батча (0 — без дедлайна).
	DeadlineSeconds int `json:"deadline_seconds,omitempty" yaml:"deadline_seconds,omitempty"`
}

// Build превращает запрос в доменные задачи.
// Зависимости-индексы транслируются в идентификаторы.
func (r *BatchRequest) Build(now time.Time) ([]*domain.Task, error) {
	if len(r.Tasks) == 0 {
		return nil, fmt.Errorf("batch has no tasks")
	}

	tasks := make([]*domain.Task, len(r.Tasks))
	for i, tr := range r.Tasks {
		if tr.Type == "" {
			return nil, fmt.Errorf("task %d: empty type", i)
		}
		prio := domain.PriorityMedium
		if tr.Priority != "" {
			prio = domain.ParsePriority(tr.Priority)
		}
		task := domain.NewTask(tr.Type, prio, tr.Payload)
		task.MaxRetries = tr.MaxRetries
		if tr.DeadlineSeconds > 0 {
			deadline := now.Add(time.Duration(tr.DeadlineSeconds) * time.Second)
			task.Deadline = &deadline
		}
		tasks[i] = task
	}

	// Вторым проходом — зависимости: ссылаться можно на любую задачу
	// батча, включая объявленные позже.
	for i, tr := range r.Tasks {
		for _, dep := range tr.DependsOn {
			if dep < 0 || dep >= len(tasks) {
				return nil, fmt.Errorf("task %d: depends_on index %d out of range", i, dep)
			}
			if dep == i {
				return nil, fmt.Errorf("task %d: depends on itself", i)
			}
			tasks[i].Dependencies = append(tasks[i].Dependencies, tasks[dep].ID)
		}
	}

	return tasks, nil
}
