package domain

import (
	"time"

	"github.com/google/uuid"
)

// AlertRecord — запись о терминальном отказе task'а.
//
// Создаётся RetryManager'ом когда task падает с исчерпанным
// retry-бюджетом либо с нерегистрируемым типом (ConfigurationError).
type AlertRecord struct {
	// ID — уникальный идентификатор alert'а.
	ID uuid.UUID `json:"id"`

	// TaskID — упавший task.
	TaskID uuid.UUID `json:"task_id"`

	// TaskType — тип task'а (для маршрутизации alert'а).
	TaskType string `json:"task_type"`

	// Error — финальная ошибка.
	Error string `json:"error"`

	// RetryHistory — полная история попыток.
	RetryHistory []Attempt `json:"retry_history,omitempty"`

	// CreatedAt — время создания alert'а.
	CreatedAt time.Time `json:"created_at"`
}

// NewAlertRecord создаёт alert для терминально упавшего task'а.
func NewAlertRecord(task *Task) *AlertRecord {
	return &AlertRecord{
		ID:           uuid.New(),
		TaskID:       task.ID,
		TaskType:     task.Type,
		Error:        task.Error,
		RetryHistory: task.History,
		CreatedAt:    time.Now(),
	}
}
