package domain

import (
	"time"

	"github.com/google/uuid"
)

// Task — отдельная единица production-работы.
//
// Task создаётся upstream-планировщиком (вне этого репозитория):
// запрос на генерацию контента, анализ трендов, проход оптимизации.
//
// Task выполняется одним из воркеров пула под контролем Coordinator'а.
type Task struct {
	// ID — уникальный идентификатор task.
	ID uuid.UUID `json:"id"`

	// Type — тип задачи: "video_generation", "trend_analysis", "optimization".
	// Определяет и handler, и подмножество воркеров-кандидатов.
	Type string `json:"type"`

	// Priority — приоритет диспетчеризации.
	Priority Priority `json:"priority"`

	// Payload — непрозрачные входные данные для handler'а.
	// Ключ "action" (если есть) сверяется со специализациями воркера.
	// Ключ "service" (если есть) привязывает task к квоте внешнего сервиса.
	Payload map[string]any `json:"payload,omitempty"`

	// Dependencies — ID задач, которые должны завершиться COMPLETED
	// прежде, чем этот task станет диспетчеризуемым.
	Dependencies []uuid.UUID `json:"dependencies,omitempty"`

	// Deadline — желаемый срок завершения. Не влияет на порядок
	// диспетчеризации, хранится для отчётности.
	Deadline *time.Time `json:"deadline,omitempty"`

	// RetryCount — сколько неудачных попыток уже было.
	RetryCount int `json:"retry_count"`

	// MaxRetries — бюджет повторов. Ограничен длиной backoff-таблицы.
	MaxRetries int `json:"max_retries"`

	// Status — текущий статус task.
	Status TaskStatus `json:"status"`

	// AssignedTo — ID воркера, на которого task назначен сейчас.
	AssignedTo string `json:"assigned_to,omitempty"`

	// Error — текст последней ошибки.
	Error string `json:"error,omitempty"`

	// History — история неудачных попыток (для терминального alert'а).
	History []Attempt `json:"history,omitempty"`

	// StartedAt — время начала текущей попытки.
	StartedAt *time.Time `json:"started_at,omitempty"`

	// FinishedAt — время терминального завершения.
	FinishedAt *time.Time `json:"finished_at,omitempty"`

	// CreatedAt — время создания task. Задаёт порядок внутри тира.
	CreatedAt time.Time `json:"created_at"`
}

// Attempt — запись об одной неудачной попытке выполнения.
type Attempt struct {
	// Number — номер попытки (начиная с 1).
	Number int `json:"number"`

	// WorkerID — воркер, выполнявший попытку.
	WorkerID string `json:"worker_id"`

	// Error — текст ошибки попытки.
	Error string `json:"error"`

	// At — время фиксации ошибки.
	At time.Time `json:"at"`
}

// NewTask создаёт task в статусе PENDING.
func NewTask(taskType string, priority Priority, payload map[string]any) *Task {
	return &Task{
		ID:       uuid.New(),
		Type:     taskType,
		Priority: priority,
		Payload:  payload,
		Status:   TaskStatusPending,

		CreatedAt: time.Now(),
	}
}

// Action возвращает объявленное действие task'а (payload["action"]).
// Пустая строка, если действие не объявлено.
func (t *Task) Action() string {
	if s, ok := t.Payload["action"].(string); ok {
		return s
	}
	return ""
}

// Service возвращает внешний сервис task'а (payload["service"]).
// Пустая строка — task не потребляет квоту.
func (t *Task) Service() string {
	if s, ok := t.Payload["service"].(string); ok {
		return s
	}
	return ""
}

// IsFinished возвращает true, если task терминален: COMPLETED либо
// FAILED без права на повтор (исчерпанные retry или неповторяемая
// ошибка — FinishedAt проставлен).
func (t *Task) IsFinished() bool {
	if t.Status == TaskStatusCompleted {
		return true
	}
	return t.Status == TaskStatusFailed && t.FinishedAt != nil
}

// Exhausted возвращает true, если бюджет повторов исчерпан.
func (t *Task) Exhausted() bool {
	return t.RetryCount >= t.MaxRetries
}

// MarkAssigned переводит task в ASSIGNED на указанного воркера.
func (t *Task) MarkAssigned(workerID string) {
	t.Status = TaskStatusAssigned
	t.AssignedTo = workerID
}

// MarkRunning переводит task в RUNNING.
func (t *Task) MarkRunning() {
	now := time.Now()
	t.Status = TaskStatusRunning
	t.StartedAt = &now
}

// MarkCompleted переводит task в COMPLETED.
func (t *Task) MarkCompleted() {
	now := time.Now()
	t.Status = TaskStatusCompleted
	t.FinishedAt = &now
	t.AssignedTo = ""
	t.Error = ""
}

// MarkFailed фиксирует неудачную попытку: статус FAILED, retry_count+1,
// запись в History. Терминальность определяется Exhausted().
func (t *Task) MarkFailed(workerID, errMsg string) {
	now := time.Now()
	t.RetryCount++
	t.Status = TaskStatusFailed
	t.Error = errMsg
	t.AssignedTo = ""
	t.History = append(t.History, Attempt{
		Number:   t.RetryCount,
		WorkerID: workerID,
		Error:    errMsg,
		At:       now,
	})
	if t.Exhausted() {
		t.FinishedAt = &now
	}
}

// MarkFailedTerminal фиксирует неповторяемый отказ (NoAvailableWorker,
// ConfigurationError): статус FAILED без расхода retry-бюджета.
func (t *Task) MarkFailedTerminal(errMsg string) {
	now := time.Now()
	t.Status = TaskStatusFailed
	t.Error = errMsg
	t.AssignedTo = ""
	t.FinishedAt = &now
}

// ResetForRetry возвращает task в PENDING для повторной попытки.
// Вызывается только когда retry-бюджет не исчерпан.
func (t *Task) ResetForRetry() {
	t.Status = TaskStatusPending
	t.StartedAt = nil
	t.Error = ""
}
