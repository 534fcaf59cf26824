package domain

import "strings"

// TaskStatus — статус выполнения task.
//
// Жизненный цикл:
//
//	PENDING → ASSIGNED → RUNNING → COMPLETED
//	                             ↘ FAILED (при оставшихся retry → обратно в PENDING)
type TaskStatus string

const (
	// TaskStatusPending — task ожидает назначения на воркера.
	TaskStatusPending TaskStatus = "PENDING"

	// TaskStatusAssigned — task назначен на воркера, но ещё не выполняется.
	TaskStatusAssigned TaskStatus = "ASSIGNED"

	// TaskStatusRunning — task выполняется воркером.
	TaskStatusRunning TaskStatus = "RUNNING"

	// TaskStatusCompleted — task успешно завершён.
	TaskStatusCompleted TaskStatus = "COMPLETED"

	// TaskStatusFailed — task завершился с ошибкой.
	// Терминален только когда retry исчерпаны (см. Task.Exhausted).
	TaskStatusFailed TaskStatus = "FAILED"
)

// IsTerminal возвращает true, если статус финальный.
// FAILED терминален лишь при исчерпанных retry, поэтому
// окончательное решение принимает Task.IsFinished().
func (s TaskStatus) IsTerminal() bool {
	switch s {
	case TaskStatusCompleted, TaskStatusFailed:
		return true
	default:
		return false
	}
}

// WorkerStatus — статус воркера.
type WorkerStatus string

const (
	// WorkerStatusIdle — воркер свободен (load == 0).
	WorkerStatusIdle WorkerStatus = "IDLE"

	// WorkerStatusBusy — воркер выполняет хотя бы один task.
	WorkerStatusBusy WorkerStatus = "BUSY"

	// WorkerStatusOffline — воркер выведен из ротации.
	WorkerStatusOffline WorkerStatus = "OFFLINE"
)

// Priority — приоритет task.
//
// Упорядочен: CRITICAL > HIGH > MEDIUM > LOW.
// Численное значение используется для сортировки тиров диспетчеризации.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityMedium
	PriorityHigh
	PriorityCritical
)

// String возвращает строковое представление Priority.
func (p Priority) String() string {
	switch p {
	case PriorityCritical:
		return "CRITICAL"
	case PriorityHigh:
		return "HIGH"
	case PriorityMedium:
		return "MEDIUM"
	default:
		return "LOW"
	}
}

// ParsePriority парсит строку в Priority без учёта регистра.
// Неизвестное значение трактуется как LOW.
func ParsePriority(s string) Priority {
	switch strings.ToUpper(s) {
	case "CRITICAL":
		return PriorityCritical
	case "HIGH":
		return PriorityHigh
	case "MEDIUM":
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// Tiers — все приоритеты в порядке убывания.
// Диспетчеризация идёт строго по этому порядку: верхний тир
// раздаётся полностью прежде, чем начинается следующий.
var Tiers = []Priority{PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow}
