package domain

import "time"

// Worker — capacity-ограниченный исполнитель одного типа задач.
//
// Воркеры создаются при старте координатора из статической конфигурации
// и живут всё время его работы. Меняются только изменяемые поля:
// CurrentLoad, PerformanceScore, Status, LastActivity.
//
// Все мутации выполняет поток координатора; goroutines пула исполнителей
// воркеров не трогают (см. модель конкурентности Coordinator'а).
type Worker struct {
	// ID — уникальный идентификатор воркера.
	ID string `json:"id"`

	// Type — тип задач, которые воркер умеет выполнять.
	Type string `json:"type"`

	// Capacity — максимум одновременных задач (> 0).
	Capacity int `json:"capacity"`

	// CurrentLoad — текущее число назначенных задач (инвариант: ≤ Capacity).
	CurrentLoad int `json:"current_load"`

	// Specializations — действия, на которых воркер специализируется.
	// Совпадение со значением payload["action"] даёт бонус к score.
	Specializations []string `json:"specializations,omitempty"`

	// PerformanceScore — скользящая оценка качества в [0,1].
	// Обновляется EMA-правилом при каждом завершении/ошибке.
	PerformanceScore float64 `json:"performance_score"`

	// LastActivity — время последнего завершения задачи.
	LastActivity time.Time `json:"last_activity"`

	// Status — текущий статус воркера.
	Status WorkerStatus `json:"status"`
}

// EMA-коэффициенты обновления PerformanceScore.
const (
	perfSuccessDecay = 0.9
	perfSuccessBonus = 0.1
	perfFailureDecay = 0.95
)

// HasCapacity возвращает true, если воркеру можно назначить ещё task.
func (w *Worker) HasCapacity() bool {
	return w.CurrentLoad < w.Capacity
}

// LoadFactor возвращает 1 − load/capacity: долю свободной ёмкости.
func (w *Worker) LoadFactor() float64 {
	return 1 - float64(w.CurrentLoad)/float64(w.Capacity)
}

// Specializes возвращает true, если действие входит в специализации.
func (w *Worker) Specializes(action string) bool {
	if action == "" {
		return false
	}
	for _, s := range w.Specializations {
		if s == action {
			return true
		}
	}
	return false
}

// Acquire резервирует единицу ёмкости и переводит воркера в BUSY.
func (w *Worker) Acquire() {
	w.CurrentLoad++
	w.Status = WorkerStatusBusy
}

// Release освобождает единицу ёмкости.
// При нулевой нагрузке воркер возвращается в IDLE.
func (w *Worker) Release() {
	if w.CurrentLoad > 0 {
		w.CurrentLoad--
	}
	if w.CurrentLoad == 0 && w.Status != WorkerStatusOffline {
		w.Status = WorkerStatusIdle
	}
}

// RecordSuccess обновляет score по успеху: s = 0.9·s + 0.1.
func (w *Worker) RecordSuccess(now time.Time) {
	w.PerformanceScore = clampScore(w.PerformanceScore*perfSuccessDecay + perfSuccessBonus)
	w.LastActivity = now
}

// RecordFailure обновляет score по ошибке: s = 0.95·s.
func (w *Worker) RecordFailure(now time.Time) {
	w.PerformanceScore = clampScore(w.PerformanceScore * perfFailureDecay)
	w.LastActivity = now
}

func clampScore(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}
