package registry

import (
	"time"

	"github.com/shaiso/Conveyor/internal/domain"
)

// Коэффициенты scoring-формулы.
const (
	// baseWeight + loadWeight·loadFactor — вклад свободной ёмкости.
	baseWeight = 0.7
	loadWeight = 0.3

	// specializationBonus — множитель за совпадение специализации
	// с payload["action"] task'а.
	specializationBonus = 1.2

	// recencyBonus — множитель за недавнюю активность.
	recencyBonus = 1.1

	// recencyWindow — окно, в котором активность считается недавней.
	recencyWindow = 5 * time.Minute
)

// Score оценивает пригодность воркера для task в момент now.
//
//	score = perf × (0.7 + 0.3×loadFactor) × specBonus × recencyBonus
//
// Чистая функция от (worker, task, now): одинаковые входы в один
// момент времени дают одинаковый score.
func Score(w *domain.Worker, task *domain.Task, now time.Time) float64 {
	score := w.PerformanceScore * (baseWeight + loadWeight*w.LoadFactor())

	if w.Specializes(task.Action()) {
		score *= specializationBonus
	}

	if !w.LastActivity.IsZero() && now.Sub(w.LastActivity) < recencyWindow {
		score *= recencyBonus
	}

	return score
}
