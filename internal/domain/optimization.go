package domain

import "time"

// OptimizationAction — направление изменения аллокации.
type OptimizationAction string

const (
	// ActionIncrease — рекомендуется увеличить аллокацию (> 1.1×текущей).
	ActionIncrease OptimizationAction = "increase"

	// ActionDecrease — рекомендуется уменьшить аллокацию (< 0.9×текущей).
	ActionDecrease OptimizationAction = "decrease"

	// ActionMaintain — аллокацию менять не нужно.
	ActionMaintain OptimizationAction = "maintain"
)

// OptimizationRecommendation — результат одного цикла оптимизации
// для одного сервиса.
//
// Применяется к QuotaManager'у только при Confidence ≥ risk_tolerance;
// отклонённая рекомендация всё равно записывается в аудит.
type OptimizationRecommendation struct {
	// Service — сервис, к которому относится рекомендация.
	Service string `json:"service"`

	// Action — направление изменения.
	Action OptimizationAction `json:"action"`

	// CurrentAllocation — аллокация на момент цикла.
	CurrentAllocation int `json:"current_allocation"`

	// RecommendedAllocation — рассчитанная аллокация (после clamp).
	RecommendedAllocation int `json:"recommended_allocation"`

	// ConfidenceScore — уверенность в рекомендации, [0,1].
	ConfidenceScore float64 `json:"confidence_score"`

	// Reasoning — человекочитаемое обоснование.
	Reasoning string `json:"reasoning"`

	// RiskAssessment — оценка риска применения.
	RiskAssessment string `json:"risk_assessment"`

	// Applied — была ли рекомендация применена к квотам.
	Applied bool `json:"applied"`

	// CreatedAt — время цикла.
	CreatedAt time.Time `json:"created_at"`
}

// ServiceSignals — показатели одного сервиса из performance/trend-фида.
// Отсутствующие поля фид заменяет нейтральным 0.5.
type ServiceSignals struct {
	SuccessRate           float64 `json:"success_rate"`
	ROIFactor             float64 `json:"roi_factor"`
	AvgPerformanceScore   float64 `json:"avg_performance_score"`
	TrendStrength         float64 `json:"trend_strength"`
	MonetizationPotential float64 `json:"monetization_potential"`

	// BaseCost/CurrentCost — стоимость операции: базовая и текущая.
	// Нулевые значения дают нейтральное отношение 1.0.
	BaseCost    float64 `json:"base_cost"`
	CurrentCost float64 `json:"current_cost"`
}
