// Package optimizer периодически пересчитывает суточные аллокации
// сервисов по performance/trend-сигналам и применяет их к QuotaManager'у.
//
// Рекомендация применяется только при достаточной уверенности
// (confidence ≥ risk_tolerance); отклонённая рекомендация сохраняется
// в аудит вместе с обоснованием.
package optimizer
