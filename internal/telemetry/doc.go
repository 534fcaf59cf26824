// Package telemetry обеспечивает наблюдаемость координатора.
//
// Включает:
//   - logging.go — structured logging через slog
//   - metrics.go — Prometheus метрики
//
// Координатор использует единый формат логирования
// и экспортирует метрики на /metrics endpoint.
package telemetry
