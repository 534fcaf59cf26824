package registry

import "errors"

// Ошибки подбора воркеров.
var (
	// ErrNoAvailableWorker — нет кандидата нужного типа со свободной ёмкостью.
	// Task падает без расхода retry-бюджета.
	ErrNoAvailableWorker = errors.New("no available worker")

	// ErrDuplicateWorker — воркер с таким ID уже зарегистрирован.
	ErrDuplicateWorker = errors.New("duplicate worker id")

	// ErrInvalidCapacity — ёмкость воркера должна быть > 0.
	ErrInvalidCapacity = errors.New("worker capacity must be positive")
)
