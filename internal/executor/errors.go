package executor

import "errors"

// Ошибки исполнителя.
var (
	// ErrUnknownTaskType — для типа задачи не зарегистрирован handler.
	// Конфигурационная ошибка: фатальна и не повторяется.
	ErrUnknownTaskType = errors.New("unknown task type")

	// ErrTaskTimeout — handler превысил потолок времени выполнения.
	// Считается retryable-ошибкой.
	ErrTaskTimeout = errors.New("task timeout")

	// ErrHandlerFailed — handler вернул ошибку.
	// Считается retryable-ошибкой.
	ErrHandlerFailed = errors.New("handler failed")

	// ErrPoolStopped — пул остановлен, задачи больше не принимаются.
	ErrPoolStopped = errors.New("executor pool stopped")
)
