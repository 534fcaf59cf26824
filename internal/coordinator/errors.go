package coordinator

import "errors"

// Ошибки координатора.
var (
	// ErrBatchInProgress — RunBatch уже выполняется.
	ErrBatchInProgress = errors.New("batch already in progress")

	// ErrStopped — координатор остановлен.
	ErrStopped = errors.New("coordinator stopped")
)
