package quota

import "errors"

// Ошибки квотирования.
var (
	// ErrQuotaExhausted — суточный потолок сервиса достигнут.
	// Запрос откладывается, не падает и не расходует retry.
	ErrQuotaExhausted = errors.New("quota exhausted")

	// ErrUnknownService — для сервиса не сконфигурированы лимиты.
	ErrUnknownService = errors.New("unknown service")
)
