package handlers

import "errors"

// Ошибки встроенных handler'ов.
var (
	// ErrHTTPRequest — ошибка выполнения HTTP-запроса.
	ErrHTTPRequest = errors.New("http request failed")

	// ErrHTTPStatus — внешний сервис ответил кодом >= 400.
	ErrHTTPStatus = errors.New("http status error")
)
