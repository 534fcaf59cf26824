package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shaiso/Conveyor/internal/executor"
)

const defaultHTTPTimeout = 30 * time.Second

// HTTPHandler — handler типа "http_request".
//
// Выполняет HTTP-запрос на основе payload задачи.
//
// Payload:
//   - method (string): HTTP-метод (GET, POST, PUT, DELETE). Default: GET
//   - url (string): URL для запроса (обязательно)
//   - headers (map[string]any): HTTP-заголовки
//   - body (any): тело запроса (сериализуется в JSON)
//   - timeout_sec (number): таймаут запроса в секундах. Default: 30
//
// Outputs:
//   - status_code (int): HTTP-код ответа
//   - headers (map[string]string): заголовки ответа
//   - body (any): тело ответа (JSON или строка)
type HTTPHandler struct {
	// Client — HTTP-клиент (default: http.DefaultClient).
	Client *http.Client
}

// Execute выполняет HTTP-запрос.
//
// Код >= 400 — ошибка выполнения: задача уходит в retry-цикл,
// outputs при этом теряются вместе с попыткой.
func (h *HTTPHandler) Execute(ctx context.Context, payload map[string]any) (*executor.Result, error) {
	method := getString(payload, "method", "GET")
	url := getString(payload, "url", "")
	if url == "" {
		return nil, fmt.Errorf("%w: url is required", ErrHTTPRequest)
	}

	ctx, cancel := context.WithTimeout(ctx, getTimeout(payload))
	defer cancel()

	var bodyReader io.Reader
	if body, ok := payload["body"]; ok && body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%w: marshal body: %v", ErrHTTPRequest, err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", ErrHTTPRequest, err)
	}

	setHeaders(req, payload)
	if bodyReader != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHTTPRequest, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrHTTPRequest, err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: HTTP %d: %s",
			ErrHTTPStatus, resp.StatusCode, truncate(string(respBody), 200))
	}

	return &executor.Result{
		Outputs: buildOutputs(resp, respBody),
	}, nil
}

// buildOutputs формирует outputs из HTTP-ответа.
func buildOutputs(resp *http.Response, body []byte) map[string]any {
	headers := make(map[string]string, len(resp.Header))
	for key := range resp.Header {
		headers[key] = resp.Header.Get(key)
	}

	// Пробуем JSON, иначе строка
	var parsedBody any
	if err := json.Unmarshal(body, &parsedBody); err != nil {
		parsedBody = string(body)
	}

	return map[string]any{
		"status_code": resp.StatusCode,
		"headers":     headers,
		"body":        parsedBody,
	}
}

// setHeaders устанавливает заголовки запроса из payload["headers"].
func setHeaders(req *http.Request, payload map[string]any) {
	headers, ok := payload["headers"].(map[string]any)
	if !ok {
		return
	}
	for key, val := range headers {
		if s, ok := val.(string); ok {
			req.Header.Set(key, s)
		}
	}
}

// getTimeout извлекает timeout_sec из payload.
func getTimeout(payload map[string]any) time.Duration {
	val, ok := payload["timeout_sec"]
	if !ok {
		return defaultHTTPTimeout
	}
	var sec float64
	switch v := val.(type) {
	case float64:
		sec = v
	case int:
		sec = float64(v)
	}
	if sec <= 0 {
		return defaultHTTPTimeout
	}
	return time.Duration(sec * float64(time.Second))
}

// getString извлекает строку из payload с default-значением.
func getString(payload map[string]any, key, def string) string {
	if v, ok := payload[key].(string); ok && v != "" {
		return v
	}
	return def
}

// truncate обрезает строку до n символов.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
