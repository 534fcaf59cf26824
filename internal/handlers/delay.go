package handlers

import (
	"context"
	"time"

	"github.com/shaiso/Conveyor/internal/executor"
)

// DelayHandler — handler типа "delay".
//
// Ожидает указанное количество секунд. Поддерживает отмену через context.
//
// Payload:
//   - duration_sec (number): длительность задержки в секундах (default: 1)
type DelayHandler struct{}

// Execute выполняет задержку.
func (h *DelayHandler) Execute(ctx context.Context, payload map[string]any) (*executor.Result, error) {
	durationSec := 1.0
	if val, ok := payload["duration_sec"]; ok {
		switch v := val.(type) {
		case float64:
			durationSec = v
		case int:
			durationSec = float64(v)
		}
	}
	if durationSec <= 0 {
		durationSec = 1
	}

	duration := time.Duration(durationSec * float64(time.Second))

	select {
	case <-time.After(duration):
		return &executor.Result{
			Outputs: map[string]any{"delayed_sec": durationSec},
		}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
