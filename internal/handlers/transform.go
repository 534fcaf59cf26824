package handlers

import (
	"context"

	"github.com/shaiso/Conveyor/internal/executor"
)

// TransformHandler — handler типа "transform".
//
// Возвращает payload как outputs: pass-through для переноса данных
// между зависимыми задачами батча.
type TransformHandler struct{}

// Execute возвращает payload как outputs.
func (h *TransformHandler) Execute(_ context.Context, payload map[string]any) (*executor.Result, error) {
	outputs := payload
	if outputs == nil {
		outputs = make(map[string]any)
	}
	return &executor.Result{Outputs: outputs}, nil
}
