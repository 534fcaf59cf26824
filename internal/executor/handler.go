package executor

import (
	"context"
	"fmt"
)

// Handler — контракт внешнего исполнителя одного типа задач.
//
// Handler обязан:
//   - возвращать типизированную ошибку при неудаче
//   - переносить повторный вызов для той же логической задачи
//     (идемпотентность или терпимость к дублям side-effect'ов)
//
// Handler может работать до task_timeout_seconds, после чего вызов
// считается упавшим по таймауту.
type Handler interface {
	Execute(ctx context.Context, payload map[string]any) (*Result, error)
}

// HandlerFunc — адаптер функции к интерфейсу Handler.
type HandlerFunc func(ctx context.Context, payload map[string]any) (*Result, error)

// Execute вызывает f(ctx, payload).
func (f HandlerFunc) Execute(ctx context.Context, payload map[string]any) (*Result, error) {
	return f(ctx, payload)
}

// Result — результат успешного выполнения.
//
// Handler сообщает фактическую длительность/стоимость сам; планировщик
// не делает предположений о латентности и следит лишь за таймаутом.
type Result struct {
	// Outputs — выходные данные выполнения.
	Outputs map[string]any

	// Cost — условная стоимость вызова (для отчётности оптимизатора).
	Cost float64
}

// Registry — реестр handler'ов по типу задачи.
//
// Разрешается один раз при старте координатора; незарегистрированный
// тип — конфигурационная ошибка, обнаруживаемая при регистрации задач,
// а не runtime-ветка.
type Registry struct {
	handlers map[string]Handler
}

// NewRegistry создаёт пустой реестр.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register добавляет handler для типа задачи.
func (r *Registry) Register(taskType string, h Handler) {
	r.handlers[taskType] = h
}

// Get возвращает handler для типа задачи.
func (r *Registry) Get(taskType string) (Handler, error) {
	h, ok := r.handlers[taskType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTaskType, taskType)
	}
	return h, nil
}

// Has проверяет наличие handler'а для типа задачи.
func (r *Registry) Has(taskType string) bool {
	_, ok := r.handlers[taskType]
	return ok
}
