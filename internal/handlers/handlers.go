package handlers

import (
	"github.com/shaiso/Conveyor/internal/executor"
)

// Task types встроенных handler'ов.
const (
	TypeHTTPRequest = "http_request"
	TypeDelay       = "delay"
	TypeTransform   = "transform"
)

// Defaults возвращает реестр со встроенными handler'ами.
func Defaults() *executor.Registry {
	reg := executor.NewRegistry()
	reg.Register(TypeHTTPRequest, &HTTPHandler{})
	reg.Register(TypeDelay, &DelayHandler{})
	reg.Register(TypeTransform, &TransformHandler{})
	return reg
}
