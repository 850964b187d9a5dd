package errors

import "fmt"

var (
	ErrEmptyMessage   = fmt.Errorf("message cannot be empty")
	ErrInvalidJSON    = fmt.Errorf("invalid json payload")
	ErrMessageTooLong = fmt.Errorf("message too long")
	ErrInvalidInput   = fmt.Errorf("invalid input")
	ErrNotFound       = fmt.Errorf("not found")
	ErrWorkerPanic    = fmt.Errorf("worker panic")
)
