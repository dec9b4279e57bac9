// Package apperr содержит ошибки предметной области, которые HTTP-слой
// отображает в коды ответа.
package apperr

import (
	"errors"
	"net/http"
)

// Типы ошибок, возвращаемые клиенту в поле "type".
const (
	TypeValidation = "unprocessable_entity"
	TypeConflict   = "conflict"
	TypeNotFound   = "not_found"
)

// ValidationError некорректные входные данные.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ConflictError нарушение уникальности.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// NotFoundError запрошенная сущность не существует.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// Validation создаёт ValidationError.
func Validation(msg string) error { return &ValidationError{Message: msg} }

// Conflict создаёт ConflictError.
func Conflict(msg string) error { return &ConflictError{Message: msg} }

// NotFound создаёт NotFoundError.
func NotFound(msg string) error { return &NotFoundError{Message: msg} }

// Classify возвращает HTTP-статус и тип для ошибки. Неизвестные ошибки дают 500.
func Classify(err error) (status int, typ string) {
	var (
		validationErr *ValidationError
		conflictErr   *ConflictError
		notFoundErr   *NotFoundError
	)
	switch {
	case errors.As(err, &validationErr):
		return http.StatusUnprocessableEntity, TypeValidation
	case errors.As(err, &conflictErr):
		return http.StatusConflict, TypeConflict
	case errors.As(err, &notFoundErr):
		return http.StatusNotFound, TypeNotFound
	default:
		return http.StatusInternalServerError, "internal"
	}
}
