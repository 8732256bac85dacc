package service

import (
	"errors"
	"fmt"

	"teamCalendar/internal/models/task"
	rep "teamCalendar/internal/repository"
)

const (
	CodeNotFound         = "NOT_FOUND"
	CodeValidation       = "VALIDATION_ERROR"
	CodeVersionConflict  = "VERSION_CONFLICT"
	CodeAlreadyCompleted = "ALREADY_COMPLETED"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeForbidden        = "FORBIDDEN"
)

// Resource - имя сущности в сообщениях об ошибках
type Resource string

const (
	ResourceTask         Resource = "Задача"
	ResourcePerson       Resource = "Сотрудник"
	ResourceSession      Resource = "Сессия"
	ResourceNotification Resource = "Уведомление"
)

type BusinessError struct {
	Code    string
	Message string
	Details map[string]any
	Err     error
}

type Detail struct {
	Key     string
	Payload any
}

func (b *BusinessError) Error() string {
	if b.Err != nil {
		return fmt.Sprintf("[%s] %s: %s", b.Code, b.Message, b.Err.Error())
	}
	return fmt.Sprintf("[%s] %s", b.Code, b.Message)
}

func (b *BusinessError) Unwrap() error {
	return b.Err
}

func ToDetail(key string, payload any) Detail {
	return Detail{
		Key:     key,
		Payload: payload,
	}
}

func NewBusinessError(code string, message string, details ...Detail) *BusinessError {
	busErr := &BusinessError{
		Code:    code,
		Message: message,
		Details: make(map[string]any),
	}

	for _, detail := range details {
		busErr.Details[detail.Key] = detail.Payload
	}

	return busErr
}

func NewNotFound(resource Resource, id string) *BusinessError {
	return &BusinessError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s %s не найден(а)", resource, id),
		Details: map[string]any{
			"resource": resource,
			"id":       id,
		},
	}
}

func NewValidationError(field, reason string) *BusinessError {
	return &BusinessError{
		Code:    CodeValidation,
		Message: fmt.Sprintf("Неверное значение поля '%s': %s", field, reason),
		Details: map[string]any{
			"field":  field,
			"reason": reason,
		},
	}
}

func NewVersionConflict(id string, version int) *BusinessError {
	return &BusinessError{
		Code:    CodeVersionConflict,
		Message: fmt.Sprintf("Задача %s изменена другим пользователем", id),
		Details: map[string]any{
			"id":      id,
			"version": version,
		},
		Err: rep.ErrVersionConflict,
	}
}

func NewUnauthorized(reason string) *BusinessError {
	return NewBusinessError(CodeUnauthorized, reason)
}

func NewForbidden(reason string) *BusinessError {
	return NewBusinessError(CodeForbidden, reason)
}

// fromValidation превращает ошибку модели в VALIDATION_ERROR
func fromValidation(err error) error {
	var fe *task.FieldError
	if errors.As(err, &fe) {
		return NewValidationError(fe.Field, fe.Reason)
	}
	return err
}

// fromRepo переводит ошибки хранилища задач в бизнес-ошибки
func fromRepo(t *task.Task, id string, op string, err error) error {
	switch {
	case errors.Is(err, rep.ErrNotFound):
		return NewNotFound(ResourceTask, id)
	case errors.Is(err, rep.ErrVersionConflict):
		version := 0
		if t != nil {
			version = t.Version
		}
		return NewVersionConflict(id, version)
	}
	return fmt.Errorf("%s: %w", op, err)
}
