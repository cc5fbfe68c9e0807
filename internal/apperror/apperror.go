// Package apperror defines the domain error classes shared by the service
// and repository layers. Handlers translate them into HTTP status codes and
// echo Field back so the frontend can point at the offending input.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
)

// AppError carries one of the sentinel classes above. Match it with
// errors.Is against the sentinel, not by comparing messages.
type AppError struct {
	Err     error
	Message string // shown to the user as is
	Field   string // request field or resource the error is about, may be empty
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound covers rows that never existed as well as soft-deleted posts,
// comments and withdrawn users.
func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Conflict reports a uniqueness violation: a linked account, a taken
// nickname, a repeated report or block. field names what collided.
func Conflict(field, message string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: message,
		Field:   field,
	}
}

// Forbidden means the caller is known but may not do this: a channel outside
// their band, someone else's post, an admin-only action.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// Unauthorized is returned when the token subject no longer maps to an active user.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}
