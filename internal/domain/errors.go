package domain

import (
	"errors"
	"strings"
)

// Tipos de error expuestos por los servicios. Cada uno se traduce a un status HTTP.
var (
	ErrValidation = errors.New("validation error")
	ErrConflict   = errors.New("conflict")
	ErrAuth       = errors.New("unauthorized")
	ErrNotFound   = errors.New("not found")
	ErrDependency = errors.New("dependency failure")
)

// Error lleva el tipo, un mensaje apto para el cliente y detalles opcionales.
type Error struct {
	Kind    error
	Message string
	Details []string
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Validation(msg string, details ...string) *Error {
	return &Error{Kind: ErrValidation, Message: msg, Details: details}
}

func Conflict(msg string) *Error {
	return &Error{Kind: ErrConflict, Message: msg}
}

func Unauthorized(msg string) *Error {
	return &Error{Kind: ErrAuth, Message: msg}
}

func NotFound(msg string) *Error {
	return &Error{Kind: ErrNotFound, Message: msg}
}

// Dependency envuelve una falla de un colaborador externo; el cliente solo ve msg.
func Dependency(msg string, err error) *Error {
	return &Error{Kind: ErrDependency, Message: msg, Err: err}
}
