package service

import (
	"errors"
	"fmt"

	"github.com/dalemusser/projectflow/internal/app/store"
)

// ValidationError reports missing or malformed input. Msg is safe to show
// to clients.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// NotFoundError reports an id that does not resolve.
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string { return e.Entity + " not found" }

// AuthError reports failed credentials or a taken email. Msg never says which
// of email or password was wrong.
type AuthError struct {
	Msg string
}

func (e *AuthError) Error() string { return e.Msg }

// StoreError wraps an infrastructure failure. Clients only ever see a generic
// message; Err is for the logs.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *StoreError) Unwrap() error { return e.Err }

// Auth messages.
const (
	MsgInvalidCredentials = "invalid credentials"
	MsgUserExists         = "user exists"
)

func validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

func notFound(entity string) error { return &NotFoundError{Entity: entity} }

// storeErr maps store sentinels onto the taxonomy. ErrNotFound becomes a
// NotFoundError for entity; anything else is a StoreError.
func storeErr(op, entity string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return notFound(entity)
	}
	return &StoreError{Op: op, Err: err}
}
