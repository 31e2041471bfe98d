package types

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Domain error taxonomy. Controllers map these to HTTP statuses and the
// mutation path checks them to distinguish "not allowed" from "try again"
// from "no longer exists".
var (
	// ErrForbidden means a policy check failed. No partial state change.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound means the referenced shipment/company/user is absent.
	ErrNotFound = errors.New("not found")

	// ErrInactive means the identity resolved but the account is disabled.
	ErrInactive = errors.New("account inactive")

	// ErrConflict means a patch violated a structural invariant.
	ErrConflict = errors.New("conflict")

	// ErrTransport means the backing store or an outbound transport failed.
	ErrTransport = errors.New("transport error")
)

// ConflictError carries the fields implicated in a structural conflict.
type ConflictError struct {
	Fields []string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict on fields: %s", strings.Join(e.Fields, ", "))
}

func (e *ConflictError) Unwrap() error {
	return ErrConflict
}

// NewConflictError builds a ConflictError for the given fields.
func NewConflictError(fields ...string) error {
	return &ConflictError{Fields: fields}
}

// HTTPStatus maps a domain error to the HTTP status the API responds with.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrInactive):
		return fiber.StatusForbidden
	case errors.Is(err, ErrConflict):
		return fiber.StatusConflict
	case errors.Is(err, ErrTransport):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// UserMessage renders the user-visible failure text, distinguishing
// "not allowed" from "try again" from "no longer exists".
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrInactive):
		return "Account disabled, contact an administrator"
	case errors.Is(err, ErrForbidden):
		return "You are not allowed to perform this action"
	case errors.Is(err, ErrNotFound):
		return "The requested record no longer exists"
	case errors.Is(err, ErrConflict):
		return "The change conflicts with the current record, please review and try again"
	case errors.Is(err, ErrTransport):
		return "A temporary error occurred, please try again"
	default:
		return "Internal server error"
	}
}
