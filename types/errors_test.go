package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatusMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{ErrForbidden, fiber.StatusForbidden},
		{ErrNotFound, fiber.StatusNotFound},
		{ErrInactive, fiber.StatusForbidden},
		{ErrConflict, fiber.StatusConflict},
		{ErrTransport, fiber.StatusServiceUnavailable},
		{errors.New("something else"), fiber.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HTTPStatus(tt.err), tt.err.Error())
	}
}

func TestHTTPStatusUnwrapsWrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("saving shipment: %w", ErrTransport)
	assert.Equal(t, fiber.StatusServiceUnavailable, HTTPStatus(wrapped))
}

func TestConflictErrorCarriesFields(t *testing.T) {
	err := NewConflictError("origin", "container_count")
	require.ErrorIs(t, err, ErrConflict)

	var conflict *ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, []string{"origin", "container_count"}, conflict.Fields)
	assert.Contains(t, err.Error(), "origin")

	assert.Equal(t, fiber.StatusConflict, HTTPStatus(err))
}

func TestUserMessageDistinguishesFailureKinds(t *testing.T) {
	assert.Contains(t, UserMessage(ErrForbidden), "not allowed")
	assert.Contains(t, UserMessage(ErrTransport), "try again")
	assert.Contains(t, UserMessage(ErrNotFound), "no longer exists")
	assert.Contains(t, UserMessage(ErrInactive), "disabled")
}
