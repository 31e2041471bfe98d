package middleware

import (
	"cargo-portal/constants"
	"cargo-portal/services/identity"
	"cargo-portal/types"
	"cargo-portal/utils"

	"github.com/gofiber/fiber/v2"
)

// RequireSession authenticates the request: it extracts the session token,
// resolves the uid inside against the current user record and stashes the
// identity in Locals. The user row is the source of truth on every request,
// so an admin-side deactivation takes effect without re-login.
func RequireSession(resolver *identity.Resolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := utils.ExtractSessionToken(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
				Status:  fiber.StatusUnauthorized,
				Message: "Authentication required",
			})
		}

		uid, err := utils.ParseSessionToken(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
				Status:  fiber.StatusUnauthorized,
				Message: "Invalid session",
			})
		}

		id, err := resolver.Resolve(c.Context(), uid)
		if err != nil {
			return c.Status(types.HTTPStatus(err)).JSON(types.ApiResponse{
				Status:  types.HTTPStatus(err),
				Message: types.UserMessage(err),
			})
		}

		c.Locals("identity", id)
		return c.Next()
	}
}

// RequireAdmin allows only admin identities through. Must run after
// RequireSession.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := IdentityFromCtx(c)
		if id == nil || id.Role != constants.RoleAdmin {
			return c.Status(fiber.StatusForbidden).JSON(types.ApiResponse{
				Status:  fiber.StatusForbidden,
				Message: types.UserMessage(types.ErrForbidden),
			})
		}
		return c.Next()
	}
}

// IdentityFromCtx returns the resolved identity stashed by RequireSession.
func IdentityFromCtx(c *fiber.Ctx) *identity.Identity {
	id, ok := c.Locals("identity").(*identity.Identity)
	if !ok {
		return nil
	}
	return id
}
