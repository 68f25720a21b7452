package http

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/richland-auto/inventory-api/internal/application/dto"
	"github.com/richland-auto/inventory-api/internal/domain/entity"
	"github.com/richland-auto/inventory-api/pkg/jwt"
)

// LocalActor is the Locals key holding the resolved entity.Actor.
const LocalActor = "actor"

// AuthMiddleware validates the Bearer token and puts the acting user into
// c.Locals. Every protected route runs through here; handlers then pass the
// actor explicitly into the use cases.
func AuthMiddleware(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "Authorization header required"})
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "format: Bearer <token>"})
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "empty token"})
		}
		userID, username, role, err := jwt.Parse(jwtSecret, tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "invalid or expired token"})
		}
		c.Locals(LocalActor, entity.Actor{ID: userID, Username: username, Role: role})
		return c.Next()
	}
}

// GetActor returns the acting user from the context (after AuthMiddleware).
func GetActor(c *fiber.Ctx) (entity.Actor, bool) {
	actor, ok := c.Locals(LocalActor).(entity.Actor)
	return actor, ok && actor.ID != ""
}

// RequireRole rejects requests whose actor does not carry one of the
// allowed roles. The use cases re-check on their own; this keeps forbidden
// requests from reaching them at all.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := GetActor(c)
		if !ok || actor.Role == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_ROLE", Message: "no role claim on token"})
		}
		if !actor.HasRole(roles...) {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Code:    "FORBIDDEN",
				Message: fmt.Sprintf("role %s is not allowed here", actor.Role),
			})
		}
		return c.Next()
	}
}

// requireActor fetches the actor or writes the 401. Handlers on protected
// routes use it as the first line.
func requireActor(c *fiber.Ctx) (entity.Actor, bool) {
	actor, ok := GetActor(c)
	if !ok {
		_ = c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "authentication required"})
	}
	return actor, ok
}
