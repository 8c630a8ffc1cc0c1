package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/trekbot/internal/config"
	"github.com/example/trekbot/internal/utils"
)

const principalContextKey = "currentPrincipal"

// Principal is the authenticated identity attached to a request. Handlers
// scope their queries on it instead of re-reading request state.
type Principal struct {
	UserID uuid.UUID
	Role   string
}

// Auth validates the bearer access token and loads the Principal into context.
func Auth(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing authorization header")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid authorization header")
		}

		claims, err := utils.ParseToken(cfg.JWTSecret, parts[1], utils.TokenTypeAccess)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}

		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}

		c.Locals(principalContextKey, Principal{UserID: userID, Role: claims.Role})
		return c.Next()
	}
}

// RequireRole rejects requests whose principal holds none of the given roles.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := CurrentPrincipal(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
		}

		for _, role := range roles {
			if principal.Role == role {
				return c.Next()
			}
		}

		return fiber.NewError(fiber.StatusForbidden, "not authorized")
	}
}

// CurrentPrincipal extracts the authenticated principal from context.
func CurrentPrincipal(c *fiber.Ctx) (Principal, bool) {
	value := c.Locals(principalContextKey)
	if value == nil {
		return Principal{}, false
	}

	if p, ok := value.(Principal); ok {
		return p, true
	}

	return Principal{}, false
}
