package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"docarchive/internal/docstore"
	"docarchive/internal/model"
)

// UserLocalKey is the key under which the authenticated *model.User is stored in locals.
const UserLocalKey = "user"

// TokenVerifier resolves a bearer token to a user name.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// UserEnsurer returns the user row for a name, creating it on first sight.
type UserEnsurer interface {
	Ensure(ctx context.Context, username string) (*model.User, error)
}

// Auth rejects requests without a valid bearer token and stores the user in locals.
// A token whose subject cannot name a storage directory is rejected before any user row exists.
// Failures are returned as fiber errors so the global ErrorHandler renders them.
func Auth(tokens TokenVerifier, users UserEnsurer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c.Get(fiber.HeaderAuthorization))
		if token == "" {
			return fiber.ErrUnauthorized
		}
		name, err := tokens.Verify(token)
		if err != nil {
			return fiber.ErrUnauthorized
		}
		if docstore.ValidateUserName(name) != nil {
			return fiber.ErrUnauthorized
		}
		u, err := users.Ensure(c.UserContext(), name)
		if err != nil {
			return err
		}
		c.Locals(UserLocalKey, u)
		return c.Next()
	}
}

// UserFromCtx returns the authenticated user or nil.
func UserFromCtx(c *fiber.Ctx) *model.User {
	u, _ := c.Locals(UserLocalKey).(*model.User)
	return u
}

func bearerToken(h string) string {
	const prefix = "Bearer "
	if len(h) > len(prefix) && strings.EqualFold(h[:len(prefix)], prefix) {
		return strings.TrimSpace(h[len(prefix):])
	}
	return ""
}
