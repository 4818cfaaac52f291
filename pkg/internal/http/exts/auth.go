package exts

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/meetlinkapp/meetlink/pkg/internal/models"
	"github.com/meetlinkapp/meetlink/pkg/internal/services"
)

// IdentityMiddleware resolves the viewer behind the request. A bearer
// token is verified against the identity provider; without one the
// request proceeds as a freshly minted guest.
func IdentityMiddleware(c *fiber.Ctx) error {
	header := c.Get(fiber.HeaderAuthorization)
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		user, err := services.VerifyIdentityToken(c.Context(), token)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}
		c.Locals("user", user)
	} else {
		c.Locals("user", models.NewGuestIdentity())
	}

	return c.Next()
}

// EnsureAuthenticated rejects guests on actions that require a
// principal, such as minting video tokens or creating meetings.
func EnsureAuthenticated(c *fiber.Ctx) error {
	user, ok := c.Locals("user").(models.Identity)
	if !ok || !user.Authenticated() {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}
	return c.Next()
}
