package middleware

import (
	"sunshare-backend/internal/pkg/constants"
	"sunshare-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// AuthorizePermission checks the session user's role against constants.PermissionRoles.
// An unconfigured permission is a server error; a disallowed role is 403.
func AuthorizePermission(permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return response.Unauthorized(c, "Unauthorized")
		}
		if user.Role == "" {
			return response.Error(c, "Authorization error", fiber.StatusInternalServerError, nil)
		}
		if roles, ok := constants.PermissionRoles[permission]; !ok || len(roles) == 0 {
			log.Error().Str("permission", permission).Msg("permission has no roles configured")
			return response.Error(c, "Permission configuration error", fiber.StatusInternalServerError, nil)
		}
		if !constants.AllowedRole(permission, user.Role) {
			return response.Error(c, "User is Forbidden from performing this action", fiber.StatusForbidden, nil)
		}
		return c.Next()
	}
}
