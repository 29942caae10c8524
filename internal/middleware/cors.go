package middleware

import (
	"strings"

	"sunshare-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// CORSConfig allows origins by suffix, plus any origin presenting the dev password.
type CORSConfig struct {
	AllowedSuffix string
	DevPassword   string
}

// CORS allows credentialed requests from origins ending with AllowedSuffix, from localhost
// preflights, or carrying the dev-password header. Requests without an Origin pass through.
func CORS(cfg CORSConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		origin := c.Get("Origin")
		if origin == "" {
			return c.Next()
		}
		allowed := isLocalOrigin(origin) && c.Method() == fiber.MethodOptions
		if cfg.AllowedSuffix != "" && strings.HasSuffix(strings.ToLower(origin), strings.ToLower(cfg.AllowedSuffix)) {
			allowed = true
		}
		if cfg.DevPassword != "" && c.Get("dev-password") == cfg.DevPassword {
			allowed = true
		}
		if !allowed {
			return response.Error(c, "Not allowed by CORS", fiber.StatusForbidden, nil)
		}

		c.Set("Access-Control-Allow-Origin", origin)
		c.Set("Access-Control-Allow-Credentials", "true")
		c.Set("Access-Control-Allow-Headers", "Content-Type, dev-password, X-Trace-Id")
		c.Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Set("Access-Control-Expose-Headers", "X-Trace-Id")
		c.Vary("Origin")
		if c.Method() == fiber.MethodOptions {
			return c.SendStatus(fiber.StatusNoContent)
		}
		return c.Next()
	}
}

func isLocalOrigin(origin string) bool {
	return strings.HasPrefix(origin, "http://localhost:") || strings.HasPrefix(origin, "http://127.0.0.1:")
}
