package bootstrap

import (
	"sunshare-backend/internal/config"
	"sunshare-backend/internal/interfaces/router"

	"github.com/gofiber/fiber/v2"
)

// New creates the Fiber app for the serverless entry point (api imports this package, not internal).
func New() (*fiber.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	Logging(cfg.LogLevel, cfg.IsProduction())
	app, _, err := router.CreateApp(cfg)
	return app, err
}
