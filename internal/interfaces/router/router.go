package router

import (
	"fmt"
	"net/http"

	authsvc "sunshare-backend/internal/application/auth"
	"sunshare-backend/internal/application/economics"
	"sunshare-backend/internal/application/emails"
	healthsvc "sunshare-backend/internal/application/health"
	projectsvc "sunshare-backend/internal/application/projects"
	reservationsvc "sunshare-backend/internal/application/reservations"
	usersvc "sunshare-backend/internal/application/user"
	waitlistsvc "sunshare-backend/internal/application/waitlist"
	"sunshare-backend/internal/config"
	"sunshare-backend/internal/infrastructure/database"
	"sunshare-backend/internal/infrastructure/events"
	"sunshare-backend/internal/infrastructure/persistence"
	authhandler "sunshare-backend/internal/interfaces/handlers/auth"
	economicshandler "sunshare-backend/internal/interfaces/handlers/economics"
	healthhandler "sunshare-backend/internal/interfaces/handlers/health"
	projecthandler "sunshare-backend/internal/interfaces/handlers/projects"
	refundhandler "sunshare-backend/internal/interfaces/handlers/refunds"
	reservationhandler "sunshare-backend/internal/interfaces/handlers/reservations"
	userhandler "sunshare-backend/internal/interfaces/handlers/user"
	waitlisthandler "sunshare-backend/internal/interfaces/handlers/waitlist"
	"sunshare-backend/internal/middleware"
	"sunshare-backend/internal/pkg/constants"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Deps are the connections CreateApp opened. DB is nil when no database URL is configured;
// the API then serves only the health and calculator routes.
type Deps struct {
	DB        *gorm.DB
	Rdb       *redis.Client
	Publisher events.Publisher
}

func CreateApp(cfg *config.Config) (*fiber.App, *Deps, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
	})

	if cfg.RedisURL == "" {
		return nil, nil, fmt.Errorf("REDIS_URL is required")
	}
	rdb, err := middleware.NewRedisClient(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("redis: %w", err)
	}
	deps := &Deps{Rdb: rdb, Publisher: events.Nop{}}

	if cfg.DatabaseURL != "" {
		db, err := database.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("database: %w", err)
		}
		if err := database.AutoMigrate(db); err != nil {
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		deps.DB = db
	} else {
		log.Warn().Msg("no database URL configured; data routes disabled")
	}

	if cfg.NATSURL != "" {
		pub, err := events.Connect(cfg.NATSURL)
		if err != nil {
			// reservations still work without the bus
			log.Error().Err(err).Msg("event bus unavailable; events will be dropped")
		} else {
			deps.Publisher = pub
			app.Hooks().OnShutdown(pub.Close)
		}
	}

	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.FrontendURLEndsWith,
		DevPassword:   cfg.DevPassword,
	}))
	app.Use(middleware.Session(rdb))
	app.Use(middleware.HealthMarker(rdb))
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	collector := &healthsvc.Collector{Rdb: rdb}
	if reporter, ok := deps.Publisher.(healthsvc.StatusReporter); ok {
		collector.EventBus = reporter
	}
	if deps.DB != nil {
		if sqlDB, err := deps.DB.DB(); err == nil {
			collector.DB = sqlDB
		}
	}
	hh := &healthhandler.Handlers{Rdb: rdb, Collector: collector, HealthAdminKey: cfg.HealthAdminKey}
	app.Get("/reset", hh.Reset)
	app.Get("/health/json", hh.JSON)
	app.Get("/health/errors", hh.Errors)

	api := app.Group("/api/v1")

	eh := &economicshandler.Handlers{Constants: economics.Defaults}
	api.Get("/economics", eh.Estimate)
	api.Get("/economics/constants", eh.GetConstants)

	rh := &refundhandler.Handlers{}
	api.Get("/refunds/tiers", rh.ListTiers)
	api.Get("/refunds/tier", rh.GetTier)
	api.Get("/refunds/quote", rh.Quote)

	if deps.DB == nil {
		return app, deps, nil
	}
	db := deps.DB

	var mailer emails.Sender = emails.Nop{}
	if cfg.SendinblueAPIKey != "" {
		mailer = &emails.BrevoClient{APIKey: cfg.SendinblueAPIKey, MailFrom: cfg.MailFrom}
	}
	sessionCfg := middleware.SessionConfig{
		Secret:            cfg.SessionSecret,
		RedisURL:          cfg.RedisURL,
		AllowCrossSiteDev: cfg.AllowCrossSiteDev,
		IsProduction:      cfg.IsProduction(),
		CookieDomain:      cfg.CookieDomain,
	}

	ah := &authhandler.Handlers{UserFinder: &authsvc.GormUserFinder{DB: db}, Rdb: rdb, Config: sessionCfg}
	authGroup := api.Group("/auth")
	authGroup.Post("/login", ah.Login)
	authGroup.Get("/me", ah.Me)
	authGroup.Delete("/logout", ah.Logout)

	uh := &userhandler.Handlers{Service: &usersvc.Service{DB: db, Rdb: rdb, Email: mailer}, Config: sessionCfg}
	api.Post("/users/create-user", uh.CreateUser)
	ug := api.Group("/users", middleware.RequireAuth())
	ug.Put("/update-user", uh.UpdateUser)
	ug.Get("/view-user", uh.ViewUser)

	ph := &projecthandler.Handlers{Service: &projectsvc.Service{Repo: &persistence.GormProjectRepository{DB: db}}}
	api.Get("/projects/:id/availability", ph.Availability)

	wh := &waitlisthandler.Handlers{Service: &waitlistsvc.Service{DB: db, Email: mailer}}
	api.Post("/waitlist/join", wh.Join)

	resh := &reservationhandler.Handlers{Service: &reservationsvc.Service{
		Repo:      &persistence.GormAllocationRepository{DB: db},
		Publisher: deps.Publisher,
		Email:     mailer,
	}}
	rg := api.Group("/reservations", middleware.RequireAuth())
	rg.Post("/reserve", middleware.AuthorizePermission(constants.ReserveCapacity), resh.Reserve)
	rg.Get("/mine", resh.Mine)

	admin := api.Group("/admin", middleware.RequireAuth())

	pg := admin.Group("/projects", middleware.AuthorizePermission(constants.ManageProjects))
	pg.Get("/", ph.List)
	pg.Post("/", ph.Create)
	pg.Get("/:id", ph.Get)
	pg.Patch("/:id", ph.Update)
	pg.Delete("/:id", ph.Delete)
	pg.Get("/:id/blocks", ph.ListBlocks)
	pg.Post("/:id/blocks", ph.AddBlock)
	pg.Get("/:id/events", ph.ListEvents)

	aug := admin.Group("/users")
	aug.Get("/", middleware.AuthorizePermission(constants.ManageUsers), uh.ListUsers)
	aug.Patch("/:id/role", middleware.AuthorizePermission(constants.ManageUsers), uh.UpdateRole)

	awg := admin.Group("/waitlist", middleware.AuthorizePermission(constants.ManageWaitlist))
	awg.Get("/", wh.List)
	awg.Patch("/:id/status", wh.UpdateStatus)

	return app, deps, nil
}

func Handler(app *fiber.App) http.Handler {
	return adaptor.FiberApp(app)
}
