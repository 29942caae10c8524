package auth

import (
	"errors"

	authsvc "sunshare-backend/internal/application/auth"
	"sunshare-backend/internal/middleware"
	"sunshare-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

type Handlers struct {
	UserFinder authsvc.UserFinder
	Rdb        *redis.Client
	Config     middleware.SessionConfig
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login POST /api/v1/auth/login
func (h *Handlers) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil || req.Email == "" || req.Password == "" {
		return response.BadRequest(c, authsvc.ErrEmailPasswordRequired.Error())
	}

	user, err := h.UserFinder.FindByEmailAndPassword(c.UserContext(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, authsvc.ErrEmailPasswordRequired):
			return response.BadRequest(c, err.Error())
		case errors.Is(err, authsvc.ErrInvalidCredentials):
			return response.Error(c, err.Error(), fiber.StatusUnauthorized, nil)
		}
		log.Error().Err(err).Str("trace_id", middleware.GetTraceID(c)).Msg("login lookup failed")
		return response.InternalError(c)
	}

	su := middleware.SessionUser{
		UserID:   user.UserID.String(),
		Fullname: user.Fullname,
		Email:    user.Email,
		Role:     user.Role,
	}
	if err := middleware.StartSession(c, h.Rdb, h.Config, su); err != nil {
		log.Error().Err(err).Str("user_id", su.UserID).Msg("track session failed")
		return response.InternalError(c)
	}
	log.Info().Str("user_id", su.UserID).Str("role", su.Role).Msg("login")
	return response.Success(c, "Login successful", fiber.Map{"user": su}, nil)
}

// Me GET /api/v1/auth/me
func (h *Handlers) Me(c *fiber.Ctx) error {
	user, err := authsvc.VerifyUser(middleware.GetUser(c))
	if err != nil {
		log.Debug().
			Bool("cookie_present", c.Cookies(middleware.SessionCookieName) != "").
			Bool("session_id_present", middleware.GetSessionID(c) != "").
			Msg("auth/me: not authenticated")
		return response.Unauthorized(c, err.Error())
	}
	return response.Success(c, "Authenticated", fiber.Map{"user": user}, nil)
}

// Logout DELETE /api/v1/auth/logout
func (h *Handlers) Logout(c *fiber.Ctx) error {
	sessionID := middleware.GetSessionID(c)
	ctx := c.UserContext()

	if user := middleware.CurrentUser(c); user != nil && sessionID != "" {
		_ = h.Rdb.SRem(ctx, middleware.UserSessionsPrefix+user.UserID, sessionID).Err()
	}
	if sessionID != "" {
		_ = h.Rdb.Del(ctx, middleware.SessionRedisPrefix+sessionID).Err()
	}
	middleware.DestroySession(c)

	cookie := middleware.SessionCookieConfig(h.Config)
	cookie.Value = ""
	cookie.MaxAge = -1
	c.Cookie(&cookie)

	return response.Success(c, "Logged out successfully", nil, nil)
}
