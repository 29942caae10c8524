package reservations

import (
	"errors"

	reservationsvc "sunshare-backend/internal/application/reservations"
	"sunshare-backend/internal/middleware"
	"sunshare-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type Handlers struct {
	Service *reservationsvc.Service
}

type ReserveRequest struct {
	BlockID string `json:"block_id"`
}

// Reserve POST /api/v1/reservations/reserve
func (h *Handlers) Reserve(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	userID, err := uuid.Parse(user.UserID)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req ReserveRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	blockID, err := uuid.Parse(req.BlockID)
	if err != nil {
		return response.BadRequest(c, "block_id must be a valid UUID")
	}

	res, err := h.Service.Reserve(c.UserContext(), reservationsvc.Customer{
		UserID:   userID,
		Email:    user.Email,
		Fullname: user.Fullname,
	}, blockID)
	if err != nil {
		switch {
		case errors.Is(err, reservationsvc.ErrBlockNotFound):
			return response.NotFound(c, err.Error())
		case errors.Is(err, reservationsvc.ErrBlockUnavailable):
			return response.Conflict(c, err.Error())
		case errors.Is(err, reservationsvc.ErrProjectNotActive):
			return response.BadRequest(c, err.Error())
		}
		log.Error().Err(err).Str("trace_id", middleware.GetTraceID(c)).Str("block_id", blockID.String()).Msg("reservation failed")
		return response.InternalError(c)
	}
	return response.SuccessCreated(c, "Capacity reserved", res, nil)
}

// Mine GET /api/v1/reservations/mine
func (h *Handlers) Mine(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	userID, err := uuid.Parse(user.UserID)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	views, err := h.Service.ListMine(c.UserContext(), userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.UserID).Msg("list reservations failed")
		return response.InternalError(c)
	}
	return response.Success(c, "Reservations retrieved", fiber.Map{"reservations": views}, fiber.Map{"count": len(views)})
}
