package waitlist

import (
	"errors"

	waitlistsvc "sunshare-backend/internal/application/waitlist"
	"sunshare-backend/internal/domain"
	"sunshare-backend/internal/infrastructure/persistence"
	"sunshare-backend/internal/middleware"
	"sunshare-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type Handlers struct {
	Service *waitlistsvc.Service
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// Join POST /api/v1/waitlist/join
func (h *Handlers) Join(c *fiber.Ctx) error {
	var req waitlistsvc.JoinInput
	if err := c.BodyParser(&req); err != nil {
		if errors.Is(err, domain.ErrInvalidMetadata) {
			return response.BadRequest(c, err.Error())
		}
		return response.BadRequest(c, "Invalid request body")
	}
	entry, err := h.Service.Join(c.UserContext(), req)
	if err != nil {
		return mapError(c, err)
	}
	return response.SuccessCreated(c, "Joined the waitlist", fiber.Map{"entry": entry}, nil)
}

// List GET /api/v1/admin/waitlist?status=&page=&limit=
func (h *Handlers) List(c *fiber.Ctx) error {
	res, err := h.Service.List(c.UserContext(), c.Query("status"), c.QueryInt("page", 1), c.QueryInt("limit", persistence.DefaultPageLimit))
	if err != nil {
		return mapError(c, err)
	}
	return response.Success(c, "Waitlist retrieved", res, nil)
}

// UpdateStatus PATCH /api/v1/admin/waitlist/:id/status
func (h *Handlers) UpdateStatus(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid waitlist entry ID")
	}
	var req UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	entry, err := h.Service.UpdateStatus(c.UserContext(), id, req.Status)
	if err != nil {
		return mapError(c, err)
	}
	return response.Success(c, "Waitlist entry updated", fiber.Map{"entry": entry}, nil)
}

func mapError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, waitlistsvc.ErrInvalidEmail),
		errors.Is(err, waitlistsvc.ErrFullnameRequired),
		errors.Is(err, waitlistsvc.ErrInvalidPhone),
		errors.Is(err, waitlistsvc.ErrInvalidStatus),
		errors.Is(err, domain.ErrInvalidMetadata):
		return response.BadRequest(c, err.Error())
	case errors.Is(err, waitlistsvc.ErrAlreadyOnWaitlist):
		return response.Conflict(c, err.Error())
	case errors.Is(err, waitlistsvc.ErrEntryNotFound):
		return response.NotFound(c, err.Error())
	}
	log.Error().Err(err).Str("trace_id", middleware.GetTraceID(c)).Msg("waitlist request failed")
	return response.InternalError(c)
}
