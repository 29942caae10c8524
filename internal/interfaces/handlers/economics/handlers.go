package economics

import (
	"math"
	"strconv"

	"sunshare-backend/internal/application/economics"
	"sunshare-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Constants economics.Constants
}

// Estimate GET /api/v1/economics?capacity_kw= clamps the requested capacity to the reservable
// range before computing, and reports whether it did.
func (h *Handlers) Estimate(c *fiber.Ctx) error {
	raw := c.Query("capacity_kw")
	if raw == "" {
		return response.BadRequest(c, "capacity_kw is required")
	}
	requested, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(requested) {
		return response.BadRequest(c, "capacity_kw must be a number")
	}
	kw := h.Constants.Clamp(requested)
	return response.Success(c, "Economics calculated", h.Constants.Calculate(kw), fiber.Map{
		"requestedCapacityKw": requested,
		"clamped":             kw != requested,
	})
}

// GetConstants GET /api/v1/economics/constants serves the single constant table clients must use.
func (h *Handlers) GetConstants(c *fiber.Ctx) error {
	return response.Success(c, "Economics constants", h.Constants, nil)
}
