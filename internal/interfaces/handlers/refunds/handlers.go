package refunds

import (
	"errors"
	"strconv"

	"sunshare-backend/internal/application/refunds"
	"sunshare-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type Handlers struct{}

// ListTiers GET /api/v1/refunds/tiers
func (h *Handlers) ListTiers(c *fiber.Ctx) error {
	return response.Success(c, "Refund tiers", refunds.Tiers, nil)
}

// GetTier GET /api/v1/refunds/tier?days=
func (h *Handlers) GetTier(c *fiber.Ctx) error {
	days, err := parseDays(c)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}
	tier, err := refunds.TierFor(days)
	if err != nil {
		return mapError(c, err)
	}
	return response.Success(c, "Refund tier", tier, fiber.Map{"days_since_activation": days})
}

// Quote GET /api/v1/refunds/quote?days=&amount_paid=
func (h *Handlers) Quote(c *fiber.Ctx) error {
	days, err := parseDays(c)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}
	amount, err := decimal.NewFromString(c.Query("amount_paid"))
	if err != nil {
		return response.BadRequest(c, "amount_paid must be a decimal number")
	}
	quote, err := refunds.QuoteRefund(days, amount)
	if err != nil {
		return mapError(c, err)
	}
	return response.Success(c, "Refund quote", quote, nil)
}

func parseDays(c *fiber.Ctx) (int, error) {
	raw := c.Query("days")
	if raw == "" {
		return 0, errors.New("days is required")
	}
	days, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New("days must be an integer")
	}
	return days, nil
}

func mapError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, refunds.ErrNegativeDays), errors.Is(err, refunds.ErrNegativeAmountPaid):
		return response.BadRequest(c, err.Error())
	}
	return response.InternalError(c)
}
