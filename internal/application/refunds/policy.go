// Package refunds implements the published cancellation refund schedule.
package refunds

import (
	"errors"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// Input errors returned by TierFor and QuoteRefund.
var (
	ErrNegativeDays       = errors.New("days since activation cannot be negative")
	ErrNegativeAmountPaid = errors.New("amount paid cannot be negative")
)

// Tier maps an inclusive day range to a refund percentage. MaxDays < 0 means open-ended.
type Tier struct {
	MinDays   int    `json:"min_days"`
	MaxDays   int    `json:"max_days"`
	Percent   int    `json:"percent"`
	Deduction string `json:"deduction"`
}

// Tiers is ordered by MinDays; the first matching tier wins. Day 30 still gets a full refund.
var Tiers = []Tier{
	{MinDays: 0, MaxDays: 30, Percent: 100, Deduction: "none (setup fee also refunded)"},
	{MinDays: 31, MaxDays: 90, Percent: 90, Deduction: "setup fee only"},
	{MinDays: 91, MaxDays: 180, Percent: 85, Deduction: "setup fee + 15% admin fee"},
	{MinDays: 181, MaxDays: 365, Percent: 80, Deduction: "setup fee + 20% admin fee"},
	{MinDays: 366, MaxDays: 730, Percent: 75, Deduction: "setup fee + 25% admin fee"},
	{MinDays: 731, MaxDays: 1095, Percent: 70, Deduction: "setup fee + 30% admin fee"},
	{MinDays: 1096, MaxDays: -1, Percent: 65, Deduction: "setup fee + 35% admin fee"},
}

func (t Tier) contains(days int) bool {
	return days >= t.MinDays && (t.MaxDays < 0 || days <= t.MaxDays)
}

// TierFor returns the tier covering daysSinceActivation.
func TierFor(daysSinceActivation int) (Tier, error) {
	if daysSinceActivation < 0 {
		return Tier{}, ErrNegativeDays
	}
	for _, t := range Tiers {
		if t.contains(daysSinceActivation) {
			return t, nil
		}
	}
	// Unreachable while the last tier is open-ended.
	return Tiers[len(Tiers)-1], nil
}

// DaysSince counts whole elapsed days between activation and now. A future activation
// yields a negative count, which TierFor rejects.
func DaysSince(activatedAt, now time.Time) int {
	return int(math.Floor(now.Sub(activatedAt).Hours() / 24))
}

// Quote is the money value of a cancellation on a given day.
type Quote struct {
	Tier
	DaysSinceActivation int             `json:"days_since_activation"`
	AmountPaid          decimal.Decimal `json:"amount_paid"`
	RefundAmount        decimal.Decimal `json:"refund_amount"`
	DeductedAmount      decimal.Decimal `json:"deducted_amount"`
}

// QuoteRefund applies the tier percentage to amountPaid, rounding the refund to paise.
func QuoteRefund(daysSinceActivation int, amountPaid decimal.Decimal) (Quote, error) {
	if amountPaid.IsNegative() {
		return Quote{}, ErrNegativeAmountPaid
	}
	tier, err := TierFor(daysSinceActivation)
	if err != nil {
		return Quote{}, err
	}
	refund := amountPaid.Mul(decimal.NewFromInt(int64(tier.Percent))).Div(decimal.NewFromInt(100)).Round(2)
	return Quote{
		Tier:                tier,
		DaysSinceActivation: daysSinceActivation,
		AmountPaid:          amountPaid,
		RefundAmount:        refund,
		DeductedAmount:      amountPaid.Sub(refund),
	}, nil
}
