// Package economics turns a reserved capacity into the savings, fee, payback and
// environmental figures shown to customers. Every page and endpoint that shows a number
// derived from capacity goes through Calculate with the Defaults table.
package economics

import "math"

// Constants is the canonical tuning table. Do not copy these literals elsewhere; read Defaults.
type Constants struct {
	CreditRatePerUnit   float64 `json:"creditRatePerUnit"`   // INR credited per generated kWh
	UnitsPerKwPerMonth  float64 `json:"unitsPerKwPerMonth"`  // kWh generated per kW per month
	ReservationFeePerKw float64 `json:"reservationFeePerKw"` // one-time INR per kW
	CO2TonnesPerUnit    float64 `json:"co2TonnesPerUnit"`    // tonnes CO2 avoided per kWh
	TreesPerTonne       float64 `json:"treesPerTonne"`
	MinCapacityKw       float64 `json:"minCapacityKw"`
	MaxCapacityKw       float64 `json:"maxCapacityKw"`
}

// Defaults is the single source of every economics constant.
var Defaults = Constants{
	CreditRatePerUnit:   5,
	UnitsPerKwPerMonth:  120,
	ReservationFeePerKw: 50000,
	CO2TonnesPerUnit:    0.00082,
	TreesPerTonne:       45,
	MinCapacityKw:       1,
	MaxCapacityKw:       100,
}

const monthsPerYear = 12

// Result holds the projections for one capacity. RoiYears is nil when annual savings are
// not positive and a payback period cannot be computed.
type Result struct {
	CapacityKw             float64 `json:"capacityKw"`
	GeneratedUnitsPerMonth float64 `json:"generatedUnitsPerMonth"`
	MonthlySavings         float64 `json:"monthlySavings"`
	AnnualSavings          float64 `json:"annualSavings"`
	ReservationFee         float64 `json:"reservationFee"`
	RoiYears               *int    `json:"roiYears"`
	CO2OffsetTonnes        float64 `json:"co2OffsetTonnes"`
	TreesEquivalent        int     `json:"treesEquivalent"`
}

// Calculate applies the Defaults table. It does not range-check capacityKw; callers clamp
// with ClampCapacity first.
func Calculate(capacityKw float64) Result {
	return Defaults.Calculate(capacityKw)
}

// Calculate computes the projections for capacityKw using c.
func (c Constants) Calculate(capacityKw float64) Result {
	units := capacityKw * c.UnitsPerKwPerMonth
	monthly := units * c.CreditRatePerUnit
	annual := monthly * monthsPerYear
	fee := capacityKw * c.ReservationFeePerKw

	var roi *int
	if annual > 0 {
		years := int(math.Round(fee / annual))
		roi = &years
	}

	co2 := units * monthsPerYear * c.CO2TonnesPerUnit
	return Result{
		CapacityKw:             capacityKw,
		GeneratedUnitsPerMonth: units,
		MonthlySavings:         monthly,
		AnnualSavings:          annual,
		ReservationFee:         fee,
		RoiYears:               roi,
		CO2OffsetTonnes:        co2,
		TreesEquivalent:        int(math.Round(co2 * c.TreesPerTonne)),
	}
}

// ClampCapacity bounds kw to the reservable range. NaN clamps to the minimum.
func ClampCapacity(kw float64) float64 {
	return Defaults.Clamp(kw)
}

// Clamp bounds kw to [MinCapacityKw, MaxCapacityKw] of c.
func (c Constants) Clamp(kw float64) float64 {
	if math.IsNaN(kw) || kw < c.MinCapacityKw {
		return c.MinCapacityKw
	}
	if kw > c.MaxCapacityKw {
		return c.MaxCapacityKw
	}
	return kw
}
