package economics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculate_ReferenceFixture(t *testing.T) {
	r := Calculate(5)
	assert.Equal(t, 600.0, r.GeneratedUnitsPerMonth)
	assert.Equal(t, 3000.0, r.MonthlySavings)
	assert.Equal(t, 36000.0, r.AnnualSavings)
	assert.Equal(t, 250000.0, r.ReservationFee)
	require.NotNil(t, r.RoiYears)
	assert.Equal(t, 7, *r.RoiYears)
	assert.InDelta(t, 5.904, r.CO2OffsetTonnes, 1e-9)
	assert.Equal(t, 266, r.TreesEquivalent)
}

func TestCalculate_Idempotent(t *testing.T) {
	for _, kw := range []float64{1, 2.5, 5, 37, 100} {
		assert.Equal(t, Calculate(kw), Calculate(kw))
	}
}

func TestCalculate_MonthlySavingsStrictlyIncreasing(t *testing.T) {
	prev := Calculate(1).MonthlySavings
	for kw := 1.5; kw <= 100; kw += 0.5 {
		cur := Calculate(kw).MonthlySavings
		assert.Greater(t, cur, prev, "capacity %v", kw)
		prev = cur
	}
}

func TestCalculate_ZeroCapacityHasNoROI(t *testing.T) {
	r := Calculate(0)
	assert.Nil(t, r.RoiYears)
	assert.Equal(t, 0.0, r.AnnualSavings)
	assert.Equal(t, 0, r.TreesEquivalent)
}

func TestCalculate_DoesNotRangeCheck(t *testing.T) {
	r := Calculate(250)
	assert.Equal(t, 250*120*5.0, r.MonthlySavings)
}

func TestCalculate_CustomConstants(t *testing.T) {
	c := Defaults
	c.CreditRatePerUnit = 0
	r := c.Calculate(10)
	assert.Equal(t, 0.0, r.MonthlySavings)
	assert.Nil(t, r.RoiYears)
	assert.Equal(t, 500000.0, r.ReservationFee)
}

func TestClampCapacity(t *testing.T) {
	assert.Equal(t, 1.0, ClampCapacity(0))
	assert.Equal(t, 1.0, ClampCapacity(-3))
	assert.Equal(t, 1.0, ClampCapacity(math.NaN()))
	assert.Equal(t, 42.5, ClampCapacity(42.5))
	assert.Equal(t, 100.0, ClampCapacity(1000))
}
