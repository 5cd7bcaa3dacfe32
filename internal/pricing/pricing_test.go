package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/utafrali/TravelGo/pkg/errors"
)

func pct(v float64) *float64 { return &v }

func TestCalculate(t *testing.T) {
	tests := []struct {
		name      string
		price     float64
		discount  *float64
		travelers int
		unit      float64
		total     float64
		original  float64
		savings   float64
	}{
		{"twenty percent three travelers", 100, pct(20), 3, 80, 240, 300, 60},
		{"rounds unit down", 99, pct(15), 1, 84, 84, 99, 15},
		{"no discount", 4500, nil, 2, 4500, 9000, 9000, 0},
		{"full discount", 1200, pct(100), 4, 0, 0, 4800, 4800},
		{"half rounds up", 101, pct(50), 1, 51, 51, 101, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := Calculate(tt.price, tt.discount, tt.travelers)
			assert.Equal(t, tt.unit, q.DiscountedUnit)
			assert.Equal(t, tt.total, q.DiscountedTotal)
			assert.Equal(t, tt.original, q.OriginalTotal)
			assert.Equal(t, tt.savings, q.Savings)
		})
	}
}

func TestCalculateWith_PoliciesDivergeAtNonRoundInputs(t *testing.T) {
	// 99 * 0.85 = 84.15 per traveler.
	unit := CalculateWith(RoundUnit, 99, pct(15), 10)
	total := CalculateWith(RoundTotal, 99, pct(15), 10)

	assert.Equal(t, 840.0, unit.DiscountedTotal)
	assert.Equal(t, 841.0, total.DiscountedTotal)
	assert.Equal(t, 150.0, unit.Savings)
	assert.Equal(t, 149.0, total.Savings)

	// Round inputs agree.
	assert.Equal(t,
		CalculateWith(RoundUnit, 100, pct(20), 3).DiscountedTotal,
		CalculateWith(RoundTotal, 100, pct(20), 3).DiscountedTotal,
	)
	assert.Equal(t, "round_unit", RoundUnit.String())
	assert.Equal(t, "round_total", RoundTotal.String())
}

func TestCalculate_SavingsNeverNegative(t *testing.T) {
	for price := 0.0; price <= 5000; price += 137 {
		for d := 0.0; d <= 100; d += 7.5 {
			for n := 1; n <= 9; n += 2 {
				for _, policy := range []RoundingPolicy{RoundUnit, RoundTotal} {
					q := CalculateWith(policy, price, pct(d), n)
					require.GreaterOrEqual(t, q.Savings, -1e-9, "price=%v d=%v n=%d policy=%s", price, d, n, policy)
				}
			}
		}
	}
}

func TestDiscountedUnitPrice(t *testing.T) {
	assert.Equal(t, 84.0, DiscountedUnitPrice(99, pct(15)))
	assert.Equal(t, 99.0, DiscountedUnitPrice(99, nil))
}

func TestTravelers(t *testing.T) {
	assert.Equal(t, 1, DecrementTravelers(1))
	assert.Equal(t, 1, DecrementTravelers(0))
	assert.Equal(t, 2, DecrementTravelers(3))
	assert.Equal(t, 101, IncrementTravelers(100))

	assert.NoError(t, ValidateTravelers(1))
	err := ValidateTravelers(0)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func day(y int, m time.Month, d, h int) time.Time {
	return time.Date(y, m, d, h, 0, 0, 0, time.UTC)
}

func TestIsDateAvailable(t *testing.T) {
	offered := []time.Time{day(2024, 7, 4, 0), day(2024, 8, 1, 0)}

	assert.True(t, IsDateAvailable(day(2024, 7, 4, 15), offered))
	assert.True(t, IsDateAvailable(day(2024, 8, 1, 23), offered))
	assert.False(t, IsDateAvailable(day(2024, 7, 5, 0), offered))
	assert.False(t, IsDateAvailable(time.Time{}, offered))
	assert.False(t, IsDateAvailable(day(2024, 7, 4, 0), nil))
}

func TestCheckBookable(t *testing.T) {
	offered := []time.Time{day(2024, 7, 4, 0)}
	ok := day(2024, 7, 4, 9)
	wrong := day(2024, 7, 6, 9)

	assert.NoError(t, CheckBookable(&ok, offered))
	assert.ErrorIs(t, CheckBookable(nil, offered), ErrDateRequired)
	assert.ErrorIs(t, CheckBookable(&wrong, offered), ErrDateRequired)
	assert.ErrorIs(t, CheckBookable(&wrong, offered), apperrors.ErrInvalidInput)
	assert.Equal(t, 400, apperrors.HTTPStatus(ErrDateRequired))
}

func TestParseStartDates(t *testing.T) {
	got, err := ParseStartDates([]string{"2024-07-04", "2024-08-01T10:30:00Z", "Sep 15, 2024", " "})
	require.NoError(t, err)
	assert.Equal(t, []time.Time{day(2024, 7, 4, 0), day(2024, 8, 1, 0), day(2024, 9, 15, 0)}, got)
}

func TestParseStartDates_ReportsBadEntries(t *testing.T) {
	got, err := ParseStartDates([]string{"2024-07-04", "someday"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "someday")
	assert.Len(t, got, 1)
}
