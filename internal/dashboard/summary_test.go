package dashboard

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/TravelGo/internal/domain"
	"github.com/utafrali/TravelGo/internal/pricing"
)

var base = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func booking(id, pkgID string, travelers int, ageHours int, buyer string) domain.BookingRecord {
	return domain.BookingRecord{
		Booking: domain.Booking{
			ID:        id,
			PackageID: pkgID,
			Travelers: travelers,
			Status:    domain.BookingStatusPending,
			CreatedAt: base.Add(-time.Duration(ageHours) * time.Hour),
		},
		Buyer: domain.Many([]domain.ProfileRef{{Name: buyer}}),
	}
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil, nil)
	assert.Zero(t, s.TotalPackages)
	assert.Zero(t, s.PendingApprovals)
	assert.Zero(t, s.TotalBookings)
	assert.Zero(t, s.TotalRevenue)
	require.NotNil(t, s.RecentBookings)
	assert.Empty(t, s.RecentBookings)

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"totalPackages":0,"pendingApprovals":0,"totalBookings":0,"totalRevenue":0,"recentBookings":[]}`, string(data))
}

func TestSummarize_CountsAndBasePriceRevenue(t *testing.T) {
	packages := []domain.Package{
		{ID: "A", Title: "Andaman Dive", Price: 100, IsApproved: true},
		{ID: "B", Title: "Bhutan Trails", Price: 200, IsApproved: false},
	}
	bookings := []domain.BookingRecord{booking("b1", "A", 2, 1, "Asha")}

	s := Summarize(packages, bookings)
	assert.Equal(t, 2, s.TotalPackages)
	assert.Equal(t, 1, s.PendingApprovals)
	assert.Equal(t, 1, s.TotalBookings)
	assert.Equal(t, 200.0, s.TotalRevenue)
	assert.Nil(t, s.DiscountedRevenue)

	require.Len(t, s.RecentBookings, 1)
	assert.Equal(t, RecentBooking{
		ID: "b1", PackageID: "A", PackageTitle: "Andaman Dive", UserName: "Asha",
		Travelers: 2, Status: "pending", CreatedAt: base.Add(-time.Hour),
	}, s.RecentBookings[0])
}

func TestSummarize_IgnoresForeignBookings(t *testing.T) {
	packages := []domain.Package{{ID: "A", Price: 100, IsApproved: true}}
	bookings := []domain.BookingRecord{
		booking("b1", "A", 1, 1, "Asha"),
		booking("b2", "other-seller", 5, 0, "Ravi"),
	}

	s := Summarize(packages, bookings)
	assert.Equal(t, 1, s.TotalBookings)
	assert.Equal(t, 100.0, s.TotalRevenue)
}

func TestSummarize_RecentBookingsNewestFirstStable(t *testing.T) {
	packages := []domain.Package{{ID: "A", Price: 10, IsApproved: true}}
	bookings := []domain.BookingRecord{
		booking("old", "A", 1, 48, "u"),
		booking("tie-1", "A", 1, 2, "u"),
		booking("newest", "A", 1, 0, "u"),
		booking("tie-2", "A", 1, 2, "u"),
		booking("mid", "A", 1, 5, "u"),
		booking("older", "A", 1, 24, "u"),
		booking("oldest", "A", 1, 72, "u"),
	}

	s := Summarize(packages, bookings)
	assert.Equal(t, 7, s.TotalBookings)

	got := make([]string, 0, len(s.RecentBookings))
	for _, rb := range s.RecentBookings {
		got = append(got, rb.ID)
	}
	assert.Equal(t, []string{"newest", "tie-1", "tie-2", "mid", "older"}, got)
}

func TestSummarize_MissingBuyer(t *testing.T) {
	packages := []domain.Package{{ID: "A", Price: 10, IsApproved: true}}
	b := booking("b1", "A", 1, 0, "")
	b.Buyer = domain.Related[domain.ProfileRef]{}

	s := Summarize(packages, []domain.BookingRecord{b})
	assert.Empty(t, s.RecentBookings[0].UserName)
}

func TestSummarizeWith_DiscountedRevenue(t *testing.T) {
	fifteen := 15.0
	packages := []domain.Package{{ID: "A", Price: 99, Discount: &fifteen, IsApproved: true}}
	bookings := []domain.BookingRecord{booking("b1", "A", 10, 0, "u")}

	unit := SummarizeWith(packages, bookings, Options{DiscountedRevenue: true, Rounding: pricing.RoundUnit})
	require.NotNil(t, unit.DiscountedRevenue)
	assert.Equal(t, 840.0, *unit.DiscountedRevenue)
	assert.Equal(t, 990.0, unit.TotalRevenue)

	total := SummarizeWith(packages, bookings, Options{DiscountedRevenue: true, Rounding: pricing.RoundTotal})
	assert.Equal(t, 841.0, *total.DiscountedRevenue)
	assert.Equal(t, 990.0, total.TotalRevenue)
}

func TestSummarizeWith_RecentLimit(t *testing.T) {
	packages := []domain.Package{{ID: "A", Price: 10, IsApproved: true}}
	bookings := []domain.BookingRecord{booking("1", "A", 1, 0, "u"), booking("2", "A", 1, 1, "u")}

	s := SummarizeWith(packages, bookings, Options{RecentLimit: 1})
	assert.Len(t, s.RecentBookings, 1)
}
