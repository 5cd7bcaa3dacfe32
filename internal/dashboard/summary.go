// Package dashboard aggregates a seller's packages and bookings into the
// seller dashboard summary.
package dashboard

import (
	"slices"
	"time"

	"github.com/utafrali/TravelGo/internal/domain"
	"github.com/utafrali/TravelGo/internal/pricing"
)

// RecentLimit is how many bookings the summary lists.
const RecentLimit = 5

// RecentBooking is the denormalized booking row shown on the dashboard.
type RecentBooking struct {
	ID           string    `json:"id"`
	PackageID    string    `json:"packageId"`
	PackageTitle string    `json:"packageTitle"`
	UserName     string    `json:"userName"`
	Travelers    int       `json:"travelers"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Summary is the seller dashboard payload.
type Summary struct {
	TotalPackages     int             `json:"totalPackages"`
	PendingApprovals  int             `json:"pendingApprovals"`
	TotalBookings     int             `json:"totalBookings"`
	TotalRevenue      float64         `json:"totalRevenue"`
	DiscountedRevenue *float64        `json:"discountedRevenue,omitempty"`
	RecentBookings    []RecentBooking `json:"recentBookings"`
}

// Options tunes SummarizeWith.
type Options struct {
	// DiscountedRevenue also sums what buyers were quoted after discounts.
	DiscountedRevenue bool
	Rounding          pricing.RoundingPolicy
	RecentLimit       int
}

// Summarize aggregates one seller's packages and the bookings against them.
// Revenue is base price times travelers.
func Summarize(packages []domain.Package, bookings []domain.BookingRecord) Summary {
	return SummarizeWith(packages, bookings, Options{RecentLimit: RecentLimit})
}

// SummarizeWith is Summarize with options. Bookings whose package is not in
// packages are ignored, so a caller can pass an unfiltered booking list.
func SummarizeWith(packages []domain.Package, bookings []domain.BookingRecord, opts Options) Summary {
	if opts.RecentLimit <= 0 {
		opts.RecentLimit = RecentLimit
	}

	owned := make(map[string]*domain.Package, len(packages))
	s := Summary{TotalPackages: len(packages), RecentBookings: []RecentBooking{}}
	for i := range packages {
		owned[packages[i].ID] = &packages[i]
		if !packages[i].IsApproved {
			s.PendingApprovals++
		}
	}

	var discounted float64
	qualifying := make([]domain.BookingRecord, 0, len(bookings))
	for _, b := range bookings {
		pkg, ok := owned[b.PackageID]
		if !ok {
			continue
		}
		qualifying = append(qualifying, b)
		s.TotalRevenue += pkg.Price * float64(b.Travelers)
		if opts.DiscountedRevenue {
			discounted += pricing.CalculateWith(opts.Rounding, pkg.Price, pkg.Discount, b.Travelers).DiscountedTotal
		}
	}
	s.TotalBookings = len(qualifying)
	if opts.DiscountedRevenue {
		s.DiscountedRevenue = &discounted
	}

	slices.SortStableFunc(qualifying, func(a, b domain.BookingRecord) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	for _, b := range qualifying[:min(opts.RecentLimit, len(qualifying))] {
		s.RecentBookings = append(s.RecentBookings, project(b, owned[b.PackageID]))
	}
	return s
}

func project(b domain.BookingRecord, pkg *domain.Package) RecentBooking {
	rb := RecentBooking{
		ID:           b.ID,
		PackageID:    pkg.ID,
		PackageTitle: pkg.Title,
		Travelers:    b.Travelers,
		Status:       b.Status,
		CreatedAt:    b.CreatedAt,
	}
	if buyer, ok := b.Buyer.First(); ok {
		rb.UserName = buyer.Name
	}
	return rb
}
