package domain

import (
	"time"
)

// ItineraryDay is one day of a package itinerary.
type ItineraryDay struct {
	Day         int    `json:"day"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Activity    string `json:"activity"`
}

// Package is a sellable travel product. Buyers only ever see approved
// packages; the owning seller also sees unapproved ones.
type Package struct {
	ID                 string         `json:"id"`
	SellerID           string         `json:"seller_id"`
	Title              string         `json:"title"`
	Description        string         `json:"description"`
	Destination        string         `json:"destination"`
	Price              float64        `json:"price"`
	Discount           *float64       `json:"discount,omitempty"`
	Duration           int            `json:"duration"`
	Category           string         `json:"category"`
	Images             []string       `json:"images"`
	Itinerary          []ItineraryDay `json:"itinerary,omitempty"`
	Inclusion          []string       `json:"inclusion,omitempty"`
	Exclusion          []string       `json:"exclusion,omitempty"`
	CancellationPolicy []string       `json:"cancellation_policy,omitempty"`
	StartDates         []string       `json:"start_dates,omitempty"`
	IsApproved         bool           `json:"is_approved"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

// PackageFeatures is the optional amenity flag set of a package.
type PackageFeatures struct {
	PackageID      string `json:"package_id"`
	Accommodation  bool   `json:"accommodation"`
	Meals          bool   `json:"meals"`
	Transfers      bool   `json:"transfers"`
	TripCaptain    bool   `json:"trip_captain"`
	FirstAid       bool   `json:"first_aid"`
	LuggageSupport bool   `json:"luggage_support"`
	EntryTickets   bool   `json:"entry_tickets"`
	Camping        bool   `json:"camping"`
	TrekLead       bool   `json:"trek_lead"`
}

// PackageRef is the slice of a package that bookings are joined with.
type PackageRef struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Price    float64  `json:"price"`
	Discount *float64 `json:"discount,omitempty"`
	SellerID string   `json:"seller_id"`
}

// PackageDetail is the package page view: the package plus its optional
// enrichment. Features, Reviews and ReviewSummary are nil when unavailable.
type PackageDetail struct {
	Package       *Package         `json:"package"`
	Features      *PackageFeatures `json:"features"`
	Reviews       []Review         `json:"reviews"`
	ReviewSummary *ReviewSummary   `json:"review_summary"`
}
