package domain

import (
	"time"
)

// Booking statuses. Only pending is ever written by this service.
const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
)

// Booking is a buyer's reservation against one package.
type Booking struct {
	ID             string    `json:"id"`
	PackageID      string    `json:"package_id"`
	UserID         string    `json:"user_id"`
	Destination    string    `json:"destination"`
	Travelers      int       `json:"travelers"`
	SelectedDate   Date      `json:"selected_date"`
	Status         string    `json:"status"`
	IdempotencyKey string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
}

// BookingRecord is a booking joined with its package and buyer as read from
// the store. The joins may come back as a single row or a list depending on
// the query shape; see Related.
type BookingRecord struct {
	Booking
	Package Related[PackageRef] `json:"package"`
	Buyer   Related[ProfileRef] `json:"buyer"`
}

// ProfileRef is the slice of a profile that bookings are joined with.
type ProfileRef struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	UserName string `json:"user_name"`
}

// BookingExportRow is one line of the seller bookings CSV.
type BookingExportRow struct {
	BookingID    string  `csv:"booking_id"`
	CreatedAt    string  `csv:"created_at"`
	PackageID    string  `csv:"package_id"`
	PackageTitle string  `csv:"package_title"`
	BuyerName    string  `csv:"buyer_name"`
	BuyerEmail   string  `csv:"buyer_email"`
	Destination  string  `csv:"destination"`
	SelectedDate string  `csv:"selected_date"`
	Travelers    int     `csv:"travelers"`
	Status       string  `csv:"status"`
	UnitPrice    float64 `csv:"unit_price"`
	Revenue      float64 `csv:"revenue"`
}
