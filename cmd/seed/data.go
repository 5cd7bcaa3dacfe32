package main

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/utafrali/TravelGo/internal/domain"
	"github.com/utafrali/TravelGo/pkg/slug"
)

// seedNamespace scopes the name-derived ids so they never collide with ids
// issued by the identity provider.
var seedNamespace = uuid.MustParse("6f1d2b8e-3c4a-4e7f-9a51-2d8c0b7e4f13")

func stableID(kind, name string) string {
	return uuid.NewSHA1(seedNamespace, []byte(kind+":"+name)).String()
}

type seedProfile struct {
	ID          string
	Email       string
	Name        string
	UserName    string
	Role        string
	CompanyName *string
}

func demoProfiles() []seedProfile {
	company := "Sunny Trips Pvt Ltd"
	out := []seedProfile{
		{Email: "trips@example.com", Name: "Sunny Trips", Role: domain.RoleSeller, CompanyName: &company},
		{Email: "asha@example.com", Name: "Asha", Role: domain.RoleUser},
		{Email: "ravi@example.com", Name: "Ravi", Role: domain.RoleUser},
	}
	for i := range out {
		out[i].ID = stableID("profile", out[i].Email)
		out[i].UserName = domain.DefaultUserName(out[i].Email)
	}
	return out
}

type itineraryDay struct {
	Day         int    `json:"day"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Activity    string `json:"activity"`
}

type seedPackage struct {
	ID                 string
	SellerID           string
	Title              string
	Description        string
	Destination        string
	Price              float64
	Discount           *float64
	Duration           int
	Category           string
	Images             []string
	Itinerary          []itineraryDay
	Inclusion          []string
	Exclusion          []string
	CancellationPolicy []string
	StartDates         []string
	Approved           bool
	// accommodation, meals, transfers, trip_captain, first_aid,
	// luggage_support, entry_tickets, camping, trek_lead
	Features [9]bool
}

var destinations = []struct {
	name     string
	category string
}{
	{"Goa", "Beach Getaways"},
	{"Manali", "Mountain Escapes"},
	{"Jaisalmer", "Desert Adventures"},
	{"Jim Corbett", "Forest & Wildlife"},
	{"Andaman", "Island Holidays"},
	{"Munnar", "Hill Stations"},
	{"Kedarkantha", "Adventure & Trekking"},
	{"Hampi", "Cultural Tours"},
	{"Varanasi", "Pilgrimage & Spiritual"},
	{"Rishikesh", "Wellness & Yoga Retreats"},
	{"Udaipur", "Luxury Escapes"},
	{"Pondicherry", "Budget Travel"},
	{"Ooty", "Family Friendly"},
	{"Spiti", "Solo Travel"},
	{"Lonavala", "Weekend Getaways"},
}

var titleStyles = []string{"Escape", "Explorer", "Retreat", "Trail", "Getaway", "Discovery"}

var activities = []string{"Sightseeing", "Local food walk", "Guided trek", "Boat ride", "Free time", "Cultural show"}

// generatePackages builds n packages for sellerID. Roughly one in eight is left
// unapproved so the dashboard shows pending approvals.
func generatePackages(rng *rand.Rand, sellerID string, n int, now time.Time) []seedPackage {
	out := make([]seedPackage, 0, n)
	for i := 0; i < n; i++ {
		dest := destinations[i%len(destinations)]
		style := titleStyles[rng.Intn(len(titleStyles))]
		title := fmt.Sprintf("%s %s %d", dest.name, style, i/len(destinations)+1)
		duration := 2 + rng.Intn(7)

		p := seedPackage{
			ID:          stableID("package", title),
			SellerID:    sellerID,
			Title:       title,
			Description: fmt.Sprintf("%d days in %s with hand-picked stays and a local guide.", duration, dest.name),
			Destination: dest.name,
			Price:       float64(2000 + rng.Intn(46)*500),
			Duration:    duration,
			Category:    dest.category,
			Inclusion:   []string{"Stay", "Breakfast", "Local transfers"},
			Exclusion:   []string{"Flights", "Personal expenses"},
			CancellationPolicy: []string{
				"Full refund up to 15 days before departure",
				"50% refund up to 7 days before departure",
			},
			Approved: i%8 != 7,
		}
		if rng.Intn(3) > 0 {
			d := float64(5 * (1 + rng.Intn(6)))
			p.Discount = &d
		}
		for j := 0; j < 3; j++ {
			p.Images = append(p.Images, fmt.Sprintf("https://picsum.photos/seed/%s-%d/1200/800", slug.Generate(title), j+1))
		}
		for day := 1; day <= duration; day++ {
			p.Itinerary = append(p.Itinerary, itineraryDay{
				Day:         day,
				Title:       fmt.Sprintf("Day %d in %s", day, dest.name),
				Description: "Morning departure after breakfast.",
				Activity:    activities[rng.Intn(len(activities))],
			})
		}
		// Departures every other week starting two to six weeks out.
		first := now.AddDate(0, 0, 14+rng.Intn(28))
		for k := 0; k < 4; k++ {
			p.StartDates = append(p.StartDates, first.AddDate(0, 0, 14*k).Format(time.DateOnly))
		}
		for f := range p.Features {
			p.Features[f] = rng.Intn(2) == 0
		}
		out = append(out, p)
	}
	return out
}
