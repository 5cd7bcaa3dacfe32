package domain

import (
	"time"
)

// Review is buyer feedback on a package.
type Review struct {
	ID             string        `json:"id"`
	PackageID      string        `json:"package_id"`
	ProfileID      string        `json:"profile_id"`
	Rating         int           `json:"rating"`
	ReviewText     string        `json:"review_text"`
	IdempotencyKey string        `json:"-"`
	CreatedAt      time.Time     `json:"created_at"`
	Author         *ReviewAuthor `json:"author,omitempty"`
}

// ReviewAuthor is the public face of a reviewer.
type ReviewAuthor struct {
	UserName  string  `json:"user_name"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

// ReviewSummary contains aggregate review statistics for a package.
type ReviewSummary struct {
	AverageRating float64     `json:"average_rating"`
	MedianRating  float64     `json:"median_rating"`
	TotalCount    int         `json:"total_count"`
	Distribution  map[int]int `json:"distribution"`
}

// Rating bounds.
const (
	MinRating = 1
	MaxRating = 5
)
