package pricing

import (
	apperrors "github.com/utafrali/TravelGo/pkg/errors"
)

// MinTravelers is the smallest valid party size.
const MinTravelers = 1

// DecrementTravelers lowers n by one, never below MinTravelers.
func DecrementTravelers(n int) int {
	return max(MinTravelers, n-1)
}

// IncrementTravelers raises n by one. There is no upper bound.
func IncrementTravelers(n int) int {
	return n + 1
}

// ValidateTravelers rejects a party smaller than MinTravelers.
func ValidateTravelers(n int) error {
	if n < MinTravelers {
		err := apperrors.Validation("travelers must be at least 1")
		err.Fields = map[string]string{"travelers": "must be at least 1"}
		return err
	}
	return nil
}
