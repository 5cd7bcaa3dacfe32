// Package explore filters the approved package catalog for the explore page.
package explore

import (
	"fmt"
	"math"
	"strings"

	"github.com/utafrali/TravelGo/internal/domain"
	apperrors "github.com/utafrali/TravelGo/pkg/errors"
)

// Price slider bounds. The slider's top position reads "PriceCeiling and
// above", so the untouched state has no upper bound. A MaxPrice the caller
// sets is always enforced, whatever its value.
const (
	PriceFloor   = 0
	PriceCeiling = 25000
)

// FilterState is the explore page filter.
type FilterState struct {
	Search      string
	MinPrice    float64
	MaxPrice    float64
	Categories  []string
	Destination string
}

// DefaultFilterState returns the state of an untouched explore page.
func DefaultFilterState() FilterState {
	return FilterState{MinPrice: PriceFloor, MaxPrice: math.Inf(1)}
}

// Validate checks the price range and canonicalizes category names, so
// "beach-getaways" and "Beach Getaways" select the same packages.
func (s *FilterState) Validate() error {
	fields := map[string]string{}
	if s.MinPrice < 0 {
		fields["min_price"] = "must be at least 0"
	}
	if s.MinPrice > s.MaxPrice {
		fields["max_price"] = fmt.Sprintf("must be at least min_price (%g)", s.MinPrice)
	}
	for i, c := range s.Categories {
		name, ok := domain.ResolveCategory(c)
		if !ok {
			fields["category"] = fmt.Sprintf("unknown category %q", c)
			continue
		}
		s.Categories[i] = name
	}
	if len(fields) > 0 {
		err := apperrors.Validation("invalid filter")
		err.Fields = fields
		return err
	}
	return nil
}

// Filter returns the packages matching every active predicate, in input
// order. It never adds, copies or reorders packages. Callers pass approved
// packages only.
func Filter(packages []domain.Package, state FilterState) []domain.Package {
	m := newMatcher(state)
	if m.isIdentity() {
		return packages
	}

	out := make([]domain.Package, 0, len(packages))
	for _, p := range packages {
		if m.match(&p) {
			out = append(out, p)
		}
	}
	return out
}

type matcher struct {
	term        string
	min         float64
	max         float64
	categories  map[string]struct{}
	destination string
}

func newMatcher(s FilterState) matcher {
	m := matcher{
		term:        strings.ToLower(strings.TrimSpace(s.Search)),
		min:         s.MinPrice,
		max:         s.MaxPrice,
		destination: strings.TrimSpace(s.Destination),
	}
	if len(s.Categories) > 0 {
		m.categories = make(map[string]struct{}, len(s.Categories))
		for _, c := range s.Categories {
			m.categories[c] = struct{}{}
		}
	}
	return m
}

func (m matcher) isIdentity() bool {
	return m.term == "" && m.min <= PriceFloor && math.IsInf(m.max, 1) && m.categories == nil && m.destination == ""
}

func (m matcher) match(p *domain.Package) bool {
	if m.term != "" &&
		!strings.Contains(strings.ToLower(p.Title), m.term) &&
		!strings.Contains(strings.ToLower(p.Destination), m.term) &&
		!strings.Contains(strings.ToLower(p.Description), m.term) {
		return false
	}
	// Base price, not the discounted one.
	if p.Price < m.min || p.Price > m.max {
		return false
	}
	if m.categories != nil {
		if _, ok := m.categories[p.Category]; !ok {
			return false
		}
	}
	if m.destination != "" && !strings.EqualFold(p.Destination, m.destination) {
		return false
	}
	return true
}
