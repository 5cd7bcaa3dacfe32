package explore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/TravelGo/internal/domain"
	apperrors "github.com/utafrali/TravelGo/pkg/errors"
)

func catalog() []domain.Package {
	return []domain.Package{
		{ID: "1", Title: "Goa Beach Escape", Destination: "Goa", Description: "Sun and sand", Price: 12000, Category: "Beach Getaways"},
		{ID: "2", Title: "Ladakh Road Trip", Destination: "Leh", Description: "High passes by bike", Price: 24000, Category: "Adventure & Trekking"},
		{ID: "3", Title: "Kerala Backwaters", Destination: "Alleppey", Description: "Houseboat stay in GOA style", Price: 18000, Category: "Wellness & Yoga Retreats"},
		{ID: "4", Title: "Maldives Overwater", Destination: "Male", Description: "Luxury villas", Price: 90000, Category: "Luxury Escapes"},
		{ID: "5", Title: "Rishikesh Retreat", Destination: "Rishikesh", Description: "Yoga by the Ganges", Price: 8000, Category: "Wellness & Yoga Retreats"},
	}
}

func ids(pkgs []domain.Package) []string {
	out := make([]string, 0, len(pkgs))
	for _, p := range pkgs {
		out = append(out, p.ID)
	}
	return out
}

func TestFilter_DefaultStateIsIdentity(t *testing.T) {
	in := catalog()
	out := Filter(in, DefaultFilterState())
	assert.Equal(t, in, out)
	assert.Empty(t, Filter(nil, DefaultFilterState()))
}

func TestFilter_Search(t *testing.T) {
	tests := []struct {
		term string
		want []string
	}{
		{"goa", []string{"1", "3"}},
		{"  LEH ", []string{"2"}},
		{"yoga by", []string{"5"}},
		{"by yoga", []string{}},
		{"road trip", []string{"2"}},
	}
	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			s := DefaultFilterState()
			s.Search = tt.term
			assert.Equal(t, tt.want, ids(Filter(catalog(), s)))
		})
	}
}

func TestFilter_PriceInclusiveOnBasePrice(t *testing.T) {
	s := DefaultFilterState()
	s.MinPrice, s.MaxPrice = 12000, 18000
	assert.Equal(t, []string{"1", "3"}, ids(Filter(catalog(), s)))

	discount := 50.0
	pkgs := []domain.Package{{ID: "d", Price: 30000, Discount: &discount}}
	s.MinPrice, s.MaxPrice = 0, 20000
	assert.Empty(t, Filter(pkgs, s))
}

func TestFilter_UntouchedMaxIsOpenEnded(t *testing.T) {
	s := DefaultFilterState()
	s.MinPrice = 20000
	assert.Equal(t, []string{"2", "4"}, ids(Filter(catalog(), s)))
}

func TestFilter_ExplicitMaxAtOrAboveCeilingIsEnforced(t *testing.T) {
	pkgs := []domain.Package{
		{ID: "cheap", Price: 20000},
		{ID: "edge", Price: 25000},
		{ID: "mid", Price: 30000},
		{ID: "pricey", Price: 90000},
	}
	tests := []struct {
		name     string
		min, max float64
		want     []string
	}{
		{"max above ceiling", 0, 50000, []string{"cheap", "edge", "mid"}},
		{"max at ceiling", 0, PriceCeiling, []string{"cheap", "edge"}},
		{"single point at ceiling", PriceCeiling, PriceCeiling, []string{"edge"}},
		{"zero value state", 0, 0, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(pkgs, FilterState{MinPrice: tt.min, MaxPrice: tt.max})
			assert.Equal(t, tt.want, ids(got))
			for _, p := range got {
				assert.LessOrEqual(t, p.Price, tt.max, p.ID)
			}
		})
	}
}

func TestFilter_Categories(t *testing.T) {
	s := DefaultFilterState()
	s.Categories = []string{"Wellness & Yoga Retreats", "Beach Getaways"}
	assert.Equal(t, []string{"1", "3", "5"}, ids(Filter(catalog(), s)))
}

func TestFilter_DestinationIsExactAndIndependent(t *testing.T) {
	s := DefaultFilterState()
	s.Destination = "goa"
	assert.Equal(t, []string{"1"}, ids(Filter(catalog(), s)))

	s.Search = "houseboat"
	assert.Empty(t, Filter(catalog(), s))
}

func TestFilter_AllPredicatesAnded(t *testing.T) {
	s := FilterState{
		Search:     "retreat",
		MinPrice:   5000,
		MaxPrice:   10000,
		Categories: []string{"Wellness & Yoga Retreats"},
	}
	assert.Equal(t, []string{"5"}, ids(Filter(catalog(), s)))
}

func TestFilter_ResultIsSubsetInOrder(t *testing.T) {
	in := catalog()
	states := []FilterState{
		{Search: "a", MaxPrice: 50000},
		{MinPrice: 10000, MaxPrice: PriceCeiling, Categories: []string{"Luxury Escapes"}},
		{Destination: "Rishikesh", MaxPrice: PriceCeiling},
	}
	for _, s := range states {
		out := Filter(in, s)
		pos := -1
		for _, p := range out {
			idx := -1
			for i := range in {
				if in[i].ID == p.ID {
					idx = i
				}
			}
			require.GreaterOrEqual(t, idx, 0, "fabricated package %s", p.ID)
			assert.Greater(t, idx, pos, "order not preserved")
			pos = idx
		}
	}
}

func TestFilterState_Validate(t *testing.T) {
	s := DefaultFilterState()
	s.Categories = []string{"beach-getaways", "solo travel"}
	require.NoError(t, s.Validate())
	assert.Equal(t, []string{"Beach Getaways", "Solo Travel"}, s.Categories)

	bad := FilterState{MinPrice: 500, MaxPrice: 100, Categories: []string{"Moon Walks"}}
	err := bad.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Fields, "max_price")
	assert.Contains(t, appErr.Fields, "category")
}
