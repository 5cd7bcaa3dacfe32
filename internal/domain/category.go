package domain

import (
	"strings"

	"github.com/utafrali/TravelGo/pkg/slug"
)

// Category is a catalog category as exposed to clients.
type Category struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// CategoryNames is the fixed category catalog in display order.
var CategoryNames = []string{
	"Beach Getaways",
	"Mountain Escapes",
	"Desert Adventures",
	"Forest & Wildlife",
	"Island Holidays",
	"Hill Stations",
	"Adventure & Trekking",
	"Cultural Tours",
	"Pilgrimage & Spiritual",
	"Wellness & Yoga Retreats",
	"Luxury Escapes",
	"Budget Travel",
	"Family Friendly",
	"Solo Travel",
	"Weekend Getaways",
}

var categoryIndex = func() map[string]string {
	m := make(map[string]string, len(CategoryNames)*2)
	for _, name := range CategoryNames {
		m[strings.ToLower(name)] = name
		m[slug.Generate(name)] = name
	}
	return m
}()

// Categories returns the catalog with slugs.
func Categories() []Category {
	out := make([]Category, 0, len(CategoryNames))
	for _, name := range CategoryNames {
		out = append(out, Category{Name: name, Slug: slug.Generate(name)})
	}
	return out
}

// ResolveCategory maps a category name (any case) or slug to its canonical
// name. ok is false when it is not in the catalog.
func ResolveCategory(s string) (name string, ok bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	if name, ok = categoryIndex[key]; ok {
		return name, true
	}
	name, ok = categoryIndex[slug.Generate(key)]
	return name, ok
}
