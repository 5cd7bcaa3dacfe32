package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelated_UnmarshalShapes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []PackageRef
	}{
		{"object", `{"id":"p-1","title":"Goa"}`, []PackageRef{{ID: "p-1", Title: "Goa"}}},
		{"array", `[{"id":"p-1","title":"Goa"},{"id":"p-2","title":"Leh"}]`, []PackageRef{{ID: "p-1", Title: "Goa"}, {ID: "p-2", Title: "Leh"}}},
		{"empty array", `[]`, []PackageRef{}},
		{"null", `null`, []PackageRef{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r Related[PackageRef]
			require.NoError(t, json.Unmarshal([]byte(tt.input), &r))
			assert.Equal(t, tt.want, r.All())
		})
	}
}

func TestRelated_First(t *testing.T) {
	_, ok := Related[ProfileRef]{}.First()
	assert.False(t, ok)

	p, ok := Many([]ProfileRef{{Name: "Asha"}, {Name: "Ravi"}}).First()
	require.True(t, ok)
	assert.Equal(t, "Asha", p.Name)

	p, ok = One(ProfileRef{Name: "Meera"}).First()
	require.True(t, ok)
	assert.Equal(t, "Meera", p.Name)
}

func TestRelated_MarshalAlwaysList(t *testing.T) {
	rec := BookingRecord{
		Booking: Booking{ID: "b-1", Travelers: 2, CreatedAt: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)},
		Package: One(PackageRef{ID: "p-1"}),
	}
	data, err := json.Marshal(rec)
	require.NoError(t, err)

	var out map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &out))
	assert.JSONEq(t, `[{"id":"p-1","title":"","price":0,"seller_id":""}]`, string(out["package"]))
	assert.JSONEq(t, `null`, string(out["selected_date"]))
	assert.JSONEq(t, `[]`, string(out["buyer"]))
}

func TestCategories(t *testing.T) {
	cats := Categories()
	require.Len(t, cats, 15)
	assert.Equal(t, Category{Name: "Beach Getaways", Slug: "beach-getaways"}, cats[0])
	assert.Equal(t, "forest-and-wildlife", cats[3].Slug)
}

func TestResolveCategory(t *testing.T) {
	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"Beach Getaways", "Beach Getaways", true},
		{"beach getaways", "Beach Getaways", true},
		{"wellness-and-yoga-retreats", "Wellness & Yoga Retreats", true},
		{" Solo Travel ", "Solo Travel", true},
		{"Space Tourism", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ResolveCategory(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDefaultUserName(t *testing.T) {
	assert.Equal(t, "asha.k", DefaultUserName("asha.k@example.com"))
	assert.Equal(t, "nodomain", DefaultUserName("nodomain"))
}

func TestIsValidRole(t *testing.T) {
	assert.True(t, IsValidRole(RoleUser))
	assert.True(t, IsValidRole(RoleSeller))
	assert.False(t, IsValidRole("admin"))
}

func TestDate_JSON(t *testing.T) {
	d := NewDate(time.Date(2024, 7, 4, 15, 30, 0, 0, time.UTC))
	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2024-07-04"`, string(data))

	zero, err := json.Marshal(Date{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(zero))

	for _, in := range []string{`"2024-07-04"`, `"2024-07-04T23:10:00Z"`} {
		var got Date
		require.NoError(t, json.Unmarshal([]byte(in), &got), in)
		assert.Equal(t, "2024-07-04", got.String())
	}

	var bad Date
	assert.Error(t, json.Unmarshal([]byte(`"next tuesday"`), &bad))
}

func TestNewDate_UsesUTCDay(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	d := NewDate(time.Date(2024, 7, 5, 2, 0, 0, 0, ist))
	assert.Equal(t, "2024-07-04", d.String())
}
