package migrations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/TravelGo/pkg/database"
)

func TestFS_AppliesInDependencyOrder(t *testing.T) {
	names, err := database.PendingMigrations(FS)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"001_create_profiles.up.sql",
		"002_create_packages.up.sql",
		"003_create_bookings.up.sql",
		"004_create_reviews.up.sql",
	}, names)
}
