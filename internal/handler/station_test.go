package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gowes/bike-rental-api/internal/model"
	"github.com/gowes/bike-rental-api/internal/repository"
)

func ptr(f float64) *float64 { return &f }

func TestHaversineKm(t *testing.T) {
	// One degree of latitude is about 111.19 km.
	assert.InDelta(t, 111.19, haversineKm(0, 0, 1, 0), 0.5)
	assert.Zero(t, haversineKm(-7.2819, 112.7945, -7.2819, 112.7945))
}

func TestNearbyFromFiltersAndSorts(t *testing.T) {
	sums := []repository.StationSummary{
		{Station: model.Station{ID: 1, Nama: "Far", Status: "ACTIVE", Latitude: ptr(1.0), Longitude: ptr(0.0)}, AvailableBikes: 4, TotalBikes: 6},
		{Station: model.Station{ID: 2, Nama: "Near", Status: "ACTIVE", Latitude: ptr(0.01), Longitude: ptr(0.0)}, AvailableBikes: 2, TotalBikes: 5},
		{Station: model.Station{ID: 3, Nama: "Unmapped", Status: "ACTIVE"}, AvailableBikes: 1, TotalBikes: 1},
		{Station: model.Station{ID: 4, Nama: "Here", Status: "ACTIVE", Latitude: ptr(0.0), Longitude: ptr(0.0)}, AvailableBikes: 3, TotalBikes: 3},
	}

	got := nearbyFrom(sums, 0, 0, 5)
	require.Len(t, got, 2)
	assert.Equal(t, uint64(4), got[0].ID)
	assert.Equal(t, uint64(2), got[1].ID)
	for _, s := range got {
		assert.LessOrEqual(t, s.DistanceKM, 5.0)
	}
	assert.Equal(t, 3, got[0].AvailableBikes)
}
