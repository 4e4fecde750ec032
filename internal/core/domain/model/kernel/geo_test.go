package kernel_test

import (
	"testing"

	"dispatch/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGeoPoint(t *testing.T) {
	t.Run("should create valid point", func(t *testing.T) {
		p, err := kernel.NewGeoPoint(-31.3876594, -57.9628518)

		require.NoError(t, err)
		require.NoError(t, p.Validate())
		assert.InDelta(t, -31.3876594, p.Lat(), 1e-9)
		assert.InDelta(t, -57.9628518, p.Lon(), 1e-9)
	})

	t.Run("should accept boundary values", func(t *testing.T) {
		for _, tc := range []struct{ lat, lon float64 }{
			{90, 180},
			{-90, -180},
			{0, 0},
		} {
			p, err := kernel.NewGeoPoint(tc.lat, tc.lon)
			require.NoError(t, err)
			require.NoError(t, p.Validate())
		}
	})

	t.Run("should fail with latitude out of range", func(t *testing.T) {
		_, err := kernel.NewGeoPoint(91, 0)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "lat")
	})

	t.Run("should fail with longitude out of range", func(t *testing.T) {
		_, err := kernel.NewGeoPoint(0, -180.5)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "lon")
	})

	t.Run("zero value fails validation", func(t *testing.T) {
		var p kernel.GeoPoint

		require.Error(t, p.Validate())
		assert.Contains(t, p.Validate().Error(), "geo point must be created")
	})
}

func TestGeoPointIsEqual(t *testing.T) {
	t.Run("equal points", func(t *testing.T) {
		p1, _ := kernel.NewGeoPoint(-31.39, -57.96)
		p2, _ := kernel.NewGeoPoint(-31.39, -57.96)

		equal, err := p1.IsEqual(p2)
		require.NoError(t, err)
		assert.True(t, equal)
	})

	t.Run("different points", func(t *testing.T) {
		p1, _ := kernel.NewGeoPoint(-31.39, -57.96)
		p2, _ := kernel.NewGeoPoint(-31.38, -57.96)

		equal, err := p1.IsEqual(p2)
		require.NoError(t, err)
		assert.False(t, equal)
	})

	t.Run("unconstructed point fails", func(t *testing.T) {
		p1, _ := kernel.NewGeoPoint(-31.39, -57.96)
		var p2 kernel.GeoPoint

		_, err := p1.IsEqual(p2)
		require.Error(t, err)
	})
}

func TestGeoPointHaversine(t *testing.T) {
	t.Run("distance to self is zero", func(t *testing.T) {
		p, _ := kernel.NewGeoPoint(-31.3876594, -57.9628518)

		d, err := p.Haversine(p)
		require.NoError(t, err)
		assert.InDelta(t, 0, d, 1e-9)
	})

	t.Run("one degree of latitude is about 111 km", func(t *testing.T) {
		p1, _ := kernel.NewGeoPoint(0, 0)
		p2, _ := kernel.NewGeoPoint(1, 0)

		d, err := p1.Haversine(p2)
		require.NoError(t, err)
		assert.InDelta(t, 111.19, d, 0.1)
	})

	t.Run("distance is symmetric", func(t *testing.T) {
		p1, _ := kernel.NewGeoPoint(-31.3876594, -57.9628518)
		p2, _ := kernel.NewGeoPoint(-31.3715, -57.958)

		d1, err := p1.Haversine(p2)
		require.NoError(t, err)
		d2, err := p2.Haversine(p1)
		require.NoError(t, err)
		assert.InDelta(t, d1, d2, 1e-9)
	})

	t.Run("unconstructed point fails", func(t *testing.T) {
		p1, _ := kernel.NewGeoPoint(0, 0)
		var p2 kernel.GeoPoint

		_, err := p1.Haversine(p2)
		require.Error(t, err)
	})
}
