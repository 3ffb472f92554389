package spatial

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversine(t *testing.T) {
	// One degree of longitude at the equator: 2*pi*R/360.
	assert.InDelta(t, 111194.93, Haversine(0, 0, 0, 1), 1.0)
	assert.InDelta(t, 111194.93, Haversine(0, 0, 1, 0), 1.0)

	// Zero distance and symmetry.
	assert.Zero(t, Haversine(-37.81, 144.96, -37.81, 144.96))
	d1 := Haversine(-37.8183, 144.9671, -37.8136, 144.9631)
	d2 := Haversine(-37.8136, 144.9631, -37.8183, 144.9671)
	assert.InDelta(t, d1, d2, 1e-9)

	// Flinders Street to Melbourne Central is roughly 630 m.
	assert.InDelta(t, 630, d1, 50)

	// 0.001 degrees of longitude at Melbourne's latitude is about 88 m.
	assert.InDelta(t, 88, Haversine(-37.8136, 144.9631, -37.8136, 144.9641), 5)
}

func TestBearing(t *testing.T) {
	assert.InDelta(t, 90, Bearing(0, 0, 0, 1), 1e-9)
	assert.InDelta(t, 0, Bearing(0, 0, 1, 0), 1e-9)
	assert.InDelta(t, 180, Bearing(1, 0, 0, 0), 1e-9)
	assert.InDelta(t, 270, Bearing(0, 1, 0, 0), 1e-9)
}

func TestBoundingBoxContainsRadius(t *testing.T) {
	lat, lon, radius := -37.8183, 144.9671, 500.0
	minLat, maxLat, minLon, maxLon := BoundingBox(lat, lon, radius)

	assert.Less(t, minLat, lat)
	assert.Greater(t, maxLat, lat)
	assert.Less(t, minLon, lon)
	assert.Greater(t, maxLon, lon)

	// Half-height of the box matches the radius in degrees of latitude.
	halfHeight := (maxLat - minLat) / 2
	assert.InDelta(t, radius/111194.93, halfHeight, radius/111194.93*0.01)

	// Points on the circle stay inside the box.
	for _, bearing := range []float64{0, 90, 180, 270} {
		pLat, pLon := destination(lat, lon, radius, bearing)
		assert.GreaterOrEqual(t, pLat, minLat)
		assert.LessOrEqual(t, pLat, maxLat)
		assert.GreaterOrEqual(t, pLon, minLon)
		assert.LessOrEqual(t, pLon, maxLon)
	}
}

// destination offsets a point by distance and bearing using the flat-earth
// approximation, fine at test scale.
func destination(lat, lon, distanceMeters, bearingDeg float64) (float64, float64) {
	const metersPerDegree = 111194.93
	switch bearingDeg {
	case 0:
		return lat + distanceMeters/metersPerDegree, lon
	case 180:
		return lat - distanceMeters/metersPerDegree, lon
	case 90:
		return lat, lon + distanceMeters/(metersPerDegree*0.79) // cos(-37.8) ~ 0.79
	default:
		return lat, lon - distanceMeters/(metersPerDegree*0.79)
	}
}

func TestCentroid(t *testing.T) {
	lat, lon := Centroid([]float64{0, 2}, []float64{10, 20})
	assert.InDelta(t, 1, lat, 1e-12)
	assert.InDelta(t, 15, lon, 1e-12)

	lat, lon = Centroid(nil, nil)
	assert.Zero(t, lat)
	assert.Zero(t, lon)
}
