package fusion

import (
	"sort"

	"github.com/modesense/tmd-backend-go/internal/models"
	"github.com/modesense/tmd-backend-go/internal/spatial"
	"github.com/modesense/tmd-backend-go/internal/stats"
)

// Match score weights: distance and recency dominate, route type breaks near
// ties between vehicles of known and unknown kinds.
const (
	distanceWeight  = 0.4
	temporalWeight  = 0.4
	routeTypeWeight = 0.2
)

// gpsPoint is one sensor observation with a usable coordinate pair.
type gpsPoint struct {
	lat, lon  float64
	timestamp float64
}

func gpsPoints(samples []models.SensorSample) []gpsPoint {
	var points []gpsPoint
	for i := range samples {
		s := &samples[i]
		if s.HasGPS() {
			points = append(points, gpsPoint{lat: *s.Latitude, lon: *s.Longitude, timestamp: s.Timestamp})
		}
	}
	return points
}

// matchVehicles compares every candidate vehicle against every GPS point and
// keeps vehicles with at least one point inside both the spatial and the
// temporal threshold. Results are ranked by descending match score; the sort
// is stable so equal scores keep provider-returned order.
func (e *Engine) matchVehicles(points []gpsPoint, vehicles []models.VehiclePosition) []models.MatchedVehicle {
	if len(points) == 0 {
		return nil
	}

	var matched []models.MatchedVehicle
	for _, vehicle := range vehicles {
		var matchPoints []models.MatchPoint
		for _, p := range points {
			distance := spatial.Haversine(p.lat, p.lon, vehicle.Latitude, vehicle.Longitude)
			timeDiff := p.timestamp - float64(vehicle.Timestamp)
			if timeDiff < 0 {
				timeDiff = -timeDiff
			}
			if distance <= e.cfg.SpatialThreshold && timeDiff <= e.cfg.TemporalThreshold {
				matchPoints = append(matchPoints, models.MatchPoint{
					DistanceMeters:  distance,
					TimeDiffSeconds: timeDiff,
					Latitude:        p.lat,
					Longitude:       p.lon,
					Timestamp:       p.timestamp,
				})
			}
		}
		if len(matchPoints) == 0 {
			continue
		}
		matched = append(matched, models.MatchedVehicle{
			Vehicle:    vehicle,
			MatchScore: e.matchScore(matchPoints, &vehicle),
			Points:     matchPoints,
		})
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].MatchScore > matched[j].MatchScore
	})
	return matched
}

// matchScore combines spatial, temporal and route-type agreement into [0, 1].
func (e *Engine) matchScore(points []models.MatchPoint, vehicle *models.VehiclePosition) float64 {
	distances := make([]float64, len(points))
	timeDiffs := make([]float64, len(points))
	for i, p := range points {
		distances[i] = p.DistanceMeters
		timeDiffs[i] = p.TimeDiffSeconds
	}

	distanceScore := 1 - stats.Mean(distances)/e.cfg.SpatialThreshold
	if distanceScore < 0 {
		distanceScore = 0
	}
	temporalScore := 1 - stats.Mean(timeDiffs)/e.cfg.TemporalThreshold
	if temporalScore < 0 {
		temporalScore = 0
	}

	routeTypeScore := 0.5
	if vehicle.Mode() != "" {
		routeTypeScore = 1.0
	}

	return distanceWeight*distanceScore + temporalWeight*temporalScore + routeTypeWeight*routeTypeScore
}

// transitImpliedMode derives a mode by majority vote over the matched
// vehicles' route types. Every route type votes, mapped or not; when the
// winning type has no mode mapping (e.g. GTFS rail, type 2) there is no
// implied mode and the sensor mode stands. Ties go to the first-encountered
// route type in match order, which is reproducible because matching
// preserves provider order for equal scores.
func transitImpliedMode(matched []models.MatchedVehicle) string {
	counts := make(map[int]int)
	bestType := 0
	bestCount := 0
	for _, m := range matched {
		rt := m.Vehicle.RouteType
		counts[rt]++
		if counts[rt] > bestCount {
			bestCount = counts[rt]
			bestType = rt
		}
	}
	if bestCount == 0 {
		return ""
	}
	return models.RouteTypeToMode[bestType]
}

// transitConfidence scores the transit evidence: mostly the quality of the
// matches, partly how many vehicles corroborate (saturating at 3).
func transitConfidence(matched []models.MatchedVehicle) float64 {
	if len(matched) == 0 {
		return 0
	}

	scores := make([]float64, len(matched))
	for i, m := range matched {
		scores[i] = m.MatchScore
	}

	countScore := float64(len(matched)) / 3.0
	if countScore > 1.0 {
		countScore = 1.0
	}

	return 0.7*stats.Mean(scores) + 0.3*countScore
}
