package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/modesense/tmd-backend-go/internal/models"
	"github.com/modesense/tmd-backend-go/internal/spatial"
)

// VehicleRepository handles database operations for transit vehicle positions
type VehicleRepository struct {
	db *sql.DB
}

// NewVehicleRepository creates a new vehicle repository
func NewVehicleRepository(db *sql.DB) *VehicleRepository {
	return &VehicleRepository{db: db}
}

// UpsertPositions stores a batch of vehicle observations. A repeated
// (vehicle_id, timestamp) pair replaces the earlier row, so feeds can be
// replayed safely.
func (r *VehicleRepository) UpsertPositions(ctx context.Context, positions []models.VehiclePosition) error {
	if len(positions) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO vehicle_positions
			(vehicle_id, trip_id, route_id, route_type, latitude, longitude, bearing, speed, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, p := range positions {
		_, err := stmt.ExecContext(ctx,
			p.VehicleID, p.TripID, p.RouteID, p.RouteType,
			p.Latitude, p.Longitude, p.Bearing, p.Speed, p.Timestamp)
		if err != nil {
			return fmt.Errorf("failed to upsert vehicle %s: %w", p.VehicleID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit upsert: %w", err)
	}
	return nil
}

// Nearby returns the latest observation per vehicle within the radius and
// time window, closest first. The lat/lon index serves a bounding-box
// prefilter; the exact haversine distance decides inclusion.
func (r *VehicleRepository) Nearby(ctx context.Context, q models.VehicleQuery, now int64) ([]models.VehiclePosition, error) {
	minLat, maxLat, minLon, maxLon := spatial.BoundingBox(q.CenterLat, q.CenterLon, q.RadiusMeters)
	since := now - q.WindowSecs

	rows, err := r.db.QueryContext(ctx, `
		SELECT vehicle_id, trip_id, route_id, route_type, latitude, longitude, bearing, speed, MAX(timestamp)
		FROM vehicle_positions
		WHERE latitude BETWEEN ? AND ?
		  AND longitude BETWEEN ? AND ?
		  AND timestamp >= ?
		GROUP BY vehicle_id
	`, minLat, maxLat, minLon, maxLon, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query vehicle positions: %w", err)
	}
	defer rows.Close()

	var nearby []models.VehiclePosition
	for rows.Next() {
		var p models.VehiclePosition
		if err := rows.Scan(&p.VehicleID, &p.TripID, &p.RouteID, &p.RouteType,
			&p.Latitude, &p.Longitude, &p.Bearing, &p.Speed, &p.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan vehicle position: %w", err)
		}
		if spatial.Haversine(q.CenterLat, q.CenterLon, p.Latitude, p.Longitude) <= q.RadiusMeters {
			nearby = append(nearby, p)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate vehicle positions: %w", err)
	}

	sort.SliceStable(nearby, func(i, j int) bool {
		di := spatial.Haversine(q.CenterLat, q.CenterLon, nearby[i].Latitude, nearby[i].Longitude)
		dj := spatial.Haversine(q.CenterLat, q.CenterLon, nearby[j].Latitude, nearby[j].Longitude)
		return di < dj
	})
	return nearby, nil
}

// DeleteOlderThan removes observations past their usefulness for matching.
func (r *VehicleRepository) DeleteOlderThan(ctx context.Context, cutoff int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM vehicle_positions WHERE timestamp < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale positions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted positions: %w", err)
	}
	return n, nil
}

// UpsertRoute stores or updates a transit route definition.
func (r *VehicleRepository) UpsertRoute(ctx context.Context, routeID, shortName, longName string, routeType int) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO routes (route_id, route_short_name, route_long_name, route_type)
		VALUES (?, ?, ?, ?)
	`, routeID, shortName, longName, routeType)
	if err != nil {
		return fmt.Errorf("failed to upsert route %s: %w", routeID, err)
	}
	return nil
}

// RouteType looks up the GTFS route type for a route, returning
// models.RouteTypeOther when the route is unknown.
func (r *VehicleRepository) RouteType(ctx context.Context, routeID string) (int, error) {
	var routeType int
	err := r.db.QueryRowContext(ctx, "SELECT route_type FROM routes WHERE route_id = ?", routeID).Scan(&routeType)
	if err == sql.ErrNoRows {
		return models.RouteTypeOther, nil
	}
	if err != nil {
		return models.RouteTypeOther, fmt.Errorf("failed to query route %s: %w", routeID, err)
	}
	return routeType, nil
}
