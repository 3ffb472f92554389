package models

// GTFS route types observed in vehicle-position feeds. Anything else is
// treated as RouteTypeOther for scoring purposes.
const (
	RouteTypeTram  = 0
	RouteTypeTrain = 1
	RouteTypeBus   = 3
	RouteTypeOther = -1
)

// RouteTypeToMode maps the known GTFS route types onto transport modes.
var RouteTypeToMode = map[int]string{
	RouteTypeTram:  ModeTram,
	RouteTypeTrain: ModeTrain,
	RouteTypeBus:   ModeBus,
}

// VehiclePosition is a real-time transit vehicle observation. Read-only to
// the fusion engine; rows are written by the ingestion endpoint.
type VehiclePosition struct {
	VehicleID string  `json:"vehicle_id" db:"vehicle_id" binding:"required"`
	TripID    string  `json:"trip_id,omitempty" db:"trip_id"`
	RouteID   string  `json:"route_id,omitempty" db:"route_id"`
	Latitude  float64 `json:"latitude" db:"latitude"`
	Longitude float64 `json:"longitude" db:"longitude"`
	Bearing   float64 `json:"bearing,omitempty" db:"bearing"`
	Speed     float64 `json:"speed,omitempty" db:"speed"` // m/s
	Timestamp int64   `json:"timestamp" db:"timestamp"`   // Unix seconds
	RouteType int     `json:"route_type" db:"route_type"`
}

// Mode returns the transport mode implied by the vehicle's route type, or ""
// when the route type is unknown.
func (v *VehiclePosition) Mode() string {
	return RouteTypeToMode[v.RouteType]
}

// VehicleQuery describes a nearby-vehicle lookup against the transit store.
type VehicleQuery struct {
	CenterLat    float64 `form:"lat" binding:"required"`
	CenterLon    float64 `form:"lon" binding:"required"`
	RadiusMeters float64 `form:"radius"`
	WindowSecs   int64   `form:"window"` // how far back in time to look
}
