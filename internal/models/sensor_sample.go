package models

import (
	"fmt"
	"math"
)

// SensorSample represents a single phone-sensor reading. Gyroscope and GPS
// fields are optional; absent values are nil rather than zero so the feature
// extractor can tell "no reading" from "reading of 0".
type SensorSample struct {
	Timestamp     float64  `json:"timestamp" binding:"required"` // Unix seconds
	AccelerationX float64  `json:"acceleration_x"`
	AccelerationY float64  `json:"acceleration_y"`
	AccelerationZ float64  `json:"acceleration_z"`
	GyroscopeX    *float64 `json:"gyroscope_x,omitempty"`
	GyroscopeY    *float64 `json:"gyroscope_y,omitempty"`
	GyroscopeZ    *float64 `json:"gyroscope_z,omitempty"`
	Latitude      *float64 `json:"latitude,omitempty"`
	Longitude     *float64 `json:"longitude,omitempty"`
	Speed         *float64 `json:"speed,omitempty"`   // m/s
	Heading       *float64 `json:"heading,omitempty"` // degrees
	Accuracy      *float64 `json:"accuracy,omitempty"`
}

// HasGPS reports whether the sample carries a complete coordinate pair.
func (s *SensorSample) HasGPS() bool {
	return s.Latitude != nil && s.Longitude != nil
}

// HasGyroscope reports whether any gyroscope axis is present.
func (s *SensorSample) HasGyroscope() bool {
	return s.GyroscopeX != nil || s.GyroscopeY != nil || s.GyroscopeZ != nil
}

// AccelMagnitude returns sqrt(x²+y²+z²) of the accelerometer reading.
func (s *SensorSample) AccelMagnitude() float64 {
	return math.Sqrt(s.AccelerationX*s.AccelerationX +
		s.AccelerationY*s.AccelerationY +
		s.AccelerationZ*s.AccelerationZ)
}

// GyroMagnitude returns the gyroscope magnitude, treating absent axes as 0.
func (s *SensorSample) GyroMagnitude() float64 {
	x := deref(s.GyroscopeX)
	y := deref(s.GyroscopeY)
	z := deref(s.GyroscopeZ)
	return math.Sqrt(x*x + y*y + z*z)
}

// Validate checks structural invariants on a sample. A latitude without a
// longitude (or vice versa) is malformed input, not a degraded reading.
func (s *SensorSample) Validate() error {
	if (s.Latitude == nil) != (s.Longitude == nil) {
		return fmt.Errorf("sample at t=%f: latitude and longitude must be present together", s.Timestamp)
	}
	return nil
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// Float64Ptr is a convenience for building optional sample fields.
func Float64Ptr(v float64) *float64 { return &v }
