package fusion

import "github.com/modesense/tmd-backend-go/internal/models"

// Acceleration pattern labels for mode envelopes.
const (
	PatternSmooth    = "smooth"
	PatternModerate  = "moderate"
	PatternVariable  = "variable"
	PatternIrregular = "irregular"
)

// ModeCharacteristics is the physical envelope a transport mode is expected
// to stay within. Speeds are m/s.
type ModeCharacteristics struct {
	MinSpeed            float64
	MaxSpeed            float64
	TypicalSpeed        float64
	AccelerationPattern string
	StopsFrequent       bool
}

// DefaultCharacteristics returns the per-mode envelope table. Stationary has
// no entry: plausibility validation is skipped for modes without one.
func DefaultCharacteristics() map[string]ModeCharacteristics {
	return map[string]ModeCharacteristics{
		models.ModeBus: {
			MinSpeed:            5.0,
			MaxSpeed:            60.0,
			TypicalSpeed:        25.0,
			AccelerationPattern: PatternModerate,
			StopsFrequent:       true,
		},
		models.ModeTrain: {
			MinSpeed:            10.0,
			MaxSpeed:            100.0,
			TypicalSpeed:        50.0,
			AccelerationPattern: PatternSmooth,
		},
		models.ModeTram: {
			MinSpeed:            5.0,
			MaxSpeed:            40.0,
			TypicalSpeed:        20.0,
			AccelerationPattern: PatternModerate,
			StopsFrequent:       true,
		},
		models.ModeCar: {
			MinSpeed:            5.0,
			MaxSpeed:            80.0,
			TypicalSpeed:        30.0,
			AccelerationPattern: PatternVariable,
		},
		models.ModeCycling: {
			MinSpeed:            2.0,
			MaxSpeed:            25.0,
			TypicalSpeed:        15.0,
			AccelerationPattern: PatternVariable,
		},
		models.ModeWalking: {
			MinSpeed:            0.5,
			MaxSpeed:            5.0,
			TypicalSpeed:        1.4,
			AccelerationPattern: PatternIrregular,
			StopsFrequent:       true,
		},
	}
}
