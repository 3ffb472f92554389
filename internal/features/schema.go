package features

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// statSuffixes are the per-series statistical feature names, in emission order.
var statSuffixes = []string{
	"mean", "std", "min", "max", "range", "median",
	"q25", "q75", "iqr", "skewness", "kurtosis", "zero_crossing_rate",
}

// spectralSuffixes are the frequency-domain feature names computed on a
// magnitude series.
var spectralSuffixes = []string{
	"spectral_centroid", "spectral_rolloff", "spectral_bandwidth", "dominant_frequency",
}

// Schema is the fixed, ordered set of feature keys produced by one extractor
// configuration. The predictor contract depends on key order never changing
// between training and inference, so the schema is built once at construction
// and every vector is laid out against it.
type Schema struct {
	keys    []string
	index   map[string]int
	version string
}

// newSchema builds the feature key list for a window configuration. The
// spectral group needs at least 4 samples and the cross-axis correlations at
// least 2, so window size alone decides which groups exist.
func newSchema(windowSize int) *Schema {
	withSpectral := windowSize >= 4
	withCrossAxis := windowSize >= 2

	var keys []string

	// Accelerometer group: always present.
	for _, prefix := range []string{"accel_x", "accel_y", "accel_z", "accel_magnitude"} {
		keys = append(keys, statKeys(prefix)...)
	}
	if withSpectral {
		keys = append(keys, spectralKeys("accel_magnitude")...)
	}
	if withCrossAxis {
		keys = append(keys, "accel_xy_correlation", "accel_xz_correlation", "accel_yz_correlation")
	}
	keys = append(keys,
		"accel_magnitude_peak_count",
		"accel_magnitude_peak_mean",
		"accel_magnitude_peak_std",
	)

	// Gyroscope group: zero-filled when the window has no gyroscope data.
	for _, prefix := range []string{"gyro_x", "gyro_y", "gyro_z", "gyro_magnitude"} {
		keys = append(keys, statKeys(prefix)...)
	}
	if withSpectral {
		keys = append(keys, spectralKeys("gyro_magnitude")...)
	}

	// GPS group: zero-filled when fewer than 2 samples carry coordinates.
	keys = append(keys, statKeys("speed")...)
	keys = append(keys, statKeys("heading")...)
	keys = append(keys,
		"gps_total_distance",
		"gps_mean_distance",
		"gps_distance_std",
		"gps_displacement",
		"gps_efficiency",
	)

	index := make(map[string]int, len(keys))
	for i, k := range keys {
		index[k] = i
	}

	sum := sha256.Sum256([]byte(strings.Join(keys, ",")))
	return &Schema{
		keys:    keys,
		index:   index,
		version: "v1-" + hex.EncodeToString(sum[:8]),
	}
}

func statKeys(prefix string) []string {
	keys := make([]string, len(statSuffixes))
	for i, s := range statSuffixes {
		keys[i] = prefix + "_" + s
	}
	return keys
}

func spectralKeys(prefix string) []string {
	keys := make([]string, len(spectralSuffixes))
	for i, s := range spectralSuffixes {
		keys[i] = prefix + "_" + s
	}
	return keys
}

// Keys returns the ordered feature names. Callers must not mutate the slice.
func (s *Schema) Keys() []string { return s.keys }

// Len returns the number of features.
func (s *Schema) Len() int { return len(s.keys) }

// Version is a fingerprint of the ordered key set. A predictor trained on one
// version must never be fed vectors from another.
func (s *Schema) Version() string { return s.version }

// Matches reports whether another schema has the identical ordered key set.
func (s *Schema) Matches(other *Schema) bool {
	return other != nil && s.version == other.version
}

// Vector is one window's feature values laid out in schema order. Keys absent
// from the window's source data keep their zero default, so every vector of a
// schema has exactly the same keys.
type Vector struct {
	schema *Schema
	values []float64
}

func newVector(schema *Schema) *Vector {
	return &Vector{schema: schema, values: make([]float64, schema.Len())}
}

// Schema returns the schema the vector was built against.
func (v *Vector) Schema() *Schema { return v.schema }

// Values returns the feature values in schema key order.
func (v *Vector) Values() []float64 { return v.values }

// Get returns the value for a feature key, or 0 for an unknown key.
func (v *Vector) Get(key string) float64 {
	if i, ok := v.schema.index[key]; ok {
		return v.values[i]
	}
	return 0
}

func (v *Vector) set(key string, value float64) {
	i, ok := v.schema.index[key]
	if !ok {
		// Keys are generated from the same tables as the schema; a miss is a
		// programming error worth failing loudly on.
		panic(fmt.Sprintf("features: key %q not in schema %s", key, v.schema.version))
	}
	v.values[i] = value
}

// Map returns the vector as a key→value map, for JSON payloads and debugging.
func (v *Vector) Map() map[string]float64 {
	m := make(map[string]float64, len(v.values))
	for i, k := range v.schema.keys {
		m[k] = v.values[i]
	}
	return m
}
