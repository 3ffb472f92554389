package features

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modesense/tmd-backend-go/internal/models"
	"github.com/modesense/tmd-backend-go/internal/spatial"
)

func accelSamples(n int) []models.SensorSample {
	samples := make([]models.SensorSample, n)
	for i := range samples {
		samples[i] = models.SensorSample{
			Timestamp:     float64(i),
			AccelerationX: math.Sin(float64(i)),
			AccelerationY: 0.2,
			AccelerationZ: 9.8,
		}
	}
	return samples
}

func TestNewExtractorValidation(t *testing.T) {
	_, err := NewExtractor(Config{WindowSize: 0, Overlap: 0.5})
	assert.Error(t, err)

	_, err = NewExtractor(Config{WindowSize: 50, Overlap: 1.0})
	assert.Error(t, err)

	_, err = NewExtractor(Config{WindowSize: 50, Overlap: -0.1})
	assert.Error(t, err)

	ex, err := NewExtractor(Config{WindowSize: DefaultWindowSize, Overlap: DefaultOverlap})
	require.NoError(t, err)
	assert.Equal(t, 50, ex.WindowSize())
	assert.Equal(t, 25, ex.Step())
}

func TestExtractWindowCount(t *testing.T) {
	ex, err := NewExtractor(Config{WindowSize: 50, Overlap: 0.5})
	require.NoError(t, err)

	// Starts at 0, 25 and 50; start 75 would overrun.
	vectors := ex.Extract(accelSamples(100))
	assert.Len(t, vectors, 3)

	// One sample short of a window is empty output, not an error.
	assert.Empty(t, ex.Extract(accelSamples(49)))
	assert.Len(t, ex.Extract(accelSamples(50)), 1)
}

func TestSchemaStableAcrossSensorAvailability(t *testing.T) {
	ex, err := NewExtractor(Config{WindowSize: 10, Overlap: 0})
	require.NoError(t, err)

	bare := accelSamples(10)

	rich := accelSamples(10)
	for i := range rich {
		rich[i].GyroscopeX = models.Float64Ptr(0.1)
		rich[i].GyroscopeY = models.Float64Ptr(0.2)
		rich[i].GyroscopeZ = models.Float64Ptr(0.3)
		rich[i].Latitude = models.Float64Ptr(-37.81 + float64(i)*1e-5)
		rich[i].Longitude = models.Float64Ptr(144.96)
		rich[i].Speed = models.Float64Ptr(1.5)
	}

	bareVec := ex.Extract(bare)[0]
	richVec := ex.Extract(rich)[0]

	// Same vector length and key order regardless of sensor availability.
	assert.Equal(t, len(richVec.Values()), len(bareVec.Values()))
	assert.True(t, bareVec.Schema().Matches(richVec.Schema()))

	// Absent groups are zero-filled.
	assert.Zero(t, bareVec.Get("gyro_x_mean"))
	assert.Zero(t, bareVec.Get("speed_mean"))
	assert.Zero(t, bareVec.Get("gps_total_distance"))

	// Present groups carry data.
	assert.InDelta(t, 0.1, richVec.Get("gyro_x_mean"), 1e-12)
	assert.InDelta(t, 1.5, richVec.Get("speed_mean"), 1e-12)
	assert.Greater(t, richVec.Get("gps_total_distance"), 0.0)
}

func TestSchemaVersionFormat(t *testing.T) {
	ex, err := NewExtractor(Config{WindowSize: 50, Overlap: 0.5})
	require.NoError(t, err)

	version := ex.Schema().Version()
	assert.Regexp(t, `^v1-[0-9a-f]{16}$`, version)

	// Same window size, same version; different size may drop groups.
	ex2, err := NewExtractor(Config{WindowSize: 50, Overlap: 0.25})
	require.NoError(t, err)
	assert.Equal(t, version, ex2.Schema().Version())
}

func TestSmallWindowDropsSpectralGroup(t *testing.T) {
	small, err := NewExtractor(Config{WindowSize: 3, Overlap: 0})
	require.NoError(t, err)
	assert.NotContains(t, small.Schema().Keys(), "accel_magnitude_spectral_centroid")
	// Cross-axis correlations still present at 3 samples.
	assert.Contains(t, small.Schema().Keys(), "accel_xy_correlation")

	full, err := NewExtractor(Config{WindowSize: 4, Overlap: 0})
	require.NoError(t, err)
	assert.Contains(t, full.Schema().Keys(), "accel_magnitude_spectral_centroid")
	assert.NotEqual(t, small.Schema().Version(), full.Schema().Version())
}

func TestNaNInputsAreSanitized(t *testing.T) {
	ex, err := NewExtractor(Config{WindowSize: 4, Overlap: 0})
	require.NoError(t, err)

	samples := accelSamples(4)
	samples[1].AccelerationX = math.NaN()

	vec := ex.Extract(samples)[0]
	for _, key := range vec.Schema().Keys() {
		assert.False(t, math.IsNaN(vec.Get(key)), "key %s is NaN", key)
	}
}

func TestGPSDistanceFeatures(t *testing.T) {
	ex, err := NewExtractor(Config{WindowSize: 4, Overlap: 0})
	require.NoError(t, err)

	// Straight north track: displacement equals total distance.
	samples := accelSamples(4)
	lats := []float64{-37.8183, -37.8173, -37.8163, -37.8153}
	for i := range samples {
		samples[i].Latitude = models.Float64Ptr(lats[i])
		samples[i].Longitude = models.Float64Ptr(144.9671)
	}

	vec := ex.Extract(samples)[0]

	want := spatial.Haversine(lats[0], 144.9671, lats[3], 144.9671)
	assert.InDelta(t, want, vec.Get("gps_total_distance"), 0.01)
	assert.InDelta(t, want, vec.Get("gps_displacement"), 0.01)
	assert.InDelta(t, 1.0, vec.Get("gps_efficiency"), 1e-6)
	assert.InDelta(t, want/3, vec.Get("gps_mean_distance"), 0.01)
}

func TestGPSGroupNeedsTwoFixes(t *testing.T) {
	ex, err := NewExtractor(Config{WindowSize: 4, Overlap: 0})
	require.NoError(t, err)

	samples := accelSamples(4)
	samples[0].Latitude = models.Float64Ptr(-37.81)
	samples[0].Longitude = models.Float64Ptr(144.96)

	vec := ex.Extract(samples)[0]
	assert.Zero(t, vec.Get("gps_total_distance"))
	assert.Zero(t, vec.Get("speed_mean"))
}

func TestPeakFeatures(t *testing.T) {
	ex, err := NewExtractor(Config{WindowSize: 9, Overlap: 0})
	require.NoError(t, err)

	samples := make([]models.SensorSample, 9)
	// Flat baseline with two sharp spikes above mean + std.
	zs := []float64{1, 1, 8, 1, 1, 1, 8, 1, 1}
	for i := range samples {
		samples[i] = models.SensorSample{Timestamp: float64(i), AccelerationZ: zs[i]}
	}

	vec := ex.Extract(samples)[0]
	assert.InDelta(t, 2, vec.Get("accel_magnitude_peak_count"), 1e-12)
	assert.InDelta(t, 8, vec.Get("accel_magnitude_peak_mean"), 1e-12)
	assert.InDelta(t, 0, vec.Get("accel_magnitude_peak_std"), 1e-12)
}
