package features

import (
	"fmt"
	"math"

	"github.com/modesense/tmd-backend-go/internal/models"
	"github.com/modesense/tmd-backend-go/internal/spatial"
	"github.com/modesense/tmd-backend-go/internal/stats"
)

// Default window configuration, matching what the bundled model was trained on.
const (
	DefaultWindowSize = 50
	DefaultOverlap    = 0.5
)

// Config holds the window geometry for an extractor.
type Config struct {
	WindowSize int     // samples per window
	Overlap    float64 // fraction of window shared with the next, [0, 1)
}

// Extractor slices a sample sequence into overlapping windows and computes a
// fixed-schema feature vector per window.
type Extractor struct {
	windowSize int
	step       int
	schema     *Schema
}

// NewExtractor validates the window configuration and fixes the feature
// schema. Overlap must be strictly below 1.0: a zero step would never
// advance the window.
func NewExtractor(cfg Config) (*Extractor, error) {
	if cfg.WindowSize <= 0 {
		return nil, fmt.Errorf("features: window size must be positive, got %d", cfg.WindowSize)
	}
	if cfg.Overlap < 0 || cfg.Overlap >= 1.0 {
		return nil, fmt.Errorf("features: overlap must be in [0, 1), got %g", cfg.Overlap)
	}

	step := int(math.Round(float64(cfg.WindowSize) * (1 - cfg.Overlap)))
	if step <= 0 {
		return nil, fmt.Errorf("features: window size %d with overlap %g yields step 0", cfg.WindowSize, cfg.Overlap)
	}

	return &Extractor{
		windowSize: cfg.WindowSize,
		step:       step,
		schema:     newSchema(cfg.WindowSize),
	}, nil
}

// Schema returns the extractor's fixed feature schema.
func (e *Extractor) Schema() *Schema { return e.schema }

// WindowSize returns the samples per window.
func (e *Extractor) WindowSize() int { return e.windowSize }

// Step returns the number of samples between consecutive window starts.
func (e *Extractor) Step() int { return e.step }

// WindowBounds returns the [start, end) sample range of the i-th window, and
// whether that window exists for a batch of n samples.
func (e *Extractor) WindowBounds(index, n int) (start, end int, ok bool) {
	start = index * e.step
	end = start + e.windowSize
	return start, end, index >= 0 && end <= n
}

// Extract computes one feature vector per window. Fewer samples than one
// window is not an error: it returns an empty slice, meaning "insufficient
// data".
func (e *Extractor) Extract(samples []models.SensorSample) []*Vector {
	if len(samples) < e.windowSize {
		return nil
	}

	var vectors []*Vector
	for start := 0; start+e.windowSize <= len(samples); start += e.step {
		window := samples[start : start+e.windowSize]
		vectors = append(vectors, e.extractWindow(window))
	}
	return vectors
}

func (e *Extractor) extractWindow(window []models.SensorSample) *Vector {
	vec := newVector(e.schema)
	e.accelFeatures(window, vec)
	e.gyroFeatures(window, vec)
	e.gpsFeatures(window, vec)
	return vec
}

// accelFeatures is always computed: every sample carries an accelerometer
// reading.
func (e *Extractor) accelFeatures(window []models.SensorSample, vec *Vector) {
	n := len(window)
	x := make([]float64, n)
	y := make([]float64, n)
	z := make([]float64, n)
	mag := make([]float64, n)
	for i, s := range window {
		x[i] = s.AccelerationX
		y[i] = s.AccelerationY
		z[i] = s.AccelerationZ
		mag[i] = s.AccelMagnitude()
	}
	stats.SanitizeNaN(x)
	stats.SanitizeNaN(y)
	stats.SanitizeNaN(z)
	stats.SanitizeNaN(mag)

	statisticalFeatures(vec, "accel_x", x)
	statisticalFeatures(vec, "accel_y", y)
	statisticalFeatures(vec, "accel_z", z)
	statisticalFeatures(vec, "accel_magnitude", mag)

	if n >= 4 {
		spectralFeatures(vec, "accel_magnitude", mag)
	}

	if n >= 2 {
		vec.set("accel_xy_correlation", stats.PearsonCorrelation(x, y))
		vec.set("accel_xz_correlation", stats.PearsonCorrelation(x, z))
		vec.set("accel_yz_correlation", stats.PearsonCorrelation(y, z))
	}

	peakFeatures(vec, "accel_magnitude", mag)
}

// gyroFeatures fills the gyroscope group when at least one sample in the
// window has gyroscope data; otherwise the keys keep their 0.0 default so
// the schema stays stable.
func (e *Extractor) gyroFeatures(window []models.SensorSample, vec *Vector) {
	present := false
	for i := range window {
		if window[i].HasGyroscope() {
			present = true
			break
		}
	}
	if !present {
		return
	}

	n := len(window)
	x := make([]float64, n)
	y := make([]float64, n)
	z := make([]float64, n)
	mag := make([]float64, n)
	for i := range window {
		s := &window[i]
		if s.GyroscopeX != nil {
			x[i] = *s.GyroscopeX
		}
		if s.GyroscopeY != nil {
			y[i] = *s.GyroscopeY
		}
		if s.GyroscopeZ != nil {
			z[i] = *s.GyroscopeZ
		}
		mag[i] = s.GyroMagnitude()
	}
	stats.SanitizeNaN(x)
	stats.SanitizeNaN(y)
	stats.SanitizeNaN(z)
	stats.SanitizeNaN(mag)

	statisticalFeatures(vec, "gyro_x", x)
	statisticalFeatures(vec, "gyro_y", y)
	statisticalFeatures(vec, "gyro_z", z)
	statisticalFeatures(vec, "gyro_magnitude", mag)

	if n >= 4 {
		spectralFeatures(vec, "gyro_magnitude", mag)
	}
}

// gpsFeatures fills the GPS group when the window has at least 2 complete
// coordinate pairs; otherwise the keys keep their 0.0 default.
func (e *Extractor) gpsFeatures(window []models.SensorSample, vec *Vector) {
	var lats, lons, speeds, headings []float64
	for i := range window {
		s := &window[i]
		if !s.HasGPS() {
			continue
		}
		lats = append(lats, *s.Latitude)
		lons = append(lons, *s.Longitude)
		if s.Speed != nil {
			speeds = append(speeds, *s.Speed)
		} else {
			speeds = append(speeds, 0)
		}
		if s.Heading != nil {
			headings = append(headings, *s.Heading)
		} else {
			headings = append(headings, 0)
		}
	}
	if len(lats) < 2 {
		return
	}
	stats.SanitizeNaN(speeds)
	stats.SanitizeNaN(headings)

	statisticalFeatures(vec, "speed", speeds)
	statisticalFeatures(vec, "heading", headings)

	distances := make([]float64, 0, len(lats)-1)
	for i := 1; i < len(lats); i++ {
		distances = append(distances, spatial.Haversine(lats[i-1], lons[i-1], lats[i], lons[i]))
	}

	total := stats.Sum(distances)
	vec.set("gps_total_distance", total)
	vec.set("gps_mean_distance", stats.Mean(distances))
	vec.set("gps_distance_std", stats.StdDev(distances))

	displacement := spatial.Haversine(lats[0], lons[0], lats[len(lats)-1], lons[len(lons)-1])
	vec.set("gps_displacement", displacement)
	if total > 0 {
		vec.set("gps_efficiency", displacement/total)
	}
}

func statisticalFeatures(vec *Vector, prefix string, series []float64) {
	vec.set(prefix+"_mean", stats.Mean(series))
	vec.set(prefix+"_std", stats.StdDev(series))
	vec.set(prefix+"_min", stats.Min(series))
	vec.set(prefix+"_max", stats.Max(series))
	vec.set(prefix+"_range", stats.Range(series))
	vec.set(prefix+"_median", stats.Median(series))
	vec.set(prefix+"_q25", stats.Quantile(series, 0.25))
	vec.set(prefix+"_q75", stats.Quantile(series, 0.75))
	vec.set(prefix+"_iqr", stats.IQR(series))
	vec.set(prefix+"_skewness", stats.Skewness(series))
	vec.set(prefix+"_kurtosis", stats.Kurtosis(series))
	vec.set(prefix+"_zero_crossing_rate", stats.ZeroCrossingRate(series))
}

// peakFeatures counts local maxima above mean + 1·std of the series. Peak
// mean/std stay at 0 when no peak qualifies, keeping the key set stable.
func peakFeatures(vec *Vector, prefix string, series []float64) {
	if len(series) < 3 {
		return
	}

	threshold := stats.Mean(series) + stats.StdDev(series)
	var peaks []float64
	for i := 1; i < len(series)-1; i++ {
		if series[i] > series[i-1] && series[i] > series[i+1] && series[i] > threshold {
			peaks = append(peaks, series[i])
		}
	}

	vec.set(prefix+"_peak_count", float64(len(peaks)))
	if len(peaks) > 0 {
		vec.set(prefix+"_peak_mean", stats.Mean(peaks))
		vec.set(prefix+"_peak_std", stats.StdDev(peaks))
	}
}
