package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	reg *prometheus.Registry

	InferenceRequests  prometheus.Counter
	InferenceErrors    prometheus.Counter
	HeuristicFallbacks prometheus.Counter

	WindowsProcessed prometheus.Counter
	TransitMatches   prometheus.Counter
	ModeDecisions    *prometheus.CounterVec // mode label

	VehiclesIngested prometheus.Counter

	InferenceDuration prometheus.Histogram
	PredictorDuration prometheus.Histogram
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		InferenceRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tmd_inference_requests_total",
			Help: "Total inference requests handled.",
		}),
		InferenceErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tmd_inference_errors_total",
			Help: "Total inference requests that failed.",
		}),
		HeuristicFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tmd_heuristic_fallbacks_total",
			Help: "Total requests answered by the speed heuristic instead of the model.",
		}),
		WindowsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tmd_windows_processed_total",
			Help: "Total feature windows run through the fusion engine.",
		}),
		TransitMatches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tmd_transit_matches_total",
			Help: "Total windows with at least one matched transit vehicle.",
		}),
		ModeDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tmd_mode_decisions_total",
			Help: "Final per-window mode decisions.",
		}, []string{"mode"}),
		VehiclesIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tmd_vehicles_ingested_total",
			Help: "Total vehicle position observations stored.",
		}),
		InferenceDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tmd_inference_duration_seconds",
			Help:    "End-to-end duration of an inference request.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15),
		}),
		PredictorDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tmd_predictor_duration_seconds",
			Help:    "Duration of the remote model round-trip.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15),
		}),
	}

	// Register
	reg.MustRegister(
		c.InferenceRequests, c.InferenceErrors, c.HeuristicFallbacks,
		c.WindowsProcessed, c.TransitMatches, c.ModeDecisions,
		c.VehiclesIngested,
		c.InferenceDuration, c.PredictorDuration,
	)

	return c
}

func (c *Collector) Handler() http.Handler { return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{}) }
