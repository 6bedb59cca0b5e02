package observability

import (
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "smartrate", Name: "http_requests_total", Help: "HTTP requests."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "smartrate", Name: "http_request_duration_seconds",
			Help:    "HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	Predictions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "smartrate", Name: "predictions_total", Help: "Price predictions by outcome."},
		[]string{"outcome"}, // outcome: ok|no_artifact|no_room|error
	)
	PredictionLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "smartrate", Name: "prediction_duration_seconds",
			Help:    "Single prediction duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
	)
	TrainingRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "smartrate", Name: "training_runs_total", Help: "Training runs by result."},
		[]string{"result"}, // result: ok|error
	)
	TrainingMAE = prometheus.NewGauge(
		prometheus.GaugeOpts{Namespace: "smartrate", Name: "training_last_mae", Help: "MAE of the last completed training run."},
	)
	TrainingR2 = prometheus.NewGauge(
		prometheus.GaugeOpts{Namespace: "smartrate", Name: "training_last_r2", Help: "R2 of the last completed training run."},
	)
	CacheEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "smartrate", Name: "cache_events_total", Help: "Cache hits/misses/sets/dels."},
		[]string{"cache", "event"}, // event: hit|miss|set|del
	)
)

// Serve starts a standalone metrics listener when METRICS_ADDR is set.
func Serve() {
	addr := os.Getenv("METRICS_ADDR")
	if addr == "" {
		return // disabled
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	go func() {
		srv := &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		log.Info().Str("addr", addr).Msg("metrics server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()
}

func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		HTTPRequests, HTTPLatency,
		Predictions, PredictionLatency,
		TrainingRuns, TrainingMAE, TrainingR2,
		CacheEvents,
	)
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

func ObservePrediction(outcome string, dur time.Duration) {
	Predictions.WithLabelValues(outcome).Inc()
	PredictionLatency.Observe(dur.Seconds())
}

func ObserveTraining(err error, mae, r2 float64) {
	if err != nil {
		TrainingRuns.WithLabelValues("error").Inc()
		return
	}
	TrainingRuns.WithLabelValues("ok").Inc()
	TrainingMAE.Set(mae)
	TrainingR2.Set(r2)
}

func ObserveCache(cache, event string) { // event: hit|miss|set|del
	CacheEvents.WithLabelValues(cache, event).Inc()
}
