package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	BackendRequestSeconds *prometheus.HistogramVec
	BackendErrors         *prometheus.CounterVec
	RegistryReloads       *prometheus.CounterVec
	RegistrySize          prometheus.Gauge
	VerifyAttempts        *prometheus.CounterVec
	Confirmations         *prometheus.CounterVec
	ConfirmSeconds        prometheus.Histogram
	GeocodeSeconds        *prometheus.HistogramVec
	RefreshJobs           *prometheus.CounterVec
	ActiveWorkers         prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		BackendRequestSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "verdeando_backend_request_duration_seconds",
			Help:    "Duration of requests to the verdeando backend API.",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
		BackendErrors: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "verdeando_backend_errors_total",
			Help: "Total number of failed backend requests by kind (network, rejected, malformed).",
		}, []string{"kind"}),
		RegistryReloads: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "verdeando_registry_reloads_total",
			Help: "Total number of green point registry reloads.",
		}, []string{"status"}),
		RegistrySize: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "verdeando_registry_green_points",
			Help: "Number of green points in the current registry snapshot.",
		}),
		VerifyAttempts: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "verdeando_proximity_attempts_total",
			Help: "Total number of proximity verification attempts by outcome.",
		}, []string{"outcome"}),
		Confirmations: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "verdeando_exchange_confirmations_total",
			Help: "Total number of exchange confirmation attempts by outcome.",
		}, []string{"outcome"}),
		ConfirmSeconds: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "verdeando_exchange_confirmation_duration_seconds",
			Help:    "End-to-end duration of an exchange confirmation, retries included.",
			Buckets: []float64{0.1, 0.5, 1, 2, 4, 6, 8, 10, 15, 30},
		}),
		GeocodeSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "verdeando_geocoder_request_duration_seconds",
			Help:    "Duration of requests to the geocoding provider API.",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"}),
		RefreshJobs: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "verdeando_refresh_jobs_total",
			Help: "Total number of background refresh jobs by job and status.",
		}, []string{"job", "status"}),
		ActiveWorkers: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "verdeando_refresh_active_workers",
			Help: "Number of refresh workers currently running a job.",
		}),
	}
}
