package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "bikeshare"

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		},
		[]string{"method", "path"},
	)

	sagaRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rental",
			Name:      "saga_runs_total",
			Help:      "Rental workflow runs by outcome.",
		},
		[]string{"workflow", "outcome"},
	)

	sagaCompensations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rental",
			Name:      "saga_compensations_total",
			Help:      "Compensating actions executed, by step and result.",
		},
		[]string{"workflow", "step", "result"},
	)

	extraFees = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "rental",
			Name:      "extra_fee_amount",
			Help:      "Extra fee billed on return.",
			Buckets:   []float64{0, 5, 10, 20, 40, 80},
		},
	)

	kafkaMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "kafka",
			Name:      "messages_total",
			Help:      "Kafka messages handled, by direction, topic and result.",
		},
		[]string{"direction", "topic", "result"},
	)

	kafkaDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "kafka",
			Name:      "duration_seconds",
			Help:      "Duration of Kafka publish and consume calls.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"direction", "topic"},
	)

	chargeQueueRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "external",
			Name:      "charge_queue_items_total",
			Help:      "Queued charges processed, by resulting status.",
		},
		[]string{"status"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		sagaRuns,
		sagaCompensations,
		extraFees,
		kafkaMessages,
		kafkaDuration,
		chargeQueueRuns,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// InstrumentHandler wraps the provided handler with HTTP metrics collection.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		httpInFlight.Inc()
		defer httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		path := CanonicalPath(r.URL.Path)
		method := strings.ToUpper(r.Method)

		httpRequests.WithLabelValues(method, path, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	})
}

func RecordSagaRun(workflow, outcome string) {
	sagaRuns.WithLabelValues(workflow, outcome).Inc()
}

func RecordCompensation(workflow, step string, ok bool) {
	sagaCompensations.WithLabelValues(workflow, step, result(ok)).Inc()
}

func RecordExtraFee(amount float64) {
	extraFees.Observe(amount)
}

func RecordKafkaPublish(topic string, duration time.Duration, ok bool) {
	kafkaMessages.WithLabelValues("publish", topic, result(ok)).Inc()
	kafkaDuration.WithLabelValues("publish", topic).Observe(duration.Seconds())
}

func RecordKafkaConsume(topic string, duration time.Duration, ok bool) {
	kafkaMessages.WithLabelValues("consume", topic, result(ok)).Inc()
	kafkaDuration.WithLabelValues("consume", topic).Observe(duration.Seconds())
}

func RecordQueuedCharge(status string) {
	chargeQueueRuns.WithLabelValues(status).Inc()
}

func result(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// CanonicalPath collapses numeric path segments so ids do not explode label
// cardinality: /api/v1/tranca/id/7/bicicleta becomes /api/v1/tranca/id/:id/bicicleta.
func CanonicalPath(raw string) string {
	trimmed := strings.Trim(raw, "/")
	if trimmed == "" {
		return "/"
	}
	parts := strings.Split(trimmed, "/")
	for i, p := range parts {
		if _, err := strconv.ParseInt(p, 10, 64); err == nil {
			parts[i] = ":id"
		}
	}
	return "/" + strings.Join(parts, "/")
}
