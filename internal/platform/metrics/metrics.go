package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome clasifica el resultado de una llamada al backend.
const (
	OutcomeOK        = "ok"
	OutcomeRequest   = "request_error"
	OutcomeTransport = "transport_error"
)

// Recorder registra el resultado de cada llamada del gateway.
type Recorder interface {
	Observe(operation, outcome string, elapsed time.Duration)
}

// PromRecorder implementa Recorder sobre Prometheus.
type PromRecorder struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// New registra los collectors en reg (usar prometheus.DefaultRegisterer
// en los binarios; un registry propio en tests).
func New(reg prometheus.Registerer) *PromRecorder {
	r := &PromRecorder{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clinic_gateway_requests_total",
			Help: "Backend calls issued by the gateway, by operation and outcome.",
		}, []string{"operation", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "clinic_gateway_request_seconds",
			Help:    "Backend call latency, by operation.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
	}
	if reg != nil {
		reg.MustRegister(r.requests, r.duration)
	}
	return r
}

func (r *PromRecorder) Observe(operation, outcome string, elapsed time.Duration) {
	r.requests.WithLabelValues(operation, outcome).Inc()
	r.duration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// Nop descarta todo. Default cuando el gateway se crea sin Recorder.
func Nop() Recorder { return nop{} }

type nop struct{}

func (nop) Observe(string, string, time.Duration) {}
