package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds process-level Prometheus metrics shared across handlers.
type Metrics struct {
	RequestLatency *prometheus.HistogramVec
	UsersCreated   prometheus.Counter
}

// New creates and registers all shared metrics.
func New() *Metrics {
	return &Metrics{
		RequestLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "janseva_http_request_duration_seconds",
			Help:    "Duration of HTTP requests by method and path",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"method", "path"}),
		UsersCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "janseva_users_created_total",
			Help: "Total number of users registered in the portal",
		}),
	}
}

// IncrementUsersCreated increments the registration counter by 1.
func (m *Metrics) IncrementUsersCreated() {
	if m != nil {
		m.UsersCreated.Inc()
	}
}

// Latency instruments a handler chain with the request duration histogram.
// Paths are labeled by route pattern, not raw URL, to bound cardinality;
// chi's route context is not consulted here so mount this per-router.
func (m *Metrics) Latency(pattern string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if m == nil {
				next.ServeHTTP(w, r)
				return
			}
			start := time.Now()
			next.ServeHTTP(w, r)
			m.RequestLatency.WithLabelValues(r.Method, pattern).Observe(time.Since(start).Seconds())
		})
	}
}
