package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts review-session outcomes. All methods are nil-safe so the
// service can run without metrics in tests.
type Metrics struct {
	Transitions        *prometheus.CounterVec
	AuthzDenials       prometheus.Counter
	EligibilityResults *prometheus.CounterVec
	ApplicationsOpened prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		Transitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "janseva_application_transitions_total",
			Help: "Application lifecycle transitions by event and outcome",
		}, []string{"event", "outcome"}),
		AuthzDenials: promauto.NewCounter(prometheus.CounterOpts{
			Name: "janseva_authorization_denials_total",
			Help: "Requests denied by the authorization gate",
		}),
		EligibilityResults: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "janseva_eligibility_evaluations_total",
			Help: "Eligibility evaluations by overall outcome",
		}, []string{"eligible"}),
		ApplicationsOpened: promauto.NewCounter(prometheus.CounterOpts{
			Name: "janseva_applications_submitted_total",
			Help: "Applications submitted by citizens",
		}),
	}
}

func (m *Metrics) ObserveTransition(event, outcome string) {
	if m != nil {
		m.Transitions.WithLabelValues(event, outcome).Inc()
	}
}

func (m *Metrics) IncrementAuthzDenials() {
	if m != nil {
		m.AuthzDenials.Inc()
	}
}

func (m *Metrics) ObserveEligibility(eligible bool) {
	if m != nil {
		if eligible {
			m.EligibilityResults.WithLabelValues("true").Inc()
		} else {
			m.EligibilityResults.WithLabelValues("false").Inc()
		}
	}
}

func (m *Metrics) IncrementApplicationsOpened() {
	if m != nil {
		m.ApplicationsOpened.Inc()
	}
}
