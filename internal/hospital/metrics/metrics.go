package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the hospital module.
type Metrics struct {
	Registered           prometheus.Counter
	AuthorizationChanges prometheus.Counter
}

// New creates a new Metrics instance with all hospital module metrics registered.
func New() *Metrics {
	return &Metrics{
		Registered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vaxledger_hospitals_registered_total",
			Help: "Total number of hospital registrations accepted (including pending overwrites)",
		}),
		AuthorizationChanges: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vaxledger_hospital_authorization_changes_total",
			Help: "Total number of authorization flag changes applied by the authority",
		}),
	}
}

// IncrementRegistered records an accepted registration.
func (m *Metrics) IncrementRegistered() {
	m.Registered.Inc()
}

// IncrementAuthorizationChanges records an authorization change.
func (m *Metrics) IncrementAuthorizationChanges() {
	m.AuthorizationChanges.Inc()
}
