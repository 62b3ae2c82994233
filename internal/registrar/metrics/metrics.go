package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the registrar module.
// Tracks lease mutation outcomes, admin actions and critical path durations.
type Metrics struct {
	// Claim and renewal outcomes, labelled "ok" or the rejection code
	ClaimOutcome *prometheus.CounterVec
	RenewOutcome *prometheus.CounterVec

	// Admin actions by kind
	AdminAction *prometheus.CounterVec

	// Mutation latency by operation
	MutationDuration *prometheus.HistogramVec

	// Read path latency
	LookupDuration prometheus.Histogram
}

// New creates a new Metrics instance with all registrar module metrics registered.
func New() *Metrics {
	return &Metrics{
		ClaimOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "namelease_claims_total",
			Help: "Total claim attempts by outcome",
		}, []string{"outcome"}),

		RenewOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "namelease_renewals_total",
			Help: "Total renewal attempts by outcome",
		}, []string{"outcome"}),

		AdminAction: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "namelease_admin_actions_total",
			Help: "Total admin actions by kind",
		}, []string{"action"}),

		MutationDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "namelease_mutation_duration_seconds",
			Help:    "Duration of registry mutations by operation",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation"}),

		LookupDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "namelease_lookup_duration_seconds",
			Help:    "Duration of lease lookups",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// IncrementClaim records a claim attempt outcome.
func (m *Metrics) IncrementClaim(outcome string) {
	if m != nil {
		m.ClaimOutcome.WithLabelValues(outcome).Inc()
	}
}

// IncrementRenew records a renewal attempt outcome.
func (m *Metrics) IncrementRenew(outcome string) {
	if m != nil {
		m.RenewOutcome.WithLabelValues(outcome).Inc()
	}
}

// IncrementAdminAction records one admin action.
func (m *Metrics) IncrementAdminAction(action string) {
	if m != nil {
		m.AdminAction.WithLabelValues(action).Inc()
	}
}

// ObserveMutation records the duration of a registry mutation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveMutation(operation string, start time.Time) {
	if m != nil {
		m.MutationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
}

// ObserveLookup records the duration of a lease lookup.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveLookup(start time.Time) {
	if m != nil {
		m.LookupDuration.Observe(time.Since(start).Seconds())
	}
}
