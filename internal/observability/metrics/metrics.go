package metrics

import "github.com/prometheus/client_golang/prometheus"

// WizardMetrics exposes counters for booking wizard actions.
type WizardMetrics struct {
	actionsTotal       *prometheus.CounterVec
	confirmationsTotal *prometheus.CounterVec
	sessionsStarted    prometheus.Counter
}

func NewWizardMetrics(reg prometheus.Registerer) *WizardMetrics {
	m := &WizardMetrics{
		actionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lumiere",
			Subsystem: "wizard",
			Name:      "actions_total",
			Help:      "Wizard actions by name and outcome",
		}, []string{"action", "outcome"}),
		confirmationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lumiere",
			Subsystem: "wizard",
			Name:      "confirmations_total",
			Help:      "Confirmed bookings by hand-off status",
		}, []string{"handoff"}),
		sessionsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lumiere",
			Subsystem: "wizard",
			Name:      "sessions_started_total",
			Help:      "Booking sessions started",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.actionsTotal, m.confirmationsTotal, m.sessionsStarted)
	return m
}

func (m *WizardMetrics) ObserveAction(action, outcome string) {
	if m == nil {
		return
	}
	m.actionsTotal.WithLabelValues(action, outcome).Inc()
}

func (m *WizardMetrics) ObserveConfirmation(handoffOK bool) {
	if m == nil {
		return
	}
	label := "ok"
	if !handoffOK {
		label = "failed"
	}
	m.confirmationsTotal.WithLabelValues(label).Inc()
}

func (m *WizardMetrics) ObserveSessionStarted() {
	if m == nil {
		return
	}
	m.sessionsStarted.Inc()
}

// RecommendMetrics tracks the service recommendation gateway.
type RecommendMetrics struct {
	outcomesTotal *prometheus.CounterVec
	latency       *prometheus.HistogramVec
}

// Recommendation outcomes.
const (
	OutcomeSkipped     = "skipped"
	OutcomeMatched     = "matched"
	OutcomeNoMatch     = "no_match"
	OutcomeMalformed   = "malformed"
	OutcomeError       = "error"
	OutcomeUnavailable = "unavailable"
	OutcomeStale       = "stale"
)

func NewRecommendMetrics(reg prometheus.Registerer) *RecommendMetrics {
	m := &RecommendMetrics{
		outcomesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lumiere",
			Subsystem: "recommend",
			Name:      "outcomes_total",
			Help:      "Service recommendation requests by outcome",
		}, []string{"outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "lumiere",
			Subsystem: "recommend",
			Name:      "latency_seconds",
			Help:      "Latency of text model calls made for recommendations",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.outcomesTotal, m.latency)
	return m
}

func (m *RecommendMetrics) ObserveOutcome(outcome string) {
	if m == nil {
		return
	}
	m.outcomesTotal.WithLabelValues(outcome).Inc()
}

func (m *RecommendMetrics) ObserveLatency(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.latency.WithLabelValues(outcome).Observe(seconds)
}
