// Package metrics exposes Prometheus collectors for the crime engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector records engine outcomes. A nil *Collector is a no-op so
// tests can skip metrics wiring.
type Collector struct {
	attempts   *prometheus.CounterVec
	creditsWon *prometheus.CounterVec
	fines      prometheus.Counter
	bails      prometheus.Counter
	jailbreaks *prometheus.CounterVec
	finalOdds  prometheus.Histogram
}

// NewCollector registers the engine collectors on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		attempts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "undercity",
			Name:      "crime_attempts_total",
			Help:      "Resolved crime attempts by crime type and outcome.",
		}, []string{"crime", "outcome"}),
		creditsWon: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "undercity",
			Name:      "crime_credits_total",
			Help:      "Credits rewarded by crime type.",
		}, []string{"crime"}),
		fines: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "undercity",
			Name:      "fines_collected_total",
			Help:      "Credits collected as fines.",
		}),
		bails: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "undercity",
			Name:      "bail_collected_total",
			Help:      "Credits collected as bail.",
		}),
		jailbreaks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "undercity",
			Name:      "jailbreak_attempts_total",
			Help:      "Jailbreak attempts by outcome.",
		}, []string{"outcome"}),
		finalOdds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "undercity",
			Name:      "final_success_chance",
			Help:      "Final clamped success chance after modifier events.",
			Buckets:   prometheus.LinearBuckets(0.05, 0.05, 19),
		}),
	}
}

func (c *Collector) RecordAttempt(crime string, success bool, chance float64) {
	if c == nil {
		return
	}
	outcome := "failure"
	if success {
		outcome = "success"
	}
	c.attempts.WithLabelValues(crime, outcome).Inc()
	c.finalOdds.Observe(chance)
}

func (c *Collector) RecordReward(crime string, amount int64) {
	if c == nil {
		return
	}
	c.creditsWon.WithLabelValues(crime).Add(float64(amount))
}

func (c *Collector) RecordFine(amount int64) {
	if c == nil {
		return
	}
	c.fines.Add(float64(amount))
}

func (c *Collector) RecordBail(amount int64) {
	if c == nil {
		return
	}
	c.bails.Add(float64(amount))
}

func (c *Collector) RecordJailbreak(success bool) {
	if c == nil {
		return
	}
	outcome := "failure"
	if success {
		outcome = "success"
	}
	c.jailbreaks.WithLabelValues(outcome).Inc()
}
