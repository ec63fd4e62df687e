// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TurnsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "call_turns_processed_total",
			Help: "Total number of conversation turns processed, by chosen action",
		},
		[]string{"action"},
	)

	TurnsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "call_turns_failed_total",
			Help: "Total number of conversation turns that failed",
		},
		[]string{"error_code"},
	)

	SignalsIgnored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "call_signals_ignored_total",
			Help: "Total number of candidate signals rejected by the gate, by reason",
		},
		[]string{"kind", "reason"},
	)

	ExtractionFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "call_extraction_fallbacks_total",
			Help: "Total number of turns where LLM extraction fell back to rules",
		},
		[]string{"cause"},
	)

	SessionsEnded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "call_sessions_ended_total",
			Help: "Total number of sessions ended, by end reason and label",
		},
		[]string{"reason", "label"},
	)

	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "call_sessions_active",
			Help: "Number of sessions currently in progress",
		},
	)
)
