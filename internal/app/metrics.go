package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EvaluationsTotal counts evaluation passes.
	// Labels: outcome (ok, recovered, error, canceled)
	EvaluationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "armonia",
			Subsystem: "progress",
			Name:      "evaluations_total",
			Help:      "Total number of progress evaluation passes by outcome",
		},
		[]string{"outcome"},
	)

	// UnlocksTotal counts achievement unlocks.
	// Labels: rarity (common, rare, epic, legendary)
	UnlocksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "armonia",
			Subsystem: "progress",
			Name:      "unlocks_total",
			Help:      "Total number of achievements unlocked by rarity",
		},
		[]string{"rarity"},
	)

	// EvaluationDuration tracks how long a pass takes, lock wait excluded.
	EvaluationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "armonia",
			Subsystem: "progress",
			Name:      "evaluation_seconds",
			Help:      "Duration of progress evaluation passes in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)

	// StateRecoveriesTotal counts passes that fell back to the default catalog.
	// Labels: reason (malformed, unreadable, malformed_activity)
	StateRecoveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "armonia",
			Subsystem: "progress",
			Name:      "state_recoveries_total",
			Help:      "Total number of gamification records replaced by defaults",
		},
		[]string{"reason"},
	)

	// ChatRepliesTotal counts assistant replies by source.
	// Labels: source (gemini, fallback)
	ChatRepliesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "armonia",
			Subsystem: "chat",
			Name:      "replies_total",
			Help:      "Total number of assistant replies by source",
		},
		[]string{"source"},
	)
)
