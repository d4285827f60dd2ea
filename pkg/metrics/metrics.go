package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TurnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_turns_total",
			Help: "Total number of conversation turns by outcome",
		},
		[]string{"outcome"},
	)

	TurnDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "assistant_turn_duration_seconds",
			Help: "Duration of a conversation turn in seconds",
		},
		[]string{"agent"},
	)

	TurnIterations = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "assistant_turn_iterations",
			Help:    "Model invocations needed to finish a turn",
			Buckets: []float64{1, 2, 3, 4, 5, 6, 8, 10},
		},
	)

	HandoffsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_handoffs_total",
			Help: "Total number of agent handoffs",
		},
		[]string{"from", "to"},
	)

	ToolCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_tool_calls_total",
			Help: "Total number of tool calls by outcome",
		},
		[]string{"tool", "outcome"},
	)

	ToolDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "assistant_tool_duration_seconds",
			Help: "Duration of tool calls in seconds",
		},
		[]string{"tool"},
	)

	KnowledgeBuilds = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "assistant_knowledge_builds_total",
			Help: "Number of times the knowledge base was built",
		},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "assistant_sessions_active",
			Help: "Conversations currently held by the in-memory session store",
		},
	)
)
