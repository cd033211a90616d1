package tools

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const statusSuccess = "success"

var (
	toolInvocations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_tool_invocations_total",
			Help: "Total number of tool invocations by tool and outcome",
		},
		[]string{"tool", "status"},
	)

	toolDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "assistant_tool_duration_seconds",
			Help:    "Duration of tool invocations",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"tool"},
	)
)
