package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	GenerationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "edify_generations_total",
		Help: "Tool generations by outcome. status is ok or the error code.",
	}, []string{"tool", "status"})

	GenerationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "edify_generation_duration_seconds",
		Help:    "Wall time of a tool generation including the model call.",
		Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60, 120, 300},
	}, []string{"tool"})

	LLMTokensTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "edify_llm_tokens_total",
		Help: "Model tokens consumed. direction is input or output.",
	}, []string{"tool", "direction"})

	GenerationsRecordedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "edify_generations_recorded_total",
		Help: "Generation rows successfully written to the database.",
	})

	GenerationRecordErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "edify_generation_record_errors_total",
		Help: "Generation history insert failures and dropped records.",
	})

	UsersTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "edify_users_total",
		Help: "Total number of registered users in the database.",
	})
)

// ObserveTokens adds a generation's token usage to LLMTokensTotal.
func ObserveTokens(tool string, input, output int) {
	if input > 0 {
		LLMTokensTotal.WithLabelValues(tool, "input").Add(float64(input))
	}
	if output > 0 {
		LLMTokensTotal.WithLabelValues(tool, "output").Add(float64(output))
	}
}
