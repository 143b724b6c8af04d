// Package observability exposes turn-lifecycle counters over Prometheus.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for the answer pipeline.
type Metrics struct {
	QuestionsTotal    prometheus.Counter
	QueriesGenerated  prometheus.Counter
	QueriesExecuted   prometheus.Counter
	AnswersTotal      prometheus.Counter
	TurnErrorsTotal   prometheus.Counter
	TurnRetriesTotal  prometheus.Counter
	MemoryWritesTotal prometheus.Counter
	MemoryClearsTotal prometheus.Counter
}

func NewMetrics(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		QuestionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "taxitalk_questions_total",
			Help: "User questions received across all channels.",
		}),
		QueriesGenerated: factory.NewCounter(prometheus.CounterOpts{
			Name: "taxitalk_queries_generated_total",
			Help: "SQL statements produced by the model.",
		}),
		QueriesExecuted: factory.NewCounter(prometheus.CounterOpts{
			Name: "taxitalk_queries_executed_total",
			Help: "SQL statements accepted and run by the warehouse.",
		}),
		AnswersTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "taxitalk_answers_total",
			Help: "Answers delivered to users, error replies included.",
		}),
		TurnErrorsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "taxitalk_turn_errors_total",
			Help: "Turns that ended in a terminal error reply.",
		}),
		TurnRetriesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "taxitalk_turn_retries_total",
			Help: "Rate-limited attempts that were retried.",
		}),
		MemoryWritesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "taxitalk_memory_writes_total",
			Help: "Interactions persisted to the semantic index.",
		}),
		MemoryClearsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "taxitalk_memory_clears_total",
			Help: "Times the semantic index was wiped.",
		}),
	}
}

// Handler returns the scrape endpoint for reg.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
