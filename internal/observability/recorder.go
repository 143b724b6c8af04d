package observability

import (
	"taxitalk/internal/eventbus"
)

// Recorder bridges bus events to the Prometheus counters, so the agent and
// channels never import this package.
type Recorder struct {
	metrics *Metrics
}

func NewRecorder(metrics *Metrics) *Recorder {
	return &Recorder{metrics: metrics}
}

// Attach subscribes the recorder to every turn-lifecycle topic on bus.
func (r *Recorder) Attach(bus *eventbus.Bus) {
	bus.Subscribe(eventbus.TopicUserTurn, func(eventbus.Event) {
		r.metrics.QuestionsTotal.Inc()
	})
	bus.Subscribe(eventbus.TopicSQLGenerated, func(eventbus.Event) {
		r.metrics.QueriesGenerated.Inc()
	})
	bus.Subscribe(eventbus.TopicSQLExecuted, func(eventbus.Event) {
		r.metrics.QueriesExecuted.Inc()
	})
	bus.Subscribe(eventbus.TopicAnswerReady, func(eventbus.Event) {
		r.metrics.AnswersTotal.Inc()
	})
	bus.Subscribe(eventbus.TopicTurnError, func(eventbus.Event) {
		r.metrics.TurnErrorsTotal.Inc()
	})
	bus.Subscribe(eventbus.TopicTurnRetry, func(eventbus.Event) {
		r.metrics.TurnRetriesTotal.Inc()
	})
	bus.Subscribe(eventbus.TopicMemoryWrite, func(eventbus.Event) {
		r.metrics.MemoryWritesTotal.Inc()
	})
	bus.Subscribe(eventbus.TopicMemoryClear, func(eventbus.Event) {
		r.metrics.MemoryClearsTotal.Inc()
	})
}
