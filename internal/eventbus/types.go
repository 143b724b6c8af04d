package eventbus

import "time"

// Topic represents an event topic.
type Topic string

const (
	TopicUserTurn     Topic = "user_turn"
	TopicSQLGenerated Topic = "sql_generated"
	TopicSQLExecuted  Topic = "sql_executed"
	TopicAnswerReady  Topic = "answer_ready"
	TopicTurnError    Topic = "turn_error"
	TopicTurnRetry    Topic = "turn_retry"
	TopicMemoryWrite  Topic = "memory_write"
	TopicMemoryClear  Topic = "memory_clear"
)

// Event is a message passed through the event bus.
type Event struct {
	Topic     Topic
	Payload   any
	Timestamp time.Time
}

// Handler processes an event.
type Handler func(Event)
