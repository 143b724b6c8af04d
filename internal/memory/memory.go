// Package memory persists question/answer interactions in a
// similarity-indexed store, so past exchanges relevant to the current
// question can be surfaced even when they fell out of short-term history.
package memory

import (
	"context"

	"taxitalk/internal/llm"
)

// Store is the interface for long-term interaction storage.
type Store interface {
	// Add persists one completed interaction with the next sequential id.
	Add(ctx context.Context, question, answer string, metadata map[string]any) error

	// Retrieve returns up to k past interactions nearest to query by
	// embedding similarity, most-similar first, each expanded into a
	// user/assistant message pair. Empty query returns nothing.
	Retrieve(ctx context.Context, query string, k int) ([]llm.Message, error)

	// Clear deletes and recreates the backing collection, discarding all
	// stored interactions irrecoverably.
	Clear(ctx context.Context) error

	// Count returns the number of stored interactions.
	Count(ctx context.Context) (int, error)

	Close() error
}
