package agent

import (
	"context"
	"log"

	"taxitalk/internal/llm"
)

// buildContext assembles the message list for the SQL-generation call:
// the system prompt, then turns retrieved from the semantic index for the
// latest user question, then the most recent short-term turns.
//
// A retrieval failure degrades to recent history only; it never blocks the
// turn. Caller holds o.mu.
func (o *Orchestrator) buildContext(ctx context.Context) []llm.Message {
	msgs := []llm.Message{{Role: "system", Content: o.systemPrompt}}

	if q := o.lastUserContent(); q != "" {
		retrieved, err := o.store.Retrieve(ctx, q, o.cfg.RetrieveK)
		if err != nil {
			log.Printf("[agent] memory retrieval failed: %v", err)
		} else {
			msgs = append(msgs, retrieved...)
		}
	}

	recent := o.conversation
	if limit := o.cfg.ShortTermLimit; limit > 0 && len(recent) > limit {
		recent = recent[len(recent)-limit:]
	}
	return append(msgs, recent...)
}

func (o *Orchestrator) lastUserContent() string {
	for i := len(o.conversation) - 1; i >= 0; i-- {
		if o.conversation[i].Role == "user" {
			return o.conversation[i].Content
		}
	}
	return ""
}
