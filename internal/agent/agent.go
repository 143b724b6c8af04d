// Package agent orchestrates one conversation: it turns a natural-language
// question into SQL through the model, executes it against the warehouse,
// asks the model to interpret the rows, and persists the completed exchange
// in the semantic index.
package agent

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"taxitalk/internal/config"
	"taxitalk/internal/eventbus"
	"taxitalk/internal/llm"
	"taxitalk/internal/memory"
	"taxitalk/internal/query"
)

// QuestionFilter masks sensitive fragments of an incoming question before it
// reaches the model or the index.
type QuestionFilter interface {
	Sanitize(text string) string
}

// Orchestrator runs the two-phase answer loop for a single conversation.
// All public methods serialize on an internal mutex, so concurrent calls
// from a channel never interleave turns.
type Orchestrator struct {
	mu         sync.Mutex
	cfg        config.AgentConfig
	provider   llm.Provider
	runner     *query.Runner
	store      memory.Store
	bus        *eventbus.Bus
	filter     QuestionFilter
	maxRetries int

	systemPrompt string
	conversation []llm.Message
}

func New(cfg config.AgentConfig, provider llm.Provider, runner *query.Runner, store memory.Store, bus *eventbus.Bus, systemPrompt string, maxRetries int) *Orchestrator {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &Orchestrator{
		cfg:          cfg,
		provider:     provider,
		runner:       runner,
		store:        store,
		bus:          bus,
		systemPrompt: systemPrompt,
		maxRetries:   maxRetries,
	}
}

// SetFilter installs an optional question filter. Not safe to call after the
// orchestrator starts answering.
func (o *Orchestrator) SetFilter(f QuestionFilter) {
	o.filter = f
}

// Answer runs one full turn and always returns something presentable to the
// user, folding every failure mode into a reply instead of an error.
func (o *Orchestrator) Answer(ctx context.Context, userQuery string) string {
	o.mu.Lock()
	defer o.mu.Unlock()

	question := strings.TrimSpace(userQuery)
	if o.filter != nil {
		question = o.filter.Sanitize(question)
	}
	o.bus.Publish(eventbus.TopicUserTurn, question)
	o.conversation = append(o.conversation, llm.Message{Role: "user", Content: question})

	answer := o.answerWithRetry(ctx, question)

	o.conversation = append(o.conversation, llm.Message{Role: "assistant", Content: answer})
	o.truncate()
	o.bus.Publish(eventbus.TopicAnswerReady, answer)
	return answer
}

// answerWithRetry retries the whole generate/execute/interpret turn on rate
// limits. Persistence happens inside the successful attempt only, so a turn
// that needed retries still produces exactly one stored interaction.
func (o *Orchestrator) answerWithRetry(ctx context.Context, question string) string {
	for attempt := 0; ; attempt++ {
		answer, err := o.turn(ctx, question)
		if err == nil {
			return answer
		}
		d := decide(attempt, o.maxRetries, err)
		if d.Action != actionRetry {
			log.Printf("[agent] turn failed: %v", err)
			o.bus.Publish(eventbus.TopicTurnError, err)
			return d.Message
		}
		log.Printf("[agent] rate limited, retrying in %s (attempt %d/%d)", d.Delay, attempt+1, o.maxRetries)
		o.bus.Publish(eventbus.TopicTurnRetry, attempt)
		select {
		case <-time.After(d.Delay):
		case <-ctx.Done():
			return msgBusy
		}
	}
}

func (o *Orchestrator) turn(ctx context.Context, question string) (string, error) {
	gen, err := o.provider.Chat(ctx, &llm.ChatRequest{
		Messages:    o.buildContext(ctx),
		MaxTokens:   o.cfg.MaxTokens,
		Temperature: o.cfg.Temperature,
		TopP:        o.cfg.TopP,
		TopK:        o.cfg.TopK,
	})
	if err != nil {
		return "", err
	}
	o.bus.Publish(eventbus.TopicSQLGenerated, gen.Content)

	res, err := o.runner.Run(ctx, gen.Content)
	if err != nil {
		var qerr *query.Error
		if errors.As(err, &qerr) {
			// Query-side failures are terminal replies, never retried and
			// never persisted.
			switch qerr.Kind {
			case query.KindInvalidShape:
				log.Printf("[agent] model output was not a usable query: %v", qerr)
				return msgRephrase, nil
			case query.KindEngineFailed:
				log.Printf("[agent] warehouse rejected query: %v", qerr)
				return msgEngineError(qerr.Unwrap()), nil
			}
		}
		return "", err
	}
	o.bus.Publish(eventbus.TopicSQLExecuted, res.Query)

	answer := msgNoData
	if !res.Empty() {
		interp, err := o.provider.Chat(ctx, &llm.ChatRequest{
			Messages: []llm.Message{
				{Role: "user", Content: buildInterpretPrompt(question, query.RenderRows(res.Formatted))},
			},
			MaxTokens:    o.cfg.MaxTokens,
			Temperature:  o.cfg.Temperature,
			SystemPrompt: interpretSystemPrompt,
		})
		if err != nil {
			return "", err
		}
		answer = strings.TrimSpace(interp.Content)
	}
	answer = o.ensureMarker(answer)

	o.persist(ctx, question, answer, res)
	return answer, nil
}

// ensureMarker prepends the configured answer marker when the model omitted
// it, so channels can tell final answers from error replies.
func (o *Orchestrator) ensureMarker(answer string) string {
	marker := o.cfg.AnswerMarker
	if marker == "" || strings.HasPrefix(answer, marker) {
		return answer
	}
	return marker + " " + answer
}

func (o *Orchestrator) persist(ctx context.Context, question, answer string, res *query.Result) {
	meta := map[string]any{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"sql":       res.Query,
		"rows":      len(res.Rows),
	}
	if err := o.store.Add(ctx, question, answer, meta); err != nil {
		// The user already has the answer; losing the index write is
		// logged, not surfaced.
		log.Printf("[agent] failed to persist interaction: %v", err)
		return
	}
	o.bus.Publish(eventbus.TopicMemoryWrite, question)
}

// truncate bounds short-term history to MaxHistory turn pairs.
func (o *Orchestrator) truncate() {
	limit := o.cfg.MaxHistory * 2
	if limit > 0 && len(o.conversation) > limit {
		o.conversation = o.conversation[len(o.conversation)-limit:]
	}
}

// Clear wipes both short-term history and the semantic index.
func (o *Orchestrator) Clear(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.conversation = nil
	if err := o.store.Clear(ctx); err != nil {
		return err
	}
	o.bus.Publish(eventbus.TopicMemoryClear, nil)
	return nil
}

// MemoryCount reports how many interactions the semantic index holds.
func (o *Orchestrator) MemoryCount(ctx context.Context) int {
	n, err := o.store.Count(ctx)
	if err != nil {
		log.Printf("[agent] memory count failed: %v", err)
		return 0
	}
	return n
}

// History returns a copy of the short-term conversation.
func (o *Orchestrator) History() []llm.Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]llm.Message, len(o.conversation))
	copy(out, o.conversation)
	return out
}
