package memory

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
)

// hashEmbedder is a deterministic embedding engine for tests: texts sharing
// more words land closer together.
type hashEmbedder struct{}

func (hashEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, 16)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		var h uint32
		for _, r := range word {
			h = h*31 + uint32(r)
		}
		vec[h%16]++
	}
	return vec, nil
}

func (e hashEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i], _ = e.Embed(ctx, t)
	}
	return out, nil
}

func (hashEmbedder) Dimensions() int { return 16 }
func (hashEmbedder) Name() string    { return "hash" }

func newTestStore(t *testing.T) *VectorStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "memory.db")
	store, err := NewVectorStore(path, "taxi_chat_history", hashEmbedder{})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestAddAssignsSequentialIDs(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Add(ctx, "primera pregunta", "primera respuesta", nil); err != nil {
		t.Fatal(err)
	}
	if err := store.Add(ctx, "segunda pregunta", "segunda respuesta", nil); err != nil {
		t.Fatal(err)
	}

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Fatalf("expected 2 interactions, got %d", count)
	}

	var id string
	if err := store.db.QueryRow(`SELECT id FROM taxi_chat_history ORDER BY created_at, id LIMIT 1`).Scan(&id); err != nil {
		t.Fatal(err)
	}
	if id != "1" {
		t.Fatalf("expected first id to be 1, got %s", id)
	}
}

func TestRetrieveReturnsPairs(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Add(ctx, "cuál es la tarifa promedio", "la tarifa promedio es $14.65", map[string]any{"ts": "2026-01-01"}); err != nil {
		t.Fatal(err)
	}
	if err := store.Add(ctx, "qué día hay más viajes", "los sábados", nil); err != nil {
		t.Fatal(err)
	}

	msgs, err := store.Retrieve(ctx, "tarifa promedio por viaje", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected one user/assistant pair, got %d messages", len(msgs))
	}
	if msgs[0].Role != "user" || msgs[1].Role != "assistant" {
		t.Fatalf("unexpected roles: %s, %s", msgs[0].Role, msgs[1].Role)
	}
	if msgs[0].Content != "cuál es la tarifa promedio" {
		t.Fatalf("unexpected question: %q", msgs[0].Content)
	}
	if msgs[1].Content != "la tarifa promedio es $14.65" {
		t.Fatalf("unexpected answer: %q", msgs[1].Content)
	}
}

func TestRetrieveEmptyQuery(t *testing.T) {
	store := newTestStore(t)

	msgs, err := store.Retrieve(context.Background(), "", 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 0 {
		t.Fatalf("expected no messages, got %d", len(msgs))
	}
}

func TestRetrieveEmptyIndex(t *testing.T) {
	store := newTestStore(t)

	msgs, err := store.Retrieve(context.Background(), "tarifa", 3)
	if err != nil {
		t.Fatal(err)
	}
	if msgs != nil {
		t.Fatalf("expected nil, got %v", msgs)
	}
}

func TestRetrieveSkipsMalformedDocuments(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Add(ctx, "pregunta válida", "respuesta válida", nil); err != nil {
		t.Fatal(err)
	}
	// Simulate a corrupted document written by an older version.
	if _, err := store.db.Exec(
		`INSERT INTO taxi_chat_history (id, document, embedding) VALUES ('99', 'not a qa document', '[1,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0]')`,
	); err != nil {
		t.Fatal(err)
	}

	msgs, err := store.Retrieve(ctx, "pregunta válida", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 2 {
		t.Fatalf("malformed document should be skipped, got %d messages", len(msgs))
	}
}

func TestClearIsIdempotentAndRestartsIDs(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Add(ctx, "q", "a", nil); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 2; i++ {
		if err := store.Clear(ctx); err != nil {
			t.Fatal(err)
		}
		count, err := store.Count(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if count != 0 {
			t.Fatalf("expected empty store after clear, got %d", count)
		}
	}

	if err := store.Add(ctx, "nueva", "respuesta", nil); err != nil {
		t.Fatal(err)
	}
	var id string
	if err := store.db.QueryRow(`SELECT id FROM taxi_chat_history`).Scan(&id); err != nil {
		t.Fatal(err)
	}
	if id != "1" {
		t.Fatalf("expected id numbering to restart at 1, got %s", id)
	}
}
