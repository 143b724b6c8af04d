package memory

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	_ "modernc.org/sqlite"

	"taxitalk/internal/embedding"
	"taxitalk/internal/llm"
)

var identRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// VectorStore implements Store over SQLite, with embeddings generated by
// the configured engine. Documents are stored as "Q: {question}\nA: {answer}"
// with their embedding serialized alongside.
type VectorStore struct {
	db         *sql.DB
	engine     embedding.Engine
	collection string
}

// NewVectorStore opens (or creates) the store at dbPath using the given
// collection name as its table.
func NewVectorStore(dbPath, collection string, engine embedding.Engine) (*VectorStore, error) {
	if !identRe.MatchString(collection) {
		return nil, fmt.Errorf("invalid collection name: %q", collection)
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	s := &VectorStore{db: db, engine: engine, collection: collection}
	if err := s.createCollection(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

func (s *VectorStore) createCollection(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id TEXT PRIMARY KEY,
		document TEXT NOT NULL,
		metadata TEXT,
		embedding TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`, s.collection))
	return err
}

func (s *VectorStore) Add(ctx context.Context, question, answer string, metadata map[string]any) error {
	doc := "Q: " + question + "\nA: " + answer

	vec, err := s.engine.Embed(ctx, doc)
	if err != nil {
		return fmt.Errorf("embed interaction: %w", err)
	}
	vecJSON, err := json.Marshal(vec)
	if err != nil {
		return fmt.Errorf("serialize embedding: %w", err)
	}

	metaJSON, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("serialize metadata: %w", err)
	}

	count, err := s.Count(ctx)
	if err != nil {
		return err
	}
	id := strconv.Itoa(count + 1)

	_, err = s.db.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %s (id, document, metadata, embedding) VALUES (?, ?, ?, ?)`, s.collection),
		id, doc, string(metaJSON), string(vecJSON),
	)
	return err
}

func (s *VectorStore) Retrieve(ctx context.Context, query string, k int) ([]llm.Message, error) {
	if query == "" || k <= 0 {
		return nil, nil
	}

	count, err := s.Count(ctx)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}

	queryVec, err := s.engine.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT document, embedding FROM %s WHERE embedding IS NOT NULL`, s.collection))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	type candidate struct {
		document   string
		similarity float64
	}

	var candidates []candidate
	for rows.Next() {
		var document, vecJSON string
		if err := rows.Scan(&document, &vecJSON); err != nil {
			continue
		}

		var vec []float32
		if err := json.Unmarshal([]byte(vecJSON), &vec); err != nil {
			continue
		}

		similarity, err := embedding.CosineSimilarity(queryVec, vec)
		if err != nil {
			continue
		}
		candidates = append(candidates, candidate{document: document, similarity: similarity})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].similarity > candidates[j].similarity
	})
	if len(candidates) > k {
		candidates = candidates[:k]
	}

	var messages []llm.Message
	for _, c := range candidates {
		question, answer, ok := parseDocument(c.document)
		if !ok {
			continue
		}
		messages = append(messages,
			llm.Message{Role: "user", Content: question},
			llm.Message{Role: "assistant", Content: answer},
		)
	}
	return messages, nil
}

func (s *VectorStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf(`DROP TABLE IF EXISTS %s`, s.collection)); err != nil {
		return fmt.Errorf("drop collection: %w", err)
	}
	return s.createCollection(ctx)
}

func (s *VectorStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT COUNT(*) FROM %s`, s.collection)).Scan(&count)
	return count, err
}

func (s *VectorStore) Close() error {
	return s.db.Close()
}

// parseDocument splits a stored "Q: ...\nA: ..." document back into its
// question and answer. Malformed documents are rejected, not fatal.
func parseDocument(doc string) (question, answer string, ok bool) {
	parts := strings.SplitN(doc, "\nA: ", 2)
	if len(parts) != 2 || !strings.HasPrefix(parts[0], "Q: ") {
		return "", "", false
	}
	return strings.TrimPrefix(parts[0], "Q: "), parts[1], true
}
