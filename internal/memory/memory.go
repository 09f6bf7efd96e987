package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/tmc/langchaingo/embeddings"
)

// Record is one remembered piece of text with its embedding.
type Record struct {
	Text   string
	Vector []float32
}

// Match is a search hit with its cosine similarity score.
type Match struct {
	Text  string
	Score float64
}

// Index is an in-process semantic text memory: texts are embedded on
// save and recalled by cosine similarity against a query embedding.
type Index struct {
	mu       sync.RWMutex
	embedder embeddings.Embedder
	records  []Record
}

func NewIndex(embedder embeddings.Embedder) *Index {
	return &Index{embedder: embedder}
}

// Save embeds the text and appends it to the index.
func (ix *Index) Save(ctx context.Context, text string) error {
	if text == "" {
		return fmt.Errorf("nothing to remember")
	}
	vecs, err := ix.embedder.EmbedDocuments(ctx, []string{text})
	if err != nil {
		return fmt.Errorf("failed to embed text: %w", err)
	}
	if len(vecs) == 0 {
		return fmt.Errorf("embedder returned no vectors")
	}

	ix.mu.Lock()
	ix.records = append(ix.records, Record{Text: text, Vector: vecs[0]})
	ix.mu.Unlock()
	return nil
}

// Search returns up to limit records scoring at least minScore against
// the query, best first.
func (ix *Index) Search(ctx context.Context, query string, limit int, minScore float64) ([]Match, error) {
	qvec, err := ix.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	ix.mu.RLock()
	matches := make([]Match, 0, len(ix.records))
	for _, r := range ix.records {
		score := cosine(qvec, r.Vector)
		if score >= minScore {
			matches = append(matches, Match{Text: r.Text, Score: score})
		}
	}
	ix.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// Len returns the number of stored records.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.records)
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
