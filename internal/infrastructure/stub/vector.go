package stub

import (
	"context"
	"hash/fnv"
	"sync"

	"github.com/scholarshield/backend/internal/core/domain"
)

const stubVectorSize = 8

// Embedder derives small deterministic vectors from a hash of the text, so
// handbook indexing completes offline with stable output.
type Embedder struct{}

func NewEmbedder() *Embedder {
	return &Embedder{}
}

func (e *Embedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = hashVector(text)
	}
	return vectors, nil
}

func (e *Embedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	return hashVector(text), nil
}

func hashVector(text string) []float32 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	seed := h.Sum64()

	vector := make([]float32, stubVectorSize)
	for i := range vector {
		seed = seed*6364136223846793005 + 1442695040888963407
		vector[i] = float32(seed%2000)/1000 - 1
	}
	return vector
}

// VectorStore keeps indexed chunks in memory. Search ignores the query
// vector and returns chunks in document order, which keeps offline
// retrieval deterministic.
type VectorStore struct {
	mu          sync.Mutex
	collections map[string][]domain.PolicyPassage
}

func NewVectorStore() *VectorStore {
	return &VectorStore{collections: make(map[string][]domain.PolicyPassage)}
}

func (s *VectorStore) EnsureCollection(_ context.Context, name string, _ int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.collections[name]; !ok {
		s.collections[name] = nil
	}
	return nil
}

func (s *VectorStore) UpsertChunks(
	_ context.Context,
	collection string,
	doc *domain.HandbookDocument,
	chunks []domain.HandbookChunk,
	_ [][]float32,
) error {
	passages := make([]domain.PolicyPassage, len(chunks))
	for i, chunk := range chunks {
		passages[i] = domain.PolicyPassage{
			Content: chunk.Content,
			Source:  doc.Filename,
			Score:   1 - float64(i)*0.01,
			Section: chunk.Section,
			Page:    chunk.Page,
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections[collection] = passages
	return nil
}

func (s *VectorStore) Search(_ context.Context, collection string, _ []float32, limit int) ([]domain.PolicyPassage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	passages := s.collections[collection]
	if limit > 0 && len(passages) > limit {
		passages = passages[:limit]
	}
	out := make([]domain.PolicyPassage, len(passages))
	copy(out, passages)
	return out, nil
}
