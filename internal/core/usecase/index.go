package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/scholarshield/backend/internal/core/domain"
	"github.com/scholarshield/backend/internal/core/ports"
)

type IndexHandbookUseCase struct {
	repo      ports.HandbookRepository
	extractor ports.HandbookTextExtractor
	chunker   ports.Chunker
	embedder  ports.Embedder
	vectorDB  ports.VectorStore
	metrics   ports.IndexMetrics
}

func NewIndexHandbookUseCase(
	repo ports.HandbookRepository,
	extractor ports.HandbookTextExtractor,
	chunker ports.Chunker,
	embedder ports.Embedder,
	vectorDB ports.VectorStore,
	metrics ports.IndexMetrics,
) *IndexHandbookUseCase {
	return &IndexHandbookUseCase{
		repo:      repo,
		extractor: extractor,
		chunker:   chunker,
		embedder:  embedder,
		vectorDB:  vectorDB,
		metrics:   metrics,
	}
}

// IndexByID builds the search index for one uploaded handbook. Failures
// mark the handbook failed so the upload can be retried from scratch.
func (uc *IndexHandbookUseCase) IndexByID(ctx context.Context, handbookID string) error {
	if err := uc.markStatus(ctx, handbookID, domain.HandbookIndexing, ""); err != nil {
		return fmt.Errorf("set status=indexing: %w", err)
	}

	doc, chunkCount, err := uc.indexPipeline(ctx, handbookID)
	if err != nil {
		uc.metrics.IndexJob("failed")
		if failErr := uc.markFailed(ctx, handbookID, err); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return err
	}

	if err := uc.repo.MarkIndexed(ctx, doc.ID, chunkCount); err != nil {
		uc.metrics.IndexJob("failed")
		return fmt.Errorf("mark indexed: %w", err)
	}
	uc.metrics.IndexJob("ok")
	return nil
}

func (uc *IndexHandbookUseCase) indexPipeline(ctx context.Context, handbookID string) (*domain.HandbookDocument, int, error) {
	doc, err := uc.loadHandbook(ctx, handbookID)
	if err != nil {
		return nil, 0, err
	}

	text, err := uc.extractText(ctx, doc)
	if err != nil {
		return nil, 0, err
	}

	chunks, err := uc.chunk(text)
	if err != nil {
		return nil, 0, err
	}

	vectors, err := uc.embed(ctx, chunks)
	if err != nil {
		return nil, 0, err
	}

	if err := uc.index(ctx, doc, chunks, vectors); err != nil {
		return nil, 0, err
	}

	return doc, len(chunks), nil
}

func (uc *IndexHandbookUseCase) loadHandbook(ctx context.Context, handbookID string) (*domain.HandbookDocument, error) {
	doc, err := uc.repo.GetByID(ctx, handbookID)
	if err != nil {
		return nil, fmt.Errorf("fetch handbook by id: %w", err)
	}
	return doc, nil
}

func (uc *IndexHandbookUseCase) extractText(ctx context.Context, doc *domain.HandbookDocument) (string, error) {
	text, err := uc.extractor.Extract(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("extract handbook text: %w", err)
	}
	if text == "" {
		return "", domain.WrapError(domain.ErrInvalidInput, "extract handbook text", errors.New("empty extracted text"))
	}
	return text, nil
}

func (uc *IndexHandbookUseCase) chunk(text string) ([]domain.HandbookChunk, error) {
	chunks := uc.chunker.Split(text)
	if len(chunks) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "chunk handbook", errors.New("chunking produced zero chunks"))
	}
	return chunks, nil
}

func (uc *IndexHandbookUseCase) embed(ctx context.Context, chunks []domain.HandbookChunk) ([][]float32, error) {
	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Content
	}
	vectors, err := uc.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return nil, domain.WrapError(
			domain.ErrInvalidInput,
			"embed chunks",
			fmt.Errorf("vectors/chunks mismatch: %d/%d", len(vectors), len(chunks)),
		)
	}
	return vectors, nil
}

func (uc *IndexHandbookUseCase) index(ctx context.Context, doc *domain.HandbookDocument, chunks []domain.HandbookChunk, vectors [][]float32) error {
	if err := uc.vectorDB.EnsureCollection(ctx, doc.IndexName, len(vectors[0])); err != nil {
		return fmt.Errorf("ensure collection: %w", err)
	}
	if err := uc.vectorDB.UpsertChunks(ctx, doc.IndexName, doc, chunks, vectors); err != nil {
		return fmt.Errorf("index chunks in vector db: %w", err)
	}
	return nil
}

func (uc *IndexHandbookUseCase) markStatus(ctx context.Context, handbookID string, status domain.HandbookStatus, errMessage string) error {
	return uc.repo.UpdateStatus(ctx, handbookID, status, errMessage)
}

func (uc *IndexHandbookUseCase) markFailed(ctx context.Context, handbookID string, indexErr error) error {
	if indexErr == nil {
		return nil
	}
	return uc.markStatus(ctx, handbookID, domain.HandbookFailed, indexErr.Error())
}
