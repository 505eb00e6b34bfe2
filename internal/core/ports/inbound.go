package ports

import (
	"context"
	"io"

	"github.com/scholarshield/backend/internal/core/domain"
)

// CaseAssessor is the inbound contract for one full case assessment. The
// returned assessment is always terminal; failures are encoded in its
// status rather than returned as errors.
type CaseAssessor interface {
	ProcessCase(ctx context.Context, document []byte) *domain.CaseAssessment
}

// HandbookIngestor is the inbound contract for handbook upload orchestration.
type HandbookIngestor interface {
	Upload(ctx context.Context, filename, contentType string, body io.Reader) (*domain.HandbookDocument, error)
}

// HandbookIndexer is the inbound contract for asynchronous index builds.
type HandbookIndexer interface {
	IndexByID(ctx context.Context, handbookID string) error
}

// GrantEssayWriter drafts grant-application essays.
type GrantEssayWriter interface {
	DraftGrantEssay(ctx context.Context, req domain.GrantEssayRequest) (*domain.GrantEssay, error)
}

// ParentExplainer renders an assessment as a short spoken-language summary
// for a student's family.
type ParentExplainer interface {
	Explain(ctx context.Context, assessment *domain.CaseAssessment, language string) (*domain.ParentExplanation, error)
}
