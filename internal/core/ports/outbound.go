package ports

import (
	"context"
	"io"
	"time"

	"github.com/scholarshield/backend/internal/core/domain"
)

// BillExtractor turns an uploaded bill document into a normalized record.
// Extraction failure is the one fatal collaborator failure in a case.
type BillExtractor interface {
	ExtractBill(ctx context.Context, document []byte) (domain.BillRecord, error)
}

// PolicySearcher returns up to three policy passages ranked by score. It
// never fails: no-match and unavailability both surface as an empty slice.
type PolicySearcher interface {
	SearchPolicies(ctx context.Context, query string) []domain.PolicyPassage
}

// AdviceSynthesizer turns passages plus the query into structured advice.
// It never fails: when generation is unavailable it returns a low-confidence
// fallback with a generic actionable step.
type AdviceSynthesizer interface {
	SynthesizeAdvice(ctx context.Context, passages []domain.PolicyPassage, query string) domain.Advice
}

// NegotiationDrafter writes the extension-request email. It may fail; the
// orchestrator contains that failure instead of aborting the case.
type NegotiationDrafter interface {
	DraftNegotiationEmail(ctx context.Context, bill domain.BillRecord, advice domain.Advice) (string, error)
}

// TextGenerator produces free-form or JSON model output for the supporting
// writers (grant essay, parent summary).
type TextGenerator interface {
	GenerateFromPrompt(ctx context.Context, prompt string) (string, error)
	GenerateJSONFromPrompt(ctx context.Context, prompt string) (string, error)
}

// Translator renders text into a target language.
type Translator interface {
	Translate(ctx context.Context, text, targetLanguage string) (string, error)
}

// SpeechSynthesizer renders text to spoken audio.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text, language string) ([]byte, error)
}

// AssessmentRepository persists terminal case assessments.
type AssessmentRepository interface {
	Save(ctx context.Context, assessment *domain.CaseAssessment) error
	GetByID(ctx context.Context, id string) (*domain.CaseAssessment, error)
	List(ctx context.Context, limit int) ([]domain.CaseAssessment, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]domain.CaseAssessment, error)
}

// HandbookRepository persists handbook upload state.
type HandbookRepository interface {
	Create(ctx context.Context, doc *domain.HandbookDocument) error
	GetByID(ctx context.Context, id string) (*domain.HandbookDocument, error)
	UpdateStatus(ctx context.Context, id string, status domain.HandbookStatus, errMessage string) error
	MarkIndexed(ctx context.Context, id string, chunkCount int) error
	LatestIndexed(ctx context.Context) (*domain.HandbookDocument, error)
}

// ObjectStorage stores raw uploaded files.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// IndexQueue publishes/consumes handbook indexing jobs.
type IndexQueue interface {
	PublishHandbookUploaded(ctx context.Context, handbookID string) error
	SubscribeHandbookUploaded(ctx context.Context, handler func(context.Context, string) error) error
}

// HandbookTextExtractor extracts plain text from a stored handbook.
type HandbookTextExtractor interface {
	Extract(ctx context.Context, doc *domain.HandbookDocument) (string, error)
}

// Chunker splits handbook text into indexable chunks with provenance.
type Chunker interface {
	Split(text string) []domain.HandbookChunk
}

// Embedder builds vectors for chunks and query text.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// VectorStore indexes handbook chunks and performs semantic search.
type VectorStore interface {
	EnsureCollection(ctx context.Context, name string, vectorSize int) error
	UpsertChunks(ctx context.Context, collection string, doc *domain.HandbookDocument, chunks []domain.HandbookChunk, vectors [][]float32) error
	Search(ctx context.Context, collection string, vector []float32, limit int) ([]domain.PolicyPassage, error)
}

// CaseMetrics records assessment outcomes and contained stage failures.
type CaseMetrics interface {
	CaseAssessed(riskLevel, status string, seconds float64)
	StageFailure(stage string)
}

// IndexMetrics records handbook index job outcomes.
type IndexMetrics interface {
	IndexJob(result string)
}
