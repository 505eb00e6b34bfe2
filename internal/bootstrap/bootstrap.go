package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/scholarshield/backend/internal/config"
	"github.com/scholarshield/backend/internal/core/ports"
	"github.com/scholarshield/backend/internal/core/usecase"
	"github.com/scholarshield/backend/internal/infrastructure/chunking"
	"github.com/scholarshield/backend/internal/infrastructure/extractor/billpdf"
	"github.com/scholarshield/backend/internal/infrastructure/extractor/handbook"
	"github.com/scholarshield/backend/internal/infrastructure/llm/ollama"
	"github.com/scholarshield/backend/internal/infrastructure/queue/nats"
	"github.com/scholarshield/backend/internal/infrastructure/repository/postgres"
	"github.com/scholarshield/backend/internal/infrastructure/resilience"
	"github.com/scholarshield/backend/internal/infrastructure/speech/coqui"
	"github.com/scholarshield/backend/internal/infrastructure/storage/localfs"
	"github.com/scholarshield/backend/internal/infrastructure/stub"
	"github.com/scholarshield/backend/internal/infrastructure/translate/libretranslate"
	"github.com/scholarshield/backend/internal/infrastructure/vector/qdrant"
)

// Metrics carries the per-process metric sinks for the core usecases. A
// binary passes the implementations backed by its own registry; nil fields
// fall back to no-ops.
type Metrics struct {
	Case  ports.CaseMetrics
	Index ports.IndexMetrics
}

type App struct {
	Config config.Config

	Queue       ports.IndexQueue
	Assessments ports.AssessmentRepository
	Handbooks   ports.HandbookRepository

	AssessUC  ports.CaseAssessor
	IngestUC  ports.HandbookIngestor
	IndexUC   ports.HandbookIndexer
	EssayUC   ports.GrantEssayWriter
	ExplainUC ports.ParentExplainer

	// Searcher is exposed separately so the MCP server can offer policy
	// retrieval as a standalone tool.
	Searcher ports.PolicySearcher

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, log *slog.Logger, m Metrics) (*App, error) {
	if m.Case == nil {
		m.Case = noopCaseMetrics{}
	}
	if m.Index == nil {
		m.Index = noopIndexMetrics{}
	}

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	assessments := postgres.NewAssessmentRepository(db)
	if err := assessments.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure assessment schema: %w", err)
	}
	handbooks := postgres.NewHandbookRepository(db)
	if err := handbooks.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure handbook schema: %w", err)
	}

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init index queue: %w", err)
	}

	var (
		extractor   ports.BillExtractor
		searcher    ports.PolicySearcher
		synthesizer ports.AdviceSynthesizer
		drafter     ports.NegotiationDrafter
		generator   ports.TextGenerator
		translator  ports.Translator
		speech      ports.SpeechSynthesizer
		embedder    ports.Embedder
		vectorDB    ports.VectorStore
	)
	if cfg.UseStubCollaborators {
		log.Info("using stub collaborators, external model backends are not contacted")
		extractor = stub.NewBillExtractor()
		searcher = stub.NewPolicySearcher()
		synthesizer = stub.NewAdviceSynthesizer()
		drafter = stub.NewNegotiationDrafter()
		generator = stub.NewTextGenerator()
		translator = stub.NewTranslator()
		speech = stub.NewSpeechSynthesizer()
		embedder = stub.NewEmbedder()
		vectorDB = stub.NewVectorStore()
	} else {
		client := ollama.NewWithExecutor(cfg.OllamaURL, cfg.OllamaGenModel, cfg.OllamaEmbedModel, executor)
		embedder = ollama.NewEmbedder(client)
		generator = ollama.NewGenerator(client)
		vectorDB = qdrant.New(cfg.QdrantURL)
		extractor = billpdf.New()
		searcher = usecase.NewPolicySearchService(handbooks, embedder, vectorDB, log)
		synthesizer = ollama.NewAdviceSynthesizer(client, log)
		drafter = ollama.NewNegotiationDrafter(client)
		translator = libretranslate.NewWithExecutor(cfg.TranslatorURL, executor)
		speech = coqui.NewWithExecutor(cfg.SpeechURL, executor)
	}

	chunker := chunking.NewSectionSplitter(cfg.ChunkSize, cfg.ChunkOverlap)
	handbookExtractor := handbook.NewExtractor(storage)

	assessUC := usecase.NewAssessCaseUseCase(extractor, searcher, synthesizer, drafter, m.Case, log)
	ingestUC := usecase.NewIngestHandbookUseCase(handbooks, storage, queue)
	indexUC := usecase.NewIndexHandbookUseCase(handbooks, handbookExtractor, chunker, embedder, vectorDB, m.Index)
	essayUC := usecase.NewGrantEssayUseCase(generator, log)
	explainUC := usecase.NewExplainCaseUseCase(generator, translator, speech, log)

	return &App{
		Config: cfg,

		Queue:       queue,
		Assessments: assessments,
		Handbooks:   handbooks,

		AssessUC:  assessUC,
		IngestUC:  ingestUC,
		IndexUC:   indexUC,
		EssayUC:   essayUC,
		ExplainUC: explainUC,

		Searcher: searcher,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

type noopCaseMetrics struct{}

func (noopCaseMetrics) CaseAssessed(string, string, float64) {}
func (noopCaseMetrics) StageFailure(string)                  {}

type noopIndexMetrics struct{}

func (noopIndexMetrics) IndexJob(string) {}
