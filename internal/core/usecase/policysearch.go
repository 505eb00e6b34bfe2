package usecase

import (
	"context"
	"log/slog"

	"github.com/scholarshield/backend/internal/core/domain"
	"github.com/scholarshield/backend/internal/core/ports"
)

// maxPolicyPassages caps how many passages a search may hand the
// orchestrator.
const maxPolicyPassages = 3

// PolicySearchService resolves the newest indexed handbook and runs
// semantic retrieval against its collection. It implements the
// never-failing search contract: embedding errors, transport errors and a
// missing index all surface as an empty result, logged but not raised.
type PolicySearchService struct {
	handbooks ports.HandbookRepository
	embedder  ports.Embedder
	vectorDB  ports.VectorStore
	log       *slog.Logger
}

func NewPolicySearchService(
	handbooks ports.HandbookRepository,
	embedder ports.Embedder,
	vectorDB ports.VectorStore,
	log *slog.Logger,
) *PolicySearchService {
	return &PolicySearchService{
		handbooks: handbooks,
		embedder:  embedder,
		vectorDB:  vectorDB,
		log:       log,
	}
}

func (s *PolicySearchService) SearchPolicies(ctx context.Context, query string) []domain.PolicyPassage {
	handbook, err := s.handbooks.LatestIndexed(ctx)
	if err != nil {
		if domain.IsKind(err, domain.ErrNotFound) {
			s.log.Info("no indexed handbook, policy search returns nothing")
		} else {
			s.log.Warn("resolve handbook index failed", slog.String("error", err.Error()))
		}
		return nil
	}

	queryVector, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		s.log.Warn("embed policy query failed", slog.String("error", err.Error()))
		return nil
	}

	passages, err := s.vectorDB.Search(ctx, handbook.IndexName, queryVector, maxPolicyPassages)
	if err != nil {
		s.log.Warn("policy search failed",
			slog.String("collection", handbook.IndexName),
			slog.String("error", err.Error()))
		return nil
	}
	if len(passages) > maxPolicyPassages {
		passages = passages[:maxPolicyPassages]
	}
	return passages
}
