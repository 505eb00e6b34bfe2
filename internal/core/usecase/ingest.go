package usecase

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/scholarshield/backend/internal/core/domain"
	"github.com/scholarshield/backend/internal/core/ports"
)

var allowedHandbookExtensions = map[string]bool{
	".pdf":  true,
	".html": true,
	".htm":  true,
	".txt":  true,
	".md":   true,
}

type IngestHandbookUseCase struct {
	repo    ports.HandbookRepository
	storage ports.ObjectStorage
	queue   ports.IndexQueue
}

func NewIngestHandbookUseCase(
	repo ports.HandbookRepository,
	storage ports.ObjectStorage,
	queue ports.IndexQueue,
) *IngestHandbookUseCase {
	return &IngestHandbookUseCase{
		repo:    repo,
		storage: storage,
		queue:   queue,
	}
}

// Upload stores a handbook file, registers it with a fresh per-upload index
// name and enqueues the asynchronous index build.
func (uc *IngestHandbookUseCase) Upload(
	ctx context.Context,
	filename, contentType string,
	body io.Reader,
) (*domain.HandbookDocument, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedHandbookExtensions[ext] {
		return nil, domain.WrapError(domain.ErrInvalidInput, "validate handbook upload",
			fmt.Errorf("unsupported file type %q", ext))
	}

	id := uuid.NewString()
	storageKey := fmt.Sprintf("%s_%s", id, sanitizeFilename(filename))
	now := time.Now().UTC()

	if err := uc.storage.Save(ctx, storageKey, body); err != nil {
		return nil, fmt.Errorf("save to object storage: %w", err)
	}

	doc := &domain.HandbookDocument{
		ID:          id,
		Filename:    filename,
		ContentType: contentType,
		StoragePath: storageKey,
		IndexName:   indexNameFor(filename),
		Status:      domain.HandbookUploaded,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := uc.repo.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("create handbook metadata: %w", err)
	}

	if err := uc.queue.PublishHandbookUploaded(ctx, doc.ID); err != nil {
		return nil, fmt.Errorf("publish index job: %w", err)
	}

	return doc, nil
}

// indexNameFor derives a collection name unique to this upload, so a
// re-uploaded handbook never mixes with passages of an older revision.
func indexNameFor(filename string) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	base = strings.ToLower(base)
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= '0' && r <= '9':
			return r
		default:
			return '-'
		}
	}, base)
	for strings.Contains(base, "--") {
		base = strings.ReplaceAll(base, "--", "-")
	}
	base = strings.Trim(base, "-")
	if base == "" {
		base = "handbook"
	}
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return base + "-" + suffix
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" {
		return "document.bin"
	}
	return base
}
