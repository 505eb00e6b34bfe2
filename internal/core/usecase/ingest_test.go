package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/scholarshield/backend/internal/core/domain"
)

type ingestStorageFake struct {
	savedKey  string
	savedBody string
	err       error
}

func (f *ingestStorageFake) Save(_ context.Context, key string, data io.Reader) error {
	if f.err != nil {
		return f.err
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.savedKey = key
	f.savedBody = string(raw)
	return nil
}

func (f *ingestStorageFake) Open(context.Context, string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader("")), nil
}

type ingestQueueFake struct {
	handbookID string
	err        error
}

func (f *ingestQueueFake) PublishHandbookUploaded(_ context.Context, handbookID string) error {
	if f.err != nil {
		return f.err
	}
	f.handbookID = handbookID
	return nil
}

func (f *ingestQueueFake) SubscribeHandbookUploaded(context.Context, func(context.Context, string) error) error {
	return errors.New("not implemented")
}

func TestHandbookUploadSuccess(t *testing.T) {
	repo := &handbookRepoFake{}
	storage := &ingestStorageFake{}
	queue := &ingestQueueFake{}
	uc := NewIngestHandbookUseCase(repo, storage, queue)

	doc, err := uc.Upload(context.Background(), "student handbook.pdf", "application/pdf", bytes.NewBufferString("%PDF-1.7"))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if doc.ID == "" {
		t.Fatalf("expected handbook id")
	}
	if doc.Status != domain.HandbookUploaded {
		t.Fatalf("expected status uploaded, got %s", doc.Status)
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected repo.Create call")
	}
	if queue.handbookID != doc.ID {
		t.Fatalf("expected queued handbook id %s, got %s", doc.ID, queue.handbookID)
	}
	if !strings.Contains(storage.savedKey, "_student_handbook.pdf") {
		t.Fatalf("expected sanitized key suffix, got %s", storage.savedKey)
	}
	if storage.savedBody != "%PDF-1.7" {
		t.Fatalf("expected saved body, got %s", storage.savedBody)
	}
	if !strings.HasPrefix(doc.IndexName, "student-handbook-") {
		t.Fatalf("expected per-upload index name, got %s", doc.IndexName)
	}
}

func TestHandbookUploadRejectsUnsupportedType(t *testing.T) {
	uc := NewIngestHandbookUseCase(&handbookRepoFake{}, &ingestStorageFake{}, &ingestQueueFake{})

	_, err := uc.Upload(context.Background(), "budget.xlsx", "application/vnd.ms-excel", bytes.NewBufferString("x"))
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input kind, got %v", err)
	}
}

func TestHandbookUploadQueueError(t *testing.T) {
	queue := &ingestQueueFake{err: errors.New("queue down")}
	uc := NewIngestHandbookUseCase(&handbookRepoFake{}, &ingestStorageFake{}, queue)

	_, err := uc.Upload(context.Background(), "handbook.txt", "text/plain", bytes.NewBufferString("hello"))
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "publish index job") {
		t.Fatalf("expected publish error, got %v", err)
	}
}

func TestIndexNameForDistinctPerUpload(t *testing.T) {
	first := indexNameFor("Student Handbook 2026.pdf")
	second := indexNameFor("Student Handbook 2026.pdf")
	if !strings.HasPrefix(first, "student-handbook-2026-") {
		t.Fatalf("unexpected index base: %s", first)
	}
	if first == second {
		t.Fatalf("expected unique index names, got %s twice", first)
	}
}

func TestIndexNameForEmptyBase(t *testing.T) {
	if got := indexNameFor("???.pdf"); !strings.HasPrefix(got, "handbook-") {
		t.Fatalf("expected handbook fallback base, got %s", got)
	}
}
