package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/scholarshield/backend/internal/core/domain"
)

func newHandbookRepoWithMock(t *testing.T) (*HandbookRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return &HandbookRepository{db: db}, mock, func() { _ = db.Close() }
}

func handbookColumns() []string {
	return []string{"id", "filename", "content_type", "storage_path", "index_name", "chunk_count", "status", "error_message", "created_at", "updated_at"}
}

func TestCreateHandbookPersistsAllColumns(t *testing.T) {
	repo, mock, done := newHandbookRepoWithMock(t)
	defer done()

	now := time.Date(2024, 12, 1, 10, 0, 0, 0, time.UTC)
	doc := &domain.HandbookDocument{
		ID:          "hb-1",
		Filename:    "handbook.pdf",
		ContentType: "application/pdf",
		StoragePath: "handbooks/hb-1.pdf",
		IndexName:   "handbook_hb_1",
		Status:      domain.HandbookUploaded,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	mock.ExpectExec("INSERT INTO handbooks").
		WithArgs("hb-1", "handbook.pdf", "application/pdf", "handbooks/hb-1.pdf", "handbook_hb_1", 0, "uploaded", "", now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Create(context.Background(), doc); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetHandbookByIDReturnsDomainNotFound(t *testing.T) {
	repo, mock, done := newHandbookRepoWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT id, filename").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateHandbookStatusReportsMissingRow(t *testing.T) {
	repo, mock, done := newHandbookRepoWithMock(t)
	defer done()

	mock.ExpectExec("UPDATE handbooks").
		WithArgs("missing", "indexing", "", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), "missing", domain.HandbookIndexing, "")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestMarkIndexedUpdatesStatusAndChunkCount(t *testing.T) {
	repo, mock, done := newHandbookRepoWithMock(t)
	defer done()

	mock.ExpectExec("UPDATE handbooks").
		WithArgs("hb-1", "indexed", 7, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.MarkIndexed(context.Background(), "hb-1", 7); err != nil {
		t.Fatalf("MarkIndexed() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestMarkIndexedReportsMissingRow(t *testing.T) {
	repo, mock, done := newHandbookRepoWithMock(t)
	defer done()

	mock.ExpectExec("UPDATE handbooks").
		WithArgs("missing", "indexed", 3, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.MarkIndexed(context.Background(), "missing", 3)
	if !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLatestIndexedReturnsNewestDocument(t *testing.T) {
	repo, mock, done := newHandbookRepoWithMock(t)
	defer done()

	created := time.Date(2024, 12, 1, 10, 0, 0, 0, time.UTC)
	updated := created.Add(5 * time.Minute)
	rows := sqlmock.NewRows(handbookColumns()).
		AddRow("hb-2", "handbook-v2.pdf", "application/pdf", "handbooks/hb-2.pdf", "handbook_hb_2", 12, "indexed", "", created, updated)

	mock.ExpectQuery("SELECT id, filename").
		WithArgs("indexed").
		WillReturnRows(rows)

	doc, err := repo.LatestIndexed(context.Background())
	if err != nil {
		t.Fatalf("LatestIndexed() error = %v", err)
	}
	if doc.ID != "hb-2" || doc.Status != domain.HandbookIndexed || doc.ChunkCount != 12 {
		t.Fatalf("unexpected document: %+v", doc)
	}
	if doc.IndexName != "handbook_hb_2" {
		t.Fatalf("unexpected index name %q", doc.IndexName)
	}
}

func TestLatestIndexedReturnsNotFoundWhenNoneIndexed(t *testing.T) {
	repo, mock, done := newHandbookRepoWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT id, filename").
		WithArgs("indexed").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.LatestIndexed(context.Background())
	if !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
