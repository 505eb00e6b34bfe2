package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/scholarshield/backend/internal/core/domain"
)

type HandbookRepository struct {
	db *sql.DB
}

func NewHandbookRepository(db *sql.DB) *HandbookRepository {
	return &HandbookRepository{db: db}
}

func (r *HandbookRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, schemaLockKey); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS handbooks (
	id TEXT PRIMARY KEY,
	filename TEXT NOT NULL,
	content_type TEXT NOT NULL,
	storage_path TEXT NOT NULL,
	index_name TEXT NOT NULL,
	chunk_count INTEGER NOT NULL DEFAULT 0,
	status TEXT NOT NULL,
	error_message TEXT,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_handbooks_status ON handbooks(status);
CREATE INDEX IF NOT EXISTS idx_handbooks_updated_at ON handbooks(updated_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *HandbookRepository) Create(ctx context.Context, doc *domain.HandbookDocument) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO handbooks (id, filename, content_type, storage_path, index_name, chunk_count, status, error_message, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
`,
		doc.ID, doc.Filename, doc.ContentType, doc.StoragePath, doc.IndexName,
		doc.ChunkCount, string(doc.Status), doc.Error, doc.CreatedAt, doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert handbook: %w", err)
	}
	return nil
}

func (r *HandbookRepository) GetByID(ctx context.Context, id string) (*domain.HandbookDocument, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, filename, content_type, storage_path, index_name, chunk_count, status, error_message, created_at, updated_at
FROM handbooks
WHERE id = $1
`, id)

	doc, err := scanHandbook(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get handbook", fmt.Errorf("id %s", id))
		}
		return nil, fmt.Errorf("scan handbook: %w", err)
	}
	return doc, nil
}

func (r *HandbookRepository) UpdateStatus(ctx context.Context, id string, status domain.HandbookStatus, errMessage string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE handbooks
SET status = $2, error_message = $3, updated_at = $4
WHERE id = $1
`, id, string(status), errMessage, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update handbook status: %w", err)
	}
	return requireRow(res, "update handbook status", id)
}

func (r *HandbookRepository) MarkIndexed(ctx context.Context, id string, chunkCount int) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE handbooks
SET status = $2, chunk_count = $3, error_message = '', updated_at = $4
WHERE id = $1
`, id, string(domain.HandbookIndexed), chunkCount, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("mark handbook indexed: %w", err)
	}
	return requireRow(res, "mark handbook indexed", id)
}

func (r *HandbookRepository) LatestIndexed(ctx context.Context) (*domain.HandbookDocument, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, filename, content_type, storage_path, index_name, chunk_count, status, error_message, created_at, updated_at
FROM handbooks
WHERE status = $1
ORDER BY updated_at DESC
LIMIT 1
`, string(domain.HandbookIndexed))

	doc, err := scanHandbook(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "latest indexed handbook", errors.New("none indexed"))
		}
		return nil, fmt.Errorf("scan handbook: %w", err)
	}
	return doc, nil
}

func scanHandbook(row *sql.Row) (*domain.HandbookDocument, error) {
	var doc domain.HandbookDocument
	var status string
	err := row.Scan(
		&doc.ID, &doc.Filename, &doc.ContentType, &doc.StoragePath, &doc.IndexName,
		&doc.ChunkCount, &status, &doc.Error, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	doc.Status = domain.HandbookStatus(status)
	return &doc, nil
}

func requireRow(res sql.Result, operation, id string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", operation, err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrNotFound, operation, fmt.Errorf("id %s", id))
	}
	return nil
}
