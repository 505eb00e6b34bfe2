package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/scholarshield/backend/internal/core/domain"
)

// AssessmentRepository stores the full assessment as JSONB next to the
// columns the list/export queries filter and sort on.
type AssessmentRepository struct {
	db *sql.DB
}

func NewAssessmentRepository(db *sql.DB) *AssessmentRepository {
	return &AssessmentRepository{db: db}
}

func (r *AssessmentRepository) EnsureSchema(ctx context.Context) error {
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
CREATE TABLE IF NOT EXISTS case_assessments (
	id TEXT PRIMARY KEY,
	risk_level TEXT NOT NULL,
	status TEXT NOT NULL,
	total_amount DOUBLE PRECISION,
	vendor_name TEXT NOT NULL DEFAULT '',
	payload JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_case_assessments_created_at ON case_assessments(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_case_assessments_risk_level ON case_assessments(risk_level);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *AssessmentRepository) Save(ctx context.Context, assessment *domain.CaseAssessment) error {
	payload, err := json.Marshal(assessment)
	if err != nil {
		return fmt.Errorf("marshal assessment: %w", err)
	}

	var totalAmount *float64
	vendor := ""
	if assessment.BillData != nil {
		totalAmount = assessment.BillData.TotalAmount
		vendor = assessment.BillData.VendorName
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO case_assessments (id, risk_level, status, total_amount, vendor_name, payload, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
ON CONFLICT (id) DO UPDATE
SET risk_level = EXCLUDED.risk_level, status = EXCLUDED.status,
    total_amount = EXCLUDED.total_amount, vendor_name = EXCLUDED.vendor_name,
    payload = EXCLUDED.payload
`,
		assessment.ID, string(assessment.RiskLevel), string(assessment.Status),
		totalAmount, vendor, payload, assessment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert assessment: %w", err)
	}
	return nil
}

func (r *AssessmentRepository) GetByID(ctx context.Context, id string) (*domain.CaseAssessment, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT payload
FROM case_assessments
WHERE id = $1
`, id)

	var payload []byte
	if err := row.Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get assessment", fmt.Errorf("id %s", id))
		}
		return nil, fmt.Errorf("scan assessment: %w", err)
	}

	return unmarshalAssessment(payload)
}

func (r *AssessmentRepository) List(ctx context.Context, limit int) ([]domain.CaseAssessment, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT payload
FROM case_assessments
ORDER BY created_at DESC
LIMIT $1
`, limit)
	if err != nil {
		return nil, fmt.Errorf("list assessments: %w", err)
	}
	defer rows.Close()

	return collectAssessments(rows)
}

func (r *AssessmentRepository) ListBetween(ctx context.Context, from, to time.Time) ([]domain.CaseAssessment, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT payload
FROM case_assessments
WHERE created_at >= $1 AND created_at < $2
ORDER BY created_at DESC
`, from, to)
	if err != nil {
		return nil, fmt.Errorf("list assessments between: %w", err)
	}
	defer rows.Close()

	return collectAssessments(rows)
}

func collectAssessments(rows *sql.Rows) ([]domain.CaseAssessment, error) {
	var out []domain.CaseAssessment
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan assessment row: %w", err)
		}
		assessment, err := unmarshalAssessment(payload)
		if err != nil {
			return nil, err
		}
		out = append(out, *assessment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assessment rows: %w", err)
	}
	return out, nil
}

func unmarshalAssessment(payload []byte) (*domain.CaseAssessment, error) {
	var assessment domain.CaseAssessment
	if err := json.Unmarshal(payload, &assessment); err != nil {
		return nil, fmt.Errorf("unmarshal assessment payload: %w", err)
	}
	return &assessment, nil
}
