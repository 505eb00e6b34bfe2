// Package stub provides deterministic collaborators for running the API
// without the model, vector, translation and speech backends. Output is
// fixed so demos and smoke tests behave the same on every machine.
package stub

import (
	"context"
	"time"

	"github.com/scholarshield/backend/internal/core/domain"
)

// BillExtractor returns the same sample tuition bill for every upload.
// The due date is always tomorrow, which classifies as CRITICAL and
// exercises the full pipeline.
type BillExtractor struct {
	now func() time.Time
}

func NewBillExtractor() *BillExtractor {
	return &BillExtractor{now: time.Now}
}

func (e *BillExtractor) ExtractBill(_ context.Context, _ []byte) (domain.BillRecord, error) {
	amount := 1200.00
	tomorrow := e.now().AddDate(0, 0, 1).Format(domain.DueDateLayout)
	return domain.BillRecord{
		TotalAmount: &amount,
		DueDate:     tomorrow,
		VendorName:  "State University",
		InvoiceID:   "INV-2024-001234",
	}, nil
}
