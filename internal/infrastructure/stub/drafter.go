package stub

import (
	"context"
	"fmt"
	"time"

	"github.com/scholarshield/backend/internal/core/domain"
)

// NegotiationDrafter fills a fixed extension-request template from the
// bill and the first citation.
type NegotiationDrafter struct{}

func NewNegotiationDrafter() *NegotiationDrafter {
	return &NegotiationDrafter{}
}

func (d *NegotiationDrafter) DraftNegotiationEmail(_ context.Context, bill domain.BillRecord, advice domain.Advice) (string, error) {
	invoiceID := bill.InvoiceID
	if invoiceID == "" {
		invoiceID = "INV-2024-001234"
	}

	proposedDate := "two weeks from the original due date"
	if due, err := time.Parse(domain.DueDateLayout, bill.DueDate); err == nil {
		proposedDate = due.AddDate(0, 0, 14).Format("January 02, 2006")
	}

	citation := "University Handbook Section 4.2"
	if len(advice.Citations) > 0 {
		citation = advice.Citations[0]
	}

	return fmt.Sprintf(`Subject: Request for Tuition Payment Extension - Invoice %s

Dear Bursar's Office,

I am writing to respectfully request an extension for tuition payment for Invoice %s in the amount of $%.2f, which is currently due on %s.

Per %s regarding hardship extensions, I am requesting a payment extension due to unforeseen financial circumstances. I am committed to fulfilling this financial obligation and propose a new payment date of %s.

I understand the importance of meeting financial commitments to the university and assure you of my intent to submit payment by the proposed date. I am happy to provide any additional documentation if required.

Thank you for your understanding and consideration of this request.

Respectfully,
[Student Name]
[Student ID]`,
		invoiceID, invoiceID, bill.Amount(), bill.DueDate, citation, proposedDate), nil
}
