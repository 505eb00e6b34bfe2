package ollama

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/scholarshield/backend/internal/core/domain"
)

var errEmptyDraft = errors.New("model returned empty draft")

// NegotiationDrafter writes the extension-request email for critical cases.
type NegotiationDrafter struct {
	client *Client
}

func NewNegotiationDrafter(client *Client) *NegotiationDrafter {
	return &NegotiationDrafter{client: client}
}

func (d *NegotiationDrafter) DraftNegotiationEmail(ctx context.Context, bill domain.BillRecord, advice domain.Advice) (string, error) {
	text, err := d.client.generateText(ctx, buildNegotiationPrompt(bill, advice))
	if err != nil {
		return "", domain.WrapError(domain.ErrDraftFailed, "draft negotiation email", err)
	}
	if strings.TrimSpace(text) == "" {
		return "", domain.WrapError(domain.ErrDraftFailed, "draft negotiation email", errEmptyDraft)
	}
	return text, nil
}

// proposedExtensionDate is the payment date the email asks for: two weeks
// past the original due date, spelled out when the due date is known.
func proposedExtensionDate(dueDate string) string {
	due, err := time.Parse(domain.DueDateLayout, strings.TrimSpace(dueDate))
	if err != nil {
		return "two weeks from the original due date"
	}
	return due.AddDate(0, 0, 14).Format("January 02, 2006")
}
