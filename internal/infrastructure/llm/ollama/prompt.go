package ollama

import (
	"fmt"
	"strings"

	"github.com/scholarshield/backend/internal/core/domain"
)

func buildAdvicePrompt(passages []domain.PolicyPassage, query string) string {
	var contextBuilder strings.Builder
	for idx, passage := range passages {
		contextBuilder.WriteString(fmt.Sprintf(
			"[%d] source=%s section=%s score=%.2f\n%s\n\n",
			idx+1,
			passage.Source,
			passage.Section,
			passage.Score,
			passage.Content,
		))
	}

	return fmt.Sprintf(`You are a financial aid advisor for university students.
Answer only from the policy passages below.
Return strict JSON object with keys:
summary (string, 2-3 sentences), citations (array of strings), actionable_step (string), confidence (high|medium|low).
No markdown, no extra keys.

Student situation:
%s

Policy passages:
%s`, query, contextBuilder.String())
}

func buildNegotiationPrompt(bill domain.BillRecord, advice domain.Advice) string {
	invoice := bill.InvoiceID
	if invoice == "" {
		invoice = "the current tuition invoice"
	}
	vendor := bill.VendorName
	if vendor == "" {
		vendor = "the university"
	}

	return fmt.Sprintf(`Write a professional email from a student to the Bursar's Office of %s
requesting a tuition payment extension for %s.
Amount due: $%.2f. Original due date: %s. Proposed payment date: %s.
Ground the request in this guidance: %s
Start with a Subject: line. Keep the body under 200 words, respectful and direct.
Return only the email text.`,
		vendor,
		invoice,
		bill.Amount(),
		orUnknown(bill.DueDate),
		proposedExtensionDate(bill.DueDate),
		advice.Summary,
	)
}

func orUnknown(value string) string {
	if strings.TrimSpace(value) == "" {
		return "unknown"
	}
	return value
}
