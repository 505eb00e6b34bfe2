package stub

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/scholarshield/backend/internal/core/domain"
)

func TestBillExtractorDueTomorrow(t *testing.T) {
	extractor := NewBillExtractor()
	extractor.now = func() time.Time { return time.Date(2024, 12, 19, 8, 0, 0, 0, time.UTC) }

	bill, err := extractor.ExtractBill(context.Background(), nil)
	if err != nil {
		t.Fatalf("ExtractBill() error = %v", err)
	}
	if bill.DueDate != "2024-12-20" {
		t.Fatalf("expected due date 2024-12-20, got %q", bill.DueDate)
	}
	if bill.Amount() != 1200.00 || bill.InvoiceID != "INV-2024-001234" {
		t.Fatalf("unexpected bill: %+v", bill)
	}
}

func TestAdviceSynthesizerCitesEveryPassage(t *testing.T) {
	passages := NewPolicySearcher().SearchPolicies(context.Background(), "extension")
	advice := NewAdviceSynthesizer().SynthesizeAdvice(context.Background(), passages, "extension")

	if advice.Confidence != domain.ConfidenceHigh {
		t.Fatalf("expected high confidence, got %s", advice.Confidence)
	}
	if len(advice.Citations) != 3 {
		t.Fatalf("expected 3 citations, got %d", len(advice.Citations))
	}
	if advice.Citations[0] != "University Handbook 2024, Section 4.2" {
		t.Fatalf("unexpected first citation %q", advice.Citations[0])
	}
}

func TestAdviceSynthesizerDegradesWithoutPassages(t *testing.T) {
	advice := NewAdviceSynthesizer().SynthesizeAdvice(context.Background(), nil, "extension")
	if advice.Confidence != domain.ConfidenceLow {
		t.Fatalf("expected low confidence, got %s", advice.Confidence)
	}
	if len(advice.Citations) != 0 {
		t.Fatalf("expected no citations, got %v", advice.Citations)
	}
}

func TestNegotiationDrafterFillsTemplate(t *testing.T) {
	amount := 1200.00
	bill := domain.BillRecord{TotalAmount: &amount, DueDate: "2024-12-20", InvoiceID: "INV-2024-001234"}
	advice := domain.Advice{Citations: []string{"University Handbook 2024, Section 4.2"}}

	email, err := NewNegotiationDrafter().DraftNegotiationEmail(context.Background(), bill, advice)
	if err != nil {
		t.Fatalf("DraftNegotiationEmail() error = %v", err)
	}
	if !strings.HasPrefix(email, "Subject: Request for Tuition Payment Extension - Invoice INV-2024-001234") {
		t.Fatalf("unexpected subject line:\n%s", email)
	}
	if !strings.Contains(email, "January 03, 2025") {
		t.Fatalf("expected proposed date January 03, 2025 in email:\n%s", email)
	}
	if !strings.Contains(email, "$1200.00") {
		t.Fatalf("expected amount in email:\n%s", email)
	}
}

func TestVectorStoreRoundTripsChunks(t *testing.T) {
	store := NewVectorStore()
	doc := &domain.HandbookDocument{ID: "hb-1", Filename: "handbook.pdf", IndexName: "handbook-1"}
	chunks := []domain.HandbookChunk{
		{Content: "Hardship extensions are granted under Bylaw 4.2.", Section: "4.2"},
		{Content: "Late fees accrue after the due date.", Section: "4.3"},
	}
	vectors, err := NewEmbedder().Embed(context.Background(), []string{chunks[0].Content, chunks[1].Content})
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}

	if err := store.EnsureCollection(context.Background(), doc.IndexName, len(vectors[0])); err != nil {
		t.Fatalf("EnsureCollection() error = %v", err)
	}
	if err := store.UpsertChunks(context.Background(), doc.IndexName, doc, chunks, vectors); err != nil {
		t.Fatalf("UpsertChunks() error = %v", err)
	}

	passages, err := store.Search(context.Background(), doc.IndexName, vectors[0], 1)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(passages) != 1 {
		t.Fatalf("expected 1 passage, got %d", len(passages))
	}
	if passages[0].Section != "4.2" || passages[0].Source != "handbook.pdf" {
		t.Fatalf("unexpected passage: %+v", passages[0])
	}
}

func TestTranslatorPicksUrgentVariant(t *testing.T) {
	translator := NewTranslator()

	urgent, err := translator.Translate(context.Background(), "The bill is rated CRITICAL.", "es")
	if err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
	if !strings.Contains(urgent, "vence pronto") {
		t.Fatalf("expected urgent spanish variant, got %q", urgent)
	}

	calm, err := translator.Translate(context.Background(), "The bill is on track.", "es")
	if err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
	if calm == urgent {
		t.Fatalf("expected calm variant to differ")
	}
}
