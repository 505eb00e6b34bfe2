package ollama

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/scholarshield/backend/internal/core/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func generateServer(t *testing.T, response string, capture *string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			http.NotFound(w, r)
			return
		}
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if capture != nil {
			*capture, _ = payload["prompt"].(string)
		}
		body, _ := json.Marshal(map[string]string{"response": response})
		_, _ = w.Write(body)
	}))
}

func TestGeneratorPassesPromptThrough(t *testing.T) {
	var capturedPrompt string
	server := generateServer(t, "ok", &capturedPrompt)
	defer server.Close()

	gen := NewGenerator(New(server.URL, "gen", "embed"))
	out, err := gen.GenerateFromPrompt(context.Background(), "write me an essay")
	if err != nil {
		t.Fatalf("GenerateFromPrompt() error = %v", err)
	}
	if out != "ok" {
		t.Fatalf("expected trimmed response, got %q", out)
	}
	if capturedPrompt != "write me an essay" {
		t.Fatalf("unexpected prompt: %s", capturedPrompt)
	}
}

func TestEmbedIncludesHTTPBodyInError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model unavailable", http.StatusBadGateway)
	}))
	defer server.Close()

	embedder := NewEmbedder(New(server.URL, "gen", "embed"))
	_, err := embedder.Embed(context.Background(), []string{"hello"})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "model unavailable") {
		t.Fatalf("expected response body in error, got %v", err)
	}
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected retryable status to carry temporary kind, got %v", err)
	}
}

func TestSynthesizeAdviceParsesModelJSON(t *testing.T) {
	modelJSON := `{"summary":"An extension is available under hardship rules.","citations":["Registrar Bulletin"],"actionable_step":"File the hardship form","confidence":"low"}`
	server := generateServer(t, modelJSON, nil)
	defer server.Close()

	synth := NewAdviceSynthesizer(New(server.URL, "gen", "embed"), discardLogger())
	passages := []domain.PolicyPassage{
		{Content: "Hardship extensions...", Source: "Student Handbook", Score: 0.95},
		{Content: "Emergency grants...", Source: "Financial Aid Guide", Score: 0.88},
	}

	advice := synth.SynthesizeAdvice(context.Background(), passages, "query")
	if advice.Summary != "An extension is available under hardship rules." {
		t.Fatalf("unexpected summary: %q", advice.Summary)
	}
	if advice.ActionableStep != "File the hardship form" {
		t.Fatalf("unexpected step: %q", advice.ActionableStep)
	}
	if advice.Confidence != domain.ConfidenceHigh {
		t.Fatalf("expected confidence forced high with passages, got %s", advice.Confidence)
	}
	want := []string{"Student Handbook", "Financial Aid Guide", "Registrar Bulletin"}
	if len(advice.Citations) != len(want) {
		t.Fatalf("expected %d citations, got %v", len(want), advice.Citations)
	}
	for i, source := range want {
		if advice.Citations[i] != source {
			t.Fatalf("citation[%d] = %q, want %q", i, advice.Citations[i], source)
		}
	}
}

func TestSynthesizeAdviceDeduplicatesCitations(t *testing.T) {
	modelJSON := `{"summary":"ok","citations":["Student Handbook","Student Handbook"],"actionable_step":"step","confidence":"high"}`
	server := generateServer(t, modelJSON, nil)
	defer server.Close()

	synth := NewAdviceSynthesizer(New(server.URL, "gen", "embed"), discardLogger())
	passages := []domain.PolicyPassage{{Content: "text", Source: "Student Handbook", Score: 0.9}}

	advice := synth.SynthesizeAdvice(context.Background(), passages, "query")
	if len(advice.Citations) != 1 || advice.Citations[0] != "Student Handbook" {
		t.Fatalf("expected single deduplicated citation, got %v", advice.Citations)
	}
}

func TestSynthesizeAdviceDegradesOnMalformedOutput(t *testing.T) {
	server := generateServer(t, "the model rambled instead of returning json", nil)
	defer server.Close()

	synth := NewAdviceSynthesizer(New(server.URL, "gen", "embed"), discardLogger())
	passages := []domain.PolicyPassage{{Content: "text", Source: "Student Handbook", Score: 0.9}}

	advice := synth.SynthesizeAdvice(context.Background(), passages, "query")
	if advice.Confidence != domain.ConfidenceMedium {
		t.Fatalf("expected medium confidence, got %s", advice.Confidence)
	}
	if advice.ActionableStep != fallbackActionableStep {
		t.Fatalf("expected fallback step, got %q", advice.ActionableStep)
	}
	if advice.Summary != "the model rambled instead of returning json" {
		t.Fatalf("expected raw text as summary, got %q", advice.Summary)
	}
	if len(advice.Citations) != 1 || advice.Citations[0] != "Student Handbook" {
		t.Fatalf("expected passage sources as citations, got %v", advice.Citations)
	}
}

func TestSynthesizeAdviceFallsBackWhenModelUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	synth := NewAdviceSynthesizer(New(server.URL, "gen", "embed"), discardLogger())
	passages := []domain.PolicyPassage{{Content: "text", Source: "Student Handbook", Score: 0.9}}

	advice := synth.SynthesizeAdvice(context.Background(), passages, "query")
	if advice.Confidence != domain.ConfidenceLow {
		t.Fatalf("expected low confidence, got %s", advice.Confidence)
	}
	if len(advice.Citations) != 0 {
		t.Fatalf("expected no citations in fallback, got %v", advice.Citations)
	}
	if advice.ActionableStep != fallbackActionableStep {
		t.Fatalf("expected fallback step, got %q", advice.ActionableStep)
	}
}

func TestDraftNegotiationEmailProposesExtendedDate(t *testing.T) {
	var capturedPrompt string
	server := generateServer(t, "Subject: Request for Extension\n\nDear Bursar...", &capturedPrompt)
	defer server.Close()

	drafter := NewNegotiationDrafter(New(server.URL, "gen", "embed"))
	amount := 1200.0
	bill := domain.BillRecord{TotalAmount: &amount, DueDate: "2024-12-20", VendorName: "State University", InvoiceID: "INV-2024-001234"}

	email, err := drafter.DraftNegotiationEmail(context.Background(), bill, domain.Advice{Summary: "hardship extensions exist"})
	if err != nil {
		t.Fatalf("DraftNegotiationEmail() error = %v", err)
	}
	if !strings.HasPrefix(email, "Subject:") {
		t.Fatalf("expected email text, got %q", email)
	}
	if !strings.Contains(capturedPrompt, "January 03, 2025") {
		t.Fatalf("expected proposed date two weeks out, prompt: %s", capturedPrompt)
	}
	if !strings.Contains(capturedPrompt, "$1200.00") || !strings.Contains(capturedPrompt, "INV-2024-001234") {
		t.Fatalf("expected bill details in prompt: %s", capturedPrompt)
	}
}

func TestDraftNegotiationEmailWithoutDueDate(t *testing.T) {
	var capturedPrompt string
	server := generateServer(t, "Subject: Request\n\nbody", &capturedPrompt)
	defer server.Close()

	drafter := NewNegotiationDrafter(New(server.URL, "gen", "embed"))
	_, err := drafter.DraftNegotiationEmail(context.Background(), domain.BillRecord{}, domain.Advice{})
	if err != nil {
		t.Fatalf("DraftNegotiationEmail() error = %v", err)
	}
	if !strings.Contains(capturedPrompt, "two weeks from the original due date") {
		t.Fatalf("expected relative proposed date, prompt: %s", capturedPrompt)
	}
}

func TestDraftNegotiationEmailWrapsFailures(t *testing.T) {
	server := generateServer(t, "", nil)
	defer server.Close()

	drafter := NewNegotiationDrafter(New(server.URL, "gen", "embed"))
	_, err := drafter.DraftNegotiationEmail(context.Background(), domain.BillRecord{}, domain.Advice{})
	if err == nil {
		t.Fatalf("expected error for empty draft")
	}
	if !domain.IsKind(err, domain.ErrDraftFailed) {
		t.Fatalf("expected draft kind, got %v", err)
	}
}
