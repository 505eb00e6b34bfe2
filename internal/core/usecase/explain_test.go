package usecase

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/scholarshield/backend/internal/core/domain"
)

type translatorFake struct {
	text  string
	err   error
	calls int
}

func (f *translatorFake) Translate(_ context.Context, _, _ string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

type speechFake struct {
	audio []byte
	err   error
	calls int
}

func (f *speechFake) Synthesize(_ context.Context, _, _ string) ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.audio, nil
}

func completedCriticalAssessment() *domain.CaseAssessment {
	c := domain.NewCaseAssessment("case-1", time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC))
	c.AttachBill(domain.BillRecord{TotalAmount: billAmount(1200), DueDate: "2026-03-11", VendorName: "State University"})
	c.RiskLevel = domain.RiskCritical
	c.RecommendedActions = []domain.RecommendedAction{
		{Action: "Request Extension", Description: "Submit a written request to the Bursar's Office", Priority: domain.PriorityHigh},
	}
	return c
}

func TestExplainTranslatesAndSpeaks(t *testing.T) {
	gen := &generatorFake{text: "The bill is urgent. Ask for an extension."}
	translator := &translatorFake{text: "La factura es urgente. Solicite una extensión."}
	speech := &speechFake{audio: []byte("RIFFwav")}
	uc := NewExplainCaseUseCase(gen, translator, speech, testLogger())

	out, err := uc.Explain(context.Background(), completedCriticalAssessment(), "es")
	if err != nil {
		t.Fatalf("Explain() error = %v", err)
	}
	if out.Summary != "The bill is urgent. Ask for an extension." {
		t.Fatalf("unexpected summary: %q", out.Summary)
	}
	if out.TranslatedText != "La factura es urgente. Solicite una extensión." {
		t.Fatalf("unexpected translation: %q", out.TranslatedText)
	}
	if out.Language != "es" {
		t.Fatalf("unexpected language: %q", out.Language)
	}
	if out.AudioBase64 != base64.StdEncoding.EncodeToString([]byte("RIFFwav")) {
		t.Fatalf("unexpected audio payload")
	}
}

func TestExplainSkipsTranslationForEnglish(t *testing.T) {
	translator := &translatorFake{text: "should not be used"}
	uc := NewExplainCaseUseCase(&generatorFake{text: "All good."}, translator, &speechFake{}, testLogger())

	out, err := uc.Explain(context.Background(), completedCriticalAssessment(), "en")
	if err != nil {
		t.Fatalf("Explain() error = %v", err)
	}
	if translator.calls != 0 {
		t.Fatalf("expected no translation calls for english, got %d", translator.calls)
	}
	if out.TranslatedText != "All good." {
		t.Fatalf("expected summary passthrough, got %q", out.TranslatedText)
	}
}

func TestExplainKeepsEnglishOnTranslationFailure(t *testing.T) {
	translator := &translatorFake{err: errors.New("translator down")}
	uc := NewExplainCaseUseCase(&generatorFake{text: "Pay soon."}, translator, &speechFake{}, testLogger())

	out, err := uc.Explain(context.Background(), completedCriticalAssessment(), "hi")
	if err != nil {
		t.Fatalf("Explain() error = %v", err)
	}
	if out.TranslatedText != "Pay soon." {
		t.Fatalf("expected english fallback, got %q", out.TranslatedText)
	}
}

func TestExplainReturnsTextWhenSpeechFails(t *testing.T) {
	speech := &speechFake{err: errors.New("tts down")}
	uc := NewExplainCaseUseCase(&generatorFake{text: "Pay soon."}, &translatorFake{text: "x"}, speech, testLogger())

	out, err := uc.Explain(context.Background(), completedCriticalAssessment(), "ar")
	if err != nil {
		t.Fatalf("Explain() error = %v", err)
	}
	if out.AudioBase64 != "" {
		t.Fatalf("expected empty audio on synthesis failure, got %q", out.AudioBase64)
	}
}

func TestExplainFallsBackToTemplateSummary(t *testing.T) {
	gen := &generatorFake{err: errors.New("model offline")}
	uc := NewExplainCaseUseCase(gen, &translatorFake{}, &speechFake{}, testLogger())

	out, err := uc.Explain(context.Background(), completedCriticalAssessment(), "en")
	if err != nil {
		t.Fatalf("Explain() error = %v", err)
	}
	if !strings.Contains(out.Summary, "$1200.00") || !strings.Contains(out.Summary, "CRITICAL") {
		t.Fatalf("expected template summary with amount and tier, got %q", out.Summary)
	}
}

func TestExplainRejectsUnsupportedLanguage(t *testing.T) {
	uc := NewExplainCaseUseCase(&generatorFake{text: "x"}, &translatorFake{}, &speechFake{}, testLogger())

	if _, err := uc.Explain(context.Background(), completedCriticalAssessment(), "fr"); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input for unsupported language, got %v", err)
	}
	if _, err := uc.Explain(context.Background(), nil, "en"); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input for nil assessment, got %v", err)
	}
}
