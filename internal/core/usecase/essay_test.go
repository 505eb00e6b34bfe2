package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/scholarshield/backend/internal/core/domain"
)

type generatorFake struct {
	text    string
	jsonOut string
	err     error
	prompts []string
}

func (f *generatorFake) GenerateFromPrompt(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

func (f *generatorFake) GenerateJSONFromPrompt(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.jsonOut, nil
}

func validEssayRequest() domain.GrantEssayRequest {
	return domain.GrantEssayRequest{
		StudentName:     "Jordan Alvarez",
		Program:         "Computer Science",
		AmountRequested: 1200,
		Circumstances:   "A parent lost their job and the family cannot cover this term's balance.",
	}
}

func TestDraftGrantEssayUsesGenerator(t *testing.T) {
	gen := &generatorFake{text: "Generated essay body."}
	uc := NewGrantEssayUseCase(gen, testLogger())

	essay, err := uc.DraftGrantEssay(context.Background(), validEssayRequest())
	if err != nil {
		t.Fatalf("DraftGrantEssay() error = %v", err)
	}
	if essay.Essay != "Generated essay body." {
		t.Fatalf("unexpected essay: %q", essay.Essay)
	}
	if essay.GeneratedAt.IsZero() {
		t.Fatalf("expected generated_at timestamp")
	}
	if len(gen.prompts) != 1 || !strings.Contains(gen.prompts[0], "$1200.00") {
		t.Fatalf("expected amount in prompt, got %v", gen.prompts)
	}
}

func TestDraftGrantEssayFallsBackOnGeneratorError(t *testing.T) {
	gen := &generatorFake{err: errors.New("model offline")}
	uc := NewGrantEssayUseCase(gen, testLogger())

	essay, err := uc.DraftGrantEssay(context.Background(), validEssayRequest())
	if err != nil {
		t.Fatalf("DraftGrantEssay() error = %v", err)
	}
	if !strings.Contains(essay.Essay, "Jordan Alvarez") || !strings.Contains(essay.Essay, "$1200.00") {
		t.Fatalf("expected template essay with student details, got %q", essay.Essay)
	}
}

func TestDraftGrantEssayFallsBackOnBlankOutput(t *testing.T) {
	gen := &generatorFake{text: "   \n"}
	uc := NewGrantEssayUseCase(gen, testLogger())

	essay, err := uc.DraftGrantEssay(context.Background(), validEssayRequest())
	if err != nil {
		t.Fatalf("DraftGrantEssay() error = %v", err)
	}
	if !strings.Contains(essay.Essay, "emergency grant assistance") {
		t.Fatalf("expected template essay, got %q", essay.Essay)
	}
}

func TestDraftGrantEssayValidatesRequest(t *testing.T) {
	uc := NewGrantEssayUseCase(&generatorFake{text: "x"}, testLogger())

	req := validEssayRequest()
	req.StudentName = " "
	if _, err := uc.DraftGrantEssay(context.Background(), req); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input for missing name, got %v", err)
	}

	req = validEssayRequest()
	req.Circumstances = ""
	if _, err := uc.DraftGrantEssay(context.Background(), req); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input for missing circumstances, got %v", err)
	}

	req = validEssayRequest()
	req.AmountRequested = 0
	if _, err := uc.DraftGrantEssay(context.Background(), req); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input for zero amount, got %v", err)
	}
}
