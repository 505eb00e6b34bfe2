package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/scholarshield/backend/internal/core/domain"
	"github.com/scholarshield/backend/internal/core/ports"
)

type GrantEssayUseCase struct {
	generator ports.TextGenerator
	log       *slog.Logger
}

func NewGrantEssayUseCase(generator ports.TextGenerator, log *slog.Logger) *GrantEssayUseCase {
	return &GrantEssayUseCase{generator: generator, log: log}
}

// DraftGrantEssay writes an emergency-grant application essay. Generation
// failures degrade to a template so a student always leaves with a draft.
func (uc *GrantEssayUseCase) DraftGrantEssay(ctx context.Context, req domain.GrantEssayRequest) (*domain.GrantEssay, error) {
	if err := validateEssayRequest(req); err != nil {
		return nil, err
	}

	essay, err := uc.generator.GenerateFromPrompt(ctx, grantEssayPrompt(req))
	if err != nil || strings.TrimSpace(essay) == "" {
		if err != nil {
			uc.log.Warn("grant essay generation failed, using template", slog.String("error", err.Error()))
		}
		essay = fallbackGrantEssay(req)
	}

	return &domain.GrantEssay{
		Essay:       strings.TrimSpace(essay),
		GeneratedAt: time.Now().UTC(),
	}, nil
}

func validateEssayRequest(req domain.GrantEssayRequest) error {
	switch {
	case strings.TrimSpace(req.StudentName) == "":
		return domain.WrapError(domain.ErrInvalidInput, "validate essay request", errors.New("student_name is required"))
	case strings.TrimSpace(req.Circumstances) == "":
		return domain.WrapError(domain.ErrInvalidInput, "validate essay request", errors.New("circumstances is required"))
	case req.AmountRequested <= 0:
		return domain.WrapError(domain.ErrInvalidInput, "validate essay request", errors.New("amount_requested must be positive"))
	}
	return nil
}

func grantEssayPrompt(req domain.GrantEssayRequest) string {
	program := strings.TrimSpace(req.Program)
	if program == "" {
		program = "their degree program"
	}
	return fmt.Sprintf(`Write a sincere, first-person emergency grant application essay of roughly 300 words.

Student: %s
Program: %s
Amount requested: $%.2f
Circumstances: %s

The essay must explain the hardship, the specific amount needed, and how the grant keeps the student enrolled. Plain text only, no headings.`,
		strings.TrimSpace(req.StudentName), program, req.AmountRequested, strings.TrimSpace(req.Circumstances))
}

func fallbackGrantEssay(req domain.GrantEssayRequest) string {
	program := strings.TrimSpace(req.Program)
	if program == "" {
		program = "my degree program"
	}
	return fmt.Sprintf(`My name is %s and I am writing to request emergency grant assistance of $%.2f so that I can continue in %s.

%s

This support would cover my outstanding tuition balance and allow me to stay enrolled and focused on my coursework. I am committed to completing my education and would be grateful for the committee's consideration.`,
		strings.TrimSpace(req.StudentName), req.AmountRequested, program, strings.TrimSpace(req.Circumstances))
}
