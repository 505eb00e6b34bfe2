package usecase

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/scholarshield/backend/internal/core/domain"
	"github.com/scholarshield/backend/internal/core/ports"
)

// ExplainCaseUseCase renders an assessment for a student's family:
// summarize, translate, speak. Each step falls back rather than failing,
// so the explanation is best-effort by construction.
type ExplainCaseUseCase struct {
	generator  ports.TextGenerator
	translator ports.Translator
	speech     ports.SpeechSynthesizer
	log        *slog.Logger
}

func NewExplainCaseUseCase(
	generator ports.TextGenerator,
	translator ports.Translator,
	speech ports.SpeechSynthesizer,
	log *slog.Logger,
) *ExplainCaseUseCase {
	return &ExplainCaseUseCase{
		generator:  generator,
		translator: translator,
		speech:     speech,
		log:        log,
	}
}

func (uc *ExplainCaseUseCase) Explain(ctx context.Context, assessment *domain.CaseAssessment, language string) (*domain.ParentExplanation, error) {
	if assessment == nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "explain assessment", errors.New("assessment is required"))
	}
	if !domain.SupportedExplanationLanguages[language] {
		return nil, domain.WrapError(domain.ErrInvalidInput, "explain assessment", fmt.Errorf("unsupported language %q", language))
	}

	summary := uc.summarize(ctx, assessment)

	translated := summary
	if language != "en" {
		text, err := uc.translator.Translate(ctx, summary, language)
		if err != nil {
			uc.log.Warn("translation failed, keeping english summary",
				slog.String("language", language),
				slog.String("error", err.Error()))
		} else if strings.TrimSpace(text) != "" {
			translated = text
		}
	}

	audio := ""
	raw, err := uc.speech.Synthesize(ctx, translated, language)
	if err != nil {
		uc.log.Warn("speech synthesis failed, returning text only",
			slog.String("language", language),
			slog.String("error", err.Error()))
	} else if len(raw) > 0 {
		audio = base64.StdEncoding.EncodeToString(raw)
	}

	return &domain.ParentExplanation{
		Summary:        summary,
		TranslatedText: translated,
		Language:       language,
		AudioBase64:    audio,
	}, nil
}

func (uc *ExplainCaseUseCase) summarize(ctx context.Context, assessment *domain.CaseAssessment) string {
	text, err := uc.generator.GenerateFromPrompt(ctx, parentSummaryPrompt(assessment))
	if err != nil || strings.TrimSpace(text) == "" {
		if err != nil {
			uc.log.Warn("parent summary generation failed, using template", slog.String("error", err.Error()))
		}
		return fallbackParentSummary(assessment)
	}
	return strings.TrimSpace(text)
}

func parentSummaryPrompt(assessment *domain.CaseAssessment) string {
	var bill domain.BillRecord
	if assessment.BillData != nil {
		bill = *assessment.BillData
	}
	due := bill.DueDate
	if due == "" {
		due = "an unknown date"
	}
	return fmt.Sprintf(`Explain this tuition situation to a student's parent in at most 2 plain sentences. No jargon, no bullet points.

Amount due: $%.2f
Due date: %s
Risk level: %s
Recommended next step: %s`,
		bill.Amount(), due, assessment.RiskLevel, primaryActionText(assessment))
}

func fallbackParentSummary(assessment *domain.CaseAssessment) string {
	var bill domain.BillRecord
	if assessment.BillData != nil {
		bill = *assessment.BillData
	}
	if assessment.RiskLevel == domain.RiskSafe {
		return fmt.Sprintf("The tuition bill of $%.2f is on track. Please make sure the payment is submitted before the due date.", bill.Amount())
	}
	return fmt.Sprintf("The tuition bill of $%.2f needs attention soon because it is rated %s. The recommended next step is: %s.",
		bill.Amount(), assessment.RiskLevel, primaryActionText(assessment))
}

func primaryActionText(assessment *domain.CaseAssessment) string {
	if len(assessment.RecommendedActions) == 0 {
		return "contact the Bursar's Office"
	}
	first := assessment.RecommendedActions[0]
	if first.Description == "" {
		return first.Action
	}
	return fmt.Sprintf("%s (%s)", first.Action, first.Description)
}
