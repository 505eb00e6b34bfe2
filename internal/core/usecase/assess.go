package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/scholarshield/backend/internal/core/domain"
	"github.com/scholarshield/backend/internal/core/ports"
)

// caseStage names the states of one assessment run. Extraction is the only
// stage whose failure aborts the case; the bracketed policy branch degrades
// instead, and a drafter failure is contained outright.
type caseStage string

const (
	stageStart          caseStage = "START"
	stageExtracted      caseStage = "EXTRACTED"
	stageClassified     caseStage = "CLASSIFIED"
	stagePolicySearched caseStage = "POLICY_SEARCHED"
	stageAdvised        caseStage = "ADVISED"
	stageDrafted        caseStage = "DRAFTED"
	stageCompleted      caseStage = "COMPLETED"
	stageFailed         caseStage = "FAILED"
)

type AssessCaseUseCase struct {
	extractor   ports.BillExtractor
	searcher    ports.PolicySearcher
	synthesizer ports.AdviceSynthesizer
	drafter     ports.NegotiationDrafter
	metrics     ports.CaseMetrics
	log         *slog.Logger
}

func NewAssessCaseUseCase(
	extractor ports.BillExtractor,
	searcher ports.PolicySearcher,
	synthesizer ports.AdviceSynthesizer,
	drafter ports.NegotiationDrafter,
	metrics ports.CaseMetrics,
	log *slog.Logger,
) *AssessCaseUseCase {
	return &AssessCaseUseCase{
		extractor:   extractor,
		searcher:    searcher,
		synthesizer: synthesizer,
		drafter:     drafter,
		metrics:     metrics,
		log:         log,
	}
}

// ProcessCase runs the full assessment sequence for one uploaded bill and
// always returns a terminal assessment. Every failure path funnels through
// fail(), so a caller never sees a half-finished case.
func (uc *AssessCaseUseCase) ProcessCase(ctx context.Context, document []byte) *domain.CaseAssessment {
	started := time.Now()
	assessment := domain.NewCaseAssessment(uuid.NewString(), started)
	log := uc.log.With(slog.String("case_id", assessment.ID))
	stage := stageStart

	bill, err := uc.extractBill(ctx, document)
	if err != nil {
		return uc.fail(log, assessment, stage, started, err)
	}
	assessment.AttachBill(bill)
	stage = uc.advance(log, assessment, stage, stageExtracted, started)

	assessment.RiskLevel = domain.Classify(assessment.BillData, started)
	stage = uc.advance(log, assessment, stage, stageClassified, started)

	actions := []domain.RecommendedAction{}
	if assessment.RiskLevel.Elevated() {
		query := policyQuery(bill)
		passages := uc.searcher.SearchPolicies(ctx, query)
		if len(passages) == 0 {
			// Empty results end the branch normally: the case still
			// completes, carrying only the default ask.
			log.Info("policy search returned no passages",
				slog.String("risk_level", string(assessment.RiskLevel)))
			actions = []domain.RecommendedAction{primaryExtensionAction()}
		} else {
			stage = uc.advance(log, assessment, stage, stagePolicySearched, started)

			advice := uc.synthesizer.SynthesizeAdvice(ctx, passages, query)
			if err := assessment.AttachFindings(domain.PolicyFindings{Passages: passages, Advice: advice}); err != nil {
				return uc.fail(log, assessment, stage, started, fmt.Errorf("attach findings: %w", err))
			}
			stage = uc.advance(log, assessment, stage, stageAdvised, started)
			actions = elevatedActions(advice)

			if assessment.RiskLevel == domain.RiskCritical {
				email, draftErr := uc.drafter.DraftNegotiationEmail(ctx, bill, advice)
				if draftErr != nil {
					// Contained: an email draft is a convenience, not a
					// correctness requirement of the assessment.
					log.Warn("negotiation draft failed, continuing without email",
						slog.String("error", draftErr.Error()))
					uc.metrics.StageFailure(string(stageDrafted))
				} else {
					if err := assessment.AttachNegotiationEmail(email); err != nil {
						return uc.fail(log, assessment, stage, started, fmt.Errorf("attach negotiation email: %w", err))
					}
					stage = uc.advance(log, assessment, stage, stageDrafted, started)
				}
			}
		}
	}

	if assessment.RiskLevel == domain.RiskSafe {
		actions = []domain.RecommendedAction{monitoringAction()}
	}
	if err := assessment.Complete(actions); err != nil {
		return uc.fail(log, assessment, stage, started, fmt.Errorf("complete assessment: %w", err))
	}
	uc.advance(log, assessment, stage, stageCompleted, started)
	uc.metrics.CaseAssessed(string(assessment.RiskLevel), string(assessment.Status), time.Since(started).Seconds())
	return assessment
}

func (uc *AssessCaseUseCase) extractBill(ctx context.Context, document []byte) (domain.BillRecord, error) {
	bill, err := uc.extractor.ExtractBill(ctx, document)
	if err != nil {
		return domain.BillRecord{}, fmt.Errorf("extract bill: %w", err)
	}
	return bill, nil
}

func (uc *AssessCaseUseCase) advance(log *slog.Logger, assessment *domain.CaseAssessment, from, to caseStage, started time.Time) caseStage {
	log.Info("case stage advanced",
		slog.String("from", string(from)),
		slog.String("to", string(to)),
		slog.String("risk_level", string(assessment.RiskLevel)),
		slog.Duration("elapsed", time.Since(started)))
	return to
}

func (uc *AssessCaseUseCase) fail(log *slog.Logger, assessment *domain.CaseAssessment, from caseStage, started time.Time, err error) *domain.CaseAssessment {
	assessment.Fail(err.Error())
	log.Error("case failed",
		slog.String("from", string(from)),
		slog.String("to", string(stageFailed)),
		slog.String("risk_level", string(assessment.RiskLevel)),
		slog.Duration("elapsed", time.Since(started)),
		slog.String("error", err.Error()))
	uc.metrics.StageFailure(string(from))
	uc.metrics.CaseAssessed(string(assessment.RiskLevel), string(assessment.Status), time.Since(started).Seconds())
	return assessment
}

// policyQuery embeds the amount and due date so retrieval can favor
// passages about comparable obligations.
func policyQuery(bill domain.BillRecord) string {
	due := bill.DueDate
	if due == "" {
		due = "unknown date"
	}
	return fmt.Sprintf("tuition payment extension policies for $%.2f due on %s", bill.Amount(), due)
}

func primaryExtensionAction() domain.RecommendedAction {
	return domain.RecommendedAction{
		Action:      "Request Extension",
		Description: "Submit a written request to the Bursar's Office",
		Priority:    domain.PriorityHigh,
	}
}

func monitoringAction() domain.RecommendedAction {
	return domain.RecommendedAction{
		Action:      "Monitor Payment Due Date",
		Description: "Ensure payment is submitted before the due date",
		Priority:    domain.PriorityLow,
	}
}

// elevatedActions derives the ordered ask list from advice. The extension
// request always leads; a concrete actionable step from the advice is
// appended as a second high-priority action.
func elevatedActions(advice domain.Advice) []domain.RecommendedAction {
	actions := []domain.RecommendedAction{primaryExtensionAction()}
	if advice.ActionableStep != "" {
		actions = append(actions, domain.RecommendedAction{
			Action:      advice.ActionableStep,
			Description: advice.Summary,
			Priority:    domain.PriorityHigh,
		})
	}
	return actions
}
