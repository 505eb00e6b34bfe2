package ollama

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/scholarshield/backend/internal/core/domain"
)

const fallbackActionableStep = "Contact the Bursar's Office to discuss payment options"

// AdviceSynthesizer turns retrieved policy passages into structured advice.
// It never returns an error: model trouble degrades the confidence instead
// of failing the case.
type AdviceSynthesizer struct {
	client *Client
	log    *slog.Logger
}

func NewAdviceSynthesizer(client *Client, log *slog.Logger) *AdviceSynthesizer {
	return &AdviceSynthesizer{client: client, log: log}
}

type adviceResponse struct {
	Summary        string   `json:"summary"`
	Citations      []string `json:"citations"`
	ActionableStep string   `json:"actionable_step"`
	Confidence     string   `json:"confidence"`
}

func (s *AdviceSynthesizer) SynthesizeAdvice(ctx context.Context, passages []domain.PolicyPassage, query string) domain.Advice {
	raw, err := s.client.generateJSON(ctx, buildAdvicePrompt(passages, query))
	if err != nil {
		s.log.Warn("advice synthesis unavailable, using fallback", "error", err)
		return fallbackAdvice()
	}

	var parsed adviceResponse
	if err := json.Unmarshal([]byte(extractJSONObject(raw)), &parsed); err != nil || strings.TrimSpace(parsed.Summary) == "" {
		s.log.Warn("advice response not parseable, degrading confidence", "error", err)
		return domain.Advice{
			Summary:        strings.TrimSpace(raw),
			Citations:      mergeCitations(passages, nil),
			ActionableStep: fallbackActionableStep,
			Confidence:     domain.ConfidenceMedium,
		}
	}

	advice := domain.Advice{
		Summary:        strings.TrimSpace(parsed.Summary),
		Citations:      mergeCitations(passages, parsed.Citations),
		ActionableStep: strings.TrimSpace(parsed.ActionableStep),
		Confidence:     domain.ConfidenceLow,
	}
	if len(passages) > 0 {
		advice.Confidence = domain.ConfidenceHigh
	}
	return advice
}

func fallbackAdvice() domain.Advice {
	return domain.Advice{
		Summary:        "Policy guidance is temporarily unavailable. Review the student handbook directly or contact the financial aid office.",
		Citations:      []string{},
		ActionableStep: fallbackActionableStep,
		Confidence:     domain.ConfidenceLow,
	}
}

// mergeCitations unions passage sources with model-provided citations,
// deduplicated in insertion order with passage sources first.
func mergeCitations(passages []domain.PolicyPassage, extra []string) []string {
	seen := make(map[string]bool, len(passages)+len(extra))
	out := make([]string, 0, len(passages)+len(extra))
	add := func(source string) {
		source = strings.TrimSpace(source)
		if source == "" || seen[source] {
			return
		}
		seen[source] = true
		out = append(out, source)
	}
	for _, p := range passages {
		add(p.Source)
	}
	for _, c := range extra {
		add(c)
	}
	return out
}
