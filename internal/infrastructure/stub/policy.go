package stub

import (
	"context"

	"github.com/scholarshield/backend/internal/core/domain"
)

// PolicySearcher returns a fixed hardship-extension corpus regardless of
// the query.
type PolicySearcher struct{}

func NewPolicySearcher() *PolicySearcher {
	return &PolicySearcher{}
}

func (s *PolicySearcher) SearchPolicies(_ context.Context, _ string) []domain.PolicyPassage {
	return []domain.PolicyPassage{
		{
			Content: "Bylaw 4.2: Hardship Extension - Students facing financial hardship may request an extension of up to 30 days for tuition payment deadlines. Requests must be submitted in writing to the Bursar's Office with documentation of hardship.",
			Source:  "University Handbook 2024, Section 4.2",
			Score:   0.95,
			Section: "4.2",
			Page:    "42",
		},
		{
			Content: "Emergency Grant Program: Available to FGLI students who demonstrate urgent financial need. Grants range from $200-$1000 and are awarded within 48 hours of application submission.",
			Source:  "Financial Aid Handbook, Emergency Grants Section",
			Score:   0.88,
			Section: "Emergency Grants",
			Page:    "15",
		},
		{
			Content: "Late Payment Fees: Standard late payment fee is $50. However, students with approved hardship extensions are exempt from late fees if payment is made within the extension period.",
			Source:  "University Handbook 2024, Section 4.3",
			Score:   0.82,
			Section: "4.3",
			Page:    "43",
		},
	}
}

// AdviceSynthesizer turns the canned passages into the matching canned
// advice. With no passages it degrades to the same low-confidence answer
// the live synthesizer would give.
type AdviceSynthesizer struct{}

func NewAdviceSynthesizer() *AdviceSynthesizer {
	return &AdviceSynthesizer{}
}

func (s *AdviceSynthesizer) SynthesizeAdvice(_ context.Context, passages []domain.PolicyPassage, _ string) domain.Advice {
	if len(passages) == 0 {
		return domain.Advice{
			Summary:        "Unable to find specific policy information. Contact the Financial Aid Office for assistance.",
			Citations:      []string{},
			ActionableStep: "Contact the Financial Aid Office directly",
			Confidence:     domain.ConfidenceLow,
		}
	}

	citations := make([]string, 0, len(passages))
	for _, passage := range passages {
		citations = append(citations, passage.Source)
	}
	return domain.Advice{
		Summary:        "Students facing financial hardship may request an extension of up to 30 days for tuition payment deadlines by submitting a written request to the Bursar's Office with documentation of hardship, per Bylaw 4.2.",
		Citations:      citations,
		ActionableStep: "Submit a written request to the Bursar's Office citing Bylaw 4.2 (Hardship Extension) with documentation of financial hardship",
		Confidence:     domain.ConfidenceHigh,
	}
}
