package domain

import "time"

type GrantEssayRequest struct {
	StudentName     string  `json:"student_name"`
	Program         string  `json:"program"`
	AmountRequested float64 `json:"amount_requested"`
	Circumstances   string  `json:"circumstances"`
}

type GrantEssay struct {
	Essay       string    `json:"essay"`
	GeneratedAt time.Time `json:"generated_at"`
}

// ParentExplanation is the family-facing rendering of an assessment:
// a short summary, its translation, and synthesized speech.
type ParentExplanation struct {
	Summary        string `json:"summary"`
	TranslatedText string `json:"translated_text"`
	Language       string `json:"language"`
	AudioBase64    string `json:"audio_base64,omitempty"`
}

// SupportedExplanationLanguages are the translation targets offered to
// families. English skips the translation step.
var SupportedExplanationLanguages = map[string]bool{
	"en":      true,
	"es":      true,
	"hi":      true,
	"zh-Hans": true,
	"ar":      true,
}
