package stub

import "context"

// TextGenerator produces no output. Callers treat blank generation as a
// cue to use their own deterministic templates, which keeps essays and
// parent summaries tied to the actual request instead of one fixed
// paragraph.
type TextGenerator struct{}

func NewTextGenerator() *TextGenerator {
	return &TextGenerator{}
}

func (g *TextGenerator) GenerateFromPrompt(_ context.Context, _ string) (string, error) {
	return "", nil
}

func (g *TextGenerator) GenerateJSONFromPrompt(_ context.Context, _ string) (string, error) {
	return "", nil
}
