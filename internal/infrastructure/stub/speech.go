package stub

import "context"

// SpeechSynthesizer returns a minimal placeholder WAV so clients can
// exercise the audio path without a speech backend.
type SpeechSynthesizer struct{}

func NewSpeechSynthesizer() *SpeechSynthesizer {
	return &SpeechSynthesizer{}
}

func (s *SpeechSynthesizer) Synthesize(_ context.Context, _ string, _ string) ([]byte, error) {
	audio := make([]byte, 40)
	copy(audio, "RIFF")
	return audio, nil
}
