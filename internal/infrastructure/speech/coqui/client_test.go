package coqui

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/scholarshield/backend/internal/core/domain"
)

func TestSynthesizeReturnsAudioBytes(t *testing.T) {
	wav := []byte("RIFF....WAVEfmt ")
	var capturedText, capturedLang string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tts" {
			http.NotFound(w, r)
			return
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		capturedText = r.PostForm.Get("text")
		capturedLang = r.PostForm.Get("language_id")
		w.Header().Set("Content-Type", "audio/wav")
		_, _ = w.Write(wav)
	}))
	defer server.Close()

	client := New(server.URL)
	audio, err := client.Synthesize(context.Background(), "hola", "es")
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if !bytes.Equal(audio, wav) {
		t.Fatalf("unexpected audio bytes: %q", audio)
	}
	if capturedText != "hola" || capturedLang != "es" {
		t.Fatalf("unexpected form values: text=%q lang=%q", capturedText, capturedLang)
	}
}

func TestSynthesizeWrapsServerErrorsAsTemporary(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model loading", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := New(server.URL)
	_, err := client.Synthesize(context.Background(), "text", "es")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected temporary kind, got %v", err)
	}
}

func TestSynthesizeRejectsEmptyAudio(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := New(server.URL)
	_, err := client.Synthesize(context.Background(), "text", "es")
	if err == nil {
		t.Fatalf("expected error for empty audio")
	}
}
