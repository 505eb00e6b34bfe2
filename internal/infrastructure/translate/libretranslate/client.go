package libretranslate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/scholarshield/backend/internal/core/domain"
	"github.com/scholarshield/backend/internal/infrastructure/resilience"
)

// Client translates parent-facing summaries through a LibreTranslate
// compatible endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
	executor   *resilience.Executor
}

func New(baseURL string) *Client {
	return NewWithExecutor(baseURL, nil)
}

func NewWithExecutor(baseURL string, executor *resilience.Executor) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		executor:   executor,
	}
}

// LibreTranslate speaks plain ISO 639-1 codes; the API surface accepts
// BCP 47 tags for Chinese.
var targetCodes = map[string]string{
	"es":      "es",
	"hi":      "hi",
	"zh-Hans": "zh",
	"ar":      "ar",
}

func (c *Client) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	target, ok := targetCodes[targetLanguage]
	if !ok {
		return "", domain.WrapError(domain.ErrInvalidInput, "translate", fmt.Errorf("unsupported target language %q", targetLanguage))
	}

	payload, err := json.Marshal(map[string]string{
		"q":      text,
		"source": "en",
		"target": target,
		"format": "text",
	})
	if err != nil {
		return "", fmt.Errorf("marshal translate request: %w", err)
	}

	var translated string
	call := func(callCtx context.Context) error {
		req, err := http.NewRequestWithContext(callCtx, http.MethodPost, c.baseURL+"/translate", bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("create translate request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("translate request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 300 {
			raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
			return &statusError{StatusCode: resp.StatusCode, Status: resp.Status, Body: strings.TrimSpace(string(raw))}
		}

		var decoded struct {
			TranslatedText string `json:"translatedText"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
			return fmt.Errorf("decode translate response: %w", err)
		}
		translated = strings.TrimSpace(decoded.TranslatedText)
		return nil
	}

	if c.executor != nil {
		err = c.executor.Execute(ctx, "translate", call, classifyTranslateError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return "", wrapTemporaryIfNeeded(err)
	}
	if translated == "" {
		return "", errors.New("empty translation result")
	}
	return translated, nil
}

type statusError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *statusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("translate status: %s", e.Status)
	}
	return fmt.Sprintf("translate status: %s: %s", e.Status, e.Body)
}

func classifyTranslateError(err error) resilience.ErrorClassification {
	if err == nil {
		return resilience.ErrorClassification{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
	}
	if resilience.IsCircuitOpen(err) {
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	}
	var statusErr *statusError
	if errors.As(err, &statusErr) {
		if statusErr.StatusCode >= 500 || statusErr.StatusCode == http.StatusTooManyRequests {
			return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
		}
		return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	}
	return resilience.ErrorClassification{Retryable: false, RecordFailure: true}
}

func wrapTemporaryIfNeeded(err error) error {
	if err == nil {
		return nil
	}
	if domain.IsKind(err, domain.ErrTemporary) {
		return err
	}
	class := classifyTranslateError(err)
	if class.Retryable || resilience.IsCircuitOpen(err) {
		return domain.WrapError(domain.ErrTemporary, "translate", err)
	}
	return err
}
