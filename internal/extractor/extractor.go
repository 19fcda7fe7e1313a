// Package extractor asks a vision language model which movie titles are visible in an image.
package extractor

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jo-hoe/moviesnap/internal/metrics"
)

const (
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

const (
	systemPrompt = `You are an AI assistant specialized in identifying movie titles from images. ` +
		`Look at the provided image and identify all movie titles that appear in it. ` +
		`Return ONLY the movie titles, one per line, with no additional text or explanations. ` +
		`If no movie titles are detected, respond with "` + NoTitlesSentinel + `".`
	userPrompt = "What movie titles do you see in this image? List only the movie titles."
)

// TitleExtractor turns a base64 encoded image into the movie titles visible in it.
type TitleExtractor interface {
	ExtractTitles(ctx context.Context, imageB64 string) ([]string, error)
}

type Config struct {
	Provider  string
	APIKey    string
	Model     string
	BaseURL   string
	MaxTokens int
	// MaxImageEdge downscales larger images before upload, zero sends them as they are.
	MaxImageEdge int
	// Timeout of the outbound HTTP client, zero means none.
	Timeout time.Duration
}

// New builds the extractor for cfg.Provider.
func New(cfg Config, m *metrics.Metrics) (TitleExtractor, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", ProviderAnthropic:
		return NewAnthropicExtractor(cfg, &http.Client{Timeout: cfg.Timeout}, m), nil
	case ProviderGemini:
		return NewGeminiExtractor(cfg, m), nil
	default:
		return nil, fmt.Errorf("unsupported extractor provider: %s", cfg.Provider)
	}
}

// ExternalServiceError reports a failed call to the vision model API.
type ExternalServiceError struct {
	Service string
	// StatusCode is zero when no HTTP response was received.
	StatusCode int
	Message    string
	Err        error
}

func (e *ExternalServiceError) Error() string {
	if e == nil {
		return "external service error"
	}
	var detail string
	switch {
	case e.StatusCode != 0 && e.Message != "":
		detail = fmt.Sprintf("%d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Message)
	case e.StatusCode != 0 && e.Err != nil:
		detail = fmt.Sprintf("%d %s: %v", e.StatusCode, http.StatusText(e.StatusCode), e.Err)
	case e.StatusCode != 0:
		detail = fmt.Sprintf("%d %s", e.StatusCode, http.StatusText(e.StatusCode))
	case e.Err != nil:
		detail = e.Err.Error()
	default:
		detail = e.Message
	}
	return fmt.Sprintf("Error calling %s API: %s", e.Service, detail)
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }
