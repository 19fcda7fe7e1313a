package extractor

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/jo-hoe/moviesnap/internal/imageprocessing"
	"github.com/jo-hoe/moviesnap/internal/metrics"
)

const (
	DefaultGeminiModel = "gemini-1.5-flash"
	geminiService      = "Gemini"
)

// GeminiExtractor asks a Gemini model through the generative-ai SDK.
type GeminiExtractor struct {
	apiKey    string
	model     string
	endpoint  string
	maxTokens int
	maxEdge   int
	timeout   time.Duration
	metrics   *metrics.Metrics
}

func NewGeminiExtractor(cfg Config, m *metrics.Metrics) *GeminiExtractor {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultGeminiModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return &GeminiExtractor{
		apiKey:    strings.TrimSpace(cfg.APIKey),
		model:     model,
		endpoint:  strings.TrimSpace(cfg.BaseURL),
		maxTokens: maxTokens,
		maxEdge:   cfg.MaxImageEdge,
		timeout:   cfg.Timeout,
		metrics:   m,
	}
}

func (e *GeminiExtractor) ExtractTitles(ctx context.Context, imageB64 string) ([]string, error) {
	slog.InfoContext(ctx, "calling vision model to extract movie titles", "provider", ProviderGemini, "model", e.model)

	text, err := e.complete(ctx, imageprocessing.PrepareWith(imageB64, imageprocessing.Options{MaxEdge: e.maxEdge}))
	if err != nil {
		slog.ErrorContext(ctx, "vision model call failed", "provider", ProviderGemini, "error", err)
		return nil, err
	}

	titles := ParseTitles(text)
	slog.InfoContext(ctx, "extracted movie titles", "count", len(titles), "titles", titles)
	return titles, nil
}

func (e *GeminiExtractor) complete(ctx context.Context, image imageprocessing.Payload) (string, error) {
	if e.apiKey == "" {
		return "", &ExternalServiceError{Service: geminiService, Err: errors.New("GEMINI_API_KEY is empty")}
	}
	if image.Raw == nil {
		return "", &ExternalServiceError{Service: geminiService, Err: errors.New("image is not valid base64")}
	}
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	opts := []option.ClientOption{option.WithAPIKey(e.apiKey)}
	if e.endpoint != "" {
		opts = append(opts, option.WithEndpoint(e.endpoint))
	}
	cl, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return "", &ExternalServiceError{Service: geminiService, Err: err}
	}
	defer func() {
		_ = cl.Close()
	}()

	m := cl.GenerativeModel(e.model)
	m.SetMaxOutputTokens(int32(e.maxTokens))
	m.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemPrompt)},
	}

	start := time.Now()
	resp, err := m.GenerateContent(ctx,
		&genai.Blob{MIMEType: image.MediaType, Data: image.Raw},
		genai.Text(userPrompt),
	)
	e.metrics.ObserveUpstream(ProviderGemini, start)
	if err != nil {
		return "", &ExternalServiceError{Service: geminiService, Err: err}
	}
	return responseText(resp), nil
}

// responseText concatenates the text parts of all candidates.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var text strings.Builder
	for _, c := range resp.Candidates {
		if c == nil || c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				text.WriteString(string(t))
			}
		}
	}
	return text.String()
}
