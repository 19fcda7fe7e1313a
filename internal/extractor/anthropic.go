package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jo-hoe/moviesnap/internal/imageprocessing"
	"github.com/jo-hoe/moviesnap/internal/metrics"
)

const (
	DefaultAnthropicBaseURL = "https://api.anthropic.com"
	DefaultAnthropicModel   = "claude-3-7-sonnet-20250219"
	DefaultMaxTokens        = 1000

	anthropicVersion = "2023-06-01"
	anthropicService = "Claude"
	// upstream error bodies are cut to this length in error messages
	maxErrorBody = 2048
)

// AnthropicExtractor calls the Anthropic messages API.
type AnthropicExtractor struct {
	apiKey    string
	model     string
	baseURL   string
	maxTokens int
	maxEdge   int
	client    *http.Client
	metrics   *metrics.Metrics
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string           `json:"role"`
	Content []anthropicBlock `json:"content"`
}

type anthropicBlock struct {
	Type   string                `json:"type"`
	Text   string                `json:"text,omitempty"`
	Source *anthropicImageSource `json:"source,omitempty"`
}

type anthropicImageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type anthropicResponse struct {
	Content []anthropicBlock `json:"content"`
}

type anthropicErrorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func NewAnthropicExtractor(cfg Config, client *http.Client, m *metrics.Metrics) *AnthropicExtractor {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultAnthropicBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = DefaultAnthropicModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &AnthropicExtractor{
		apiKey:    cfg.APIKey,
		model:     model,
		baseURL:   baseURL,
		maxTokens: maxTokens,
		maxEdge:   cfg.MaxImageEdge,
		client:    client,
		metrics:   m,
	}
}

func (e *AnthropicExtractor) ExtractTitles(ctx context.Context, imageB64 string) ([]string, error) {
	slog.InfoContext(ctx, "calling vision model to extract movie titles", "provider", ProviderAnthropic, "model", e.model)

	text, err := e.complete(ctx, imageprocessing.PrepareWith(imageB64, imageprocessing.Options{MaxEdge: e.maxEdge}))
	if err != nil {
		slog.ErrorContext(ctx, "vision model call failed", "provider", ProviderAnthropic, "error", err)
		return nil, err
	}

	titles := ParseTitles(text)
	slog.InfoContext(ctx, "extracted movie titles", "count", len(titles), "titles", titles)
	return titles, nil
}

// complete sends one messages request and returns the concatenated text blocks of the answer.
func (e *AnthropicExtractor) complete(ctx context.Context, image imageprocessing.Payload) (string, error) {
	body := anthropicRequest{
		Model:     e.model,
		MaxTokens: e.maxTokens,
		System:    systemPrompt,
		Messages: []anthropicMessage{
			{
				Role: "user",
				Content: []anthropicBlock{
					{
						Type: "image",
						Source: &anthropicImageSource{
							Type:      "base64",
							MediaType: image.MediaType,
							Data:      image.Data,
						},
					},
					{Type: "text", Text: userPrompt},
				},
			},
		},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/v1/messages", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("anthropic-version", anthropicVersion)
	req.Header.Set("content-type", "application/json")
	req.Header.Set("x-api-key", e.apiKey)
	// some gateways forward only one of the two auth headers
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	start := time.Now()
	resp, err := e.client.Do(req)
	e.metrics.ObserveUpstream(ProviderAnthropic, start)
	if err != nil {
		return "", &ExternalServiceError{Service: anthropicService, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &ExternalServiceError{Service: anthropicService, StatusCode: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &ExternalServiceError{
			Service:    anthropicService,
			StatusCode: resp.StatusCode,
			Message:    upstreamMessage(raw),
		}
	}

	var out anthropicResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", &ExternalServiceError{Service: anthropicService, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	slog.DebugContext(ctx, "vision model response received", "content_blocks", len(out.Content))

	var text strings.Builder
	for _, block := range out.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	return text.String(), nil
}

// upstreamMessage prefers the API's error message and falls back to the raw body.
func upstreamMessage(body []byte) string {
	var apiErr anthropicErrorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		return apiErr.Error.Message
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > maxErrorBody {
		msg = msg[:maxErrorBody] + "..."
	}
	return msg
}
