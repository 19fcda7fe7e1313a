package extractor

import (
	"context"
	"errors"
	"testing"

	"github.com/google/generative-ai-go/genai"
)

func TestGeminiExtractor_Defaults(t *testing.T) {
	e := NewGeminiExtractor(Config{APIKey: " key "}, nil)

	if e.model != DefaultGeminiModel {
		t.Errorf("Expected model %s, got %s", DefaultGeminiModel, e.model)
	}
	if e.maxTokens != DefaultMaxTokens {
		t.Errorf("Expected max tokens %d, got %d", DefaultMaxTokens, e.maxTokens)
	}
	if e.apiKey != "key" {
		t.Errorf("Expected trimmed api key, got %q", e.apiKey)
	}
}

func TestGeminiExtractor_FailsWithoutCallingUpstream(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		image string
	}{
		{name: "missing api key", key: "", image: testPNG},
		{name: "image is not base64", key: "key", image: "%%%"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewGeminiExtractor(Config{APIKey: tt.key}, nil)

			_, err := e.ExtractTitles(context.Background(), tt.image)
			var svcErr *ExternalServiceError
			if !errors.As(err, &svcErr) {
				t.Fatalf("Expected *ExternalServiceError, got %v", err)
			}
			if svcErr.Service != geminiService {
				t.Errorf("Expected service %s, got %s", geminiService, svcErr.Service)
			}
		})
	}
}

func TestResponseText(t *testing.T) {
	tests := []struct {
		name string
		resp *genai.GenerateContentResponse
		want string
	}{
		{name: "nil response", resp: nil, want: ""},
		{name: "no candidates", resp: &genai.GenerateContentResponse{}, want: ""},
		{
			name: "text parts of all candidates",
			resp: &genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{
					{Content: &genai.Content{Parts: []genai.Part{genai.Text("Inception\n"), genai.Text("Heat")}}},
					{Content: nil},
					{Content: &genai.Content{Parts: []genai.Part{genai.Blob{MIMEType: "image/png"}, genai.Text("\nAlien")}}},
				},
			},
			want: "Inception\nHeat\nAlien",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := responseText(tt.resp); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}
