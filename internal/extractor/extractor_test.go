package extractor

import (
	"errors"
	"io"
	"net/http"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		want     string
		wantErr  bool
	}{
		{name: "default is anthropic", provider: "", want: "anthropic"},
		{name: "anthropic", provider: "anthropic", want: "anthropic"},
		{name: "case insensitive", provider: " Gemini ", want: "gemini"},
		{name: "unknown", provider: "openai", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := New(Config{Provider: tt.provider}, nil)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			switch got.(type) {
			case *AnthropicExtractor:
				if tt.want != "anthropic" {
					t.Errorf("Expected %s extractor, got anthropic", tt.want)
				}
			case *GeminiExtractor:
				if tt.want != "gemini" {
					t.Errorf("Expected %s extractor, got gemini", tt.want)
				}
			default:
				t.Errorf("Unexpected extractor type %T", got)
			}
		})
	}
}

func TestExternalServiceError_Error(t *testing.T) {
	cause := errors.New("connection refused")
	tests := []struct {
		name string
		err  *ExternalServiceError
		want string
	}{
		{
			name: "status and message",
			err:  &ExternalServiceError{Service: "Claude", StatusCode: http.StatusUnauthorized, Message: "invalid x-api-key"},
			want: "Error calling Claude API: 401 Unauthorized: invalid x-api-key",
		},
		{
			name: "status only",
			err:  &ExternalServiceError{Service: "Claude", StatusCode: http.StatusInternalServerError},
			want: "Error calling Claude API: 500 Internal Server Error",
		},
		{
			name: "status and unreadable body",
			err:  &ExternalServiceError{Service: "Claude", StatusCode: http.StatusBadGateway, Err: io.ErrUnexpectedEOF},
			want: "Error calling Claude API: 502 Bad Gateway: unexpected EOF",
		},
		{
			name: "transport error",
			err:  &ExternalServiceError{Service: "Gemini", Err: cause},
			want: "Error calling Gemini API: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}

	wrapped := &ExternalServiceError{Service: "Claude", Err: cause}
	if !errors.Is(wrapped, cause) {
		t.Error("Expected errors.Is to find the cause")
	}
}
