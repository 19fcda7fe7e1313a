package movie

import (
	"errors"
	"strings"
	"testing"
)

func TestNotFound(t *testing.T) {
	r := NotFound("Matrix of Nowhere")

	if r.Title != "Matrix of Nowhere" {
		t.Errorf("Expected title 'Matrix of Nowhere', got '%s'", r.Title)
	}
	if r.Rating != NotAvailable || r.Poster != NotAvailable || r.Year != NotAvailable {
		t.Errorf("Expected N/A sentinels, got rating=%q poster=%q year=%q", r.Rating, r.Poster, r.Year)
	}
	if r.Plot != NotFoundPlot {
		t.Errorf("Expected plot %q, got %q", NotFoundPlot, r.Plot)
	}
	if r.IsFailed() {
		t.Error("Expected not-found record not to be marked as failed")
	}
}

func TestFailed(t *testing.T) {
	r := Failed("Inception", errors.New("connection refused"))

	if r.Rating != ErrorRating {
		t.Errorf("Expected rating %q, got %q", ErrorRating, r.Rating)
	}
	if r.Poster != NotAvailable || r.Year != NotAvailable {
		t.Errorf("Expected poster and year to be N/A, got poster=%q year=%q", r.Poster, r.Year)
	}
	if !strings.Contains(r.Plot, "connection refused") {
		t.Errorf("Expected plot to embed the cause, got %q", r.Plot)
	}
	if !r.IsFailed() {
		t.Error("Expected record to be marked as failed")
	}
}
