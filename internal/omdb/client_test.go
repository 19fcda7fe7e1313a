package omdb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/jo-hoe/moviesnap/internal/metrics"
	"github.com/jo-hoe/moviesnap/internal/movie"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(Config{APIKey: "secret", BaseURL: server.URL}, nil), server
}

func TestClient_Lookup(t *testing.T) {
	tests := []struct {
		name   string
		title  string
		status int
		body   string
		want   movie.Record
	}{
		{
			name:   "found",
			title:  "inception",
			status: http.StatusOK,
			body:   `{"Title":"Inception","Year":"2010","imdbRating":"8.8","Poster":"https://img/inception.jpg","Plot":"A thief who steals secrets.","Response":"True"}`,
			want: movie.Record{
				Title:  "Inception",
				Rating: "8.8",
				Poster: "https://img/inception.jpg",
				Year:   "2010",
				Plot:   "A thief who steals secrets.",
			},
		},
		{
			name:   "canonical title from database",
			title:  "matrix",
			status: http.StatusOK,
			body:   `{"Title":"The Matrix","Response":"True"}`,
			want:   movie.Record{Title: "The Matrix", Rating: "N/A", Poster: "N/A", Year: "N/A", Plot: "N/A"},
		},
		{
			name:   "absent fields become N/A",
			title:  "Heat",
			status: http.StatusOK,
			body:   `{"Response":"True"}`,
			want:   movie.Record{Title: "Heat", Rating: "N/A", Poster: "N/A", Year: "N/A", Plot: "N/A"},
		},
		{
			name:   "empty fields pass through",
			title:  "Heat",
			status: http.StatusOK,
			body:   `{"Title":"Heat","imdbRating":"","Poster":"","Year":"","Plot":"","Response":"True"}`,
			want:   movie.Record{Title: "Heat", Rating: "", Poster: "", Year: "", Plot: ""},
		},
		{
			name:   "not found",
			title:  "Heat",
			status: http.StatusOK,
			body:   `{"Response":"False","Error":"Movie not found!"}`,
			want:   movie.NotFound("Heat"),
		},
		{
			name:   "missing response flag is not found",
			title:  "Heat",
			status: http.StatusOK,
			body:   `{"Title":"Heat"}`,
			want:   movie.NotFound("Heat"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			got := c.Lookup(context.Background(), tt.title)
			if got != tt.want {
				t.Errorf("Expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestClient_LookupFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		closed  bool
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
		},
		{
			name: "invalid json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("<html>"))
			},
		},
		{
			name:    "unreachable",
			handler: func(w http.ResponseWriter, r *http.Request) {},
			closed:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, server := newTestClient(t, tt.handler)
			if tt.closed {
				server.Close()
			}

			got := c.Lookup(context.Background(), "Heat")
			if got.Title != "Heat" || got.Rating != movie.ErrorRating || got.Poster != movie.NotAvailable || got.Year != movie.NotAvailable {
				t.Errorf("Expected error record, got %+v", got)
			}
			if !strings.HasPrefix(got.Plot, "Error fetching movie details: ") {
				t.Errorf("Unexpected plot: %q", got.Plot)
			}
			if strings.Contains(got.Plot, "secret") {
				t.Errorf("Plot leaks the api key: %q", got.Plot)
			}
		})
	}
}

func TestClient_QueryParameters(t *testing.T) {
	var query map[string]string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("Expected GET, got %s", r.Method)
		}
		if r.URL.Path != "/" {
			t.Errorf("Expected path /, got %s", r.URL.Path)
		}
		q := r.URL.Query()
		query = map[string]string{"apikey": q.Get("apikey"), "t": q.Get("t"), "plot": q.Get("plot")}
		_, _ = w.Write([]byte(`{"Response":"False"}`))
	})

	c.Lookup(context.Background(), "Matrix of Nowhere & Co")

	want := map[string]string{"apikey": "secret", "t": "Matrix of Nowhere & Co", "plot": "short"}
	for k, v := range want {
		if query[k] != v {
			t.Errorf("Expected %s=%q, got %q", k, v, query[k])
		}
	}
}

func TestClient_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	responses := []string{`{"Response":"True"}`, `{"Response":"False"}`, `{"Response":"True"}`}
	i := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(responses[i]))
		i++
	}))
	defer server.Close()
	c := NewClient(Config{BaseURL: server.URL}, m)

	for range responses {
		c.Lookup(context.Background(), "Heat")
	}

	if n := testutil.CollectAndCount(reg, "moviesnap_lookups_total"); n != 2 {
		t.Errorf("Expected 2 lookup outcome series, got %d", n)
	}
	if n := testutil.CollectAndCount(reg, "moviesnap_upstream_duration_seconds"); n != 1 {
		t.Errorf("Expected 1 upstream duration series, got %d", n)
	}
}

func TestNewClient_DefaultBaseURL(t *testing.T) {
	c := NewClient(Config{}, nil)
	if c.baseURL != DefaultBaseURL {
		t.Errorf("Expected %s, got %s", DefaultBaseURL, c.baseURL)
	}
}
