// Package omdb looks up movie metadata in the OMDb API.
package omdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jo-hoe/moviesnap/internal/metrics"
	"github.com/jo-hoe/moviesnap/internal/movie"
)

const (
	DefaultBaseURL = "http://www.omdbapi.com"
	serviceName    = "omdb"
)

type Config struct {
	APIKey  string
	BaseURL string
	// Timeout of the outbound HTTP client, zero means none.
	Timeout time.Duration
}

type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
	metrics *metrics.Metrics
}

// fields are pointers so an absent field can be told apart from an empty one
type omdbResponse struct {
	Response   string  `json:"Response"`
	Title      *string `json:"Title"`
	IMDBRating *string `json:"imdbRating"`
	Poster     *string `json:"Poster"`
	Year       *string `json:"Year"`
	Plot       *string `json:"Plot"`
	Error      string  `json:"Error"`
}

func NewClient(cfg Config, m *metrics.Metrics) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: cfg.Timeout},
		metrics: m,
	}
}

// Lookup returns the metadata for title. It never fails: a title the database does not know and a
// lookup that could not be completed both yield a populated record.
func (c *Client) Lookup(ctx context.Context, title string) movie.Record {
	slog.InfoContext(ctx, "fetching movie details", "title", title)

	data, err := c.fetch(ctx, title)
	if err != nil {
		slog.ErrorContext(ctx, "error fetching movie details", "title", title, "error", err)
		c.metrics.ObserveLookup(metrics.OutcomeError)
		return movie.Failed(title, err)
	}

	if data.Response != "True" {
		slog.WarnContext(ctx, "movie not found", "title", title, "reason", data.Error)
		c.metrics.ObserveLookup(metrics.OutcomeNotFound)
		return movie.NotFound(title)
	}

	c.metrics.ObserveLookup(metrics.OutcomeFound)
	return movie.Record{
		Title:  valueOr(data.Title, title),
		Rating: valueOr(data.IMDBRating, movie.NotAvailable),
		Poster: valueOr(data.Poster, movie.NotAvailable),
		Year:   valueOr(data.Year, movie.NotAvailable),
		Plot:   valueOr(data.Plot, movie.NotAvailable),
	}
}

func (c *Client) fetch(ctx context.Context, title string) (omdbResponse, error) {
	params := url.Values{}
	params.Set("apikey", c.apiKey)
	params.Set("t", title)
	params.Set("plot", "short")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/?"+params.Encode(), nil)
	if err != nil {
		return omdbResponse{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	c.metrics.ObserveUpstream(serviceName, start)
	if err != nil {
		// *url.Error repeats the query string, which carries the api key
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			return omdbResponse{}, fmt.Errorf("%s %s: %w", urlErr.Op, c.baseURL, urlErr.Err)
		}
		return omdbResponse{}, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return omdbResponse{}, fmt.Errorf("%d %s for url: %s", resp.StatusCode, http.StatusText(resp.StatusCode), c.baseURL)
	}

	var data omdbResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return omdbResponse{}, fmt.Errorf("failed to decode response: %w", err)
	}
	return data, nil
}

func valueOr(v *string, fallback string) string {
	if v == nil {
		return fallback
	}
	return *v
}
