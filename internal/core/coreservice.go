package core

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jo-hoe/moviesnap/internal/extractor"
	"github.com/jo-hoe/moviesnap/internal/metrics"
	"github.com/jo-hoe/moviesnap/internal/movie"
	"github.com/jo-hoe/moviesnap/internal/omdb"
)

// MetadataLookup resolves a title to its movie record. Implementations never fail, problems are
// reported inside the record.
type MetadataLookup interface {
	Lookup(ctx context.Context, title string) movie.Record
}

type CoreService struct {
	extractor extractor.TitleExtractor
	lookup    MetadataLookup
	metrics   *metrics.Metrics
}

func NewCoreService(config *ServiceConfig, m *metrics.Metrics) (*CoreService, error) {
	titleExtractor, err := extractor.New(config.ExtractorSettings(), m)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize extractor: %w", err)
	}
	slog.Info("extractor initialized", "provider", config.Extractor.Provider)

	return newCoreService(titleExtractor, omdb.NewClient(config.MovieDatabaseSettings(), m), m), nil
}

func newCoreService(titleExtractor extractor.TitleExtractor, lookup MetadataLookup, m *metrics.Metrics) *CoreService {
	return &CoreService{
		extractor: titleExtractor,
		lookup:    lookup,
		metrics:   m,
	}
}

// ExtractMovies extracts the titles shown in the base64 image and looks each one up, in order and
// one at a time. The result is never nil.
func (service *CoreService) ExtractMovies(ctx context.Context, imageB64 string) ([]movie.Record, error) {
	titles, err := service.extractor.ExtractTitles(ctx, imageB64)
	if err != nil {
		service.metrics.ObserveExtraction(metrics.OutcomeError)
		return nil, err
	}

	movies := make([]movie.Record, 0, len(titles))
	if len(titles) == 0 {
		service.metrics.ObserveExtraction(metrics.OutcomeEmpty)
		slog.InfoContext(ctx, "no movie titles found in image")
		return movies, nil
	}
	service.metrics.ObserveExtraction(metrics.OutcomeOK)

	for _, title := range titles {
		// the client is gone, further lookups would only produce error records
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		movies = append(movies, service.lookup.Lookup(ctx, title))
	}
	return movies, nil
}
