package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jo-hoe/moviesnap/internal/metrics"
	"github.com/jo-hoe/moviesnap/internal/movie"
)

const (
	noImageMessage    = "No image provided"
	extractMoviesPath = "/api/extract-movies"
)

// MovieExtractor is the part of core.CoreService the HTTP surface needs.
type MovieExtractor interface {
	ExtractMovies(ctx context.Context, imageB64 string) ([]movie.Record, error)
}

type APIService struct {
	coreService MovieExtractor
	metrics     *metrics.Metrics
	gatherer    prometheus.Gatherer
}

type ExtractMoviesRequest struct {
	// pointer so a missing or null image fails validation while "" passes
	Image *string `json:"image" validate:"required"`
}

type ExtractMoviesResponse struct {
	Movies []movie.Record `json:"movies"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

// NewAPIService wires the routes to coreService. A nil gatherer leaves /metrics unregistered.
func NewAPIService(coreService MovieExtractor, m *metrics.Metrics, gatherer prometheus.Gatherer) *APIService {
	return &APIService{
		coreService: coreService,
		metrics:     m,
		gatherer:    gatherer,
	}
}

// SetRoutes registers the handlers and installs the error handler on e.
func (service *APIService) SetRoutes(e *echo.Echo) {
	e.HTTPErrorHandler = service.HTTPErrorHandler
	e.Match([]string{http.MethodGet, http.MethodPost}, "/health", service.healthHandler)
	e.POST(extractMoviesPath, service.extractMoviesHandler)

	if service.gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(service.gatherer, promhttp.HandlerOpts{})))
	}
}

func (service *APIService) healthHandler(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, HealthResponse{Status: "healthy"})
}

func (service *APIService) extractMoviesHandler(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	slog.InfoContext(reqCtx, "extract movies request received", "remote_ip", ctx.RealIP())

	var req ExtractMoviesRequest
	if err := ctx.Bind(&req); err != nil {
		slog.WarnContext(reqCtx, "extractMoviesHandler: failed to bind request body",
			"status", http.StatusBadRequest, "error", err)
		return service.respond(ctx, http.StatusBadRequest, ErrorResponse{Error: noImageMessage})
	}
	if err := ctx.Validate(&req); err != nil {
		slog.WarnContext(reqCtx, "extractMoviesHandler: request without image",
			"status", http.StatusBadRequest, "error", err)
		return service.respond(ctx, http.StatusBadRequest, ErrorResponse{Error: noImageMessage})
	}

	movies, err := service.coreService.ExtractMovies(reqCtx, *req.Image)
	if err != nil {
		slog.ErrorContext(reqCtx, "extractMoviesHandler: error processing request",
			"status", http.StatusInternalServerError, "error", err)
		return service.respond(ctx, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
	}
	if movies == nil {
		movies = []movie.Record{}
	}

	slog.InfoContext(reqCtx, "extract movies request completed", "movies", len(movies))
	return service.respond(ctx, http.StatusOK, ExtractMoviesResponse{Movies: movies})
}

// HTTPErrorHandler renders errors that escape the handlers (unknown routes, recovered panics) in
// the same {"error": ...} shape as the API responses. Errors on the extract-movies route count
// towards the request metric like regular responses.
func (service *APIService) HTTPErrorHandler(err error, ctx echo.Context) {
	if ctx.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := err.Error()
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		status = httpErr.Code
		message = fmt.Sprint(httpErr.Message)
	}
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(ctx.Request().Context(), "unhandled error", "status", status, "error", err)
	}
	if ctx.Path() == extractMoviesPath {
		service.metrics.ObserveRequest(status)
	}

	if ctx.Request().Method == http.MethodHead {
		err = ctx.NoContent(status)
	} else {
		err = ctx.JSON(status, ErrorResponse{Error: message})
	}
	if err != nil {
		slog.Error("failed to write error response", "error", err)
	}
}

func (service *APIService) respond(ctx echo.Context, status int, body any) error {
	service.metrics.ObserveRequest(status)
	return ctx.JSON(status, body)
}
