// Package server is the boundary adapter: it owns request parsing and
// response serialization, and maps pipeline outcomes to transport-level
// responses. The extraction core never sees HTTP.
package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/taskintel/taskintel/internal/commits"
	"github.com/taskintel/taskintel/internal/common"
	"github.com/taskintel/taskintel/internal/llm"
	"github.com/taskintel/taskintel/internal/pipeline"
	"github.com/taskintel/taskintel/internal/repository"
)

// Ingestor runs one document through the extraction pipeline.
type Ingestor interface {
	Run(ctx context.Context, req llm.ExtractRequest) (*pipeline.Result, error)
}

type Server struct {
	logger      *zap.Logger
	ingest      Ingestor
	commits     *commits.Service
	extractions *repository.ExtractionRepository
}

func New(logger *zap.Logger, ingest Ingestor, commitsSvc *commits.Service, extractions *repository.ExtractionRepository) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		logger:      logger,
		ingest:      ingest,
		commits:     commitsSvc,
		extractions: extractions,
	}
}

// Routes wires the HTTP surface.
func (s *Server) Routes() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.RequestID())
	e.Use(middleware.Recover())

	e.GET("/healthz", s.handleHealth)
	e.POST("/v1/ingest", s.handleIngest)
	e.POST("/v1/commits", s.handleCommit)
	e.GET("/v1/commits", s.handleListCommits)
	e.GET("/v1/extractions", s.handleListExtractions)
	e.GET("/v1/extractions/:id", s.handleGetExtraction)
	return e
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// errorResponse is the uniform failure envelope. Error holds the machine
// classification, Message the human detail, Violations the field paths for
// contract breaches.
type errorResponse struct {
	Status     string   `json:"status"`
	Error      string   `json:"error"`
	Message    string   `json:"message"`
	Violations []string `json:"violations,omitempty"`
}

// writeError maps the failure taxonomy onto distinct HTTP outcomes so that
// "we are misconfigured", "the producer is down" and "the producer broke the
// contract" stay distinguishable at the operator's dashboard.
func (s *Server) writeError(c echo.Context, err error) error {
	resp := errorResponse{Status: "error", Error: kindString(err), Message: err.Error()}

	var sv *common.SchemaViolationError
	if errors.As(err, &sv) {
		resp.Violations = sv.Violations
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, common.ErrInvalidRequest):
		status = http.StatusBadRequest
	case errors.Is(err, common.ErrSchemaViolation):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, common.ErrMalformedOutput), errors.Is(err, common.ErrProducerUnavailable):
		status = http.StatusBadGateway
	}

	if status >= 500 {
		s.logger.Error("request failed", zap.String("kind", resp.Error), zap.Error(err))
	} else {
		s.logger.Warn("request rejected", zap.String("kind", resp.Error), zap.Error(err))
	}
	return c.JSON(status, resp)
}

func kindString(err error) string {
	switch {
	case errors.Is(err, common.ErrConfiguration):
		return "configuration_error"
	case errors.Is(err, common.ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(err, common.ErrProducerUnavailable):
		return "producer_unavailable"
	case errors.Is(err, common.ErrMalformedOutput):
		return "malformed_output"
	case errors.Is(err, common.ErrSchemaViolation):
		return "schema_violation"
	default:
		return "internal_error"
	}
}
