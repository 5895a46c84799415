package server

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/taskintel/taskintel/internal/common"
	"github.com/taskintel/taskintel/internal/entity"
	"github.com/taskintel/taskintel/internal/llm"
)

type ingestRequest struct {
	DocumentText string `json:"document_text"`
}

type ingestResponse struct {
	Status      string                  `json:"status"`
	Message     string                  `json:"message"`
	ID          string                  `json:"id,omitempty"`
	NeedsReview bool                    `json:"needs_review"`
	Data        entity.ExtractionResult `json:"data"`
}

func (s *Server) handleIngest(c echo.Context) error {
	var req ingestRequest
	if err := c.Bind(&req); err != nil {
		return s.writeError(c, common.InvalidRequestError("body must be valid JSON"))
	}

	rid := c.Response().Header().Get(echo.HeaderXRequestID)
	ctx := common.WithRequestID(c.Request().Context(), rid)

	result, err := s.ingest.Run(ctx, llm.ExtractRequest{
		DocumentText: req.DocumentText,
		RequestID:    rid,
	})
	if err != nil {
		return s.writeError(c, err)
	}

	resp := ingestResponse{
		Status:      "success",
		Message:     "AI Extraction Complete",
		NeedsReview: result.NeedsReview,
		Data:        result.Extraction,
	}
	if result.StoredID != uuid.Nil {
		resp.ID = result.StoredID.String()
	}
	return c.JSON(http.StatusOK, resp)
}
