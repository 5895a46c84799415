package server

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/taskintel/taskintel/internal/common"
	"github.com/taskintel/taskintel/internal/entity"
)

func (s *Server) handleCommit(c echo.Context) error {
	var commit entity.GitHubCommit
	if err := c.Bind(&commit); err != nil {
		return s.writeError(c, common.InvalidRequestError("body must be valid JSON"))
	}

	stored, err := s.commits.Ingest(c.Request().Context(), commit)
	if err != nil {
		return s.writeError(c, err)
	}

	return c.JSON(http.StatusCreated, map[string]any{
		"status":         "success",
		"commit":         stored,
		"embedding_text": stored.EmbeddingText(),
	})
}

func (s *Server) handleListCommits(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	list, err := s.commits.List(c.Request().Context(), limit)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"commits": list})
}
