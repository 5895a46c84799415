package server

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/taskintel/taskintel/internal/common"
)

func (s *Server) handleListExtractions(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	list, err := s.extractions.List(c.Request().Context(), limit)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"extractions": list})
}

func (s *Server) handleGetExtraction(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return s.writeError(c, common.InvalidRequestErrorf("invalid extraction id %q", c.Param("id")))
	}

	stored, err := s.extractions.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, errorResponse{
				Status:  "error",
				Error:   "not_found",
				Message: "extraction not found",
			})
		}
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, stored)
}
