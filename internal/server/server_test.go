package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskintel/taskintel/constants"
	"github.com/taskintel/taskintel/internal/commits"
	"github.com/taskintel/taskintel/internal/common"
	"github.com/taskintel/taskintel/internal/entity"
	"github.com/taskintel/taskintel/internal/llm"
	"github.com/taskintel/taskintel/internal/pipeline"
	"github.com/taskintel/taskintel/internal/repository"
)

type stubIngestor struct {
	result  *pipeline.Result
	err     error
	lastReq llm.ExtractRequest
}

func (s *stubIngestor) Run(_ context.Context, req llm.ExtractRequest) (*pipeline.Result, error) {
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func newTestServer(t *testing.T, ingest Ingestor) (*Server, *repository.ExtractionRepository) {
	t.Helper()
	db, err := repository.InitDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	extractions := repository.NewExtractionRepository(db)
	commitsSvc := commits.NewService(repository.NewCommitRepository(db), nil)
	return New(nil, ingest, commitsSvc, extractions), extractions
}

func doJSON(t *testing.T, srv *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)
	return rec
}

func sampleExtraction() entity.ExtractionResult {
	return entity.ExtractionResult{
		Summary: "Sprint planning covered the auth rollout.",
		Tasks: []entity.TaskItem{
			{
				Title:     "Ship auth service",
				Status:    constants.DefaultStatus,
				Priority:  constants.PriorityHigh,
				Owner:     "alice",
				CreatedAt: "2025-01-10T12:00:00Z",
			},
		},
	}
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t, &stubIngestor{})
	rec := doJSON(t, srv, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestIngestSuccess(t *testing.T) {
	storedID := uuid.New()
	stub := &stubIngestor{result: &pipeline.Result{
		Extraction: sampleExtraction(),
		StoredID:   storedID,
	}}
	srv, _ := newTestServer(t, stub)

	rec := doJSON(t, srv, http.MethodPost, "/v1/ingest", `{"document_text":"Alice will ship auth."}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Status      string                  `json:"status"`
		Message     string                  `json:"message"`
		ID          string                  `json:"id"`
		NeedsReview bool                    `json:"needs_review"`
		Data        entity.ExtractionResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, "AI Extraction Complete", resp.Message)
	assert.Equal(t, storedID.String(), resp.ID)
	assert.False(t, resp.NeedsReview)
	assert.Equal(t, "Ship auth service", resp.Data.Tasks[0].Title)

	assert.Equal(t, "Alice will ship auth.", stub.lastReq.DocumentText)
	assert.NotEmpty(t, stub.lastReq.RequestID)
}

func TestIngestOmitsIDWhenNotStored(t *testing.T) {
	stub := &stubIngestor{result: &pipeline.Result{Extraction: sampleExtraction()}}
	srv, _ := newTestServer(t, stub)

	rec := doJSON(t, srv, http.MethodPost, "/v1/ingest", `{"document_text":"Alice will ship auth."}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	_, hasID := resp["id"]
	assert.False(t, hasID)
}

func TestIngestErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantKind   string
	}{
		{
			"empty document",
			common.InvalidRequestError("document_text must not be empty"),
			http.StatusBadRequest, "invalid_request",
		},
		{
			"schema violation",
			&common.SchemaViolationError{Violations: []string{"/tasks/0/status: value must be one of"}},
			http.StatusUnprocessableEntity, "schema_violation",
		},
		{
			"malformed output",
			&common.MalformedOutputError{Raw: "not json"},
			http.StatusBadGateway, "malformed_output",
		},
		{
			"producer unavailable",
			common.ProducerUnavailableError("max retries exceeded", nil),
			http.StatusBadGateway, "producer_unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newTestServer(t, &stubIngestor{err: tt.err})

			rec := doJSON(t, srv, http.MethodPost, "/v1/ingest", `{"document_text":"x"}`)
			require.Equal(t, tt.wantStatus, rec.Code)

			var resp errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, "error", resp.Status)
			assert.Equal(t, tt.wantKind, resp.Error)
		})
	}
}

func TestIngestSchemaViolationCarriesFieldPaths(t *testing.T) {
	srv, _ := newTestServer(t, &stubIngestor{err: &common.SchemaViolationError{
		Violations: []string{"/tasks/0/status: value must be one of", "/summary: expected string"},
	}})

	rec := doJSON(t, srv, http.MethodPost, "/v1/ingest", `{"document_text":"x"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Violations, 2)
	assert.Contains(t, resp.Violations[0], "/tasks/0/status")
}

func TestIngestRejectsInvalidBody(t *testing.T) {
	srv, _ := newTestServer(t, &stubIngestor{})
	rec := doJSON(t, srv, http.MethodPost, "/v1/ingest", `{"document_text": `)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCommitEndpoints(t *testing.T) {
	srv, _ := newTestServer(t, &stubIngestor{})

	rec := doJSON(t, srv, http.MethodPost, "/v1/commits",
		`{"commit_hash":"deadbeef","author":"alice","message":"fix parser","timestamp":"2025-01-10T12:00:00Z"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		Status        string              `json:"status"`
		Commit        entity.GitHubCommit `json:"commit"`
		EmbeddingText string              `json:"embedding_text"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "success", created.Status)
	assert.Equal(t, entity.DefaultBranch, created.Commit.Branch)
	assert.Equal(t, "Commit by alice: fix parser", created.EmbeddingText)

	rec = doJSON(t, srv, http.MethodGet, "/v1/commits", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var listed struct {
		Commits []entity.GitHubCommit `json:"commits"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed.Commits, 1)
	assert.Equal(t, "deadbeef", listed.Commits[0].CommitHash)
}

func TestCommitValidationFailure(t *testing.T) {
	srv, _ := newTestServer(t, &stubIngestor{})

	rec := doJSON(t, srv, http.MethodPost, "/v1/commits", `{"author":"alice"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "invalid_request", resp.Error)
}

func TestGetExtraction(t *testing.T) {
	srv, repo := newTestServer(t, &stubIngestor{})

	res := sampleExtraction()
	id, err := repo.SaveExtraction(context.Background(), res, []byte(`{}`), false)
	require.NoError(t, err)

	rec := doJSON(t, srv, http.MethodGet, "/v1/extractions/"+id.String(), "")
	require.Equal(t, http.StatusOK, rec.Code)

	var stored repository.StoredExtraction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stored))
	assert.Equal(t, id, stored.ID)
	assert.Equal(t, res.Summary, stored.Result.Summary)
}

func TestGetExtractionNotFound(t *testing.T) {
	srv, _ := newTestServer(t, &stubIngestor{})

	rec := doJSON(t, srv, http.MethodGet, "/v1/extractions/"+uuid.NewString(), "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "not_found", resp.Error)
}

func TestGetExtractionBadID(t *testing.T) {
	srv, _ := newTestServer(t, &stubIngestor{})
	rec := doJSON(t, srv, http.MethodGet, "/v1/extractions/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListExtractions(t *testing.T) {
	srv, repo := newTestServer(t, &stubIngestor{})

	res := sampleExtraction()
	_, err := repo.SaveExtraction(context.Background(), res, []byte(`{}`), true)
	require.NoError(t, err)

	rec := doJSON(t, srv, http.MethodGet, "/v1/extractions", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var listed struct {
		Extractions []repository.StoredExtraction `json:"extractions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed.Extractions, 1)
	assert.True(t, listed.Extractions[0].NeedsReview)
}
