package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/taskintel/taskintel/internal/common"
	"github.com/taskintel/taskintel/internal/entity"
	"github.com/taskintel/taskintel/internal/llm"
)

// ExtractionStore persists validated results. A nil store skips persistence
// (one-shot CLI path).
type ExtractionStore interface {
	SaveExtraction(ctx context.Context, res entity.ExtractionResult, rawJSON []byte, needsReview bool) (uuid.UUID, error)
}

// Config holds behavior flags for the extract stage.
type Config struct {
	// CheckEvidence verifies that each task's source_evidence is a substring
	// of the originating document. A mismatch flags the result for review
	// instead of failing the bind: the quote may legitimately differ by
	// whitespace or ellipsis.
	CheckEvidence bool
}

// ExtractStage runs one document through prompt -> producer -> validator.
// Each invocation owns its own prompt, response and result; there is no
// shared mutable state, so invocations may run concurrently.
type ExtractStage struct {
	Logger    *slog.Logger
	Cfg       Config
	Generator llm.Generator
	Store     ExtractionStore
}

func NewExtractStage(logger *slog.Logger, cfg Config, gen llm.Generator, store ExtractionStore) *ExtractStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExtractStage{Logger: logger, Cfg: cfg, Generator: gen, Store: store}
}

// Result is one completed extraction.
type Result struct {
	RequestID   string
	Extraction  entity.ExtractionResult
	RawJSON     []byte
	NeedsReview bool
	StoredID    uuid.UUID // uuid.Nil when no store is configured
}

// Run executes the pipeline for one document. Exactly one producer call is
// made per invocation (the client may retry transient transport failures, but
// never contract failures). All errors are terminal for this invocation.
func (s *ExtractStage) Run(ctx context.Context, req llm.ExtractRequest) (*Result, error) {
	if strings.TrimSpace(req.DocumentText) == "" {
		// Rejected before any external call is made.
		return nil, common.InvalidRequestError("document_text is required")
	}

	rid := req.RequestID
	if rid == "" {
		rid = common.RequestIDFromContext(ctx)
	}
	if rid == "" {
		rid = uuid.New().String()
	}
	start := time.Now()

	s.Logger.Info("pipeline.extract.start",
		"req_id", rid,
		"document_bytes", len(req.DocumentText),
	)

	prompt := llm.BuildExtractionPrompt(req.DocumentText, llm.BuildExtractionJSONSchema())

	raw, err := s.Generator.GenerateJSON(ctx, prompt)
	if err != nil {
		s.Logger.Error("pipeline.extract.producer_failed",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	res, err := llm.BindExtractionResult(raw)
	if err != nil {
		s.Logger.Error("pipeline.extract.bind_failed",
			"req_id", rid, "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	needsReview := false
	if s.Cfg.CheckEvidence {
		for i, t := range res.Tasks {
			if t.SourceEvidence == nil {
				continue
			}
			if !strings.Contains(req.DocumentText, *t.SourceEvidence) {
				needsReview = true
				s.Logger.Warn("pipeline.extract.evidence_not_found",
					"req_id", rid, "task_index", i, "title", t.Title,
				)
			}
		}
	}

	result := &Result{
		RequestID:   rid,
		Extraction:  res,
		RawJSON:     raw,
		NeedsReview: needsReview,
	}

	if s.Store != nil {
		id, err := s.Store.SaveExtraction(ctx, res, raw, needsReview)
		if err != nil {
			return nil, fmt.Errorf("save extraction: %w", err)
		}
		result.StoredID = id
	}

	s.Logger.Info("pipeline.extract.ok",
		"req_id", rid,
		"tasks", len(res.Tasks),
		"needs_review", needsReview,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return result, nil
}
