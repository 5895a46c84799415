package llm

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/taskintel/taskintel/constants"
	"github.com/taskintel/taskintel/internal/common"
	"github.com/taskintel/taskintel/internal/entity"
)

// nowFunc is swapped in tests for a fixed clock.
var nowFunc = time.Now

// Wire shapes keep a present/absent distinction via pointers; defaults are
// resolved once here, not scattered through business logic.
type wireTask struct {
	Title          string  `json:"title"`
	Description    *string `json:"description"`
	Status         *string `json:"status"`
	Priority       *string `json:"priority"`
	Owner          *string `json:"owner"`
	Deadline       *string `json:"deadline"`
	SourceEvidence *string `json:"source_evidence"`
}

type wireResult struct {
	ProjectName *string    `json:"project_name"`
	MeetingDate *string    `json:"meeting_date"`
	Summary     string     `json:"summary"`
	Tasks       []wireTask `json:"tasks"`
}

// BindExtractionResult transforms raw producer text into either a
// guaranteed-valid ExtractionResult or a classified failure:
//
//  1. Parse failure  -> MalformedOutputError carrying the original raw text.
//  2. Contract breach -> SchemaViolationError carrying the violated field paths.
//  3. Success -> fully bound result; defaults injected, created_at stamped.
//
// There is no partial recovery: a violation is evidence the producer did not
// honor the contract and must be surfaced, not patched.
func BindExtractionResult(raw []byte) (entity.ExtractionResult, error) {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return entity.ExtractionResult{}, &common.MalformedOutputError{Raw: string(raw), Cause: err}
	}

	schema := BuildExtractionJSONSchema()
	if err := ValidateJSONAgainstSchema(schema, raw); err != nil {
		return entity.ExtractionResult{}, &common.SchemaViolationError{
			Violations: Violations(err),
			Raw:        string(raw),
		}
	}

	var w wireResult
	if err := json.Unmarshal(raw, &w); err != nil {
		// Shape already passed the schema; a decode failure here is still a contract breach.
		return entity.ExtractionResult{}, &common.SchemaViolationError{
			Violations: []string{"/: " + err.Error()},
			Raw:        string(raw),
		}
	}

	now := nowFunc().UTC().Format(time.RFC3339)
	out := entity.ExtractionResult{
		ProjectName: normalizeOptional(w.ProjectName),
		MeetingDate: normalizeOptional(w.MeetingDate),
		Summary:     strings.TrimSpace(w.Summary),
		Tasks:       make([]entity.TaskItem, 0, len(w.Tasks)),
	}
	for _, t := range w.Tasks {
		out.Tasks = append(out.Tasks, bindTask(t, now))
	}
	return out, nil
}

func bindTask(t wireTask, now string) entity.TaskItem {
	item := entity.TaskItem{
		Title: strings.TrimSpace(t.Title),
		// Extraction never observes completion: a validated status outside
		// 'pending' is model bias, not ground truth, so it is not copied.
		Status:         constants.DefaultStatus,
		Priority:       constants.DefaultPriority,
		Owner:          entity.DefaultOwner,
		Deadline:       normalizeOptional(t.Deadline),
		SourceEvidence: normalizeOptional(t.SourceEvidence),
		CreatedAt:      now,
	}
	if t.Description != nil {
		item.Description = strings.TrimSpace(*t.Description)
	}
	if t.Priority != nil {
		if p, ok := constants.CanonicalizePriority(*t.Priority); ok {
			item.Priority = p
		}
	}
	if t.Owner != nil && strings.TrimSpace(*t.Owner) != "" {
		item.Owner = strings.TrimSpace(*t.Owner)
	}
	return item
}

// normalizeOptional folds empty and whitespace-only strings into absence.
func normalizeOptional(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
