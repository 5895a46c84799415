package entity

import (
	"github.com/taskintel/taskintel/constants"
)

// DefaultOwner is stored when the document names no responsible person.
// A concrete label is a safer downstream default than null.
const DefaultOwner = "Unassigned"

// TaskItem represents a single actionable unit of work extracted from a document.
type TaskItem struct {
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Status      constants.TaskStatus `json:"status"`
	Priority    constants.Priority   `json:"priority"`
	Owner       string               `json:"owner"`
	// Deadline is an absolute YYYY-MM-DD date, or nil when the document gives none.
	// Relative expressions are resolved by the producer before this is populated.
	Deadline *string `json:"deadline"`
	// SourceEvidence is the verbatim quote that substantiates the task.
	// Downstream relies on it being a near-exact substring of the source document.
	SourceEvidence *string `json:"source_evidence"`
	// CreatedAt is stamped once at bind time (RFC 3339). Never producer-supplied.
	CreatedAt string `json:"created_at"`
}

// ExtractionResult is the strict structure we force the model to return.
// Task order is extraction order.
type ExtractionResult struct {
	ProjectName *string    `json:"project_name"`
	MeetingDate *string    `json:"meeting_date"`
	Summary     string     `json:"summary"`
	Tasks       []TaskItem `json:"tasks"`
}
