package constants

import (
	"strings"
)

// TaskStatus is the canonical workflow state for an extracted task.
type TaskStatus string

// Stable values (store these exact strings in DB and on the wire).
const (
	StatusPending    TaskStatus = "pending"     // newly extracted, not started
	StatusInProgress TaskStatus = "in-progress" // someone is working on it
	StatusCompleted  TaskStatus = "completed"   // terminal
)

var allStatuses = []TaskStatus{
	StatusPending,
	StatusInProgress,
	StatusCompleted,
}

// DefaultStatus is what extraction always produces: extraction never observes
// completion, so a freshly ingested task is pending no matter what the model claims.
const DefaultStatus = StatusPending

func StatusStrings() []string {
	result := make([]string, len(allStatuses))
	for i, s := range allStatuses {
		result[i] = string(s)
	}
	return result
}

// CanonicalizeStatus maps a free-form label onto a canonical status.
// Returns false when the label is not part of the enumeration.
func CanonicalizeStatus(input string) (TaskStatus, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return DefaultStatus, false
	}

	synonyms := map[string]TaskStatus{
		"todo":       StatusPending,
		"open":       StatusPending,
		"wip":        StatusInProgress,
		"inprogress": StatusInProgress,
		"done":       StatusCompleted,
		"closed":     StatusCompleted,
	}
	if s, ok := synonyms[normalized]; ok {
		return s, true
	}

	for _, s := range allStatuses {
		if normalized == string(s) {
			return s, true
		}
	}
	return DefaultStatus, false
}

// IsValidStatus reports exact enumeration membership, no synonym mapping.
func IsValidStatus(input string) bool {
	for _, s := range allStatuses {
		if input == string(s) {
			return true
		}
	}
	return false
}
