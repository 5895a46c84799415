package constants

import (
	"strings"
)

// Priority is the urgency level inferred from the source text.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

var allPriorities = []Priority{
	PriorityHigh,
	PriorityMedium,
	PriorityLow,
}

// DefaultPriority applies when the producer omits the field.
const DefaultPriority = PriorityMedium

func PriorityStrings() []string {
	result := make([]string, len(allPriorities))
	for i, p := range allPriorities {
		result[i] = string(p)
	}
	return result
}

// CanonicalizePriority maps a free-form label onto a canonical priority.
// Returns false when the label is not part of the enumeration.
func CanonicalizePriority(input string) (Priority, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return DefaultPriority, false
	}

	synonyms := map[string]Priority{
		"urgent":   PriorityHigh,
		"critical": PriorityHigh,
		"p0":       PriorityHigh,
		"p1":       PriorityHigh,
		"normal":   PriorityMedium,
		"p2":       PriorityMedium,
		"minor":    PriorityLow,
		"p3":       PriorityLow,
	}
	if p, ok := synonyms[normalized]; ok {
		return p, true
	}

	for _, p := range allPriorities {
		if normalized == string(p) {
			return p, true
		}
	}
	return DefaultPriority, false
}

// IsValidPriority reports exact enumeration membership, no synonym mapping.
func IsValidPriority(input string) bool {
	for _, p := range allPriorities {
		if input == string(p) {
			return true
		}
	}
	return false
}
