package entity

import (
	"fmt"
)

// DefaultBranch applies when a commit event carries no branch.
const DefaultBranch = "main"

// GitHubCommit represents a code change event. Not produced by the extraction
// pipeline; ingested separately for later correlation of plans with execution.
type GitHubCommit struct {
	CommitHash string `json:"commit_hash"`
	Author     string `json:"author"`
	Message    string `json:"message"`
	Timestamp  string `json:"timestamp"` // ISO 8601
	Branch     string `json:"branch"`
}

// EmbeddingText formats the commit for the embedding model. Pure derivation,
// no side effects.
func (c GitHubCommit) EmbeddingText() string {
	return fmt.Sprintf("Commit by %s: %s", c.Author, c.Message)
}
