package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/taskintel/taskintel/internal/entity"
)

// CommitRepository persists GitHub commit events for later correlation.
type CommitRepository struct {
	db *sql.DB
}

func NewCommitRepository(db *sql.DB) *CommitRepository {
	return &CommitRepository{db: db}
}

// Save upserts a commit event keyed by commit_hash, so webhook redeliveries
// are idempotent. The derived embedding text is stored alongside the event.
func (r *CommitRepository) Save(ctx context.Context, c entity.GitHubCommit) error {
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO commits (commit_hash, author, message, timestamp, branch, embedding_text, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(commit_hash) DO UPDATE SET
            author = excluded.author,
            message = excluded.message,
            timestamp = excluded.timestamp,
            branch = excluded.branch,
            embedding_text = excluded.embedding_text`,
		c.CommitHash, c.Author, c.Message, c.Timestamp, c.Branch, c.EmbeddingText(),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("save commit: %w", err)
	}
	return nil
}

// List returns the most recent commit events, newest first.
func (r *CommitRepository) List(ctx context.Context, limit int) ([]entity.GitHubCommit, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.QueryContext(ctx, `
        SELECT commit_hash, author, message, timestamp, branch
        FROM commits ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list commits: %w", err)
	}
	defer rows.Close()

	out := make([]entity.GitHubCommit, 0, limit)
	for rows.Next() {
		var c entity.GitHubCommit
		if err := rows.Scan(&c.CommitHash, &c.Author, &c.Message, &c.Timestamp, &c.Branch); err != nil {
			return nil, fmt.Errorf("scan commit: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
