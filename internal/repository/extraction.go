package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/taskintel/taskintel/constants"
	"github.com/taskintel/taskintel/internal/entity"
)

// StoredExtraction is one persisted extraction with its ordered tasks.
type StoredExtraction struct {
	ID          uuid.UUID               `json:"id"`
	Result      entity.ExtractionResult `json:"result"`
	NeedsReview bool                    `json:"needs_review"`
	RawJSON     []byte                  `json:"-"`
	CreatedAt   time.Time               `json:"created_at"`
}

// ExtractionRepository persists extraction results and their tasks.
type ExtractionRepository struct {
	db *sql.DB
}

func NewExtractionRepository(db *sql.DB) *ExtractionRepository {
	return &ExtractionRepository{db: db}
}

// SaveExtraction stores the result row plus one task row per extracted task,
// preserving extraction order. The raw producer JSON is retained for diagnosis.
func (r *ExtractionRepository) SaveExtraction(ctx context.Context, res entity.ExtractionResult, rawJSON []byte, needsReview bool) (uuid.UUID, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return uuid.Nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	id := uuid.New()
	createdAt := time.Now().UTC().Format(time.RFC3339)

	_, err = tx.ExecContext(ctx, `
        INSERT INTO extractions (id, project_name, meeting_date, summary, raw_json, needs_review, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id.String(), res.ProjectName, res.MeetingDate, res.Summary, rawJSON, boolToInt(needsReview), createdAt,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert extraction: %w", err)
	}

	for i, t := range res.Tasks {
		_, err = tx.ExecContext(ctx, `
            INSERT INTO tasks (id, extraction_id, position, title, description, status, priority, owner, deadline, source_evidence, created_at)
            VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			uuid.New().String(), id.String(), i,
			t.Title, t.Description, string(t.Status), string(t.Priority), t.Owner,
			t.Deadline, t.SourceEvidence, t.CreatedAt,
		)
		if err != nil {
			return uuid.Nil, fmt.Errorf("insert task %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return uuid.Nil, fmt.Errorf("commit tx: %w", err)
	}
	return id, nil
}

// GetByID loads one extraction and its tasks in extraction order.
// Returns sql.ErrNoRows when the id is unknown.
func (r *ExtractionRepository) GetByID(ctx context.Context, id uuid.UUID) (*StoredExtraction, error) {
	var (
		se          StoredExtraction
		needsReview int
		createdAt   string
	)
	se.ID = id

	err := r.db.QueryRowContext(ctx, `
        SELECT project_name, meeting_date, summary, raw_json, needs_review, created_at
        FROM extractions WHERE id = ?`, id.String(),
	).Scan(&se.Result.ProjectName, &se.Result.MeetingDate, &se.Result.Summary, &se.RawJSON, &needsReview, &createdAt)
	if err != nil {
		return nil, err
	}
	se.NeedsReview = needsReview != 0
	se.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)

	tasks, err := r.tasksFor(ctx, id)
	if err != nil {
		return nil, err
	}
	se.Result.Tasks = tasks
	return &se, nil
}

// List returns the most recent extractions, newest first, without tasks.
func (r *ExtractionRepository) List(ctx context.Context, limit int) ([]StoredExtraction, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.QueryContext(ctx, `
        SELECT id, project_name, meeting_date, summary, needs_review, created_at
        FROM extractions ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list extractions: %w", err)
	}
	defer rows.Close()

	out := make([]StoredExtraction, 0, limit)
	for rows.Next() {
		var (
			se          StoredExtraction
			idStr       string
			needsReview int
			createdAt   string
		)
		if err := rows.Scan(&idStr, &se.Result.ProjectName, &se.Result.MeetingDate, &se.Result.Summary, &needsReview, &createdAt); err != nil {
			return nil, fmt.Errorf("scan extraction: %w", err)
		}
		se.ID, err = uuid.Parse(idStr)
		if err != nil {
			return nil, fmt.Errorf("parse extraction id %q: %w", idStr, err)
		}
		se.NeedsReview = needsReview != 0
		se.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		se.Result.Tasks = []entity.TaskItem{}
		out = append(out, se)
	}
	return out, rows.Err()
}

func (r *ExtractionRepository) tasksFor(ctx context.Context, extractionID uuid.UUID) ([]entity.TaskItem, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT title, description, status, priority, owner, deadline, source_evidence, created_at
        FROM tasks WHERE extraction_id = ? ORDER BY position`, extractionID.String())
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]entity.TaskItem, 0, 8)
	for rows.Next() {
		var (
			t        entity.TaskItem
			status   string
			priority string
		)
		if err := rows.Scan(&t.Title, &t.Description, &status, &priority, &t.Owner, &t.Deadline, &t.SourceEvidence, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		t.Status = constants.TaskStatus(status)
		t.Priority = constants.Priority(priority)
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
