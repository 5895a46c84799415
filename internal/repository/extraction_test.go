package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/taskintel/taskintel/constants"
	"github.com/taskintel/taskintel/internal/entity"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := InitDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleResult() entity.ExtractionResult {
	project := "Apollo"
	deadline := "2025-01-17"
	evidence := "Alice will update the API schema by Friday Jan 17."
	now := time.Now().UTC().Format(time.RFC3339)

	return entity.ExtractionResult{
		ProjectName: &project,
		Summary:     "Schema update planned.",
		Tasks: []entity.TaskItem{
			{
				Title:          "Update API schema",
				Status:         constants.StatusPending,
				Priority:       constants.PriorityHigh,
				Owner:          "Alice",
				Deadline:       &deadline,
				SourceEvidence: &evidence,
				CreatedAt:      now,
			},
			{
				Title:     "Write migration guide",
				Status:    constants.StatusPending,
				Priority:  constants.PriorityMedium,
				Owner:     entity.DefaultOwner,
				CreatedAt: now,
			},
		},
	}
}

func TestSaveAndGetExtraction(t *testing.T) {
	repo := NewExtractionRepository(testDB(t))
	ctx := context.Background()

	res := sampleResult()
	raw := []byte(`{"summary": "Schema update planned."}`)

	id, err := repo.SaveExtraction(ctx, res, raw, true)
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, id)

	stored, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, id, stored.ID)
	require.True(t, stored.NeedsReview)
	require.Equal(t, raw, stored.RawJSON)
	require.Equal(t, "Apollo", *stored.Result.ProjectName)
	require.Nil(t, stored.Result.MeetingDate)
	require.Equal(t, res.Summary, stored.Result.Summary)

	// task order is extraction order
	require.Len(t, stored.Result.Tasks, 2)
	require.Equal(t, "Update API schema", stored.Result.Tasks[0].Title)
	require.Equal(t, "Write migration guide", stored.Result.Tasks[1].Title)
	require.Equal(t, res.Tasks[0], stored.Result.Tasks[0])
	require.Equal(t, res.Tasks[1], stored.Result.Tasks[1])
}

func TestGetByIDUnknown(t *testing.T) {
	repo := NewExtractionRepository(testDB(t))

	_, err := repo.GetByID(context.Background(), uuid.New())
	require.ErrorIs(t, err, sql.ErrNoRows)
}

func TestListExtractions(t *testing.T) {
	repo := NewExtractionRepository(testDB(t))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := repo.SaveExtraction(ctx, sampleResult(), nil, false)
		require.NoError(t, err)
	}

	list, err := repo.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, se := range list {
		require.Equal(t, "Schema update planned.", se.Result.Summary)
		require.Empty(t, se.Result.Tasks, "List returns summaries without tasks")
	}
}
