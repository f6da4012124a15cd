package task

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"choreboard/internal/model"
)

func openTestSQLite(t *testing.T) *SQLiteRepo {
	t.Helper()
	repo, err := OpenSQLiteRepo(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestSQLiteRepo_CreateGetRoundTrip(t *testing.T) {
	repo := openTestSQLite(t)
	ctx := context.Background()

	due := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	assignee := 4
	created, err := repo.Create(ctx, model.Task{
		Title:      "Clean kitchen",
		Status:     model.StatusInProgress,
		Priority:   model.PriorityHigh,
		DueDate:    &due,
		AssignedTo: &assignee,
		Points:     30,
		Tags:       []model.Tag{{Name: "chores"}},
	})
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	got, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Clean kitchen", got.Title)
	assert.Equal(t, model.PriorityHigh, got.Priority)
	require.NotNil(t, got.DueDate)
	assert.True(t, due.Equal(*got.DueDate))
	require.NotNil(t, got.AssignedTo)
	assert.Equal(t, 4, *got.AssignedTo)
	require.Len(t, got.Tags, 1)
	assert.Equal(t, "chores", got.Tags[0].Name)
}

func TestSQLiteRepo_PatchTargetsSingleColumn(t *testing.T) {
	repo := openTestSQLite(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, model.Task{Title: "x", Points: 10})
	require.NoError(t, err)

	points := 99
	got, err := repo.Patch(ctx, created.ID, Patch{Points: &points})
	require.NoError(t, err)
	assert.Equal(t, 99, got.Points)
	assert.Equal(t, "x", got.Title)
}

func TestSQLiteRepo_PatchStatusCompletedStampsTime(t *testing.T) {
	repo := openTestSQLite(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, model.Task{Title: "x"})
	require.NoError(t, err)

	status := model.StatusCompleted
	got, err := repo.Patch(ctx, created.ID, Patch{Status: &status})
	require.NoError(t, err)
	assert.True(t, got.Completed)
	assert.NotNil(t, got.CompletedAt)
}

func TestSQLiteRepo_PatchUnknownTask(t *testing.T) {
	repo := openTestSQLite(t)

	points := 1
	_, err := repo.Patch(context.Background(), 999, Patch{Points: &points})

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteRepo_ReorderControlsListOrder(t *testing.T) {
	repo := openTestSQLite(t)
	ctx := context.Background()

	var ids []int
	for _, title := range []string{"a", "b", "c"} {
		created, err := repo.Create(ctx, model.Task{Title: title})
		require.NoError(t, err)
		ids = append(ids, created.ID)
	}

	require.NoError(t, repo.Reorder(ctx, []int{ids[2], ids[0], ids[1]}))

	ts, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, ts, 3)
	assert.Equal(t, "c", ts[0].Title)
	assert.Equal(t, "a", ts[1].Title)
	assert.Equal(t, "b", ts[2].Title)
}

func TestSQLiteRepo_Delete(t *testing.T) {
	repo := openTestSQLite(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, model.Task{Title: "x"})
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, created.ID))
	_, err = repo.Get(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, created.ID), ErrNotFound)
}
