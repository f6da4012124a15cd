package view

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"choreboard/internal/model"
)

type partialCall struct {
	id    int
	field Field
	value FieldValue
}

type batchCall struct {
	op  BatchOp
	ids []int
}

type fakeRemote struct {
	partialErr error
	fullErr    error
	reorderErr error
	batchErr   error

	partials []partialCall
	fulls    []model.Task
	reorders [][]int
	batches  []batchCall
}

func (f *fakeRemote) PartialUpdate(ctx context.Context, id int, field Field, value FieldValue) error {
	f.partials = append(f.partials, partialCall{id: id, field: field, value: value})
	return f.partialErr
}

func (f *fakeRemote) FullUpdate(ctx context.Context, t model.Task) error {
	f.fulls = append(f.fulls, t)
	return f.fullErr
}

func (f *fakeRemote) NotifyReorder(ctx context.Context, ids []int) error {
	f.reorders = append(f.reorders, ids)
	return f.reorderErr
}

func (f *fakeRemote) RunBatch(ctx context.Context, op BatchOp, ids []int) error {
	f.batches = append(f.batches, batchCall{op: op, ids: ids})
	return f.batchErr
}

type fixedClock struct {
	t time.Time
}

func (c fixedClock) Now() time.Time { return c.t }

var engineNow = time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)

func engineTasks() []model.Task {
	d1 := engineNow.AddDate(0, 0, 1)
	d2 := engineNow.AddDate(0, 0, 5)
	return []model.Task{
		{ID: 3, Title: "Clean kitchen", Status: model.StatusInProgress, Priority: model.PriorityHigh, DueDate: &d1, Points: 30},
		{ID: 5, Title: "Buy groceries", Status: model.StatusNotStarted, Priority: model.PriorityLow, DueDate: &d2, Points: 10, Tags: []model.Tag{{Name: "kitchen"}}},
		{ID: 7, Title: "Mow lawn", Status: model.StatusPending, Priority: model.PriorityMedium, Points: 20},
		{ID: 9, Title: "Fold laundry", Status: model.StatusNotStarted, Priority: model.PriorityUrgent, Points: 5},
		{ID: 11, Title: "Take out trash", Status: model.StatusNotStarted, Priority: model.PriorityLow, Points: 5},
	}
}

func newTestEngine(t *testing.T) (*Engine, *fakeRemote, *[]Notice, *int) {
	t.Helper()
	remote := &fakeRemote{}
	notices := &[]Notice{}
	refreshes := new(int)

	eng := New(Options{
		Remote:   remote,
		Refresh:  func() { *refreshes++ },
		Notify:   func(n Notice) { *notices = append(*notices, n) },
		Clock:    fixedClock{t: engineNow},
		PageSize: 10,
	})
	eng.SetTasks(engineTasks())
	return eng, remote, notices, refreshes
}

func TestEngine_VisiblePipeline(t *testing.T) {
	eng, _, _, _ := newTestEngine(t)

	eng.SetSearch("kitchen")
	eng.SetSort(FieldPoints, Ascending)

	v := eng.Visible()

	require.Len(t, v.Items, 2)
	assert.Equal(t, 5, v.Items[0].ID) // 10 points
	assert.Equal(t, 3, v.Items[1].ID) // 30 points
	assert.Equal(t, 1, v.TotalPages)
	assert.Equal(t, 2, v.Total)
}

func TestEngine_PageClampAfterPageSizeChange(t *testing.T) {
	eng, _, _, _ := newTestEngine(t)
	eng.SetPageSize(2)
	eng.SetPage(3)

	v := eng.Visible()
	assert.Equal(t, 3, v.Page)

	eng.SetPageSize(10)
	v = eng.Visible()

	assert.Equal(t, 1, v.Page)
	assert.Len(t, v.Items, 5)
}

func TestEngine_PageClampAfterFilterShrink(t *testing.T) {
	eng, _, _, _ := newTestEngine(t)
	eng.SetPageSize(2)
	eng.SetPage(3)
	require.Equal(t, 3, eng.Visible().Page)

	eng.SetSearch("kitchen")
	v := eng.Visible()

	assert.Equal(t, 1, v.Page)
	assert.Len(t, v.Items, 2)
}

func TestEngine_CommitEditIsOptimistic(t *testing.T) {
	eng, remote, _, refreshes := newTestEngine(t)
	remote.partialErr = errors.New("network down")

	_ = eng.CommitEdit(context.Background(), 3, FieldTitle, Text("Scrub kitchen"))

	// local record updated even though the remote call failed
	got, ok := eng.Task(3)
	require.True(t, ok)
	assert.Equal(t, "Scrub kitchen", got.Title)
	assert.Equal(t, 0, *refreshes)
}

func TestEngine_CommitEditPrimaryPath(t *testing.T) {
	eng, remote, notices, refreshes := newTestEngine(t)

	err := eng.CommitEdit(context.Background(), 3, FieldPoints, Number(50))

	require.NoError(t, err)
	require.Len(t, remote.partials, 1)
	assert.Equal(t, 3, remote.partials[0].id)
	assert.Equal(t, FieldPoints, remote.partials[0].field)
	assert.Empty(t, remote.fulls)
	assert.Empty(t, *notices)
	assert.Equal(t, 1, *refreshes)
}

func TestEngine_CommitEditFallsBackOnUnsupported(t *testing.T) {
	eng, remote, notices, refreshes := newTestEngine(t)
	remote.partialErr = ErrPatchUnsupported

	before, _ := eng.Task(3)
	err := eng.CommitEdit(context.Background(), 3, FieldTitle, Text("Scrub kitchen"))

	require.NoError(t, err)
	require.Len(t, remote.fulls, 1)

	// the full record is the last known state plus the one new value
	want := before
	want.Title = "Scrub kitchen"
	assert.Equal(t, want, remote.fulls[0])
	assert.Empty(t, *notices)
	assert.Equal(t, 1, *refreshes)
}

func TestEngine_CommitEditTotalFailureKeepsLocalState(t *testing.T) {
	eng, remote, notices, refreshes := newTestEngine(t)
	remote.partialErr = ErrPatchUnsupported
	remote.fullErr = errors.New("boom")

	err := eng.CommitEdit(context.Background(), 3, FieldTitle, Text("Scrub kitchen"))

	require.Error(t, err)
	got, _ := eng.Task(3)
	assert.Equal(t, "Scrub kitchen", got.Title) // no rollback
	require.Len(t, *notices, 1)
	assert.Equal(t, NoticeError, (*notices)[0].Level)
	assert.Equal(t, 0, *refreshes)
}

func TestEngine_StatusCompletedCascadesTimestamp(t *testing.T) {
	eng, _, _, _ := newTestEngine(t)

	err := eng.CommitEdit(context.Background(), 3, FieldStatus, StatusOf(model.StatusCompleted))
	require.NoError(t, err)

	got, _ := eng.Task(3)
	assert.True(t, got.Completed)
	require.NotNil(t, got.CompletedAt)
	assert.Equal(t, engineNow, *got.CompletedAt)
}

func TestEngine_StatusReopenClearsCompleted(t *testing.T) {
	eng, _, _, _ := newTestEngine(t)
	require.NoError(t, eng.CommitEdit(context.Background(), 3, FieldStatus, StatusOf(model.StatusCompleted)))

	require.NoError(t, eng.CommitEdit(context.Background(), 3, FieldStatus, StatusOf(model.StatusInProgress)))

	got, _ := eng.Task(3)
	assert.False(t, got.Completed)
}

func TestEngine_SingleEditSlot(t *testing.T) {
	eng, _, _, _ := newTestEngine(t)

	require.True(t, eng.StartEdit(3, FieldTitle, Text("Clean kitchen")))

	// a different (task, field) pair is rejected while the slot is open
	assert.False(t, eng.StartEdit(5, FieldTitle, Text("Buy groceries")))
	assert.False(t, eng.StartEdit(3, FieldPoints, Number(30)))

	// re-opening the same pair is allowed
	assert.True(t, eng.StartEdit(3, FieldTitle, Text("Clean the kitchen")))

	eng.CancelEdit()
	assert.True(t, eng.StartEdit(5, FieldTitle, Text("Buy groceries")))
}

func TestEngine_CancelEditLeavesRecordAlone(t *testing.T) {
	eng, remote, _, _ := newTestEngine(t)

	eng.StartEdit(3, FieldTitle, Text("something else"))
	eng.CancelEdit()

	got, _ := eng.Task(3)
	assert.Equal(t, "Clean kitchen", got.Title)
	assert.Empty(t, remote.partials)
	assert.False(t, eng.EditOpen())
}

func TestEngine_DragMoveActivatesManualMode(t *testing.T) {
	eng, remote, _, _ := newTestEngine(t)

	eng.BeginDrag(3)
	eng.CompleteDrag(context.Background(), 3, 9)

	assert.True(t, eng.ManualActive())
	v := eng.Visible()
	assert.Equal(t, []int{5, 7, 9, 3, 11}, ids(v.Items))

	require.Len(t, remote.reorders, 1)
	assert.Equal(t, []int{5, 7, 9, 3, 11}, remote.reorders[0])
}

func TestEngine_ManualModeSuspendsSorting(t *testing.T) {
	eng, _, _, _ := newTestEngine(t)
	eng.BeginDrag(3)
	eng.CompleteDrag(context.Background(), 3, 9)

	eng.SetSort(FieldPoints, Descending)
	v := eng.Visible()

	assert.Equal(t, []int{5, 7, 9, 3, 11}, ids(v.Items))
}

func TestEngine_ManualModeStillFilters(t *testing.T) {
	eng, _, _, _ := newTestEngine(t)
	eng.BeginDrag(3)
	eng.CompleteDrag(context.Background(), 3, 9)

	eng.SetSearch("kitchen")
	v := eng.Visible()

	assert.Equal(t, []int{5, 3}, ids(v.Items))
}

func TestEngine_ReorderFailureKeepsLocalOrder(t *testing.T) {
	eng, remote, notices, _ := newTestEngine(t)
	remote.reorderErr = errors.New("offline")

	eng.BeginDrag(3)
	eng.CompleteDrag(context.Background(), 3, 9)

	assert.True(t, eng.ManualActive())
	assert.Equal(t, []int{5, 7, 9, 3, 11}, ids(eng.Visible().Items))
	require.Len(t, *notices, 1)
	assert.Equal(t, NoticeWarn, (*notices)[0].Level)
}

func TestEngine_DragCancelsOpenEdit(t *testing.T) {
	eng, _, _, _ := newTestEngine(t)
	eng.StartEdit(3, FieldTitle, Text("x"))

	eng.BeginDrag(5)

	assert.False(t, eng.EditOpen())
}

func TestEngine_DragOverSelfIsNoOp(t *testing.T) {
	eng, remote, _, _ := newTestEngine(t)

	eng.BeginDrag(3)
	eng.CompleteDrag(context.Background(), 3, 3)

	assert.False(t, eng.ManualActive())
	assert.Empty(t, remote.reorders)
}

func TestEngine_IdentityChangeResetsManualOrder(t *testing.T) {
	eng, _, _, _ := newTestEngine(t)
	eng.BeginDrag(3)
	eng.CompleteDrag(context.Background(), 3, 9)
	require.True(t, eng.ManualActive())

	// a task disappeared upstream: new identity set, manual order gone
	eng.SetTasks(engineTasks()[:4])

	assert.False(t, eng.ManualActive())
}

func TestEngine_AttributeChangeKeepsManualOrder(t *testing.T) {
	eng, _, _, _ := newTestEngine(t)
	eng.BeginDrag(3)
	eng.CompleteDrag(context.Background(), 3, 9)

	refreshed := engineTasks()
	due := engineNow.AddDate(0, 0, 9)
	refreshed[0].DueDate = &due
	refreshed[2].Points = 99
	eng.SetTasks(refreshed)

	assert.True(t, eng.ManualActive())
	assert.Equal(t, []int{5, 7, 9, 3, 11}, ids(eng.Visible().Items))
}

func TestEngine_SelectionSurvivesFilterChange(t *testing.T) {
	eng, _, _, _ := newTestEngine(t)

	eng.ToggleSelect(3)
	eng.ToggleSelect(5)

	// task 3 no longer matches, selection is untouched
	eng.SetSearch("groceries")
	_ = eng.Visible()

	assert.Equal(t, []int{3, 5}, eng.SelectedIDs())
}

func TestEngine_SelectAllVisible(t *testing.T) {
	eng, _, _, _ := newTestEngine(t)
	eng.SetSearch("kitchen")

	eng.SelectAllVisible()

	assert.Equal(t, []int{3, 5}, eng.SelectedIDs())
}

func TestEngine_RunBatchClearsSelectionUnconditionally(t *testing.T) {
	eng, remote, notices, _ := newTestEngine(t)
	remote.batchErr = errors.New("partial outage")
	eng.ToggleSelect(3)
	eng.ToggleSelect(5)

	err := eng.RunBatch(context.Background(), BatchComplete)

	require.Error(t, err)
	assert.Empty(t, eng.SelectedIDs())
	require.Len(t, remote.batches, 1)
	assert.Equal(t, []int{3, 5}, remote.batches[0].ids)
	require.Len(t, *notices, 1)
}

func TestEngine_RunBatchEmptySelectionRejected(t *testing.T) {
	eng, remote, _, refreshes := newTestEngine(t)

	err := eng.RunBatch(context.Background(), BatchDelete)

	require.NoError(t, err)
	assert.Empty(t, remote.batches)
	assert.Equal(t, 0, *refreshes)
}

func TestEngine_RunBatchSuccessTriggersRefresh(t *testing.T) {
	eng, remote, _, refreshes := newTestEngine(t)
	eng.ToggleSelect(7)

	err := eng.RunBatch(context.Background(), BatchComplete)

	require.NoError(t, err)
	assert.Equal(t, BatchComplete, remote.batches[0].op)
	assert.Equal(t, 1, *refreshes)
}

func TestEngine_FamilyNameUsesCache(t *testing.T) {
	names := NewCache(time.Minute, 10, fixedClock{t: engineNow}.Now)
	eng := New(Options{Clock: fixedClock{t: engineNow}, Names: names})
	eng.SetFamilies([]model.Family{{ID: 9, Name: "The Parkers"}})

	fid := 9
	tasks := engineTasks()
	tasks[0].FamilyID = &fid
	eng.SetTasks(tasks)

	eng.SetRules([]Rule{NewRule(FieldFamily, OpEquals, "The Parkers", "")})
	v := eng.Visible()

	require.Len(t, v.Items, 1)
	assert.Equal(t, 3, v.Items[0].ID)
	// resolution populated the cache
	name, ok := names.Get(9)
	assert.True(t, ok)
	assert.Equal(t, "The Parkers", name)
}
