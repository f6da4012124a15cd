package view

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"choreboard/internal/model"
)

func nTasks(n int) []model.Task {
	out := make([]model.Task, n)
	for i := range out {
		out[i] = model.Task{ID: i + 1}
	}
	return out
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 1, TotalPages(0, 10))
	assert.Equal(t, 1, TotalPages(10, 10))
	assert.Equal(t, 2, TotalPages(11, 10))
	assert.Equal(t, 4, TotalPages(10, 3))
}

func TestPaginate_Slices(t *testing.T) {
	pg := Paginate(nTasks(25), 10, 2)

	assert.Equal(t, 3, pg.TotalPages)
	assert.Len(t, pg.Items, 10)
	assert.Equal(t, 11, pg.Items[0].ID)
	assert.Equal(t, 20, pg.Items[9].ID)
}

func TestPaginate_LastPagePartial(t *testing.T) {
	pg := Paginate(nTasks(25), 10, 3)

	assert.Len(t, pg.Items, 5)
	assert.Equal(t, 21, pg.Items[0].ID)
}

func TestPaginate_EmptyCollectionHasOnePage(t *testing.T) {
	pg := Paginate(nil, 10, 1)

	assert.Equal(t, 1, pg.TotalPages)
	assert.Empty(t, pg.Items)
}

func TestPaginate_ClampsOutOfRangePage(t *testing.T) {
	pg := Paginate(nTasks(5), 10, 7)

	assert.Equal(t, 1, pg.TotalPages)
	assert.Len(t, pg.Items, 5)
}

func TestClampPage(t *testing.T) {
	assert.Equal(t, 1, ClampPage(0, 3))
	assert.Equal(t, 1, ClampPage(-2, 3))
	assert.Equal(t, 2, ClampPage(2, 3))
	assert.Equal(t, 3, ClampPage(9, 3))
}
