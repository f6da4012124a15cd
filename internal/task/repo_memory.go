package task

import (
	"context"
	"sync"
	"time"

	"choreboard/internal/model"
)

// MemoryRepo keeps tasks in a map plus an explicit display-order slice so
// List is deterministic and reorders persist.
type MemoryRepo struct {
	mu     sync.RWMutex
	tasks  map[int]model.Task
	order  []int
	nextID int
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{tasks: map[int]model.Task{}}
}

func (r *MemoryRepo) Create(ctx context.Context, t model.Task) (model.Task, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	t.ID = r.nextID
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	if t.Status == "" {
		t.Status = model.StatusNotStarted
	}

	r.tasks[t.ID] = t
	r.order = append(r.order, t.ID)
	return t, nil
}

func (r *MemoryRepo) Get(ctx context.Context, id int) (model.Task, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tasks[id]
	if !ok {
		return model.Task{}, ErrNotFound
	}
	return t, nil
}

func (r *MemoryRepo) List(ctx context.Context) ([]model.Task, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Task, 0, len(r.tasks))
	for _, id := range r.order {
		if t, ok := r.tasks[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *MemoryRepo) Patch(ctx context.Context, id int, p Patch) (model.Task, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tasks[id]
	if !ok {
		return model.Task{}, ErrNotFound
	}
	if err := applyPatch(&t, p, time.Now()); err != nil {
		return model.Task{}, err
	}
	r.tasks[id] = t
	return t, nil
}

func (r *MemoryRepo) Update(ctx context.Context, t model.Task) (model.Task, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[t.ID]; !ok {
		return model.Task{}, ErrNotFound
	}
	r.tasks[t.ID] = t
	return t, nil
}

func (r *MemoryRepo) Delete(ctx context.Context, id int) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[id]; !ok {
		return ErrNotFound
	}
	delete(r.tasks, id)
	out := r.order[:0]
	for _, oid := range r.order {
		if oid != id {
			out = append(out, oid)
		}
	}
	r.order = out
	return nil
}

// Reorder replaces the display order. Ids that don't exist are skipped;
// existing tasks missing from ids keep their old relative order at the end.
func (r *MemoryRepo) Reorder(ctx context.Context, ids []int) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[int]bool, len(ids))
	out := make([]int, 0, len(r.order))
	for _, id := range ids {
		if _, ok := r.tasks[id]; ok && !seen[id] {
			out = append(out, id)
			seen[id] = true
		}
	}
	for _, id := range r.order {
		if !seen[id] {
			out = append(out, id)
		}
	}
	r.order = out
	return nil
}
