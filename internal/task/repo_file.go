package task

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"choreboard/internal/model"
	"choreboard/internal/view"
)

type fileState struct {
	NextID int                `json:"nextId"`
	Tasks  map[int]model.Task `json:"tasks"`
	Order  []int              `json:"order"`
}

func newFileState() fileState {
	return fileState{Tasks: map[int]model.Task{}}
}

// FileRepo is a whole-document JSON store. It predates targeted patches
// and only replaces complete records, so Patch reports
// view.ErrPatchUnsupported and callers fall back to Update.
type FileRepo struct {
	mu   sync.Mutex
	path string
	s    fileState
}

func NewFileRepo(dataDir string) (*FileRepo, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}
	r := &FileRepo{
		path: filepath.Join(dataDir, "tasks.json"),
		s:    newFileState(),
	}
	if err := r.load(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *FileRepo) load() error {
	b, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	var loaded fileState
	if err := json.Unmarshal(b, &loaded); err != nil {
		return err
	}
	if loaded.Tasks == nil {
		loaded.Tasks = map[int]model.Task{}
	}
	r.s = loaded
	return nil
}

func (r *FileRepo) saveLocked() error {
	b, err := json.MarshalIndent(r.s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(r.path, b, 0o644)
}

func (r *FileRepo) Create(ctx context.Context, t model.Task) (model.Task, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	r.s.NextID++
	t.ID = r.s.NextID
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	if t.Status == "" {
		t.Status = model.StatusNotStarted
	}
	r.s.Tasks[t.ID] = t
	r.s.Order = append(r.s.Order, t.ID)
	if err := r.saveLocked(); err != nil {
		return model.Task{}, err
	}
	return t, nil
}

func (r *FileRepo) Get(ctx context.Context, id int) (model.Task, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.s.Tasks[id]
	if !ok {
		return model.Task{}, ErrNotFound
	}
	return t, nil
}

func (r *FileRepo) List(ctx context.Context) ([]model.Task, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]model.Task, 0, len(r.s.Tasks))
	for _, id := range r.s.Order {
		if t, ok := r.s.Tasks[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *FileRepo) Patch(ctx context.Context, id int, p Patch) (model.Task, error) {
	_ = ctx
	return model.Task{}, view.ErrPatchUnsupported
}

func (r *FileRepo) Update(ctx context.Context, t model.Task) (model.Task, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.s.Tasks[t.ID]; !ok {
		return model.Task{}, ErrNotFound
	}
	r.s.Tasks[t.ID] = t
	if err := r.saveLocked(); err != nil {
		return model.Task{}, err
	}
	return t, nil
}

func (r *FileRepo) Delete(ctx context.Context, id int) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.s.Tasks[id]; !ok {
		return ErrNotFound
	}
	delete(r.s.Tasks, id)
	out := r.s.Order[:0]
	for _, oid := range r.s.Order {
		if oid != id {
			out = append(out, oid)
		}
	}
	r.s.Order = out
	return r.saveLocked()
}

func (r *FileRepo) Reorder(ctx context.Context, ids []int) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[int]bool, len(ids))
	out := make([]int, 0, len(r.s.Order))
	for _, id := range ids {
		if _, ok := r.s.Tasks[id]; ok && !seen[id] {
			out = append(out, id)
			seen[id] = true
		}
	}
	for _, id := range r.s.Order {
		if !seen[id] {
			out = append(out, id)
		}
	}
	r.s.Order = out
	return r.saveLocked()
}
