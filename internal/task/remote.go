package task

import (
	"context"
	"fmt"
	"time"

	"choreboard/internal/model"
	"choreboard/internal/view"
)

// RemoteRepo adapts a Repo to the view engine's persistence boundary.
// Stores that cannot patch (FileRepo) surface view.ErrPatchUnsupported
// through PartialUpdate, which is exactly the signal the engine's
// fallback path keys on.
type RemoteRepo struct {
	repo Repo
}

func NewRemoteRepo(repo Repo) *RemoteRepo {
	return &RemoteRepo{repo: repo}
}

func (r *RemoteRepo) PartialUpdate(ctx context.Context, id int, field view.Field, value view.FieldValue) error {
	p, err := patchForField(field, value)
	if err != nil {
		return err
	}
	_, err = r.repo.Patch(ctx, id, p)
	return err
}

func (r *RemoteRepo) FullUpdate(ctx context.Context, t model.Task) error {
	_, err := r.repo.Update(ctx, t)
	return err
}

func (r *RemoteRepo) NotifyReorder(ctx context.Context, ids []int) error {
	return r.repo.Reorder(ctx, ids)
}

// RunBatch applies the operation per item through Get/Update so it works
// against every store, patchable or not. Per-item errors abort the batch;
// the engine treats the send as best-effort either way.
func (r *RemoteRepo) RunBatch(ctx context.Context, op view.BatchOp, ids []int) error {
	switch op {
	case view.BatchComplete:
		now := time.Now()
		for _, id := range ids {
			t, err := r.repo.Get(ctx, id)
			if err != nil {
				return err
			}
			t.MarkCompleted(now)
			if _, err := r.repo.Update(ctx, t); err != nil {
				return err
			}
		}
		return nil
	case view.BatchDelete:
		for _, id := range ids {
			if err := r.repo.Delete(ctx, id); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown batch operation %q", op)
	}
}

func patchForField(field view.Field, v view.FieldValue) (Patch, error) {
	var p Patch
	switch field {
	case view.FieldTitle:
		s := v.Text()
		p.Title = &s
	case view.FieldDescription:
		s := v.Text()
		p.Description = &s
	case view.FieldStatus:
		status := v.Status()
		p.Status = &status
	case view.FieldPriority:
		priority := v.Priority()
		p.Priority = &priority
	case view.FieldDueDate:
		s := ""
		if !v.Time().IsZero() {
			s = v.Time().Format(time.RFC3339)
		}
		p.DueDate = &s
	case view.FieldCompleted:
		b := v.Bool()
		p.Completed = &b
	case view.FieldAssignedTo:
		id := int(v.Number())
		p.AssignedTo = &id
	case view.FieldPoints:
		n := int(v.Number())
		p.Points = &n
	default:
		return Patch{}, fmt.Errorf("field %q is not patchable", field)
	}
	return p, nil
}
