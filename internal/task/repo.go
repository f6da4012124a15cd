package task

import (
	"context"
	"errors"
	"time"

	"choreboard/internal/model"
)

var ErrNotFound = errors.New("task not found")

// Patch is a partial update. nil pointer => "no change"; empty string for
// DueDate => clear; zero AssignedTo => unassign.
type Patch struct {
	Title       *string         `json:"title,omitempty"`
	Description *string         `json:"description,omitempty"`
	Completed   *bool           `json:"completed,omitempty"`
	Status      *model.Status   `json:"status,omitempty"`
	Priority    *model.Priority `json:"priority,omitempty"`
	DueDate     *string         `json:"dueDate,omitempty"`
	AssignedTo  *int            `json:"assignedTo,omitempty"`
	Points      *int            `json:"points,omitempty"`
	Tags        *[]model.Tag    `json:"tags,omitempty"`
}

// Repo is the authoritative task store. Patch implementations may return
// view.ErrPatchUnsupported when the store can only replace whole records;
// callers then fall back to Update.
type Repo interface {
	Create(ctx context.Context, t model.Task) (model.Task, error)
	Get(ctx context.Context, id int) (model.Task, error)
	List(ctx context.Context) ([]model.Task, error)
	Patch(ctx context.Context, id int, p Patch) (model.Task, error)
	Update(ctx context.Context, t model.Task) (model.Task, error)
	Delete(ctx context.Context, id int) error
	Reorder(ctx context.Context, ids []int) error
}

func applyPatch(t *model.Task, p Patch, now time.Time) error {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		status, ok := model.ParseStatus(string(*p.Status))
		if !ok {
			return errors.New("invalid status")
		}
		t.Status = status
		if status == model.StatusCompleted {
			t.MarkCompleted(now)
		} else {
			t.Completed = false
		}
	}
	if p.Completed != nil {
		if *p.Completed {
			t.MarkCompleted(now)
		} else {
			t.Completed = false
		}
	}
	if p.Priority != nil {
		priority, ok := model.ParsePriority(*p.Priority)
		if !ok {
			return errors.New("invalid priority")
		}
		t.Priority = priority
	}

	// pointer string field with "empty clears" semantics
	if p.DueDate != nil {
		if *p.DueDate == "" {
			t.DueDate = nil
		} else {
			due, err := time.Parse(time.RFC3339, *p.DueDate)
			if err != nil {
				return errors.New("invalid due date")
			}
			t.DueDate = &due
		}
	}
	if p.AssignedTo != nil {
		if *p.AssignedTo == 0 {
			t.AssignedTo = nil
		} else {
			t.AssignedTo = p.AssignedTo
		}
	}
	if p.Points != nil {
		t.Points = *p.Points
	}
	if p.Tags != nil {
		if *p.Tags == nil {
			t.Tags = []model.Tag{}
		} else {
			t.Tags = *p.Tags
		}
	}
	return nil
}
