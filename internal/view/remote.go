package view

import (
	"context"
	"errors"

	"choreboard/internal/model"
)

// ErrPatchUnsupported is the "method not supported" signal from a remote
// that cannot apply targeted partial updates. The engine falls back to a
// full-record update; the error is never surfaced to the caller.
var ErrPatchUnsupported = errors.New("partial update not supported")

func isUnsupported(err error) bool {
	return errors.Is(err, ErrPatchUnsupported)
}

type BatchOp string

const (
	BatchComplete BatchOp = "complete"
	BatchDelete   BatchOp = "delete"
)

// Remote is the persistence collaborator boundary. PartialUpdate and
// FullUpdate form the two-tier write protocol; NotifyReorder and RunBatch
// are one-way sends whose per-item outcomes the engine does not consume.
type Remote interface {
	PartialUpdate(ctx context.Context, id int, field Field, value FieldValue) error
	FullUpdate(ctx context.Context, t model.Task) error
	NotifyReorder(ctx context.Context, ids []int) error
	RunBatch(ctx context.Context, op BatchOp, ids []int) error
}

type NoticeLevel string

const (
	NoticeInfo  NoticeLevel = "info"
	NoticeWarn  NoticeLevel = "warn"
	NoticeError NoticeLevel = "error"
)

// Notice is the side channel for remote failures. The engine never rolls
// back optimistic state on failure; it emits a notice and leaves
// reconciliation to the next authoritative refresh.
type Notice struct {
	Level   NoticeLevel
	Message string
}

type NotifyFunc func(Notice)
