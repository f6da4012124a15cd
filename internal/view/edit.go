package view

import (
	"fmt"
	"time"

	"choreboard/internal/model"
)

// Kind tags the payload of a FieldValue.
type Kind int

const (
	KindText Kind = iota
	KindNumber
	KindBool
	KindTime
	KindStatus
	KindPriority
)

// FieldValue is the tagged variant carried by a pending inline edit. The
// commit step interprets the payload per field kind instead of guessing
// at an untyped value.
type FieldValue struct {
	kind     Kind
	text     string
	num      float64
	flag     bool
	when     time.Time
	status   model.Status
	priority model.Priority
}

func Text(s string) FieldValue           { return FieldValue{kind: KindText, text: s} }
func Number(n float64) FieldValue        { return FieldValue{kind: KindNumber, num: n} }
func Bool(b bool) FieldValue             { return FieldValue{kind: KindBool, flag: b} }
func Time(t time.Time) FieldValue        { return FieldValue{kind: KindTime, when: t} }
func StatusOf(s model.Status) FieldValue { return FieldValue{kind: KindStatus, status: s} }
func PriorityOf(p model.Priority) FieldValue {
	return FieldValue{kind: KindPriority, priority: p}
}

func (v FieldValue) Kind() Kind { return v.kind }

func (v FieldValue) Text() string             { return v.text }
func (v FieldValue) Number() float64          { return v.num }
func (v FieldValue) Bool() bool               { return v.flag }
func (v FieldValue) Time() time.Time          { return v.when }
func (v FieldValue) Status() model.Status     { return v.status }
func (v FieldValue) Priority() model.Priority { return v.priority }

// cascades enumerates the derived mutations a field change triggers.
// Keeping them in one table means every cascade is visible and testable;
// the only one today is the completion stamp on status.
var cascades = map[Field]func(t *model.Task, now time.Time){
	FieldStatus: func(t *model.Task, now time.Time) {
		if t.Status == model.StatusCompleted {
			t.MarkCompleted(now)
		} else {
			t.Completed = false
		}
	},
}

// applyField writes the candidate value onto the task and runs any
// declared cascade. A kind/field mismatch is a caller bug and is
// rejected without touching the record.
func applyField(t *model.Task, f Field, v FieldValue, now time.Time) error {
	switch f {
	case FieldTitle:
		if v.kind != KindText {
			return kindErr(f, v)
		}
		t.Title = v.text
	case FieldDescription:
		if v.kind != KindText {
			return kindErr(f, v)
		}
		t.Description = v.text
	case FieldStatus:
		if v.kind != KindStatus {
			return kindErr(f, v)
		}
		if !v.status.Valid() {
			return fmt.Errorf("invalid status %q", v.status)
		}
		t.Status = v.status
	case FieldPriority:
		if v.kind != KindPriority {
			return kindErr(f, v)
		}
		if !v.priority.Valid() {
			return fmt.Errorf("invalid priority %d", v.priority)
		}
		t.Priority = v.priority
	case FieldDueDate:
		if v.kind != KindTime {
			return kindErr(f, v)
		}
		if v.when.IsZero() {
			t.DueDate = nil
		} else {
			due := v.when
			t.DueDate = &due
		}
	case FieldCompleted:
		if v.kind != KindBool {
			return kindErr(f, v)
		}
		t.Completed = v.flag
	case FieldAssignedTo:
		if v.kind != KindNumber {
			return kindErr(f, v)
		}
		if v.num == 0 {
			t.AssignedTo = nil
		} else {
			id := int(v.num)
			t.AssignedTo = &id
		}
	case FieldPoints:
		if v.kind != KindNumber {
			return kindErr(f, v)
		}
		t.Points = int(v.num)
	default:
		return fmt.Errorf("field %q is not editable", f)
	}

	if cascade, ok := cascades[f]; ok {
		cascade(t, now)
	}
	return nil
}

func kindErr(f Field, v FieldValue) error {
	return fmt.Errorf("wrong value kind %d for field %q", v.kind, f)
}

// pendingEdit is the single in-flight edit slot.
type pendingEdit struct {
	taskID int
	field  Field
	value  FieldValue
}
