package view

import (
	"sort"
	"strings"
	"time"

	"choreboard/internal/model"
)

type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

func ParseDirection(s string) Direction {
	if strings.EqualFold(strings.TrimSpace(s), string(Descending)) {
		return Descending
	}
	return Ascending
}

// Sort orders a collection by one field. It is inert while manual-order
// mode is active. Records without a value for the field sort to the end
// regardless of direction: a task with no due date is always "after" one
// with a due date, even descending.
type Sort struct {
	Field Field
	Dir   Direction
}

func (s Sort) Apply(tasks []model.Task, manualActive bool) []model.Task {
	out := make([]model.Task, len(tasks))
	copy(out, tasks)
	if manualActive || s.Field == "" {
		return out
	}

	ev := Evaluator{}
	sort.SliceStable(out, func(i, j int) bool {
		a := ev.fieldValue(out[i], s.Field)
		b := ev.fieldValue(out[j], s.Field)
		switch {
		case a == nil && b == nil:
			return false
		case a == nil:
			return false
		case b == nil:
			return true
		}
		c := compareValues(a, b)
		if s.Dir == Descending {
			c = -c
		}
		return c < 0
	})
	return out
}

func compareValues(a, b any) int {
	if at, ok := a.(time.Time); ok {
		if bt, ok := b.(time.Time); ok {
			return at.Compare(bt)
		}
	}
	if af, aok := coerceFloat(a); aok {
		if bf, bok := coerceFloat(b); bok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			default:
				return 0
			}
		}
	}
	as := strings.ToLower(coerceString(a))
	bs := strings.ToLower(coerceString(b))
	return strings.Compare(as, bs)
}
