package view

import (
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"choreboard/internal/model"
)

// Field identifies a filterable/sortable task attribute. FieldFamily is
// synthetic: it resolves to a display name, or to "personal" for tasks
// without a family.
type Field string

const (
	FieldTitle       Field = "title"
	FieldDescription Field = "description"
	FieldStatus      Field = "status"
	FieldPriority    Field = "priority"
	FieldDueDate     Field = "dueDate"
	FieldCreatedAt   Field = "createdAt"
	FieldCompleted   Field = "completed"
	FieldAssignedTo  Field = "assignedTo"
	FieldPoints      Field = "points"
	FieldFamily      Field = "family"
)

type Op string

const (
	OpEquals      Op = "equals"
	OpContains    Op = "contains"
	OpIn          Op = "in"
	OpGreaterThan Op = "greaterThan"
	OpLessThan    Op = "lessThan"
)

// Rule is one custom filter predicate. Rules with incompatible
// operator/value pairings pass rather than fail: the evaluator is total
// and a malformed rule must never hide the whole collection.
type Rule struct {
	ID     string `json:"id"`
	Field  Field  `json:"field"`
	Op     Op     `json:"op"`
	Value  any    `json:"value"`
	Active bool   `json:"active"`
	Label  string `json:"label,omitempty"`
}

func NewRule(field Field, op Op, value any, label string) Rule {
	return Rule{
		ID:     uuid.NewString(),
		Field:  field,
		Op:     op,
		Value:  value,
		Active: true,
		Label:  label,
	}
}

// Evaluator evaluates rules against tasks. FamilyName is optional; when
// nil, family fields fall back to a numeric label.
type Evaluator struct {
	FamilyName func(id int) string
}

// Evaluate reports whether the task satisfies the rule. A missing field
// value excludes the record (none of the current operators test absence).
// An unknown operator passes the record through.
func (e Evaluator) Evaluate(t model.Task, r Rule) bool {
	got := e.fieldValue(t, r.Field)
	if got == nil {
		return false
	}

	switch r.Op {
	case OpEquals:
		return coerceString(got) == coerceString(r.Value)
	case OpContains:
		return strings.Contains(
			strings.ToLower(coerceString(got)),
			strings.ToLower(coerceString(r.Value)),
		)
	case OpIn:
		members, ok := asSlice(r.Value)
		if !ok {
			// not an array: incompatible pairing, pass
			return true
		}
		want := coerceString(got)
		for _, m := range members {
			if coerceString(m) == want {
				return true
			}
		}
		return false
	case OpGreaterThan:
		a, aok := coerceFloat(got)
		b, bok := coerceFloat(r.Value)
		return aok && bok && a > b
	case OpLessThan:
		a, aok := coerceFloat(got)
		b, bok := coerceFloat(r.Value)
		return aok && bok && a < b
	default:
		return true
	}
}

func (e Evaluator) fieldValue(t model.Task, f Field) any {
	switch f {
	case FieldTitle:
		return t.Title
	case FieldDescription:
		if t.Description == "" {
			return nil
		}
		return t.Description
	case FieldStatus:
		return string(t.Status)
	case FieldPriority:
		return t.Priority
	case FieldDueDate:
		if t.DueDate == nil {
			return nil
		}
		return *t.DueDate
	case FieldCreatedAt:
		return t.CreatedAt
	case FieldCompleted:
		return t.Completed
	case FieldAssignedTo:
		if t.AssignedTo == nil {
			return nil
		}
		return *t.AssignedTo
	case FieldPoints:
		return t.Points
	case FieldFamily:
		if t.FamilyID == nil {
			return "personal"
		}
		if e.FamilyName != nil {
			if name := e.FamilyName(*t.FamilyID); name != "" {
				return name
			}
		}
		return "family " + strconv.Itoa(*t.FamilyID)
	}
	return nil
}

func coerceString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case time.Time:
		return x.UTC().Format(time.RFC3339)
	case model.Priority:
		return x.String()
	case model.Status:
		return string(x)
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		rv := reflect.ValueOf(v)
		if rv.Kind() == reflect.String {
			return rv.String()
		}
		return ""
	}
}

func coerceFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case float64:
		return x, true
	case model.Priority:
		return float64(x), true
	case time.Time:
		return float64(x.UnixMilli()), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

func asSlice(v any) ([]any, bool) {
	switch x := v.(type) {
	case []any:
		return x, true
	case []string:
		out := make([]any, len(x))
		for i, s := range x {
			out[i] = s
		}
		return out, true
	case []int:
		out := make([]any, len(x))
		for i, n := range x {
			out[i] = n
		}
		return out, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
