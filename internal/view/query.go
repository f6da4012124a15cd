package view

import (
	"strings"
	"time"

	"choreboard/internal/model"
)

// Preset is one of the fixed, mutually exclusive named views. Presets
// compose with search text and custom rules but never with each other.
type Preset string

const (
	PresetAll          Preset = "all"
	PresetActive       Preset = "active"
	PresetCompleted    Preset = "completed"
	PresetOverdue      Preset = "overdue"
	PresetHighPriority Preset = "high_priority"
	PresetAssigned     Preset = "assigned"
	PresetUnassigned   Preset = "unassigned"
)

func ParsePreset(s string) (Preset, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return PresetAll, true
	case "active":
		return PresetActive, true
	case "completed":
		return PresetCompleted, true
	case "overdue":
		return PresetOverdue, true
	case "high_priority", "high-priority", "highpriority":
		return PresetHighPriority, true
	case "assigned":
		return PresetAssigned, true
	case "unassigned":
		return PresetUnassigned, true
	}
	return "", false
}

func (p Preset) matches(t model.Task, now time.Time) bool {
	switch p {
	case PresetActive:
		return !t.Completed
	case PresetCompleted:
		return t.Completed
	case PresetOverdue:
		return t.IsOverdue(now)
	case PresetHighPriority:
		return t.Priority >= model.PriorityHigh
	case PresetAssigned:
		return t.AssignedTo != nil
	case PresetUnassigned:
		return t.AssignedTo == nil
	default:
		return true
	}
}

// Query composes free-text search, a preset view, and custom rules into
// one filter pass. Rules combine with logical AND, so the result is
// invariant under permutation of the rule list.
type Query struct {
	Search string
	Preset Preset
	Rules  []Rule
}

func (q Query) Apply(tasks []model.Task, ev Evaluator, now time.Time) []model.Task {
	search := strings.ToLower(strings.TrimSpace(q.Search))

	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if search != "" && !matchesSearch(t, search) {
			continue
		}
		if !q.Preset.matches(t, now) {
			continue
		}
		keep := true
		for _, r := range q.Rules {
			if !r.Active {
				continue
			}
			if !ev.Evaluate(t, r) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, t)
		}
	}
	return out
}

// matchesSearch reports whether any of title, description, or a tag name
// contains the (already lowercased) search text.
func matchesSearch(t model.Task, search string) bool {
	if strings.Contains(strings.ToLower(t.Title), search) {
		return true
	}
	if strings.Contains(strings.ToLower(t.Description), search) {
		return true
	}
	for _, tag := range t.Tags {
		if strings.Contains(strings.ToLower(tag.Name), search) {
			return true
		}
	}
	return false
}
