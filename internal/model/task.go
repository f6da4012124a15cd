package model

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusPending    Status = "pending"
	StatusOnHold     Status = "on_hold"
	StatusCompleted  Status = "completed"
)

// ParseStatus accepts the canonical snake_case form as well as the
// CamelCase form the upstream API uses ("NotStarted", "OnHold").
func ParseStatus(s string) (Status, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "not_started", "notstarted", "todo":
		return StatusNotStarted, true
	case "in_progress", "inprogress":
		return StatusInProgress, true
	case "pending":
		return StatusPending, true
	case "on_hold", "onhold":
		return StatusOnHold, true
	case "completed", "done":
		return StatusCompleted, true
	}
	return "", false
}

func (s Status) Valid() bool {
	_, ok := ParseStatus(string(s))
	return ok
}

// Priority is stored as an ordinal so comparisons are cheap, but the wire
// form may be either a name ("High") or a number (2). UnmarshalJSON
// normalizes both to the canonical ordinal.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityMedium
	PriorityHigh
	PriorityUrgent
)

var priorityNames = [...]string{"low", "medium", "high", "urgent"}

func (p Priority) String() string {
	if p < PriorityLow || p > PriorityUrgent {
		return "unknown"
	}
	return priorityNames[p]
}

func (p Priority) Valid() bool {
	return p >= PriorityLow && p <= PriorityUrgent
}

// ParsePriority normalizes any of the representations a priority can
// arrive in: a name, a numeric string, or a bare ordinal.
func ParsePriority(v any) (Priority, bool) {
	switch x := v.(type) {
	case Priority:
		return x, x.Valid()
	case int:
		p := Priority(x)
		return p, p.Valid()
	case int64:
		p := Priority(x)
		return p, p.Valid()
	case float64:
		p := Priority(int(x))
		return p, p.Valid()
	case string:
		s := strings.ToLower(strings.TrimSpace(x))
		for i, name := range priorityNames {
			if s == name {
				return Priority(i), true
			}
		}
		if n, err := strconv.Atoi(s); err == nil {
			p := Priority(n)
			return p, p.Valid()
		}
	}
	return 0, false
}

func (p Priority) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

func (p *Priority) UnmarshalJSON(b []byte) error {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	parsed, ok := ParsePriority(raw)
	if !ok {
		parsed = PriorityMedium
	}
	*p = parsed
	return nil
}

type Tag struct {
	Name string `json:"name"`
}

type Task struct {
	ID          int        `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	Status      Status     `json:"status"`
	Priority    Priority   `json:"priority"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	AssignedTo  *int       `json:"assignedTo,omitempty"`
	FamilyID    *int       `json:"familyId,omitempty"`
	Points      int        `json:"points"`
	Tags        []Tag      `json:"tags,omitempty"`
}

func (t *Task) HasTag(name string) bool {
	for _, tag := range t.Tags {
		if strings.EqualFold(tag.Name, name) {
			return true
		}
	}
	return false
}

func (t *Task) IsOverdue(now time.Time) bool {
	return !t.Completed && t.DueDate != nil && t.DueDate.Before(now)
}

// MarkCompleted flips the completion flag and stamps the completion time.
// The timestamp is only written on the incomplete -> complete transition.
func (t *Task) MarkCompleted(now time.Time) {
	if !t.Completed {
		t.CompletedAt = &now
	}
	t.Completed = true
	t.Status = StatusCompleted
}
