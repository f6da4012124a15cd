package view

import "choreboard/internal/model"

// ManualOrder records a user drag-established sequence over the full
// collection. Once active, automatic sorting is suspended until the
// identity set of the input collection changes.
type ManualOrder struct {
	ids    []int
	active bool
}

func (m *ManualOrder) Active() bool {
	return m.active
}

func (m *ManualOrder) IDs() []int {
	out := make([]int, len(m.ids))
	copy(out, m.ids)
	return out
}

func (m *ManualOrder) Set(ids []int) {
	m.ids = make([]int, len(ids))
	copy(m.ids, ids)
	m.active = true
}

func (m *ManualOrder) Reset() {
	m.ids = nil
	m.active = false
}

// Apply reorders tasks to the stored sequence. Tasks absent from the
// sequence keep their relative input order and go to the end.
func (m *ManualOrder) Apply(tasks []model.Task) []model.Task {
	if !m.active {
		out := make([]model.Task, len(tasks))
		copy(out, tasks)
		return out
	}

	pos := make(map[int]int, len(m.ids))
	for i, id := range m.ids {
		pos[id] = i
	}

	known := make([]model.Task, 0, len(tasks))
	unknown := make([]model.Task, 0)
	for _, t := range tasks {
		if _, ok := pos[t.ID]; ok {
			known = append(known, t)
		} else {
			unknown = append(unknown, t)
		}
	}
	// insertion sort keeps this simple; collections are view-sized
	for i := 1; i < len(known); i++ {
		for j := i; j > 0 && pos[known[j].ID] < pos[known[j-1].ID]; j-- {
			known[j], known[j-1] = known[j-1], known[j]
		}
	}
	return append(known, unknown...)
}

// Move returns a new sequence with id removed and reinserted at the slot
// overID occupied, shifting everything between the two positions by one.
// Unknown ids and id == overID leave the order unchanged.
func Move(ids []int, id, overID int) []int {
	out := make([]int, len(ids))
	copy(out, ids)
	if id == overID {
		return out
	}

	from, to := -1, -1
	for i, v := range ids {
		if v == id {
			from = i
		}
		if v == overID {
			to = i
		}
	}
	if from < 0 || to < 0 {
		return out
	}

	out = append(out[:from], out[from+1:]...)
	out = append(out[:to], append([]int{id}, out[to:]...)...)
	return out
}
