package view

import (
	"context"
	"fmt"
	"log"
	"time"

	"choreboard/internal/model"
)

type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// Options configures an Engine. Remote is required for edits, reorders,
// and batches; Refresh and Notify are optional collaborators.
type Options struct {
	Remote   Remote
	Refresh  func()
	Notify   NotifyFunc
	Clock    Clock
	PageSize int
	Names    *Cache
}

const DefaultPageSize = 10

// Engine owns the view state for one rendered task collection: the cached
// records, query controls, sort settings, manual order, pagination, selection,
// and the single inline-edit slot. One engine instance per view; it is not
// shared across goroutines.
type Engine struct {
	remote  Remote
	refresh func()
	notify  NotifyFunc
	clock   Clock
	names   *Cache

	tasks    []model.Task
	index    map[int]int
	members  map[int]model.Member
	families map[int]model.Family

	search string
	preset Preset
	rules  []Rule
	sortBy Sort
	manual ManualOrder

	pageSize int
	page     int

	selection *Selection
	edit      *pendingEdit
	dragID    int
}

func New(opts Options) *Engine {
	clock := opts.Clock
	if clock == nil {
		clock = RealClock{}
	}
	pageSize := opts.PageSize
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return &Engine{
		remote:    opts.Remote,
		refresh:   opts.Refresh,
		notify:    opts.Notify,
		clock:     clock,
		names:     opts.Names,
		index:     map[int]int{},
		members:   map[int]model.Member{},
		families:  map[int]model.Family{},
		preset:    PresetAll,
		pageSize:  pageSize,
		page:      1,
		selection: NewSelection(),
	}
}

// SetTasks replaces the cached collection with an authoritative refresh.
// Manual order survives attribute-only changes but is reset when the
// identity set changes: a drag-established sequence over a different set
// of tasks is meaningless.
func (e *Engine) SetTasks(tasks []model.Task) {
	if e.manual.Active() && e.identityChanged(tasks) {
		e.manual.Reset()
	}
	e.tasks = make([]model.Task, len(tasks))
	copy(e.tasks, tasks)
	e.index = make(map[int]int, len(tasks))
	for i, t := range e.tasks {
		e.index[t.ID] = i
	}
}

func (e *Engine) identityChanged(tasks []model.Task) bool {
	if len(tasks) != len(e.tasks) {
		return true
	}
	for _, t := range tasks {
		if _, ok := e.index[t.ID]; !ok {
			return true
		}
	}
	return false
}

func (e *Engine) SetMembers(members []model.Member) {
	e.members = make(map[int]model.Member, len(members))
	for _, m := range members {
		e.members[m.ID] = m
	}
}

func (e *Engine) SetFamilies(families []model.Family) {
	e.families = make(map[int]model.Family, len(families))
	for _, f := range families {
		e.families[f.ID] = f
	}
}

func (e *Engine) SetSearch(s string) { e.search = s }
func (e *Engine) SetPreset(p Preset) { e.preset = p }

func (e *Engine) SetSort(f Field, d Direction) {
	e.sortBy = Sort{Field: f, Dir: d}
}

func (e *Engine) SetRules(rules []Rule) {
	e.rules = make([]Rule, len(rules))
	copy(e.rules, rules)
}

func (e *Engine) AddRule(r Rule) {
	e.rules = append(e.rules, r)
}

func (e *Engine) RemoveRule(id string) {
	out := e.rules[:0]
	for _, r := range e.rules {
		if r.ID != id {
			out = append(out, r)
		}
	}
	e.rules = out
}

func (e *Engine) SetPage(n int) { e.page = n }

func (e *Engine) SetPageSize(n int) {
	if n > 0 {
		e.pageSize = n
	}
}

func (e *Engine) ManualActive() bool { return e.manual.Active() }
func (e *Engine) Page() int          { return e.page }

// Task returns the cached copy of a record, including any optimistic
// mutations not yet confirmed by a refresh.
func (e *Engine) Task(id int) (model.Task, bool) {
	i, ok := e.index[id]
	if !ok {
		return model.Task{}, false
	}
	return e.tasks[i], true
}

// View is the rendered slice plus the pagination facts the host needs.
type View struct {
	Items      []model.Task `json:"items"`
	Page       int          `json:"page"`
	PageSize   int          `json:"pageSize"`
	TotalPages int          `json:"totalPages"`
	Total      int          `json:"total"`
}

// Visible recomputes the pipeline: manual order (when active) or raw
// input, then search/preset/rules, then sort (inert in manual mode), then
// the page slice. The current page self-heals if filtering shrank the set.
func (e *Engine) Visible() View {
	base := e.manual.Apply(e.tasks)

	q := Query{Search: e.search, Preset: e.preset, Rules: e.rules}
	filtered := q.Apply(base, e.evaluator(), e.clock.Now())

	ordered := e.sortBy.Apply(filtered, e.manual.Active())

	total := TotalPages(len(ordered), e.pageSize)
	e.page = ClampPage(e.page, total)
	pg := Paginate(ordered, e.pageSize, e.page)

	return View{
		Items:      pg.Items,
		Page:       e.page,
		PageSize:   e.pageSize,
		TotalPages: pg.TotalPages,
		Total:      len(ordered),
	}
}

func (e *Engine) evaluator() Evaluator {
	return Evaluator{FamilyName: e.familyName}
}

func (e *Engine) familyName(id int) string {
	if e.names != nil {
		if name, ok := e.names.Get(id); ok {
			return name
		}
	}
	f, ok := e.families[id]
	if !ok {
		return ""
	}
	if e.names != nil {
		e.names.Put(id, f.Name)
	}
	return f.Name
}

// MemberName resolves an assignee id for display.
func (e *Engine) MemberName(id int) string {
	m, ok := e.members[id]
	if !ok {
		return ""
	}
	return m.Name
}

// --- inline edit ---

// StartEdit opens the single edit slot. Opening is a no-op when a
// different (task, field) edit is already open without an explicit
// cancel; re-opening the same pair is allowed.
func (e *Engine) StartEdit(id int, field Field, current FieldValue) bool {
	if e.edit != nil && (e.edit.taskID != id || e.edit.field != field) {
		return false
	}
	e.edit = &pendingEdit{taskID: id, field: field, value: current}
	return true
}

// CancelEdit discards the candidate value without touching the record.
// It only affects a not-yet-committed edit.
func (e *Engine) CancelEdit() {
	e.edit = nil
}

func (e *Engine) EditOpen() bool { return e.edit != nil }

// CommitEdit applies the value to the local record immediately, then runs
// the two-tier remote protocol: partial update first, full-record update
// when the remote reports the method unsupported. On success the refresh
// callback is invoked so authoritative state eventually overwrites the
// optimistic one. On total failure the local mutation stays in place and
// a notice is emitted; the record may still be correct and the next
// refresh reconciles it.
func (e *Engine) CommitEdit(ctx context.Context, id int, field Field, value FieldValue) error {
	e.edit = nil

	i, ok := e.index[id]
	if !ok {
		return fmt.Errorf("task %d not in collection", id)
	}
	if err := applyField(&e.tasks[i], field, value, e.clock.Now()); err != nil {
		return err
	}

	if e.remote == nil {
		return nil
	}

	err := e.remote.PartialUpdate(ctx, id, field, value)
	if err != nil && isUnsupported(err) {
		err = e.remote.FullUpdate(ctx, e.tasks[i])
	}
	if err != nil {
		e.emit(NoticeError, fmt.Sprintf("saving task %d failed: %v", id, err))
		return err
	}

	if e.refresh != nil {
		e.refresh()
	}
	return nil
}

// --- drag reorder ---

// BeginDrag marks the drag source. Dragging and inline editing are
// mutually exclusive, so any open edit is cancelled.
func (e *Engine) BeginDrag(id int) {
	e.CancelEdit()
	e.dragID = id
}

// CompleteDrag turns the gesture into a new full-collection order and
// activates manual mode. The local order applies first; the remote
// notification is advisory and its failure never rolls the order back.
func (e *Engine) CompleteDrag(ctx context.Context, id, overID int) {
	e.dragID = 0
	if overID == 0 || overID == id {
		return
	}

	ids := e.currentOrder()
	moved := Move(ids, id, overID)
	e.manual.Set(moved)

	if e.remote != nil {
		if err := e.remote.NotifyReorder(ctx, moved); err != nil {
			e.emit(NoticeWarn, fmt.Sprintf("reorder not saved: %v", err))
			return
		}
	}
	if e.refresh != nil {
		e.refresh()
	}
}

// currentOrder snapshots the full-collection order the user is looking
// at: the manual sequence when already active, otherwise the current sort
// applied to the whole (unfiltered) collection.
func (e *Engine) currentOrder() []int {
	if e.manual.Active() {
		return e.manual.IDs()
	}
	sorted := e.sortBy.Apply(e.tasks, false)
	ids := make([]int, len(sorted))
	for i, t := range sorted {
		ids[i] = t.ID
	}
	return ids
}

// --- selection and batch ---

func (e *Engine) ToggleSelect(id int) { e.selection.Toggle(id) }

func (e *Engine) SelectAllVisible() {
	v := e.Visible()
	ids := make([]int, len(v.Items))
	for i, t := range v.Items {
		ids[i] = t.ID
	}
	e.selection.SelectAll(ids)
}

func (e *Engine) ClearSelection() { e.selection.Clear() }

func (e *Engine) Selected(id int) bool { return e.selection.Has(id) }
func (e *Engine) SelectedIDs() []int   { return e.selection.IDs() }

// RunBatch fires the operation for the current selection and clears the
// selection unconditionally; per-item outcomes belong to the remote side.
// An empty selection is rejected.
func (e *Engine) RunBatch(ctx context.Context, op BatchOp) error {
	if e.selection.Len() == 0 {
		log.Printf("batch %q rejected: empty selection", op)
		return nil
	}

	ids := e.selection.IDs()
	e.selection.Clear()

	if e.remote == nil {
		return nil
	}
	if err := e.remote.RunBatch(ctx, op, ids); err != nil {
		e.emit(NoticeError, fmt.Sprintf("batch %s failed: %v", op, err))
		return err
	}
	if e.refresh != nil {
		e.refresh()
	}
	return nil
}

func (e *Engine) emit(level NoticeLevel, msg string) {
	if e.notify != nil {
		e.notify(Notice{Level: level, Message: msg})
	}
}
