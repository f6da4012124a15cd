package task

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"choreboard/internal/config"
	"choreboard/internal/model"
	"choreboard/internal/notify"
	"choreboard/internal/view"
)

type Handler struct {
	repo     Repo
	members  []model.Member
	families []model.Family
	viewCfg  config.ViewConfig
	names    *view.Cache
	notices  *notify.Log
	clock    view.Clock
}

func NewHandler(repo Repo, viewCfg config.ViewConfig, notices *notify.Log) *Handler {
	return &Handler{
		repo:    repo,
		viewCfg: viewCfg,
		notices: notices,
		clock:   view.RealClock{},
	}
}

func (h *Handler) SetMembers(members []model.Member)   { h.members = members }
func (h *Handler) SetFamilies(families []model.Family) { h.families = families }
func (h *Handler) SetNameCache(c *view.Cache)          { h.names = c }
func (h *Handler) SetClock(c view.Clock)               { h.clock = c }

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/tasks", h.TasksRoot)
	mux.HandleFunc("/api/tasks/", h.TaskByID)
	mux.HandleFunc("/api/tasks/query", h.Query)
	mux.HandleFunc("/api/tasks/reorder", h.Reorder)
	mux.HandleFunc("/api/tasks/batch", h.Batch)
	mux.HandleFunc("/api/members", h.Members)
	mux.HandleFunc("/api/families", h.Families)
	mux.HandleFunc("/api/notices", h.Notices)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}

func decodeJSON(r *http.Request, out any) error {
	return json.NewDecoder(r.Body).Decode(out)
}

// engine builds a view engine over the repo's current collection. HTTP is
// stateless, so each request gets a fresh engine; stateful concerns
// (manual order) persist through the repo's display order instead.
func (h *Handler) engine(r *http.Request) (*view.Engine, error) {
	eng := view.New(view.Options{
		Remote:   NewRemoteRepo(h.repo),
		Notify:   h.pushNotice,
		Clock:    h.clock,
		PageSize: h.viewCfg.PageSize,
		Names:    h.names,
	})
	eng.SetMembers(h.members)
	eng.SetFamilies(h.families)

	ts, err := h.repo.List(r.Context())
	if err != nil {
		return nil, err
	}
	eng.SetTasks(ts)
	return eng, nil
}

func (h *Handler) pushNotice(n view.Notice) {
	if h.notices == nil {
		return
	}
	h.notices.Push(notify.Level(n.Level), n.Message)
}

// /api/tasks (collection)
func (h *Handler) TasksRoot(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		eng, err := h.engine(r)
		if err != nil {
			writeErr(w, 500, err.Error())
			return
		}
		q := r.URL.Query()

		eng.SetSearch(q.Get("q"))
		preset, ok := view.ParsePreset(q.Get("preset"))
		if !ok {
			preset, _ = view.ParsePreset(h.viewCfg.DefaultPreset)
		}
		eng.SetPreset(preset)
		if s := q.Get("sort"); s != "" {
			eng.SetSort(view.Field(s), view.ParseDirection(q.Get("dir")))
		}
		if n, err := strconv.Atoi(q.Get("page")); err == nil {
			eng.SetPage(n)
		}
		if n, err := strconv.Atoi(q.Get("page_size")); err == nil {
			eng.SetPageSize(n)
		}

		writeJSON(w, 200, eng.Visible())

	case http.MethodPost:
		var in struct {
			Title       string      `json:"title"`
			Description string      `json:"description"`
			Priority    any         `json:"priority"`
			DueDate     string      `json:"dueDate"`
			AssignedTo  *int        `json:"assignedTo"`
			FamilyID    *int        `json:"familyId"`
			Points      int         `json:"points"`
			Tags        []model.Tag `json:"tags"`
		}
		if err := decodeJSON(r, &in); err != nil {
			writeErr(w, 400, "invalid json")
			return
		}
		if strings.TrimSpace(in.Title) == "" {
			writeErr(w, 400, "title is required")
			return
		}

		t := model.Task{
			Title:       in.Title,
			Description: in.Description,
			Status:      model.StatusNotStarted,
			Priority:    model.PriorityMedium,
			AssignedTo:  in.AssignedTo,
			FamilyID:    in.FamilyID,
			Points:      in.Points,
			Tags:        in.Tags,
		}
		if in.Priority != nil {
			if p, ok := model.ParsePriority(in.Priority); ok {
				t.Priority = p
			}
		}
		if in.DueDate != "" {
			var p Patch
			p.DueDate = &in.DueDate
			if err := applyPatch(&t, p, h.clock.Now()); err != nil {
				writeErr(w, 400, err.Error())
				return
			}
		}

		created, err := h.repo.Create(r.Context(), t)
		if err != nil {
			writeErr(w, 500, err.Error())
			return
		}
		writeJSON(w, 201, created)

	default:
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// /api/tasks/{id}
func (h *Handler) TaskByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/tasks/")
	switch rest {
	case "query", "reorder", "batch":
		// registered separately; the trailing-slash pattern also matches
		http.NotFound(w, r)
		return
	}
	id, err := strconv.Atoi(rest)
	if err != nil {
		writeErr(w, 400, "invalid task id")
		return
	}

	switch r.Method {
	case http.MethodGet:
		t, err := h.repo.Get(r.Context(), id)
		if errors.Is(err, ErrNotFound) {
			writeErr(w, 404, "task not found")
			return
		}
		if err != nil {
			writeErr(w, 500, err.Error())
			return
		}
		writeJSON(w, 200, t)

	case http.MethodPatch:
		var p Patch
		if err := decodeJSON(r, &p); err != nil {
			writeErr(w, 400, "invalid json")
			return
		}
		t, err := h.patchOrUpdate(r, id, p)
		if errors.Is(err, ErrNotFound) {
			writeErr(w, 404, "task not found")
			return
		}
		if err != nil {
			writeErr(w, 400, err.Error())
			return
		}
		writeJSON(w, 200, t)

	case http.MethodDelete:
		err := h.repo.Delete(r.Context(), id)
		if errors.Is(err, ErrNotFound) {
			writeErr(w, 404, "task not found")
			return
		}
		if err != nil {
			writeErr(w, 500, err.Error())
			return
		}
		writeJSON(w, 200, map[string]any{"deleted": id})

	default:
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// patchOrUpdate mirrors the engine's two-tier protocol at the HTTP edge:
// targeted patch first, whole-record update when the store can't patch.
func (h *Handler) patchOrUpdate(r *http.Request, id int, p Patch) (model.Task, error) {
	t, err := h.repo.Patch(r.Context(), id, p)
	if !errors.Is(err, view.ErrPatchUnsupported) {
		return t, err
	}

	t, err = h.repo.Get(r.Context(), id)
	if err != nil {
		return model.Task{}, err
	}
	if err := applyPatch(&t, p, h.clock.Now()); err != nil {
		return model.Task{}, err
	}
	return h.repo.Update(r.Context(), t)
}

type queryRequest struct {
	Search   string      `json:"search"`
	Preset   string      `json:"preset"`
	Rules    []view.Rule `json:"rules"`
	Sort     string      `json:"sort"`
	Dir      string      `json:"dir"`
	Page     int         `json:"page"`
	PageSize int         `json:"pageSize"`
}

// /api/tasks/query runs the full pipeline, including custom filter rules
// that don't fit in query params.
func (h *Handler) Query(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var in queryRequest
	if err := decodeJSON(r, &in); err != nil {
		writeErr(w, 400, "invalid json")
		return
	}

	eng, err := h.engine(r)
	if err != nil {
		writeErr(w, 500, err.Error())
		return
	}

	eng.SetSearch(in.Search)
	preset, ok := view.ParsePreset(in.Preset)
	if !ok {
		preset, _ = view.ParsePreset(h.viewCfg.DefaultPreset)
	}
	eng.SetPreset(preset)

	rules := in.Rules
	for i := range rules {
		if rules[i].ID == "" {
			rules[i] = view.NewRule(rules[i].Field, rules[i].Op, rules[i].Value, rules[i].Label)
		}
	}
	eng.SetRules(rules)

	if in.Sort != "" {
		eng.SetSort(view.Field(in.Sort), view.ParseDirection(in.Dir))
	}
	if in.Page > 0 {
		eng.SetPage(in.Page)
	}
	if in.PageSize > 0 {
		eng.SetPageSize(in.PageSize)
	}

	writeJSON(w, 200, eng.Visible())
}

// /api/tasks/reorder persists a drag-established order.
func (h *Handler) Reorder(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var in struct {
		IDs []int `json:"ids"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeErr(w, 400, "invalid json")
		return
	}
	if len(in.IDs) == 0 {
		writeErr(w, 400, "ids is required")
		return
	}
	if err := h.repo.Reorder(r.Context(), in.IDs); err != nil {
		writeErr(w, 500, err.Error())
		return
	}
	writeJSON(w, 200, map[string]any{"ok": true})
}

// /api/tasks/batch runs one operation over a set of ids.
func (h *Handler) Batch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var in struct {
		Op  string `json:"op"`
		IDs []int  `json:"ids"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeErr(w, 400, "invalid json")
		return
	}
	if len(in.IDs) == 0 {
		writeErr(w, 400, "ids is required")
		return
	}

	remote := NewRemoteRepo(h.repo)
	if err := remote.RunBatch(r.Context(), view.BatchOp(in.Op), in.IDs); err != nil {
		h.pushNotice(view.Notice{Level: view.NoticeError, Message: err.Error()})
		writeErr(w, 500, err.Error())
		return
	}
	writeJSON(w, 200, map[string]any{"ok": true, "count": len(in.IDs)})
}

func (h *Handler) Members(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, 200, h.members)
}

func (h *Handler) Families(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, 200, h.families)
}

func (h *Handler) Notices(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	n := 20
	if v, err := strconv.Atoi(r.URL.Query().Get("n")); err == nil && v > 0 {
		n = v
	}
	if h.notices == nil {
		writeJSON(w, 200, []notify.Notice{})
		return
	}
	writeJSON(w, 200, h.notices.Recent(n))
}
