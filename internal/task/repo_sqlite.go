package task

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"choreboard/internal/model"
)

// SQLiteRepo is the production store. It supports targeted column
// updates, so the engine's primary update path never needs the fallback.
type SQLiteRepo struct {
	db *sql.DB
}

func OpenSQLiteRepo(dbPath string) (*SQLiteRepo, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)

	r := &SQLiteRepo{db: db}
	if err := r.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}

func (r *SQLiteRepo) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepo) migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS tasks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		completed INTEGER NOT NULL DEFAULT 0,
		completed_at TEXT NULL,
		status TEXT NOT NULL DEFAULT 'not_started',
		priority INTEGER NOT NULL DEFAULT 1,
		due_date TEXT NULL,
		created_at TEXT NOT NULL,
		assigned_to INTEGER NULL,
		family_id INTEGER NULL,
		points INTEGER NOT NULL DEFAULT 0,
		tags TEXT NOT NULL DEFAULT '[]',
		position INTEGER NOT NULL DEFAULT 0
	);`)
	if err != nil {
		return fmt.Errorf("migrate tasks: %w", err)
	}
	return nil
}

const taskColumns = `id, title, description, completed, completed_at, status,
	priority, due_date, created_at, assigned_to, family_id, points, tags`

func scanTask(row interface{ Scan(...any) error }) (model.Task, error) {
	var (
		t           model.Task
		completed   int
		completedAt sql.NullString
		dueDate     sql.NullString
		createdAt   string
		assignedTo  sql.NullInt64
		familyID    sql.NullInt64
		tags        string
	)
	err := row.Scan(&t.ID, &t.Title, &t.Description, &completed, &completedAt,
		&t.Status, &t.Priority, &dueDate, &createdAt, &assignedTo, &familyID,
		&t.Points, &tags)
	if err != nil {
		return model.Task{}, err
	}

	t.Completed = completed != 0
	if completedAt.Valid {
		if ts, err := time.Parse(time.RFC3339Nano, completedAt.String); err == nil {
			t.CompletedAt = &ts
		}
	}
	if dueDate.Valid {
		if ts, err := time.Parse(time.RFC3339Nano, dueDate.String); err == nil {
			t.DueDate = &ts
		}
	}
	if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		t.CreatedAt = ts
	}
	if assignedTo.Valid {
		id := int(assignedTo.Int64)
		t.AssignedTo = &id
	}
	if familyID.Valid {
		id := int(familyID.Int64)
		t.FamilyID = &id
	}
	if tags != "" {
		_ = json.Unmarshal([]byte(tags), &t.Tags)
	}
	return t, nil
}

func timePtrString(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func intPtr(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

func tagsJSON(tags []model.Tag) string {
	if tags == nil {
		return "[]"
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func (r *SQLiteRepo) Create(ctx context.Context, t model.Task) (model.Task, error) {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	if t.Status == "" {
		t.Status = model.StatusNotStarted
	}

	res, err := r.db.ExecContext(ctx, `INSERT INTO tasks
		(title, description, completed, completed_at, status, priority,
		 due_date, created_at, assigned_to, family_id, points, tags, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?,
		 (SELECT COALESCE(MAX(position), 0) + 1 FROM tasks))`,
		t.Title, t.Description, boolInt(t.Completed), timePtrString(t.CompletedAt),
		string(t.Status), int(t.Priority), timePtrString(t.DueDate),
		t.CreatedAt.UTC().Format(time.RFC3339Nano), intPtr(t.AssignedTo),
		intPtr(t.FamilyID), t.Points, tagsJSON(t.Tags))
	if err != nil {
		return model.Task{}, fmt.Errorf("insert task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Task{}, err
	}
	t.ID = int(id)
	return t, nil
}

func (r *SQLiteRepo) Get(ctx context.Context, id int) (model.Task, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return model.Task{}, ErrNotFound
	}
	if err != nil {
		return model.Task{}, fmt.Errorf("get task %d: %w", id, err)
	}
	return t, nil
}

func (r *SQLiteRepo) List(ctx context.Context) ([]model.Task, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var out []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *SQLiteRepo) Patch(ctx context.Context, id int, p Patch) (model.Task, error) {
	var (
		sets []string
		args []any
	)
	set := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}

	now := time.Now()
	if p.Title != nil {
		set("title", *p.Title)
	}
	if p.Description != nil {
		set("description", *p.Description)
	}
	if p.Status != nil {
		status, ok := model.ParseStatus(string(*p.Status))
		if !ok {
			return model.Task{}, fmt.Errorf("invalid status %q", *p.Status)
		}
		set("status", string(status))
		if status == model.StatusCompleted {
			set("completed", 1)
			set("completed_at", now.UTC().Format(time.RFC3339Nano))
		} else {
			set("completed", 0)
		}
	}
	if p.Completed != nil {
		if *p.Completed {
			set("completed", 1)
			set("completed_at", now.UTC().Format(time.RFC3339Nano))
		} else {
			set("completed", 0)
		}
	}
	if p.Priority != nil {
		set("priority", int(*p.Priority))
	}
	if p.DueDate != nil {
		if *p.DueDate == "" {
			set("due_date", nil)
		} else {
			due, err := time.Parse(time.RFC3339, *p.DueDate)
			if err != nil {
				return model.Task{}, fmt.Errorf("invalid due date %q", *p.DueDate)
			}
			set("due_date", due.UTC().Format(time.RFC3339Nano))
		}
	}
	if p.AssignedTo != nil {
		if *p.AssignedTo == 0 {
			set("assigned_to", nil)
		} else {
			set("assigned_to", *p.AssignedTo)
		}
	}
	if p.Points != nil {
		set("points", *p.Points)
	}
	if p.Tags != nil {
		set("tags", tagsJSON(*p.Tags))
	}

	if len(sets) > 0 {
		args = append(args, id)
		res, err := r.db.ExecContext(ctx,
			`UPDATE tasks SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
		if err != nil {
			return model.Task{}, fmt.Errorf("patch task %d: %w", id, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return model.Task{}, ErrNotFound
		}
	}
	return r.Get(ctx, id)
}

func (r *SQLiteRepo) Update(ctx context.Context, t model.Task) (model.Task, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE tasks SET
		title = ?, description = ?, completed = ?, completed_at = ?,
		status = ?, priority = ?, due_date = ?, assigned_to = ?,
		family_id = ?, points = ?, tags = ?
		WHERE id = ?`,
		t.Title, t.Description, boolInt(t.Completed), timePtrString(t.CompletedAt),
		string(t.Status), int(t.Priority), timePtrString(t.DueDate),
		intPtr(t.AssignedTo), intPtr(t.FamilyID), t.Points, tagsJSON(t.Tags), t.ID)
	if err != nil {
		return model.Task{}, fmt.Errorf("update task %d: %w", t.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.Task{}, ErrNotFound
	}
	return r.Get(ctx, t.ID)
}

func (r *SQLiteRepo) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteRepo) Reorder(ctx context.Context, ids []int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for i, id := range ids {
		if _, err := tx.ExecContext(ctx,
			`UPDATE tasks SET position = ? WHERE id = ?`, i+1, id); err != nil {
			return fmt.Errorf("reorder task %d: %w", id, err)
		}
	}
	return tx.Commit()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
