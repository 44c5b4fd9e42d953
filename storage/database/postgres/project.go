package pgrepos

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/elearn360/backend/core"
	"github.com/elearn360/backend/core/project"
)

type projectRepository struct {
	db *sqlx.DB
}

var _ project.Repository = (*projectRepository)(nil) // interface compliance check

func NewProjectRepository(db *sqlx.DB) *projectRepository {
	return &projectRepository{db: db}
}

func (repo projectRepository) getExec(svcExec []core.DBExecutor) execer {
	if len(svcExec) > 0 {
		if ext, ok := svcExec[0].(execer); ok {
			return ext
		}
	}
	return repo.db
}

// inTx runs fn in the exec override when one is given (the caller owns the
// transaction then), otherwise in a fresh transaction.
func (repo projectRepository) inTx(ctx context.Context, svcExec []core.DBExecutor, fn func(ext execer) error) error {
	if len(svcExec) > 0 {
		return fn(repo.getExec(svcExec))
	}
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	if err = fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return errors.Wrap(tx.Commit(), "committing transaction")
}

// Projects

func (repo projectRepository) CreateProject(ctx context.Context, prj project.Project, tasks []project.Task, exec ...core.DBExecutor) (project.Project, error) {
	err := repo.inTx(ctx, exec, func(ext execer) error {
		doc, err := json.Marshal(prj)
		if err != nil {
			return errors.Wrap(err, "marshalling project")
		}
		q := ext.Rebind("INSERT INTO projects (id, doc) VALUES (?, ?)")
		if _, err = ext.ExecContext(ctx, q, prj.ID, doc); err != nil {
			return errors.Wrap(err, "inserting project")
		}
		return insertTasks(ctx, ext, tasks)
	})
	if err != nil {
		return project.Project{}, err
	}
	return prj, nil
}

func (repo projectRepository) QueryProjects(ctx context.Context, filter *project.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]project.Project, error) {
	ext := repo.getExec(exec)

	var conds []string
	var args []interface{}
	if filter != nil && !filter.IsEmpty() {
		if filter.Search != "" {
			conds = append(conds, "(lower(doc->>'name') LIKE ? OR lower(doc->>'client') LIKE ? OR lower(doc->>'description') LIKE ?)")
			needle := "%" + strings.ToLower(filter.Search) + "%"
			args = append(args, needle, needle, needle)
		}
		if filter.Status != "" {
			conds = append(conds, "doc->>'status' = ?")
			args = append(args, filter.Status)
		}
		if filter.Client != "" {
			conds = append(conds, "lower(doc->>'client') = ?")
			args = append(args, strings.ToLower(filter.Client))
		}
		if !filter.CreatedFrom.IsZero() {
			conds = append(conds, "(doc->>'created_at')::timestamptz >= ?")
			args = append(args, filter.CreatedFrom)
		}
		if !filter.CreatedTo.IsZero() {
			conds = append(conds, "(doc->>'created_at')::timestamptz <= ?")
			args = append(args, filter.CreatedTo)
		}
	}

	q := "SELECT doc FROM projects" + where(conds) + docOrderBy(ordering)
	rows, err := ext.QueryxContext(ctx, ext.Rebind(q), args...)
	if err != nil {
		return nil, errors.Wrap(err, "querying projects")
	}
	//goland:noinspection GoUnhandledErrorResult
	defer rows.Close()

	var prjs []project.Project
	for rows.Next() {
		var doc []byte
		if err = rows.Scan(&doc); err != nil {
			return nil, errors.Wrap(err, "scanning project")
		}
		var prj project.Project
		if err = json.Unmarshal(doc, &prj); err != nil {
			return nil, errors.Wrap(err, "unmarshalling project")
		}
		prjs = append(prjs, prj)
	}
	return prjs, errors.Wrap(rows.Err(), "querying projects")
}

func (repo projectRepository) GetProject(ctx context.Context, id string, exec ...core.DBExecutor) (project.Project, error) {
	ext := repo.getExec(exec)
	var doc []byte
	if err := ext.QueryRowxContext(ctx, ext.Rebind("SELECT doc FROM projects WHERE id = ?"), id).Scan(&doc); err != nil {
		if err == sql.ErrNoRows {
			return project.Project{}, project.ErrNotFound
		}
		return project.Project{}, errors.Wrap(err, "getting project")
	}
	var prj project.Project
	err := json.Unmarshal(doc, &prj)
	return prj, errors.Wrap(err, "unmarshalling project")
}

// UpdateProject replaces the stored project document, inserting newTasks and
// deleting the tasks of removedModules in the same transaction.
func (repo projectRepository) UpdateProject(ctx context.Context, prj project.Project, newTasks []project.Task, removedModules []string, exec ...core.DBExecutor) (project.Project, error) {
	err := repo.inTx(ctx, exec, func(ext execer) error {
		doc, err := json.Marshal(prj)
		if err != nil {
			return errors.Wrap(err, "marshalling project")
		}
		res, err := ext.ExecContext(ctx, ext.Rebind("UPDATE projects SET doc = ? WHERE id = ?"), doc, prj.ID)
		if err != nil {
			return errors.Wrap(err, "updating project")
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return project.ErrNotFound
		}

		if len(removedModules) > 0 {
			q, args, err := sqlx.In("DELETE FROM tasks WHERE project_id = ? AND module_id IN (?)", prj.ID, removedModules)
			if err != nil {
				return errors.Wrap(err, "building task delete query")
			}
			if _, err = ext.ExecContext(ctx, ext.Rebind(q), args...); err != nil {
				return errors.Wrap(err, "deleting removed module tasks")
			}
		}
		return insertTasks(ctx, ext, newTasks)
	})
	if err != nil {
		return project.Project{}, err
	}
	return prj, nil
}

// DeleteProject removes the project; tasks cascade through the foreign key.
func (repo projectRepository) DeleteProject(ctx context.Context, id string, exec ...core.DBExecutor) error {
	ext := repo.getExec(exec)
	res, err := ext.ExecContext(ctx, ext.Rebind("DELETE FROM projects WHERE id = ?"), id)
	if err != nil {
		return errors.Wrap(err, "deleting project")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return project.ErrNotFound
	}
	return nil
}

func (repo projectRepository) CountProjects(ctx context.Context, exec ...core.DBExecutor) (int, error) {
	ext := repo.getExec(exec)
	var count int
	err := ext.QueryRowxContext(ctx, "SELECT count(*) FROM projects").Scan(&count)
	return count, errors.Wrap(err, "counting projects")
}

func (repo projectRepository) CountProjectsByStatus(ctx context.Context, exec ...core.DBExecutor) (map[string]int, error) {
	ext := repo.getExec(exec)
	rows, err := ext.QueryxContext(ctx, "SELECT doc->>'status', count(*) FROM projects GROUP BY 1")
	if err != nil {
		return nil, errors.Wrap(err, "counting projects by status")
	}
	return scanStatusCounts(rows)
}

// Tasks

func (repo projectRepository) CreateTask(ctx context.Context, tsk project.Task, exec ...core.DBExecutor) (project.Task, error) {
	ext := repo.getExec(exec)
	if err := insertTasks(ctx, ext, []project.Task{tsk}); err != nil {
		return project.Task{}, err
	}
	return tsk, nil
}

func (repo projectRepository) QueryTasks(ctx context.Context, filter *project.TaskFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]project.Task, error) {
	ext := repo.getExec(exec)

	var conds []string
	var args []interface{}
	if filter != nil && !filter.IsEmpty() {
		if filter.ProjectID != "" {
			conds = append(conds, "project_id = ?")
			args = append(args, filter.ProjectID)
		}
		if filter.ModuleID != "" {
			conds = append(conds, "module_id = ?")
			args = append(args, filter.ModuleID)
		}
		if filter.Status != "" {
			conds = append(conds, "doc->>'status' = ?")
			args = append(args, filter.Status)
		}
		if filter.Department != "" {
			conds = append(conds, "doc->>'department' = ?")
			args = append(args, filter.Department)
		}
		if filter.AssigneeID != "" {
			conds = append(conds, "doc->>'assignee_id' = ?")
			args = append(args, filter.AssigneeID)
		}
		if filter.Search != "" {
			conds = append(conds, "(lower(doc->>'title') LIKE ? OR lower(doc->>'description') LIKE ?)")
			needle := "%" + strings.ToLower(filter.Search) + "%"
			args = append(args, needle, needle)
		}
		if !filter.DueFrom.IsZero() {
			conds = append(conds, "(doc->>'due_date')::timestamptz >= ?")
			args = append(args, filter.DueFrom)
		}
		if !filter.DueTo.IsZero() {
			conds = append(conds, "(doc->>'due_date')::timestamptz <= ?")
			args = append(args, filter.DueTo)
		}
	}

	q := "SELECT doc FROM tasks" + where(conds) + docOrderBy(ordering)
	rows, err := ext.QueryxContext(ctx, ext.Rebind(q), args...)
	if err != nil {
		return nil, errors.Wrap(err, "querying tasks")
	}
	//goland:noinspection GoUnhandledErrorResult
	defer rows.Close()

	var tasks []project.Task
	for rows.Next() {
		var doc []byte
		if err = rows.Scan(&doc); err != nil {
			return nil, errors.Wrap(err, "scanning task")
		}
		var tsk project.Task
		if err = json.Unmarshal(doc, &tsk); err != nil {
			return nil, errors.Wrap(err, "unmarshalling task")
		}
		tasks = append(tasks, tsk)
	}
	return tasks, errors.Wrap(rows.Err(), "querying tasks")
}

func (repo projectRepository) GetTask(ctx context.Context, id string, exec ...core.DBExecutor) (project.Task, error) {
	ext := repo.getExec(exec)
	var doc []byte
	if err := ext.QueryRowxContext(ctx, ext.Rebind("SELECT doc FROM tasks WHERE id = ?"), id).Scan(&doc); err != nil {
		if err == sql.ErrNoRows {
			return project.Task{}, project.ErrTaskNotFound
		}
		return project.Task{}, errors.Wrap(err, "getting task")
	}
	var tsk project.Task
	err := json.Unmarshal(doc, &tsk)
	return tsk, errors.Wrap(err, "unmarshalling task")
}

// GetTaskByDeliverable returns the task embedding the deliverable with the
// given ID, via a jsonb containment match on the embedded array.
func (repo projectRepository) GetTaskByDeliverable(ctx context.Context, deliverableID string, exec ...core.DBExecutor) (project.Task, error) {
	ext := repo.getExec(exec)
	needle := fmt.Sprintf(`[{"id": %q}]`, deliverableID)
	var doc []byte
	err := ext.QueryRowxContext(ctx, ext.Rebind("SELECT doc FROM tasks WHERE doc->'deliverables' @> ?::jsonb"), needle).Scan(&doc)
	if err != nil {
		if err == sql.ErrNoRows {
			return project.Task{}, project.ErrDeliverableNotFound
		}
		return project.Task{}, errors.Wrap(err, "getting task by deliverable")
	}
	var tsk project.Task
	err = json.Unmarshal(doc, &tsk)
	return tsk, errors.Wrap(err, "unmarshalling task")
}

// UpdateTask replaces the stored task document.
func (repo projectRepository) UpdateTask(ctx context.Context, tsk project.Task, exec ...core.DBExecutor) (project.Task, error) {
	ext := repo.getExec(exec)
	doc, err := json.Marshal(tsk)
	if err != nil {
		return project.Task{}, errors.Wrap(err, "marshalling task")
	}
	res, err := ext.ExecContext(ctx, ext.Rebind("UPDATE tasks SET module_id = ?, doc = ? WHERE id = ?"), tsk.ModuleID, doc, tsk.ID)
	if err != nil {
		return project.Task{}, errors.Wrap(err, "updating task")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return project.Task{}, project.ErrTaskNotFound
	}
	return tsk, nil
}

func (repo projectRepository) DeleteTask(ctx context.Context, id string, exec ...core.DBExecutor) error {
	ext := repo.getExec(exec)
	res, err := ext.ExecContext(ctx, ext.Rebind("DELETE FROM tasks WHERE id = ?"), id)
	if err != nil {
		return errors.Wrap(err, "deleting task")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return project.ErrTaskNotFound
	}
	return nil
}

func (repo projectRepository) CountTasks(ctx context.Context, exec ...core.DBExecutor) (int, error) {
	ext := repo.getExec(exec)
	var count int
	err := ext.QueryRowxContext(ctx, "SELECT count(*) FROM tasks").Scan(&count)
	return count, errors.Wrap(err, "counting tasks")
}

func (repo projectRepository) CountTasksByStatus(ctx context.Context, filter *project.TaskFilter, exec ...core.DBExecutor) (map[string]int, error) {
	ext := repo.getExec(exec)

	var conds []string
	var args []interface{}
	if filter != nil {
		if filter.ProjectID != "" {
			conds = append(conds, "project_id = ?")
			args = append(args, filter.ProjectID)
		}
		if filter.AssigneeID != "" {
			conds = append(conds, "doc->>'assignee_id' = ?")
			args = append(args, filter.AssigneeID)
		}
	}
	q := "SELECT doc->>'status', count(*) FROM tasks" + where(conds) + " GROUP BY 1"
	rows, err := ext.QueryxContext(ctx, ext.Rebind(q), args...)
	if err != nil {
		return nil, errors.Wrap(err, "counting tasks by status")
	}
	return scanStatusCounts(rows)
}

// Helpers

func insertTasks(ctx context.Context, ext execer, tasks []project.Task) error {
	for _, tsk := range tasks {
		doc, err := json.Marshal(tsk)
		if err != nil {
			return errors.Wrap(err, "marshalling task")
		}
		q := ext.Rebind("INSERT INTO tasks (id, project_id, module_id, doc) VALUES (?, ?, ?, ?)")
		if _, err = ext.ExecContext(ctx, q, tsk.ID, tsk.ProjectID, tsk.ModuleID, doc); err != nil {
			return errors.Wrap(err, "inserting task")
		}
	}
	return nil
}

func scanStatusCounts(rows *sqlx.Rows) (map[string]int, error) {
	//goland:noinspection GoUnhandledErrorResult
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, errors.Wrap(err, "scanning status count")
		}
		counts[status] = count
	}
	return counts, errors.Wrap(rows.Err(), "scanning status counts")
}
