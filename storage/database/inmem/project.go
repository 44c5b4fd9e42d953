package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/elearn360/backend/core"
	"github.com/elearn360/backend/core/project"
)

type projectRepository struct {
	db *projectTable
}

var _ project.Repository = (*projectRepository)(nil) // interface compliance check

func NewProjectRepository(db *DB) *projectRepository {
	return &projectRepository{db: db.projects}
}

func (repo *projectRepository) CreateProject(ctx context.Context, prj project.Project, tasks []project.Task, exec ...core.DBExecutor) (project.Project, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.store(prj)
	for _, tsk := range tasks {
		repo.storeTask(tsk)
	}
	return prj, nil
}

func (repo *projectRepository) store(prj project.Project) {
	cp := copyProject(prj)
	repo.db.projects[prj.ID] = &cp
	if _, ok := repo.db.order[prj.ID]; !ok {
		repo.db.seq++
		repo.db.order[prj.ID] = repo.db.seq
	}
}

func (repo *projectRepository) storeTask(tsk project.Task) {
	cp := copyTask(tsk)
	repo.db.tasks[tsk.ID] = &cp
	if _, ok := repo.db.order[tsk.ID]; !ok {
		repo.db.seq++
		repo.db.order[tsk.ID] = repo.db.seq
	}
}

func (repo *projectRepository) QueryProjects(ctx context.Context, filter *project.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]project.Project, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var prjs []project.Project
	for _, prj := range repo.db.projects {
		if matchProject(*prj, filter) {
			prjs = append(prjs, copyProject(*prj))
		}
	}
	repo.sortProjects(prjs, ordering)
	return prjs, nil
}

func matchProject(prj project.Project, filter *project.QueryFilter) bool {
	if filter == nil || filter.IsEmpty() {
		return true
	}
	if filter.Search != "" {
		needle := strings.ToLower(filter.Search)
		if !strings.Contains(strings.ToLower(prj.Name), needle) &&
			!strings.Contains(strings.ToLower(prj.Client), needle) &&
			!strings.Contains(strings.ToLower(prj.Description), needle) {
			return false
		}
	}
	if filter.Status != "" && prj.Status != filter.Status {
		return false
	}
	if filter.Client != "" && !strings.Contains(strings.ToLower(prj.Client), strings.ToLower(filter.Client)) {
		return false
	}
	if !filter.CreatedFrom.IsZero() && prj.CreatedAt.Before(filter.CreatedFrom) {
		return false
	}
	if !filter.CreatedTo.IsZero() && prj.CreatedAt.After(filter.CreatedTo) {
		return false
	}
	return true
}

// sortProjects defaults to newest first, matching the Postgres repository.
func (repo *projectRepository) sortProjects(prjs []project.Project, ordering []core.DBOrdering) {
	ord := core.DBOrdering{Field: "created_at", Ascending: false}
	if len(ordering) > 0 {
		ord = ordering[0]
	}
	sort.SliceStable(prjs, func(i, j int) bool {
		var less bool
		switch ord.Field {
		case "name":
			less = prjs[i].Name < prjs[j].Name
		case "end_date":
			less = prjs[i].EndDate.Before(prjs[j].EndDate)
		default: // created_at
			if prjs[i].CreatedAt.Equal(prjs[j].CreatedAt) {
				less = repo.db.order[prjs[i].ID] < repo.db.order[prjs[j].ID]
			} else {
				less = prjs[i].CreatedAt.Before(prjs[j].CreatedAt)
			}
		}
		if ord.Ascending {
			return less
		}
		return !less
	})
}

func (repo *projectRepository) GetProject(ctx context.Context, id string, exec ...core.DBExecutor) (project.Project, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if prj, ok := repo.db.projects[id]; ok {
		return copyProject(*prj), nil
	}
	return project.Project{}, project.ErrNotFound
}

func (repo *projectRepository) UpdateProject(ctx context.Context, prj project.Project, newTasks []project.Task, removedModules []string, exec ...core.DBExecutor) (project.Project, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.projects[prj.ID]; !ok {
		return project.Project{}, project.ErrNotFound
	}
	repo.store(prj)
	for _, tsk := range newTasks {
		repo.storeTask(tsk)
	}
	if len(removedModules) > 0 {
		removed := make(map[string]bool, len(removedModules))
		for _, modID := range removedModules {
			removed[modID] = true
		}
		for id, tsk := range repo.db.tasks {
			if tsk.ProjectID == prj.ID && removed[tsk.ModuleID] {
				delete(repo.db.tasks, id)
				delete(repo.db.order, id)
			}
		}
	}
	return prj, nil
}

func (repo *projectRepository) DeleteProject(ctx context.Context, id string, exec ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.projects[id]; !ok {
		return project.ErrNotFound
	}
	delete(repo.db.projects, id)
	delete(repo.db.order, id)
	for tskID, tsk := range repo.db.tasks {
		if tsk.ProjectID == id {
			delete(repo.db.tasks, tskID)
			delete(repo.db.order, tskID)
		}
	}
	return nil
}

func (repo *projectRepository) CountProjects(ctx context.Context, exec ...core.DBExecutor) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return len(repo.db.projects), nil
}

func (repo *projectRepository) CountProjectsByStatus(ctx context.Context, exec ...core.DBExecutor) (map[string]int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	counts := make(map[string]int)
	for _, prj := range repo.db.projects {
		counts[prj.Status]++
	}
	return counts, nil
}

// Tasks

func (repo *projectRepository) CreateTask(ctx context.Context, tsk project.Task, exec ...core.DBExecutor) (project.Task, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.storeTask(tsk)
	return tsk, nil
}

func (repo *projectRepository) QueryTasks(ctx context.Context, filter *project.TaskFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]project.Task, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var tasks []project.Task
	for _, tsk := range repo.db.tasks {
		if matchTask(*tsk, filter) {
			tasks = append(tasks, copyTask(*tsk))
		}
	}
	repo.sortTasks(tasks, ordering)
	return tasks, nil
}

func matchTask(tsk project.Task, filter *project.TaskFilter) bool {
	if filter == nil || filter.IsEmpty() {
		return true
	}
	if filter.ProjectID != "" && tsk.ProjectID != filter.ProjectID {
		return false
	}
	if filter.ModuleID != "" && tsk.ModuleID != filter.ModuleID {
		return false
	}
	if filter.Status != "" && tsk.Status != filter.Status {
		return false
	}
	if filter.Department != "" && tsk.Department != filter.Department {
		return false
	}
	if filter.AssigneeID != "" && tsk.AssigneeID != filter.AssigneeID {
		return false
	}
	if filter.Search != "" {
		needle := strings.ToLower(filter.Search)
		if !strings.Contains(strings.ToLower(tsk.Title), needle) &&
			!strings.Contains(strings.ToLower(tsk.Description), needle) {
			return false
		}
	}
	if !filter.DueFrom.IsZero() && (tsk.DueDate == nil || tsk.DueDate.Before(filter.DueFrom)) {
		return false
	}
	if !filter.DueTo.IsZero() && (tsk.DueDate == nil || tsk.DueDate.After(filter.DueTo)) {
		return false
	}
	return true
}

// sortTasks defaults to insertion order, matching the Postgres repository's
// created_at ASC default.
func (repo *projectRepository) sortTasks(tasks []project.Task, ordering []core.DBOrdering) {
	ord := core.DBOrdering{Field: "created_at", Ascending: true}
	if len(ordering) > 0 {
		ord = ordering[0]
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		var less bool
		switch ord.Field {
		case "title":
			less = tasks[i].Title < tasks[j].Title
		case "due_date":
			switch {
			case tasks[i].DueDate == nil:
				less = false
			case tasks[j].DueDate == nil:
				less = true
			default:
				less = tasks[i].DueDate.Before(*tasks[j].DueDate)
			}
		default: // created_at
			if tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
				less = repo.db.order[tasks[i].ID] < repo.db.order[tasks[j].ID]
			} else {
				less = tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
			}
		}
		if ord.Ascending {
			return less
		}
		return !less
	})
}

func (repo *projectRepository) GetTask(ctx context.Context, id string, exec ...core.DBExecutor) (project.Task, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if tsk, ok := repo.db.tasks[id]; ok {
		return copyTask(*tsk), nil
	}
	return project.Task{}, project.ErrTaskNotFound
}

func (repo *projectRepository) GetTaskByDeliverable(ctx context.Context, deliverableID string, exec ...core.DBExecutor) (project.Task, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, tsk := range repo.db.tasks {
		if _, ok := tsk.Deliverable(deliverableID); ok {
			return copyTask(*tsk), nil
		}
	}
	return project.Task{}, project.ErrDeliverableNotFound
}

func (repo *projectRepository) UpdateTask(ctx context.Context, tsk project.Task, exec ...core.DBExecutor) (project.Task, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.tasks[tsk.ID]; !ok {
		return project.Task{}, project.ErrTaskNotFound
	}
	repo.storeTask(tsk)
	return tsk, nil
}

func (repo *projectRepository) DeleteTask(ctx context.Context, id string, exec ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.tasks[id]; !ok {
		return project.ErrTaskNotFound
	}
	delete(repo.db.tasks, id)
	delete(repo.db.order, id)
	return nil
}

func (repo *projectRepository) CountTasks(ctx context.Context, exec ...core.DBExecutor) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return len(repo.db.tasks), nil
}

func (repo *projectRepository) CountTasksByStatus(ctx context.Context, filter *project.TaskFilter, exec ...core.DBExecutor) (map[string]int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	counts := make(map[string]int)
	for _, tsk := range repo.db.tasks {
		if matchTask(*tsk, filter) {
			counts[tsk.Status]++
		}
	}
	return counts, nil
}

func copyProject(prj project.Project) project.Project {
	cp := prj
	cp.Modules = append([]string(nil), prj.Modules...)
	if prj.ModuleCosts != nil {
		cp.ModuleCosts = make(map[string]float64, len(prj.ModuleCosts))
		for id, cost := range prj.ModuleCosts {
			cp.ModuleCosts[id] = cost
		}
	}
	return cp
}

func copyTask(tsk project.Task) project.Task {
	cp := tsk
	cp.Checklist = append([]project.ChecklistItem(nil), tsk.Checklist...)
	cp.Deliverables = make([]project.Deliverable, len(tsk.Deliverables))
	for i, dlv := range tsk.Deliverables {
		d := dlv
		if dlv.File != nil {
			file := *dlv.File
			d.File = &file
		}
		cp.Deliverables[i] = d
	}
	return cp
}
