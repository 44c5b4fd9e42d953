package project

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/elearn360/backend/core"
	"github.com/elearn360/backend/core/catalog"
	"github.com/elearn360/backend/core/user"
)

var (
	// errors
	ErrNotFound            = errors.New("project not found")
	ErrTaskNotFound        = errors.New("task not found")
	ErrItemNotFound        = errors.New("checklist item not found")
	ErrDeliverableNotFound = errors.New("deliverable not found")
	ErrDeliverableNoFile   = errors.New("deliverable has no uploaded file")
	ErrNotSubmittable      = errors.New("only pending deliverables can be submitted for review")
)

// recent project count on the dashboard
const recentProjects = 5

type (
	Repository interface {
		// CreateProject persists the project and its expanded tasks in one
		// transaction.
		CreateProject(ctx context.Context, prj Project, tasks []Task, exec ...core.DBExecutor) (Project, error)
		QueryProjects(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Project, error)
		GetProject(ctx context.Context, id string, exec ...core.DBExecutor) (Project, error)
		// UpdateProject replaces the stored project document, inserting
		// newTasks and deleting the tasks of removedModules in the same
		// transaction.
		UpdateProject(ctx context.Context, prj Project, newTasks []Task, removedModules []string, exec ...core.DBExecutor) (Project, error)
		// DeleteProject removes the project and cascades to its tasks.
		DeleteProject(ctx context.Context, id string, exec ...core.DBExecutor) error
		CountProjects(ctx context.Context, exec ...core.DBExecutor) (int, error)
		CountProjectsByStatus(ctx context.Context, exec ...core.DBExecutor) (map[string]int, error)

		CreateTask(ctx context.Context, tsk Task, exec ...core.DBExecutor) (Task, error)
		QueryTasks(ctx context.Context, filter *TaskFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Task, error)
		GetTask(ctx context.Context, id string, exec ...core.DBExecutor) (Task, error)
		// GetTaskByDeliverable returns the task embedding the deliverable
		// with the given ID.
		GetTaskByDeliverable(ctx context.Context, deliverableID string, exec ...core.DBExecutor) (Task, error)
		// UpdateTask replaces the stored task document.
		UpdateTask(ctx context.Context, tsk Task, exec ...core.DBExecutor) (Task, error)
		DeleteTask(ctx context.Context, id string, exec ...core.DBExecutor) error
		CountTasks(ctx context.Context, exec ...core.DBExecutor) (int, error)
		CountTasksByStatus(ctx context.Context, filter *TaskFilter, exec ...core.DBExecutor) (map[string]int, error)
	}

	// UserStore provides the user and department lookups task writes need.
	// Implemented by the user service.
	UserStore interface {
		GetByID(id string) (user.User, error)
		DepartmentExists(id string) (bool, error)
	}

	// CatalogStore provides published catalog versions for template
	// expansion. Implemented by the catalog service.
	CatalogStore interface {
		Current() (catalog.Catalog, error)
		Version(n int) (catalog.Catalog, error)
	}

	Service interface {
		Create(np NewProject, actorID string) (CreateResult, error)
		Query(filter *QueryFilter, ordering []core.DBOrdering) ([]Overview, error)
		GetByID(id string) (Project, error)
		Detail(id string) (Detail, error)
		Update(id string, up UpdateProject, actorID string) (Project, error)
		Delete(id string) error
		Count() (int, error)
		ModuleInUse(moduleID string) (bool, error)
		Stats(userID string) (Stats, error)

		ProjectTasks(projectID string) ([]Task, error)
		QueryTasks(filter *TaskFilter, ordering []core.DBOrdering) ([]Task, error)
		GetTask(id string) (Task, error)
		AddTask(projectID string, nt NewTask, actorID string) (Task, error)
		UpdateTask(id string, ut UpdateTask, actorID string) (Task, error)
		DeleteTask(id string) error
		CountTasks() (int, error)

		AddChecklistItem(taskID string, ni NewChecklistItem) (ChecklistItem, error)
		ToggleChecklistItem(taskID, itemID string) (ChecklistItem, error)
		RemoveChecklistItem(taskID, itemID string) error

		AddDeliverable(taskID string, nd NewDeliverable) (Deliverable, error)
		UpdateDeliverable(id string, ud UpdateDeliverable) (Deliverable, error)
		DeleteDeliverable(id string) error
		UploadDeliverableFile(id string, up FileUpload, actorID string) (Deliverable, error)
		SubmitDeliverable(id, actorID string) (Deliverable, error)
		ReviewDeliverable(id string, rv ReviewInput, actorID string) (Deliverable, error)
	}

	service struct {
		repo     Repository
		users    UserStore
		catStore CatalogStore
		storage  core.FileStorage
		bus      *core.Bus
	}
)

var _ Service = (*service)(nil) // interface compliance check

func NewService(repo Repository, users UserStore, catStore CatalogStore, storage core.FileStorage, bus *core.Bus) Service {
	return &service{
		repo:     repo,
		users:    users,
		catStore: catStore,
		storage:  storage,
		bus:      bus,
	}
}

// Operation results and read models.

type (
	CreateResult struct {
		Project       Project        `json:"project"`
		TasksCreated  int            `json:"tasks_created"`
		TasksByModule map[string]int `json:"tasks_by_module"`
	}

	Overview struct {
		Project
		Progress Progress `json:"progress"`
	}

	// ModuleGroup is one catalog module's slice of a project, as shown on
	// the project detail view. A group with an empty ID collects manual
	// tasks created outside template expansion.
	ModuleGroup struct {
		ID       string   `json:"id,omitempty"`
		Name     string   `json:"name,omitempty"`
		Icon     string   `json:"icon,omitempty"`
		Color    string   `json:"color,omitempty"`
		Cost     float64  `json:"cost,omitempty"`
		Progress Progress `json:"progress"`
		Tasks    []Task   `json:"tasks"`
	}

	Detail struct {
		Project  Project         `json:"project"`
		Progress ProjectProgress `json:"progress"`
		Modules  []ModuleGroup   `json:"modules"`
	}

	Stats struct {
		Projects map[string]int `json:"projects"`
		Tasks    map[string]int `json:"tasks"`
		MyTasks  map[string]int `json:"my_tasks"`
		Recent   []Project      `json:"recent_projects"`
	}
)

// Create instantiates a project from the current catalog version: every
// selected module's task templates become live tasks with fresh IDs. Any
// validation failure rejects the whole request; nothing is persisted.
func (svc *service) Create(np NewProject, actorID string) (CreateResult, error) {
	ctx := context.Background()

	cat, err := svc.catStore.Current()
	if err != nil && errors.Cause(err) != catalog.ErrNotFound {
		return CreateResult{}, err
	}
	// a missing catalog behaves as an empty one; every module ID is unknown

	mods, err := resolveModules(cat, np.Modules)
	if err != nil {
		return CreateResult{}, err
	}

	billing := np.BillingMode
	if billing == "" {
		billing = BillingPerModule
	}
	costs := np.ModuleCosts
	total := np.TotalCost
	if billing == BillingFixed {
		if total <= 0 {
			return CreateResult{}, core.NewValidationError(nil,
				core.FieldError{Field: "total_cost", Error: "this field is required in fixed billing mode"})
		}
		// ModuleCosts are advisory in fixed mode; kept as provided
	} else {
		if costs, err = figureModuleCosts(np.ModuleCosts, mods); err != nil {
			return CreateResult{}, err
		}
		total = sumCosts(costs)
	}

	now := time.Now().UTC()
	prj := Project{
		ID:             uuid.New().String(),
		Name:           np.Name,
		Client:         np.Client,
		Description:    np.Description,
		StartDate:      np.StartDate,
		EndDate:        np.EndDate,
		Status:         StatusActive,
		BillingMode:    billing,
		TotalCost:      total,
		EnrollmentFee:  np.EnrollmentFee,
		Modules:        np.Modules,
		ModuleCosts:    costs,
		CatalogVersion: cat.Version,
		CreatedBy:      actorID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	var tasks []Task
	byModule := make(map[string]int, len(mods))
	for _, mod := range mods {
		expanded := expandModule(prj, mod, now)
		byModule[mod.ID] = len(expanded)
		tasks = append(tasks, expanded...)
	}

	if prj, err = svc.repo.CreateProject(ctx, prj, tasks); err != nil {
		return CreateResult{}, err
	}

	svc.bus.Publish(core.Event{
		Kind:      core.EventProjectCreated,
		Ref:       prj.ID,
		ProjectID: prj.ID,
		ActorID:   actorID,
		Title:     "Nuevo Proyecto Creado",
		Body:      fmt.Sprintf("Se ha creado el proyecto '%s' para %s", prj.Name, prj.Client),
	})

	return CreateResult{Project: prj, TasksCreated: len(tasks), TasksByModule: byModule}, nil
}

func (svc *service) Query(filter *QueryFilter, ordering []core.DBOrdering) ([]Overview, error) {
	ctx := context.Background()
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "created_at"}} // newest first
	}
	prjs, err := svc.repo.QueryProjects(ctx, filter, ordering)
	if err != nil {
		return nil, err
	}

	overviews := make([]Overview, 0, len(prjs))
	for _, prj := range prjs {
		tasks, err := svc.repo.QueryTasks(ctx, &TaskFilter{ProjectID: prj.ID}, nil)
		if err != nil {
			return nil, err
		}
		overviews = append(overviews, Overview{Project: prj, Progress: ComputeProgress(tasks).Overall})
	}
	return overviews, nil
}

func (svc *service) GetByID(id string) (Project, error) {
	return svc.repo.GetProject(context.Background(), id)
}

// Detail returns the project with its tasks grouped per module and a fresh
// progress breakdown.
func (svc *service) Detail(id string) (Detail, error) {
	ctx := context.Background()
	prj, err := svc.repo.GetProject(ctx, id)
	if err != nil {
		return Detail{}, err
	}
	tasks, err := svc.repo.QueryTasks(ctx, &TaskFilter{ProjectID: prj.ID}, nil)
	if err != nil {
		return Detail{}, err
	}
	cat, err := svc.projectCatalog(prj)
	if err != nil {
		return Detail{}, err
	}

	prog := ComputeProgress(tasks)
	det := Detail{Project: prj, Progress: prog, Modules: make([]ModuleGroup, 0, len(prj.Modules)+1)}
	for _, modID := range prj.Modules {
		grp := ModuleGroup{
			ID:       modID,
			Cost:     prj.ModuleCosts[modID],
			Progress: prog.PerModule[modID],
			Tasks:    []Task{},
		}
		if mod, ok := cat.Module(modID); ok {
			grp.Name, grp.Icon, grp.Color = mod.Name, mod.Icon, mod.Color
		}
		for _, tsk := range tasks {
			if tsk.ModuleID == modID {
				grp.Tasks = append(grp.Tasks, tsk)
			}
		}
		det.Modules = append(det.Modules, grp)
	}

	var manual []Task
	for _, tsk := range tasks {
		if tsk.ModuleID == "" {
			manual = append(manual, tsk)
		}
	}
	if len(manual) > 0 {
		det.Modules = append(det.Modules, ModuleGroup{Progress: prog.PerModule[""], Tasks: manual})
	}
	return det, nil
}

func (svc *service) Update(id string, up UpdateProject, actorID string) (Project, error) {
	ctx := context.Background()
	prj, err := svc.repo.GetProject(ctx, id)
	if err != nil {
		return Project{}, err
	}

	if up.Name != "" {
		prj.Name = up.Name
	}
	if up.Client != "" {
		prj.Client = up.Client
	}
	if up.Description != "" {
		prj.Description = up.Description
	}
	if up.StartDate != nil {
		prj.StartDate = *up.StartDate
	}
	if up.EndDate != nil {
		prj.EndDate = *up.EndDate
	}
	if up.Status != "" {
		prj.Status = up.Status
	}
	if up.BillingMode != "" {
		prj.BillingMode = up.BillingMode
	}
	if up.TotalCost != nil {
		prj.TotalCost = *up.TotalCost
	}
	if up.EnrollmentFee != nil {
		prj.EnrollmentFee = *up.EnrollmentFee
	}
	if prj.EndDate.Before(prj.StartDate) {
		return Project{}, core.NewValidationError(nil,
			core.FieldError{Field: "end_date", Error: "must not be before start_date"})
	}

	cat, err := svc.projectCatalog(prj)
	if err != nil {
		return Project{}, err
	}

	// Module changes: added modules are expanded from the project's stamped
	// catalog version, removed modules drop their cost entries and tasks in
	// the same write.
	var (
		newTasks       []Task
		removedModules []string
		removedFiles   []string
	)
	now := time.Now().UTC()
	if up.Modules != nil {
		requested := *up.Modules
		if len(requested) == 0 {
			return Project{}, core.NewValidationError(nil,
				core.FieldError{Field: "modules", Error: "this field is required"})
		}
		selected := make(map[string]bool, len(requested))
		for _, modID := range requested {
			if selected[modID] {
				return Project{}, core.NewValidationError(nil,
					core.FieldError{Field: "modules", Error: fmt.Sprintf("duplicate module id: %s", modID)})
			}
			if _, ok := cat.Module(modID); !ok {
				return Project{}, core.NewValidationError(nil,
					core.FieldError{Field: "modules", Error: fmt.Sprintf("unknown module id: %s", modID)})
			}
			selected[modID] = true
		}

		current := make(map[string]bool, len(prj.Modules))
		for _, modID := range prj.Modules {
			current[modID] = true
		}
		if prj.ModuleCosts == nil {
			prj.ModuleCosts = make(map[string]float64, len(requested))
		}
		for _, modID := range requested {
			if current[modID] {
				continue
			}
			mod, _ := cat.Module(modID)
			newTasks = append(newTasks, expandModule(prj, mod, now)...)
			if _, ok := prj.ModuleCosts[modID]; !ok {
				prj.ModuleCosts[modID] = mod.DefaultCost
			}
		}
		for _, modID := range prj.Modules {
			if selected[modID] {
				continue
			}
			removedModules = append(removedModules, modID)
			delete(prj.ModuleCosts, modID)

			dropped, err := svc.repo.QueryTasks(ctx, &TaskFilter{ProjectID: prj.ID, ModuleID: modID}, nil)
			if err != nil {
				return Project{}, err
			}
			removedFiles = append(removedFiles, taskFilePaths(dropped)...)
		}
		prj.Modules = requested
	}

	if len(up.ModuleCosts) > 0 {
		current := make(map[string]bool, len(prj.Modules))
		for _, modID := range prj.Modules {
			current[modID] = true
		}
		if prj.ModuleCosts == nil {
			prj.ModuleCosts = make(map[string]float64, len(up.ModuleCosts))
		}
		for modID, cost := range up.ModuleCosts {
			if !current[modID] {
				return Project{}, core.NewValidationError(nil,
					core.FieldError{Field: "module_costs", Error: fmt.Sprintf("unknown module id: %s", modID)})
			}
			if cost < 0 {
				return Project{}, core.NewValidationError(nil,
					core.FieldError{Field: "module_costs", Error: "cost must not be negative"})
			}
			prj.ModuleCosts[modID] = cost
		}
	}

	if prj.BillingMode == BillingFixed {
		if prj.TotalCost <= 0 {
			return Project{}, core.NewValidationError(nil,
				core.FieldError{Field: "total_cost", Error: "this field is required in fixed billing mode"})
		}
	} else {
		// per_module keeps TotalCost in lockstep with the cost entries
		if prj.ModuleCosts == nil {
			prj.ModuleCosts = make(map[string]float64, len(prj.Modules))
		}
		for _, modID := range prj.Modules {
			if _, ok := prj.ModuleCosts[modID]; !ok {
				if mod, ok := cat.Module(modID); ok {
					prj.ModuleCosts[modID] = mod.DefaultCost
				} else {
					prj.ModuleCosts[modID] = 0
				}
			}
		}
		prj.TotalCost = sumCosts(prj.ModuleCosts)
	}

	prj.UpdatedAt = now
	if prj, err = svc.repo.UpdateProject(ctx, prj, newTasks, removedModules); err != nil {
		return Project{}, err
	}
	svc.removeFiles(removedFiles)
	return prj, nil
}

// Delete removes the project, its tasks and their stored deliverable files.
func (svc *service) Delete(id string) error {
	ctx := context.Background()
	tasks, err := svc.repo.QueryTasks(ctx, &TaskFilter{ProjectID: id}, nil)
	if err != nil {
		return err
	}
	if err = svc.repo.DeleteProject(ctx, id); err != nil {
		return err
	}
	svc.removeFiles(taskFilePaths(tasks))
	return nil
}

func (svc *service) Count() (int, error) {
	return svc.repo.CountProjects(context.Background())
}

// ModuleInUse reports whether any project still references the catalog
// module. The catalog service consults it before deleting a module.
func (svc *service) ModuleInUse(moduleID string) (bool, error) {
	prjs, err := svc.repo.QueryProjects(context.Background(), nil, nil)
	if err != nil {
		return false, err
	}
	for _, prj := range prjs {
		for _, modID := range prj.Modules {
			if modID == moduleID {
				return true, nil
			}
		}
	}
	return false, nil
}

func (svc *service) Stats(userID string) (Stats, error) {
	ctx := context.Background()
	prjCounts, err := svc.repo.CountProjectsByStatus(ctx)
	if err != nil {
		return Stats{}, err
	}
	taskCounts, err := svc.repo.CountTasksByStatus(ctx, nil)
	if err != nil {
		return Stats{}, err
	}
	myCounts, err := svc.repo.CountTasksByStatus(ctx, &TaskFilter{AssigneeID: userID})
	if err != nil {
		return Stats{}, err
	}
	recent, err := svc.repo.QueryProjects(ctx, nil, []core.DBOrdering{{Field: "created_at"}})
	if err != nil {
		return Stats{}, err
	}
	if len(recent) > recentProjects {
		recent = recent[:recentProjects]
	}
	return Stats{
		Projects: statusCounts(prjCounts, StatusActive, StatusCompleted, StatusOnHold, StatusCancelled),
		Tasks:    statusCounts(taskCounts, TaskPending, TaskInProgress, TaskCompleted),
		MyTasks:  statusCounts(myCounts, TaskPending, TaskInProgress, TaskCompleted),
		Recent:   recent,
	}, nil
}

// Task operations.

func (svc *service) ProjectTasks(projectID string) ([]Task, error) {
	ctx := context.Background()
	if _, err := svc.repo.GetProject(ctx, projectID); err != nil {
		return nil, err
	}
	return svc.repo.QueryTasks(ctx, &TaskFilter{ProjectID: projectID}, nil)
}

func (svc *service) QueryTasks(filter *TaskFilter, ordering []core.DBOrdering) ([]Task, error) {
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "created_at", Ascending: true}}
	}
	return svc.repo.QueryTasks(context.Background(), filter, ordering)
}

func (svc *service) GetTask(id string) (Task, error) {
	return svc.repo.GetTask(context.Background(), id)
}

// AddTask appends a manual task to a project, outside template expansion.
func (svc *service) AddTask(projectID string, nt NewTask, actorID string) (Task, error) {
	ctx := context.Background()
	prj, err := svc.repo.GetProject(ctx, projectID)
	if err != nil {
		return Task{}, err
	}
	if nt.ModuleID != "" && !contains(prj.Modules, nt.ModuleID) {
		return Task{}, core.NewValidationError(nil,
			core.FieldError{Field: "module_id", Error: "module is not part of this project"})
	}
	if err = svc.checkDepartment(nt.Department); err != nil {
		return Task{}, err
	}
	if err = svc.checkAssignee(nt.AssigneeID, nt.Department); err != nil {
		return Task{}, err
	}

	now := time.Now().UTC()
	tsk := Task{
		ID:           uuid.New().String(),
		ProjectID:    prj.ID,
		ModuleID:     nt.ModuleID,
		Title:        nt.Title,
		Description:  nt.Description,
		Status:       TaskPending,
		DueDate:      nt.DueDate,
		Department:   nt.Department,
		AssigneeID:   nt.AssigneeID,
		Checklist:    make([]ChecklistItem, 0, len(nt.Checklist)),
		Deliverables: make([]Deliverable, 0, len(nt.Deliverables)),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	for _, text := range nt.Checklist {
		tsk.Checklist = append(tsk.Checklist, ChecklistItem{ID: uuid.New().String(), Text: text})
	}
	for _, name := range nt.Deliverables {
		tsk.Deliverables = append(tsk.Deliverables, Deliverable{
			ID:        uuid.New().String(),
			TaskID:    tsk.ID,
			Name:      name,
			Status:    DeliverablePending,
			DueDate:   nt.DueDate,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}

	if tsk, err = svc.repo.CreateTask(ctx, tsk); err != nil {
		return Task{}, err
	}
	if tsk.AssigneeID != "" {
		svc.notifyAssigned(tsk, actorID)
	}
	return tsk, nil
}

func (svc *service) UpdateTask(id string, ut UpdateTask, actorID string) (Task, error) {
	ctx := context.Background()
	tsk, err := svc.repo.GetTask(ctx, id)
	if err != nil {
		return Task{}, err
	}

	if ut.Title != "" {
		tsk.Title = ut.Title
	}
	if ut.Description != "" {
		tsk.Description = ut.Description
	}
	if ut.DueDate != nil {
		tsk.DueDate = ut.DueDate
	}
	if ut.Department != "" {
		if err = svc.checkDepartment(ut.Department); err != nil {
			return Task{}, err
		}
		tsk.Department = ut.Department
	}
	prevStatus := tsk.Status
	if ut.Status != "" {
		tsk.Status = ut.Status
	}
	prevAssignee := tsk.AssigneeID
	if ut.AssigneeID != nil {
		tsk.AssigneeID = *ut.AssigneeID
	}
	if err = svc.checkAssignee(tsk.AssigneeID, tsk.Department); err != nil {
		return Task{}, err
	}

	tsk.UpdatedAt = time.Now().UTC()
	if tsk, err = svc.repo.UpdateTask(ctx, tsk); err != nil {
		return Task{}, err
	}

	if tsk.AssigneeID != "" && tsk.AssigneeID != prevAssignee {
		svc.notifyAssigned(tsk, actorID)
	}
	if tsk.Status != prevStatus {
		svc.bus.Publish(core.Event{
			Kind:      core.EventTaskStatusChanged,
			Ref:       tsk.ID,
			ProjectID: tsk.ProjectID,
			ActorID:   actorID,
			TargetID:  tsk.AssigneeID,
			Title:     tsk.Title,
			Body:      tsk.Status,
		})
	}
	return tsk, nil
}

func (svc *service) DeleteTask(id string) error {
	ctx := context.Background()
	tsk, err := svc.repo.GetTask(ctx, id)
	if err != nil {
		return err
	}
	if err = svc.repo.DeleteTask(ctx, tsk.ID); err != nil {
		return err
	}
	svc.removeFiles(taskFilePaths([]Task{tsk}))
	return nil
}

func (svc *service) CountTasks() (int, error) {
	return svc.repo.CountTasks(context.Background())
}

// Checklist operations mutate one item at a time; the API never replaces
// the whole list, so concurrent edits cannot silently drop each other.

func (svc *service) AddChecklistItem(taskID string, ni NewChecklistItem) (ChecklistItem, error) {
	ctx := context.Background()
	tsk, err := svc.repo.GetTask(ctx, taskID)
	if err != nil {
		return ChecklistItem{}, err
	}
	item := ChecklistItem{ID: uuid.New().String(), Text: ni.Text}
	tsk.Checklist = append(tsk.Checklist, item)
	tsk.UpdatedAt = time.Now().UTC()
	if _, err = svc.repo.UpdateTask(ctx, tsk); err != nil {
		return ChecklistItem{}, err
	}
	return item, nil
}

func (svc *service) ToggleChecklistItem(taskID, itemID string) (ChecklistItem, error) {
	ctx := context.Background()
	tsk, err := svc.repo.GetTask(ctx, taskID)
	if err != nil {
		return ChecklistItem{}, err
	}
	for i := range tsk.Checklist {
		if tsk.Checklist[i].ID != itemID {
			continue
		}
		tsk.Checklist[i].Completed = !tsk.Checklist[i].Completed
		tsk.UpdatedAt = time.Now().UTC()
		if _, err = svc.repo.UpdateTask(ctx, tsk); err != nil {
			return ChecklistItem{}, err
		}
		return tsk.Checklist[i], nil
	}
	return ChecklistItem{}, ErrItemNotFound
}

func (svc *service) RemoveChecklistItem(taskID, itemID string) error {
	ctx := context.Background()
	tsk, err := svc.repo.GetTask(ctx, taskID)
	if err != nil {
		return err
	}
	for i := range tsk.Checklist {
		if tsk.Checklist[i].ID != itemID {
			continue
		}
		tsk.Checklist = append(tsk.Checklist[:i], tsk.Checklist[i+1:]...)
		tsk.UpdatedAt = time.Now().UTC()
		_, err = svc.repo.UpdateTask(ctx, tsk)
		return err
	}
	return ErrItemNotFound
}

// Helpers.

func (svc *service) checkDepartment(id string) error {
	if id == "" {
		return nil
	}
	ok, err := svc.users.DepartmentExists(id)
	if err != nil {
		return err
	}
	if !ok {
		return core.NewValidationError(nil, core.FieldError{Field: "department", Error: "department not found"})
	}
	return nil
}

// checkAssignee enforces that an assignee belongs to the task's department
// when both are set.
func (svc *service) checkAssignee(assigneeID, department string) error {
	if assigneeID == "" {
		return nil
	}
	usr, err := svc.users.GetByID(assigneeID)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return core.NewValidationError(err, core.FieldError{Field: "assignee_id", Error: "user not found"})
		}
		return err
	}
	if department != "" && usr.Department != department {
		return core.NewValidationError(nil,
			core.FieldError{Field: "assignee_id", Error: "assignee must belong to the task's department"})
	}
	return nil
}

// projectCatalog resolves the catalog version the project was expanded
// from, falling back to the current version when the stamped one is gone.
func (svc *service) projectCatalog(prj Project) (catalog.Catalog, error) {
	cat, err := svc.catStore.Version(prj.CatalogVersion)
	if err == nil {
		return cat, nil
	}
	if errors.Cause(err) != catalog.ErrNotFound {
		return catalog.Catalog{}, err
	}
	cat, err = svc.catStore.Current()
	if err != nil && errors.Cause(err) != catalog.ErrNotFound {
		return catalog.Catalog{}, err
	}
	return cat, nil
}

func (svc *service) notifyAssigned(tsk Task, actorID string) {
	svc.bus.Publish(core.Event{
		Kind:      core.EventTaskAssigned,
		Ref:       tsk.ID,
		ProjectID: tsk.ProjectID,
		ActorID:   actorID,
		TargetID:  tsk.AssigneeID,
		Title:     "Tarea Asignada",
		Body:      fmt.Sprintf("Se te ha asignado la tarea '%s'", tsk.Title),
	})
}

// removeFiles best-effort deletes stored files once their records are gone.
func (svc *service) removeFiles(paths []string) {
	ctx := context.Background()
	for _, path := range paths {
		_ = svc.storage.Delete(ctx, path)
	}
}

// expandModule materializes one catalog module's task templates into live
// task records owned by prj. Due dates default to the project end date.
func expandModule(prj Project, mod catalog.ModuleTemplate, now time.Time) []Task {
	tasks := make([]Task, 0, len(mod.Tasks))
	for _, tmpl := range mod.Tasks {
		due := prj.EndDate
		tsk := Task{
			ID:           uuid.New().String(),
			ProjectID:    prj.ID,
			ModuleID:     mod.ID,
			Title:        tmpl.Title,
			Description:  tmpl.Description,
			Status:       TaskPending,
			DueDate:      &due,
			Department:   tmpl.Department,
			Checklist:    make([]ChecklistItem, 0, len(tmpl.Checklist)),
			Deliverables: make([]Deliverable, 0, len(tmpl.Deliverables)),
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		for _, text := range tmpl.Checklist {
			tsk.Checklist = append(tsk.Checklist, ChecklistItem{ID: uuid.New().String(), Text: text})
		}
		for _, name := range tmpl.Deliverables {
			dlvDue := prj.EndDate
			tsk.Deliverables = append(tsk.Deliverables, Deliverable{
				ID:        uuid.New().String(),
				TaskID:    tsk.ID,
				Name:      name,
				Status:    DeliverablePending,
				DueDate:   &dlvDue,
				CreatedAt: now,
				UpdatedAt: now,
			})
		}
		tasks = append(tasks, tsk)
	}
	return tasks
}

// resolveModules maps the selected module IDs to their catalog templates,
// rejecting duplicates and unknown IDs.
func resolveModules(cat catalog.Catalog, ids []string) ([]catalog.ModuleTemplate, error) {
	mods := make([]catalog.ModuleTemplate, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return nil, core.NewValidationError(nil,
				core.FieldError{Field: "modules", Error: fmt.Sprintf("duplicate module id: %s", id)})
		}
		seen[id] = true
		mod, ok := cat.Module(id)
		if !ok {
			return nil, core.NewValidationError(nil,
				core.FieldError{Field: "modules", Error: fmt.Sprintf("unknown module id: %s", id)})
		}
		mods = append(mods, mod)
	}
	return mods, nil
}

// figureModuleCosts resolves per-module billing: provided entries must match
// selected modules, missing entries default to the module's DefaultCost.
func figureModuleCosts(provided map[string]float64, mods []catalog.ModuleTemplate) (map[string]float64, error) {
	selected := make(map[string]bool, len(mods))
	for _, mod := range mods {
		selected[mod.ID] = true
	}
	for modID, cost := range provided {
		if !selected[modID] {
			return nil, core.NewValidationError(nil,
				core.FieldError{Field: "module_costs", Error: fmt.Sprintf("unknown module id: %s", modID)})
		}
		if cost < 0 {
			return nil, core.NewValidationError(nil,
				core.FieldError{Field: "module_costs", Error: "cost must not be negative"})
		}
	}

	costs := make(map[string]float64, len(mods))
	for _, mod := range mods {
		if cost, ok := provided[mod.ID]; ok {
			costs[mod.ID] = cost
		} else {
			costs[mod.ID] = mod.DefaultCost
		}
	}
	return costs, nil
}

func sumCosts(costs map[string]float64) float64 {
	var total float64
	for _, cost := range costs {
		total += cost
	}
	return total
}

func statusCounts(counts map[string]int, statuses ...string) map[string]int {
	out := make(map[string]int, len(statuses)+1)
	var total int
	for _, n := range counts {
		total += n
	}
	out["total"] = total
	for _, status := range statuses {
		out[status] = counts[status]
	}
	return out
}

func contains(ids []string, id string) bool {
	for _, other := range ids {
		if other == id {
			return true
		}
	}
	return false
}

func taskFilePaths(tasks []Task) []string {
	var paths []string
	for _, tsk := range tasks {
		for _, dlv := range tsk.Deliverables {
			if dlv.File != nil {
				paths = append(paths, dlv.File.Path)
			}
		}
	}
	return paths
}
