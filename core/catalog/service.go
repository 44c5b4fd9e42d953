package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/elearn360/backend/core"
)

var (
	// errors
	ErrNotFound         = errors.New("catalog not found")
	ErrModuleNotFound   = errors.New("module not found")
	ErrModuleExists     = errors.New("a module with this id already exists")
	ErrModuleInUse      = errors.New("module is still referenced by projects")
	ErrTemplateNotFound = errors.New("task template not found")
	errUnknownDept      = errors.New("department not found")
)

type (
	Repository interface {
		GetLatestCatalog(ctx context.Context, exec ...core.DBExecutor) (Catalog, error)
		GetCatalogVersion(ctx context.Context, version int, exec ...core.DBExecutor) (Catalog, error)
		// SaveCatalog inserts cat as a new version row; stored versions are
		// never modified.
		SaveCatalog(ctx context.Context, cat Catalog, exec ...core.DBExecutor) (Catalog, error)
	}

	// DepartmentStore reports whether a department ID exists. Implemented by
	// the user service.
	DepartmentStore interface {
		DepartmentExists(id string) (bool, error)
	}

	// ModuleRefFunc reports whether any project still references a module ID.
	ModuleRefFunc func(id string) (bool, error)

	Service interface {
		Current() (Catalog, error)
		Version(n int) (Catalog, error)
		CreateModule(nm NewModule, actorID string) (ModuleTemplate, error)
		UpdateModule(id string, um UpdateModule, actorID string) (ModuleTemplate, error)
		DeleteModule(id string, actorID string) error
		AddTaskTemplate(moduleID string, nt NewTaskTemplate, actorID string) (TaskTemplate, error)
		UpdateTaskTemplate(moduleID, tmplID string, ut UpdateTaskTemplate, actorID string) (TaskTemplate, error)
		RemoveTaskTemplate(moduleID, tmplID string, actorID string) error
		Seed(actorID string) (Catalog, error)
		DepartmentInUse(id string) (bool, error)
		SetModuleRefCheck(fn ModuleRefFunc)
	}

	service struct {
		repo      Repository
		deptStore DepartmentStore
		modRefFn  ModuleRefFunc
	}
)

var _ Service = (*service)(nil) // interface compliance check

func NewService(repo Repository, deptStore DepartmentStore) Service {
	return &service{
		repo:      repo,
		deptStore: deptStore,
	}
}

func (svc *service) Current() (Catalog, error) {
	return svc.repo.GetLatestCatalog(context.Background())
}

func (svc *service) Version(n int) (Catalog, error) {
	return svc.repo.GetCatalogVersion(context.Background(), n)
}

// currentOrEmpty loads the latest catalog, starting a fresh version 0 when
// none has been published yet.
func (svc *service) currentOrEmpty() (Catalog, error) {
	cat, err := svc.repo.GetLatestCatalog(context.Background())
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return Catalog{Modules: []ModuleTemplate{}}, nil
		}
		return Catalog{}, err
	}
	return cat, nil
}

// publish stores cat as version N+1.
func (svc *service) publish(cat Catalog, actorID string) (Catalog, error) {
	cat.Version++
	cat.UpdatedAt = time.Now().UTC()
	cat.UpdatedBy = actorID
	return svc.repo.SaveCatalog(context.Background(), cat)
}

func (svc *service) checkDepartment(id string) error {
	if id == "" {
		return nil
	}
	ok, err := svc.deptStore.DepartmentExists(id)
	if err != nil {
		return err
	}
	if !ok {
		return core.NewValidationError(
			errUnknownDept,
			core.FieldError{Field: "department", Error: errUnknownDept.Error()},
		)
	}
	return nil
}

func (svc *service) CreateModule(nm NewModule, actorID string) (ModuleTemplate, error) {
	cat, err := svc.currentOrEmpty()
	if err != nil {
		return ModuleTemplate{}, err
	}

	id := nm.ID
	if id == "" {
		id = core.Slugify(nm.Name)
	}
	if id == "" {
		return ModuleTemplate{}, core.NewValidationError(nil, core.FieldError{Field: "id", Error: "this field is required"})
	}
	if _, ok := cat.Module(id); ok {
		return ModuleTemplate{}, core.NewValidationError(ErrModuleExists, core.FieldError{Field: "id", Error: ErrModuleExists.Error()})
	}

	tasks := make([]TaskTemplate, 0, len(nm.Tasks))
	for _, nt := range nm.Tasks {
		if err = svc.checkDepartment(nt.Department); err != nil {
			return ModuleTemplate{}, err
		}
		tasks = append(tasks, newTemplate(nt))
	}

	mod := ModuleTemplate{
		ID:          id,
		Name:        nm.Name,
		Description: nm.Description,
		Icon:        nm.Icon,
		Color:       nm.Color,
		DefaultCost: nm.DefaultCost,
		Tasks:       tasks,
	}
	cat.Modules = append(cat.Modules, mod)

	if _, err = svc.publish(cat, actorID); err != nil {
		return ModuleTemplate{}, err
	}
	return mod, nil
}

func (svc *service) UpdateModule(id string, um UpdateModule, actorID string) (ModuleTemplate, error) {
	cat, err := svc.Current()
	if err != nil {
		return ModuleTemplate{}, err
	}
	idx := moduleIndex(cat, id)
	if idx < 0 {
		return ModuleTemplate{}, ErrModuleNotFound
	}

	mod := &cat.Modules[idx]
	if um.Name != "" {
		mod.Name = um.Name
	}
	if um.Description != "" {
		mod.Description = um.Description
	}
	if um.Icon != "" {
		mod.Icon = um.Icon
	}
	if um.Color != "" {
		mod.Color = um.Color
	}
	if um.DefaultCost != nil {
		mod.DefaultCost = *um.DefaultCost
	}

	if _, err = svc.publish(cat, actorID); err != nil {
		return ModuleTemplate{}, err
	}
	return *mod, nil
}

func (svc *service) DeleteModule(id string, actorID string) error {
	cat, err := svc.Current()
	if err != nil {
		return err
	}
	idx := moduleIndex(cat, id)
	if idx < 0 {
		return ErrModuleNotFound
	}

	if svc.modRefFn != nil {
		used, err := svc.modRefFn(id)
		if err != nil {
			return err
		}
		if used {
			return ErrModuleInUse
		}
	}

	cat.Modules = append(cat.Modules[:idx], cat.Modules[idx+1:]...)
	_, err = svc.publish(cat, actorID)
	return err
}

func (svc *service) AddTaskTemplate(moduleID string, nt NewTaskTemplate, actorID string) (TaskTemplate, error) {
	cat, err := svc.Current()
	if err != nil {
		return TaskTemplate{}, err
	}
	idx := moduleIndex(cat, moduleID)
	if idx < 0 {
		return TaskTemplate{}, ErrModuleNotFound
	}
	if err = svc.checkDepartment(nt.Department); err != nil {
		return TaskTemplate{}, err
	}

	tmpl := newTemplate(nt)
	cat.Modules[idx].Tasks = append(cat.Modules[idx].Tasks, tmpl)

	if _, err = svc.publish(cat, actorID); err != nil {
		return TaskTemplate{}, err
	}
	return tmpl, nil
}

func (svc *service) UpdateTaskTemplate(moduleID, tmplID string, ut UpdateTaskTemplate, actorID string) (TaskTemplate, error) {
	cat, err := svc.Current()
	if err != nil {
		return TaskTemplate{}, err
	}
	idx := moduleIndex(cat, moduleID)
	if idx < 0 {
		return TaskTemplate{}, ErrModuleNotFound
	}
	tIdx := templateIndex(cat.Modules[idx], tmplID)
	if tIdx < 0 {
		return TaskTemplate{}, ErrTemplateNotFound
	}
	if err = svc.checkDepartment(ut.Department); err != nil {
		return TaskTemplate{}, err
	}

	tmpl := &cat.Modules[idx].Tasks[tIdx]
	if ut.Title != "" {
		tmpl.Title = ut.Title
	}
	if ut.Description != "" {
		tmpl.Description = ut.Description
	}
	if ut.Department != "" {
		tmpl.Department = ut.Department
	}
	if ut.Checklist != nil {
		tmpl.Checklist = *ut.Checklist
	}
	if ut.Deliverables != nil {
		tmpl.Deliverables = *ut.Deliverables
	}

	if _, err = svc.publish(cat, actorID); err != nil {
		return TaskTemplate{}, err
	}
	return *tmpl, nil
}

func (svc *service) RemoveTaskTemplate(moduleID, tmplID string, actorID string) error {
	cat, err := svc.Current()
	if err != nil {
		return err
	}
	idx := moduleIndex(cat, moduleID)
	if idx < 0 {
		return ErrModuleNotFound
	}
	tIdx := templateIndex(cat.Modules[idx], tmplID)
	if tIdx < 0 {
		return ErrTemplateNotFound
	}

	tasks := cat.Modules[idx].Tasks
	cat.Modules[idx].Tasks = append(tasks[:tIdx], tasks[tIdx+1:]...)
	_, err = svc.publish(cat, actorID)
	return err
}

// Seed publishes the built-in starter catalog as version 1. It is a no-op
// when a catalog has already been published.
func (svc *service) Seed(actorID string) (Catalog, error) {
	cat, err := svc.repo.GetLatestCatalog(context.Background())
	if err == nil {
		return cat, nil
	}
	if errors.Cause(err) != ErrNotFound {
		return Catalog{}, err
	}

	modules := make([]ModuleTemplate, len(DefaultModules))
	copy(modules, DefaultModules)
	for i := range modules {
		tasks := make([]TaskTemplate, len(modules[i].Tasks))
		copy(tasks, modules[i].Tasks)
		for j := range tasks {
			tasks[j].ID = uuid.New().String()
		}
		modules[i].Tasks = tasks
	}
	return svc.publish(Catalog{Modules: modules}, actorID)
}

// DepartmentInUse reports whether any task template of the current catalog
// version is tagged with the given department.
func (svc *service) DepartmentInUse(id string) (bool, error) {
	cat, err := svc.repo.GetLatestCatalog(context.Background())
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return false, nil
		}
		return false, err
	}
	for _, mod := range cat.Modules {
		for _, tmpl := range mod.Tasks {
			if tmpl.Department == id {
				return true, nil
			}
		}
	}
	return false, nil
}

func (svc *service) SetModuleRefCheck(fn ModuleRefFunc) {
	svc.modRefFn = fn
}

func newTemplate(nt NewTaskTemplate) TaskTemplate {
	checklist := nt.Checklist
	if checklist == nil {
		checklist = []string{}
	}
	deliverables := nt.Deliverables
	if deliverables == nil {
		deliverables = []string{}
	}
	return TaskTemplate{
		ID:           uuid.New().String(),
		Title:        nt.Title,
		Description:  nt.Description,
		Department:   nt.Department,
		Checklist:    checklist,
		Deliverables: deliverables,
	}
}

func moduleIndex(cat Catalog, id string) int {
	for i, mod := range cat.Modules {
		if mod.ID == id {
			return i
		}
	}
	return -1
}

func templateIndex(mod ModuleTemplate, tmplID string) int {
	for i, tmpl := range mod.Tasks {
		if tmpl.ID == tmplID {
			return i
		}
	}
	return -1
}
