package project

import (
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"testing"
	"time"

	"github.com/elearn360/backend/core"
	"github.com/elearn360/backend/core/catalog"
	"github.com/elearn360/backend/core/user"
)

type repoMock struct {
	projects map[string]Project
	tasks    map[string]Task
	taskIDs  []string // insertion order
}

func newRepoMock() *repoMock {
	return &repoMock{projects: make(map[string]Project), tasks: make(map[string]Task)}
}

func (r *repoMock) CreateProject(ctx context.Context, prj Project, tasks []Task, exec ...core.DBExecutor) (Project, error) {
	r.projects[prj.ID] = prj
	for _, tsk := range tasks {
		r.tasks[tsk.ID] = tsk
		r.taskIDs = append(r.taskIDs, tsk.ID)
	}
	return prj, nil
}

func (r *repoMock) QueryProjects(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Project, error) {
	var prjs []Project
	for _, prj := range r.projects {
		if filter != nil && filter.Status != "" && prj.Status != filter.Status {
			continue
		}
		prjs = append(prjs, prj)
	}
	return prjs, nil
}

func (r *repoMock) GetProject(ctx context.Context, id string, exec ...core.DBExecutor) (Project, error) {
	prj, ok := r.projects[id]
	if !ok {
		return Project{}, ErrNotFound
	}
	return prj, nil
}

func (r *repoMock) UpdateProject(ctx context.Context, prj Project, newTasks []Task, removedModules []string, exec ...core.DBExecutor) (Project, error) {
	if _, ok := r.projects[prj.ID]; !ok {
		return Project{}, ErrNotFound
	}
	r.projects[prj.ID] = prj
	for _, tsk := range newTasks {
		r.tasks[tsk.ID] = tsk
		r.taskIDs = append(r.taskIDs, tsk.ID)
	}
	for _, modID := range removedModules {
		for id, tsk := range r.tasks {
			if tsk.ProjectID == prj.ID && tsk.ModuleID == modID {
				r.deleteTask(id)
			}
		}
	}
	return prj, nil
}

func (r *repoMock) DeleteProject(ctx context.Context, id string, exec ...core.DBExecutor) error {
	if _, ok := r.projects[id]; !ok {
		return ErrNotFound
	}
	delete(r.projects, id)
	for tid, tsk := range r.tasks {
		if tsk.ProjectID == id {
			r.deleteTask(tid)
		}
	}
	return nil
}

func (r *repoMock) CountProjects(ctx context.Context, exec ...core.DBExecutor) (int, error) {
	return len(r.projects), nil
}

func (r *repoMock) CountProjectsByStatus(ctx context.Context, exec ...core.DBExecutor) (map[string]int, error) {
	counts := make(map[string]int)
	for _, prj := range r.projects {
		counts[prj.Status]++
	}
	return counts, nil
}

func (r *repoMock) CreateTask(ctx context.Context, tsk Task, exec ...core.DBExecutor) (Task, error) {
	r.tasks[tsk.ID] = tsk
	r.taskIDs = append(r.taskIDs, tsk.ID)
	return tsk, nil
}

func (r *repoMock) QueryTasks(ctx context.Context, filter *TaskFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Task, error) {
	var tasks []Task
	for _, id := range r.taskIDs {
		tsk, ok := r.tasks[id]
		if !ok {
			continue
		}
		if filter != nil {
			if filter.ProjectID != "" && tsk.ProjectID != filter.ProjectID {
				continue
			}
			if filter.ModuleID != "" && tsk.ModuleID != filter.ModuleID {
				continue
			}
			if filter.Status != "" && tsk.Status != filter.Status {
				continue
			}
			if filter.AssigneeID != "" && tsk.AssigneeID != filter.AssigneeID {
				continue
			}
		}
		tasks = append(tasks, tsk)
	}
	return tasks, nil
}

func (r *repoMock) GetTask(ctx context.Context, id string, exec ...core.DBExecutor) (Task, error) {
	tsk, ok := r.tasks[id]
	if !ok {
		return Task{}, ErrTaskNotFound
	}
	return tsk, nil
}

func (r *repoMock) GetTaskByDeliverable(ctx context.Context, deliverableID string, exec ...core.DBExecutor) (Task, error) {
	for _, tsk := range r.tasks {
		if _, ok := tsk.Deliverable(deliverableID); ok {
			return tsk, nil
		}
	}
	return Task{}, ErrDeliverableNotFound
}

func (r *repoMock) UpdateTask(ctx context.Context, tsk Task, exec ...core.DBExecutor) (Task, error) {
	if _, ok := r.tasks[tsk.ID]; !ok {
		return Task{}, ErrTaskNotFound
	}
	r.tasks[tsk.ID] = tsk
	return tsk, nil
}

func (r *repoMock) DeleteTask(ctx context.Context, id string, exec ...core.DBExecutor) error {
	if _, ok := r.tasks[id]; !ok {
		return ErrTaskNotFound
	}
	r.deleteTask(id)
	return nil
}

func (r *repoMock) CountTasks(ctx context.Context, exec ...core.DBExecutor) (int, error) {
	return len(r.tasks), nil
}

func (r *repoMock) CountTasksByStatus(ctx context.Context, filter *TaskFilter, exec ...core.DBExecutor) (map[string]int, error) {
	tasks, _ := r.QueryTasks(ctx, filter, nil)
	counts := make(map[string]int)
	for _, tsk := range tasks {
		counts[tsk.Status]++
	}
	return counts, nil
}

func (r *repoMock) deleteTask(id string) {
	delete(r.tasks, id)
	for i, tid := range r.taskIDs {
		if tid == id {
			r.taskIDs = append(r.taskIDs[:i], r.taskIDs[i+1:]...)
			return
		}
	}
}

type userStoreMock struct {
	users map[string]user.User
	depts map[string]bool
}

func (s userStoreMock) GetByID(id string) (user.User, error) {
	usr, ok := s.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return usr, nil
}

func (s userStoreMock) DepartmentExists(id string) (bool, error) { return s.depts[id], nil }

type catStoreMock struct {
	versions []catalog.Catalog
}

func (s catStoreMock) Current() (catalog.Catalog, error) {
	if len(s.versions) == 0 {
		return catalog.Catalog{}, catalog.ErrNotFound
	}
	return s.versions[len(s.versions)-1], nil
}

func (s catStoreMock) Version(n int) (catalog.Catalog, error) {
	for _, cat := range s.versions {
		if cat.Version == n {
			return cat, nil
		}
	}
	return catalog.Catalog{}, catalog.ErrNotFound
}

type storageMock struct {
	files map[string]bool
	seq   int
}

func newStorageMock() *storageMock { return &storageMock{files: make(map[string]bool)} }

func (s *storageMock) Save(ctx context.Context, filename string, content io.Reader) (string, error) {
	if _, err := io.Copy(ioutil.Discard, content); err != nil {
		return "", err
	}
	s.seq++
	path := fmt.Sprintf("%d-%s", s.seq, filename)
	s.files[path] = true
	return path, nil
}

func (s *storageMock) Delete(ctx context.Context, path string) error {
	delete(s.files, path)
	return nil
}

func (s *storageMock) URL(path string) string { return "/v1/uploads/" + path }

// testCatalog has two modules: design expands to two tasks, web to one.
func testCatalog() catalog.Catalog {
	return catalog.Catalog{
		Version: 1,
		Modules: []catalog.ModuleTemplate{
			{
				ID: "design", Name: "Diseño", DefaultCost: 1000,
				Tasks: []catalog.TaskTemplate{
					{
						ID: "t-logo", Title: "Logotipo", Department: "creativo",
						Checklist:    []string{"Bocetos", "Versión final"},
						Deliverables: []string{"Manual de marca"},
					},
					{ID: "t-web-design", Title: "Diseño Web", Department: "creativo"},
				},
			},
			{
				ID: "web", Name: "Web", DefaultCost: 2000,
				Tasks: []catalog.TaskTemplate{
					{ID: "t-portal", Title: "Portal", Department: "desarrollo"},
				},
			},
		},
	}
}

type harness struct {
	repo    *repoMock
	storage *storageMock
	events  []core.Event
	svc     Service
}

func setupSvc(users ...user.User) *harness {
	h := &harness{repo: newRepoMock(), storage: newStorageMock()}
	store := userStoreMock{
		users: make(map[string]user.User, len(users)),
		depts: map[string]bool{"creativo": true, "desarrollo": true},
	}
	for _, usr := range users {
		store.users[usr.ID] = usr
	}
	bus := core.NewSyncBus()
	bus.Subscribe(func(evt core.Event) { h.events = append(h.events, evt) })
	h.svc = NewService(h.repo, store, catStoreMock{versions: []catalog.Catalog{testCatalog()}}, h.storage, bus)
	return h
}

func (h *harness) lastEvent(t *testing.T) core.Event {
	t.Helper()
	if len(h.events) == 0 {
		t.Fatal("no event was published")
	}
	return h.events[len(h.events)-1]
}

func newNP(modules ...string) NewProject {
	start := time.Now().UTC()
	return NewProject{
		Name:      "Curso",
		Client:    "ACME",
		StartDate: start,
		EndDate:   start.AddDate(0, 3, 0),
		Modules:   modules,
	}
}

func TestCreate(t *testing.T) {
	h := setupSvc()

	res, err := h.svc.Create(newNP("design", "web"), "pm-1")
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if res.TasksCreated != 3 {
		t.Errorf("Create() tasksCreated = %v; want 3", res.TasksCreated)
	}
	if res.TasksByModule["design"] != 2 || res.TasksByModule["web"] != 1 {
		t.Errorf("Create() tasksByModule = %v", res.TasksByModule)
	}
	prj := res.Project
	if prj.Status != StatusActive {
		t.Errorf("Create() status = %v; want active", prj.Status)
	}
	if prj.CatalogVersion != 1 {
		t.Errorf("Create() catalogVersion = %v; want 1", prj.CatalogVersion)
	}
	if prj.BillingMode != BillingPerModule {
		t.Errorf("Create() billingMode = %v; want per_module", prj.BillingMode)
	}
	if prj.TotalCost != 3000 {
		t.Errorf("Create() totalCost = %v; want 3000", prj.TotalCost)
	}
	if prj.CreatedBy != "pm-1" {
		t.Errorf("Create() createdBy = %v; want pm-1", prj.CreatedBy)
	}

	evt := h.lastEvent(t)
	if evt.Kind != core.EventProjectCreated || evt.ProjectID != prj.ID {
		t.Errorf("Create() event = %+v", evt)
	}

	// expanded tasks carry fresh IDs and live checklist/deliverable records
	tasks, err := h.svc.ProjectTasks(prj.ID)
	if err != nil {
		t.Fatalf("ProjectTasks() failed: %v", err)
	}
	for _, tsk := range tasks {
		if tsk.ID == "" || tsk.Status != TaskPending {
			t.Errorf("expanded task = %+v", tsk)
		}
		if tsk.Title == "Logotipo" {
			if len(tsk.Checklist) != 2 || tsk.Checklist[0].ID == "" {
				t.Errorf("checklist = %+v", tsk.Checklist)
			}
			if len(tsk.Deliverables) != 1 || tsk.Deliverables[0].Status != DeliverablePending {
				t.Errorf("deliverables = %+v", tsk.Deliverables)
			}
		}
	}
}

func TestCreate_costs(t *testing.T) {
	h := setupSvc()

	// provided entries win; missing ones default to the module cost
	np := newNP("design", "web")
	np.ModuleCosts = map[string]float64{"design": 1500}
	res, err := h.svc.Create(np, "pm-1")
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if res.Project.TotalCost != 3500 {
		t.Errorf("Create() totalCost = %v; want 3500", res.Project.TotalCost)
	}
	if res.Project.ModuleCosts["web"] != 2000 {
		t.Errorf("Create() web cost = %v; want 2000", res.Project.ModuleCosts["web"])
	}

	// fixed mode takes the quoted total as-is
	np = newNP("design")
	np.BillingMode = BillingFixed
	np.TotalCost = 9000
	res, err = h.svc.Create(np, "pm-1")
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if res.Project.TotalCost != 9000 {
		t.Errorf("Create() totalCost = %v; want 9000", res.Project.TotalCost)
	}
}

func TestCreate_validation(t *testing.T) {
	fixedNoTotal := newNP("design")
	fixedNoTotal.BillingMode = BillingFixed
	costForUnselected := newNP("design")
	costForUnselected.ModuleCosts = map[string]float64{"web": 100}
	negativeCost := newNP("design")
	negativeCost.ModuleCosts = map[string]float64{"design": -1}

	tests := []struct {
		name string
		np   NewProject
	}{
		{name: "unknown module", np: newNP("design", "lol")},
		{name: "duplicate module", np: newNP("design", "design")},
		{name: "fixed billing without total", np: fixedNoTotal},
		{name: "cost for unselected module", np: costForUnselected},
		{name: "negative cost", np: negativeCost},
	}

	h := setupSvc()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := h.svc.Create(tt.np, "pm-1"); err == nil {
				t.Fatal("Create() accepted invalid input")
			} else if _, ok := err.(*core.ValidationError); !ok {
				t.Fatalf("Create() error = %v; want ValidationError", err)
			}
		})
	}

	// nothing was persisted
	if count, _ := h.svc.Count(); count != 0 {
		t.Errorf("Count() = %v; want 0", count)
	}
	if count, _ := h.svc.CountTasks(); count != 0 {
		t.Errorf("CountTasks() = %v; want 0", count)
	}
}

func TestUpdate_modules(t *testing.T) {
	h := setupSvc()

	res, err := h.svc.Create(newNP("design", "web"), "pm-1")
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	// dropping web removes its tasks and cost entry in the same write
	mods := []string{"design"}
	prj, err := h.svc.Update(res.Project.ID, UpdateProject{Modules: &mods}, "pm-1")
	if err != nil {
		t.Fatalf("Update() failed: %v", err)
	}
	if _, ok := prj.ModuleCosts["web"]; ok {
		t.Error("Update() kept the dropped module's cost entry")
	}
	if prj.TotalCost != 1000 {
		t.Errorf("Update() totalCost = %v; want 1000", prj.TotalCost)
	}
	tasks, _ := h.svc.ProjectTasks(prj.ID)
	if len(tasks) != 2 {
		t.Errorf("Update() tasks = %v; want 2", len(tasks))
	}

	// adding it back re-expands from the stamped catalog version
	mods = []string{"design", "web"}
	prj, err = h.svc.Update(prj.ID, UpdateProject{Modules: &mods}, "pm-1")
	if err != nil {
		t.Fatalf("Update() failed: %v", err)
	}
	if prj.TotalCost != 3000 {
		t.Errorf("Update() totalCost = %v; want 3000", prj.TotalCost)
	}
	tasks, _ = h.svc.ProjectTasks(prj.ID)
	if len(tasks) != 3 {
		t.Errorf("Update() tasks = %v; want 3", len(tasks))
	}

	// invalid selections
	for name, mods := range map[string][]string{
		"unknown module":   {"design", "lol"},
		"duplicate module": {"design", "design"},
		"empty selection":  {},
	} {
		mods := mods
		t.Run(name, func(t *testing.T) {
			if _, err := h.svc.Update(prj.ID, UpdateProject{Modules: &mods}, "pm-1"); err == nil {
				t.Fatal("Update() accepted invalid module selection")
			}
		})
	}
}

func TestUpdate_costs(t *testing.T) {
	h := setupSvc()

	res, err := h.svc.Create(newNP("design", "web"), "pm-1")
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	// editing one entry recomputes the per_module total
	prj, err := h.svc.Update(res.Project.ID, UpdateProject{ModuleCosts: map[string]float64{"design": 500}}, "pm-1")
	if err != nil {
		t.Fatalf("Update() failed: %v", err)
	}
	if prj.TotalCost != 2500 {
		t.Errorf("Update() totalCost = %v; want 2500", prj.TotalCost)
	}

	if _, err = h.svc.Update(prj.ID, UpdateProject{ModuleCosts: map[string]float64{"lol": 1}}, "pm-1"); err == nil {
		t.Error("Update() accepted a cost for an unselected module")
	}

	// end date must not cross the start date
	badEnd := prj.StartDate.AddDate(0, 0, -1)
	if _, err = h.svc.Update(prj.ID, UpdateProject{EndDate: &badEnd}, "pm-1"); err == nil {
		t.Error("Update() accepted end_date before start_date")
	}
}

func TestAddTask(t *testing.T) {
	usr := user.User{ID: "u-1", Name: "Awe", Department: "creativo"}
	h := setupSvc(usr)

	res, err := h.svc.Create(newNP("design"), "pm-1")
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	prjID := res.Project.ID

	tsk, err := h.svc.AddTask(prjID, NewTask{
		Title:      "Revisión final",
		Department: "creativo",
		AssigneeID: usr.ID,
		Checklist:  []string{"Paso 1"},
	}, "pm-1")
	if err != nil {
		t.Fatalf("AddTask() failed: %v", err)
	}
	if tsk.ModuleID != "" {
		t.Errorf("AddTask() moduleID = %v; want manual task", tsk.ModuleID)
	}
	evt := h.lastEvent(t)
	if evt.Kind != core.EventTaskAssigned || evt.TargetID != usr.ID {
		t.Errorf("AddTask() event = %+v", evt)
	}

	tests := []struct {
		name string
		nt   NewTask
	}{
		{name: "module outside the project", nt: NewTask{Title: "X", ModuleID: "web"}},
		{name: "unknown department", nt: NewTask{Title: "X", Department: "nosuchdept"}},
		{name: "unknown assignee", nt: NewTask{Title: "X", AssigneeID: "ghost"}},
		{name: "assignee outside the department", nt: NewTask{Title: "X", Department: "desarrollo", AssigneeID: usr.ID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := h.svc.AddTask(prjID, tt.nt, "pm-1"); err == nil {
				t.Fatal("AddTask() accepted invalid input")
			} else if _, ok := err.(*core.ValidationError); !ok {
				t.Fatalf("AddTask() error = %v; want ValidationError", err)
			}
		})
	}

	if _, err = h.svc.AddTask("lol", NewTask{Title: "X"}, "pm-1"); err != ErrNotFound {
		t.Errorf("AddTask() error = %v; want %v", err, ErrNotFound)
	}
}

func TestUpdateTask_events(t *testing.T) {
	usr := user.User{ID: "u-1", Name: "Awe", Department: "creativo"}
	h := setupSvc(usr)

	res, err := h.svc.Create(newNP("design"), "pm-1")
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	tasks, _ := h.svc.ProjectTasks(res.Project.ID)
	tsk := tasks[0]

	tsk, err = h.svc.UpdateTask(tsk.ID, UpdateTask{AssigneeID: &usr.ID}, "pm-1")
	if err != nil {
		t.Fatalf("UpdateTask() failed: %v", err)
	}
	if evt := h.lastEvent(t); evt.Kind != core.EventTaskAssigned || evt.TargetID != usr.ID {
		t.Errorf("UpdateTask() event = %+v", evt)
	}

	tsk, err = h.svc.UpdateTask(tsk.ID, UpdateTask{Status: TaskInProgress}, "pm-1")
	if err != nil {
		t.Fatalf("UpdateTask() failed: %v", err)
	}
	if evt := h.lastEvent(t); evt.Kind != core.EventTaskStatusChanged || evt.Body != TaskInProgress {
		t.Errorf("UpdateTask() event = %+v", evt)
	}

	// a no-op write publishes nothing new
	before := len(h.events)
	if _, err = h.svc.UpdateTask(tsk.ID, UpdateTask{Status: TaskInProgress}, "pm-1"); err != nil {
		t.Fatalf("UpdateTask() failed: %v", err)
	}
	if len(h.events) != before {
		t.Errorf("UpdateTask() published %v extra events", len(h.events)-before)
	}
}

func TestChecklist(t *testing.T) {
	h := setupSvc()

	res, err := h.svc.Create(newNP("design"), "pm-1")
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	tasks, _ := h.svc.ProjectTasks(res.Project.ID)
	tsk := tasks[1] // Diseño Web starts without a checklist

	item, err := h.svc.AddChecklistItem(tsk.ID, NewChecklistItem{Text: "Wireframes"})
	if err != nil {
		t.Fatalf("AddChecklistItem() failed: %v", err)
	}
	if item.ID == "" || item.Completed {
		t.Errorf("AddChecklistItem() item = %+v", item)
	}

	item, err = h.svc.ToggleChecklistItem(tsk.ID, item.ID)
	if err != nil {
		t.Fatalf("ToggleChecklistItem() failed: %v", err)
	}
	if !item.Completed {
		t.Error("ToggleChecklistItem() item not completed")
	}
	if _, err = h.svc.ToggleChecklistItem(tsk.ID, "lol"); err != ErrItemNotFound {
		t.Errorf("ToggleChecklistItem() error = %v; want %v", err, ErrItemNotFound)
	}

	if err = h.svc.RemoveChecklistItem(tsk.ID, item.ID); err != nil {
		t.Fatalf("RemoveChecklistItem() failed: %v", err)
	}
	if err = h.svc.RemoveChecklistItem(tsk.ID, item.ID); err != ErrItemNotFound {
		t.Errorf("RemoveChecklistItem() error = %v; want %v", err, ErrItemNotFound)
	}
}

func TestModuleInUse(t *testing.T) {
	h := setupSvc()

	if _, err := h.svc.Create(newNP("design"), "pm-1"); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	inUse, err := h.svc.ModuleInUse("design")
	if err != nil {
		t.Fatalf("ModuleInUse() failed: %v", err)
	}
	if !inUse {
		t.Error("ModuleInUse(design) = false; want true")
	}
	if inUse, _ = h.svc.ModuleInUse("web"); inUse {
		t.Error("ModuleInUse(web) = true; want false")
	}
}

func TestStats(t *testing.T) {
	h := setupSvc(user.User{ID: "u-1", Name: "Awe", Department: "creativo"})

	res, err := h.svc.Create(newNP("design", "web"), "pm-1")
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	tasks, _ := h.svc.ProjectTasks(res.Project.ID)
	me := "u-1"
	if _, err = h.svc.UpdateTask(tasks[0].ID, UpdateTask{Status: TaskCompleted, AssigneeID: &me}, "pm-1"); err != nil {
		t.Fatalf("UpdateTask() failed: %v", err)
	}

	stats, err := h.svc.Stats(me)
	if err != nil {
		t.Fatalf("Stats() failed: %v", err)
	}
	if stats.Projects[StatusActive] != 1 || stats.Projects[StatusCompleted] != 0 {
		t.Errorf("Stats() projects = %v", stats.Projects)
	}
	if stats.Tasks[TaskCompleted] != 1 || stats.Tasks[TaskPending] != 2 {
		t.Errorf("Stats() tasks = %v", stats.Tasks)
	}
	if stats.MyTasks[TaskCompleted] != 1 || stats.MyTasks[TaskPending] != 0 {
		t.Errorf("Stats() myTasks = %v", stats.MyTasks)
	}
	if len(stats.Recent) != 1 {
		t.Errorf("Stats() recent = %v; want 1", len(stats.Recent))
	}
}

func TestDelete(t *testing.T) {
	h := setupSvc()

	res, err := h.svc.Create(newNP("design"), "pm-1")
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	tasks, _ := h.svc.ProjectTasks(res.Project.ID)

	// put a stored file on one deliverable so deletion has to clean it up
	var dlvID string
	for _, tsk := range tasks {
		if len(tsk.Deliverables) > 0 {
			dlvID = tsk.Deliverables[0].ID
		}
	}
	if _, err = h.svc.UploadDeliverableFile(dlvID, testUpload("manual.pdf"), "u-1"); err != nil {
		t.Fatalf("UploadDeliverableFile() failed: %v", err)
	}
	if len(h.storage.files) != 1 {
		t.Fatalf("stored files = %v; want 1", len(h.storage.files))
	}

	if err = h.svc.Delete(res.Project.ID); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if count, _ := h.svc.CountTasks(); count != 0 {
		t.Errorf("CountTasks() = %v; want 0", count)
	}
	if len(h.storage.files) != 0 {
		t.Errorf("stored files = %v; want 0 after delete", len(h.storage.files))
	}

	if err = h.svc.Delete("lol"); err != ErrNotFound {
		t.Errorf("Delete() error = %v; want %v", err, ErrNotFound)
	}
}
