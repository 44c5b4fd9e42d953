package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/elearn360/backend/core/project"
	"github.com/elearn360/backend/core/user"
	testutil "github.com/elearn360/backend/tests"
)

func seedProject(t *testing.T, actorID string, modules ...string) project.Project {
	t.Helper()
	if len(modules) == 0 {
		modules = []string{"design"}
	}
	if _, err := catSvc.Seed(actorID); err != nil {
		t.Fatalf("Seed() failed: %v", err)
	}
	res, err := prjSvc.Create(newProjectInput("Curso", "ACME", modules), actorID)
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	return res.Project
}

func Test_taskApi_projectTasks(t *testing.T) {
	app := setup(t)

	usr := testutil.CreateUser(t, usrRepo, "Awe", "awe@test.cd", "", "", true)
	manager := testutil.CreateUser(t, usrRepo, "Hero", "hero@test.cd", "", user.RoleProjectManager, true)
	prj := seedProject(t, manager.ID)

	req, rec := newAuthRequest(http.MethodGet, "/v1/projects/"+prj.ID+"/tasks", getToken(t, usr))
	app.ServeHTTP(rec, req)
	checkCode(t, http.StatusOK, rec)

	var tasks []project.Task
	if err := json.Unmarshal(rec.Body.Bytes(), &tasks); err != nil {
		t.Fatalf("unmarshalling tasks: %v", err)
	}
	if len(tasks) == 0 {
		t.Fatal("no tasks were instantiated")
	}
	for _, tsk := range tasks {
		if tsk.Status != project.TaskPending {
			t.Errorf("task %q status = %q, want pending", tsk.Title, tsk.Status)
		}
		if tsk.ProjectID != prj.ID {
			t.Errorf("task %q projectID = %q", tsk.Title, tsk.ProjectID)
		}
	}

	// manual task creation is reviewer-only
	body := marchallObj(t, project.NewTask{Title: "Revisión extra", Checklist: []string{"Paso 1"}})
	req, rec = newAuthRequest(http.MethodPost, "/v1/projects/"+prj.ID+"/tasks", getToken(t, usr), body)
	app.ServeHTTP(rec, req)
	checkCode(t, http.StatusForbidden, rec)

	req, rec = newAuthRequest(http.MethodPost, "/v1/projects/"+prj.ID+"/tasks", getToken(t, manager), body)
	app.ServeHTTP(rec, req)
	checkCode(t, http.StatusCreated, rec)

	var tsk project.Task
	if err := json.Unmarshal(rec.Body.Bytes(), &tsk); err != nil {
		t.Fatalf("unmarshalling task: %v", err)
	}
	if tsk.ID == "" || tsk.ProjectID != prj.ID {
		t.Errorf("created task = %+v", tsk)
	}
	if len(tsk.Checklist) != 1 || tsk.Checklist[0].Text != "Paso 1" {
		t.Errorf("checklist = %+v", tsk.Checklist)
	}

	// unknown project
	req, rec = newAuthRequest(http.MethodPost, "/v1/projects/lol/tasks", getToken(t, manager), body)
	app.ServeHTTP(rec, req)
	checkCode(t, http.StatusNotFound, rec)
}

func Test_taskApi_query(t *testing.T) {
	app := setup(t)

	manager := testutil.CreateUser(t, usrRepo, "Hero", "hero@test.cd", "", user.RoleProjectManager, true)
	token := getToken(t, manager)
	prj := seedProject(t, manager.ID, "design", "tech")

	tasks, err := prjSvc.ProjectTasks(prj.ID)
	if err != nil {
		t.Fatalf("ProjectTasks() failed: %v", err)
	}
	if _, err = prjSvc.UpdateTask(tasks[0].ID, project.UpdateTask{
		Status: project.TaskInProgress, AssigneeID: &manager.ID,
	}, manager.ID); err != nil {
		t.Fatalf("UpdateTask() failed: %v", err)
	}

	fetch := func(t *testing.T, path string) []project.Task {
		t.Helper()
		req, rec := newAuthRequest(http.MethodGet, path, token)
		app.ServeHTTP(rec, req)
		checkCode(t, http.StatusOK, rec)
		var got []project.Task
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("unmarshalling tasks: %v", err)
		}
		return got
	}

	if got := fetch(t, "/v1/tasks"); len(got) != len(tasks) {
		t.Errorf("all tasks = %d, want %d", len(got), len(tasks))
	}
	if got := fetch(t, "/v1/tasks?status=in_progress"); len(got) != 1 || got[0].ID != tasks[0].ID {
		t.Errorf("status filter = %+v", got)
	}
	if got := fetch(t, "/v1/tasks?assignee_id="+manager.ID); len(got) != 1 {
		t.Errorf("assignee filter = %d tasks, want 1", len(got))
	}
	if got := fetch(t, "/v1/tasks?module_id=tech&project_id="+prj.ID); len(got) != 5 {
		t.Errorf("module filter = %d tasks, want 5", len(got))
	}
	if got := fetch(t, "/v1/tasks?search=logotipo"); len(got) == 0 {
		t.Error("search filter found nothing")
	}

	// ordering by title
	got := fetch(t, "/v1/tasks?ordering=title")
	for i := 1; i < len(got); i++ {
		if got[i-1].Title > got[i].Title {
			t.Fatalf("tasks not sorted by title: %q before %q", got[i-1].Title, got[i].Title)
		}
	}
}

func Test_taskApi_update(t *testing.T) {
	app := setup(t)

	usr := testutil.CreateUser(t, usrRepo, "Awe", "awe@test.cd", "", "", true)
	manager := testutil.CreateUser(t, usrRepo, "Hero", "hero@test.cd", "", user.RoleProjectManager, true)
	prj := seedProject(t, manager.ID)

	tasks, err := prjSvc.ProjectTasks(prj.ID)
	if err != nil {
		t.Fatalf("ProjectTasks() failed: %v", err)
	}
	tsk := tasks[0]

	// collaborators can move their work along
	req, rec := newAuthRequest(http.MethodPatch, "/v1/tasks/"+tsk.ID, getToken(t, usr),
		marchallObj(t, map[string]string{"status": project.TaskCompleted}))
	app.ServeHTTP(rec, req)
	checkCode(t, http.StatusOK, rec)

	var got project.Task
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshalling task: %v", err)
	}
	if got.Status != project.TaskCompleted {
		t.Errorf("status = %q, want completed", got.Status)
	}

	// bogus status
	req, rec = newAuthRequest(http.MethodPatch, "/v1/tasks/"+tsk.ID, getToken(t, usr),
		marchallObj(t, map[string]string{"status": "lol"}))
	app.ServeHTTP(rec, req)
	checkCode(t, http.StatusBadRequest, rec)

	// unknown task
	req, rec = newAuthRequest(http.MethodPatch, "/v1/tasks/lol", getToken(t, usr),
		marchallObj(t, map[string]string{"title": "X"}))
	app.ServeHTTP(rec, req)
	checkCode(t, http.StatusNotFound, rec)

	// deletion is reviewer-only
	req, rec = newAuthRequest(http.MethodDelete, "/v1/tasks/"+tsk.ID, getToken(t, usr))
	app.ServeHTTP(rec, req)
	checkCode(t, http.StatusForbidden, rec)

	req, rec = newAuthRequest(http.MethodDelete, "/v1/tasks/"+tsk.ID, getToken(t, manager))
	app.ServeHTTP(rec, req)
	checkCode(t, http.StatusNoContent, rec)

	req, rec = newAuthRequest(http.MethodGet, "/v1/tasks/"+tsk.ID, getToken(t, manager))
	app.ServeHTTP(rec, req)
	checkCode(t, http.StatusNotFound, rec)
}

func Test_taskApi_checklist(t *testing.T) {
	app := setup(t)

	usr := testutil.CreateUser(t, usrRepo, "Awe", "awe@test.cd", "", "", true)
	manager := testutil.CreateUser(t, usrRepo, "Hero", "hero@test.cd", "", user.RoleProjectManager, true)
	prj := seedProject(t, manager.ID)

	tasks, err := prjSvc.ProjectTasks(prj.ID)
	if err != nil {
		t.Fatalf("ProjectTasks() failed: %v", err)
	}
	tsk := tasks[0]
	token := getToken(t, usr)

	req, rec := newAuthRequest(http.MethodPost, "/v1/tasks/"+tsk.ID+"/checklist", token,
		marchallObj(t, map[string]string{"text": "Validar con cliente"}))
	app.ServeHTTP(rec, req)
	checkCode(t, http.StatusCreated, rec)

	var item project.ChecklistItem
	if err := json.Unmarshal(rec.Body.Bytes(), &item); err != nil {
		t.Fatalf("unmarshalling item: %v", err)
	}
	if item.ID == "" || item.Text != "Validar con cliente" || item.Completed {
		t.Errorf("item = %+v", item)
	}

	// empty text is rejected
	req, rec = newAuthRequest(http.MethodPost, "/v1/tasks/"+tsk.ID+"/checklist", token,
		marchallObj(t, map[string]string{"text": "  "}))
	app.ServeHTTP(rec, req)
	checkCode(t, http.StatusBadRequest, rec)

	// toggling flips the flag both ways
	req, rec = newAuthRequest(http.MethodPatch, "/v1/tasks/"+tsk.ID+"/checklist/"+item.ID, token)
	app.ServeHTTP(rec, req)
	checkCode(t, http.StatusOK, rec)
	if err := json.Unmarshal(rec.Body.Bytes(), &item); err != nil {
		t.Fatalf("unmarshalling item: %v", err)
	}
	if !item.Completed {
		t.Error("item not completed after toggle")
	}

	req, rec = newAuthRequest(http.MethodPatch, "/v1/tasks/"+tsk.ID+"/checklist/"+item.ID, token)
	app.ServeHTTP(rec, req)
	checkCode(t, http.StatusOK, rec)
	if err := json.Unmarshal(rec.Body.Bytes(), &item); err != nil {
		t.Fatalf("unmarshalling item: %v", err)
	}
	if item.Completed {
		t.Error("item still completed after second toggle")
	}

	req, rec = newAuthRequest(http.MethodPatch, "/v1/tasks/"+tsk.ID+"/checklist/lol", token)
	app.ServeHTTP(rec, req)
	checkCode(t, http.StatusNotFound, rec)

	req, rec = newAuthRequest(http.MethodDelete, "/v1/tasks/"+tsk.ID+"/checklist/"+item.ID, token)
	app.ServeHTTP(rec, req)
	checkCode(t, http.StatusNoContent, rec)

	got, err := prjSvc.GetTask(tsk.ID)
	if err != nil {
		t.Fatalf("GetTask() failed: %v", err)
	}
	if len(got.Checklist) != len(tsk.Checklist) {
		t.Errorf("checklist = %d items, want %d", len(got.Checklist), len(tsk.Checklist))
	}
}
