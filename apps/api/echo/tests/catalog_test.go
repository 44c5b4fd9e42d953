package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/elearn360/backend/core/catalog"
	"github.com/elearn360/backend/core/user"
	testutil "github.com/elearn360/backend/tests"
)

func Test_catalogApi_current(t *testing.T) {
	app := setup(t)

	usr := testutil.CreateUser(t, usrRepo, "Awe", "awe@test.cd", "", "", true)
	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin@test.cd", "", user.RoleAdmin, true)

	// no catalog yet
	req, rec := newAuthRequest(http.MethodGet, "/v1/catalog", getToken(t, usr))
	app.ServeHTTP(rec, req)
	checkCode(t, http.StatusNotFound, rec)

	if _, err := catSvc.Seed(admin.ID); err != nil {
		t.Fatalf("Seed() failed: %v", err)
	}

	req, rec = newAuthRequest(http.MethodGet, "/v1/catalog", getToken(t, usr))
	app.ServeHTTP(rec, req)
	checkCode(t, http.StatusOK, rec)

	var cat catalog.Catalog
	if err := json.Unmarshal(rec.Body.Bytes(), &cat); err != nil {
		t.Fatalf("unmarshalling Catalog: %v", err)
	}
	if cat.Version != 1 {
		t.Errorf("version = %d, want 1", cat.Version)
	}
	if len(cat.Modules) != len(catalog.DefaultModules) {
		t.Errorf("modules = %d, want %d", len(cat.Modules), len(catalog.DefaultModules))
	}

	// unknown version
	req, rec = newAuthRequest(http.MethodGet, "/v1/catalog/versions/99", getToken(t, usr))
	app.ServeHTTP(rec, req)
	checkCode(t, http.StatusNotFound, rec)

	// bogus version number
	req, rec = newAuthRequest(http.MethodGet, "/v1/catalog/versions/lol", getToken(t, usr))
	app.ServeHTTP(rec, req)
	checkCode(t, http.StatusBadRequest, rec)
}

func Test_catalogApi_moduleCRUD(t *testing.T) {
	app := setup(t)

	usr := testutil.CreateUser(t, usrRepo, "Awe", "awe@test.cd", "", "", true)
	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin@test.cd", "", user.RoleAdmin, true)
	adminToken := getToken(t, admin)

	newModule := marchallObj(t, map[string]interface{}{
		"name":         "Strategy & Vision",
		"default_cost": 1500,
		"tasks": []map[string]interface{}{
			{"title": "Kickoff workshop", "department": "direccion", "checklist": []string{"Agenda", "Minutes"}},
		},
	})

	// writes are admin only
	req, rec := newAuthRequest(http.MethodPost, "/v1/catalog/modules", getToken(t, usr), newModule)
	app.ServeHTTP(rec, req)
	checkCode(t, http.StatusForbidden, rec)

	// create publishes version 1; the module ID is derived from the name
	req, rec = newAuthRequest(http.MethodPost, "/v1/catalog/modules", adminToken, newModule)
	app.ServeHTTP(rec, req)
	checkCode(t, http.StatusCreated, rec)
	var mod catalog.ModuleTemplate
	if err := json.Unmarshal(rec.Body.Bytes(), &mod); err != nil {
		t.Fatalf("unmarshalling ModuleTemplate: %v", err)
	}
	if mod.ID != "strategy-vision" {
		t.Errorf("module ID = %q, want %q", mod.ID, "strategy-vision")
	}
	if len(mod.Tasks) != 1 || mod.Tasks[0].ID == "" {
		t.Error("task template did not get an ID")
	}

	// duplicate ID is a validation error
	req, rec = newAuthRequest(http.MethodPost, "/v1/catalog/modules", adminToken,
		marchallObj(t, map[string]interface{}{"id": "strategy-vision", "name": "Clone"}))
	app.ServeHTTP(rec, req)
	checkCode(t, http.StatusBadRequest, rec)

	// update the module; a new version is published
	req, rec = newAuthRequest(http.MethodPatch, "/v1/catalog/modules/strategy-vision", adminToken,
		marchallObj(t, map[string]interface{}{"default_cost": 1800}))
	app.ServeHTTP(rec, req)
	checkCode(t, http.StatusOK, rec)
	if err := json.Unmarshal(rec.Body.Bytes(), &mod); err != nil {
		t.Fatalf("unmarshalling ModuleTemplate: %v", err)
	}
	if mod.DefaultCost != 1800 {
		t.Errorf("default_cost = %v, want 1800", mod.DefaultCost)
	}

	cat, err := catSvc.Current()
	if err != nil {
		t.Fatalf("Current() failed: %v", err)
	}
	if cat.Version != 2 {
		t.Errorf("version = %d, want 2", cat.Version)
	}

	// earlier versions stay frozen
	req, rec = newAuthRequest(http.MethodGet, "/v1/catalog/versions/1", adminToken)
	app.ServeHTTP(rec, req)
	checkCode(t, http.StatusOK, rec)
	var v1 catalog.Catalog
	if err := json.Unmarshal(rec.Body.Bytes(), &v1); err != nil {
		t.Fatalf("unmarshalling Catalog: %v", err)
	}
	if frozen, _ := v1.Module("strategy-vision"); frozen.DefaultCost != 1500 {
		t.Errorf("version 1 default_cost = %v, want 1500", frozen.DefaultCost)
	}

	// task template operations
	req, rec = newAuthRequest(http.MethodPost, "/v1/catalog/modules/strategy-vision/tasks", adminToken,
		marchallObj(t, map[string]interface{}{"title": "Stakeholder map", "deliverables": []string{"Map PDF"}}))
	app.ServeHTTP(rec, req)
	checkCode(t, http.StatusCreated, rec)
	var tmpl catalog.TaskTemplate
	if err := json.Unmarshal(rec.Body.Bytes(), &tmpl); err != nil {
		t.Fatalf("unmarshalling TaskTemplate: %v", err)
	}

	req, rec = newAuthRequest(http.MethodPatch, "/v1/catalog/modules/strategy-vision/tasks/"+tmpl.ID, adminToken,
		marchallObj(t, map[string]interface{}{"title": "Stakeholder mapping"}))
	app.ServeHTTP(rec, req)
	checkCode(t, http.StatusOK, rec)

	req, rec = newAuthRequest(http.MethodDelete, "/v1/catalog/modules/strategy-vision/tasks/"+tmpl.ID, adminToken)
	app.ServeHTTP(rec, req)
	checkCode(t, http.StatusNoContent, rec)

	// deleting a module referenced by a project conflicts
	prj, err := prjSvc.Create(newProjectInput("Ref", "ACME", []string{"strategy-vision"}), admin.ID)
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	req, rec = newAuthRequest(http.MethodDelete, "/v1/catalog/modules/strategy-vision", adminToken)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusConflict,
		wantData: marchallObj(t, httpErr{Error: catalog.ErrModuleInUse.Error()}),
	}, rec)

	// after the project goes away the module can be removed
	if err := prjSvc.Delete(prj.Project.ID); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	req, rec = newAuthRequest(http.MethodDelete, "/v1/catalog/modules/strategy-vision", adminToken)
	app.ServeHTTP(rec, req)
	checkCode(t, http.StatusNoContent, rec)
}
