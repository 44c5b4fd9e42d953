package tests

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/elearn360/backend/core/project"
	"github.com/elearn360/backend/core/user"
	testutil "github.com/elearn360/backend/tests"
)

func fileUpload(name, content string) project.FileUpload {
	return project.FileUpload{
		Filename:    name,
		ContentType: "application/pdf",
		Size:        int64(len(content)),
		Content:     strings.NewReader(content),
	}
}

func seedDeliverable(t *testing.T, actorID string) (project.Task, project.Deliverable) {
	t.Helper()
	prj := seedProject(t, actorID)
	tasks, err := prjSvc.ProjectTasks(prj.ID)
	if err != nil {
		t.Fatalf("ProjectTasks() failed: %v", err)
	}
	dlv, err := prjSvc.AddDeliverable(tasks[0].ID, project.NewDeliverable{Name: "Manual de Marca"})
	if err != nil {
		t.Fatalf("AddDeliverable() failed: %v", err)
	}
	tsk, err := prjSvc.GetTask(tasks[0].ID)
	if err != nil {
		t.Fatalf("GetTask() failed: %v", err)
	}
	return tsk, dlv
}

func newUploadRequest(t *testing.T, path, token, filename, content string) (*http.Request, *httptest.ResponseRecorder) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("creating form file: %v", err)
	}
	if _, err = io.WriteString(part, content); err != nil {
		t.Fatalf("writing form file: %v", err)
	}
	if err = writer.Close(); err != nil {
		t.Fatalf("closing multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req, httptest.NewRecorder()
}

func Test_deliverableApi_crud(t *testing.T) {
	app := setup(t)

	usr := testutil.CreateUser(t, usrRepo, "Awe", "awe@test.cd", "", "", true)
	manager := testutil.CreateUser(t, usrRepo, "Hero", "hero@test.cd", "", user.RoleProjectManager, true)
	tsk, _ := seedDeliverable(t, manager.ID)
	managerToken := getToken(t, manager)

	// defining deliverables is reviewer work
	body := marchallObj(t, project.NewDeliverable{Name: "Guía de Estilo"})
	req, rec := newAuthRequest(http.MethodPost, "/v1/tasks/"+tsk.ID+"/deliverables", getToken(t, usr), body)
	app.ServeHTTP(rec, req)
	checkCode(t, http.StatusForbidden, rec)

	req, rec = newAuthRequest(http.MethodPost, "/v1/tasks/"+tsk.ID+"/deliverables", managerToken, body)
	app.ServeHTTP(rec, req)
	checkCode(t, http.StatusCreated, rec)

	var dlv project.Deliverable
	if err := json.Unmarshal(rec.Body.Bytes(), &dlv); err != nil {
		t.Fatalf("unmarshalling deliverable: %v", err)
	}
	if dlv.ID == "" || dlv.Status != project.DeliverablePending || dlv.TaskID != tsk.ID {
		t.Errorf("deliverable = %+v", dlv)
	}

	req, rec = newAuthRequest(http.MethodPatch, "/v1/deliverables/"+dlv.ID, managerToken,
		marchallObj(t, map[string]string{"description": "Tipografía y paleta"}))
	app.ServeHTTP(rec, req)
	checkCode(t, http.StatusOK, rec)
	if err := json.Unmarshal(rec.Body.Bytes(), &dlv); err != nil {
		t.Fatalf("unmarshalling deliverable: %v", err)
	}
	if dlv.Description != "Tipografía y paleta" || dlv.Name != "Guía de Estilo" {
		t.Errorf("partial update clobbered fields: %+v", dlv)
	}

	req, rec = newAuthRequest(http.MethodDelete, "/v1/deliverables/"+dlv.ID, managerToken)
	app.ServeHTTP(rec, req)
	checkCode(t, http.StatusNoContent, rec)

	req, rec = newAuthRequest(http.MethodDelete, "/v1/deliverables/"+dlv.ID, managerToken)
	app.ServeHTTP(rec, req)
	checkCode(t, http.StatusNotFound, rec)
}

func Test_deliverableApi_lifecycle(t *testing.T) {
	app := setup(t)

	usr := testutil.CreateUser(t, usrRepo, "Awe", "awe@test.cd", "", "", true)
	manager := testutil.CreateUser(t, usrRepo, "Hero", "hero@test.cd", "", user.RoleProjectManager, true)
	_, dlv := seedDeliverable(t, manager.ID)
	usrToken := getToken(t, usr)
	managerToken := getToken(t, manager)

	// submitting without a file has nothing to review
	req, rec := newAuthRequest(http.MethodPost, "/v1/deliverables/"+dlv.ID+"/submit", usrToken)
	app.ServeHTTP(rec, req)
	checkCode(t, http.StatusConflict, rec)

	// upload without a file part
	req, rec = newAuthRequest(http.MethodPost, "/v1/deliverables/"+dlv.ID+"/upload", usrToken)
	app.ServeHTTP(rec, req)
	checkCode(t, http.StatusBadRequest, rec)

	req, rec = newUploadRequest(t, "/v1/deliverables/"+dlv.ID+"/upload", usrToken, "manual.pdf", "not really a pdf")
	app.ServeHTTP(rec, req)
	checkCode(t, http.StatusOK, rec)
	if err := json.Unmarshal(rec.Body.Bytes(), &dlv); err != nil {
		t.Fatalf("unmarshalling deliverable: %v", err)
	}
	if dlv.File == nil {
		t.Fatal("no file recorded after upload")
	}
	if dlv.File.OriginalName != "manual.pdf" || dlv.File.UploadedBy != usr.ID {
		t.Errorf("file = %+v", dlv.File)
	}

	req, rec = newAuthRequest(http.MethodPost, "/v1/deliverables/"+dlv.ID+"/submit", usrToken)
	app.ServeHTTP(rec, req)
	checkCode(t, http.StatusOK, rec)
	if err := json.Unmarshal(rec.Body.Bytes(), &dlv); err != nil {
		t.Fatalf("unmarshalling deliverable: %v", err)
	}
	if dlv.Status != project.DeliverableInReview {
		t.Errorf("status = %q, want in_review", dlv.Status)
	}

	// resubmitting something already in review
	req, rec = newAuthRequest(http.MethodPost, "/v1/deliverables/"+dlv.ID+"/submit", usrToken)
	app.ServeHTTP(rec, req)
	checkCode(t, http.StatusConflict, rec)

	// verdicts are reviewer-only
	verdict := marchallObj(t, project.ReviewInput{Status: project.DeliverableRejected, Feedback: "Falta la paleta"})
	req, rec = newAuthRequest(http.MethodPost, "/v1/deliverables/"+dlv.ID+"/review", usrToken, verdict)
	app.ServeHTTP(rec, req)
	checkCode(t, http.StatusForbidden, rec)

	// rejecting without feedback
	req, rec = newAuthRequest(http.MethodPost, "/v1/deliverables/"+dlv.ID+"/review", managerToken,
		marchallObj(t, project.ReviewInput{Status: project.DeliverableRejected}))
	app.ServeHTTP(rec, req)
	checkCode(t, http.StatusBadRequest, rec)

	// verdicts outside the enum
	req, rec = newAuthRequest(http.MethodPost, "/v1/deliverables/"+dlv.ID+"/review", managerToken,
		marchallObj(t, map[string]string{"status": "lol"}))
	app.ServeHTTP(rec, req)
	checkCode(t, http.StatusBadRequest, rec)

	req, rec = newAuthRequest(http.MethodPost, "/v1/deliverables/"+dlv.ID+"/review", managerToken, verdict)
	app.ServeHTTP(rec, req)
	checkCode(t, http.StatusOK, rec)
	if err := json.Unmarshal(rec.Body.Bytes(), &dlv); err != nil {
		t.Fatalf("unmarshalling deliverable: %v", err)
	}
	if dlv.Status != project.DeliverableRejected || dlv.Feedback != "Falta la paleta" {
		t.Errorf("deliverable = %+v", dlv)
	}
	if dlv.ReviewerID != manager.ID || dlv.ReviewedAt == nil {
		t.Errorf("review stamp = reviewer %q, at %v", dlv.ReviewerID, dlv.ReviewedAt)
	}

	// a fresh upload discards the rejection and goes back to pending
	req, rec = newUploadRequest(t, "/v1/deliverables/"+dlv.ID+"/upload", usrToken, "manual-v2.pdf", "second attempt")
	app.ServeHTTP(rec, req)
	checkCode(t, http.StatusOK, rec)
	if err := json.Unmarshal(rec.Body.Bytes(), &dlv); err != nil {
		t.Fatalf("unmarshalling deliverable: %v", err)
	}
	if dlv.Status != project.DeliverablePending {
		t.Errorf("status = %q, want pending after re-upload", dlv.Status)
	}
	if dlv.Feedback != "" || dlv.ReviewerID != "" || dlv.ReviewedAt != nil {
		t.Errorf("review not cleared: %+v", dlv)
	}
	if dlv.File.OriginalName != "manual-v2.pdf" {
		t.Errorf("file = %+v, want the replacement", dlv.File)
	}

	// unknown deliverable
	req, rec = newAuthRequest(http.MethodPost, "/v1/deliverables/lol/submit", usrToken)
	app.ServeHTTP(rec, req)
	checkCode(t, http.StatusNotFound, rec)
}
