package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/elearn360/backend/core/notif"
	"github.com/elearn360/backend/core/project"
	"github.com/elearn360/backend/core/user"
	testutil "github.com/elearn360/backend/tests"
)

func Test_notificationApi_fanOut(t *testing.T) {
	app := setup(t)

	usr := testutil.CreateUser(t, usrRepo, "Awe", "awe@test.cd", "", "", true)
	manager := testutil.CreateUser(t, usrRepo, "Hero", "hero@test.cd", "", user.RoleProjectManager, true)
	inactive := testutil.CreateUser(t, usrRepo, "Gone", "gone@test.cd", "", "", false)

	// project creation notifies every active user except the actor
	prj := seedProject(t, manager.ID)

	fetch := func(t *testing.T, u user.User) []notif.Notification {
		t.Helper()
		req, rec := newAuthRequest(http.MethodGet, "/v1/notifications", getToken(t, u))
		app.ServeHTTP(rec, req)
		checkCode(t, http.StatusOK, rec)
		var notifs []notif.Notification
		if err := json.Unmarshal(rec.Body.Bytes(), &notifs); err != nil {
			t.Fatalf("unmarshalling notifications: %v", err)
		}
		return notifs
	}

	notifs := fetch(t, usr)
	if len(notifs) != 1 {
		t.Fatalf("collaborator feed = %d entries, want 1", len(notifs))
	}
	if notifs[0].Kind != "project.created" || notifs[0].ProjectID != prj.ID || notifs[0].Read {
		t.Errorf("entry = %+v", notifs[0])
	}
	if got := fetch(t, manager); len(got) != 0 {
		t.Errorf("actor feed = %d entries, want 0", len(got))
	}
	if got, err := notifSvc.Query(inactive.ID); err != nil || len(got) != 0 {
		t.Errorf("inactive user feed = %d entries (err %v), want 0", len(got), err)
	}

	// a deliverable submitted by a collaborator lands in reviewer feeds
	tasks, err := prjSvc.ProjectTasks(prj.ID)
	if err != nil {
		t.Fatalf("ProjectTasks() failed: %v", err)
	}
	dlv, err := prjSvc.AddDeliverable(tasks[0].ID, project.NewDeliverable{Name: "Manual"})
	if err != nil {
		t.Fatalf("AddDeliverable() failed: %v", err)
	}
	if _, err = prjSvc.UploadDeliverableFile(dlv.ID, fileUpload("m.pdf", "body"), usr.ID); err != nil {
		t.Fatalf("UploadDeliverableFile() failed: %v", err)
	}
	if _, err = prjSvc.SubmitDeliverable(dlv.ID, usr.ID); err != nil {
		t.Fatalf("SubmitDeliverable() failed: %v", err)
	}

	got := fetch(t, manager)
	if len(got) != 1 {
		t.Fatalf("reviewer feed = %d entries, want 1", len(got))
	}
	if got[0].Kind != "deliverable.submitted" || got[0].Ref != dlv.ID {
		t.Errorf("entry = %+v", got[0])
	}
	// the submitting collaborator is not a reviewer; their feed is unchanged
	if got := fetch(t, usr); len(got) != 1 {
		t.Errorf("collaborator feed = %d entries, want 1", len(got))
	}
}

func Test_notificationApi_markRead(t *testing.T) {
	app := setup(t)

	usr := testutil.CreateUser(t, usrRepo, "Awe", "awe@test.cd", "", "", true)
	other := testutil.CreateUser(t, usrRepo, "Eve", "eve@test.cd", "", "", true)
	manager := testutil.CreateUser(t, usrRepo, "Hero", "hero@test.cd", "", user.RoleProjectManager, true)

	// two feed entries for usr, newest first
	seedProject(t, manager.ID)
	seedProject(t, manager.ID)

	notifs, err := notifSvc.Query(usr.ID)
	if err != nil {
		t.Fatalf("Query() failed: %v", err)
	}
	if len(notifs) != 2 {
		t.Fatalf("feed = %d entries, want 2", len(notifs))
	}
	if notifs[0].CreatedAt.Before(notifs[1].CreatedAt) {
		t.Error("feed is not newest first")
	}

	token := getToken(t, usr)
	req, rec := newAuthRequest(http.MethodPost, "/v1/notifications/"+notifs[0].ID+"/read", token)
	app.ServeHTTP(rec, req)
	checkCode(t, http.StatusOK, rec)

	var n notif.Notification
	if err := json.Unmarshal(rec.Body.Bytes(), &n); err != nil {
		t.Fatalf("unmarshalling notification: %v", err)
	}
	if !n.Read {
		t.Error("notification not marked read")
	}
	if count, _ := notifSvc.CountUnread(usr.ID); count != 1 {
		t.Errorf("unread = %d, want 1", count)
	}

	// marking is idempotent
	req, rec = newAuthRequest(http.MethodPost, "/v1/notifications/"+notifs[0].ID+"/read", token)
	app.ServeHTTP(rec, req)
	checkCode(t, http.StatusOK, rec)

	// other users cannot touch someone else's entry
	req, rec = newAuthRequest(http.MethodPost, "/v1/notifications/"+notifs[1].ID+"/read", getToken(t, other))
	app.ServeHTTP(rec, req)
	checkCode(t, http.StatusNotFound, rec)

	req, rec = newAuthRequest(http.MethodPost, "/v1/notifications/lol/read", token)
	app.ServeHTTP(rec, req)
	checkCode(t, http.StatusNotFound, rec)

	req, rec = newAuthRequest(http.MethodPost, "/v1/notifications/read-all", token)
	app.ServeHTTP(rec, req)
	checkCode(t, http.StatusNoContent, rec)
	if count, _ := notifSvc.CountUnread(usr.ID); count != 0 {
		t.Errorf("unread after read-all = %d, want 0", count)
	}
}
