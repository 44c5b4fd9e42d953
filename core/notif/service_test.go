package notif

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/elearn360/backend/core"
	"github.com/elearn360/backend/core/user"
)

type repoMock struct {
	notifs []Notification
}

func (r *repoMock) CreateNotification(ctx context.Context, n Notification, exec ...core.DBExecutor) (Notification, error) {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	r.notifs = append(r.notifs, n)
	return n, nil
}

func (r *repoMock) QueryNotifications(ctx context.Context, userID string, exec ...core.DBExecutor) ([]Notification, error) {
	var notifs []Notification
	// newest first
	for i := len(r.notifs) - 1; i >= 0; i-- {
		if r.notifs[i].UserID == userID {
			notifs = append(notifs, r.notifs[i])
		}
	}
	return notifs, nil
}

func (r *repoMock) GetNotification(ctx context.Context, id string, exec ...core.DBExecutor) (Notification, error) {
	for _, n := range r.notifs {
		if n.ID == id {
			return n, nil
		}
	}
	return Notification{}, ErrNotFound
}

func (r *repoMock) UpdateNotification(ctx context.Context, n Notification, exec ...core.DBExecutor) (Notification, error) {
	for i := range r.notifs {
		if r.notifs[i].ID == n.ID {
			r.notifs[i] = n
			return n, nil
		}
	}
	return Notification{}, ErrNotFound
}

func (r *repoMock) MarkAllNotificationsRead(ctx context.Context, userID string, exec ...core.DBExecutor) error {
	for i := range r.notifs {
		if r.notifs[i].UserID == userID {
			r.notifs[i].Read = true
		}
	}
	return nil
}

func (r *repoMock) CountUnreadNotifications(ctx context.Context, userID string, exec ...core.DBExecutor) (int, error) {
	var count int
	for _, n := range r.notifs {
		if n.UserID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

type userStoreMock []user.User

func (s userStoreMock) Query(filter *user.QueryFilter, ordering []core.DBOrdering) ([]user.User, error) {
	var users []user.User
	for _, usr := range s {
		if filter != nil {
			if filter.IsActive != nil && usr.IsActive != *filter.IsActive {
				continue
			}
			if filter.Role != "" && usr.Role != filter.Role {
				continue
			}
		}
		users = append(users, usr)
	}
	return users, nil
}

func (s userStoreMock) GetByID(id string) (user.User, error) {
	for _, usr := range s {
		if usr.ID == id {
			return usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

type mailMock struct {
	sent []*core.EmailMessage
}

func (m *mailMock) SendMessages(messages ...*core.EmailMessage) {
	m.sent = append(m.sent, messages...)
}

func setupSvc() (*repoMock, *mailMock, Service) {
	repo := &repoMock{}
	mailSvc := &mailMock{}
	users := userStoreMock{
		{ID: "admin-1", Name: "Admin", Email: "admin@test.cd", Role: user.RoleAdmin, IsActive: true},
		{ID: "pm-1", Name: "Hero", Email: "hero@test.cd", Role: user.RoleProjectManager, IsActive: true},
		{ID: "u-1", Name: "Awe", Email: "awe@test.cd", Role: user.RoleCollaborator, IsActive: true},
		{ID: "u-2", Name: "Gone", Email: "gone@test.cd", Role: user.RoleCollaborator, IsActive: false},
	}
	return repo, mailSvc, NewService(repo, users, mailSvc, core.NopLogger{})
}

func TestHandleEvent_projectCreated(t *testing.T) {
	repo, _, svc := setupSvc()

	svc.HandleEvent(core.Event{
		Kind:      core.EventProjectCreated,
		Ref:       "prj-1",
		ProjectID: "prj-1",
		ActorID:   "pm-1",
		Title:     "Nuevo Proyecto Creado",
	})

	// every active user except the actor; never the inactive one
	recipients := make(map[string]bool, len(repo.notifs))
	for _, n := range repo.notifs {
		recipients[n.UserID] = true
	}
	if len(recipients) != 2 || !recipients["admin-1"] || !recipients["u-1"] {
		t.Errorf("recipients = %v; want admin-1 and u-1", recipients)
	}
	for _, n := range repo.notifs {
		if n.ProjectID != "prj-1" || n.Read || n.CreatedAt.IsZero() {
			t.Errorf("notification = %+v", n)
		}
	}
}

func TestHandleEvent_deliverableSubmitted(t *testing.T) {
	repo, _, svc := setupSvc()

	svc.HandleEvent(core.Event{
		Kind:    core.EventDeliverableSubmitted,
		Ref:     "dlv-1",
		ActorID: "u-1",
		Title:   "Entregable en Revisión",
	})

	// reviewers only: project managers and admins
	recipients := make(map[string]bool, len(repo.notifs))
	for _, n := range repo.notifs {
		recipients[n.UserID] = true
	}
	if len(recipients) != 2 || !recipients["pm-1"] || !recipients["admin-1"] {
		t.Errorf("recipients = %v; want pm-1 and admin-1", recipients)
	}
}

func TestHandleEvent_targeted(t *testing.T) {
	repo, mailSvc, svc := setupSvc()

	svc.HandleEvent(core.Event{
		Kind:     core.EventTaskAssigned,
		Ref:      "tsk-1",
		ActorID:  "pm-1",
		TargetID: "u-1",
		Title:    "Tarea Asignada",
	})
	if len(repo.notifs) != 1 || repo.notifs[0].UserID != "u-1" {
		t.Fatalf("notifications = %+v; want one for u-1", repo.notifs)
	}

	// self-inflicted events stay out of the actor's feed
	svc.HandleEvent(core.Event{
		Kind:     core.EventTaskStatusChanged,
		Ref:      "tsk-1",
		ActorID:  "u-1",
		TargetID: "u-1",
	})
	if len(repo.notifs) != 1 {
		t.Errorf("notifications = %v; want 1 after self-event", len(repo.notifs))
	}

	// events with no target fan out to nobody
	svc.HandleEvent(core.Event{Kind: core.EventDeliverableUploaded, ActorID: "u-1"})
	if len(repo.notifs) != 1 {
		t.Errorf("notifications = %v; want 1 after untargeted event", len(repo.notifs))
	}

	// a review verdict also lands in the assignee's inbox by email
	svc.HandleEvent(core.Event{
		Kind:     core.EventDeliverableReviewed,
		Ref:      "dlv-1",
		ActorID:  "pm-1",
		TargetID: "u-1",
		Title:    "Entregable Revisado",
		Body:     "rechazado",
	})
	if len(mailSvc.sent) != 1 {
		t.Fatalf("emails = %v; want 1", len(mailSvc.sent))
	}
	if to := mailSvc.sent[0].To; len(to) != 1 || to[0].Address != "awe@test.cd" {
		t.Errorf("email to = %v; want awe@test.cd", mailSvc.sent[0].To)
	}
}

func TestMarkRead(t *testing.T) {
	repo, _, svc := setupSvc()

	n1, _ := repo.CreateNotification(context.Background(), Notification{
		UserID: "u-1", Title: "A", CreatedAt: time.Now().UTC(),
	})
	n2, _ := repo.CreateNotification(context.Background(), Notification{
		UserID: "u-1", Title: "B", CreatedAt: time.Now().UTC(),
	})

	got, err := svc.MarkRead(n1.ID, "u-1")
	if err != nil {
		t.Fatalf("MarkRead() failed: %v", err)
	}
	if !got.Read {
		t.Error("MarkRead() entry still unread")
	}
	// idempotent
	if _, err = svc.MarkRead(n1.ID, "u-1"); err != nil {
		t.Fatalf("MarkRead() failed on re-read: %v", err)
	}

	// entries are invisible to other users
	if _, err = svc.MarkRead(n2.ID, "pm-1"); err != ErrNotFound {
		t.Errorf("MarkRead() error = %v; want %v", err, ErrNotFound)
	}
	if _, err = svc.MarkRead("lol", "u-1"); err != ErrNotFound {
		t.Errorf("MarkRead() error = %v; want %v", err, ErrNotFound)
	}

	if count, _ := svc.CountUnread("u-1"); count != 1 {
		t.Errorf("CountUnread() = %v; want 1", count)
	}
	if err = svc.MarkAllRead("u-1"); err != nil {
		t.Fatalf("MarkAllRead() failed: %v", err)
	}
	if count, _ := svc.CountUnread("u-1"); count != 0 {
		t.Errorf("CountUnread() = %v; want 0", count)
	}
}
