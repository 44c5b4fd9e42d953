package notif

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/elearn360/backend/core"
	"github.com/elearn360/backend/core/user"
)

var (
	// errors
	ErrNotFound = errors.New("notification not found")
)

type (
	Repository interface {
		CreateNotification(ctx context.Context, n Notification, exec ...core.DBExecutor) (Notification, error)
		// QueryNotifications returns a user's feed, newest first.
		QueryNotifications(ctx context.Context, userID string, exec ...core.DBExecutor) ([]Notification, error)
		GetNotification(ctx context.Context, id string, exec ...core.DBExecutor) (Notification, error)
		UpdateNotification(ctx context.Context, n Notification, exec ...core.DBExecutor) (Notification, error)
		MarkAllNotificationsRead(ctx context.Context, userID string, exec ...core.DBExecutor) error
		CountUnreadNotifications(ctx context.Context, userID string, exec ...core.DBExecutor) (int, error)
	}

	// UserStore provides the user lookups event fan-out needs. Implemented
	// by the user service.
	UserStore interface {
		Query(filter *user.QueryFilter, ordering []core.DBOrdering) ([]user.User, error)
		GetByID(id string) (user.User, error)
	}

	Service interface {
		Query(userID string) ([]Notification, error)
		MarkRead(id, userID string) (Notification, error)
		MarkAllRead(userID string) error
		CountUnread(userID string) (int, error)

		// HandleEvent is subscribed to the core.Bus at wiring time and fans
		// domain events out into per-user feed entries.
		HandleEvent(evt core.Event)
	}

	service struct {
		repo    Repository
		users   UserStore
		mailSvc core.EmailService
		logger  core.Logger
	}
)

var _ Service = (*service)(nil) // interface compliance check

func NewService(repo Repository, users UserStore, mailSvc core.EmailService, logger core.Logger) Service {
	return &service{
		repo:    repo,
		users:   users,
		mailSvc: mailSvc,
		logger:  logger,
	}
}

func (svc *service) Query(userID string) ([]Notification, error) {
	return svc.repo.QueryNotifications(context.Background(), userID)
}

func (svc *service) MarkRead(id, userID string) (Notification, error) {
	ctx := context.Background()
	n, err := svc.repo.GetNotification(ctx, id)
	if err != nil {
		return Notification{}, err
	}
	if n.UserID != userID {
		return Notification{}, ErrNotFound
	}
	if n.Read {
		return n, nil
	}
	n.Read = true
	return svc.repo.UpdateNotification(ctx, n)
}

func (svc *service) MarkAllRead(userID string) error {
	return svc.repo.MarkAllNotificationsRead(context.Background(), userID)
}

func (svc *service) CountUnread(userID string) (int, error) {
	return svc.repo.CountUnreadNotifications(context.Background(), userID)
}

// Event fan-out. Recipients never include the acting user; people do not
// need to be told what they just did.

func (svc *service) HandleEvent(evt core.Event) {
	var recipients []string
	var err error

	switch evt.Kind {
	case core.EventProjectCreated:
		recipients, err = svc.activeUserIDs()
	case core.EventDeliverableSubmitted:
		recipients, err = svc.reviewerIDs()
	case core.EventTaskAssigned, core.EventTaskStatusChanged,
		core.EventDeliverableUploaded, core.EventDeliverableReviewed:
		if evt.TargetID != "" {
			recipients = []string{evt.TargetID}
		}
	}
	if err != nil {
		svc.logger.Error(fmt.Sprintf("resolving notification recipients: %v", err), err)
		return
	}

	for _, userID := range recipients {
		if userID == evt.ActorID {
			continue
		}
		n := Notification{
			UserID:    userID,
			Title:     evt.Title,
			Body:      evt.Body,
			Kind:      evt.Kind,
			Ref:       evt.Ref,
			ProjectID: evt.ProjectID,
			CreatedAt: evt.OccurredAt,
		}
		if n.CreatedAt.IsZero() {
			n.CreatedAt = time.Now().UTC()
		}
		if _, err = svc.repo.CreateNotification(context.Background(), n); err != nil {
			svc.logger.Error(fmt.Sprintf("creating notification: %v", err), err)
		}
	}

	// review verdicts also reach the assignee's inbox by email
	if evt.Kind == core.EventDeliverableReviewed && evt.TargetID != "" && evt.TargetID != evt.ActorID {
		svc.emailReviewVerdict(evt)
	}
}

func (svc *service) activeUserIDs() ([]string, error) {
	active := true
	users, err := svc.users.Query(&user.QueryFilter{IsActive: &active}, nil)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(users))
	for _, usr := range users {
		ids = append(ids, usr.ID)
	}
	return ids, nil
}

func (svc *service) reviewerIDs() ([]string, error) {
	var ids []string
	for _, role := range user.ReviewerRoles {
		users, err := svc.users.Query(&user.QueryFilter{Role: role}, nil)
		if err != nil {
			return nil, err
		}
		for _, usr := range users {
			if usr.IsActive {
				ids = append(ids, usr.ID)
			}
		}
	}
	return ids, nil
}

func (svc *service) emailReviewVerdict(evt core.Event) {
	usr, err := svc.users.GetByID(evt.TargetID)
	if err != nil {
		svc.logger.Error(fmt.Sprintf("looking up review recipient: %v", err), err)
		return
	}
	msg := &core.EmailMessage{
		To:      []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject: evt.Title,
		BodyStr: evt.Body,
	}
	svc.mailSvc.SendMessages(msg)
}
