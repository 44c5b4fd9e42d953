package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/elearn360/backend/core"
	"github.com/elearn360/backend/core/notif"
)

type notifRepository struct {
	db *notifTable
}

var _ notif.Repository = (*notifRepository)(nil) // interface compliance check

func NewNotifRepository(db *DB) *notifRepository {
	return &notifRepository{db: db.notifs}
}

func (repo *notifRepository) CreateNotification(ctx context.Context, n notif.Notification, exec ...core.DBExecutor) (notif.Notification, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	cp := n
	repo.db.notifs[n.ID] = &cp
	repo.db.seq++
	repo.db.order[n.ID] = repo.db.seq
	return n, nil
}

func (repo *notifRepository) QueryNotifications(ctx context.Context, userID string, exec ...core.DBExecutor) ([]notif.Notification, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var notifs []notif.Notification
	for _, n := range repo.db.notifs {
		if n.UserID == userID {
			notifs = append(notifs, *n)
		}
	}
	// newest first
	sort.SliceStable(notifs, func(i, j int) bool {
		if notifs[i].CreatedAt.Equal(notifs[j].CreatedAt) {
			return repo.db.order[notifs[i].ID] > repo.db.order[notifs[j].ID]
		}
		return notifs[i].CreatedAt.After(notifs[j].CreatedAt)
	})
	return notifs, nil
}

func (repo *notifRepository) GetNotification(ctx context.Context, id string, exec ...core.DBExecutor) (notif.Notification, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if n, ok := repo.db.notifs[id]; ok {
		return *n, nil
	}
	return notif.Notification{}, notif.ErrNotFound
}

func (repo *notifRepository) UpdateNotification(ctx context.Context, n notif.Notification, exec ...core.DBExecutor) (notif.Notification, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.notifs[n.ID]; !ok {
		return notif.Notification{}, notif.ErrNotFound
	}
	cp := n
	repo.db.notifs[n.ID] = &cp
	return n, nil
}

func (repo *notifRepository) MarkAllNotificationsRead(ctx context.Context, userID string, exec ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, n := range repo.db.notifs {
		if n.UserID == userID {
			n.Read = true
		}
	}
	return nil
}

func (repo *notifRepository) CountUnreadNotifications(ctx context.Context, userID string, exec ...core.DBExecutor) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var count int
	for _, n := range repo.db.notifs {
		if n.UserID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}
