package pgrepos

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/elearn360/backend/core"
	"github.com/elearn360/backend/core/notif"
)

type notifRepository struct {
	db *sqlx.DB
}

var _ notif.Repository = (*notifRepository)(nil) // interface compliance check

func NewNotificationRepository(db *sqlx.DB) *notifRepository {
	return &notifRepository{db: db}
}

func (repo notifRepository) getExec(svcExec []core.DBExecutor) execer {
	if len(svcExec) > 0 {
		if ext, ok := svcExec[0].(execer); ok {
			return ext
		}
	}
	return repo.db
}

func (repo notifRepository) CreateNotification(ctx context.Context, n notif.Notification, exec ...core.DBExecutor) (notif.Notification, error) {
	ext := repo.getExec(exec)
	n.ID = uuid.New().String()
	doc, err := json.Marshal(n)
	if err != nil {
		return notif.Notification{}, errors.Wrap(err, "marshalling notification")
	}
	q := ext.Rebind("INSERT INTO notifications (id, user_id, read, created_at, doc) VALUES (?, ?, ?, ?, ?)")
	if _, err = ext.ExecContext(ctx, q, n.ID, n.UserID, n.Read, n.CreatedAt, doc); err != nil {
		return notif.Notification{}, errors.Wrap(err, "inserting notification")
	}
	return n, nil
}

func (repo notifRepository) QueryNotifications(ctx context.Context, userID string, exec ...core.DBExecutor) ([]notif.Notification, error) {
	ext := repo.getExec(exec)
	q := ext.Rebind("SELECT doc FROM notifications WHERE user_id = ? ORDER BY created_at DESC")
	rows, err := ext.QueryxContext(ctx, q, userID)
	if err != nil {
		return nil, errors.Wrap(err, "querying notifications")
	}
	//goland:noinspection GoUnhandledErrorResult
	defer rows.Close()

	var notifs []notif.Notification
	for rows.Next() {
		var doc []byte
		if err = rows.Scan(&doc); err != nil {
			return nil, errors.Wrap(err, "scanning notification")
		}
		var n notif.Notification
		if err = json.Unmarshal(doc, &n); err != nil {
			return nil, errors.Wrap(err, "unmarshalling notification")
		}
		notifs = append(notifs, n)
	}
	return notifs, errors.Wrap(rows.Err(), "querying notifications")
}

func (repo notifRepository) GetNotification(ctx context.Context, id string, exec ...core.DBExecutor) (notif.Notification, error) {
	ext := repo.getExec(exec)
	var doc []byte
	if err := ext.QueryRowxContext(ctx, ext.Rebind("SELECT doc FROM notifications WHERE id = ?"), id).Scan(&doc); err != nil {
		if err == sql.ErrNoRows {
			return notif.Notification{}, notif.ErrNotFound
		}
		return notif.Notification{}, errors.Wrap(err, "getting notification")
	}
	var n notif.Notification
	err := json.Unmarshal(doc, &n)
	return n, errors.Wrap(err, "unmarshalling notification")
}

func (repo notifRepository) UpdateNotification(ctx context.Context, n notif.Notification, exec ...core.DBExecutor) (notif.Notification, error) {
	ext := repo.getExec(exec)
	doc, err := json.Marshal(n)
	if err != nil {
		return notif.Notification{}, errors.Wrap(err, "marshalling notification")
	}
	res, err := ext.ExecContext(ctx, ext.Rebind("UPDATE notifications SET read = ?, doc = ? WHERE id = ?"), n.Read, doc, n.ID)
	if err != nil {
		return notif.Notification{}, errors.Wrap(err, "updating notification")
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return notif.Notification{}, notif.ErrNotFound
	}
	return n, nil
}

func (repo notifRepository) MarkAllNotificationsRead(ctx context.Context, userID string, exec ...core.DBExecutor) error {
	ext := repo.getExec(exec)
	q := ext.Rebind("UPDATE notifications SET read = true, doc = jsonb_set(doc, '{read}', 'true') WHERE user_id = ? AND NOT read")
	_, err := ext.ExecContext(ctx, q, userID)
	return errors.Wrap(err, "marking notifications read")
}

func (repo notifRepository) CountUnreadNotifications(ctx context.Context, userID string, exec ...core.DBExecutor) (int, error) {
	ext := repo.getExec(exec)
	var count int
	err := ext.QueryRowxContext(ctx, ext.Rebind("SELECT count(*) FROM notifications WHERE user_id = ? AND NOT read"), userID).Scan(&count)
	return count, errors.Wrap(err, "counting unread notifications")
}
