package notif

import "time"

// Notification is one entry in a user's in-app feed.
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Body      string    `json:"body,omitempty"`
	Kind      string    `json:"kind"`
	Ref       string    `json:"ref,omitempty"` // the record the event was about
	ProjectID string    `json:"project_id,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"` // UTC
}
