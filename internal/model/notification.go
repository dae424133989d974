package model

import "time"

// Notification is an in-app message owned by its recipient. The scheduler is
// the exclusive writer of reminder and report notifications; clients poll the
// list endpoint and toggle read state.
//
// DedupeKey identifies the (recipient, tier, subject) a reminder was created
// for; a second candidate with the same key inside the suppression window is
// not persisted.
type Notification struct {
	ID          string    `json:"id"`
	RecipientID string    `json:"recipient_id"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	SubjectRef  string    `json:"subject_ref"`
	DedupeKey   string    `json:"-"`
	Read        bool      `json:"read"`
	CreatedAt   time.Time `json:"created_at"`
}
