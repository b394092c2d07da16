package entity

import (
	"fmt"
	"time"
)

type Notification struct {
	ID        string            `json:"id" firestore:"id"`
	UserID    string            `json:"user_id" firestore:"userId"`
	Type      string            `json:"type" firestore:"type"`
	Title     string            `json:"title" firestore:"title"`
	Message   string            `json:"message" firestore:"message"`
	Metadata  map[string]string `json:"metadata,omitempty" firestore:"metadata,omitempty"`
	IsRead    bool              `json:"is_read" firestore:"isRead"`
	CreatedAt time.Time         `json:"created_at" firestore:"createdAt"`
}

func (n *Notification) Validate() error {
	if n.ID == "" {
		return fmt.Errorf("notification: missing id")
	}
	if !ValidUserID(n.UserID) {
		return fmt.Errorf("notification %s: malformed user id", n.ID)
	}
	if n.Type == "" || n.CreatedAt.IsZero() {
		return fmt.Errorf("notification %s: missing type or timestamp", n.ID)
	}
	return nil
}
