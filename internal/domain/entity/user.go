package entity

import (
	"time"
)

const (
	RoleAdmin  = "admin"
	RoleFarmer = "farmer"
	RoleBuyer  = "buyer"
)

// UserProfile is the public profile shown next to a conversation.
type UserProfile struct {
	ID        string    `json:"id" firestore:"id"`
	Name      string    `json:"name" firestore:"name"`
	Email     string    `json:"email" firestore:"email"`
	Role      string    `json:"role" firestore:"role"`
	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
}
